package status

import (
	"context"
	"errors"
	"strings"

	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/app/ports"
)

var ErrInvalidRequest = errors.New("invalid status request")

// UseCase assembles the live view of one game: every agent with its alliance
// link, the standing alliances, and the battles still waiting to resolve.
// This is the read model fed to agent decision-making between sweeps.
type UseCase struct {
	Games     ports.GameRepository
	Agents    ports.AgentRepository
	Alliances ports.AllianceRepository
	Battles   ports.BattleRepository
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.GameID) == "" {
		return Response{}, ErrInvalidRequest
	}

	gameRec, err := u.Games.GetByID(ctx, req.GameID)
	if err != nil {
		return Response{}, err
	}
	agents, err := u.Agents.ListByGame(ctx, req.GameID)
	if err != nil {
		return Response{}, err
	}
	alliances, err := u.Alliances.ListActiveByGame(ctx, req.GameID)
	if err != nil {
		return Response{}, err
	}
	pending, err := u.Battles.ListPendingByGame(ctx, req.GameID)
	if err != nil {
		return Response{}, err
	}

	return Response{
		GameID:         gameRec.ID,
		LedgerID:       gameRec.LedgerID,
		Agents:         agents,
		Alliances:      alliances,
		PendingBattles: pending,
	}, nil
}
