package engage

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/app/cooldown"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/app/ports"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/battle"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/game"
)

var ErrAlreadyIgnored = errors.New("pair already under an ignore shield")

// IgnoreUseCase declares a mutual non-engagement window between two agents.
// Neither side can open a battle against the other until it lapses. The
// shield is a projection-side restriction only; nothing reaches the ledger.
type IgnoreUseCase struct {
	TxManager ports.TxManager
	Agents    ports.AgentRepository
	Events    ports.EventRepository
	Gate      cooldown.Gate
	Metrics   ports.EngineMetrics
	Now       func() time.Time
}

func (u IgnoreUseCase) Execute(ctx context.Context, req IgnoreRequest) (IgnoreResponse, error) {
	req.GameID = strings.TrimSpace(req.GameID)
	req.AgentID = strings.TrimSpace(req.AgentID)
	req.TargetID = strings.TrimSpace(req.TargetID)
	if req.GameID == "" || req.AgentID == "" || req.TargetID == "" {
		return IgnoreResponse{}, ErrInvalidRequest
	}
	if req.AgentID == req.TargetID {
		return IgnoreResponse{}, battle.ErrSelfTarget
	}

	nowFn := u.Now
	if nowFn == nil {
		nowFn = time.Now
	}

	var out IgnoreResponse
	err := u.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		agent, err := u.Agents.GetByID(txCtx, req.GameID, req.AgentID)
		if err != nil {
			return err
		}
		target, err := u.Agents.GetByID(txCtx, req.GameID, req.TargetID)
		if err != nil {
			return err
		}
		if !agent.Alive {
			return battle.ErrAgentDead
		}
		if !target.Alive {
			return battle.ErrTargetDead
		}

		if err := u.Gate.Check(txCtx, req.GameID, game.CooldownIgnore, req.AgentID, req.TargetID); err != nil {
			if errors.Is(err, cooldown.ErrCoolingDown) {
				return ErrAlreadyIgnored
			}
			return err
		}

		cd, err := u.Gate.IssuePair(txCtx, req.GameID, game.CooldownIgnore, req.AgentID, req.TargetID)
		if err != nil {
			return err
		}

		evt := game.GameEvent{
			ID:          uuid.NewString(),
			GameID:      req.GameID,
			Type:        game.EventIgnoreDeclared,
			InitiatorID: req.AgentID,
			TargetID:    req.TargetID,
			Message:     agent.Name + " turned away from " + target.Name + ", refusing all engagement",
			Metadata:    map[string]any{"ends_at": cd.EndsAt},
			OccurredAt:  nowFn(),
		}
		if err := u.Events.Append(txCtx, []game.GameEvent{evt}); err != nil {
			return err
		}

		out = IgnoreResponse{CooldownEndsAt: cd.EndsAt}
		return nil
	})
	if err != nil {
		return IgnoreResponse{}, err
	}
	if u.Metrics != nil {
		u.Metrics.RecordIgnore()
	}
	return out, nil
}
