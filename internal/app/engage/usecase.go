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

var (
	ErrInvalidRequest = errors.New("invalid engage request")
	ErrIgnoreShield   = errors.New("pair is under an ignore shield")
	ErrBattleCooldown = errors.New("initiator is on battle cooldown")
)

// UseCase opens a battle. Opening is a projection-only write; the ledger
// first hears about a battle when its outcome commits at resolution.
type UseCase struct {
	TxManager ports.TxManager
	Agents    ports.AgentRepository
	Battles   ports.BattleRepository
	Events    ports.EventRepository
	Gate      cooldown.Gate
	Metrics   ports.EngineMetrics
	WaitFor   time.Duration
	Now       func() time.Time
}

func (u UseCase) Execute(ctx context.Context, req OpenRequest) (OpenResponse, error) {
	req.GameID = strings.TrimSpace(req.GameID)
	req.InitiatorID = strings.TrimSpace(req.InitiatorID)
	req.DefenderID = strings.TrimSpace(req.DefenderID)
	if req.GameID == "" || req.InitiatorID == "" || req.DefenderID == "" {
		return OpenResponse{}, ErrInvalidRequest
	}

	nowFn := u.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	waitFor := u.WaitFor
	if waitFor <= 0 {
		waitFor = game.DefaultBattleWait
	}

	var out OpenResponse
	err := u.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		initiator, err := u.Agents.GetByID(txCtx, req.GameID, req.InitiatorID)
		if err != nil {
			return err
		}
		defender, err := u.Agents.GetByID(txCtx, req.GameID, req.DefenderID)
		if err != nil {
			return err
		}
		if err := battle.CanEngage(initiator, defender); err != nil {
			return err
		}

		if err := u.Gate.Check(txCtx, req.GameID, game.CooldownIgnore, req.InitiatorID, req.DefenderID); err != nil {
			if errors.Is(err, cooldown.ErrCoolingDown) {
				return ErrIgnoreShield
			}
			return err
		}
		if err := u.Gate.Check(txCtx, req.GameID, game.CooldownBattle, req.InitiatorID, ""); err != nil {
			if errors.Is(err, cooldown.ErrCoolingDown) {
				return ErrBattleCooldown
			}
			return err
		}

		sideAIDs, sideBIDs := battle.ExpandSides(initiator, defender)
		members, err := u.Agents.ListByIDs(txCtx, req.GameID, append(append([]string{}, sideAIDs...), sideBIDs...))
		if err != nil {
			return err
		}
		byID := make(map[string]game.Agent, len(members))
		for _, m := range members {
			byID[m.ID] = m
		}

		sideA := sideMembers(sideAIDs, byID, initiator.ID)
		sideB := sideMembers(sideBIDs, byID, defender.ID)
		topology := battle.Classify(sideA, sideB)

		now := nowFn()
		b := game.Battle{
			ID:       uuid.NewString(),
			GameID:   req.GameID,
			Topology: topology,
			SideA:    sideA,
			SideB:    sideB,
			Status:   game.BattlePending,
			OpenedAt: now,
			WaitFor:  waitFor,
		}
		if err := u.Battles.Create(txCtx, b); err != nil {
			return err
		}

		evt := game.GameEvent{
			ID:          uuid.NewString(),
			GameID:      req.GameID,
			Type:        game.EventBattleStarted,
			InitiatorID: req.InitiatorID,
			TargetID:    req.DefenderID,
			Message:     battle.StartedMessage(topology, combatants(sideA, byID), combatants(sideB, byID)),
			Metadata: map[string]any{
				"battle_id": b.ID,
				"topology":  string(topology),
				"side_a":    sideA,
				"side_b":    sideB,
			},
			OccurredAt: now,
		}
		if err := u.Events.Append(txCtx, []game.GameEvent{evt}); err != nil {
			return err
		}

		out = OpenResponse{Battle: b}
		return nil
	})
	if err != nil {
		return OpenResponse{}, err
	}
	if u.Metrics != nil {
		u.Metrics.RecordEngagement(out.Battle.Topology)
	}
	return out, nil
}

// sideMembers keeps the principal unconditionally and drops allies that are
// dead or already locked into another battle.
func sideMembers(ids []string, byID map[string]game.Agent, principal string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		ag, ok := byID[id]
		if !ok {
			continue
		}
		if id != principal && (!ag.Alive || ag.Engaged()) {
			continue
		}
		out = append(out, id)
	}
	return out
}

func combatants(ids []string, byID map[string]game.Agent) []battle.Combatant {
	out := make([]battle.Combatant, 0, len(ids))
	for _, id := range ids {
		ag := byID[id]
		out = append(out, battle.Combatant{ID: ag.ID, Name: ag.Name, LedgerID: ag.LedgerID, Tokens: ag.Tokens, Alive: ag.Alive})
	}
	return out
}
