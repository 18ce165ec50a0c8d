package alliance

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
	ErrInvalidRequest   = errors.New("invalid alliance request")
	ErrAlreadyAllied    = errors.New("agent already holds an active alliance")
	ErrAllianceCooldown = errors.New("agent is on alliance cooldown")
	ErrEngagedAgent     = errors.New("agent is locked in a pending battle")
	ErrNotAllied        = errors.New("agent holds no active alliance")
)

// FormUseCase pairs two agents. All projection writes and the ledger call
// share one transaction with the ledger call last, so either both systems
// record the alliance or neither does.
type FormUseCase struct {
	TxManager ports.TxManager
	Games     ports.GameRepository
	Agents    ports.AgentRepository
	Alliances ports.AllianceRepository
	Events    ports.EventRepository
	Ledger    ports.LedgerClient
	Gate      cooldown.Gate
	Metrics   ports.EngineMetrics
	Now       func() time.Time
}

func (u FormUseCase) Execute(ctx context.Context, req FormRequest) (FormResponse, error) {
	req.GameID = strings.TrimSpace(req.GameID)
	req.InitiatorID = strings.TrimSpace(req.InitiatorID)
	req.JoinerID = strings.TrimSpace(req.JoinerID)
	if req.GameID == "" || req.InitiatorID == "" || req.JoinerID == "" {
		return FormResponse{}, ErrInvalidRequest
	}
	if req.InitiatorID == req.JoinerID {
		return FormResponse{}, battle.ErrSelfTarget
	}

	nowFn := u.Now
	if nowFn == nil {
		nowFn = time.Now
	}

	var out FormResponse
	err := u.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		initiator, err := u.Agents.GetByID(txCtx, req.GameID, req.InitiatorID)
		if err != nil {
			return err
		}
		joiner, err := u.Agents.GetByID(txCtx, req.GameID, req.JoinerID)
		if err != nil {
			return err
		}
		if !initiator.Alive {
			return battle.ErrAgentDead
		}
		if !joiner.Alive {
			return battle.ErrTargetDead
		}

		// Re-forming a standing alliance succeeds without touching anything.
		existing, err := u.Alliances.ActiveByPair(txCtx, req.GameID, req.InitiatorID, req.JoinerID)
		if err == nil {
			out = FormResponse{Alliance: existing, Existing: true}
			return nil
		}
		if !errors.Is(err, ports.ErrNotFound) {
			return err
		}

		if initiator.Allied() || joiner.Allied() {
			return ErrAlreadyAllied
		}
		if initiator.Engaged() || joiner.Engaged() {
			return ErrEngagedAgent
		}

		// The alliance cooldown binds its owner to the type, not to a
		// particular partner: an agent holding one may not form with anyone.
		if err := u.Gate.Check(txCtx, req.GameID, game.CooldownAlliance, req.InitiatorID, ""); err != nil {
			if errors.Is(err, cooldown.ErrCoolingDown) {
				return ErrAllianceCooldown
			}
			return err
		}

		now := nowFn()
		al := game.Alliance{
			ID:          uuid.NewString(),
			GameID:      req.GameID,
			InitiatorID: req.InitiatorID,
			JoinerID:    req.JoinerID,
			Status:      game.AllianceActive,
			FormedAt:    now,
		}
		if err := u.Alliances.Create(txCtx, al); err != nil {
			return err
		}

		// Forming commits the initiator for the cooldown window: neither a
		// break nor another formation goes through until it lapses.
		cd, err := u.Gate.Issue(txCtx, req.GameID, game.CooldownAlliance, req.InitiatorID, req.JoinerID)
		if err != nil {
			return err
		}

		gameRec, err := u.Games.GetByID(txCtx, req.GameID)
		if err != nil {
			return err
		}
		receipt, err := u.Ledger.FormAlliance(txCtx, gameRec.LedgerID, initiator.LedgerID, joiner.LedgerID)
		if errors.Is(err, ports.ErrAlreadyCommitted) {
			// The ledger already holds this pairing from an earlier diverged
			// attempt; keeping the local writes heals the projection.
			receipt = ports.Receipt{}
		} else if err != nil {
			return err
		}
		al.TxRef = receipt.Tx

		evt := game.GameEvent{
			ID:          uuid.NewString(),
			GameID:      req.GameID,
			Type:        game.EventAllianceFormed,
			InitiatorID: req.InitiatorID,
			TargetID:    req.JoinerID,
			Message:     initiator.Name + " and " + joiner.Name + " swore an alliance",
			Metadata:    map[string]any{"alliance_id": al.ID, "tx": string(receipt.Tx)},
			OccurredAt:  now,
		}
		if err := u.Events.Append(txCtx, []game.GameEvent{evt}); err != nil {
			return err
		}

		out = FormResponse{Alliance: al, CooldownEndsAt: cd.EndsAt}
		return nil
	})
	if err != nil {
		return FormResponse{}, err
	}
	if u.Metrics != nil && !out.Existing {
		u.Metrics.RecordAllianceFormed()
	}
	return out, nil
}

// BreakUseCase dissolves the caller's active alliance and starts the re-ally
// cooldown for both former members.
type BreakUseCase struct {
	TxManager ports.TxManager
	Games     ports.GameRepository
	Agents    ports.AgentRepository
	Alliances ports.AllianceRepository
	Events    ports.EventRepository
	Ledger    ports.LedgerClient
	Gate      cooldown.Gate
	Metrics   ports.EngineMetrics
	Now       func() time.Time
}

func (u BreakUseCase) Execute(ctx context.Context, req BreakRequest) (BreakResponse, error) {
	req.GameID = strings.TrimSpace(req.GameID)
	req.AgentID = strings.TrimSpace(req.AgentID)
	if req.GameID == "" || req.AgentID == "" {
		return BreakResponse{}, ErrInvalidRequest
	}

	nowFn := u.Now
	if nowFn == nil {
		nowFn = time.Now
	}

	var out BreakResponse
	err := u.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		agent, err := u.Agents.GetByID(txCtx, req.GameID, req.AgentID)
		if err != nil {
			return err
		}

		al, err := u.Alliances.ActiveByAgent(txCtx, req.GameID, req.AgentID)
		if errors.Is(err, ports.ErrNotFound) {
			return ErrNotAllied
		}
		if err != nil {
			return err
		}

		// An unexpired alliance cooldown pins the agent to the pairing; the
		// break goes through only once it lapses.
		if err := u.Gate.Check(txCtx, req.GameID, game.CooldownAlliance, req.AgentID, ""); err != nil {
			if errors.Is(err, cooldown.ErrCoolingDown) {
				return ErrAllianceCooldown
			}
			return err
		}

		partnerID := al.PartnerOf(req.AgentID)
		partner, err := u.Agents.GetByID(txCtx, req.GameID, partnerID)
		if err != nil {
			return err
		}

		now := nowFn()
		if err := u.Alliances.MarkBroken(txCtx, req.GameID, al.ID, now); err != nil {
			return err
		}
		cd, err := u.Gate.IssuePair(txCtx, req.GameID, game.CooldownAlliance, req.AgentID, partnerID)
		if err != nil {
			return err
		}

		gameRec, err := u.Games.GetByID(txCtx, req.GameID)
		if err != nil {
			return err
		}
		if _, err := u.Ledger.BreakAlliance(txCtx, gameRec.LedgerID, agent.LedgerID, partner.LedgerID); err != nil {
			if !errors.Is(err, ports.ErrAlreadyCommitted) {
				return err
			}
			// The ledger dissolved this pairing in an earlier diverged
			// attempt; the local break completes the repair.
		}

		evt := game.GameEvent{
			ID:          uuid.NewString(),
			GameID:      req.GameID,
			Type:        game.EventAllianceBroken,
			InitiatorID: req.AgentID,
			TargetID:    partnerID,
			Message:     agent.Name + " broke the alliance with " + partner.Name,
			Metadata:    map[string]any{"alliance_id": al.ID, "cooldown_ends_at": cd.EndsAt},
			OccurredAt:  now,
		}
		if err := u.Events.Append(txCtx, []game.GameEvent{evt}); err != nil {
			return err
		}

		broken := al
		broken.Status = game.AllianceBroken
		broken.BrokenAt = &now
		out = BreakResponse{Alliance: broken, CooldownEndsAt: cd.EndsAt}
		return nil
	})
	if err != nil {
		return BreakResponse{}, err
	}
	if u.Metrics != nil {
		u.Metrics.RecordAllianceBroken()
	}
	return out, nil
}
