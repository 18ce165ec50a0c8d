package resolve

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/app/ports"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/battle"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/game"
)

// finalizeCommit applies one ledger-committed outcome to the projection in a
// single transaction: token movement, death flags, alliance dissolution,
// battle cooldowns, the resolved transition, narrative events, and the
// applied stamp on the commit marker. Re-running it for an already resolved
// battle only stamps the marker.
func (u UseCase) finalizeCommit(ctx context.Context, commit game.BattleCommit) (Response, error) {
	var out Response
	err := u.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		b, err := u.Battles.GetByID(txCtx, commit.GameID, commit.BattleID)
		if err != nil {
			return err
		}
		now := u.now()

		if b.Status == game.BattleResolved {
			if commit.AppliedAt == nil {
				if err := u.Commits.MarkApplied(txCtx, commit.GameID, commit.BattleID, now); err != nil {
					return err
				}
			}
			out = Response{Battle: b, AlreadyResolved: true}
			return nil
		}

		agents, err := u.Agents.ListByIDs(txCtx, b.GameID, b.Participants())
		if err != nil {
			return err
		}
		byID := make(map[string]game.Agent, len(agents))
		for _, ag := range agents {
			byID[ag.ID] = ag
		}
		sides, err := battle.SidesFrom(b, byID)
		if err != nil {
			return err
		}

		winner := commit.WinnerSide
		debits, credits, total := battle.Spoils(sides, winner, commit.PercentLoss)
		walkover := commit.PercentLoss == 0
		winners := sides.Living(winner)
		losers := sides.Living(winner.Opponent())

		deaths := make([]string, 0, len(commit.Deaths))
		for _, id := range b.Participants() {
			ag := byID[id]
			changed := false
			if d, ok := debits[ag.ID]; ok {
				if d > ag.Tokens {
					d = ag.Tokens
				}
				ag.Tokens -= d
				changed = true
			}
			if c, ok := credits[ag.ID]; ok {
				ag.Tokens += c
				changed = true
			}
			if commit.Deaths[ag.ID] && ag.Alive {
				ag.Alive = false
				diedAt := now
				ag.DiedAt = &diedAt
				deaths = append(deaths, ag.ID)
				changed = true
			}
			if changed {
				expected := ag.Version
				ag.Version++
				ag.UpdatedAt = now
				if err := u.Agents.SaveWithVersion(txCtx, ag, expected); err != nil {
					return err
				}
				byID[ag.ID] = ag
			}
		}

		events := make([]game.GameEvent, 0, 4+len(deaths))

		// Death dissolves the fallen agent's alliance without a re-ally hold
		// on the survivor.
		for _, id := range deaths {
			al, err := u.Alliances.ActiveByAgent(txCtx, b.GameID, id)
			if errors.Is(err, ports.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if err := u.Alliances.MarkBroken(txCtx, b.GameID, al.ID, now); err != nil {
				return err
			}
			partnerID := al.PartnerOf(id)
			partnerName := partnerID
			if p, ok := byID[partnerID]; ok {
				partnerName = p.Name
			} else if p, err := u.Agents.GetByID(txCtx, b.GameID, partnerID); err == nil {
				partnerName = p.Name
			}
			events = append(events, game.GameEvent{
				ID:          uuid.NewString(),
				GameID:      b.GameID,
				Type:        game.EventAllianceBroken,
				InitiatorID: id,
				TargetID:    partnerID,
				Message:     "The alliance of " + byID[id].Name + " and " + partnerName + " ended with " + byID[id].Name + "'s death",
				Metadata:    map[string]any{"alliance_id": al.ID, "cause": "death"},
				OccurredAt:  now,
			})
		}

		// Survivors on both sides leave with a fresh battle cooldown.
		for _, id := range b.Participants() {
			if ag := byID[id]; ag.Alive {
				if _, err := u.Gate.Issue(txCtx, b.GameID, game.CooldownBattle, id, ""); err != nil {
					return err
				}
			}
		}

		if err := u.Battles.MarkResolved(txCtx, b.GameID, b.ID, winner, now, total, commit.TxRef); err != nil {
			return err
		}

		if walkover {
			events = append(events, game.GameEvent{
				ID:         uuid.NewString(),
				GameID:     b.GameID,
				Type:       game.EventBattleWalkover,
				Message:    battle.WalkoverMessage(winners, sides.Side(winner.Opponent())),
				Metadata:   map[string]any{"battle_id": b.ID, "winner_side": string(winner), "tx": string(commit.TxRef)},
				OccurredAt: now,
			})
		} else {
			events = append(events, game.GameEvent{
				ID:      uuid.NewString(),
				GameID:  b.GameID,
				Type:    game.EventBattleOutcome,
				Message: battle.OutcomeMessage(b.Topology, winners, losers, commit.PercentLoss),
				Metadata: map[string]any{
					"battle_id":    b.ID,
					"topology":     string(b.Topology),
					"winner_side":  string(winner),
					"percent_loss": commit.PercentLoss,
					"tx":           string(commit.TxRef),
				},
				OccurredAt: now,
			})
			events = append(events, game.GameEvent{
				ID:         uuid.NewString(),
				GameID:     b.GameID,
				Type:       game.EventBattleSpoils,
				Message:    battle.SpoilsMessage(winners, total),
				Metadata:   map[string]any{"battle_id": b.ID, "tokens_moved": total},
				OccurredAt: now,
			})
		}
		for _, id := range deaths {
			events = append(events, game.GameEvent{
				ID:         uuid.NewString(),
				GameID:     b.GameID,
				Type:       game.EventAgentDeath,
				TargetID:   id,
				Message:    battle.DeathMessage(byID[id].Name),
				Metadata:   map[string]any{"battle_id": b.ID},
				OccurredAt: now,
			})
		}
		if err := u.Events.Append(txCtx, events); err != nil {
			return err
		}

		if err := u.Commits.MarkApplied(txCtx, commit.GameID, commit.BattleID, now); err != nil {
			return err
		}

		resolved := b
		resolved.Status = game.BattleResolved
		resolved.WinnerSide = winner
		resolved.ResolvedAt = &now
		resolved.TokensMoved = total
		resolved.TxRef = commit.TxRef
		out = Response{Battle: resolved, TokensMoved: total, Deaths: deaths, Walkover: walkover}
		return nil
	})
	if err != nil {
		return Response{}, err
	}
	if u.Metrics != nil && !out.AlreadyResolved {
		u.Metrics.RecordResolution(out.Battle.Topology, out.Walkover)
		for range out.Deaths {
			u.Metrics.RecordDeath()
		}
	}
	return out, nil
}
