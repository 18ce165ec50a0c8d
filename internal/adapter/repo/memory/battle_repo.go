package memory

import (
	"context"
	"sort"
	"time"

	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/app/ports"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/battle"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/game"
)

type BattleRepo struct {
	store *Store
}

func NewBattleRepo(store *Store) BattleRepo {
	return BattleRepo{store: store}
}

func (r BattleRepo) Create(_ context.Context, b game.Battle) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.battles[b.ID]; ok {
		return ports.ErrConflict
	}
	r.store.battles[b.ID] = b
	return nil
}

func (r BattleRepo) GetByID(_ context.Context, gameID, battleID string) (game.Battle, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	b, ok := r.store.battles[battleID]
	if !ok || b.GameID != gameID {
		return game.Battle{}, ports.ErrNotFound
	}
	return b, nil
}

func (r BattleRepo) PendingByAgent(_ context.Context, gameID, agentID string) (game.Battle, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, b := range r.store.battles {
		if b.GameID == gameID && b.Status == game.BattlePending && b.SideOf(agentID) != "" {
			return b, nil
		}
	}
	return game.Battle{}, ports.ErrNotFound
}

func (r BattleRepo) ListPendingByGame(_ context.Context, gameID string) ([]game.Battle, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]game.Battle, 0, len(r.store.battles))
	for _, b := range r.store.battles {
		if b.GameID == gameID && b.Status == game.BattlePending {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OpenedAt.Before(out[j].OpenedAt) })
	return out, nil
}

func (r BattleRepo) ListDue(_ context.Context, now time.Time, limit int) ([]game.Battle, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	due := make([]game.Battle, 0, len(r.store.battles))
	for _, b := range r.store.battles {
		if battle.Due(b, now) {
			due = append(due, b)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].OpenedAt.Before(due[j].OpenedAt) })
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (r BattleRepo) MarkResolved(_ context.Context, gameID, battleID string, winner game.Side, resolvedAt time.Time, tokensMoved uint64, tx game.TxRef) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	b, ok := r.store.battles[battleID]
	if !ok || b.GameID != gameID {
		return ports.ErrNotFound
	}
	if b.Status != game.BattlePending {
		return ports.ErrConflict
	}
	b.Status = game.BattleResolved
	b.WinnerSide = winner
	b.ResolvedAt = &resolvedAt
	b.TokensMoved = tokensMoved
	b.TxRef = tx
	r.store.battles[battleID] = b
	return nil
}

func (r BattleRepo) RecordFailure(_ context.Context, gameID, battleID string, failCount int, nextAttemptAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	b, ok := r.store.battles[battleID]
	if !ok || b.GameID != gameID {
		return ports.ErrNotFound
	}
	b.FailCount = failCount
	b.NextAttemptAt = nextAttemptAt
	r.store.battles[battleID] = b
	return nil
}
