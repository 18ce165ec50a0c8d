package memory

import (
	"context"
	"sort"
	"time"

	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/app/ports"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/game"
)

type BattleCommitRepo struct {
	store *Store
}

func NewBattleCommitRepo(store *Store) BattleCommitRepo {
	return BattleCommitRepo{store: store}
}

func (r BattleCommitRepo) Create(_ context.Context, commit game.BattleCommit) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.commits[commit.BattleID]; ok {
		return nil
	}
	r.store.commits[commit.BattleID] = commit
	return nil
}

func (r BattleCommitRepo) GetByBattleID(_ context.Context, gameID, battleID string) (game.BattleCommit, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	c, ok := r.store.commits[battleID]
	if !ok || c.GameID != gameID {
		return game.BattleCommit{}, ports.ErrNotFound
	}
	return c, nil
}

func (r BattleCommitRepo) ListUnapplied(_ context.Context, olderThan time.Time, limit int) ([]game.BattleCommit, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]game.BattleCommit, 0, len(r.store.commits))
	for _, c := range r.store.commits {
		if c.AppliedAt != nil || c.CommittedAt.After(olderThan) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CommittedAt.Before(out[j].CommittedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r BattleCommitRepo) MarkApplied(_ context.Context, gameID, battleID string, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.commits[battleID]
	if !ok || c.GameID != gameID {
		return ports.ErrNotFound
	}
	c.AppliedAt = &at
	r.store.commits[battleID] = c
	return nil
}
