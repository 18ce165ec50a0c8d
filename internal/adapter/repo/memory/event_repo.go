package memory

import (
	"context"
	"sort"

	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/game"
)

type EventRepo struct {
	store *Store
}

func NewEventRepo(store *Store) EventRepo {
	return EventRepo{store: store}
}

func (r EventRepo) Append(_ context.Context, events []game.GameEvent) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.events = append(r.store.events, events...)
	return nil
}

func (r EventRepo) ListByGame(_ context.Context, gameID string, limit int) ([]game.GameEvent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.filter(gameID, "", limit), nil
}

func (r EventRepo) ListByAgent(_ context.Context, gameID, agentID string, limit int) ([]game.GameEvent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.filter(gameID, agentID, limit), nil
}

// filter returns matching events newest first. Callers hold the store lock.
func (r EventRepo) filter(gameID, agentID string, limit int) []game.GameEvent {
	out := make([]game.GameEvent, 0, len(r.store.events))
	for _, evt := range r.store.events {
		if evt.GameID != gameID {
			continue
		}
		if agentID != "" && evt.InitiatorID != agentID && evt.TargetID != agentID {
			continue
		}
		out = append(out, evt)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.After(out[j].OccurredAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
