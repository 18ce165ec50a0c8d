package memory

import (
	"context"
	"time"

	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/app/ports"
)

type GameRepo struct {
	store *Store
}

func NewGameRepo(store *Store) GameRepo {
	return GameRepo{store: store}
}

func (r GameRepo) Create(_ context.Context, id string, ledgerID int, createdAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.games[id]; ok {
		return ports.ErrConflict
	}
	r.store.games[id] = ports.GameRecord{ID: id, LedgerID: ledgerID, CreatedAt: createdAt}
	return nil
}

func (r GameRepo) GetByID(_ context.Context, id string) (ports.GameRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	rec, ok := r.store.games[id]
	if !ok {
		return ports.GameRecord{}, ports.ErrNotFound
	}
	return rec, nil
}
