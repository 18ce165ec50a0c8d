package memory

import (
	"context"
	"time"

	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/app/ports"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/game"
)

type AllianceRepo struct {
	store *Store
}

func NewAllianceRepo(store *Store) AllianceRepo {
	return AllianceRepo{store: store}
}

func (r AllianceRepo) Create(_ context.Context, alliance game.Alliance) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.alliances[alliance.ID]; ok {
		return ports.ErrConflict
	}
	r.store.alliances[alliance.ID] = alliance
	return nil
}

func (r AllianceRepo) ActiveByAgent(_ context.Context, gameID, agentID string) (game.Alliance, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, al := range r.store.alliances {
		if al.GameID == gameID && al.Status == game.AllianceActive && al.PartnerOf(agentID) != "" {
			return al, nil
		}
	}
	return game.Alliance{}, ports.ErrNotFound
}

func (r AllianceRepo) ActiveByPair(_ context.Context, gameID, agentA, agentB string) (game.Alliance, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, al := range r.store.alliances {
		if al.GameID == gameID && al.Status == game.AllianceActive && al.Includes(agentA, agentB) {
			return al, nil
		}
	}
	return game.Alliance{}, ports.ErrNotFound
}

func (r AllianceRepo) ListActiveByGame(_ context.Context, gameID string) ([]game.Alliance, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]game.Alliance, 0, len(r.store.alliances))
	for _, al := range r.store.alliances {
		if al.GameID == gameID && al.Status == game.AllianceActive {
			out = append(out, al)
		}
	}
	return out, nil
}

func (r AllianceRepo) MarkBroken(_ context.Context, gameID, allianceID string, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	al, ok := r.store.alliances[allianceID]
	if !ok || al.GameID != gameID || al.Status != game.AllianceActive {
		return ports.ErrNotFound
	}
	al.Status = game.AllianceBroken
	al.BrokenAt = &at
	r.store.alliances[allianceID] = al
	return nil
}
