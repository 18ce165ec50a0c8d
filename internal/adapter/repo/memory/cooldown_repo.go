package memory

import (
	"context"
	"time"

	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/game"
)

type CooldownRepo struct {
	store *Store
}

func NewCooldownRepo(store *Store) CooldownRepo {
	return CooldownRepo{store: store}
}

func (r CooldownRepo) Create(_ context.Context, cooldown game.Cooldown) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.cooldowns = append(r.store.cooldowns, cooldown)
	return nil
}

func (r CooldownRepo) ActiveExists(_ context.Context, gameID string, typ game.CooldownType, agentID, targetID string, now time.Time) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, cd := range r.store.cooldowns {
		if cd.GameID != gameID || cd.Type != typ || cd.AgentID != agentID {
			continue
		}
		if targetID != "" && cd.TargetID != targetID {
			continue
		}
		if cd.ActiveAt(now) {
			return true, nil
		}
	}
	return false, nil
}
