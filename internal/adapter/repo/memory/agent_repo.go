package memory

import (
	"context"
	"sort"

	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/app/ports"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/game"
)

type AgentRepo struct {
	store *Store
}

func NewAgentRepo(store *Store) AgentRepo {
	return AgentRepo{store: store}
}

func (r AgentRepo) GetByID(_ context.Context, gameID, agentID string) (game.Agent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	ag, ok := r.store.agents[agentID]
	if !ok || ag.GameID != gameID {
		return game.Agent{}, ports.ErrNotFound
	}
	return r.store.agentView(gameID, ag), nil
}

func (r AgentRepo) ListByIDs(_ context.Context, gameID string, ids []string) ([]game.Agent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]game.Agent, 0, len(ids))
	for _, id := range ids {
		if ag, ok := r.store.agents[id]; ok && ag.GameID == gameID {
			out = append(out, r.store.agentView(gameID, ag))
		}
	}
	return out, nil
}

func (r AgentRepo) ListByGame(_ context.Context, gameID string) ([]game.Agent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]game.Agent, 0, len(r.store.agents))
	for _, ag := range r.store.agents {
		if ag.GameID == gameID {
			out = append(out, r.store.agentView(gameID, ag))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LedgerID < out[j].LedgerID })
	return out, nil
}

func (r AgentRepo) Create(_ context.Context, agent game.Agent) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.agents[agent.ID]; ok {
		return ports.ErrConflict
	}
	agent.Ally = nil
	agent.BattleID = ""
	r.store.agents[agent.ID] = agent
	return nil
}

func (r AgentRepo) SaveWithVersion(_ context.Context, agent game.Agent, expectedVersion int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	current, ok := r.store.agents[agent.ID]
	if !ok {
		if expectedVersion != 0 {
			return ports.ErrConflict
		}
		agent.Ally = nil
		agent.BattleID = ""
		r.store.agents[agent.ID] = agent
		return nil
	}
	if current.Version != expectedVersion {
		return ports.ErrConflict
	}
	agent.Ally = nil
	agent.BattleID = ""
	r.store.agents[agent.ID] = agent
	return nil
}
