// Package memory is an in-process projection store used by unit tests and
// local development. It implements the same ports as the gorm adapter,
// including transaction rollback, so usecase behavior matches postgres.
package memory

import (
	"sync"

	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/app/ports"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/game"
)

type Store struct {
	mu        sync.RWMutex
	games     map[string]ports.GameRecord
	agents    map[string]game.Agent
	alliances map[string]game.Alliance
	cooldowns []game.Cooldown
	battles   map[string]game.Battle
	commits   map[string]game.BattleCommit
	events    []game.GameEvent
}

func NewStore() *Store {
	return &Store{
		games:     make(map[string]ports.GameRecord),
		agents:    make(map[string]game.Agent),
		alliances: make(map[string]game.Alliance),
		battles:   make(map[string]game.Battle),
		commits:   make(map[string]game.BattleCommit),
	}
}

// SeedGame and SeedAgent exist for test setup outside a transaction.
func (s *Store) SeedGame(rec ports.GameRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[rec.ID] = rec
}

func (s *Store) SeedAgent(agent game.Agent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agents[agent.ID] = agent
}

// snapshot copies every table so a failed transaction can restore the
// pre-transaction state.
func (s *Store) snapshot() storeSnapshot {
	snap := storeSnapshot{
		games:     make(map[string]ports.GameRecord, len(s.games)),
		agents:    make(map[string]game.Agent, len(s.agents)),
		alliances: make(map[string]game.Alliance, len(s.alliances)),
		cooldowns: append([]game.Cooldown(nil), s.cooldowns...),
		battles:   make(map[string]game.Battle, len(s.battles)),
		commits:   make(map[string]game.BattleCommit, len(s.commits)),
		events:    append([]game.GameEvent(nil), s.events...),
	}
	for k, v := range s.games {
		snap.games[k] = v
	}
	for k, v := range s.agents {
		snap.agents[k] = v
	}
	for k, v := range s.alliances {
		snap.alliances[k] = v
	}
	for k, v := range s.battles {
		snap.battles[k] = v
	}
	for k, v := range s.commits {
		snap.commits[k] = v
	}
	return snap
}

func (s *Store) restore(snap storeSnapshot) {
	s.games = snap.games
	s.agents = snap.agents
	s.alliances = snap.alliances
	s.cooldowns = snap.cooldowns
	s.battles = snap.battles
	s.commits = snap.commits
	s.events = snap.events
}

type storeSnapshot struct {
	games     map[string]ports.GameRecord
	agents    map[string]game.Agent
	alliances map[string]game.Alliance
	cooldowns []game.Cooldown
	battles   map[string]game.Battle
	commits   map[string]game.BattleCommit
	events    []game.GameEvent
}

// activeAllianceOf returns the live alliance link for an agent, if any.
// Callers must hold the store lock.
func (s *Store) activeAllianceOf(gameID, agentID string) *game.AllianceLink {
	for _, al := range s.alliances {
		if al.GameID != gameID || al.Status != game.AllianceActive {
			continue
		}
		if partner := al.PartnerOf(agentID); partner != "" {
			return &game.AllianceLink{AllianceID: al.ID, AllyID: partner}
		}
	}
	return nil
}

// pendingBattleOf returns the id of the pending battle the agent fights in.
// Callers must hold the store lock.
func (s *Store) pendingBattleOf(gameID, agentID string) string {
	for _, b := range s.battles {
		if b.GameID == gameID && b.Status == game.BattlePending && b.SideOf(agentID) != "" {
			return b.ID
		}
	}
	return ""
}

func (s *Store) agentView(gameID string, agent game.Agent) game.Agent {
	agent.Ally = s.activeAllianceOf(gameID, agent.ID)
	agent.BattleID = s.pendingBattleOf(gameID, agent.ID)
	return agent
}
