package gormrepo

import (
	"context"
	"errors"

	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/adapter/repo/gorm/model"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/app/ports"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/game"

	"gorm.io/gorm"
)

type AgentRepo struct {
	db *gorm.DB
}

func NewAgentRepo(db *gorm.DB) AgentRepo {
	return AgentRepo{db: db}
}

func (r AgentRepo) GetByID(ctx context.Context, gameID, agentID string) (game.Agent, error) {
	var m model.Agent
	db := getDBFromCtx(ctx, r.db)
	if err := db.Where("game_id = ? AND id = ?", gameID, agentID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return game.Agent{}, ports.ErrNotFound
		}
		return game.Agent{}, err
	}
	agents, err := r.attachLinks(ctx, gameID, []game.Agent{toDomainAgent(m)})
	if err != nil {
		return game.Agent{}, err
	}
	return agents[0], nil
}

func (r AgentRepo) ListByIDs(ctx context.Context, gameID string, ids []string) ([]game.Agent, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []model.Agent
	db := getDBFromCtx(ctx, r.db)
	if err := db.Where("game_id = ? AND id IN ?", gameID, ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.attachLinks(ctx, gameID, toDomainAgents(rows))
}

func (r AgentRepo) ListByGame(ctx context.Context, gameID string) ([]game.Agent, error) {
	var rows []model.Agent
	db := getDBFromCtx(ctx, r.db)
	if err := db.Where("game_id = ?", gameID).Order("ledger_id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.attachLinks(ctx, gameID, toDomainAgents(rows))
}

func (r AgentRepo) Create(ctx context.Context, agent game.Agent) error {
	m := toModelAgent(agent)
	return getDBFromCtx(ctx, r.db).Create(&m).Error
}

func (r AgentRepo) SaveWithVersion(ctx context.Context, agent game.Agent, expectedVersion int64) error {
	db := getDBFromCtx(ctx, r.db)
	if expectedVersion == 0 {
		m := toModelAgent(agent)
		return db.Create(&m).Error
	}

	updates := map[string]any{
		"x":          int32(agent.Position.X),
		"y":          int32(agent.Position.Y),
		"tokens":     int64(agent.Tokens),
		"alive":      agent.Alive,
		"died_at":    agent.DiedAt,
		"version":    agent.Version,
		"updated_at": agent.UpdatedAt,
	}
	res := db.Model(&model.Agent{}).
		Where("game_id = ? AND id = ? AND version = ?", agent.GameID, agent.ID, expectedVersion).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrConflict
	}
	return nil
}

// attachLinks stitches the live alliance edge and pending battle membership
// onto each agent. Both come from their own tables so the agent row can
// never hold a stale denormalized flag.
func (r AgentRepo) attachLinks(ctx context.Context, gameID string, agents []game.Agent) ([]game.Agent, error) {
	if len(agents) == 0 {
		return agents, nil
	}
	db := getDBFromCtx(ctx, r.db)

	var alliances []model.Alliance
	if err := db.Where("game_id = ? AND status = ?", gameID, string(game.AllianceActive)).
		Find(&alliances).Error; err != nil {
		return nil, err
	}
	allyOf := make(map[string]game.AllianceLink, len(alliances)*2)
	for _, al := range alliances {
		allyOf[al.InitiatorID] = game.AllianceLink{AllianceID: al.ID, AllyID: al.JoinerID}
		allyOf[al.JoinerID] = game.AllianceLink{AllianceID: al.ID, AllyID: al.InitiatorID}
	}

	var parts []model.BattleParticipant
	if err := db.
		Joins("JOIN battles ON battles.id = battle_participants.battle_id").
		Where("battle_participants.game_id = ? AND battles.status = ?", gameID, string(game.BattlePending)).
		Find(&parts).Error; err != nil {
		return nil, err
	}
	battleOf := make(map[string]string, len(parts))
	for _, p := range parts {
		battleOf[p.AgentID] = p.BattleID
	}

	for i := range agents {
		if link, ok := allyOf[agents[i].ID]; ok {
			l := link
			agents[i].Ally = &l
		}
		agents[i].BattleID = battleOf[agents[i].ID]
	}
	return agents, nil
}

func toDomainAgent(m model.Agent) game.Agent {
	return game.Agent{
		ID:        m.ID,
		GameID:    m.GameID,
		LedgerID:  int(m.LedgerID),
		Name:      m.Name,
		Position:  game.Position{X: int(m.X), Y: int(m.Y)},
		Tokens:    uint64(m.Tokens),
		Alive:     m.Alive,
		DiedAt:    m.DiedAt,
		Version:   m.Version,
		UpdatedAt: m.UpdatedAt,
	}
}

func toDomainAgents(rows []model.Agent) []game.Agent {
	out := make([]game.Agent, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainAgent(m))
	}
	return out
}

func toModelAgent(a game.Agent) model.Agent {
	return model.Agent{
		ID:        a.ID,
		GameID:    a.GameID,
		LedgerID:  int32(a.LedgerID),
		Name:      a.Name,
		X:         int32(a.Position.X),
		Y:         int32(a.Position.Y),
		Tokens:    int64(a.Tokens),
		Alive:     a.Alive,
		DiedAt:    a.DiedAt,
		Version:   a.Version,
		UpdatedAt: a.UpdatedAt,
	}
}
