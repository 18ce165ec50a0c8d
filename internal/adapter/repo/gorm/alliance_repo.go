package gormrepo

import (
	"context"
	"errors"
	"time"

	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/adapter/repo/gorm/model"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/app/ports"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/game"

	"gorm.io/gorm"
)

type AllianceRepo struct {
	db *gorm.DB
}

func NewAllianceRepo(db *gorm.DB) AllianceRepo {
	return AllianceRepo{db: db}
}

func (r AllianceRepo) Create(ctx context.Context, alliance game.Alliance) error {
	m := model.Alliance{
		ID:          alliance.ID,
		GameID:      alliance.GameID,
		InitiatorID: alliance.InitiatorID,
		JoinerID:    alliance.JoinerID,
		Status:      string(alliance.Status),
		TxRef:       string(alliance.TxRef),
		FormedAt:    alliance.FormedAt,
		BrokenAt:    alliance.BrokenAt,
	}
	return getDBFromCtx(ctx, r.db).Create(&m).Error
}

func (r AllianceRepo) ActiveByAgent(ctx context.Context, gameID, agentID string) (game.Alliance, error) {
	var m model.Alliance
	err := getDBFromCtx(ctx, r.db).
		Where("game_id = ? AND status = ? AND (initiator_id = ? OR joiner_id = ?)",
			gameID, string(game.AllianceActive), agentID, agentID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return game.Alliance{}, ports.ErrNotFound
		}
		return game.Alliance{}, err
	}
	return toDomainAlliance(m), nil
}

func (r AllianceRepo) ActiveByPair(ctx context.Context, gameID, agentA, agentB string) (game.Alliance, error) {
	var m model.Alliance
	err := getDBFromCtx(ctx, r.db).
		Where("game_id = ? AND status = ? AND ((initiator_id = ? AND joiner_id = ?) OR (initiator_id = ? AND joiner_id = ?))",
			gameID, string(game.AllianceActive), agentA, agentB, agentB, agentA).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return game.Alliance{}, ports.ErrNotFound
		}
		return game.Alliance{}, err
	}
	return toDomainAlliance(m), nil
}

func (r AllianceRepo) ListActiveByGame(ctx context.Context, gameID string) ([]game.Alliance, error) {
	var rows []model.Alliance
	err := getDBFromCtx(ctx, r.db).
		Where("game_id = ? AND status = ?", gameID, string(game.AllianceActive)).
		Order("formed_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]game.Alliance, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainAlliance(m))
	}
	return out, nil
}

func (r AllianceRepo) MarkBroken(ctx context.Context, gameID, allianceID string, at time.Time) error {
	res := getDBFromCtx(ctx, r.db).Model(&model.Alliance{}).
		Where("game_id = ? AND id = ? AND status = ?", gameID, allianceID, string(game.AllianceActive)).
		Updates(map[string]any{
			"status":    string(game.AllianceBroken),
			"broken_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func toDomainAlliance(m model.Alliance) game.Alliance {
	return game.Alliance{
		ID:          m.ID,
		GameID:      m.GameID,
		InitiatorID: m.InitiatorID,
		JoinerID:    m.JoinerID,
		Status:      game.AllianceStatus(m.Status),
		TxRef:       game.TxRef(m.TxRef),
		FormedAt:    m.FormedAt,
		BrokenAt:    m.BrokenAt,
	}
}
