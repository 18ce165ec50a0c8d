package gormrepo

import (
	"context"
	"time"

	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/adapter/repo/gorm/model"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/game"

	"gorm.io/gorm"
)

type CooldownRepo struct {
	db *gorm.DB
}

func NewCooldownRepo(db *gorm.DB) CooldownRepo {
	return CooldownRepo{db: db}
}

func (r CooldownRepo) Create(ctx context.Context, cooldown game.Cooldown) error {
	m := model.Cooldown{
		ID:        cooldown.ID,
		GameID:    cooldown.GameID,
		Type:      string(cooldown.Type),
		AgentID:   cooldown.AgentID,
		TargetID:  cooldown.TargetID,
		EndsAt:    cooldown.EndsAt,
		CreatedAt: cooldown.CreatedAt,
	}
	return getDBFromCtx(ctx, r.db).Create(&m).Error
}

// ActiveExists is the whole cooldown gate: rows are never deleted, a binding
// restriction is simply one whose ends_at is still ahead of now.
func (r CooldownRepo) ActiveExists(ctx context.Context, gameID string, typ game.CooldownType, agentID, targetID string, now time.Time) (bool, error) {
	query := getDBFromCtx(ctx, r.db).Model(&model.Cooldown{}).
		Where("game_id = ? AND type = ? AND agent_id = ? AND ends_at > ?",
			gameID, string(typ), agentID, now)
	if targetID != "" {
		query = query.Where("target_id = ?", targetID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
