package gormrepo

import (
	"context"
	"encoding/json"

	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/adapter/repo/gorm/model"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/game"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventRepo struct {
	db *gorm.DB
}

func NewEventRepo(db *gorm.DB) EventRepo {
	return EventRepo{db: db}
}

func (r EventRepo) Append(ctx context.Context, events []game.GameEvent) error {
	if len(events) == 0 {
		return nil
	}
	rows := make([]model.GameEvent, 0, len(events))
	for _, e := range events {
		b, _ := json.Marshal(e.Metadata)
		rows = append(rows, model.GameEvent{
			ID:          e.ID,
			GameID:      e.GameID,
			Type:        e.Type,
			InitiatorID: e.InitiatorID,
			TargetID:    e.TargetID,
			Message:     e.Message,
			Metadata:    b,
			OccurredAt:  e.OccurredAt,
		})
	}
	return getDBFromCtx(ctx, r.db).Create(&rows).Error
}

func (r EventRepo) ListByGame(ctx context.Context, gameID string, limit int) ([]game.GameEvent, error) {
	rows := []model.GameEvent{}
	query := getDBFromCtx(ctx, r.db).
		Where("game_id = ?", gameID).
		Clauses(clause.OrderBy{
			Columns: []clause.OrderByColumn{{Column: clause.Column{Name: "occurred_at"}, Desc: true}},
		})
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainEvents(rows), nil
}

func (r EventRepo) ListByAgent(ctx context.Context, gameID, agentID string, limit int) ([]game.GameEvent, error) {
	rows := []model.GameEvent{}
	query := getDBFromCtx(ctx, r.db).
		Where("game_id = ? AND (initiator_id = ? OR target_id = ?)", gameID, agentID, agentID).
		Clauses(clause.OrderBy{
			Columns: []clause.OrderByColumn{{Column: clause.Column{Name: "occurred_at"}, Desc: true}},
		})
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainEvents(rows), nil
}

func toDomainEvents(rows []model.GameEvent) []game.GameEvent {
	out := make([]game.GameEvent, 0, len(rows))
	for _, row := range rows {
		var metadata map[string]any
		if len(row.Metadata) > 0 {
			_ = json.Unmarshal(row.Metadata, &metadata)
		}
		out = append(out, game.GameEvent{
			ID:          row.ID,
			GameID:      row.GameID,
			Type:        row.Type,
			InitiatorID: row.InitiatorID,
			TargetID:    row.TargetID,
			Message:     row.Message,
			Metadata:    metadata,
			OccurredAt:  row.OccurredAt,
		})
	}
	return out
}
