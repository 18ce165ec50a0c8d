package gormrepo

import (
	"context"
	"errors"
	"time"

	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/adapter/repo/gorm/model"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/app/ports"

	"gorm.io/gorm"
)

type GameRepo struct {
	db *gorm.DB
}

func NewGameRepo(db *gorm.DB) GameRepo {
	return GameRepo{db: db}
}

func (r GameRepo) Create(ctx context.Context, id string, ledgerID int, createdAt time.Time) error {
	m := model.Game{ID: id, LedgerID: int32(ledgerID), CreatedAt: createdAt}
	return getDBFromCtx(ctx, r.db).Create(&m).Error
}

func (r GameRepo) GetByID(ctx context.Context, id string) (ports.GameRecord, error) {
	var m model.Game
	if err := getDBFromCtx(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.GameRecord{}, ports.ErrNotFound
		}
		return ports.GameRecord{}, err
	}
	return ports.GameRecord{ID: m.ID, LedgerID: int(m.LedgerID), CreatedAt: m.CreatedAt}, nil
}
