package gormrepo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/adapter/repo/gorm/model"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/app/ports"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/game"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BattleCommitRepo struct {
	db *gorm.DB
}

func NewBattleCommitRepo(db *gorm.DB) BattleCommitRepo {
	return BattleCommitRepo{db: db}
}

// Create inserts the outbox marker. Re-inserting the marker for the same
// battle is a no-op so a crashed attempt can safely repeat the write.
func (r BattleCommitRepo) Create(ctx context.Context, commit game.BattleCommit) error {
	deaths, err := json.Marshal(commit.Deaths)
	if err != nil {
		return err
	}
	m := model.BattleCommit{
		BattleID:    commit.BattleID,
		GameID:      commit.GameID,
		WinnerSide:  string(commit.WinnerSide),
		PercentLoss: int32(commit.PercentLoss),
		Deaths:      deaths,
		TxRef:       string(commit.TxRef),
		CommittedAt: commit.CommittedAt,
		AppliedAt:   commit.AppliedAt,
	}
	return getDBFromCtx(ctx, r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&m).Error
}

func (r BattleCommitRepo) GetByBattleID(ctx context.Context, gameID, battleID string) (game.BattleCommit, error) {
	var m model.BattleCommit
	err := getDBFromCtx(ctx, r.db).
		Where("game_id = ? AND battle_id = ?", gameID, battleID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return game.BattleCommit{}, ports.ErrNotFound
		}
		return game.BattleCommit{}, err
	}
	return toDomainCommit(m)
}

func (r BattleCommitRepo) ListUnapplied(ctx context.Context, olderThan time.Time, limit int) ([]game.BattleCommit, error) {
	var rows []model.BattleCommit
	query := getDBFromCtx(ctx, r.db).
		Where("applied_at IS NULL AND committed_at <= ?", olderThan).
		Order("committed_at")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]game.BattleCommit, 0, len(rows))
	for _, m := range rows {
		c, err := toDomainCommit(m)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (r BattleCommitRepo) MarkApplied(ctx context.Context, gameID, battleID string, at time.Time) error {
	res := getDBFromCtx(ctx, r.db).Model(&model.BattleCommit{}).
		Where("game_id = ? AND battle_id = ?", gameID, battleID).
		Update("applied_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func toDomainCommit(m model.BattleCommit) (game.BattleCommit, error) {
	deaths := map[string]bool{}
	if len(m.Deaths) > 0 {
		if err := json.Unmarshal(m.Deaths, &deaths); err != nil {
			return game.BattleCommit{}, err
		}
	}
	return game.BattleCommit{
		BattleID:    m.BattleID,
		GameID:      m.GameID,
		WinnerSide:  game.Side(m.WinnerSide),
		PercentLoss: int(m.PercentLoss),
		Deaths:      deaths,
		TxRef:       game.TxRef(m.TxRef),
		CommittedAt: m.CommittedAt,
		AppliedAt:   m.AppliedAt,
	}, nil
}
