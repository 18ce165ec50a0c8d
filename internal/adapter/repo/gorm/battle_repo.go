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

type BattleRepo struct {
	db *gorm.DB
}

func NewBattleRepo(db *gorm.DB) BattleRepo {
	return BattleRepo{db: db}
}

func (r BattleRepo) Create(ctx context.Context, battle game.Battle) error {
	db := getDBFromCtx(ctx, r.db)
	m := model.Battle{
		ID:             battle.ID,
		GameID:         battle.GameID,
		Topology:       string(battle.Topology),
		Status:         string(battle.Status),
		OpenedAt:       battle.OpenedAt,
		WaitForSeconds: int64(battle.WaitFor / time.Second),
		TokensMoved:    int64(battle.TokensMoved),
	}
	if err := db.Create(&m).Error; err != nil {
		return err
	}

	parts := make([]model.BattleParticipant, 0, len(battle.SideA)+len(battle.SideB))
	for i, id := range battle.SideA {
		parts = append(parts, model.BattleParticipant{
			BattleID: battle.ID, AgentID: id, GameID: battle.GameID,
			Side: string(game.SideA), Ordinal: int32(i),
		})
	}
	for i, id := range battle.SideB {
		parts = append(parts, model.BattleParticipant{
			BattleID: battle.ID, AgentID: id, GameID: battle.GameID,
			Side: string(game.SideB), Ordinal: int32(i),
		})
	}
	return db.Create(&parts).Error
}

func (r BattleRepo) GetByID(ctx context.Context, gameID, battleID string) (game.Battle, error) {
	var m model.Battle
	db := getDBFromCtx(ctx, r.db)
	if err := db.Where("game_id = ? AND id = ?", gameID, battleID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return game.Battle{}, ports.ErrNotFound
		}
		return game.Battle{}, err
	}
	battles, err := r.attachParticipants(ctx, []game.Battle{toDomainBattle(m)})
	if err != nil {
		return game.Battle{}, err
	}
	return battles[0], nil
}

func (r BattleRepo) PendingByAgent(ctx context.Context, gameID, agentID string) (game.Battle, error) {
	var part model.BattleParticipant
	db := getDBFromCtx(ctx, r.db)
	err := db.
		Joins("JOIN battles ON battles.id = battle_participants.battle_id").
		Where("battle_participants.game_id = ? AND battle_participants.agent_id = ? AND battles.status = ?",
			gameID, agentID, string(game.BattlePending)).
		First(&part).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return game.Battle{}, ports.ErrNotFound
		}
		return game.Battle{}, err
	}
	return r.GetByID(ctx, gameID, part.BattleID)
}

func (r BattleRepo) ListPendingByGame(ctx context.Context, gameID string) ([]game.Battle, error) {
	var rows []model.Battle
	db := getDBFromCtx(ctx, r.db)
	err := db.Where("game_id = ? AND status = ?", gameID, string(game.BattlePending)).
		Order("opened_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return r.attachParticipants(ctx, toDomainBattles(rows))
}

func (r BattleRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]game.Battle, error) {
	var rows []model.Battle
	query := getDBFromCtx(ctx, r.db).
		Where("status = ?", string(game.BattlePending)).
		Where("opened_at + wait_for_seconds * interval '1 second' <= ?", now).
		Where("next_attempt_at IS NULL OR next_attempt_at <= ?", now).
		Order("opened_at")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.attachParticipants(ctx, toDomainBattles(rows))
}

func (r BattleRepo) MarkResolved(ctx context.Context, gameID, battleID string, winner game.Side, resolvedAt time.Time, tokensMoved uint64, tx game.TxRef) error {
	res := getDBFromCtx(ctx, r.db).Model(&model.Battle{}).
		Where("game_id = ? AND id = ? AND status = ?", gameID, battleID, string(game.BattlePending)).
		Updates(map[string]any{
			"status":       string(game.BattleResolved),
			"winner_side":  string(winner),
			"resolved_at":  resolvedAt,
			"tokens_moved": int64(tokensMoved),
			"tx_ref":       string(tx),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := getDBFromCtx(ctx, r.db).Model(&model.Battle{}).
			Where("game_id = ? AND id = ?", gameID, battleID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ports.ErrNotFound
		}
		return ports.ErrConflict
	}
	return nil
}

func (r BattleRepo) RecordFailure(ctx context.Context, gameID, battleID string, failCount int, nextAttemptAt time.Time) error {
	res := getDBFromCtx(ctx, r.db).Model(&model.Battle{}).
		Where("game_id = ? AND id = ?", gameID, battleID).
		Updates(map[string]any{
			"fail_count":      int32(failCount),
			"next_attempt_at": nextAttemptAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r BattleRepo) attachParticipants(ctx context.Context, battles []game.Battle) ([]game.Battle, error) {
	if len(battles) == 0 {
		return battles, nil
	}
	ids := make([]string, 0, len(battles))
	for _, b := range battles {
		ids = append(ids, b.ID)
	}

	var parts []model.BattleParticipant
	err := getDBFromCtx(ctx, r.db).
		Where("battle_id IN ?", ids).
		Order("battle_id, side, ordinal").
		Find(&parts).Error
	if err != nil {
		return nil, err
	}

	sideA := make(map[string][]string, len(battles))
	sideB := make(map[string][]string, len(battles))
	for _, p := range parts {
		if p.Side == string(game.SideA) {
			sideA[p.BattleID] = append(sideA[p.BattleID], p.AgentID)
		} else {
			sideB[p.BattleID] = append(sideB[p.BattleID], p.AgentID)
		}
	}
	for i := range battles {
		battles[i].SideA = sideA[battles[i].ID]
		battles[i].SideB = sideB[battles[i].ID]
	}
	return battles, nil
}

func toDomainBattle(m model.Battle) game.Battle {
	b := game.Battle{
		ID:          m.ID,
		GameID:      m.GameID,
		Topology:    game.Topology(m.Topology),
		Status:      game.BattleStatus(m.Status),
		OpenedAt:    m.OpenedAt,
		WaitFor:     time.Duration(m.WaitForSeconds) * time.Second,
		WinnerSide:  game.Side(m.WinnerSide),
		ResolvedAt:  m.ResolvedAt,
		TokensMoved: uint64(m.TokensMoved),
		TxRef:       game.TxRef(m.TxRef),
		FailCount:   int(m.FailCount),
	}
	if m.NextAttemptAt != nil {
		b.NextAttemptAt = *m.NextAttemptAt
	}
	return b
}

func toDomainBattles(rows []model.Battle) []game.Battle {
	out := make([]game.Battle, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainBattle(m))
	}
	return out
}
