package ports

import (
	"context"
	"time"

	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/game"
)

type GameRepository interface {
	Create(ctx context.Context, id string, ledgerID int, createdAt time.Time) error
	GetByID(ctx context.Context, id string) (GameRecord, error)
}

type GameRecord struct {
	ID        string
	LedgerID  int
	CreatedAt time.Time
}

type AgentRepository interface {
	GetByID(ctx context.Context, gameID, agentID string) (game.Agent, error)
	ListByIDs(ctx context.Context, gameID string, ids []string) ([]game.Agent, error)
	ListByGame(ctx context.Context, gameID string) ([]game.Agent, error)
	Create(ctx context.Context, agent game.Agent) error
	// SaveWithVersion persists the agent only when the stored row still
	// carries expectedVersion, returning ErrConflict otherwise.
	SaveWithVersion(ctx context.Context, agent game.Agent, expectedVersion int64) error
}

type AllianceRepository interface {
	Create(ctx context.Context, alliance game.Alliance) error
	ActiveByAgent(ctx context.Context, gameID, agentID string) (game.Alliance, error)
	ActiveByPair(ctx context.Context, gameID, agentA, agentB string) (game.Alliance, error)
	ListActiveByGame(ctx context.Context, gameID string) ([]game.Alliance, error)
	// MarkBroken flips an active alliance to broken, returning ErrNotFound
	// when no active row matches.
	MarkBroken(ctx context.Context, gameID, allianceID string, at time.Time) error
}

type CooldownRepository interface {
	Create(ctx context.Context, cooldown game.Cooldown) error
	// ActiveExists reports whether any matching cooldown is still binding.
	// Empty targetID matches rows regardless of target.
	ActiveExists(ctx context.Context, gameID string, typ game.CooldownType, agentID, targetID string, now time.Time) (bool, error)
}

type BattleRepository interface {
	Create(ctx context.Context, battle game.Battle) error
	GetByID(ctx context.Context, gameID, battleID string) (game.Battle, error)
	PendingByAgent(ctx context.Context, gameID, agentID string) (game.Battle, error)
	ListPendingByGame(ctx context.Context, gameID string) ([]game.Battle, error)
	// ListDue returns pending battles whose wait window and retry hold have
	// both elapsed, oldest first.
	ListDue(ctx context.Context, now time.Time, limit int) ([]game.Battle, error)
	// MarkResolved transitions pending to resolved, returning ErrConflict
	// when the row is no longer pending.
	MarkResolved(ctx context.Context, gameID, battleID string, winner game.Side, resolvedAt time.Time, tokensMoved uint64, tx game.TxRef) error
	// RecordFailure persists the retry schedule after a failed commit.
	RecordFailure(ctx context.Context, gameID, battleID string, failCount int, nextAttemptAt time.Time) error
}

type BattleCommitRepository interface {
	// Create inserts the outbox marker for a committed battle. Inserting a
	// marker that already exists is a no-op.
	Create(ctx context.Context, commit game.BattleCommit) error
	GetByBattleID(ctx context.Context, gameID, battleID string) (game.BattleCommit, error)
	// ListUnapplied returns commit markers whose projection finalize has
	// not landed yet, oldest first.
	ListUnapplied(ctx context.Context, olderThan time.Time, limit int) ([]game.BattleCommit, error)
	MarkApplied(ctx context.Context, gameID, battleID string, at time.Time) error
}

type EventRepository interface {
	Append(ctx context.Context, events []game.GameEvent) error
	ListByGame(ctx context.Context, gameID string, limit int) ([]game.GameEvent, error)
	ListByAgent(ctx context.Context, gameID, agentID string, limit int) ([]game.GameEvent, error)
}
