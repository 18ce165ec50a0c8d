package ports

import (
	"context"

	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/game"
)

type Receipt struct {
	Tx game.TxRef
}

// BattleOutcome is the ledger's recorded result for one battle reference,
// read back during reconciliation. WinnerLedgerIDs identifies the winning
// participants; the caller maps them back onto a battle side.
type BattleOutcome struct {
	Committed       bool
	WinnerLedgerIDs []int
	PercentLoss     int
	Tx              game.TxRef
}

// LedgerClient is the authoritative-ledger boundary. Every argument after
// the game is a participant ledger ID in a fixed role, so the adapter can
// derive the per-role account addresses the program expects. Write calls
// return ErrLedgerUnavailable on transient faults; the resolve calls return
// ErrAlreadyCommitted when the program holds a prior commit for the same
// battle reference.
type LedgerClient interface {
	// ResolveSimple commits a one-on-one outcome.
	ResolveSimple(ctx context.Context, gameLedgerID int, battleRef string, winnerLedgerID, loserLedgerID, percentLoss int) (Receipt, error)
	// ResolveAgentVsAlliance commits a solo-versus-pair outcome. The leader
	// is the allied principal the battle was opened by or against.
	ResolveAgentVsAlliance(ctx context.Context, gameLedgerID int, battleRef string, singleLedgerID, leaderLedgerID, partnerLedgerID int, singleWins bool, percentLoss int) (Receipt, error)
	// ResolveAllianceVsAlliance commits a pair-versus-pair outcome.
	ResolveAllianceVsAlliance(ctx context.Context, gameLedgerID int, battleRef string, leaderALedgerID, partnerALedgerID, leaderBLedgerID, partnerBLedgerID int, sideAWins bool, percentLoss int) (Receipt, error)
	FormAlliance(ctx context.Context, gameLedgerID, initiatorLedgerID, joinerLedgerID int) (Receipt, error)
	BreakAlliance(ctx context.Context, gameLedgerID, initiatorLedgerID, joinerLedgerID int) (Receipt, error)
	// BattleOutcome reads the committed result for a battle reference.
	// Committed is false when the program has no commit for it yet.
	BattleOutcome(ctx context.Context, gameLedgerID int, battleRef string) (BattleOutcome, error)
}
