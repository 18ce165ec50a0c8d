package resolve

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/app/cooldown"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/app/ports"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/battle"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/game"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/random"
)

var (
	ErrInvalidRequest = errors.New("invalid resolve request")
	ErrNotDue         = errors.New("battle is not due for resolution")
)

// UseCase resolves one due battle. The flow is ledger-first: draw the
// outcome, commit it to the ledger, persist the commit marker, then finalize
// the projection. A crash between any two steps is repaired by re-running,
// because every step after the draw is idempotent against the same outcome.
type UseCase struct {
	TxManager ports.TxManager
	Games     ports.GameRepository
	Agents    ports.AgentRepository
	Battles   ports.BattleRepository
	Commits   ports.BattleCommitRepository
	Alliances ports.AllianceRepository
	Events    ports.EventRepository
	Ledger    ports.LedgerClient
	Gate      cooldown.Gate
	Metrics   ports.EngineMetrics
	Calc      battle.Calculator
	NewRand   func() *rand.Rand
	RetryBase time.Duration
	RetryCap  time.Duration
	Now       func() time.Time
}

func (u UseCase) now() time.Time {
	if u.Now != nil {
		return u.Now()
	}
	return time.Now()
}

func (u UseCase) rng() *rand.Rand {
	if u.NewRand != nil {
		return u.NewRand()
	}
	return random.NewRand()
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	req.GameID = strings.TrimSpace(req.GameID)
	req.BattleID = strings.TrimSpace(req.BattleID)
	if req.GameID == "" || req.BattleID == "" {
		return Response{}, ErrInvalidRequest
	}

	b, err := u.Battles.GetByID(ctx, req.GameID, req.BattleID)
	if err != nil {
		return Response{}, err
	}
	if b.Status == game.BattleResolved {
		return Response{Battle: b, AlreadyResolved: true}, nil
	}
	if !battle.Due(b, u.now()) {
		return Response{}, ErrNotDue
	}

	// A marker left by an earlier attempt means the ledger already holds the
	// outcome; skip straight to the projection finalize.
	if commit, err := u.Commits.GetByBattleID(ctx, req.GameID, req.BattleID); err == nil {
		return u.finalizeCommit(ctx, commit)
	} else if !errors.Is(err, ports.ErrNotFound) {
		return Response{}, err
	}

	commit, err := u.commitToLedger(ctx, b)
	if err != nil {
		return Response{}, err
	}
	return u.finalizeCommit(ctx, commit)
}

// commitToLedger draws the outcome, submits it, and persists the commit
// marker. A transient ledger fault records the failure on the battle row and
// schedules the retry hold.
func (u UseCase) commitToLedger(ctx context.Context, b game.Battle) (game.BattleCommit, error) {
	agents, err := u.Agents.ListByIDs(ctx, b.GameID, b.Participants())
	if err != nil {
		return game.BattleCommit{}, err
	}
	byID := make(map[string]game.Agent, len(agents))
	for _, ag := range agents {
		byID[ag.ID] = ag
	}
	sides, err := battle.SidesFrom(b, byID)
	if err != nil {
		return game.BattleCommit{}, err
	}

	var outcome battle.Outcome
	if sides.Wiped(game.SideA) || sides.Wiped(game.SideB) {
		// Forfeit walkover: the standing side wins, nothing moves.
		winner := game.SideA
		if sides.Wiped(game.SideA) {
			winner = game.SideB
		}
		outcome = battle.Outcome{Winner: winner, PercentLoss: 0, Deaths: map[string]bool{}}
	} else {
		outcome = u.Calc.Draw(u.rng(), sides)
	}

	gameRec, err := u.Games.GetByID(ctx, b.GameID)
	if err != nil {
		return game.BattleCommit{}, err
	}

	receipt, err := u.submitOutcome(ctx, gameRec.LedgerID, b, sides, outcome)
	switch {
	case err == nil:
		// fall through to the marker write
	case errors.Is(err, ports.ErrAlreadyCommitted):
		// The ledger got there first, usually via a crashed prior attempt.
		// Its recorded winner and loss replace the local draw; the death
		// roll stays local, trimmed to the recorded losing side.
		recorded, lerr := u.Ledger.BattleOutcome(ctx, gameRec.LedgerID, b.ID)
		if lerr != nil {
			return game.BattleCommit{}, u.recordFailure(ctx, b, lerr)
		}
		if !recorded.Committed {
			return game.BattleCommit{}, u.recordFailure(ctx, b, fmt.Errorf("ledger reports commit without outcome for battle %s", b.ID))
		}
		winner, ok := sideOfLedgerIDs(sides, recorded.WinnerLedgerIDs)
		if !ok {
			return game.BattleCommit{}, u.recordFailure(ctx, b, fmt.Errorf("ledger winner set for battle %s matches no side", b.ID))
		}
		deaths := make(map[string]bool, len(outcome.Deaths))
		for _, c := range sides.Side(winner.Opponent()) {
			if outcome.Deaths[c.ID] {
				deaths[c.ID] = true
			}
		}
		outcome = battle.Outcome{Winner: winner, PercentLoss: recorded.PercentLoss, Deaths: deaths}
		receipt = ports.Receipt{Tx: recorded.Tx}
	default:
		return game.BattleCommit{}, u.recordFailure(ctx, b, err)
	}

	commit := game.BattleCommit{
		BattleID:    b.ID,
		GameID:      b.GameID,
		WinnerSide:  outcome.Winner,
		PercentLoss: outcome.PercentLoss,
		Deaths:      outcome.Deaths,
		TxRef:       receipt.Tx,
		CommittedAt: u.now(),
	}
	if err := u.Commits.Create(ctx, commit); err != nil {
		// The ledger holds the outcome but the marker write failed. The next
		// attempt lands in the ErrAlreadyCommitted branch and recovers it.
		return game.BattleCommit{}, fmt.Errorf("persist commit marker for battle %s: %w", b.ID, err)
	}
	return commit, nil
}

func (u UseCase) recordFailure(ctx context.Context, b game.Battle, cause error) error {
	failCount := b.FailCount + 1
	hold := battle.RetryDelay(failCount, u.RetryBase, u.RetryCap)
	if err := u.Battles.RecordFailure(ctx, b.GameID, b.ID, failCount, u.now().Add(hold)); err != nil {
		return errors.Join(cause, err)
	}
	if u.Metrics != nil {
		u.Metrics.RecordCommitFailure()
	}
	return fmt.Errorf("ledger commit for battle %s (attempt %d): %w", b.ID, failCount, cause)
}
