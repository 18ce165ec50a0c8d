// Package mock is a scripted in-process stand-in for the authoritative
// ledger program. It enforces the one contract the engine leans on, that a
// battle reference commits at most once, and lets tests inject faults.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/app/ports"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/game"
)

type Ledger struct {
	mu      sync.Mutex
	seq     int
	commits map[string]ports.BattleOutcome

	// NextErr is returned by the next write call and then cleared; tests
	// use it to script a transient fault.
	NextErr error
}

func NewLedger() *Ledger {
	return &Ledger{commits: make(map[string]ports.BattleOutcome)}
}

func (l *Ledger) nextTx(op string) game.TxRef {
	l.seq++
	return game.TxRef(fmt.Sprintf("mock-%s-%d", op, l.seq))
}

func (l *Ledger) takeErr() error {
	err := l.NextErr
	l.NextErr = nil
	return err
}

// commit records a battle outcome once; a second commit of the same
// reference is refused the way the program would refuse it.
func (l *Ledger) commit(battleRef string, winnerLedgerIDs []int, percentLoss int) (ports.Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.takeErr(); err != nil {
		return ports.Receipt{}, err
	}
	if _, ok := l.commits[battleRef]; ok {
		return ports.Receipt{}, ports.ErrAlreadyCommitted
	}
	tx := l.nextTx("resolve")
	l.commits[battleRef] = ports.BattleOutcome{
		Committed:       true,
		WinnerLedgerIDs: append([]int(nil), winnerLedgerIDs...),
		PercentLoss:     percentLoss,
		Tx:              tx,
	}
	return ports.Receipt{Tx: tx}, nil
}

func (l *Ledger) ResolveSimple(_ context.Context, _ int, battleRef string, winnerLedgerID, loserLedgerID, percentLoss int) (ports.Receipt, error) {
	return l.commit(battleRef, []int{winnerLedgerID}, percentLoss)
}

func (l *Ledger) ResolveAgentVsAlliance(_ context.Context, _ int, battleRef string, singleLedgerID, leaderLedgerID, partnerLedgerID int, singleWins bool, percentLoss int) (ports.Receipt, error) {
	winners := []int{leaderLedgerID, partnerLedgerID}
	if singleWins {
		winners = []int{singleLedgerID}
	}
	return l.commit(battleRef, winners, percentLoss)
}

func (l *Ledger) ResolveAllianceVsAlliance(_ context.Context, _ int, battleRef string, leaderALedgerID, partnerALedgerID, leaderBLedgerID, partnerBLedgerID int, sideAWins bool, percentLoss int) (ports.Receipt, error) {
	winners := []int{leaderBLedgerID, partnerBLedgerID}
	if sideAWins {
		winners = []int{leaderALedgerID, partnerALedgerID}
	}
	return l.commit(battleRef, winners, percentLoss)
}

func (l *Ledger) FormAlliance(_ context.Context, _, _, _ int) (ports.Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.takeErr(); err != nil {
		return ports.Receipt{}, err
	}
	return ports.Receipt{Tx: l.nextTx("form")}, nil
}

func (l *Ledger) BreakAlliance(_ context.Context, _, _, _ int) (ports.Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.takeErr(); err != nil {
		return ports.Receipt{}, err
	}
	return ports.Receipt{Tx: l.nextTx("break")}, nil
}

func (l *Ledger) BattleOutcome(_ context.Context, _ int, battleRef string) (ports.BattleOutcome, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	outcome, ok := l.commits[battleRef]
	if !ok {
		return ports.BattleOutcome{Committed: false}, nil
	}
	return outcome, nil
}
