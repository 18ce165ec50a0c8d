package resolve

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/app/cooldown"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/app/ports"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/battle"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/game"
)

type fixture struct {
	games     *stubGameRepo
	agents    *stubAgentRepo
	battles   *stubBattleRepo
	commits   *stubCommitRepo
	alliances *stubAllianceRepo
	cooldowns *stubCooldownRepo
	events    *stubEventRepo
	ledger    *stubLedger
	metrics   *stubMetrics
	now       time.Time
	uc        UseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		games:     &stubGameRepo{byID: map[string]ports.GameRecord{}},
		agents:    &stubAgentRepo{byID: map[string]game.Agent{}},
		battles:   &stubBattleRepo{byID: map[string]game.Battle{}},
		commits:   &stubCommitRepo{byBattle: map[string]game.BattleCommit{}},
		alliances: &stubAllianceRepo{byID: map[string]game.Alliance{}},
		cooldowns: &stubCooldownRepo{},
		events:    &stubEventRepo{},
		ledger:    &stubLedger{},
		metrics:   &stubMetrics{},
		now:       time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	calc, err := battle.NewCalculator(21, 50, 0)
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}
	f.uc = UseCase{
		TxManager: stubTxManager{},
		Games:     f.games,
		Agents:    f.agents,
		Battles:   f.battles,
		Commits:   f.commits,
		Alliances: f.alliances,
		Events:    f.events,
		Ledger:    f.ledger,
		Gate:      cooldown.Gate{Cooldowns: f.cooldowns, Now: func() time.Time { return f.now }},
		Metrics:   f.metrics,
		Calc:      calc,
		NewRand:   func() *rand.Rand { return rand.New(rand.NewSource(1)) },
		RetryBase: 30 * time.Second,
		RetryCap:  15 * time.Minute,
		Now:       func() time.Time { return f.now },
	}
	f.games.byID["g-1"] = ports.GameRecord{ID: "g-1", LedgerID: 7, CreatedAt: f.now}
	return f
}

func (f *fixture) seedAgent(id string, ledgerID int, tokens uint64, alive bool) {
	f.agents.byID[id] = game.Agent{
		ID: id, GameID: "g-1", LedgerID: ledgerID, Name: "name-" + id,
		Tokens: tokens, Alive: alive, Version: 1,
	}
}

func (f *fixture) seedDueBattle(id string, sideA, sideB []string) {
	f.battles.byID[id] = game.Battle{
		ID: id, GameID: "g-1",
		Topology: battle.Classify(sideA, sideB),
		SideA:    sideA, SideB: sideB,
		Status:   game.BattlePending,
		OpenedAt: f.now.Add(-time.Hour),
		WaitFor:  30 * time.Minute,
	}
}

func TestUseCase_ResolvesDueBattle(t *testing.T) {
	f := newFixture(t)
	f.seedAgent("a-1", 1, 900, true)
	f.seedAgent("a-2", 2, 100, true)
	f.seedDueBattle("b-1", []string{"a-1"}, []string{"a-2"})

	out, err := f.uc.Execute(context.Background(), Request{GameID: "g-1", BattleID: "b-1"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out.AlreadyResolved || out.Walkover {
		t.Fatalf("unexpected flags: %+v", out)
	}
	// Seeded rng draws 0.604... first, below the 0.9 win probability.
	if out.Battle.WinnerSide != game.SideA {
		t.Fatalf("expected side a to win, got %q", out.Battle.WinnerSide)
	}
	if f.ledger.resolveCalls != 1 {
		t.Fatalf("expected one ledger commit, got %d", f.ledger.resolveCalls)
	}
	if f.ledger.lastResolve.op != game.TopologySimple {
		t.Fatalf("expected the one-on-one ledger operation, got %q", f.ledger.lastResolve.op)
	}
	if w := f.ledger.lastResolve.winners; len(w) != 1 || w[0] != 1 {
		t.Fatalf("expected winner ledger id 1, got %v", w)
	}

	percent := f.ledger.lastResolve.percentLoss
	if percent < 21 || percent > 50 {
		t.Fatalf("percent loss out of bounds: %d", percent)
	}
	// Loser holds exactly 100 tokens, so the movement equals the percent.
	wantMoved := uint64(percent)
	if out.TokensMoved != wantMoved {
		t.Fatalf("expected %d tokens moved, got %d", wantMoved, out.TokensMoved)
	}
	if got := f.agents.byID["a-2"].Tokens; got != 100-wantMoved {
		t.Fatalf("unexpected loser balance: %d", got)
	}
	if got := f.agents.byID["a-1"].Tokens; got != 900+wantMoved {
		t.Fatalf("unexpected winner balance: %d", got)
	}

	b := f.battles.byID["b-1"]
	if b.Status != game.BattleResolved || b.TxRef != "tx-resolve" || b.TokensMoved != wantMoved {
		t.Fatalf("unexpected battle row: %+v", b)
	}
	commit, ok := f.commits.byBattle["b-1"]
	if !ok || commit.AppliedAt == nil {
		t.Fatalf("expected applied commit marker, got %+v", commit)
	}
	if n := f.events.countByType(game.EventBattleOutcome); n != 1 {
		t.Fatalf("expected one outcome event, got %d", n)
	}
	if n := f.events.countByType(game.EventBattleSpoils); n != 1 {
		t.Fatalf("expected one spoils event, got %d", n)
	}
	if len(f.cooldowns.rows) != 2 {
		t.Fatalf("expected battle cooldowns for both survivors, got %d", len(f.cooldowns.rows))
	}
	if f.metrics.resolutions != 1 || f.metrics.deaths != 0 {
		t.Fatalf("unexpected metrics: %+v", f.metrics)
	}
}

func TestUseCase_LedgerFailureSchedulesRetry(t *testing.T) {
	f := newFixture(t)
	f.seedAgent("a-1", 1, 500, true)
	f.seedAgent("a-2", 2, 500, true)
	f.seedDueBattle("b-1", []string{"a-1"}, []string{"a-2"})
	f.ledger.resolveErr = ports.ErrLedgerUnavailable

	_, err := f.uc.Execute(context.Background(), Request{GameID: "g-1", BattleID: "b-1"})
	if !errors.Is(err, ports.ErrLedgerUnavailable) {
		t.Fatalf("expected ledger unavailable, got %v", err)
	}

	b := f.battles.byID["b-1"]
	if b.Status != game.BattlePending {
		t.Fatalf("expected battle still pending, got %s", b.Status)
	}
	if b.FailCount != 1 {
		t.Fatalf("expected fail count 1, got %d", b.FailCount)
	}
	if want := f.now.Add(30 * time.Second); !b.NextAttemptAt.Equal(want) {
		t.Fatalf("expected retry hold until %s, got %s", want, b.NextAttemptAt)
	}
	if len(f.commits.byBattle) != 0 {
		t.Fatal("expected no commit marker after ledger failure")
	}
	if got := f.agents.byID["a-1"].Tokens; got != 500 {
		t.Fatalf("expected untouched balances, got %d", got)
	}
	if f.metrics.commitFailures != 1 {
		t.Fatalf("expected one commit failure, got %d", f.metrics.commitFailures)
	}

	// Second failure doubles the hold.
	f.ledger.resolveErr = ports.ErrLedgerUnavailable
	f.now = f.now.Add(time.Minute)
	if _, err := f.uc.Execute(context.Background(), Request{GameID: "g-1", BattleID: "b-1"}); err == nil {
		t.Fatal("expected second failure")
	}
	b = f.battles.byID["b-1"]
	if b.FailCount != 2 {
		t.Fatalf("expected fail count 2, got %d", b.FailCount)
	}
	if want := f.now.Add(time.Minute); !b.NextAttemptAt.Equal(want) {
		t.Fatalf("expected doubled hold until %s, got %s", want, b.NextAttemptAt)
	}
}

func TestUseCase_RetryHoldBlocksResolution(t *testing.T) {
	f := newFixture(t)
	f.seedAgent("a-1", 1, 500, true)
	f.seedAgent("a-2", 2, 500, true)
	f.seedDueBattle("b-1", []string{"a-1"}, []string{"a-2"})

	b := f.battles.byID["b-1"]
	b.FailCount = 1
	b.NextAttemptAt = f.now.Add(10 * time.Second)
	f.battles.byID["b-1"] = b

	if _, err := f.uc.Execute(context.Background(), Request{GameID: "g-1", BattleID: "b-1"}); !errors.Is(err, ErrNotDue) {
		t.Fatalf("expected ErrNotDue under retry hold, got %v", err)
	}
	if f.ledger.resolveCalls != 0 {
		t.Fatal("expected no ledger call under retry hold")
	}
}

func TestUseCase_AlreadyCommittedRecoversLedgerOutcome(t *testing.T) {
	f := newFixture(t)
	f.seedAgent("a-1", 1, 200, true)
	f.seedAgent("a-2", 2, 50, true)
	f.seedDueBattle("b-1", []string{"a-1"}, []string{"a-2"})

	f.ledger.resolveErr = ports.ErrAlreadyCommitted
	f.ledger.outcome = ports.BattleOutcome{
		Committed:       true,
		WinnerLedgerIDs: []int{2},
		PercentLoss:     40,
		Tx:              "tx-recovered",
	}

	out, err := f.uc.Execute(context.Background(), Request{GameID: "g-1", BattleID: "b-1"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	// The local draw favors side A, but the ledger's recorded winner rules.
	if out.Battle.WinnerSide != game.SideB || out.Battle.TxRef != "tx-recovered" {
		t.Fatalf("expected recovered outcome applied, got %+v", out.Battle)
	}

	if got := f.agents.byID["a-1"].Tokens; got != 120 {
		t.Fatalf("expected 80 tokens debited, got balance %d", got)
	}
	if got := f.agents.byID["a-2"].Tokens; got != 130 {
		t.Fatalf("expected 80 tokens credited, got balance %d", got)
	}
	// Both survived, so both leave with a battle cooldown.
	if len(f.cooldowns.rows) != 2 {
		t.Fatalf("unexpected cooldown rows: %+v", f.cooldowns.rows)
	}
	if f.metrics.deaths != 0 {
		t.Fatalf("expected no deaths recorded, got %d", f.metrics.deaths)
	}
}

func TestUseCase_DeathDissolvesAlliance(t *testing.T) {
	f := newFixture(t)
	calc, err := battle.NewCalculator(21, 50, 1)
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}
	f.uc.Calc = calc
	f.seedAgent("a-1", 1, 900, true)
	f.seedAgent("a-2", 2, 100, true)
	f.seedAgent("a-3", 3, 10, true)
	f.seedDueBattle("b-1", []string{"a-1"}, []string{"a-2"})
	f.alliances.byID["al-1"] = game.Alliance{
		ID: "al-1", GameID: "g-1", InitiatorID: "a-2", JoinerID: "a-3",
		Status: game.AllianceActive, FormedAt: f.now.Add(-2 * time.Hour),
	}

	out, err := f.uc.Execute(context.Background(), Request{GameID: "g-1", BattleID: "b-1"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out.Battle.WinnerSide != game.SideA {
		t.Fatalf("expected side a to win, got %q", out.Battle.WinnerSide)
	}
	if len(out.Deaths) != 1 || out.Deaths[0] != "a-2" {
		t.Fatalf("expected a-2 to fall, got %v", out.Deaths)
	}
	if f.agents.byID["a-2"].Alive {
		t.Fatal("expected death flag applied")
	}
	if al := f.alliances.byID["al-1"]; al.Status != game.AllianceBroken {
		t.Fatal("expected death to dissolve the alliance")
	}
	if n := f.events.countByType(game.EventAgentDeath); n != 1 {
		t.Fatalf("expected one death event, got %d", n)
	}
	if n := f.events.countByType(game.EventAllianceBroken); n != 1 {
		t.Fatalf("expected one alliance broken event, got %d", n)
	}
	// Only the survivor leaves with a battle cooldown.
	if len(f.cooldowns.rows) != 1 || f.cooldowns.rows[0].AgentID != "a-1" {
		t.Fatalf("unexpected cooldown rows: %+v", f.cooldowns.rows)
	}
	if f.metrics.deaths != 1 {
		t.Fatalf("expected one death recorded, got %d", f.metrics.deaths)
	}
}

func TestUseCase_DispatchesLedgerOpByTopology(t *testing.T) {
	f := newFixture(t)
	f.seedAgent("a-1", 1, 10, true)
	f.seedAgent("a-2", 2, 2000, true)
	f.seedAgent("a-3", 3, 1000, true)
	f.seedAgent("a-4", 4, 500, true)
	f.seedAgent("a-5", 5, 1, true)

	// Solo against an allied pair: the pair holds nearly all tokens, so the
	// seeded draw lands on its side.
	f.seedDueBattle("b-1", []string{"a-1"}, []string{"a-2", "a-3"})
	if _, err := f.uc.Execute(context.Background(), Request{GameID: "g-1", BattleID: "b-1"}); err != nil {
		t.Fatalf("resolve agent-vs-alliance: %v", err)
	}
	if f.ledger.lastResolve.op != game.TopologyAgentVsAlliance {
		t.Fatalf("expected the agent-vs-alliance operation, got %q", f.ledger.lastResolve.op)
	}
	if w := f.ledger.lastResolve.winners; len(w) != 2 || w[0] != 2 || w[1] != 3 {
		t.Fatalf("expected the pair recorded as winner, got %v", w)
	}

	// Pair against pair, side A holding nearly all tokens.
	f.seedDueBattle("b-2", []string{"a-2", "a-3"}, []string{"a-4", "a-5"})
	if _, err := f.uc.Execute(context.Background(), Request{GameID: "g-1", BattleID: "b-2"}); err != nil {
		t.Fatalf("resolve alliance-vs-alliance: %v", err)
	}
	if f.ledger.lastResolve.op != game.TopologyAllianceVsAlliance {
		t.Fatalf("expected the alliance-vs-alliance operation, got %q", f.ledger.lastResolve.op)
	}
	if f.ledger.lastResolve.battleRef != "b-2" {
		t.Fatalf("unexpected battle ref %q", f.ledger.lastResolve.battleRef)
	}
}

func TestUseCase_CommitMarkerShortCircuitsLedger(t *testing.T) {
	f := newFixture(t)
	f.seedAgent("a-1", 1, 300, true)
	f.seedAgent("a-2", 2, 100, true)
	f.seedDueBattle("b-1", []string{"a-1"}, []string{"a-2"})
	// A crash after the ledger commit left the marker without the finalize.
	f.commits.byBattle["b-1"] = game.BattleCommit{
		BattleID: "b-1", GameID: "g-1",
		WinnerSide: game.SideA, PercentLoss: 25,
		Deaths: map[string]bool{"a-2": false},
		TxRef:  "tx-prior", CommittedAt: f.now.Add(-time.Minute),
	}

	out, err := f.uc.Execute(context.Background(), Request{GameID: "g-1", BattleID: "b-1"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if f.ledger.resolveCalls != 0 {
		t.Fatalf("expected no new ledger commit, got %d", f.ledger.resolveCalls)
	}
	if out.Battle.TxRef != "tx-prior" {
		t.Fatalf("expected prior tx ref, got %q", out.Battle.TxRef)
	}
	if got := f.agents.byID["a-2"].Tokens; got != 75 {
		t.Fatalf("expected 25 debited from loser, got balance %d", got)
	}
}

func TestUseCase_SecondResolveIsNoOp(t *testing.T) {
	f := newFixture(t)
	f.seedAgent("a-1", 1, 900, true)
	f.seedAgent("a-2", 2, 100, true)
	f.seedDueBattle("b-1", []string{"a-1"}, []string{"a-2"})

	if _, err := f.uc.Execute(context.Background(), Request{GameID: "g-1", BattleID: "b-1"}); err != nil {
		t.Fatalf("first execute: %v", err)
	}
	balance := f.agents.byID["a-2"].Tokens

	out, err := f.uc.Execute(context.Background(), Request{GameID: "g-1", BattleID: "b-1"})
	if err != nil {
		t.Fatalf("second execute: %v", err)
	}
	if !out.AlreadyResolved {
		t.Fatal("expected already resolved no-op")
	}
	if f.ledger.resolveCalls != 1 {
		t.Fatalf("expected single ledger commit, got %d", f.ledger.resolveCalls)
	}
	if got := f.agents.byID["a-2"].Tokens; got != balance {
		t.Fatalf("expected balance unchanged on replay, got %d", got)
	}
	if f.metrics.resolutions != 1 {
		t.Fatalf("expected single resolution metric, got %d", f.metrics.resolutions)
	}
}

func TestUseCase_WalkoverWhenSideWiped(t *testing.T) {
	f := newFixture(t)
	f.seedAgent("a-1", 1, 500, true)
	f.seedAgent("a-2", 2, 200, false)
	f.seedDueBattle("b-1", []string{"a-1"}, []string{"a-2"})

	out, err := f.uc.Execute(context.Background(), Request{GameID: "g-1", BattleID: "b-1"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !out.Walkover {
		t.Fatal("expected walkover")
	}
	if out.Battle.WinnerSide != game.SideA || out.TokensMoved != 0 {
		t.Fatalf("unexpected walkover outcome: %+v", out)
	}
	// The forfeit is still committed to the ledger.
	if f.ledger.resolveCalls != 1 || f.ledger.lastResolve.percentLoss != 0 {
		t.Fatalf("expected zero-loss ledger commit, got %+v", f.ledger.lastResolve)
	}
	if n := f.events.countByType(game.EventBattleWalkover); n != 1 {
		t.Fatalf("expected walkover event, got %d", n)
	}
	if n := f.events.countByType(game.EventBattleSpoils); n != 0 {
		t.Fatalf("expected no spoils event, got %d", n)
	}
	if len(f.cooldowns.rows) != 1 || f.cooldowns.rows[0].AgentID != "a-1" {
		t.Fatalf("expected cooldown only for the survivor, got %+v", f.cooldowns.rows)
	}
	if f.metrics.walkovers != 1 {
		t.Fatalf("expected walkover metric, got %+v", f.metrics)
	}
}

func TestUseCase_NotDueBeforeWaitWindow(t *testing.T) {
	f := newFixture(t)
	f.seedAgent("a-1", 1, 500, true)
	f.seedAgent("a-2", 2, 500, true)
	f.battles.byID["b-1"] = game.Battle{
		ID: "b-1", GameID: "g-1", Topology: game.TopologySimple,
		SideA: []string{"a-1"}, SideB: []string{"a-2"},
		Status: game.BattlePending, OpenedAt: f.now.Add(-10 * time.Minute), WaitFor: 30 * time.Minute,
	}

	if _, err := f.uc.Execute(context.Background(), Request{GameID: "g-1", BattleID: "b-1"}); !errors.Is(err, ErrNotDue) {
		t.Fatalf("expected ErrNotDue, got %v", err)
	}
}

func TestReconcile_AppliesStaleCommits(t *testing.T) {
	f := newFixture(t)
	f.seedAgent("a-1", 1, 300, true)
	f.seedAgent("a-2", 2, 100, true)
	f.seedDueBattle("b-1", []string{"a-1"}, []string{"a-2"})
	f.commits.byBattle["b-1"] = game.BattleCommit{
		BattleID: "b-1", GameID: "g-1",
		WinnerSide: game.SideA, PercentLoss: 30,
		Deaths: map[string]bool{}, TxRef: "tx-stale",
		CommittedAt: f.now.Add(-10 * time.Minute),
	}

	repaired, err := f.uc.Reconcile(context.Background(), f.now.Add(-5*time.Minute), 10)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if repaired != 1 {
		t.Fatalf("expected one repair, got %d", repaired)
	}
	if b := f.battles.byID["b-1"]; b.Status != game.BattleResolved {
		t.Fatalf("expected battle resolved, got %s", b.Status)
	}
	if got := f.agents.byID["a-2"].Tokens; got != 70 {
		t.Fatalf("expected 30 debited, got balance %d", got)
	}
	if f.metrics.reconcileRepairs != 1 {
		t.Fatalf("expected repair metric, got %d", f.metrics.reconcileRepairs)
	}

	// A second pass finds nothing left to repair.
	repaired, err = f.uc.Reconcile(context.Background(), f.now, 10)
	if err != nil {
		t.Fatalf("second reconcile: %v", err)
	}
	if repaired != 0 {
		t.Fatalf("expected nothing to repair, got %d", repaired)
	}
}

func TestUseCase_AllianceSideSharesSpoils(t *testing.T) {
	f := newFixture(t)
	f.seedAgent("a-1", 1, 4000, true)
	f.seedAgent("a-2", 2, 3000, true)
	f.seedAgent("a-3", 3, 105, true)
	f.seedDueBattle("b-1", []string{"a-1", "a-2"}, []string{"a-3"})
	f.ledger.resolveErr = ports.ErrAlreadyCommitted
	f.ledger.outcome = ports.BattleOutcome{
		Committed: true, WinnerLedgerIDs: []int{1, 2}, PercentLoss: 30, Tx: "tx-r",
	}

	out, err := f.uc.Execute(context.Background(), Request{GameID: "g-1", BattleID: "b-1"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	// floor(105*30/100) = 31, split 16/15 across the winning pair.
	if out.TokensMoved != 31 {
		t.Fatalf("expected 31 tokens moved, got %d", out.TokensMoved)
	}
	if got := f.agents.byID["a-1"].Tokens; got != 4016 {
		t.Fatalf("unexpected first winner balance: %d", got)
	}
	if got := f.agents.byID["a-2"].Tokens; got != 3015 {
		t.Fatalf("unexpected second winner balance: %d", got)
	}
	if got := f.agents.byID["a-3"].Tokens; got != 74 {
		t.Fatalf("unexpected loser balance: %d", got)
	}
}
