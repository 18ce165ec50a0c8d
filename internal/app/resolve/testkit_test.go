package resolve

import (
	"context"
	"time"

	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/app/ports"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/game"
)

type stubTxManager struct{}

func (stubTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type stubGameRepo struct {
	byID map[string]ports.GameRecord
}

func (r *stubGameRepo) Create(_ context.Context, id string, ledgerID int, createdAt time.Time) error {
	if r.byID == nil {
		r.byID = map[string]ports.GameRecord{}
	}
	r.byID[id] = ports.GameRecord{ID: id, LedgerID: ledgerID, CreatedAt: createdAt}
	return nil
}

func (r *stubGameRepo) GetByID(_ context.Context, id string) (ports.GameRecord, error) {
	rec, ok := r.byID[id]
	if !ok {
		return ports.GameRecord{}, ports.ErrNotFound
	}
	return rec, nil
}

type stubAgentRepo struct {
	byID map[string]game.Agent
}

func (r *stubAgentRepo) GetByID(_ context.Context, gameID, agentID string) (game.Agent, error) {
	ag, ok := r.byID[agentID]
	if !ok || ag.GameID != gameID {
		return game.Agent{}, ports.ErrNotFound
	}
	return ag, nil
}

func (r *stubAgentRepo) ListByIDs(_ context.Context, gameID string, ids []string) ([]game.Agent, error) {
	out := make([]game.Agent, 0, len(ids))
	for _, id := range ids {
		if ag, ok := r.byID[id]; ok && ag.GameID == gameID {
			out = append(out, ag)
		}
	}
	return out, nil
}

func (r *stubAgentRepo) ListByGame(_ context.Context, gameID string) ([]game.Agent, error) {
	out := make([]game.Agent, 0, len(r.byID))
	for _, ag := range r.byID {
		if ag.GameID == gameID {
			out = append(out, ag)
		}
	}
	return out, nil
}

func (r *stubAgentRepo) Create(_ context.Context, ag game.Agent) error {
	if r.byID == nil {
		r.byID = map[string]game.Agent{}
	}
	r.byID[ag.ID] = ag
	return nil
}

func (r *stubAgentRepo) SaveWithVersion(_ context.Context, ag game.Agent, expectedVersion int64) error {
	current, ok := r.byID[ag.ID]
	if !ok {
		return ports.ErrNotFound
	}
	if current.Version != expectedVersion {
		return ports.ErrConflict
	}
	r.byID[ag.ID] = ag
	return nil
}

type stubAllianceRepo struct {
	byID map[string]game.Alliance
}

func (r *stubAllianceRepo) Create(_ context.Context, al game.Alliance) error {
	if r.byID == nil {
		r.byID = map[string]game.Alliance{}
	}
	r.byID[al.ID] = al
	return nil
}

func (r *stubAllianceRepo) ActiveByAgent(_ context.Context, gameID, agentID string) (game.Alliance, error) {
	for _, al := range r.byID {
		if al.GameID == gameID && al.Status == game.AllianceActive && al.PartnerOf(agentID) != "" {
			return al, nil
		}
	}
	return game.Alliance{}, ports.ErrNotFound
}

func (r *stubAllianceRepo) ActiveByPair(_ context.Context, gameID, agentA, agentB string) (game.Alliance, error) {
	for _, al := range r.byID {
		if al.GameID == gameID && al.Status == game.AllianceActive && al.Includes(agentA, agentB) {
			return al, nil
		}
	}
	return game.Alliance{}, ports.ErrNotFound
}

func (r *stubAllianceRepo) ListActiveByGame(_ context.Context, gameID string) ([]game.Alliance, error) {
	out := make([]game.Alliance, 0, len(r.byID))
	for _, al := range r.byID {
		if al.GameID == gameID && al.Status == game.AllianceActive {
			out = append(out, al)
		}
	}
	return out, nil
}

func (r *stubAllianceRepo) MarkBroken(_ context.Context, gameID, allianceID string, at time.Time) error {
	al, ok := r.byID[allianceID]
	if !ok || al.GameID != gameID || al.Status != game.AllianceActive {
		return ports.ErrNotFound
	}
	al.Status = game.AllianceBroken
	al.BrokenAt = &at
	r.byID[allianceID] = al
	return nil
}

type stubCooldownRepo struct {
	rows []game.Cooldown
}

func (r *stubCooldownRepo) Create(_ context.Context, cd game.Cooldown) error {
	r.rows = append(r.rows, cd)
	return nil
}

func (r *stubCooldownRepo) ActiveExists(_ context.Context, gameID string, typ game.CooldownType, agentID, targetID string, now time.Time) (bool, error) {
	for _, cd := range r.rows {
		if cd.GameID != gameID || cd.Type != typ || cd.AgentID != agentID {
			continue
		}
		if targetID != "" && cd.TargetID != targetID {
			continue
		}
		if cd.ActiveAt(now) {
			return true, nil
		}
	}
	return false, nil
}

type stubBattleRepo struct {
	byID map[string]game.Battle
}

func (r *stubBattleRepo) Create(_ context.Context, b game.Battle) error {
	if r.byID == nil {
		r.byID = map[string]game.Battle{}
	}
	r.byID[b.ID] = b
	return nil
}

func (r *stubBattleRepo) GetByID(_ context.Context, gameID, battleID string) (game.Battle, error) {
	b, ok := r.byID[battleID]
	if !ok || b.GameID != gameID {
		return game.Battle{}, ports.ErrNotFound
	}
	return b, nil
}

func (r *stubBattleRepo) PendingByAgent(_ context.Context, gameID, agentID string) (game.Battle, error) {
	for _, b := range r.byID {
		if b.GameID == gameID && b.Status == game.BattlePending && b.SideOf(agentID) != "" {
			return b, nil
		}
	}
	return game.Battle{}, ports.ErrNotFound
}

func (r *stubBattleRepo) ListPendingByGame(_ context.Context, gameID string) ([]game.Battle, error) {
	out := make([]game.Battle, 0, len(r.byID))
	for _, b := range r.byID {
		if b.GameID == gameID && b.Status == game.BattlePending {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *stubBattleRepo) ListDue(_ context.Context, now time.Time, limit int) ([]game.Battle, error) {
	out := make([]game.Battle, 0, limit)
	for _, b := range r.byID {
		if b.Status != game.BattlePending {
			continue
		}
		if now.Before(b.OpenedAt.Add(b.WaitFor)) {
			continue
		}
		if !b.NextAttemptAt.IsZero() && now.Before(b.NextAttemptAt) {
			continue
		}
		out = append(out, b)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *stubBattleRepo) MarkResolved(_ context.Context, gameID, battleID string, winner game.Side, resolvedAt time.Time, tokensMoved uint64, tx game.TxRef) error {
	b, ok := r.byID[battleID]
	if !ok || b.GameID != gameID {
		return ports.ErrNotFound
	}
	if b.Status != game.BattlePending {
		return ports.ErrConflict
	}
	b.Status = game.BattleResolved
	b.WinnerSide = winner
	b.ResolvedAt = &resolvedAt
	b.TokensMoved = tokensMoved
	b.TxRef = tx
	r.byID[battleID] = b
	return nil
}

func (r *stubBattleRepo) RecordFailure(_ context.Context, gameID, battleID string, failCount int, nextAttemptAt time.Time) error {
	b, ok := r.byID[battleID]
	if !ok || b.GameID != gameID {
		return ports.ErrNotFound
	}
	b.FailCount = failCount
	b.NextAttemptAt = nextAttemptAt
	r.byID[battleID] = b
	return nil
}

type stubCommitRepo struct {
	byBattle map[string]game.BattleCommit
}

func (r *stubCommitRepo) Create(_ context.Context, commit game.BattleCommit) error {
	if r.byBattle == nil {
		r.byBattle = map[string]game.BattleCommit{}
	}
	if _, ok := r.byBattle[commit.BattleID]; ok {
		return nil
	}
	r.byBattle[commit.BattleID] = commit
	return nil
}

func (r *stubCommitRepo) GetByBattleID(_ context.Context, gameID, battleID string) (game.BattleCommit, error) {
	c, ok := r.byBattle[battleID]
	if !ok || c.GameID != gameID {
		return game.BattleCommit{}, ports.ErrNotFound
	}
	return c, nil
}

func (r *stubCommitRepo) ListUnapplied(_ context.Context, olderThan time.Time, limit int) ([]game.BattleCommit, error) {
	out := make([]game.BattleCommit, 0, limit)
	for _, c := range r.byBattle {
		if c.AppliedAt != nil || c.CommittedAt.After(olderThan) {
			continue
		}
		out = append(out, c)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *stubCommitRepo) MarkApplied(_ context.Context, gameID, battleID string, at time.Time) error {
	c, ok := r.byBattle[battleID]
	if !ok || c.GameID != gameID {
		return ports.ErrNotFound
	}
	c.AppliedAt = &at
	r.byBattle[battleID] = c
	return nil
}

type stubEventRepo struct {
	events []game.GameEvent
}

func (r *stubEventRepo) Append(_ context.Context, events []game.GameEvent) error {
	r.events = append(r.events, events...)
	return nil
}

func (r *stubEventRepo) ListByGame(_ context.Context, gameID string, limit int) ([]game.GameEvent, error) {
	out := make([]game.GameEvent, 0, len(r.events))
	for _, evt := range r.events {
		if evt.GameID == gameID {
			out = append(out, evt)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *stubEventRepo) ListByAgent(_ context.Context, gameID, agentID string, limit int) ([]game.GameEvent, error) {
	out := make([]game.GameEvent, 0, len(r.events))
	for _, evt := range r.events {
		if evt.GameID == gameID && (evt.InitiatorID == agentID || evt.TargetID == agentID) {
			out = append(out, evt)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *stubEventRepo) countByType(typ string) int {
	n := 0
	for _, evt := range r.events {
		if evt.Type == typ {
			n++
		}
	}
	return n
}

// resolveCall captures which ledger resolve operation ran and with what
// role assignments.
type resolveCall struct {
	op          game.Topology
	battleRef   string
	winners     []int
	percentLoss int
}

type stubLedger struct {
	resolveCalls int
	resolveErr   error
	outcome      ports.BattleOutcome
	outcomeErr   error
	lastResolve  resolveCall
}

func (l *stubLedger) record(op game.Topology, battleRef string, winners []int, percentLoss int) (ports.Receipt, error) {
	l.resolveCalls++
	l.lastResolve = resolveCall{op: op, battleRef: battleRef, winners: winners, percentLoss: percentLoss}
	if l.resolveErr != nil {
		return ports.Receipt{}, l.resolveErr
	}
	return ports.Receipt{Tx: "tx-resolve"}, nil
}

func (l *stubLedger) ResolveSimple(_ context.Context, _ int, battleRef string, winnerLedgerID, _, percentLoss int) (ports.Receipt, error) {
	return l.record(game.TopologySimple, battleRef, []int{winnerLedgerID}, percentLoss)
}

func (l *stubLedger) ResolveAgentVsAlliance(_ context.Context, _ int, battleRef string, singleLedgerID, leaderLedgerID, partnerLedgerID int, singleWins bool, percentLoss int) (ports.Receipt, error) {
	winners := []int{leaderLedgerID, partnerLedgerID}
	if singleWins {
		winners = []int{singleLedgerID}
	}
	return l.record(game.TopologyAgentVsAlliance, battleRef, winners, percentLoss)
}

func (l *stubLedger) ResolveAllianceVsAlliance(_ context.Context, _ int, battleRef string, leaderALedgerID, partnerALedgerID, leaderBLedgerID, partnerBLedgerID int, sideAWins bool, percentLoss int) (ports.Receipt, error) {
	winners := []int{leaderBLedgerID, partnerBLedgerID}
	if sideAWins {
		winners = []int{leaderALedgerID, partnerALedgerID}
	}
	return l.record(game.TopologyAllianceVsAlliance, battleRef, winners, percentLoss)
}

func (l *stubLedger) FormAlliance(_ context.Context, _, _, _ int) (ports.Receipt, error) {
	return ports.Receipt{Tx: "tx-form"}, nil
}

func (l *stubLedger) BreakAlliance(_ context.Context, _, _, _ int) (ports.Receipt, error) {
	return ports.Receipt{Tx: "tx-break"}, nil
}

func (l *stubLedger) BattleOutcome(_ context.Context, _ int, _ string) (ports.BattleOutcome, error) {
	if l.outcomeErr != nil {
		return ports.BattleOutcome{}, l.outcomeErr
	}
	return l.outcome, nil
}

type stubMetrics struct {
	engagements      int
	resolutions      int
	walkovers        int
	deaths           int
	commitFailures   int
	reconcileRepairs int
	alliancesFormed  int
	alliancesBroken  int
	ignores          int
}

func (m *stubMetrics) RecordEngagement(game.Topology) { m.engagements++ }

func (m *stubMetrics) RecordResolution(_ game.Topology, walkover bool) {
	m.resolutions++
	if walkover {
		m.walkovers++
	}
}

func (m *stubMetrics) RecordDeath()           { m.deaths++ }
func (m *stubMetrics) RecordCommitFailure()   { m.commitFailures++ }
func (m *stubMetrics) RecordReconcileRepair() { m.reconcileRepairs++ }
func (m *stubMetrics) RecordAllianceFormed()  { m.alliancesFormed++ }
func (m *stubMetrics) RecordAllianceBroken()  { m.alliancesBroken++ }
func (m *stubMetrics) RecordIgnore()          { m.ignores++ }
