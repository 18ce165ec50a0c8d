package inmemory

import (
	"sync"

	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/game"
)

type Snapshot struct {
	Engagements      uint64            `json:"engagements"`
	Resolutions      uint64            `json:"resolutions"`
	Walkovers        uint64            `json:"walkovers"`
	Deaths           uint64            `json:"deaths"`
	CommitFailures   uint64            `json:"commit_failures"`
	ReconcileRepairs uint64            `json:"reconcile_repairs"`
	AlliancesFormed  uint64            `json:"alliances_formed"`
	AlliancesBroken  uint64            `json:"alliances_broken"`
	Ignores          uint64            `json:"ignores"`
	ByTopology       map[string]uint64 `json:"by_topology"`
}

// Recorder keeps engine KPIs in process for the /ops/kpi endpoint. The
// commit-failure and reconcile-repair counters are the operational signal
// for ledger/projection divergence.
type Recorder struct {
	mu               sync.Mutex
	engagements      uint64
	resolutions      uint64
	walkovers        uint64
	deaths           uint64
	commitFailures   uint64
	reconcileRepairs uint64
	alliancesFormed  uint64
	alliancesBroken  uint64
	ignores          uint64
	byTopology       map[string]uint64
}

func NewRecorder() *Recorder {
	return &Recorder{
		byTopology: map[string]uint64{},
	}
}

func (r *Recorder) RecordEngagement(topology game.Topology) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engagements++
	r.byTopology[string(topology)]++
}

func (r *Recorder) RecordResolution(topology game.Topology, walkover bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolutions++
	if walkover {
		r.walkovers++
	}
}

func (r *Recorder) RecordDeath() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deaths++
}

func (r *Recorder) RecordCommitFailure() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commitFailures++
}

func (r *Recorder) RecordReconcileRepair() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reconcileRepairs++
}

func (r *Recorder) RecordAllianceFormed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alliancesFormed++
}

func (r *Recorder) RecordAllianceBroken() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alliancesBroken++
}

func (r *Recorder) RecordIgnore() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ignores++
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Snapshot{
		Engagements:      r.engagements,
		Resolutions:      r.resolutions,
		Walkovers:        r.walkovers,
		Deaths:           r.deaths,
		CommitFailures:   r.commitFailures,
		ReconcileRepairs: r.reconcileRepairs,
		AlliancesFormed:  r.alliancesFormed,
		AlliancesBroken:  r.alliancesBroken,
		Ignores:          r.ignores,
		ByTopology:       make(map[string]uint64, len(r.byTopology)),
	}
	for k, v := range r.byTopology {
		out.ByTopology[k] = v
	}
	return out
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}
