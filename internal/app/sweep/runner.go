package sweep

import (
	"context"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"

	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/app/ports"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/app/resolve"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/game"
)

const (
	DefaultInterval = 30 * time.Second
	DefaultBatch    = 16
	// DefaultGrace is how long a commit marker may sit unapplied before the
	// reconciler treats it as abandoned rather than in-flight.
	DefaultGrace = 2 * time.Minute
)

// Resolver is the slice of the resolution usecase the sweep drives.
type Resolver interface {
	Execute(ctx context.Context, req resolve.Request) (resolve.Response, error)
	Reconcile(ctx context.Context, olderThan time.Time, limit int) (int, error)
}

// Runner periodically resolves due battles and repairs abandoned commits.
// Battles never share participants, so due battles resolve concurrently
// without touching the same rows.
type Runner struct {
	Battles  ports.BattleRepository
	Resolver Resolver
	Interval time.Duration
	Batch    int
	Grace    time.Duration
	Now      func() time.Time
}

func (r Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r Runner) batch() int {
	if r.Batch > 0 {
		return r.Batch
	}
	return DefaultBatch
}

func (r Runner) grace() time.Duration {
	if r.Grace > 0 {
		return r.Grace
	}
	return DefaultGrace
}

// Run sweeps immediately, then on every tick until the context is canceled.
func (r Runner) Run(ctx context.Context) {
	interval := r.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	r.RunOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

// RunOnce performs one sweep pass. Dispatched resolutions run on a detached
// context so shutdown does not abandon a battle between its ledger commit
// and its projection finalize.
func (r Runner) RunOnce(ctx context.Context) (resolved, repaired int) {
	now := r.now()

	due, err := r.Battles.ListDue(ctx, now, r.batch())
	if err != nil {
		hlog.Errorf("sweep: list due battles: %v", err)
		return 0, 0
	}

	detached := context.WithoutCancel(ctx)
	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, b := range due {
		wg.Add(1)
		go func(b game.Battle) {
			defer wg.Done()
			res, err := r.Resolver.Execute(detached, resolve.Request{GameID: b.GameID, BattleID: b.ID})
			if err != nil {
				hlog.Warnf("sweep: resolve battle %s: %v", b.ID, err)
				return
			}
			if !res.AlreadyResolved {
				mu.Lock()
				resolved++
				mu.Unlock()
			}
		}(b)
	}
	wg.Wait()

	repaired, err = r.Resolver.Reconcile(detached, now.Add(-r.grace()), r.batch())
	if err != nil {
		hlog.Errorf("sweep: reconcile: %v", err)
	}
	return resolved, repaired
}
