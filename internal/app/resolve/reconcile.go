package resolve

import (
	"context"
	"time"
)

// Reconcile repairs divergence between the ledger and the projection: commit
// markers older than the grace window whose finalize never landed are
// re-applied. Returns how many were repaired; a failing marker is skipped so
// one stuck battle cannot block the rest.
func (u UseCase) Reconcile(ctx context.Context, olderThan time.Time, limit int) (int, error) {
	commits, err := u.Commits.ListUnapplied(ctx, olderThan, limit)
	if err != nil {
		return 0, err
	}

	repaired := 0
	var lastErr error
	for _, commit := range commits {
		res, err := u.finalizeCommit(ctx, commit)
		if err != nil {
			lastErr = err
			continue
		}
		if !res.AlreadyResolved {
			repaired++
			if u.Metrics != nil {
				u.Metrics.RecordReconcileRepair()
			}
		}
	}
	return repaired, lastErr
}
