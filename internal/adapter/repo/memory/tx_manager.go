package memory

import (
	"context"
	"sync"
)

// TxManager serializes transactions over the store and restores the
// pre-transaction snapshot when fn fails, mirroring the rollback the gorm
// adapter gets from postgres. Usecases rely on that to keep the projection
// untouched when a nested ledger call throws.
type TxManager struct {
	store *Store
	txMu  *sync.Mutex
}

func NewTxManager(store *Store) TxManager {
	return TxManager{store: store, txMu: &sync.Mutex{}}
}

func (t TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.txMu.Lock()
	defer t.txMu.Unlock()

	t.store.mu.Lock()
	snap := t.store.snapshot()
	t.store.mu.Unlock()

	if err := fn(ctx); err != nil {
		t.store.mu.Lock()
		t.store.restore(snap)
		t.store.mu.Unlock()
		return err
	}
	return nil
}
