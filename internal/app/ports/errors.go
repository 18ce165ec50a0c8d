package ports

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")

	// ErrLedgerUnavailable marks a transient ledger failure. Battle
	// resolution retries these on a persisted backoff schedule.
	ErrLedgerUnavailable = errors.New("ledger unavailable")

	// ErrLedgerRejected marks a call the ledger program refused outright.
	// Retrying the identical call cannot succeed.
	ErrLedgerRejected = errors.New("ledger rejected the call")

	// ErrAlreadyCommitted is returned when the ledger program has already
	// accepted a commit for the same reference. The recorded outcome is
	// canonical and must be fetched, never re-drawn.
	ErrAlreadyCommitted = errors.New("already committed on ledger")
)
