package battle

import "time"

// Retry pacing for failed ledger commits. Delays double per failure and are
// capped so a battle never leaves the sweep horizon entirely. The schedule is
// persisted on the battle row, which keeps it stable across restarts.
const (
	DefaultRetryBase = 30 * time.Second
	DefaultRetryCap  = 15 * time.Minute
)

// RetryDelay returns the hold before attempt failCount+1, given failCount
// failures so far. failCount of zero or less means no hold.
func RetryDelay(failCount int, base, cap time.Duration) time.Duration {
	if failCount <= 0 {
		return 0
	}
	if base <= 0 {
		base = DefaultRetryBase
	}
	if cap <= 0 {
		cap = DefaultRetryCap
	}
	delay := base
	for i := 1; i < failCount; i++ {
		delay *= 2
		if delay >= cap {
			return cap
		}
	}
	if delay > cap {
		return cap
	}
	return delay
}
