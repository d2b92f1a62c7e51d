package renew

import "time"

const (
	// renewWindow is how far ahead of expiry a renewal is worth attempting;
	// tokens living longer than this are re-checked at this interval instead
	// of renewed early.
	renewWindow = 5 * time.Minute

	// renewLeeway is the margin before expiry that a renewal attempt must
	// start by, so the refresh exchange completes under normal network
	// latency.
	renewLeeway = 1 * time.Minute
)

// ComputeDelay returns how long to wait from now before the next renewal
// attempt, given the current token's expiry:
//
//   - an elapsed expiry means renew immediately (zero delay)
//   - an expiry within five minutes means renew one minute before it,
//     clamped to now when that margin has itself already passed
//   - anything later means check again in exactly five minutes
//
// The tiered policy avoids renewing far in advance while guaranteeing an
// attempt completes before expiry under normal network latency.
func ComputeDelay(expiry time.Time, now time.Time) time.Duration {
	if !expiry.After(now) {
		return 0
	}
	if expiry.Sub(now) <= renewWindow {
		delay := expiry.Add(-renewLeeway).Sub(now)
		if delay < 0 {
			return 0
		}
		return delay
	}
	return renewWindow
}
