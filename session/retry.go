package session

import (
	"net/http"
	"time"
)

// RetryPolicy controls how transient failures are retried. HMRC leaves
// the transient-failure policy to the integrating application, so it is
// injectable rather than fixed; the default mirrors the observed
// behaviour of the service (occasional 503s worth one or two retries).
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// Backoff is the fixed delay between attempts.
	Backoff time.Duration

	// RetryableStatus lists HTTP status codes retried until the
	// attempts are exhausted.
	RetryableStatus []int
}

// DefaultRetryPolicy retries 503 responses and network failures twice
// with a short fixed delay.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     3,
		Backoff:         250 * time.Millisecond,
		RetryableStatus: []int{http.StatusServiceUnavailable},
	}
}

// NoRetry disables all transient-failure retries.
func NoRetry() RetryPolicy {
	return RetryPolicy{MaxAttempts: 1}
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

func (p RetryPolicy) retryable(status int) bool {
	for _, s := range p.RetryableStatus {
		if s == status {
			return true
		}
	}
	return false
}
