package resilience

import "time"

// Action is the outcome of classifying a single fetch attempt.
type Action int

const (
	// ActionSuccess means the response is usable; stop retrying.
	ActionSuccess Action = iota
	// ActionRetry means wait Decision.Delay and try again.
	ActionRetry
	// ActionFail means stop with Decision.Err.
	ActionFail
)

// Decision is the transition produced by Policy.Decide for one attempt.
type Decision struct {
	Action Action
	Delay  time.Duration
	Err    error
}

// Policy controls the retry loop: how many retries follow the first attempt
// and the base of the exponential backoff schedule.
type Policy struct {
	// MaxRetries is the number of retries after the initial attempt.
	// A value of 3 yields at most 4 total attempts. Default: 3.
	MaxRetries int

	// BackoffBase is the delay before the first retry; each subsequent
	// retry doubles it (base, 2*base, 4*base, ...). Default: 1s.
	BackoffBase time.Duration
}

// DefaultPolicy returns the standard policy: 3 retries, 1s backoff base.
func DefaultPolicy() Policy {
	return Policy{MaxRetries: 3, BackoffBase: time.Second}
}

func (p Policy) withDefaults() Policy {
	if p.MaxRetries <= 0 {
		p.MaxRetries = 3
	}
	if p.BackoffBase <= 0 {
		p.BackoffBase = time.Second
	}
	return p
}

// Backoff returns the delay before retrying after the given zero-based
// attempt: base * 2^attempt.
func (p Policy) Backoff(attempt int) time.Duration {
	p = p.withDefaults()
	return p.BackoffBase << uint(attempt)
}

// Decide classifies the outcome of attempt number attempt (zero-based).
// A non-nil netErr means the request never produced an HTTP response;
// otherwise status and body describe the response received from url.
//
// Transitions:
//   - transport failure, attempts remain  -> retry with backoff
//   - transport failure, exhausted        -> TransportError
//   - 429 or 5xx, attempts remain         -> retry with backoff
//   - 429, exhausted                      -> RateLimitedError
//   - 5xx, exhausted                      -> UpstreamError
//   - other non-2xx                       -> UpstreamError (no retry)
//   - 2xx                                 -> success
func (p Policy) Decide(attempt int, status int, url string, netErr error, body string) Decision {
	p = p.withDefaults()
	remaining := attempt < p.MaxRetries

	if netErr != nil {
		if remaining {
			return Decision{Action: ActionRetry, Delay: p.Backoff(attempt)}
		}
		return Decision{Action: ActionFail, Err: &TransportError{Err: netErr}}
	}

	switch {
	case status >= 200 && status < 300:
		return Decision{Action: ActionSuccess}
	case RetryableStatus(status):
		if remaining {
			return Decision{Action: ActionRetry, Delay: p.Backoff(attempt)}
		}
		if status == 429 {
			return Decision{Action: ActionFail, Err: &RateLimitedError{URL: url}}
		}
		return Decision{Action: ActionFail, Err: &UpstreamError{Status: status, Body: body}}
	default:
		return Decision{Action: ActionFail, Err: &UpstreamError{Status: status, Body: body}}
	}
}
