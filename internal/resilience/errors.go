// Package resilience provides the typed upstream error taxonomy and the
// retry state machine used by the HTTP fetcher.
package resilience

import (
	"errors"
	"fmt"
	"net"
	"syscall"
)

// Kind labels for error classification, stable across the API boundary.
const (
	KindConfig      = "config_error"
	KindInvalidArg  = "invalid_argument"
	KindNotFound    = "not_found"
	KindRateLimited = "rate_limited"
	KindUpstream    = "upstream_error"
	KindTransport   = "transport_error"
	KindDecode      = "decode_error"
	KindInternal    = "internal"
)

// ConfigError indicates required configuration (e.g., an API key) is missing.
// Never retried.
type ConfigError struct {
	Missing string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", e.Missing)
}

// NotFoundError indicates the upstream has no record for the given key.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// RateLimitedError indicates the upstream returned 429 after retries were
// exhausted. Callers should back off before re-querying the same key.
type RateLimitedError struct {
	URL string
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited by %s after exhausting retries", e.URL)
}

// UpstreamError indicates a non-2xx, non-retryable status. Carries the
// status and body for diagnostics; treated as a caller/config problem.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.Status, e.Body)
}

// TransportError indicates a network-level failure (DNS, timeout,
// connection reset) after retries were exhausted.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError indicates a 2xx response body that did not match the expected
// shape. A contract violation; never retried.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Kinder lets error types outside this package declare their own kind
// (e.g., provider-specific input validation errors).
type Kinder interface {
	error
	Kind() string
}

// Kind maps an error to its stable taxonomy label. Unrecognized errors map
// to KindInternal.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	var (
		cfg  *ConfigError
		nf   *NotFoundError
		rl   *RateLimitedError
		up   *UpstreamError
		tr   *TransportError
		dec  *DecodeError
		kerr Kinder
	)
	switch {
	case errors.As(err, &cfg):
		return KindConfig
	case errors.As(err, &nf):
		return KindNotFound
	case errors.As(err, &rl):
		return KindRateLimited
	case errors.As(err, &up):
		return KindUpstream
	case errors.As(err, &tr):
		return KindTransport
	case errors.As(err, &dec):
		return KindDecode
	case errors.As(err, &kerr):
		return kerr.Kind()
	}
	return KindInternal
}

// RetryableStatus reports whether an HTTP status indicates a transient
// server-side condition that is safe to retry for read-only requests.
func RetryableStatus(status int) bool {
	return status == 429 || status >= 500
}

// TransientNetwork reports whether err looks like a transient network
// failure worth retrying: timeouts, resets, refused connections, DNS.
func TransientNetwork(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	return errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED)
}
