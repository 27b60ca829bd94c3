package resilience

import (
	"errors"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackoffSchedule(t *testing.T) {
	p := Policy{MaxRetries: 3, BackoffBase: time.Second}

	assert.Equal(t, time.Second, p.Backoff(0))
	assert.Equal(t, 2*time.Second, p.Backoff(1))
	assert.Equal(t, 4*time.Second, p.Backoff(2))
}

func TestBackoffDefaults(t *testing.T) {
	var p Policy
	assert.Equal(t, time.Second, p.Backoff(0))
	assert.Equal(t, 2*time.Second, p.Backoff(1))
}

func TestDecideSuccess(t *testing.T) {
	p := DefaultPolicy()

	for _, status := range []int{200, 201, 204} {
		d := p.Decide(0, status, "example.org", nil, "")
		assert.Equal(t, ActionSuccess, d.Action, "status %d", status)
	}
}

func TestDecideRetryableStatuses(t *testing.T) {
	p := Policy{MaxRetries: 3, BackoffBase: time.Second}

	for _, status := range []int{429, 500, 502, 503} {
		d := p.Decide(0, status, "example.org", nil, "")
		require.Equal(t, ActionRetry, d.Action, "status %d", status)
		assert.Equal(t, time.Second, d.Delay)
	}
}

func TestDecideRetryDelayGrows(t *testing.T) {
	p := Policy{MaxRetries: 3, BackoffBase: time.Second}

	d0 := p.Decide(0, 500, "example.org", nil, "")
	d1 := p.Decide(1, 500, "example.org", nil, "")
	d2 := p.Decide(2, 500, "example.org", nil, "")

	assert.Equal(t, time.Second, d0.Delay)
	assert.Equal(t, 2*time.Second, d1.Delay)
	assert.Equal(t, 4*time.Second, d2.Delay)
}

func TestDecideExhausted429IsRateLimited(t *testing.T) {
	p := Policy{MaxRetries: 3, BackoffBase: time.Second}

	d := p.Decide(3, 429, "v3.openstates.org", nil, "")
	require.Equal(t, ActionFail, d.Action)

	var rl *RateLimitedError
	require.ErrorAs(t, d.Err, &rl)
	assert.Equal(t, "v3.openstates.org", rl.URL)
	assert.Equal(t, KindRateLimited, Kind(d.Err))
}

func TestDecideExhausted500IsUpstream(t *testing.T) {
	p := Policy{MaxRetries: 3, BackoffBase: time.Second}

	d := p.Decide(3, 503, "example.org", nil, "unavailable")
	require.Equal(t, ActionFail, d.Action)

	var up *UpstreamError
	require.ErrorAs(t, d.Err, &up)
	assert.Equal(t, 503, up.Status)
	assert.Equal(t, "unavailable", up.Body)
}

func TestDecideNonRetryableStatusFailsImmediately(t *testing.T) {
	p := Policy{MaxRetries: 3, BackoffBase: time.Second}

	for _, status := range []int{400, 401, 403, 404, 422} {
		d := p.Decide(0, status, "example.org", nil, "nope")
		require.Equal(t, ActionFail, d.Action, "status %d", status)

		var up *UpstreamError
		require.ErrorAs(t, d.Err, &up)
		assert.Equal(t, status, up.Status)
	}
}

func TestDecideTransportFailure(t *testing.T) {
	p := Policy{MaxRetries: 2, BackoffBase: time.Second}
	netErr := errors.New("connection reset by peer")

	d := p.Decide(0, 0, "example.org", netErr, "")
	assert.Equal(t, ActionRetry, d.Action)

	d = p.Decide(2, 0, "example.org", netErr, "")
	require.Equal(t, ActionFail, d.Action)

	var tr *TransportError
	require.ErrorAs(t, d.Err, &tr)
	assert.ErrorIs(t, d.Err, netErr)
}

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"config", &ConfigError{Missing: "api key"}, KindConfig},
		{"not found", &NotFoundError{Resource: "ZIP 00000"}, KindNotFound},
		{"rate limited", &RateLimitedError{URL: "x"}, KindRateLimited},
		{"upstream", &UpstreamError{Status: 500}, KindUpstream},
		{"transport", &TransportError{Err: errors.New("eof")}, KindTransport},
		{"decode", &DecodeError{Err: errors.New("bad json")}, KindDecode},
		{"unknown", errors.New("anything else"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Kind(tt.err))
		})
	}
}

func TestRetryableStatus(t *testing.T) {
	assert.True(t, RetryableStatus(429))
	assert.True(t, RetryableStatus(500))
	assert.True(t, RetryableStatus(599))
	assert.False(t, RetryableStatus(200))
	assert.False(t, RetryableStatus(404))
	assert.False(t, RetryableStatus(418))
}

func TestTransientNetwork(t *testing.T) {
	assert.False(t, TransientNetwork(nil))
	assert.True(t, TransientNetwork(syscall.ECONNRESET))
	assert.True(t, TransientNetwork(syscall.ECONNREFUSED))
	assert.True(t, TransientNetwork(&net.DNSError{Name: "v3.openstates.org"}))
	assert.False(t, TransientNetwork(errors.New("parse failure")))
}
