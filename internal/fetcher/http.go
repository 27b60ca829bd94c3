// Package fetcher implements the resilient HTTP client used for all
// upstream civic-data and geocoding calls: GET-only, retry with exponential
// backoff on 429/5xx/transport failures, per-host rate limiting, and typed
// error classification.
package fetcher

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/civicsnap/civic-cli/internal/resilience"
)

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent    string
	Timeout      time.Duration
	Policy       resilience.Policy
	RateLimiters map[string]*rate.Limiter
}

// DefaultRateLimiters returns per-host limiters for the upstream providers.
// OpenStates enforces a low request budget per key; zippopotam is unmetered
// but free, so be polite.
func DefaultRateLimiters() map[string]*rate.Limiter {
	return map[string]*rate.Limiter{
		"v3.openstates.org": rate.NewLimiter(5, 5),
		"api.zippopotam.us": rate.NewLimiter(10, 10),
	}
}

// HTTPFetcher issues GET requests with retry, backoff, and rate limiting.
// All requests made through it are read-only, so universal retry is safe.
type HTTPFetcher struct {
	client   *http.Client
	opts     HTTPOptions
	limiters map[string]*rate.Limiter
}

// NewHTTPFetcher creates a fetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "civic-cli/1.0"
	}
	limiters := opts.RateLimiters
	if limiters == nil {
		limiters = DefaultRateLimiters()
	}
	transport := &http.Transport{
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     20,
		IdleConnTimeout:     90 * time.Second,
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		opts:     opts,
		limiters: limiters,
	}
}

func (f *HTTPFetcher) limiterFor(rawURL string) *rate.Limiter {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	return f.limiters[u.Host]
}

// Get fetches rawURL with the given query parameters and returns the body
// of a 2xx response. Failures are classified per the resilience taxonomy:
// RateLimitedError, UpstreamError, or TransportError.
func (f *HTTPFetcher) Get(ctx context.Context, rawURL string, params url.Values) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: parse url %s", rawURL)
	}
	if len(params) > 0 {
		q := u.Query()
		for key, vals := range params {
			for _, v := range vals {
				if v != "" {
					q.Add(key, v)
				}
			}
		}
		u.RawQuery = q.Encode()
	}

	lim := f.limiterFor(u.String())

	for attempt := 0; ; attempt++ {
		if lim != nil {
			if err := lim.Wait(ctx); err != nil {
				return nil, eris.Wrap(err, "fetcher: rate limiter wait")
			}
		}

		body, status, netErr := f.do(ctx, u.String())

		d := f.opts.Policy.Decide(attempt, status, u.Host, netErr, string(body))
		switch d.Action {
		case resilience.ActionSuccess:
			return body, nil
		case resilience.ActionFail:
			return nil, d.Err
		case resilience.ActionRetry:
			zap.L().Warn("upstream attempt failed, backing off",
				zap.String("host", u.Host),
				zap.Int("status", status),
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", d.Delay),
				zap.Error(netErr),
			)
			if err := sleep(ctx, d.Delay); err != nil {
				return nil, &resilience.TransportError{Err: err}
			}
		}
	}
}

func (f *HTTPFetcher) do(ctx context.Context, fullURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close() //nolint:errcheck

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return nil, 0, readErr
	}
	return body, resp.StatusCode, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// GetJSON fetches rawURL and decodes the 2xx body into T. A body that does
// not parse is a DecodeError and is not retried.
func GetJSON[T any](ctx context.Context, f *HTTPFetcher, rawURL string, params url.Values) (*T, error) {
	body, err := f.Get(ctx, rawURL, params)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &resilience.DecodeError{Err: err}
	}
	return &out, nil
}
