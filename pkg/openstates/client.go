// Package openstates provides a client for the OpenStates v3 API: bill
// search by jurisdiction and legislator lookup by coordinates or
// jurisdiction. All endpoints are GET and carry the API key as a query
// parameter.
package openstates

import (
	"context"
	"net/url"
	"strconv"

	"github.com/civicsnap/civic-cli/internal/fetcher"
	"github.com/civicsnap/civic-cli/internal/resilience"
)

const defaultBaseURL = "https://v3.openstates.org"

// Client defines the OpenStates operations used by the aggregation core.
type Client interface {
	SearchBills(ctx context.Context, q BillQuery) (*BillsResponse, error)
	PeopleByLocation(ctx context.Context, lat, lng float64) (*PeopleResponse, error)
	PeopleByJurisdiction(ctx context.Context, jurisdiction string, perPage, page int) (*PeopleResponse, error)
}

// BillQuery holds the filters for SearchBills. Jurisdiction is required;
// zero values for the rest fall back to the API defaults.
type BillQuery struct {
	Jurisdiction string
	Session      string
	UpdatedSince string
	PerPage      int
	Page         int
	Sort         string
}

type httpClient struct {
	fetcher *fetcher.HTTPFetcher
	apiKey  string
	baseURL string
}

// Option configures the OpenStates client.
type Option func(*httpClient)

// WithBaseURL overrides the API base URL (for testing).
func WithBaseURL(base string) Option {
	return func(c *httpClient) {
		c.baseURL = base
	}
}

// NewClient creates an OpenStates client. An empty API key is a ConfigError:
// the provider rejects unauthenticated requests, so fail before the first
// call rather than on it.
func NewClient(f *fetcher.HTTPFetcher, apiKey string, opts ...Option) (Client, error) {
	if apiKey == "" {
		return nil, &resilience.ConfigError{Missing: "OpenStates API key"}
	}
	c := &httpClient{fetcher: f, apiKey: apiKey, baseURL: defaultBaseURL}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SearchBills queries GET /bills for the given jurisdiction.
func (c *httpClient) SearchBills(ctx context.Context, q BillQuery) (*BillsResponse, error) {
	params := url.Values{}
	params.Set("jurisdiction", q.Jurisdiction)
	params.Set("per_page", strconv.Itoa(orDefault(q.PerPage, 20)))
	params.Set("page", strconv.Itoa(orDefault(q.Page, 1)))
	if q.Session != "" {
		params.Set("session", q.Session)
	}
	if q.UpdatedSince != "" {
		params.Set("updated_since", q.UpdatedSince)
	}
	if q.Sort != "" {
		params.Set("sort", q.Sort)
	}
	params.Set("apikey", c.apiKey)
	return fetcher.GetJSON[BillsResponse](ctx, c.fetcher, c.baseURL+"/bills", params)
}

// PeopleByLocation queries GET /people.geo for legislators whose districts
// contain the given coordinates.
func (c *httpClient) PeopleByLocation(ctx context.Context, lat, lng float64) (*PeopleResponse, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lng", strconv.FormatFloat(lng, 'f', -1, 64))
	params.Set("apikey", c.apiKey)
	return fetcher.GetJSON[PeopleResponse](ctx, c.fetcher, c.baseURL+"/people.geo", params)
}

// PeopleByJurisdiction queries GET /people for legislators of a
// jurisdiction, paged.
func (c *httpClient) PeopleByJurisdiction(ctx context.Context, jurisdiction string, perPage, page int) (*PeopleResponse, error) {
	params := url.Values{}
	params.Set("jurisdiction", jurisdiction)
	params.Set("per_page", strconv.Itoa(orDefault(perPage, 20)))
	params.Set("page", strconv.Itoa(orDefault(page, 1)))
	params.Set("apikey", c.apiKey)
	return fetcher.GetJSON[PeopleResponse](ctx, c.fetcher, c.baseURL+"/people", params)
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
