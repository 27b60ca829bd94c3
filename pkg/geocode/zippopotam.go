package geocode

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/civicsnap/civic-cli/internal/fetcher"
	"github.com/civicsnap/civic-cli/internal/resilience"
)

const defaultBaseURL = "https://api.zippopotam.us"

// zipResponse mirrors the zippopotam.us payload. Coordinates arrive as
// strings and "place name" really does contain a space.
type zipResponse struct {
	Places []zipPlace `json:"places"`
}

type zipPlace struct {
	PlaceName string `json:"place name"`
	State     string `json:"state"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
	County    string `json:"county"`
}

// Zippopotam is a Client backed by the zippopotam.us API.
type Zippopotam struct {
	fetcher *fetcher.HTTPFetcher
	baseURL string
}

// Option configures the Zippopotam client.
type Option func(*Zippopotam)

// WithBaseURL overrides the API base URL (for testing).
func WithBaseURL(base string) Option {
	return func(z *Zippopotam) {
		z.baseURL = base
	}
}

// NewZippopotam creates a zippopotam.us geocoding client.
func NewZippopotam(f *fetcher.HTTPFetcher, opts ...Option) *Zippopotam {
	z := &Zippopotam{fetcher: f, baseURL: defaultBaseURL}
	for _, opt := range opts {
		opt(z)
	}
	return z
}

var _ Client = (*Zippopotam)(nil)

// Lookup resolves a 5-digit ZIP code. A ZIP the provider does not know
// (any terminal upstream status, or an empty places list) is a
// NotFoundError; rate-limit and transport failures propagate as-is.
func (z *Zippopotam) Lookup(ctx context.Context, zip string) (*Result, error) {
	if !validZip(zip) {
		return nil, &InvalidZipError{Input: zip}
	}

	resp, err := fetcher.GetJSON[zipResponse](ctx, z.fetcher, fmt.Sprintf("%s/us/%s", z.baseURL, zip), nil)
	if err != nil {
		var up *resilience.UpstreamError
		if errors.As(err, &up) {
			return nil, &resilience.NotFoundError{Resource: "ZIP code " + zip}
		}
		return nil, err
	}

	if len(resp.Places) == 0 {
		return nil, &resilience.NotFoundError{Resource: "ZIP code " + zip}
	}

	place := resp.Places[0]
	lat, latErr := strconv.ParseFloat(place.Latitude, 64)
	lng, lngErr := strconv.ParseFloat(place.Longitude, 64)
	if latErr != nil || lngErr != nil {
		return nil, &resilience.DecodeError{
			Err: fmt.Errorf("unparsable coordinates %q,%q for ZIP %s", place.Latitude, place.Longitude, zip),
		}
	}

	zap.L().Debug("geocoded ZIP",
		zap.String("zip", zip),
		zap.String("city", place.PlaceName),
		zap.String("state", place.State),
	)

	return &Result{
		Lat:    lat,
		Lng:    lng,
		City:   place.PlaceName,
		State:  place.State,
		County: place.County,
	}, nil
}

func validZip(zip string) bool {
	if len(zip) != 5 {
		return false
	}
	for _, c := range zip {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
