// Package geocode resolves US ZIP codes to coordinates and place names via
// the zippopotam.us API.
package geocode

import (
	"context"
	"fmt"

	"github.com/civicsnap/civic-cli/internal/resilience"
)

// Result is the resolved location for a ZIP code. Immutable once produced;
// the orchestrator caches it per ZIP.
type Result struct {
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	City   string  `json:"city"`
	State  string  `json:"state"`
	County string  `json:"county,omitempty"`
}

// Client resolves ZIP codes to locations.
type Client interface {
	Lookup(ctx context.Context, zip string) (*Result, error)
}

// InvalidZipError indicates the caller supplied a malformed ZIP code.
type InvalidZipError struct {
	Input string
}

func (e *InvalidZipError) Error() string {
	return fmt.Sprintf("invalid ZIP code %q: must be 5 digits", e.Input)
}

// Kind implements resilience.Kinder.
func (e *InvalidZipError) Kind() string { return resilience.KindInvalidArg }
