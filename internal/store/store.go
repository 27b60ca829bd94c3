// Package store provides the optional durable cache for geocode lookups.
// Bills and legislators are intentionally never persisted; only the
// ZIP -> location mapping is stable enough to keep across restarts.
package store

import (
	"context"
	"time"

	"github.com/civicsnap/civic-cli/pkg/geocode"
)

// GeocodeCache is a durable read-through cache for geocode results.
// Entries past their expiry are treated as absent.
type GeocodeCache interface {
	Get(ctx context.Context, zip string) (*geocode.Result, bool, error)
	Put(ctx context.Context, zip string, res *geocode.Result, expiresAt time.Time) error
	Close() error
}
