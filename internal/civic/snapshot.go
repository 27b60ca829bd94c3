// Package civic orchestrates the civic snapshot aggregation: geocode a ZIP
// code, fan out to bills and legislators concurrently, post-process, and
// assemble a single result with per-source failure isolation.
package civic

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/civicsnap/civic-cli/internal/resilience"
	"github.com/civicsnap/civic-cli/internal/scorer"
	"github.com/civicsnap/civic-cli/internal/store"
	"github.com/civicsnap/civic-cli/pkg/geocode"
	"github.com/civicsnap/civic-cli/pkg/openstates"
)

// Failure is the typed error descriptor crossing the downstream boundary.
type Failure struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Outcome is one fan-out slot: either a value or a failure, never both.
type Outcome[T any] struct {
	OK      bool     `json:"ok"`
	Value   T        `json:"value,omitempty"`
	Failure *Failure `json:"failure,omitempty"`
}

func success[T any](v T) Outcome[T] {
	return Outcome[T]{OK: true, Value: v}
}

func failure[T any](err error) Outcome[T] {
	return Outcome[T]{Failure: &Failure{
		Kind:    resilience.Kind(err),
		Message: err.Error(),
	}}
}

// Snapshot is the consolidated civic view for one ZIP code. The issues and
// legislators slots fail independently; geocode failure means no Snapshot
// at all.
type Snapshot struct {
	Zip         string                       `json:"zip"`
	Geocode     *geocode.Result              `json:"geocode"`
	Issues      Outcome[[]scorer.Issue]      `json:"issues"`
	Legislators Outcome[[]openstates.Person] `json:"legislators"`
}

// Options tunes the orchestrator. Zero values fall back to the documented
// defaults: geocode 1h, bills/legislators 10m, 10 bills sorted by
// updated_desc.
type Options struct {
	GeocodeTTL     time.Duration
	BillsTTL       time.Duration
	LegislatorsTTL time.Duration
	BillsPerPage   int
	BillsSort      string
}

func (o Options) withDefaults() Options {
	if o.GeocodeTTL <= 0 {
		o.GeocodeTTL = time.Hour
	}
	if o.BillsTTL <= 0 {
		o.BillsTTL = 10 * time.Minute
	}
	if o.LegislatorsTTL <= 0 {
		o.LegislatorsTTL = 10 * time.Minute
	}
	if o.BillsPerPage <= 0 {
		o.BillsPerPage = 10
	}
	if o.BillsSort == "" {
		o.BillsSort = "updated_desc"
	}
	return o
}

// Service aggregates civic data for ZIP codes. Stateless per request apart
// from the cache; safe for concurrent use.
type Service struct {
	geocoder    geocode.Client
	legislature openstates.Client
	categorizer *scorer.Categorizer
	cache       *Cache
	durable     store.GeocodeCache // optional second-level geocode cache
	opts        Options
	now         func() time.Time
}

// NewService creates the aggregation service. durable may be nil.
func NewService(geocoder geocode.Client, legislature openstates.Client, categorizer *scorer.Categorizer, durable store.GeocodeCache, opts Options) *Service {
	return &Service{
		geocoder:    geocoder,
		legislature: legislature,
		categorizer: categorizer,
		cache:       NewCache(),
		durable:     durable,
		opts:        opts.withDefaults(),
		now:         time.Now,
	}
}

// WithNow sets a fixed clock for testing.
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}

// Snapshot aggregates the civic view for a ZIP code. Geocoding failure is
// fatal; bills and legislators fetch concurrently afterward, each failure
// confined to its own outcome slot. Retries happen only inside the fetcher,
// never across stages.
func (s *Service) Snapshot(ctx context.Context, zip string) (*Snapshot, error) {
	loc, err := s.Geocode(ctx, zip)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{Zip: zip, Geocode: loc}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		issues, err := s.Issues(ctx, loc.State)
		if err != nil {
			zap.L().Warn("bills fetch failed",
				zap.String("zip", zip),
				zap.String("state", loc.State),
				zap.String("kind", resilience.Kind(err)),
				zap.Error(err),
			)
			snap.Issues = failure[[]scorer.Issue](err)
			return nil
		}
		snap.Issues = success(issues)
		return nil
	})
	g.Go(func() error {
		reps, err := s.Legislators(ctx, loc.Lat, loc.Lng)
		if err != nil {
			zap.L().Warn("legislators fetch failed",
				zap.String("zip", zip),
				zap.Float64("lat", loc.Lat),
				zap.Float64("lng", loc.Lng),
				zap.String("kind", resilience.Kind(err)),
				zap.Error(err),
			)
			snap.Legislators = failure[[]openstates.Person](err)
			return nil
		}
		snap.Legislators = success(reps)
		return nil
	})
	_ = g.Wait()

	return snap, nil
}

// Geocode resolves a ZIP through the in-memory cache (TTL 1h), reading
// through the durable store when configured.
func (s *Service) Geocode(ctx context.Context, zip string) (*geocode.Result, error) {
	return getTyped(ctx, s.cache, "geocode:"+zip, s.opts.GeocodeTTL,
		func(ctx context.Context) (*geocode.Result, error) {
			if s.durable != nil {
				if res, ok, err := s.durable.Get(ctx, zip); err != nil {
					zap.L().Warn("durable geocode cache read failed", zap.String("zip", zip), zap.Error(err))
				} else if ok {
					return res, nil
				}
			}

			res, err := s.geocoder.Lookup(ctx, zip)
			if err != nil {
				return nil, err
			}

			if s.durable != nil {
				if err := s.durable.Put(ctx, zip, res, s.now().Add(s.opts.GeocodeTTL)); err != nil {
					zap.L().Warn("durable geocode cache write failed", zap.String("zip", zip), zap.Error(err))
				}
			}
			return res, nil
		})
}

// Issues fetches bills for a state, cached per state, and derives
// categorized impact-sorted issues. The raw bill list is what gets cached;
// impact depends on the clock, so it is derived fresh per call.
func (s *Service) Issues(ctx context.Context, state string) ([]scorer.Issue, error) {
	jurisdiction, err := openstates.JurisdictionID(state)
	if err != nil {
		return nil, err
	}

	bills, err := getTyped(ctx, s.cache, "bills:"+jurisdiction, s.opts.BillsTTL,
		func(ctx context.Context) ([]openstates.Bill, error) {
			resp, err := s.legislature.SearchBills(ctx, openstates.BillQuery{
				Jurisdiction: jurisdiction,
				PerPage:      s.opts.BillsPerPage,
				Sort:         s.opts.BillsSort,
			})
			if err != nil {
				return nil, err
			}
			return resp.Results, nil
		})
	if err != nil {
		return nil, err
	}

	return s.categorizer.BuildIssues(bills, s.now()), nil
}

// Legislators fetches representatives for coordinates, cached per
// coordinate pair, and returns them ranked (senators first, then by name).
func (s *Service) Legislators(ctx context.Context, lat, lng float64) ([]openstates.Person, error) {
	key := fmt.Sprintf("legislators:%s,%s",
		strconv.FormatFloat(lat, 'f', -1, 64),
		strconv.FormatFloat(lng, 'f', -1, 64))

	people, err := getTyped(ctx, s.cache, key, s.opts.LegislatorsTTL,
		func(ctx context.Context) ([]openstates.Person, error) {
			resp, err := s.legislature.PeopleByLocation(ctx, lat, lng)
			if err != nil {
				return nil, err
			}
			return resp.Results, nil
		})
	if err != nil {
		return nil, err
	}

	return scorer.Rank(people), nil
}
