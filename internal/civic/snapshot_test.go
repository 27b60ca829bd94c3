package civic

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicsnap/civic-cli/internal/resilience"
	"github.com/civicsnap/civic-cli/internal/scorer"
	"github.com/civicsnap/civic-cli/pkg/geocode"
	"github.com/civicsnap/civic-cli/pkg/openstates"
)

type fakeGeocoder struct {
	calls   atomic.Int32
	results map[string]*geocode.Result
	err     error
	delay   time.Duration
}

func (f *fakeGeocoder) Lookup(ctx context.Context, zip string) (*geocode.Result, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	res, ok := f.results[zip]
	if !ok {
		return nil, &resilience.NotFoundError{Resource: "ZIP code " + zip}
	}
	return res, nil
}

type fakeLegislature struct {
	billCalls   atomic.Int32
	peopleCalls atomic.Int32
	bills       []openstates.Bill
	billsErr    error
	people      []openstates.Person
	peopleErr   error
}

func (f *fakeLegislature) SearchBills(ctx context.Context, q openstates.BillQuery) (*openstates.BillsResponse, error) {
	f.billCalls.Add(1)
	if f.billsErr != nil {
		return nil, f.billsErr
	}
	return &openstates.BillsResponse{Results: f.bills}, nil
}

func (f *fakeLegislature) PeopleByLocation(ctx context.Context, lat, lng float64) (*openstates.PeopleResponse, error) {
	f.peopleCalls.Add(1)
	if f.peopleErr != nil {
		return nil, f.peopleErr
	}
	return &openstates.PeopleResponse{Results: f.people}, nil
}

func (f *fakeLegislature) PeopleByJurisdiction(ctx context.Context, jurisdiction string, perPage, page int) (*openstates.PeopleResponse, error) {
	return f.PeopleByLocation(ctx, 0, 0)
}

func austinResult() *geocode.Result {
	return &geocode.Result{Lat: 30.2713, Lng: -97.7426, City: "Austin", State: "Texas"}
}

func newTestService(geocoder geocode.Client, legislature openstates.Client) *Service {
	return NewService(geocoder, legislature, scorer.NewCategorizer(scorer.DefaultRules()), nil, Options{})
}

func TestSnapshot(t *testing.T) {
	geocoder := &fakeGeocoder{results: map[string]*geocode.Result{"78701": austinResult()}}
	legislature := &fakeLegislature{
		bills: []openstates.Bill{
			{Identifier: "HB 101", Title: "Housing Trust Fund", Subject: []string{"Housing"}},
		},
		people: []openstates.Person{
			{Name: "Bob", CurrentRole: &openstates.Role{Title: "Representative"}},
			{Name: "Amy", CurrentRole: &openstates.Role{Title: "Senator"}},
		},
	}
	svc := newTestService(geocoder, legislature)

	snap, err := svc.Snapshot(context.Background(), "78701")
	require.NoError(t, err)

	assert.Equal(t, "78701", snap.Zip)
	assert.Equal(t, austinResult(), snap.Geocode)

	require.True(t, snap.Issues.OK)
	require.Len(t, snap.Issues.Value, 1)
	assert.Equal(t, scorer.CategoryHousing, snap.Issues.Value[0].Category)

	require.True(t, snap.Legislators.OK)
	require.Len(t, snap.Legislators.Value, 2)
	assert.Equal(t, "Amy", snap.Legislators.Value[0].Name, "senators rank first")
}

func TestSnapshotGeocodeFailureIsFatal(t *testing.T) {
	geocoder := &fakeGeocoder{results: map[string]*geocode.Result{}}
	legislature := &fakeLegislature{}
	svc := newTestService(geocoder, legislature)

	_, err := svc.Snapshot(context.Background(), "00000")

	var nf *resilience.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, int32(0), legislature.billCalls.Load(), "no fan-out after geocode failure")
	assert.Equal(t, int32(0), legislature.peopleCalls.Load())
}

func TestSnapshotPartialFailure(t *testing.T) {
	geocoder := &fakeGeocoder{results: map[string]*geocode.Result{"78701": austinResult()}}
	legislature := &fakeLegislature{
		billsErr: &resilience.RateLimitedError{URL: "v3.openstates.org"},
		people:   []openstates.Person{{Name: "Amy", CurrentRole: &openstates.Role{Title: "Senator"}}},
	}
	svc := newTestService(geocoder, legislature)

	snap, err := svc.Snapshot(context.Background(), "78701")
	require.NoError(t, err, "one failed source must not sink the snapshot")

	assert.False(t, snap.Issues.OK)
	require.NotNil(t, snap.Issues.Failure)
	assert.Equal(t, resilience.KindRateLimited, snap.Issues.Failure.Kind)

	assert.True(t, snap.Legislators.OK)
	require.Len(t, snap.Legislators.Value, 1)
}

func TestSnapshotBothSourcesFail(t *testing.T) {
	geocoder := &fakeGeocoder{results: map[string]*geocode.Result{"78701": austinResult()}}
	legislature := &fakeLegislature{
		billsErr:  &resilience.UpstreamError{Status: 503, Body: "unavailable"},
		peopleErr: &resilience.TransportError{Err: context.DeadlineExceeded},
	}
	svc := newTestService(geocoder, legislature)

	snap, err := svc.Snapshot(context.Background(), "78701")
	require.NoError(t, err)

	assert.False(t, snap.Issues.OK)
	assert.Equal(t, resilience.KindUpstream, snap.Issues.Failure.Kind)
	assert.False(t, snap.Legislators.OK)
	assert.Equal(t, resilience.KindTransport, snap.Legislators.Failure.Kind)
}

func TestSnapshotCoalescesConcurrentGeocodes(t *testing.T) {
	geocoder := &fakeGeocoder{
		results: map[string]*geocode.Result{"78701": austinResult()},
		delay:   50 * time.Millisecond,
	}
	legislature := &fakeLegislature{}
	svc := newTestService(geocoder, legislature)

	const n = 5
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Snapshot(context.Background(), "78701")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), geocoder.calls.Load(), "concurrent snapshots must share one geocode call")
}

func TestGeocodeCachesResult(t *testing.T) {
	geocoder := &fakeGeocoder{results: map[string]*geocode.Result{"78701": austinResult()}}
	svc := newTestService(geocoder, &fakeLegislature{})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := svc.Geocode(ctx, "78701")
		require.NoError(t, err)
		assert.Equal(t, "Austin", res.City)
	}
	assert.Equal(t, int32(1), geocoder.calls.Load())
}

type fakeDurable struct {
	mu      sync.Mutex
	entries map[string]*geocode.Result
	puts    int
}

func (f *fakeDurable) Get(ctx context.Context, zip string) (*geocode.Result, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	res, ok := f.entries[zip]
	return res, ok, nil
}

func (f *fakeDurable) Put(ctx context.Context, zip string, res *geocode.Result, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[zip] = res
	f.puts++
	return nil
}

func (f *fakeDurable) Close() error { return nil }

func TestGeocodeReadsThroughDurableStore(t *testing.T) {
	geocoder := &fakeGeocoder{results: map[string]*geocode.Result{}}
	durable := &fakeDurable{entries: map[string]*geocode.Result{"78701": austinResult()}}
	svc := NewService(geocoder, &fakeLegislature{}, scorer.NewCategorizer(scorer.DefaultRules()), durable, Options{})

	res, err := svc.Geocode(context.Background(), "78701")
	require.NoError(t, err)
	assert.Equal(t, "Austin", res.City)
	assert.Equal(t, int32(0), geocoder.calls.Load(), "durable hit must skip the provider")
}

func TestGeocodeWritesDurableStoreOnMiss(t *testing.T) {
	geocoder := &fakeGeocoder{results: map[string]*geocode.Result{"78701": austinResult()}}
	durable := &fakeDurable{entries: map[string]*geocode.Result{}}
	svc := NewService(geocoder, &fakeLegislature{}, scorer.NewCategorizer(scorer.DefaultRules()), durable, Options{})

	_, err := svc.Geocode(context.Background(), "78701")
	require.NoError(t, err)
	assert.Equal(t, 1, durable.puts)
}

func TestIssuesCachesPerState(t *testing.T) {
	legislature := &fakeLegislature{
		bills: []openstates.Bill{{Identifier: "HB 1", Title: "Transit Expansion", Subject: []string{"Transportation"}}},
	}
	svc := newTestService(&fakeGeocoder{}, legislature)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		issues, err := svc.Issues(ctx, "Texas")
		require.NoError(t, err)
		require.Len(t, issues, 1)
		assert.Equal(t, scorer.CategoryTransit, issues[0].Category)
	}
	assert.Equal(t, int32(1), legislature.billCalls.Load())

	// A different state is a different cache key.
	_, err := svc.Issues(ctx, "Ohio")
	require.NoError(t, err)
	assert.Equal(t, int32(2), legislature.billCalls.Load())
}

func TestIssuesInvalidState(t *testing.T) {
	legislature := &fakeLegislature{}
	svc := newTestService(&fakeGeocoder{}, legislature)

	_, err := svc.Issues(context.Background(), "atlantis")

	var inv *openstates.InvalidStateError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, int32(0), legislature.billCalls.Load())
}

func TestLegislatorsRankedAndCached(t *testing.T) {
	legislature := &fakeLegislature{
		people: []openstates.Person{
			{Name: "Zoe", CurrentRole: &openstates.Role{Title: "Representative"}},
			{Name: "Amy", CurrentRole: &openstates.Role{Title: "Senator"}},
		},
	}
	svc := newTestService(&fakeGeocoder{}, legislature)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		reps, err := svc.Legislators(ctx, 30.2713, -97.7426)
		require.NoError(t, err)
		require.Len(t, reps, 2)
		assert.Equal(t, "Amy", reps[0].Name)
	}
	assert.Equal(t, int32(1), legislature.peopleCalls.Load())
}

func TestCacheTTLRefetch(t *testing.T) {
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	now := base

	geocoder := &fakeGeocoder{results: map[string]*geocode.Result{"78701": austinResult()}}
	svc := newTestService(geocoder, &fakeLegislature{})
	svc.cache.WithNow(func() time.Time { return now })
	ctx := context.Background()

	_, err := svc.Geocode(ctx, "78701")
	require.NoError(t, err)

	now = base.Add(59 * time.Minute)
	_, err = svc.Geocode(ctx, "78701")
	require.NoError(t, err)
	assert.Equal(t, int32(1), geocoder.calls.Load(), "fresh inside the 1h TTL")

	now = base.Add(61 * time.Minute)
	_, err = svc.Geocode(ctx, "78701")
	require.NoError(t, err)
	assert.Equal(t, int32(2), geocoder.calls.Load(), "refetched after the TTL")
}
