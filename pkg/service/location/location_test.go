package location

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pricekit/localprice/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubStore struct {
	mu    sync.Mutex
	rec   *domain.LocationRecord
	saves int
}

func (s *stubStore) Load(context.Context) (*domain.LocationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec, nil
}

func (s *stubStore) Save(_ context.Context, rec *domain.LocationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = rec
	s.saves++
	return nil
}

func (s *stubStore) saved() (*domain.LocationRecord, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec, s.saves
}

type stubGeo struct {
	code  string
	err   error
	delay time.Duration
	calls atomic.Int64
}

func (g *stubGeo) Locate(context.Context) (string, error) {
	g.calls.Add(1)
	if g.delay > 0 {
		time.Sleep(g.delay)
	}
	return g.code, g.err
}

func (g *stubGeo) Name() string { return "stub" }

func TestResolve_FreshStoreHitSkipsNetwork(t *testing.T) {
	store := &stubStore{rec: &domain.LocationRecord{
		CurrencyCode: "EUR",
		ResolvedAt:   time.Now().Add(-time.Hour),
	}}
	geo := &stubGeo{code: "USD"}
	svc := New(store, geo, DefaultTTL, testLogger())

	rec, err := svc.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "EUR", rec.CurrencyCode.String())
	assert.EqualValues(t, 0, geo.calls.Load(), "unexpired record must not trigger a remote call")
}

func TestResolve_ExpiredRecordRefreshesAndOverwrites(t *testing.T) {
	store := &stubStore{rec: &domain.LocationRecord{
		CurrencyCode: "EUR",
		ResolvedAt:   time.Now().Add(-25 * time.Hour),
	}}
	geo := &stubGeo{code: "JPY"}
	svc := New(store, geo, DefaultTTL, testLogger())

	rec, err := svc.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "JPY", rec.CurrencyCode.String())
	assert.EqualValues(t, 1, geo.calls.Load())

	saved, saves := store.saved()
	assert.Equal(t, 1, saves)
	assert.Equal(t, "JPY", saved.CurrencyCode.String(), "newer record supersedes the stored one")
}

func TestResolve_NormalizesProviderCurrency(t *testing.T) {
	store := &stubStore{}
	geo := &stubGeo{code: " gbp "}
	svc := New(store, geo, DefaultTTL, testLogger())

	rec, err := svc.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "GBP", rec.CurrencyCode.String())
}

func TestResolve_ProviderFailureIsTypedAndNotCached(t *testing.T) {
	store := &stubStore{}
	geo := &stubGeo{err: errors.New("connection reset")}
	svc := New(store, geo, DefaultTTL, testLogger())

	_, err := svc.Resolve(context.Background())
	var geoErr *domain.GeolocationError
	require.ErrorAs(t, err, &geoErr)

	_, saves := store.saved()
	assert.Zero(t, saves, "a transient failure must not be stored")

	// A later attempt retries instead of remembering the failure.
	_, err = svc.Resolve(context.Background())
	require.Error(t, err)
	assert.EqualValues(t, 2, geo.calls.Load())
}

func TestResolve_UnusableCurrencyIsTyped(t *testing.T) {
	store := &stubStore{}
	geo := &stubGeo{code: "???"}
	svc := New(store, geo, DefaultTTL, testLogger())

	_, err := svc.Resolve(context.Background())
	var geoErr *domain.GeolocationError
	require.ErrorAs(t, err, &geoErr)
}

func TestResolve_ConcurrentCallersShareOneLookup(t *testing.T) {
	store := &stubStore{}
	geo := &stubGeo{code: "EUR", delay: 30 * time.Millisecond}
	svc := New(store, geo, DefaultTTL, testLogger())

	const n = 16
	var wg sync.WaitGroup
	results := make([]*domain.LocationRecord, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = svc.Resolve(context.Background())
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, geo.calls.Load(), "concurrent callers must share one outstanding lookup")
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, results[0], results[i], "all attached callers observe the same outcome")
	}
	_, saves := store.saved()
	assert.Equal(t, 1, saves, "only the in-flight resolver writes the store")
}

func TestResolve_DetachedCallerDoesNotAbortSharedWork(t *testing.T) {
	store := &stubStore{}
	geo := &stubGeo{code: "EUR", delay: 50 * time.Millisecond}
	svc := New(store, geo, DefaultTTL, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := svc.Resolve(ctx)
	require.ErrorIs(t, err, context.Canceled)

	// The shared lookup completes and populates the store regardless.
	assert.Eventually(t, func() bool {
		rec, saves := store.saved()
		return saves == 1 && rec != nil && rec.CurrencyCode == "EUR"
	}, time.Second, 10*time.Millisecond)
}
