package cache

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pricekit/localprice/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFileLocationStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "location.json")
	store := NewFileLocationStore(path, testLogger())

	rec := &domain.LocationRecord{
		CurrencyCode: "EUR",
		ResolvedAt:   time.Now().Truncate(time.Second),
	}
	require.NoError(t, store.Save(context.Background(), rec))

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec.CurrencyCode, got.CurrencyCode)
	assert.True(t, rec.ResolvedAt.Equal(got.ResolvedAt))
}

func TestFileLocationStore_MissingFileIsMiss(t *testing.T) {
	store := NewFileLocationStore(filepath.Join(t.TempDir(), "absent.json"), testLogger())

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFileLocationStore_CorruptFileIsMiss(t *testing.T) {
	path := filepath.Join(t.TempDir(), "location.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store := NewFileLocationStore(path, testLogger())
	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFileLocationStore_InvalidCurrencyIsMiss(t *testing.T) {
	path := filepath.Join(t.TempDir(), "location.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"currency_code":"nope","resolved_at":"2026-01-01T00:00:00Z"}`), 0o644))

	store := NewFileLocationStore(path, testLogger())
	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFileLocationStore_SaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "location.json")
	store := NewFileLocationStore(path, testLogger())

	require.NoError(t, store.Save(context.Background(), &domain.LocationRecord{
		CurrencyCode: "USD",
		ResolvedAt:   time.Now().Add(-48 * time.Hour),
	}))
	require.NoError(t, store.Save(context.Background(), &domain.LocationRecord{
		CurrencyCode: "JPY",
		ResolvedAt:   time.Now(),
	}))

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "JPY", got.CurrencyCode.String())
}

func TestFileLocationStore_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "location.json")
	store := NewFileLocationStore(path, testLogger())

	require.NoError(t, store.Save(context.Background(), &domain.LocationRecord{
		CurrencyCode: "GBP",
		ResolvedAt:   time.Now(),
	}))

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
}
