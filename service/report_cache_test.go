package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/ludo-technologies/pygrade/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T) *SQLiteReportCache {
	t.Helper()
	cache, err := OpenReportCache(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestReportCache_RoundTrip(t *testing.T) {
	cache := openTestCache(t)
	ctx := context.Background()
	key := ReportCacheKey("0123abcd", "fp")

	_, err := cache.Get(ctx, key)
	require.True(t, errors.Is(err, domain.ErrCacheMiss), "expected miss, got %v", err)

	report := healthyReport()
	require.NoError(t, cache.Put(ctx, key, report))

	cached, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, report.Root(), cached.Root())
	assert.Equal(t, domain.Assess(report), domain.Assess(cached))

	n, err := cache.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestReportCache_KeepsUnavailableSections(t *testing.T) {
	cache := openTestCache(t)
	ctx := context.Background()

	report := domain.NewReport("/src",
		domain.OKSection(&domain.AggregateLintResult{}),
		domain.UnavailableSection(domain.ToolCohesion, "cohesion: executable not found"),
	)
	require.NoError(t, cache.Put(ctx, "k", report))

	cached, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	section, ok := cached.Section(domain.ToolCohesion)
	require.True(t, ok)
	assert.False(t, section.Available())
	assert.Equal(t, "cohesion: executable not found", section.Reason)
}

func TestReportCache_PutReplaces(t *testing.T) {
	cache := openTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "k", domain.NewReport("/first")))
	require.NoError(t, cache.Put(ctx, "k", domain.NewReport("/second")))

	cached, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "/second", cached.Root())

	n, err := cache.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	require.NoError(t, cache.Clear(ctx))
	_, err = cache.Get(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestReportCache_PersistsAcrossOpens(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := OpenReportCache(dir)
	require.NoError(t, err)
	require.NoError(t, first.Put(ctx, "k", healthyReport()))
	require.NoError(t, first.Close())

	second, err := OpenReportCache(dir)
	require.NoError(t, err)
	defer second.Close()

	assert.Equal(t, filepath.Join(dir, "reports.db"), second.Path())
	cached, err := second.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 30, domain.Assess(cached).Grade.Score)
}

func TestReportCache_RejectsNilReport(t *testing.T) {
	cache := openTestCache(t)
	assert.Error(t, cache.Put(context.Background(), "k", nil))
}
