package reports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepository struct {
	snap  Snapshot
	err   error
	calls int
}

func (r *stubRepository) Snapshot(ctx context.Context) (Snapshot, error) {
	r.calls++
	if r.err != nil {
		return Snapshot{}, r.err
	}
	return r.snap, nil
}

func newTestService(t *testing.T, repo *stubRepository) (*Service, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc := NewService(repo, testAssembler(), NewCache(client, time.Minute))
	svc.WithNow(func() time.Time {
		return time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	})
	return svc, client
}

func TestServiceCachesReports(t *testing.T) {
	repo := &stubRepository{snap: assemblerSnapshot()}
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	first, err := svc.GetDashboard(ctx, Filter{Kind: PeriodMonth})
	require.NoError(t, err)
	second, err := svc.GetDashboard(ctx, Filter{Kind: PeriodMonth})
	require.NoError(t, err)

	assert.Equal(t, 1, repo.calls, "second request must come from the cache")
	assert.True(t, first.Metrics.Revenue.Equal(second.Metrics.Revenue))
	assert.True(t, first.Metrics.Revenue.Equal(mustDec("12500")))
}

func TestServiceBumpInvalidates(t *testing.T) {
	repo := &stubRepository{snap: assemblerSnapshot()}
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	_, err := svc.GetFinancialReport(ctx, Filter{Kind: PeriodMonth})
	require.NoError(t, err)
	require.NoError(t, svc.Bump(ctx))
	_, err = svc.GetFinancialReport(ctx, Filter{Kind: PeriodMonth})
	require.NoError(t, err)

	assert.Equal(t, 2, repo.calls, "a version bump must force a reload")
}

func TestServiceDistinguishesFilters(t *testing.T) {
	repo := &stubRepository{snap: assemblerSnapshot()}
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	_, err := svc.GetCustomerReport(ctx, Filter{Kind: PeriodMonth, Limit: 5})
	require.NoError(t, err)
	_, err = svc.GetCustomerReport(ctx, Filter{Kind: PeriodMonth, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls, "different limits must not share a key")

	_, err = svc.GetCustomerReport(ctx, Filter{Kind: PeriodWeek, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, 3, repo.calls, "different windows must not share a key")
}

func TestServiceWorksWithoutCache(t *testing.T) {
	repo := &stubRepository{snap: assemblerSnapshot()}
	svc := NewService(repo, testAssembler(), nil)
	svc.WithNow(func() time.Time {
		return time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	})
	ctx := context.Background()

	report, err := svc.GetInventoryReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Totals.OutOfStockCount)

	_, err = svc.GetInventoryReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls, "no cache means every request loads")

	require.NoError(t, svc.Bump(ctx), "bump is a no-op without a cache")
}

func TestServiceCustomWindow(t *testing.T) {
	repo := &stubRepository{snap: assemblerSnapshot()}
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	start := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.March, 31, 23, 59, 59, 0, time.UTC)
	report, err := svc.GetFinancialReport(ctx, Filter{
		Kind:        PeriodCustom,
		Custom:      &PeriodWindow{Start: start, End: end},
		TrendMonths: 1,
	})
	require.NoError(t, err)
	assert.True(t, report.Metrics.Revenue.Equal(mustDec("18500")))
	assert.Zero(t, report.Metrics.RevenueGrowth, "custom ranges carry no previous window")

	_, err = svc.GetFinancialReport(ctx, Filter{Kind: PeriodCustom})
	require.ErrorIs(t, err, ErrInvalidWindow)
}

func TestServicePropagatesRepositoryErrors(t *testing.T) {
	boom := errors.New("connection refused")
	svc, _ := newTestService(t, &stubRepository{err: boom})

	_, err := svc.GetDashboard(context.Background(), Filter{Kind: PeriodMonth})
	require.ErrorIs(t, err, boom)
}

func TestCacheVersionConvergesViaPubSub(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	cache := NewCache(client, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, cache.ListenForInvalidation(ctx, ""))
	require.NoError(t, cache.Bump(ctx))

	assert.Eventually(t, func() bool {
		ver, err := cache.Version(ctx)
		return err == nil && ver >= 1
	}, time.Second, 10*time.Millisecond)
}
