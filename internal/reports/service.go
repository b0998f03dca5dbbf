package reports

import (
	"context"
	"time"
)

// Repository supplies immutable record snapshots. The engine never fetches
// on its own; this is the boundary to the data-fetch collaborator.
type Repository interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

// Filter scopes one report request.
type Filter struct {
	Kind        PeriodKind
	Custom      *PeriodWindow
	Limit       int
	TrendMonths int
}

const (
	defaultLimit       = 10
	defaultTrendMonths = 12
)

func (f Filter) limit() int {
	if f.Limit <= 0 {
		return defaultLimit
	}
	return f.Limit
}

// Service coordinates snapshot loading, engine execution, and the cache
// layer. Concurrent calls are safe: each request works on its own snapshot
// and the engine holds no shared mutable state.
type Service struct {
	repo      Repository
	assembler *Assembler
	base      CurrencyCode
	cache     *Cache
	now       func() time.Time
}

// NewService wires a Repository and Assembler with an optional Cache.
func NewService(repo Repository, assembler *Assembler, cache *Cache) *Service {
	return &Service{
		repo:      repo,
		assembler: assembler,
		base:      assembler.rates.Base(),
		cache:     cache,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// GetDashboard resolves the landing dashboard summary using cache-aware
// lookups.
func (s *Service) GetDashboard(ctx context.Context, filter Filter) (DashboardSummary, error) {
	win, err := Window(s.now(), filter.Kind, filter.Custom)
	if err != nil {
		return DashboardSummary{}, err
	}
	loader := func(ctx context.Context) (interface{}, error) {
		snap, err := s.repo.Snapshot(ctx)
		if err != nil {
			return nil, err
		}
		return s.assembler.Dashboard(snap, win, filter.limit())
	}

	var summary DashboardSummary
	if err := s.cached(ctx, keyDashboard(s.base, win.Current, filter.limit()), &summary, loader); err != nil {
		return DashboardSummary{}, err
	}
	return summary, nil
}

// GetFinancialReport resolves the financial report for the filter window.
func (s *Service) GetFinancialReport(ctx context.Context, filter Filter) (FinancialReport, error) {
	win, err := Window(s.now(), filter.Kind, filter.Custom)
	if err != nil {
		return FinancialReport{}, err
	}
	trendMonths := filter.TrendMonths
	if trendMonths <= 0 {
		trendMonths = defaultTrendMonths
	}
	loader := func(ctx context.Context) (interface{}, error) {
		snap, err := s.repo.Snapshot(ctx)
		if err != nil {
			return nil, err
		}
		return s.assembler.Financial(snap, win, trendMonths)
	}

	var report FinancialReport
	if err := s.cached(ctx, keyFinancial(s.base, win.Current, trendMonths), &report, loader); err != nil {
		return FinancialReport{}, err
	}
	return report, nil
}

// GetCustomerReport resolves the customer report for the filter window.
func (s *Service) GetCustomerReport(ctx context.Context, filter Filter) (CustomerReport, error) {
	win, err := Window(s.now(), filter.Kind, filter.Custom)
	if err != nil {
		return CustomerReport{}, err
	}
	loader := func(ctx context.Context) (interface{}, error) {
		snap, err := s.repo.Snapshot(ctx)
		if err != nil {
			return nil, err
		}
		return s.assembler.Customers(snap, win.Current, filter.limit())
	}

	var report CustomerReport
	if err := s.cached(ctx, keyCustomers(s.base, win.Current, filter.limit()), &report, loader); err != nil {
		return CustomerReport{}, err
	}
	return report, nil
}

// GetInventoryReport resolves the inventory health report as of now.
func (s *Service) GetInventoryReport(ctx context.Context) (InventoryReport, error) {
	asOf := s.now()
	loader := func(ctx context.Context) (interface{}, error) {
		snap, err := s.repo.Snapshot(ctx)
		if err != nil {
			return nil, err
		}
		return s.assembler.Inventory(snap, asOf)
	}

	var report InventoryReport
	if err := s.cached(ctx, keyInventory(s.base, asOf), &report, loader); err != nil {
		return InventoryReport{}, err
	}
	return report, nil
}

// Bump invalidates all cached reports after an upstream data change.
func (s *Service) Bump(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

func (s *Service) cached(ctx context.Context, keyBase []string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	key, err := s.cache.BuildKey(ctx, keyBase...)
	if err != nil {
		return err
	}
	// A nil cache degrades to a plain load; FetchJSON handles that path.
	return s.cache.FetchJSON(ctx, key, dest, loader)
}
