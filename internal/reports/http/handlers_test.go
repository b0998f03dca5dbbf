package reporthttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/stocklens/stocklens/internal/reports"
)

type stubService struct {
	dashboard reports.DashboardSummary
	financial reports.FinancialReport
	customers reports.CustomerReport
	inventory reports.InventoryReport
	err       error
	last      reports.Filter
}

func (s *stubService) GetDashboard(ctx context.Context, filter reports.Filter) (reports.DashboardSummary, error) {
	s.last = filter
	return s.dashboard, s.err
}

func (s *stubService) GetFinancialReport(ctx context.Context, filter reports.Filter) (reports.FinancialReport, error) {
	s.last = filter
	return s.financial, s.err
}

func (s *stubService) GetCustomerReport(ctx context.Context, filter reports.Filter) (reports.CustomerReport, error) {
	s.last = filter
	return s.customers, s.err
}

func (s *stubService) GetInventoryReport(ctx context.Context) (reports.InventoryReport, error) {
	return s.inventory, s.err
}

func newTestRouter(service *stubService) http.Handler {
	r := chi.NewRouter()
	r.Route("/api/reports", NewHandler(nil, service).MountRoutes)
	return r
}

func TestGetDashboard(t *testing.T) {
	service := &stubService{dashboard: reports.DashboardSummary{
		Metrics: reports.PeriodMetrics{Revenue: decimal.NewFromInt(12500)},
	}}
	router := newTestRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/dashboard?period=month&limit=5", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("unexpected content type %s", ct)
	}
	if service.last.Kind != reports.PeriodMonth {
		t.Fatalf("expected month filter, got %s", service.last.Kind)
	}
	if service.last.Limit != 5 {
		t.Fatalf("expected limit 5, got %d", service.last.Limit)
	}
	var body struct {
		Metrics struct {
			Revenue string `json:"revenue"`
		} `json:"metrics"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Metrics.Revenue != "12500" {
		t.Fatalf("expected revenue 12500, got %s", body.Metrics.Revenue)
	}
}

func TestPeriodDefaultsToMonth(t *testing.T) {
	service := &stubService{}
	router := newTestRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/financial", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if service.last.Kind != reports.PeriodMonth {
		t.Fatalf("expected default month period, got %s", service.last.Kind)
	}
}

func TestInvalidPeriodRejected(t *testing.T) {
	router := newTestRouter(&stubService{})

	req := httptest.NewRequest(http.MethodGet, "/api/reports/financial?period=quarter", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown period, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("expected problem response, got %s", ct)
	}
}

func TestCustomPeriodParsesInclusiveRange(t *testing.T) {
	service := &stubService{}
	router := newTestRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/customers?period=custom&from=2025-02-01&to=2025-02-28", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if service.last.Custom == nil {
		t.Fatal("expected custom window")
	}
	wantEnd := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond)
	if !service.last.Custom.End.Equal(wantEnd) {
		t.Fatalf("expected inclusive end %s, got %s", wantEnd, service.last.Custom.End)
	}
}

func TestCustomPeriodRequiresBounds(t *testing.T) {
	router := newTestRouter(&stubService{})

	req := httptest.NewRequest(http.MethodGet, "/api/reports/customers?period=custom&from=2025-02-01", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without to bound, got %d", rr.Code)
	}
}

func TestDomainErrorsMapToProblemStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid window", reports.ErrInvalidWindow, http.StatusBadRequest},
		{"unsupported currency", &reports.UnsupportedCurrencyError{Code: "GBP"}, http.StatusUnprocessableEntity},
		{"invalid quantity", &reports.InvalidQuantityError{Field: "quantity", Value: -1}, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(&stubService{err: tc.err})
			req := httptest.NewRequest(http.MethodGet, "/api/reports/inventory", nil)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			if rr.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rr.Code)
			}
		})
	}
}

func TestOverviewCombinesReports(t *testing.T) {
	service := &stubService{
		dashboard: reports.DashboardSummary{Metrics: reports.PeriodMetrics{OrderCount: 3}},
		inventory: reports.InventoryReport{Totals: reports.InventoryTotals{OutOfStockCount: 1}},
	}
	router := newTestRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/overview?period=week", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var body struct {
		Dashboard reports.DashboardSummary `json:"dashboard"`
		Inventory reports.InventoryReport  `json:"inventory"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Dashboard.Metrics.OrderCount != 3 {
		t.Fatalf("expected dashboard order count 3, got %d", body.Dashboard.Metrics.OrderCount)
	}
	if body.Inventory.Totals.OutOfStockCount != 1 {
		t.Fatalf("expected one out-of-stock product, got %d", body.Inventory.Totals.OutOfStockCount)
	}
}
