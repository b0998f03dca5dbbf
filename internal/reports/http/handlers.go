package reporthttp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/stocklens/stocklens/internal/platform/httpx"
	"github.com/stocklens/stocklens/internal/reports"
)

const requestTimeout = 10 * time.Second

// ReportService defines the report data contract used by the handler.
type ReportService interface {
	GetDashboard(ctx context.Context, filter reports.Filter) (reports.DashboardSummary, error)
	GetFinancialReport(ctx context.Context, filter reports.Filter) (reports.FinancialReport, error)
	GetCustomerReport(ctx context.Context, filter reports.Filter) (reports.CustomerReport, error)
	GetInventoryReport(ctx context.Context) (reports.InventoryReport, error)
}

// Handler serves the report API endpoints.
type Handler struct {
	logger   *slog.Logger
	service  ReportService
	validate *validator.Validate
}

// NewHandler constructs the report HTTP handler.
func NewHandler(logger *slog.Logger, service ReportService) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

// reportQuery carries the raw query parameters of a report request.
type reportQuery struct {
	Period string `validate:"omitempty,oneof=day week month year custom"`
	From   string `validate:"omitempty,datetime=2006-01-02"`
	To     string `validate:"omitempty,datetime=2006-01-02"`
	Limit  int    `validate:"min=0,max=100"`
	Months int    `validate:"min=0,max=36"`
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	summary, err := h.service.GetDashboard(ctx, filter)
	if err != nil {
		h.respondError(w, "load dashboard", err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) handleFinancial(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	report, err := h.service.GetFinancialReport(ctx, filter)
	if err != nil {
		h.respondError(w, "load financial report", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) handleCustomers(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	report, err := h.service.GetCustomerReport(ctx, filter)
	if err != nil {
		h.respondError(w, "load customer report", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) handleInventory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	report, err := h.service.GetInventoryReport(ctx)
	if err != nil {
		h.respondError(w, "load inventory report", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

// overviewResponse bundles every report for a single screen load.
type overviewResponse struct {
	Dashboard reports.DashboardSummary `json:"dashboard"`
	Financial reports.FinancialReport  `json:"financial"`
	Customers reports.CustomerReport   `json:"customers"`
	Inventory reports.InventoryReport  `json:"inventory"`
}

func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var resp overviewResponse
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		summary, err := h.service.GetDashboard(gctx, filter)
		if err != nil {
			return err
		}
		resp.Dashboard = summary
		return nil
	})
	g.Go(func() error {
		report, err := h.service.GetFinancialReport(gctx, filter)
		if err != nil {
			return err
		}
		resp.Financial = report
		return nil
	})
	g.Go(func() error {
		report, err := h.service.GetCustomerReport(gctx, filter)
		if err != nil {
			return err
		}
		resp.Customers = report
		return nil
	})
	g.Go(func() error {
		report, err := h.service.GetInventoryReport(gctx)
		if err != nil {
			return err
		}
		resp.Inventory = report
		return nil
	})
	if err := g.Wait(); err != nil {
		h.respondError(w, "load overview", err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

// parseFilter reads, validates, and translates query parameters.
// A false return means the response has already been written.
func (h *Handler) parseFilter(w http.ResponseWriter, r *http.Request) (reports.Filter, bool) {
	query := reportQuery{
		Period: strings.TrimSpace(r.URL.Query().Get("period")),
		From:   strings.TrimSpace(r.URL.Query().Get("from")),
		To:     strings.TrimSpace(r.URL.Query().Get("to")),
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "limit must be an integer")
			return reports.Filter{}, false
		}
		query.Limit = value
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("months")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "months must be an integer")
			return reports.Filter{}, false
		}
		query.Months = value
	}

	if err := h.validate.Struct(query); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			field := strings.ToLower(verrs[0].Field())
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid "+field)
			return reports.Filter{}, false
		}
		h.respondError(w, "validate query", err)
		return reports.Filter{}, false
	}

	filter := reports.Filter{
		Kind:        reports.PeriodMonth,
		Limit:       query.Limit,
		TrendMonths: query.Months,
	}
	if query.Period != "" {
		filter.Kind = reports.PeriodKind(query.Period)
	}
	if filter.Kind == reports.PeriodCustom {
		if query.From == "" || query.To == "" {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "custom period requires from and to")
			return reports.Filter{}, false
		}
		from, _ := time.Parse("2006-01-02", query.From)
		to, _ := time.Parse("2006-01-02", query.To)
		// The end date is inclusive through its last instant.
		filter.Custom = &reports.PeriodWindow{
			Start: from,
			End:   to.AddDate(0, 0, 1).Add(-time.Nanosecond),
		}
	}
	return filter, true
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, reports.ErrInvalidWindow):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, reports.ErrUnsupportedCurrency), errors.Is(err, reports.ErrInvalidQuantity):
		h.logError(op, err)
		httpx.Problem(w, http.StatusUnprocessableEntity, "Unprocessable", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		h.logError(op, err)
		httpx.Problem(w, http.StatusGatewayTimeout, "Timeout", "report computation timed out")
	default:
		h.logError(op, err)
		httpx.RespondError(w, err)
	}
}

func (h *Handler) logError(op string, err error) {
	if h.logger != nil {
		h.logger.Error(op, slog.Any("error", err))
	}
}
