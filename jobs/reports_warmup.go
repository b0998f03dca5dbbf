package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/stocklens/stocklens/internal/jobs"
	"github.com/stocklens/stocklens/internal/reports"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// warmupPeriods are the period kinds the dashboard screens request most.
var warmupPeriods = []reports.PeriodKind{
	reports.PeriodDay,
	reports.PeriodWeek,
	reports.PeriodMonth,
	reports.PeriodYear,
}

// ReportsWarmupJob pre-populates the report cache so the first dashboard
// request of the day never pays the full aggregation cost.
type ReportsWarmupJob struct {
	Service *reports.Service
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewReportsWarmupJob wires dependencies for the warmup handler.
func NewReportsWarmupJob(service *reports.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportsWarmupJob {
	return &ReportsWarmupJob{
		Service: service,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes report warmup tasks.
func (j *ReportsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("reports warmup: handler not configured")
	}
	var payload ReportsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	periods := j.resolvePeriods(payload.Periods)

	tracker := j.metrics().Track(TaskReportsWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	logger.Info("starting reports warmup", slog.Int("periods", len(periods)))

	start := j.now()
	for _, kind := range periods {
		if err := j.warmPeriod(ctx, kind); err != nil {
			resultErr = err
			logger.Error("warm period", slog.String("period", string(kind)), slog.Any("error", err))
			return resultErr
		}
	}
	if err := j.warmInventory(ctx); err != nil {
		resultErr = err
		logger.Error("warm inventory", slog.Any("error", err))
		return resultErr
	}

	logger.Info("completed reports warmup",
		slog.Int("periods", len(periods)),
		slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *ReportsWarmupJob) warmPeriod(ctx context.Context, kind reports.PeriodKind) error {
	// Bound each period so a slow database cannot stall the whole run.
	periodCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	filter := reports.Filter{Kind: kind}
	if _, err := j.Service.GetDashboard(periodCtx, filter); err != nil {
		return err
	}
	j.metrics().AddWarmedReports("dashboard", string(kind), 1)
	if _, err := j.Service.GetFinancialReport(periodCtx, filter); err != nil {
		return err
	}
	j.metrics().AddWarmedReports("financial", string(kind), 1)
	if _, err := j.Service.GetCustomerReport(periodCtx, filter); err != nil {
		return err
	}
	j.metrics().AddWarmedReports("customers", string(kind), 1)
	return nil
}

func (j *ReportsWarmupJob) warmInventory(ctx context.Context) error {
	invCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if _, err := j.Service.GetInventoryReport(invCtx); err != nil {
		return err
	}
	j.metrics().AddWarmedReports("inventory", "current", 1)
	return nil
}

func (j *ReportsWarmupJob) resolvePeriods(requested []string) []reports.PeriodKind {
	if len(requested) == 0 {
		return warmupPeriods
	}
	kinds := make([]reports.PeriodKind, 0, len(requested))
	for _, raw := range requested {
		kind := reports.PeriodKind(raw)
		for _, known := range warmupPeriods {
			if kind == known {
				kinds = append(kinds, kind)
				break
			}
		}
	}
	if len(kinds) == 0 {
		return warmupPeriods
	}
	return kinds
}

func (j *ReportsWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReportsWarmup))
	}
	return slog.Default().With(slog.String("job", TaskReportsWarmup))
}

func (j *ReportsWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *ReportsWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
