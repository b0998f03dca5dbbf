package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/stocklens/stocklens/internal/jobs"
	"github.com/stocklens/stocklens/internal/reports"
)

// ReportsBumpJob invalidates the report cache after an upstream mutation.
// Order, expense, and inventory writers enqueue this instead of talking to
// Redis themselves.
type ReportsBumpJob struct {
	Service *reports.Service
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewReportsBumpJob wires dependencies for the bump handler.
func NewReportsBumpJob(service *reports.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportsBumpJob {
	return &ReportsBumpJob{Service: service, Logger: logger, Metrics: metrics}
}

// Handle processes cache invalidation tasks.
func (j *ReportsBumpJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("reports bump: handler not configured")
	}
	var payload ReportsBumpPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskReportsBump)
	err := tracker.End(j.Service.Bump(ctx))
	if err != nil {
		j.logger().Error("bump report cache", slog.String("source", payload.Source), slog.Any("error", err))
		return err
	}
	j.logger().Info("report cache invalidated", slog.String("source", payload.Source))
	return nil
}

func (j *ReportsBumpJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReportsBump))
	}
	return slog.Default().With(slog.String("job", TaskReportsBump))
}

func (j *ReportsBumpJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
