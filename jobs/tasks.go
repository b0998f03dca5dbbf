package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportsWarmup pre-computes report caches for the common periods.
	TaskReportsWarmup = "reports:warmup"
	// TaskReportsBump invalidates cached reports after a data change.
	TaskReportsBump = "reports:bump"
)

// ReportsWarmupPayload scopes a warmup run to a set of period kinds.
// An empty list means all standard periods.
type ReportsWarmupPayload struct {
	Periods []string `json:"periods,omitempty"`
}

// NewReportsWarmupTask constructs an Asynq task for report warmup.
func NewReportsWarmupTask(periods ...string) (*asynq.Task, error) {
	data, err := json.Marshal(ReportsWarmupPayload{Periods: periods})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportsWarmup, data, asynq.Queue(QueueDefault)), nil
}

// ReportsBumpPayload names the mutation that triggered the invalidation.
type ReportsBumpPayload struct {
	Source string `json:"source,omitempty"`
}

// NewReportsBumpTask constructs an Asynq task for cache invalidation.
func NewReportsBumpTask(source string) (*asynq.Task, error) {
	data, err := json.Marshal(ReportsBumpPayload{Source: source})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportsBump, data, asynq.Queue(QueueDefault)), nil
}
