package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"

	"github.com/stocklens/stocklens/internal/reports"
)

type warmupRepo struct {
	calls int
}

func (r *warmupRepo) Snapshot(ctx context.Context) (reports.Snapshot, error) {
	r.calls++
	return reports.Snapshot{}, nil
}

func warmupTestService(repo *warmupRepo) *reports.Service {
	rates := reports.NewRateTable(reports.CurrencyCZK, map[reports.CurrencyCode]decimal.Decimal{
		reports.CurrencyEUR: decimal.NewFromInt(25),
	})
	labels := reports.NewLabels(language.English, reports.DefaultCatalog())
	assembler := reports.NewAssembler(rates, reports.DefaultThresholds(), labels)
	return reports.NewService(repo, assembler, nil)
}

func TestWarmupHandleVisitsEveryPeriod(t *testing.T) {
	repo := &warmupRepo{}
	job := NewReportsWarmupJob(warmupTestService(repo), nil, nil)

	task, err := NewReportsWarmupTask()
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	if err := job.Handle(context.Background(), task); err != nil {
		t.Fatalf("handle warmup: %v", err)
	}

	// Three reports per period kind plus the single inventory report.
	want := len(warmupPeriods)*3 + 1
	if repo.calls != want {
		t.Fatalf("expected %d snapshot loads, got %d", want, repo.calls)
	}
}

func TestWarmupHandleScopedPeriods(t *testing.T) {
	repo := &warmupRepo{}
	job := NewReportsWarmupJob(warmupTestService(repo), nil, nil)

	task, err := NewReportsWarmupTask("month")
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	if err := job.Handle(context.Background(), task); err != nil {
		t.Fatalf("handle warmup: %v", err)
	}
	if repo.calls != 4 {
		t.Fatalf("expected 4 snapshot loads for one period, got %d", repo.calls)
	}
}

func TestWarmupIgnoresUnknownPeriods(t *testing.T) {
	job := NewReportsWarmupJob(warmupTestService(&warmupRepo{}), nil, nil)
	kinds := job.resolvePeriods([]string{"quarter", "fortnight"})
	if len(kinds) != len(warmupPeriods) {
		t.Fatalf("expected fallback to all periods, got %v", kinds)
	}
}

func TestWarmupRejectsMalformedPayload(t *testing.T) {
	job := NewReportsWarmupJob(warmupTestService(&warmupRepo{}), nil, nil)
	task := asynq.NewTask(TaskReportsWarmup, []byte("{not json"))
	if err := job.Handle(context.Background(), task); err != asynq.SkipRetry {
		t.Fatalf("expected SkipRetry for malformed payload, got %v", err)
	}
}

func TestWarmupHonoursContextDeadline(t *testing.T) {
	repo := &warmupRepo{}
	job := NewReportsWarmupJob(warmupTestService(repo), nil, nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	task, err := NewReportsWarmupTask("day")
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	if err := job.Handle(ctx, task); err != nil {
		t.Fatalf("handle warmup: %v", err)
	}
}
