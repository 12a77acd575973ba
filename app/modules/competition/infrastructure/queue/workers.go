package competitionqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	competitionservice "github.com/Black-And-White-Club/quiz-league/app/modules/competition/application"
	competitiondomain "github.com/Black-And-White-Club/quiz-league/app/modules/competition/domain"
	"github.com/Black-And-White-Club/quiz-league/pkg/observability/attr"
	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
)

// CycleRunner is the part of the competition service the workers drive.
type CycleRunner interface {
	CloseCycle(ctx context.Context, today time.Time) (*competitionservice.CycleReport, error)
	OpenCycle(ctx context.Context, today time.Time) (*competitionservice.CycleReport, error)
}

// jobTimeout bounds one cycle run. A week with thousands of divisions still
// finishes well within it.
const jobTimeout = 15 * time.Minute

// CloseCycleWorker runs CloseCycle and enqueues the open for the same date
// when a week was closed, or when an earlier close left the latest week
// passed without a successor.
type CloseCycleWorker struct {
	river.WorkerDefaults[CloseCycleJob]
	runner   CycleRunner
	logger   *slog.Logger
	location *time.Location
	now      func() time.Time
	// enqueueOpen is replaced in tests; by default it inserts through the
	// River client running the job.
	enqueueOpen func(ctx context.Context, args OpenCycleJob) error
}

func NewCloseCycleWorker(runner CycleRunner, logger *slog.Logger, location *time.Location) *CloseCycleWorker {
	return &CloseCycleWorker{
		runner:      runner,
		logger:      logger,
		location:    location,
		now:         time.Now,
		enqueueOpen: insertFromContext,
	}
}

func (w *CloseCycleWorker) Timeout(*river.Job[CloseCycleJob]) time.Duration { return jobTimeout }

func (w *CloseCycleWorker) Work(ctx context.Context, job *river.Job[CloseCycleJob]) error {
	today := runDate(job.Args.AsOf, w.now(), w.location)
	logger := w.logger.With(
		attr.Int64("job_id", job.ID),
		attr.Int("attempt", job.Attempt),
		attr.String("as_of", today.Format(time.DateOnly)),
	)

	report, err := w.runner.CloseCycle(ctx, today)
	if err != nil {
		logger.ErrorContext(ctx, "Close cycle job failed", attr.Error(err))
		return err
	}
	if report.Skipped && !report.OpenPending {
		logger.InfoContext(ctx, "Close cycle job found nothing to close")
		return nil
	}

	// Date-only args so a retried close dedupes against its earlier insert.
	if err := w.enqueueOpen(ctx, OpenCycleJob{AsOf: competitiondomain.DateOf(today)}); err != nil {
		return fmt.Errorf("failed to enqueue open cycle: %w", err)
	}

	if report.Skipped {
		logger.WarnContext(ctx, "Previous close left no open cycle, open cycle enqueued")
		return nil
	}
	logger.InfoContext(ctx, "Week closed, open cycle enqueued",
		attr.Int64("week_id", report.Week.ID),
		attr.Int("promoted", report.Promoted),
		attr.Int("demoted", report.Demoted),
	)
	return nil
}

// OpenCycleWorker runs OpenCycle.
type OpenCycleWorker struct {
	river.WorkerDefaults[OpenCycleJob]
	runner   CycleRunner
	logger   *slog.Logger
	location *time.Location
	now      func() time.Time
}

func NewOpenCycleWorker(runner CycleRunner, logger *slog.Logger, location *time.Location) *OpenCycleWorker {
	return &OpenCycleWorker{runner: runner, logger: logger, location: location, now: time.Now}
}

func (w *OpenCycleWorker) Timeout(*river.Job[OpenCycleJob]) time.Duration { return jobTimeout }

func (w *OpenCycleWorker) Work(ctx context.Context, job *river.Job[OpenCycleJob]) error {
	today := runDate(job.Args.AsOf, w.now(), w.location)

	report, err := w.runner.OpenCycle(ctx, today)
	if err != nil {
		w.logger.ErrorContext(ctx, "Open cycle job failed",
			attr.Int64("job_id", job.ID),
			attr.Int("attempt", job.Attempt),
			attr.Error(err),
		)
		return err
	}

	w.logger.InfoContext(ctx, "Week opened",
		attr.Int64("job_id", job.ID),
		attr.Int64("week_id", report.Week.ID),
		attr.Int("divisions", report.Divisions),
		attr.Int("members", report.Members),
	)
	return nil
}

// runDate is asOf when set, otherwise now as seen in loc.
func runDate(asOf, now time.Time, loc *time.Location) time.Time {
	if !asOf.IsZero() {
		return asOf
	}
	if loc != nil {
		now = now.In(loc)
	}
	return now
}

func insertFromContext(ctx context.Context, args OpenCycleJob) error {
	client, err := river.ClientFromContextSafely[pgx.Tx](ctx)
	if err != nil {
		return err
	}
	_, err = client.Insert(ctx, args, &river.InsertOpts{
		Queue:      QueueName,
		UniqueOpts: river.UniqueOpts{ByArgs: true},
	})
	return err
}
