package bot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/frappeash/lookupbot/internal/metrics"
	"github.com/frappeash/lookupbot/internal/telegram"
)

// Deleter is the transport surface the cleanup jobs need.
type Deleter interface {
	DeleteMessage(ctx context.Context, ref telegram.MessageRef) error
}

// Scheduler wraps gocron for the two scheduling concerns of the pipeline:
// one-shot deferred deletions of ephemeral replies, and recurring
// maintenance jobs.
type Scheduler struct {
	scheduler gocron.Scheduler
	deleter   Deleter
	delay     time.Duration
	logger    *slog.Logger
}

// NewScheduler creates and starts a scheduler. delay is how long replies
// live before deletion.
func NewScheduler(deleter Deleter, delay time.Duration, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	s.Start()

	return &Scheduler{
		scheduler: s,
		deleter:   deleter,
		delay:     delay,
		logger:    logger.With("component", "scheduler"),
	}, nil
}

// ScheduleDeletion schedules a one-shot job that deletes every given
// message after the configured delay. The job is fire-and-forget: the
// caller returns immediately, and each deletion is independent and
// best-effort (a missing-message or permission error is swallowed).
func (s *Scheduler) ScheduleDeletion(refs ...telegram.MessageRef) {
	_, err := s.scheduler.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(time.Now().Add(s.delay))),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			for _, ref := range refs {
				err := s.deleter.DeleteMessage(ctx, ref)
				metrics.IncCleanupDeletion(err)
				if err != nil {
					s.logger.Debug("Deferred deletion failed",
						"chat_id", ref.ChatID, "message_id", ref.MessageID, "error", err)
				}
			}
		}),
	)
	if err != nil {
		s.logger.Warn("Failed to schedule deferred deletion", "error", err)
	}
}

// AddCronJob registers a recurring job by cron expression.
func (s *Scheduler) AddCronJob(name, cronExpr string, job func()) error {
	if cronExpr == "" {
		return fmt.Errorf("empty cron expression for job %q", name)
	}
	_, err := s.scheduler.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(job),
		gocron.WithName(name),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule job %q: %w", name, err)
	}
	s.logger.Info("Scheduled job", "name", name, "schedule", cronExpr)
	return nil
}

// Stop gracefully shuts down the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() error {
	if err := s.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to shutdown scheduler: %w", err)
	}
	return nil
}
