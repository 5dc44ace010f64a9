// Package scheduler turns a persisted reminder into exactly one delayed
// delivery job. The job carries only the reminder's identity; the worker
// reloads current state at fire time so edits and deletions between
// scheduling and firing are never acted on stale.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/remindhq/reminder-api/internal/models"
	"github.com/remindhq/reminder-api/internal/queue"
	"go.uber.org/zap"
)

// Scheduler enqueues delivery jobs for reminders
type Scheduler struct {
	jobQueue queue.JobQueue
	logger   *zap.Logger
	now      func() time.Time
}

// New creates a new scheduler
func New(jobQueue queue.JobQueue, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		jobQueue: jobQueue,
		logger:   logger,
		now:      time.Now,
	}
}

// Schedule enqueues exactly one delivery job for the reminder, due at its
// notification date. A notification date already in the past (clock skew,
// processing lag) yields an immediately eligible job rather than an error.
func (s *Scheduler) Schedule(ctx context.Context, reminder *models.Reminder) error {
	delay := reminder.NotificationDate.Sub(s.now())
	if delay < 0 {
		delay = 0
	}

	reminderID := reminder.ID
	job := queue.NewJob(queue.JobTypeReminderDelivery, reminder.UserID, &reminderID)
	if delay > 0 {
		notBefore := reminder.NotificationDate
		job.NotBefore = &notBefore
	}

	if err := s.jobQueue.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("failed to enqueue delivery job: %w", err)
	}

	s.logger.Info("scheduled_delivery_job",
		zap.String("job_id", job.ID.String()),
		zap.String("reminder_id", reminder.ID.String()),
		zap.Duration("delay", delay),
	)

	return nil
}
