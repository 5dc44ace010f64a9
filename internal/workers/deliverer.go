package workers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/remindhq/reminder-api/internal/database"
	"github.com/remindhq/reminder-api/internal/models"
	"github.com/remindhq/reminder-api/internal/queue"
	"github.com/remindhq/reminder-api/internal/services/mail"
	"go.uber.org/zap"
)

// Deliverer processes reminder delivery jobs. Delivery is at-least-once:
// the queue may redeliver a job after a worker failure, so every attempt
// reloads the reminder and claims it with a conditional status update
// before touching the notifier. A failed claim is an idempotent no-op.
type Deliverer struct {
	reminderRepo database.ReminderRepositoryInterface
	userRepo     database.UserRepositoryInterface
	notifier     mail.Notifier
	jobQueue     queue.JobQueue // For re-enqueueing delayed retries
	logger       *zap.Logger
}

// NewDeliverer creates a new deliverer
func NewDeliverer(
	reminderRepo database.ReminderRepositoryInterface,
	userRepo database.UserRepositoryInterface,
	notifier mail.Notifier,
	jobQueue queue.JobQueue,
	logger *zap.Logger,
) *Deliverer {
	return &Deliverer{
		reminderRepo: reminderRepo,
		userRepo:     userRepo,
		notifier:     notifier,
		jobQueue:     jobQueue,
		logger:       logger,
	}
}

// ProcessJob processes a job based on its type and settles the message:
// ack on success or no-op, nack to the DLQ on unrecoverable failure.
func (d *Deliverer) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()

	// Not due yet (redelivery before the delayed exchange held it back)
	if !job.ShouldProcess() {
		if nackErr := msg.Nack(true); nackErr != nil {
			d.logger.Error("failed_to_requeue_early_job", zap.Error(nackErr))
		}
		return nil
	}

	switch job.Type {
	case queue.JobTypeReminderDelivery:
		if err := d.ProcessDeliveryJob(ctx, job); err != nil {
			// Unrecoverable for this message; keep a copy in the DLQ
			if nackErr := msg.Nack(false); nackErr != nil {
				d.logger.Error("failed_to_nack_job", zap.Error(nackErr))
			}
			return fmt.Errorf("delivery job %s: %w", job.ID, err)
		}
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack job %s: %w", job.ID, ackErr)
		}
		return nil

	default:
		if nackErr := msg.Nack(false); nackErr != nil {
			d.logger.Error("failed_to_nack_unknown_job_type", zap.Error(nackErr))
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

// ProcessDeliveryJob runs one delivery attempt through the status state
// machine: scheduled -> sending -> sent, or scheduled -> sending ->
// scheduled (retry) / error (retries exhausted). A nil return means the
// job is settled (delivered, skipped, or a retry has been scheduled).
func (d *Deliverer) ProcessDeliveryJob(ctx context.Context, job *queue.Job) error {
	if job.ReminderID == nil {
		return fmt.Errorf("reminder_id is required for delivery job")
	}
	reminderID := *job.ReminderID

	reminder, err := d.reminderRepo.GetByID(ctx, reminderID)
	if err != nil {
		// Deleted between scheduling and firing: discard without error
		if errors.Is(err, database.ErrNotFound) {
			d.logger.Info("reminder_absent_skipping_delivery",
				zap.String("reminder_id", reminderID.String()),
			)
			return nil
		}
		return fmt.Errorf("failed to load reminder: %w", err)
	}

	// Claim the reminder before notifying. Exactly one concurrent attempt
	// wins the scheduled -> sending transition; the rest are no-ops.
	claimed, err := d.reminderRepo.ClaimForDelivery(ctx, reminderID)
	if err != nil {
		return fmt.Errorf("failed to claim reminder: %w", err)
	}
	if !claimed {
		d.logger.Info("reminder_already_processed_skipping_delivery",
			zap.String("reminder_id", reminderID.String()),
			zap.String("status", string(reminder.Status)),
		)
		return nil
	}

	sendErr := d.notify(ctx, reminder)
	if sendErr == nil {
		if _, err := d.reminderRepo.SetStatus(ctx, reminderID, models.ReminderStatusSent); err != nil {
			// Mail went out but the terminal write failed; surface it so it
			// lands in the DLQ instead of disappearing
			return fmt.Errorf("delivered but failed to record sent status: %w", err)
		}
		d.logger.Info("reminder_delivered",
			zap.String("reminder_id", reminderID.String()),
		)
		return nil
	}

	d.logger.Warn("reminder_delivery_failed",
		zap.String("reminder_id", reminderID.String()),
		zap.Int("attempt", job.RetryCount+1),
		zap.Int("max_retries", job.MaxRetries),
		zap.Error(sendErr),
	)

	if job.CanRetry() {
		return d.scheduleRetry(ctx, job, reminderID, sendErr)
	}

	if _, err := d.reminderRepo.SetStatus(ctx, reminderID, models.ReminderStatusError); err != nil {
		return fmt.Errorf("delivery failed and failed to record error status: %w", errors.Join(sendErr, err))
	}
	d.logger.Error("reminder_delivery_failed_permanently",
		zap.String("reminder_id", reminderID.String()),
		zap.Error(sendErr),
	)
	return nil
}

// notify resolves the delivery target and invokes the notifier
func (d *Deliverer) notify(ctx context.Context, reminder *models.Reminder) error {
	user, err := d.userRepo.GetByID(ctx, reminder.UserID)
	if err != nil {
		return fmt.Errorf("failed to resolve delivery target: %w", err)
	}

	subject := mail.ReminderSubject(reminder.Message)
	body := mail.ReminderBody(reminder.Message, reminder.NotificationDate)

	if err := d.notifier.Send(ctx, user.Email, subject, body); err != nil {
		return fmt.Errorf("notifier: %w", err)
	}
	return nil
}

// scheduleRetry releases the claim and re-enqueues a delayed attempt
func (d *Deliverer) scheduleRetry(ctx context.Context, job *queue.Job, reminderID uuid.UUID, cause error) error {
	// Release the claim so the retry's conditional update can win
	if _, err := d.reminderRepo.SetStatus(ctx, reminderID, models.ReminderStatusScheduled); err != nil {
		return fmt.Errorf("failed to release claim for retry: %w", errors.Join(cause, err))
	}

	retryDelay := job.RetryDelay()
	notBefore := time.Now().Add(retryDelay)

	delayedJob := &queue.Job{
		ID:         job.ID,
		Type:       job.Type,
		UserID:     job.UserID,
		ReminderID: job.ReminderID,
		NotBefore:  &notBefore,
		NotAfter:   job.NotAfter,
		CreatedAt:  job.CreatedAt,
		RetryCount: job.RetryCount + 1,
		MaxRetries: job.MaxRetries,
	}

	if err := d.jobQueue.Enqueue(ctx, delayedJob); err != nil {
		return fmt.Errorf("failed to re-enqueue delivery job: %w", errors.Join(cause, err))
	}

	d.logger.Info("scheduled_delivery_retry",
		zap.String("reminder_id", reminderID.String()),
		zap.Int("attempt", delayedJob.RetryCount),
		zap.Duration("retry_delay", retryDelay),
	)
	return nil
}
