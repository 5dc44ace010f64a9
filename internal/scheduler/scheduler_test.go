package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/remindhq/reminder-api/internal/models"
	"github.com/remindhq/reminder-api/internal/queue"
	"go.uber.org/zap"
)

type fakeQueue struct {
	enqueued   []*queue.Job
	enqueueErr error
}

func (f *fakeQueue) Enqueue(ctx context.Context, job *queue.Job) error {
	if f.enqueueErr != nil {
		return f.enqueueErr
	}
	f.enqueued = append(f.enqueued, job)
	return nil
}

func (f *fakeQueue) Dequeue(ctx context.Context) (*queue.Message, error) { return nil, nil }

func (f *fakeQueue) Consume(ctx context.Context, prefetchCount int) (<-chan *queue.Message, <-chan error, error) {
	return nil, nil, nil
}

func (f *fakeQueue) Close() error                          { return nil }
func (f *fakeQueue) HealthCheck(ctx context.Context) error { return nil }

func newTestReminder(notificationDate time.Time) *models.Reminder {
	return &models.Reminder{
		ID:               uuid.New(),
		UserID:           uuid.New(),
		Message:          "Pay rent",
		NotificationDate: notificationDate,
		Status:           models.ReminderStatusScheduled,
	}
}

func TestSchedule_EnqueuesExactlyOneJob(t *testing.T) {
	t.Parallel()

	q := &fakeQueue{}
	s := New(q, zap.NewNop())

	reminder := newTestReminder(time.Now().Add(time.Hour))
	if err := s.Schedule(context.Background(), reminder); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	if len(q.enqueued) != 1 {
		t.Fatalf("Expected exactly one enqueued job, got %d", len(q.enqueued))
	}

	job := q.enqueued[0]
	if job.Type != queue.JobTypeReminderDelivery {
		t.Errorf("Expected job type %s, got %s", queue.JobTypeReminderDelivery, job.Type)
	}
	if job.ReminderID == nil || *job.ReminderID != reminder.ID {
		t.Errorf("Expected job to reference reminder %s, got %v", reminder.ID, job.ReminderID)
	}
	if job.UserID != reminder.UserID {
		t.Errorf("Expected job user %s, got %s", reminder.UserID, job.UserID)
	}
	if job.NotBefore == nil {
		t.Fatal("Expected NotBefore to be set for a future reminder")
	}
	if !job.NotBefore.Equal(reminder.NotificationDate) {
		t.Errorf("Expected NotBefore %v, got %v", reminder.NotificationDate, *job.NotBefore)
	}
}

func TestSchedule_PastDateClampsToImmediate(t *testing.T) {
	t.Parallel()

	q := &fakeQueue{}
	s := New(q, zap.NewNop())
	s.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	// Notification date one minute before "now"
	reminder := newTestReminder(time.Date(2026, 3, 1, 11, 59, 0, 0, time.UTC))
	if err := s.Schedule(context.Background(), reminder); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	if len(q.enqueued) != 1 {
		t.Fatalf("Expected one enqueued job, got %d", len(q.enqueued))
	}
	if q.enqueued[0].NotBefore != nil {
		t.Errorf("Expected immediate eligibility (nil NotBefore), got %v", *q.enqueued[0].NotBefore)
	}
}

func TestSchedule_EnqueueFailurePropagates(t *testing.T) {
	t.Parallel()

	q := &fakeQueue{enqueueErr: errors.New("broker unreachable")}
	s := New(q, zap.NewNop())

	err := s.Schedule(context.Background(), newTestReminder(time.Now().Add(time.Hour)))
	if err == nil {
		t.Fatal("Expected error when enqueue fails")
	}
	if len(q.enqueued) != 0 {
		t.Errorf("Expected no enqueued jobs, got %d", len(q.enqueued))
	}
}

func TestSchedule_PayloadCarriesOnlyIdentity(t *testing.T) {
	t.Parallel()

	q := &fakeQueue{}
	s := New(q, zap.NewNop())

	reminder := newTestReminder(time.Now().Add(time.Minute))
	if err := s.Schedule(context.Background(), reminder); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	// The job must not embed the message; the worker reloads state at fire time
	job := q.enqueued[0]
	if job.ReminderID == nil {
		t.Fatal("Expected reminder ID on job")
	}
	if job.RetryCount != 0 || job.MaxRetries != 3 {
		t.Errorf("Expected fresh retry counters, got %d/%d", job.RetryCount, job.MaxRetries)
	}
}
