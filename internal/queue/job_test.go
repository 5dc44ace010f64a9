package queue

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewJob(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	reminderID := uuid.New()

	job := NewJob(JobTypeReminderDelivery, userID, &reminderID)

	if job.ID == uuid.Nil {
		t.Error("Expected job ID to be set")
	}
	if job.Type != JobTypeReminderDelivery {
		t.Errorf("Expected job type to be %s, got %s", JobTypeReminderDelivery, job.Type)
	}
	if job.UserID != userID {
		t.Errorf("Expected user ID to be %s, got %s", userID, job.UserID)
	}
	if job.ReminderID == nil || *job.ReminderID != reminderID {
		t.Errorf("Expected reminder ID to be %s, got %v", reminderID, job.ReminderID)
	}
	if job.RetryCount != 0 {
		t.Errorf("Expected retry count to be 0, got %d", job.RetryCount)
	}
	if job.MaxRetries != 3 {
		t.Errorf("Expected max retries to be 3, got %d", job.MaxRetries)
	}
}

func TestJob_ShouldProcess(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	now := time.Now()

	tests := []struct {
		name string
		job  *Job
		want bool
	}{
		{
			name: "no time constraints",
			job: &Job{
				ID:     uuid.New(),
				Type:   JobTypeReminderDelivery,
				UserID: userID,
			},
			want: true,
		},
		{
			name: "not before in past",
			job: &Job{
				ID:        uuid.New(),
				Type:      JobTypeReminderDelivery,
				UserID:    userID,
				NotBefore: timePtr(now.Add(-1 * time.Hour)),
			},
			want: true,
		},
		{
			name: "not before in future",
			job: &Job{
				ID:        uuid.New(),
				Type:      JobTypeReminderDelivery,
				UserID:    userID,
				NotBefore: timePtr(now.Add(1 * time.Hour)),
			},
			want: false,
		},
		{
			name: "not after in past",
			job: &Job{
				ID:       uuid.New(),
				Type:     JobTypeReminderDelivery,
				UserID:   userID,
				NotAfter: timePtr(now.Add(-1 * time.Hour)),
			},
			want: false,
		},
		{
			name: "not after in future",
			job: &Job{
				ID:       uuid.New(),
				Type:     JobTypeReminderDelivery,
				UserID:   userID,
				NotAfter: timePtr(now.Add(1 * time.Hour)),
			},
			want: true,
		},
		{
			name: "within time window",
			job: &Job{
				ID:        uuid.New(),
				Type:      JobTypeReminderDelivery,
				UserID:    userID,
				NotBefore: timePtr(now.Add(-1 * time.Hour)),
				NotAfter:  timePtr(now.Add(1 * time.Hour)),
			},
			want: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.job.ShouldProcess(); got != tt.want {
				t.Errorf("ShouldProcess() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJob_IsExpired(t *testing.T) {
	t.Parallel()

	now := time.Now()

	tests := []struct {
		name     string
		notAfter *time.Time
		want     bool
	}{
		{name: "no expiration", notAfter: nil, want: false},
		{name: "expired", notAfter: timePtr(now.Add(-1 * time.Minute)), want: true},
		{name: "not yet expired", notAfter: timePtr(now.Add(1 * time.Minute)), want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			job := &Job{ID: uuid.New(), Type: JobTypeReminderDelivery, NotAfter: tt.notAfter}
			if got := job.IsExpired(); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJob_Retries(t *testing.T) {
	t.Parallel()

	job := NewJob(JobTypeReminderDelivery, uuid.New(), nil)

	for i := 0; i < job.MaxRetries; i++ {
		if !job.CanRetry() {
			t.Fatalf("Expected CanRetry to be true at retry count %d", job.RetryCount)
		}
		job.IncrementRetry()
	}

	if job.CanRetry() {
		t.Errorf("Expected CanRetry to be false at retry count %d", job.RetryCount)
	}
}

func TestJob_RetryDelay(t *testing.T) {
	t.Parallel()

	job := NewJob(JobTypeReminderDelivery, uuid.New(), nil)

	if got := job.RetryDelay(); got != 30*time.Second {
		t.Errorf("Expected first retry delay of 30s, got %v", got)
	}

	job.IncrementRetry()
	if got := job.RetryDelay(); got != 60*time.Second {
		t.Errorf("Expected second retry delay of 60s, got %v", got)
	}

	job.RetryCount = 20
	if got := job.RetryDelay(); got != 10*time.Minute {
		t.Errorf("Expected retry delay capped at 10m, got %v", got)
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
