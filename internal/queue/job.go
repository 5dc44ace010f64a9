package queue

import (
	"time"

	"github.com/google/uuid"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypeReminderDelivery is a job for delivering a single reminder
	JobTypeReminderDelivery JobType = "reminder_delivery"
)

// Job represents a job in the queue. A delivery job carries only the
// reminder's identity; the worker reloads current state at fire time.
type Job struct {
	ID         uuid.UUID  `json:"id"`
	Type       JobType    `json:"type"`
	UserID     uuid.UUID  `json:"user_id"`
	ReminderID *uuid.UUID `json:"reminder_id,omitempty"`
	NotBefore  *time.Time `json:"not_before,omitempty"` // Earliest time to process job (nil = immediate)
	NotAfter   *time.Time `json:"not_after,omitempty"`  // Latest time to process job (nil = no expiration)
	CreatedAt  time.Time  `json:"created_at"`
	RetryCount int        `json:"retry_count"`
	MaxRetries int        `json:"max_retries"`
}

// NewJob creates a new job
func NewJob(jobType JobType, userID uuid.UUID, reminderID *uuid.UUID) *Job {
	return &Job{
		ID:         uuid.New(),
		Type:       jobType,
		UserID:     userID,
		ReminderID: reminderID,
		CreatedAt:  time.Now(),
		RetryCount: 0,
		MaxRetries: 3,
	}
}

// ShouldProcess checks if the job should be processed now
func (j *Job) ShouldProcess() bool {
	now := time.Now()

	if j.NotBefore != nil && now.Before(*j.NotBefore) {
		return false
	}

	if j.NotAfter != nil && now.After(*j.NotAfter) {
		return false
	}

	return true
}

// IsExpired checks if the job has expired
func (j *Job) IsExpired() bool {
	if j.NotAfter == nil {
		return false
	}

	return time.Now().After(*j.NotAfter)
}

// CanRetry checks if the job can be retried
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// IncrementRetry increments the retry count
func (j *Job) IncrementRetry() {
	j.RetryCount++
}

// RetryDelay returns the backoff delay before the next attempt,
// doubling per attempt from a 30 second base.
func (j *Job) RetryDelay() time.Duration {
	delay := 30 * time.Second << uint(j.RetryCount)
	if delay > 10*time.Minute {
		delay = 10 * time.Minute
	}
	return delay
}
