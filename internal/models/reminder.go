package models

import (
	"time"

	"github.com/google/uuid"
)

// ReminderStatus represents the delivery status of a reminder
type ReminderStatus string

const (
	// ReminderStatusScheduled means the reminder is waiting for its delivery time
	ReminderStatusScheduled ReminderStatus = "scheduled"
	// ReminderStatusSending means a worker has claimed the reminder and delivery is in flight
	ReminderStatusSending ReminderStatus = "sending"
	// ReminderStatusSent means delivery succeeded (terminal)
	ReminderStatusSent ReminderStatus = "sent"
	// ReminderStatusError means delivery failed after exhausting retries (terminal)
	ReminderStatusError ReminderStatus = "error"
)

// IsTerminal reports whether the status admits no further transitions.
func (s ReminderStatus) IsTerminal() bool {
	return s == ReminderStatusSent || s == ReminderStatusError
}

// Reminder represents a user-owned message with a future delivery time
type Reminder struct {
	ID               uuid.UUID      `json:"id"`
	UserID           uuid.UUID      `json:"user_id"`
	Message          string         `json:"message"`
	NotificationDate time.Time      `json:"notification_date"`
	Status           ReminderStatus `json:"status"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}
