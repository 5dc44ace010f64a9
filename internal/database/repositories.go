package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/remindhq/reminder-api/internal/models"
)

// ReminderRepositoryInterface defines the interface for reminder repository operations
// This interface enables better testability by allowing mock implementations
type ReminderRepositoryInterface interface {
	Create(ctx context.Context, reminder *models.Reminder) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Reminder, error)
	GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Reminder, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Reminder, error)
	Update(ctx context.Context, reminder *models.Reminder) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
	DeleteByID(ctx context.Context, id uuid.UUID) error
	ClaimForDelivery(ctx context.Context, id uuid.UUID) (bool, error)
	SetStatus(ctx context.Context, id uuid.UUID, status models.ReminderStatus) (int64, error)
	FindOverdueScheduled(ctx context.Context, grace time.Duration) ([]*models.Reminder, error)
}

// UserRepositoryInterface defines the interface for user repository operations
type UserRepositoryInterface interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Ensure concrete types implement the interfaces
var (
	_ ReminderRepositoryInterface = (*ReminderRepository)(nil)
	_ UserRepositoryInterface     = (*UserRepository)(nil)
)
