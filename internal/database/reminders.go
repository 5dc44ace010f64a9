package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/remindhq/reminder-api/internal/models"
)

// ErrNotFound is returned when a record is absent or not visible to the caller.
var ErrNotFound = sql.ErrNoRows

// ReminderRepository handles reminder database operations
type ReminderRepository struct {
	db *DB
}

// NewReminderRepository creates a new reminder repository
func NewReminderRepository(db *DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

// Create creates a new reminder
func (r *ReminderRepository) Create(ctx context.Context, reminder *models.Reminder) error {
	query := `
		INSERT INTO reminders (id, user_id, message, notification_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		reminder.ID,
		reminder.UserID,
		reminder.Message,
		reminder.NotificationDate,
		reminder.Status,
		now,
		now,
	).Scan(&reminder.CreatedAt, &reminder.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create reminder: %w", err)
	}

	return nil
}

// GetByID retrieves a reminder by ID regardless of owner. Used by the
// delivery worker, which acts on queue identity rather than a user.
func (r *ReminderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Reminder, error) {
	query := `
		SELECT id, user_id, message, notification_date, status, created_at, updated_at
		FROM reminders
		WHERE id = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByIDForUser retrieves a reminder by ID scoped to its owner. Absence and
// ownership mismatch are indistinguishable to the caller.
func (r *ReminderRepository) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Reminder, error) {
	query := `
		SELECT id, user_id, message, notification_date, status, created_at, updated_at
		FROM reminders
		WHERE id = $1 AND user_id = $2
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id, userID))
}

// ListByUser retrieves all reminders owned by a user, newest first
func (r *ReminderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Reminder, error) {
	query := `
		SELECT id, user_id, message, notification_date, status, created_at, updated_at
		FROM reminders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reminders: %w", err)
	}
	defer rows.Close()

	var reminders []*models.Reminder
	for rows.Next() {
		reminder := &models.Reminder{}
		err := rows.Scan(
			&reminder.ID,
			&reminder.UserID,
			&reminder.Message,
			&reminder.NotificationDate,
			&reminder.Status,
			&reminder.CreatedAt,
			&reminder.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, reminder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reminders: %w", err)
	}

	return reminders, nil
}

// updateReminderQuery leaves status alone. Delivery owns status
// transitions; writing back a status loaded before the update could
// revert a reminder that was delivered in the meantime.
const updateReminderQuery = `
	UPDATE reminders
	SET message = $2, notification_date = $3, updated_at = $4
	WHERE id = $1
	RETURNING status, updated_at
`

// Update updates a reminder's message and notification date
func (r *ReminderRepository) Update(ctx context.Context, reminder *models.Reminder) error {
	err := r.db.QueryRowContext(ctx, updateReminderQuery,
		reminder.ID,
		reminder.Message,
		reminder.NotificationDate,
		time.Now(),
	).Scan(&reminder.Status, &reminder.UpdatedAt)

	if err == sql.ErrNoRows {
		return fmt.Errorf("reminder not found: %w", err)
	}
	if err != nil {
		return fmt.Errorf("failed to update reminder: %w", err)
	}

	return nil
}

// Delete deletes a reminder scoped to its owner
func (r *ReminderRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	query := `DELETE FROM reminders WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("reminder not found: %w", sql.ErrNoRows)
	}

	return nil
}

// DeleteByID deletes a reminder without user scoping. Used only for
// compensation when enqueueing a freshly created reminder fails.
func (r *ReminderRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}
	return nil
}

// ClaimForDelivery atomically transitions a reminder from scheduled to
// sending. Returns false when the reminder is absent, already claimed, or
// terminal, which the worker treats as an idempotent no-op. The conditional
// update is the guard against duplicate sends under redelivery.
func (r *ReminderRepository) ClaimForDelivery(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE reminders
		SET status = $2, updated_at = $3
		WHERE id = $1 AND status = $4
	`

	result, err := r.db.ExecContext(ctx, query,
		id,
		models.ReminderStatusSending,
		time.Now(),
		models.ReminderStatusScheduled,
	)
	if err != nil {
		return false, fmt.Errorf("failed to claim reminder: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected == 1, nil
}

// SetStatus updates a reminder's status and returns the affected row count
func (r *ReminderRepository) SetStatus(ctx context.Context, id uuid.UUID, status models.ReminderStatus) (int64, error) {
	query := `UPDATE reminders SET status = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to set reminder status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

// FindOverdueScheduled returns reminders still scheduled with a notification
// date older than the grace period. Used by the requeue reconciler to
// recover reminders whose delivery job was lost.
func (r *ReminderRepository) FindOverdueScheduled(ctx context.Context, grace time.Duration) ([]*models.Reminder, error) {
	query := `
		SELECT id, user_id, message, notification_date, status, created_at, updated_at
		FROM reminders
		WHERE status = $1 AND notification_date < $2
		ORDER BY notification_date ASC
	`

	rows, err := r.db.QueryContext(ctx, query, models.ReminderStatusScheduled, time.Now().Add(-grace))
	if err != nil {
		return nil, fmt.Errorf("failed to query overdue reminders: %w", err)
	}
	defer rows.Close()

	var reminders []*models.Reminder
	for rows.Next() {
		reminder := &models.Reminder{}
		err := rows.Scan(
			&reminder.ID,
			&reminder.UserID,
			&reminder.Message,
			&reminder.NotificationDate,
			&reminder.Status,
			&reminder.CreatedAt,
			&reminder.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, reminder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reminders: %w", err)
	}

	return reminders, nil
}

func (r *ReminderRepository) scanOne(row *sql.Row) (*models.Reminder, error) {
	reminder := &models.Reminder{}
	err := row.Scan(
		&reminder.ID,
		&reminder.UserID,
		&reminder.Message,
		&reminder.NotificationDate,
		&reminder.Status,
		&reminder.CreatedAt,
		&reminder.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("reminder not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reminder: %w", err)
	}

	return reminder, nil
}
