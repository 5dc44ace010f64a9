package validation

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/remindhq/reminder-api/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	// These should never fail in normal operation, but log if they do
	if err := Validate.RegisterValidation("reminder_status", validateReminderStatus); err != nil {
		panic(fmt.Sprintf("failed to register reminder_status validator: %v", err))
	}
}

// validateReminderStatus validates that a string is a valid ReminderStatus enum value
func validateReminderStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	switch models.ReminderStatus(value) {
	case models.ReminderStatusScheduled, models.ReminderStatusSending, models.ReminderStatusSent, models.ReminderStatusError:
		return true
	default:
		return false
	}
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	// Trim whitespace
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateReminderStatus validates a ReminderStatus string value
func ValidateReminderStatus(value string) error {
	status := models.ReminderStatus(value)
	switch status {
	case models.ReminderStatusScheduled, models.ReminderStatusSending, models.ReminderStatusSent, models.ReminderStatusError:
		return nil
	default:
		return fmt.Errorf("invalid status: %s (must be 'scheduled', 'sending', 'sent', or 'error')", value)
	}
}

// ValidateNotificationDate validates that a reminder's notification date
// is in the future relative to now.
func ValidateNotificationDate(value, now time.Time) error {
	if !value.After(now) {
		return fmt.Errorf("notification_date must be in the future")
	}
	return nil
}
