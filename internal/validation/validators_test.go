package validation

import (
	"testing"
	"time"
)

func TestSanitizeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims whitespace", "  remember the milk  ", "remember the milk"},
		{"keeps newline and tab", "line one\n\tline two", "line one\n\tline two"},
		{"strips control characters", "call\x00 mom\x07", "call mom"},
		{"empty", "", ""},
		{"only whitespace", "   \t\n  ", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeText(tt.input); got != tt.want {
				t.Errorf("SanitizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateReminderStatus(t *testing.T) {
	t.Parallel()

	valid := []string{"scheduled", "sending", "sent", "error"}
	for _, s := range valid {
		if err := ValidateReminderStatus(s); err != nil {
			t.Errorf("ValidateReminderStatus(%q) = %v, want nil", s, err)
		}
	}

	invalid := []string{"", "done", "SCHEDULED", "pending"}
	for _, s := range invalid {
		if err := ValidateReminderStatus(s); err == nil {
			t.Errorf("ValidateReminderStatus(%q) = nil, want error", s)
		}
	}
}

func TestValidateNotificationDate(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if err := ValidateNotificationDate(now.Add(time.Minute), now); err != nil {
		t.Errorf("future date rejected: %v", err)
	}
	if err := ValidateNotificationDate(now, now); err == nil {
		t.Error("expected error for date equal to now")
	}
	if err := ValidateNotificationDate(now.Add(-time.Hour), now); err == nil {
		t.Error("expected error for past date")
	}
}
