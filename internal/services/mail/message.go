package mail

import (
	"fmt"
	"html"
	"time"
)

const subjectExcerptLength = 20

// ReminderSubject builds the subject line for a reminder delivery,
// truncating long messages to a short excerpt. Truncation happens on a
// rune boundary so a multi-byte character is never split.
func ReminderSubject(message string) string {
	excerpt := message
	if runes := []rune(excerpt); len(runes) > subjectExcerptLength {
		excerpt = string(runes[:subjectExcerptLength]) + "..."
	}
	return fmt.Sprintf("Your reminder: %s", excerpt)
}

// ReminderBody renders the HTML body for a reminder delivery
func ReminderBody(message string, notificationDate time.Time) string {
	return fmt.Sprintf(
		"<h1>Hello!</h1>\n"+
			"<p>This is a reminder for:</p>\n"+
			"<h2>%s</h2>\n"+
			"<p>Scheduled for: %s</p>\n",
		html.EscapeString(message),
		notificationDate.Format("Jan 2, 2006 at 15:04 MST"),
	)
}
