package mail

import (
	"context"
)

// Notifier delivers a message to a recipient. Implementations report
// failure through the returned error; the worker owns the status
// transition that follows.
type Notifier interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}
