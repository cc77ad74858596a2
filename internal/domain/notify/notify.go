package notify

import "context"

// Notifier is the reminder-delivery collaborator. Calls are fire-and-forget:
// the engine never waits on delivery success.
type Notifier interface {
	PaymentOverdue(ctx context.Context, loanID, entryID uint64)
}

// Noop discards every notification.
type Noop struct{}

func (Noop) PaymentOverdue(context.Context, uint64, uint64) {}
