package notifymock

import (
	"context"
	"sync"

	"motofin-ledger/internal/domain/notify"
)

var _ notify.Notifier = (*Notifier)(nil)

type Call struct {
	LoanID  uint64
	EntryID uint64
}

// Notifier records every dispatched notification. Safe for concurrent use
// because the engine fires notifications from goroutines.
type Notifier struct {
	mu    sync.Mutex
	calls []Call
}

func (n *Notifier) PaymentOverdue(_ context.Context, loanID, entryID uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, Call{LoanID: loanID, EntryID: entryID})
}

func (n *Notifier) Calls() []Call {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Call, len(n.calls))
	copy(out, n.calls)
	return out
}
