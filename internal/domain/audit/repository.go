package audit

import (
	"context"
	"time"
)

// MutationCount aggregates audit rows per record, the race monitor's raw
// velocity signal.
type MutationCount struct {
	Module   string
	RecordID uint64
	Count    int64
}

type Repository interface {
	// Create appends an entry. Append-only: there is no update or delete.
	Create(ctx context.Context, e *Entry) error

	ListByRecord(ctx context.Context, module string, recordID uint64) ([]Entry, error)

	// CountSince groups entries written after the cutoff by (module, record).
	CountSince(ctx context.Context, since time.Time) ([]MutationCount, error)
}
