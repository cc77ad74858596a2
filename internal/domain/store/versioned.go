package store

import (
	"errors"
	"fmt"
	"time"
)

// ErrConcurrencyConflict is the sentinel every version conflict matches via
// errors.Is, regardless of which entity lost the race.
var ErrConcurrencyConflict = errors.New("concurrent modification detected")

// Versioned is embedded by every mutable record. Version starts at 1 and
// increments by exactly one per successful write; updates are applied as
// compare-and-swap on (id, version) so a stale writer can never overwrite a
// newer state.
type Versioned struct {
	Version        uint64    `gorm:"column:version;not null;default:1" json:"version"`
	LastModifiedAt time.Time `gorm:"column:last_modified_at" json:"last_modified_at"`
}

// Bump advances the record past expectedVersion. Callers capture the expected
// version before calling and pass it to the repository as the CAS guard.
func (v *Versioned) Bump(expectedVersion uint64) {
	v.Version = expectedVersion + 1
	v.LastModifiedAt = time.Now().UTC()
}

// ConflictError reports a lost compare-and-swap: the caller held Expected but
// the row had already advanced to Actual.
type ConflictError struct {
	Entity   string
	ID       uint64
	Expected uint64
	Actual   uint64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %d: version conflict, expected %d but found %d",
		e.Entity, e.ID, e.Expected, e.Actual)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConcurrencyConflict }
