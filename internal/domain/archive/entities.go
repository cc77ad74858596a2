package archive

import (
	"errors"
	"time"

	"motofin-ledger/internal/domain/store"
)

// Module tags the closed set of archivable entity kinds. Each module has its
// own snapshot codec; schedule entries ride inside the loan snapshot, and
// append-only history (risk assessments, audit entries) is never archived.
type Module string

const (
	ModuleLoans  Module = "loans"
	ModuleAssets Module = "assets"
)

type Status string

const (
	StatusArchived Status = "archived"
	StatusRestored Status = "restored"
)

var (
	ErrNotFound        = errors.New("archive entry not found")
	ErrAlreadyRestored = errors.New("archive entry already restored")
	ErrUnknownModule   = errors.New("unknown archive module")
)

// Entry holds a full JSON snapshot of a record at archive time. Archiving is
// the only sanctioned way to remove a record from active query paths.
type Entry struct {
	ID       uint64 `gorm:"primaryKey;column:id" json:"id"`
	Module   Module `gorm:"size:100;index:idx_archive_record,priority:1" json:"module"`
	RecordID uint64 `gorm:"index:idx_archive_record,priority:2" json:"record_id"`
	ActorID  string `gorm:"size:32" json:"actor_id"`
	Reason   string `gorm:"type:text" json:"reason"`
	Snapshot string `gorm:"type:json;not null" json:"snapshot"`
	Status   Status `gorm:"size:20;index;default:'archived'" json:"status"`

	store.Versioned

	RestoredAt *time.Time `json:"restored_at,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (Entry) TableName() string { return "archive_entries" }
