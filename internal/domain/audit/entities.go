package audit

import (
	"encoding/json"
	"time"
)

type Action string

const (
	ActionAdd     Action = "ADD"
	ActionEdit    Action = "EDIT"
	ActionDelete  Action = "DELETE"
	ActionArchive Action = "ARCHIVE"
	ActionRestore Action = "RESTORE"
	ActionLogin   Action = "LOGIN"
	ActionLogout  Action = "LOGOUT"

	ActionLoanSubmitted   Action = "LOAN_SUBMITTED"
	ActionLoanApproved    Action = "LOAN_APPROVED"
	ActionLoanRejected    Action = "LOAN_REJECTED"
	ActionLoanActivated   Action = "LOAN_ACTIVATED"
	ActionLoanCompleted   Action = "LOAN_COMPLETED"
	ActionPaymentRecorded Action = "PAYMENT_RECORDED"
	ActionPaymentOverdue  Action = "PAYMENT_OVERDUE"
	ActionRiskRecomputed  Action = "RISK_RECOMPUTED"
)

// Entry is one append-only audit row. Entries are written inside the same
// transaction as the mutation they describe; they are never updated or
// deleted.
type Entry struct {
	ID          uint64  `gorm:"primaryKey;column:id" json:"-"`
	ActorID     string  `gorm:"size:32;index" json:"actor_id"`
	Module      string  `gorm:"size:100;index:idx_audit_record,priority:1" json:"module"`
	RecordID    uint64  `gorm:"index:idx_audit_record,priority:2" json:"record_id"`
	Action      Action  `gorm:"size:50;not null" json:"action"`
	Description string  `gorm:"type:text" json:"description"`
	Before      *string `gorm:"type:text" json:"before,omitempty"`
	After       *string `gorm:"type:text" json:"after,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Entry) TableName() string { return "audit_entries" }

// NewEntry builds an audit row with optional before/after JSON deltas.
// A delta that fails to marshal fails the entry, and with it the enclosing
// operation: no mutation is durable without its audit trail.
func NewEntry(actorID, module string, recordID uint64, action Action, description string, before, after any) (*Entry, error) {
	e := &Entry{
		ActorID:     actorID,
		Module:      module,
		RecordID:    recordID,
		Action:      action,
		Description: description,
	}
	var err error
	if e.Before, err = marshalDelta(before); err != nil {
		return nil, err
	}
	if e.After, err = marshalDelta(after); err != nil {
		return nil, err
	}
	return e, nil
}

func marshalDelta(v any) (*string, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := string(raw)
	return &s, nil
}
