package authz

import (
	"context"
	"errors"
)

var ErrForbidden = errors.New("actor lacks the required capability")

type Capability string

const (
	CapApproveLoans   Capability = "approve_loans"
	CapRecordPayments Capability = "record_payments"
	CapArchiveRecords Capability = "archive_records"
	CapRestoreRecords Capability = "restore_records"
)

// Authorizer is the RBAC collaborator contract. The engine trusts the boolean
// and never verifies credentials itself.
type Authorizer interface {
	Allowed(ctx context.Context, actorID string, cap Capability) bool
}

// AllowAll authorizes every actor; used for wiring where policy enforcement
// sits upstream of the engine.
type AllowAll struct{}

func (AllowAll) Allowed(context.Context, string, Capability) bool { return true }
