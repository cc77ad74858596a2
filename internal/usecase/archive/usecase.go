package archive

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	archiveDomain "motofin-ledger/internal/domain/archive"
	auditDomain "motofin-ledger/internal/domain/audit"
	"motofin-ledger/internal/domain/authz"
	"motofin-ledger/internal/domain/uow"
)

// codec is the per-module half of the archive's tagged union: each archivable
// kind knows how to snapshot itself, leave active query paths, and come back.
type codec interface {
	capture(ctx context.Context, r uow.Repos, recordID uint64) (string, error)
	remove(ctx context.Context, r uow.Repos, recordID uint64, actorID string) error
	restore(ctx context.Context, r uow.Repos, snapshot string) (uint64, error)
}

type Usecase struct {
	uow    uow.UnitOfWork
	auth   authz.Authorizer
	codecs map[archiveDomain.Module]codec
}

func NewUsecase(tx uow.UnitOfWork, auth authz.Authorizer) *Usecase {
	return &Usecase{
		uow:  tx,
		auth: auth,
		codecs: map[archiveDomain.Module]codec{
			archiveDomain.ModuleLoans:  loanCodec{},
			archiveDomain.ModuleAssets: assetCodec{},
		},
	}
}

type ArchiveInput struct {
	ActorID  string                `json:"-"`
	Module   archiveDomain.Module  `json:"module"`
	RecordID uint64                `json:"record_id"`
	Reason   string                `json:"reason,omitempty"`
}

type EntryDTO struct {
	ArchiveID  uint64                `json:"archive_id"`
	Module     archiveDomain.Module  `json:"module"`
	RecordID   uint64                `json:"record_id"`
	Reason     string                `json:"reason,omitempty"`
	Status     archiveDomain.Status  `json:"status"`
	RestoredAt *time.Time            `json:"restored_at,omitempty"`
	CreatedAt  time.Time             `json:"created_at"`
}

// Archive snapshots the record, removes it from active query paths, and
// writes the archive row plus audit entry as one transaction. This is the
// only removal path the ledger sanctions.
func (u *Usecase) Archive(ctx context.Context, in ArchiveInput) (*EntryDTO, error) {
	if !u.auth.Allowed(ctx, in.ActorID, authz.CapArchiveRecords) {
		return nil, authz.ErrForbidden
	}
	c, ok := u.codecs[in.Module]
	if !ok {
		return nil, fmt.Errorf("%w: %s", archiveDomain.ErrUnknownModule, in.Module)
	}

	var dto *EntryDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		snapshot, err := c.capture(ctx, r, in.RecordID)
		if err != nil {
			return err
		}
		if err := c.remove(ctx, r, in.RecordID, in.ActorID); err != nil {
			return err
		}

		e := &archiveDomain.Entry{
			Module:   in.Module,
			RecordID: in.RecordID,
			ActorID:  in.ActorID,
			Reason:   in.Reason,
			Snapshot: snapshot,
			Status:   archiveDomain.StatusArchived,
		}
		if err := r.Archives.Create(ctx, e); err != nil {
			return err
		}

		entry, err := auditDomain.NewEntry(in.ActorID, string(in.Module), in.RecordID, auditDomain.ActionArchive,
			fmt.Sprintf("record archived: %s", in.Reason), nil, map[string]any{"archive_id": e.ID})
		if err != nil {
			return err
		}
		if err := r.Audits.Create(ctx, entry); err != nil {
			return err
		}

		dto = toEntryDTO(e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Restore rebuilds the archived record from its snapshot. The record comes
// back under a fresh version, not the one it carried when archived; the
// archive row flips to restored exactly once.
func (u *Usecase) Restore(ctx context.Context, actorID string, archiveID uint64) (*EntryDTO, error) {
	if !u.auth.Allowed(ctx, actorID, authz.CapRestoreRecords) {
		return nil, authz.ErrForbidden
	}

	var dto *EntryDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		e, err := r.Archives.GetByID(ctx, archiveID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return archiveDomain.ErrNotFound
			}
			return err
		}
		if e.Status == archiveDomain.StatusRestored {
			return archiveDomain.ErrAlreadyRestored
		}
		c, ok := u.codecs[e.Module]
		if !ok {
			return fmt.Errorf("%w: %s", archiveDomain.ErrUnknownModule, e.Module)
		}

		recordID, err := c.restore(ctx, r, e.Snapshot)
		if err != nil {
			return err
		}

		expected := e.Version
		now := time.Now().UTC()
		e.Status = archiveDomain.StatusRestored
		e.RestoredAt = &now
		if err := r.Archives.UpdateWithVersion(ctx, e, expected); err != nil {
			return err
		}

		entry, err := auditDomain.NewEntry(actorID, string(e.Module), recordID, auditDomain.ActionRestore,
			fmt.Sprintf("record restored from archive %d", e.ID), nil, nil)
		if err != nil {
			return err
		}
		if err := r.Audits.Create(ctx, entry); err != nil {
			return err
		}

		dto = toEntryDTO(e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (u *Usecase) List(ctx context.Context) ([]EntryDTO, error) {
	var out []EntryDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		entries, err := r.Archives.List(ctx)
		if err != nil {
			return err
		}
		out = make([]EntryDTO, 0, len(entries))
		for i := range entries {
			out = append(out, *toEntryDTO(&entries[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func toEntryDTO(e *archiveDomain.Entry) *EntryDTO {
	return &EntryDTO{
		ArchiveID:  e.ID,
		Module:     e.Module,
		RecordID:   e.RecordID,
		Reason:     e.Reason,
		Status:     e.Status,
		RestoredAt: e.RestoredAt,
		CreatedAt:  e.CreatedAt,
	}
}
