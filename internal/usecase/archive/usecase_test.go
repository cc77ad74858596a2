package archive

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"motofin-ledger/internal/adapter/repository/mysql"
	archiveDomain "motofin-ledger/internal/domain/archive"
	assetDomain "motofin-ledger/internal/domain/asset"
	"motofin-ledger/internal/domain/authz"
	"motofin-ledger/internal/domain/financing"
	riskDomain "motofin-ledger/internal/domain/risk"
	"motofin-ledger/internal/testutil/dbtest"
	loanuc "motofin-ledger/internal/usecase/loan"
	"motofin-ledger/pkg/id"
)

type fixture struct {
	db     *gorm.DB
	uc     *Usecase
	luc    *loanuc.Usecase
	asset  *assetDomain.Asset
	loanID string
	actor  string
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	ctx := context.Background()

	term := &financing.Term{TermYears: 1, InterestRate: 12, IsActive: true}
	if err := mysql.NewFinancingTermRepository(db).Create(ctx, term); err != nil {
		t.Fatalf("seed term: %v", err)
	}
	a := &assetDomain.Asset{ChassisNumber: id.NewID32(), Brand: "Honda", ModelName: "PCX", Year: 2025, PurchasePrice: 88000, Status: assetDomain.StatusAvailable}
	if err := mysql.NewAssetRepository(db).Create(ctx, a); err != nil {
		t.Fatalf("seed asset: %v", err)
	}

	uow := mysql.NewGormUoW(db)
	actor := id.NewID32()
	luc := loanuc.NewUsecase(uow, authz.AllowAll{}, riskDomain.DefaultParams())
	dto, err := luc.Submit(ctx, loanuc.SubmitInput{
		ActorID:            actor,
		ApplicantFirstName: "Siti",
		ApplicantLastName:  "Rahma",
		ApplicantEmail:     "siti@example.com",
		EmploymentStatus:   "self_employed",
		MonthlyIncome:      4000,
		CreditScore:        700,
		AssetID:            a.ID,
		FinancingTermID:    term.ID,
		LoanAmount:         80000,
		DownPayment:        8000,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	return &fixture{
		db:     db,
		uc:     NewUsecase(uow, authz.AllowAll{}),
		luc:    luc,
		asset:  a,
		loanID: dto.LoanID,
		actor:  actor,
	}
}

func TestArchiveAndRestoreLoan(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	loans := mysql.NewLoanRepository(f.db)
	original, err := loans.GetByLoanID(ctx, f.loanID)
	if err != nil {
		t.Fatalf("load loan: %v", err)
	}

	entry, err := f.uc.Archive(ctx, ArchiveInput{
		ActorID:  f.actor,
		Module:   archiveDomain.ModuleLoans,
		RecordID: original.ID,
		Reason:   "application withdrawn",
	})
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if entry.Status != archiveDomain.StatusArchived {
		t.Errorf("archive status=%s", entry.Status)
	}

	// Gone from active query paths.
	if _, err := loans.GetByID(ctx, original.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("archived loan still visible: %v", err)
	}
	// A pending loan leaving the ledger releases its reservation.
	a, _ := mysql.NewAssetRepository(f.db).GetByID(ctx, f.asset.ID)
	if a.Status != assetDomain.StatusAvailable {
		t.Errorf("asset status=%s want available", a.Status)
	}

	restored, err := f.uc.Restore(ctx, f.actor, entry.ArchiveID)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored.Status != archiveDomain.StatusRestored || restored.RestoredAt == nil {
		t.Errorf("restore dto: %+v", restored)
	}

	back, err := loans.GetByID(ctx, original.ID)
	if err != nil {
		t.Fatalf("restored loan not visible: %v", err)
	}
	// Field-for-field equal to the snapshot, but under a fresh version.
	if back.Version != 1 {
		t.Errorf("restored Version=%d want 1", back.Version)
	}
	if back.LoanID != original.LoanID ||
		back.Principal != original.Principal ||
		back.Status != original.Status ||
		back.RiskScore != original.RiskScore ||
		back.ApplicantEmail != original.ApplicantEmail {
		t.Errorf("restored loan drifted:\n got %+v\nwant %+v", back, original)
	}

	_, err = f.uc.Restore(ctx, f.actor, entry.ArchiveID)
	if !errors.Is(err, archiveDomain.ErrAlreadyRestored) {
		t.Fatalf("second restore: %v", err)
	}
}

func TestArchiveActiveLoan_RepossessesAsset(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	loans := mysql.NewLoanRepository(f.db)
	l, _ := loans.GetByLoanID(ctx, f.loanID)

	dto, err := f.luc.Approve(ctx, loanuc.TransitionInput{ActorID: f.actor, LoanID: f.loanID, Version: l.Version})
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if _, err := f.luc.Activate(ctx, loanuc.TransitionInput{ActorID: f.actor, LoanID: f.loanID, Version: dto.Version}); err != nil {
		t.Fatalf("Activate: %v", err)
	}

	if _, err := f.uc.Archive(ctx, ArchiveInput{
		ActorID:  f.actor,
		Module:   archiveDomain.ModuleLoans,
		RecordID: l.ID,
		Reason:   "repossession",
	}); err != nil {
		t.Fatalf("Archive: %v", err)
	}

	a, _ := mysql.NewAssetRepository(f.db).GetByID(ctx, f.asset.ID)
	if a.Status != assetDomain.StatusRepossessed {
		t.Errorf("asset status=%s want repossessed", a.Status)
	}

	// The schedule rides inside the snapshot and comes back on restore.
	archives, _ := mysql.NewArchiveRepository(f.db).ListByModule(ctx, archiveDomain.ModuleLoans)
	if len(archives) != 1 {
		t.Fatalf("archives=%d want 1", len(archives))
	}
	if _, err := f.uc.Restore(ctx, f.actor, archives[0].ID); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	entries, _ := loans.EntriesByLoanID(ctx, l.ID)
	if len(entries) != 12 {
		t.Errorf("restored schedule entries=%d want 12", len(entries))
	}
	for i := range entries {
		if entries[i].Version != 1 {
			t.Fatalf("restored entry %d Version=%d want 1", entries[i].Sequence, entries[i].Version)
		}
	}
}

func TestArchive_UnknownModule(t *testing.T) {
	f := setup(t)
	_, err := f.uc.Archive(context.Background(), ArchiveInput{
		ActorID:  f.actor,
		Module:   archiveDomain.Module("risk_assessments"),
		RecordID: 1,
	})
	if !errors.Is(err, archiveDomain.ErrUnknownModule) {
		t.Fatalf("expected ErrUnknownModule, got %v", err)
	}
}

func TestArchiveAsset(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	assets := mysql.NewAssetRepository(db)
	a := &assetDomain.Asset{ChassisNumber: id.NewID32(), Brand: "Suzuki", ModelName: "Address", Year: 2024, PurchasePrice: 30000, Status: assetDomain.StatusAvailable}
	if err := assets.Create(ctx, a); err != nil {
		t.Fatalf("seed asset: %v", err)
	}

	uc := NewUsecase(mysql.NewGormUoW(db), authz.AllowAll{})
	actor := id.NewID32()

	entry, err := uc.Archive(ctx, ArchiveInput{ActorID: actor, Module: archiveDomain.ModuleAssets, RecordID: a.ID, Reason: "written off"})
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if _, err := assets.GetByID(ctx, a.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("archived asset still visible: %v", err)
	}

	if _, err := uc.Restore(ctx, actor, entry.ArchiveID); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	back, err := assets.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("restored asset not visible: %v", err)
	}
	if back.ChassisNumber != a.ChassisNumber || back.Version != 1 {
		t.Errorf("restored asset: %+v", back)
	}
}
