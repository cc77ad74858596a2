package loan

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"motofin-ledger/internal/adapter/repository/mysql"
	assetDomain "motofin-ledger/internal/domain/asset"
	auditDomain "motofin-ledger/internal/domain/audit"
	"motofin-ledger/internal/domain/authz"
	"motofin-ledger/internal/domain/financing"
	loanDomain "motofin-ledger/internal/domain/loan"
	riskDomain "motofin-ledger/internal/domain/risk"
	"motofin-ledger/internal/domain/store"
	"motofin-ledger/internal/domain/uow"
	"motofin-ledger/internal/testutil/dbtest"
	"motofin-ledger/internal/testutil/uowmock"
	"motofin-ledger/pkg/id"
)

type fixture struct {
	db    *gorm.DB
	uc    *Usecase
	term  *financing.Term
	asset *assetDomain.Asset
	actor string
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	ctx := context.Background()

	term := &financing.Term{TermYears: 1, InterestRate: 12, IsActive: true}
	if err := mysql.NewFinancingTermRepository(db).Create(ctx, term); err != nil {
		t.Fatalf("seed term: %v", err)
	}
	a := &assetDomain.Asset{
		ChassisNumber: id.NewID32(),
		Brand:         "Honda",
		ModelName:     "Vario 160",
		Year:          2025,
		PurchasePrice: 95000,
		Status:        assetDomain.StatusAvailable,
	}
	if err := mysql.NewAssetRepository(db).Create(ctx, a); err != nil {
		t.Fatalf("seed asset: %v", err)
	}

	return &fixture{
		db:    db,
		uc:    NewUsecase(mysql.NewGormUoW(db), authz.AllowAll{}, riskDomain.DefaultParams()),
		term:  term,
		asset: a,
		actor: id.NewID32(),
	}
}

func (f *fixture) submitInput() SubmitInput {
	return SubmitInput{
		ActorID:            f.actor,
		ApplicantFirstName: "Budi",
		ApplicantLastName:  "Santoso",
		ApplicantEmail:     "budi@example.com",
		ApplicantPhone:     "+628111111111",
		EmploymentStatus:   "employed",
		MonthlyIncome:      5000,
		CreditScore:        650,
		AssetID:            f.asset.ID,
		FinancingTermID:    f.term.ID,
		LoanAmount:         90000,
		DownPayment:        5000,
	}
}

func (f *fixture) assetStatus(t *testing.T) assetDomain.Status {
	t.Helper()
	a, err := mysql.NewAssetRepository(f.db).GetByID(context.Background(), f.asset.ID)
	if err != nil {
		t.Fatalf("reload asset: %v", err)
	}
	return a.Status
}

func TestSubmit(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	dto, err := f.uc.Submit(ctx, f.submitInput())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if len(dto.LoanID) != 32 {
		t.Fatalf("LoanID length: %d", len(dto.LoanID))
	}
	if dto.Status != loanDomain.StatusPending {
		t.Errorf("Status=%s want pending", dto.Status)
	}
	if dto.Principal != 85000 {
		t.Errorf("Principal=%v want 85000 (loan minus down payment)", dto.Principal)
	}
	// 85000 * 12% * 1y = 10200 interest
	if dto.TotalAmount != 95200.00 || dto.MonthlyPayment != 7933.33 {
		t.Errorf("totals: total=%v monthly=%v", dto.TotalAmount, dto.MonthlyPayment)
	}
	// create is version 1, folding the initial risk score bumps to 2
	if dto.Version != 2 {
		t.Errorf("Version=%d want 2", dto.Version)
	}
	if dto.RiskScore != 35 || dto.RiskLevel != riskDomain.LevelLow {
		t.Errorf("risk: score=%d level=%s", dto.RiskScore, dto.RiskLevel)
	}
	if got := f.assetStatus(t); got != assetDomain.StatusReserved {
		t.Errorf("asset status=%s want reserved", got)
	}

	l, err := mysql.NewLoanRepository(f.db).GetByLoanID(ctx, dto.LoanID)
	if err != nil {
		t.Fatalf("reload loan: %v", err)
	}
	audits, err := mysql.NewAuditRepository(f.db).ListByRecord(ctx, "loans", l.ID)
	if err != nil {
		t.Fatalf("list audits: %v", err)
	}
	if len(audits) != 1 || audits[0].Action != auditDomain.ActionLoanSubmitted {
		t.Errorf("unexpected audit trail: %+v", audits)
	}
}

func TestSubmit_Rejections(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	bad := f.submitInput()
	bad.EmploymentStatus = "freelancer"
	if _, err := f.uc.Submit(ctx, bad); err == nil {
		t.Fatal("expected employment status rejection")
	}

	bad = f.submitInput()
	bad.DownPayment = bad.LoanAmount
	var ve *loanDomain.ValidationError
	if _, err := f.uc.Submit(ctx, bad); !errors.As(err, &ve) || ve.Field != "down_payment" {
		t.Fatalf("expected down_payment validation, got %v", err)
	}

	bad = f.submitInput()
	bad.FinancingTermID = 999
	if _, err := f.uc.Submit(ctx, bad); !errors.As(err, &ve) {
		t.Fatalf("expected validation error for missing term, got %v", err)
	}

	// First submission reserves the asset; a second one must bounce.
	if _, err := f.uc.Submit(ctx, f.submitInput()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := f.uc.Submit(ctx, f.submitInput()); !errors.Is(err, assetDomain.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

type denyAll struct{}

func (denyAll) Allowed(context.Context, string, authz.Capability) bool { return false }

func TestTransitions_Forbidden(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	dto, err := f.uc.Submit(ctx, f.submitInput())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	locked := NewUsecase(mysql.NewGormUoW(f.db), denyAll{}, riskDomain.DefaultParams())
	in := TransitionInput{ActorID: f.actor, LoanID: dto.LoanID, Version: dto.Version}
	transitions := map[string]func(context.Context, TransitionInput) (*LoanDTO, error){
		"approve":  locked.Approve,
		"reject":   locked.Reject,
		"activate": locked.Activate,
		"complete": locked.Complete,
	}
	for name, fn := range transitions {
		if _, err := fn(ctx, in); !errors.Is(err, authz.ErrForbidden) {
			t.Errorf("%s: got %v, want ErrForbidden", name, err)
		}
	}
}

func TestSubmit_TransactionFailure(t *testing.T) {
	f := setup(t)
	boom := errors.New("deadlock found when trying to get lock")
	failing := &uowmock.UoW{
		WithinTxFn: func(ctx context.Context, fn func(r uow.Repos) error) error {
			return boom
		},
	}
	uc := NewUsecase(failing, authz.AllowAll{}, riskDomain.DefaultParams())
	if _, err := uc.Submit(context.Background(), f.submitInput()); !errors.Is(err, boom) {
		t.Fatalf("expected transaction error to surface, got %v", err)
	}
}

func TestApprove(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	dto, err := f.uc.Submit(ctx, f.submitInput())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// A stale reader loses before any state changes.
	_, err = f.uc.Approve(ctx, TransitionInput{ActorID: f.actor, LoanID: dto.LoanID, Version: 1})
	if !errors.Is(err, store.ErrConcurrencyConflict) {
		t.Fatalf("stale approve should conflict, got %v", err)
	}

	approved, err := f.uc.Approve(ctx, TransitionInput{ActorID: f.actor, LoanID: dto.LoanID, Version: dto.Version})
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if approved.Status != loanDomain.StatusApproved || approved.ApprovedAt == nil {
		t.Errorf("approved dto: status=%s approved_at=%v", approved.Status, approved.ApprovedAt)
	}

	entries, err := f.uc.Schedule(ctx, dto.LoanID)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if len(entries) != 12 {
		t.Fatalf("schedule entries=%d want 12", len(entries))
	}
	if entries[0].AmountDue != 7933.33 || entries[11].AmountDue != 7933.37 {
		t.Errorf("installments: first=%v last=%v", entries[0].AmountDue, entries[11].AmountDue)
	}

	// approved is not a legal source for approve
	_, err = f.uc.Approve(ctx, TransitionInput{ActorID: f.actor, LoanID: dto.LoanID, Version: approved.Version})
	if !errors.Is(err, loanDomain.ErrInvalidTransition) {
		t.Fatalf("double approve: %v", err)
	}
}

func TestReject_ReleasesAsset(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	dto, err := f.uc.Submit(ctx, f.submitInput())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	rejected, err := f.uc.Reject(ctx, TransitionInput{ActorID: f.actor, LoanID: dto.LoanID, Version: dto.Version, Reason: "income unverifiable"})
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if rejected.Status != loanDomain.StatusRejected {
		t.Errorf("Status=%s want rejected", rejected.Status)
	}
	if got := f.assetStatus(t); got != assetDomain.StatusAvailable {
		t.Errorf("asset status=%s want available", got)
	}
}

func TestActivateAndComplete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	dto, err := f.uc.Submit(ctx, f.submitInput())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	approved, err := f.uc.Approve(ctx, TransitionInput{ActorID: f.actor, LoanID: dto.LoanID, Version: dto.Version})
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}

	active, err := f.uc.Activate(ctx, TransitionInput{ActorID: f.actor, LoanID: dto.LoanID, Version: approved.Version})
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if active.Status != loanDomain.StatusActive || active.ActivatedAt == nil {
		t.Errorf("active dto: %+v", active)
	}
	if got := f.assetStatus(t); got != assetDomain.StatusSold {
		t.Errorf("asset status=%s want sold", got)
	}

	_, err = f.uc.Complete(ctx, TransitionInput{ActorID: f.actor, LoanID: dto.LoanID, Version: active.Version})
	if !errors.Is(err, loanDomain.ErrIncompleteSchedule) {
		t.Fatalf("complete with unpaid entries: %v", err)
	}

	// Settle every installment out of band, then complete.
	now := time.Now().UTC()
	if err := f.db.Model(&loanDomain.ScheduleEntry{}).
		Where("1 = 1").
		Updates(map[string]any{"status": loanDomain.EntryPaid, "paid_date": now}).Error; err != nil {
		t.Fatalf("settle entries: %v", err)
	}

	done, err := f.uc.Complete(ctx, TransitionInput{ActorID: f.actor, LoanID: dto.LoanID, Version: active.Version})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if done.Status != loanDomain.StatusCompleted || done.CompletedAt == nil {
		t.Errorf("completed dto: %+v", done)
	}
}
