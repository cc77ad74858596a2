package http

import (
	"bytes"
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"motofin-ledger/internal/adapter/repository/mysql"
	assetDomain "motofin-ledger/internal/domain/asset"
	"motofin-ledger/internal/domain/authz"
	"motofin-ledger/internal/domain/financing"
	riskDomain "motofin-ledger/internal/domain/risk"
	"motofin-ledger/internal/testutil/dbtest"
	uc "motofin-ledger/internal/usecase/loan"
	"motofin-ledger/pkg/id"
)

// -------- helpers --------

func newEchoWithValidator() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func mustJSON(v any) *bytes.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

type handlerFixture struct {
	e     *echo.Echo
	h     *LoanHandler
	actor string
	term  *financing.Term
	asset *assetDomain.Asset
}

func newHandlerFixture(t *testing.T) *handlerFixture {
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

	usecase := uc.NewUsecase(mysql.NewGormUoW(db), authz.AllowAll{}, riskDomain.DefaultParams())
	return &handlerFixture{
		e:     newEchoWithValidator(),
		h:     NewLoanHandler(usecase),
		actor: id.NewID32(),
		term:  term,
		asset: a,
	}
}

func (f *handlerFixture) submitBody() map[string]any {
	return map[string]any{
		"applicant_first_name": "Dewi",
		"applicant_last_name":  "Santoso",
		"applicant_email":      "dewi@example.com",
		"employment_status":    "employed",
		"monthly_income":       5000,
		"credit_score":         650,
		"asset_id":             f.asset.ID,
		"financing_term_id":    f.term.ID,
		"loan_amount":          95000,
		"down_payment":         10000,
	}
}

func (f *handlerFixture) post(t *testing.T, path string, body any, withActor bool) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	req := httptest.NewRequest(stdhttp.MethodPost, path, mustJSON(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if withActor {
		req.Header.Set("Ax-Actor-Id", f.actor)
	}
	rec := httptest.NewRecorder()
	return rec, f.e.NewContext(req, rec)
}

// -------- tests --------

func TestSubmitLoan_Success(t *testing.T) {
	f := newHandlerFixture(t)

	rec, c := f.post(t, "/loans", f.submitBody(), true)
	if err := f.h.Submit(c); err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body)
	}

	var got uc.LoanDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if len(got.LoanID) != 32 || got.Status != "pending" {
		t.Fatalf("unexpected dto: %+v", got)
	}
	if got.Principal != 85000 || got.TotalAmount != 95200.00 {
		t.Fatalf("money fields: principal=%v total=%v", got.Principal, got.TotalAmount)
	}
}

func TestSubmitLoan_MissingActor(t *testing.T) {
	f := newHandlerFixture(t)

	rec, c := f.post(t, "/loans", f.submitBody(), false)
	if err := f.h.Submit(c); err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSubmitLoan_ValidationDetails(t *testing.T) {
	f := newHandlerFixture(t)

	body := f.submitBody()
	body["employment_status"] = "retired"
	body["credit_score"] = 200

	rec, c := f.post(t, "/loans", body, true)
	if err := f.h.Submit(c); err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422: %s", rec.Code, rec.Body)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if len(resp.Details) != 2 {
		t.Fatalf("details = %+v, want 2 field errors", resp.Details)
	}
}

func TestGetLoan_NotFound(t *testing.T) {
	f := newHandlerFixture(t)

	req := httptest.NewRequest(stdhttp.MethodGet, "/loans/"+id.NewID32(), nil)
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	c.SetParamNames("loan_id")
	c.SetParamValues(id.NewID32())

	if err := f.h.Get(c); err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestGetLoan_RejectsMalformedID(t *testing.T) {
	f := newHandlerFixture(t)

	req := httptest.NewRequest(stdhttp.MethodGet, "/loans/xyz", nil)
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	c.SetParamNames("loan_id")
	c.SetParamValues("xyz")

	if err := f.h.Get(c); err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestApproveLoan_VersionConflict(t *testing.T) {
	f := newHandlerFixture(t)

	rec, c := f.post(t, "/loans", f.submitBody(), true)
	if err := f.h.Submit(c); err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	var created uc.LoanDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("bad json: %v", err)
	}

	// Submit left the loan at version 2; a stale version must 409.
	rec, c = f.post(t, "/loans/"+created.LoanID+"/approve", map[string]any{"version": 1}, true)
	c.SetParamNames("loan_id")
	c.SetParamValues(created.LoanID)
	if err := f.h.Approve(c); err != nil {
		t.Fatalf("Approve error: %v", err)
	}
	if rec.Code != stdhttp.StatusConflict {
		t.Fatalf("status = %d, want 409: %s", rec.Code, rec.Body)
	}
	var conflict map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &conflict); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if conflict["expected_version"] != float64(1) || conflict["actual_version"] != float64(2) {
		t.Fatalf("conflict payload: %+v", conflict)
	}

	// The fresh version goes through.
	rec, c = f.post(t, "/loans/"+created.LoanID+"/approve", map[string]any{"version": 2}, true)
	c.SetParamNames("loan_id")
	c.SetParamValues(created.LoanID)
	if err := f.h.Approve(c); err != nil {
		t.Fatalf("Approve error: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	var approved uc.LoanDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &approved); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if approved.Status != "approved" || approved.Version != 3 {
		t.Fatalf("approved dto: %+v", approved)
	}
}

func TestHealth(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(stdhttp.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	if err := NewHandler().Health(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Health error: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("body: %s", rec.Body)
	}
}
