package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"motofin-ledger/internal/usecase/loan"
)

type LoanHandler struct{ uc *loan.Usecase }

func NewLoanHandler(uc *loan.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type submitLoanReq struct {
	ApplicantFirstName string  `json:"applicant_first_name" validate:"required"`
	ApplicantLastName  string  `json:"applicant_last_name"  validate:"required"`
	ApplicantEmail     string  `json:"applicant_email"      validate:"required,email"`
	ApplicantPhone     string  `json:"applicant_phone"`
	EmploymentStatus   string  `json:"employment_status"    validate:"required,oneof=employed self_employed unemployed"`
	MonthlyIncome      float64 `json:"monthly_income"       validate:"gte=0,dec2"`
	CreditScore        int     `json:"credit_score"         validate:"gte=300,lte=850"`
	AssetID            uint64  `json:"asset_id"             validate:"required"`
	FinancingTermID    uint64  `json:"financing_term_id"    validate:"required"`
	LoanAmount         float64 `json:"loan_amount"          validate:"gt=0,dec2"`
	DownPayment        float64 `json:"down_payment"         validate:"gte=0,dec2"`
}

func (h *LoanHandler) Submit(c echo.Context) error {
	actor, ok := actorID(c)
	if !ok {
		return respondMissingActor(c)
	}
	var req submitLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}

	dto, err := h.uc.Submit(c.Request().Context(), loan.SubmitInput{
		ActorID:            actor,
		ApplicantFirstName: req.ApplicantFirstName,
		ApplicantLastName:  req.ApplicantLastName,
		ApplicantEmail:     req.ApplicantEmail,
		ApplicantPhone:     req.ApplicantPhone,
		EmploymentStatus:   req.EmploymentStatus,
		MonthlyIncome:      req.MonthlyIncome,
		CreditScore:        req.CreditScore,
		AssetID:            req.AssetID,
		FinancingTermID:    req.FinancingTermID,
		LoanAmount:         req.LoanAmount,
		DownPayment:        req.DownPayment,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) Get(c echo.Context) error {
	loanID := c.Param("loan_id")
	if !reHex32.MatchString(loanID) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan_id path param"})
	}
	dto, err := h.uc.Get(c.Request().Context(), loanID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Schedule(c echo.Context) error {
	loanID := c.Param("loan_id")
	if !reHex32.MatchString(loanID) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan_id path param"})
	}
	entries, err := h.uc.Schedule(c.Request().Context(), loanID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"entries": entries})
}

// transitionReq carries the caller's last-read version for the CAS guard.
type transitionReq struct {
	Version uint64 `json:"version" validate:"required,gte=1"`
	Reason  string `json:"reason"`
}

type transitionFn func(c echo.Context, in loan.TransitionInput) (*loan.LoanDTO, error)

func (h *LoanHandler) transition(c echo.Context, fn transitionFn) error {
	actor, ok := actorID(c)
	if !ok {
		return respondMissingActor(c)
	}
	loanID := c.Param("loan_id")
	if !reHex32.MatchString(loanID) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan_id path param"})
	}
	var req transitionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}

	dto, err := fn(c, loan.TransitionInput{
		ActorID: actor,
		LoanID:  loanID,
		Version: req.Version,
		Reason:  req.Reason,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Approve(c echo.Context) error {
	return h.transition(c, func(c echo.Context, in loan.TransitionInput) (*loan.LoanDTO, error) {
		return h.uc.Approve(c.Request().Context(), in)
	})
}

func (h *LoanHandler) Reject(c echo.Context) error {
	return h.transition(c, func(c echo.Context, in loan.TransitionInput) (*loan.LoanDTO, error) {
		return h.uc.Reject(c.Request().Context(), in)
	})
}

func (h *LoanHandler) Activate(c echo.Context) error {
	return h.transition(c, func(c echo.Context, in loan.TransitionInput) (*loan.LoanDTO, error) {
		return h.uc.Activate(c.Request().Context(), in)
	})
}

func (h *LoanHandler) Complete(c echo.Context) error {
	return h.transition(c, func(c echo.Context, in loan.TransitionInput) (*loan.LoanDTO, error) {
		return h.uc.Complete(c.Request().Context(), in)
	})
}
