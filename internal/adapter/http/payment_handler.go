package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"motofin-ledger/internal/usecase/payment"
)

type PaymentHandler struct{ uc *payment.Usecase }

func NewPaymentHandler(uc *payment.Usecase) *PaymentHandler { return &PaymentHandler{uc: uc} }

type recordPaymentReq struct {
	Amount   float64 `json:"amount"    validate:"gt=0,dec2"`
	Version  uint64  `json:"version"   validate:"required,gte=1"`
	PaidDate string  `json:"paid_date" validate:"omitempty,datetime=2006-01-02"`
}

func (h *PaymentHandler) Record(c echo.Context) error {
	actor, ok := actorID(c)
	if !ok {
		return respondMissingActor(c)
	}
	entryID, err := strconv.ParseUint(c.Param("entry_id"), 10, 64)
	if err != nil || entryID == 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid entry_id path param"})
	}
	var req recordPaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}

	in := payment.RecordInput{
		ActorID: actor,
		EntryID: entryID,
		Amount:  req.Amount,
		Version: req.Version,
	}
	if req.PaidDate != "" {
		t, _ := time.Parse("2006-01-02", req.PaidDate)
		in.PaidDate = &t
	}

	dto, err := h.uc.Record(c.Request().Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type overdueSweepReq struct {
	AsOf string `json:"as_of" validate:"omitempty,datetime=2006-01-02"`
}

// OverdueSweep flags every pending installment past its due date. Invoked by
// the ops scheduler, typically daily.
func (h *PaymentHandler) OverdueSweep(c echo.Context) error {
	actor, ok := actorID(c)
	if !ok {
		return respondMissingActor(c)
	}
	var req overdueSweepReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}

	asOf := time.Now().UTC()
	if req.AsOf != "" {
		asOf, _ = time.Parse("2006-01-02", req.AsOf)
	}

	count, err := h.uc.MarkOverdue(c.Request().Context(), actor, asOf)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"flagged": count})
}
