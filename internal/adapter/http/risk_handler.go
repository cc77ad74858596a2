package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"motofin-ledger/internal/usecase/risk"
)

type RiskHandler struct{ uc *risk.Usecase }

func NewRiskHandler(uc *risk.Usecase) *RiskHandler { return &RiskHandler{uc: uc} }

func (h *RiskHandler) Recompute(c echo.Context) error {
	actor, ok := actorID(c)
	if !ok {
		return respondMissingActor(c)
	}
	loanID := c.Param("loan_id")
	if !reHex32.MatchString(loanID) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan_id path param"})
	}
	dto, err := h.uc.Recompute(c.Request().Context(), actor, loanID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
