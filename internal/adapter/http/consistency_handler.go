package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"motofin-ledger/internal/usecase/consistency"
	"motofin-ledger/internal/usecase/monitor"
)

type ConsistencyHandler struct {
	checker *consistency.Checker
	monitor *monitor.Monitor
}

func NewConsistencyHandler(checker *consistency.Checker, mon *monitor.Monitor) *ConsistencyHandler {
	return &ConsistencyHandler{checker: checker, monitor: mon}
}

func (h *ConsistencyHandler) CheckAll(c echo.Context) error {
	report, err := h.checker.CheckAll(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

func (h *ConsistencyHandler) CheckLoan(c echo.Context) error {
	loanID := c.Param("loan_id")
	if !reHex32.MatchString(loanID) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan_id path param"})
	}
	report, err := h.checker.CheckLoan(c.Request().Context(), loanID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

func (h *ConsistencyHandler) RaceFlags(c echo.Context) error {
	flags, err := h.monitor.Flags(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"flags": flags})
}
