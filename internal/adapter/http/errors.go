package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	archiveDomain "motofin-ledger/internal/domain/archive"
	assetDomain "motofin-ledger/internal/domain/asset"
	"motofin-ledger/internal/domain/authz"
	financingDomain "motofin-ledger/internal/domain/financing"
	loanDomain "motofin-ledger/internal/domain/loan"
	"motofin-ledger/internal/domain/store"
)

// respondError maps domain error kinds to HTTP codes. Concurrency conflicts
// surface as 409 with the expected/actual versions so the client can re-read
// and retry.
func respondError(c echo.Context, err error) error {
	var ve *loanDomain.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation failed",
			Details: []FieldError{{Field: ve.Field, Message: ve.Message}},
		})
	}

	var conflict *store.ConflictError
	if errors.As(err, &conflict) {
		return c.JSON(http.StatusConflict, map[string]any{
			"error":            "version conflict",
			"entity":           conflict.Entity,
			"expected_version": conflict.Expected,
			"actual_version":   conflict.Actual,
		})
	}

	switch {
	case errors.Is(err, loanDomain.ErrNotFound),
		errors.Is(err, loanDomain.ErrEntryNotFound),
		errors.Is(err, assetDomain.ErrNotFound),
		errors.Is(err, financingDomain.ErrNotFound),
		errors.Is(err, archiveDomain.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})

	case errors.Is(err, authz.ErrForbidden):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})

	case errors.Is(err, archiveDomain.ErrAlreadyRestored):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})

	case errors.Is(err, archiveDomain.ErrUnknownModule):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})

	case errors.Is(err, loanDomain.ErrInvalidTransition),
		errors.Is(err, loanDomain.ErrIncompleteSchedule),
		errors.Is(err, loanDomain.ErrAlreadyPaid),
		errors.Is(err, loanDomain.ErrAmountMismatch),
		errors.Is(err, assetDomain.ErrUnavailable):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
