package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	archiveDomain "motofin-ledger/internal/domain/archive"
	"motofin-ledger/internal/usecase/archive"
)

type ArchiveHandler struct{ uc *archive.Usecase }

func NewArchiveHandler(uc *archive.Usecase) *ArchiveHandler { return &ArchiveHandler{uc: uc} }

type archiveReq struct {
	Module   string `json:"module"    validate:"required,oneof=loans assets"`
	RecordID uint64 `json:"record_id" validate:"required"`
	Reason   string `json:"reason"`
}

func (h *ArchiveHandler) Archive(c echo.Context) error {
	actor, ok := actorID(c)
	if !ok {
		return respondMissingActor(c)
	}
	var req archiveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}

	dto, err := h.uc.Archive(c.Request().Context(), archive.ArchiveInput{
		ActorID:  actor,
		Module:   archiveDomain.Module(req.Module),
		RecordID: req.RecordID,
		Reason:   req.Reason,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *ArchiveHandler) Restore(c echo.Context) error {
	actor, ok := actorID(c)
	if !ok {
		return respondMissingActor(c)
	}
	archiveID, err := strconv.ParseUint(c.Param("archive_id"), 10, 64)
	if err != nil || archiveID == 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid archive_id path param"})
	}
	dto, err := h.uc.Restore(c.Request().Context(), actor, archiveID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ArchiveHandler) List(c echo.Context) error {
	entries, err := h.uc.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"entries": entries})
}
