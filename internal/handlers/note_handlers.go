package handlers

import (
	"net/http"

	"casaops/internal/common"
	"casaops/internal/models"
	"casaops/internal/services"

	"github.com/labstack/echo/v4"
)

// NoteHandlers handles HTTP requests for notes
type NoteHandlers struct {
	noteService services.NoteServiceInterface
}

// NewNoteHandlers creates a new note handlers instance
func NewNoteHandlers(noteService services.NoteServiceInterface) *NoteHandlers {
	return &NoteHandlers{noteService: noteService}
}

// CreateNote handles POST /notes
func (h *NoteHandlers) CreateNote(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		EntityType string `json:"entity_type"`
		EntityID   string `json:"entity_id"`
		Body       string `json:"body"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	entityID, err := common.ValidateUUID(req.EntityID, "entity_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	note := &models.Note{
		TenantID:   tenantID,
		EntityType: req.EntityType,
		EntityID:   entityID,
		Body:       req.Body,
	}
	if userID, ok := common.GetUserIDFromContext(ctx); ok {
		note.AuthorID = &userID
	}

	if err := h.noteService.CreateNote(ctx, note); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusCreated, note)
}

// ListNotes handles GET /notes?entity_type=...&entity_id=...
func (h *NoteHandlers) ListNotes(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	entityID, err := common.ValidateUUID(c.QueryParam("entity_id"), "entity_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	limit, offset := parsePagination(c)
	notes, err := h.noteService.ListNotesByEntity(ctx, tenantID, c.QueryParam("entity_type"), entityID, limit, offset)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, notes)
}

// UpdateNote handles PUT /notes/:id
func (h *NoteHandlers) UpdateNote(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	noteID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	existing, err := h.noteService.GetNoteByID(ctx, tenantID, noteID)
	if err != nil {
		return common.SendServerError(c, "Failed to retrieve note")
	}
	if existing == nil {
		return common.SendNotFoundError(c, "note")
	}

	var req struct {
		Body string `json:"body"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	existing.Body = req.Body
	if err := h.noteService.UpdateNote(ctx, existing); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, existing)
}

// DeleteNote handles DELETE /notes/:id
func (h *NoteHandlers) DeleteNote(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	noteID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.noteService.DeleteNote(ctx, tenantID, noteID); err != nil {
		return common.SendServerError(c, "Failed to delete note")
	}
	return c.NoContent(http.StatusNoContent)
}
