package handlers

import (
	"net/http"

	"casaops/internal/common"
	"casaops/internal/models"
	"casaops/internal/services"

	"github.com/labstack/echo/v4"
)

// DocumentHandlers handles HTTP requests for documents
type DocumentHandlers struct {
	documentService services.DocumentServiceInterface
}

// NewDocumentHandlers creates a new document handlers instance
func NewDocumentHandlers(documentService services.DocumentServiceInterface) *DocumentHandlers {
	return &DocumentHandlers{documentService: documentService}
}

// UploadDocument handles POST /documents (multipart form)
// Form fields: entity_type, entity_id, file.
func (h *DocumentHandlers) UploadDocument(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	entityID, err := common.ValidateUUID(c.FormValue("entity_id"), "entity_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return common.SendClientError(c, "file is required")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return common.SendServerError(c, "Failed to read uploaded file")
	}
	defer src.Close()

	doc := &models.Document{
		TenantID:    tenantID,
		EntityType:  c.FormValue("entity_type"),
		EntityID:    entityID,
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
	}
	if userID, ok := common.GetUserIDFromContext(ctx); ok {
		doc.UploadedBy = &userID
	}

	if err := h.documentService.UploadDocument(ctx, doc, src, fileHeader.Size); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusCreated, doc)
}

// GetDownloadURL handles GET /documents/:id/download
func (h *DocumentHandlers) GetDownloadURL(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	documentID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	url, err := h.documentService.GetDownloadURL(ctx, tenantID, documentID)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"download_url": url})
}

// ListDocuments handles GET /documents?entity_type=...&entity_id=...
func (h *DocumentHandlers) ListDocuments(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	entityID, err := common.ValidateUUID(c.QueryParam("entity_id"), "entity_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	documents, err := h.documentService.ListDocumentsByEntity(ctx, tenantID, c.QueryParam("entity_type"), entityID)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, documents)
}

// DeleteDocument handles DELETE /documents/:id
func (h *DocumentHandlers) DeleteDocument(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	documentID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.documentService.DeleteDocument(ctx, tenantID, documentID); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
