package repositories

import (
	"context"

	"casaops/internal/models"

	"github.com/google/uuid"
)

type DocumentRepository interface {
	Create(ctx context.Context, document *models.Document) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Document, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	ListByEntity(ctx context.Context, tenantID uuid.UUID, entityType string, entityID uuid.UUID) ([]*models.Document, error)
}

type documentRepo struct {
	db Database
}

func NewDocumentRepository(db Database) DocumentRepository {
	return &documentRepo{db: db}
}

const documentColumns = `id, tenant_id, entity_type, entity_id, file_name, object_key, content_type, size_bytes, uploaded_by, created_at`

func (r *documentRepo) Create(ctx context.Context, document *models.Document) error {
	query := `
		INSERT INTO documents (id, tenant_id, entity_type, entity_id, file_name, object_key, content_type, size_bytes, uploaded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
	`
	_, err := r.db.Exec(ctx, query, document.ID, document.TenantID, document.EntityType, document.EntityID, document.FileName, document.ObjectKey, document.ContentType, document.SizeBytes, document.UploadedBy)
	return err
}

func (r *documentRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Document, error) {
	document := &models.Document{}
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE tenant_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&document.ID, &document.TenantID, &document.EntityType, &document.EntityID, &document.FileName, &document.ObjectKey, &document.ContentType, &document.SizeBytes, &document.UploadedBy, &document.CreatedAt)
	if err != nil {
		return nil, err
	}
	return document, nil
}

func (r *documentRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM documents WHERE tenant_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, tenantID, id)
	return err
}

func (r *documentRepo) ListByEntity(ctx context.Context, tenantID uuid.UUID, entityType string, entityID uuid.UUID) ([]*models.Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE tenant_id = $1 AND entity_type = $2 AND entity_id = $3
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, tenantID, entityType, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var documents []*models.Document
	for rows.Next() {
		document := &models.Document{}
		if err := rows.Scan(&document.ID, &document.TenantID, &document.EntityType, &document.EntityID, &document.FileName, &document.ObjectKey, &document.ContentType, &document.SizeBytes, &document.UploadedBy, &document.CreatedAt); err != nil {
			return nil, err
		}
		documents = append(documents, document)
	}
	return documents, nil
}
