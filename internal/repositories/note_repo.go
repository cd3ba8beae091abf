package repositories

import (
	"context"

	"casaops/internal/models"

	"github.com/google/uuid"
)

type NoteRepository interface {
	Create(ctx context.Context, note *models.Note) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Note, error)
	Update(ctx context.Context, note *models.Note) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	ListByEntity(ctx context.Context, tenantID uuid.UUID, entityType string, entityID uuid.UUID, limit, offset int) ([]*models.Note, error)
}

type noteRepo struct {
	db Database
}

func NewNoteRepository(db Database) NoteRepository {
	return &noteRepo{db: db}
}

func (r *noteRepo) Create(ctx context.Context, note *models.Note) error {
	query := `
		INSERT INTO notes (id, tenant_id, entity_type, entity_id, body, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, note.ID, note.TenantID, note.EntityType, note.EntityID, note.Body, note.AuthorID)
	return err
}

func (r *noteRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Note, error) {
	note := &models.Note{}
	query := `
		SELECT id, tenant_id, entity_type, entity_id, body, author_id, created_at, updated_at
		FROM notes
		WHERE tenant_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&note.ID, &note.TenantID, &note.EntityType, &note.EntityID, &note.Body, &note.AuthorID, &note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return note, nil
}

func (r *noteRepo) Update(ctx context.Context, note *models.Note) error {
	query := `
		UPDATE notes
		SET body = $1, updated_at = NOW()
		WHERE tenant_id = $2 AND id = $3
	`
	_, err := r.db.Exec(ctx, query, note.Body, note.TenantID, note.ID)
	return err
}

func (r *noteRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM notes WHERE tenant_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, tenantID, id)
	return err
}

func (r *noteRepo) ListByEntity(ctx context.Context, tenantID uuid.UUID, entityType string, entityID uuid.UUID, limit, offset int) ([]*models.Note, error) {
	query := `
		SELECT id, tenant_id, entity_type, entity_id, body, author_id, created_at, updated_at
		FROM notes
		WHERE tenant_id = $1 AND entity_type = $2 AND entity_id = $3
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5
	`
	rows, err := r.db.Query(ctx, query, tenantID, entityType, entityID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []*models.Note
	for rows.Next() {
		note := &models.Note{}
		if err := rows.Scan(&note.ID, &note.TenantID, &note.EntityType, &note.EntityID, &note.Body, &note.AuthorID, &note.CreatedAt, &note.UpdatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, nil
}
