package services

import (
	"context"
	"fmt"
	"time"

	"casaops/internal/common"
	"casaops/internal/models"
	"casaops/internal/repositories"

	"github.com/google/uuid"
)

// NoteServiceInterface defines the interface for note service
type NoteServiceInterface interface {
	CreateNote(ctx context.Context, note *models.Note) error
	GetNoteByID(ctx context.Context, tenantID, noteID uuid.UUID) (*models.Note, error)
	ListNotesByEntity(ctx context.Context, tenantID uuid.UUID, entityType string, entityID uuid.UUID, limit, offset int) ([]*models.Note, error)
	UpdateNote(ctx context.Context, note *models.Note) error
	DeleteNote(ctx context.Context, tenantID, noteID uuid.UUID) error
}

type noteService struct {
	noteRepo repositories.NoteRepository
}

// NewNoteService creates a new note service
func NewNoteService(noteRepo repositories.NoteRepository) NoteServiceInterface {
	return &noteService{noteRepo: noteRepo}
}

func (s *noteService) validateNote(note *models.Note) error {
	if err := common.ValidateEntityType(note.EntityType); err != nil {
		return err
	}
	if note.EntityID == uuid.Nil {
		return fmt.Errorf("entity_id is required")
	}
	if err := common.ValidateRequiredString(note.Body, "body"); err != nil {
		return err
	}
	note.Body = common.SanitizeHTMLElement(note.Body)
	return nil
}

// CreateNote attaches a note to an entity
func (s *noteService) CreateNote(ctx context.Context, note *models.Note) error {
	if err := s.validateNote(note); err != nil {
		return err
	}

	now := time.Now()
	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	note.CreatedAt = now
	note.UpdatedAt = now

	if err := s.noteRepo.Create(ctx, note); err != nil {
		return common.SecureErrorMessage("create note", err)
	}
	return nil
}

// GetNoteByID retrieves a note by ID
func (s *noteService) GetNoteByID(ctx context.Context, tenantID, noteID uuid.UUID) (*models.Note, error) {
	return s.noteRepo.GetByID(ctx, tenantID, noteID)
}

// ListNotesByEntity retrieves the notes attached to an entity
func (s *noteService) ListNotesByEntity(ctx context.Context, tenantID uuid.UUID, entityType string, entityID uuid.UUID, limit, offset int) ([]*models.Note, error) {
	if err := common.ValidateEntityType(entityType); err != nil {
		return nil, err
	}
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return nil, err
	}
	return s.noteRepo.ListByEntity(ctx, tenantID, entityType, entityID, limit, offset)
}

// UpdateNote updates a note's body
func (s *noteService) UpdateNote(ctx context.Context, note *models.Note) error {
	if err := s.validateNote(note); err != nil {
		return err
	}
	note.UpdatedAt = time.Now()
	return s.noteRepo.Update(ctx, note)
}

// DeleteNote removes a note
func (s *noteService) DeleteNote(ctx context.Context, tenantID, noteID uuid.UUID) error {
	return s.noteRepo.Delete(ctx, tenantID, noteID)
}
