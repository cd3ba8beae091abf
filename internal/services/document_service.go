package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"casaops/internal/common"
	"casaops/internal/models"
	"casaops/internal/repositories"

	"github.com/google/uuid"
)

// DocumentServiceInterface defines the interface for document service
type DocumentServiceInterface interface {
	UploadDocument(ctx context.Context, doc *models.Document, reader io.Reader, size int64) error
	GetDocumentByID(ctx context.Context, tenantID, documentID uuid.UUID) (*models.Document, error)
	GetDownloadURL(ctx context.Context, tenantID, documentID uuid.UUID) (string, error)
	ListDocumentsByEntity(ctx context.Context, tenantID uuid.UUID, entityType string, entityID uuid.UUID) ([]*models.Document, error)
	DeleteDocument(ctx context.Context, tenantID, documentID uuid.UUID) error
}

type documentService struct {
	documentRepo repositories.DocumentRepository
	storage      StorageService
	bucketName   string
}

// NewDocumentService creates a new document service
func NewDocumentService(documentRepo repositories.DocumentRepository, storage StorageService, bucketName string) DocumentServiceInterface {
	return &documentService{
		documentRepo: documentRepo,
		storage:      storage,
		bucketName:   bucketName,
	}
}

// UploadDocument streams the file to object storage and records its
// metadata. The object key is namespaced by tenant and entity.
func (s *documentService) UploadDocument(ctx context.Context, doc *models.Document, reader io.Reader, size int64) error {
	if err := common.ValidateEntityType(doc.EntityType); err != nil {
		return err
	}
	if err := common.ValidateRequiredString(doc.FileName, "file_name"); err != nil {
		return err
	}
	if size <= 0 {
		return fmt.Errorf("file is empty")
	}

	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	doc.ObjectKey = fmt.Sprintf("%s/%s/%s/%s_%s", doc.TenantID, doc.EntityType, doc.EntityID, doc.ID, doc.FileName)
	doc.SizeBytes = size
	doc.CreatedAt = time.Now()

	if err := s.storage.UploadObject(ctx, s.bucketName, doc.ObjectKey, reader, size, doc.ContentType); err != nil {
		return common.SecureErrorMessage("upload document", err)
	}

	if err := s.documentRepo.Create(ctx, doc); err != nil {
		// Best-effort cleanup; keys are unique per document ID so a
		// leaked object cannot collide with a later upload.
		if delErr := s.storage.DeleteObject(ctx, s.bucketName, doc.ObjectKey); delErr != nil {
			log.Printf("Failed to clean up orphaned object %s: %v", doc.ObjectKey, delErr)
		}
		return common.SecureErrorMessage("record document metadata", err)
	}
	return nil
}

// GetDocumentByID retrieves document metadata
func (s *documentService) GetDocumentByID(ctx context.Context, tenantID, documentID uuid.UUID) (*models.Document, error) {
	return s.documentRepo.GetByID(ctx, tenantID, documentID)
}

// GetDownloadURL returns a short-lived presigned URL for the document
func (s *documentService) GetDownloadURL(ctx context.Context, tenantID, documentID uuid.UUID) (string, error) {
	doc, err := s.documentRepo.GetByID(ctx, tenantID, documentID)
	if err != nil {
		return "", common.SecureErrorMessage("retrieve document", err)
	}
	if doc == nil {
		return "", fmt.Errorf("document not found")
	}
	return s.storage.GetPresignedURL(ctx, s.bucketName, doc.ObjectKey, 15*time.Minute)
}

// ListDocumentsByEntity retrieves document metadata attached to an entity
func (s *documentService) ListDocumentsByEntity(ctx context.Context, tenantID uuid.UUID, entityType string, entityID uuid.UUID) ([]*models.Document, error) {
	if err := common.ValidateEntityType(entityType); err != nil {
		return nil, err
	}
	return s.documentRepo.ListByEntity(ctx, tenantID, entityType, entityID)
}

// DeleteDocument removes the stored object and its metadata
func (s *documentService) DeleteDocument(ctx context.Context, tenantID, documentID uuid.UUID) error {
	doc, err := s.documentRepo.GetByID(ctx, tenantID, documentID)
	if err != nil {
		return common.SecureErrorMessage("retrieve document for deletion", err)
	}
	if doc == nil {
		return fmt.Errorf("document not found")
	}

	if err := s.storage.DeleteObject(ctx, s.bucketName, doc.ObjectKey); err != nil {
		return common.SecureErrorMessage("delete stored object", err)
	}
	return s.documentRepo.Delete(ctx, tenantID, documentID)
}
