package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/straye-as/presales-api/internal/auth"
	"github.com/straye-as/presales-api/internal/domain"
	"github.com/straye-as/presales-api/internal/mapper"
	"github.com/straye-as/presales-api/internal/repository"
	"github.com/straye-as/presales-api/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultDocumentListLimit = 100

// DocumentService stores the source documents a proposal is generated from
type DocumentService struct {
	documentRepo *repository.DocumentRepository
	storage      storage.Storage
	maxBytes     int64
	logger       *zap.Logger
}

// NewDocumentService creates a new document service.
// A non-positive maxBytes selects storage.DefaultMaxDocumentBytes.
func NewDocumentService(documentRepo *repository.DocumentRepository, store storage.Storage, maxBytes int64, logger *zap.Logger) *DocumentService {
	if maxBytes <= 0 {
		maxBytes = storage.DefaultMaxDocumentBytes
	}
	return &DocumentService{
		documentRepo: documentRepo,
		storage:      store,
		maxBytes:     maxBytes,
		logger:       logger,
	}
}

// Upload stores a document. The content type is sniffed from the content, not trusted from the client.
func (s *DocumentService) Upload(ctx context.Context, filename string, data io.Reader) (*domain.DocumentDTO, error) {
	filename = path.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	if filename == "" || filename == "." || filename == "/" {
		return nil, domain.NewValidationError("file", "filename is required")
	}

	content, err := io.ReadAll(io.LimitReader(data, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(content) == 0 {
		return nil, domain.NewValidationError("file", "file is empty")
	}
	if int64(len(content)) > s.maxBytes {
		return nil, domain.NewValidationError("file", fmt.Sprintf("file exceeds %d bytes", s.maxBytes))
	}

	contentType := storage.DetectMimeType(content)
	storagePath, size, err := s.storage.Upload(ctx, storage.FolderDocuments, filename, contentType, bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	doc := &domain.Document{
		Filename:    filename,
		ContentType: contentType,
		Size:        size,
		StoragePath: storagePath,
		UploadedBy:  auth.ActorFromContext(ctx),
	}
	if err := s.documentRepo.Create(ctx, doc); err != nil {
		if delErr := s.storage.Delete(ctx, storagePath); delErr != nil {
			s.logger.Warn("failed to clean up stored document", zap.String("path", storagePath), zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	s.logger.Info("document uploaded",
		zap.String("document_id", doc.ID.String()),
		zap.String("filename", filename),
		zap.String("content_type", contentType),
		zap.Int64("size", size),
	)

	dto := mapper.ToDocumentDTO(doc)
	return &dto, nil
}

// VerifyPaths checks that every path names an uploaded document
func (s *DocumentService) VerifyPaths(ctx context.Context, paths []string) error {
	unique := make(map[string]bool, len(paths))
	for _, p := range paths {
		unique[p] = true
	}
	list := make([]string, 0, len(unique))
	for p := range unique {
		list = append(list, p)
	}

	count, err := s.documentRepo.CountByPaths(ctx, list)
	if err != nil {
		return fmt.Errorf("failed to check documents: %w", err)
	}
	if count != int64(len(list)) {
		return domain.NewValidationError("documentPaths", "one or more documents were not uploaded")
	}
	return nil
}

// Get returns one uploaded document
func (s *DocumentService) Get(ctx context.Context, id uuid.UUID) (*domain.DocumentDTO, error) {
	doc, err := s.documentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	dto := mapper.ToDocumentDTO(doc)
	return &dto, nil
}

// List returns the most recent uploads
func (s *DocumentService) List(ctx context.Context) ([]domain.DocumentDTO, error) {
	docs, err := s.documentRepo.List(ctx, defaultDocumentListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	dtos := make([]domain.DocumentDTO, len(docs))
	for i := range docs {
		dtos[i] = mapper.ToDocumentDTO(&docs[i])
	}
	return dtos, nil
}

// Delete removes the document row and the stored file
func (s *DocumentService) Delete(ctx context.Context, id uuid.UUID) error {
	doc, err := s.documentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDocumentNotFound
		}
		return fmt.Errorf("failed to get document: %w", err)
	}

	if err := s.storage.Delete(ctx, doc.StoragePath); err != nil {
		return fmt.Errorf("failed to delete stored document: %w", err)
	}
	if err := s.documentRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	s.logger.Info("document deleted", zap.String("document_id", id.String()))
	return nil
}
