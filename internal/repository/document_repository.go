package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/straye-as/presales-api/internal/domain"
	"gorm.io/gorm"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.WithContext(ctx).First(&doc, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// CountByPaths returns how many of the storage paths belong to uploaded documents
func (r *DocumentRepository) CountByPaths(ctx context.Context, paths []string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Document{}).
		Where("storage_path IN ?", paths).
		Count(&count).Error
	return count, err
}

// List returns the most recent uploads first
func (r *DocumentRepository) List(ctx context.Context, limit int) ([]domain.Document, error) {
	var docs []domain.Document
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&docs).Error
	return docs, err
}

func (r *DocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Document{}, "id = ?", id).Error
}
