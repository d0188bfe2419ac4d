package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/straye-as/presales-api/internal/domain"
	"gorm.io/gorm"
)

type ProfessionalRepository struct {
	db *gorm.DB
}

func NewProfessionalRepository(db *gorm.DB) *ProfessionalRepository {
	return &ProfessionalRepository{db: db}
}

// Create inserts every column so an explicit Active=false is not replaced by the column default
func (r *ProfessionalRepository) Create(ctx context.Context, professional *domain.Professional) error {
	return r.db.WithContext(ctx).Select("*").Create(professional).Error
}

func (r *ProfessionalRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Professional, error) {
	var professional domain.Professional
	err := r.db.WithContext(ctx).First(&professional, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &professional, nil
}

// GetByIDs returns the professionals in the order of ids; unknown ids are skipped
func (r *ProfessionalRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Professional, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []domain.Professional
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]domain.Professional, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	ordered := make([]domain.Professional, 0, len(found))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok && !seen[id] {
			ordered = append(ordered, p)
			seen[id] = true
		}
	}
	return ordered, nil
}

func (r *ProfessionalRepository) Update(ctx context.Context, professional *domain.Professional) error {
	return r.db.WithContext(ctx).Save(professional).Error
}

func (r *ProfessionalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Professional{}, "id = ?", id).Error
}

// IsReferenced reports whether any proposal resource points at the professional
func (r *ProfessionalRepository) IsReferenced(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.ProposalResource{}).
		Where("professional_id = ?", id).
		Count(&count).Error
	return count > 0, err
}

// List returns the catalog ordered by role then name
func (r *ProfessionalRepository) List(ctx context.Context, activeOnly bool) ([]domain.Professional, error) {
	var professionals []domain.Professional
	query := r.db.WithContext(ctx).Model(&domain.Professional{})
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	err := query.Order("role ASC, name ASC").Find(&professionals).Error
	return professionals, err
}
