package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/straye-as/presales-api/internal/domain"
	"gorm.io/gorm"
)

// ProposalFilters narrows the proposal list
type ProposalFilters struct {
	Status     *domain.ProposalStatus
	Complexity *domain.Complexity
	ClientName string
	// Search matches client name, project name and description
	Search string
}

type ProposalRepository struct {
	db *gorm.DB
}

func NewProposalRepository(db *gorm.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

// WithTx returns a repository bound to an open transaction
func (r *ProposalRepository) WithTx(tx *gorm.DB) *ProposalRepository {
	return &ProposalRepository{db: tx}
}

// Create inserts the proposal together with its resources
func (r *ProposalRepository) Create(ctx context.Context, proposal *domain.Proposal) error {
	return r.db.WithContext(ctx).Create(proposal).Error
}

func (r *ProposalRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Proposal, error) {
	var proposal domain.Proposal
	err := r.db.WithContext(ctx).
		Preload("Resources", func(db *gorm.DB) *gorm.DB {
			return db.Order("proposal_resources.created_at ASC, proposal_resources.id ASC")
		}).
		Preload("Resources.Professional").
		First(&proposal, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &proposal, nil
}

// Update saves the proposal columns; resources are written separately
func (r *ProposalRepository) Update(ctx context.Context, proposal *domain.Proposal) error {
	return r.db.WithContext(ctx).Omit("Resources").Save(proposal).Error
}

// SaveResource inserts or updates one resource line
func (r *ProposalRepository) SaveResource(ctx context.Context, resource *domain.ProposalResource) error {
	return r.db.WithContext(ctx).Omit("Professional").Save(resource).Error
}

// DeleteResource removes one resource line from a proposal
func (r *ProposalRepository) DeleteResource(ctx context.Context, proposalID, resourceID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("proposal_id = ? AND id = ?", proposalID, resourceID).
		Delete(&domain.ProposalResource{}).Error
}

// Delete removes the proposal, its resources and its metrics
func (r *ProposalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("proposal_id = ?", id).Delete(&domain.ProposalMetrics{}).Error; err != nil {
			return err
		}
		if err := tx.Where("proposal_id = ?", id).Delete(&domain.ProposalResource{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Proposal{}, "id = ?", id).Error
	})
}

func (r *ProposalRepository) List(ctx context.Context, page, pageSize int, filters ProposalFilters) ([]domain.Proposal, int64, error) {
	var proposals []domain.Proposal
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Proposal{})

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Complexity != nil {
		query = query.Where("complexity = ?", *filters.Complexity)
	}
	if filters.ClientName != "" {
		query = query.Where("LOWER(client_name) LIKE ?", likePattern(filters.ClientName))
	}
	if filters.Search != "" {
		pattern := likePattern(filters.Search)
		query = query.Where("LOWER(client_name) LIKE ? OR LOWER(project_name) LIKE ? OR LOWER(description) LIKE ?",
			pattern, pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Resources").
		Offset(offset).Limit(pageSize).
		Order("created_at DESC").
		Find(&proposals).Error

	return proposals, total, err
}

// FindSimilar returns approved proposals the estimator changed, with the given complexity.
// When keywords are given the description must contain at least one of them.
func (r *ProposalRepository) FindSimilar(ctx context.Context, complexity domain.Complexity, keywords []string, limit int) ([]domain.Proposal, error) {
	var proposals []domain.Proposal

	query := r.db.WithContext(ctx).Model(&domain.Proposal{}).
		Where("status IN ?", []domain.ProposalStatus{domain.ProposalStatusApproved, domain.ProposalStatusExcelGenerated}).
		Where("was_modified = ?", true).
		Where("complexity = ?", complexity)

	var clauses []string
	var args []interface{}
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		clauses = append(clauses, "LOWER(description) LIKE ?")
		args = append(args, likePattern(kw))
	}
	if len(clauses) > 0 {
		query = query.Where(strings.Join(clauses, " OR "), args...)
	}

	err := query.Preload("Resources").
		Order("approved_at DESC").
		Limit(limit).
		Find(&proposals).Error
	return proposals, err
}

// ListPendingReports returns approved proposals whose report render failed, oldest first
func (r *ProposalRepository) ListPendingReports(ctx context.Context, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&domain.Proposal{}).
		Where("status = ? AND report_error <> ''", domain.ProposalStatusApproved).
		Order("approved_at ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}

func likePattern(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("%", "", "_", "").Replace(s)
	return "%" + s + "%"
}
