package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/straye-as/presales-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MetricsRepository struct {
	db *gorm.DB
}

func NewMetricsRepository(db *gorm.DB) *MetricsRepository {
	return &MetricsRepository{db: db}
}

// WithTx returns a repository bound to an open transaction
func (r *MetricsRepository) WithTx(tx *gorm.DB) *MetricsRepository {
	return &MetricsRepository{db: tx}
}

// Upsert writes the metrics row for a proposal, replacing any earlier one
func (r *MetricsRepository) Upsert(ctx context.Context, metrics *domain.ProposalMetrics) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "proposal_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"duration_accuracy", "cost_accuracy", "team_size_accuracy", "overall_accuracy", "updated_at",
		}),
	}).Create(metrics).Error
}

func (r *MetricsRepository) GetByProposalID(ctx context.Context, proposalID uuid.UUID) (*domain.ProposalMetrics, error) {
	var metrics domain.ProposalMetrics
	err := r.db.WithContext(ctx).First(&metrics, "proposal_id = ?", proposalID).Error
	if err != nil {
		return nil, err
	}
	return &metrics, nil
}

func (r *MetricsRepository) DeleteByProposalID(ctx context.Context, proposalID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("proposal_id = ?", proposalID).Delete(&domain.ProposalMetrics{}).Error
}

// Averages holds the mean of each accuracy column
type Averages struct {
	Count            int64
	DurationAccuracy float64
	CostAccuracy     float64
	TeamSizeAccuracy float64
	OverallAccuracy  float64
}

// Averages aggregates every stored metrics row
func (r *MetricsRepository) Averages(ctx context.Context) (*Averages, error) {
	var avg Averages
	err := r.db.WithContext(ctx).Model(&domain.ProposalMetrics{}).
		Select("COUNT(*) AS count, " +
			"COALESCE(AVG(duration_accuracy), 0) AS duration_accuracy, " +
			"COALESCE(AVG(cost_accuracy), 0) AS cost_accuracy, " +
			"COALESCE(AVG(team_size_accuracy), 0) AS team_size_accuracy, " +
			"COALESCE(AVG(overall_accuracy), 0) AS overall_accuracy").
		Scan(&avg).Error
	if err != nil {
		return nil, err
	}
	return &avg, nil
}
