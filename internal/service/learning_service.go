package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/straye-as/presales-api/internal/domain"
	"github.com/straye-as/presales-api/internal/mapper"
	"github.com/straye-as/presales-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Diff field names
const (
	DiffFieldDuration = "duration"
	DiffFieldCost     = "cost"
	DiffFieldTeamSize = "teamSize"
)

// Accuracy weights for the overall score
const (
	durationWeight = 0.4
	costWeight     = 0.4
	teamSizeWeight = 0.2
)

const maxExemplarKeywords = 8

// LearningSettings tunes how diffs are scored and exemplars are picked
type LearningSettings struct {
	// CostThreshold is the absolute cost difference below which cost counts as unchanged
	CostThreshold float64
	// FallbackHourlyRate prices the AI hours when no original cost was stored
	FallbackHourlyRate float64
	ExemplarLimit      int
}

// DefaultLearningSettings returns the production defaults
func DefaultLearningSettings() LearningSettings {
	return LearningSettings{CostThreshold: 100, FallbackHourlyRate: 100, ExemplarLimit: 3}
}

// AccuracyMetrics scores one approved proposal, each dimension in [0,100]
type AccuracyMetrics struct {
	DurationAccuracy float64
	CostAccuracy     float64
	TeamSizeAccuracy float64
	OverallAccuracy  float64
}

// LearningService compares AI estimates with what estimators approved and feeds
// the best examples back into new estimates
type LearningService struct {
	proposalRepo *repository.ProposalRepository
	metricsRepo  *repository.MetricsRepository
	settings     LearningSettings
	logger       *zap.Logger
}

// NewLearningService creates a new learning service
func NewLearningService(
	proposalRepo *repository.ProposalRepository,
	metricsRepo *repository.MetricsRepository,
	settings LearningSettings,
	logger *zap.Logger,
) *LearningService {
	if settings.ExemplarLimit <= 0 {
		settings.ExemplarLimit = DefaultLearningSettings().ExemplarLimit
	}
	return &LearningService{
		proposalRepo: proposalRepo,
		metricsRepo:  metricsRepo,
		settings:     settings,
		logger:       logger,
	}
}

// Diff compares the original AI analysis with the proposal as it is about to be approved.
// The bool reports whether any dimension differs.
func (s *LearningService) Diff(original *domain.CompleteAnalysis, proposal *domain.Proposal) ([]domain.ModificationDiff, bool) {
	diffs := []domain.ModificationDiff{}
	if original == nil {
		return diffs, false
	}

	aiDuration := float64(original.TeamEstimation.ProjectDuration)
	if original.TeamEstimation.ProjectDuration != proposal.DurationMonths {
		diffs = append(diffs, newDiff(DiffFieldDuration, aiDuration, float64(proposal.DurationMonths)))
	}

	aiCost := s.baselineCost(original, proposal)
	userCost := proposal.TotalCost.InexactFloat64()
	if math.Abs(userCost-aiCost) > s.settings.CostThreshold {
		diffs = append(diffs, newDiff(DiffFieldCost, aiCost, userCost))
	}

	aiTeam := original.TeamEstimation.TeamSize()
	userTeam := len(proposal.Resources)
	if aiTeam > 0 && aiTeam != userTeam {
		diffs = append(diffs, newDiff(DiffFieldTeamSize, float64(aiTeam), float64(userTeam)))
	}

	return diffs, len(diffs) > 0
}

// baselineCost is the cost the AI estimate was priced at. Proposals generated before
// the original cost was stored fall back to the AI hours at the fallback rate.
func (s *LearningService) baselineCost(original *domain.CompleteAnalysis, proposal *domain.Proposal) float64 {
	if proposal.OriginalTotalCost.IsPositive() {
		return proposal.OriginalTotalCost.InexactFloat64()
	}
	hours := decimal.NewFromFloat(original.TeamEstimation.TotalHours())
	return hours.Mul(decimal.NewFromFloat(s.settings.FallbackHourlyRate)).InexactFloat64()
}

func newDiff(field string, aiValue, userValue float64) domain.ModificationDiff {
	difference := userValue - aiValue
	pct := 0.0
	if aiValue != 0 {
		pct = difference / aiValue * 100
	}
	return domain.ModificationDiff{
		Field:          field,
		AIValue:        aiValue,
		UserValue:      userValue,
		Difference:     difference,
		PercentageDiff: pct,
	}
}

// ComputeAccuracy turns diffs into accuracy scores. A dimension without a diff scores 100.
func ComputeAccuracy(diffs []domain.ModificationDiff) AccuracyMetrics {
	m := AccuracyMetrics{DurationAccuracy: 100, CostAccuracy: 100, TeamSizeAccuracy: 100}
	for _, d := range diffs {
		score := math.Max(0, math.Min(100, 100-math.Abs(d.PercentageDiff)))
		switch d.Field {
		case DiffFieldDuration:
			m.DurationAccuracy = score
		case DiffFieldCost:
			m.CostAccuracy = score
		case DiffFieldTeamSize:
			m.TeamSizeAccuracy = score
		}
	}
	m.OverallAccuracy = m.DurationAccuracy*durationWeight + m.CostAccuracy*costWeight + m.TeamSizeAccuracy*teamSizeWeight
	return m
}

// RecordTx stores the accuracy of a modified proposal inside tx, or removes stale
// metrics when the approved proposal matches the AI estimate.
func (s *LearningService) RecordTx(ctx context.Context, tx *gorm.DB, proposalID uuid.UUID, diffs []domain.ModificationDiff, wasModified bool) error {
	repo := s.metricsRepo.WithTx(tx)
	if !wasModified {
		if err := repo.DeleteByProposalID(ctx, proposalID); err != nil {
			return fmt.Errorf("failed to clear metrics: %w", err)
		}
		return nil
	}

	acc := ComputeAccuracy(diffs)
	metrics := &domain.ProposalMetrics{
		ProposalID:       proposalID,
		DurationAccuracy: acc.DurationAccuracy,
		CostAccuracy:     acc.CostAccuracy,
		TeamSizeAccuracy: acc.TeamSizeAccuracy,
		OverallAccuracy:  acc.OverallAccuracy,
	}
	if err := repo.Upsert(ctx, metrics); err != nil {
		return fmt.Errorf("failed to save metrics: %w", err)
	}

	s.logger.Info("accuracy metrics recorded",
		zap.String("proposal_id", proposalID.String()),
		zap.Float64("overall_accuracy", acc.OverallAccuracy),
	)
	return nil
}

// FindSimilarProposals returns approved proposals the estimators corrected, newest first
func (s *LearningService) FindSimilarProposals(ctx context.Context, complexity domain.Complexity, keywords []string) ([]domain.Proposal, error) {
	proposals, err := s.proposalRepo.FindSimilar(ctx, complexity, keywords, s.settings.ExemplarLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to find similar proposals: %w", err)
	}
	s.logger.Debug("similar proposals found",
		zap.String("complexity", string(complexity)),
		zap.Strings("keywords", keywords),
		zap.Int("count", len(proposals)),
	)
	return proposals, nil
}

// BuildFewShotExamples renders proposals as prompt text contrasting the AI forecast
// with the approved figures. No proposals gives an empty string.
func (s *LearningService) BuildFewShotExamples(proposals []domain.Proposal) string {
	if len(proposals) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n\nSIMILAR APPROVED PROJECTS:\n")
	b.WriteString("Use these examples to calibrate your estimates.\n\n")

	for i, p := range proposals {
		fmt.Fprintf(&b, "EXAMPLE %d: %s\n", i+1, p.ProjectName)
		fmt.Fprintf(&b, "Client: %s\n", p.ClientName)
		fmt.Fprintf(&b, "Complexity: %s\n", p.Complexity)
		fmt.Fprintf(&b, "Scope: %s\n\n", truncateRunes(p.Description, 200))

		if p.OriginalAIAnalysis != nil {
			team := p.OriginalAIAnalysis.TeamEstimation
			b.WriteString("Initial AI forecast:\n")
			fmt.Fprintf(&b, "  - Duration: %d months\n", team.ProjectDuration)
			fmt.Fprintf(&b, "  - Team: %d roles\n", len(team.TeamComposition))
			if p.OriginalTotalCost.IsPositive() {
				fmt.Fprintf(&b, "  - Cost: %s\n", p.OriginalTotalCost.StringFixed(2))
			}
			b.WriteString("\n")
		}

		b.WriteString("Values APPROVED by the estimator:\n")
		fmt.Fprintf(&b, "  - Duration: %d months\n", p.DurationMonths)
		fmt.Fprintf(&b, "  - Cost: %s\n", p.TotalCost.StringFixed(2))
		fmt.Fprintf(&b, "  - Team: %d professionals\n", len(p.Resources))

		if p.FeedbackNotes != nil && *p.FeedbackNotes != "" {
			fmt.Fprintf(&b, "\nEstimator feedback: %q\n", *p.FeedbackNotes)
		}
		b.WriteString("\n" + strings.Repeat("-", 60) + "\n\n")
	}

	b.WriteString("IMPORTANT: use these examples to adjust your estimates,\n")
	b.WriteString("but take the particulars of the new project into account.\n\n")
	return b.String()
}

// Exemplars implements ai.ExemplarSource. Keywords come from the core functionalities
// and integrations; when they match nothing the search relaxes to complexity only.
func (s *LearningService) Exemplars(ctx context.Context, analysis domain.ProjectAnalysis) (string, error) {
	keywords := ExemplarKeywords(analysis)

	proposals, err := s.FindSimilarProposals(ctx, analysis.Complexity, keywords)
	if err != nil {
		return "", err
	}
	if len(proposals) == 0 && len(keywords) > 0 {
		proposals, err = s.FindSimilarProposals(ctx, analysis.Complexity, nil)
		if err != nil {
			return "", err
		}
	}
	return s.BuildFewShotExamples(proposals), nil
}

var keywordStopWords = map[string]bool{
	"with": true, "from": true, "that": true, "this": true, "into": true, "para": true,
	"user": true, "users": true, "system": true, "data": true, "management": true,
}

// ExemplarKeywords picks distinctive words from the analysis, integrations first
func ExemplarKeywords(analysis domain.ProjectAnalysis) []string {
	seen := make(map[string]bool)
	var out []string

	phrases := append(append([]string{}, analysis.Integrations...), analysis.CoreFunctionalities...)
	for _, phrase := range phrases {
		words := strings.FieldsFunc(strings.ToLower(phrase), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		for _, w := range words {
			if len([]rune(w)) < 4 || keywordStopWords[w] || seen[w] {
				continue
			}
			seen[w] = true
			out = append(out, w)
			if len(out) == maxExemplarKeywords {
				return out
			}
		}
	}
	return out
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// Metrics returns the accuracy metrics of one proposal
func (s *LearningService) Metrics(ctx context.Context, proposalID uuid.UUID) (*domain.ProposalMetricsDTO, error) {
	metrics, err := s.metricsRepo.GetByProposalID(ctx, proposalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMetricsNotFound
		}
		return nil, fmt.Errorf("failed to get metrics: %w", err)
	}
	dto := mapper.ToProposalMetricsDTO(metrics)
	return &dto, nil
}

// AccuracySummary averages the metrics of every modified, approved proposal
func (s *LearningService) AccuracySummary(ctx context.Context) (*domain.AccuracySummaryDTO, error) {
	avg, err := s.metricsRepo.Averages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate metrics: %w", err)
	}
	return &domain.AccuracySummaryDTO{
		Count:            avg.Count,
		DurationAccuracy: avg.DurationAccuracy,
		CostAccuracy:     avg.CostAccuracy,
		TeamSizeAccuracy: avg.TeamSizeAccuracy,
		OverallAccuracy:  avg.OverallAccuracy,
	}, nil
}
