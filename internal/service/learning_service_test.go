package service

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/straye-as/presales-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sampleAnalysis() *domain.CompleteAnalysis {
	return &domain.CompleteAnalysis{
		Analysis: domain.ProjectAnalysis{
			Scope:               "Booking platform",
			CoreFunctionalities: []string{"Online booking calendar", "User profile"},
			Integrations:        []string{"Google Calendar", "Stripe"},
			Complexity:          domain.ComplexityHigh,
		},
		TeamEstimation: domain.TeamEstimation{
			TeamComposition: []domain.TeamMember{{Role: "Backend", Quantity: 2}, {Role: "QA", Quantity: 1}},
			MonthlyAllocation: []domain.RoleAllocation{
				{Role: "Backend", HoursPerMonth: []float64{100, 100}},
				{Role: "QA", HoursPerMonth: []float64{50, 50}},
			},
			ProjectDuration: 2,
		},
	}
}

func newTestLearning() *LearningService {
	return NewLearningService(nil, nil, DefaultLearningSettings(), zap.NewNop())
}

func TestLearningService_DiffUnchanged(t *testing.T) {
	s := newTestLearning()
	proposal := &domain.Proposal{
		DurationMonths:    2,
		TotalCost:         decimal.NewFromInt(30000),
		OriginalTotalCost: decimal.NewFromInt(30000),
		Resources:         make([]domain.ProposalResource, 3),
	}

	diffs, modified := s.Diff(sampleAnalysis(), proposal)
	assert.False(t, modified)
	assert.NotNil(t, diffs)
	assert.Empty(t, diffs)
}

func TestLearningService_DiffAllDimensions(t *testing.T) {
	s := newTestLearning()
	proposal := &domain.Proposal{
		DurationMonths:    3,
		TotalCost:         decimal.NewFromInt(45000),
		OriginalTotalCost: decimal.NewFromInt(30000),
		Resources:         make([]domain.ProposalResource, 2),
	}

	diffs, modified := s.Diff(sampleAnalysis(), proposal)
	require.True(t, modified)
	require.Len(t, diffs, 3)

	byField := map[string]domain.ModificationDiff{}
	for _, d := range diffs {
		byField[d.Field] = d
	}
	assert.InDelta(t, 50.0, byField[DiffFieldDuration].PercentageDiff, 1e-9)
	assert.InDelta(t, 50.0, byField[DiffFieldCost].PercentageDiff, 1e-9)
	assert.Equal(t, 15000.0, byField[DiffFieldCost].Difference)
	assert.InDelta(t, -33.333, byField[DiffFieldTeamSize].PercentageDiff, 0.001)
}

func TestLearningService_CostThresholdAndFallback(t *testing.T) {
	s := newTestLearning()

	// within the threshold
	within := &domain.Proposal{
		DurationMonths:    2,
		TotalCost:         decimal.NewFromInt(30100),
		OriginalTotalCost: decimal.NewFromInt(30000),
		Resources:         make([]domain.ProposalResource, 3),
	}
	_, modified := s.Diff(sampleAnalysis(), within)
	assert.False(t, modified)

	// no stored cost: 300 AI hours at the fallback rate of 100
	legacy := &domain.Proposal{
		DurationMonths: 2,
		TotalCost:      decimal.NewFromInt(60000),
		Resources:      make([]domain.ProposalResource, 3),
	}
	diffs, modified := s.Diff(sampleAnalysis(), legacy)
	require.True(t, modified)
	require.Len(t, diffs, 1)
	assert.Equal(t, DiffFieldCost, diffs[0].Field)
	assert.Equal(t, 30000.0, diffs[0].AIValue)
	assert.InDelta(t, 100.0, diffs[0].PercentageDiff, 1e-9)
}

func TestLearningService_DiffZeroAIValue(t *testing.T) {
	s := newTestLearning()
	analysis := sampleAnalysis()
	analysis.TeamEstimation.MonthlyAllocation = nil

	diffs, _ := s.Diff(analysis, &domain.Proposal{
		DurationMonths: 2,
		TotalCost:      decimal.NewFromInt(5000),
		Resources:      make([]domain.ProposalResource, 3),
	})
	require.Len(t, diffs, 1)
	assert.Equal(t, 0.0, diffs[0].PercentageDiff)
}

func TestComputeAccuracy(t *testing.T) {
	t.Run("no diffs scores 100", func(t *testing.T) {
		m := ComputeAccuracy(nil)
		assert.Equal(t, AccuracyMetrics{100, 100, 100, 100}, m)
	})

	t.Run("weights", func(t *testing.T) {
		m := ComputeAccuracy([]domain.ModificationDiff{
			{Field: DiffFieldDuration, PercentageDiff: 50},
			{Field: DiffFieldCost, PercentageDiff: -20},
			{Field: DiffFieldTeamSize, PercentageDiff: 10},
		})
		assert.Equal(t, 50.0, m.DurationAccuracy)
		assert.Equal(t, 80.0, m.CostAccuracy)
		assert.Equal(t, 90.0, m.TeamSizeAccuracy)
		assert.InDelta(t, 0.4*50+0.4*80+0.2*90, m.OverallAccuracy, 1e-9)
	})

	t.Run("bounded", func(t *testing.T) {
		for _, pct := range []float64{-1000, -150, -100, 0, 100, 250, 1e9} {
			m := ComputeAccuracy([]domain.ModificationDiff{
				{Field: DiffFieldDuration, PercentageDiff: pct},
				{Field: DiffFieldCost, PercentageDiff: pct},
				{Field: DiffFieldTeamSize, PercentageDiff: pct},
			})
			for _, v := range []float64{m.DurationAccuracy, m.CostAccuracy, m.TeamSizeAccuracy, m.OverallAccuracy} {
				assert.GreaterOrEqual(t, v, 0.0)
				assert.LessOrEqual(t, v, 100.0)
			}
		}
	})
}

func TestExemplarKeywords(t *testing.T) {
	keywords := ExemplarKeywords(sampleAnalysis().Analysis)
	assert.Equal(t, []string{"google", "calendar", "stripe", "online", "booking", "profile"}, keywords)
}

func TestBuildFewShotExamples(t *testing.T) {
	s := newTestLearning()
	assert.Empty(t, s.BuildFewShotExamples(nil))

	notes := "QA was underestimated"
	text := s.BuildFewShotExamples([]domain.Proposal{{
		ProjectName:        "Bookings",
		ClientName:         "Hotel Co",
		Complexity:         domain.ComplexityHigh,
		Description:        strings.Repeat("x", 300),
		DurationMonths:     4,
		TotalCost:          decimal.NewFromInt(50000),
		OriginalTotalCost:  decimal.NewFromInt(30000),
		OriginalAIAnalysis: sampleAnalysis(),
		Resources:          make([]domain.ProposalResource, 4),
		FeedbackNotes:      &notes,
	}})

	assert.Contains(t, text, "EXAMPLE 1: Bookings")
	assert.Contains(t, text, "Duration: 2 months")
	assert.Contains(t, text, "Duration: 4 months")
	assert.Contains(t, text, "Cost: 50000.00")
	assert.Contains(t, text, "Team: 4 professionals")
	assert.Contains(t, text, notes)
	assert.Contains(t, text, strings.Repeat("x", 200)+"...")
	assert.NotContains(t, text, strings.Repeat("x", 201))
}
