package mapper

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/straye-as/presales-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToProposalDTO(t *testing.T) {
	approvedAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	p := &domain.Proposal{
		BaseModel:      domain.BaseModel{ID: uuid.New(), CreatedAt: approvedAt, UpdatedAt: approvedAt},
		Status:         domain.ProposalStatusApproved,
		ClientName:     "Acme",
		DurationMonths: 2,
		TotalCost:      decimal.RequireFromString("12100.004"),
		TotalPrice:     decimal.RequireFromString("17746.666"),
		ApprovedAt:     &approvedAt,
		Resources: []domain.ProposalResource{{
			ProfessionalID: uuid.New(),
			Professional:   &domain.Professional{Name: "Ada"},
			HoursPerMonth:  []float64{80, 40},
			TotalHours:     120,
			HourlyRate:     decimal.NewFromInt(100),
		}},
	}

	dto := ToProposalDTO(p)
	assert.Equal(t, 12100.0, dto.TotalCost)
	assert.Equal(t, 17746.67, dto.TotalPrice)
	assert.Equal(t, 120.0, dto.TotalHours)
	require.Len(t, dto.Resources, 1)
	assert.Equal(t, "Ada", dto.Resources[0].ProfessionalName)
	require.NotNil(t, dto.ApprovedAt)
	assert.Equal(t, "2025-03-01T10:00:00Z", *dto.ApprovedAt)
	assert.NotNil(t, dto.UserModifications)
	assert.NotNil(t, dto.DocumentPaths)
}

func TestToProfessionalDTO_EmptySkills(t *testing.T) {
	dto := ToProfessionalDTO(&domain.Professional{Name: "Ada", HourlyRate: decimal.RequireFromString("95.5")})
	assert.Equal(t, 95.5, dto.HourlyRate)
	assert.Equal(t, []string{}, dto.Skills)
}
