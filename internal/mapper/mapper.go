package mapper

import (
	"github.com/shopspring/decimal"
	"github.com/straye-as/presales-api/internal/domain"
)

const timeLayout = "2006-01-02T15:04:05Z"

// money converts a stored decimal amount to the float used in responses
func money(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

// ToProposalDTO converts Proposal to ProposalDTO
func ToProposalDTO(proposal *domain.Proposal) domain.ProposalDTO {
	dto := domain.ProposalDTO{
		ID:                 proposal.ID,
		Status:             proposal.Status,
		ClientName:         proposal.ClientName,
		ProjectName:        proposal.ProjectName,
		Description:        proposal.Description,
		Complexity:         proposal.Complexity,
		DurationMonths:     proposal.DurationMonths,
		TotalHours:         proposal.TotalHours(),
		TotalCost:          money(proposal.TotalCost),
		TotalPrice:         money(proposal.TotalPrice),
		OriginalTotalCost:  money(proposal.OriginalTotalCost),
		OriginalAIAnalysis: proposal.OriginalAIAnalysis,
		CurrentAnalysis:    proposal.CurrentAnalysis,
		Resources:          make([]domain.ProposalResourceDTO, 0, len(proposal.Resources)),
		UserModifications:  proposal.UserModifications,
		WasModified:        proposal.WasModified,
		AccuracyRating:     proposal.AccuracyRating,
		FeedbackNotes:      proposal.FeedbackNotes,
		ApprovedBy:         proposal.ApprovedBy,
		UnresolvedRoles:    proposal.UnresolvedRoles,
		DocumentPaths:      proposal.DocumentPaths,
		ReportPath:         proposal.ReportPath,
		ReportError:        proposal.ReportError,
		RejectionReason:    proposal.RejectionReason,
		Provider:           proposal.Provider,
		Model:              proposal.Model,
		CreatedBy:          proposal.CreatedBy,
		CreatedAt:          proposal.CreatedAt.Format(timeLayout),
		UpdatedAt:          proposal.UpdatedAt.Format(timeLayout),
	}

	for i := range proposal.Resources {
		dto.Resources = append(dto.Resources, ToProposalResourceDTO(&proposal.Resources[i]))
	}
	if dto.UserModifications == nil {
		dto.UserModifications = []domain.ModificationDiff{}
	}
	if dto.DocumentPaths == nil {
		dto.DocumentPaths = []string{}
	}
	if proposal.ApprovedAt != nil {
		approvedAt := proposal.ApprovedAt.Format(timeLayout)
		dto.ApprovedAt = &approvedAt
	}

	return dto
}

// ToProposalResourceDTO converts ProposalResource to ProposalResourceDTO
func ToProposalResourceDTO(resource *domain.ProposalResource) domain.ProposalResourceDTO {
	dto := domain.ProposalResourceDTO{
		ID:             resource.ID,
		ProfessionalID: resource.ProfessionalID,
		Role:           resource.Role,
		HoursPerMonth:  resource.HoursPerMonth,
		HoursPerWeek:   resource.HoursPerWeek,
		TotalHours:     resource.TotalHours,
		HourlyRate:     money(resource.HourlyRate),
		Cost:           money(resource.Cost),
		Price:          money(resource.Price),
	}
	if resource.Professional != nil {
		dto.ProfessionalName = resource.Professional.Name
	}
	return dto
}

// ToProfessionalDTO converts Professional to ProfessionalDTO
func ToProfessionalDTO(professional *domain.Professional) domain.ProfessionalDTO {
	skills := professional.Skills
	if skills == nil {
		skills = []string{}
	}
	return domain.ProfessionalDTO{
		ID:         professional.ID,
		Name:       professional.Name,
		Role:       professional.Role,
		HourlyRate: money(professional.HourlyRate),
		Seniority:  professional.Seniority,
		Skills:     skills,
		Active:     professional.Active,
		CreatedAt:  professional.CreatedAt.Format(timeLayout),
		UpdatedAt:  professional.UpdatedAt.Format(timeLayout),
	}
}

// ToParameterDTO converts Parameter to ParameterDTO
func ToParameterDTO(param *domain.Parameter) domain.ParameterDTO {
	value, _ := param.Value.Float64()
	dto := domain.ParameterDTO{
		Name:        param.Name,
		Value:       value,
		Description: param.Description,
	}
	if !param.UpdatedAt.IsZero() {
		dto.UpdatedAt = param.UpdatedAt.Format(timeLayout)
	}
	return dto
}

// ToProposalMetricsDTO converts ProposalMetrics to ProposalMetricsDTO
func ToProposalMetricsDTO(metrics *domain.ProposalMetrics) domain.ProposalMetricsDTO {
	return domain.ProposalMetricsDTO{
		ProposalID:       metrics.ProposalID,
		DurationAccuracy: metrics.DurationAccuracy,
		CostAccuracy:     metrics.CostAccuracy,
		TeamSizeAccuracy: metrics.TeamSizeAccuracy,
		OverallAccuracy:  metrics.OverallAccuracy,
		UpdatedAt:        metrics.UpdatedAt.Format(timeLayout),
	}
}

// ToDocumentDTO converts Document to DocumentDTO
func ToDocumentDTO(doc *domain.Document) domain.DocumentDTO {
	return domain.DocumentDTO{
		ID:          doc.ID,
		Filename:    doc.Filename,
		ContentType: doc.ContentType,
		Size:        doc.Size,
		Path:        doc.StoragePath,
		CreatedAt:   doc.CreatedAt.Format(timeLayout),
	}
}
