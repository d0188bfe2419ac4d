package domain

import (
	"github.com/google/uuid"
)

// DTOs for API responses

type ProposalDTO struct {
	ID                 uuid.UUID             `json:"id"`
	Status             ProposalStatus        `json:"status"`
	ClientName         string                `json:"clientName"`
	ProjectName        string                `json:"projectName"`
	Description        string                `json:"description,omitempty"`
	Complexity         Complexity            `json:"complexity,omitempty"`
	DurationMonths     int                   `json:"durationMonths"`
	TotalHours         float64               `json:"totalHours"`
	TotalCost          float64               `json:"totalCost"`
	TotalPrice         float64               `json:"totalPrice"`
	OriginalTotalCost  float64               `json:"originalTotalCost"`
	OriginalAIAnalysis *CompleteAnalysis     `json:"originalAiAnalysis,omitempty"`
	CurrentAnalysis    *CompleteAnalysis     `json:"currentAnalysis,omitempty"`
	Resources          []ProposalResourceDTO `json:"resources"`
	UserModifications  []ModificationDiff    `json:"userModifications"`
	WasModified        bool                  `json:"wasModified"`
	AccuracyRating     *int                  `json:"accuracyRating,omitempty"`
	FeedbackNotes      *string               `json:"feedbackNotes,omitempty"`
	ApprovedAt         *string               `json:"approvedAt,omitempty"` // ISO 8601
	ApprovedBy         string                `json:"approvedBy,omitempty"`
	UnresolvedRoles    []UnresolvedRole      `json:"unresolvedRoles,omitempty"`
	DocumentPaths      []string              `json:"documentPaths"`
	ReportPath         string                `json:"reportPath,omitempty"`
	ReportError        string                `json:"reportError,omitempty"`
	RejectionReason    string                `json:"rejectionReason,omitempty"`
	Provider           string                `json:"provider,omitempty"`
	Model              string                `json:"model,omitempty"`
	CreatedBy          string                `json:"createdBy,omitempty"`
	CreatedAt          string                `json:"createdAt"` // ISO 8601
	UpdatedAt          string                `json:"updatedAt"` // ISO 8601
}

type ProposalResourceDTO struct {
	ID               uuid.UUID `json:"id"`
	ProfessionalID   uuid.UUID `json:"professionalId"`
	ProfessionalName string    `json:"professionalName,omitempty"`
	Role             string    `json:"role"`
	HoursPerMonth    []float64 `json:"hoursPerMonth"`
	HoursPerWeek     []float64 `json:"hoursPerWeek"`
	TotalHours       float64   `json:"totalHours"`
	HourlyRate       float64   `json:"hourlyRate"`
	Cost             float64   `json:"cost"`
	Price            float64   `json:"price"`
}

// GenerateProposalResultDTO is returned by proposal generation
type GenerateProposalResultDTO struct {
	Proposal ProposalDTO      `json:"proposal"`
	Warnings []UnresolvedRole `json:"warnings"`
}

// ApproveProposalResultDTO carries the approved proposal and any report rendering failure
type ApproveProposalResultDTO struct {
	Proposal    ProposalDTO `json:"proposal"`
	ReportError string      `json:"reportError,omitempty"`
}

type ProfessionalDTO struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	HourlyRate float64   `json:"hourlyRate"`
	Seniority  Seniority `json:"seniority,omitempty"`
	Skills     []string  `json:"skills"`
	Active     bool      `json:"active"`
	CreatedAt  string    `json:"createdAt"`
	UpdatedAt  string    `json:"updatedAt"`
}

type ParameterDTO struct {
	Name        string  `json:"name"`
	Value       float64 `json:"value"`
	Description string  `json:"description,omitempty"`
	UpdatedAt   string  `json:"updatedAt,omitempty"`
}

type ProposalMetricsDTO struct {
	ProposalID       uuid.UUID `json:"proposalId"`
	DurationAccuracy float64   `json:"durationAccuracy"`
	CostAccuracy     float64   `json:"costAccuracy"`
	TeamSizeAccuracy float64   `json:"teamSizeAccuracy"`
	OverallAccuracy  float64   `json:"overallAccuracy"`
	UpdatedAt        string    `json:"updatedAt"`
}

// AccuracySummaryDTO averages the accuracy metrics of every approved, modified proposal
type AccuracySummaryDTO struct {
	Count            int64   `json:"count"`
	DurationAccuracy float64 `json:"durationAccuracy"`
	CostAccuracy     float64 `json:"costAccuracy"`
	TeamSizeAccuracy float64 `json:"teamSizeAccuracy"`
	OverallAccuracy  float64 `json:"overallAccuracy"`
}

type DocumentDTO struct {
	ID          uuid.UUID `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	Path        string    `json:"path"`
	CreatedAt   string    `json:"createdAt"`
}

// ProviderInfoDTO describes one configured AI provider
type ProviderInfoDTO struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Models       []string `json:"models"`
	DefaultModel string   `json:"defaultModel"`
	Default      bool     `json:"default"`
}

// AuthUserDTO describes the authenticated caller
type AuthUserDTO struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// Pagination response wrapper
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// Request DTOs

type GenerateProposalRequest struct {
	ClientName      string      `json:"clientName" validate:"required,max=200"`
	ProjectName     string      `json:"projectName" validate:"required,max=200"`
	Description     string      `json:"description,omitempty" validate:"max=10000"`
	Context         string      `json:"context,omitempty" validate:"max=20000"`
	DocumentPaths   []string    `json:"documentPaths" validate:"required,min=1,dive,required"`
	ProfessionalIDs []uuid.UUID `json:"professionalIds" validate:"required,min=1"`
	Provider        string      `json:"provider,omitempty" validate:"omitempty,oneof=anthropic openai gemini"`
	Model           string      `json:"model,omitempty" validate:"max=100"`
}

// UpdateProposalRequest is a partial update. Nil fields are left unchanged.
type UpdateProposalRequest struct {
	ClientName      *string           `json:"clientName,omitempty" validate:"omitempty,min=1,max=200"`
	ProjectName     *string           `json:"projectName,omitempty" validate:"omitempty,min=1,max=200"`
	Description     *string           `json:"description,omitempty" validate:"omitempty,max=10000"`
	DurationMonths  *int              `json:"durationMonths,omitempty" validate:"omitempty,gt=0,lte=120"`
	CurrentAnalysis *CompleteAnalysis `json:"currentAnalysis,omitempty"`
	TotalCost       *float64          `json:"totalCost,omitempty" validate:"omitempty,gte=0"`
	TotalPrice      *float64          `json:"totalPrice,omitempty" validate:"omitempty,gte=0"`
	// TruncateHours allows a duration change to drop hours in trailing months
	TruncateHours bool `json:"truncateHours,omitempty"`
}

// Resource allocation update actions
const (
	ResourceActionUpdate = "update"
	ResourceActionAdd    = "add"
	ResourceActionRemove = "remove"
)

type ResourceAllocationUpdate struct {
	Action         string     `json:"action" validate:"required,oneof=update add remove"`
	ResourceID     *uuid.UUID `json:"resourceId,omitempty"`
	ProfessionalID *uuid.UUID `json:"professionalId,omitempty"`
	HoursPerMonth  []float64  `json:"hoursPerMonth,omitempty" validate:"omitempty,dive,gte=0"`
	HoursPerWeek   []float64  `json:"hoursPerWeek,omitempty" validate:"omitempty,dive,gte=0"`
}

type UpdateResourcesRequest struct {
	Resources []ResourceAllocationUpdate `json:"resources" validate:"required,min=1,dive"`
}

type ApproveProposalRequest struct {
	Rating *int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Notes  *string `json:"notes,omitempty" validate:"omitempty,max=5000"`
}

type RejectProposalRequest struct {
	Reason string `json:"reason" validate:"max=2000"`
}

type CreateProfessionalRequest struct {
	Name       string    `json:"name" validate:"required,max=200"`
	Role       string    `json:"role" validate:"required,max=200"`
	HourlyRate float64   `json:"hourlyRate" validate:"gte=0"`
	Seniority  Seniority `json:"seniority,omitempty" validate:"omitempty,oneof=junior mid senior lead"`
	Skills     []string  `json:"skills,omitempty" validate:"omitempty,dive,max=100"`
	Active     *bool     `json:"active,omitempty"`
}

type UpdateProfessionalRequest struct {
	Name       string    `json:"name" validate:"required,max=200"`
	Role       string    `json:"role" validate:"required,max=200"`
	HourlyRate float64   `json:"hourlyRate" validate:"gte=0"`
	Seniority  Seniority `json:"seniority,omitempty" validate:"omitempty,oneof=junior mid senior lead"`
	Skills     []string  `json:"skills,omitempty" validate:"omitempty,dive,max=100"`
	Active     bool      `json:"active"`
}

type UpdateParameterRequest struct {
	Value       float64 `json:"value" validate:"gte=0,lte=1"`
	Description string  `json:"description,omitempty" validate:"max=500"`
}
