package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns an id when the caller did not
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// ProposalStatus represents the lifecycle state of a proposal
type ProposalStatus string

const (
	ProposalStatusDraft          ProposalStatus = "draft"
	ProposalStatusGenerated      ProposalStatus = "generated"
	ProposalStatusUnderReview    ProposalStatus = "under_review"
	ProposalStatusApproved       ProposalStatus = "approved"
	ProposalStatusExcelGenerated ProposalStatus = "excel_generated"
	ProposalStatusRejected       ProposalStatus = "rejected"
)

// IsValid checks if the ProposalStatus is a valid enum value
func (s ProposalStatus) IsValid() bool {
	switch s {
	case ProposalStatusDraft, ProposalStatusGenerated, ProposalStatusUnderReview,
		ProposalStatusApproved, ProposalStatusExcelGenerated, ProposalStatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed
func (s ProposalStatus) IsTerminal() bool {
	return s == ProposalStatusRejected
}

// IsApproved reports whether the proposal has passed approval
func (s ProposalStatus) IsApproved() bool {
	return s == ProposalStatusApproved || s == ProposalStatusExcelGenerated
}

// ModificationDiff compares one AI estimated figure with the approved figure
type ModificationDiff struct {
	Field          string  `json:"field"`
	AIValue        float64 `json:"aiValue"`
	UserValue      float64 `json:"userValue"`
	Difference     float64 `json:"difference"`
	PercentageDiff float64 `json:"percentageDiff"`
}

// UnresolvedRole is a warning for an estimate role with no catalog match.
// The role contributes zero hours and zero cost.
type UnresolvedRole struct {
	Role   string `json:"role"`
	Reason string `json:"reason"`
}

// Proposal is the aggregate root of one estimate
type Proposal struct {
	BaseModel
	Status             ProposalStatus     `gorm:"type:varchar(50);not null;default:'draft';index"`
	ClientName         string             `gorm:"type:varchar(200);not null;index"`
	ProjectName        string             `gorm:"type:varchar(200);not null"`
	Description        string             `gorm:"type:text"`
	Complexity         Complexity         `gorm:"type:varchar(20);index"`
	DurationMonths     int                `gorm:"not null;default:0"`
	TotalCost          decimal.Decimal    `gorm:"type:decimal(15,2);not null;default:0"`
	TotalPrice         decimal.Decimal    `gorm:"type:decimal(15,2);not null;default:0"`
	OriginalTotalCost  decimal.Decimal    `gorm:"type:decimal(15,2);not null;default:0"`
	OriginalAIAnalysis *CompleteAnalysis  `gorm:"serializer:json;type:text"`
	CurrentAnalysis    *CompleteAnalysis  `gorm:"serializer:json;type:text"`
	Resources          []ProposalResource `gorm:"foreignKey:ProposalID;constraint:OnDelete:CASCADE"`
	UserModifications  []ModificationDiff `gorm:"serializer:json;type:text"`
	WasModified        bool               `gorm:"not null;default:false;index"`
	AccuracyRating     *int
	FeedbackNotes      *string          `gorm:"type:text"`
	ApprovedAt         *time.Time       `gorm:"index"`
	ApprovedBy         string           `gorm:"type:varchar(200)"`
	UnresolvedRoles    []UnresolvedRole `gorm:"serializer:json;type:text"`
	DocumentPaths      []string         `gorm:"serializer:json;type:text"`
	ReportPath         string           `gorm:"type:varchar(500)"`
	ReportError        string           `gorm:"type:text"`
	RejectionReason    string           `gorm:"type:text"`
	CreatedBy          string           `gorm:"type:varchar(200)"`
	Provider           string           `gorm:"type:varchar(50)"`
	Model              string           `gorm:"type:varchar(100)"`
}

// TotalHours sums the hours of every resource line
func (p *Proposal) TotalHours() float64 {
	total := 0.0
	for _, r := range p.Resources {
		total += r.TotalHours
	}
	return total
}

// ProposalResource is one professional's allocation on a proposal
type ProposalResource struct {
	BaseModel
	ProposalID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProfessionalID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Professional   *Professional   `gorm:"foreignKey:ProfessionalID"`
	Role           string          `gorm:"type:varchar(200)"`
	HoursPerMonth  []float64       `gorm:"serializer:json;type:text"`
	HoursPerWeek   []float64       `gorm:"serializer:json;type:text"`
	TotalHours     float64         `gorm:"not null;default:0"`
	HourlyRate     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Cost           decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	Price          decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
}

// Seniority classifies a professional's experience level
type Seniority string

const (
	SeniorityJunior Seniority = "junior"
	SeniorityMid    Seniority = "mid"
	SenioritySenior Seniority = "senior"
	SeniorityLead   Seniority = "lead"
)

// IsValid checks if the Seniority is a valid enum value
func (s Seniority) IsValid() bool {
	switch s {
	case SeniorityJunior, SeniorityMid, SenioritySenior, SeniorityLead:
		return true
	}
	return false
}

// Professional is a catalog entry that estimates are priced against
type Professional struct {
	BaseModel
	Name       string          `gorm:"type:varchar(200);not null"`
	Role       string          `gorm:"type:varchar(200);not null;index"`
	HourlyRate decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Seniority  Seniority       `gorm:"type:varchar(20)"`
	Skills     []string        `gorm:"serializer:json;type:text"`
	Active     bool            `gorm:"not null;default:true;index"`
}

// Parameter names understood by the pricing cascade
const (
	ParameterTax      = "tax"
	ParameterOverhead = "overhead"
	ParameterMargin   = "margin"
)

// Parameter is a named pricing rate stored as a decimal fraction
type Parameter struct {
	BaseModel
	Name        string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Value       decimal.Decimal `gorm:"type:decimal(6,4);not null"`
	Description string          `gorm:"type:varchar(500)"`
}

// ProposalMetrics stores the accuracy of the AI estimate for one approved proposal
type ProposalMetrics struct {
	BaseModel
	ProposalID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	DurationAccuracy float64   `gorm:"not null"`
	CostAccuracy     float64   `gorm:"not null"`
	TeamSizeAccuracy float64   `gorm:"not null"`
	OverallAccuracy  float64   `gorm:"not null"`
}

// TableName keeps the table name singular-plural consistent with the migration
func (ProposalMetrics) TableName() string {
	return "proposal_metrics"
}

// Document is an uploaded source document available to the estimation pipeline
type Document struct {
	BaseModel
	Filename    string `gorm:"type:varchar(255);not null"`
	ContentType string `gorm:"type:varchar(100);not null"`
	Size        int64  `gorm:"not null"`
	StoragePath string `gorm:"type:varchar(500);not null;unique"`
	UploadedBy  string `gorm:"type:varchar(200)"`
}
