package service

import (
	"fmt"

	"github.com/straye-as/presales-api/internal/domain"
)

// Common service errors
var (
	// ErrProposalNotFound is returned when a proposal does not exist
	ErrProposalNotFound = fmt.Errorf("proposal %w", domain.ErrNotFound)

	// ErrProfessionalNotFound is returned when a catalog professional does not exist
	ErrProfessionalNotFound = fmt.Errorf("professional %w", domain.ErrNotFound)

	// ErrParameterNotFound is returned for an unknown parameter name
	ErrParameterNotFound = fmt.Errorf("parameter %w", domain.ErrNotFound)

	// ErrMetricsNotFound is returned when a proposal has no accuracy metrics
	ErrMetricsNotFound = fmt.Errorf("metrics %w", domain.ErrNotFound)

	// ErrDocumentNotFound is returned when an uploaded document does not exist
	ErrDocumentNotFound = fmt.Errorf("document %w", domain.ErrNotFound)

	// ErrReportNotAvailable is returned when a proposal has no rendered report
	ErrReportNotAvailable = fmt.Errorf("report %w", domain.ErrNotFound)

	// ErrProfessionalInUse is returned when deleting a professional referenced by proposals
	ErrProfessionalInUse = fmt.Errorf("professional is referenced by proposals: %w", domain.ErrConflict)
)
