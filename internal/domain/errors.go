package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// APIError represents a standardized API error with HTTP status code
type APIError struct {
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Detail string            `json:"detail,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Title
}

// ValidationFieldError maps a field name to its validation error message
type ValidationFieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationMessages provides human-readable validation error messages
// These map validator tags to user-friendly messages
var ValidationMessages = map[string]string{
	"required": "This field is required",
	"max":      "Exceeds maximum length",
	"min":      "Below minimum length",
	"gte":      "Must be greater than or equal to minimum value",
	"gt":       "Must be greater than minimum value",
	"lte":      "Must be less than or equal to maximum value",
	"lt":       "Must be less than maximum value",
	"uuid":     "Must be a valid UUID",
	"oneof":    "Must be one of the allowed values",
	"numeric":  "Must be a numeric value",
	"len":      "Must be exactly the specified length",
}

// GetValidationMessage returns a human-readable message for a validation tag
func GetValidationMessage(tag string) string {
	if msg, ok := ValidationMessages[tag]; ok {
		return msg
	}
	return "Validation failed: " + tag
}

// Common error types for RFC 7807 Problem Details
const (
	ErrorTypeValidation   = "validation_error"
	ErrorTypeNotFound     = "not_found"
	ErrorTypeBadRequest   = "bad_request"
	ErrorTypeConflict     = "conflict"
	ErrorTypeUnauthorized = "unauthorized"
	ErrorTypeForbidden    = "forbidden"
	ErrorTypeProvider     = "provider_error"
	ErrorTypeInternal     = "internal_error"
)

// Error categories shared by the estimation pipeline
var (
	// ErrValidation is returned for malformed input. Never retried.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidProviderResponse is returned when a provider fails to produce a usable answer
	ErrInvalidProviderResponse = errors.New("invalid provider response")

	// ErrProviderTransient marks provider failures caused by network, timeout or overload
	ErrProviderTransient = errors.New("transient provider failure")

	// ErrConflict is returned when an operation is not allowed in the proposal's current state
	ErrConflict = errors.New("operation not allowed in current state")

	// ErrNotFound is returned when a referenced entity does not exist
	ErrNotFound = errors.New("not found")
)

// ValidationError names the offending field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ConflictError reports an action attempted from a state that does not allow it
type ConflictError struct {
	ProposalID uuid.UUID
	Status     ProposalStatus
	Action     string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("cannot %s proposal %s in status %s", e.Action, e.ProposalID, e.Status)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// Pipeline steps
const (
	StepAnalyzeScope     = "analyze_scope"
	StepEstimateTeam     = "estimate_team"
	StepGenerateSchedule = "generate_schedule"
	StepPrepareDocuments = "prepare_documents"
)

// ProviderError is the terminal failure of one pipeline step after retries
type ProviderError struct {
	Step      string
	Provider  string
	Model     string
	Attempts  int
	Reason    string
	Transient bool
	Err       error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s/%s failed at step %s after %d attempt(s): %s", e.Provider, e.Model, e.Step, e.Attempts, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is matches ErrInvalidProviderResponse always and ErrProviderTransient when the last failure was transient
func (e *ProviderError) Is(target error) bool {
	switch target {
	case ErrInvalidProviderResponse:
		return true
	case ErrProviderTransient:
		return e.Transient
	}
	return false
}

// DocumentError is an input document the pipeline could not load. It fails
// the prepare_documents step before any provider is called.
type DocumentError struct {
	Path string
	Err  error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("step %s: failed to read document %s: %v", StepPrepareDocuments, e.Path, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// Step is always StepPrepareDocuments
func (e *DocumentError) Step() string {
	return StepPrepareDocuments
}

// RenderError is a report rendering failure scoped to one proposal
type RenderError struct {
	ProposalID uuid.UUID
	Err        error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render report for proposal %s: %v", e.ProposalID, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
