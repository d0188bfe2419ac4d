package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/straye-as/presales-api/internal/allocation"
	"github.com/straye-as/presales-api/internal/domain"
	"github.com/straye-as/presales-api/internal/finance"
	"github.com/straye-as/presales-api/internal/storage"
	"go.uber.org/zap"
)

var validate = validator.New()

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// decodeAndValidate reads a JSON body into dst and runs the struct validation tags.
// It writes the error response itself and reports whether the handler may continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		respondValidationError(w, err)
		return false
	}
	return true
}

// parseID reads the {id} path parameter
func parseID(w http.ResponseWriter, r *http.Request, entity string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s ID format", entity))
		return uuid.Nil, false
	}
	return id, true
}

// parsePagination reads page and pageSize with the usual defaults
func parsePagination(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 {
		pageSize = 20
	}
	return page, pageSize
}

// respondValidationError sends a standardized validation error response with specific field messages
func respondValidationError(w http.ResponseWriter, err error) {
	fields := make(map[string]string)
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[toJSONFieldName(fe.Field())] = formatValidationError(fe)
		}
	}

	respondJSON(w, http.StatusBadRequest, domain.APIError{
		Type:   domain.ErrorTypeValidation,
		Title:  "Validation Error",
		Status: http.StatusBadRequest,
		Detail: "One or more fields failed validation",
		Errors: fields,
	})
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", toJSONFieldName(fe.Field()))
	case "max":
		return fmt.Sprintf("Must be at most %s", fe.Param())
	case "min":
		return fmt.Sprintf("Must be at least %s", fe.Param())
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s", fe.Param())
	case "gt":
		return fmt.Sprintf("Must be greater than %s", fe.Param())
	case "lte":
		return fmt.Sprintf("Must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", fe.Param())
	default:
		return domain.GetValidationMessage(fe.Tag())
	}
}

// toJSONFieldName converts a Go struct field name to its JSON equivalent (camelCase)
func toJSONFieldName(field string) string {
	if len(field) == 0 {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

// respondWithError sends a standardized JSON error response
func respondWithError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, domain.APIError{
		Type:   getErrorType(status),
		Title:  http.StatusText(status),
		Status: status,
		Detail: message,
	})
}

// respondServiceError maps a service error onto its HTTP status. Unexpected errors are
// logged and answered with a generic 500.
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error, action string) {
	var (
		validationErr *domain.ValidationError
		providerErr   *domain.ProviderError
		inputErr      *finance.InputError
		truncErr      *allocation.TruncationError
		docErr        *domain.DocumentError
	)

	switch {
	case errors.As(err, &docErr):
		if !errors.Is(err, storage.ErrNotFound) && !errors.Is(err, storage.ErrDocumentTooLarge) && !errors.Is(err, storage.ErrInvalidPath) {
			logger.Error("document preparation failed", zap.String("action", action), zap.String("path", docErr.Path), zap.Error(err))
			respondJSON(w, http.StatusInternalServerError, domain.APIError{
				Type:   domain.ErrorTypeInternal,
				Title:  http.StatusText(http.StatusInternalServerError),
				Status: http.StatusInternalServerError,
				Detail: fmt.Sprintf("Failed to %s", action),
				Errors: map[string]string{"step": docErr.Step()},
			})
			return
		}
		respondJSON(w, http.StatusBadRequest, domain.APIError{
			Type:   domain.ErrorTypeValidation,
			Title:  "Validation Error",
			Status: http.StatusBadRequest,
			Detail: err.Error(),
			Errors: map[string]string{"step": docErr.Step(), "documentPaths": docErr.Path},
		})

	case errors.As(err, &validationErr):
		apiErr := domain.APIError{
			Type:   domain.ErrorTypeValidation,
			Title:  "Validation Error",
			Status: http.StatusBadRequest,
			Detail: validationErr.Error(),
		}
		if validationErr.Field != "" {
			apiErr.Errors = map[string]string{validationErr.Field: validationErr.Message}
		}
		respondJSON(w, http.StatusBadRequest, apiErr)

	case errors.As(err, &truncErr):
		respondJSON(w, http.StatusBadRequest, domain.APIError{
			Type:   domain.ErrorTypeValidation,
			Title:  "Validation Error",
			Status: http.StatusBadRequest,
			Detail: err.Error(),
			Errors: map[string]string{"durationMonths": "Set truncateHours to drop hours in trailing months"},
		})

	case errors.As(err, &inputErr), errors.Is(err, domain.ErrValidation):
		respondWithError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, domain.ErrNotFound):
		respondWithError(w, http.StatusNotFound, capitalize(err.Error()))

	case errors.Is(err, domain.ErrConflict):
		respondWithError(w, http.StatusConflict, err.Error())

	case errors.As(err, &providerErr):
		logger.Warn("provider failure", zap.String("action", action), zap.Error(err))
		respondJSON(w, http.StatusBadGateway, domain.APIError{
			Type:   domain.ErrorTypeProvider,
			Title:  "AI Provider Error",
			Status: http.StatusBadGateway,
			Detail: providerErr.Reason,
			Errors: map[string]string{
				"step":     providerErr.Step,
				"provider": providerErr.Provider,
				"model":    providerErr.Model,
			},
		})

	default:
		logger.Error("request failed", zap.String("action", action), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to %s", action))
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// getErrorType returns the appropriate error type for an HTTP status code
func getErrorType(status int) string {
	switch status {
	case http.StatusBadRequest:
		return domain.ErrorTypeBadRequest
	case http.StatusUnauthorized:
		return domain.ErrorTypeUnauthorized
	case http.StatusForbidden:
		return domain.ErrorTypeForbidden
	case http.StatusNotFound:
		return domain.ErrorTypeNotFound
	case http.StatusConflict:
		return domain.ErrorTypeConflict
	case http.StatusBadGateway:
		return domain.ErrorTypeProvider
	default:
		return domain.ErrorTypeInternal
	}
}
