package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/straye-as/presales-api/internal/domain"
	"github.com/straye-as/presales-api/internal/service"
	"go.uber.org/zap"
)

// CatalogHandler serves the professional catalog and the pricing parameters
type CatalogHandler struct {
	catalogService *service.CatalogService
	logger         *zap.Logger
}

func NewCatalogHandler(catalogService *service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// ListProfessionals godoc
// @Summary List professionals
// @Tags Professionals
// @Produce json
// @Param active query bool false "Only active professionals"
// @Success 200 {array} domain.ProfessionalDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /professionals [get]
func (h *CatalogHandler) ListProfessionals(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	professionals, err := h.catalogService.ListProfessionals(r.Context(), activeOnly)
	if err != nil {
		respondServiceError(w, h.logger, err, "list professionals")
		return
	}
	respondJSON(w, http.StatusOK, professionals)
}

// GetProfessional godoc
// @Summary Get professional
// @Tags Professionals
// @Produce json
// @Param id path string true "Professional ID" format(uuid)
// @Success 200 {object} domain.ProfessionalDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /professionals/{id} [get]
func (h *CatalogHandler) GetProfessional(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "professional")
	if !ok {
		return
	}

	professional, err := h.catalogService.GetProfessional(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get professional")
		return
	}
	respondJSON(w, http.StatusOK, professional)
}

// CreateProfessional godoc
// @Summary Create professional
// @Tags Professionals
// @Accept json
// @Produce json
// @Param request body domain.CreateProfessionalRequest true "Professional"
// @Success 201 {object} domain.ProfessionalDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /professionals [post]
func (h *CatalogHandler) CreateProfessional(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateProfessionalRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	professional, err := h.catalogService.CreateProfessional(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create professional")
		return
	}
	respondJSON(w, http.StatusCreated, professional)
}

// UpdateProfessional godoc
// @Summary Update professional
// @Tags Professionals
// @Accept json
// @Produce json
// @Param id path string true "Professional ID" format(uuid)
// @Param request body domain.UpdateProfessionalRequest true "Professional"
// @Success 200 {object} domain.ProfessionalDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /professionals/{id} [put]
func (h *CatalogHandler) UpdateProfessional(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "professional")
	if !ok {
		return
	}
	var req domain.UpdateProfessionalRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	professional, err := h.catalogService.UpdateProfessional(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update professional")
		return
	}
	respondJSON(w, http.StatusOK, professional)
}

// DeleteProfessional godoc
// @Summary Delete professional
// @Description Fails with 409 while any proposal still references the professional
// @Tags Professionals
// @Param id path string true "Professional ID" format(uuid)
// @Success 204
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /professionals/{id} [delete]
func (h *CatalogHandler) DeleteProfessional(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "professional")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteProfessional(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete professional")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListParameters godoc
// @Summary List pricing parameters
// @Description Tax, overhead and margin rates used by the cost cascade
// @Tags Parameters
// @Produce json
// @Success 200 {array} domain.ParameterDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /parameters [get]
func (h *CatalogHandler) ListParameters(w http.ResponseWriter, r *http.Request) {
	params, err := h.catalogService.Parameters(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "list parameters")
		return
	}
	respondJSON(w, http.StatusOK, params)
}

// UpdateParameter godoc
// @Summary Update pricing parameter
// @Tags Parameters
// @Accept json
// @Produce json
// @Param name path string true "Parameter name" Enums(tax, overhead, margin)
// @Param request body domain.UpdateParameterRequest true "Value"
// @Success 200 {object} domain.ParameterDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /parameters/{name} [put]
func (h *CatalogHandler) UpdateParameter(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateParameterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	param, err := h.catalogService.UpdateParameter(r.Context(), chi.URLParam(r, "name"), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update parameter")
		return
	}
	respondJSON(w, http.StatusOK, param)
}
