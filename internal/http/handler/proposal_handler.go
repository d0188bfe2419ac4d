package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/straye-as/presales-api/internal/domain"
	"github.com/straye-as/presales-api/internal/report"
	"github.com/straye-as/presales-api/internal/repository"
	"github.com/straye-as/presales-api/internal/service"
	"go.uber.org/zap"
)

// ProposalHandler handles HTTP requests for proposal operations
type ProposalHandler struct {
	proposalService *service.ProposalService
	learningService *service.LearningService
	documentService *service.DocumentService
	logger          *zap.Logger
}

// NewProposalHandler creates a new proposal handler instance
func NewProposalHandler(
	proposalService *service.ProposalService,
	learningService *service.LearningService,
	documentService *service.DocumentService,
	logger *zap.Logger,
) *ProposalHandler {
	return &ProposalHandler{
		proposalService: proposalService,
		learningService: learningService,
		documentService: documentService,
		logger:          logger,
	}
}

// Generate godoc
// @Summary Generate a proposal
// @Description Run the three-step AI estimation on uploaded documents and price the result against the selected professionals
// @Tags Proposals
// @Accept json
// @Produce json
// @Param request body domain.GenerateProposalRequest true "Generation request"
// @Success 201 {object} domain.GenerateProposalResultDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.ErrorResponse
// @Failure 502 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /proposals/generate [post]
func (h *ProposalHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req domain.GenerateProposalRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.documentService.VerifyPaths(r.Context(), req.DocumentPaths); err != nil {
		respondServiceError(w, h.logger, err, "generate proposal")
		return
	}

	result, err := h.proposalService.Generate(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "generate proposal")
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

// List godoc
// @Summary List proposals
// @Description Get paginated list of proposals with optional filters
// @Tags Proposals
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param status query string false "Filter by status" Enums(draft, generated, under_review, approved, excel_generated, rejected)
// @Param complexity query string false "Filter by complexity" Enums(low, medium, high)
// @Param clientName query string false "Filter by client name"
// @Param search query string false "Search client, project and description"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ProposalDTO}
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /proposals [get]
func (h *ProposalHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	q := r.URL.Query()

	filters := repository.ProposalFilters{
		ClientName: q.Get("clientName"),
		Search:     q.Get("search"),
	}
	if v := q.Get("status"); v != "" {
		status := domain.ProposalStatus(v)
		if !status.IsValid() {
			respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid status: %s", v))
			return
		}
		filters.Status = &status
	}
	if v := q.Get("complexity"); v != "" {
		complexity := domain.Complexity(v)
		if !complexity.IsValid() {
			respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid complexity: %s", v))
			return
		}
		filters.Complexity = &complexity
	}

	result, err := h.proposalService.List(r.Context(), page, pageSize, filters)
	if err != nil {
		respondServiceError(w, h.logger, err, "list proposals")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GetByID godoc
// @Summary Get proposal
// @Tags Proposals
// @Produce json
// @Param id path string true "Proposal ID" format(uuid)
// @Success 200 {object} domain.ProposalDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /proposals/{id} [get]
func (h *ProposalHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "proposal")
	if !ok {
		return
	}

	proposal, err := h.proposalService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get proposal")
		return
	}
	respondJSON(w, http.StatusOK, proposal)
}

// Update godoc
// @Summary Edit proposal
// @Description Partial update. Changing the duration resizes every resource; set truncateHours to allow dropping allocated months.
// @Tags Proposals
// @Accept json
// @Produce json
// @Param id path string true "Proposal ID" format(uuid)
// @Param request body domain.UpdateProposalRequest true "Changes"
// @Success 200 {object} domain.ProposalDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /proposals/{id} [put]
func (h *ProposalHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "proposal")
	if !ok {
		return
	}
	var req domain.UpdateProposalRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	proposal, err := h.proposalService.Edit(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update proposal")
		return
	}
	respondJSON(w, http.StatusOK, proposal)
}

// UpdateResources godoc
// @Summary Update resource allocations
// @Description Update, add or remove resource lines. Weekly hours are folded into months; totals are repriced.
// @Tags Proposals
// @Accept json
// @Produce json
// @Param id path string true "Proposal ID" format(uuid)
// @Param request body domain.UpdateResourcesRequest true "Resource changes"
// @Success 200 {object} domain.ProposalDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /proposals/{id}/resources [put]
func (h *ProposalHandler) UpdateResources(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "proposal")
	if !ok {
		return
	}
	var req domain.UpdateResourcesRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	proposal, err := h.proposalService.UpdateResourceAllocations(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update proposal resources")
		return
	}
	respondJSON(w, http.StatusOK, proposal)
}

// Approve godoc
// @Summary Approve proposal
// @Description Records the verdict, scores the AI estimate and renders the Excel report. A render failure is returned in reportError.
// @Tags Proposals
// @Accept json
// @Produce json
// @Param id path string true "Proposal ID" format(uuid)
// @Param request body domain.ApproveProposalRequest true "Feedback"
// @Success 200 {object} domain.ApproveProposalResultDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /proposals/{id}/approve [post]
func (h *ProposalHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "proposal")
	if !ok {
		return
	}
	var req domain.ApproveProposalRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.proposalService.Approve(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "approve proposal")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Reject godoc
// @Summary Reject proposal
// @Tags Proposals
// @Accept json
// @Produce json
// @Param id path string true "Proposal ID" format(uuid)
// @Param request body domain.RejectProposalRequest true "Reason"
// @Success 200 {object} domain.ProposalDTO
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /proposals/{id}/reject [post]
func (h *ProposalHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "proposal")
	if !ok {
		return
	}
	var req domain.RejectProposalRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	proposal, err := h.proposalService.Reject(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "reject proposal")
		return
	}
	respondJSON(w, http.StatusOK, proposal)
}

// RenderReport godoc
// @Summary Render report
// @Description Re-render the Excel report of an approved proposal
// @Tags Proposals
// @Produce json
// @Param id path string true "Proposal ID" format(uuid)
// @Success 200 {object} domain.ProposalDTO
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /proposals/{id}/report [post]
func (h *ProposalHandler) RenderReport(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "proposal")
	if !ok {
		return
	}

	proposal, err := h.proposalService.RenderReport(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "render report")
		return
	}
	respondJSON(w, http.StatusOK, proposal)
}

// DownloadReport godoc
// @Summary Download report
// @Tags Proposals
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Proposal ID" format(uuid)
// @Success 200 {file} binary
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /proposals/{id}/report [get]
func (h *ProposalHandler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "proposal")
	if !ok {
		return
	}

	rc, filename, err := h.proposalService.DownloadReport(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "download report")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("report download interrupted", zap.String("proposal_id", id.String()), zap.Error(err))
	}
}

// Delete godoc
// @Summary Delete proposal
// @Tags Proposals
// @Param id path string true "Proposal ID" format(uuid)
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /proposals/{id} [delete]
func (h *ProposalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "proposal")
	if !ok {
		return
	}

	if err := h.proposalService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete proposal")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Metrics godoc
// @Summary Get proposal accuracy metrics
// @Tags Learning
// @Produce json
// @Param id path string true "Proposal ID" format(uuid)
// @Success 200 {object} domain.ProposalMetricsDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /proposals/{id}/metrics [get]
func (h *ProposalHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "proposal")
	if !ok {
		return
	}

	metrics, err := h.learningService.Metrics(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get metrics")
		return
	}
	respondJSON(w, http.StatusOK, metrics)
}

// AccuracySummary godoc
// @Summary Accuracy summary
// @Description Average accuracy of the AI estimates across approved, modified proposals
// @Tags Learning
// @Produce json
// @Success 200 {object} domain.AccuracySummaryDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /learning/accuracy [get]
func (h *ProposalHandler) AccuracySummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.learningService.AccuracySummary(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "get accuracy summary")
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
