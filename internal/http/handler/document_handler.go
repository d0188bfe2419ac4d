package handler

import (
	"fmt"
	"net/http"

	"github.com/straye-as/presales-api/internal/service"
	"go.uber.org/zap"
)

type DocumentHandler struct {
	documentService *service.DocumentService
	maxUploadMB     int64
	logger          *zap.Logger
}

func NewDocumentHandler(documentService *service.DocumentService, maxUploadMB int64, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		maxUploadMB:     maxUploadMB,
		logger:          logger,
	}
}

// @Summary Upload project document
// @Description Stores a scope document for later proposal generation. The returned path goes into documentPaths.
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document to upload"
// @Success 201 {object} domain.DocumentDTO
// @Failure 400 {object} domain.APIError
// @Failure 413 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents [post]
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	limit := h.maxUploadMB * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(limit); err != nil {
		respondWithError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large: maximum size is %dMB", h.maxUploadMB))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid file upload: file field is required")
		return
	}
	defer file.Close()

	doc, err := h.documentService.Upload(r.Context(), header.Filename, file)
	if err != nil {
		respondServiceError(w, h.logger, err, "upload document")
		return
	}
	respondJSON(w, http.StatusCreated, doc)
}

// @Summary List documents
// @Tags Documents
// @Produce json
// @Success 200 {array} domain.DocumentDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents [get]
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.documentService.List(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "list documents")
		return
	}
	respondJSON(w, http.StatusOK, docs)
}

// @Summary Get document metadata
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID" format(uuid)
// @Success 200 {object} domain.DocumentDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/{id} [get]
func (h *DocumentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "document")
	if !ok {
		return
	}

	doc, err := h.documentService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get document")
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

// @Summary Delete document
// @Tags Documents
// @Param id path string true "Document ID" format(uuid)
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/{id} [delete]
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "document")
	if !ok {
		return
	}

	if err := h.documentService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete document")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
