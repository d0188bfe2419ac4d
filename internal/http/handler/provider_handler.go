package handler

import (
	"net/http"

	"github.com/straye-as/presales-api/internal/domain"
)

// ProviderLister exposes the configured AI providers
type ProviderLister interface {
	Providers() []domain.ProviderInfoDTO
}

type ProviderHandler struct {
	providers ProviderLister
}

func NewProviderHandler(providers ProviderLister) *ProviderHandler {
	return &ProviderHandler{providers: providers}
}

// List godoc
// @Summary List AI providers
// @Description Providers with credentials configured, their models and which one is the default
// @Tags Providers
// @Produce json
// @Success 200 {array} domain.ProviderInfoDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /providers [get]
func (h *ProviderHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.providers.Providers())
}
