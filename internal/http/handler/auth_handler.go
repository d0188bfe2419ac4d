package handler

import (
	"net/http"

	"github.com/straye-as/presales-api/internal/auth"
	"github.com/straye-as/presales-api/internal/domain"
)

type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// Me godoc
// @Summary Get current authenticated user
// @Description Returns the caller's identity and application roles
// @Tags Auth
// @Produce json
// @Success 200 {object} domain.AuthUserDTO
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, domain.ErrorResponse{
			Error: "unauthorized",
		})
		return
	}

	respondJSON(w, http.StatusOK, domain.AuthUserDTO{
		ID:    userCtx.UserID.String(),
		Name:  userCtx.DisplayName,
		Email: userCtx.Email,
		Roles: userCtx.RolesAsStrings(),
	})
}
