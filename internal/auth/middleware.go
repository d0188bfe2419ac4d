package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/straye-as/presales-api/internal/config"
	"go.uber.org/zap"
)

// TokenValidator turns a bearer token into a user context
type TokenValidator interface {
	ValidateToken(token string) (*UserContext, error)
}

// Middleware handles authentication for HTTP requests
type Middleware struct {
	validator TokenValidator
	apiKey    string
	logger    *zap.Logger
}

// NewMiddleware creates a new authentication middleware
func NewMiddleware(cfg *config.Config, logger *zap.Logger) *Middleware {
	return NewMiddlewareWithValidator(NewJWTValidator(&cfg.AzureAd), cfg.ApiKey.Value, logger)
}

// NewMiddlewareWithValidator creates a middleware around an existing token validator
func NewMiddlewareWithValidator(v TokenValidator, apiKey string, logger *zap.Logger) *Middleware {
	return &Middleware{validator: v, apiKey: apiKey, logger: logger}
}

// Authenticate accepts either the x-api-key header or an Azure AD bearer token
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		if apiKey := r.Header.Get("x-api-key"); apiKey != "" {
			if !m.validateAPIKey(apiKey) {
				m.logger.Warn("invalid API key attempt",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			userCtx := &UserContext{
				UserID:      SystemUserID,
				DisplayName: "System",
				Email:       "system@straye.io",
				Roles:       []Role{RoleAPIService},
			}
			m.logAuthenticated(r, "api_key", userCtx, start)
			next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), userCtx)))
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Unauthorized: missing authorization header", http.StatusUnauthorized)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			http.Error(w, "Unauthorized: invalid authorization header format", http.StatusUnauthorized)
			return
		}

		userCtx, err := m.validator.ValidateToken(parts[1])
		if err != nil {
			m.logger.Warn("token validation failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Error(err),
			)
			http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
			return
		}

		m.logAuthenticated(r, "jwt", userCtx, start)
		next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), userCtx)))
	})
}

func (m *Middleware) logAuthenticated(r *http.Request, authType string, userCtx *UserContext, start time.Time) {
	m.logger.Info("request authenticated",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("auth_type", authType),
		zap.String("user_id", userCtx.UserID.String()),
		zap.String("user_email", userCtx.Email),
		zap.Strings("roles", userCtx.RolesAsStrings()),
		zap.Duration("auth_duration", time.Since(start)),
	)
}

// RequireRole middleware ensures user has one of the roles
func (m *Middleware) RequireRole(roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userCtx, ok := FromContext(r.Context())
			if !ok {
				http.Error(w, "Forbidden: no user context", http.StatusForbidden)
				return
			}

			if !userCtx.HasAnyRole(roles...) {
				m.logger.Warn("role check failed",
					zap.String("path", r.URL.Path),
					zap.String("user_id", userCtx.UserID.String()),
					zap.Strings("roles", userCtx.RolesAsStrings()),
				)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (m *Middleware) validateAPIKey(key string) bool {
	if m.apiKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(m.apiKey)) == 1
}
