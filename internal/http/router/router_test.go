package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/straye-as/presales-api/internal/auth"
	"github.com/straye-as/presales-api/internal/config"
	"github.com/straye-as/presales-api/internal/domain"
	"github.com/straye-as/presales-api/internal/http/handler"
	"github.com/straye-as/presales-api/internal/http/middleware"
	"github.com/straye-as/presales-api/internal/report"
	"github.com/straye-as/presales-api/internal/repository"
	"github.com/straye-as/presales-api/internal/service"
	"github.com/straye-as/presales-api/internal/storage"
	"github.com/straye-as/presales-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testAPIKey = "router-test-key"

type tokenUser struct {
	user *auth.UserContext
}

func (s tokenUser) ValidateToken(string) (*auth.UserContext, error) {
	return s.user, nil
}

type staticProviders []domain.ProviderInfoDTO

func (p staticProviders) Providers() []domain.ProviderInfoDTO { return p }

func setupRouter(t *testing.T, roles ...auth.Role) http.Handler {
	t.Helper()
	logger := zap.NewNop()
	db := testutil.SetupTestDB(t)
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	cfg := &config.Config{
		App:       config.AppConfig{Environment: "development"},
		RateLimit: config.RateLimitConfig{Enabled: false},
	}

	proposalRepo := repository.NewProposalRepository(db)
	catalogService := service.NewCatalogService(repository.NewProfessionalRepository(db), repository.NewParameterRepository(db), logger)
	learningService := service.NewLearningService(proposalRepo, repository.NewMetricsRepository(db), service.DefaultLearningSettings(), logger)
	documentService := service.NewDocumentService(repository.NewDocumentRepository(db), store, 1<<20, logger)
	proposalService := service.NewProposalService(
		db, proposalRepo, catalogService, learningService,
		nil, nil, nil,
		report.NewRenderer(store, logger),
		store,
		service.ProposalSettings{MaxDocuments: 5},
		logger,
	)

	authMiddleware := auth.NewMiddlewareWithValidator(tokenUser{user: &auth.UserContext{
		UserID:      uuid.New(),
		DisplayName: "Test User",
		Roles:       roles,
	}}, testAPIKey, logger)

	rt := NewRouter(cfg, logger, db, authMiddleware, middleware.NewRateLimiter(&cfg.RateLimit, logger), Handlers{
		Proposal: handler.NewProposalHandler(proposalService, learningService, documentService, logger),
		Catalog:  handler.NewCatalogHandler(catalogService, logger),
		Document: handler.NewDocumentHandler(documentService, 1, logger),
		Provider: handler.NewProviderHandler(staticProviders{{ID: "anthropic", Default: true}}),
		Auth:     handler.NewAuthHandler(),
	})
	return rt.Setup()
}

func do(h http.Handler, method, path string, bearer bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if bearer {
		req.Header.Set("Authorization", "Bearer token")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRouter_Health(t *testing.T) {
	h := setupRouter(t)

	w := do(h, http.MethodGet, "/health", false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())

	w = do(h, http.MethodGet, "/health/ready", false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"healthy"`)
}

func TestRouter_RequiresAuthentication(t *testing.T) {
	h := setupRouter(t, auth.RoleEstimator)

	assert.Equal(t, http.StatusUnauthorized, do(h, http.MethodGet, "/api/v1/proposals", false).Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/api/v1/proposals", true).Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/parameters", nil)
	req.Header.Set("x-api-key", testAPIKey)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_RoleGates(t *testing.T) {
	estimator := setupRouter(t, auth.RoleEstimator)
	id := uuid.NewString()

	assert.Equal(t, http.StatusForbidden, do(estimator, http.MethodPost, "/api/v1/proposals/"+id+"/approve", true).Code)
	assert.Equal(t, http.StatusForbidden, do(estimator, http.MethodPost, "/api/v1/proposals/"+id+"/reject", true).Code)
	assert.Equal(t, http.StatusForbidden, do(estimator, http.MethodPut, "/api/v1/parameters/tax", true).Code)
	assert.Equal(t, http.StatusForbidden, do(estimator, http.MethodDelete, "/api/v1/professionals/"+id, true).Code)

	// generation sits outside the timeout group and still reaches its handler
	assert.Equal(t, http.StatusBadRequest, do(estimator, http.MethodPost, "/api/v1/proposals/generate", true).Code)

	reviewer := setupRouter(t, auth.RoleReviewer)
	// passes the role gate, then fails on the empty body
	assert.Equal(t, http.StatusBadRequest, do(reviewer, http.MethodPost, "/api/v1/proposals/"+id+"/approve", true).Code)
}

func TestRouter_ProvidersAndMe(t *testing.T) {
	h := setupRouter(t, auth.RoleEstimator)

	w := do(h, http.MethodGet, "/api/v1/providers", true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "anthropic")

	w = do(h, http.MethodGet, "/api/v1/auth/me", true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Test User")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
