package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/straye-as/presales-api/internal/auth"
	"github.com/straye-as/presales-api/internal/domain"
	"github.com/straye-as/presales-api/internal/report"
	"github.com/straye-as/presales-api/internal/repository"
	"github.com/straye-as/presales-api/internal/service"
	"github.com/straye-as/presales-api/internal/storage"
	"github.com/straye-as/presales-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testHandlers struct {
	db        *gorm.DB
	proposals *ProposalHandler
	catalog   *CatalogHandler
	documents *DocumentHandler
}

func setupHandlers(t *testing.T) *testHandlers {
	t.Helper()
	logger := zap.NewNop()
	db := testutil.SetupTestDB(t)
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

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

	return &testHandlers{
		db:        db,
		proposals: NewProposalHandler(proposalService, learningService, documentService, logger),
		catalog:   NewCatalogHandler(catalogService, logger),
		documents: NewDocumentHandler(documentService, 1, logger),
	}
}

func reviewerContext() context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      uuid.New(),
		DisplayName: "Rita Reviewer",
		Email:       "rita@example.com",
		Roles:       []auth.Role{auth.RoleReviewer},
	})
}

// withChiContext adds Chi route context with the given URL parameters
func withChiContext(ctx context.Context, params map[string]string) context.Context {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return context.WithValue(ctx, chi.RouteCtxKey, rctx)
}

func jsonRequest(t *testing.T, method, target string, body interface{}, params map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(withChiContext(reviewerContext(), params))
}

func decodeAPIError(t *testing.T, rr *httptest.ResponseRecorder) domain.APIError {
	t.Helper()
	var apiErr domain.APIError
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &apiErr))
	return apiErr
}

func createGeneratedProposal(t *testing.T, db *gorm.DB) *domain.Proposal {
	t.Helper()
	professional := testutil.CreateTestProfessional(t, db, "Ana", "Backend Developer", 100)
	proposal := &domain.Proposal{
		Status:            domain.ProposalStatusGenerated,
		ClientName:        "Acme",
		ProjectName:       "Customer Portal",
		Complexity:        domain.ComplexityMedium,
		DurationMonths:    2,
		TotalCost:         decimal.NewFromInt(26620),
		TotalPrice:        decimal.RequireFromString("35493.33"),
		OriginalTotalCost: decimal.NewFromInt(26620),
		Resources: []domain.ProposalResource{{
			ProfessionalID: professional.ID,
			Role:           "Backend Developer",
			HoursPerMonth:  []float64{100, 100},
			TotalHours:     200,
			HourlyRate:     decimal.NewFromInt(100),
			Cost:           decimal.NewFromInt(26620),
			Price:          decimal.RequireFromString("35493.33"),
		}},
	}
	require.NoError(t, db.Create(proposal).Error)
	return proposal
}

func TestProposalHandler_GetByID(t *testing.T) {
	h := setupHandlers(t)
	proposal := createGeneratedProposal(t, h.db)

	t.Run("found", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.proposals.GetByID(rr, jsonRequest(t, http.MethodGet, "/proposals/x", nil, map[string]string{"id": proposal.ID.String()}))
		require.Equal(t, http.StatusOK, rr.Code)

		var dto domain.ProposalDTO
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &dto))
		assert.Equal(t, proposal.ID, dto.ID)
		assert.Equal(t, domain.ProposalStatusGenerated, dto.Status)
	})

	t.Run("invalid id", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.proposals.GetByID(rr, jsonRequest(t, http.MethodGet, "/proposals/x", nil, map[string]string{"id": "not-a-uuid"}))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown id", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.proposals.GetByID(rr, jsonRequest(t, http.MethodGet, "/proposals/x", nil, map[string]string{"id": uuid.New().String()}))
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, domain.ErrorTypeNotFound, decodeAPIError(t, rr).Type)
	})
}

func TestProposalHandler_List(t *testing.T) {
	h := setupHandlers(t)
	createGeneratedProposal(t, h.db)

	rr := httptest.NewRecorder()
	h.proposals.List(rr, jsonRequest(t, http.MethodGet, "/proposals?status=generated&clientName=Acme", nil, nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var page struct {
		Data  []domain.ProposalDTO `json:"data"`
		Total int64                `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Data, 1)

	rr = httptest.NewRecorder()
	h.proposals.List(rr, jsonRequest(t, http.MethodGet, "/proposals?status=archived", nil, nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	h.proposals.List(rr, jsonRequest(t, http.MethodGet, "/proposals?complexity=extreme", nil, nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestProposalHandler_ApproveAndDownload(t *testing.T) {
	h := setupHandlers(t)
	proposal := createGeneratedProposal(t, h.db)
	params := map[string]string{"id": proposal.ID.String()}
	rating := 4

	rr := httptest.NewRecorder()
	h.proposals.Approve(rr, jsonRequest(t, http.MethodPost, "/proposals/x/approve", domain.ApproveProposalRequest{Rating: &rating}, params))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var result domain.ApproveProposalResultDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, domain.ProposalStatusExcelGenerated, result.Proposal.Status)
	assert.Empty(t, result.ReportError)

	rr = httptest.NewRecorder()
	h.proposals.DownloadReport(rr, jsonRequest(t, http.MethodGet, "/proposals/x/report", nil, params))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, report.ContentType, rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "proposal-Customer-Portal.xlsx")
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("PK")), "xlsx is a zip archive")

	// approved proposals cannot be approved again
	rr = httptest.NewRecorder()
	h.proposals.Approve(rr, jsonRequest(t, http.MethodPost, "/proposals/x/approve", domain.ApproveProposalRequest{}, params))
	assert.Equal(t, http.StatusConflict, rr.Code)

	// no metrics are stored for an unmodified estimate
	rr = httptest.NewRecorder()
	h.proposals.Metrics(rr, jsonRequest(t, http.MethodGet, "/proposals/x/metrics", nil, params))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestProposalHandler_ApproveValidation(t *testing.T) {
	h := setupHandlers(t)
	proposal := createGeneratedProposal(t, h.db)
	rating := 9

	rr := httptest.NewRecorder()
	h.proposals.Approve(rr, jsonRequest(t, http.MethodPost, "/proposals/x/approve", domain.ApproveProposalRequest{Rating: &rating}, map[string]string{"id": proposal.ID.String()}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, domain.ErrorTypeValidation, decodeAPIError(t, rr).Type)
}

func TestProposalHandler_RejectThenEdit(t *testing.T) {
	h := setupHandlers(t)
	proposal := createGeneratedProposal(t, h.db)
	params := map[string]string{"id": proposal.ID.String()}

	rr := httptest.NewRecorder()
	h.proposals.Reject(rr, jsonRequest(t, http.MethodPost, "/proposals/x/reject", domain.RejectProposalRequest{Reason: "Budget cut"}, params))
	require.Equal(t, http.StatusOK, rr.Code)

	name := "Renamed"
	rr = httptest.NewRecorder()
	h.proposals.Update(rr, jsonRequest(t, http.MethodPut, "/proposals/x", domain.UpdateProposalRequest{ProjectName: &name}, params))
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, domain.ErrorTypeConflict, decodeAPIError(t, rr).Type)
}

func TestProposalHandler_GenerateRejectsUnknownDocuments(t *testing.T) {
	h := setupHandlers(t)
	professional := testutil.CreateTestProfessional(t, h.db, "Ana", "Backend Developer", 100)

	rr := httptest.NewRecorder()
	h.proposals.Generate(rr, jsonRequest(t, http.MethodPost, "/proposals/generate", domain.GenerateProposalRequest{
		ClientName:      "Acme",
		ProjectName:     "Portal",
		DocumentPaths:   []string{"documents/never-uploaded.pdf"},
		ProfessionalIDs: []uuid.UUID{professional.ID},
	}, nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	h.proposals.Generate(rr, jsonRequest(t, http.MethodPost, "/proposals/generate", map[string]string{"clientName": "Acme"}, nil))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	apiErr := decodeAPIError(t, rr)
	assert.Contains(t, apiErr.Errors, "projectName")
	assert.Contains(t, apiErr.Errors, "documentPaths")
}

func TestDocumentHandler_Upload(t *testing.T) {
	h := setupHandlers(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "scope.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("Booking platform with Stripe payments"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/documents", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	h.documents.Upload(rr, req.WithContext(reviewerContext()))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var doc domain.DocumentDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &doc))
	assert.Equal(t, "scope.txt", doc.Filename)
	assert.True(t, strings.HasPrefix(doc.ContentType, "text/plain"))

	rr = httptest.NewRecorder()
	h.documents.GetByID(rr, jsonRequest(t, http.MethodGet, "/documents/x", nil, map[string]string{"id": doc.ID.String()}))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	h.documents.Upload(rr, httptest.NewRequest(http.MethodPost, "/documents", strings.NewReader("plain body")))
	assert.NotEqual(t, http.StatusCreated, rr.Code)
}

func TestCatalogHandler_Professionals(t *testing.T) {
	h := setupHandlers(t)

	rr := httptest.NewRecorder()
	h.catalog.CreateProfessional(rr, jsonRequest(t, http.MethodPost, "/professionals", domain.CreateProfessionalRequest{
		Role: "QA Engineer", HourlyRate: 70,
	}, nil))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "name is required", decodeAPIError(t, rr).Errors["name"])

	rr = httptest.NewRecorder()
	h.catalog.CreateProfessional(rr, jsonRequest(t, http.MethodPost, "/professionals", domain.CreateProfessionalRequest{
		Name: "Carla", Role: "QA Engineer", HourlyRate: 70,
	}, nil))
	require.Equal(t, http.StatusCreated, rr.Code)

	var created domain.ProfessionalDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

	rr = httptest.NewRecorder()
	h.catalog.DeleteProfessional(rr, jsonRequest(t, http.MethodDelete, "/professionals/x", nil, map[string]string{"id": created.ID.String()}))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = httptest.NewRecorder()
	h.catalog.GetProfessional(rr, jsonRequest(t, http.MethodGet, "/professionals/x", nil, map[string]string{"id": created.ID.String()}))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCatalogHandler_Parameters(t *testing.T) {
	h := setupHandlers(t)

	rr := httptest.NewRecorder()
	h.catalog.UpdateParameter(rr, jsonRequest(t, http.MethodPut, "/parameters/margin", domain.UpdateParameterRequest{Value: 0.3}, map[string]string{"name": "margin"}))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	h.catalog.UpdateParameter(rr, jsonRequest(t, http.MethodPut, "/parameters/margin", domain.UpdateParameterRequest{Value: 1}, map[string]string{"name": "margin"}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	h.catalog.UpdateParameter(rr, jsonRequest(t, http.MethodPut, "/parameters/discount", domain.UpdateParameterRequest{Value: 0.1}, map[string]string{"name": "discount"}))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	h.catalog.ListParameters(rr, jsonRequest(t, http.MethodGet, "/parameters", nil, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var params []domain.ParameterDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &params))
	assert.Len(t, params, 3)
}

func TestRespondServiceError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		typ    string
	}{
		{"validation", domain.NewValidationError("rating", "out of range"), http.StatusBadRequest, domain.ErrorTypeValidation},
		{"not found", service.ErrProposalNotFound, http.StatusNotFound, domain.ErrorTypeNotFound},
		{"conflict", &domain.ConflictError{ProposalID: uuid.New(), Status: domain.ProposalStatusRejected, Action: "edit"}, http.StatusConflict, domain.ErrorTypeConflict},
		{"provider", &domain.ProviderError{Step: domain.StepEstimateTeam, Provider: "openai", Model: "gpt-4o", Attempts: 3, Reason: "timeout"}, http.StatusBadGateway, domain.ErrorTypeProvider},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, domain.ErrorTypeInternal},
		{"missing document", &domain.DocumentError{Path: "documents/rfp.pdf", Err: fmt.Errorf("%w: documents/rfp.pdf", storage.ErrNotFound)}, http.StatusBadRequest, domain.ErrorTypeValidation},
		{"oversized document", &domain.DocumentError{Path: "documents/rfp.pdf", Err: storage.ErrDocumentTooLarge}, http.StatusBadRequest, domain.ErrorTypeValidation},
		{"unreadable document", &domain.DocumentError{Path: "documents/rfp.pdf", Err: errors.New("connection reset")}, http.StatusInternalServerError, domain.ErrorTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			respondServiceError(rr, zap.NewNop(), tt.err, "do things")
			assert.Equal(t, tt.status, rr.Code)
			apiErr := decodeAPIError(t, rr)
			assert.Equal(t, tt.typ, apiErr.Type)
			if tt.typ == domain.ErrorTypeProvider {
				assert.Equal(t, domain.StepEstimateTeam, apiErr.Errors["step"])
			}
			if tt.typ == domain.ErrorTypeInternal {
				assert.Equal(t, "Failed to do things", apiErr.Detail)
			}
			var docErr *domain.DocumentError
			if errors.As(tt.err, &docErr) {
				assert.Equal(t, domain.StepPrepareDocuments, apiErr.Errors["step"])
				if tt.status == http.StatusBadRequest {
					assert.Equal(t, "documents/rfp.pdf", apiErr.Errors["documentPaths"])
				}
			}
		})
	}
}

func TestAuthHandler_Me(t *testing.T) {
	h := NewAuthHandler()

	rr := httptest.NewRecorder()
	h.Me(rr, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = httptest.NewRecorder()
	h.Me(rr, httptest.NewRequest(http.MethodGet, "/auth/me", nil).WithContext(reviewerContext()))
	require.Equal(t, http.StatusOK, rr.Code)

	var user domain.AuthUserDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &user))
	assert.Equal(t, "rita@example.com", user.Email)
	assert.Equal(t, []string{"reviewer"}, user.Roles)
}
