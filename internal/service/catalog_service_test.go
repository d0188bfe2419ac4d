package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/straye-as/presales-api/internal/domain"
	"github.com/straye-as/presales-api/internal/finance"
	"github.com/straye-as/presales-api/internal/repository"
	"github.com/straye-as/presales-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestCatalog(t *testing.T) (*CatalogService, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return NewCatalogService(repository.NewProfessionalRepository(db), repository.NewParameterRepository(db), zap.NewNop()), db
}

func TestCatalogService_Rates(t *testing.T) {
	svc, _ := newTestCatalog(t)
	ctx := context.Background()

	rates, err := svc.Rates(ctx)
	require.NoError(t, err)
	assert.True(t, rates.Tax.Equal(finance.DefaultRates().Tax))
	assert.True(t, rates.Margin.Equal(finance.DefaultRates().Margin))

	_, err = svc.UpdateParameter(ctx, domain.ParameterMargin, &domain.UpdateParameterRequest{Value: 0.3})
	require.NoError(t, err)
	rates, err = svc.Rates(ctx)
	require.NoError(t, err)
	assert.True(t, rates.Margin.Equal(decimal.RequireFromString("0.3")), rates.Margin.String())

	_, err = svc.UpdateParameter(ctx, domain.ParameterMargin, &domain.UpdateParameterRequest{Value: 1})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = svc.UpdateParameter(ctx, "discount", &domain.UpdateParameterRequest{Value: 0.1})
	assert.True(t, errors.Is(err, ErrParameterNotFound))

	params, err := svc.Parameters(ctx)
	require.NoError(t, err)
	require.Len(t, params, 3)
	assert.Equal(t, domain.ParameterTax, params[0].Name)
}

func TestCatalogService_Professionals(t *testing.T) {
	svc, db := newTestCatalog(t)
	ctx := context.Background()

	inactive := false
	created, err := svc.CreateProfessional(ctx, &domain.CreateProfessionalRequest{
		Name: "Carla", Role: "QA Engineer", HourlyRate: 70, Seniority: domain.SeniorityMid, Active: &inactive,
	})
	require.NoError(t, err)
	active := testutil.CreateTestProfessional(t, db, "Ana", "Backend Developer", 100)

	all, err := svc.ListProfessionals(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyActive, err := svc.ListProfessionals(ctx, true)
	require.NoError(t, err)
	require.Len(t, onlyActive, 1)
	assert.Equal(t, active.ID, onlyActive[0].ID)

	selected, err := svc.SelectProfessionals(ctx, []uuid.UUID{created.ID, active.ID})
	require.NoError(t, err)
	require.Len(t, selected, 2)
	assert.Equal(t, created.ID, selected[0].ID)

	_, err = svc.SelectProfessionals(ctx, []uuid.UUID{active.ID, uuid.New()})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	updated, err := svc.UpdateProfessional(ctx, created.ID, &domain.UpdateProfessionalRequest{
		Name: "Carla", Role: "QA Engineer", HourlyRate: 75, Active: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 75.0, updated.HourlyRate)
	assert.True(t, updated.Active)

	require.NoError(t, db.Create(&domain.Proposal{
		Status:      domain.ProposalStatusGenerated,
		ClientName:  "Acme",
		ProjectName: "Portal",
		Resources:   []domain.ProposalResource{{ProfessionalID: active.ID, Role: "Backend Developer"}},
	}).Error)

	err = svc.DeleteProfessional(ctx, active.ID)
	assert.True(t, errors.Is(err, ErrProfessionalInUse))
	assert.True(t, errors.Is(err, domain.ErrConflict))

	require.NoError(t, svc.DeleteProfessional(ctx, created.ID))
	_, err = svc.GetProfessional(ctx, created.ID)
	assert.True(t, errors.Is(err, ErrProfessionalNotFound))
}
