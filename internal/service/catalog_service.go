package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/straye-as/presales-api/internal/domain"
	"github.com/straye-as/presales-api/internal/finance"
	"github.com/straye-as/presales-api/internal/mapper"
	"github.com/straye-as/presales-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CatalogService manages the professional catalog and the pricing parameters
type CatalogService struct {
	professionalRepo *repository.ProfessionalRepository
	parameterRepo    *repository.ParameterRepository
	logger           *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(
	professionalRepo *repository.ProfessionalRepository,
	parameterRepo *repository.ParameterRepository,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{
		professionalRepo: professionalRepo,
		parameterRepo:    parameterRepo,
		logger:           logger,
	}
}

// ListProfessionals returns the catalog, optionally only active entries
func (s *CatalogService) ListProfessionals(ctx context.Context, activeOnly bool) ([]domain.ProfessionalDTO, error) {
	professionals, err := s.professionalRepo.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list professionals: %w", err)
	}

	dtos := make([]domain.ProfessionalDTO, len(professionals))
	for i := range professionals {
		dtos[i] = mapper.ToProfessionalDTO(&professionals[i])
	}
	return dtos, nil
}

// GetProfessional returns one catalog entry
func (s *CatalogService) GetProfessional(ctx context.Context, id uuid.UUID) (*domain.ProfessionalDTO, error) {
	professional, err := s.professionalRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfessionalNotFound
		}
		return nil, fmt.Errorf("failed to get professional: %w", err)
	}
	dto := mapper.ToProfessionalDTO(professional)
	return &dto, nil
}

// SelectProfessionals loads the professionals chosen for a proposal, in request order.
// Any unknown id is a validation error.
func (s *CatalogService) SelectProfessionals(ctx context.Context, ids []uuid.UUID) ([]domain.Professional, error) {
	professionals, err := s.professionalRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load professionals: %w", err)
	}

	found := make(map[uuid.UUID]bool, len(professionals))
	for _, p := range professionals {
		found[p.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return nil, domain.NewValidationError("professionalIds", fmt.Sprintf("unknown professional %s", id))
		}
	}
	return professionals, nil
}

// CreateProfessional adds a catalog entry
func (s *CatalogService) CreateProfessional(ctx context.Context, req *domain.CreateProfessionalRequest) (*domain.ProfessionalDTO, error) {
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	professional := &domain.Professional{
		Name:       req.Name,
		Role:       req.Role,
		HourlyRate: decimal.NewFromFloat(req.HourlyRate),
		Seniority:  req.Seniority,
		Skills:     req.Skills,
		Active:     active,
	}

	if err := s.professionalRepo.Create(ctx, professional); err != nil {
		return nil, fmt.Errorf("failed to create professional: %w", err)
	}

	s.logger.Info("professional created",
		zap.String("professional_id", professional.ID.String()),
		zap.String("role", professional.Role),
	)

	dto := mapper.ToProfessionalDTO(professional)
	return &dto, nil
}

// UpdateProfessional replaces a catalog entry. Existing proposals keep the rate they were priced with.
func (s *CatalogService) UpdateProfessional(ctx context.Context, id uuid.UUID, req *domain.UpdateProfessionalRequest) (*domain.ProfessionalDTO, error) {
	professional, err := s.professionalRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfessionalNotFound
		}
		return nil, fmt.Errorf("failed to get professional: %w", err)
	}

	professional.Name = req.Name
	professional.Role = req.Role
	professional.HourlyRate = decimal.NewFromFloat(req.HourlyRate)
	professional.Seniority = req.Seniority
	professional.Skills = req.Skills
	professional.Active = req.Active

	if err := s.professionalRepo.Update(ctx, professional); err != nil {
		return nil, fmt.Errorf("failed to update professional: %w", err)
	}

	dto := mapper.ToProfessionalDTO(professional)
	return &dto, nil
}

// DeleteProfessional removes an unreferenced catalog entry
func (s *CatalogService) DeleteProfessional(ctx context.Context, id uuid.UUID) error {
	if _, err := s.professionalRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProfessionalNotFound
		}
		return fmt.Errorf("failed to get professional: %w", err)
	}

	referenced, err := s.professionalRepo.IsReferenced(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check professional usage: %w", err)
	}
	if referenced {
		return ErrProfessionalInUse
	}

	if err := s.professionalRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete professional: %w", err)
	}
	return nil
}

// Parameters lists the stored pricing parameters, filling in defaults for missing names
func (s *CatalogService) Parameters(ctx context.Context) ([]domain.ParameterDTO, error) {
	params, err := s.parameterRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list parameters: %w", err)
	}

	byName := make(map[string]domain.Parameter, len(params))
	for _, p := range params {
		byName[p.Name] = p
	}

	defaults := finance.DefaultRates()
	out := make([]domain.ParameterDTO, 0, 3)
	for _, name := range []string{domain.ParameterTax, domain.ParameterOverhead, domain.ParameterMargin} {
		p, ok := byName[name]
		if !ok {
			p = domain.Parameter{Name: name, Value: defaultRate(defaults, name)}
		}
		out = append(out, mapper.ToParameterDTO(&p))
	}
	return out, nil
}

// Rates returns the current cascade rates. Missing parameters use the defaults.
func (s *CatalogService) Rates(ctx context.Context) (finance.Rates, error) {
	params, err := s.parameterRepo.List(ctx)
	if err != nil {
		return finance.Rates{}, fmt.Errorf("failed to load parameters: %w", err)
	}

	rates := finance.DefaultRates()
	for _, p := range params {
		switch p.Name {
		case domain.ParameterTax:
			rates.Tax = p.Value
		case domain.ParameterOverhead:
			rates.Overhead = p.Value
		case domain.ParameterMargin:
			rates.Margin = p.Value
		}
	}
	if err := rates.Validate(); err != nil {
		return finance.Rates{}, err
	}
	return rates, nil
}

// UpdateParameter sets a pricing rate. The margin must stay below 1.
func (s *CatalogService) UpdateParameter(ctx context.Context, name string, req *domain.UpdateParameterRequest) (*domain.ParameterDTO, error) {
	switch name {
	case domain.ParameterTax, domain.ParameterOverhead, domain.ParameterMargin:
	default:
		return nil, ErrParameterNotFound
	}

	value := decimal.NewFromFloat(req.Value)
	if name == domain.ParameterMargin && value.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, domain.NewValidationError("value", "margin must be below 1")
	}

	param, err := s.parameterRepo.GetByName(ctx, name)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to get parameter: %w", err)
		}
		param = &domain.Parameter{Name: name}
	}

	param.Value = value
	if req.Description != "" {
		param.Description = req.Description
	}

	if err := s.parameterRepo.Save(ctx, param); err != nil {
		return nil, fmt.Errorf("failed to save parameter: %w", err)
	}

	s.logger.Info("parameter updated",
		zap.String("name", name),
		zap.String("value", value.String()),
	)

	dto := mapper.ToParameterDTO(param)
	return &dto, nil
}

func defaultRate(r finance.Rates, name string) decimal.Decimal {
	switch name {
	case domain.ParameterTax:
		return r.Tax
	case domain.ParameterOverhead:
		return r.Overhead
	default:
		return r.Margin
	}
}
