package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/straye-as/presales-api/internal/ai"
	"github.com/straye-as/presales-api/internal/allocation"
	"github.com/straye-as/presales-api/internal/auth"
	"github.com/straye-as/presales-api/internal/domain"
	"github.com/straye-as/presales-api/internal/finance"
	"github.com/straye-as/presales-api/internal/logger"
	"github.com/straye-as/presales-api/internal/mapper"
	"github.com/straye-as/presales-api/internal/report"
	"github.com/straye-as/presales-api/internal/repository"
	"github.com/straye-as/presales-api/internal/roles"
	"github.com/straye-as/presales-api/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProviderSource resolves the provider a generation runs against
type ProviderSource interface {
	Get(ctx context.Context, id, model string) (ai.Provider, error)
}

// Pipeline runs the three estimation steps
type Pipeline interface {
	Run(ctx context.Context, provider ai.Provider, in ai.Input) (*domain.CompleteAnalysis, error)
}

// ReportRenderer turns an approved proposal into a stored workbook
type ReportRenderer interface {
	Render(ctx context.Context, data *report.Data) (string, error)
}

// ProposalSettings bounds proposal generation
type ProposalSettings struct {
	GenerateTimeout time.Duration
	MaxDocuments    int
}

// ProposalService drives proposals from generation through review and approval
type ProposalService struct {
	db           *gorm.DB
	proposalRepo *repository.ProposalRepository
	catalog      *CatalogService
	learning     *LearningService
	providers    ProviderSource
	pipeline     Pipeline
	resolver     *roles.Resolver
	renderer     ReportRenderer
	storage      storage.Storage
	settings     ProposalSettings
	locks        *keyedMutex
	now          func() time.Time
	logger       *zap.Logger
}

// NewProposalService creates a new proposal service
func NewProposalService(
	db *gorm.DB,
	proposalRepo *repository.ProposalRepository,
	catalog *CatalogService,
	learning *LearningService,
	providers ProviderSource,
	pipeline Pipeline,
	resolver *roles.Resolver,
	renderer ReportRenderer,
	store storage.Storage,
	settings ProposalSettings,
	logger *zap.Logger,
) *ProposalService {
	if resolver == nil {
		resolver = roles.NewResolver(nil)
	}
	return &ProposalService{
		db:           db,
		proposalRepo: proposalRepo,
		catalog:      catalog,
		learning:     learning,
		providers:    providers,
		pipeline:     pipeline,
		resolver:     resolver,
		renderer:     renderer,
		storage:      store,
		settings:     settings,
		locks:        newKeyedMutex(),
		now:          func() time.Time { return time.Now().UTC() },
		logger:       logger,
	}
}

// ============================================================================
// Generation
// ============================================================================

// Generate runs the estimation pipeline and persists the priced proposal.
// Nothing is stored when any step fails.
func (s *ProposalService) Generate(ctx context.Context, req *domain.GenerateProposalRequest) (*domain.GenerateProposalResultDTO, error) {
	if err := s.validateGenerate(req); err != nil {
		return nil, err
	}

	professionals, err := s.catalog.SelectProfessionals(ctx, req.ProfessionalIDs)
	if err != nil {
		return nil, err
	}

	provider, err := s.providers.Get(ctx, req.Provider, req.Model)
	if err != nil {
		return nil, err
	}

	rates, err := s.catalog.Rates(ctx)
	if err != nil {
		return nil, err
	}

	runCtx := ctx
	if s.settings.GenerateTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.settings.GenerateTimeout)
		defer cancel()
	}

	in := ai.Input{DocumentPaths: req.DocumentPaths, Context: req.Context}
	if s.learning != nil {
		in.Exemplars = s.learning
	}

	analysis, err := s.pipeline.Run(runCtx, provider, in)
	if err != nil {
		s.logger.Warn("estimation pipeline failed",
			zap.String("provider", string(provider.ID())),
			zap.String("model", provider.Model()),
			zap.Error(err),
		)
		return nil, err
	}

	resources, warnings, err := s.priceAllocations(analysis.TeamEstimation, professionals, rates)
	if err != nil {
		return nil, err
	}

	description := req.Description
	if strings.TrimSpace(description) == "" {
		description = analysis.Analysis.Scope
	}

	totalCost, totalPrice := sumResources(resources)
	proposal := &domain.Proposal{
		Status:             domain.ProposalStatusGenerated,
		ClientName:         req.ClientName,
		ProjectName:        req.ProjectName,
		Description:        description,
		Complexity:         analysis.Analysis.Complexity,
		DurationMonths:     analysis.TeamEstimation.ProjectDuration,
		TotalCost:          totalCost,
		TotalPrice:         totalPrice,
		OriginalTotalCost:  totalCost,
		OriginalAIAnalysis: analysis,
		CurrentAnalysis:    analysis.Clone(),
		Resources:          resources,
		UserModifications:  []domain.ModificationDiff{},
		UnresolvedRoles:    warnings,
		DocumentPaths:      append([]string(nil), req.DocumentPaths...),
		CreatedBy:          auth.ActorFromContext(ctx),
		Provider:           analysis.Provider,
		Model:              analysis.Model,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.proposalRepo.WithTx(tx).Create(ctx, proposal)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create proposal: %w", err)
	}

	s.logger.Info("proposal generated",
		zap.String("proposal_id", proposal.ID.String()),
		zap.String("provider", proposal.Provider),
		zap.String("model", proposal.Model),
		zap.Int("resources", len(resources)),
		zap.Int("unresolved_roles", len(warnings)),
		zap.String("total_cost", totalCost.StringFixed(finance.CurrencyPlaces)),
	)

	dto, err := s.reload(ctx, proposal.ID)
	if err != nil {
		return nil, err
	}
	return &domain.GenerateProposalResultDTO{Proposal: *dto, Warnings: warnings}, nil
}

func (s *ProposalService) validateGenerate(req *domain.GenerateProposalRequest) error {
	if strings.TrimSpace(req.ClientName) == "" {
		return domain.NewValidationError("clientName", "client name is required")
	}
	if strings.TrimSpace(req.ProjectName) == "" {
		return domain.NewValidationError("projectName", "project name is required")
	}
	if len(req.DocumentPaths) == 0 {
		return domain.NewValidationError("documentPaths", "at least one document is required")
	}
	if s.settings.MaxDocuments > 0 && len(req.DocumentPaths) > s.settings.MaxDocuments {
		return domain.NewValidationError("documentPaths", fmt.Sprintf("at most %d documents are allowed", s.settings.MaxDocuments))
	}
	if len(req.ProfessionalIDs) == 0 {
		return domain.NewValidationError("professionalIds", "at least one professional is required")
	}
	return nil
}

// priceAllocations resolves each allocated role onto a selected professional and prices it.
// Roles without a match are skipped and reported as warnings.
func (s *ProposalService) priceAllocations(team domain.TeamEstimation, professionals []domain.Professional, rates finance.Rates) ([]domain.ProposalResource, []domain.UnresolvedRole, error) {
	resources := make([]domain.ProposalResource, 0, len(team.MonthlyAllocation))
	warnings := []domain.UnresolvedRole{}

	for _, alloc := range team.MonthlyAllocation {
		match, ok := s.resolver.Resolve(alloc.Role, professionals)
		if !ok {
			warnings = append(warnings, roles.Unresolved(alloc.Role, professionals))
			continue
		}

		resource := domain.ProposalResource{
			ProfessionalID: match.Professional.ID,
			Role:           alloc.Role,
			HourlyRate:     match.Professional.HourlyRate,
		}
		if err := priceResource(&resource, allocation.FromMonths(alloc.HoursPerMonth), rates); err != nil {
			return nil, nil, fmt.Errorf("failed to price role %q: %w", alloc.Role, err)
		}
		resources = append(resources, resource)
	}
	return resources, warnings, nil
}

// priceResource stores the allocation on the resource and runs the cascade on its rate
func priceResource(resource *domain.ProposalResource, grid allocation.Allocation, rates finance.Rates) error {
	total := allocation.SumDecimal(grid.HoursPerMonth)
	breakdown, err := finance.FullCascade(total, resource.HourlyRate, rates)
	if err != nil {
		return err
	}
	resource.HoursPerMonth = grid.HoursPerMonth
	resource.HoursPerWeek = grid.HoursPerWeek
	resource.TotalHours = total.InexactFloat64()
	resource.Cost = breakdown.FinalCost
	resource.Price = breakdown.FinalPrice
	return nil
}

func sumResources(resources []domain.ProposalResource) (decimal.Decimal, decimal.Decimal) {
	cost, price := decimal.Zero, decimal.Zero
	for _, r := range resources {
		cost = cost.Add(r.Cost)
		price = price.Add(r.Price)
	}
	return cost, price
}

// ============================================================================
// Review
// ============================================================================

// Edit applies a partial update and moves the proposal to under_review
func (s *ProposalService) Edit(ctx context.Context, id uuid.UUID, req *domain.UpdateProposalRequest) (*domain.ProposalDTO, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	proposal, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireEditable(proposal, "edit"); err != nil {
		return nil, err
	}

	if req.ClientName != nil {
		proposal.ClientName = *req.ClientName
	}
	if req.ProjectName != nil {
		proposal.ProjectName = *req.ProjectName
	}
	if req.Description != nil {
		proposal.Description = *req.Description
	}
	if req.CurrentAnalysis != nil {
		proposal.CurrentAnalysis = req.CurrentAnalysis.Clone()
	}

	var changed []*domain.ProposalResource
	if req.DurationMonths != nil && *req.DurationMonths != proposal.DurationMonths {
		changed, err = s.resizeResources(ctx, proposal, *req.DurationMonths, req.TruncateHours)
		if err != nil {
			return nil, err
		}
	}

	if req.TotalCost != nil {
		proposal.TotalCost = finance.Round(decimal.NewFromFloat(*req.TotalCost))
	}
	if req.TotalPrice != nil {
		proposal.TotalPrice = finance.Round(decimal.NewFromFloat(*req.TotalPrice))
	}
	proposal.Status = domain.ProposalStatusUnderReview

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.proposalRepo.WithTx(tx)
		for _, r := range changed {
			if err := repo.SaveResource(ctx, r); err != nil {
				return err
			}
		}
		return repo.Update(ctx, proposal)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update proposal: %w", err)
	}

	s.logger.Info("proposal edited",
		zap.String("proposal_id", id.String()),
		zap.Int("duration_months", proposal.DurationMonths),
		zap.Int("resized_resources", len(changed)),
	)
	return s.reload(ctx, id)
}

// resizeResources changes the duration of every resource grid. Growing pads with zero
// months; shrinking past allocated hours fails unless truncate is set, in which case
// the truncated resources are repriced and the totals recomputed.
func (s *ProposalService) resizeResources(ctx context.Context, proposal *domain.Proposal, months int, truncate bool) ([]*domain.ProposalResource, error) {
	if months < 1 {
		return nil, domain.NewValidationError("durationMonths", "duration must be at least one month")
	}

	mode := allocation.RejectLossy
	if truncate {
		mode = allocation.Truncate
	}

	var (
		changed   []*domain.ProposalResource
		rates     finance.Rates
		haveRates bool
		repriced  bool
	)
	for i := range proposal.Resources {
		r := &proposal.Resources[i]
		grid, dropped, err := allocation.Resize(allocation.FromMonths(r.HoursPerMonth), months, mode)
		if err != nil {
			return nil, fmt.Errorf("resource %q: %w", r.Role, err)
		}

		if dropped == 0 {
			r.HoursPerMonth = grid.HoursPerMonth
			r.HoursPerWeek = grid.HoursPerWeek
			changed = append(changed, r)
			continue
		}

		if !haveRates {
			if rates, err = s.catalog.Rates(ctx); err != nil {
				return nil, err
			}
			haveRates = true
		}
		if err := priceResource(r, grid, rates); err != nil {
			return nil, fmt.Errorf("failed to reprice resource %q: %w", r.Role, err)
		}
		repriced = true
		changed = append(changed, r)

		s.logger.Info("resource hours truncated",
			zap.String("proposal_id", proposal.ID.String()),
			zap.String("role", r.Role),
			zap.Float64("dropped_hours", dropped),
		)
	}

	proposal.DurationMonths = months
	if repriced {
		proposal.TotalCost, proposal.TotalPrice = sumResources(proposal.Resources)
	}
	return changed, nil
}

// UpdateResourceAllocations updates, adds or removes resource lines, reprices them with
// the current parameters and recomputes the proposal totals in one transaction
func (s *ProposalService) UpdateResourceAllocations(ctx context.Context, id uuid.UUID, req *domain.UpdateResourcesRequest) (*domain.ProposalDTO, error) {
	if len(req.Resources) == 0 {
		return nil, domain.NewValidationError("resources", "at least one change is required")
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	proposal, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireEditable(proposal, "update resources of"); err != nil {
		return nil, err
	}

	// Reads happen before the transaction opens.
	rates, err := s.catalog.Rates(ctx)
	if err != nil {
		return nil, err
	}
	added, err := s.professionalsToAdd(ctx, req.Resources)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]int, len(proposal.Resources))
	for i, r := range proposal.Resources {
		byID[r.ID] = i
	}

	var (
		saves   []*domain.ProposalResource
		removed = make(map[uuid.UUID]bool)
	)
	for i, item := range req.Resources {
		field := fmt.Sprintf("resources[%d]", i)

		switch item.Action {
		case domain.ResourceActionUpdate:
			if item.ResourceID == nil {
				return nil, domain.NewValidationError(field+".resourceId", "resource id is required")
			}
			idx, ok := byID[*item.ResourceID]
			if !ok || removed[*item.ResourceID] {
				return nil, domain.NewValidationError(field+".resourceId", fmt.Sprintf("unknown resource %s", *item.ResourceID))
			}
			grid, err := gridFromUpdate(field, item, proposal.DurationMonths)
			if err != nil {
				return nil, err
			}
			r := &proposal.Resources[idx]
			if err := priceResource(r, grid, rates); err != nil {
				return nil, err
			}
			saves = append(saves, r)

		case domain.ResourceActionAdd:
			if item.ProfessionalID == nil {
				return nil, domain.NewValidationError(field+".professionalId", "professional id is required")
			}
			grid, err := gridFromUpdate(field, item, proposal.DurationMonths)
			if err != nil {
				return nil, err
			}
			professional := added[*item.ProfessionalID]
			r := &domain.ProposalResource{
				ProposalID:     proposal.ID,
				ProfessionalID: professional.ID,
				Role:           professional.Role,
				HourlyRate:     professional.HourlyRate,
			}
			if err := priceResource(r, grid, rates); err != nil {
				return nil, err
			}
			saves = append(saves, r)

		case domain.ResourceActionRemove:
			if item.ResourceID == nil {
				return nil, domain.NewValidationError(field+".resourceId", "resource id is required")
			}
			if _, ok := byID[*item.ResourceID]; !ok || removed[*item.ResourceID] {
				return nil, domain.NewValidationError(field+".resourceId", fmt.Sprintf("unknown resource %s", *item.ResourceID))
			}
			removed[*item.ResourceID] = true

		default:
			return nil, domain.NewValidationError(field+".action", fmt.Sprintf("unknown action %q", item.Action))
		}
	}

	var remaining []domain.ProposalResource
	for _, r := range proposal.Resources {
		if !removed[r.ID] {
			remaining = append(remaining, r)
		}
	}
	for _, r := range saves {
		if r.ID == uuid.Nil {
			remaining = append(remaining, *r)
		}
	}
	proposal.TotalCost, proposal.TotalPrice = sumResources(remaining)
	proposal.Status = domain.ProposalStatusUnderReview

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.proposalRepo.WithTx(tx)
		for _, r := range saves {
			if removed[r.ID] {
				continue
			}
			if err := repo.SaveResource(ctx, r); err != nil {
				return err
			}
		}
		for resourceID := range removed {
			if err := repo.DeleteResource(ctx, proposal.ID, resourceID); err != nil {
				return err
			}
		}
		return repo.Update(ctx, proposal)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update resources: %w", err)
	}

	s.logger.Info("proposal resources updated",
		zap.String("proposal_id", id.String()),
		zap.Int("saved", len(saves)),
		zap.Int("removed", len(removed)),
		zap.String("total_cost", proposal.TotalCost.StringFixed(finance.CurrencyPlaces)),
	)
	return s.reload(ctx, id)
}

func (s *ProposalService) professionalsToAdd(ctx context.Context, items []domain.ResourceAllocationUpdate) (map[uuid.UUID]domain.Professional, error) {
	var ids []uuid.UUID
	for _, item := range items {
		if item.Action == domain.ResourceActionAdd && item.ProfessionalID != nil {
			ids = append(ids, *item.ProfessionalID)
		}
	}
	out := make(map[uuid.UUID]domain.Professional, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	professionals, err := s.catalog.SelectProfessionals(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range professionals {
		out[p.ID] = p
	}
	return out, nil
}

// gridFromUpdate reads the hours of one update item. Weekly hours win over monthly hours
// and either view must cover exactly the proposal duration.
func gridFromUpdate(field string, item domain.ResourceAllocationUpdate, months int) (allocation.Allocation, error) {
	switch {
	case item.HoursPerWeek != nil:
		if len(item.HoursPerWeek) != months*allocation.WeeksPerMonth {
			return allocation.Allocation{}, domain.NewValidationError(field+".hoursPerWeek",
				fmt.Sprintf("expected %d weeks, got %d", months*allocation.WeeksPerMonth, len(item.HoursPerWeek)))
		}
		if err := checkHours(field+".hoursPerWeek", item.HoursPerWeek); err != nil {
			return allocation.Allocation{}, err
		}
		return allocation.FromWeeks(item.HoursPerWeek), nil

	case item.HoursPerMonth != nil:
		if len(item.HoursPerMonth) != months {
			return allocation.Allocation{}, domain.NewValidationError(field+".hoursPerMonth",
				fmt.Sprintf("expected %d months, got %d", months, len(item.HoursPerMonth)))
		}
		if err := checkHours(field+".hoursPerMonth", item.HoursPerMonth); err != nil {
			return allocation.Allocation{}, err
		}
		return allocation.FromMonths(item.HoursPerMonth), nil
	}
	return allocation.Allocation{}, domain.NewValidationError(field, "hoursPerWeek or hoursPerMonth is required")
}

func checkHours(field string, hours []float64) error {
	for i, h := range hours {
		if h < 0 || math.IsNaN(h) || math.IsInf(h, 0) {
			return domain.NewValidationError(fmt.Sprintf("%s[%d]", field, i), "hours must be a non-negative number")
		}
	}
	return nil
}

// requireEditable rejects changes to proposals that were never generated or were rejected
func requireEditable(p *domain.Proposal, action string) error {
	if p.Status == domain.ProposalStatusDraft || p.Status.IsTerminal() {
		return &domain.ConflictError{ProposalID: p.ID, Status: p.Status, Action: action}
	}
	return nil
}

// ============================================================================
// Approval
// ============================================================================

// Approve records the estimator's verdict, scores the AI estimate against the approved
// figures and renders the report. A render failure leaves the proposal approved and is
// returned in the result instead of as an error.
func (s *ProposalService) Approve(ctx context.Context, id uuid.UUID, req *domain.ApproveProposalRequest) (*domain.ApproveProposalResultDTO, error) {
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		return nil, domain.NewValidationError("rating", "rating must be between 1 and 5")
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	proposal, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if proposal.Status != domain.ProposalStatusGenerated && proposal.Status != domain.ProposalStatusUnderReview {
		return nil, &domain.ConflictError{ProposalID: id, Status: proposal.Status, Action: "approve"}
	}

	diffs, modified := s.learning.Diff(proposal.OriginalAIAnalysis, proposal)

	now := s.now()
	proposal.UserModifications = diffs
	proposal.WasModified = modified
	proposal.AccuracyRating = req.Rating
	proposal.FeedbackNotes = req.Notes
	proposal.ApprovedAt = &now
	proposal.ApprovedBy = auth.ActorFromContext(ctx)
	proposal.Status = domain.ProposalStatusApproved
	proposal.ReportError = ""

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.proposalRepo.WithTx(tx).Update(ctx, proposal); err != nil {
			return err
		}
		return s.learning.RecordTx(ctx, tx, proposal.ID, diffs, modified)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to approve proposal: %w", err)
	}

	s.logger.Info("proposal approved",
		zap.String("proposal_id", id.String()),
		zap.Bool("was_modified", modified),
		zap.Int("differences", len(diffs)),
	)

	result := &domain.ApproveProposalResultDTO{}
	if err := s.render(ctx, proposal); err != nil {
		var renderErr *domain.RenderError
		if !errors.As(err, &renderErr) {
			return nil, err
		}
		result.ReportError = renderErr.Error()
	}

	dto, err := s.reload(ctx, id)
	if err != nil {
		return nil, err
	}
	result.Proposal = *dto
	return result, nil
}

// RenderReport re-renders the workbook of an approved proposal
func (s *ProposalService) RenderReport(ctx context.Context, id uuid.UUID) (*domain.ProposalDTO, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	proposal, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !proposal.Status.IsApproved() {
		return nil, &domain.ConflictError{ProposalID: id, Status: proposal.Status, Action: "render report for"}
	}
	if err := s.render(ctx, proposal); err != nil {
		return nil, err
	}
	return s.reload(ctx, id)
}

// render must run under the proposal lock. On success the proposal moves to
// excel_generated and the previous workbook is removed; on failure the error is stored
// on the proposal and returned as a RenderError.
func (s *ProposalService) render(ctx context.Context, proposal *domain.Proposal) error {
	log := logger.WithProposal(s.logger, proposal.ID.String())

	rates, err := s.catalog.Rates(ctx)
	if err != nil {
		return s.recordRenderFailure(ctx, log, proposal, err)
	}

	path, err := s.renderer.Render(ctx, &report.Data{Proposal: proposal, Rates: rates, GeneratedAt: s.now()})
	if err != nil {
		return s.recordRenderFailure(ctx, log, proposal, err)
	}

	previous := proposal.ReportPath
	proposal.ReportPath = path
	proposal.ReportError = ""
	proposal.Status = domain.ProposalStatusExcelGenerated
	if err := s.proposalRepo.Update(ctx, proposal); err != nil {
		return fmt.Errorf("failed to store report path: %w", err)
	}

	if previous != "" && previous != path {
		if err := s.storage.Delete(ctx, previous); err != nil {
			log.Warn("failed to delete previous report",
				zap.String("path", previous),
				zap.Error(err),
			)
		}
	}

	log.Info("proposal report rendered", zap.String("path", path))
	return nil
}

func (s *ProposalService) recordRenderFailure(ctx context.Context, log *zap.Logger, proposal *domain.Proposal, cause error) error {
	renderErr := &domain.RenderError{ProposalID: proposal.ID, Err: cause}
	log.Error("failed to render proposal report", zap.Error(cause))

	proposal.ReportError = cause.Error()
	if err := s.proposalRepo.Update(ctx, proposal); err != nil {
		log.Error("failed to store report error", zap.Error(err))
	}
	return renderErr
}

// RetryPendingReports re-renders approved proposals whose last render failed.
// It returns how many rendered successfully.
func (s *ProposalService) RetryPendingReports(ctx context.Context, limit int) (int, error) {
	ids, err := s.proposalRepo.ListPendingReports(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending reports: %w", err)
	}

	rendered := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return rendered, ctx.Err()
		}
		if _, err := s.RenderReport(ctx, id); err != nil {
			s.logger.Warn("report retry failed",
				zap.String("proposal_id", id.String()),
				zap.Error(err),
			)
			continue
		}
		rendered++
	}
	return rendered, nil
}

// Reject closes a proposal. Rejected proposals accept no further changes.
func (s *ProposalService) Reject(ctx context.Context, id uuid.UUID, req *domain.RejectProposalRequest) (*domain.ProposalDTO, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	proposal, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if proposal.Status.IsTerminal() {
		return nil, &domain.ConflictError{ProposalID: id, Status: proposal.Status, Action: "reject"}
	}

	proposal.Status = domain.ProposalStatusRejected
	proposal.RejectionReason = req.Reason
	if err := s.proposalRepo.Update(ctx, proposal); err != nil {
		return nil, fmt.Errorf("failed to reject proposal: %w", err)
	}

	s.logger.Info("proposal rejected", zap.String("proposal_id", id.String()))
	return s.reload(ctx, id)
}

// ============================================================================
// Queries
// ============================================================================

// GetByID returns one proposal with its resources
func (s *ProposalService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProposalDTO, error) {
	return s.reload(ctx, id)
}

// List returns a page of proposals, newest first
func (s *ProposalService) List(ctx context.Context, page, pageSize int, filters repository.ProposalFilters) (*domain.PaginatedResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}

	proposals, total, err := s.proposalRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}

	dtos := make([]domain.ProposalDTO, len(proposals))
	for i := range proposals {
		dtos[i] = mapper.ToProposalDTO(&proposals[i])
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// Delete removes a proposal, its resources, its metrics and its stored report
func (s *ProposalService) Delete(ctx context.Context, id uuid.UUID) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	proposal, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if err := s.proposalRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete proposal: %w", err)
	}

	if proposal.ReportPath != "" {
		if err := s.storage.Delete(ctx, proposal.ReportPath); err != nil {
			s.logger.Warn("failed to delete proposal report",
				zap.String("proposal_id", id.String()),
				zap.String("path", proposal.ReportPath),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("proposal deleted", zap.String("proposal_id", id.String()))
	return nil
}

// DownloadReport opens the stored workbook. The caller closes the reader.
func (s *ProposalService) DownloadReport(ctx context.Context, id uuid.UUID) (io.ReadCloser, string, error) {
	proposal, err := s.load(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if proposal.ReportPath == "" {
		return nil, "", ErrReportNotAvailable
	}

	rc, err := s.storage.Download(ctx, proposal.ReportPath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, "", ErrReportNotAvailable
		}
		return nil, "", fmt.Errorf("failed to open report: %w", err)
	}
	return rc, ReportFilename(proposal), nil
}

// ReportFilename is the download name of a proposal workbook
func ReportFilename(p *domain.Proposal) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '-'
		}
		return -1
	}, p.ProjectName)
	if name == "" {
		name = p.ID.String()
	}
	return "proposal-" + name + ".xlsx"
}

func (s *ProposalService) load(ctx context.Context, id uuid.UUID) (*domain.Proposal, error) {
	proposal, err := s.proposalRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProposalNotFound
		}
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}
	return proposal, nil
}

func (s *ProposalService) reload(ctx context.Context, id uuid.UUID) (*domain.ProposalDTO, error) {
	proposal, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToProposalDTO(proposal)
	return &dto, nil
}
