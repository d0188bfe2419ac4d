package ai

import (
	"context"

	"github.com/straye-as/presales-api/internal/domain"
	"go.uber.org/zap"
)

// PromptProvider implements Provider by rendering the step prompts and sending
// them through a Completer after capability negotiation.
type PromptProvider struct {
	id          ProviderID
	model       string
	caps        Capabilities
	completer   Completer
	temperature *float64
	logger      *zap.Logger
}

// NewPromptProvider creates a provider for one backend model
func NewPromptProvider(id ProviderID, model string, completer Completer, temperature *float64, logger *zap.Logger) *PromptProvider {
	return &PromptProvider{
		id:          id,
		model:       model,
		caps:        CapabilitiesFor(id, model),
		completer:   completer,
		temperature: temperature,
		logger:      logger,
	}
}

func (p *PromptProvider) ID() ProviderID { return p.id }

func (p *PromptProvider) Model() string { return p.model }

func (p *PromptProvider) AnalyzeScope(ctx context.Context, docs []Document, extraContext string) (string, error) {
	user, err := ScopePrompt(docs, extraContext)
	if err != nil {
		return "", err
	}

	attachments := make([]Attachment, 0, len(docs))
	for _, d := range docs {
		attachments = append(attachments, Attachment(d))
	}

	return p.complete(ctx, Request{
		Step:        domain.StepAnalyzeScope,
		System:      systemPrompt,
		User:        user,
		Attachments: attachments,
		MaxTokens:   MaxTokensAnalyzeScope,
		Temperature: p.temperature,
		JSONMode:    true,
	})
}

func (p *PromptProvider) EstimateTeam(ctx context.Context, analysis domain.ProjectAnalysis, exemplars string) (string, error) {
	user, err := TeamPrompt(analysis, exemplars)
	if err != nil {
		return "", err
	}
	return p.complete(ctx, Request{
		Step:        domain.StepEstimateTeam,
		System:      systemPrompt,
		User:        user,
		MaxTokens:   MaxTokensEstimateTeam,
		Temperature: p.temperature,
		JSONMode:    true,
	})
}

func (p *PromptProvider) GenerateSchedule(ctx context.Context, team domain.TeamEstimation) (string, error) {
	user, err := SchedulePrompt(team)
	if err != nil {
		return "", err
	}
	return p.complete(ctx, Request{
		Step:        domain.StepGenerateSchedule,
		System:      systemPrompt,
		User:        user,
		MaxTokens:   MaxTokensGenerateSchedule,
		Temperature: p.temperature,
		JSONMode:    true,
	})
}

func (p *PromptProvider) complete(ctx context.Context, req Request) (string, error) {
	negotiated := NegotiateCapabilities(p.caps, req)
	if len(negotiated.DroppedAttachments) > 0 {
		p.logger.Warn("model cannot read some attachments, sending without them",
			zap.String("provider", string(p.id)),
			zap.String("model", p.model),
			zap.Strings("dropped", negotiated.DroppedAttachments))
	}
	return p.completer.Complete(ctx, negotiated)
}
