package ai

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"sync"

	"github.com/straye-as/presales-api/internal/domain"
	"go.uber.org/zap"
)

// ProviderSettings configures one backend
type ProviderSettings struct {
	APIKey       string
	BaseURL      string
	Models       []string
	DefaultModel string
}

// Enabled reports whether the provider can be used
func (s ProviderSettings) Enabled() bool {
	return s.APIKey != "" && len(s.Models) > 0
}

// CompleterFactory builds the Completer for one provider model
type CompleterFactory func(ctx context.Context, settings ProviderSettings, model string, httpClient *http.Client) (Completer, error)

// DefaultFactories maps every provider to its concrete client
func DefaultFactories() map[ProviderID]CompleterFactory {
	return map[ProviderID]CompleterFactory{
		ProviderAnthropic: func(_ context.Context, s ProviderSettings, model string, hc *http.Client) (Completer, error) {
			return NewAnthropicClient(s.APIKey, s.BaseURL, model, hc), nil
		},
		ProviderOpenAI: func(_ context.Context, s ProviderSettings, model string, hc *http.Client) (Completer, error) {
			return NewOpenAIClient(s.APIKey, s.BaseURL, model, hc), nil
		},
		ProviderGemini: func(ctx context.Context, s ProviderSettings, model string, hc *http.Client) (Completer, error) {
			return NewGeminiClient(ctx, s.APIKey, s.BaseURL, model, hc)
		},
	}
}

type providerKey struct {
	id    ProviderID
	model string
}

// Registry resolves a provider id and model into a ready Provider
type Registry struct {
	settings        map[ProviderID]ProviderSettings
	defaultProvider ProviderID
	factories       map[ProviderID]CompleterFactory
	temperature     *float64
	httpClient      *http.Client
	logger          *zap.Logger

	mu    sync.Mutex
	cache map[providerKey]Provider
}

// NewRegistry creates a registry over the configured providers.
// factories may be nil to use DefaultFactories.
func NewRegistry(settings map[ProviderID]ProviderSettings, defaultProvider ProviderID, factories map[ProviderID]CompleterFactory, temperature *float64, httpClient *http.Client, logger *zap.Logger) *Registry {
	if factories == nil {
		factories = DefaultFactories()
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Registry{
		settings:        settings,
		defaultProvider: defaultProvider,
		factories:       factories,
		temperature:     temperature,
		httpClient:      httpClient,
		logger:          logger,
		cache:           make(map[providerKey]Provider),
	}
}

// Get returns the provider for id and model. Empty values select the defaults.
func (r *Registry) Get(ctx context.Context, id, model string) (Provider, error) {
	pid := ProviderID(id)
	if id == "" {
		pid = r.defaultProvider
	}
	if !pid.IsValid() {
		return nil, domain.NewValidationError("provider", fmt.Sprintf("unknown provider %q", id))
	}

	settings, ok := r.settings[pid]
	if !ok || !settings.Enabled() {
		return nil, domain.NewValidationError("provider", fmt.Sprintf("provider %q is not configured", pid))
	}

	if model == "" {
		model = settings.DefaultModel
	}
	if !slices.Contains(settings.Models, model) {
		return nil, domain.NewValidationError("model", fmt.Sprintf("model %q is not available for provider %q", model, pid))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := providerKey{id: pid, model: model}
	if p, ok := r.cache[key]; ok {
		return p, nil
	}

	factory, ok := r.factories[pid]
	if !ok {
		return nil, domain.NewValidationError("provider", fmt.Sprintf("no client for provider %q", pid))
	}
	completer, err := factory(ctx, settings, model, r.httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", pid, err)
	}

	p := NewPromptProvider(pid, model, completer, r.temperature, r.logger)
	r.cache[key] = p
	return p, nil
}

// Providers lists the configured providers with their models
func (r *Registry) Providers() []domain.ProviderInfoDTO {
	var out []domain.ProviderInfoDTO
	for _, id := range AllProviders() {
		settings, ok := r.settings[id]
		if !ok || !settings.Enabled() {
			continue
		}
		out = append(out, domain.ProviderInfoDTO{
			ID:           string(id),
			Name:         id.DisplayName(),
			Models:       append([]string(nil), settings.Models...),
			DefaultModel: settings.DefaultModel,
			Default:      id == r.defaultProvider,
		})
	}
	return out
}
