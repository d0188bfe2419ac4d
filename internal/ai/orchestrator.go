package ai

import (
	"context"
	"errors"
	"path"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sethvargo/go-retry"
	"github.com/straye-as/presales-api/internal/domain"
	"github.com/straye-as/presales-api/internal/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DocumentReader loads stored documents
type DocumentReader interface {
	Read(ctx context.Context, path string) ([]byte, error)
}

// ExemplarSource supplies few-shot text for the team estimation step
type ExemplarSource interface {
	Exemplars(ctx context.Context, analysis domain.ProjectAnalysis) (string, error)
}

// RetryPolicy bounds provider retries
type RetryPolicy struct {
	// MaxAttemptsPerStep counts the first call
	MaxAttemptsPerStep int
	// InvalidResponseRetries is how often one step may re-ask after an unusable answer
	InvalidResponseRetries int
	// MaxPipelineRetries is shared by all three steps
	MaxPipelineRetries int
	BaseBackoff        time.Duration
	MaxBackoff         time.Duration
	CallTimeout        time.Duration
	DocumentWorkers    int
}

// DefaultRetryPolicy returns the production defaults
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttemptsPerStep:     3,
		InvalidResponseRetries: 1,
		MaxPipelineRetries:     6,
		BaseBackoff:            500 * time.Millisecond,
		MaxBackoff:             8 * time.Second,
		CallTimeout:            2 * time.Minute,
		DocumentWorkers:        4,
	}
}

// Input is one pipeline run
type Input struct {
	DocumentPaths []string
	Context       string
	Exemplars     ExemplarSource
}

// Orchestrator runs scope analysis, team estimation and schedule generation in order
type Orchestrator struct {
	documents DocumentReader
	policy    RetryPolicy
	logger    *zap.Logger
}

// NewOrchestrator creates an orchestrator
func NewOrchestrator(documents DocumentReader, policy RetryPolicy, logger *zap.Logger) *Orchestrator {
	if policy.MaxAttemptsPerStep < 1 {
		policy.MaxAttemptsPerStep = 1
	}
	if policy.BaseBackoff <= 0 {
		policy.BaseBackoff = 500 * time.Millisecond
	}
	if policy.MaxBackoff < policy.BaseBackoff {
		policy.MaxBackoff = policy.BaseBackoff
	}
	if policy.DocumentWorkers < 1 {
		policy.DocumentWorkers = 1
	}
	return &Orchestrator{documents: documents, policy: policy, logger: logger}
}

// Run executes the pipeline. Any failure aborts the run; nothing is partially returned.
func (o *Orchestrator) Run(ctx context.Context, provider Provider, in Input) (*domain.CompleteAnalysis, error) {
	log := logger.WithProvider(o.logger, string(provider.ID()), provider.Model())
	start := time.Now()

	docs, err := o.prepareDocuments(ctx, in.DocumentPaths)
	if err != nil {
		return nil, err
	}
	log.Info("documents prepared", zap.Int("count", len(docs)))

	budget := &retryBudget{remaining: o.policy.MaxPipelineRetries}

	analysis, err := runStep(ctx, o, budget, provider, domain.StepAnalyzeScope,
		func(ctx context.Context) (string, error) { return provider.AnalyzeScope(ctx, docs, in.Context) },
		DecodeAnalysis)
	if err != nil {
		return nil, err
	}

	exemplars := ""
	if in.Exemplars != nil {
		exemplars, err = in.Exemplars.Exemplars(ctx, analysis)
		if err != nil {
			log.Warn("failed to load few-shot exemplars, continuing without them", zap.Error(err))
			exemplars = ""
		}
	}

	team, err := runStep(ctx, o, budget, provider, domain.StepEstimateTeam,
		func(ctx context.Context) (string, error) { return provider.EstimateTeam(ctx, analysis, exemplars) },
		DecodeTeam)
	if err != nil {
		return nil, err
	}

	schedule, err := runStep(ctx, o, budget, provider, domain.StepGenerateSchedule,
		func(ctx context.Context) (string, error) { return provider.GenerateSchedule(ctx, team) },
		DecodeSchedule)
	if err != nil {
		return nil, err
	}

	log.Info("estimation pipeline completed",
		zap.String("complexity", string(analysis.Complexity)),
		zap.Int("duration_months", team.ProjectDuration),
		zap.Duration("elapsed", time.Since(start)))

	return &domain.CompleteAnalysis{
		Analysis:       analysis,
		TeamEstimation: team,
		Schedule:       schedule,
		Provider:       string(provider.ID()),
		Model:          provider.Model(),
	}, nil
}

func (o *Orchestrator) prepareDocuments(ctx context.Context, paths []string) ([]Document, error) {
	docs := make([]Document, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.policy.DocumentWorkers)
	for i, p := range paths {
		g.Go(func() error {
			data, err := o.documents.Read(gctx, p)
			if err != nil {
				return &domain.DocumentError{Path: p, Err: err}
			}
			docs[i] = Document{
				Name:     path.Base(p),
				MimeType: mimetype.Detect(data).String(),
				Data:     data,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// retryBudget is the pipeline-wide retry allowance. Steps run sequentially, so
// it needs no locking.
type retryBudget struct {
	remaining int
}

func (b *retryBudget) take() bool {
	if b.remaining <= 0 {
		return false
	}
	b.remaining--
	return true
}

// wrap stops next once either the step backoff or the pipeline budget is exhausted
func (b *retryBudget) wrap(next retry.Backoff) retry.Backoff {
	return retry.BackoffFunc(func() (time.Duration, bool) {
		d, stop := next.Next()
		if stop {
			return 0, true
		}
		if !b.take() {
			return 0, true
		}
		return d, false
	})
}

type stepOutcome struct {
	attempts  int
	invalid   int
	lastErr   error
	reason    string
	transient bool
}

func runStep[T any](ctx context.Context, o *Orchestrator, budget *retryBudget, provider Provider, step string,
	call func(context.Context) (string, error), decode func(string) (T, error)) (T, error) {
	var zero, result T
	out := &stepOutcome{}
	log := o.logger.With(zap.String("step", step), zap.String("provider", string(provider.ID())))

	backoff := retry.NewExponential(o.policy.BaseBackoff)
	backoff = retry.WithCappedDuration(o.policy.MaxBackoff, backoff)
	backoff = retry.WithMaxRetries(uint64(o.policy.MaxAttemptsPerStep-1), backoff)
	backoff = budget.wrap(backoff)

	// unusable records an unparseable or empty answer and asks again while the re-ask allowance lasts
	unusable := func(err error) error {
		out.lastErr = err
		out.transient = false
		out.reason = err.Error()
		var invalidErr *InvalidResponseError
		if errors.As(err, &invalidErr) {
			out.reason = invalidErr.Reason
		}
		if out.invalid >= o.policy.InvalidResponseRetries {
			return err
		}
		out.invalid++
		log.Warn("provider returned an unusable response, asking again", zap.Int("attempt", out.attempts), zap.String("reason", out.reason))
		return retry.RetryableError(err)
	}

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		out.attempts++

		callCtx := ctx
		cancel := context.CancelFunc(func() {})
		if o.policy.CallTimeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, o.policy.CallTimeout)
		}
		raw, err := call(callCtx)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			var invalidErr *InvalidResponseError
			if errors.As(err, &invalidErr) {
				return unusable(err)
			}
			out.lastErr = err
			out.transient = IsTransient(err)
			if !out.transient {
				out.reason = "provider call failed"
				return err
			}
			out.reason = "transient provider failure"
			log.Warn("provider call failed, retrying", zap.Int("attempt", out.attempts), zap.Error(err))
			return retry.RetryableError(err)
		}

		value, err := decode(raw)
		if err != nil {
			return unusable(err)
		}

		result = value
		return nil
	})
	if err == nil {
		log.Debug("step completed", zap.Int("attempts", out.attempts))
		return result, nil
	}

	perr := &domain.ProviderError{
		Step:      step,
		Provider:  string(provider.ID()),
		Model:     provider.Model(),
		Attempts:  out.attempts,
		Reason:    out.reason,
		Transient: out.transient,
		Err:       out.lastErr,
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		perr.Reason = "pipeline deadline exceeded or cancelled"
		perr.Transient = true
		perr.Err = ctxErr
	}
	log.Error("step failed", zap.Int("attempts", out.attempts), zap.String("reason", perr.Reason), zap.Error(perr.Err))
	return zero, perr
}
