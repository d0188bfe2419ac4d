package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/straye-as/presales-api/docs"
	"github.com/straye-as/presales-api/internal/ai"
	"github.com/straye-as/presales-api/internal/auth"
	"github.com/straye-as/presales-api/internal/config"
	"github.com/straye-as/presales-api/internal/database"
	"github.com/straye-as/presales-api/internal/http/handler"
	"github.com/straye-as/presales-api/internal/http/middleware"
	"github.com/straye-as/presales-api/internal/http/router"
	"github.com/straye-as/presales-api/internal/jobs"
	"github.com/straye-as/presales-api/internal/logger"
	"github.com/straye-as/presales-api/internal/report"
	"github.com/straye-as/presales-api/internal/repository"
	"github.com/straye-as/presales-api/internal/roles"
	"github.com/straye-as/presales-api/internal/service"
	"github.com/straye-as/presales-api/internal/storage"
	"go.uber.org/zap"
)

// @title Straye Presales API
// @version 1.0
// @description AI-assisted project estimation: document analysis, team sizing, pricing and Excel proposals
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@straye.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API Key for system operations
// @Security BearerAuth
// @Security ApiKeyAuth

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	if basicCfg.App.Environment == "development" || basicCfg.App.Environment == "local" {
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	} else {
		docs.SwaggerInfo.Host = ""
	}

	// In staging/production the database credentials and provider keys come from Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.SeedParameters(ctx, db); err != nil {
		return fmt.Errorf("failed to seed parameters: %w", err)
	}

	fileStorage, err := storage.NewStorage(ctx, &cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	families := roles.DefaultFamilies()
	if cfg.Roles.FamiliesFile != "" {
		families, err = roles.LoadFamilies(cfg.Roles.FamiliesFile)
		if err != nil {
			return fmt.Errorf("failed to load role families: %w", err)
		}
		log.Info("Role families loaded", zap.String("file", cfg.Roles.FamiliesFile), zap.Int("families", len(families)))
	}

	// AI providers and the estimation pipeline
	registry := newProviderRegistry(&cfg.AI, log)
	orchestrator := ai.NewOrchestrator(
		storage.NewDocumentStore(fileStorage, cfg.Pipeline.MaxDocumentBytes()),
		ai.RetryPolicy{
			MaxAttemptsPerStep:     cfg.AI.MaxAttemptsPerStep,
			InvalidResponseRetries: cfg.AI.InvalidResponseRetries,
			MaxPipelineRetries:     cfg.AI.MaxPipelineRetries,
			BaseBackoff:            cfg.AI.BaseBackoffDuration(),
			MaxBackoff:             cfg.AI.MaxBackoffDuration(),
			CallTimeout:            cfg.AI.CallTimeoutDuration(),
			DocumentWorkers:        cfg.Pipeline.DocumentWorkers,
		},
		log,
	)

	// Initialize repositories
	proposalRepo := repository.NewProposalRepository(db)
	professionalRepo := repository.NewProfessionalRepository(db)
	parameterRepo := repository.NewParameterRepository(db)
	metricsRepo := repository.NewMetricsRepository(db)
	documentRepo := repository.NewDocumentRepository(db)

	// Initialize services
	catalogService := service.NewCatalogService(professionalRepo, parameterRepo, log)
	learningService := service.NewLearningService(proposalRepo, metricsRepo, service.LearningSettings{
		CostThreshold:      cfg.Learning.CostThreshold,
		FallbackHourlyRate: cfg.Learning.FallbackHourlyRate,
		ExemplarLimit:      cfg.Learning.ExemplarLimit,
	}, log)
	documentService := service.NewDocumentService(documentRepo, fileStorage, cfg.Storage.MaxUploadSizeMB<<20, log)
	proposalService := service.NewProposalService(
		db,
		proposalRepo,
		catalogService,
		learningService,
		registry,
		orchestrator,
		roles.NewResolver(families),
		report.NewRenderer(fileStorage, log),
		fileStorage,
		service.ProposalSettings{
			GenerateTimeout: cfg.Pipeline.GenerateTimeoutDuration(),
			MaxDocuments:    cfg.Pipeline.MaxDocuments,
		},
		log,
	)

	// Initialize HTTP layer
	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	rt := router.NewRouter(cfg, log, db, authMiddleware, rateLimiter, router.Handlers{
		Proposal: handler.NewProposalHandler(proposalService, learningService, documentService, log),
		Catalog:  handler.NewCatalogHandler(catalogService, log),
		Document: handler.NewDocumentHandler(documentService, cfg.Storage.MaxUploadSizeMB, log),
		Provider: handler.NewProviderHandler(registry),
		Auth:     handler.NewAuthHandler(),
	})

	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(log)
		if err := jobs.RegisterReportRetryJob(
			scheduler,
			proposalService,
			log,
			cfg.Jobs.ReportRetrySchedule,
			cfg.Jobs.ReportRetryBatchSize,
			cfg.Jobs.ReportRetryTimeoutDuration(),
		); err != nil {
			log.Error("Failed to register report retry job", zap.Error(err))
		} else {
			scheduler.Start()
			next, _ := scheduler.NextRun(jobs.ReportRetryJobName)
			log.Info("Scheduler started with report retry job",
				zap.String("cron_expr", cfg.Jobs.ReportRetrySchedule),
				zap.Int("batch_size", cfg.Jobs.ReportRetryBatchSize),
				zap.Time("next_run", next),
			)
		}
	} else {
		log.Info("Background jobs disabled")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			<-scheduler.Stop().Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}

// newProviderRegistry builds the AI provider registry from configuration
func newProviderRegistry(cfg *config.AIConfig, log *zap.Logger) *ai.Registry {
	settings := map[ai.ProviderID]ai.ProviderSettings{
		ai.ProviderAnthropic: providerSettings(cfg.Anthropic),
		ai.ProviderOpenAI:    providerSettings(cfg.OpenAI),
		ai.ProviderGemini:    providerSettings(cfg.Gemini),
	}
	for id, s := range settings {
		log.Info("AI provider", zap.String("provider", string(id)), zap.Bool("enabled", s.Enabled()), zap.Strings("models", s.Models))
	}

	var temperature *float64
	if cfg.Temperature >= 0 {
		t := cfg.Temperature
		temperature = &t
	}

	return ai.NewRegistry(settings, ai.ProviderID(cfg.DefaultProvider), nil, temperature, &http.Client{}, log)
}

func providerSettings(c config.AIProviderConfig) ai.ProviderSettings {
	return ai.ProviderSettings{
		APIKey:       c.APIKey,
		BaseURL:      c.BaseURL,
		Models:       c.Models,
		DefaultModel: c.DefaultModel,
	}
}
