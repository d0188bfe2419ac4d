package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/straye-as/presales-api/internal/ai"
	"github.com/straye-as/presales-api/internal/config"
	"github.com/straye-as/presales-api/internal/database"
	"github.com/straye-as/presales-api/internal/domain"
	"github.com/straye-as/presales-api/internal/finance"
	"github.com/straye-as/presales-api/internal/repository"
	"github.com/straye-as/presales-api/internal/service"
	"github.com/straye-as/presales-api/internal/storage"
	"go.uber.org/zap"
)

type runOptions struct {
	dir        string
	provider   string
	model      string
	context    string
	hourlyRate float64
	dbPath     string
	asJSON     bool
	rates      rateFlags
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run FILE...",
		Short: "Analyse project documents and estimate team, schedule and cost",
		Long: "Runs scope analysis, team estimation and schedule generation on the given files.\n" +
			"Provider keys are read from the same configuration as the API (AI_ANTHROPIC_APIKEY etc).",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEstimate(cmd, opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.dir, "dir", ".", "directory the file paths are relative to")
	f.StringVar(&opts.provider, "provider", "", "AI provider (anthropic, openai, gemini); default from config")
	f.StringVar(&opts.model, "model", "", "model name; default from config")
	f.StringVar(&opts.context, "context", "", "additional context for the analysis")
	f.Float64Var(&opts.hourlyRate, "rate", 100, "blended hourly rate for the cost preview")
	f.StringVar(&opts.dbPath, "db", "", "SQLite database with approved proposals to use as few-shot examples")
	f.BoolVar(&opts.asJSON, "json", false, "print the complete analysis as JSON")
	opts.rates.register(cmd)
	return cmd
}

func runEstimate(cmd *cobra.Command, opts *runOptions, files []string) error {
	ctx := cmd.Context()

	rates, err := opts.rates.toRates()
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := zap.NewNop()

	store, err := storage.NewLocalStorage(opts.dir)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", opts.dir, err)
	}

	registry := ai.NewRegistry(map[ai.ProviderID]ai.ProviderSettings{
		ai.ProviderAnthropic: toSettings(cfg.AI.Anthropic),
		ai.ProviderOpenAI:    toSettings(cfg.AI.OpenAI),
		ai.ProviderGemini:    toSettings(cfg.AI.Gemini),
	}, ai.ProviderID(cfg.AI.DefaultProvider), nil, nil, &http.Client{}, log)

	provider, err := registry.Get(ctx, opts.provider, opts.model)
	if err != nil {
		return err
	}

	input := ai.Input{DocumentPaths: files, Context: opts.context}
	if opts.dbPath != "" {
		db, err := database.NewSQLite(opts.dbPath)
		if err != nil {
			return err
		}
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to prepare %s: %w", opts.dbPath, err)
		}
		input.Exemplars = service.NewLearningService(
			repository.NewProposalRepository(db),
			repository.NewMetricsRepository(db),
			service.DefaultLearningSettings(),
			log,
		)
	}

	orchestrator := ai.NewOrchestrator(
		storage.NewDocumentStore(store, cfg.Pipeline.MaxDocumentBytes()),
		ai.DefaultRetryPolicy(),
		log,
	)

	label.Fprintf(os.Stderr, "Estimating %d document(s) with %s/%s...\n", len(files), provider.ID(), provider.Model())
	analysis, err := orchestrator.Run(ctx, provider, input)
	if err != nil {
		return err
	}

	if opts.asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(analysis)
	}

	printAnalysis(analysis)
	return printCascade(analysis.TeamEstimation.TotalHours(), opts.hourlyRate, rates)
}

func toSettings(c config.AIProviderConfig) ai.ProviderSettings {
	return ai.ProviderSettings{APIKey: c.APIKey, BaseURL: c.BaseURL, Models: c.Models, DefaultModel: c.DefaultModel}
}

func printAnalysis(c *domain.CompleteAnalysis) {
	a := c.Analysis
	printHeading("SCOPE (%s complexity)", a.Complexity)
	fmt.Println(a.Scope)
	printList("Core functionalities", a.CoreFunctionalities)
	printList("Integrations", a.Integrations)
	printList("Non-functional requirements", a.NonFunctionalRequirements)
	printList("Risks", a.Risks)

	t := c.TeamEstimation
	printHeading("TEAM (%d people, %d months, %.0f hours)", t.TeamSize(), t.ProjectDuration, t.TotalHours())
	for _, m := range t.TeamComposition {
		fmt.Printf("  %2d × %s\n", m.Quantity, m.Role)
	}
	for _, a := range t.MonthlyAllocation {
		hours := make([]string, len(a.HoursPerMonth))
		for i, h := range a.HoursPerMonth {
			hours[i] = fmt.Sprintf("%.0f", h)
		}
		fmt.Printf("  %-28s %s\n", a.Role, strings.Join(hours, " "))
	}

	s := c.Schedule
	printHeading("SCHEDULE (%d sprints, %.0f%% risk buffer)", len(s.Sprints), s.RiskBuffer)
	for _, sp := range s.Sprints {
		fmt.Printf("  Sprint %d: %s\n", sp.Number, strings.Join(sp.Deliverables, "; "))
	}
	for _, m := range s.Milestones {
		fmt.Printf("  ◆ %s (%s)\n", m.Name, m.Date)
	}
}

func printList(title string, items []string) {
	if len(items) == 0 {
		return
	}
	label.Println(title + ":")
	for _, item := range items {
		fmt.Println("  - " + item)
	}
}

func printCascade(hours, hourlyRate float64, rates finance.Rates) error {
	if hours == 0 {
		warn.Println("\nNo hours allocated, skipping the cost preview")
		return nil
	}
	breakdown, err := finance.FullCascade(decimal.NewFromFloat(hours), decimal.NewFromFloat(hourlyRate), rates)
	if err != nil {
		return err
	}

	printHeading("COST PREVIEW (%.0f h × %.2f)", hours, hourlyRate)
	fmt.Printf("  Base cost        %s\n", breakdown.BaseCost.StringFixed(2))
	fmt.Printf("  + tax %-9s  %s\n", pct(rates.Tax), breakdown.Breakdown.Tax.StringFixed(2))
	fmt.Printf("  + overhead %-4s  %s\n", pct(rates.Overhead), breakdown.Breakdown.Overhead.StringFixed(2))
	fmt.Printf("  Final cost       %s\n", breakdown.FinalCost.StringFixed(2))
	fmt.Printf("  + margin %-6s  %s\n", pct(rates.Margin), breakdown.Breakdown.Margin.StringFixed(2))
	money.Printf("  Final price      %s\n", breakdown.FinalPrice.StringFixed(2))
	return nil
}

func pct(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).StringFixed(0) + "%"
}
