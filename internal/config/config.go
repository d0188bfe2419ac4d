package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/straye-as/presales-api/internal/secrets"
	"go.uber.org/zap"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	AzureAd   AzureAdConfig
	ApiKey    ApiKeyConfig
	Storage   StorageConfig
	Secrets   SecretsConfig
	Logging   LoggingConfig
	Server    ServerConfig
	CORS      CORSConfig
	Security  SecurityConfig
	RateLimit RateLimitConfig
	AI        AIConfig
	Pipeline  PipelineConfig
	Learning  LearningConfig
	Roles     RolesConfig
	Jobs      JobsConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
}

type AzureAdConfig struct {
	TenantId       string
	ClientId       string
	InstanceUrl    string
	RequiredScopes string
}

type ApiKeyConfig struct {
	SecretName string
	Value      string // Loaded from secrets or environment
}

type StorageConfig struct {
	Mode                  string
	LocalBasePath         string
	CloudConnectionString string
	CloudContainer        string
	MaxUploadSizeMB       int64
}

type SecretsConfig struct {
	// Source determines where secrets are loaded from: "environment", "vault", or "auto"
	// "auto" uses environment in development, vault in staging/production
	Source       string
	KeyVaultName string
	CacheEnabled bool
	CacheTTL     int // seconds
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int
	EnableSwagger  bool
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	// AllowedOrigins is a list of allowed origins for CORS requests
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	// MaxAge is the max age (in seconds) for preflight cache
	MaxAge int
}

// SecurityConfig holds security header configuration
type SecurityConfig struct {
	EnableHSTS            bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	HSTSPreload           bool
	ContentSecurityPolicy string
	// FrameOptions sets the X-Frame-Options header (DENY, SAMEORIGIN, or empty to disable)
	FrameOptions       string
	ContentTypeNosniff bool
	XSSProtection      string
	ReferrerPolicy     string
	PermissionsPolicy  string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled bool
	// RequestsPerMinute is the default rate limit per IP
	RequestsPerMinute int
	// GenerateRequestsPerMinute limits the expensive generation endpoint per IP
	GenerateRequestsPerMinute int
	WhitelistIPs              []string
	WhitelistPaths            []string
}

// AIProviderConfig configures one LLM backend
type AIProviderConfig struct {
	APIKey       string
	BaseURL      string
	Models       []string
	DefaultModel string
}

// AIConfig configures the estimation pipeline's LLM access and retry policy
type AIConfig struct {
	DefaultProvider string
	// Temperature is sent to models that accept it; negative disables it
	Temperature            float64
	MaxAttemptsPerStep     int
	InvalidResponseRetries int
	MaxPipelineRetries     int
	BaseBackoffMs          int
	MaxBackoffMs           int
	CallTimeout            int // seconds
	Anthropic              AIProviderConfig
	OpenAI                 AIProviderConfig
	Gemini                 AIProviderConfig
}

// PipelineConfig bounds one proposal generation
type PipelineConfig struct {
	GenerateTimeout   int // seconds
	MaxDocuments      int
	MaxDocumentSizeMB int64
	DocumentWorkers   int
}

// LearningConfig tunes modification tracking and few-shot selection
type LearningConfig struct {
	// CostThreshold is the absolute cost change below which cost is not counted as modified
	CostThreshold float64
	// FallbackHourlyRate prices the AI baseline when no original cost was stored
	FallbackHourlyRate float64
	ExemplarLimit      int
}

// RolesConfig points at an optional YAML role family table
type RolesConfig struct {
	FamiliesFile string
}

// JobsConfig controls background jobs
type JobsConfig struct {
	Enabled              bool
	ReportRetrySchedule  string
	ReportRetryBatchSize int
	ReportRetryTimeout   int // seconds
}

// ConnectionString builds PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// RequestTimeoutDuration returns request timeout as duration
func (s *ServerConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// CallTimeoutDuration returns the per provider call timeout
func (a *AIConfig) CallTimeoutDuration() time.Duration {
	return time.Duration(a.CallTimeout) * time.Second
}

// BaseBackoffDuration returns the first retry delay
func (a *AIConfig) BaseBackoffDuration() time.Duration {
	return time.Duration(a.BaseBackoffMs) * time.Millisecond
}

// MaxBackoffDuration returns the retry delay cap
func (a *AIConfig) MaxBackoffDuration() time.Duration {
	return time.Duration(a.MaxBackoffMs) * time.Millisecond
}

// GenerateTimeoutDuration returns the outer deadline of one generation
func (p *PipelineConfig) GenerateTimeoutDuration() time.Duration {
	return time.Duration(p.GenerateTimeout) * time.Second
}

// MaxDocumentBytes returns the per document size limit in bytes
func (p *PipelineConfig) MaxDocumentBytes() int64 {
	return p.MaxDocumentSizeMB << 20
}

// ReportRetryTimeoutDuration returns how long one report retry run may take
func (j *JobsConfig) ReportRetryTimeoutDuration() time.Duration {
	return time.Duration(j.ReportRetryTimeout) * time.Second
}

// Load loads configuration from file and environment variables
// This is a basic load that doesn't fetch secrets from vault
// Use LoadWithSecrets for full secret resolution
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read from config file
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Load API key from environment if not in config
	if cfg.ApiKey.Value == "" {
		cfg.ApiKey.Value = v.GetString("ADMIN_API_KEY")
	}

	// Load Azure AD config from environment if not in config
	if cfg.AzureAd.TenantId == "" {
		cfg.AzureAd.TenantId = v.GetString("AZURE_TENANT_ID")
	}
	if cfg.AzureAd.ClientId == "" {
		cfg.AzureAd.ClientId = v.GetString("AZURE_CLIENT_ID")
	}
	if cfg.AzureAd.RequiredScopes == "" {
		cfg.AzureAd.RequiredScopes = v.GetString("AZURE_REQUIRED_SCOPES")
	}

	// Load Azure Key Vault name from environment if not in config
	if cfg.Secrets.KeyVaultName == "" {
		cfg.Secrets.KeyVaultName = v.GetString("AZURE_KEY_VAULT_NAME")
	}

	// Provider keys under their conventional environment names
	if cfg.AI.Anthropic.APIKey == "" {
		cfg.AI.Anthropic.APIKey = v.GetString("ANTHROPIC_API_KEY")
	}
	if cfg.AI.OpenAI.APIKey == "" {
		cfg.AI.OpenAI.APIKey = v.GetString("OPENAI_API_KEY")
	}
	if cfg.AI.Gemini.APIKey == "" {
		cfg.AI.Gemini.APIKey = v.GetString("GEMINI_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values that would otherwise fail deep inside the pipeline
func (c *Config) Validate() error {
	switch c.AI.DefaultProvider {
	case "anthropic", "openai", "gemini":
	default:
		return fmt.Errorf("ai.defaultProvider must be anthropic, openai or gemini, got %q", c.AI.DefaultProvider)
	}
	if c.AI.MaxAttemptsPerStep < 1 {
		return fmt.Errorf("ai.maxAttemptsPerStep must be at least 1")
	}
	if c.AI.InvalidResponseRetries < 0 || c.AI.MaxPipelineRetries < 0 {
		return fmt.Errorf("ai retry counts must not be negative")
	}
	if c.Pipeline.MaxDocuments < 1 {
		return fmt.Errorf("pipeline.maxDocuments must be at least 1")
	}
	if c.Learning.CostThreshold < 0 || c.Learning.FallbackHourlyRate < 0 {
		return fmt.Errorf("learning thresholds must not be negative")
	}
	return nil
}

// LoadWithSecrets loads configuration and resolves secrets from the configured source
// In development (or when secrets.source = "environment"), secrets come from env vars
// In staging/production (or when secrets.source = "vault"), secrets come from Azure Key Vault
//
// Key Vault is used when BOTH conditions are met:
// 1. USE_AZURE_KEY_VAULT environment variable is set to "true"
// 2. Environment is "staging" or "production"
func LoadWithSecrets(ctx context.Context, logger *zap.Logger) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	useKeyVault := strings.ToLower(os.Getenv("USE_AZURE_KEY_VAULT")) == "true"
	isValidEnv := cfg.App.Environment == "staging" || cfg.App.Environment == "production"

	if !useKeyVault {
		logger.Info("USE_AZURE_KEY_VAULT not enabled, using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if !isValidEnv {
		logger.Warn("USE_AZURE_KEY_VAULT is enabled but environment is not staging or production, using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
			zap.Bool("use_key_vault", useKeyVault),
		)
		return cfg, nil
	}

	if cfg.Secrets.KeyVaultName == "" {
		return nil, fmt.Errorf("AZURE_KEY_VAULT_NAME is required when USE_AZURE_KEY_VAULT=true")
	}

	logger.Info("Azure Key Vault enabled for secrets",
		zap.String("environment", cfg.App.Environment),
		zap.String("key_vault_name", cfg.Secrets.KeyVaultName),
	)

	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.SourceVault,
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets provider (USE_AZURE_KEY_VAULT=true requires valid vault): %w", err)
	}

	if !provider.IsVaultEnabled() {
		return nil, fmt.Errorf("vault provider not enabled despite USE_AZURE_KEY_VAULT=true")
	}

	logger.Info("Loading secrets from Azure Key Vault")
	applySecrets(ctx, cfg, provider)

	// Database name and SSL mode vary per environment and are not stored in the vault
	if defaultDB := os.Getenv("DEFAULT_DATABASE"); defaultDB != "" {
		cfg.Database.Name = defaultDB
	}
	if sslMode := os.Getenv("DATABASE_SSLMODE"); sslMode != "" {
		cfg.Database.SSLMode = sslMode
	}

	logger.Info("Secrets loaded from vault successfully")
	return cfg, nil
}

// SecretSource resolves a secret by vault name with an environment fallback
type SecretSource interface {
	GetSecretOrEnv(ctx context.Context, secretName, envName string) (string, error)
}

type secretBinding struct {
	secret string
	env    string
	target *string
}

// applySecrets overwrites every bound field whose secret resolves to a non-empty value
func applySecrets(ctx context.Context, cfg *Config, src SecretSource) {
	bindings := []secretBinding{
		{"POSTGRES-MAIN-HOST", "DATABASE_HOST", &cfg.Database.Host},
		{"POSTGRES-MAIN-USER", "DATABASE_USER", &cfg.Database.User},
		{"POSTGRES-MAIN-PASSWORD", "DATABASE_PASSWORD", &cfg.Database.Password},
		{"azure-tenant-id", "AZURE_TENANT_ID", &cfg.AzureAd.TenantId},
		{"azure-client-id", "AZURE_CLIENT_ID", &cfg.AzureAd.ClientId},
		{"admin-api-key", "ADMIN_API_KEY", &cfg.ApiKey.Value},
		{"storage-connection-string", "STORAGE_CLOUDCONNECTIONSTRING", &cfg.Storage.CloudConnectionString},
		{"ANTHROPIC-API-KEY", "ANTHROPIC_API_KEY", &cfg.AI.Anthropic.APIKey},
		{"OPENAI-API-KEY", "OPENAI_API_KEY", &cfg.AI.OpenAI.APIKey},
		{"GEMINI-API-KEY", "GEMINI_API_KEY", &cfg.AI.Gemini.APIKey},
	}
	for _, b := range bindings {
		if value, err := src.GetSecretOrEnv(ctx, b.secret, b.env); err == nil && value != "" {
			*b.target = value
		}
	}
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "Straye Presales API")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "presales")
	v.SetDefault("database.user", "presales_user")
	v.SetDefault("database.password", "presales_password")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", 300)

	// Secrets defaults
	v.SetDefault("secrets.source", "auto")
	v.SetDefault("secrets.cacheEnabled", true)
	v.SetDefault("secrets.cacheTTL", 300) // 5 minutes

	// Azure AD defaults
	v.SetDefault("azuread.instanceUrl", "https://login.microsoftonline.com/")

	// Storage defaults
	v.SetDefault("storage.mode", "local")
	v.SetDefault("storage.localBasePath", "./storage")
	v.SetDefault("storage.cloudContainer", "presales")
	v.SetDefault("storage.maxUploadSizeMB", 50)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// Server defaults; generation can take minutes so the write timeout is generous
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 660)
	v.SetDefault("server.requestTimeout", 60)
	v.SetDefault("server.enableSwagger", true)

	// CORS defaults - restrictive by default
	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"})
	v.SetDefault("cors.exposedHeaders", []string{"Location", "X-Request-ID", "Content-Disposition"})
	v.SetDefault("cors.allowCredentials", true)
	v.SetDefault("cors.maxAge", 300)

	// Security header defaults - secure by default
	v.SetDefault("security.enableHSTS", false)
	v.SetDefault("security.hstsMaxAge", 31536000)
	v.SetDefault("security.hstsIncludeSubdomains", true)
	v.SetDefault("security.hstsPreload", false)
	v.SetDefault("security.contentSecurityPolicy", "default-src 'self'")
	v.SetDefault("security.frameOptions", "DENY")
	v.SetDefault("security.contentTypeNosniff", true)
	v.SetDefault("security.xssProtection", "1; mode=block")
	v.SetDefault("security.referrerPolicy", "strict-origin-when-cross-origin")
	v.SetDefault("security.permissionsPolicy", "geolocation=(), microphone=(), camera=()")

	// Rate limiting defaults
	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 120)
	v.SetDefault("rateLimit.generateRequestsPerMinute", 5)
	v.SetDefault("rateLimit.whitelistIPs", []string{"127.0.0.1", "::1"})
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health", "/health/db", "/health/ready"})

	// AI provider defaults
	v.SetDefault("ai.defaultProvider", "anthropic")
	v.SetDefault("ai.temperature", 0.2)
	v.SetDefault("ai.maxAttemptsPerStep", 3)
	v.SetDefault("ai.invalidResponseRetries", 1)
	v.SetDefault("ai.maxPipelineRetries", 6)
	v.SetDefault("ai.baseBackoffMs", 500)
	v.SetDefault("ai.maxBackoffMs", 8000)
	v.SetDefault("ai.callTimeout", 180)
	v.SetDefault("ai.anthropic.apiKey", "")
	v.SetDefault("ai.anthropic.baseUrl", "")
	v.SetDefault("ai.anthropic.models", []string{"claude-sonnet-4-20250514", "claude-opus-4-20250514", "claude-3-5-haiku-20241022"})
	v.SetDefault("ai.anthropic.defaultModel", "claude-sonnet-4-20250514")
	v.SetDefault("ai.openai.apiKey", "")
	v.SetDefault("ai.openai.baseUrl", "")
	v.SetDefault("ai.openai.models", []string{"gpt-4o", "gpt-4o-mini", "o1", "o1-mini", "gpt-5"})
	v.SetDefault("ai.openai.defaultModel", "gpt-4o")
	v.SetDefault("ai.gemini.apiKey", "")
	v.SetDefault("ai.gemini.baseUrl", "")
	v.SetDefault("ai.gemini.models", []string{"gemini-2.5-pro", "gemini-2.5-flash"})
	v.SetDefault("ai.gemini.defaultModel", "gemini-2.5-pro")

	// Pipeline defaults
	v.SetDefault("pipeline.generateTimeout", 600)
	v.SetDefault("pipeline.maxDocuments", 10)
	v.SetDefault("pipeline.maxDocumentSizeMB", 32)
	v.SetDefault("pipeline.documentWorkers", 4)

	// Learning defaults
	v.SetDefault("learning.costThreshold", 100)
	v.SetDefault("learning.fallbackHourlyRate", 100)
	v.SetDefault("learning.exemplarLimit", 3)

	// Role resolution defaults
	v.SetDefault("roles.familiesFile", "")

	// Job defaults
	v.SetDefault("jobs.enabled", true)
	v.SetDefault("jobs.reportRetrySchedule", "0 */15 * * * *")
	v.SetDefault("jobs.reportRetryBatchSize", 20)
	v.SetDefault("jobs.reportRetryTimeout", 300)
}
