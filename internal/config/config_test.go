package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		AI:       AIConfig{DefaultProvider: "anthropic", MaxAttemptsPerStep: 3},
		Pipeline: PipelineConfig{MaxDocuments: 10},
		Learning: LearningConfig{CostThreshold: 100, FallbackHourlyRate: 100},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown provider", mutate: func(c *Config) { c.AI.DefaultProvider = "mistral" }, wantErr: "defaultProvider"},
		{name: "no attempts", mutate: func(c *Config) { c.AI.MaxAttemptsPerStep = 0 }, wantErr: "maxAttemptsPerStep"},
		{name: "negative retries", mutate: func(c *Config) { c.AI.MaxPipelineRetries = -1 }, wantErr: "retry counts"},
		{name: "no documents", mutate: func(c *Config) { c.Pipeline.MaxDocuments = 0 }, wantErr: "maxDocuments"},
		{name: "negative threshold", mutate: func(c *Config) { c.Learning.CostThreshold = -1 }, wantErr: "learning"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDurations(t *testing.T) {
	ai := AIConfig{CallTimeout: 180, BaseBackoffMs: 500, MaxBackoffMs: 8000}
	assert.Equal(t, 3*time.Minute, ai.CallTimeoutDuration())
	assert.Equal(t, 500*time.Millisecond, ai.BaseBackoffDuration())
	assert.Equal(t, 8*time.Second, ai.MaxBackoffDuration())

	p := PipelineConfig{GenerateTimeout: 600, MaxDocumentSizeMB: 2}
	assert.Equal(t, 10*time.Minute, p.GenerateTimeoutDuration())
	assert.Equal(t, int64(2<<20), p.MaxDocumentBytes())

	j := JobsConfig{ReportRetryTimeout: 300}
	assert.Equal(t, 5*time.Minute, j.ReportRetryTimeoutDuration())
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.AI.DefaultProvider)
	assert.Equal(t, 3, cfg.AI.MaxAttemptsPerStep)
	assert.Equal(t, 10, cfg.Pipeline.MaxDocuments)
	assert.Equal(t, int64(50), cfg.Storage.MaxUploadSizeMB)
	assert.Equal(t, 5, cfg.RateLimit.GenerateRequestsPerMinute)
	assert.Contains(t, cfg.CORS.ExposedHeaders, "Content-Disposition")
	assert.Equal(t, "0 */15 * * * *", cfg.Jobs.ReportRetrySchedule)
}
