package logger

import (
	"fmt"

	"github.com/straye-as/presales-api/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a new structured logger
func NewLogger(cfg *config.LoggingConfig, appCfg *config.AppConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" || appCfg.Environment == "production" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	zapCfg.InitialFields = map[string]interface{}{
		"app":         appCfg.Name,
		"environment": appCfg.Environment,
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return logger, nil
}

// WithProvider tags pipeline log lines with the model that produced them
func WithProvider(logger *zap.Logger, provider, model string) *zap.Logger {
	return logger.With(
		zap.String("provider", provider),
		zap.String("model", model),
	)
}

// WithProposal tags log lines with the proposal they concern
func WithProposal(logger *zap.Logger, proposalID string) *zap.Logger {
	return logger.With(zap.String("proposal_id", proposalID))
}
