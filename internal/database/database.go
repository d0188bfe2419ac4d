package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/straye-as/presales-api/internal/config"
	"github.com/straye-as/presales-api/internal/domain"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// NewDatabase creates a new PostgreSQL connection
func NewDatabase(cfg *config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.ConnectionString()), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("Database connection established",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Name),
		zap.Int("max_open_conns", cfg.MaxOpenConns),
	)
	return db, nil
}

// NewSQLite opens a SQLite database, used by tests and the offline CLI.
// Pass ":memory:" or a file: DSN. A single connection keeps in-memory data visible
// to every query.
func NewSQLite(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// AutoMigrate creates the schema from the models (tests and local development only;
// deployed databases use the goose migrations)
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Professional{},
		&domain.Parameter{},
		&domain.Proposal{},
		&domain.ProposalResource{},
		&domain.ProposalMetrics{},
		&domain.Document{},
	)
}

// DefaultParameters are the pricing rates inserted when the table has none
func DefaultParameters() []domain.Parameter {
	return []domain.Parameter{
		{Name: domain.ParameterTax, Value: decimal.RequireFromString("0.21"), Description: "Tax rate applied to the base cost"},
		{Name: domain.ParameterOverhead, Value: decimal.RequireFromString("0.10"), Description: "Overhead rate applied after tax"},
		{Name: domain.ParameterMargin, Value: decimal.RequireFromString("0.25"), Description: "Margin as a fraction of the final price"},
	}
}

// SeedParameters inserts any missing default parameter and leaves existing rows untouched
func SeedParameters(ctx context.Context, db *gorm.DB) error {
	params := DefaultParameters()
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&params).Error
}

// HealthCheck pings the database
func HealthCheck(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// HealthCheckWithStats pings the database and returns pool statistics
func HealthCheckWithStats(db *gorm.DB) (sql.DBStats, error) {
	if err := HealthCheck(db); err != nil {
		return sql.DBStats{}, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return sql.DBStats{}, err
	}
	return sqlDB.Stats(), nil
}
