package testutil

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/straye-as/presales-api/internal/database"
	"github.com/straye-as/presales-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// SetupTestDB returns a migrated in-memory SQLite database with the default parameters
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.NewSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	require.NoError(t, database.SeedParameters(context.Background(), db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// CreateTestProfessional inserts an active catalog entry
func CreateTestProfessional(t *testing.T, db *gorm.DB, name, role string, hourlyRate int64) *domain.Professional {
	t.Helper()

	p := &domain.Professional{
		Name:       name,
		Role:       role,
		HourlyRate: decimal.NewFromInt(hourlyRate),
		Seniority:  domain.SenioritySenior,
		Skills:     []string{},
		Active:     true,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}
