package database

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/straye-as/presales-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedParameters_KeepsExistingValues(t *testing.T) {
	db, err := NewSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	ctx := context.Background()
	custom := domain.Parameter{Name: domain.ParameterTax, Value: decimal.RequireFromString("0.15")}
	require.NoError(t, db.Create(&custom).Error)

	require.NoError(t, SeedParameters(ctx, db))
	require.NoError(t, SeedParameters(ctx, db))

	var params []domain.Parameter
	require.NoError(t, db.Order("name").Find(&params).Error)
	require.Len(t, params, 3)

	byName := map[string]string{}
	for _, p := range params {
		byName[p.Name] = p.Value.StringFixed(2)
	}
	assert.Equal(t, "0.15", byName[domain.ParameterTax])
	assert.Equal(t, "0.10", byName[domain.ParameterOverhead])
	assert.Equal(t, "0.25", byName[domain.ParameterMargin])
}

func TestHealthCheckWithStats(t *testing.T) {
	db, err := NewSQLite(":memory:")
	require.NoError(t, err)

	stats, err := HealthCheckWithStats(db)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MaxOpenConnections)
}
