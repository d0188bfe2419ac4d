package main

import (
	"errors"
	"testing"

	"github.com/straye-as/presales-api/internal/finance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateFlags(t *testing.T) {
	cmd := newCascadeCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--hours", "100", "--margin", "0.3"}))

	margin, err := cmd.Flags().GetFloat64("margin")
	require.NoError(t, err)
	assert.Equal(t, 0.3, margin)

	tax, err := cmd.Flags().GetFloat64("tax")
	require.NoError(t, err)
	assert.Equal(t, 0.21, tax)
}

func TestRateFlags_InvalidMargin(t *testing.T) {
	flags := rateFlags{tax: 0.21, overhead: 0.1, margin: 1}
	_, err := flags.toRates()
	assert.True(t, errors.Is(err, finance.ErrDivisionDomain))
}

func TestCascadeCommand(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"cascade", "--hours", "10", "--rate", "100"})
	assert.NoError(t, cmd.Execute())
}
