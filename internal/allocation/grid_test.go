package allocation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthsToWeeks_FlatSplit(t *testing.T) {
	weeks := MonthsToWeeks([]float64{160, 80, 10})
	assert.Equal(t, []float64{40, 40, 40, 40, 20, 20, 20, 20, 2.5, 2.5, 2.5, 2.5}, weeks)
	assert.Equal(t, Sum([]float64{160, 80, 10}), Sum(weeks))
}

func TestWeeksToMonths_GroupsOfFour(t *testing.T) {
	months := WeeksToMonths([]float64{10, 20, 30, 40, 1, 1, 1, 1})
	assert.Equal(t, []float64{100, 4}, months)
}

func TestWeeksToMonths_TrailingPartialGroup(t *testing.T) {
	months := WeeksToMonths([]float64{8, 8, 8, 8, 5, 5})
	assert.Equal(t, []float64{32, 10}, months)
}

func TestRoundTrip_DivisibleByFour(t *testing.T) {
	inputs := [][]float64{
		{},
		{0},
		{160, 160, 120, 80, 40, 0},
		{4, 8, 12, 1000},
		{0.4, 1.2, 2},
	}
	for _, in := range inputs {
		got := WeeksToMonths(MonthsToWeeks(in))
		assert.Equal(t, len(in), len(got))
		for i := range in {
			assert.Equal(t, in[i], got[i])
		}
	}
}

func TestSum_NoFloatDrift(t *testing.T) {
	assert.Equal(t, 0.4, Sum([]float64{0.1, 0.1, 0.1, 0.1}))
	assert.Equal(t, 0.3, Sum([]float64{0.1, 0.2}))
}

func TestAllocation_TotalsAgree(t *testing.T) {
	a := FromWeeks([]float64{3, 3.5, 2, 0.25, 7, 7})
	assert.Equal(t, Sum(a.HoursPerWeek), Sum(a.HoursPerMonth))
	assert.Equal(t, 22.75, a.TotalHours())
	assert.Equal(t, 2, a.Months())
}

func TestResize_GrowthPreservesTotal(t *testing.T) {
	a := FromMonths([]float64{100, 50, 25})

	grown, dropped, err := Resize(a, 6, RejectLossy)
	require.NoError(t, err)
	assert.Zero(t, dropped)
	assert.Equal(t, []float64{100, 50, 25, 0, 0, 0}, grown.HoursPerMonth)
	assert.Len(t, grown.HoursPerWeek, 24)
	assert.Equal(t, a.TotalHours(), grown.TotalHours())
	assert.Equal(t, grown.TotalHours(), Sum(grown.HoursPerWeek))
}

func TestResize_ShrinkOverZeroMonthsIsAllowed(t *testing.T) {
	a := FromMonths([]float64{100, 50, 0, 0})

	shrunk, dropped, err := Resize(a, 2, RejectLossy)
	require.NoError(t, err)
	assert.Zero(t, dropped)
	assert.Equal(t, []float64{100, 50}, shrunk.HoursPerMonth)
}

func TestResize_LossyShrinkIsRejected(t *testing.T) {
	a := FromMonths([]float64{100, 50, 0, 30})

	unchanged, _, err := Resize(a, 2, RejectLossy)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLossyResize))

	var trunc *TruncationError
	require.True(t, errors.As(err, &trunc))
	assert.Equal(t, []int{4}, trunc.Months)
	assert.Equal(t, 30.0, trunc.DroppedHours)
	assert.Equal(t, a.HoursPerMonth, unchanged.HoursPerMonth)
}

func TestResize_ExplicitTruncate(t *testing.T) {
	a := FromMonths([]float64{100, 50, 20, 30})

	shrunk, dropped, err := Resize(a, 2, Truncate)
	require.NoError(t, err)
	assert.Equal(t, 50.0, dropped)
	assert.Equal(t, 150.0, shrunk.TotalHours())
	assert.Len(t, shrunk.HoursPerWeek, 8)
}

func TestResize_RejectsNonPositiveDuration(t *testing.T) {
	_, _, err := Resize(FromMonths([]float64{1}), 0, Truncate)
	assert.Error(t, err)
}
