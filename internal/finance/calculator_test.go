package finance

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestFullCascade_WorkedExample(t *testing.T) {
	got, err := FullCascade(d("1000"), d("100"), Rates{Tax: d("0.21"), Overhead: d("0.10"), Margin: d("0.25")})
	require.NoError(t, err)

	assert.Equal(t, "100000", got.BaseCost.String())
	assert.Equal(t, "121000", got.CostWithTax.String())
	assert.Equal(t, "133100", got.FinalCost.String())
	assert.Equal(t, "177466.67", got.FinalPrice.StringFixed(2))

	assert.Equal(t, "21000", got.Breakdown.Tax.String())
	assert.Equal(t, "12100", got.Breakdown.Overhead.String())
	assert.Equal(t, "44366.67", got.Breakdown.Margin.StringFixed(2))
	assert.True(t, got.Breakdown.Sum().Equal(got.FinalPrice))
}

func TestFullCascade_MatchesComposedSteps(t *testing.T) {
	cases := []struct {
		name  string
		hours string
		rate  string
		rates Rates
	}{
		{"zero hours", "0", "120", DefaultRates()},
		{"zero rate", "160", "0", DefaultRates()},
		{"no markup", "37.5", "88.40", Rates{Tax: d("0"), Overhead: d("0"), Margin: d("0")}},
		{"full tax", "10", "3.33", Rates{Tax: d("1"), Overhead: d("1"), Margin: d("0.5")}},
		{"repeating margin", "123.25", "97.13", Rates{Tax: d("0.21"), Overhead: d("0.07"), Margin: d("0.333")}},
		{"high margin", "2", "1", Rates{Tax: d("0.05"), Overhead: d("0.15"), Margin: d("0.99")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FullCascade(d(tc.hours), d(tc.rate), tc.rates)
			require.NoError(t, err)

			base, err := BaseCost(d(tc.hours), d(tc.rate))
			require.NoError(t, err)
			taxed, err := ApplyTax(base, tc.rates.Tax)
			require.NoError(t, err)
			loaded, err := ApplyOverhead(taxed, tc.rates.Overhead)
			require.NoError(t, err)
			price, err := ApplyMargin(loaded, tc.rates.Margin)
			require.NoError(t, err)

			assert.True(t, Round(price).Equal(got.FinalPrice), "want %s got %s", Round(price), got.FinalPrice)
			assert.True(t, got.Breakdown.Sum().Equal(got.FinalPrice))
			assert.False(t, got.FinalPrice.LessThan(got.FinalCost))
		})
	}
}

func TestBaseCost_RejectsNegativeInputs(t *testing.T) {
	_, err := BaseCost(d("-1"), d("10"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)

	var inputErr *InputError
	require.True(t, errors.As(err, &inputErr))
	assert.Equal(t, "totalHours", inputErr.Field)

	_, err = BaseCost(d("1"), d("-0.01"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestApplyTaxAndOverhead_Bounds(t *testing.T) {
	_, err := ApplyTax(d("100"), d("1.01"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ApplyOverhead(d("100"), d("-0.1"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	got, err := ApplyTax(d("100"), d("1"))
	require.NoError(t, err)
	assert.Equal(t, "200", got.String())
}

func TestApplyMargin_DivisionDomain(t *testing.T) {
	_, err := ApplyMargin(d("100"), d("1"))
	assert.ErrorIs(t, err, ErrDivisionDomain)

	_, err = ApplyMargin(d("100"), d("1.5"))
	assert.ErrorIs(t, err, ErrDivisionDomain)

	_, err = ApplyMargin(d("100"), d("-0.2"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	got, err := ApplyMargin(d("75"), d("0.25"))
	require.NoError(t, err)
	assert.Equal(t, "100", got.String())
}

func TestFullCascade_ValidatesRatesFirst(t *testing.T) {
	_, err := FullCascade(d("10"), d("10"), Rates{Tax: d("0.2"), Overhead: d("0.1"), Margin: d("1")})
	assert.ErrorIs(t, err, ErrDivisionDomain)
}
