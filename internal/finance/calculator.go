// Package finance turns labour hours and catalog rates into cost and price.
//
// All arithmetic runs on shopspring/decimal and is rounded to currency precision
// only when a CostBreakdown is produced. The cascade order is fixed:
// base cost, then tax, then overhead on the tax-inclusive cost, then margin as a
// divisor of the final price.
package finance

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// CurrencyPlaces is the number of decimal places amounts are rounded to on output.
const CurrencyPlaces = 2

var (
	// ErrInvalidInput is returned for negative hours, negative rates or rates outside [0,1].
	ErrInvalidInput = errors.New("invalid financial input")

	// ErrDivisionDomain is returned when a margin rate would make the price infinite or negative.
	ErrDivisionDomain = errors.New("margin rate outside division domain")
)

var (
	zero = decimal.Zero
	one  = decimal.NewFromInt(1)
)

// InputError describes which argument violated a precondition.
type InputError struct {
	Field string
	Value decimal.Decimal
	Err   error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s=%s", e.Err, e.Field, e.Value.String())
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// Rates holds the three cascade rates as fractions.
type Rates struct {
	Tax      decimal.Decimal `json:"tax"`
	Overhead decimal.Decimal `json:"overhead"`
	Margin   decimal.Decimal `json:"margin"`
}

// DefaultRates mirrors the parameter table defaults used when a parameter row is missing.
func DefaultRates() Rates {
	return Rates{
		Tax:      decimal.RequireFromString("0.21"),
		Overhead: decimal.RequireFromString("0.10"),
		Margin:   decimal.RequireFromString("0.25"),
	}
}

// Validate checks every rate against its domain before any arithmetic runs.
func (r Rates) Validate() error {
	if err := checkFraction("taxRate", r.Tax); err != nil {
		return err
	}
	if err := checkFraction("overheadRate", r.Overhead); err != nil {
		return err
	}
	return checkMargin(r.Margin)
}

// Components is the per-step contribution to the final price.
type Components struct {
	Base     decimal.Decimal `json:"base"`
	Tax      decimal.Decimal `json:"tax"`
	Overhead decimal.Decimal `json:"overhead"`
	Margin   decimal.Decimal `json:"margin"`
}

// Sum returns base + tax + overhead + margin.
func (c Components) Sum() decimal.Decimal {
	return c.Base.Add(c.Tax).Add(c.Overhead).Add(c.Margin)
}

// CostBreakdown is the rounded result of a full cascade.
type CostBreakdown struct {
	BaseCost    decimal.Decimal `json:"baseCost"`
	CostWithTax decimal.Decimal `json:"costWithTax"`
	FinalCost   decimal.Decimal `json:"finalCost"`
	FinalPrice  decimal.Decimal `json:"finalPrice"`
	Breakdown   Components      `json:"breakdown"`
}

// BaseCost returns totalHours × hourlyRate.
func BaseCost(totalHours, hourlyRate decimal.Decimal) (decimal.Decimal, error) {
	if totalHours.LessThan(zero) {
		return zero, &InputError{Field: "totalHours", Value: totalHours, Err: ErrInvalidInput}
	}
	if hourlyRate.LessThan(zero) {
		return zero, &InputError{Field: "hourlyRate", Value: hourlyRate, Err: ErrInvalidInput}
	}
	return totalHours.Mul(hourlyRate), nil
}

// ApplyTax returns amount × (1 + taxRate).
func ApplyTax(amount, taxRate decimal.Decimal) (decimal.Decimal, error) {
	if err := checkFraction("taxRate", taxRate); err != nil {
		return zero, err
	}
	return amount.Mul(one.Add(taxRate)), nil
}

// ApplyOverhead returns amount × (1 + overheadRate).
func ApplyOverhead(amount, overheadRate decimal.Decimal) (decimal.Decimal, error) {
	if err := checkFraction("overheadRate", overheadRate); err != nil {
		return zero, err
	}
	return amount.Mul(one.Add(overheadRate)), nil
}

// ApplyMargin returns amount / (1 - marginRate), so the margin is a fraction of the price.
func ApplyMargin(amount, marginRate decimal.Decimal) (decimal.Decimal, error) {
	if err := checkMargin(marginRate); err != nil {
		return zero, err
	}
	return amount.Div(one.Sub(marginRate)), nil
}

// FullCascade runs base → tax → overhead → margin and rounds once at the end.
// Components are differences of the rounded running totals so they add up to
// FinalPrice exactly.
func FullCascade(totalHours, hourlyRate decimal.Decimal, rates Rates) (*CostBreakdown, error) {
	if err := rates.Validate(); err != nil {
		return nil, err
	}

	base, err := BaseCost(totalHours, hourlyRate)
	if err != nil {
		return nil, err
	}
	withTax, err := ApplyTax(base, rates.Tax)
	if err != nil {
		return nil, err
	}
	withOverhead, err := ApplyOverhead(withTax, rates.Overhead)
	if err != nil {
		return nil, err
	}
	price, err := ApplyMargin(withOverhead, rates.Margin)
	if err != nil {
		return nil, err
	}

	out := &CostBreakdown{
		BaseCost:    Round(base),
		CostWithTax: Round(withTax),
		FinalCost:   Round(withOverhead),
		FinalPrice:  Round(price),
	}
	out.Breakdown = Components{
		Base:     out.BaseCost,
		Tax:      out.CostWithTax.Sub(out.BaseCost),
		Overhead: out.FinalCost.Sub(out.CostWithTax),
		Margin:   out.FinalPrice.Sub(out.FinalCost),
	}
	return out, nil
}

// Round rounds an amount to currency precision.
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(CurrencyPlaces)
}

func checkFraction(field string, rate decimal.Decimal) error {
	if rate.LessThan(zero) || rate.GreaterThan(one) {
		return &InputError{Field: field, Value: rate, Err: ErrInvalidInput}
	}
	return nil
}

func checkMargin(rate decimal.Decimal) error {
	if rate.LessThan(zero) {
		return &InputError{Field: "marginRate", Value: rate, Err: ErrInvalidInput}
	}
	if rate.GreaterThanOrEqual(one) {
		return &InputError{Field: "marginRate", Value: rate, Err: ErrDivisionDomain}
	}
	return nil
}
