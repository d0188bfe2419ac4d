// Package allocation converts resource hours between monthly and weekly granularity.
//
// A month is always four weeks and hours are spread flat across them. Sums are
// taken in decimal so re-deriving one array from the other never moves the total.
package allocation

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// WeeksPerMonth is the fixed number of weekly slots per month.
const WeeksPerMonth = 4

var weeksPerMonth = decimal.NewFromInt(WeeksPerMonth)

// ErrLossyResize is returned when shrinking a duration would drop allocated hours.
var ErrLossyResize = errors.New("resize would drop allocated hours")

// TruncationError reports which trailing months still carried hours.
type TruncationError struct {
	Months       []int
	DroppedHours float64
}

func (e *TruncationError) Error() string {
	return fmt.Sprintf("%s: %.2f hours in months %v", ErrLossyResize, e.DroppedHours, e.Months)
}

func (e *TruncationError) Unwrap() error {
	return ErrLossyResize
}

// ResizeMode controls what Resize does with non-zero months past the new duration.
type ResizeMode int

const (
	// RejectLossy fails with a TruncationError instead of dropping hours.
	RejectLossy ResizeMode = iota
	// Truncate drops trailing months and reports the dropped total.
	Truncate
)

// Allocation holds the two views of one resource's hours.
type Allocation struct {
	HoursPerMonth []float64 `json:"hoursPerMonth"`
	HoursPerWeek  []float64 `json:"hoursPerWeek"`
}

// FromMonths builds an allocation and derives the weekly view.
func FromMonths(hoursPerMonth []float64) Allocation {
	months := append([]float64(nil), hoursPerMonth...)
	return Allocation{HoursPerMonth: months, HoursPerWeek: MonthsToWeeks(months)}
}

// FromWeeks builds an allocation and derives the monthly view.
func FromWeeks(hoursPerWeek []float64) Allocation {
	weeks := append([]float64(nil), hoursPerWeek...)
	return Allocation{HoursPerMonth: WeeksToMonths(weeks), HoursPerWeek: weeks}
}

// TotalHours is the sum of the monthly view.
func (a Allocation) TotalHours() float64 {
	return Sum(a.HoursPerMonth)
}

// Months is the duration the allocation covers.
func (a Allocation) Months() int {
	return len(a.HoursPerMonth)
}

// MonthsToWeeks spreads each month evenly across four weekly slots.
func MonthsToWeeks(hoursPerMonth []float64) []float64 {
	weeks := make([]float64, 0, len(hoursPerMonth)*WeeksPerMonth)
	for _, month := range hoursPerMonth {
		week := decimal.NewFromFloat(month).Div(weeksPerMonth).InexactFloat64()
		for i := 0; i < WeeksPerMonth; i++ {
			weeks = append(weeks, week)
		}
	}
	return weeks
}

// WeeksToMonths sums consecutive runs of four weeks. A trailing partial run forms its own month.
func WeeksToMonths(hoursPerWeek []float64) []float64 {
	months := make([]float64, 0, (len(hoursPerWeek)+WeeksPerMonth-1)/WeeksPerMonth)
	for start := 0; start < len(hoursPerWeek); start += WeeksPerMonth {
		end := start + WeeksPerMonth
		if end > len(hoursPerWeek) {
			end = len(hoursPerWeek)
		}
		months = append(months, Sum(hoursPerWeek[start:end]))
	}
	return months
}

// Sum adds hours in decimal and returns the nearest float.
func Sum(hours []float64) float64 {
	return SumDecimal(hours).InexactFloat64()
}

// SumDecimal adds hours without float accumulation error.
func SumDecimal(hours []float64) decimal.Decimal {
	total := decimal.Zero
	for _, h := range hours {
		total = total.Add(decimal.NewFromFloat(h))
	}
	return total
}

// Resize changes the allocation to cover months. Growth pads with zero months.
// Shrinking past non-zero months fails unless mode is Truncate; the returned
// float is the number of hours dropped.
func Resize(a Allocation, months int, mode ResizeMode) (Allocation, float64, error) {
	if months < 1 {
		return Allocation{}, 0, fmt.Errorf("duration must be at least one month, got %d", months)
	}

	current := append([]float64(nil), a.HoursPerMonth...)
	if months >= len(current) {
		current = append(current, make([]float64, months-len(current))...)
		return FromMonths(current), 0, nil
	}

	var lossy []int
	for i := months; i < len(current); i++ {
		if current[i] != 0 {
			lossy = append(lossy, i+1)
		}
	}
	dropped := Sum(current[months:])

	if len(lossy) > 0 && mode != Truncate {
		return a, 0, &TruncationError{Months: lossy, DroppedHours: dropped}
	}
	return FromMonths(current[:months]), dropped, nil
}
