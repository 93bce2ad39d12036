// Package accrual computes the interest-adjusted outstanding amount of a
// charge.
//
// Interest compounds on the currently unpaid principal once per whole
// compounding period elapsed past the due date:
//
//	outstanding = unpaid * (scale + rate)^n / scale^n
//
// and the product is rounded half-up to the minor unit once, at the end.
// The growth factor is raised by repeated squaring at 40 significant digits,
// and results that clearly exceed int64 are rejected before any power is
// taken.
package accrual

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/receivables/charge"
)

// ErrInvalidSchedule is returned for schedules whose compounding period is
// not positive or whose rate is negative.
var ErrInvalidSchedule = errors.New("receivables: invalid fee schedule")

// ErrOverflow is returned when accrued interest no longer fits in int64
// minor units.
var ErrOverflow = errors.New("receivables: amount overflow")

var maxAmount = decimal.NewFromInt(math.MaxInt64)

const (
	// significantDigits bounds intermediate precision of the growth factor.
	significantDigits = 40
	// overflowMargin absorbs float error in the log-space range estimate.
	overflowMargin = 1e-6
)

// Input describes a charge at a point in time.
type Input struct {
	Principal int64
	// Applied is the sum of applications that still count against the
	// charge, in the charge's denomination.
	Applied  int64
	Schedule *charge.FeeSchedule
	DueDate  time.Time
	AsOf     time.Time
}

// Validate checks a fee schedule's parameters.
func Validate(s *charge.FeeSchedule) error {
	if s == nil {
		return nil
	}
	if s.PeriodSeconds() <= 0 {
		return fmt.Errorf("%w: compounding_period must be at least one second, got %s",
			ErrInvalidSchedule, s.CompoundingPeriod)
	}
	if s.InterestRate < 0 {
		return fmt.Errorf("%w: interest_rate must not be negative, got %d",
			ErrInvalidSchedule, s.InterestRate)
	}
	return nil
}

// Periods returns the number of whole compounding periods between due and
// asOf, measured in epoch seconds. It is zero when asOf is not past due.
func Periods(due, asOf time.Time, period time.Duration) int64 {
	secs := int64(period / time.Second)
	if secs <= 0 {
		return 0
	}
	elapsed := asOf.Unix() - due.Unix()
	if elapsed <= 0 {
		return 0
	}
	return elapsed / secs
}

// Outstanding returns the accrued outstanding amount for in. An unpaid
// principal at or below zero yields zero.
func Outstanding(in Input) (int64, error) {
	if err := Validate(in.Schedule); err != nil {
		return 0, err
	}

	unpaid := in.Principal - in.Applied
	if unpaid <= 0 {
		return 0, nil
	}
	if in.Schedule == nil || in.Schedule.InterestRate == 0 {
		return unpaid, nil
	}

	n := Periods(in.DueDate, in.AsOf, in.Schedule.CompoundingPeriod)
	if n == 0 {
		return unpaid, nil
	}

	rate := in.Schedule.InterestRate
	logMax := math.Log(math.MaxInt64)
	if math.Log(float64(unpaid))+float64(n)*math.Log1p(float64(rate)/float64(charge.RateScale)) > logMax+overflowMargin {
		return 0, fmt.Errorf("%w: outstanding after %d periods exceeds the int64 range", ErrOverflow, n)
	}

	scale := decimal.NewFromInt(charge.RateScale)
	ratio := scale.Add(decimal.NewFromInt(rate)).DivRound(scale, significantDigits)
	result := decimal.NewFromInt(unpaid).Mul(power(ratio, n)).Round(0)
	if result.GreaterThan(maxAmount) {
		return 0, fmt.Errorf("%w: outstanding %s exceeds the int64 range", ErrOverflow, result)
	}
	return result.IntPart(), nil
}

// power raises x to n by repeated squaring, keeping every intermediate at
// significantDigits significant digits.
func power(x decimal.Decimal, n int64) decimal.Decimal {
	result := decimal.NewFromInt(1)
	for ; n > 0; n >>= 1 {
		if n&1 == 1 {
			result = significant(result.Mul(x))
		}
		if n > 1 {
			x = significant(x.Mul(x))
		}
	}
	return result
}

func significant(d decimal.Decimal) decimal.Decimal {
	intDigits := d.NumDigits() + int(d.Exponent())
	return d.Round(int32(significantDigits - intDigits))
}

// Add sums two minor-unit amounts, failing with ErrOverflow instead of
// wrapping.
func Add(a, b int64) (int64, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, fmt.Errorf("%w: %d + %d exceeds the int64 range", ErrOverflow, a, b)
	}
	return a + b, nil
}
