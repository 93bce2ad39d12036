// Package apply plans how a payment is spread across charges.
//
// Plan is pure: it takes the charges' current accrued outstanding amounts
// and returns allocations. The caller persists them inside the same
// transaction that read the outstanding amounts.
package apply

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/xraph/receivables/accrual"
	"github.com/xraph/receivables/conversion"
	"github.com/xraph/receivables/id"
	"github.com/xraph/receivables/payment"
)

var (
	// ErrNoOutstandingCharges is returned when every target is already
	// fully satisfied.
	ErrNoOutstandingCharges = errors.New("receivables: no outstanding charges")
	// ErrUnderfunded is returned in strict mode when the payment cannot
	// satisfy every target.
	ErrUnderfunded = errors.New("receivables: payment does not cover the charges")
)

// UnderfundedError reports the shortfall of a strict application. Amounts
// are in the payment's denomination.
type UnderfundedError struct {
	Required  int64
	Available int64
}

func (e *UnderfundedError) Error() string {
	return fmt.Sprintf("receivables: payment does not cover the charges: requires %d, has %d",
		e.Required, e.Available)
}

func (e *UnderfundedError) Unwrap() error { return ErrUnderfunded }

// Converter converts amounts between denominations. *conversion.Table
// satisfies it.
type Converter interface {
	Convert(ctx context.Context, amount int64, from, to id.DenominationID, mode conversion.Rounding) (int64, error)
}

// Target is a charge as seen by the planner.
type Target struct {
	ChargeID       id.ChargeID
	DenominationID id.DenominationID
	DueDate        time.Time
	// Outstanding is the accrued outstanding amount in the charge's
	// denomination at the payment date.
	Outstanding int64
}

// Request describes one application.
type Request struct {
	// Available is the unapplied amount of the payment.
	Available      int64
	DenominationID id.DenominationID
	Targets        []Target
	Order          payment.Order
	// Convert is consulted only for targets in another denomination.
	Convert Converter
	// Strict demands that every target be fully satisfied.
	Strict bool
}

// Allocation is the planned portion of the payment for one charge.
type Allocation struct {
	ChargeID id.ChargeID
	// Amount is in the charge's denomination.
	Amount int64
	// Consumed is taken from the payment, in the payment's denomination.
	Consumed int64
	// Settles reports whether the allocation zeroes the charge.
	Settles bool
}

// Result is the outcome of Plan.
type Result struct {
	Allocations []Allocation
	Remaining   int64
}

// Applied sums Consumed over all allocations.
func (r *Result) Applied() int64 {
	var total int64
	for _, a := range r.Allocations {
		total += a.Consumed
	}
	return total
}

// Sort orders targets for the given order. Ties on due date always go to
// the lower charge ID so FIFO and LIFO stay deterministic.
func Sort(targets []Target, order payment.Order) {
	slices.SortStableFunc(targets, func(a, b Target) int {
		c := a.DueDate.Compare(b.DueDate)
		if order == payment.LIFO {
			c = -c
		}
		if c != 0 {
			return c
		}
		return a.ChargeID.Compare(b.ChargeID)
	})
}

// Plan walks the ordered targets, settling each one before moving the
// remainder to the next, until the payment or the targets run out.
func Plan(ctx context.Context, req Request) (*Result, error) {
	if req.Available < 0 {
		return nil, fmt.Errorf("apply: available amount must not be negative, got %d", req.Available)
	}
	switch req.Order {
	case payment.FIFO, payment.LIFO:
	default:
		return nil, fmt.Errorf("apply: unknown order %q", req.Order)
	}

	targets := slices.Clone(req.Targets)
	Sort(targets, req.Order)

	if !slices.ContainsFunc(targets, func(t Target) bool { return t.Outstanding > 0 }) {
		return nil, ErrNoOutstandingCharges
	}

	if req.Strict {
		required, err := required(ctx, req, targets)
		if err != nil {
			return nil, err
		}
		if required > req.Available {
			return nil, &UnderfundedError{Required: required, Available: req.Available}
		}
	}

	res := &Result{Remaining: req.Available}
	for _, t := range targets {
		if res.Remaining <= 0 {
			break
		}
		if t.Outstanding <= 0 {
			continue
		}

		alloc, err := allocate(ctx, req, t, res.Remaining)
		if err != nil {
			return nil, err
		}
		if alloc.Amount <= 0 {
			// Worth less than one minor unit of this charge; a later one
			// may still take it.
			continue
		}
		res.Allocations = append(res.Allocations, alloc)
		res.Remaining -= alloc.Consumed
	}
	return res, nil
}

func allocate(ctx context.Context, req Request, t Target, remaining int64) (Allocation, error) {
	a := Allocation{ChargeID: t.ChargeID}

	if t.DenominationID == req.DenominationID {
		a.Amount = min(remaining, t.Outstanding)
		a.Consumed = a.Amount
		a.Settles = a.Amount == t.Outstanding
		return a, nil
	}

	if req.Convert == nil {
		return a, fmt.Errorf("%w: charge %s is in another denomination and no converter is set",
			conversion.ErrRateUnavailable, t.ChargeID)
	}

	cover, err := req.Convert.Convert(ctx, remaining, req.DenominationID, t.DenominationID, conversion.Down)
	if err != nil {
		return a, err
	}
	if cover < t.Outstanding {
		a.Amount = cover
		a.Consumed = remaining
		return a, nil
	}

	cost, err := req.Convert.Convert(ctx, t.Outstanding, t.DenominationID, req.DenominationID, conversion.Up)
	if err != nil {
		return a, err
	}
	a.Amount = t.Outstanding
	a.Consumed = min(cost, remaining)
	a.Settles = true
	return a, nil
}

func required(ctx context.Context, req Request, targets []Target) (total int64, err error) {
	for _, t := range targets {
		if t.Outstanding <= 0 {
			continue
		}
		if t.DenominationID == req.DenominationID {
			if total, err = accrual.Add(total, t.Outstanding); err != nil {
				return 0, err
			}
			continue
		}
		if req.Convert == nil {
			return 0, fmt.Errorf("%w: charge %s is in another denomination and no converter is set",
				conversion.ErrRateUnavailable, t.ChargeID)
		}
		cost, err := req.Convert.Convert(ctx, t.Outstanding, t.DenominationID, req.DenominationID, conversion.Up)
		if err != nil {
			return 0, err
		}
		if total, err = accrual.Add(total, cost); err != nil {
			return 0, err
		}
	}
	return total, nil
}

// Total sums the positive outstanding amounts of targets.
func Total(targets []Target) int64 {
	var total int64
	for _, t := range targets {
		total += max(t.Outstanding, 0)
	}
	return total
}
