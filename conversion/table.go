// Package conversion converts amounts between denominations through a
// common unit of account.
//
// Each denomination has a basis relative to the unit of account:
// value_in_unit = amount * basis / denomination.BasisScale. Converting from
// A to B is therefore amount * basis(A) / basis(B), computed exactly and
// rounded with an explicit Rounding mode.
package conversion

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/receivables/denomination"
	"github.com/xraph/receivables/id"
)

// ErrRateUnavailable is returned when no rate applies to a denomination at
// the requested time.
var ErrRateUnavailable = errors.New("receivables: conversion rate unavailable")

// Rounding selects how a converted amount is brought back to minor units.
type Rounding int

const (
	// HalfUp rounds to the nearest minor unit, halves away from zero.
	HalfUp Rounding = iota
	// Down truncates toward zero.
	Down
	// Up rounds away from zero whenever a remainder exists.
	Up
)

// Scale returns amount * fromBasis / toBasis rounded with mode.
func Scale(amount, fromBasis, toBasis int64, mode Rounding) (int64, error) {
	if fromBasis <= 0 || toBasis <= 0 {
		return 0, fmt.Errorf("conversion: basis must be positive (from %d, to %d)", fromBasis, toBasis)
	}
	if fromBasis == toBasis {
		return amount, nil
	}

	num := decimal.NewFromInt(amount).Mul(decimal.NewFromInt(fromBasis))
	den := decimal.NewFromInt(toBasis)

	var out decimal.Decimal
	switch mode {
	case HalfUp:
		out = num.DivRound(den, 0)
	case Down, Up:
		q, r := num.QuoRem(den, 0)
		out = q
		if mode == Up && !r.IsZero() {
			out = q.Add(decimal.NewFromInt(int64(r.Sign())))
		}
	default:
		return 0, fmt.Errorf("conversion: unknown rounding mode %d", mode)
	}

	if out.GreaterThan(decimal.NewFromInt(math.MaxInt64)) || out.LessThan(decimal.NewFromInt(math.MinInt64)) {
		return 0, fmt.Errorf("conversion: %s overflows int64", out)
	}
	return out.IntPart(), nil
}

// RateSource resolves the newest rate for a pair as of a point in time.
// denomination.Store satisfies it.
type RateSource interface {
	LatestRate(ctx context.Context, unitID, denominationID id.DenominationID, asOf time.Time) (*denomination.Rate, error)
}

// Table converts amounts using the rates in effect at AsOf. A Table
// memoizes the bases it resolves and is meant to live for one operation.
type Table struct {
	source RateSource
	unit   id.DenominationID
	asOf   time.Time
	bases  map[id.DenominationID]int64
}

// NewTable creates a Table for the unit of account as of asOf. A Nil unit
// makes every cross-denomination conversion fail with ErrRateUnavailable.
func NewTable(source RateSource, unit id.DenominationID, asOf time.Time) *Table {
	return &Table{
		source: source,
		unit:   unit,
		asOf:   asOf,
		bases:  make(map[id.DenominationID]int64),
	}
}

// Unit returns the unit of account.
func (t *Table) Unit() id.DenominationID { return t.unit }

// AsOf returns the point in time rates are resolved for.
func (t *Table) AsOf() time.Time { return t.asOf }

// Basis returns the basis of a denomination relative to the unit of
// account. The unit itself has basis denomination.BasisScale.
func (t *Table) Basis(ctx context.Context, denominationID id.DenominationID) (int64, error) {
	if denominationID == t.unit && !t.unit.IsNil() {
		return denomination.BasisScale, nil
	}
	if b, ok := t.bases[denominationID]; ok {
		return b, nil
	}
	if t.unit.IsNil() {
		return 0, fmt.Errorf("%w: no unit of account configured for %s", ErrRateUnavailable, denominationID)
	}

	r, err := t.source.LatestRate(ctx, t.unit, denominationID, t.asOf)
	if err != nil {
		return 0, fmt.Errorf("conversion: resolve rate for %s: %w", denominationID, err)
	}
	if r.Basis <= 0 {
		return 0, fmt.Errorf("%w: rate %s has non-positive basis %d", ErrRateUnavailable, r.ID, r.Basis)
	}
	t.bases[denominationID] = r.Basis
	return r.Basis, nil
}

// Convert converts amount from one denomination into another.
func (t *Table) Convert(ctx context.Context, amount int64, from, to id.DenominationID, mode Rounding) (int64, error) {
	if from == to {
		return amount, nil
	}
	fb, err := t.Basis(ctx, from)
	if err != nil {
		return 0, err
	}
	tb, err := t.Basis(ctx, to)
	if err != nil {
		return 0, err
	}
	return Scale(amount, fb, tb, mode)
}
