package receivables

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xraph/receivables/denomination"
	"github.com/xraph/receivables/id"
	"github.com/xraph/receivables/store"
)

// AddDenomination registers a unit of account. Codes are stored upper case
// and are unique regardless of case.
func (l *Ledger) AddDenomination(ctx context.Context, description, code, symbol string) (*denomination.Denomination, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if err := l.checkVar("code", code, "required,max=16"); err != nil {
		return nil, err
	}

	d := &denomination.Denomination{
		Record:      l.record(),
		ID:          id.NewDenominationID(),
		Description: description,
		Code:        code,
		Symbol:      symbol,
	}
	if err := l.store.CreateDenomination(ctx, d); err != nil {
		return nil, l.rejected(ctx, err)
	}

	l.logger.Debug("denomination added", "denomination_id", d.ID.String(), "code", d.Code)
	l.plugins.EmitDenominationCreated(ctx, d)
	return d, nil
}

// Denomination returns the denomination with the given code.
func (l *Ledger) Denomination(ctx context.Context, code string) (*denomination.Denomination, error) {
	return l.store.GetDenominationByCode(ctx, strings.ToUpper(code))
}

// Denominations lists every denomination ordered by code.
func (l *Ledger) Denominations(ctx context.Context) ([]*denomination.Denomination, error) {
	return l.store.ListDenominations(ctx)
}

// DeleteDenomination removes a denomination nothing references. It fails
// with ErrInUse while accounts, charges or rates use it.
func (l *Ledger) DeleteDenomination(ctx context.Context, denominationID id.DenominationID) error {
	return l.store.DeleteDenomination(ctx, denominationID)
}

// ──────────────────────────────────────────────────
// Conversion rates
// ──────────────────────────────────────────────────

// AddRate records that one minor unit of denominationID is worth
// basis/denomination.BasisScale minor units of unitID from effectiveAt on.
// Older rates stay in place for historical recomputation.
func (l *Ledger) AddRate(ctx context.Context, unitID, denominationID id.DenominationID, basis int64, effectiveAt time.Time) (*denomination.Rate, error) {
	if err := l.checkVar("basis", basis, "gt=0"); err != nil {
		return nil, err
	}
	if unitID == denominationID {
		return nil, ValidationError{Field: "denomination_id", Message: "must differ from unit_id"}
	}

	r := &denomination.Rate{
		Record:         l.record(),
		ID:             id.NewRateID(),
		UnitID:         unitID,
		DenominationID: denominationID,
		Basis:          basis,
		EffectiveAt:    l.at(effectiveAt),
	}
	if err := l.store.CreateRate(ctx, r); err != nil {
		return nil, l.rejected(ctx, err)
	}

	l.logger.Debug("rate added",
		"unit_id", unitID.String(),
		"denomination_id", denominationID.String(),
		"basis", basis,
		"effective_at", r.EffectiveAt,
	)
	l.plugins.EmitRateRecorded(ctx, r)
	return r, nil
}

// Rates lists recorded rates, newest first.
func (l *Ledger) Rates(ctx context.Context, opts denomination.RateListOpts) ([]*denomination.Rate, error) {
	return l.store.ListRates(ctx, opts)
}

// RefreshRates asks the configured quoter for the basis of every
// denomination against the unit of account and records the answers as
// effective at asOf. Denominations the quoter has no quote for are skipped.
func (l *Ledger) RefreshRates(ctx context.Context, asOf time.Time) ([]*denomination.Rate, error) {
	if l.quoter == nil {
		return nil, fmt.Errorf("%w: no quoter configured", ErrRateUnavailable)
	}
	if l.unitCode == "" {
		return nil, fmt.Errorf("%w: no unit of account configured", ErrRateUnavailable)
	}
	asOf = l.at(asOf)

	var recorded []*denomination.Rate
	err := l.store.InTx(ctx, func(ctx context.Context, tx store.Store) error {
		recorded = recorded[:0]

		unit, err := tx.GetDenominationByCode(ctx, l.unitCode)
		if err != nil {
			return fmt.Errorf("resolve unit of account %s: %w", l.unitCode, err)
		}
		all, err := tx.ListDenominations(ctx)
		if err != nil {
			return err
		}

		for _, d := range all {
			if d.ID == unit.ID {
				continue
			}
			basis, err := l.quoter.Quote(ctx, unit, d)
			if errors.Is(err, ErrRateUnavailable) {
				l.logger.Warn("no quote for denomination", "code", d.Code, "error", err)
				continue
			}
			if err != nil {
				return fmt.Errorf("quote %s: %w", d.Code, err)
			}
			if basis <= 0 {
				return ValidationError{Field: "basis", Message: fmt.Sprintf("quote for %s must be positive, got %d", d.Code, basis)}
			}

			r := &denomination.Rate{
				Record:         l.record(),
				ID:             id.NewRateID(),
				UnitID:         unit.ID,
				DenominationID: d.ID,
				Basis:          basis,
				EffectiveAt:    asOf,
			}
			if err := tx.CreateRate(ctx, r); err != nil {
				return err
			}
			recorded = append(recorded, r)
		}
		return nil
	})
	if err != nil {
		return nil, l.rejected(ctx, err)
	}

	for _, r := range recorded {
		l.plugins.EmitRateRecorded(ctx, r)
	}
	l.logger.Debug("rates refreshed", "count", len(recorded), "as_of", asOf)
	return recorded, nil
}
