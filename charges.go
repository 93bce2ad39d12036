package receivables

import (
	"context"
	"slices"
	"time"

	"github.com/xraph/receivables/accrual"
	"github.com/xraph/receivables/charge"
	"github.com/xraph/receivables/id"
	"github.com/xraph/receivables/relation"
	"github.com/xraph/receivables/store"
	"github.com/xraph/receivables/types"
)

// ──────────────────────────────────────────────────
// Relationships
// ──────────────────────────────────────────────────

// AddRelationship groups charges between a payee and a payor. The
// description is unique; submitting it again fails with a DuplicateError
// and writes nothing.
func (l *Ledger) AddRelationship(ctx context.Context, description string, payeeID, payorID id.EntityID) (*relation.Relationship, error) {
	if err := l.checkVar("description", description, "required,max=512"); err != nil {
		return nil, err
	}

	r := &relation.Relationship{
		Record:      l.record(),
		ID:          id.NewRelationshipID(),
		Description: description,
		PayeeID:     payeeID,
		PayorID:     payorID,
	}
	if err := l.store.CreateRelationship(ctx, r); err != nil {
		return nil, l.rejected(ctx, err)
	}

	l.logger.Debug("relationship added",
		"relationship_id", r.ID.String(),
		"payee_id", payeeID.String(),
		"payor_id", payorID.String(),
	)
	l.plugins.EmitRelationshipCreated(ctx, r)
	return r, nil
}

// Relationship returns a relationship by ID.
func (l *Ledger) Relationship(ctx context.Context, relationID id.RelationshipID) (*relation.Relationship, error) {
	return l.store.GetRelationship(ctx, relationID)
}

// Relationships lists relationships matching opts.
func (l *Ledger) Relationships(ctx context.Context, opts relation.ListOpts) ([]*relation.Relationship, error) {
	return l.store.ListRelationships(ctx, opts)
}

// ──────────────────────────────────────────────────
// Fee schedules and charges
// ──────────────────────────────────────────────────

// AddFeeSchedule creates an immutable compounding schedule. rate is in
// parts per million of charge.RateScale per period.
func (l *Ledger) AddFeeSchedule(ctx context.Context, period time.Duration, rate int64) (*charge.FeeSchedule, error) {
	f := &charge.FeeSchedule{
		Record:            l.record(),
		ID:                id.NewFeeScheduleID(),
		CompoundingPeriod: period.Truncate(time.Second),
		InterestRate:      rate,
	}
	if err := accrual.Validate(f); err != nil {
		return nil, err
	}
	if err := l.store.CreateFeeSchedule(ctx, f); err != nil {
		return nil, l.rejected(ctx, err)
	}
	return f, nil
}

// AddCharge creates a charge under a relationship. When in.FeeSchedule is
// set the schedule is created in the same transaction.
func (l *Ledger) AddCharge(ctx context.Context, relationID id.RelationshipID, in charge.Input) (*charge.Charge, error) {
	if err := l.checkVar("description", in.Description, "required,max=512"); err != nil {
		return nil, err
	}
	if err := l.checkVar("amount", in.Amount, "gt=0"); err != nil {
		return nil, err
	}
	if in.DenominationID.IsNil() {
		return nil, ValidationError{Field: "denomination_id", Message: "is required"}
	}

	c := &charge.Charge{
		Record:         l.record(),
		ID:             id.NewChargeID(),
		RelationID:     relationID,
		DenominationID: in.DenominationID,
		Description:    in.Description,
		Payload:        in.Payload,
		Amount:         in.Amount,
		DueDate:        l.at(in.DueDate),
		FeeScheduleID:  in.FeeScheduleID,
		State:          types.StateActive,
	}

	var sched *charge.FeeSchedule
	if c.FeeScheduleID.IsNil() && in.FeeSchedule != nil {
		sched = &charge.FeeSchedule{
			Record:            c.Record,
			ID:                id.NewFeeScheduleID(),
			CompoundingPeriod: in.FeeSchedule.CompoundingPeriod.Truncate(time.Second),
			InterestRate:      in.FeeSchedule.InterestRate,
		}
		if err := accrual.Validate(sched); err != nil {
			return nil, err
		}
		c.FeeScheduleID = sched.ID
	}

	err := l.store.InTx(ctx, func(ctx context.Context, tx store.Store) error {
		if _, err := tx.GetRelationship(ctx, relationID); err != nil {
			return err
		}
		if sched != nil {
			if err := tx.CreateFeeSchedule(ctx, sched); err != nil {
				return err
			}
		}
		return tx.CreateCharge(ctx, c)
	})
	if err != nil {
		return nil, l.rejected(ctx, err)
	}

	l.logger.Debug("charge added",
		"charge_id", c.ID.String(),
		"relationship_id", relationID.String(),
		"amount", c.Amount,
		"due_date", c.DueDate,
	)
	l.plugins.EmitChargeCreated(ctx, c)
	return c, nil
}

// Charge returns a charge by ID.
func (l *Ledger) Charge(ctx context.Context, chargeID id.ChargeID) (*charge.Charge, error) {
	return l.store.GetCharge(ctx, chargeID)
}

// Charges lists the charges of a relationship ordered by due date.
func (l *Ledger) Charges(ctx context.Context, relationID id.RelationshipID, opts charge.ListOpts) ([]*charge.Charge, error) {
	opts.RelationID = relationID
	return l.store.ListCharges(ctx, opts)
}

// ChargeOutstanding returns the accrued outstanding amount of one charge in
// its own denomination.
func (l *Ledger) ChargeOutstanding(ctx context.Context, chargeID id.ChargeID, asOf time.Time) (types.Money, error) {
	c, err := l.store.GetCharge(ctx, chargeID)
	if err != nil {
		return types.Money{}, err
	}
	d, err := l.store.GetDenomination(ctx, c.DenominationID)
	if err != nil {
		return types.Money{}, err
	}
	acc, err := l.accrue(ctx, l.store, []*charge.Charge{c}, l.at(asOf))
	if err != nil {
		return types.Money{}, err
	}
	return d.Money(acc[0].outstanding), nil
}

// ──────────────────────────────────────────────────
// Accrual helpers
// ──────────────────────────────────────────────────

// accrued is a charge evaluated at a point in time.
type accrued struct {
	charge      *charge.Charge
	schedule    *charge.FeeSchedule
	applied     int64
	periods     int64
	outstanding int64
}

// accrue evaluates charges as of asOf against the applications that still
// count in s.
func (l *Ledger) accrue(ctx context.Context, s store.Store, charges []*charge.Charge, asOf time.Time) ([]accrued, error) {
	ids := make([]id.ChargeID, len(charges))
	for i, c := range charges {
		ids[i] = c.ID
	}
	totals, err := s.AppliedTotals(ctx, ids)
	if err != nil {
		return nil, err
	}

	schedules := make(map[id.FeeScheduleID]*charge.FeeSchedule)
	out := make([]accrued, len(charges))
	for i, c := range charges {
		a := accrued{charge: c, applied: totals[c.ID]}
		if !c.FeeScheduleID.IsNil() {
			sched, ok := schedules[c.FeeScheduleID]
			if !ok {
				if sched, err = s.GetFeeSchedule(ctx, c.FeeScheduleID); err != nil {
					return nil, err
				}
				schedules[c.FeeScheduleID] = sched
			}
			a.schedule = sched
			a.periods = accrual.Periods(c.DueDate, asOf, sched.CompoundingPeriod)
		}

		a.outstanding, err = accrual.Outstanding(accrual.Input{
			Principal: c.Amount,
			Applied:   a.applied,
			Schedule:  a.schedule,
			DueDate:   c.DueDate,
			AsOf:      asOf,
		})
		if err != nil {
			return nil, err
		}
		out[i] = a
	}
	return out, nil
}

// loadCharges fetches charges by ID, dropping repeats and keeping the
// first-seen order.
func loadCharges(ctx context.Context, s store.Store, chargeIDs []id.ChargeID) ([]*charge.Charge, error) {
	out := make([]*charge.Charge, 0, len(chargeIDs))
	seen := make(map[id.ChargeID]bool, len(chargeIDs))
	for _, cid := range chargeIDs {
		if seen[cid] {
			continue
		}
		seen[cid] = true
		c, err := s.GetCharge(ctx, cid)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// lockOrder returns the distinct charge IDs in ascending order, the order
// row locks are taken in.
func lockOrder(chargeIDs []id.ChargeID) []id.ChargeID {
	ids := slices.Clone(chargeIDs)
	slices.SortFunc(ids, func(a, b id.ChargeID) int { return a.Compare(b) })
	return slices.CompactFunc(ids, func(a, b id.ChargeID) bool { return a == b })
}
