package receivables

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/xraph/receivables/accrual"
	"github.com/xraph/receivables/apply"
	"github.com/xraph/receivables/charge"
	"github.com/xraph/receivables/conversion"
	"github.com/xraph/receivables/denomination"
	"github.com/xraph/receivables/entity"
	"github.com/xraph/receivables/id"
	"github.com/xraph/receivables/invoice"
	"github.com/xraph/receivables/payment"
	"github.com/xraph/receivables/store"
	"github.com/xraph/receivables/types"
)

// ──────────────────────────────────────────────────
// Outstanding
// ──────────────────────────────────────────────────

// Outstanding sums the accrued outstanding amounts of the given charges as
// of asOf, each converted into reportIn with half-up rounding before
// summing. A Nil reportIn uses the configured reporting denomination.
func (l *Ledger) Outstanding(ctx context.Context, reportIn id.DenominationID, asOf time.Time, chargeIDs ...id.ChargeID) (types.Money, error) {
	asOf = l.at(asOf)

	report, err := l.reportDenomination(ctx, l.store, reportIn)
	if err != nil {
		return types.Money{}, err
	}
	charges, err := loadCharges(ctx, l.store, chargeIDs)
	if err != nil {
		return types.Money{}, err
	}
	acc, err := l.accrue(ctx, l.store, charges, asOf)
	if err != nil {
		return types.Money{}, err
	}
	table, err := l.table(ctx, l.store, asOf)
	if err != nil {
		return types.Money{}, err
	}

	total, err := convertedTotal(ctx, table, acc, report.ID)
	if err != nil {
		return types.Money{}, err
	}
	return report.Money(total), nil
}

func convertedTotal(ctx context.Context, table *conversion.Table, acc []accrued, to id.DenominationID) (int64, error) {
	var total int64
	for _, a := range acc {
		v, err := table.Convert(ctx, a.outstanding, a.charge.DenominationID, to, conversion.HalfUp)
		if err != nil {
			return 0, err
		}
		if total, err = accrual.Add(total, v); err != nil {
			return 0, err
		}
	}
	return total, nil
}

// ──────────────────────────────────────────────────
// Archive
// ──────────────────────────────────────────────────

// Archive deactivates charges in one transaction. Charges that are already
// inactive are left alone; the count of charges actually changed is
// returned.
func (l *Ledger) Archive(ctx context.Context, chargeIDs ...id.ChargeID) (int, error) {
	var changed []id.ChargeID
	err := l.store.InTx(ctx, func(ctx context.Context, tx store.Store) error {
		changed = changed[:0]
		for _, cid := range lockOrder(chargeIDs) {
			ok, err := tx.SetChargeState(ctx, cid, false)
			if err != nil {
				return err
			}
			if ok {
				changed = append(changed, cid)
			}
		}
		return nil
	})
	if err != nil {
		return 0, l.rejected(ctx, err)
	}

	if len(changed) > 0 {
		l.logger.Debug("charges archived", "count", len(changed))
		l.plugins.EmitChargesArchived(ctx, changed)
	}
	return len(changed), nil
}

// ──────────────────────────────────────────────────
// Write-off
// ──────────────────────────────────────────────────

type writeOffGroup struct {
	payeeID        id.EntityID
	denominationID id.DenominationID
	targets        []apply.Target
	total          int64
}

// WriteOff zeroes the given charges. Charges are grouped by payee and
// denomination; each group is settled by a payment from the payee's account
// in that denomination to itself, applied FIFO. Everything happens in one
// transaction.
func (l *Ledger) WriteOff(ctx context.Context, asOf time.Time, chargeIDs ...id.ChargeID) ([]*payment.Payment, error) {
	asOf = l.at(asOf)

	type written struct {
		payment *payment.Payment
		apps    []*payment.Application
	}
	var out []written

	err := l.store.InTx(ctx, func(ctx context.Context, tx store.Store) error {
		out = out[:0]

		if err := tx.LockCharges(ctx, lockOrder(chargeIDs)); err != nil {
			return err
		}
		charges, err := loadCharges(ctx, tx, chargeIDs)
		if err != nil {
			return err
		}
		acc, err := l.accrue(ctx, tx, charges, asOf)
		if err != nil {
			return err
		}

		groups, err := groupForWriteOff(ctx, tx, acc)
		if err != nil {
			return err
		}
		if len(groups) == 0 {
			return ErrNoOutstandingCharges
		}

		for _, g := range groups {
			acct, err := payeeAccount(ctx, tx, g.payeeID, g.denominationID)
			if err != nil {
				return err
			}

			p := &payment.Payment{
				Record:        l.record(),
				ID:            id.NewPaymentID(),
				FromAccountID: acct.ID,
				ToAccountID:   acct.ID,
				Date:          asOf,
				Amount:        g.total,
				State:         types.StateActive,
			}
			p.Description = "write-off " + p.ID.String()
			if err := tx.CreatePayment(ctx, p); err != nil {
				return err
			}

			plan, err := apply.Plan(ctx, apply.Request{
				Available:      g.total,
				DenominationID: g.denominationID,
				Targets:        g.targets,
				Order:          payment.FIFO,
			})
			if err != nil {
				return err
			}
			apps, err := l.persist(ctx, tx, p, plan, asOf)
			if err != nil {
				return err
			}
			out = append(out, written{payment: p, apps: apps})
		}
		return nil
	})
	if err != nil {
		return nil, l.rejected(ctx, err)
	}

	payments := make([]*payment.Payment, len(out))
	for i, w := range out {
		payments[i] = w.payment
		l.logger.Debug("charges written off",
			"payment_id", w.payment.ID.String(),
			"amount", w.payment.Amount,
			"applications", len(w.apps),
		)
		l.plugins.EmitWriteOff(ctx, w.payment, w.apps)
	}
	return payments, nil
}

// groupForWriteOff buckets the active charges with something outstanding by
// payee and denomination, in a deterministic order.
func groupForWriteOff(ctx context.Context, s store.Store, acc []accrued) ([]*writeOffGroup, error) {
	relations := make(map[id.RelationshipID]id.EntityID)
	byKey := make(map[[2]string]*writeOffGroup)
	var groups []*writeOffGroup

	for _, a := range acc {
		if !a.charge.Active() || a.outstanding <= 0 {
			continue
		}
		payee, ok := relations[a.charge.RelationID]
		if !ok {
			rel, err := s.GetRelationship(ctx, a.charge.RelationID)
			if err != nil {
				return nil, err
			}
			payee = rel.PayeeID
			relations[a.charge.RelationID] = payee
		}

		key := [2]string{payee.String(), a.charge.DenominationID.String()}
		g, ok := byKey[key]
		if !ok {
			g = &writeOffGroup{payeeID: payee, denominationID: a.charge.DenominationID}
			byKey[key] = g
			groups = append(groups, g)
		}
		g.targets = append(g.targets, apply.Target{
			ChargeID:       a.charge.ID,
			DenominationID: a.charge.DenominationID,
			DueDate:        a.charge.DueDate,
			Outstanding:    a.outstanding,
		})
		total, err := accrual.Add(g.total, a.outstanding)
		if err != nil {
			return nil, err
		}
		g.total = total
	}

	slices.SortFunc(groups, func(a, b *writeOffGroup) int {
		return cmp.Or(a.payeeID.Compare(b.payeeID), a.denominationID.Compare(b.denominationID))
	})
	return groups, nil
}

// payeeAccount returns the oldest account of the payee in the denomination.
func payeeAccount(ctx context.Context, s store.Store, payeeID id.EntityID, denominationID id.DenominationID) (*entity.Account, error) {
	accounts, err := s.ListAccounts(ctx, payeeID)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		if a.DenominationID == denominationID {
			return a, nil
		}
	}
	return nil, &ReferenceError{Kind: "write-off", Field: "account", ID: fmt.Sprintf("%s/%s", payeeID, denominationID)}
}

// ──────────────────────────────────────────────────
// Statements
// ──────────────────────────────────────────────────

// Statement collects the active charges of a relationship with their
// accrued outstanding amounts as of asOf, for an external generator to
// render. A Nil reportIn uses the configured reporting denomination.
func (l *Ledger) Statement(ctx context.Context, relationID id.RelationshipID, asOf time.Time, reportIn id.DenominationID) (*invoice.Statement, error) {
	asOf = l.at(asOf)

	rel, err := l.store.GetRelationship(ctx, relationID)
	if err != nil {
		return nil, err
	}
	payee, err := l.store.GetEntity(ctx, rel.PayeeID)
	if err != nil {
		return nil, err
	}
	payor, err := l.store.GetEntity(ctx, rel.PayorID)
	if err != nil {
		return nil, err
	}
	report, err := l.reportDenomination(ctx, l.store, reportIn)
	if err != nil {
		return nil, err
	}

	charges, err := l.store.ListCharges(ctx, charge.ListOpts{RelationID: relationID, ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	acc, err := l.accrue(ctx, l.store, charges, asOf)
	if err != nil {
		return nil, err
	}
	table, err := l.table(ctx, l.store, asOf)
	if err != nil {
		return nil, err
	}
	total, err := convertedTotal(ctx, table, acc, report.ID)
	if err != nil {
		return nil, err
	}

	denominations := map[id.DenominationID]*denomination.Denomination{report.ID: report}
	lines := make([]invoice.Line, len(acc))
	for i, a := range acc {
		d, ok := denominations[a.charge.DenominationID]
		if !ok {
			if d, err = l.store.GetDenomination(ctx, a.charge.DenominationID); err != nil {
				return nil, err
			}
			denominations[d.ID] = d
		}
		lines[i] = invoice.Line{
			Charge:       a.charge,
			Denomination: d,
			Periods:      a.periods,
			Principal:    d.Money(a.charge.Amount),
			Applied:      d.Money(a.applied),
			Outstanding:  d.Money(a.outstanding),
		}
	}

	s := &invoice.Statement{
		Relationship: rel,
		Payee:        payee,
		Payor:        payor,
		AsOf:         asOf,
		Lines:        lines,
		Total:        report.Money(total),
		Template:     l.template,
	}
	l.plugins.EmitStatementBuilt(ctx, s)
	return s, nil
}
