package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/receivables"
	"github.com/xraph/receivables/charge"
	"github.com/xraph/receivables/denomination"
	"github.com/xraph/receivables/entity"
	"github.com/xraph/receivables/id"
	"github.com/xraph/receivables/payment"
	"github.com/xraph/receivables/relation"
	"github.com/xraph/receivables/store"
	"github.com/xraph/receivables/types"
)

func openTest(t *testing.T) store.Store {
	t.Helper()
	s, err := Open(MemoryLocation)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	require.NoError(t, s.Migrate(ctx))
	// Migrating twice is a no-op.
	require.NoError(t, s.Migrate(ctx))
	return s
}

func now() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }

func rec() types.Record {
	t := now()
	return types.Record{CreatedAt: t, UpdatedAt: t}
}

type world struct {
	usd   *denomination.Denomination
	payee *entity.Entity
	payor *entity.Entity
	rel   *relation.Relationship
	from  *entity.Account
	to    *entity.Account
}

func seed(t *testing.T, s store.Store) *world {
	t.Helper()
	ctx := context.Background()
	w := &world{}

	w.usd = &denomination.Denomination{Record: rec(), ID: id.NewDenominationID(), Code: "USD", Symbol: "$"}
	require.NoError(t, s.CreateDenomination(ctx, w.usd))

	w.payee = &entity.Entity{Record: rec(), ID: id.NewEntityID(), Name: "Acme Rentals", Address: types.Sealed("c1")}
	w.payor = &entity.Entity{Record: rec(), ID: id.NewEntityID(), Name: "Jane Tenant", Address: types.Sealed("c2")}
	require.NoError(t, s.CreateEntity(ctx, w.payee))
	require.NoError(t, s.CreateEntity(ctx, w.payor))

	w.rel = &relation.Relationship{Record: rec(), ID: id.NewRelationshipID(), Description: "lease 12B",
		PayeeID: w.payee.ID, PayorID: w.payor.ID}
	require.NoError(t, s.CreateRelationship(ctx, w.rel))

	w.from = &entity.Account{Record: rec(), ID: id.NewAccountID(), EntityID: w.payor.ID,
		DenominationID: w.usd.ID, CounterpartyInfo: types.Sealed("acct-1")}
	w.to = &entity.Account{Record: rec(), ID: id.NewAccountID(), EntityID: w.payee.ID,
		DenominationID: w.usd.ID, CounterpartyInfo: types.Sealed("acct-2")}
	require.NoError(t, s.CreateAccount(ctx, w.from))
	require.NoError(t, s.CreateAccount(ctx, w.to))
	return w
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	w := seed(t, s)

	sched := &charge.FeeSchedule{Record: rec(), ID: id.NewFeeScheduleID(),
		CompoundingPeriod: 30 * 24 * time.Hour, InterestRate: 10000}
	require.NoError(t, s.CreateFeeSchedule(ctx, sched))

	due := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &charge.Charge{Record: rec(), ID: id.NewChargeID(), RelationID: w.rel.ID, DenominationID: w.usd.ID,
		Description: "rent 2024-01", Payload: types.MustPayload("sku", map[string]string{"unit": "12B"}),
		Amount: 10000, DueDate: due, FeeScheduleID: sched.ID}
	require.NoError(t, s.CreateCharge(ctx, c))

	got, err := s.GetCharge(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.Description, got.Description)
	assert.Equal(t, sched.ID, got.FeeScheduleID)
	assert.True(t, got.DueDate.Equal(due))
	assert.True(t, got.Payload.Equal(c.Payload))
	assert.Equal(t, types.StateActive, got.State)

	gotSched, err := s.GetFeeSchedule(ctx, sched.ID)
	require.NoError(t, err)
	assert.Equal(t, sched.CompoundingPeriod, gotSched.CompoundingPeriod)

	e, err := s.GetEntityByName(ctx, "Jane Tenant")
	require.NoError(t, err)
	assert.Equal(t, types.Sealed("c2"), e.Address)
	assert.True(t, e.Identification.IsZero())

	d, err := s.GetDenominationByCode(ctx, "usd")
	require.NoError(t, err)
	assert.Equal(t, w.usd.ID, d.ID)
}

func TestConstraintErrors(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	w := seed(t, s)

	err := s.CreateRelationship(ctx, &relation.Relationship{Record: rec(), ID: id.NewRelationshipID(),
		Description: "lease 12B", PayeeID: w.payee.ID, PayorID: w.payor.ID})
	assert.ErrorIs(t, err, receivables.ErrDuplicateDescription)
	assert.False(t, receivables.IsRetryable(err))

	err = s.CreateRelationship(ctx, &relation.Relationship{Record: rec(), ID: id.NewRelationshipID(),
		Description: "orphan", PayeeID: id.NewEntityID(), PayorID: w.payor.ID})
	assert.ErrorIs(t, err, receivables.ErrUnknownReference)

	err = s.CreateDenomination(ctx, &denomination.Denomination{Record: rec(), ID: w.usd.ID, Code: "XTS"})
	assert.ErrorIs(t, err, receivables.ErrAlreadyExists)

	_, err = s.GetPayment(ctx, id.NewPaymentID())
	assert.ErrorIs(t, err, receivables.ErrPaymentNotFound)

	err = s.DeleteDenomination(ctx, w.usd.ID)
	assert.ErrorIs(t, err, receivables.ErrInUse)
}

func TestTransactionRollback(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	w := seed(t, s)

	boom := errors.New("boom")
	err := s.InTx(ctx, func(ctx context.Context, tx store.Store) error {
		c := &charge.Charge{Record: rec(), ID: id.NewChargeID(), RelationID: w.rel.ID,
			DenominationID: w.usd.ID, Description: "never", Amount: 5, DueDate: now()}
		require.NoError(t, tx.CreateCharge(ctx, c))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.GetChargeByDescription(ctx, "never")
	assert.ErrorIs(t, err, receivables.ErrChargeNotFound)
}

func TestAppliedTotalsAndState(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	w := seed(t, s)

	c := &charge.Charge{Record: rec(), ID: id.NewChargeID(), RelationID: w.rel.ID,
		DenominationID: w.usd.ID, Description: "rent", Amount: 100, DueDate: now()}
	require.NoError(t, s.CreateCharge(ctx, c))

	var paymentIDs []id.PaymentID
	for i, amt := range []int64{30, 50} {
		p := &payment.Payment{Record: rec(), ID: id.NewPaymentID(), FromAccountID: w.from.ID,
			ToAccountID: w.to.ID, Description: []string{"p1", "p2"}[i], Date: now(), Amount: amt}
		require.NoError(t, s.CreatePayment(ctx, p))
		require.NoError(t, s.CreateApplications(ctx, []*payment.Application{{
			Record: rec(), ID: id.NewApplicationID(), PaymentID: p.ID, ChargeID: c.ID,
			Amount: amt, PaymentAmount: amt, Date: p.Date,
		}}))
		paymentIDs = append(paymentIDs, p.ID)
	}

	totals, err := s.AppliedTotals(ctx, []id.ChargeID{c.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(80), totals[c.ID])

	changed, err := s.SetPaymentState(ctx, paymentIDs[0], false)
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = s.SetPaymentState(ctx, paymentIDs[0], false)
	require.NoError(t, err)
	assert.False(t, changed)

	totals, err = s.AppliedTotals(ctx, []id.ChargeID{c.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(50), totals[c.ID])

	consumed, err := s.ConsumedByPayment(ctx, paymentIDs[1])
	require.NoError(t, err)
	assert.Equal(t, int64(50), consumed)

	list, err := s.ListPayments(ctx, payment.ListOpts{EntityID: w.payor.ID, ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, paymentIDs[1], list[0].ID)

	_, err = s.SetChargeState(ctx, id.NewChargeID(), false)
	assert.ErrorIs(t, err, receivables.ErrChargeNotFound)
}

func TestLatestRateTieBreak(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	w := seed(t, s)

	eur := &denomination.Denomination{Record: rec(), ID: id.NewDenominationID(), Code: "EUR"}
	require.NoError(t, s.CreateDenomination(ctx, eur))

	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	first := &denomination.Rate{Record: rec(), ID: id.NewRateID(), UnitID: w.usd.ID,
		DenominationID: eur.ID, Basis: 1080, EffectiveAt: at}
	second := &denomination.Rate{Record: first.Record, ID: id.NewRateID(), UnitID: w.usd.ID,
		DenominationID: eur.ID, Basis: 1090, EffectiveAt: at}
	second.CreatedAt = second.CreatedAt.Add(time.Second)
	require.NoError(t, s.CreateRate(ctx, first))
	require.NoError(t, s.CreateRate(ctx, second))

	r, err := s.LatestRate(ctx, w.usd.ID, eur.ID, at)
	require.NoError(t, err)
	assert.Equal(t, int64(1090), r.Basis)

	_, err = s.LatestRate(ctx, w.usd.ID, eur.ID, at.Add(-time.Second))
	assert.ErrorIs(t, err, receivables.ErrRateUnavailable)
}

func TestDeleteEntityCascade(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	w := seed(t, s)

	c := &charge.Charge{Record: rec(), ID: id.NewChargeID(), RelationID: w.rel.ID,
		DenominationID: w.usd.ID, Description: "rent", Amount: 100, DueDate: now()}
	require.NoError(t, s.CreateCharge(ctx, c))

	require.NoError(t, s.DeleteEntity(ctx, w.payor.ID))

	_, err := s.GetCharge(ctx, c.ID)
	assert.ErrorIs(t, err, receivables.ErrChargeNotFound)
	_, err = s.GetAccount(ctx, w.from.ID)
	assert.ErrorIs(t, err, receivables.ErrAccountNotFound)

	assert.ErrorIs(t, s.DeleteEntity(ctx, w.payor.ID), receivables.ErrEntityNotFound)
}
