package apply_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/receivables/apply"
	"github.com/xraph/receivables/conversion"
	"github.com/xraph/receivables/id"
	"github.com/xraph/receivables/payment"
)

var (
	t1  = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2  = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	usd = id.MustParse("den_01h2xcejqtf2nbrexx3vqjhp41")
	eur = id.MustParse("den_01h2xcejqtf2nbrexx3vqjhp42")
)

type bases map[id.DenominationID]int64

func (b bases) Convert(_ context.Context, amount int64, from, to id.DenominationID, mode conversion.Rounding) (int64, error) {
	return conversion.Scale(amount, b[from], b[to], mode)
}

func chargeID(suffix string) id.ID {
	return id.MustParse("chg_01h2xcejqtf2nbrexx3vqjhp4" + suffix)
}

func twoCharges() []apply.Target {
	return []apply.Target{
		{ChargeID: chargeID("2"), DenominationID: usd, DueDate: t2, Outstanding: 7000},
		{ChargeID: chargeID("1"), DenominationID: usd, DueDate: t1, Outstanding: 5000},
	}
}

func amounts(res *apply.Result) map[string]int64 {
	out := make(map[string]int64)
	for _, a := range res.Allocations {
		out[a.ChargeID.String()] = a.Amount
	}
	return out
}

func TestPlanFIFO(t *testing.T) {
	res, err := apply.Plan(context.Background(), apply.Request{
		Available:      9000,
		DenominationID: usd,
		Targets:        twoCharges(),
		Order:          payment.FIFO,
	})
	require.NoError(t, err)

	require.Len(t, res.Allocations, 2)
	assert.Equal(t, chargeID("1"), res.Allocations[0].ChargeID)
	assert.Equal(t, int64(5000), res.Allocations[0].Amount)
	assert.True(t, res.Allocations[0].Settles)
	assert.Equal(t, chargeID("2"), res.Allocations[1].ChargeID)
	assert.Equal(t, int64(4000), res.Allocations[1].Amount)
	assert.False(t, res.Allocations[1].Settles)
	assert.Equal(t, int64(0), res.Remaining)
}

func TestPlanLIFO(t *testing.T) {
	res, err := apply.Plan(context.Background(), apply.Request{
		Available:      9000,
		DenominationID: usd,
		Targets:        twoCharges(),
		Order:          payment.LIFO,
	})
	require.NoError(t, err)

	require.Len(t, res.Allocations, 2)
	assert.Equal(t, chargeID("2"), res.Allocations[0].ChargeID)
	assert.Equal(t, int64(7000), res.Allocations[0].Amount)
	assert.Equal(t, chargeID("1"), res.Allocations[1].ChargeID)
	assert.Equal(t, int64(2000), res.Allocations[1].Amount)
}

func TestFIFOAndLIFODiffer(t *testing.T) {
	ctx := context.Background()
	req := apply.Request{Available: 9000, DenominationID: usd, Targets: twoCharges()}

	req.Order = payment.FIFO
	fifo, err := apply.Plan(ctx, req)
	require.NoError(t, err)
	req.Order = payment.LIFO
	lifo, err := apply.Plan(ctx, req)
	require.NoError(t, err)

	assert.NotEqual(t, amounts(fifo), amounts(lifo))
}

func TestPlanTiesBreakByChargeID(t *testing.T) {
	targets := []apply.Target{
		{ChargeID: chargeID("3"), DenominationID: usd, DueDate: t1, Outstanding: 100},
		{ChargeID: chargeID("1"), DenominationID: usd, DueDate: t1, Outstanding: 100},
		{ChargeID: chargeID("2"), DenominationID: usd, DueDate: t1, Outstanding: 100},
	}

	for _, order := range []payment.Order{payment.FIFO, payment.LIFO} {
		t.Run(string(order), func(t *testing.T) {
			res, err := apply.Plan(context.Background(), apply.Request{
				Available:      150,
				DenominationID: usd,
				Targets:        targets,
				Order:          order,
			})
			require.NoError(t, err)
			require.Len(t, res.Allocations, 2)
			assert.Equal(t, chargeID("1"), res.Allocations[0].ChargeID)
			assert.Equal(t, chargeID("2"), res.Allocations[1].ChargeID)
			assert.Equal(t, int64(50), res.Allocations[1].Amount)
		})
	}
}

func TestPlanLeavesExcessUnapplied(t *testing.T) {
	res, err := apply.Plan(context.Background(), apply.Request{
		Available:      15000,
		DenominationID: usd,
		Targets:        twoCharges(),
		Order:          payment.FIFO,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12000), res.Applied())
	assert.Equal(t, int64(3000), res.Remaining)
}

func TestPlanSkipsSatisfiedCharges(t *testing.T) {
	targets := twoCharges()
	targets[1].Outstanding = 0

	res, err := apply.Plan(context.Background(), apply.Request{
		Available:      1000,
		DenominationID: usd,
		Targets:        targets,
		Order:          payment.FIFO,
	})
	require.NoError(t, err)
	require.Len(t, res.Allocations, 1)
	assert.Equal(t, chargeID("2"), res.Allocations[0].ChargeID)
}

func TestPlanNoOutstanding(t *testing.T) {
	targets := twoCharges()
	targets[0].Outstanding = 0
	targets[1].Outstanding = 0

	_, err := apply.Plan(context.Background(), apply.Request{
		Available:      1000,
		DenominationID: usd,
		Targets:        targets,
		Order:          payment.FIFO,
	})
	require.ErrorIs(t, err, apply.ErrNoOutstandingCharges)
}

func TestPlanStrict(t *testing.T) {
	ctx := context.Background()
	req := apply.Request{
		Available:      9000,
		DenominationID: usd,
		Targets:        twoCharges(),
		Order:          payment.FIFO,
		Strict:         true,
	}

	_, err := apply.Plan(ctx, req)
	require.ErrorIs(t, err, apply.ErrUnderfunded)

	var under *apply.UnderfundedError
	require.ErrorAs(t, err, &under)
	assert.Equal(t, int64(12000), under.Required)
	assert.Equal(t, int64(9000), under.Available)

	req.Available = 12000
	res, err := apply.Plan(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, int64(12000), res.Applied())
}

func TestPlanConvertsIntoChargeDenomination(t *testing.T) {
	// One EUR minor unit is worth 1.1 USD minor units.
	conv := bases{usd: 1000, eur: 1100}
	targets := []apply.Target{
		{ChargeID: chargeID("1"), DenominationID: eur, DueDate: t1, Outstanding: 1000},
		{ChargeID: chargeID("2"), DenominationID: eur, DueDate: t2, Outstanding: 1000},
	}

	res, err := apply.Plan(context.Background(), apply.Request{
		Available:      1650, // USD
		DenominationID: usd,
		Targets:        targets,
		Order:          payment.FIFO,
		Convert:        conv,
	})
	require.NoError(t, err)
	require.Len(t, res.Allocations, 2)

	// First charge costs exactly 1100 USD.
	assert.Equal(t, int64(1000), res.Allocations[0].Amount)
	assert.Equal(t, int64(1100), res.Allocations[0].Consumed)
	// 550 USD buys 500 EUR.
	assert.Equal(t, int64(500), res.Allocations[1].Amount)
	assert.Equal(t, int64(550), res.Allocations[1].Consumed)
	assert.Equal(t, int64(0), res.Remaining)
}

func TestPlanSubUnitRemainderMovesOn(t *testing.T) {
	conv := bases{usd: 1000, eur: 1100}
	t3 := t2.AddDate(0, 1, 0)
	targets := []apply.Target{
		{ChargeID: chargeID("1"), DenominationID: eur, DueDate: t1, Outstanding: 1000},
		{ChargeID: chargeID("2"), DenominationID: eur, DueDate: t2, Outstanding: 1000},
		{ChargeID: chargeID("3"), DenominationID: usd, DueDate: t3, Outstanding: 500},
	}

	res, err := apply.Plan(context.Background(), apply.Request{
		Available:      1101, // USD
		DenominationID: usd,
		Targets:        targets,
		Order:          payment.FIFO,
		Convert:        conv,
	})
	require.NoError(t, err)

	// 1 USD left after the first charge buys no EUR unit, but still pays
	// toward the USD charge.
	assert.Equal(t, map[string]int64{
		chargeID("1").String(): 1000,
		chargeID("3").String(): 1,
	}, amounts(res))
	assert.Equal(t, int64(0), res.Remaining)
}

func TestPlanCrossDenominationNeedsConverter(t *testing.T) {
	_, err := apply.Plan(context.Background(), apply.Request{
		Available:      100,
		DenominationID: usd,
		Targets:        []apply.Target{{ChargeID: chargeID("1"), DenominationID: eur, Outstanding: 10}},
		Order:          payment.FIFO,
	})
	require.ErrorIs(t, err, conversion.ErrRateUnavailable)
}

func TestPlanRejectsUnknownOrder(t *testing.T) {
	_, err := apply.Plan(context.Background(), apply.Request{
		Available:      100,
		DenominationID: usd,
		Targets:        twoCharges(),
		Order:          "random",
	})
	require.Error(t, err)
}

func TestPlanDoesNotReorderInput(t *testing.T) {
	targets := twoCharges()
	_, err := apply.Plan(context.Background(), apply.Request{
		Available: 1, DenominationID: usd, Targets: targets, Order: payment.FIFO,
	})
	require.NoError(t, err)
	assert.Equal(t, chargeID("2"), targets[0].ChargeID)
}
