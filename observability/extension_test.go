package observability_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/receivables"
	"github.com/xraph/receivables/charge"
	"github.com/xraph/receivables/crypt"
	"github.com/xraph/receivables/id"
	"github.com/xraph/receivables/observability"
	"github.com/xraph/receivables/store/memory"
	"github.com/xraph/receivables/types"
)

func value(t *testing.T, c any) float64 {
	t.Helper()
	col, ok := c.(prometheus.Collector)
	require.True(t, ok)
	return testutil.ToFloat64(col)
}

func TestMetricsFollowLedger(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewPedanticRegistry()
	m := observability.NewMetricsExtension(observability.NewPrometheusFactory(reg))

	b, err := crypt.NewPassphrase(crypt.Params{Time: 1, Memory: 64, Threads: 1, SaltLen: 16})
	require.NoError(t, err)
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	l := receivables.New(memory.New(),
		receivables.WithBoundary(b),
		receivables.WithClock(func() time.Time { return now }),
		receivables.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		receivables.WithPlugin(m),
	)
	require.NoError(t, l.Start(ctx))
	defer l.Stop()

	pass := []byte("pw")
	addr := types.MustPayload("postal-address", "1 Main St")
	usd, err := l.AddDenomination(ctx, "US dollar", "USD", "$")
	require.NoError(t, err)
	payee, err := l.AddEntity(ctx, pass, "Acme", addr, nil)
	require.NoError(t, err)
	payor, err := l.AddEntity(ctx, pass, "Jane", addr, nil)
	require.NoError(t, err)
	from, err := l.AddAccount(ctx, pass, payor.ID, usd.ID, types.MustPayload("card", "4242"))
	require.NoError(t, err)
	to, err := l.AddAccount(ctx, pass, payee.ID, usd.ID, types.MustPayload("iban", "GB29"))
	require.NoError(t, err)
	rel, err := l.AddRelationship(ctx, "lease", payee.ID, payor.ID)
	require.NoError(t, err)

	var charges []id.ChargeID
	for _, desc := range []string{"jan", "feb"} {
		c, err := l.AddCharge(ctx, rel.ID, charge.Input{
			Description: desc, Amount: 5000, DenominationID: usd.ID, DueDate: now,
		})
		require.NoError(t, err)
		charges = append(charges, c.ID)
	}

	in := receivables.PayInput{Description: "cheque", Amount: 7500, From: from.ID, To: to.ID, Charges: charges}
	_, err = l.Pay(ctx, payor.ID, in)
	require.NoError(t, err)
	_, err = l.Pay(ctx, payor.ID, in)
	require.Error(t, err)

	_, err = l.WriteOff(ctx, now, charges...)
	require.NoError(t, err)
	_, err = l.Archive(ctx, charges...)
	require.NoError(t, err)

	assert.Equal(t, 2.0, value(t, m.EntityCreated))
	assert.Equal(t, 2.0, value(t, m.AccountCreated))
	assert.Equal(t, 2.0, value(t, m.ChargeCreated))
	assert.Equal(t, 1.0, value(t, m.PaymentApplied))
	assert.Equal(t, 2.0, value(t, m.Applications))
	assert.Equal(t, 1.0, value(t, m.DuplicatesRejected))
	assert.Equal(t, 1.0, value(t, m.WriteOffs))
	assert.Equal(t, 1.0, value(t, m.WrittenOffCharges))
	assert.Equal(t, 2.0, value(t, m.ChargesArchived))

	err = testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP receivables_payment_applied_total Count of receivables.payment.applied events.
# TYPE receivables_payment_applied_total counter
receivables_payment_applied_total 1
`), "receivables_payment_applied_total")
	assert.NoError(t, err)
}

func TestPrometheusFactoryReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	f := observability.NewPrometheusFactory(reg)

	a := f.Counter("receivables.charge.created")
	b := f.Counter("receivables.charge.created")
	a.Inc()
	b.Add(2)
	assert.Equal(t, 3.0, value(t, a))

	h := f.Histogram("receivables.payment.amount")
	h.Observe(2500)
	n, err := testutil.GatherAndCount(reg, "receivables_payment_amount")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
