package conversion_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/receivables/conversion"
	"github.com/xraph/receivables/denomination"
	"github.com/xraph/receivables/id"
)

type fakeRates map[id.DenominationID]int64

func (f fakeRates) LatestRate(_ context.Context, _, d id.DenominationID, _ time.Time) (*denomination.Rate, error) {
	b, ok := f[d]
	if !ok {
		return nil, conversion.ErrRateUnavailable
	}
	return &denomination.Rate{ID: id.NewRateID(), DenominationID: d, Basis: b}, nil
}

func TestScale(t *testing.T) {
	tests := []struct {
		name     string
		amount   int64
		from, to int64
		mode     conversion.Rounding
		want     int64
	}{
		{"identity", 1234, 1000, 1000, conversion.HalfUp, 1234},
		{"exact", 1000, 2000, 1000, conversion.Down, 2000},
		{"half up", 1, 1500, 1000, conversion.HalfUp, 2},
		{"half up below half", 1, 1400, 1000, conversion.HalfUp, 1},
		{"down", 999, 1000, 3000, conversion.Down, 333},
		{"up", 999, 1000, 3000, conversion.Up, 333},
		{"up with remainder", 1000, 1000, 3000, conversion.Up, 334},
		{"negative up", -1000, 1000, 3000, conversion.Up, -334},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := conversion.Scale(tt.amount, tt.from, tt.to, tt.mode)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScaleRejectsBadBasis(t *testing.T) {
	_, err := conversion.Scale(1, 0, 1000, conversion.HalfUp)
	require.Error(t, err)
}

func TestTableConvert(t *testing.T) {
	ctx := context.Background()
	usd, eur, gbp := id.NewDenominationID(), id.NewDenominationID(), id.NewDenominationID()

	table := conversion.NewTable(fakeRates{eur: 1100, gbp: 1250}, usd, time.Now())

	got, err := table.Convert(ctx, 1000, eur, usd, conversion.HalfUp)
	require.NoError(t, err)
	assert.Equal(t, int64(1100), got)

	got, err = table.Convert(ctx, 1100, usd, eur, conversion.HalfUp)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), got)

	got, err = table.Convert(ctx, 1000, gbp, eur, conversion.Down)
	require.NoError(t, err)
	assert.Equal(t, int64(1136), got) // 1000 * 1250 / 1100 = 1136.36

	got, err = table.Convert(ctx, 5, eur, eur, conversion.Down)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got)
}

func TestTableMissingRate(t *testing.T) {
	usd, yen := id.NewDenominationID(), id.NewDenominationID()
	table := conversion.NewTable(fakeRates{}, usd, time.Now())

	_, err := table.Convert(context.Background(), 10, yen, usd, conversion.HalfUp)
	require.ErrorIs(t, err, conversion.ErrRateUnavailable)
}

func TestTableWithoutUnit(t *testing.T) {
	a, b := id.NewDenominationID(), id.NewDenominationID()
	table := conversion.NewTable(fakeRates{a: 1000, b: 1000}, id.Nil, time.Now())

	_, err := table.Convert(context.Background(), 10, a, b, conversion.HalfUp)
	require.ErrorIs(t, err, conversion.ErrRateUnavailable)
}

func TestStaticQuoter(t *testing.T) {
	q := conversion.StaticQuoter{"EUR": 1085}
	unit := &denomination.Denomination{Code: "USD"}

	b, err := q.Quote(context.Background(), unit, &denomination.Denomination{Code: "eur"})
	require.NoError(t, err)
	assert.Equal(t, int64(1085), b)

	_, err = q.Quote(context.Background(), unit, &denomination.Denomination{Code: "GBP"})
	require.ErrorIs(t, err, conversion.ErrRateUnavailable)
}

func TestFileQuoter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.yaml")
	require.NoError(t, os.WriteFile(path, []byte("unit: usd\nrates:\n  eur: 1085\n  GBP: 1262\n"), 0o600))

	q, err := conversion.NewFileQuoter(path)
	require.NoError(t, err)

	usd := &denomination.Denomination{Code: "USD"}
	b, err := q.Quote(context.Background(), usd, &denomination.Denomination{Code: "GBP"})
	require.NoError(t, err)
	assert.Equal(t, int64(1262), b)

	_, err = q.Quote(context.Background(), &denomination.Denomination{Code: "CHF"}, &denomination.Denomination{Code: "GBP"})
	require.ErrorIs(t, err, conversion.ErrRateUnavailable)
}

func TestFileQuoterRejectsBadBasis(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rates:\n  EUR: 0\n"), 0o600))

	_, err := conversion.NewFileQuoter(path)
	require.Error(t, err)
}
