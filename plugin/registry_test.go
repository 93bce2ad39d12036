package plugin_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/receivables/id"
	"github.com/xraph/receivables/plugin"
)

type archiver struct {
	name  string
	calls atomic.Int32
	err   error
	delay time.Duration
}

func (a *archiver) Name() string { return a.name }

func (a *archiver) OnChargesArchived(_ context.Context, ids []id.ChargeID) error {
	time.Sleep(a.delay)
	a.calls.Add(int32(len(ids)))
	return a.err
}

type named string

func (n named) Name() string { return string(n) }

func TestRegister(t *testing.T) {
	r := plugin.NewRegistry()
	a := &archiver{name: "archiver"}

	require.NoError(t, r.Register(a))
	require.NoError(t, r.Register(named("plain")))
	assert.Error(t, r.Register(&archiver{name: "archiver"}))

	assert.Equal(t, 2, r.Count())
	assert.Same(t, a, r.Get("archiver"))
	assert.Nil(t, r.Get("missing"))
	assert.Len(t, r.List(), 2)
}

func TestEmitOnlyReachesImplementers(t *testing.T) {
	r := plugin.NewRegistry()
	a := &archiver{name: "archiver"}
	require.NoError(t, r.Register(a))
	require.NoError(t, r.Register(named("plain")))

	r.EmitChargesArchived(context.Background(), []id.ChargeID{id.NewChargeID(), id.NewChargeID()})
	r.EmitEntityDeleted(context.Background(), id.NewEntityID())
	assert.EqualValues(t, 2, a.calls.Load())
}

func TestHookFailuresAreLogged(t *testing.T) {
	var buf bytes.Buffer
	r := plugin.NewRegistry().
		WithLogger(slog.New(slog.NewTextHandler(&buf, nil))).
		WithTimeout(20 * time.Millisecond)

	require.NoError(t, r.Register(&archiver{name: "broken", err: errors.New("boom")}))
	require.NoError(t, r.Register(&archiver{name: "slow", delay: 200 * time.Millisecond}))

	r.EmitChargesArchived(context.Background(), []id.ChargeID{id.NewChargeID()})

	out := buf.String()
	assert.Contains(t, out, "plugin OnChargesArchived failed")
	assert.Contains(t, out, "plugin=broken")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "plugin timeout: slow")
}
