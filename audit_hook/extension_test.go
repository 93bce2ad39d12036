package audithook_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/receivables"
	audithook "github.com/xraph/receivables/audit_hook"
	"github.com/xraph/receivables/crypt"
	"github.com/xraph/receivables/id"
	"github.com/xraph/receivables/payment"
	"github.com/xraph/receivables/store/memory"
	"github.com/xraph/receivables/types"
)

type sink struct {
	mu     sync.Mutex
	events []*audithook.AuditEvent
}

func (s *sink) Record(_ context.Context, evt *audithook.AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, evt)
	return nil
}

func (s *sink) actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	for i, e := range s.events {
		out[i] = e.Action
	}
	return out
}

func TestLedgerEventsAreAudited(t *testing.T) {
	ctx := context.Background()
	rec := &sink{}

	b, err := crypt.NewPassphrase(crypt.Params{Time: 1, Memory: 64, Threads: 1, SaltLen: 16})
	require.NoError(t, err)
	l := receivables.New(memory.New(),
		receivables.WithBoundary(b),
		receivables.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		receivables.WithPlugin(audithook.New(rec)),
	)
	require.NoError(t, l.Start(ctx))
	defer l.Stop()

	pass := []byte("pw")
	addr := types.MustPayload("postal-address", "1 Main St")

	_, err = l.AddDenomination(ctx, "US dollar", "USD", "$")
	require.NoError(t, err)
	payee, err := l.AddEntity(ctx, pass, "Acme", addr, nil)
	require.NoError(t, err)
	payor, err := l.AddEntity(ctx, pass, "Jane", addr, nil)
	require.NoError(t, err)
	_, err = l.AddRelationship(ctx, "lease", payee.ID, payor.ID)
	require.NoError(t, err)
	_, err = l.AddRelationship(ctx, "lease", payee.ID, payor.ID)
	require.Error(t, err)

	assert.Equal(t, []string{
		audithook.ActionDenominationCreated,
		audithook.ActionEntityCreated,
		audithook.ActionEntityCreated,
		audithook.ActionRelationshipCreated,
		audithook.ActionDuplicateRejected,
	}, rec.actions())

	ent := rec.events[1]
	assert.Equal(t, payee.ID.String(), ent.ResourceID)
	assert.Equal(t, map[string]any{"name": "Acme"}, ent.Metadata)

	dup := rec.events[4]
	assert.Equal(t, audithook.OutcomeFailure, dup.Outcome)
	assert.Equal(t, audithook.CategoryIntegrity, dup.Category)
	assert.Contains(t, dup.Reason, "lease")
}

func TestPaymentOutcome(t *testing.T) {
	ctx := context.Background()
	rec := &sink{}
	ext := audithook.New(rec)

	p := &payment.Payment{ID: id.NewPaymentID(), Amount: 1000, Date: time.Now()}
	full := []*payment.Application{{ChargeID: id.NewChargeID(), Amount: 1000, PaymentAmount: 1000}}
	part := []*payment.Application{{ChargeID: id.NewChargeID(), Amount: 400, PaymentAmount: 400}}

	require.NoError(t, ext.OnPaymentApplied(ctx, p, full))
	require.NoError(t, ext.OnPaymentApplied(ctx, p, part))
	require.NoError(t, ext.OnPaymentApplied(ctx, p, nil))

	require.Len(t, rec.events, 3)
	assert.Equal(t, audithook.OutcomeSuccess, rec.events[0].Outcome)
	assert.Equal(t, audithook.OutcomePartial, rec.events[1].Outcome)
	assert.Equal(t, audithook.OutcomeSuccess, rec.events[2].Outcome)
	assert.Equal(t, []string{part[0].ChargeID.String()}, rec.events[1].Metadata["charges"])
}

func TestActionFilters(t *testing.T) {
	ctx := context.Background()
	charges := []id.ChargeID{id.NewChargeID(), id.NewChargeID()}

	t.Run("enabled", func(t *testing.T) {
		rec := &sink{}
		ext := audithook.New(rec, audithook.WithEnabledActions(audithook.ActionEntityDeleted))
		require.NoError(t, ext.OnChargesArchived(ctx, charges))
		require.NoError(t, ext.OnEntityDeleted(ctx, id.NewEntityID()))
		assert.Equal(t, []string{audithook.ActionEntityDeleted}, rec.actions())
	})

	t.Run("disabled", func(t *testing.T) {
		rec := &sink{}
		ext := audithook.New(rec, audithook.WithDisabledActions(audithook.ActionEntityDeleted))
		require.NoError(t, ext.OnChargesArchived(ctx, charges))
		require.NoError(t, ext.OnEntityDeleted(ctx, id.NewEntityID()))
		assert.Equal(t, []string{audithook.ActionChargesArchived, audithook.ActionChargesArchived}, rec.actions())
	})
}

func TestRecorderFailureIsSwallowed(t *testing.T) {
	failing := audithook.RecorderFunc(func(context.Context, *audithook.AuditEvent) error {
		return errors.New("backend down")
	})
	ext := audithook.New(failing, audithook.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	assert.NoError(t, ext.OnEntityDeleted(context.Background(), id.NewEntityID()))
}
