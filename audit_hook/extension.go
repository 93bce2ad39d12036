// Package audithook bridges receivables ledger events to an audit trail
// backend.
//
// It defines a local Recorder interface so the package does not import an
// audit backend directly. Callers inject a RecorderFunc adapter at wiring
// time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/receivables/charge"
	"github.com/xraph/receivables/denomination"
	"github.com/xraph/receivables/entity"
	"github.com/xraph/receivables/id"
	"github.com/xraph/receivables/invoice"
	"github.com/xraph/receivables/payment"
	"github.com/xraph/receivables/plugin"
	"github.com/xraph/receivables/relation"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin                = (*Extension)(nil)
	_ plugin.OnEntityCreated       = (*Extension)(nil)
	_ plugin.OnEntityDeleted       = (*Extension)(nil)
	_ plugin.OnAccountCreated      = (*Extension)(nil)
	_ plugin.OnRelationshipCreated = (*Extension)(nil)
	_ plugin.OnDenominationCreated = (*Extension)(nil)
	_ plugin.OnRateRecorded        = (*Extension)(nil)
	_ plugin.OnChargeCreated       = (*Extension)(nil)
	_ plugin.OnChargesArchived     = (*Extension)(nil)
	_ plugin.OnPaymentApplied      = (*Extension)(nil)
	_ plugin.OnPaymentDeactivated  = (*Extension)(nil)
	_ plugin.OnWriteOff            = (*Extension)(nil)
	_ plugin.OnDuplicateRejected   = (*Extension)(nil)
	_ plugin.OnStatementBuilt      = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a single audit trail entry.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension turns ledger hooks into audit events. Encrypted fields are never
// copied into event metadata.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Party hooks
// ──────────────────────────────────────────────────

// OnEntityCreated implements plugin.OnEntityCreated.
func (e *Extension) OnEntityCreated(ctx context.Context, ent *entity.Entity) error {
	return e.record(ctx, ActionEntityCreated, SeverityInfo, OutcomeSuccess,
		ResourceEntity, ent.ID.String(), CategoryParty, nil,
		"name", ent.Name,
	)
}

// OnEntityDeleted implements plugin.OnEntityDeleted.
func (e *Extension) OnEntityDeleted(ctx context.Context, entityID id.EntityID) error {
	return e.record(ctx, ActionEntityDeleted, SeverityWarning, OutcomeSuccess,
		ResourceEntity, entityID.String(), CategoryParty, nil,
	)
}

// OnAccountCreated implements plugin.OnAccountCreated.
func (e *Extension) OnAccountCreated(ctx context.Context, a *entity.Account) error {
	return e.record(ctx, ActionAccountCreated, SeverityInfo, OutcomeSuccess,
		ResourceAccount, a.ID.String(), CategoryParty, nil,
		"entity_id", a.EntityID.String(),
		"denomination_id", a.DenominationID.String(),
	)
}

// OnRelationshipCreated implements plugin.OnRelationshipCreated.
func (e *Extension) OnRelationshipCreated(ctx context.Context, r *relation.Relationship) error {
	return e.record(ctx, ActionRelationshipCreated, SeverityInfo, OutcomeSuccess,
		ResourceRelationship, r.ID.String(), CategoryParty, nil,
		"description", r.Description,
		"payee_id", r.PayeeID.String(),
		"payor_id", r.PayorID.String(),
	)
}

// ──────────────────────────────────────────────────
// Reference data hooks
// ──────────────────────────────────────────────────

// OnDenominationCreated implements plugin.OnDenominationCreated.
func (e *Extension) OnDenominationCreated(ctx context.Context, d *denomination.Denomination) error {
	return e.record(ctx, ActionDenominationCreated, SeverityInfo, OutcomeSuccess,
		ResourceDenomination, d.ID.String(), CategoryReference, nil,
		"code", d.Code,
	)
}

// OnRateRecorded implements plugin.OnRateRecorded.
func (e *Extension) OnRateRecorded(ctx context.Context, r *denomination.Rate) error {
	return e.record(ctx, ActionRateRecorded, SeverityInfo, OutcomeSuccess,
		ResourceRate, r.ID.String(), CategoryReference, nil,
		"unit_id", r.UnitID.String(),
		"denomination_id", r.DenominationID.String(),
		"basis", r.Basis,
		"effective_at", r.EffectiveAt,
	)
}

// ──────────────────────────────────────────────────
// Charge hooks
// ──────────────────────────────────────────────────

// OnChargeCreated implements plugin.OnChargeCreated.
func (e *Extension) OnChargeCreated(ctx context.Context, c *charge.Charge) error {
	return e.record(ctx, ActionChargeCreated, SeverityInfo, OutcomeSuccess,
		ResourceCharge, c.ID.String(), CategoryBilling, nil,
		"relation_id", c.RelationID.String(),
		"amount", c.Amount,
		"due_date", c.DueDate,
	)
}

// OnChargesArchived implements plugin.OnChargesArchived.
func (e *Extension) OnChargesArchived(ctx context.Context, chargeIDs []id.ChargeID) error {
	for _, cid := range chargeIDs {
		if err := e.record(ctx, ActionChargesArchived, SeverityInfo, OutcomeSuccess,
			ResourceCharge, cid.String(), CategoryBilling, nil,
			"batch", len(chargeIDs),
		); err != nil {
			return err
		}
	}
	return nil
}

// ──────────────────────────────────────────────────
// Payment hooks
// ──────────────────────────────────────────────────

// OnPaymentApplied implements plugin.OnPaymentApplied.
func (e *Extension) OnPaymentApplied(ctx context.Context, p *payment.Payment, apps []*payment.Application) error {
	outcome := OutcomeSuccess
	if remaining := p.Amount - consumed(apps); remaining > 0 && len(apps) > 0 {
		outcome = OutcomePartial
	}
	return e.record(ctx, ActionPaymentApplied, SeverityInfo, outcome,
		ResourcePayment, p.ID.String(), CategoryPayment, nil,
		"amount", p.Amount,
		"applications", len(apps),
		"charges", chargeIDs(apps),
	)
}

// OnPaymentDeactivated implements plugin.OnPaymentDeactivated.
func (e *Extension) OnPaymentDeactivated(ctx context.Context, p *payment.Payment) error {
	return e.record(ctx, ActionPaymentDeactivated, SeverityWarning, OutcomeSuccess,
		ResourcePayment, p.ID.String(), CategoryPayment, nil,
		"amount", p.Amount,
	)
}

// OnWriteOff implements plugin.OnWriteOff.
func (e *Extension) OnWriteOff(ctx context.Context, p *payment.Payment, apps []*payment.Application) error {
	return e.record(ctx, ActionWriteOff, SeverityWarning, OutcomeSuccess,
		ResourcePayment, p.ID.String(), CategoryPayment, nil,
		"amount", p.Amount,
		"charges", chargeIDs(apps),
	)
}

// OnDuplicateRejected implements plugin.OnDuplicateRejected.
func (e *Extension) OnDuplicateRejected(ctx context.Context, kind, value string) error {
	return e.record(ctx, ActionDuplicateRejected, SeverityWarning, OutcomeFailure,
		kind, "", CategoryIntegrity, fmt.Errorf("duplicate %s %q", kind, value),
		"value", value,
	)
}

// ──────────────────────────────────────────────────
// Reporting hooks
// ──────────────────────────────────────────────────

// OnStatementBuilt implements plugin.OnStatementBuilt.
func (e *Extension) OnStatementBuilt(ctx context.Context, s *invoice.Statement) error {
	var relID string
	if s.Relationship != nil {
		relID = s.Relationship.ID.String()
	}
	return e.record(ctx, ActionStatementBuilt, SeverityInfo, OutcomeSuccess,
		ResourceStatement, relID, CategoryReporting, nil,
		"lines", len(s.Lines),
		"total", s.Total.String(),
		"as_of", s.AsOf,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}

func consumed(apps []*payment.Application) int64 {
	var n int64
	for _, a := range apps {
		n += a.PaymentAmount
	}
	return n
}

func chargeIDs(apps []*payment.Application) []string {
	out := make([]string, len(apps))
	for i, a := range apps {
		out[i] = a.ChargeID.String()
	}
	return out
}
