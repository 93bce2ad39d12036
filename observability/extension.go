// Package observability provides a metrics extension for the receivables
// ledger that records lifecycle event counts through a MetricFactory.
package observability

import (
	"context"

	"github.com/xraph/receivables/charge"
	"github.com/xraph/receivables/denomination"
	"github.com/xraph/receivables/entity"
	"github.com/xraph/receivables/id"
	"github.com/xraph/receivables/invoice"
	"github.com/xraph/receivables/payment"
	"github.com/xraph/receivables/plugin"
	"github.com/xraph/receivables/relation"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin                = (*MetricsExtension)(nil)
	_ plugin.OnEntityCreated       = (*MetricsExtension)(nil)
	_ plugin.OnEntityDeleted       = (*MetricsExtension)(nil)
	_ plugin.OnAccountCreated      = (*MetricsExtension)(nil)
	_ plugin.OnRelationshipCreated = (*MetricsExtension)(nil)
	_ plugin.OnDenominationCreated = (*MetricsExtension)(nil)
	_ plugin.OnRateRecorded        = (*MetricsExtension)(nil)
	_ plugin.OnChargeCreated       = (*MetricsExtension)(nil)
	_ plugin.OnChargesArchived     = (*MetricsExtension)(nil)
	_ plugin.OnPaymentApplied      = (*MetricsExtension)(nil)
	_ plugin.OnPaymentDeactivated  = (*MetricsExtension)(nil)
	_ plugin.OnWriteOff            = (*MetricsExtension)(nil)
	_ plugin.OnDuplicateRejected   = (*MetricsExtension)(nil)
	_ plugin.OnStatementBuilt      = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records ledger-wide lifecycle metrics.
// Register it as a ledger plugin to track receivables activity.
type MetricsExtension struct {
	factory MetricFactory

	// Party metrics
	EntityCreated       Counter
	EntityDeleted       Counter
	AccountCreated      Counter
	RelationshipCreated Counter

	// Reference data metrics
	DenominationCreated Counter
	RateRecorded        Counter

	// Charge metrics
	ChargeCreated   Counter
	ChargeAmount    Histogram
	ChargesArchived Counter

	// Payment metrics
	PaymentApplied     Counter
	PaymentAmount      Histogram
	Applications       Counter
	PaymentDeactivated Counter
	WriteOffs          Counter
	WrittenOffCharges  Counter

	// Reporting metrics
	StatementBuilt Counter
	StatementLines Histogram

	// Integrity metrics
	DuplicatesRejected Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		EntityCreated:       factory.Counter("receivables.entity.created"),
		EntityDeleted:       factory.Counter("receivables.entity.deleted"),
		AccountCreated:      factory.Counter("receivables.account.created"),
		RelationshipCreated: factory.Counter("receivables.relationship.created"),

		DenominationCreated: factory.Counter("receivables.denomination.created"),
		RateRecorded:        factory.Counter("receivables.rate.recorded"),

		ChargeCreated:   factory.Counter("receivables.charge.created"),
		ChargeAmount:    factory.Histogram("receivables.charge.amount"),
		ChargesArchived: factory.Counter("receivables.charge.archived"),

		PaymentApplied:     factory.Counter("receivables.payment.applied"),
		PaymentAmount:      factory.Histogram("receivables.payment.amount"),
		Applications:       factory.Counter("receivables.application.created"),
		PaymentDeactivated: factory.Counter("receivables.payment.deactivated"),
		WriteOffs:          factory.Counter("receivables.writeoff.created"),
		WrittenOffCharges:  factory.Counter("receivables.writeoff.charges"),

		StatementBuilt: factory.Counter("receivables.statement.built"),
		StatementLines: factory.Histogram("receivables.statement.lines"),

		DuplicatesRejected: factory.Counter("receivables.duplicate.rejected"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// ──────────────────────────────────────────────────
// Party hooks
// ──────────────────────────────────────────────────

// OnEntityCreated implements plugin.OnEntityCreated.
func (m *MetricsExtension) OnEntityCreated(_ context.Context, _ *entity.Entity) error {
	m.EntityCreated.Inc()
	return nil
}

// OnEntityDeleted implements plugin.OnEntityDeleted.
func (m *MetricsExtension) OnEntityDeleted(_ context.Context, _ id.EntityID) error {
	m.EntityDeleted.Inc()
	return nil
}

// OnAccountCreated implements plugin.OnAccountCreated.
func (m *MetricsExtension) OnAccountCreated(_ context.Context, _ *entity.Account) error {
	m.AccountCreated.Inc()
	return nil
}

// OnRelationshipCreated implements plugin.OnRelationshipCreated.
func (m *MetricsExtension) OnRelationshipCreated(_ context.Context, _ *relation.Relationship) error {
	m.RelationshipCreated.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Reference data hooks
// ──────────────────────────────────────────────────

// OnDenominationCreated implements plugin.OnDenominationCreated.
func (m *MetricsExtension) OnDenominationCreated(_ context.Context, _ *denomination.Denomination) error {
	m.DenominationCreated.Inc()
	return nil
}

// OnRateRecorded implements plugin.OnRateRecorded.
func (m *MetricsExtension) OnRateRecorded(_ context.Context, _ *denomination.Rate) error {
	m.RateRecorded.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Charge hooks
// ──────────────────────────────────────────────────

// OnChargeCreated implements plugin.OnChargeCreated.
func (m *MetricsExtension) OnChargeCreated(_ context.Context, c *charge.Charge) error {
	m.ChargeCreated.Inc()
	m.ChargeAmount.Observe(float64(c.Amount))
	return nil
}

// OnChargesArchived implements plugin.OnChargesArchived.
func (m *MetricsExtension) OnChargesArchived(_ context.Context, chargeIDs []id.ChargeID) error {
	m.ChargesArchived.Add(float64(len(chargeIDs)))
	return nil
}

// ──────────────────────────────────────────────────
// Payment hooks
// ──────────────────────────────────────────────────

// OnPaymentApplied implements plugin.OnPaymentApplied.
func (m *MetricsExtension) OnPaymentApplied(_ context.Context, p *payment.Payment, apps []*payment.Application) error {
	m.PaymentApplied.Inc()
	m.PaymentAmount.Observe(float64(p.Amount))
	m.Applications.Add(float64(len(apps)))
	return nil
}

// OnPaymentDeactivated implements plugin.OnPaymentDeactivated.
func (m *MetricsExtension) OnPaymentDeactivated(_ context.Context, _ *payment.Payment) error {
	m.PaymentDeactivated.Inc()
	return nil
}

// OnWriteOff implements plugin.OnWriteOff.
func (m *MetricsExtension) OnWriteOff(_ context.Context, _ *payment.Payment, apps []*payment.Application) error {
	m.WriteOffs.Inc()
	m.WrittenOffCharges.Add(float64(len(apps)))
	return nil
}

// OnDuplicateRejected implements plugin.OnDuplicateRejected.
func (m *MetricsExtension) OnDuplicateRejected(_ context.Context, _, _ string) error {
	m.DuplicatesRejected.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Reporting hooks
// ──────────────────────────────────────────────────

// OnStatementBuilt implements plugin.OnStatementBuilt.
func (m *MetricsExtension) OnStatementBuilt(_ context.Context, s *invoice.Statement) error {
	m.StatementBuilt.Inc()
	m.StatementLines.Observe(float64(len(s.Lines)))
	return nil
}
