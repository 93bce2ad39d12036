// Package plugin provides an extensible plugin system for the receivables
// Ledger. Plugins hook into lifecycle events to extend functionality.
// Hooks fire after the corresponding transaction has committed and can
// never veto it.
package plugin

import (
	"context"

	"github.com/xraph/receivables/charge"
	"github.com/xraph/receivables/denomination"
	"github.com/xraph/receivables/entity"
	"github.com/xraph/receivables/id"
	"github.com/xraph/receivables/invoice"
	"github.com/xraph/receivables/payment"
	"github.com/xraph/receivables/relation"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the Ledger starts.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, l any) error
}

// OnShutdown is called when the Ledger stops.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Registry hooks
// ──────────────────────────────────────────────────

// OnEntityCreated is called when an entity is registered.
type OnEntityCreated interface {
	Plugin
	OnEntityCreated(ctx context.Context, e *entity.Entity) error
}

// OnEntityDeleted is called after an entity and its dependents are removed.
type OnEntityDeleted interface {
	Plugin
	OnEntityDeleted(ctx context.Context, entityID id.EntityID) error
}

// OnAccountCreated is called when an account is opened.
type OnAccountCreated interface {
	Plugin
	OnAccountCreated(ctx context.Context, a *entity.Account) error
}

// OnRelationshipCreated is called when a relationship is created.
type OnRelationshipCreated interface {
	Plugin
	OnRelationshipCreated(ctx context.Context, r *relation.Relationship) error
}

// OnDenominationCreated is called when a denomination is registered.
type OnDenominationCreated interface {
	Plugin
	OnDenominationCreated(ctx context.Context, d *denomination.Denomination) error
}

// OnRateRecorded is called for every conversion rate stored.
type OnRateRecorded interface {
	Plugin
	OnRateRecorded(ctx context.Context, r *denomination.Rate) error
}

// ──────────────────────────────────────────────────
// Charge hooks
// ──────────────────────────────────────────────────

// OnChargeCreated is called when a charge is added to a relationship.
type OnChargeCreated interface {
	Plugin
	OnChargeCreated(ctx context.Context, c *charge.Charge) error
}

// OnChargesArchived is called with the charges an archive actually
// deactivated.
type OnChargesArchived interface {
	Plugin
	OnChargesArchived(ctx context.Context, chargeIDs []id.ChargeID) error
}

// ──────────────────────────────────────────────────
// Payment hooks
// ──────────────────────────────────────────────────

// OnPaymentApplied is called after a payment and its applications commit.
type OnPaymentApplied interface {
	Plugin
	OnPaymentApplied(ctx context.Context, p *payment.Payment, apps []*payment.Application) error
}

// OnPaymentDeactivated is called when a payment stops counting toward
// balances.
type OnPaymentDeactivated interface {
	Plugin
	OnPaymentDeactivated(ctx context.Context, p *payment.Payment) error
}

// OnWriteOff is called for each self-payment a write-off creates.
type OnWriteOff interface {
	Plugin
	OnWriteOff(ctx context.Context, p *payment.Payment, apps []*payment.Application) error
}

// OnDuplicateRejected is called when a submission is refused because its
// unique description or name already exists.
type OnDuplicateRejected interface {
	Plugin
	OnDuplicateRejected(ctx context.Context, kind, value string) error
}

// ──────────────────────────────────────────────────
// Reporting hooks
// ──────────────────────────────────────────────────

// OnStatementBuilt is called when a statement is handed out for rendering.
type OnStatementBuilt interface {
	Plugin
	OnStatementBuilt(ctx context.Context, s *invoice.Statement) error
}
