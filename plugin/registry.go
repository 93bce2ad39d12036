package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/xraph/receivables/charge"
	"github.com/xraph/receivables/denomination"
	"github.com/xraph/receivables/entity"
	"github.com/xraph/receivables/id"
	"github.com/xraph/receivables/invoice"
	"github.com/xraph/receivables/payment"
	"github.com/xraph/receivables/relation"
)

// DefaultTimeout bounds each hook call.
const DefaultTimeout = 5 * time.Second

// Registry manages all registered plugins and provides efficient dispatch.
// Hook interfaces are discovered once at registration.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger
	timeout time.Duration

	// Type-cached plugin lists for efficient dispatch
	onInit                []OnInit
	onShutdown            []OnShutdown
	onEntityCreated       []OnEntityCreated
	onEntityDeleted       []OnEntityDeleted
	onAccountCreated      []OnAccountCreated
	onRelationshipCreated []OnRelationshipCreated
	onDenominationCreated []OnDenominationCreated
	onRateRecorded        []OnRateRecorded
	onChargeCreated       []OnChargeCreated
	onChargesArchived     []OnChargesArchived
	onPaymentApplied      []OnPaymentApplied
	onPaymentDeactivated  []OnPaymentDeactivated
	onWriteOff            []OnWriteOff
	onDuplicateRejected   []OnDuplicateRejected
	onStatementBuilt      []OnStatementBuilt
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger:  slog.Default(),
		timeout: DefaultTimeout,
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// WithTimeout changes the per-hook timeout.
func (r *Registry) WithTimeout(d time.Duration) *Registry {
	if d > 0 {
		r.timeout = d
	}
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnEntityCreated); ok {
		r.onEntityCreated = append(r.onEntityCreated, v)
	}
	if v, ok := p.(OnEntityDeleted); ok {
		r.onEntityDeleted = append(r.onEntityDeleted, v)
	}
	if v, ok := p.(OnAccountCreated); ok {
		r.onAccountCreated = append(r.onAccountCreated, v)
	}
	if v, ok := p.(OnRelationshipCreated); ok {
		r.onRelationshipCreated = append(r.onRelationshipCreated, v)
	}
	if v, ok := p.(OnDenominationCreated); ok {
		r.onDenominationCreated = append(r.onDenominationCreated, v)
	}
	if v, ok := p.(OnRateRecorded); ok {
		r.onRateRecorded = append(r.onRateRecorded, v)
	}
	if v, ok := p.(OnChargeCreated); ok {
		r.onChargeCreated = append(r.onChargeCreated, v)
	}
	if v, ok := p.(OnChargesArchived); ok {
		r.onChargesArchived = append(r.onChargesArchived, v)
	}
	if v, ok := p.(OnPaymentApplied); ok {
		r.onPaymentApplied = append(r.onPaymentApplied, v)
	}
	if v, ok := p.(OnPaymentDeactivated); ok {
		r.onPaymentDeactivated = append(r.onPaymentDeactivated, v)
	}
	if v, ok := p.(OnWriteOff); ok {
		r.onWriteOff = append(r.onWriteOff, v)
	}
	if v, ok := p.(OnDuplicateRejected); ok {
		r.onDuplicateRejected = append(r.onDuplicateRejected, v)
	}
	if v, ok := p.(OnStatementBuilt); ok {
		r.onStatementBuilt = append(r.onStatementBuilt, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", implementedInterfaces(p),
	)

	return nil
}

var hookTypes = []struct {
	typ  reflect.Type
	name string
}{
	{reflect.TypeFor[OnInit](), "OnInit"},
	{reflect.TypeFor[OnShutdown](), "OnShutdown"},
	{reflect.TypeFor[OnEntityCreated](), "OnEntityCreated"},
	{reflect.TypeFor[OnEntityDeleted](), "OnEntityDeleted"},
	{reflect.TypeFor[OnAccountCreated](), "OnAccountCreated"},
	{reflect.TypeFor[OnRelationshipCreated](), "OnRelationshipCreated"},
	{reflect.TypeFor[OnDenominationCreated](), "OnDenominationCreated"},
	{reflect.TypeFor[OnRateRecorded](), "OnRateRecorded"},
	{reflect.TypeFor[OnChargeCreated](), "OnChargeCreated"},
	{reflect.TypeFor[OnChargesArchived](), "OnChargesArchived"},
	{reflect.TypeFor[OnPaymentApplied](), "OnPaymentApplied"},
	{reflect.TypeFor[OnPaymentDeactivated](), "OnPaymentDeactivated"},
	{reflect.TypeFor[OnWriteOff](), "OnWriteOff"},
	{reflect.TypeFor[OnDuplicateRejected](), "OnDuplicateRejected"},
	{reflect.TypeFor[OnStatementBuilt](), "OnStatementBuilt"},
}

// implementedInterfaces lists the hook interfaces a plugin implements.
func implementedInterfaces(p Plugin) []string {
	var names []string
	v := reflect.TypeOf(p)
	for _, h := range hookTypes {
		if v.Implements(h.typ) {
			names = append(names, h.name)
		}
	}
	return names
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// emit runs call for every plugin in list, logging failures. Hook errors
// never propagate to the caller.
func emit[P Plugin](ctx context.Context, r *Registry, hook string, list func(*Registry) []P, call func(P) error) {
	r.mu.RLock()
	plugins := list(r)
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error { return call(p) }); err != nil {
			r.logger.Warn("plugin "+hook+" failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, ledger any) {
	emit(ctx, r, "OnInit", func(r *Registry) []OnInit { return r.onInit },
		func(p OnInit) error { return p.OnInit(ctx, ledger) })
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	emit(ctx, r, "OnShutdown", func(r *Registry) []OnShutdown { return r.onShutdown },
		func(p OnShutdown) error { return p.OnShutdown(ctx) })
}

// EmitEntityCreated notifies OnEntityCreated plugins.
func (r *Registry) EmitEntityCreated(ctx context.Context, e *entity.Entity) {
	emit(ctx, r, "OnEntityCreated", func(r *Registry) []OnEntityCreated { return r.onEntityCreated },
		func(p OnEntityCreated) error { return p.OnEntityCreated(ctx, e) })
}

// EmitEntityDeleted notifies OnEntityDeleted plugins.
func (r *Registry) EmitEntityDeleted(ctx context.Context, entityID id.EntityID) {
	emit(ctx, r, "OnEntityDeleted", func(r *Registry) []OnEntityDeleted { return r.onEntityDeleted },
		func(p OnEntityDeleted) error { return p.OnEntityDeleted(ctx, entityID) })
}

// EmitAccountCreated notifies OnAccountCreated plugins.
func (r *Registry) EmitAccountCreated(ctx context.Context, a *entity.Account) {
	emit(ctx, r, "OnAccountCreated", func(r *Registry) []OnAccountCreated { return r.onAccountCreated },
		func(p OnAccountCreated) error { return p.OnAccountCreated(ctx, a) })
}

// EmitRelationshipCreated notifies OnRelationshipCreated plugins.
func (r *Registry) EmitRelationshipCreated(ctx context.Context, rel *relation.Relationship) {
	emit(ctx, r, "OnRelationshipCreated", func(r *Registry) []OnRelationshipCreated { return r.onRelationshipCreated },
		func(p OnRelationshipCreated) error { return p.OnRelationshipCreated(ctx, rel) })
}

// EmitDenominationCreated notifies OnDenominationCreated plugins.
func (r *Registry) EmitDenominationCreated(ctx context.Context, d *denomination.Denomination) {
	emit(ctx, r, "OnDenominationCreated", func(r *Registry) []OnDenominationCreated { return r.onDenominationCreated },
		func(p OnDenominationCreated) error { return p.OnDenominationCreated(ctx, d) })
}

// EmitRateRecorded notifies OnRateRecorded plugins.
func (r *Registry) EmitRateRecorded(ctx context.Context, rate *denomination.Rate) {
	emit(ctx, r, "OnRateRecorded", func(r *Registry) []OnRateRecorded { return r.onRateRecorded },
		func(p OnRateRecorded) error { return p.OnRateRecorded(ctx, rate) })
}

// EmitChargeCreated notifies OnChargeCreated plugins.
func (r *Registry) EmitChargeCreated(ctx context.Context, c *charge.Charge) {
	emit(ctx, r, "OnChargeCreated", func(r *Registry) []OnChargeCreated { return r.onChargeCreated },
		func(p OnChargeCreated) error { return p.OnChargeCreated(ctx, c) })
}

// EmitChargesArchived notifies OnChargesArchived plugins.
func (r *Registry) EmitChargesArchived(ctx context.Context, chargeIDs []id.ChargeID) {
	emit(ctx, r, "OnChargesArchived", func(r *Registry) []OnChargesArchived { return r.onChargesArchived },
		func(p OnChargesArchived) error { return p.OnChargesArchived(ctx, chargeIDs) })
}

// EmitPaymentApplied notifies OnPaymentApplied plugins.
func (r *Registry) EmitPaymentApplied(ctx context.Context, pay *payment.Payment, apps []*payment.Application) {
	emit(ctx, r, "OnPaymentApplied", func(r *Registry) []OnPaymentApplied { return r.onPaymentApplied },
		func(p OnPaymentApplied) error { return p.OnPaymentApplied(ctx, pay, apps) })
}

// EmitPaymentDeactivated notifies OnPaymentDeactivated plugins.
func (r *Registry) EmitPaymentDeactivated(ctx context.Context, pay *payment.Payment) {
	emit(ctx, r, "OnPaymentDeactivated", func(r *Registry) []OnPaymentDeactivated { return r.onPaymentDeactivated },
		func(p OnPaymentDeactivated) error { return p.OnPaymentDeactivated(ctx, pay) })
}

// EmitWriteOff notifies OnWriteOff plugins.
func (r *Registry) EmitWriteOff(ctx context.Context, pay *payment.Payment, apps []*payment.Application) {
	emit(ctx, r, "OnWriteOff", func(r *Registry) []OnWriteOff { return r.onWriteOff },
		func(p OnWriteOff) error { return p.OnWriteOff(ctx, pay, apps) })
}

// EmitDuplicateRejected notifies OnDuplicateRejected plugins.
func (r *Registry) EmitDuplicateRejected(ctx context.Context, kind, value string) {
	emit(ctx, r, "OnDuplicateRejected", func(r *Registry) []OnDuplicateRejected { return r.onDuplicateRejected },
		func(p OnDuplicateRejected) error { return p.OnDuplicateRejected(ctx, kind, value) })
}

// EmitStatementBuilt notifies OnStatementBuilt plugins.
func (r *Registry) EmitStatementBuilt(ctx context.Context, s *invoice.Statement) {
	emit(ctx, r, "OnStatementBuilt", func(r *Registry) []OnStatementBuilt { return r.onStatementBuilt },
		func(p OnStatementBuilt) error { return p.OnStatementBuilt(ctx, s) })
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the ledger.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
