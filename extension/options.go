package extension

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/xraph/receivables"
	audithook "github.com/xraph/receivables/audit_hook"
	"github.com/xraph/receivables/observability"
	"github.com/xraph/receivables/plugin"
	"github.com/xraph/receivables/store"
)

// Option configures the receivables Forge extension.
type Option func(*Extension)

// WithStore sets the store for the ledger engine. It takes precedence over
// the configured storage location.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithLedgerOption passes a receivables.Option through to the underlying engine.
func WithLedgerOption(opt receivables.Option) Option {
	return func(e *Extension) {
		e.ledgerOpts = append(e.ledgerOpts, opt)
	}
}

// WithPlugin registers a ledger plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.ledgerOpts = append(e.ledgerOpts, receivables.WithPlugin(p))
	}
}

// WithAudit records ledger events through r.
func WithAudit(r audithook.Recorder, opts ...audithook.Option) Option {
	return func(e *Extension) {
		e.ledgerOpts = append(e.ledgerOpts, receivables.WithPlugin(audithook.New(r, opts...)))
	}
}

// WithMetrics registers the Prometheus metrics plugin with reg. A nil reg
// uses the default registerer.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(e *Extension) {
		m := observability.NewMetricsExtension(observability.NewPrometheusFactory(reg))
		e.ledgerOpts = append(e.ledgerOpts, receivables.WithPlugin(m))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithStorageLocation sets where the ledger keeps its data: ":memory:", a
// sqlite file path or a postgres:// DSN.
func WithStorageLocation(location string) Option {
	return func(e *Extension) { e.config.StorageLocation = location }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}
