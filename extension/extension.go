// Package extension provides the Forge extension adapter for receivables.
//
// It implements the forge.Extension interface to integrate the ledger
// into a Forge application with DI registration and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.receivables" or
// "receivables" keys.
package extension

import (
	"context"
	"errors"
	"fmt"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	"github.com/xraph/receivables"
	"github.com/xraph/receivables/store"
	"github.com/xraph/receivables/store/memory"
	"github.com/xraph/receivables/store/postgres"
	"github.com/xraph/receivables/store/sqlite"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "receivables"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Secure persistent invoicing ledger"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts the receivables Ledger as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *receivables.Ledger
	store      store.Store
	ledgerOpts []receivables.Option
}

// New creates a new receivables Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying Ledger instance.
// This is nil until Register is called.
func (e *Extension) Engine() *receivables.Ledger { return e.engine }

// Passphrase returns the configured PII passphrase for hosts that pass it
// on to ledger calls. The ledger itself never holds it.
func (e *Extension) Passphrase() []byte { return []byte(e.config.Passphrase) }

// Register implements [forge.Extension]. It loads configuration, opens the
// store, initializes the ledger engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	if e.store == nil {
		s, err := OpenStore(e.config)
		if err != nil {
			return err
		}
		e.store = s
	}

	opts, err := e.buildLedgerOpts()
	if err != nil {
		return err
	}

	e.engine = receivables.New(e.store, opts...)

	return vessel.Provide(fapp.Container(), func() (*receivables.Ledger, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("receivables: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.engine.Start(ctx); err != nil {
			return err
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("receivables: store not initialized")
	}
	return e.store.Ping(ctx)
}

// OpenStore opens the backend named by cfg.StorageLocation: ":memory:" (or
// empty) for the in-process store, a postgres:// DSN for PostgreSQL, and
// anything else as a sqlite file path.
func OpenStore(cfg Config) (store.Store, error) {
	switch loc := cfg.StorageLocation; {
	case loc == "" || loc == ":memory:":
		return memory.New(), nil
	case postgres.IsDSN(loc):
		return postgres.Open(loc, postgres.Options{
			MaxOpenConns: cfg.MaxOpenConns,
			MaxIdleConns: cfg.MaxIdleConns,
		}), nil
	default:
		s, err := sqlite.Open(loc)
		if err != nil {
			return nil, fmt.Errorf("receivables: open sqlite %q: %w", loc, err)
		}
		return s, nil
	}
}

// buildLedgerOpts constructs receivables.Option values from the resolved
// config. Pass-through options come last so they win.
func (e *Extension) buildLedgerOpts() ([]receivables.Option, error) {
	cfgOpts, err := e.config.Options()
	if err != nil {
		return nil, err
	}

	opts := make([]receivables.Option, 0, len(cfgOpts)+len(e.ledgerOpts)+1)
	opts = append(opts, receivables.WithLogger(receivables.NewLogger(e.config.LogLevel, e.config.LogFormat)))
	opts = append(opts, cfgOpts...)
	opts = append(opts, e.ledgerOpts...)
	return opts, nil
}

// --- Config Loading ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("receivables: configuration is required but not found in config files; " +
				"ensure 'extensions.receivables' or 'receivables' key exists in your config")
		}
		e.config = mergeWithDefaults(programmaticConfig)
	} else {
		e.config = mergeConfigurations(fileConfig, programmaticConfig)
	}

	if err := e.config.Validate(); err != nil {
		return fmt.Errorf("receivables: invalid configuration: %w", err)
	}

	e.Logger().Debug("receivables: configuration loaded",
		forge.F("storage_location", redact(e.config.StorageLocation)),
		forge.F("unit_of_account", e.config.UnitOfAccount),
		forge.F("reporting_denomination", e.config.ReportingDenomination),
		forge.F("strict_application", e.config.StrictApplication),
		forge.F("disable_migrate", e.config.DisableMigrate),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()

	for _, key := range []string{"extensions.receivables", "receivables"} {
		if !cm.IsSet(key) {
			continue
		}
		var cfg Config
		if err := cm.Bind(key, &cfg); err == nil {
			e.Logger().Debug("receivables: loaded config from file",
				forge.F("key", key),
			)
			return cfg, true
		}
		e.Logger().Warn("receivables: failed to bind config",
			forge.F("key", key),
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.StorageLocation == "" {
		cfg.StorageLocation = defaults.StorageLocation
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = defaults.LogFormat
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence; programmatic values fill gaps and bool
// flags override when true.
func mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}
	if programmaticConfig.StrictApplication {
		yamlConfig.StrictApplication = true
	}

	fill := func(dst *string, src string) {
		if *dst == "" && src != "" {
			*dst = src
		}
	}
	fill(&yamlConfig.StorageLocation, programmaticConfig.StorageLocation)
	fill(&yamlConfig.UnitOfAccount, programmaticConfig.UnitOfAccount)
	fill(&yamlConfig.ReportingDenomination, programmaticConfig.ReportingDenomination)
	fill(&yamlConfig.Template, programmaticConfig.Template)
	fill(&yamlConfig.Quoter, programmaticConfig.Quoter)
	fill(&yamlConfig.Passphrase, programmaticConfig.Passphrase)
	fill(&yamlConfig.LogLevel, programmaticConfig.LogLevel)
	fill(&yamlConfig.LogFormat, programmaticConfig.LogFormat)

	if yamlConfig.MaxOpenConns == 0 {
		yamlConfig.MaxOpenConns = programmaticConfig.MaxOpenConns
	}
	if yamlConfig.MaxIdleConns == 0 {
		yamlConfig.MaxIdleConns = programmaticConfig.MaxIdleConns
	}

	return mergeWithDefaults(yamlConfig)
}

// redact hides credentials in a postgres DSN.
func redact(location string) string {
	if postgres.IsDSN(location) {
		return "postgres://***"
	}
	return location
}
