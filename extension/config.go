package extension

import "github.com/xraph/receivables"

// Config holds the receivables extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.receivables" or "receivables"
// keys).
type Config struct {
	receivables.Config `mapstructure:",squash" yaml:",inline"`

	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// MaxOpenConns caps the postgres connection pool (0 = driver default).
	MaxOpenConns int `json:"max_open_conns" mapstructure:"max_open_conns" yaml:"max_open_conns"`

	// MaxIdleConns caps idle postgres connections (0 = driver default).
	MaxIdleConns int `json:"max_idle_conns" mapstructure:"max_idle_conns" yaml:"max_idle_conns"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{Config: receivables.DefaultConfig()}
}
