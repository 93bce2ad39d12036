package receivables

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/xraph/receivables/conversion"
)

// EnvPrefix is the prefix of environment overrides, e.g.
// RECEIVABLES_STORAGE_LOCATION.
const EnvPrefix = "RECEIVABLES"

// Config holds the Ledger configuration.
// Fields can be set programmatically, loaded from a YAML file, or
// overridden from the environment.
type Config struct {
	// Template is the output template reference copied onto statements.
	// The ledger never interprets it.
	Template string `json:"template" mapstructure:"template" yaml:"template" envconfig:"TEMPLATE"`

	// Quoter selects the rate source used by RefreshRates: "" for none,
	// "static" for an empty static table, or "file:<path>" for a YAML rate
	// file.
	Quoter string `json:"quoter" mapstructure:"quoter" yaml:"quoter" envconfig:"QUOTER" validate:"omitempty,quoter"`

	// Passphrase is the PII secret a host hands to each call. The Ledger
	// itself never stores it.
	Passphrase string `json:"-" mapstructure:"passphrase" yaml:"passphrase" envconfig:"PASSPHRASE"`

	// StorageLocation is ":memory:", a sqlite file path, or a postgres:// DSN.
	StorageLocation string `json:"storage_location" mapstructure:"storage_location" yaml:"storage_location" envconfig:"STORAGE_LOCATION" validate:"required"`

	// UnitOfAccount is the code of the denomination rates are expressed in.
	UnitOfAccount string `json:"unit_of_account" mapstructure:"unit_of_account" yaml:"unit_of_account" envconfig:"UNIT_OF_ACCOUNT" validate:"omitempty,max=16"`

	// ReportingDenomination is the default code for Outstanding and Statement.
	ReportingDenomination string `json:"reporting_denomination" mapstructure:"reporting_denomination" yaml:"reporting_denomination" envconfig:"REPORTING_DENOMINATION" validate:"omitempty,max=16"`

	// StrictApplication makes Pay demand full satisfaction by default.
	StrictApplication bool `json:"strict_application" mapstructure:"strict_application" yaml:"strict_application" envconfig:"STRICT_APPLICATION"`

	// LogLevel is one of debug, info, warn, error (default: info).
	LogLevel string `json:"log_level" mapstructure:"log_level" yaml:"log_level" envconfig:"LOG_LEVEL" validate:"omitempty,oneof=debug info warn error"`

	// LogFormat is text or json (default: text).
	LogFormat string `json:"log_format" mapstructure:"log_format" yaml:"log_format" envconfig:"LOG_FORMAT" validate:"omitempty,oneof=text json"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		StorageLocation: ":memory:",
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// LoadConfig builds a Config from defaults, the YAML file at path (skipped
// when path is empty), an optional .env file in the working directory, and
// RECEIVABLES_* environment variables, in that order of precedence.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("receivables: read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("receivables: parse config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("receivables: load .env: %w", err)
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("receivables: environment overrides: %w", err)
	}

	return cfg, cfg.Validate()
}

// Validate checks the configuration.
func (c Config) Validate() error {
	v := newValidator()
	if err := v.RegisterValidation("quoter", func(fl validator.FieldLevel) bool {
		return validQuoter(fl.Field().String())
	}); err != nil {
		return err
	}
	return validationError("", v.Struct(c))
}

func validQuoter(s string) bool {
	switch {
	case s == "", s == "static":
		return true
	case strings.HasPrefix(s, "file:"):
		return len(s) > len("file:")
	default:
		return false
	}
}

// Options translates the configuration into Ledger options. The returned
// options do not include a store; the caller opens that from
// StorageLocation.
func (c Config) Options() ([]Option, error) {
	opts := []Option{
		WithTemplate(c.Template),
		WithUnitOfAccount(c.UnitOfAccount),
		WithReportingDenomination(c.ReportingDenomination),
		WithStrict(c.StrictApplication),
	}

	q, err := c.NewQuoter()
	if err != nil {
		return nil, err
	}
	if q != nil {
		opts = append(opts, WithQuoter(q))
	}
	return opts, nil
}

// NewQuoter builds the rate source named by Quoter, or nil for none.
func (c Config) NewQuoter() (conversion.Quoter, error) {
	switch {
	case c.Quoter == "":
		return nil, nil //nolint:nilnil // no quoter configured
	case c.Quoter == "static":
		return conversion.StaticQuoter{}, nil
	case strings.HasPrefix(c.Quoter, "file:"):
		return conversion.NewFileQuoter(strings.TrimPrefix(c.Quoter, "file:"))
	default:
		return nil, ValidationError{Field: "quoter", Message: fmt.Sprintf("unknown quoter %q", c.Quoter)}
	}
}

// NewLogger builds a slog logger writing to stderr.
func NewLogger(level, format string) *slog.Logger {
	return newLogger(os.Stderr, level, format)
}

func newLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
