package receivables

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/receivables/conversion"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, "receivables.yaml", `
storage_location: ledger.db
unit_of_account: usd
reporting_denomination: EUR
strict_application: true
template: invoice.tex
log_format: json
`)
	t.Setenv("RECEIVABLES_STORAGE_LOCATION", "postgres://ledger@localhost/ledger")
	t.Setenv("RECEIVABLES_LOG_LEVEL", "debug")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://ledger@localhost/ledger", cfg.StorageLocation)
	assert.Equal(t, "usd", cfg.UnitOfAccount)
	assert.Equal(t, "EUR", cfg.ReportingDenomination)
	assert.True(t, cfg.StrictApplication)
	assert.Equal(t, "invoice.tex", cfg.Template)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(*Config)
		field string
	}{
		{"missing storage", func(c *Config) { c.StorageLocation = "" }, "storage_location"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, "log_format"},
		{"bad quoter", func(c *Config) { c.Quoter = "http://rates" }, "quoter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mod(&cfg)
			err := cfg.Validate()
			var ve ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	assert.NoError(t, DefaultConfig().Validate())
}

func TestConfigOptions(t *testing.T) {
	rates := writeFile(t, "rates.yaml", "unit: USD\nrates:\n  EUR: 1085\n")

	cfg := DefaultConfig()
	cfg.Quoter = "file:" + rates
	cfg.UnitOfAccount = "usd"
	cfg.StrictApplication = true

	opts, err := cfg.Options()
	require.NoError(t, err)

	l := &Ledger{}
	for _, opt := range opts {
		opt(l)
	}
	assert.Equal(t, "USD", l.unitCode)
	assert.True(t, l.strict)
	assert.IsType(t, &conversion.FileQuoter{}, l.quoter)

	cfg.Quoter = "file:" + filepath.Join(t.TempDir(), "missing.yaml")
	_, err = cfg.Options()
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "warn", "json")
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)

	assert.True(t, newLogger(&buf, "nonsense", "text").Enabled(t.Context(), slog.LevelInfo))
}
