package receivables

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/xraph/receivables/conversion"
	"github.com/xraph/receivables/crypt"
	"github.com/xraph/receivables/denomination"
	"github.com/xraph/receivables/id"
	"github.com/xraph/receivables/plugin"
	"github.com/xraph/receivables/store"
)

// Ledger is the invoicing engine. It is safe for concurrent use; all
// coordination happens inside store transactions.
type Ledger struct {
	store    store.Store
	plugins  *plugin.Registry
	logger   *slog.Logger
	boundary crypt.Boundary
	quoter   conversion.Quoter
	validate *validator.Validate
	clock    func() time.Time

	// Configuration
	template    string
	unitCode    string
	reportCode  string
	strict      bool
	boundaryErr error
}

// New creates a new Ledger backed by s. The caller owns s and should close
// it through Stop or directly.
func New(s store.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:    s,
		plugins:  plugin.NewRegistry(),
		logger:   slog.Default(),
		validate: newValidator(),
		clock:    time.Now,
	}

	for _, opt := range opts {
		opt(l)
	}

	if l.boundary == nil {
		l.boundary, l.boundaryErr = crypt.NewPassphrase(crypt.DefaultParams())
	}

	return l
}

// Option configures a Ledger instance.
type Option func(*Ledger)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
		l.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(l *Ledger) {
		_ = l.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithBoundary sets the encryption boundary PII passes through. Without it
// the ledger uses a passphrase boundary with default argon2id parameters.
func WithBoundary(b crypt.Boundary) Option {
	return func(l *Ledger) { l.boundary = b }
}

// WithQuoter sets the rate source used by RefreshRates.
func WithQuoter(q conversion.Quoter) Option {
	return func(l *Ledger) { l.quoter = q }
}

// WithUnitOfAccount sets the code of the denomination all conversion rates
// are expressed against.
func WithUnitOfAccount(code string) Option {
	return func(l *Ledger) { l.unitCode = strings.ToUpper(code) }
}

// WithReportingDenomination sets the default code Outstanding and Statement
// report in when the caller passes no denomination.
func WithReportingDenomination(code string) Option {
	return func(l *Ledger) { l.reportCode = strings.ToUpper(code) }
}

// WithTemplate sets the template reference copied onto statements.
func WithTemplate(ref string) Option {
	return func(l *Ledger) { l.template = ref }
}

// WithStrict makes Pay demand full satisfaction of its charges unless the
// call overrides it.
func WithStrict(strict bool) Option {
	return func(l *Ledger) { l.strict = strict }
}

// WithClock replaces the time source. Tests use it to pin "now".
func WithClock(clock func() time.Time) Option {
	return func(l *Ledger) {
		if clock != nil {
			l.clock = clock
		}
	}
}

// Start migrates the store and initializes plugins.
func (l *Ledger) Start(ctx context.Context) error {
	if l.boundaryErr != nil {
		return l.boundaryErr
	}

	if err := l.store.Migrate(ctx); err != nil {
		return err
	}

	l.plugins.EmitInit(ctx, l)

	l.logger.Info("ledger started",
		"unit_of_account", l.unitCode,
		"reporting_denomination", l.reportCode,
		"strict", l.strict,
		"plugins", l.plugins.Count(),
	)

	return nil
}

// Stop notifies plugins and closes the store.
func (l *Ledger) Stop() error {
	ctx := context.Background()
	l.plugins.EmitShutdown(ctx)

	return l.store.Close()
}

// Store returns the underlying store.
func (l *Ledger) Store() store.Store { return l.store }

// Plugins returns the plugin registry.
func (l *Ledger) Plugins() *plugin.Registry { return l.plugins }

// now returns the current time at the precision every store keeps.
func (l *Ledger) now() time.Time {
	return l.clock().UTC().Truncate(time.Microsecond)
}

// at normalizes a caller-supplied time, defaulting to now.
func (l *Ledger) at(t time.Time) time.Time {
	if t.IsZero() {
		return l.now()
	}
	return t.UTC().Truncate(time.Microsecond)
}

// table builds a conversion table over s for the configured unit of
// account. Without a unit every cross-denomination conversion fails with
// ErrRateUnavailable.
func (l *Ledger) table(ctx context.Context, s store.Store, asOf time.Time) (*conversion.Table, error) {
	unit, err := l.unit(ctx, s)
	if err != nil {
		return nil, err
	}
	return conversion.NewTable(s, unit, asOf), nil
}

func (l *Ledger) unit(ctx context.Context, s store.Store) (id.DenominationID, error) {
	if l.unitCode == "" {
		return id.Nil, nil
	}
	d, err := s.GetDenominationByCode(ctx, l.unitCode)
	if errors.Is(err, ErrNotFound) {
		return id.Nil, nil
	}
	if err != nil {
		return id.Nil, err
	}
	return d.ID, nil
}

// reportDenomination resolves the denomination a report is expressed in.
func (l *Ledger) reportDenomination(ctx context.Context, s store.Store, denominationID id.DenominationID) (*denomination.Denomination, error) {
	if !denominationID.IsNil() {
		return s.GetDenomination(ctx, denominationID)
	}
	if l.reportCode == "" {
		return nil, ValidationError{Field: "denomination", Message: "no reporting denomination given or configured"}
	}
	return s.GetDenominationByCode(ctx, l.reportCode)
}

// rejected logs and reports a refused duplicate submission. It returns err
// unchanged.
func (l *Ledger) rejected(ctx context.Context, err error) error {
	var dup *DuplicateError
	if errors.As(err, &dup) {
		l.logger.Warn("duplicate submission rejected",
			"kind", dup.Kind,
			"field", dup.Field,
			"value", dup.Value,
		)
		l.plugins.EmitDuplicateRejected(ctx, dup.Kind, dup.Value)
		return err
	}
	if errors.Is(err, ErrStorageUnavailable) {
		l.logger.Error("storage failure", "error", err)
	}
	return err
}
