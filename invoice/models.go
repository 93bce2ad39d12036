// Package invoice defines the statement handed to an external invoice
// generator. The ledger selects and totals the charges; rendering the
// statement with a template is the generator's job.
package invoice

import (
	"context"
	"io"
	"time"

	"github.com/xraph/receivables/charge"
	"github.com/xraph/receivables/denomination"
	"github.com/xraph/receivables/entity"
	"github.com/xraph/receivables/relation"
	"github.com/xraph/receivables/types"
)

// Statement is the active charge set of one relationship as of a point in
// time.
type Statement struct {
	Relationship *relation.Relationship `json:"relationship"`
	Payee        *entity.Entity         `json:"payee"`
	Payor        *entity.Entity         `json:"payor"`
	AsOf         time.Time              `json:"as_of"`
	Lines        []Line                 `json:"lines"`
	// Total is the sum of line outstanding amounts converted into the
	// reporting denomination.
	Total    types.Money `json:"total"`
	Template string      `json:"template,omitempty"`
}

// Line is one charge on a statement.
type Line struct {
	Charge       *charge.Charge             `json:"charge"`
	Denomination *denomination.Denomination `json:"denomination"`
	// Periods is the number of compounding periods accrued so far.
	Periods     int64       `json:"periods"`
	Principal   types.Money `json:"principal"`
	Applied     types.Money `json:"applied"`
	Outstanding types.Money `json:"outstanding"`
}

// Generator renders a statement. Implementations live outside the ledger.
type Generator interface {
	Generate(ctx context.Context, w io.Writer, s *Statement) error
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, w io.Writer, s *Statement) error

// Generate implements Generator.
func (f GeneratorFunc) Generate(ctx context.Context, w io.Writer, s *Statement) error {
	return f(ctx, w, s)
}
