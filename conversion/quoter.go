package conversion

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/xraph/receivables/denomination"
)

// Quoter is an external rate source used to refresh the conversion table.
// It returns the basis of target relative to unit.
type Quoter interface {
	Quote(ctx context.Context, unit, target *denomination.Denomination) (int64, error)
}

// QuoterFunc adapts a function to Quoter.
type QuoterFunc func(ctx context.Context, unit, target *denomination.Denomination) (int64, error)

// Quote implements Quoter.
func (f QuoterFunc) Quote(ctx context.Context, unit, target *denomination.Denomination) (int64, error) {
	return f(ctx, unit, target)
}

// StaticQuoter quotes fixed bases keyed by denomination code.
type StaticQuoter map[string]int64

// Quote implements Quoter.
func (q StaticQuoter) Quote(_ context.Context, _, target *denomination.Denomination) (int64, error) {
	b, ok := q[strings.ToUpper(target.Code)]
	if !ok {
		return 0, fmt.Errorf("%w: no quote for %s", ErrRateUnavailable, target.Code)
	}
	return b, nil
}

// FileQuoter quotes bases read from a YAML document of the form
//
//	unit: USD
//	rates:
//	  EUR: 1085
//	  GBP: 1262
type FileQuoter struct {
	unit  string
	rates StaticQuoter
}

type quoteFile struct {
	Unit  string           `yaml:"unit"`
	Rates map[string]int64 `yaml:"rates"`
}

// NewFileQuoter reads and validates the rate file at path.
func NewFileQuoter(path string) (*FileQuoter, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("conversion: read quote file: %w", err)
	}
	var f quoteFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("conversion: parse quote file %s: %w", path, err)
	}

	rates := make(StaticQuoter, len(f.Rates))
	for code, basis := range f.Rates {
		if basis <= 0 {
			return nil, fmt.Errorf("conversion: quote file %s: basis for %s must be positive", path, code)
		}
		rates[strings.ToUpper(code)] = basis
	}
	return &FileQuoter{unit: strings.ToUpper(f.Unit), rates: rates}, nil
}

// Quote implements Quoter. It refuses to quote against a unit other than
// the one the file was written for.
func (q *FileQuoter) Quote(ctx context.Context, unit, target *denomination.Denomination) (int64, error) {
	if q.unit != "" && !strings.EqualFold(q.unit, unit.Code) {
		return 0, fmt.Errorf("%w: quote file is relative to %s, not %s", ErrRateUnavailable, q.unit, unit.Code)
	}
	return q.rates.Quote(ctx, unit, target)
}
