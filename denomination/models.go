// Package denomination defines units of account and the conversion rates
// that relate them.
package denomination

import (
	"time"

	"github.com/xraph/receivables/id"
	"github.com/xraph/receivables/types"
)

// BasisScale is the fixed divisor of a conversion basis:
// value_in_unit = amount * basis / BasisScale.
const BasisScale int64 = 1000

// Denomination is a unit of account. It is immutable once an account, a
// charge or a rate references it.
type Denomination struct {
	types.Record
	ID          id.DenominationID `json:"id"`
	Description string            `json:"description"`
	Code        string            `json:"code"`
	Symbol      string            `json:"symbol"`
}

// Money wraps amount in this denomination for display.
func (d *Denomination) Money(amount int64) types.Money {
	return types.New(amount, d.Code).WithSymbol(d.Symbol)
}

// Rate states what one minor unit of DenominationID is worth in UnitID as
// of EffectiveAt, scaled by BasisScale.
type Rate struct {
	types.Record
	ID             id.RateID         `json:"id"`
	UnitID         id.DenominationID `json:"unit_id"`
	DenominationID id.DenominationID `json:"denomination_id"`
	Basis          int64             `json:"basis"`
	EffectiveAt    time.Time         `json:"effective_at"`
}

// Newer reports whether r should win over other when both apply: the
// later effective date wins, then the later recording, then the larger ID.
func (r *Rate) Newer(other *Rate) bool {
	if !r.EffectiveAt.Equal(other.EffectiveAt) {
		return r.EffectiveAt.After(other.EffectiveAt)
	}
	if !r.CreatedAt.Equal(other.CreatedAt) {
		return r.CreatedAt.After(other.CreatedAt)
	}
	return r.ID.Compare(other.ID) > 0
}
