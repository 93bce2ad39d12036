package denomination

import (
	"context"
	"time"

	"github.com/xraph/receivables/id"
)

type Store interface {
	Create(ctx context.Context, d *Denomination) error
	Get(ctx context.Context, denominationID id.DenominationID) (*Denomination, error)
	GetByCode(ctx context.Context, code string) (*Denomination, error)
	List(ctx context.Context) ([]*Denomination, error)
	Delete(ctx context.Context, denominationID id.DenominationID) error

	CreateRate(ctx context.Context, r *Rate) error
	// LatestRate returns the newest rate for the pair whose EffectiveAt is
	// not after asOf.
	LatestRate(ctx context.Context, unitID, denominationID id.DenominationID, asOf time.Time) (*Rate, error)
	ListRates(ctx context.Context, opts RateListOpts) ([]*Rate, error)
}

type RateListOpts struct {
	UnitID         id.DenominationID
	DenominationID id.DenominationID
	Limit          int
	Offset         int
}
