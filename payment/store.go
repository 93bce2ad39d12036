package payment

import (
	"context"

	"github.com/xraph/receivables/id"
)

type Store interface {
	Create(ctx context.Context, p *Payment) error
	Get(ctx context.Context, paymentID id.PaymentID) (*Payment, error)
	GetByDescription(ctx context.Context, description string) (*Payment, error)
	List(ctx context.Context, opts ListOpts) ([]*Payment, error)
	SetState(ctx context.Context, paymentID id.PaymentID, active bool) (bool, error)

	CreateApplications(ctx context.Context, apps []*Application) error
	ListApplications(ctx context.Context, opts ApplicationListOpts) ([]*Application, error)
	// AppliedTotals sums, per charge, the Amount of active applications
	// whose payment is also active.
	AppliedTotals(ctx context.Context, chargeIDs []id.ChargeID) (map[id.ChargeID]int64, error)
	// Consumed sums PaymentAmount over the active applications of a payment.
	Consumed(ctx context.Context, paymentID id.PaymentID) (int64, error)
}

// ListOpts filters payment listings. EntityID keeps payments whose from or
// to account belongs to the entity. Results are ordered by date, then ID.
type ListOpts struct {
	EntityID   id.EntityID
	AccountID  id.AccountID
	ActiveOnly bool
	Limit      int
	Offset     int
}

// ApplicationListOpts filters application listings. Results are ordered by
// date, then ID.
type ApplicationListOpts struct {
	PaymentID id.PaymentID
	ChargeIDs []id.ChargeID
	// CountingOnly keeps applications that still count toward balances:
	// active themselves and belonging to an active payment.
	CountingOnly bool
}
