package charge

import (
	"context"

	"github.com/xraph/receivables/id"
)

type Store interface {
	Create(ctx context.Context, c *Charge) error
	Get(ctx context.Context, chargeID id.ChargeID) (*Charge, error)
	GetByDescription(ctx context.Context, description string) (*Charge, error)
	List(ctx context.Context, opts ListOpts) ([]*Charge, error)
	// SetState changes the lifecycle state and reports whether the stored
	// state actually changed.
	SetState(ctx context.Context, chargeID id.ChargeID, active bool) (bool, error)
	// Lock takes row locks on the given charges in ascending ID order for
	// the rest of the enclosing transaction.
	Lock(ctx context.Context, chargeIDs []id.ChargeID) error

	CreateSchedule(ctx context.Context, f *FeeSchedule) error
	GetSchedule(ctx context.Context, scheduleID id.FeeScheduleID) (*FeeSchedule, error)
}

// ListOpts filters charge listings. Results are ordered by due date, then ID.
type ListOpts struct {
	RelationID      id.RelationshipID
	DescriptionLike string
	// ActiveOnly drops inactive charges.
	ActiveOnly bool
	IDs        []id.ChargeID
	Limit      int
	Offset     int
}
