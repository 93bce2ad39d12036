// Package charge defines obligations and the fee schedules that make
// them accrue interest.
package charge

import (
	"time"

	"github.com/xraph/receivables/id"
	"github.com/xraph/receivables/types"
)

// RateScale is the implied divisor of FeeSchedule.InterestRate. A rate of
// 10000 is 1% per compounding period.
const RateScale int64 = 1_000_000

// FeeSchedule holds compounding interest parameters. It is never mutated
// once a charge references it; a new rate needs a new schedule.
type FeeSchedule struct {
	types.Record
	ID                id.FeeScheduleID `json:"id"`
	CompoundingPeriod time.Duration    `json:"compounding_period"`
	InterestRate      int64            `json:"interest_rate"`
}

// PeriodSeconds returns the compounding period in whole seconds.
func (f *FeeSchedule) PeriodSeconds() int64 {
	return int64(f.CompoundingPeriod / time.Second)
}

// Charge is an obligation for Amount minor units of DenominationID, due on
// DueDate. Denomination and fee schedule are fixed at creation.
type Charge struct {
	types.Record
	ID             id.ChargeID       `json:"id"`
	RelationID     id.RelationshipID `json:"relation_id"`
	DenominationID id.DenominationID `json:"denomination_id"`
	Description    string            `json:"description"`
	Payload        types.Payload     `json:"payload"`
	Amount         int64             `json:"amount"`
	DueDate        time.Time         `json:"due_date"`
	FeeScheduleID  id.FeeScheduleID  `json:"fee_schedule_id,omitzero"`
	State          types.State       `json:"state"`
}

// Active reports whether the charge is still part of the active set.
func (c *Charge) Active() bool { return c.State.IsActive() }

// Input is the caller-supplied part of a new charge.
type Input struct {
	Description    string
	Payload        types.Payload
	Amount         int64
	DenominationID id.DenominationID
	DueDate        time.Time
	// FeeScheduleID attaches an existing schedule.
	FeeScheduleID id.FeeScheduleID
	// FeeSchedule creates a schedule in the same transaction as the charge.
	// It is ignored when FeeScheduleID is set.
	FeeSchedule *FeeSchedule
}
