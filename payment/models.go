// Package payment defines transfers between accounts and the records of
// how they were applied to charges.
package payment

import (
	"fmt"
	"strings"
	"time"

	"github.com/xraph/receivables/id"
	"github.com/xraph/receivables/types"
)

// Order selects which charges a payment settles first.
type Order string

const (
	// FIFO settles the earliest due charge first.
	FIFO Order = "fifo"
	// LIFO settles the latest due charge first.
	LIFO Order = "lifo"
)

// ParseOrder accepts "fifo" or "lifo" in any case.
func ParseOrder(s string) (Order, error) {
	switch o := Order(strings.ToLower(s)); o {
	case FIFO, LIFO:
		return o, nil
	default:
		return "", fmt.Errorf("payment: unknown application order %q", s)
	}
}

// Payment moves Amount minor units of the from-account's denomination to
// the to-account. A payment whose accounts coincide is a write-off.
type Payment struct {
	types.Record
	ID            id.PaymentID `json:"id"`
	FromAccountID id.AccountID `json:"from_account_id"`
	ToAccountID   id.AccountID `json:"to_account_id"`
	Description   string       `json:"description"`
	Date          time.Time    `json:"date"`
	Amount        int64        `json:"amount"`
	State         types.State  `json:"state"`
}

// IsWriteOff reports whether value is extinguished rather than transferred.
func (p *Payment) IsWriteOff() bool { return p.FromAccountID == p.ToAccountID }

// Active reports whether the payment still counts toward balances.
func (p *Payment) Active() bool { return p.State.IsActive() }

// Application records the portion of a payment applied to one charge.
// Amount is in the charge's denomination; PaymentAmount is what was
// consumed from the payment in the payment's denomination.
type Application struct {
	types.Record
	ID            id.ApplicationID `json:"id"`
	PaymentID     id.PaymentID     `json:"payment_id"`
	ChargeID      id.ChargeID      `json:"charge_id"`
	Amount        int64            `json:"amount"`
	PaymentAmount int64            `json:"payment_amount"`
	Date          time.Time        `json:"date"`
	State         types.State      `json:"state"`
}
