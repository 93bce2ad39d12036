package receivables

import (
	"github.com/xraph/receivables/payment"
	"github.com/xraph/receivables/types"
)

// Re-export common types for convenience so users don't have to import the
// types and payment packages for everyday calls.

// Money is re-exported from types package.
type Money = types.Money

// Payload is re-exported from types package.
type Payload = types.Payload

// Re-export value constructors
var (
	NewMoney    = types.New
	Zero        = types.Zero
	Sum         = types.Sum
	NewPayload  = types.NewPayload
	MustPayload = types.MustPayload
)

// Application orders.
const (
	FIFO = payment.FIFO
	LIFO = payment.LIFO
)
