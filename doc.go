// Package receivables provides a secure, persistent invoicing ledger for Go
// applications.
//
// Receivables is designed as a library, not a service. Entities exchange
// charges denominated in arbitrary units of account; unpaid balances accrue
// compounding interest on a fee schedule; payments are applied to
// outstanding charges in FIFO or LIFO order. Nothing is hard-deleted:
// charges and payments are deactivated and their history stays.
//
// # Quick Start
//
// Open a store, create a ledger and start it:
//
//	import (
//	    "github.com/xraph/receivables"
//	    "github.com/xraph/receivables/store/sqlite"
//	)
//
//	s, err := sqlite.Open("receivables.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	l := receivables.New(s, receivables.WithUnitOfAccount("USD"))
//	if err := l.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer l.Stop()
//
// # Core Concepts
//
// Entities carry encrypted PII. The passphrase is passed to each call and
// never kept:
//
//	acme, err := l.AddEntity(ctx, pass, "Acme Rentals", address, nil)
//	jane, err := l.AddEntity(ctx, pass, "Jane Tenant", address, nil)
//
// Relationships group the charges between a payee and a payor. Their
// description is unique and doubles as the double-submit guard:
//
//	lease, err := l.AddRelationship(ctx, "lease 12B", acme.ID, jane.ID)
//	rent, err := l.AddCharge(ctx, lease.ID, charge.Input{
//	    Description:    "rent 2024-01",
//	    Amount:         120000,
//	    DenominationID: usd.ID,
//	    DueDate:        due,
//	})
//
// Payments move value between accounts and are applied in one transaction:
//
//	res, err := l.Pay(ctx, jane.ID, receivables.PayInput{
//	    Description: "cheque 1001",
//	    Amount:      50000,
//	    From:        janeUSD.ID,
//	    To:          acmeUSD.ID,
//	    Charges:     []id.ChargeID{rent.ID},
//	})
//
// Outstanding balances are always computed, never stored:
//
//	owed, err := l.Outstanding(ctx, usd.ID, time.Now(), rent.ID)
//
// # Arithmetic
//
// All amounts are int64 minor units. Interest and conversion are computed
// exactly and rounded once with an explicit rounding mode, so results are
// reproducible for any as-of time.
//
// # TypeID
//
// All records use TypeID identifiers:
//
//	ent_01h2xcejqtf2nbrexx3vqjhp41   // Entity ID
//	chg_01h2xcejqtf2nbrexx3vqjhp41   // Charge ID
//	pay_01h455vb4pex5vsknk084sn02q   // Payment ID
//
// TypeIDs are K-sortable, which gives charges with equal due dates a stable
// application order.
package receivables
