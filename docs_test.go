package receivables_test

import (
	"context"
	"log"
	"log/slog"
	"testing"
	"time"

	"github.com/xraph/receivables"
	"github.com/xraph/receivables/charge"
	"github.com/xraph/receivables/crypt"
	"github.com/xraph/receivables/id"
	"github.com/xraph/receivables/store/memory"
	"github.com/xraph/receivables/types"
)

// TestDocumentationExamples verifies that the package documentation examples
// compile and behave as described.
func TestDocumentationExamples(t *testing.T) {
	t.Run("QuickStartExample", func(t *testing.T) {
		// Create store (memory for demo, use sqlite or PostgreSQL in production)
		store := memory.New()

		boundary, err := crypt.NewPassphrase(crypt.Params{Time: 1, Memory: 64, Threads: 1, SaltLen: 16})
		if err != nil {
			t.Fatal(err)
		}

		l := receivables.New(store,
			receivables.WithLogger(slog.Default()),
			receivables.WithBoundary(boundary),
			receivables.WithUnitOfAccount("USD"),
			receivables.WithReportingDenomination("USD"),
		)

		ctx := context.Background()
		if err := l.Start(ctx); err != nil {
			t.Fatal(err)
		}
		defer l.Stop()

		pass := []byte("s3cret")
		usd, err := l.AddDenomination(ctx, "US dollar", "USD", "$")
		if err != nil {
			t.Fatal(err)
		}

		addr := receivables.MustPayload("postal-address", map[string]string{"city": "Springfield"})
		acme, err := l.AddEntity(ctx, pass, "Acme Rentals", addr, nil)
		if err != nil {
			t.Fatal(err)
		}
		jane, err := l.AddEntity(ctx, pass, "Jane Tenant", addr, nil)
		if err != nil {
			t.Fatal(err)
		}

		janeUSD, err := l.AddAccount(ctx, pass, jane.ID, usd.ID, receivables.MustPayload("card", "4242"))
		if err != nil {
			t.Fatal(err)
		}
		acmeUSD, err := l.AddAccount(ctx, pass, acme.ID, usd.ID, receivables.MustPayload("iban", "GB29"))
		if err != nil {
			t.Fatal(err)
		}

		lease, err := l.AddRelationship(ctx, "lease 12B", acme.ID, jane.ID)
		if err != nil {
			t.Fatal(err)
		}
		rent, err := l.AddCharge(ctx, lease.ID, charge.Input{
			Description:    "rent 2024-01",
			Amount:         120000,
			DenominationID: usd.ID,
			DueDate:        time.Now().Add(-time.Hour),
		})
		if err != nil {
			t.Fatal(err)
		}

		res, err := l.Pay(ctx, jane.ID, receivables.PayInput{
			Description: "cheque 1001",
			Amount:      50000,
			From:        janeUSD.ID,
			To:          acmeUSD.ID,
			Charges:     []id.ChargeID{rent.ID},
		})
		if err != nil {
			t.Fatal(err)
		}

		owed, err := l.Outstanding(ctx, usd.ID, time.Now(), rent.ID)
		if err != nil {
			t.Fatal(err)
		}
		if owed.Amount != 70000 {
			t.Fatalf("outstanding = %s, want $700.00", owed)
		}

		log.Printf("Applied %d application(s); %s still owed\n", len(res.Applications), owed)
	})

	t.Run("MoneyExamples", func(t *testing.T) {
		m := types.New(4900, "usd").WithSymbol("$")
		if got := m.String(); got != "$49.00" {
			t.Errorf("String() = %q, want $49.00", got)
		}
		if got := types.New(100, "JPY").String(); got != "JPY 100" {
			t.Errorf("String() = %q, want JPY 100", got)
		}
		if got := receivables.Sum("USD", types.New(100, "USD"), types.New(250, "USD")); got.Amount != 350 {
			t.Errorf("Sum = %d, want 350", got.Amount)
		}
	})
}
