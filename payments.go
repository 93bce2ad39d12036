package receivables

import (
	"context"
	"fmt"
	"time"

	"github.com/xraph/receivables/apply"
	"github.com/xraph/receivables/entity"
	"github.com/xraph/receivables/id"
	"github.com/xraph/receivables/payment"
	"github.com/xraph/receivables/store"
	"github.com/xraph/receivables/types"
)

// BeforePayFunc runs inside the payment transaction before any row is
// written. Returning an error aborts the payment.
//
// The store holds its write lock while the hook runs. Calling a Ledger
// method from the hook blocks on that lock and never returns; read what
// the hook needs before calling Pay.
type BeforePayFunc func(ctx context.Context, p *payment.Payment) error

// AfterPayFunc runs inside the payment transaction after the payment and
// its applications are written. Returning an error rolls everything back.
// The same locking rule as BeforePayFunc applies.
type AfterPayFunc func(ctx context.Context, p *payment.Payment, apps []*payment.Application) error

// PayInput describes a payment made by an entity.
type PayInput struct {
	// Description is unique across payments and guards against double
	// submission.
	Description string `json:"description" validate:"required,max=512"`
	// Amount is in the from-account's denomination.
	Amount int64        `json:"amount" validate:"gt=0"`
	From   id.AccountID `json:"from"`
	To     id.AccountID `json:"to"`
	// Charges receive the payment in Order. An empty list records the
	// transfer without applying it; ApplyPayment can apply it later.
	Charges []id.ChargeID `json:"charges"`
	Order   payment.Order `json:"order" validate:"omitempty,oneof=fifo lifo"`
	// Date defaults to now. Charges accrue up to it.
	Date time.Time `json:"date"`
	// Strict overrides the ledger default when set.
	Strict *bool `json:"strict,omitempty"`

	Before BeforePayFunc `json:"-"`
	After  AfterPayFunc  `json:"-"`
}

// ApplyInput describes a further application of a payment's unapplied
// remainder.
type ApplyInput struct {
	Charges []id.ChargeID `json:"charges" validate:"required,min=1"`
	Order   payment.Order `json:"order" validate:"omitempty,oneof=fifo lifo"`
	// Date defaults to now. Charges accrue up to it.
	Date   time.Time `json:"date"`
	Strict *bool     `json:"strict,omitempty"`
}

// PayResult is the committed outcome of a payment or application.
type PayResult struct {
	Payment      *payment.Payment       `json:"payment"`
	Applications []*payment.Application `json:"applications"`
	// Remaining is the part of the payment still unapplied, in the
	// payment's denomination.
	Remaining int64 `json:"remaining"`
}

// Pay records a payment from one of the entity's accounts and applies it
// to the given charges, all in one transaction. A partial application is a
// valid outcome; the unapplied remainder is reported in the result.
func (l *Ledger) Pay(ctx context.Context, entityID id.EntityID, in PayInput) (*PayResult, error) {
	if err := l.checkStruct(in); err != nil {
		return nil, err
	}
	if in.From.IsNil() || in.To.IsNil() {
		return nil, ValidationError{Field: "from", Message: "from and to accounts are required"}
	}
	order := in.Order
	if order == "" {
		order = payment.FIFO
	}
	strict := l.strict
	if in.Strict != nil {
		strict = *in.Strict
	}
	date := l.at(in.Date)

	p := &payment.Payment{
		Record:        l.record(),
		ID:            id.NewPaymentID(),
		FromAccountID: in.From,
		ToAccountID:   in.To,
		Description:   in.Description,
		Date:          date,
		Amount:        in.Amount,
		State:         types.StateActive,
	}

	res := &PayResult{Payment: p}
	err := l.store.InTx(ctx, func(ctx context.Context, tx store.Store) error {
		from, err := l.payingAccount(ctx, tx, entityID, in.From)
		if err != nil {
			return err
		}
		if _, err := tx.GetAccount(ctx, in.To); err != nil {
			return err
		}
		if existing, err := tx.GetPaymentByDescription(ctx, in.Description); err == nil {
			return &DuplicateError{Kind: "payment", Field: "description", Value: existing.Description}
		}

		var plan *apply.Result
		if len(in.Charges) > 0 {
			if plan, err = l.plan(ctx, tx, from, in.Amount, in.Charges, order, date, strict); err != nil {
				return err
			}
		}

		if in.Before != nil {
			if err := in.Before(ctx, p); err != nil {
				return fmt.Errorf("before-payment hook: %w", err)
			}
		}
		if err := tx.CreatePayment(ctx, p); err != nil {
			return err
		}

		res.Applications, res.Remaining = nil, p.Amount
		if plan != nil {
			if res.Applications, err = l.persist(ctx, tx, p, plan, date); err != nil {
				return err
			}
			res.Remaining = plan.Remaining
		}

		if in.After != nil {
			if err := in.After(ctx, p, res.Applications); err != nil {
				return fmt.Errorf("after-payment hook: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, l.rejected(ctx, err)
	}

	l.logger.Debug("payment recorded",
		"payment_id", p.ID.String(),
		"entity_id", entityID.String(),
		"amount", p.Amount,
		"applications", len(res.Applications),
		"remaining", res.Remaining,
	)
	l.plugins.EmitPaymentApplied(ctx, p, res.Applications)
	return res, nil
}

// ApplyPayment applies the unapplied remainder of an active payment to
// further charges.
func (l *Ledger) ApplyPayment(ctx context.Context, paymentID id.PaymentID, in ApplyInput) (*PayResult, error) {
	if err := l.checkStruct(in); err != nil {
		return nil, err
	}
	order := in.Order
	if order == "" {
		order = payment.FIFO
	}
	strict := l.strict
	if in.Strict != nil {
		strict = *in.Strict
	}
	date := l.at(in.Date)

	res := &PayResult{}
	err := l.store.InTx(ctx, func(ctx context.Context, tx store.Store) error {
		if err := tx.LockPayment(ctx, paymentID); err != nil {
			return err
		}
		p, err := tx.GetPayment(ctx, paymentID)
		if err != nil {
			return err
		}
		if !p.Active() {
			return ValidationError{Field: "payment_id", Message: "payment is inactive"}
		}
		from, err := tx.GetAccount(ctx, p.FromAccountID)
		if err != nil {
			return err
		}
		consumed, err := tx.ConsumedByPayment(ctx, p.ID)
		if err != nil {
			return err
		}
		available := p.Amount - consumed
		if available <= 0 {
			return ValidationError{Field: "payment_id", Message: "payment is fully applied"}
		}

		plan, err := l.plan(ctx, tx, from, available, in.Charges, order, date, strict)
		if err != nil {
			return err
		}
		if res.Applications, err = l.persist(ctx, tx, p, plan, date); err != nil {
			return err
		}
		res.Payment, res.Remaining = p, plan.Remaining
		return nil
	})
	if err != nil {
		return nil, l.rejected(ctx, err)
	}

	l.logger.Debug("payment applied",
		"payment_id", paymentID.String(),
		"applications", len(res.Applications),
		"remaining", res.Remaining,
	)
	l.plugins.EmitPaymentApplied(ctx, res.Payment, res.Applications)
	return res, nil
}

// DeactivatePayment stops a payment from counting toward balances. Its
// applications stay recorded as history. It reports whether the state
// changed.
func (l *Ledger) DeactivatePayment(ctx context.Context, paymentID id.PaymentID) (bool, error) {
	changed, err := l.store.SetPaymentState(ctx, paymentID, false)
	if err != nil {
		return false, l.rejected(ctx, err)
	}
	if !changed {
		return false, nil
	}

	p, err := l.store.GetPayment(ctx, paymentID)
	if err != nil {
		return true, err
	}
	l.logger.Debug("payment deactivated", "payment_id", paymentID.String())
	l.plugins.EmitPaymentDeactivated(ctx, p)
	return true, nil
}

// Payment returns a payment by ID.
func (l *Ledger) Payment(ctx context.Context, paymentID id.PaymentID) (*payment.Payment, error) {
	return l.store.GetPayment(ctx, paymentID)
}

// Payments lists the payments made from or to the entity's accounts.
func (l *Ledger) Payments(ctx context.Context, entityID id.EntityID, opts payment.ListOpts) ([]*payment.Payment, error) {
	opts.EntityID = entityID
	return l.store.ListPayments(ctx, opts)
}

// Applications lists payment applications matching opts.
func (l *Ledger) Applications(ctx context.Context, opts payment.ApplicationListOpts) ([]*payment.Application, error) {
	return l.store.ListApplications(ctx, opts)
}

// ──────────────────────────────────────────────────
// Application helpers
// ──────────────────────────────────────────────────

func (l *Ledger) payingAccount(ctx context.Context, tx store.Store, entityID id.EntityID, accountID id.AccountID) (*entity.Account, error) {
	a, err := tx.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if a.EntityID != entityID {
		return nil, ValidationError{Field: "from", Message: fmt.Sprintf("account %s does not belong to entity %s", accountID, entityID)}
	}
	return a, nil
}

// plan locks the charges and plans the application of available units of
// from's denomination to them. Inactive charges are treated as settled.
func (l *Ledger) plan(ctx context.Context, tx store.Store, from *entity.Account, available int64, chargeIDs []id.ChargeID, order payment.Order, date time.Time, strict bool) (*apply.Result, error) {
	if err := tx.LockCharges(ctx, lockOrder(chargeIDs)); err != nil {
		return nil, err
	}
	charges, err := loadCharges(ctx, tx, chargeIDs)
	if err != nil {
		return nil, err
	}
	acc, err := l.accrue(ctx, tx, charges, date)
	if err != nil {
		return nil, err
	}
	table, err := l.table(ctx, tx, date)
	if err != nil {
		return nil, err
	}

	targets := make([]apply.Target, len(acc))
	for i, a := range acc {
		targets[i] = apply.Target{
			ChargeID:       a.charge.ID,
			DenominationID: a.charge.DenominationID,
			DueDate:        a.charge.DueDate,
			Outstanding:    a.outstanding,
		}
		if !a.charge.Active() {
			targets[i].Outstanding = 0
		}
	}

	return apply.Plan(ctx, apply.Request{
		Available:      available,
		DenominationID: from.DenominationID,
		Targets:        targets,
		Order:          order,
		Convert:        table,
		Strict:         strict,
	})
}

// persist writes one application per allocation.
func (l *Ledger) persist(ctx context.Context, tx store.Store, p *payment.Payment, plan *apply.Result, date time.Time) ([]*payment.Application, error) {
	if len(plan.Allocations) == 0 {
		return nil, nil
	}
	rec := l.record()
	apps := make([]*payment.Application, len(plan.Allocations))
	for i, a := range plan.Allocations {
		apps[i] = &payment.Application{
			Record:        rec,
			ID:            id.NewApplicationID(),
			PaymentID:     p.ID,
			ChargeID:      a.ChargeID,
			Amount:        a.Amount,
			PaymentAmount: a.Consumed,
			Date:          date,
			State:         types.StateActive,
		}
	}
	if err := tx.CreateApplications(ctx, apps); err != nil {
		return nil, err
	}
	return apps, nil
}
