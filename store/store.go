package store

import (
	"context"
	"time"

	"github.com/xraph/receivables/charge"
	"github.com/xraph/receivables/denomination"
	"github.com/xraph/receivables/entity"
	"github.com/xraph/receivables/id"
	"github.com/xraph/receivables/payment"
	"github.com/xraph/receivables/relation"
)

// Store is the unified storage interface for all receivables records.
// Instead of embedding the sub-interfaces, we explicitly declare all methods
// to avoid naming conflicts.
type Store interface {
	// Denomination methods
	CreateDenomination(ctx context.Context, d *denomination.Denomination) error
	GetDenomination(ctx context.Context, denominationID id.DenominationID) (*denomination.Denomination, error)
	GetDenominationByCode(ctx context.Context, code string) (*denomination.Denomination, error)
	ListDenominations(ctx context.Context) ([]*denomination.Denomination, error)
	DeleteDenomination(ctx context.Context, denominationID id.DenominationID) error
	CreateRate(ctx context.Context, r *denomination.Rate) error
	LatestRate(ctx context.Context, unitID, denominationID id.DenominationID, asOf time.Time) (*denomination.Rate, error)
	ListRates(ctx context.Context, opts denomination.RateListOpts) ([]*denomination.Rate, error)

	// Entity methods
	CreateEntity(ctx context.Context, e *entity.Entity) error
	GetEntity(ctx context.Context, entityID id.EntityID) (*entity.Entity, error)
	GetEntityByName(ctx context.Context, name string) (*entity.Entity, error)
	ListEntities(ctx context.Context, opts entity.ListOpts) ([]*entity.Entity, error)
	DeleteEntity(ctx context.Context, entityID id.EntityID) error
	CreateAccount(ctx context.Context, a *entity.Account) error
	GetAccount(ctx context.Context, accountID id.AccountID) (*entity.Account, error)
	ListAccounts(ctx context.Context, entityID id.EntityID) ([]*entity.Account, error)

	// Relationship methods
	CreateRelationship(ctx context.Context, r *relation.Relationship) error
	GetRelationship(ctx context.Context, relationID id.RelationshipID) (*relation.Relationship, error)
	GetRelationshipByDescription(ctx context.Context, description string) (*relation.Relationship, error)
	ListRelationships(ctx context.Context, opts relation.ListOpts) ([]*relation.Relationship, error)

	// Charge methods
	CreateFeeSchedule(ctx context.Context, f *charge.FeeSchedule) error
	GetFeeSchedule(ctx context.Context, scheduleID id.FeeScheduleID) (*charge.FeeSchedule, error)
	CreateCharge(ctx context.Context, c *charge.Charge) error
	GetCharge(ctx context.Context, chargeID id.ChargeID) (*charge.Charge, error)
	GetChargeByDescription(ctx context.Context, description string) (*charge.Charge, error)
	ListCharges(ctx context.Context, opts charge.ListOpts) ([]*charge.Charge, error)
	SetChargeState(ctx context.Context, chargeID id.ChargeID, active bool) (bool, error)
	LockCharges(ctx context.Context, chargeIDs []id.ChargeID) error

	// Payment methods
	CreatePayment(ctx context.Context, p *payment.Payment) error
	GetPayment(ctx context.Context, paymentID id.PaymentID) (*payment.Payment, error)
	GetPaymentByDescription(ctx context.Context, description string) (*payment.Payment, error)
	LockPayment(ctx context.Context, paymentID id.PaymentID) error
	ListPayments(ctx context.Context, opts payment.ListOpts) ([]*payment.Payment, error)
	SetPaymentState(ctx context.Context, paymentID id.PaymentID, active bool) (bool, error)
	CreateApplications(ctx context.Context, apps []*payment.Application) error
	ListApplications(ctx context.Context, opts payment.ApplicationListOpts) ([]*payment.Application, error)
	AppliedTotals(ctx context.Context, chargeIDs []id.ChargeID) (map[id.ChargeID]int64, error)
	ConsumedByPayment(ctx context.Context, paymentID id.PaymentID) (int64, error)

	// InTx runs fn against a transactional view of the store. The
	// transaction commits when fn returns nil and rolls back otherwise.
	// Calling InTx on a transactional view runs fn in the same transaction.
	InTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
