// Package bunstore implements store.Store on top of the bun SQL toolkit.
// The postgres and sqlite packages supply the dialect-specific pieces:
// migrations, constraint error classification and row locking.
package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	"github.com/xraph/receivables"
	"github.com/xraph/receivables/charge"
	"github.com/xraph/receivables/denomination"
	"github.com/xraph/receivables/entity"
	"github.com/xraph/receivables/id"
	"github.com/xraph/receivables/payment"
	"github.com/xraph/receivables/relation"
	"github.com/xraph/receivables/store"
	"github.com/xraph/receivables/types"
)

// compile-time interface check
var _ store.Store = (*Store)(nil)

// Violation classifies a driver error raised by a table constraint.
type Violation int

const (
	NoViolation Violation = iota
	UniqueViolation
	PrimaryKeyViolation
	ForeignKeyViolation
)

// Dialect carries what differs between database engines.
type Dialect struct {
	// Name prefixes error messages, e.g. "postgres".
	Name       string
	Migrations *migrate.Migrations
	// Classify inspects a driver error. Detail, when not empty, names the
	// violated constraint.
	Classify func(err error) (v Violation, detail string)
	// RowLocks enables SELECT ... FOR UPDATE in LockCharges and
	// LockPayment. Engines that serialize writers at BEGIN leave it off.
	RowLocks bool
	// TxOptions are passed to every transaction.
	TxOptions *sql.TxOptions
}

// Store implements store.Store using bun.
type Store struct {
	db      *bun.DB
	idb     bun.IDB
	dialect *Dialect
	inTx    bool
}

// New creates a store over an open bun database.
func New(db *bun.DB, dialect *Dialect) *Store {
	return &Store{db: db, idb: db, dialect: dialect}
}

// DB returns the underlying bun database for direct access.
func (s *Store) DB() *bun.DB { return s.db }

// ──────────────────────────────────────────────────
// Lifecycle
// ──────────────────────────────────────────────────

// Migrate applies every registered migration that has not run yet.
func (s *Store) Migrate(ctx context.Context) error {
	migrator := migrate.NewMigrator(s.db, s.dialect.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("receivables/%s: %w: init: %w", s.dialect.Name, receivables.ErrMigrationFailed, err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("receivables/%s: %w: %w", s.dialect.Name, receivables.ErrMigrationFailed, err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return &receivables.StorageError{Op: "ping", Err: err}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// InTx runs fn inside a database transaction. Errors returned by fn pass
// through untouched; failures to begin or commit become StorageErrors.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}

	var fnErr error
	err := s.db.RunInTx(ctx, s.dialect.TxOptions, func(ctx context.Context, tx bun.Tx) error {
		fnErr = fn(ctx, &Store{db: s.db, idb: tx, dialect: s.dialect, inTx: true})
		return fnErr
	})
	if err == nil {
		return nil
	}
	if fnErr != nil {
		return fnErr
	}
	return &receivables.StorageError{Op: "transaction", Err: err}
}

// ──────────────────────────────────────────────────
// Denomination Store
// ──────────────────────────────────────────────────

func (s *Store) CreateDenomination(ctx context.Context, d *denomination.Denomination) error {
	_, err := s.idb.NewInsert().Model(toDenominationModel(d)).Exec(ctx)
	return s.insertErr(err, "denomination", "code", d.Code)
}

func (s *Store) GetDenomination(ctx context.Context, denominationID id.DenominationID) (*denomination.Denomination, error) {
	m := new(denominationModel)
	err := s.idb.NewSelect().Model(m).Where("id = ?", denominationID.String()).Scan(ctx)
	if err != nil {
		return nil, s.readErr(err, "get denomination", receivables.ErrDenominationNotFound)
	}
	return fromDenominationModel(m)
}

func (s *Store) GetDenominationByCode(ctx context.Context, code string) (*denomination.Denomination, error) {
	m := new(denominationModel)
	err := s.idb.NewSelect().Model(m).Where("code = ?", strings.ToUpper(code)).Scan(ctx)
	if err != nil {
		return nil, s.readErr(err, "get denomination", receivables.ErrDenominationNotFound)
	}
	return fromDenominationModel(m)
}

func (s *Store) ListDenominations(ctx context.Context) ([]*denomination.Denomination, error) {
	var models []denominationModel
	if err := s.idb.NewSelect().Model(&models).Order("code").Scan(ctx); err != nil {
		return nil, s.storageErr("list denominations", err)
	}
	return convertAll(models, fromDenominationModel)
}

func (s *Store) DeleteDenomination(ctx context.Context, denominationID id.DenominationID) error {
	res, err := s.idb.NewDelete().Model((*denominationModel)(nil)).
		Where("id = ?", denominationID.String()).
		Exec(ctx)
	return s.deleteErr(res, err, "denomination", receivables.ErrDenominationNotFound)
}

func (s *Store) CreateRate(ctx context.Context, r *denomination.Rate) error {
	_, err := s.idb.NewInsert().Model(toRateModel(r)).Exec(ctx)
	return s.insertErr(err, "rate", "id", r.ID.String())
}

func (s *Store) LatestRate(ctx context.Context, unitID, denominationID id.DenominationID, asOf time.Time) (*denomination.Rate, error) {
	m := new(rateModel)
	err := s.idb.NewSelect().Model(m).
		Where("unit_id = ?", unitID.String()).
		Where("denomination_id = ?", denominationID.String()).
		Where("effective_at <= ?", asOf.UTC()).
		OrderExpr("effective_at DESC, created_at DESC, id DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		notFound := fmt.Errorf("%w: no rate for %s as of %s", receivables.ErrRateUnavailable,
			denominationID, asOf.Format(time.RFC3339))
		return nil, s.readErr(err, "latest rate", notFound)
	}
	return fromRateModel(m)
}

func (s *Store) ListRates(ctx context.Context, opts denomination.RateListOpts) ([]*denomination.Rate, error) {
	var models []rateModel
	q := s.idb.NewSelect().Model(&models)
	if !opts.UnitID.IsNil() {
		q = q.Where("unit_id = ?", opts.UnitID.String())
	}
	if !opts.DenominationID.IsNil() {
		q = q.Where("denomination_id = ?", opts.DenominationID.String())
	}
	q = q.OrderExpr("effective_at ASC, created_at ASC, id ASC")
	q = paginate(q, opts.Limit, opts.Offset)
	if err := q.Scan(ctx); err != nil {
		return nil, s.storageErr("list rates", err)
	}
	return convertAll(models, fromRateModel)
}

// ──────────────────────────────────────────────────
// Entity Store
// ──────────────────────────────────────────────────

func (s *Store) CreateEntity(ctx context.Context, e *entity.Entity) error {
	_, err := s.idb.NewInsert().Model(toEntityModel(e)).Exec(ctx)
	return s.insertErr(err, "entity", "name", e.Name)
}

func (s *Store) GetEntity(ctx context.Context, entityID id.EntityID) (*entity.Entity, error) {
	m := new(entityModel)
	err := s.idb.NewSelect().Model(m).Where("id = ?", entityID.String()).Scan(ctx)
	if err != nil {
		return nil, s.readErr(err, "get entity", receivables.ErrEntityNotFound)
	}
	return fromEntityModel(m)
}

func (s *Store) GetEntityByName(ctx context.Context, name string) (*entity.Entity, error) {
	m := new(entityModel)
	err := s.idb.NewSelect().Model(m).Where("name = ?", name).Scan(ctx)
	if err != nil {
		return nil, s.readErr(err, "get entity", receivables.ErrEntityNotFound)
	}
	return fromEntityModel(m)
}

func (s *Store) ListEntities(ctx context.Context, opts entity.ListOpts) ([]*entity.Entity, error) {
	var models []entityModel
	q := s.idb.NewSelect().Model(&models)
	if opts.NameLike != "" {
		q = q.Where("LOWER(name) LIKE ?", likePattern(opts.NameLike))
	}
	q = paginate(q.Order("name", "id"), opts.Limit, opts.Offset)
	if err := q.Scan(ctx); err != nil {
		return nil, s.storageErr("list entities", err)
	}
	return convertAll(models, fromEntityModel)
}

// DeleteEntity relies on ON DELETE CASCADE for accounts, relationships and
// their charges. Payments and applications restrict the delete.
func (s *Store) DeleteEntity(ctx context.Context, entityID id.EntityID) error {
	res, err := s.idb.NewDelete().Model((*entityModel)(nil)).
		Where("id = ?", entityID.String()).
		Exec(ctx)
	return s.deleteErr(res, err, "entity", receivables.ErrEntityNotFound)
}

func (s *Store) CreateAccount(ctx context.Context, a *entity.Account) error {
	_, err := s.idb.NewInsert().Model(toAccountModel(a)).Exec(ctx)
	return s.insertErr(err, "account", "id", a.ID.String())
}

func (s *Store) GetAccount(ctx context.Context, accountID id.AccountID) (*entity.Account, error) {
	m := new(accountModel)
	err := s.idb.NewSelect().Model(m).Where("id = ?", accountID.String()).Scan(ctx)
	if err != nil {
		return nil, s.readErr(err, "get account", receivables.ErrAccountNotFound)
	}
	return fromAccountModel(m)
}

func (s *Store) ListAccounts(ctx context.Context, entityID id.EntityID) ([]*entity.Account, error) {
	var models []accountModel
	q := s.idb.NewSelect().Model(&models)
	if !entityID.IsNil() {
		q = q.Where("entity_id = ?", entityID.String())
	}
	if err := q.Order("id").Scan(ctx); err != nil {
		return nil, s.storageErr("list accounts", err)
	}
	return convertAll(models, fromAccountModel)
}

// ──────────────────────────────────────────────────
// Relationship Store
// ──────────────────────────────────────────────────

func (s *Store) CreateRelationship(ctx context.Context, r *relation.Relationship) error {
	_, err := s.idb.NewInsert().Model(toRelationshipModel(r)).Exec(ctx)
	return s.insertErr(err, "relationship", "description", r.Description)
}

func (s *Store) GetRelationship(ctx context.Context, relationID id.RelationshipID) (*relation.Relationship, error) {
	m := new(relationshipModel)
	err := s.idb.NewSelect().Model(m).Where("id = ?", relationID.String()).Scan(ctx)
	if err != nil {
		return nil, s.readErr(err, "get relationship", receivables.ErrRelationshipNotFound)
	}
	return fromRelationshipModel(m)
}

func (s *Store) GetRelationshipByDescription(ctx context.Context, description string) (*relation.Relationship, error) {
	m := new(relationshipModel)
	err := s.idb.NewSelect().Model(m).Where("description = ?", description).Scan(ctx)
	if err != nil {
		return nil, s.readErr(err, "get relationship", receivables.ErrRelationshipNotFound)
	}
	return fromRelationshipModel(m)
}

func (s *Store) ListRelationships(ctx context.Context, opts relation.ListOpts) ([]*relation.Relationship, error) {
	var models []relationshipModel
	q := s.idb.NewSelect().Model(&models)
	if opts.DescriptionLike != "" {
		q = q.Where("LOWER(description) LIKE ?", likePattern(opts.DescriptionLike))
	}
	if !opts.EntityID.IsNil() {
		q = q.Where("(payee_id = ? OR payor_id = ?)", opts.EntityID.String(), opts.EntityID.String())
	}
	q = paginate(q.Order("description", "id"), opts.Limit, opts.Offset)
	if err := q.Scan(ctx); err != nil {
		return nil, s.storageErr("list relationships", err)
	}
	return convertAll(models, fromRelationshipModel)
}

// ──────────────────────────────────────────────────
// Charge Store
// ──────────────────────────────────────────────────

func (s *Store) CreateFeeSchedule(ctx context.Context, f *charge.FeeSchedule) error {
	_, err := s.idb.NewInsert().Model(toFeeScheduleModel(f)).Exec(ctx)
	return s.insertErr(err, "fee_schedule", "id", f.ID.String())
}

func (s *Store) GetFeeSchedule(ctx context.Context, scheduleID id.FeeScheduleID) (*charge.FeeSchedule, error) {
	m := new(feeScheduleModel)
	err := s.idb.NewSelect().Model(m).Where("id = ?", scheduleID.String()).Scan(ctx)
	if err != nil {
		return nil, s.readErr(err, "get fee schedule", receivables.ErrFeeScheduleNotFound)
	}
	return fromFeeScheduleModel(m)
}

func (s *Store) CreateCharge(ctx context.Context, c *charge.Charge) error {
	_, err := s.idb.NewInsert().Model(toChargeModel(c)).Exec(ctx)
	return s.insertErr(err, "charge", "description", c.Description)
}

func (s *Store) GetCharge(ctx context.Context, chargeID id.ChargeID) (*charge.Charge, error) {
	m := new(chargeModel)
	err := s.idb.NewSelect().Model(m).Where("id = ?", chargeID.String()).Scan(ctx)
	if err != nil {
		return nil, s.readErr(err, "get charge", receivables.ErrChargeNotFound)
	}
	return fromChargeModel(m)
}

func (s *Store) GetChargeByDescription(ctx context.Context, description string) (*charge.Charge, error) {
	m := new(chargeModel)
	err := s.idb.NewSelect().Model(m).Where("description = ?", description).Scan(ctx)
	if err != nil {
		return nil, s.readErr(err, "get charge", receivables.ErrChargeNotFound)
	}
	return fromChargeModel(m)
}

func (s *Store) ListCharges(ctx context.Context, opts charge.ListOpts) ([]*charge.Charge, error) {
	var models []chargeModel
	q := s.idb.NewSelect().Model(&models)
	if len(opts.IDs) > 0 {
		q = q.Where("id IN (?)", bun.In(idStrings(opts.IDs)))
	}
	if !opts.RelationID.IsNil() {
		q = q.Where("relation_id = ?", opts.RelationID.String())
	}
	if opts.DescriptionLike != "" {
		q = q.Where("LOWER(description) LIKE ?", likePattern(opts.DescriptionLike))
	}
	if opts.ActiveOnly {
		q = q.Where("state = ?", string(types.StateActive))
	}
	q = paginate(q.Order("due_date", "id"), opts.Limit, opts.Offset)
	if err := q.Scan(ctx); err != nil {
		return nil, s.storageErr("list charges", err)
	}
	return convertAll(models, fromChargeModel)
}

func (s *Store) SetChargeState(ctx context.Context, chargeID id.ChargeID, active bool) (bool, error) {
	return s.setState(ctx, "charge", chargeID, active, receivables.ErrChargeNotFound)
}

// LockCharges takes row locks in ascending ID order so concurrent
// transactions over overlapping charges cannot deadlock.
func (s *Store) LockCharges(ctx context.Context, chargeIDs []id.ChargeID) error {
	if !s.dialect.RowLocks || len(chargeIDs) == 0 {
		return nil
	}
	var locked []string
	err := s.idb.NewSelect().
		Table("charge").
		Column("id").
		Where("id IN (?)", bun.In(idStrings(chargeIDs))).
		OrderExpr("id ASC").
		For("UPDATE").
		Scan(ctx, &locked)
	if err != nil {
		return s.storageErr("lock charges", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Payment Store
// ──────────────────────────────────────────────────

// LockPayment holds the payment row until the transaction ends, so
// concurrent applications of one payment see each other's consumption.
func (s *Store) LockPayment(ctx context.Context, paymentID id.PaymentID) error {
	if !s.dialect.RowLocks {
		return nil
	}
	var locked []string
	err := s.idb.NewSelect().
		Table("payment").
		Column("id").
		Where("id = ?", paymentID.String()).
		For("UPDATE").
		Scan(ctx, &locked)
	if err != nil {
		return s.storageErr("lock payment", err)
	}
	return nil
}

func (s *Store) CreatePayment(ctx context.Context, p *payment.Payment) error {
	_, err := s.idb.NewInsert().Model(toPaymentModel(p)).Exec(ctx)
	return s.insertErr(err, "payment", "description", p.Description)
}

func (s *Store) GetPayment(ctx context.Context, paymentID id.PaymentID) (*payment.Payment, error) {
	m := new(paymentModel)
	err := s.idb.NewSelect().Model(m).Where("id = ?", paymentID.String()).Scan(ctx)
	if err != nil {
		return nil, s.readErr(err, "get payment", receivables.ErrPaymentNotFound)
	}
	return fromPaymentModel(m)
}

func (s *Store) GetPaymentByDescription(ctx context.Context, description string) (*payment.Payment, error) {
	m := new(paymentModel)
	err := s.idb.NewSelect().Model(m).Where("description = ?", description).Scan(ctx)
	if err != nil {
		return nil, s.readErr(err, "get payment", receivables.ErrPaymentNotFound)
	}
	return fromPaymentModel(m)
}

func (s *Store) ListPayments(ctx context.Context, opts payment.ListOpts) ([]*payment.Payment, error) {
	var models []paymentModel
	q := s.idb.NewSelect().Model(&models)
	if opts.ActiveOnly {
		q = q.Where("state = ?", string(types.StateActive))
	}
	if !opts.AccountID.IsNil() {
		q = q.Where("(from_account_id = ? OR to_account_id = ?)", opts.AccountID.String(), opts.AccountID.String())
	}
	if !opts.EntityID.IsNil() {
		owned := s.idb.NewSelect().Table("account").Column("id").Where("entity_id = ?", opts.EntityID.String())
		q = q.Where("(from_account_id IN (?) OR to_account_id IN (?))", owned, owned)
	}
	q = paginate(q.Order("date", "id"), opts.Limit, opts.Offset)
	if err := q.Scan(ctx); err != nil {
		return nil, s.storageErr("list payments", err)
	}
	return convertAll(models, fromPaymentModel)
}

func (s *Store) SetPaymentState(ctx context.Context, paymentID id.PaymentID, active bool) (bool, error) {
	return s.setState(ctx, "payment", paymentID, active, receivables.ErrPaymentNotFound)
}

func (s *Store) CreateApplications(ctx context.Context, apps []*payment.Application) error {
	if len(apps) == 0 {
		return nil
	}
	models := make([]*applicationModel, len(apps))
	for i, a := range apps {
		models[i] = toApplicationModel(a)
	}
	_, err := s.idb.NewInsert().Model(&models).Exec(ctx)
	return s.insertErr(err, "payment_application", "id", apps[0].ID.String())
}

func (s *Store) ListApplications(ctx context.Context, opts payment.ApplicationListOpts) ([]*payment.Application, error) {
	var models []applicationModel
	q := s.idb.NewSelect().Model(&models)
	if !opts.PaymentID.IsNil() {
		q = q.Where("payment_id = ?", opts.PaymentID.String())
	}
	if len(opts.ChargeIDs) > 0 {
		q = q.Where("charge_id IN (?)", bun.In(idStrings(opts.ChargeIDs)))
	}
	if opts.CountingOnly {
		q = q.Where("state = ?", string(types.StateActive)).
			Where("payment_id IN (?)", s.activePayments())
	}
	if err := q.Order("date", "id").Scan(ctx); err != nil {
		return nil, s.storageErr("list applications", err)
	}
	return convertAll(models, fromApplicationModel)
}

func (s *Store) AppliedTotals(ctx context.Context, chargeIDs []id.ChargeID) (map[id.ChargeID]int64, error) {
	totals := make(map[id.ChargeID]int64, len(chargeIDs))
	if len(chargeIDs) == 0 {
		return totals, nil
	}

	var rows []struct {
		ChargeID string `bun:"charge_id"`
		Total    int64  `bun:"total"`
	}
	err := s.idb.NewSelect().
		TableExpr("payment_application").
		ColumnExpr("charge_id").
		ColumnExpr("SUM(amount) AS total").
		Where("charge_id IN (?)", bun.In(idStrings(chargeIDs))).
		Where("state = ?", string(types.StateActive)).
		Where("payment_id IN (?)", s.activePayments()).
		Group("charge_id").
		Scan(ctx, &rows)
	if err != nil {
		return nil, s.storageErr("applied totals", err)
	}

	for _, r := range rows {
		chargeID, err := id.ParseChargeID(r.ChargeID)
		if err != nil {
			return nil, err
		}
		totals[chargeID] = r.Total
	}
	return totals, nil
}

func (s *Store) ConsumedByPayment(ctx context.Context, paymentID id.PaymentID) (int64, error) {
	if _, err := s.GetPayment(ctx, paymentID); err != nil {
		return 0, err
	}
	var total int64
	err := s.idb.NewSelect().
		TableExpr("payment_application").
		ColumnExpr("COALESCE(SUM(payment_amount), 0)").
		Where("payment_id = ?", paymentID.String()).
		Where("state = ?", string(types.StateActive)).
		Scan(ctx, &total)
	if err != nil {
		return 0, s.storageErr("consumed by payment", err)
	}
	return total, nil
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

func (s *Store) activePayments() *bun.SelectQuery {
	return s.idb.NewSelect().Table("payment").Column("id").Where("state = ?", string(types.StateActive))
}

// setState flips the state column only when it differs so that the
// affected row count reports whether anything changed.
func (s *Store) setState(ctx context.Context, table string, recordID id.ID, active bool, notFound error) (bool, error) {
	want := types.StateInactive
	if active {
		want = types.StateActive
	}
	res, err := s.idb.NewUpdate().
		Table(table).
		Set("state = ?", string(want)).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", recordID.String()).
		Where("state <> ?", string(want)).
		Exec(ctx)
	if err != nil {
		return false, s.storageErr("set "+table+" state", err)
	}
	if n, _ := res.RowsAffected(); n > 0 { //nolint:errcheck // drivers used here always report it
		return true, nil
	}

	exists, err := s.idb.NewSelect().Table(table).Where("id = ?", recordID.String()).Exists(ctx)
	if err != nil {
		return false, s.storageErr("set "+table+" state", err)
	}
	if !exists {
		return false, notFound
	}
	return false, nil
}

func convertAll[M any, T any](models []M, conv func(*M) (*T, error)) ([]*T, error) {
	out := make([]*T, 0, len(models))
	for i := range models {
		v, err := conv(&models[i])
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func paginate(q *bun.SelectQuery, limit, offset int) *bun.SelectQuery {
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	return q
}

// likePattern lowercases a LIKE pattern and turns a pattern without
// wildcards into a substring match.
func likePattern(pattern string) string {
	pattern = strings.ToLower(pattern)
	if !strings.ContainsAny(pattern, "%_") {
		return "%" + pattern + "%"
	}
	return pattern
}

// ──────────────────────────────────────────────────
// Error mapping
// ──────────────────────────────────────────────────

func (s *Store) classify(err error) (Violation, string) {
	if s.dialect.Classify == nil {
		return NoViolation, ""
	}
	return s.dialect.Classify(err)
}

func (s *Store) insertErr(err error, kind, field, value string) error {
	if err == nil {
		return nil
	}
	switch v, detail := s.classify(err); v {
	case UniqueViolation:
		return &receivables.DuplicateError{Kind: kind, Field: field, Value: value}
	case PrimaryKeyViolation:
		return fmt.Errorf("%w: %s %s", receivables.ErrAlreadyExists, kind, value)
	case ForeignKeyViolation:
		return &receivables.ReferenceError{Kind: kind, Field: detail, ID: value}
	}
	return s.storageErr("create "+kind, err)
}

func (s *Store) readErr(err error, op string, notFound error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return s.storageErr(op, err)
}

func (s *Store) deleteErr(res sql.Result, err error, kind string, notFound error) error {
	if err != nil {
		if v, detail := s.classify(err); v == ForeignKeyViolation {
			return fmt.Errorf("%w: %s is referenced (%s)", receivables.ErrInUse, kind, detail)
		}
		return s.storageErr("delete "+kind, err)
	}
	if n, _ := res.RowsAffected(); n == 0 { //nolint:errcheck // drivers used here always report it
		return notFound
	}
	return nil
}

func (s *Store) storageErr(op string, err error) error {
	return &receivables.StorageError{Op: s.dialect.Name + " " + op, Err: err}
}
