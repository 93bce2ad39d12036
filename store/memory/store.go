// Package memory provides an in-process Store used by tests and the
// "memory" storage location. It enforces the same uniqueness and
// referential rules as the SQL schemas.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

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

// state holds every table. Records are replaced, never mutated in place,
// so a shallow clone of the maps isolates a transaction.
type state struct {
	denominations map[string]*denomination.Denomination
	rates         map[string]*denomination.Rate
	entities      map[string]*entity.Entity
	accounts      map[string]*entity.Account
	relationships map[string]*relation.Relationship
	schedules     map[string]*charge.FeeSchedule
	charges       map[string]*charge.Charge
	payments      map[string]*payment.Payment
	applications  map[string]*payment.Application
}

func newState() *state {
	return &state{
		denominations: make(map[string]*denomination.Denomination),
		rates:         make(map[string]*denomination.Rate),
		entities:      make(map[string]*entity.Entity),
		accounts:      make(map[string]*entity.Account),
		relationships: make(map[string]*relation.Relationship),
		schedules:     make(map[string]*charge.FeeSchedule),
		charges:       make(map[string]*charge.Charge),
		payments:      make(map[string]*payment.Payment),
		applications:  make(map[string]*payment.Application),
	}
}

func (st *state) clone() *state {
	return &state{
		denominations: maps.Clone(st.denominations),
		rates:         maps.Clone(st.rates),
		entities:      maps.Clone(st.entities),
		accounts:      maps.Clone(st.accounts),
		relationships: maps.Clone(st.relationships),
		schedules:     maps.Clone(st.schedules),
		charges:       maps.Clone(st.charges),
		payments:      maps.Clone(st.payments),
		applications:  maps.Clone(st.applications),
	}
}

type shared struct {
	mu     sync.RWMutex
	st     *state
	closed bool
}

// Store is a mutex-guarded in-memory store. Transactions hold the write
// lock for their whole duration and publish a private copy of the state
// on commit.
type Store struct {
	sh *shared
	tx *state
}

// New creates an empty memory store.
func New() *Store {
	return &Store{sh: &shared{st: newState()}}
}

func (s *Store) read(fn func(st *state) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}
	s.sh.mu.RLock()
	defer s.sh.mu.RUnlock()
	if s.sh.closed {
		return receivables.ErrStoreClosed
	}
	return fn(s.sh.st)
}

// write validates and mutates under the write lock. Callers check every
// constraint before touching a map so a failed write leaves no trace.
func (s *Store) write(fn func(st *state) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}
	s.sh.mu.Lock()
	defer s.sh.mu.Unlock()
	if s.sh.closed {
		return receivables.ErrStoreClosed
	}
	return fn(s.sh.st)
}

// ──────────────────────────────────────────────────
// Transactions & lifecycle
// ──────────────────────────────────────────────────

func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	if s.tx != nil {
		return fn(ctx, s)
	}
	if err := ctx.Err(); err != nil {
		return &receivables.StorageError{Op: "begin", Err: err}
	}

	s.sh.mu.Lock()
	defer s.sh.mu.Unlock()
	if s.sh.closed {
		return receivables.ErrStoreClosed
	}

	tx := &Store{sh: s.sh, tx: s.sh.st.clone()}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return &receivables.StorageError{Op: "commit", Err: err}
	}
	s.sh.st = tx.tx
	return nil
}

func (s *Store) Migrate(_ context.Context) error { return nil }

func (s *Store) Ping(_ context.Context) error {
	return s.read(func(*state) error { return nil })
}

func (s *Store) Close() error {
	s.sh.mu.Lock()
	defer s.sh.mu.Unlock()
	s.sh.closed = true
	return nil
}

// ──────────────────────────────────────────────────
// Denomination Store implementation
// ──────────────────────────────────────────────────

func (s *Store) CreateDenomination(_ context.Context, d *denomination.Denomination) error {
	return s.write(func(st *state) error {
		if _, exists := st.denominations[d.ID.String()]; exists {
			return receivables.ErrAlreadyExists
		}
		for _, other := range st.denominations {
			if strings.EqualFold(other.Code, d.Code) {
				return &receivables.DuplicateError{Kind: "denomination", Field: "code", Value: d.Code}
			}
		}
		cp := *d
		st.denominations[d.ID.String()] = &cp
		return nil
	})
}

func (s *Store) GetDenomination(_ context.Context, denominationID id.DenominationID) (*denomination.Denomination, error) {
	var out *denomination.Denomination
	err := s.read(func(st *state) error {
		d, ok := st.denominations[denominationID.String()]
		if !ok {
			return receivables.ErrDenominationNotFound
		}
		cp := *d
		out = &cp
		return nil
	})
	return out, err
}

func (s *Store) GetDenominationByCode(_ context.Context, code string) (*denomination.Denomination, error) {
	var out *denomination.Denomination
	err := s.read(func(st *state) error {
		for _, d := range st.denominations {
			if strings.EqualFold(d.Code, code) {
				cp := *d
				out = &cp
				return nil
			}
		}
		return receivables.ErrDenominationNotFound
	})
	return out, err
}

func (s *Store) ListDenominations(_ context.Context) ([]*denomination.Denomination, error) {
	var out []*denomination.Denomination
	err := s.read(func(st *state) error {
		out = copyAll(st.denominations)
		return nil
	})
	slices.SortFunc(out, func(a, b *denomination.Denomination) int {
		return cmp.Compare(a.Code, b.Code)
	})
	return out, err
}

func (s *Store) DeleteDenomination(_ context.Context, denominationID id.DenominationID) error {
	return s.write(func(st *state) error {
		key := denominationID.String()
		if _, ok := st.denominations[key]; !ok {
			return receivables.ErrDenominationNotFound
		}
		for _, a := range st.accounts {
			if a.DenominationID == denominationID {
				return inUse("denomination", key, "account")
			}
		}
		for _, c := range st.charges {
			if c.DenominationID == denominationID {
				return inUse("denomination", key, "charge")
			}
		}
		for _, r := range st.rates {
			if r.UnitID == denominationID || r.DenominationID == denominationID {
				return inUse("denomination", key, "rate")
			}
		}
		delete(st.denominations, key)
		return nil
	})
}

func (s *Store) CreateRate(_ context.Context, r *denomination.Rate) error {
	return s.write(func(st *state) error {
		if _, exists := st.rates[r.ID.String()]; exists {
			return receivables.ErrAlreadyExists
		}
		if _, ok := st.denominations[r.UnitID.String()]; !ok {
			return &receivables.ReferenceError{Kind: "rate", Field: "unit_id", ID: r.UnitID.String()}
		}
		if _, ok := st.denominations[r.DenominationID.String()]; !ok {
			return &receivables.ReferenceError{Kind: "rate", Field: "denomination_id", ID: r.DenominationID.String()}
		}
		cp := *r
		st.rates[r.ID.String()] = &cp
		return nil
	})
}

func (s *Store) LatestRate(_ context.Context, unitID, denominationID id.DenominationID, asOf time.Time) (*denomination.Rate, error) {
	var out *denomination.Rate
	err := s.read(func(st *state) error {
		for _, r := range st.rates {
			if r.UnitID != unitID || r.DenominationID != denominationID || r.EffectiveAt.After(asOf) {
				continue
			}
			if out == nil || r.Newer(out) {
				out = r
			}
		}
		if out == nil {
			return fmt.Errorf("%w: no rate for %s as of %s", receivables.ErrRateUnavailable,
				denominationID, asOf.Format(time.RFC3339))
		}
		cp := *out
		out = &cp
		return nil
	})
	return out, err
}

func (s *Store) ListRates(_ context.Context, opts denomination.RateListOpts) ([]*denomination.Rate, error) {
	var out []*denomination.Rate
	err := s.read(func(st *state) error {
		for _, r := range st.rates {
			if !opts.UnitID.IsNil() && r.UnitID != opts.UnitID {
				continue
			}
			if !opts.DenominationID.IsNil() && r.DenominationID != opts.DenominationID {
				continue
			}
			cp := *r
			out = append(out, &cp)
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *denomination.Rate) int {
		if a.Newer(b) {
			return 1
		}
		if b.Newer(a) {
			return -1
		}
		return 0
	})
	return page(out, opts.Limit, opts.Offset), err
}

// ──────────────────────────────────────────────────
// Entity Store implementation
// ──────────────────────────────────────────────────

func (s *Store) CreateEntity(_ context.Context, e *entity.Entity) error {
	return s.write(func(st *state) error {
		if _, exists := st.entities[e.ID.String()]; exists {
			return receivables.ErrAlreadyExists
		}
		for _, other := range st.entities {
			if other.Name == e.Name {
				return &receivables.DuplicateError{Kind: "entity", Field: "name", Value: e.Name}
			}
		}
		cp := *e
		st.entities[e.ID.String()] = &cp
		return nil
	})
}

func (s *Store) GetEntity(_ context.Context, entityID id.EntityID) (*entity.Entity, error) {
	var out *entity.Entity
	err := s.read(func(st *state) error {
		e, ok := st.entities[entityID.String()]
		if !ok {
			return receivables.ErrEntityNotFound
		}
		cp := *e
		out = &cp
		return nil
	})
	return out, err
}

func (s *Store) GetEntityByName(_ context.Context, name string) (*entity.Entity, error) {
	var out *entity.Entity
	err := s.read(func(st *state) error {
		for _, e := range st.entities {
			if e.Name == name {
				cp := *e
				out = &cp
				return nil
			}
		}
		return receivables.ErrEntityNotFound
	})
	return out, err
}

func (s *Store) ListEntities(_ context.Context, opts entity.ListOpts) ([]*entity.Entity, error) {
	match, err := like(opts.NameLike)
	if err != nil {
		return nil, err
	}
	var out []*entity.Entity
	err = s.read(func(st *state) error {
		for _, e := range st.entities {
			if match(e.Name) {
				cp := *e
				out = append(out, &cp)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *entity.Entity) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), a.ID.Compare(b.ID))
	})
	return page(out, opts.Limit, opts.Offset), err
}

// DeleteEntity cascades to accounts, relationships and the charges of
// those relationships, mirroring the SQL foreign keys. Payments and
// applications are never cascaded.
func (s *Store) DeleteEntity(_ context.Context, entityID id.EntityID) error {
	return s.write(func(st *state) error {
		key := entityID.String()
		if _, ok := st.entities[key]; !ok {
			return receivables.ErrEntityNotFound
		}

		var accounts, relations, charges []string
		for k, a := range st.accounts {
			if a.EntityID == entityID {
				accounts = append(accounts, k)
			}
		}
		for k, r := range st.relationships {
			if r.Involves(entityID) {
				relations = append(relations, k)
			}
		}
		for k, c := range st.charges {
			if slices.Contains(relations, c.RelationID.String()) {
				charges = append(charges, k)
			}
		}

		for _, p := range st.payments {
			if slices.Contains(accounts, p.FromAccountID.String()) || slices.Contains(accounts, p.ToAccountID.String()) {
				return inUse("entity", key, "payment")
			}
		}
		for _, a := range st.applications {
			if slices.Contains(charges, a.ChargeID.String()) {
				return inUse("entity", key, "payment application")
			}
		}

		for _, k := range charges {
			delete(st.charges, k)
		}
		for _, k := range relations {
			delete(st.relationships, k)
		}
		for _, k := range accounts {
			delete(st.accounts, k)
		}
		delete(st.entities, key)
		return nil
	})
}

func (s *Store) CreateAccount(_ context.Context, a *entity.Account) error {
	return s.write(func(st *state) error {
		if _, exists := st.accounts[a.ID.String()]; exists {
			return receivables.ErrAlreadyExists
		}
		if _, ok := st.entities[a.EntityID.String()]; !ok {
			return &receivables.ReferenceError{Kind: "account", Field: "entity_id", ID: a.EntityID.String()}
		}
		if _, ok := st.denominations[a.DenominationID.String()]; !ok {
			return &receivables.ReferenceError{Kind: "account", Field: "denomination_id", ID: a.DenominationID.String()}
		}
		cp := *a
		st.accounts[a.ID.String()] = &cp
		return nil
	})
}

func (s *Store) GetAccount(_ context.Context, accountID id.AccountID) (*entity.Account, error) {
	var out *entity.Account
	err := s.read(func(st *state) error {
		a, ok := st.accounts[accountID.String()]
		if !ok {
			return receivables.ErrAccountNotFound
		}
		cp := *a
		out = &cp
		return nil
	})
	return out, err
}

func (s *Store) ListAccounts(_ context.Context, entityID id.EntityID) ([]*entity.Account, error) {
	var out []*entity.Account
	err := s.read(func(st *state) error {
		for _, a := range st.accounts {
			if entityID.IsNil() || a.EntityID == entityID {
				cp := *a
				out = append(out, &cp)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *entity.Account) int { return a.ID.Compare(b.ID) })
	return out, err
}

// ──────────────────────────────────────────────────
// Relationship Store implementation
// ──────────────────────────────────────────────────

func (s *Store) CreateRelationship(_ context.Context, r *relation.Relationship) error {
	return s.write(func(st *state) error {
		if _, exists := st.relationships[r.ID.String()]; exists {
			return receivables.ErrAlreadyExists
		}
		for _, other := range st.relationships {
			if other.Description == r.Description {
				return &receivables.DuplicateError{Kind: "relationship", Field: "description", Value: r.Description}
			}
		}
		if _, ok := st.entities[r.PayeeID.String()]; !ok {
			return &receivables.ReferenceError{Kind: "relationship", Field: "payee_id", ID: r.PayeeID.String()}
		}
		if _, ok := st.entities[r.PayorID.String()]; !ok {
			return &receivables.ReferenceError{Kind: "relationship", Field: "payor_id", ID: r.PayorID.String()}
		}
		cp := *r
		st.relationships[r.ID.String()] = &cp
		return nil
	})
}

func (s *Store) GetRelationship(_ context.Context, relationID id.RelationshipID) (*relation.Relationship, error) {
	var out *relation.Relationship
	err := s.read(func(st *state) error {
		r, ok := st.relationships[relationID.String()]
		if !ok {
			return receivables.ErrRelationshipNotFound
		}
		cp := *r
		out = &cp
		return nil
	})
	return out, err
}

func (s *Store) GetRelationshipByDescription(_ context.Context, description string) (*relation.Relationship, error) {
	var out *relation.Relationship
	err := s.read(func(st *state) error {
		for _, r := range st.relationships {
			if r.Description == description {
				cp := *r
				out = &cp
				return nil
			}
		}
		return receivables.ErrRelationshipNotFound
	})
	return out, err
}

func (s *Store) ListRelationships(_ context.Context, opts relation.ListOpts) ([]*relation.Relationship, error) {
	match, err := like(opts.DescriptionLike)
	if err != nil {
		return nil, err
	}
	var out []*relation.Relationship
	err = s.read(func(st *state) error {
		for _, r := range st.relationships {
			if !opts.EntityID.IsNil() && !r.Involves(opts.EntityID) {
				continue
			}
			if match(r.Description) {
				cp := *r
				out = append(out, &cp)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *relation.Relationship) int {
		return cmp.Or(cmp.Compare(a.Description, b.Description), a.ID.Compare(b.ID))
	})
	return page(out, opts.Limit, opts.Offset), err
}

// ──────────────────────────────────────────────────
// Charge Store implementation
// ──────────────────────────────────────────────────

func (s *Store) CreateFeeSchedule(_ context.Context, f *charge.FeeSchedule) error {
	return s.write(func(st *state) error {
		if _, exists := st.schedules[f.ID.String()]; exists {
			return receivables.ErrAlreadyExists
		}
		cp := *f
		st.schedules[f.ID.String()] = &cp
		return nil
	})
}

func (s *Store) GetFeeSchedule(_ context.Context, scheduleID id.FeeScheduleID) (*charge.FeeSchedule, error) {
	var out *charge.FeeSchedule
	err := s.read(func(st *state) error {
		f, ok := st.schedules[scheduleID.String()]
		if !ok {
			return receivables.ErrFeeScheduleNotFound
		}
		cp := *f
		out = &cp
		return nil
	})
	return out, err
}

func (s *Store) CreateCharge(_ context.Context, c *charge.Charge) error {
	return s.write(func(st *state) error {
		if _, exists := st.charges[c.ID.String()]; exists {
			return receivables.ErrAlreadyExists
		}
		for _, other := range st.charges {
			if other.Description == c.Description {
				return &receivables.DuplicateError{Kind: "charge", Field: "description", Value: c.Description}
			}
		}
		if _, ok := st.relationships[c.RelationID.String()]; !ok {
			return &receivables.ReferenceError{Kind: "charge", Field: "relation_id", ID: c.RelationID.String()}
		}
		if _, ok := st.denominations[c.DenominationID.String()]; !ok {
			return &receivables.ReferenceError{Kind: "charge", Field: "denomination_id", ID: c.DenominationID.String()}
		}
		if !c.FeeScheduleID.IsNil() {
			if _, ok := st.schedules[c.FeeScheduleID.String()]; !ok {
				return &receivables.ReferenceError{Kind: "charge", Field: "fee_schedule_id", ID: c.FeeScheduleID.String()}
			}
		}
		cp := *c
		if cp.State == "" {
			cp.State = types.StateActive
		}
		st.charges[c.ID.String()] = &cp
		return nil
	})
}

func (s *Store) GetCharge(_ context.Context, chargeID id.ChargeID) (*charge.Charge, error) {
	var out *charge.Charge
	err := s.read(func(st *state) error {
		c, ok := st.charges[chargeID.String()]
		if !ok {
			return receivables.ErrChargeNotFound
		}
		cp := *c
		out = &cp
		return nil
	})
	return out, err
}

func (s *Store) GetChargeByDescription(_ context.Context, description string) (*charge.Charge, error) {
	var out *charge.Charge
	err := s.read(func(st *state) error {
		for _, c := range st.charges {
			if c.Description == description {
				cp := *c
				out = &cp
				return nil
			}
		}
		return receivables.ErrChargeNotFound
	})
	return out, err
}

func (s *Store) ListCharges(_ context.Context, opts charge.ListOpts) ([]*charge.Charge, error) {
	match, err := like(opts.DescriptionLike)
	if err != nil {
		return nil, err
	}
	var ids map[string]bool
	if len(opts.IDs) > 0 {
		ids = make(map[string]bool, len(opts.IDs))
		for _, cid := range opts.IDs {
			ids[cid.String()] = true
		}
	}

	var out []*charge.Charge
	err = s.read(func(st *state) error {
		for k, c := range st.charges {
			if ids != nil && !ids[k] {
				continue
			}
			if !opts.RelationID.IsNil() && c.RelationID != opts.RelationID {
				continue
			}
			if opts.ActiveOnly && !c.Active() {
				continue
			}
			if match(c.Description) {
				cp := *c
				out = append(out, &cp)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *charge.Charge) int {
		return cmp.Or(a.DueDate.Compare(b.DueDate), a.ID.Compare(b.ID))
	})
	return page(out, opts.Limit, opts.Offset), err
}

func (s *Store) SetChargeState(_ context.Context, chargeID id.ChargeID, active bool) (bool, error) {
	var changed bool
	err := s.write(func(st *state) error {
		c, ok := st.charges[chargeID.String()]
		if !ok {
			return receivables.ErrChargeNotFound
		}
		want := stateOf(active)
		if c.State == want || (c.State == "" && active) {
			return nil
		}
		cp := *c
		cp.State = want
		cp.Touch()
		st.charges[chargeID.String()] = &cp
		changed = true
		return nil
	})
	return changed, err
}

// LockCharges is a no-op: transactions already hold the store-wide lock.
func (s *Store) LockCharges(_ context.Context, _ []id.ChargeID) error { return nil }

// LockPayment is a no-op for the same reason.
func (s *Store) LockPayment(_ context.Context, _ id.PaymentID) error { return nil }

// ──────────────────────────────────────────────────
// Payment Store implementation
// ──────────────────────────────────────────────────

func (s *Store) CreatePayment(_ context.Context, p *payment.Payment) error {
	return s.write(func(st *state) error {
		if _, exists := st.payments[p.ID.String()]; exists {
			return receivables.ErrAlreadyExists
		}
		for _, other := range st.payments {
			if other.Description == p.Description {
				return &receivables.DuplicateError{Kind: "payment", Field: "description", Value: p.Description}
			}
		}
		if _, ok := st.accounts[p.FromAccountID.String()]; !ok {
			return &receivables.ReferenceError{Kind: "payment", Field: "from_account_id", ID: p.FromAccountID.String()}
		}
		if _, ok := st.accounts[p.ToAccountID.String()]; !ok {
			return &receivables.ReferenceError{Kind: "payment", Field: "to_account_id", ID: p.ToAccountID.String()}
		}
		cp := *p
		if cp.State == "" {
			cp.State = types.StateActive
		}
		st.payments[p.ID.String()] = &cp
		return nil
	})
}

func (s *Store) GetPayment(_ context.Context, paymentID id.PaymentID) (*payment.Payment, error) {
	var out *payment.Payment
	err := s.read(func(st *state) error {
		p, ok := st.payments[paymentID.String()]
		if !ok {
			return receivables.ErrPaymentNotFound
		}
		cp := *p
		out = &cp
		return nil
	})
	return out, err
}

func (s *Store) GetPaymentByDescription(_ context.Context, description string) (*payment.Payment, error) {
	var out *payment.Payment
	err := s.read(func(st *state) error {
		for _, p := range st.payments {
			if p.Description == description {
				cp := *p
				out = &cp
				return nil
			}
		}
		return receivables.ErrPaymentNotFound
	})
	return out, err
}

func (s *Store) ListPayments(_ context.Context, opts payment.ListOpts) ([]*payment.Payment, error) {
	var out []*payment.Payment
	err := s.read(func(st *state) error {
		for _, p := range st.payments {
			if opts.ActiveOnly && !p.Active() {
				continue
			}
			if !opts.AccountID.IsNil() && p.FromAccountID != opts.AccountID && p.ToAccountID != opts.AccountID {
				continue
			}
			if !opts.EntityID.IsNil() && !ownedBy(st, p.FromAccountID, opts.EntityID) && !ownedBy(st, p.ToAccountID, opts.EntityID) {
				continue
			}
			cp := *p
			out = append(out, &cp)
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *payment.Payment) int {
		return cmp.Or(a.Date.Compare(b.Date), a.ID.Compare(b.ID))
	})
	return page(out, opts.Limit, opts.Offset), err
}

func (s *Store) SetPaymentState(_ context.Context, paymentID id.PaymentID, active bool) (bool, error) {
	var changed bool
	err := s.write(func(st *state) error {
		p, ok := st.payments[paymentID.String()]
		if !ok {
			return receivables.ErrPaymentNotFound
		}
		want := stateOf(active)
		if p.State == want || (p.State == "" && active) {
			return nil
		}
		cp := *p
		cp.State = want
		cp.Touch()
		st.payments[paymentID.String()] = &cp
		changed = true
		return nil
	})
	return changed, err
}

func (s *Store) CreateApplications(_ context.Context, apps []*payment.Application) error {
	return s.write(func(st *state) error {
		for _, a := range apps {
			if _, exists := st.applications[a.ID.String()]; exists {
				return receivables.ErrAlreadyExists
			}
			if _, ok := st.payments[a.PaymentID.String()]; !ok {
				return &receivables.ReferenceError{Kind: "payment_application", Field: "payment_id", ID: a.PaymentID.String()}
			}
			if _, ok := st.charges[a.ChargeID.String()]; !ok {
				return &receivables.ReferenceError{Kind: "payment_application", Field: "charge_id", ID: a.ChargeID.String()}
			}
		}
		for _, a := range apps {
			cp := *a
			if cp.State == "" {
				cp.State = types.StateActive
			}
			st.applications[a.ID.String()] = &cp
		}
		return nil
	})
}

func (s *Store) ListApplications(_ context.Context, opts payment.ApplicationListOpts) ([]*payment.Application, error) {
	var out []*payment.Application
	err := s.read(func(st *state) error {
		for _, a := range st.applications {
			if !opts.PaymentID.IsNil() && a.PaymentID != opts.PaymentID {
				continue
			}
			if len(opts.ChargeIDs) > 0 && !slices.Contains(opts.ChargeIDs, a.ChargeID) {
				continue
			}
			if opts.CountingOnly && !counts(st, a) {
				continue
			}
			cp := *a
			out = append(out, &cp)
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *payment.Application) int {
		return cmp.Or(a.Date.Compare(b.Date), a.ID.Compare(b.ID))
	})
	return out, err
}

func (s *Store) AppliedTotals(_ context.Context, chargeIDs []id.ChargeID) (map[id.ChargeID]int64, error) {
	totals := make(map[id.ChargeID]int64, len(chargeIDs))
	err := s.read(func(st *state) error {
		for _, a := range st.applications {
			if slices.Contains(chargeIDs, a.ChargeID) && counts(st, a) {
				totals[a.ChargeID] += a.Amount
			}
		}
		return nil
	})
	return totals, err
}

func (s *Store) ConsumedByPayment(_ context.Context, paymentID id.PaymentID) (int64, error) {
	var total int64
	err := s.read(func(st *state) error {
		if _, ok := st.payments[paymentID.String()]; !ok {
			return receivables.ErrPaymentNotFound
		}
		for _, a := range st.applications {
			if a.PaymentID == paymentID && a.State.IsActive() {
				total += a.PaymentAmount
			}
		}
		return nil
	})
	return total, err
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

func counts(st *state, a *payment.Application) bool {
	if !a.State.IsActive() {
		return false
	}
	p, ok := st.payments[a.PaymentID.String()]
	return ok && p.Active()
}

func ownedBy(st *state, accountID id.AccountID, entityID id.EntityID) bool {
	a, ok := st.accounts[accountID.String()]
	return ok && a.EntityID == entityID
}

func stateOf(active bool) types.State {
	if active {
		return types.StateActive
	}
	return types.StateInactive
}

func inUse(kind, key, by string) error {
	return fmt.Errorf("%w: %s %s is referenced by a %s", receivables.ErrInUse, kind, key, by)
}

func copyAll[T any](m map[string]*T) []*T {
	out := make([]*T, 0, len(m))
	for _, v := range m {
		cp := *v
		out = append(out, &cp)
	}
	return out
}

func page[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// like compiles a SQL LIKE pattern into a case-insensitive matcher. A
// pattern without wildcards matches as a substring; an empty pattern
// matches everything.
func like(pattern string) (func(string) bool, error) {
	if pattern == "" {
		return func(string) bool { return true }, nil
	}
	if !strings.ContainsAny(pattern, "%_") {
		needle := strings.ToLower(pattern)
		return func(s string) bool { return strings.Contains(strings.ToLower(s), needle) }, nil
	}

	var b strings.Builder
	b.WriteString("(?is)^")
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("%w: pattern %q: %v", receivables.ErrInvalidInput, pattern, err)
	}
	return re.MatchString, nil
}
