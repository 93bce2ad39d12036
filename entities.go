package receivables

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xraph/receivables/entity"
	"github.com/xraph/receivables/id"
	"github.com/xraph/receivables/types"
)

// ──────────────────────────────────────────────────
// Entities
// ──────────────────────────────────────────────────

// AddEntity registers a payer or payee. Address and the optional
// identification are sealed with passphrase before they are stored; the
// passphrase itself is not kept.
func (l *Ledger) AddEntity(ctx context.Context, passphrase []byte, name string, address types.Payload, identification *types.Payload) (*entity.Entity, error) {
	if err := l.checkVar("name", name, "required,max=255"); err != nil {
		return nil, err
	}
	if address.IsZero() {
		return nil, ValidationError{Field: "address", Message: "is required"}
	}

	e := &entity.Entity{
		Record: l.record(),
		ID:     id.NewEntityID(),
		Name:   name,
	}

	var err error
	if e.Address, err = l.seal(address, passphrase); err != nil {
		return nil, err
	}
	if identification != nil && !identification.IsZero() {
		if e.Identification, err = l.seal(*identification, passphrase); err != nil {
			return nil, err
		}
	}

	if err := l.store.CreateEntity(ctx, e); err != nil {
		return nil, l.rejected(ctx, err)
	}

	l.logger.Debug("entity added", "entity_id", e.ID.String(), "name", e.Name)
	l.plugins.EmitEntityCreated(ctx, e)
	return e, nil
}

// Entity returns an entity without decrypting its PII.
func (l *Ledger) Entity(ctx context.Context, entityID id.EntityID) (*entity.Entity, error) {
	return l.store.GetEntity(ctx, entityID)
}

// EntityByName returns the entity with the given unique name.
func (l *Ledger) EntityByName(ctx context.Context, name string) (*entity.Entity, error) {
	return l.store.GetEntityByName(ctx, name)
}

// RevealEntity returns an entity with its PII decrypted using passphrase.
func (l *Ledger) RevealEntity(ctx context.Context, passphrase []byte, entityID id.EntityID) (*entity.Profile, error) {
	e, err := l.store.GetEntity(ctx, entityID)
	if err != nil {
		return nil, err
	}

	p := &entity.Profile{Entity: e}
	if p.Address, err = l.open(e.Address, passphrase); err != nil {
		return nil, err
	}
	if !e.Identification.IsZero() {
		ident, err := l.open(e.Identification, passphrase)
		if err != nil {
			return nil, err
		}
		p.Identification = &ident
	}
	return p, nil
}

// Entities lists entities, optionally filtered by a name pattern.
func (l *Ledger) Entities(ctx context.Context, opts entity.ListOpts) ([]*entity.Entity, error) {
	return l.store.ListEntities(ctx, opts)
}

// DeleteEntity removes an entity with its accounts, relationships and
// their charges. It fails with ErrInUse while payments reference its
// accounts or applications reference its charges.
func (l *Ledger) DeleteEntity(ctx context.Context, entityID id.EntityID) error {
	if err := l.store.DeleteEntity(ctx, entityID); err != nil {
		return l.rejected(ctx, err)
	}

	l.logger.Debug("entity deleted", "entity_id", entityID.String())
	l.plugins.EmitEntityDeleted(ctx, entityID)
	return nil
}

// ──────────────────────────────────────────────────
// Accounts
// ──────────────────────────────────────────────────

// AddAccount opens a settlement account for an entity in one denomination.
// The counterparty details are sealed with passphrase.
func (l *Ledger) AddAccount(ctx context.Context, passphrase []byte, entityID id.EntityID, denominationID id.DenominationID, counterparty types.Payload) (*entity.Account, error) {
	if counterparty.IsZero() {
		return nil, ValidationError{Field: "counterparty_info", Message: "is required"}
	}

	sealed, err := l.seal(counterparty, passphrase)
	if err != nil {
		return nil, err
	}

	a := &entity.Account{
		Record:           l.record(),
		ID:               id.NewAccountID(),
		EntityID:         entityID,
		DenominationID:   denominationID,
		CounterpartyInfo: sealed,
	}
	if err := l.store.CreateAccount(ctx, a); err != nil {
		return nil, l.rejected(ctx, err)
	}

	l.logger.Debug("account added",
		"account_id", a.ID.String(),
		"entity_id", entityID.String(),
		"denomination_id", denominationID.String(),
	)
	l.plugins.EmitAccountCreated(ctx, a)
	return a, nil
}

// Account returns an account without decrypting it.
func (l *Ledger) Account(ctx context.Context, accountID id.AccountID) (*entity.Account, error) {
	return l.store.GetAccount(ctx, accountID)
}

// RevealAccount returns an account with its counterparty details decrypted.
func (l *Ledger) RevealAccount(ctx context.Context, passphrase []byte, accountID id.AccountID) (*entity.AccountDetails, error) {
	a, err := l.store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	info, err := l.open(a.CounterpartyInfo, passphrase)
	if err != nil {
		return nil, err
	}
	return &entity.AccountDetails{Account: a, CounterpartyInfo: info}, nil
}

// Accounts lists the accounts of an entity.
func (l *Ledger) Accounts(ctx context.Context, entityID id.EntityID) ([]*entity.Account, error) {
	return l.store.ListAccounts(ctx, entityID)
}

// ──────────────────────────────────────────────────
// Encryption boundary
// ──────────────────────────────────────────────────

func (l *Ledger) seal(p types.Payload, passphrase []byte) (types.Sealed, error) {
	if l.boundary == nil {
		return nil, fmt.Errorf("%w: no encryption boundary: %v", ErrEncryption, l.boundaryErr)
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("%w: encode %s payload: %v", ErrEncryption, p.Kind, err)
	}
	ct, err := l.boundary.Encrypt(raw, passphrase)
	if err != nil {
		if !errors.Is(err, ErrEncryption) {
			err = fmt.Errorf("%w: %v", ErrEncryption, err)
		}
		return nil, err
	}
	return types.Sealed(ct), nil
}

func (l *Ledger) open(s types.Sealed, passphrase []byte) (types.Payload, error) {
	if l.boundary == nil {
		return types.Payload{}, fmt.Errorf("%w: no encryption boundary: %v", ErrDecryption, l.boundaryErr)
	}
	raw, err := l.boundary.Decrypt(s, passphrase)
	if err != nil {
		if !errors.Is(err, ErrDecryption) {
			err = fmt.Errorf("%w: %v", ErrDecryption, err)
		}
		return types.Payload{}, err
	}
	var p types.Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return types.Payload{}, fmt.Errorf("%w: sealed value is not a payload", ErrDecryption)
	}
	return p, nil
}

func (l *Ledger) record() types.Record {
	now := l.now()
	return types.Record{CreatedAt: now, UpdatedAt: now}
}
