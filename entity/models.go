// Package entity defines the parties of the ledger and their accounts.
package entity

import (
	"github.com/xraph/receivables/id"
	"github.com/xraph/receivables/types"
)

// Entity is a payer or payee identified by a unique name. Address and
// Identification hold ciphertext produced by the encryption boundary.
type Entity struct {
	types.Record
	ID             id.EntityID  `json:"id"`
	Name           string       `json:"name"`
	Address        types.Sealed `json:"address"`
	Identification types.Sealed `json:"identification,omitempty"`
}

// Account is an entity's settlement channel in one denomination.
type Account struct {
	types.Record
	ID               id.AccountID      `json:"id"`
	EntityID         id.EntityID       `json:"entity_id"`
	DenominationID   id.DenominationID `json:"denomination_id"`
	CounterpartyInfo types.Sealed      `json:"counterparty_info"`
}

// Profile is the decrypted view of an entity.
type Profile struct {
	Entity         *Entity        `json:"entity"`
	Address        types.Payload  `json:"address"`
	Identification *types.Payload `json:"identification,omitempty"`
}

// AccountDetails is the decrypted view of an account.
type AccountDetails struct {
	Account          *Account      `json:"account"`
	CounterpartyInfo types.Payload `json:"counterparty_info"`
}
