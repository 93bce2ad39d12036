package entity

import (
	"context"

	"github.com/xraph/receivables/id"
)

type Store interface {
	Create(ctx context.Context, e *Entity) error
	Get(ctx context.Context, entityID id.EntityID) (*Entity, error)
	GetByName(ctx context.Context, name string) (*Entity, error)
	List(ctx context.Context, opts ListOpts) ([]*Entity, error)
	// Delete removes the entity together with its accounts and
	// relationships. It fails while payments reference its accounts.
	Delete(ctx context.Context, entityID id.EntityID) error

	CreateAccount(ctx context.Context, a *Account) error
	GetAccount(ctx context.Context, accountID id.AccountID) (*Account, error)
	ListAccounts(ctx context.Context, entityID id.EntityID) ([]*Account, error)
}

// ListOpts filters entity listings. NameLike is a SQL LIKE pattern matched
// case-insensitively; a pattern without wildcards matches as a substring.
type ListOpts struct {
	NameLike string
	Limit    int
	Offset   int
}
