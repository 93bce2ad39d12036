package relation

import (
	"context"

	"github.com/xraph/receivables/id"
)

type Store interface {
	Create(ctx context.Context, r *Relationship) error
	Get(ctx context.Context, relationID id.RelationshipID) (*Relationship, error)
	GetByDescription(ctx context.Context, description string) (*Relationship, error)
	List(ctx context.Context, opts ListOpts) ([]*Relationship, error)
}

// ListOpts filters relationship listings. DescriptionLike follows the same
// matching rules as entity.ListOpts.NameLike; EntityID keeps relationships
// where the entity is payee or payor.
type ListOpts struct {
	DescriptionLike string
	EntityID        id.EntityID
	Limit           int
	Offset          int
}
