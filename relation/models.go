// Package relation groups charges between a payor and a payee.
package relation

import (
	"github.com/xraph/receivables/id"
	"github.com/xraph/receivables/types"
)

// Relationship is a uniquely described grouping of charges. The description
// is the double-submit guard.
type Relationship struct {
	types.Record
	ID          id.RelationshipID `json:"id"`
	Description string            `json:"description"`
	PayeeID     id.EntityID       `json:"payee_id"`
	PayorID     id.EntityID       `json:"payor_id"`
}

// Involves reports whether the entity is the payee or the payor.
func (r *Relationship) Involves(entityID id.EntityID) bool {
	return r.PayeeID == entityID || r.PayorID == entityID
}
