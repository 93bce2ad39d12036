package receivables

import "github.com/xraph/receivables/id"

// ID is the primary identifier type for all receivables records.
type ID = id.ID

// Prefix identifies the record kind encoded in a TypeID.
type Prefix = id.Prefix
