package types

import (
	"database/sql/driver"
	"fmt"
)

// Sealed is ciphertext produced by the encryption boundary. The ledger
// persists and returns it as-is; only a Reveal call with the right
// passphrase turns it back into a Payload.
type Sealed []byte

// IsZero reports whether nothing was sealed.
func (s Sealed) IsZero() bool { return len(s) == 0 }

// Value implements driver.Valuer.
func (s Sealed) Value() (driver.Value, error) {
	if len(s) == 0 {
		return nil, nil //nolint:nilnil // absent optional blob
	}
	return []byte(s), nil
}

// Scan implements sql.Scanner. The source buffer is copied because drivers
// may reuse it.
func (s *Sealed) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = nil
	case []byte:
		*s = append(Sealed(nil), v...)
	case string:
		*s = Sealed(v)
	default:
		return fmt.Errorf("types: cannot scan %T into Sealed", src)
	}
	return nil
}
