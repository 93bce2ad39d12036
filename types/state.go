package types

import (
	"database/sql/driver"
	"fmt"
)

// State is the explicit lifecycle of charges, payments and applications.
// Records move from Active to Inactive and are never physically removed.
type State string

const (
	StateActive   State = "active"
	StateInactive State = "inactive"
)

// IsActive reports whether the record still participates in balance math.
func (s State) IsActive() bool { return s == StateActive || s == "" }

// Valid reports whether s is a known state.
func (s State) Valid() bool { return s == StateActive || s == StateInactive }

// Value implements driver.Valuer.
func (s State) Value() (driver.Value, error) {
	if s == "" {
		return string(StateActive), nil
	}
	return string(s), nil
}

// Scan implements sql.Scanner.
func (s *State) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = StateActive
	case string:
		*s = State(v)
	case []byte:
		*s = State(v)
	default:
		return fmt.Errorf("types: cannot scan %T into State", src)
	}
	if !s.Valid() {
		return fmt.Errorf("types: unknown state %q", *s)
	}
	return nil
}
