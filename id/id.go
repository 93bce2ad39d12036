// Package id defines TypeID-based identity types for every receivables record.
//
// A single ID struct carries a prefix naming the record kind. IDs are
// K-sortable (UUIDv7-based), globally unique and URL-safe in the format
// "prefix_suffix". Their string form sorts in creation order, which the
// application engine relies on for tie-breaking.
package id

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"go.jetify.com/typeid/v2"
)

// Prefix identifies the record kind encoded in a TypeID.
type Prefix string

// Prefix constants for all record kinds.
const (
	PrefixEntity       Prefix = "ent"  // Payer or payee
	PrefixAccount      Prefix = "acct" // Settlement channel of an entity
	PrefixDenomination Prefix = "den"  // Unit of account
	PrefixRate         Prefix = "rate" // Conversion rate
	PrefixRelationship Prefix = "rel"  // Payor/payee grouping
	PrefixFeeSchedule  Prefix = "fee"  // Compounding interest parameters
	PrefixCharge       Prefix = "chg"  // Obligation
	PrefixPayment      Prefix = "pay"  // Transfer or write-off
	PrefixApplication  Prefix = "papp" // Portion of a payment applied to a charge
)

// ID is the primary identifier type for all records.
//
//nolint:recvcheck // Value receivers for read-only methods, pointer receivers for UnmarshalText/Scan.
type ID struct {
	inner typeid.TypeID
	valid bool
}

// Nil is the zero-value ID.
var Nil ID

// New generates a new globally unique ID with the given prefix.
// It panics if prefix is not a valid TypeID prefix (programming error).
func New(prefix Prefix) ID {
	tid, err := typeid.Generate(string(prefix))
	if err != nil {
		panic(fmt.Sprintf("id: invalid prefix %q: %v", prefix, err))
	}

	return ID{inner: tid, valid: true}
}

// Parse parses a TypeID string (e.g., "chg_01h2xcejqtf2nbrexx3vqjhp41").
func Parse(s string) (ID, error) {
	if s == "" {
		return Nil, fmt.Errorf("id: parse %q: empty string", s)
	}

	tid, err := typeid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("id: parse %q: %w", s, err)
	}

	return ID{inner: tid, valid: true}, nil
}

// ParseWithPrefix parses a TypeID string and validates that its prefix
// matches the expected value.
func ParseWithPrefix(s string, expected Prefix) (ID, error) {
	parsed, err := Parse(s)
	if err != nil {
		return Nil, err
	}

	if parsed.Prefix() != expected {
		return Nil, fmt.Errorf("id: expected prefix %q, got %q", expected, parsed.Prefix())
	}

	return parsed, nil
}

// MustParse is like Parse but panics on error. Use for hardcoded ID values.
func MustParse(s string) ID {
	parsed, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("id: must parse %q: %v", s, err))
	}

	return parsed
}

// ──────────────────────────────────────────────────
// Kind aliases
// ──────────────────────────────────────────────────

// EntityID identifies an entity (prefix: "ent").
type EntityID = ID

// AccountID identifies an account (prefix: "acct").
type AccountID = ID

// DenominationID identifies a denomination (prefix: "den").
type DenominationID = ID

// RateID identifies a conversion rate (prefix: "rate").
type RateID = ID

// RelationshipID identifies a relationship (prefix: "rel").
type RelationshipID = ID

// FeeScheduleID identifies a fee schedule (prefix: "fee").
type FeeScheduleID = ID

// ChargeID identifies a charge (prefix: "chg").
type ChargeID = ID

// PaymentID identifies a payment (prefix: "pay").
type PaymentID = ID

// ApplicationID identifies a payment application (prefix: "papp").
type ApplicationID = ID

// ──────────────────────────────────────────────────
// Convenience constructors
// ──────────────────────────────────────────────────

func NewEntityID() ID       { return New(PrefixEntity) }
func NewAccountID() ID      { return New(PrefixAccount) }
func NewDenominationID() ID { return New(PrefixDenomination) }
func NewRateID() ID         { return New(PrefixRate) }
func NewRelationshipID() ID { return New(PrefixRelationship) }
func NewFeeScheduleID() ID  { return New(PrefixFeeSchedule) }
func NewChargeID() ID       { return New(PrefixCharge) }
func NewPaymentID() ID      { return New(PrefixPayment) }
func NewApplicationID() ID  { return New(PrefixApplication) }

// ──────────────────────────────────────────────────
// Convenience parsers
// ──────────────────────────────────────────────────

// ParseEntityID parses a string and validates the "ent" prefix.
func ParseEntityID(s string) (ID, error) { return ParseWithPrefix(s, PrefixEntity) }

// ParseAccountID parses a string and validates the "acct" prefix.
func ParseAccountID(s string) (ID, error) { return ParseWithPrefix(s, PrefixAccount) }

// ParseDenominationID parses a string and validates the "den" prefix.
func ParseDenominationID(s string) (ID, error) { return ParseWithPrefix(s, PrefixDenomination) }

// ParseRelationshipID parses a string and validates the "rel" prefix.
func ParseRelationshipID(s string) (ID, error) { return ParseWithPrefix(s, PrefixRelationship) }

// ParseChargeID parses a string and validates the "chg" prefix.
func ParseChargeID(s string) (ID, error) { return ParseWithPrefix(s, PrefixCharge) }

// ParsePaymentID parses a string and validates the "pay" prefix.
func ParsePaymentID(s string) (ID, error) { return ParseWithPrefix(s, PrefixPayment) }

// ──────────────────────────────────────────────────
// ID methods
// ──────────────────────────────────────────────────

// String returns the full TypeID string representation (prefix_suffix).
// Returns an empty string for the Nil ID.
func (i ID) String() string {
	if !i.valid {
		return ""
	}

	return i.inner.String()
}

// Prefix returns the prefix component of this ID.
func (i ID) Prefix() Prefix {
	if !i.valid {
		return ""
	}

	return Prefix(i.inner.Prefix())
}

// IsNil reports whether this ID is the zero value.
func (i ID) IsNil() bool {
	return !i.valid
}

// Compare orders IDs by their string form. Nil sorts first.
func (i ID) Compare(other ID) int {
	return strings.Compare(i.String(), other.String())
}

// MarshalText implements encoding.TextMarshaler.
func (i ID) MarshalText() ([]byte, error) {
	if !i.valid {
		return []byte{}, nil
	}

	return []byte(i.inner.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *ID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*i = Nil

		return nil
	}

	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}

	*i = parsed

	return nil
}

// Value implements driver.Valuer. The Nil ID is stored as NULL so optional
// foreign keys such as a charge's fee schedule stay empty.
func (i ID) Value() (driver.Value, error) {
	if !i.valid {
		return nil, nil //nolint:nilnil // nil is the canonical NULL for driver.Valuer
	}

	return i.inner.String(), nil
}

// Scan implements sql.Scanner.
func (i *ID) Scan(src any) error {
	if src == nil {
		*i = Nil

		return nil
	}

	switch v := src.(type) {
	case string:
		if v == "" {
			*i = Nil

			return nil
		}

		return i.UnmarshalText([]byte(v))
	case []byte:
		if len(v) == 0 {
			*i = Nil

			return nil
		}

		return i.UnmarshalText(v)
	default:
		return fmt.Errorf("id: cannot scan %T into ID", src)
	}
}
