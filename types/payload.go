package types

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// Payload is a tagged structured value the ledger stores without
// interpreting. Kind names the shape of Data (for example "sku" or
// "postal-address") so callers can decode it without guessing.
type Payload struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewPayload encodes v as the Data of a payload tagged with kind.
func NewPayload(kind string, v any) (Payload, error) {
	if kind == "" {
		return Payload{}, errors.New("types: payload kind is required")
	}
	if v == nil {
		return Payload{Kind: kind}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return Payload{}, fmt.Errorf("types: encode %s payload: %w", kind, err)
	}
	return Payload{Kind: kind, Data: data}, nil
}

// MustPayload is like NewPayload but panics on error.
func MustPayload(kind string, v any) Payload {
	p, err := NewPayload(kind, v)
	if err != nil {
		panic(err)
	}
	return p
}

// IsZero reports whether the payload carries neither a kind nor data.
func (p Payload) IsZero() bool {
	return p.Kind == "" && len(p.Data) == 0
}

// Decode unmarshals Data into v.
func (p Payload) Decode(v any) error {
	if len(p.Data) == 0 {
		return fmt.Errorf("types: %s payload is empty", p.Kind)
	}
	if err := json.Unmarshal(p.Data, v); err != nil {
		return fmt.Errorf("types: decode %s payload: %w", p.Kind, err)
	}
	return nil
}

// Equal compares kind and the compacted JSON of data.
func (p Payload) Equal(other Payload) bool {
	if p.Kind != other.Kind {
		return false
	}
	var a, b bytes.Buffer
	if len(p.Data) > 0 {
		if err := json.Compact(&a, p.Data); err != nil {
			return false
		}
	}
	if len(other.Data) > 0 {
		if err := json.Compact(&b, other.Data); err != nil {
			return false
		}
	}
	return bytes.Equal(a.Bytes(), b.Bytes())
}

// Value implements driver.Valuer by storing the payload as JSON text.
func (p Payload) Value() (driver.Value, error) {
	if p.IsZero() {
		return nil, nil //nolint:nilnil // empty payload is stored as NULL
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (p *Payload) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*p = Payload{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("types: cannot scan %T into Payload", src)
	}
	if len(raw) == 0 {
		*p = Payload{}
		return nil
	}
	var out Payload
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("types: scan payload: %w", err)
	}
	*p = out
	return nil
}
