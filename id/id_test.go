package id_test

import (
	"strings"
	"testing"

	"github.com/xraph/receivables/id"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		newFn  func() id.ID
		prefix string
	}{
		{"EntityID", id.NewEntityID, "ent_"},
		{"AccountID", id.NewAccountID, "acct_"},
		{"DenominationID", id.NewDenominationID, "den_"},
		{"RateID", id.NewRateID, "rate_"},
		{"RelationshipID", id.NewRelationshipID, "rel_"},
		{"FeeScheduleID", id.NewFeeScheduleID, "fee_"},
		{"ChargeID", id.NewChargeID, "chg_"},
		{"PaymentID", id.NewPaymentID, "pay_"},
		{"ApplicationID", id.NewApplicationID, "papp_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.newFn().String()
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("expected prefix %q, got %q", tt.prefix, got)
			}
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		newFn   func() id.ID
		parseFn func(string) (id.ID, error)
	}{
		{"EntityID", id.NewEntityID, id.ParseEntityID},
		{"AccountID", id.NewAccountID, id.ParseAccountID},
		{"DenominationID", id.NewDenominationID, id.ParseDenominationID},
		{"RelationshipID", id.NewRelationshipID, id.ParseRelationshipID},
		{"ChargeID", id.NewChargeID, id.ParseChargeID},
		{"PaymentID", id.NewPaymentID, id.ParsePaymentID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := tt.newFn()
			parsed, err := tt.parseFn(original.String())
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			if parsed.String() != original.String() {
				t.Errorf("round-trip mismatch: %q != %q", parsed.String(), original.String())
			}
		})
	}
}

func TestCrossTypeRejection(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		parseFn func(string) (id.ID, error)
	}{
		{"ParseChargeID rejects pay_", id.NewPaymentID().String(), id.ParseChargeID},
		{"ParsePaymentID rejects chg_", id.NewChargeID().String(), id.ParsePaymentID},
		{"ParseEntityID rejects acct_", id.NewAccountID().String(), id.ParseEntityID},
		{"ParseAccountID rejects ent_", id.NewEntityID().String(), id.ParseAccountID},
		{"ParseRelationshipID rejects den_", id.NewDenominationID().String(), id.ParseRelationshipID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.parseFn(tt.input); err == nil {
				t.Errorf("expected error for cross-type parse of %q, got nil", tt.input)
			}
		})
	}
}

func TestParseEmpty(t *testing.T) {
	if _, err := id.Parse(""); err == nil {
		t.Error("expected error for empty string")
	}
}

func TestNilID(t *testing.T) {
	var i id.ID
	if !i.IsNil() {
		t.Error("zero-value ID should be nil")
	}
	if i.String() != "" {
		t.Errorf("expected empty string, got %q", i.String())
	}
	if i.Prefix() != "" {
		t.Errorf("expected empty prefix, got %q", i.Prefix())
	}
}

func TestCompare(t *testing.T) {
	a := id.MustParse("chg_01h2xcejqtf2nbrexx3vqjhp41")
	b := id.MustParse("chg_01h2xcejqtf2nbrexx3vqjhp42")

	if a.Compare(b) >= 0 {
		t.Errorf("expected %s < %s", a, b)
	}
	if b.Compare(a) <= 0 {
		t.Errorf("expected %s > %s", b, a)
	}
	if a.Compare(a) != 0 {
		t.Error("expected ID to compare equal to itself")
	}
	if id.Nil.Compare(a) >= 0 {
		t.Error("expected Nil to sort first")
	}
}

func TestMarshalUnmarshalText(t *testing.T) {
	original := id.NewChargeID()
	data, err := original.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText failed: %v", err)
	}

	var restored id.ID
	if err := restored.UnmarshalText(data); err != nil {
		t.Fatalf("UnmarshalText failed: %v", err)
	}
	if restored.String() != original.String() {
		t.Errorf("mismatch: %q != %q", restored.String(), original.String())
	}

	var nilID id.ID
	data, err = nilID.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText(nil) failed: %v", err)
	}
	var restored2 id.ID
	if err := restored2.UnmarshalText(data); err != nil {
		t.Fatalf("UnmarshalText(nil) failed: %v", err)
	}
	if !restored2.IsNil() {
		t.Error("expected nil after round-trip of nil ID")
	}
}

func TestValueScan(t *testing.T) {
	original := id.NewFeeScheduleID()
	val, err := original.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}

	var scanned id.ID
	if err := scanned.Scan(val); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if scanned.String() != original.String() {
		t.Errorf("mismatch: %q != %q", scanned.String(), original.String())
	}

	// Optional foreign keys rely on Nil mapping to NULL.
	var nilID id.ID
	val, err = nilID.Value()
	if err != nil {
		t.Fatalf("Value(nil) failed: %v", err)
	}
	if val != nil {
		t.Errorf("expected nil value for nil ID, got %v", val)
	}

	var scanned2 id.ID
	if err := scanned2.Scan([]byte{}); err != nil {
		t.Fatalf("Scan(empty) failed: %v", err)
	}
	if !scanned2.IsNil() {
		t.Error("expected nil after scan of empty bytes")
	}

	if err := scanned2.Scan(42); err == nil {
		t.Error("expected error scanning an int")
	}
}

func TestUniqueness(t *testing.T) {
	a := id.NewPaymentID()
	b := id.NewPaymentID()
	if a.String() == b.String() {
		t.Errorf("two consecutive NewPaymentID() calls returned the same ID: %q", a.String())
	}
}
