package types

import (
	"encoding/json"
	"testing"
)

func TestMoneyArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		op       func() Money
		expected Money
	}{
		{"Add", func() Money { return New(100, "usd").Add(New(200, "USD")) }, New(300, "USD")},
		{"Subtract", func() Money { return New(500, "USD").Subtract(New(200, "USD")) }, New(300, "USD")},
		{"Min", func() Money { return New(500, "USD").Min(New(200, "USD")) }, New(200, "USD")},
		{"Symbol ignored", func() Money { return New(1, "USD").WithSymbol("$") }, New(1, "USD")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.op()
			if !result.Equal(tt.expected) {
				t.Errorf("Got %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMoneyDenominationMismatch(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for denomination mismatch")
		}
	}()

	_ = New(100, "USD").Add(New(100, "EUR"))
}

func TestMoneyPredicates(t *testing.T) {
	tests := []struct {
		name       string
		money      Money
		isZero     bool
		isPositive bool
		isNegative bool
	}{
		{"Zero", Zero("USD"), true, false, false},
		{"Positive", New(100, "USD"), false, true, false},
		{"Negative", New(-100, "USD"), false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.money.IsZero(); got != tt.isZero {
				t.Errorf("IsZero: got %v, want %v", got, tt.isZero)
			}
			if got := tt.money.IsPositive(); got != tt.isPositive {
				t.Errorf("IsPositive: got %v, want %v", got, tt.isPositive)
			}
			if got := tt.money.IsNegative(); got != tt.isNegative {
				t.Errorf("IsNegative: got %v, want %v", got, tt.isNegative)
			}
		})
	}
}

func TestMoneyFormat(t *testing.T) {
	tests := []struct {
		money   Money
		major   string
		display string
	}{
		{New(4900, "USD").WithSymbol("$"), "49.00", "$49.00"},
		{New(1, "USD"), "0.01", "USD 0.01"},
		{New(-4900, "EUR").WithSymbol("€"), "-49.00", "€-49.00"},
		{New(12345, "JPY"), "12345", "JPY 12345"},
		{New(150000000, "BTC"), "1.50000000", "BTC 1.50000000"},
	}

	for _, tt := range tests {
		t.Run(tt.display, func(t *testing.T) {
			if got := tt.money.FormatMajor(); got != tt.major {
				t.Errorf("FormatMajor: got %s, want %s", got, tt.major)
			}
			if got := tt.money.String(); got != tt.display {
				t.Errorf("String: got %s, want %s", got, tt.display)
			}
		})
	}
}

func TestMoneyJSON(t *testing.T) {
	data, err := json.Marshal(New(4900, "USD").WithSymbol("$"))
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	expected := `{"amount":4900,"code":"USD","display":"$49.00"}`
	if string(data) != expected {
		t.Errorf("JSON: got %s, want %s", string(data), expected)
	}
}

func TestSum(t *testing.T) {
	tests := []struct {
		name     string
		values   []Money
		expected Money
	}{
		{"Empty", nil, Zero("USD")},
		{"Multiple", []Money{New(100, "USD"), New(200, "USD"), New(300, "USD")}, New(600, "USD")},
		{"With negatives", []Money{New(100, "USD"), New(-50, "USD")}, New(50, "USD")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := Sum("USD", tt.values...); !result.Equal(tt.expected) {
				t.Errorf("Sum: got %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	type sku struct {
		Code string `json:"code"`
		Qty  int    `json:"qty"`
	}

	p := MustPayload("sku", sku{Code: "A-1", Qty: 3})

	val, err := p.Value()
	if err != nil {
		t.Fatalf("Value error: %v", err)
	}

	var scanned Payload
	if err := scanned.Scan(val); err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if !scanned.Equal(p) {
		t.Errorf("round-trip mismatch: %+v != %+v", scanned, p)
	}

	var out sku
	if err := scanned.Decode(&out); err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if out.Code != "A-1" || out.Qty != 3 {
		t.Errorf("decoded %+v", out)
	}
}

func TestPayloadRequiresKind(t *testing.T) {
	if _, err := NewPayload("", map[string]string{"a": "b"}); err == nil {
		t.Error("expected error for empty kind")
	}
}

func TestEmptyPayloadIsNull(t *testing.T) {
	val, err := Payload{}.Value()
	if err != nil {
		t.Fatalf("Value error: %v", err)
	}
	if val != nil {
		t.Errorf("expected NULL for empty payload, got %v", val)
	}
}

func TestStateScan(t *testing.T) {
	tests := []struct {
		src     any
		want    State
		wantErr bool
	}{
		{"active", StateActive, false},
		{[]byte("inactive"), StateInactive, false},
		{nil, StateActive, false},
		{"deleted", "", true},
	}

	for _, tt := range tests {
		var s State
		err := s.Scan(tt.src)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Scan(%v): expected error", tt.src)
			}
			continue
		}
		if err != nil {
			t.Errorf("Scan(%v): %v", tt.src, err)
		}
		if s != tt.want {
			t.Errorf("Scan(%v): got %q, want %q", tt.src, s, tt.want)
		}
	}
}

func BenchmarkMoneyString(b *testing.B) {
	m := New(4900, "USD").WithSymbol("$")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m.String()
	}
}
