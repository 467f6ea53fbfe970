package money_test

import (
	"testing"

	"github.com/canteenhub/api/internal/money"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"₹45.00", "₹45.00"},
		{"₹45.5", "₹45.50"},
		{"$12", "$12.00"},
		{"$.50", "$0.50"},
		{"₹.5", "₹0.50"},
		{"120", "120.00"},
		{"Rs. 1,200", "Rs.1200.00"},
		{" ₹ 99.90 ", "₹99.90"},
	}
	for _, tt := range tests {
		got, err := money.Normalize(tt.in)
		if err != nil {
			t.Errorf("Normalize(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeInvalid(t *testing.T) {
	for _, in := range []string{"", "free", "₹", "₹-5", "$1.2.3"} {
		if _, err := money.Normalize(in); err == nil {
			t.Errorf("Normalize(%q): expected error", in)
		}
	}
}

func TestParseSplitsSymbol(t *testing.T) {
	symbol, value, err := money.Parse("₹45.50")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if symbol != "₹" {
		t.Errorf("symbol: got %q, want ₹", symbol)
	}
	if value.StringFixed(2) != "45.50" {
		t.Errorf("value: got %s, want 45.50", value.StringFixed(2))
	}
}
