package domain

import (
	"encoding/json"
	"testing"
)

func TestFormatUSD(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0", "0.00"},
		{"315", "315.00"},
		{"1234.5", "1,234.50"},
		{"130000", "130,000.00"},
		{"2500000.75", "2,500,000.75"},
		{"-98765.4", "-98,765.40"},
	}
	for _, tc := range cases {
		if got := FormatUSD(MustMoney(tc.in)); got != tc.want {
			t.Errorf("FormatUSD(%s) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMoneyMarshalsAsNumber(t *testing.T) {
	raw, err := json.Marshal(MustMoney("1234.56"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != "1234.56" {
		t.Errorf("marshaled = %s, want bare number 1234.56", raw)
	}
}

func TestMoneyFromString(t *testing.T) {
	m, err := MoneyFromString("42.10")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !m.Equal(MoneyFromFloat(42.1)) {
		t.Errorf("42.10 != 42.1 (%s)", m)
	}
	if _, err := MoneyFromString("not-money"); err == nil {
		t.Error("expected parse error")
	}
}
