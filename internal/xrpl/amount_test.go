package xrpl

import (
	"errors"
	"testing"
)

func TestDecodeAmountNativeString(t *testing.T) {
	amt, err := DecodeAmount("123456789")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if amt.Currency != NativeCurrency {
		t.Fatalf("currency = %q, want %q", amt.Currency, NativeCurrency)
	}
	if amt.Issuer != "" {
		t.Fatalf("issuer = %q, want empty", amt.Issuer)
	}
	if amt.Value != "123456789" {
		t.Fatalf("value = %q", amt.Value)
	}
}

func TestDecodeAmountObject(t *testing.T) {
	amt, err := DecodeAmount(map[string]any{
		"currency": "USD",
		"issuer":   "rIssuerXXXXXXXXXXXXXXXXXXXXXXXXXXX",
		"value":    "50.25",
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if amt.Currency != "USD" || amt.Issuer != "rIssuerXXXXXXXXXXXXXXXXXXXXXXXXXXX" || amt.Value != "50.25" {
		t.Fatalf("unexpected amount: %+v", amt)
	}
}

func TestDecodeAmountObjectDefaults(t *testing.T) {
	amt, err := DecodeAmount(map[string]any{"value": "7"})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if amt.Currency != NativeCurrency || amt.Issuer != "" {
		t.Fatalf("defaults not applied: %+v", amt)
	}
}

func TestDecodeAmountMissingValue(t *testing.T) {
	_, err := DecodeAmount(map[string]any{"currency": "EUR"})
	if !errors.Is(err, ErrMalformedAmount) {
		t.Fatalf("err = %v, want ErrMalformedAmount", err)
	}
}

func TestDecodeAmountBadTypes(t *testing.T) {
	cases := []any{
		nil,
		42.0,
		[]any{"100"},
		map[string]any{"currency": 12, "value": "1"},
		map[string]any{"value": true},
	}
	for _, raw := range cases {
		if _, err := DecodeAmount(raw); !errors.Is(err, ErrMalformedAmount) {
			t.Fatalf("decode %#v: err = %v, want ErrMalformedAmount", raw, err)
		}
	}
}

func TestDecodeAmountNumericValue(t *testing.T) {
	// Some feeds emit numeric values; they round-trip as decimal strings.
	amt, err := DecodeAmount(map[string]any{"currency": "USD", "value": 50.0})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if amt.Value != "50" {
		t.Fatalf("value = %q, want 50", amt.Value)
	}
}
