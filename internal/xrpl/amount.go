package xrpl

import (
	"encoding/json"
	"fmt"
)

// NativeCurrency is the currency code used for amounts expressed as bare
// drop strings on the wire.
const NativeCurrency = "XRP"

// CurrencyAmount is one leg of an offer in uniform form. Native amounts
// carry an empty issuer and the drop string as value.
type CurrencyAmount struct {
	Currency string `json:"currency"`
	Issuer   string `json:"issuer,omitempty"`
	Value    string `json:"value"`
}

// DecodeAmount converts a raw amount value into a CurrencyAmount. The wire
// encodes native amounts as a bare string and issued amounts as an object
// with currency, issuer, and value.
func DecodeAmount(raw any) (CurrencyAmount, error) {
	switch v := raw.(type) {
	case string:
		return CurrencyAmount{Currency: NativeCurrency, Value: v}, nil
	case map[string]any:
		amt := CurrencyAmount{Currency: NativeCurrency}
		if c, ok := v["currency"]; ok {
			s, ok := c.(string)
			if !ok {
				return CurrencyAmount{}, fmt.Errorf("%w: currency is %T, want string", ErrMalformedAmount, c)
			}
			amt.Currency = s
		}
		if i, ok := v["issuer"]; ok {
			s, ok := i.(string)
			if !ok {
				return CurrencyAmount{}, fmt.Errorf("%w: issuer is %T, want string", ErrMalformedAmount, i)
			}
			amt.Issuer = s
		}
		val, ok := v["value"]
		if !ok {
			return CurrencyAmount{}, fmt.Errorf("%w: object amount has no value", ErrMalformedAmount)
		}
		s, err := numericString(val)
		if err != nil {
			return CurrencyAmount{}, fmt.Errorf("%w: value: %v", ErrMalformedAmount, err)
		}
		amt.Value = s
		return amt, nil
	default:
		return CurrencyAmount{}, fmt.Errorf("%w: unexpected amount type %T", ErrMalformedAmount, raw)
	}
}

// numericString renders a scalar JSON value as its decimal string form.
func numericString(v any) (string, error) {
	switch n := v.(type) {
	case string:
		return n, nil
	case json.Number:
		return n.String(), nil
	case float64:
		// encoding/json decodes numbers as float64 unless UseNumber is set.
		return trimFloat(n), nil
	default:
		return "", fmt.Errorf("cannot read %T as number", v)
	}
}

func trimFloat(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}
