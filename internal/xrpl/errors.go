package xrpl

import "errors"

// Per-diff failure kinds. All are recoverable at the Normalize boundary:
// the offending diff is skipped and reported, siblings are unaffected.
var (
	// ErrMalformedAmount marks a structurally invalid currency amount.
	ErrMalformedAmount = errors.New("malformed currency amount")

	// ErrMissingField marks a required field absent from a diff's field block.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidAmount marks a disclosed owner_funds value that does not
	// parse as a decimal.
	ErrInvalidAmount = errors.New("invalid owner funds")

	// ErrInvalidQuality marks a quality request with a zero taker-gets
	// denominator where the empty-quality policy does not apply.
	ErrInvalidQuality = errors.New("quality undefined for zero taker gets")
)
