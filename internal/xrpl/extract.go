package xrpl

import "fmt"

// offerFields is the raw field set pulled from one Offer diff, after the
// per-field fallback rules have been applied.
type offerFields struct {
	account       string
	bookNode      string
	ownerNode     string
	prevTxnID     string
	prevTxnLgrSeq string
	expiration    string
	takerGets     CurrencyAmount
	takerPays     CurrencyAmount
}

// extractOffer reads the offer fields from a classified diff. txnHash and
// ledgerIndex supply the prior-transaction fallbacks for created diffs,
// where the creation is its own prior event.
func extractOffer(d NodeDiff, txnHash, ledgerIndex string) (offerFields, error) {
	if d.Fields == nil {
		return offerFields{}, fmt.Errorf("%w: %s has no field block", ErrMissingField, d.Kind)
	}

	var f offerFields

	account, ok := stringField(d.Fields, "Account")
	if !ok {
		return offerFields{}, fmt.Errorf("%w: Account", ErrMissingField)
	}
	f.account = account

	f.bookNode = stringFieldOr(d.Fields, "BookNode", "0")
	f.ownerNode = stringFieldOr(d.Fields, "OwnerNode", "0")
	f.expiration = stringFieldOr(d.Fields, "Expiration", "")

	// Linkage lives beside the field blocks; modified and deleted diffs
	// must carry it, a created diff links to the creating transaction.
	f.prevTxnID = d.PrevTxnID
	if f.prevTxnID == "" {
		f.prevTxnID, _ = stringField(d.Fields, "PreviousTxnID")
	}
	if f.prevTxnID == "" {
		if d.Kind != DiffCreated {
			return offerFields{}, fmt.Errorf("%w: PreviousTxnID on %s", ErrMissingField, d.Kind)
		}
		f.prevTxnID = txnHash
	}

	f.prevTxnLgrSeq = d.PrevTxnLgrSeq
	if f.prevTxnLgrSeq == "" {
		f.prevTxnLgrSeq, _ = stringField(d.Fields, "PreviousTxnLgrSeq")
	}
	if f.prevTxnLgrSeq == "" {
		if d.Kind != DiffCreated {
			return offerFields{}, fmt.Errorf("%w: PreviousTxnLgrSeq on %s", ErrMissingField, d.Kind)
		}
		f.prevTxnLgrSeq = ledgerIndex
	}

	gets, ok := d.Fields["TakerGets"]
	if !ok {
		return offerFields{}, fmt.Errorf("%w: TakerGets", ErrMissingField)
	}
	amt, err := DecodeAmount(gets)
	if err != nil {
		return offerFields{}, fmt.Errorf("TakerGets: %w", err)
	}
	f.takerGets = amt

	pays, ok := d.Fields["TakerPays"]
	if !ok {
		return offerFields{}, fmt.Errorf("%w: TakerPays", ErrMissingField)
	}
	amt, err = DecodeAmount(pays)
	if err != nil {
		return offerFields{}, fmt.Errorf("TakerPays: %w", err)
	}
	f.takerPays = amt

	return f, nil
}

// stringField reads a field as its string form, tolerating numeric wire
// encodings (Expiration and sequence fields arrive as JSON numbers).
func stringField(m map[string]any, key string) (string, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", false
	}
	s, err := numericString(v)
	if err != nil {
		return "", false
	}
	return s, true
}

func stringFieldOr(m map[string]any, key, fallback string) string {
	if s, ok := stringField(m, key); ok {
		return s
	}
	return fallback
}
