// Package xrpl normalizes XRPL transaction metadata into uniform offer
// records. The engine is a pure per-event transform: it holds no state
// between calls and never performs I/O.
package xrpl

import "strconv"

// SkippedDiff reports one offer diff that could not be normalized. Index is
// the diff's position in AffectedNodes.
type SkippedDiff struct {
	Index int
	Err   error
}

// Result is the outcome of normalizing one stream message. Offers appear in
// the diff list's original order; skipped diffs never abort their siblings.
type Result struct {
	TxHash      string
	LedgerIndex int64
	Offers      []NormalizedOffer
	Skipped     []SkippedDiff
}

// Normalize extracts one NormalizedOffer per order-book diff in a
// transaction stream message. Messages without a meta block (ledger close
// heartbeats, subscribe acks) produce an empty result and no error.
func Normalize(msg map[string]any) Result {
	var res Result

	meta, ok := msg["meta"].(map[string]any)
	if !ok {
		return res
	}
	txn, _ := msg["transaction"].(map[string]any)

	txnAccount, _ := txn["Account"].(string)
	hash, _ := txn["hash"].(string)
	date := stringFieldOr(txn, "date", "")
	ownerFunds, haveOwnerFunds := stringField(txn, "owner_funds")
	ledgerIndex := stringFieldOr(msg, "ledger_index", "")
	txnIndex := stringFieldOr(meta, "TransactionIndex", "")

	res.TxHash = hash
	res.LedgerIndex, _ = strconv.ParseInt(ledgerIndex, 10, 64)

	nodes, _ := meta["AffectedNodes"].([]any)
	for i, raw := range nodes {
		diff, ok := classifyNode(raw)
		if !ok || !diff.IsOffer() {
			continue
		}
		offer, err := normalizeDiff(diff, txnAccount, hash, date, ownerFunds, haveOwnerFunds, ledgerIndex, txnIndex)
		if err != nil {
			res.Skipped = append(res.Skipped, SkippedDiff{Index: i, Err: err})
			continue
		}
		res.Offers = append(res.Offers, offer)
	}
	return res
}

func normalizeDiff(diff NodeDiff, txnAccount, hash, date, ownerFunds string, haveOwnerFunds bool, ledgerIndex, txnIndex string) (NormalizedOffer, error) {
	f, err := extractOffer(diff, hash, ledgerIndex)
	if err != nil {
		return NormalizedOffer{}, err
	}

	status, err := offerStatus(diff.Kind, f.takerGets)
	if err != nil {
		return NormalizedOffer{}, err
	}
	quality, err := offerQuality(f.takerGets, f.takerPays)
	if err != nil {
		return NormalizedOffer{}, err
	}

	offer := NormalizedOffer{
		Status:        status,
		Account:       f.account,
		BookNode:      f.bookNode,
		OwnerNode:     f.ownerNode,
		PrevTxnID:     f.prevTxnID,
		PrevTxnLgrSeq: f.prevTxnLgrSeq,
		Date:          date,
		Expiration:    f.expiration,
		TxnIndex:      txnIndex,
		Quality:       quality,
		TakerGets:     f.takerGets,
		TakerPays:     f.takerPays,
	}

	// Funded amounts apply only when the transaction discloses the acting
	// account's balance and that account owns this offer.
	if haveOwnerFunds && txnAccount == f.account {
		offer.OwnerFunds = ownerFunds
		getsFunded, paysFunded, err := fundedAmounts(ownerFunds, f.takerGets, f.takerPays)
		if err != nil {
			return NormalizedOffer{}, err
		}
		offer.TakerGetsFunded = getsFunded
		offer.TakerPaysFunded = paysFunded
	}
	return offer, nil
}
