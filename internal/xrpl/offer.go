package xrpl

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an offer derived from its diff.
type Status string

const (
	StatusCreated         Status = "created"
	StatusPartiallyFilled Status = "partially-filled"
	StatusFilled          Status = "filled"
	StatusCancelled       Status = "cancelled"
)

// NormalizedOffer is one order-book entry snapshot in uniform shape,
// regardless of which diff variant produced it. Funded fields are empty
// when the owner's balance is unknown or already covers the offer.
type NormalizedOffer struct {
	Status          Status         `json:"status"`
	Account         string         `json:"account"`
	BookNode        string         `json:"book_node"`
	OwnerNode       string         `json:"owner_node"`
	PrevTxnID       string         `json:"prev_txn_id"`
	PrevTxnLgrSeq   string         `json:"prev_txn_lgr_seq"`
	Date            string         `json:"date"`
	Expiration      string         `json:"expiration"`
	TxnIndex        string         `json:"txn_index"`
	Quality         string         `json:"quality"`
	TakerGets       CurrencyAmount `json:"taker_gets"`
	TakerPays       CurrencyAmount `json:"taker_pays"`
	TakerGetsFunded string         `json:"taker_gets_funded"`
	TakerPaysFunded string         `json:"taker_pays_funded"`
	OwnerFunds      string         `json:"owner_funds"`
}

// offerStatus derives the lifecycle state. A modified diff's post-change
// taker-gets decides between partially-filled and filled; anything that is
// neither created nor modified was removed from the book.
func offerStatus(kind DiffKind, takerGets CurrencyAmount) (Status, error) {
	switch kind {
	case DiffCreated:
		return StatusCreated, nil
	case DiffModified:
		v, err := decimal.NewFromString(takerGets.Value)
		if err != nil {
			return "", fmt.Errorf("%w: taker gets %q", ErrMalformedAmount, takerGets.Value)
		}
		if v.IsPositive() {
			return StatusPartiallyFilled, nil
		}
		return StatusFilled, nil
	default:
		return StatusCancelled, nil
	}
}

// offerQuality returns the pays/gets exchange ratio as a decimal string.
// A zero gets leg has no defined quality and yields the empty string; a
// fully consumed offer still normalizes, it just quotes no price.
func offerQuality(gets, pays CurrencyAmount) (string, error) {
	g, err := decimal.NewFromString(gets.Value)
	if err != nil {
		return "", fmt.Errorf("%w: taker gets %q", ErrMalformedAmount, gets.Value)
	}
	p, err := decimal.NewFromString(pays.Value)
	if err != nil {
		return "", fmt.Errorf("%w: taker pays %q", ErrMalformedAmount, pays.Value)
	}
	if g.IsZero() {
		return "", nil
	}
	return p.Div(g).String(), nil
}

// fundedAmounts caps the nominal legs by the owner's liquid balance. Both
// results are empty when the balance already covers the full nominal size.
func fundedAmounts(ownerFunds string, gets, pays CurrencyAmount) (getsFunded, paysFunded string, err error) {
	f, err := decimal.NewFromString(ownerFunds)
	if err != nil {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidAmount, ownerFunds)
	}
	g, err := decimal.NewFromString(gets.Value)
	if err != nil {
		return "", "", fmt.Errorf("%w: taker gets %q", ErrMalformedAmount, gets.Value)
	}
	if g.LessThan(f) {
		return "", "", nil
	}
	p, err := decimal.NewFromString(pays.Value)
	if err != nil {
		return "", "", fmt.Errorf("%w: taker pays %q", ErrMalformedAmount, pays.Value)
	}
	if g.IsZero() {
		// Capping requires the quoted quality, which a zero gets leg
		// cannot supply.
		return "", "", ErrInvalidQuality
	}
	return f.String(), f.Mul(p.Div(g)).String(), nil
}
