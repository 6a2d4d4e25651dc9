package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/devlane/offerwatch/internal/xrpl"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleOffer(status xrpl.Status) xrpl.NormalizedOffer {
	return xrpl.NormalizedOffer{
		Status:        status,
		Account:       "rOwner",
		BookNode:      "0",
		OwnerNode:     "0",
		PrevTxnID:     "PREV",
		PrevTxnLgrSeq: "80999999",
		Date:          "745000000",
		TxnIndex:      "3",
		Quality:       "0.5",
		TakerGets:     xrpl.CurrencyAmount{Currency: "XRP", Value: "100"},
		TakerPays:     xrpl.CurrencyAmount{Currency: "USD", Issuer: "rI", Value: "50"},
	}
}

func TestCursorUpsertAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.UpsertCursor(ctx, "feed1", 81000000); err != nil {
		t.Fatalf("upsert cursor: %v", err)
	}
	li, ok, err := store.GetCursor(ctx, "feed1")
	if err != nil || !ok {
		t.Fatalf("get cursor failed err=%v ok=%v", err, ok)
	}
	if li != 81000000 {
		t.Fatalf("unexpected cursor: %d", li)
	}

	if err := store.UpsertCursor(ctx, "feed1", 81000001); err != nil {
		t.Fatalf("upsert cursor update: %v", err)
	}
	li, ok, err = store.GetCursor(ctx, "feed1")
	if err != nil || !ok || li != 81000001 {
		t.Fatalf("cursor not updated: %d err=%v ok=%v", li, err, ok)
	}

	cursors, err := store.ListCursors(ctx)
	if err != nil {
		t.Fatalf("list cursors: %v", err)
	}
	if len(cursors) != 1 || cursors[0].FeedID != "feed1" {
		t.Fatalf("unexpected cursors: %+v", cursors)
	}
}

func TestGetCursorMissing(t *testing.T) {
	store := newTestStore(t)
	_, ok, err := store.GetCursor(context.Background(), "nope")
	if err != nil {
		t.Fatalf("get cursor: %v", err)
	}
	if ok {
		t.Fatalf("expected no cursor")
	}
}

func TestInsertOffersRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	offers := []xrpl.NormalizedOffer{
		sampleOffer(xrpl.StatusCreated),
		sampleOffer(xrpl.StatusCancelled),
	}
	if err := store.InsertOffers(ctx, "HASH1", 81000000, offers); err != nil {
		t.Fatalf("insert offers: %v", err)
	}

	rows, err := store.ListOffers(ctx, 0)
	if err != nil {
		t.Fatalf("list offers: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	got := rows[0]
	if got.TxHash != "HASH1" || got.LedgerIndex != 81000000 {
		t.Fatalf("event identity lost: %+v", got)
	}
	if got.Offer.TakerPays.Issuer != "rI" || got.Offer.Quality != "0.5" {
		t.Fatalf("offer fields lost: %+v", got.Offer)
	}
}

func TestInsertOffersIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	offers := []xrpl.NormalizedOffer{sampleOffer(xrpl.StatusCreated)}
	for i := 0; i < 2; i++ {
		// A replay after reconnect re-inserts the same event.
		if err := store.InsertOffers(ctx, "HASH1", 81000000, offers); err != nil {
			t.Fatalf("insert offers (pass %d): %v", i, err)
		}
	}
	n, err := store.OfferCount(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("count = %d, want 1", n)
	}
}

func TestListOffersLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i, hash := range []string{"H1", "H2", "H3"} {
		if err := store.InsertOffers(ctx, hash, int64(81000000+i), []xrpl.NormalizedOffer{sampleOffer(xrpl.StatusCreated)}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	rows, err := store.ListOffers(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	// Newest ledger first.
	if rows[0].TxHash != "H3" {
		t.Fatalf("order wrong: %+v", rows)
	}
}
