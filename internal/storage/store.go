package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/devlane/offerwatch/internal/xrpl"
)

// Store wraps SQLite-backed persistence for feed cursors and normalized
// offers.
type Store struct {
	db *sql.DB
}

// Open initializes a SQLite database and runs minimal schema setup.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := configure(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("store not initialized")
	}
	return s.db.PingContext(ctx)
}

func configure(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	pragmas := []string{
		"PRAGMA foreign_keys = ON;",
		"PRAGMA journal_mode = WAL;",
		"PRAGMA busy_timeout = 5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("set pragma %q: %w", p, err)
		}
	}
	return nil
}

func migrate(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	schema := `
CREATE TABLE IF NOT EXISTS cursors (
  feed_id      TEXT PRIMARY KEY,
  ledger_index INTEGER NOT NULL,
  updated_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS offers (
  tx_hash            TEXT NOT NULL,
  seq                INTEGER NOT NULL,
  ledger_index       INTEGER NOT NULL,
  status             TEXT NOT NULL,
  account            TEXT NOT NULL,
  book_node          TEXT,
  owner_node         TEXT,
  prev_txn_id        TEXT,
  prev_txn_lgr_seq   TEXT,
  date               TEXT,
  expiration         TEXT,
  txn_index          TEXT,
  quality            TEXT,
  taker_gets_currency TEXT,
  taker_gets_issuer   TEXT,
  taker_gets_value    TEXT,
  taker_pays_currency TEXT,
  taker_pays_issuer   TEXT,
  taker_pays_value    TEXT,
  taker_gets_funded   TEXT,
  taker_pays_funded   TEXT,
  owner_funds         TEXT,
  created_at          TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY(tx_hash, seq)
);

CREATE INDEX IF NOT EXISTS idx_offers_account ON offers(account);
CREATE INDEX IF NOT EXISTS idx_offers_ledger ON offers(ledger_index);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// UpsertCursor records the latest seen ledger for a feed.
func (s *Store) UpsertCursor(ctx context.Context, feedID string, ledgerIndex int64) error {
	if feedID == "" {
		return errors.New("feedID required")
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO cursors (feed_id, ledger_index, updated_at)
VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(feed_id) DO UPDATE SET
  ledger_index=excluded.ledger_index,
  updated_at=CURRENT_TIMESTAMP;
`, feedID, ledgerIndex)
	if err != nil {
		return fmt.Errorf("upsert cursor: %w", err)
	}
	return nil
}

// GetCursor retrieves the cursor for a feed.
func (s *Store) GetCursor(ctx context.Context, feedID string) (ledgerIndex int64, ok bool, err error) {
	row := s.db.QueryRowContext(ctx, `
SELECT ledger_index FROM cursors WHERE feed_id = ?;
`, feedID)
	switch err = row.Scan(&ledgerIndex); err {
	case nil:
		return ledgerIndex, true, nil
	case sql.ErrNoRows:
		return 0, false, nil
	default:
		return 0, false, fmt.Errorf("get cursor: %w", err)
	}
}

// Cursor is one feed's progress row.
type Cursor struct {
	FeedID      string
	LedgerIndex int64
	UpdatedAt   time.Time
}

// ListCursors returns all feed cursors.
func (s *Store) ListCursors(ctx context.Context) ([]Cursor, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT feed_id, ledger_index, updated_at FROM cursors ORDER BY feed_id;
`)
	if err != nil {
		return nil, fmt.Errorf("list cursors: %w", err)
	}
	defer rows.Close()

	var out []Cursor
	for rows.Next() {
		var c Cursor
		if err := rows.Scan(&c.FeedID, &c.LedgerIndex, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan cursor: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// OfferRow is one persisted normalized offer plus its event identity.
type OfferRow struct {
	TxHash      string
	Seq         int
	LedgerIndex int64
	Offer       xrpl.NormalizedOffer
}

// InsertOffers stores one event's offers inside a transaction. The primary
// key on (tx_hash, seq) makes replayed events after a reconnect idempotent.
func (s *Store) InsertOffers(ctx context.Context, txHash string, ledgerIndex int64, offers []xrpl.NormalizedOffer) error {
	if len(offers) == 0 {
		return nil
	}
	if txHash == "" {
		return errors.New("txHash required")
	}
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		for i, o := range offers {
			_, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO offers (
  tx_hash, seq, ledger_index, status, account,
  book_node, owner_node, prev_txn_id, prev_txn_lgr_seq,
  date, expiration, txn_index, quality,
  taker_gets_currency, taker_gets_issuer, taker_gets_value,
  taker_pays_currency, taker_pays_issuer, taker_pays_value,
  taker_gets_funded, taker_pays_funded, owner_funds
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`,
				txHash, i, ledgerIndex, string(o.Status), o.Account,
				o.BookNode, o.OwnerNode, o.PrevTxnID, o.PrevTxnLgrSeq,
				o.Date, o.Expiration, o.TxnIndex, o.Quality,
				o.TakerGets.Currency, o.TakerGets.Issuer, o.TakerGets.Value,
				o.TakerPays.Currency, o.TakerPays.Issuer, o.TakerPays.Value,
				o.TakerGetsFunded, o.TakerPaysFunded, o.OwnerFunds,
			)
			if err != nil {
				return fmt.Errorf("insert offer %s/%d: %w", txHash, i, err)
			}
		}
		return nil
	})
}

// ListOffers returns up to limit offers, newest ledger first. limit <= 0
// means no limit.
func (s *Store) ListOffers(ctx context.Context, limit int) ([]OfferRow, error) {
	q := `
SELECT tx_hash, seq, ledger_index, status, account,
       book_node, owner_node, prev_txn_id, prev_txn_lgr_seq,
       date, expiration, txn_index, quality,
       taker_gets_currency, taker_gets_issuer, taker_gets_value,
       taker_pays_currency, taker_pays_issuer, taker_pays_value,
       taker_gets_funded, taker_pays_funded, owner_funds
FROM offers ORDER BY ledger_index DESC, tx_hash, seq`
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q+";", args...)
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	defer rows.Close()

	var out []OfferRow
	for rows.Next() {
		var r OfferRow
		var status string
		if err := rows.Scan(
			&r.TxHash, &r.Seq, &r.LedgerIndex, &status, &r.Offer.Account,
			&r.Offer.BookNode, &r.Offer.OwnerNode, &r.Offer.PrevTxnID, &r.Offer.PrevTxnLgrSeq,
			&r.Offer.Date, &r.Offer.Expiration, &r.Offer.TxnIndex, &r.Offer.Quality,
			&r.Offer.TakerGets.Currency, &r.Offer.TakerGets.Issuer, &r.Offer.TakerGets.Value,
			&r.Offer.TakerPays.Currency, &r.Offer.TakerPays.Issuer, &r.Offer.TakerPays.Value,
			&r.Offer.TakerGetsFunded, &r.Offer.TakerPaysFunded, &r.Offer.OwnerFunds,
		); err != nil {
			return nil, fmt.Errorf("scan offer: %w", err)
		}
		r.Offer.Status = xrpl.Status(status)
		out = append(out, r)
	}
	return out, rows.Err()
}

// OfferCount returns the number of persisted offers.
func (s *Store) OfferCount(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM offers;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count offers: %w", err)
	}
	return n, nil
}

// WithTx executes a callback inside a transaction for callers needing atomicity.
func (s *Store) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
