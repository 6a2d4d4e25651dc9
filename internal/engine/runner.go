package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/devlane/offerwatch/internal/config"
	"github.com/devlane/offerwatch/internal/metrics"
	"github.com/devlane/offerwatch/internal/sink"
	"github.com/devlane/offerwatch/internal/storage"
	"github.com/devlane/offerwatch/internal/xrpl"
)

// Runner wires the normalization engine to storage, sinks, and metrics.
// One Runner serves all feeds; per-feed ordering is preserved because each
// feed delivers its messages sequentially.
type Runner struct {
	store  *storage.Store
	routes map[string][]sink.Sender
	log    *slog.Logger
	mtr    *metrics.Metrics
	dryRun bool
}

// NewRunner builds a runner, resolving each feed's sink references.
func NewRunner(store *storage.Store, cfg *config.Config, senders map[string]sink.Sender, log *slog.Logger, mtr *metrics.Metrics, dryRun bool) (*Runner, error) {
	routes := make(map[string][]sink.Sender, len(cfg.Feeds))
	for _, f := range cfg.Feeds {
		var out []sink.Sender
		for _, id := range f.Sinks {
			s, ok := senders[id]
			if !ok {
				return nil, fmt.Errorf("feed %s: no sender for sink %s", f.ID, id)
			}
			out = append(out, s)
		}
		routes[f.ID] = out
	}
	return &Runner{
		store:  store,
		routes: routes,
		log:    log,
		mtr:    mtr,
		dryRun: dryRun,
	}, nil
}

// HandleMessage processes one parsed stream message from a feed: normalize,
// persist, fan out. Malformed diffs are reported and skipped; they never
// abort the message or the stream.
func (r *Runner) HandleMessage(ctx context.Context, feedID string, msg map[string]any) error {
	r.mtr.MessagesProcessed()

	// Ledger-close heartbeats carry the sequence but no metadata; they
	// still advance the feed cursor.
	if li, ok := ledgerIndexOf(msg); ok {
		if err := r.store.UpsertCursor(ctx, feedID, li); err != nil {
			r.mtr.Errors()
			return fmt.Errorf("advance cursor: %w", err)
		}
	}

	res := xrpl.Normalize(msg)
	for _, sk := range res.Skipped {
		r.mtr.DiffsSkipped(1)
		r.log.Warn("offer diff skipped",
			"feed", feedID,
			"tx_hash", res.TxHash,
			"diff_index", sk.Index,
			"error", sk.Err,
		)
	}
	if len(res.Offers) == 0 {
		return nil
	}
	r.mtr.OffersNormalized(len(res.Offers))

	if r.dryRun {
		r.log.Info("offers normalized (dry-run)",
			"feed", feedID, "tx_hash", res.TxHash, "count", len(res.Offers))
		return nil
	}

	if err := r.store.InsertOffers(ctx, res.TxHash, res.LedgerIndex, res.Offers); err != nil {
		r.mtr.Errors()
		return fmt.Errorf("persist offers: %w", err)
	}

	for i, offer := range res.Offers {
		payload := sink.OfferPayload{
			FeedID:      feedID,
			TxHash:      res.TxHash,
			LedgerIndex: res.LedgerIndex,
			Offer:       offer,
		}
		for _, s := range r.routes[feedID] {
			if err := s.Send(ctx, payload); err != nil {
				r.mtr.SinkErrors()
				r.log.Error("sink delivery failed",
					"feed", feedID, "tx_hash", res.TxHash, "offer", i, "error", err)
			}
		}
	}
	return nil
}

func ledgerIndexOf(msg map[string]any) (int64, bool) {
	v, ok := msg["ledger_index"]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	if !ok {
		return 0, false
	}
	return int64(f), true
}
