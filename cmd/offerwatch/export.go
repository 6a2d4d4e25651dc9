package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/devlane/offerwatch/internal/config"
	"github.com/devlane/offerwatch/internal/storage"
	"github.com/spf13/cobra"
)

var (
	flagExportFormat string
	flagExportLimit  int
)

func init() {
	exportCmd.Flags().StringVar(&flagExportFormat, "format", "json", "Output format: json or csv")
	exportCmd.Flags().IntVar(&flagExportLimit, "limit", 0, "Max rows to export (0 = all)")
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored offers as JSON lines or CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		store, err := storage.Open(cfg.Global.DBPath)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		defer store.Close()

		rows, err := store.ListOffers(cmd.Context(), flagExportLimit)
		if err != nil {
			return err
		}

		switch flagExportFormat {
		case "json":
			enc := json.NewEncoder(out)
			for _, r := range rows {
				record := map[string]any{
					"tx_hash":      r.TxHash,
					"ledger_index": r.LedgerIndex,
					"offer":        r.Offer,
				}
				if err := enc.Encode(record); err != nil {
					return err
				}
			}
		case "csv":
			w := csv.NewWriter(out)
			header := []string{
				"tx_hash", "ledger_index", "status", "account",
				"quality", "taker_gets", "taker_pays",
				"taker_gets_funded", "taker_pays_funded", "owner_funds",
			}
			if err := w.Write(header); err != nil {
				return err
			}
			for _, r := range rows {
				rec := []string{
					r.TxHash,
					strconv.FormatInt(r.LedgerIndex, 10),
					string(r.Offer.Status),
					r.Offer.Account,
					r.Offer.Quality,
					r.Offer.TakerGets.Value + " " + r.Offer.TakerGets.Currency,
					r.Offer.TakerPays.Value + " " + r.Offer.TakerPays.Currency,
					r.Offer.TakerGetsFunded,
					r.Offer.TakerPaysFunded,
					r.Offer.OwnerFunds,
				}
				if err := w.Write(rec); err != nil {
					return err
				}
			}
			w.Flush()
			return w.Error()
		default:
			return fmt.Errorf("unsupported format: %s", flagExportFormat)
		}
		return nil
	},
}
