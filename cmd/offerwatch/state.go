package main

import (
	"fmt"

	"github.com/devlane/offerwatch/internal/config"
	"github.com/devlane/offerwatch/internal/storage"
	"github.com/spf13/cobra"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show feed cursors and stored offer counts",
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

		cursors, err := store.ListCursors(cmd.Context())
		if err != nil {
			return err
		}
		if len(cursors) == 0 {
			fmt.Fprintln(out, "no cursors recorded")
		}
		for _, c := range cursors {
			fmt.Fprintf(out, "feed %s: ledger %d (updated %s)\n", c.FeedID, c.LedgerIndex, c.UpdatedAt.UTC().Format("2006-01-02 15:04:05"))
		}

		n, err := store.OfferCount(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "offers stored: %d\n", n)
		return nil
	},
}
