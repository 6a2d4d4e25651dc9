package main

import (
	"context"
	"fmt"
	"time"

	"github.com/devlane/offerwatch/internal/config"
	"github.com/devlane/offerwatch/internal/source/xrplws"
	"github.com/spf13/cobra"
)

const defaultPingTimeout = 8 * time.Second

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate config and ping feed endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("config invalid: %w", err)
		}
		fmt.Fprintf(out, "config OK (version %d)\n", cfg.Version)

		failures := 0
		for _, f := range cfg.Feeds {
			ctx, cancel := context.WithTimeout(cmd.Context(), defaultPingTimeout)
			build, err := xrplws.ServerInfo(ctx, f.URL)
			cancel()
			if err != nil {
				failures++
				fmt.Fprintf(out, "- feed %s: ERROR %v\n", f.ID, err)
				continue
			}
			if build == "" {
				build = "unknown"
			}
			fmt.Fprintf(out, "- feed %s: rippled %s OK\n", f.ID, build)
		}

		if failures > 0 {
			return fmt.Errorf("validate: %d feed(s) failed connectivity", failures)
		}

		fmt.Fprintln(out, "validate: success")
		return nil
	},
}
