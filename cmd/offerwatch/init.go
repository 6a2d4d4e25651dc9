package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const sampleConfig = `version: 1

global:
  db_path: offerwatch.db

feeds:
  - id: xrpl_main
    url: wss://xrplcluster.com/
    streams: ["transactions"]
    sinks: ["stdout"]

sinks:
  - id: stdout
    type: log
  # - id: book_feed
  #   type: webhook
  #   url: ${BOOK_FEED_URL}
  #   method: POST
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a sample config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(cfgPath); err == nil {
			return fmt.Errorf("%s already exists", cfgPath)
		}
		if err := os.WriteFile(cfgPath, []byte(sampleConfig), 0o644); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", cfgPath)
		return nil
	},
}
