package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/devlane/offerwatch/internal/config"
	"github.com/devlane/offerwatch/internal/engine"
	"github.com/devlane/offerwatch/internal/health"
	"github.com/devlane/offerwatch/internal/logging"
	"github.com/devlane/offerwatch/internal/metrics"
	"github.com/devlane/offerwatch/internal/sink"
	"github.com/devlane/offerwatch/internal/source/xrplws"
	"github.com/devlane/offerwatch/internal/storage"
	"github.com/spf13/cobra"
)

var (
	flagDryRun  bool
	flagHealth  string
	flagMetrics string
)

func init() {
	runCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Normalize and log but do not persist or send to sinks")
	runCmd.Flags().StringVar(&flagHealth, "health", "", "Health check HTTP address (e.g., :8080)")
	runCmd.Flags().StringVar(&flagMetrics, "metrics", "", "Metrics HTTP address (e.g., :9090)")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Subscribe to the configured feeds and normalize offers",
	RunE: func(cmd *cobra.Command, args []string) error {
		logLevel := os.Getenv("LOG_LEVEL")
		if logLevel == "" {
			logLevel = "info"
		}
		log := logging.NewWithLevel(logLevel)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		store, err := storage.Open(cfg.Global.DBPath)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		defer store.Close()

		senders := map[string]sink.Sender{}
		for _, s := range cfg.Sinks {
			switch s.Type {
			case "webhook":
				sender, err := sink.NewWebhookSender(s.URL, s.Method, s.Template)
				if err != nil {
					return err
				}
				senders[s.ID] = sender
			case "log":
				senders[s.ID] = sink.NewLogSender(log)
			default:
				continue
			}
		}

		var mtr *metrics.Metrics
		if flagMetrics != "" {
			mtr = metrics.Init()
			log.Info("metrics enabled", "addr", flagMetrics)
		}

		clients := map[string]*xrplws.Client{}
		for _, f := range cfg.Feeds {
			cli := xrplws.New(f.ID, f.URL, f.Streams, log)
			cli.OnReconnect(mtr.Reconnects)
			clients[f.ID] = cli
		}

		if flagHealth != "" {
			feedChecker := health.NewFeedChecker(clients)
			healthSrv := health.Serve(flagHealth, health.Checker{
				DBPing:   store.Ping,
				FeedPing: feedChecker.Ping,
			})
			log.Info("health check enabled", "addr", flagHealth)
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = health.Shutdown(shutdownCtx, healthSrv)
			}()
		}

		if flagMetrics != "" {
			go func() {
				mux := http.NewServeMux()
				mux.Handle("/metrics", metrics.Handler())
				srv := &http.Server{Addr: flagMetrics, Handler: mux}
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("metrics server error", "error", err)
				}
			}()
		}

		runner, err := engine.NewRunner(store, cfg, senders, log, mtr, flagDryRun)
		if err != nil {
			return err
		}

		var wg sync.WaitGroup
		for id, cli := range clients {
			wg.Add(1)
			go func(feedID string, cli *xrplws.Client) {
				defer wg.Done()
				_ = cli.Run(ctx, func(ctx context.Context, msg map[string]any) error {
					return runner.HandleMessage(ctx, feedID, msg)
				})
			}(id, cli)
		}

		log.Info("offerwatch running", "feeds", len(clients), "dry_run", flagDryRun)
		wg.Wait()
		log.Info("offerwatch stopped")
		return nil
	},
}
