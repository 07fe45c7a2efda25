// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/kavirubc
// Created: 2026-10-16
// Last Modified: 2026-10-17

package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/similigh/rulebot/internal/server"
	"github.com/similigh/rulebot/internal/steps"
)

var (
	serveAddr      string
	serveCacheSize int
	serveInsecure  bool
)

const shutdownTimeout = 10 * time.Second

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Receive GitHub webhooks and process them as they arrive",
	Long: `Start an HTTP server that accepts GitHub webhook deliveries on /webhook,
verifies their signature with $RULEBOT_WEBHOOK_SECRET and runs the matching
preset. Prometheus metrics are exposed on /metrics.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: $RULEBOT_ADDR or :8080)")
	serveCmd.Flags().IntVar(&serveCacheSize, "delivery-cache", server.DefaultDeliveryCacheSize, "Number of delivery IDs remembered for de-duplication")
	serveCmd.Flags().BoolVar(&serveInsecure, "insecure", false, "Accept unsigned deliveries when $RULEBOT_WEBHOOK_SECRET is not set")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if env.WebhookSecret == "" {
		if !serveInsecure {
			return server.ErrNoSecret
		}
		logger.Warn("RULEBOT_WEBHOOK_SECRET is not set, webhook signatures are not verified")
	}

	client, err := newHost(ctx)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	d := steps.NewDispatcher(buildDependencies(cfg, client, compileRules(cfg), false))
	srv, err := server.New(d, cfg, server.Options{
		Secret:            []byte(env.WebhookSecret),
		DeliveryCacheSize: serveCacheSize,
		Logger:            logger,
		AllowUnsigned:     serveInsecure,
	})
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = env.Addr
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
