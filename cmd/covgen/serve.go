package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jihwankim/covcrv/internal/obslog"
	"github.com/jihwankim/covcrv/pkg/coverage"
	"github.com/jihwankim/covcrv/pkg/coverage/metrics"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve live cover_percentage gauges for an external Prometheus to scrape",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveMetrics()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (defaults to the configured metrics address)")
}

func serveMetrics() error {
	addr := serveAddr
	if addr == "" {
		addr = cfg.Metrics.Addr
	}
	refresh := cfg.Metrics.Refresh
	if refresh <= 0 {
		refresh = 5 * time.Second
	}

	exporter := metrics.NewExporter(coverage.DB())
	exporter.Refresh()

	mux := http.NewServeMux()
	mux.Handle("/metrics", exporter.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	ticker := time.NewTicker(refresh)
	defer ticker.Stop()
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				exporter.Refresh()
			case <-done:
				return
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		obslog.Info(fmt.Sprintf("serving coverage metrics on %s/metrics", addr))
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		close(done)
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	case <-sigCh:
		close(done)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		obslog.Info("shutting down metrics server")
		return srv.Shutdown(ctx)
	}
}
