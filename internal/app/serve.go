package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"time"

	"github.com/blackwell-systems/laborwatch/internal/api"
	"github.com/blackwell-systems/laborwatch/internal/watcher"
	"github.com/blackwell-systems/laborwatch/pkg/logger"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	serveAddr  string
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve the insights API under /api and Prometheus metrics at /metrics.
With --watch, the configured scopes are also regenerated on the watch
interval and new signals are persisted.

Examples:
  laborwatch serve
  laborwatch serve --addr :8080 --watch`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: server.addr from config)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "Also run the scheduled watcher")
	rootCmd.AddCommand(serveCmd)
}

const shutdownTimeout = 10 * time.Second

func runServe(cmd *cobra.Command, args []string) error {
	e, err := setup(nil)
	if err != nil {
		return err
	}
	defer e.Close()

	addr := serveAddr
	if addr == "" {
		addr = e.cfg.Server.Addr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), shutdownSignals...)
	defer stop()

	srv := &http.Server{
		Addr: addr,
		Handler: api.NewRouter(&api.Container{
			Store:          e.db,
			Feed:           e.feed,
			Generator:      e.gen,
			Metrics:        e.metrics,
			Log:            e.log.Named("api"),
			DefaultCompany: e.cfg.Company,
			FREDConfigured: e.cfg.FRED.APIKey != "",
		}),
		ReadTimeout:  e.cfg.Server.ReadTimeout,
		WriteTimeout: e.cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		e.log.Info(gctx, "api listening", logger.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		e.log.Info(shutdownCtx, "shutting down api")
		return srv.Shutdown(shutdownCtx)
	})
	if serveWatch {
		g.Go(func() error {
			w := newWatcher(e, e.cfg.Watch.Interval, func(a watcher.Alert) {
				e.metrics.AlertEmitted(a.Level)
				e.log.Info(gctx, a.Title, logger.String("level", a.Level), logger.String("message", a.Message))
			})
			if err := w.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	return g.Wait()
}
