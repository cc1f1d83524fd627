package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"phrasebook/internal/config"
	"phrasebook/internal/handler"
	transport "phrasebook/internal/http"
	"phrasebook/internal/logger"
	"phrasebook/internal/scheduler"
)

const shutdownTimeout = 10 * time.Second

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API",
		Long: `Load the collection and serve it over HTTP under /api.

When a remote store is configured the collection is refreshed from it every
refresh_interval (0 disables the periodic refresh).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rootOpts.cfg
			if addr != "" {
				cfg.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

func runServe(ctx context.Context, cfg config.Config) error {
	rt := openRuntime(ctx, cfg)
	defer rt.Close()

	rt.service.Load(ctx)

	router := transport.NewRouter(handler.NewKeywordHandler(rt.service))

	if cfg.RefreshInterval > 0 && rt.service.RemoteEnabled() {
		sched := scheduler.New(rt.service, cfg.RefreshInterval)
		sched.Start()
		defer sched.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "module", "cli", "action", "serve", "resource", "http", "result", "ok", "addr", cfg.Addr)
		if err := router.Start(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return WrapExitError(ExitFailure, "start server", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", "module", "cli", "action", "serve", "resource", "http", "result", "ok")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := router.Shutdown(shutdownCtx); err != nil {
		return WrapExitError(ExitFailure, "shutdown server", err)
	}
	return nil
}
