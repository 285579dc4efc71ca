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

	"github.com/tbourn/go-topup-portal/internal/app"
	"github.com/tbourn/go-topup-portal/internal/observability"
)

// shutdownTimeout bounds graceful shutdown. It matches the backend timeout
// so a top-up in progress can still finish.
const shutdownTimeout = 30 * time.Second

func newServeCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the portal HTTP API",
		Long: `Run the portal HTTP API on $PORT.

The server stops gracefully on SIGINT or SIGTERM: new connections are refused,
requests in flight get up to 30s to finish and event listeners are closed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, o)
		},
	}
}

func serve(ctx context.Context, o *options) error {
	shutdownTracing, err := observability.SetupTracing(ctx, o.cfg.OTEL, Version)
	if err != nil {
		return err
	}

	a, err := newApp(o.cfg, app.WithLogger(o.log))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			o.log.Warn().Err(cerr).Msg("close local store")
		}
	}()

	srv := a.Server()
	// Hijacked websocket connections are not tracked by Shutdown.
	srv.RegisterOnShutdown(a.Bus.Close)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	o.log.Info().
		Str("addr", srv.Addr).
		Str("backend", o.cfg.Backend.APIBase).
		Str("version", Version).
		Msg("portal listening")

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
	}

	o.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		o.log.Error().Err(err).Msg("http shutdown")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		o.log.Error().Err(err).Msg("tracing shutdown")
	}
	return nil
}
