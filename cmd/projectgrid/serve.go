package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dconn.dev/projectgrid/internal/handlers"
)

var serveAddr string

// serveCmd runs the web frontend
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web frontend",
	Long: `Run the web frontend in front of the projects API.

Examples:
  # Serve on the configured address (default :8080)
  projectgrid serve

  # Point at another API
  projectgrid serve --api http://projects.internal:5000/api --addr :9000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	if serveAddr != "" {
		a.cfg.Server.Addr = serveAddr
	}

	router, err := handlers.SetupRoutes(a.cfg, a.service, a.logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          zap.NewStdLog(a.logger.Underlying().Named("http")),
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info(ctx, "server starting",
			zap.String("addr", a.cfg.Server.Addr),
			zap.String("api", a.cfg.API.BaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info(context.Background(), "shutting down",
		zap.Duration("shutdown_timeout", a.cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
