package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gcbaptista/go-word-finder/api"
	"github.com/gcbaptista/go-word-finder/config"
	"github.com/gcbaptista/go-word-finder/internal/engine"
	"github.com/gcbaptista/go-word-finder/internal/logging"
)

const shutdownTimeout = 10 * time.Second

// NewServeCommand creates and returns the serve subcommand
func NewServeCommand(global *globalOptions) *cobra.Command {
	var (
		host         string
		port         string
		allowedRoots []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve finds over HTTP",
		Long: `Start the HTTP API. Finds run synchronously on POST /finds or as
background jobs on POST /finds/async. Prometheus metrics are served on
/metrics. The server shuts down gracefully on SIGINT or SIGTERM.

Only roots below server.allowed_roots (or --allow-root) may be searched; when
none are configured the working directory is used. The server listens on
127.0.0.1 unless server.host (or --host) says otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, logger, err := global.setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if host != "" {
				settings.Server.Host = host
			}
			if port != "" {
				settings.Server.Port = port
			}
			settings.Server.AllowedRoots = append(settings.Server.AllowedRoots, allowedRoots...)

			addr := net.JoinHostPort(settings.Server.Host, settings.Server.Port)
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", addr, err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, ln, settings, logger, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "interface to listen on (overrides config)")
	cmd.Flags().StringVar(&port, "port", "", "port to listen on (overrides config)")
	cmd.Flags().StringSliceVar(&allowedRoots, "allow-root", nil, "directory finds may search below (added to config)")

	return cmd
}

// serve runs the API on ln until ctx is done, then shuts down gracefully.
func serve(ctx context.Context, ln net.Listener, settings config.Settings, logger *zap.Logger, out io.Writer) error {
	logger = logging.OrNop(logger)
	if len(settings.Server.AllowedRoots) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to determine working directory: %w", err)
		}
		settings.Server.AllowedRoots = []string{wd}
	}
	eng := engine.NewEngine(settings, logger)
	defer eng.Stop()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, eng, logger)

	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	_, _ = color.New(color.FgCyan, color.Bold).Fprintf(out, "wordfinder %s listening on %s\n", Version, ln.Addr())
	logger.Info("server started",
		zap.String("addr", ln.Addr().String()),
		zap.Strings("allowed_roots", settings.Server.AllowedRoots))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
