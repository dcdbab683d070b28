package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/specforge/internal/infrastructure/config"
	"github.com/felixgeelhaar/specforge/internal/infrastructure/server"
	"github.com/felixgeelhaar/specforge/internal/infrastructure/wiring"
)

var (
	configPath string
	listenAddr string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the pipeline API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if listenAddr != "" {
			cfg.Server.Addr = listenAddr
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		services := wiring.BuildAppServices(cfg, logger)

		handler := server.New(server.Config{
			Service:      services.Projects,
			Orchestrator: services.Orchestrator,
			Bus:          services.Bus,
			Logger:       logger,
		})

		srv := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("server listening", "addr", cfg.Server.Addr)
			errCh <- srv.ListenAndServe()
		}()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server failed: %w", err)
			}
		case <-ctx.Done():
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			services.Bus.CloseAll()
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVarP(&configPath, "config", "c", "specforge.yaml", "path to config file")
	serveCmd.Flags().StringVarP(&listenAddr, "addr", "a", "", "listen address override")
	RootCmd.AddCommand(serveCmd)
}
