package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dshevko/talentsift/internal/api"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	defaultAddr     = ":8080"
	shutdownTimeout = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the talentsift HTTP API",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("addr", "a", "", "listen address (default :8080)")
}

func serve(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := newApplication(ctx)
	if err != nil {
		log.Fatalf("starting the %s server: %v", app, err)
	}
	defer application.Close()

	logger := application.logger

	addr := cmd.Flag("addr").Value.String()
	if addr == "" && application.config.Server != nil {
		addr = application.config.Server.Addr
	}
	if addr == "" {
		addr = defaultAddr
	}

	handler := api.NewRouter(api.New(
		application.pipeline,
		application.ingester,
		application.db,
		application.files,
		logger,
	))

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting the talentsift api", zap.String("addr", addr), zap.String("version", version))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown completed with error", zap.Error(err))
		} else {
			logger.Info("graceful shutdown completed successfully")
		}
	}
}
