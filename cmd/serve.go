package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"portfolio/devserver/router"
	"portfolio/devserver/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the site and the analytics endpoint",
	Long: `Serves files under root_dir and answers /api/analytics.php.

Events are stored in analytics_file. When sinks are configured, every stored
event is also mirrored to ClickHouse, Postgres and/or SQLite.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if servePort != 0 {
		cfg.Port = servePort
	}
	gin.SetMode(cfg.GinMode)

	analyticsStore, err := openAnalyticsStore()
	if err != nil {
		return err
	}

	mirror, err := store.OpenSinks(cmd.Context(), cfg.Sinks, logger)
	if err != nil {
		return fmt.Errorf("opening event mirrors: %w", err)
	}
	defer func() {
		if err := mirror.Close(); err != nil {
			logger.Error("closing event mirrors", zap.Error(err))
		}
	}()

	r := router.New(router.Options{
		Config: cfg,
		Store:  analyticsStore,
		Mirror: mirror,
		Logger: logger,
	})

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: r,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("dev server listening",
			zap.String("url", fmt.Sprintf("http://localhost:%d/", cfg.Port)),
			zap.String("dashboard", fmt.Sprintf("http://localhost:%d/analytics.html", cfg.Port)),
			zap.String("root", cfg.RootDir),
			zap.Int("mirrors", mirror.Len()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("dev server failed to start: %w", err)
		}
		return nil
	case <-quit:
	}
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exiting")
	return nil
}
