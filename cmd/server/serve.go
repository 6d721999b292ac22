package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arnavshah/tabling-scheduler/pkg/config"
	"github.com/arnavshah/tabling-scheduler/pkg/database"
	"github.com/arnavshah/tabling-scheduler/pkg/handlers"
	"github.com/arnavshah/tabling-scheduler/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tabling-scheduler",
	Short: "Weekly tabling schedule API",
	RunE:  serve,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default)",
	RunE:  serve,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// loadConfig reads .env, then the layered configuration
func loadConfig() (*config.Config, error) {
	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger.SetLevel(cfg.LogLevel)
	return cfg, nil
}

func serve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	gin.SetMode(cfg.GinMode)
	log := logger.New("server")

	db, err := database.InitDB(cfg)
	if err != nil {
		return err
	}
	h, err := handlers.New(db, cfg, log, nil)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	if err := h.Auth.EnsureAdminExists(db, cfg.AdminUsername, cfg.AdminPassword, log); err != nil {
		log.Warnf("ensure admin: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(h),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Infof("server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("could not run server: %w", err)
	case <-ctx.Done():
	}

	log.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
