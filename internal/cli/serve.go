package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mejaggi/nexus-answers-56/internal/api"
	"github.com/mejaggi/nexus-answers-56/internal/auth"
	"github.com/mejaggi/nexus-answers-56/internal/config"
	"github.com/mejaggi/nexus-answers-56/internal/core"
	"github.com/mejaggi/nexus-answers-56/internal/provider"
	"github.com/mejaggi/nexus-answers-56/internal/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the chat edge server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(config.Load())
		},
	}
}

func runServe(cfg *config.Config) error {
	if cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}

	dbStore, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbStore.Close()

	upstream, err := provider.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize upstream provider: %w", err)
	}
	if closer, ok := upstream.(interface{ Close() }); ok {
		defer closer.Close()
	}

	chatService := core.NewService(upstream, cfg.UpstreamModel)
	tokens := auth.NewManager(cfg.JWTSecret)

	apiHandler := api.NewAPIHandler(chatService, dbStore, tokens)
	router := api.NewRouter(apiHandler, prometheus.NewRegistry())

	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // LLM calls can take time
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithFields(log.Fields{
			"addr":     serverAddr,
			"provider": cfg.UpstreamProvider,
		}).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatalf("Could not listen on %s", serverAddr)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server exiting gracefully")
	return nil
}
