// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sanbara234/fiadoapp/internal/config"
	"github.com/sanbara234/fiadoapp/internal/handler"
	"github.com/sanbara234/fiadoapp/internal/repository"
	"github.com/sanbara234/fiadoapp/internal/service"
	"github.com/sanbara234/fiadoapp/pkg/database"
	"github.com/sanbara234/fiadoapp/pkg/logger"
	"github.com/sanbara234/fiadoapp/pkg/password"
)

func main() {
	// Initialize logger
	log := logger.NewLogger("fiadoapp")
	defer log.Sync()

	// Load configuration
	cfg := config.Load()

	// Initialize storage backend
	store, err := openStore(cfg)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := store.InitSchema(ctx); err != nil {
		cancel()
		log.Fatal("failed to initialize schema", zap.Error(err))
	}
	cancel()

	// Initialize services
	hasher := password.NewBcryptHasher(0)
	authService := service.NewAuthService(store, hasher, log)
	contactService := service.NewContactService(store, log)
	salesService := service.NewSalesService(store, log)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, log)
	contactHandler := handler.NewContactHandler(contactService, log)
	salesHandler := handler.NewSalesHandler(salesService, log)

	// Setup router
	router := handler.NewRouter(authHandler, contactHandler, salesHandler, log)

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("starting fiadoapp server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}

// openStore selects the storage backend: Postgres when DATABASE_URL is
// set, a local SQLite file otherwise.
func openStore(cfg *config.Config) (repository.Store, error) {
	if cfg.DatabaseURL != "" {
		db, err := database.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return repository.NewPostgresStore(db), nil
	}

	db, err := database.NewSQLite(cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	return repository.NewSQLiteStore(db), nil
}
