package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"hospital-portal/backend"
	"hospital-portal/config"
	"hospital-portal/models"
)

func main() {
	logger := log.New(os.Stdout, "HOSPITAL-API: ", log.LstdFlags|log.Lshortfile)
	cfg := config.Load()

	var repo models.Repository
	if cfg.DatabaseURL != "" {
		pg, err := models.NewPostgresRepository(cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("Failed to initialize repository: %v", err)
		}
		repo = pg
	} else {
		logger.Println("DATABASE_URL not set, using in-memory store")
		repo = models.NewMemoryRepository()
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Printf("Error closing repository: %v", err)
		}
	}()

	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	n, err := backend.Seed(seedCtx, repo)
	cancel()
	if err != nil {
		logger.Printf("Seeding failed: %v", err)
	} else if n > 0 {
		logger.Printf("Seeded %d doctors", n)
	}

	router := mux.NewRouter()
	handler := backend.NewServer(repo, logger).Routes(router, cfg.AllowedOrigins)

	server := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Printf("Hospital API listening on port %s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Printf("Server forced to shutdown: %v", err)
	}
}
