package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"yardgate-backend/config"
	"yardgate-backend/internal/api"
	"yardgate-backend/internal/db"
	"yardgate-backend/internal/storage"
	"yardgate-backend/internal/store"
)

const appName = "Yard Gate Álamo"

func main() {
	logger := log.New(os.Stdout, "yardgated ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	if cfg.Print.AgentKey == "" {
		logger.Printf("WARNING: print.agent_key is empty; print claim/complete endpoints are locked")
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	if cfg.Yard.Seed {
		if err := db.SeedYard(gormDB, &cfg.Yard); err != nil {
			logger.Fatalf("failed to seed yard grid: %v", err)
		}
		logger.Printf("yard grid seeded: blocks %v, %d bays each", cfg.Yard.Blocks, cfg.Yard.BaysPerBlock)
	}

	photoStorage, err := storage.New(&cfg.Storage)
	if err != nil {
		logger.Fatalf("failed to initialize photo storage: %v", err)
	}
	logger.Printf("photo storage initialized (provider %s)", cfg.Storage.Provider)

	appStore := store.NewGormStore(gormDB, photoStorage, appName, cfg.Print.ClaimLease)
	logger.Println("data store initialized")

	router := api.NewRouter(appStore, cfg)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
