package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/mirrorhours/mirror-api/internal/config"
	"github.com/mirrorhours/mirror-api/internal/handler"
	"github.com/mirrorhours/mirror-api/internal/llm"
	"github.com/mirrorhours/mirror-api/internal/repository"
	"github.com/mirrorhours/mirror-api/internal/service"
	"github.com/mirrorhours/mirror-api/internal/storage"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load .env if present, then configuration
	_ = godotenv.Load()
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Initialize storage
	store, err := storage.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to open storage: %v", err)
	}
	defer store.Close()
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, using ephemeral in-memory store")
	}

	// Initialize layers
	repo := repository.NewRepository(store)
	svc := service.NewService(repo, logger)
	interpreter := llm.NewInterpreter(cfg, logger)
	h := handler.NewHandler(svc, interpreter, logger)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      h.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
