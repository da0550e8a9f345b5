package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crossroads-game/crossroads/internal/config"
	"github.com/crossroads-game/crossroads/internal/game"
	"github.com/crossroads-game/crossroads/internal/handlers"
	"github.com/crossroads-game/crossroads/internal/logger"
	"github.com/crossroads-game/crossroads/internal/middleware"
	"github.com/crossroads-game/crossroads/internal/services"
	"github.com/crossroads-game/crossroads/internal/storage"
	"github.com/crossroads-game/crossroads/pkg/images"
)

func main() {
	cfg := config.Load()

	log := logger.Setup(cfg)

	log.Info("Starting Crossroads API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"model_name", cfg.GeminiModel)

	// Generation is optional. Without an API key the game runs entirely on
	// the built-in story bank.
	var llmService services.LLMService
	if cfg.GeminiAPIKey != "" {
		llmService = services.NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiModel, log)
		log.Info("Using Gemini story generation")
	} else {
		log.Warn("GEMINI_API_KEY not set, serving fallback stories only")
	}

	store := storage.NewRedisStorage(cfg.RedisURL, log)
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	if err := store.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	planner := images.NewPlanner(llmService, log)
	processor := game.NewStageProcessor(store, llmService, planner, log)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(store, llmService, log)
	mux.Handle("/health", healthHandler)

	sessionHandler := handlers.NewSessionHandler(processor, log)
	mux.Handle("/v1/game/sessions", middleware.RequireUser(sessionHandler))
	mux.Handle("/v1/game/sessions/", middleware.RequireUser(sessionHandler))

	storyHandler := handlers.NewStoryHandler(processor, log)
	mux.Handle("/v1/game/generate-story", middleware.RequireUser(storyHandler))

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// WriteTimeout stays generous: a stage advance may wait on the
		// generation backend before falling back.
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Server exited")
}
