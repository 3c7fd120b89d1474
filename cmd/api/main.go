package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bobarin/lyricburn/internal/api"
	"github.com/bobarin/lyricburn/internal/config"
	"github.com/bobarin/lyricburn/internal/db"
	"github.com/bobarin/lyricburn/internal/queue"
	"github.com/bobarin/lyricburn/internal/services"
	"github.com/bobarin/lyricburn/internal/storage"
	"github.com/bobarin/lyricburn/internal/worker"
)

func main() {
	log.Println("Starting Lyric Burn API...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	database, err := db.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	log.Println("Connected to database")

	// Connect to the distributed burn-admission semaphore
	admission, err := queue.NewSemaphore(context.Background(), cfg.RedisURL, "lyricburn:burn:admission", cfg.BurnConcurrency)
	if err != nil {
		log.Fatalf("Failed to connect to burn admission queue: %v", err)
	}
	defer admission.Close()
	log.Printf("Connected to Redis burn-admission semaphore (capacity %d)", cfg.BurnConcurrency)

	// Initialize storage
	stor := storage.New(cfg.StorageEndpoint, cfg.StorageAccessKey, cfg.StorageSecretKey, cfg.StorageBucket, cfg.DataRoot)
	log.Println("Initialized source video storage")

	prober := services.NewProber(cfg.ProbeBin)
	transcriber := services.NewTranscriber(cfg.OpenAIKey)
	orchestrator := services.NewBurnOrchestrator(prober, database, cfg.EncoderBin, cfg.DataRoot, cfg.FontsDir, cfg.BurnTimeout)
	localPool := worker.NewPool("Burn", cfg.BurnConcurrency)

	// Create API handler
	handler := api.NewHandler(database, stor, transcriber, orchestrator, admission, localPool)
	router := api.NewRouter(handler, database, api.RouterConfig{
		CorsAllowedOrigins: cfg.CorsAllowedOrigins,
	})

	// Start HTTP server
	server := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: router,
	}

	go func() {
		log.Printf("API server listening on :%s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
