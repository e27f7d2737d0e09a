package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/cookielens/backend/config"
	httpDelivery "github.com/cookielens/backend/internal/delivery/http"
	"github.com/cookielens/backend/internal/infrastructure/cache"
	"github.com/cookielens/backend/internal/infrastructure/collector"
	"github.com/cookielens/backend/internal/infrastructure/fetcher"
	"github.com/cookielens/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting CookieLens Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Cache Type: %s", cfg.Cache.Type)

	// Initialize infrastructure dependencies
	memoryCache := cache.NewMemoryCache()
	log.Printf("Cache TTL: %s", cfg.Cache.TTL)

	collectorClient := collector.NewClient(cfg.Collector.Endpoint, cfg.Collector.APIKey, cfg.Collector.Timeout)
	log.Printf("Collector endpoint: %s", cfg.Collector.Endpoint)

	fetcherClient := fetcher.NewClient(cfg.Fetcher.UserAgent, cfg.Fetcher.Timeout)

	// Initialize usecase layer
	detectorService := usecase.NewDetectorService(
		collectorClient,
		usecase.DetectorConfig{
			KnownSelectorThreshold:   cfg.Detector.KnownSelectorThreshold,
			PositionContentThreshold: cfg.Detector.PositionContentThreshold,
			DedupTextDelta:           cfg.Detector.DedupTextDelta,
			SubmitTimeout:            cfg.Detector.SubmitTimeout,
			MaxPendingSubmissions:    cfg.Detector.MaxPendingSubmissions,
			EnableDebugLogging:       cfg.Detector.Debug || cfg.Server.Environment == "development",
		},
	)

	log.Printf("Detector: known=%.1f, position=%.1f, dedup=%d",
		cfg.Detector.KnownSelectorThreshold,
		cfg.Detector.PositionContentThreshold,
		cfg.Detector.DedupTextDelta)

	// Failed uploads are retried in the background for the life of the process
	detectorService.StartRetrySweep(context.Background(), cfg.Detector.RetryInterval)

	analysisService := usecase.NewAnalysisService(
		memoryCache,
		fetcherClient,
		usecase.AnalysisServiceConfig{
			CacheTTL: cfg.Cache.TTL,
		},
	)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(detectorService, analysisService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
