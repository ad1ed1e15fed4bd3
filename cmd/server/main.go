package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Alitindrawan24/personal-ai-chatbot/internal/api"
	"github.com/Alitindrawan24/personal-ai-chatbot/internal/config"
	"github.com/Alitindrawan24/personal-ai-chatbot/internal/core"
	"github.com/Alitindrawan24/personal-ai-chatbot/internal/llm"
	"github.com/Alitindrawan24/personal-ai-chatbot/internal/vectorstore"
)

func main() {
	// Load configuration
	config.LoadConfig()
	cfg := config.AppConfig

	// Setup logging
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Command line flag for one-off document ingestion
	ingestFile := flag.String("ingest", "", "Ingest the given text file into the vector store and exit")
	flag.Parse()

	// Initialize vector store
	store, err := vectorstore.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize vector store: %v", err)
	}
	defer store.Close()

	// Initialize providers
	embedder, err := llm.NewEmbedder(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize embedding provider: %v", err)
	}
	generator, err := llm.NewGenerator(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize LLM provider: %v", err)
	}
	if closer, ok := generator.(interface{ Close() }); ok {
		defer closer.Close()
	}

	documentService := core.NewDocumentService(embedder, store, cfg.ChunkSize)

	// Handle one-off ingestion if the flag is set
	if *ingestFile != "" {
		log.Printf("Starting ingestion of %s...", *ingestFile)
		content, err := os.ReadFile(*ingestFile)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", *ingestFile, err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
		defer cancel()
		result, err := documentService.Ingest(ctx, string(content), core.IngestMetadata{
			Source: filepath.Base(*ingestFile),
			Type:   "text",
		})
		if err != nil {
			log.Fatalf("Ingestion failed: %v", err)
		}
		log.Printf("Ingestion complete. Processed %d chunks (version %d). Exiting.", result.ChunksProcessed, result.Version)
		return
	}

	// Initialize conversation store and its background sweep
	conversationService := core.NewConversationService(cfg.MaxHistoryLength, cfg.ConversationTTL)
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	conversationService.StartCleanup(sweepCtx, cfg.CleanupInterval)

	chatService := core.NewChatService(embedder, generator, store, conversationService, core.ChatOptions{
		TopK:                cfg.TopK,
		SimilarityThreshold: cfg.SimilarityThreshold,
		ShowSources:         cfg.ShowSources,
		MaxHistoryLength:    cfg.MaxHistoryLength,
	})

	// Initialize API handler and router
	apiHandler := api.NewAPIHandler(chatService, documentService, conversationService, cfg.RequestTimeout)
	router := api.NewRouter(apiHandler, api.RouterOptions{
		APIKey:      cfg.APIKey,
		IPWhitelist: cfg.IPWhitelist,
	})

	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 10*time.Second, // LLM calls can take time
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		log.Printf("Starting server on %s. Press Ctrl+C to quit.", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", serverAddr, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting gracefully")
}
