// Package main provides the CivicQuery chat service entry point.
package main

import (
	"context"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/civicquery/civicquery/internal/config"
	"github.com/civicquery/civicquery/internal/embedding"
	"github.com/civicquery/civicquery/internal/llm"
	"github.com/civicquery/civicquery/internal/rag"
	"github.com/civicquery/civicquery/internal/retriever"
	"github.com/civicquery/civicquery/internal/server"
	"github.com/civicquery/civicquery/internal/vectorstore"
)

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Cancel on SIGTERM/SIGINT so open chat sessions unwind cleanly.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	store, err := vectorstore.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open vector store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if manifest, err := vectorstore.ReadManifest(cfg.PersistDir); err == nil && manifest != nil {
		if manifest.EmbeddingProvider != cfg.EmbeddingProvider || manifest.EmbeddingModel != cfg.EmbeddingModel {
			logger.Warn("embedding configuration differs from the ingested corpus; similarity scores will be meaningless",
				"ingested_provider", manifest.EmbeddingProvider,
				"ingested_model", manifest.EmbeddingModel,
				"configured_provider", cfg.EmbeddingProvider,
				"configured_model", cfg.EmbeddingModel)
		}
	}

	embedder, err := embedding.New(cfg)
	if err != nil {
		logger.Error("failed to create embedding provider", "error", err)
		os.Exit(1)
	}

	generator, err := llm.New(cfg)
	if err != nil {
		logger.Error("failed to create llm generator", "error", err)
		os.Exit(1)
	}

	ret := retriever.New(store, embedder, logger,
		retriever.WithK(cfg.RetrievalK),
		retriever.WithFetchK(cfg.FetchK),
		retriever.WithLambda(cfg.MMRLambda))

	chain := rag.NewChain(ret, generator, logger)
	srv := server.New(chain, logger, cfg.TokenDelay, cfg.GenTimeout)

	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv.Routes(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("Starting CivicQuery server",
		"addr", addr,
		"llm", cfg.LLMProvider+"/"+cfg.LLMModel,
		"embedding", cfg.EmbeddingProvider+"/"+cfg.EmbeddingModel,
		"store", cfg.VectorStore)

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
