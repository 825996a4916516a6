// Package main provides the CivicQuery corpus ingestion CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/civicquery/civicquery/internal/config"
	"github.com/civicquery/civicquery/internal/document"
	"github.com/civicquery/civicquery/internal/embedding"
	ghclient "github.com/civicquery/civicquery/internal/github"
	"github.com/civicquery/civicquery/internal/indexer"
	"github.com/civicquery/civicquery/internal/splitter"
	"github.com/civicquery/civicquery/internal/vectorstore"
)

var rootCmd = &cobra.Command{
	Use:   "civicquery-ingest",
	Short: "CivicQuery corpus ingestion tool",
	Long:  "CLI tool for building and inspecting the CivicQuery document index",
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Build the vector index from the local document directory",
	Long: `Loads every .pdf, .md and .txt file under DOCS_DIR, splits the
documents into overlapping chunks, embeds them, and persists the
vectors so the chat server can answer questions against them.

Environment variables:
  DOCS_DIR           Document directory (default: ./docs)
  PERSIST_DIR        Vector store directory (default: ./data/vectorstore)
  EMBEDDING_PROVIDER ollama or openai (default: ollama)
  EMBEDDING_MODEL    Embedding model name
  VECTOR_STORE       chromem or qdrant (default: chromem)
  OPENAI_API_KEY     Required for the openai provider`,
	RunE: runIngest,
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <owner/repo/path>",
	Short: "Download a policy corpus from a GitHub repository",
	Long: `Mirrors every supported file under a GitHub repository directory
into DOCS_DIR, preserving the directory layout. Set GITHUB_TOKEN for
higher rate limits.`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what the persisted index contains",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(statusCmd)
}

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	logger := slog.Default()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("Ingesting documents from %s...\n", cfg.DocsDir)

	store, err := vectorstore.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open vector store: %w", err)
	}
	defer store.Close()

	embedder, err := embedding.New(cfg)
	if err != nil {
		return fmt.Errorf("create embedding provider: %w", err)
	}

	split, err := splitter.New(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return err
	}

	pipeline := indexer.NewPipeline(document.NewLoader(logger), split, embedder, store, logger)

	result, err := pipeline.Ingest(ctx, cfg.DocsDir)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	manifest := vectorstore.Manifest{
		EmbeddingProvider: cfg.EmbeddingProvider,
		EmbeddingModel:    cfg.EmbeddingModel,
		ChunkSize:         cfg.ChunkSize,
		ChunkOverlap:      cfg.ChunkOverlap,
		Documents:         result.Documents,
		Chunks:            result.Chunks,
		IngestedAt:        time.Now().UTC(),
	}
	if err := vectorstore.WriteManifest(cfg.PersistDir, manifest); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	fmt.Println()
	fmt.Println("Ingestion complete!")
	fmt.Printf("  Documents: %d\n", result.Documents)
	fmt.Printf("  Chunks: %d\n", result.Chunks)
	fmt.Printf("  Embedding: %s/%s\n", cfg.EmbeddingProvider, cfg.EmbeddingModel)
	fmt.Printf("  Duration: %s\n", result.Duration.Round(time.Millisecond))

	return nil
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	logger := slog.Default()

	owner, repo, basePath, err := splitRepoPath(args[0])
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	client, err := ghclient.NewClient()
	if err != nil {
		return fmt.Errorf("create GitHub client: %w", err)
	}

	fetcher := ghclient.NewFetcher(client, owner, repo, basePath, logger)

	fmt.Printf("Fetching corpus from %s/%s/%s into %s...\n", owner, repo, basePath, cfg.DocsDir)
	count, err := fetcher.Mirror(ctx, cfg.DocsDir)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	fmt.Printf("Fetched %d files\n", count)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	logger := slog.Default()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, err := vectorstore.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open vector store: %w", err)
	}
	defer store.Close()

	count, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("count records: %w", err)
	}

	fmt.Printf("Store: %s (%s)\n", cfg.VectorStore, cfg.PersistDir)
	fmt.Printf("Chunks: %d\n", count)

	manifest, err := vectorstore.ReadManifest(cfg.PersistDir)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}
	if manifest == nil {
		fmt.Println("No manifest found; run ingest first")
		return nil
	}

	fmt.Printf("Embedding: %s/%s\n", manifest.EmbeddingProvider, manifest.EmbeddingModel)
	fmt.Printf("Chunking: size %d, overlap %d\n", manifest.ChunkSize, manifest.ChunkOverlap)
	fmt.Printf("Ingested: %d documents at %s\n", manifest.Documents, manifest.IngestedAt.Format(time.RFC3339))

	return nil
}

// splitRepoPath parses "owner/repo/path/to/docs" into its parts. The path
// component may be empty, meaning the repository root.
func splitRepoPath(s string) (owner, repo, basePath string, err error) {
	parts := strings.SplitN(strings.Trim(s, "/"), "/", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", "", fmt.Errorf("expected owner/repo[/path], got %q", s)
	}
	owner, repo = parts[0], parts[1]
	if len(parts) == 3 {
		basePath = parts[2]
	}
	return owner, repo, basePath, nil
}
