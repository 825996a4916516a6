// Package config loads and validates service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// ErrInvalidConfig indicates a configuration value that prevents startup.
var ErrInvalidConfig = errors.New("invalid configuration")

// Provider selector values shared by the embedding and generation backends.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// Vector store selector values.
const (
	StoreChromem = "chromem"
	StoreQdrant  = "qdrant"
)

// Config holds all runtime configuration for the service and the ingest CLI.
type Config struct {
	Host string
	Port string

	DocsDir    string
	PersistDir string

	ChunkSize    int
	ChunkOverlap int

	EmbeddingProvider string
	EmbeddingModel    string

	LLMProvider string
	LLMModel    string
	Temperature float64

	OllamaBaseURL string
	OpenAIAPIKey  string

	VectorStore string
	QdrantHost  string
	QdrantPort  int

	RetrievalK    int
	FetchK        int
	MMRLambda     float64
	TokenDelay    time.Duration
	GenTimeout    time.Duration
}

// Load reads configuration from environment variables, applying defaults,
// and validates it. It does not read .env files; callers load those first
// (godotenv) so that the environment is the single source of truth here.
func Load() (*Config, error) {
	var env envReader
	cfg := &Config{
		Host:              getEnv("HOST", "0.0.0.0"),
		Port:              getEnv("PORT", "8001"),
		DocsDir:           getEnv("DOCS_DIR", "./docs"),
		PersistDir:        getEnv("PERSIST_DIR", "./data/vectorstore"),
		ChunkSize:         env.intVal("CHUNK_SIZE", 1500),
		ChunkOverlap:      env.intVal("CHUNK_OVERLAP", 200),
		EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", ProviderOllama),
		EmbeddingModel:    os.Getenv("EMBEDDING_MODEL"),
		LLMProvider:       getEnv("LLM_PROVIDER", ProviderOllama),
		LLMModel:          getEnv("LLM_MODEL", "llama3"),
		Temperature:       env.floatVal("TEMPERATURE", 0.01),
		OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://host.docker.internal:11434"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		VectorStore:       getEnv("VECTOR_STORE", StoreChromem),
		QdrantHost:        getEnv("QDRANT_HOST", "localhost"),
		QdrantPort:        env.intVal("QDRANT_PORT", 6334),
		RetrievalK:        env.intVal("RETRIEVAL_K", 4),
		FetchK:            env.intVal("RETRIEVAL_FETCH_K", 20),
		MMRLambda:         env.floatVal("MMR_LAMBDA", 0.5),
		TokenDelay:        time.Duration(env.intVal("TOKEN_DELAY_MS", 50)) * time.Millisecond,
		GenTimeout:        env.durationVal("GENERATION_TIMEOUT", 120*time.Second),
	}
	if env.err != nil {
		return nil, env.err
	}

	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = defaultEmbeddingModel(cfg.EmbeddingProvider)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field invariants. Violations are fatal at startup.
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: CHUNK_SIZE must be positive, got %d", ErrInvalidConfig, c.ChunkSize)
	}
	if c.ChunkOverlap < 0 {
		return fmt.Errorf("%w: CHUNK_OVERLAP must not be negative, got %d", ErrInvalidConfig, c.ChunkOverlap)
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: CHUNK_OVERLAP (%d) must be smaller than CHUNK_SIZE (%d)",
			ErrInvalidConfig, c.ChunkOverlap, c.ChunkSize)
	}
	switch c.EmbeddingProvider {
	case ProviderOllama, ProviderOpenAI:
	default:
		return fmt.Errorf("%w: unsupported EMBEDDING_PROVIDER %q (choose %q or %q)",
			ErrInvalidConfig, c.EmbeddingProvider, ProviderOllama, ProviderOpenAI)
	}
	switch c.LLMProvider {
	case ProviderOllama, ProviderOpenAI:
	default:
		return fmt.Errorf("%w: unsupported LLM_PROVIDER %q (choose %q or %q)",
			ErrInvalidConfig, c.LLMProvider, ProviderOllama, ProviderOpenAI)
	}
	switch c.VectorStore {
	case StoreChromem, StoreQdrant:
	default:
		return fmt.Errorf("%w: unsupported VECTOR_STORE %q (choose %q or %q)",
			ErrInvalidConfig, c.VectorStore, StoreChromem, StoreQdrant)
	}
	if c.MMRLambda < 0 || c.MMRLambda > 1 {
		return fmt.Errorf("%w: MMR_LAMBDA must be in [0,1], got %g", ErrInvalidConfig, c.MMRLambda)
	}
	return nil
}

func defaultEmbeddingModel(provider string) string {
	if provider == ProviderOpenAI {
		return "text-embedding-3-small"
	}
	return "nomic-embed-text"
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// envReader parses typed environment variables, remembering the first
// parse failure. A present-but-unparseable value is a fatal configuration
// error, not a silent fallback to the default.
type envReader struct {
	err error
}

func (r *envReader) intVal(key string, defaultValue int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		r.fail(key, v, "an integer")
		return defaultValue
	}
	return i
}

func (r *envReader) floatVal(key string, defaultValue float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.fail(key, v, "a number")
		return defaultValue
	}
	return f
}

func (r *envReader) durationVal(key string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.fail(key, v, `a duration such as "90s"`)
		return defaultValue
	}
	return d
}

func (r *envReader) fail(key, value, want string) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %s must be %s, got %q", ErrInvalidConfig, key, want, value)
	}
}
