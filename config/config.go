package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every tunable the server needs. Values come from the
// environment (a local .env file is honoured) with defaults matching the
// original deployment.
type Config struct {
	// API credentials
	GeminiAPIKey string
	SerperAPIKey string // optional: empty disables web search

	// Models
	ChatModel      string
	EmbeddingModel string

	// Text processing parameters
	ChunkSize    int
	ChunkOverlap int

	// Generation parameters
	MaxOutputTokens int
	Temperature     float32

	// ChromaDB vector database
	ChromaURL         string
	CollectionName    string
	SimilarityResults int
	DistanceFunction  string

	// Web search
	SerperURL            string
	DefaultSearchResults int

	// Website scraping
	ScrapeTimeout   time.Duration
	ScrapeUserAgent string

	// Folder indexing (optional: empty disables the indexer)
	IndexPath         string
	IndexChunkSize    int
	IndexChunkOverlap int

	// HTTP server
	Port string
}

// Load reads the environment into a Config. It never fails on its own;
// call Validate to enforce the startup requirements.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}

	return &Config{
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		SerperAPIKey: os.Getenv("SERPER_API_KEY"),

		ChatModel:      envOr("CHAT_MODEL", "gemini-2.5-flash"),
		EmbeddingModel: envOr("EMBEDDING_MODEL", "text-embedding-004"),

		ChunkSize:    envIntOr("CHUNK_SIZE", 512),
		ChunkOverlap: envIntOr("CHUNK_OVERLAP", 150),

		MaxOutputTokens: envIntOr("MAX_OUTPUT_TOKENS", 1500),
		Temperature:     envFloatOr("TEMPERATURE", 0.7),

		ChromaURL:         envOr("CHROMA_URL", "http://localhost:8000"),
		CollectionName:    envOr("COLLECTION_NAME", "rag_documents"),
		SimilarityResults: envIntOr("SIMILARITY_SEARCH_RESULTS", 3),
		DistanceFunction:  envOr("DISTANCE_FUNCTION", "cosine"),

		SerperURL:            envOr("SERPER_API_URL", "https://google.serper.dev/search"),
		DefaultSearchResults: envIntOr("DEFAULT_SEARCH_RESULTS", 5),

		ScrapeTimeout:   time.Duration(envIntOr("SCRAPE_TIMEOUT_SECONDS", 15)) * time.Second,
		ScrapeUserAgent: envOr("SCRAPE_USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"),

		IndexPath:         os.Getenv("INDEX_PATH"),
		IndexChunkSize:    envIntOr("INDEX_CHUNK_SIZE", 1000),
		IndexChunkOverlap: envIntOr("INDEX_CHUNK_OVERLAP", 100),

		Port: envOr("PORT", "8080"),
	}
}

// Validate enforces the startup invariants. A missing Gemini key, a
// chunking setup that cannot make progress, or a distance function the
// similarity conversion does not support are all fatal configuration
// errors; a missing Serper key merely disables web search.
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is not set; set it in the environment or a local .env file")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP must be in [0, CHUNK_SIZE), got overlap %d for size %d", c.ChunkOverlap, c.ChunkSize)
	}
	if c.IndexChunkSize <= 0 || c.IndexChunkOverlap < 0 || c.IndexChunkOverlap >= c.IndexChunkSize {
		return fmt.Errorf("index chunking requires 0 <= INDEX_CHUNK_OVERLAP < INDEX_CHUNK_SIZE, got overlap %d for size %d", c.IndexChunkOverlap, c.IndexChunkSize)
	}
	if c.SimilarityResults <= 0 {
		return fmt.Errorf("SIMILARITY_SEARCH_RESULTS must be positive, got %d", c.SimilarityResults)
	}
	// The 1-distance similarity conversion is only meaningful for cosine
	// space, so anything else is rejected here instead of producing
	// scores nobody can interpret.
	if c.DistanceFunction != "cosine" {
		return fmt.Errorf("unsupported DISTANCE_FUNCTION %q: only cosine is supported", c.DistanceFunction)
	}
	if c.SerperAPIKey == "" {
		log.Println("SERPER_API_KEY is not set; web search will be disabled.")
	}
	return nil
}

// WebSearchEnabled reports whether a Serper key was configured.
func (c *Config) WebSearchEnabled() bool {
	return c.SerperAPIKey != ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: invalid integer for %s: %q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}

func envFloatOr(key string, fallback float32) float32 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		log.Printf("WARN: invalid float for %s: %q, using default %v", key, v, fallback)
		return fallback
	}
	return float32(f)
}
