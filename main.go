package main

import (
	"context"
	"log"
	"net/http"
	"time"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/gin-gonic/gin"
	"google.golang.org/genai"

	"github.com/abdullahkazmii/ragserver/config"
	"github.com/abdullahkazmii/ragserver/controller"
	"github.com/abdullahkazmii/ragserver/services"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("FATAL: Invalid configuration: %v", err)
	}

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	// Create Chroma client using v2 API
	chromaClient, err := chromago.NewHTTPClient(chromago.WithBaseURL(cfg.ChromaURL))
	if err != nil {
		log.Fatalf("FATAL: Failed to create chroma client: %v", err)
	}
	defer func() {
		if err := chromaClient.Close(); err != nil {
			log.Printf("WARN: Failed to close chroma client: %v", err)
		}
	}()

	collection, err := getOrCreateCollection(chromaClient, cfg.CollectionName, cfg.DistanceFunction)
	if err != nil {
		log.Fatalf("FATAL: Failed to get or create collection: %v", err)
	}

	geminiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to create Gemini client: %v", err)
	}
	log.Println("Successfully connected to Google Gemini.")

	embedder := services.NewGeminiEmbedder(geminiClient, cfg.EmbeddingModel)
	store := services.NewChromaStore(collection, embedder, cfg.CollectionName, cfg.DistanceFunction)
	webSearcher := services.NewSerperClient(httpClient, cfg.SerperAPIKey, cfg.SerperURL, cfg.DefaultSearchResults)
	generator := services.NewGeminiGenerator(geminiClient, cfg.ChatModel, cfg.MaxOutputTokens, cfg.Temperature)

	ragService := services.NewRAGService(store, webSearcher, generator, cfg.ChunkSize, cfg.ChunkOverlap, cfg.SimilarityResults)
	sessions := services.NewSessionStore()
	evaluator := services.NewRAGEvaluator(ragService, store, cfg.SimilarityResults)
	websites := services.NewWebsiteExtractor(&http.Client{Timeout: cfg.ScrapeTimeout}, cfg.ScrapeUserAgent)

	// The folder indexer is optional: without INDEX_PATH the server only
	// ingests through the API.
	if cfg.IndexPath != "" {
		indexer := services.NewFileIndexingService(store, cfg.IndexChunkSize, cfg.IndexChunkOverlap)
		go indexer.ScanAndIndexDirectory(context.Background(), cfg.IndexPath)
		go indexer.WatchDirectory(context.Background(), cfg.IndexPath)
	}

	ragController := controller.NewRAGController(ragService, sessions, evaluator, websites)

	router := gin.Default()

	// CORS middleware so browser-based clients can talk to the API.
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "RAG API",
			"version": "1.0.0",
		})
	})

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/documents", ragController.IngestText)
		apiV1.POST("/documents/upload", ragController.UploadDocument)
		apiV1.POST("/documents/website", ragController.IngestWebsite)
		apiV1.GET("/documents", ragController.GetDocuments)
		apiV1.DELETE("/documents", ragController.ClearDocuments)
		apiV1.GET("/stats", ragController.GetStats)
		apiV1.POST("/query", ragController.QueryRAG)
		apiV1.POST("/search", ragController.SearchWeb)
		apiV1.POST("/evaluate", ragController.Evaluate)
		apiV1.GET("/sessions/:id", ragController.GetSession)
		apiV1.DELETE("/sessions/:id", ragController.DeleteSession)
	}

	log.Printf("RAG server starting on http://localhost:%s", cfg.Port)
	log.Printf("Health check available at: http://localhost:%s/health", cfg.Port)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("FATAL: Failed to start server: %v", err)
	}
}

// getOrCreateCollection ensures the persistent collection exists. The
// distance function is pinned in the collection metadata at creation
// time, since the similarity conversion depends on it.
func getOrCreateCollection(client chromago.Client, collectionName, distanceFunction string) (chromago.Collection, error) {
	ctx := context.Background()

	log.Printf("Getting or creating collection '%s'...", collectionName)

	collection, err := client.GetOrCreateCollection(
		ctx,
		collectionName,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("description", "RAG knowledge base collection"),
				chromago.NewStringAttribute("created_by", "rag_service"),
				chromago.NewStringAttribute("hnsw:space", distanceFunction),
			),
		),
	)
	if err != nil {
		return nil, err
	}

	log.Printf("Successfully got/created collection '%s'", collectionName)
	return collection, nil
}
