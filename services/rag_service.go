// =====================================================
// rag_service.go
package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/abdullahkazmii/ragserver/models"
)

// fallbackResponse is returned whenever the pipeline fails so a broken
// remote call never crashes a user session.
const fallbackResponse = "I apologize, but I encountered an error generating a response. Please try again."

// RAGService interface defines methods for RAG operations
type RAGService interface {
	IngestDocument(ctx context.Context, text string, source models.DocumentSource) (int, error)
	RetrieveContext(ctx context.Context, query string, includeWebSearch bool) (*models.RetrievalResult, error)
	// GenerateResponse answers a query through the full pipeline. The
	// returned result is non-nil even on error: failures carry the
	// apologetic fallback payload so callers can render it directly.
	GenerateResponse(ctx context.Context, query string, includeWebSearch bool) (*models.GenerationResult, error)
	SearchWeb(ctx context.Context, query string, num int) ([]models.WebResult, error)
	GetAllDocuments(ctx context.Context) ([]models.StoredDocument, error)
	GetDocumentsBySource(ctx context.Context, sourceName string) ([]models.StoredDocument, error)
	GetSystemStats(ctx context.Context) (*models.SystemStats, error)
	ClearKnowledgeBase(ctx context.Context) (int, error)
}

// ragServiceImpl holds the dependencies it needs to do its job
type ragServiceImpl struct {
	store        VectorStore
	webSearcher  WebSearcher
	generator    TextGenerator
	chunkSize    int
	chunkOverlap int
	topK         int
}

// IngestDocument chunks the text and persists the chunks. Empty input
// and input that chunks to nothing are rejected before any remote call.
func (r *ragServiceImpl) IngestDocument(ctx context.Context, text string, source models.DocumentSource) (int, error) {
	if strings.TrimSpace(text) == "" {
		return 0, fmt.Errorf("empty document provided")
	}

	chunks := ChunkText(text, r.chunkSize, r.chunkOverlap)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("no valid chunks created from document")
	}

	log.Printf("SERVICE: Ingesting %d chunks from %s (%s)", len(chunks), source.Name, source.Type)
	return r.store.AddDocuments(ctx, chunks, source)
}

// RetrieveContext merges vector hits and optional web snippets into one
// context blob. Vector passages always come first, web snippets after.
// A vector store failure is returned to the caller; a web search failure
// only degrades the result to vector-only with a warning.
func (r *ragServiceImpl) RetrieveContext(ctx context.Context, query string, includeWebSearch bool) (*models.RetrievalResult, error) {
	log.Printf("SERVICE: Retrieving context (web search: %t)", includeWebSearch)

	vectorResults, err := r.store.SimilaritySearch(ctx, query, r.topK)
	if err != nil {
		return nil, fmt.Errorf("vector retrieval failed: %w", err)
	}

	var contextParts []string
	sources := []models.Source{}

	for _, result := range vectorResults {
		contextParts = append(contextParts, result.Document)
		sourceName := result.Metadata.SourceName
		if sourceName == "" {
			sourceName = "Unknown"
		}
		sources = append(sources, models.Source{
			Type:       models.SourceVectorDB,
			Source:     sourceName,
			Similarity: result.SimilarityScore,
		})
	}

	var webResults []models.WebResult
	if includeWebSearch && r.webSearcher != nil && r.webSearcher.Enabled() {
		webResults, err = r.webSearcher.Search(ctx, query, 0)
		if err != nil {
			log.Printf("WARN: Web search failed, continuing with vector results only: %v", err)
			webResults = nil
		}
		for _, result := range webResults {
			contextParts = append(contextParts, fmt.Sprintf("Web Result: %s - %s", result.Title, result.Snippet))
			sources = append(sources, models.Source{
				Type:   models.SourceWebSearch,
				Source: result.Title,
				Link:   result.Link,
			})
		}
	}

	return &models.RetrievalResult{
		Context:       strings.Join(contextParts, "\n\n"),
		Sources:       sources,
		VectorResults: len(vectorResults),
		WebResults:    len(webResults),
	}, nil
}

// GenerateResponse runs retrieval and generation for a query. On any
// failure it returns the apologetic fallback answer together with the
// error, so callers can keep the session alive while still seeing what
// went wrong.
func (r *ragServiceImpl) GenerateResponse(ctx context.Context, query string, includeWebSearch bool) (*models.GenerationResult, error) {
	retrieval, err := r.RetrieveContext(ctx, query, includeWebSearch)
	if err != nil {
		log.Printf("SERVICE: Error in RAG pipeline: %v", err)
		return fallbackGenerationResult(), err
	}

	answer, err := r.generator.Generate(ctx, retrieval.Context, query)
	if err != nil {
		log.Printf("SERVICE: Error in RAG pipeline: %v", err)
		return fallbackGenerationResult(), err
	}

	return &models.GenerationResult{
		Response:           answer,
		ContextUsed:        retrieval.Context,
		Sources:            retrieval.Sources,
		VectorResultsCount: retrieval.VectorResults,
		WebResultsCount:    retrieval.WebResults,
	}, nil
}

// SearchWeb exposes raw web search results. A disabled searcher yields
// an empty list.
func (r *ragServiceImpl) SearchWeb(ctx context.Context, query string, num int) ([]models.WebResult, error) {
	if r.webSearcher == nil {
		return []models.WebResult{}, nil
	}
	return r.webSearcher.Search(ctx, query, num)
}

// GetAllDocuments returns every stored chunk.
func (r *ragServiceImpl) GetAllDocuments(ctx context.Context) ([]models.StoredDocument, error) {
	log.Printf("SERVICE: Getting all documents from ChromaDB...")
	return r.store.GetAllDocuments(ctx)
}

// GetDocumentsBySource returns the stored chunks for one source.
func (r *ragServiceImpl) GetDocumentsBySource(ctx context.Context, sourceName string) ([]models.StoredDocument, error) {
	return r.store.GetBySource(ctx, sourceName)
}

// GetSystemStats reports the overall system state. A store failure is
// reported as an inactive vector database rather than an error, so the
// stats endpoint stays usable while ChromaDB is down.
func (r *ragServiceImpl) GetSystemStats(ctx context.Context) (*models.SystemStats, error) {
	stats := &models.SystemStats{
		WebSearchEnabled: r.webSearcher != nil && r.webSearcher.Enabled(),
	}

	collectionStats, err := r.store.Stats(ctx)
	if err != nil {
		log.Printf("WARN: Could not read collection stats: %v", err)
		return stats, nil
	}

	stats.VectorDBDocuments = collectionStats.TotalDocuments
	stats.VectorDBActive = collectionStats.CollectionExists
	stats.CollectionName = collectionStats.CollectionName
	stats.DistanceFunction = collectionStats.DistanceFunction
	return stats, nil
}

// ClearKnowledgeBase deletes every document from the vector database
// and reports how many were removed.
func (r *ragServiceImpl) ClearKnowledgeBase(ctx context.Context) (int, error) {
	return r.store.DeleteAll(ctx)
}

func fallbackGenerationResult() *models.GenerationResult {
	return &models.GenerationResult{
		Response: fallbackResponse,
		Sources:  []models.Source{},
	}
}

// NewRAGService creates a new RAG service instance
func NewRAGService(store VectorStore, webSearcher WebSearcher, generator TextGenerator, chunkSize, chunkOverlap, topK int) RAGService {
	return &ragServiceImpl{
		store:        store,
		webSearcher:  webSearcher,
		generator:    generator,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		topK:         topK,
	}
}
