package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	"github.com/google/uuid"

	"github.com/abdullahkazmii/ragserver/models"
)

// VectorStore wraps the persistent vector database: ingest, similarity
// search, source-scoped reads and deletes, and collection stats.
type VectorStore interface {
	AddDocuments(ctx context.Context, chunks []string, source models.DocumentSource) (int, error)
	SimilaritySearch(ctx context.Context, query string, nResults int) ([]models.SearchResult, error)
	GetAllDocuments(ctx context.Context) ([]models.StoredDocument, error)
	GetBySource(ctx context.Context, sourceName string) ([]models.StoredDocument, error)
	DeleteBySource(ctx context.Context, sourceName string) error
	DeleteAll(ctx context.Context) (int, error)
	Stats(ctx context.Context) (*models.CollectionStats, error)
	IndexState(ctx context.Context) (map[string]string, error)
}

// ChromaStore implements VectorStore on a ChromaDB v2 collection. All
// embeddings are computed through the injected Embedder, one call per
// chunk and per query.
type ChromaStore struct {
	collection       chromago.Collection
	embedder         Embedder
	collectionName   string
	distanceFunction string
}

// AddDocuments embeds and persists the given chunks. Blank chunks are
// skipped, and a chunk whose embedding fails is skipped too so the
// remaining chunks still get ingested. The chunk index in each record id
// and metadata refers to the position in the incoming slice, skipped
// entries included. Returns the number of chunks actually persisted; it
// is an error when that number is zero.
func (s *ChromaStore) AddDocuments(ctx context.Context, chunks []string, source models.DocumentSource) (int, error) {
	if len(chunks) == 0 {
		return 0, fmt.Errorf("no chunks to add")
	}

	timestamp := time.Now().UTC().Format(time.RFC3339)
	added := 0
	for i, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			continue
		}

		vector, err := s.embedder.EmbedText(ctx, chunk)
		if err != nil {
			log.Printf("STORE: Skipping chunk %d of %s: embedding failed: %v", i, source.Name, err)
			continue
		}

		var metadata chromago.DocumentMetadata
		if source.FileHash != "" {
			metadata = chromago.NewDocumentMetadata(
				chromago.NewStringAttribute("source_type", source.Type),
				chromago.NewStringAttribute("source_name", source.Name),
				chromago.NewIntAttribute("chunk_index", int64(i)),
				chromago.NewStringAttribute("timestamp", timestamp),
				chromago.NewStringAttribute("file_hash", source.FileHash),
			)
		} else {
			metadata = chromago.NewDocumentMetadata(
				chromago.NewStringAttribute("source_type", source.Type),
				chromago.NewStringAttribute("source_name", source.Name),
				chromago.NewIntAttribute("chunk_index", int64(i)),
				chromago.NewStringAttribute("timestamp", timestamp),
			)
		}

		err = s.collection.Add(ctx,
			chromago.WithIDs(chromago.DocumentID(buildRecordID(source.Type, source.Name, i))),
			chromago.WithTexts(chunk),
			chromago.WithEmbeddings(embeddings.NewEmbeddingFromFloat32(vector)),
			chromago.WithMetadatas(metadata),
		)
		if err != nil {
			return added, fmt.Errorf("failed to add chunk %d of %s to chromadb: %w", i, source.Name, err)
		}
		added++
	}

	if added == 0 {
		return 0, fmt.Errorf("no valid chunks were processed for %s", source.Name)
	}
	log.Printf("STORE: Stored %d chunks for %s (%s)", added, source.Name, source.Type)
	return added, nil
}

// SimilaritySearch embeds the query and returns the nResults closest
// chunks with similarity scores derived from cosine distance.
func (s *ChromaStore) SimilaritySearch(ctx context.Context, query string, nResults int) ([]models.SearchResult, error) {
	queryVector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query text: %w", err)
	}

	results, err := s.collection.Query(ctx,
		chromago.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(queryVector)),
		chromago.WithNResults(nResults),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chromadb: %w", err)
	}

	documentGroups := results.GetDocumentsGroups()
	metadataGroups := results.GetMetadatasGroups()
	distanceGroups := results.GetDistancesGroups()

	var searchResults []models.SearchResult
	if len(documentGroups) > 0 {
		for i, doc := range documentGroups[0] {
			if doc.ContentString() == "" {
				continue
			}

			var metadata models.ChunkMetadata
			if len(metadataGroups) > 0 && i < len(metadataGroups[0]) {
				metadata = decodeChunkMetadata(metadataGroups[0][i])
			}

			var distance float64
			if len(distanceGroups) > 0 && i < len(distanceGroups[0]) {
				distance = float64(distanceGroups[0][i])
			}

			searchResults = append(searchResults, models.SearchResult{
				Document:        doc.ContentString(),
				Metadata:        metadata,
				SimilarityScore: cosineSimilarity(distance),
				Distance:        distance,
			})
		}
	}

	log.Printf("STORE: Similarity search returned %d results", len(searchResults))
	return searchResults, nil
}

// GetAllDocuments retrieves every chunk in the collection.
func (s *ChromaStore) GetAllDocuments(ctx context.Context) ([]models.StoredDocument, error) {
	results, err := s.collection.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get documents from chromadb: %w", err)
	}
	return collectStoredDocuments(results), nil
}

// GetBySource retrieves every chunk whose source_name matches.
func (s *ChromaStore) GetBySource(ctx context.Context, sourceName string) ([]models.StoredDocument, error) {
	results, err := s.collection.Get(ctx, chromago.WithWhereGet(chromago.EqString("source_name", sourceName)))
	if err != nil {
		return nil, fmt.Errorf("failed to get documents for source %s: %w", sourceName, err)
	}
	return collectStoredDocuments(results), nil
}

// DeleteBySource removes every chunk whose source_name matches.
func (s *ChromaStore) DeleteBySource(ctx context.Context, sourceName string) error {
	where := chromago.EqString("source_name", sourceName)
	if err := s.collection.Delete(ctx, chromago.WithWhereDelete(where)); err != nil {
		return fmt.Errorf("failed to delete documents for source %s: %w", sourceName, err)
	}
	return nil
}

// DeleteAll clears the collection by fetching all ids and deleting them.
// An empty collection is not an error.
func (s *ChromaStore) DeleteAll(ctx context.Context) (int, error) {
	results, err := s.collection.Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list documents for deletion: %w", err)
	}

	ids := results.GetIDs()
	if len(ids) == 0 {
		log.Println("STORE: No documents to delete.")
		return 0, nil
	}

	if err := s.collection.Delete(ctx, chromago.WithIDsDelete(ids...)); err != nil {
		return 0, fmt.Errorf("failed to delete documents from chromadb: %w", err)
	}
	log.Printf("STORE: Deleted %d documents from the collection", len(ids))
	return len(ids), nil
}

// Stats reports the current size and configuration of the collection.
func (s *ChromaStore) Stats(ctx context.Context) (*models.CollectionStats, error) {
	count, err := s.collection.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count items in collection: %w", err)
	}
	return &models.CollectionStats{
		TotalDocuments:   int(count),
		CollectionExists: true,
		CollectionName:   s.collectionName,
		DistanceFunction: s.distanceFunction,
	}, nil
}

// IndexState maps each folder-indexed source_name to the file hash it
// was ingested with. Sources without a hash (API ingests) are left out.
func (s *ChromaStore) IndexState(ctx context.Context) (map[string]string, error) {
	results, err := s.collection.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read index state from chromadb: %w", err)
	}

	state := make(map[string]string)
	for _, meta := range results.GetMetadatas() {
		if meta == nil {
			continue
		}
		decoded := decodeChunkMetadata(meta)
		if decoded.SourceName == "" || decoded.FileHash == "" {
			continue
		}
		if _, exists := state[decoded.SourceName]; !exists {
			state[decoded.SourceName] = decoded.FileHash
		}
	}
	return state, nil
}

func collectStoredDocuments(results chromago.GetResult) []models.StoredDocument {
	ids := results.GetIDs()
	documents := results.GetDocuments()
	metadatas := results.GetMetadatas()

	stored := make([]models.StoredDocument, 0, len(documents))
	for i := range documents {
		var metadata models.ChunkMetadata
		if i < len(metadatas) && metadatas[i] != nil {
			metadata = decodeChunkMetadata(metadatas[i])
		}
		var id string
		if i < len(ids) {
			id = string(ids[i])
		}
		stored = append(stored, models.StoredDocument{
			ID:       id,
			Text:     documents[i].ContentString(),
			Metadata: metadata,
		})
	}
	return stored
}

// decodeChunkMetadata converts a chroma DocumentMetadata into our typed
// record. The struct has no public accessor for its raw values, so the
// conversion goes through a JSON round-trip.
func decodeChunkMetadata(metadata chromago.DocumentMetadata) models.ChunkMetadata {
	var decoded models.ChunkMetadata
	jsonBytes, err := json.Marshal(metadata)
	if err != nil {
		log.Printf("WARN: could not marshal document metadata: %v", err)
		return decoded
	}
	if err := json.Unmarshal(jsonBytes, &decoded); err != nil {
		log.Printf("WARN: could not unmarshal document metadata: %v", err)
	}
	return decoded
}

// cosineSimilarity converts a cosine distance into a [0, 1] closeness
// score. Only valid for cosine space, which config validation enforces.
func cosineSimilarity(distance float64) float64 {
	return 1 - distance
}

// buildRecordID makes a collection-unique record id from the chunk's
// provenance plus a random suffix.
func buildRecordID(sourceType, sourceName string, chunkIndex int) string {
	return fmt.Sprintf("%s_%s_%d_%s", sourceType, sourceName, chunkIndex, uuid.New().String()[:8])
}

// NewChromaStore creates a vector store on the given collection.
func NewChromaStore(collection chromago.Collection, embedder Embedder, collectionName, distanceFunction string) *ChromaStore {
	return &ChromaStore{
		collection:       collection,
		embedder:         embedder,
		collectionName:   collectionName,
		distanceFunction: distanceFunction,
	}
}
