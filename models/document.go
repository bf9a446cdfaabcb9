package models

// Source types recorded in chunk metadata and record ids.
const (
	SourceTypeText    = "text"
	SourceTypePDF     = "pdf"
	SourceTypeWebsite = "website"
	SourceTypeFile    = "file"
)

// Provenance types attached to answer sources.
const (
	SourceVectorDB  = "vector_db"
	SourceWebSearch = "web_search"
)

// ChunkMetadata is the metadata record persisted alongside every chunk.
// Timestamp is RFC 3339 UTC. FileHash is only set for folder-indexed
// files, where it drives change detection.
type ChunkMetadata struct {
	SourceType string `json:"source_type"`
	SourceName string `json:"source_name"`
	ChunkIndex int    `json:"chunk_index"`
	Timestamp  string `json:"timestamp"`
	FileHash   string `json:"file_hash,omitempty"`
}

// DocumentSource identifies where ingested text came from.
type DocumentSource struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	FileHash string `json:"file_hash,omitempty"`
}

// StoredDocument is a single chunk as it lives in the vector database.
type StoredDocument struct {
	ID       string        `json:"id"`
	Text     string        `json:"text"`
	Metadata ChunkMetadata `json:"metadata"`
}

// SearchResult is one similarity-search hit. SimilarityScore is
// 1 - Distance, which assumes the collection uses cosine space.
type SearchResult struct {
	Document        string        `json:"document"`
	Metadata        ChunkMetadata `json:"metadata"`
	SimilarityScore float64       `json:"similarity_score"`
	Distance        float64       `json:"distance"`
}

// WebResult is a single organic web search hit.
type WebResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// Source records the provenance of one piece of answer context. Type is
// either vector_db or web_search; Similarity is set for vector hits and
// Link for web hits.
type Source struct {
	Type       string  `json:"type"`
	Source     string  `json:"source"`
	Similarity float64 `json:"similarity,omitempty"`
	Link       string  `json:"link,omitempty"`
}

// RetrievalResult is the merged context handed to generation. Vector
// database passages always precede web snippets in Context.
type RetrievalResult struct {
	Context       string   `json:"context"`
	Sources       []Source `json:"sources"`
	VectorResults int      `json:"vector_results"`
	WebResults    int      `json:"web_results"`
}

// GenerationResult is a full answer with the context and provenance
// that produced it.
type GenerationResult struct {
	Response           string   `json:"response"`
	ContextUsed        string   `json:"context_used"`
	Sources            []Source `json:"sources"`
	VectorResultsCount int      `json:"vector_results_count"`
	WebResultsCount    int      `json:"web_results_count"`
}

// CollectionStats describes the state of the vector collection.
type CollectionStats struct {
	TotalDocuments   int    `json:"total_documents"`
	CollectionExists bool   `json:"collection_exists"`
	CollectionName   string `json:"collection_name"`
	DistanceFunction string `json:"distance_function"`
}

// SystemStats is the health snapshot exposed by GET /api/v1/stats.
type SystemStats struct {
	VectorDBDocuments int    `json:"vector_db_documents"`
	VectorDBActive    bool   `json:"vector_db_active"`
	WebSearchEnabled  bool   `json:"web_search_enabled"`
	CollectionName    string `json:"collection_name"`
	DistanceFunction  string `json:"distance_function"`
}
