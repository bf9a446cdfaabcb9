package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdullahkazmii/ragserver/models"
)

type stubEmbedder struct {
	failOn string
	calls  int
}

func (s *stubEmbedder) EmbedText(_ context.Context, text string) ([]float32, error) {
	s.calls++
	if s.failOn != "" && strings.Contains(text, s.failOn) {
		return nil, fmt.Errorf("embedding backend unavailable")
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

// stubCollection overrides just the collection methods the store under
// test touches; anything else panics through the embedded nil interface.
type stubCollection struct {
	chromago.Collection
	addCalls    int
	addErr      error
	getResult   chromago.GetResult
	getErr      error
	deleteCalls int
}

func (c *stubCollection) Add(context.Context, ...chromago.CollectionAddOption) error {
	c.addCalls++
	return c.addErr
}

func (c *stubCollection) Get(context.Context, ...chromago.CollectionGetOption) (chromago.GetResult, error) {
	return c.getResult, c.getErr
}

func (c *stubCollection) Delete(context.Context, ...chromago.CollectionDeleteOption) error {
	c.deleteCalls++
	return nil
}

type stubGetResult struct {
	chromago.GetResult
	ids []chromago.DocumentID
}

func (r stubGetResult) GetIDs() chromago.DocumentIDs { return r.ids }

func TestAddDocumentsContinuesPastFailedEmbedding(t *testing.T) {
	collection := &stubCollection{}
	embedder := &stubEmbedder{failOn: "Grass"}
	store := NewChromaStore(collection, embedder, "rag_documents", "cosine")

	chunks := []string{"The sky is blue.", "Grass is green.", "Snow is white."}
	added, err := store.AddDocuments(context.Background(), chunks, models.DocumentSource{Type: models.SourceTypeText, Name: "facts.txt"})
	require.NoError(t, err)

	// The failed middle chunk is skipped; the ones after it still land.
	assert.Equal(t, 2, added)
	assert.Equal(t, 2, collection.addCalls)
	assert.Equal(t, 3, embedder.calls)
}

func TestAddDocumentsErrorsWhenNothingPersists(t *testing.T) {
	collection := &stubCollection{}
	embedder := &stubEmbedder{failOn: "chunk"}
	store := NewChromaStore(collection, embedder, "rag_documents", "cosine")

	added, err := store.AddDocuments(context.Background(), []string{"chunk one", "chunk two"}, models.DocumentSource{Type: models.SourceTypeText, Name: "facts.txt"})
	require.Error(t, err)
	assert.Zero(t, added)
	assert.Zero(t, collection.addCalls)
}

func TestAddDocumentsSkipsBlankChunks(t *testing.T) {
	collection := &stubCollection{}
	embedder := &stubEmbedder{}
	store := NewChromaStore(collection, embedder, "rag_documents", "cosine")

	added, err := store.AddDocuments(context.Background(), []string{"  ", "real content", "\n\t"}, models.DocumentSource{Type: models.SourceTypeText, Name: "facts.txt"})
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, embedder.calls)
}

func TestDeleteAllEmptyCollection(t *testing.T) {
	collection := &stubCollection{getResult: stubGetResult{}}
	store := NewChromaStore(collection, &stubEmbedder{}, "rag_documents", "cosine")

	deleted, err := store.DeleteAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, deleted)
	assert.Zero(t, collection.deleteCalls)
}

func TestDeleteAllReportsDeletedCount(t *testing.T) {
	collection := &stubCollection{getResult: stubGetResult{ids: []chromago.DocumentID{"a", "b", "c"}}}
	store := NewChromaStore(collection, &stubEmbedder{}, "rag_documents", "cosine")

	deleted, err := store.DeleteAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)
	assert.Equal(t, 1, collection.deleteCalls)
}

func TestBuildRecordID(t *testing.T) {
	id := buildRecordID(models.SourceTypePDF, "report.pdf", 4)

	assert.True(t, strings.HasPrefix(id, "pdf_report.pdf_4_"))
	parts := strings.Split(id, "_")
	require.Len(t, parts, 4)
	assert.Len(t, parts[3], 8)

	// The random suffix keeps ids unique for identical provenance.
	other := buildRecordID(models.SourceTypePDF, "report.pdf", 4)
	assert.NotEqual(t, id, other)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity(0.0), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity(1.0), 1e-9)
	assert.InDelta(t, 0.75, cosineSimilarity(0.25), 1e-9)
}

func TestDecodeChunkMetadata(t *testing.T) {
	metadata := chromago.NewDocumentMetadata(
		chromago.NewStringAttribute("source_type", models.SourceTypeFile),
		chromago.NewStringAttribute("source_name", "/docs/notes.md"),
		chromago.NewIntAttribute("chunk_index", 3),
		chromago.NewStringAttribute("timestamp", "2025-06-01T10:00:00Z"),
		chromago.NewStringAttribute("file_hash", "deadbeef"),
	)

	decoded := decodeChunkMetadata(metadata)

	assert.Equal(t, models.SourceTypeFile, decoded.SourceType)
	assert.Equal(t, "/docs/notes.md", decoded.SourceName)
	assert.Equal(t, 3, decoded.ChunkIndex)
	assert.Equal(t, "2025-06-01T10:00:00Z", decoded.Timestamp)
	assert.Equal(t, "deadbeef", decoded.FileHash)
}

func TestDecodeChunkMetadataWithoutHash(t *testing.T) {
	metadata := chromago.NewDocumentMetadata(
		chromago.NewStringAttribute("source_type", models.SourceTypeText),
		chromago.NewStringAttribute("source_name", "user_input"),
		chromago.NewIntAttribute("chunk_index", 0),
		chromago.NewStringAttribute("timestamp", "2025-06-01T10:00:00Z"),
	)

	decoded := decodeChunkMetadata(metadata)

	assert.Equal(t, models.SourceTypeText, decoded.SourceType)
	assert.Empty(t, decoded.FileHash)
}

func TestDecodeChunkMetadataNil(t *testing.T) {
	decoded := decodeChunkMetadata(nil)
	assert.Equal(t, models.ChunkMetadata{}, decoded)
}
