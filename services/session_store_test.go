package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdullahkazmii/ragserver/models"
)

func TestSessionStoreEnsureCreatesSession(t *testing.T) {
	store := NewSessionStore()

	id := store.Ensure("")
	require.NotEmpty(t, id)

	messages, ok := store.History(id)
	assert.True(t, ok)
	assert.Empty(t, messages)
}

func TestSessionStoreEnsureKeepsExistingSession(t *testing.T) {
	store := NewSessionStore()

	id := store.Ensure("")
	store.Append(id, models.RoleUser, "hello", nil)

	assert.Equal(t, id, store.Ensure(id))
	messages, ok := store.History(id)
	require.True(t, ok)
	assert.Len(t, messages, 1)
}

func TestSessionStoreEnsureReplacesUnknownID(t *testing.T) {
	store := NewSessionStore()

	id := store.Ensure("stale-id-from-before-restart")
	assert.NotEqual(t, "stale-id-from-before-restart", id)

	_, ok := store.History("stale-id-from-before-restart")
	assert.False(t, ok)
}

func TestSessionStoreAppendRecordsTranscript(t *testing.T) {
	store := NewSessionStore()
	id := store.Ensure("")

	sources := []models.Source{{Type: models.SourceVectorDB, Source: "weather.txt", Similarity: 0.9}}
	store.Append(id, models.RoleUser, "What color is the sky?", nil)
	store.Append(id, models.RoleAssistant, "The sky is blue.", sources)

	messages, ok := store.History(id)
	require.True(t, ok)
	require.Len(t, messages, 2)

	assert.Equal(t, models.RoleUser, messages[0].Role)
	assert.Equal(t, "What color is the sky?", messages[0].Content)
	assert.Empty(t, messages[0].Sources)
	assert.NotEmpty(t, messages[0].Timestamp)

	assert.Equal(t, models.RoleAssistant, messages[1].Role)
	assert.Equal(t, "The sky is blue.", messages[1].Content)
	assert.Equal(t, sources, messages[1].Sources)
}

func TestSessionStoreHistoryReturnsCopy(t *testing.T) {
	store := NewSessionStore()
	id := store.Ensure("")
	store.Append(id, models.RoleUser, "original", nil)

	messages, _ := store.History(id)
	messages[0].Content = "mutated"

	fresh, _ := store.History(id)
	assert.Equal(t, "original", fresh[0].Content)
}

func TestSessionStoreDelete(t *testing.T) {
	store := NewSessionStore()
	id := store.Ensure("")

	assert.True(t, store.Delete(id))
	_, ok := store.History(id)
	assert.False(t, ok)

	assert.False(t, store.Delete(id))
	assert.False(t, store.Delete("never-existed"))
}
