package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkTextEmptyInput(t *testing.T) {
	assert.Empty(t, ChunkText("", 20, 5))
	assert.Empty(t, ChunkText("   \n\t  ", 20, 5))
}

func TestChunkTextShortInput(t *testing.T) {
	chunks := ChunkText("  hello  ", 20, 5)
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello", chunks[0])
}

func TestChunkTextInvalidParams(t *testing.T) {
	assert.Nil(t, ChunkText("some text", 0, 0))
	assert.Nil(t, ChunkText("some text", -1, 0))
	assert.Nil(t, ChunkText("some text", 10, -1))
	assert.Nil(t, ChunkText("some text", 10, 10))
	assert.Nil(t, ChunkText("some text", 10, 15))
}

func TestChunkTextWindowing(t *testing.T) {
	text := "The sky is blue. Grass is green."
	chunks := ChunkText(text, 20, 5)

	require.GreaterOrEqual(t, len(chunks), 2)
	require.LessOrEqual(t, len(chunks), 3)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 20)
		assert.Equal(t, strings.TrimSpace(c), c)
		assert.NotEmpty(t, c)
	}
	assert.Contains(t, chunks[0], "sky is blue")
}

func TestChunkTextOverlap(t *testing.T) {
	// No whitespace, so trimming is a no-op and the overlap is exact.
	chunks := ChunkText("abcdefghij", 4, 2)

	require.Equal(t, []string{"abcd", "cdef", "efgh", "ghij", "ij"}, chunks)
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		assert.True(t, strings.HasPrefix(chunks[i], prev[len(prev)-2:]))
	}
}

func TestChunkTextReconstruction(t *testing.T) {
	text := "abcdefghijklmnopqrstuvwxyz"
	overlap := 3
	chunks := ChunkText(text, 8, overlap)
	require.NotEmpty(t, chunks)

	rebuilt := chunks[0]
	for _, c := range chunks[1:] {
		if len(c) > overlap {
			rebuilt += c[overlap:]
		}
	}
	assert.Equal(t, text, rebuilt)
}

func TestChunkTextDropsWhitespaceWindows(t *testing.T) {
	text := "aaaa" + strings.Repeat(" ", 12) + "bbbb"
	chunks := ChunkText(text, 4, 0)

	for _, c := range chunks {
		assert.NotEmpty(t, strings.TrimSpace(c))
	}
	assert.Contains(t, chunks, "aaaa")
	assert.Contains(t, chunks, "bbbb")
}

func TestChunkTextCountsRunesNotBytes(t *testing.T) {
	text := strings.Repeat("é", 10)
	chunks := ChunkText(text, 4, 0)

	require.Len(t, chunks, 3)
	assert.Equal(t, 4, utf8.RuneCountInString(chunks[0]))
	assert.Equal(t, 4, utf8.RuneCountInString(chunks[1]))
	assert.Equal(t, 2, utf8.RuneCountInString(chunks[2]))
}
