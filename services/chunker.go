package services

import "strings"

// ChunkText splits text into overlapping fixed-size windows. The window
// is chunkSize runes wide and advances by chunkSize-overlap each step,
// so consecutive chunks share overlap runes. Every window is trimmed
// and whitespace-only windows are dropped. The split is purely
// character-based and can cut through words or sentences.
//
// Invalid parameters (non-positive size, negative overlap, or overlap
// not smaller than size) yield nil since the window could not advance.
func ChunkText(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 || overlap < 0 || overlap >= chunkSize {
		return nil
	}

	runes := []rune(text)
	var chunks []string
	for start := 0; start < len(runes); start += chunkSize - overlap {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}
