// Package ingestion fetches a tenant's source pages, extracts their visible
// text, and stores embedded chunks for retrieval. It runs offline, never
// concurrently with itself for the same tenant.
package ingestion

import "strings"

// ChunkText splits text into overlapping slices of at most size characters,
// advancing by size-overlap each step. The trailing partial slice is kept.
// Each slice is whitespace-normalized; empty slices are dropped. Slicing is
// rune-based so umlauts never get cut in half.
func ChunkText(text string, size, overlap int) []string {
	if size <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	runes := []rune(text)
	step := size - overlap
	out := make([]string, 0, len(runes)/step+1)
	for i := 0; i < len(runes); i += step {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		piece := normalizeWhitespace(string(runes[i:end]))
		if piece != "" {
			out = append(out, piece)
		}
	}
	return out
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
