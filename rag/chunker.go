package rag

import "strings"

// SplitText splits normalized text into chunks of at most size characters,
// consecutive chunks sharing up to overlap characters of boundary content.
// Sizes count runes, not bytes, so multi-byte scripts never split inside a
// character. Output is deterministic, preserves order, and covers the whole
// input. Empty input yields no chunks.
func SplitText(text string, size, overlap int) []string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= size {
		return []string{string(runes)}
	}
	var chunks []string
	for start := 0; start < len(runes); {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
		start = end - overlap
		if start < 0 {
			start = 0
		}
	}
	return chunks
}
