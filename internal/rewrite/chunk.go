// Package rewrite turns article text into summaries and commentary through the language model.
package rewrite

import "errors"

// ErrInvalidChunkSize is returned for a non-positive window size.
var ErrInvalidChunkSize = errors.New("chunk size must be positive")

// Split cuts text into consecutive windows of at most maxChars code points.
// Empty text yields no chunks.
func Split(text string, maxChars int) ([]string, error) {
	if maxChars <= 0 {
		return nil, ErrInvalidChunkSize
	}
	runes := []rune(text)
	if len(runes) == 0 {
		return nil, nil
	}

	chunks := make([]string, 0, (len(runes)+maxChars-1)/maxChars)
	for start := 0; start < len(runes); start += maxChars {
		end := start + maxChars
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks, nil
}
