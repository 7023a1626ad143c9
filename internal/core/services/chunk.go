package services

import "strings"

// Chunking defaults. Token counts are approximated by word counts; a real
// tokenizer could be substituted without changing chunk determinism or the
// overlap semantics.
const (
	DefaultMaxChunkTokens = 500
	DefaultChunkOverlap   = 50
)

// ChunkText splits text on whitespace into words and produces fixed-size
// windows of maxTokens words, advancing maxTokens-overlap words per step so
// consecutive chunks share overlap words. The final window may be shorter.
// The split is deterministic: the same text always yields the same chunks.
func ChunkText(text string, maxTokens, overlap int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := maxTokens - overlap
	if step <= 0 {
		step = maxTokens
	}

	var chunks []string
	for start := 0; start < len(words); start += step {
		end := start + maxTokens
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}
	return chunks
}
