// Package budget provides token budget estimation and prompt trimming for the
// generation services. Because several LLM backends with different tokenizers
// are supported, this package uses a conservative character-based heuristic:
// 1 token ≈ 4 characters (English prose). Inputs that exceed a budget are
// truncated, never sent unbounded.
package budget

const (
	// charsPerToken is the conservative character-to-token ratio used for
	// estimation.
	charsPerToken = 4

	// DefaultSummaryInputTokens caps the raw text placed into a summarization
	// prompt. Sized for 8k-context models with room for the instruction and output.
	DefaultSummaryInputTokens = 6000

	// DefaultContextTokens caps the retrieved passages placed into a
	// retrieval-answering prompt.
	DefaultContextTokens = 3000

	// TruncationMarker is appended to text cut by Truncate so the model (and
	// anyone reading traces) can tell the input was shortened.
	TruncationMarker = "\n\n[truncated]"
)

// Estimate returns a rough token count for s using the character heuristic.
func Estimate(s string) int {
	n := len(s) / charsPerToken
	if n == 0 && len(s) > 0 {
		return 1
	}
	return n
}

// Truncate returns s unchanged when it fits within maxTokens. Otherwise it
// keeps the head of s that fits and appends TruncationMarker. The cut is moved
// back to a rune boundary so multi-byte characters are never split.
// A non-positive maxTokens disables truncation.
func Truncate(s string, maxTokens int) (string, bool) {
	if maxTokens <= 0 || Estimate(s) <= maxTokens {
		return s, false
	}
	limit := maxTokens * charsPerToken
	if limit > len(s) {
		return s, false
	}
	// Step back over UTF-8 continuation bytes (10xxxxxx).
	for limit > 0 && s[limit]&0xC0 == 0x80 {
		limit--
	}
	return s[:limit] + TruncationMarker, true
}

// Fit returns the longest prefix of texts whose combined estimate fits within
// maxTokens. texts are expected in priority order (best first), so dropping
// from the tail discards the least relevant items. The first item is always
// kept, truncated if necessary, so a non-empty input never yields an empty
// context. A non-positive maxTokens keeps everything.
func Fit(texts []string, maxTokens int) []string {
	if maxTokens <= 0 || len(texts) == 0 {
		return texts
	}

	out := make([]string, 0, len(texts))
	used := 0
	for i, t := range texts {
		cost := Estimate(t)
		if used+cost > maxTokens {
			if i == 0 {
				head, _ := Truncate(t, maxTokens)
				out = append(out, head)
			}
			break
		}
		out = append(out, t)
		used += cost
	}
	return out
}
