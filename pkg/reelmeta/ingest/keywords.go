package ingest

import "sort"

// Extractor ranks a text's candidate terms by frequency.
type Extractor struct {
	tokenizer *Tokenizer
}

// NewExtractor creates a keyword extractor over tokenizer.
func NewExtractor(tokenizer *Tokenizer) *Extractor {
	return &Extractor{tokenizer: tokenizer}
}

// Extract returns up to max terms of text ordered by descending frequency.
// Ties keep first-seen order. The result is never nil.
func (e *Extractor) Extract(text string, max int) []string {
	if max <= 0 {
		return []string{}
	}

	counts := make(map[string]int)
	var order []string
	for tok := range e.tokenizer.Normalize(text) {
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}

	// order is first-seen; a stable sort keeps it as the tie-break
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > max {
		order = order[:max]
	}
	out := make([]string, len(order))
	copy(out, order)
	return out
}
