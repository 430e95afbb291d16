package stoplist

import (
	"sort"
	"strings"
)

// Source names the list a stopword came from
type Source string

const (
	SourceEnglish  Source = "english"
	SourceJapanese Source = "japanese"
	SourceCustom   Source = "custom"
)

// Manager holds the union of all configured stopword lists.
// It is read-only once the tokenizer starts using it.
type Manager struct {
	stops map[string]Source
}

// NewManager creates an empty stoplist manager
func NewManager() *Manager {
	return &Manager{stops: make(map[string]Source)}
}

// Merge adds terms from one source. Terms are lower-cased; a term already
// present keeps the source that added it first.
func (m *Manager) Merge(source Source, terms []string) {
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := m.stops[t]; ok {
			continue
		}
		m.stops[t] = source
	}
}

// IsStop checks if a token is a stopword
func (m *Manager) IsStop(token string) bool {
	if m == nil {
		return false
	}
	_, ok := m.stops[token]
	return ok
}

// Count returns the number of stopwords contributed by source
func (m *Manager) Count(source Source) int {
	n := 0
	for _, s := range m.stops {
		if s == source {
			n++
		}
	}
	return n
}

// Len returns the size of the union
func (m *Manager) Len() int { return len(m.stops) }

// All returns all stopwords, sorted
func (m *Manager) All() []string {
	result := make([]string, 0, len(m.stops))
	for s := range m.stops {
		result = append(result, s)
	}
	sort.Strings(result)
	return result
}
