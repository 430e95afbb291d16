package ingest

import (
	"sort"
	"strings"
)

// MaxCategories is the most categories Classify returns.
const MaxCategories = 3

// DefaultCategory is used when a taxonomy does not name its own fallback.
const DefaultCategory = "一般"

// Category is one taxonomy entry: the keywords that detect it and the tag
// pool hashtags are drawn from.
type Category struct {
	Name     string
	Keywords []string
	Tags     []string
}

// CategoryScore is the keyword hit count of one category for one text.
type CategoryScore struct {
	Name  string
	Score int
}

// Taxonomy is an ordered set of categories. Declaration order breaks score
// ties. It must not be modified once classification starts.
type Taxonomy struct {
	categories []Category
	index      map[string]int
	fallback   string
	popular    []string
}

// NewTaxonomy creates an empty taxonomy falling back to DefaultCategory.
func NewTaxonomy() *Taxonomy {
	return &Taxonomy{
		index:    make(map[string]int),
		fallback: DefaultCategory,
	}
}

// AddCategory appends a category, or replaces the one with the same name
// in place. Keywords are lower-cased for matching.
func (t *Taxonomy) AddCategory(name string, keywords, tags []string) {
	normalized := make([]string, 0, len(keywords))
	seen := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		normalized = append(normalized, kw)
	}
	cat := Category{
		Name:     name,
		Keywords: normalized,
		Tags:     append([]string(nil), tags...),
	}
	if i, ok := t.index[name]; ok {
		t.categories[i] = cat
		return
	}
	t.index[name] = len(t.categories)
	t.categories = append(t.categories, cat)
}

// SetDefault sets the category returned when nothing matches.
func (t *Taxonomy) SetDefault(name string) {
	if strings.TrimSpace(name) != "" {
		t.fallback = name
	}
}

// Default returns the fallback category name.
func (t *Taxonomy) Default() string { return t.fallback }

// SetPopular sets the general-purpose tag pool.
func (t *Taxonomy) SetPopular(tags []string) {
	t.popular = append([]string(nil), tags...)
}

// Popular returns the general-purpose tag pool.
func (t *Taxonomy) Popular() []string { return t.popular }

// Categories returns the categories in declaration order.
func (t *Taxonomy) Categories() []Category { return t.categories }

// Category looks a category up by name.
func (t *Taxonomy) Category(name string) (Category, bool) {
	i, ok := t.index[name]
	if !ok {
		return Category{}, false
	}
	return t.categories[i], true
}

// TagPools maps category name to its tag pool.
func (t *Taxonomy) TagPools() map[string][]string {
	pools := make(map[string][]string, len(t.categories))
	for _, c := range t.categories {
		pools[c.Name] = c.Tags
	}
	return pools
}

// Scores counts, per category in declaration order, how many of its
// keywords occur anywhere in text. Matching is plain substring containment,
// so a short keyword also hits inside longer words and overlapping keywords
// each count.
func (t *Taxonomy) Scores(text string) []CategoryScore {
	lowerText := strings.ToLower(text)

	scores := make([]CategoryScore, len(t.categories))
	for i, c := range t.categories {
		scores[i].Name = c.Name
		for _, kw := range c.Keywords {
			if strings.Contains(lowerText, kw) {
				scores[i].Score++
			}
		}
	}
	return scores
}

// Classify returns up to MaxCategories categories with a positive score,
// best first. It never returns an empty slice: without any hit it returns
// the default category alone.
func (t *Taxonomy) Classify(text string) []string {
	scores := t.Scores(text)
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})

	var result []string
	for _, s := range scores {
		if s.Score <= 0 || len(result) == MaxCategories {
			break
		}
		result = append(result, s.Name)
	}
	if len(result) == 0 {
		return []string{t.fallback}
	}
	return result
}
