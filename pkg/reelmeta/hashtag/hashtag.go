// Package hashtag assembles randomized hashtag sets from category tag pools.
package hashtag

import (
	"math/rand/v2"
	"strings"

	"github.com/cognicore/reelmeta/internal/randx"
	"github.com/cognicore/reelmeta/pkg/reelmeta/ingest"
)

// DefaultMaxTags caps a generated hashtag set.
const DefaultMaxTags = 15

// Per-call sample sizes, both bounds inclusive.
const (
	minCategoryTags = 3
	maxCategoryTags = 5
	minGeneralTags  = 2
	maxGeneralTags  = 3
)

// Marker is the prefix every hashtag carries.
const Marker = "#"

// Assemble draws 3–5 tags from the pool of each known category and 2–3
// from general, unions them keeping first insertion order, and downsamples
// to maxTags when the union is larger. Sample sizes are clamped to the
// pool size. Categories without a pool are ignored.
func Assemble(r *rand.Rand, categories []string, pools map[string][]string, general []string, maxTags int) []string {
	if maxTags <= 0 {
		return []string{}
	}

	var drawn []string
	for _, cat := range categories {
		pool, ok := pools[cat]
		if !ok {
			continue
		}
		drawn = append(drawn, sample(r, pool, between(r, minCategoryTags, maxCategoryTags))...)
	}
	drawn = append(drawn, sample(r, general, between(r, minGeneralTags, maxGeneralTags))...)

	unique := make([]string, 0, len(drawn))
	seen := make(map[string]struct{}, len(drawn))
	for _, tag := range drawn {
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		unique = append(unique, tag)
	}

	if len(unique) > maxTags {
		unique = sample(r, unique, maxTags)
	}
	return unique
}

func between(r *rand.Rand, lo, hi int) int {
	return lo + r.IntN(hi-lo+1)
}

// sample returns k distinct elements of pool in draw order without
// modifying pool.
func sample(r *rand.Rand, pool []string, k int) []string {
	if k > len(pool) {
		k = len(pool)
	}
	if k <= 0 {
		return nil
	}
	work := append([]string(nil), pool...)
	for i := 0; i < k; i++ {
		j := i + r.IntN(len(work)-i)
		work[i], work[j] = work[j], work[i]
	}
	return work[:k]
}

// Format joins tags with sep.
func Format(tags []string, sep string) string {
	return strings.Join(tags, sep)
}

// Normalize trims tag and prefixes the marker when it is missing. A blank
// tag stays blank.
func Normalize(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" || strings.HasPrefix(tag, Marker) {
		return tag
	}
	return Marker + tag
}

// Assembler generates hashtags for text using a taxonomy's tag pools.
type Assembler struct {
	taxonomy *ingest.Taxonomy
	rand     *rand.Rand
	maxTags  int
}

// NewAssembler creates an assembler over taxonomy. A nil r gets an
// unpredictably seeded source.
func NewAssembler(taxonomy *ingest.Taxonomy, r *rand.Rand) *Assembler {
	if r == nil {
		r = randx.Random()
	}
	return &Assembler{taxonomy: taxonomy, rand: r, maxTags: DefaultMaxTags}
}

// SetMaxTags changes the default cap used by Generate.
func (a *Assembler) SetMaxTags(n int) { a.maxTags = n }

// MaxTags returns the default cap used by Generate.
func (a *Assembler) MaxTags() int { return a.maxTags }

// Generate returns hashtags for text capped at the assembler's MaxTags.
// Without explicit categories the text is classified first.
func (a *Assembler) Generate(text string, categories ...string) []string {
	return a.GenerateN(text, a.maxTags, categories...)
}

// GenerateN is Generate with an explicit cap.
func (a *Assembler) GenerateN(text string, maxTags int, categories ...string) []string {
	if len(categories) == 0 {
		categories = a.taxonomy.Classify(text)
	}
	return Assemble(a.rand, categories, a.taxonomy.TagPools(), a.taxonomy.Popular(), maxTags)
}
