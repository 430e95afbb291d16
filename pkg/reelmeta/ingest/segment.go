package ingest

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cognicore/reelmeta/pkg/reelmeta/internalerr"
)

// DefaultMaxKeywords is the number of keywords attached to each scene.
const DefaultMaxKeywords = 5

// ErrEmptyScript is returned when a script has no non-blank block.
var ErrEmptyScript = fmt.Errorf("%w: script contains no scenes", internalerr.ErrInvalidInput)

var sceneBreak = regexp.MustCompile(`\n{2,}`)

// Scene is one blank-line separated block of a script.
type Scene struct {
	ID       int      `json:"id"`       // 1-based position in the script
	Text     string   `json:"text"`     // trimmed block text
	Keywords []string `json:"keywords"` // frequency-descending, at most MaxKeywords
}

// Key is the scene's stable string identifier, e.g. "scene_3".
func (s Scene) Key() string {
	return fmt.Sprintf("scene_%d", s.ID)
}

// Segmenter splits scripts into scenes.
type Segmenter struct {
	extractor   *Extractor
	maxKeywords int
}

// NewSegmenter creates a segmenter attaching DefaultMaxKeywords keywords per scene.
func NewSegmenter(extractor *Extractor) *Segmenter {
	return &Segmenter{extractor: extractor, maxKeywords: DefaultMaxKeywords}
}

// SetMaxKeywords overrides the per-scene keyword count. Negative values are treated as zero.
func (s *Segmenter) SetMaxKeywords(n int) {
	if n < 0 {
		n = 0
	}
	s.maxKeywords = n
}

// Segment splits script on runs of two or more newlines. Each non-blank
// block becomes a Scene numbered from 1 in source order.
func (s *Segmenter) Segment(script string) ([]Scene, error) {
	script = strings.ReplaceAll(script, "\r\n", "\n")

	var scenes []Scene
	for _, block := range sceneBreak.Split(script, -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		scenes = append(scenes, Scene{
			ID:       len(scenes) + 1,
			Text:     block,
			Keywords: s.extractor.Extract(block, s.maxKeywords),
		})
	}
	if len(scenes) == 0 {
		return nil, ErrEmptyScript
	}
	return scenes, nil
}

// Join rebuilds script content from scenes, separated by a blank line.
func Join(scenes []Scene) string {
	texts := make([]string, len(scenes))
	for i, sc := range scenes {
		texts[i] = sc.Text
	}
	return strings.Join(texts, "\n\n")
}
