package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/reelmeta/pkg/reelmeta/ingest"
	"github.com/cognicore/reelmeta/pkg/reelmeta/internalerr"
)

// Taxonomy represents the taxonomy configuration
type Taxonomy struct {
	Default    string           `yaml:"default"`
	Popular    []string         `yaml:"popular"`
	Categories []CategoryConfig `yaml:"categories"`
}

// CategoryConfig is one category of the taxonomy file
type CategoryConfig struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Tags     []string `yaml:"tags"`
}

// LoadTaxonomy loads taxonomy from a YAML file
func LoadTaxonomy(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseTaxonomy(data)
}

// ParseTaxonomy decodes and validates a taxonomy document
func ParseTaxonomy(data []byte) (*Taxonomy, error) {
	var tax Taxonomy
	if err := yaml.Unmarshal(data, &tax); err != nil {
		return nil, err
	}
	if err := tax.Validate(); err != nil {
		return nil, err
	}
	return &tax, nil
}

// Validate rejects unnamed or duplicated categories.
func (t *Taxonomy) Validate() error {
	seen := make(map[string]bool, len(t.Categories))
	for i, c := range t.Categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return fmt.Errorf("%w: category %d has no name", internalerr.ErrInvalidConfig, i)
		}
		if seen[name] {
			return fmt.Errorf("%w: duplicate category %q", internalerr.ErrInvalidConfig, name)
		}
		seen[name] = true
	}
	return nil
}

// Build converts the configuration into a classifier taxonomy. Tags are
// normalized to carry the # marker.
func (t *Taxonomy) Build() *ingest.Taxonomy {
	tax := ingest.NewTaxonomy()
	for _, c := range t.Categories {
		tax.AddCategory(strings.TrimSpace(c.Name), c.Keywords, normalizeTags(c.Tags))
	}
	tax.SetDefault(t.Default)
	tax.SetPopular(normalizeTags(t.Popular))
	return tax
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if !strings.HasPrefix(tag, "#") {
			tag = "#" + tag
		}
		out = append(out, tag)
	}
	return out
}

// Stoplist represents the stopword list configuration
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseStoplist(data)
}

// ParseStoplist decodes a stoplist document
func ParseStoplist(data []byte) (*Stoplist, error) {
	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, err
	}
	return &sl, nil
}
