package config

import (
	"embed"
	"fmt"
)

//go:embed defaults/*.yaml
var defaults embed.FS

// DefaultTaxonomy returns the built-in ten-category taxonomy.
func DefaultTaxonomy() (*Taxonomy, error) {
	data, err := defaults.ReadFile("defaults/taxonomy.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded taxonomy: %w", err)
	}
	return ParseTaxonomy(data)
}

// DefaultEnglishStoplist returns the built-in English stopword list.
func DefaultEnglishStoplist() (*Stoplist, error) {
	return embeddedStoplist("defaults/english.yaml")
}

// DefaultCustomStoplist returns the built-in Japanese particle and
// auxiliary list.
func DefaultCustomStoplist() (*Stoplist, error) {
	return embeddedStoplist("defaults/particles.yaml")
}

func embeddedStoplist(name string) (*Stoplist, error) {
	data, err := defaults.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read embedded stoplist: %w", err)
	}
	return ParseStoplist(data)
}
