package config

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cognicore/reelmeta/pkg/reelmeta/ingest"
	"github.com/cognicore/reelmeta/pkg/reelmeta/stoplist"
)

// Loader loads all configuration files and constructs components.
// Empty paths select the embedded defaults, except JapaneseStoplistPath
// which has no built-in list.
type Loader struct {
	TaxonomyPath         string
	EnglishStoplistPath  string
	JapaneseStoplistPath string
	CustomStoplistPath   string
	Logger               *zap.Logger
}

// Components holds all loaded configuration components
type Components struct {
	Stoplist  *stoplist.Manager
	Tokenizer *ingest.Tokenizer
	Extractor *ingest.Extractor
	Segmenter *ingest.Segmenter
	Taxonomy  *ingest.Taxonomy
}

// Load reads all configuration files and returns initialized components.
// A missing or unreadable Japanese stoplist is skipped with a warning; any
// other failure is returned.
func (l *Loader) Load() (*Components, error) {
	logger := l.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	stops := stoplist.NewManager()

	english, err := l.loadStoplist(l.EnglishStoplistPath, DefaultEnglishStoplist)
	if err != nil {
		return nil, fmt.Errorf("load english stoplist: %w", err)
	}
	stops.Merge(stoplist.SourceEnglish, english.Terms)

	if l.JapaneseStoplistPath != "" {
		japanese, err := LoadStoplist(l.JapaneseStoplistPath)
		if err != nil {
			logger.Warn("japanese stoplist unavailable, continuing without it",
				zap.String("path", l.JapaneseStoplistPath), zap.Error(err))
		} else {
			stops.Merge(stoplist.SourceJapanese, japanese.Terms)
		}
	}

	custom, err := l.loadStoplist(l.CustomStoplistPath, DefaultCustomStoplist)
	if err != nil {
		return nil, fmt.Errorf("load custom stoplist: %w", err)
	}
	stops.Merge(stoplist.SourceCustom, custom.Terms)

	var taxConfig *Taxonomy
	if l.TaxonomyPath != "" {
		taxConfig, err = LoadTaxonomy(l.TaxonomyPath)
	} else {
		taxConfig, err = DefaultTaxonomy()
	}
	if err != nil {
		return nil, fmt.Errorf("load taxonomy: %w", err)
	}

	tokenizer := ingest.NewTokenizer(stops)
	extractor := ingest.NewExtractor(tokenizer)
	comp := &Components{
		Stoplist:  stops,
		Tokenizer: tokenizer,
		Extractor: extractor,
		Segmenter: ingest.NewSegmenter(extractor),
		Taxonomy:  taxConfig.Build(),
	}

	logger.Debug("configuration loaded",
		zap.Int("stopwords", stops.Len()),
		zap.Int("stopwords_english", stops.Count(stoplist.SourceEnglish)),
		zap.Int("stopwords_japanese", stops.Count(stoplist.SourceJapanese)),
		zap.Int("stopwords_custom", stops.Count(stoplist.SourceCustom)),
		zap.Int("categories", len(taxConfig.Categories)))

	return comp, nil
}

func (l *Loader) loadStoplist(path string, fallback func() (*Stoplist, error)) (*Stoplist, error) {
	if path == "" {
		return fallback()
	}
	return LoadStoplist(path)
}
