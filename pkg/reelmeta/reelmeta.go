// Package reelmeta turns a script into short-video metadata: scenes with
// keywords, categories, hashtags and per-scene media selections.
package reelmeta

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cognicore/reelmeta/pkg/reelmeta/download"
	"github.com/cognicore/reelmeta/pkg/reelmeta/federation"
	"github.com/cognicore/reelmeta/pkg/reelmeta/hashtag"
	"github.com/cognicore/reelmeta/pkg/reelmeta/ingest"
	"github.com/cognicore/reelmeta/pkg/reelmeta/internalerr"
	"github.com/cognicore/reelmeta/pkg/reelmeta/media"
	"github.com/cognicore/reelmeta/pkg/reelmeta/store"
	"github.com/cognicore/reelmeta/pkg/reelmeta/store/memstore"
)

// ErrNoAsset is reported for a scene where no candidate could be stored.
var ErrNoAsset = errors.New("no downloadable asset found")

// Synthesizer turns text into audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, lang string) ([]byte, error)
}

// Engine is the pipeline context: every collaborator a run needs, built
// once and passed explicitly.
type Engine struct {
	pipeline   *ingest.Pipeline
	assembler  *hashtag.Assembler
	searcher   *federation.Searcher
	downloader *download.Downloader
	store      store.Store
	synth      Synthesizer
	lang       string
	logger     *zap.Logger
}

// Options configures an Engine. Pipeline and Assembler are required.
type Options struct {
	Pipeline    *ingest.Pipeline
	Assembler   *hashtag.Assembler
	Searcher    *federation.Searcher
	Downloader  *download.Downloader
	Store       store.Store
	Synthesizer Synthesizer
	DefaultLang string
	Logger      *zap.Logger
}

// New creates an Engine. A missing store defaults to memstore, a missing
// searcher to one without providers.
func New(opts Options) (*Engine, error) {
	if opts.Pipeline == nil || opts.Assembler == nil {
		return nil, fmt.Errorf("%w: pipeline and assembler are required", internalerr.ErrInvalidConfig)
	}
	e := &Engine{
		pipeline:   opts.Pipeline,
		assembler:  opts.Assembler,
		searcher:   opts.Searcher,
		downloader: opts.Downloader,
		store:      opts.Store,
		synth:      opts.Synthesizer,
		lang:       opts.DefaultLang,
		logger:     opts.Logger,
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.lang == "" {
		e.lang = federation.DefaultLang
	}
	if e.searcher == nil {
		e.searcher = federation.New(federation.Options{DefaultLang: e.lang, Logger: e.logger})
	}
	if e.downloader == nil {
		e.downloader = download.New(download.Options{Logger: e.logger})
	}
	if e.store == nil {
		e.store = memstore.New()
	}
	return e, nil
}

// Close cleanly shuts down the engine's store.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Segment splits script into scenes with keywords.
func (e *Engine) Segment(script string) ([]ingest.Scene, error) {
	return e.pipeline.Segmenter().Segment(script)
}

// Classify returns up to three categories for text, never none.
func (e *Engine) Classify(text string) []string {
	return e.pipeline.Taxonomy().Classify(text)
}

// Hashtags builds a hashtag set for text. Without categories the text is
// classified first; maxTags <= 0 selects the assembler default.
func (e *Engine) Hashtags(text string, maxTags int, categories ...string) []string {
	if maxTags <= 0 {
		maxTags = e.assembler.MaxTags()
	}
	return e.assembler.GenerateN(text, maxTags, categories...)
}

// FormatHashtags joins tags with sep.
func (e *Engine) FormatHashtags(tags []string, sep string) string {
	return hashtag.Format(tags, sep)
}

// SearchImages federates an image search.
func (e *Engine) SearchImages(ctx context.Context, keyword string, max int) ([]media.Asset, error) {
	assets, err := e.searcher.Search(ctx, keyword, max)
	if err != nil {
		return nil, err
	}
	e.journal(ctx, keyword, media.KindImage, len(assets))
	return assets, nil
}

// FindVideos federates a video search.
func (e *Engine) FindVideos(ctx context.Context, keyword string, perPage int) ([]media.Asset, error) {
	assets, err := e.searcher.FindVideos(ctx, keyword, perPage)
	if err != nil {
		return nil, err
	}
	e.journal(ctx, keyword, media.KindVideo, len(assets))
	return assets, nil
}

func (e *Engine) journal(ctx context.Context, keyword string, kind media.Kind, results int) {
	rec := store.SearchRecord{
		Keyword: strings.TrimSpace(keyword),
		Kind:    kind,
		Lang:    ingest.DetectLanguage(keyword, e.lang),
		Results: results,
	}
	if err := e.store.RecordSearch(ctx, rec); err != nil {
		e.logger.Warn("search journal write failed", zap.Error(err))
	}
}

// Select stores asset for the scene. With a destination the asset is
// downloaded first and only recorded once the file is complete; without
// one it is recorded as given.
func (e *Engine) Select(ctx context.Context, sceneID int, asset media.Asset, dest string) (store.Selection, error) {
	if err := store.ValidateScene(sceneID); err != nil {
		return store.Selection{}, err
	}
	if dest != "" {
		fetched, err := e.downloader.Fetch(ctx, asset, dest)
		if err != nil {
			return store.Selection{}, err
		}
		asset = fetched
	}
	return e.store.Append(ctx, sceneID, asset)
}

// Deselect removes one selection entry.
func (e *Engine) Deselect(ctx context.Context, sceneID int, entryID string) error {
	return e.store.Remove(ctx, sceneID, entryID)
}

// Selections returns every scene's selections.
func (e *Engine) Selections(ctx context.Context) (map[int][]store.Selection, error) {
	return e.store.All(ctx)
}

// ClearScenes drops the selections of the given scenes. Other scenes and
// the search journal are kept.
func (e *Engine) ClearScenes(ctx context.Context, scenes []ingest.Scene) error {
	for _, sc := range scenes {
		sels, err := e.store.List(ctx, sc.ID)
		if err != nil {
			return err
		}
		for _, sel := range sels {
			if err := e.store.Remove(ctx, sc.ID, sel.EntryID); err != nil {
				return err
			}
		}
	}
	return nil
}

// Ready reports whether every scene has at least one selected asset.
func (e *Engine) Ready(ctx context.Context, scenes []ingest.Scene) (bool, error) {
	if len(scenes) == 0 {
		return false, nil
	}
	all, err := e.store.All(ctx)
	if err != nil {
		return false, err
	}
	for _, sc := range scenes {
		if len(all[sc.ID]) == 0 {
			return false, nil
		}
	}
	return true, nil
}

// Report is the text-side result of processing one script.
type Report struct {
	Scenes     []ingest.Scene `json:"scenes"`
	Categories []string       `json:"categories"`
	Hashtags   []string       `json:"hashtags"`
	Language   string         `json:"language"`
}

// Process segments and classifies script and assembles its hashtags.
func (e *Engine) Process(ctx context.Context, script string) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	processed, err := e.pipeline.Process(script, e.lang)
	if err != nil {
		return Report{}, err
	}
	tags := e.assembler.Generate(script, processed.Categories...)

	e.logger.Debug("script processed",
		zap.Int("scenes", len(processed.Scenes)),
		zap.Strings("categories", processed.Categories),
		zap.Int("hashtags", len(tags)))

	return Report{
		Scenes:     processed.Scenes,
		Categories: processed.Categories,
		Hashtags:   tags,
		Language:   processed.Language,
	}, nil
}
