// Package federation fans a keyword out to several media providers and
// merges their results into one bounded list.
package federation

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cognicore/reelmeta/internal/randx"
	"github.com/cognicore/reelmeta/pkg/reelmeta/ingest"
	"github.com/cognicore/reelmeta/pkg/reelmeta/internalerr"
	"github.com/cognicore/reelmeta/pkg/reelmeta/media"
	"github.com/cognicore/reelmeta/pkg/reelmeta/provider"
)

// ErrEmptyKeyword is returned for a blank search keyword.
var ErrEmptyKeyword = fmt.Errorf("%w: empty search keyword", internalerr.ErrInvalidInput)

const (
	DefaultWorkers = 3
	DefaultLang    = "ja"
)

// Options configures a Searcher.
type Options struct {
	Images []provider.Adapter
	Videos []provider.Adapter

	// Rand orders providers per call; nil gets an unpredictable seed.
	Rand *rand.Rand

	// Workers bounds concurrent provider calls. 1 queries providers one
	// at a time and stops as soon as enough assets arrived.
	Workers int

	// DefaultLang is the language hint when the keyword gives none.
	DefaultLang string

	Logger  *zap.Logger
	Metrics *Metrics
}

// Searcher federates searches across adapters. It holds no per-call
// state and may be shared.
type Searcher struct {
	images  []provider.Adapter
	videos  []provider.Adapter
	rand    *rand.Rand
	workers int
	lang    string
	logger  *zap.Logger
	metrics *Metrics
}

// New creates a Searcher.
func New(opts Options) *Searcher {
	s := &Searcher{
		images:  append([]provider.Adapter(nil), opts.Images...),
		videos:  append([]provider.Adapter(nil), opts.Videos...),
		rand:    opts.Rand,
		workers: opts.Workers,
		lang:    opts.DefaultLang,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
	if s.rand == nil {
		s.rand = randx.Random()
	}
	if s.workers <= 0 {
		s.workers = DefaultWorkers
	}
	if s.lang == "" {
		s.lang = DefaultLang
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Providers lists the configured image and video adapter names.
func (s *Searcher) Providers() (images, videos []string) {
	for _, a := range s.images {
		images = append(images, a.Name())
	}
	for _, a := range s.videos {
		videos = append(videos, a.Name())
	}
	return images, videos
}

// Search returns at most max images for keyword. Providers are tried in a
// fresh random order on every call and their results are merged in that
// order. Provider failures only reduce the result count.
func (s *Searcher) Search(ctx context.Context, keyword string, max int) ([]media.Asset, error) {
	if err := validate(keyword, max); err != nil {
		return nil, err
	}
	return s.federate(ctx, s.images, keyword, max, max)
}

// FindVideos asks every video provider for up to perPage clips and returns
// all of them merged in randomized provider order.
func (s *Searcher) FindVideos(ctx context.Context, keyword string, perPage int) ([]media.Asset, error) {
	if err := validate(keyword, perPage); err != nil {
		return nil, err
	}
	return s.federate(ctx, s.videos, keyword, perPage, perPage*len(s.videos))
}

func validate(keyword string, max int) error {
	if strings.TrimSpace(keyword) == "" {
		return ErrEmptyKeyword
	}
	if max <= 0 {
		return fmt.Errorf("%w: result limit must be positive, got %d", internalerr.ErrInvalidInput, max)
	}
	return nil
}

// federate queries adapters with perProvider as the per-call limit and
// truncates the merged list to limit.
func (s *Searcher) federate(ctx context.Context, adapters []provider.Adapter, keyword string, perProvider, limit int) ([]media.Asset, error) {
	keyword = strings.TrimSpace(keyword)
	order := s.shuffled(adapters)
	q := media.Query{
		Keyword:    keyword,
		MaxResults: perProvider,
		Lang:       ingest.DetectLanguage(keyword, s.lang),
	}

	var results []provider.Result
	if s.workers == 1 {
		results = s.sequential(ctx, order, q, limit)
	} else {
		results = s.parallel(ctx, order, q)
	}

	merged := make([]media.Asset, 0, limit)
	for _, res := range results {
		for _, a := range res.Assets {
			if len(merged) == limit {
				break
			}
			merged = append(merged, a)
		}
	}

	s.logger.Debug("federated search",
		zap.String("keyword", keyword),
		zap.String("lang", q.Lang),
		zap.Int("providers", len(order)),
		zap.Int("assets", len(merged)))

	if err := ctx.Err(); err != nil && len(merged) == 0 {
		return nil, err
	}
	return merged, nil
}

func (s *Searcher) shuffled(adapters []provider.Adapter) []provider.Adapter {
	order := append([]provider.Adapter(nil), adapters...)
	s.rand.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	return order
}

func (s *Searcher) sequential(ctx context.Context, order []provider.Adapter, q media.Query, limit int) []provider.Result {
	results := make([]provider.Result, 0, len(order))
	got := 0
	for _, a := range order {
		if got >= limit || ctx.Err() != nil {
			break
		}
		res := s.call(ctx, a, q)
		got += len(res.Assets)
		results = append(results, res)
	}
	return results
}

// parallel runs every adapter under a bounded group. results[i] belongs to
// order[i] regardless of completion order.
func (s *Searcher) parallel(ctx context.Context, order []provider.Adapter, q media.Query) []provider.Result {
	results := make([]provider.Result, len(order))

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, a := range order {
		g.Go(func() error {
			results[i] = s.call(ctx, a, q)
			return nil
		})
	}
	g.Wait()
	return results
}

func (s *Searcher) call(ctx context.Context, a provider.Adapter, q media.Query) provider.Result {
	start := time.Now()
	res := a.Search(ctx, q)
	if res.Provider == "" {
		res.Provider = a.Name()
	}
	if res.Status != provider.StatusOK {
		res.Assets = nil
	}
	s.metrics.observe(res, time.Since(start).Seconds())

	switch res.Status {
	case provider.StatusFailed:
		s.logger.Info("provider contributed no results",
			zap.String("provider", res.Provider),
			zap.String("keyword", q.Keyword),
			zap.Error(res.Err))
	case provider.StatusSkipped:
		s.logger.Debug("provider skipped", zap.String("provider", res.Provider))
	}
	return res
}
