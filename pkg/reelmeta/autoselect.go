package reelmeta

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/cognicore/reelmeta/pkg/reelmeta/download"
	"github.com/cognicore/reelmeta/pkg/reelmeta/ingest"
	"github.com/cognicore/reelmeta/pkg/reelmeta/media"
	"github.com/cognicore/reelmeta/pkg/reelmeta/store"
)

// DefaultCandidates is how many assets AutoSelect requests per keyword.
const DefaultCandidates = 5

// AutoSelectOptions controls AutoSelect.
type AutoSelectOptions struct {
	// Dir receives downloaded files. Required.
	Dir string
	// Candidates is the per-keyword search size.
	Candidates int
	// Videos searches video providers instead of image providers.
	Videos bool
	// Prefix starts every file name; defaults to "scene".
	Prefix string
}

// SceneOutcome is the auto-selection result for one scene.
type SceneOutcome struct {
	SceneID   int
	Selection *store.Selection
	Err       error
}

// scenePlan carries the first round of one scene into the fallback round.
type scenePlan struct {
	searched  bool
	first     []media.Asset
	searchErr error
	tried     string
	fetched   *media.Asset
}

// AutoSelect picks one asset per scene. The top candidate of every scene's
// leading keyword is downloaded concurrently first. Scenes whose top
// candidate failed then walk their keywords in order, trying candidates
// one by one until a download succeeds. Only context cancellation aborts
// the whole run.
func (e *Engine) AutoSelect(ctx context.Context, scenes []ingest.Scene, opts AutoSelectOptions) ([]SceneOutcome, error) {
	if opts.Dir == "" {
		return nil, fmt.Errorf("autoselect: %w", errMissingDir)
	}
	if opts.Candidates <= 0 {
		opts.Candidates = DefaultCandidates
	}
	if opts.Prefix == "" {
		opts.Prefix = "scene"
	}

	plans, err := e.prefetch(ctx, scenes, opts)
	if err != nil {
		return nil, err
	}

	outcomes := make([]SceneOutcome, 0, len(scenes))
	for i, sc := range scenes {
		var (
			sel store.Selection
			err error
		)
		switch p := plans[i]; {
		case p.searchErr != nil:
			err = p.searchErr
		case p.fetched != nil:
			sel, err = e.store.Append(ctx, sc.ID, *p.fetched)
		default:
			sel, err = e.selectScene(ctx, sc, opts, p)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return outcomes, ctxErr
		}
		out := SceneOutcome{SceneID: sc.ID, Err: err}
		if err == nil {
			out.Selection = &sel
		} else {
			e.logger.Warn("no asset selected", zap.Int("scene", sc.ID), zap.Error(err))
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}

func (e *Engine) prefetch(ctx context.Context, scenes []ingest.Scene, opts AutoSelectOptions) ([]scenePlan, error) {
	plans := make([]scenePlan, len(scenes))
	var (
		jobs  []download.Job
		owner []int
	)
	for i, sc := range scenes {
		if len(sc.Keywords) == 0 {
			continue
		}
		cands, err := e.candidates(ctx, sc.Keywords[0], opts)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		plans[i] = scenePlan{searched: true, first: cands, searchErr: err}
		if err != nil || len(cands) == 0 {
			continue
		}
		plans[i].tried = cands[0].Key()
		jobs = append(jobs, download.Job{Asset: cands[0], Dest: e.destFor(sc.ID, cands[0], opts)})
		owner = append(owner, i)
	}

	for j, out := range e.downloader.DownloadAll(ctx, jobs) {
		if out.Err != nil {
			e.logger.Debug("top candidate failed",
				zap.Int("scene", scenes[owner[j]].ID),
				zap.String("asset", out.Asset.Key()),
				zap.Error(out.Err))
			continue
		}
		asset := out.Asset
		plans[owner[j]].fetched = &asset
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return plans, nil
}

func (e *Engine) selectScene(ctx context.Context, sc ingest.Scene, opts AutoSelectOptions, plan scenePlan) (store.Selection, error) {
	for i, kw := range sc.Keywords {
		var (
			candidates []media.Asset
			err        error
		)
		if i == 0 && plan.searched {
			candidates = plan.first
		} else {
			candidates, err = e.candidates(ctx, kw, opts)
		}
		if err != nil {
			return store.Selection{}, err
		}
		for _, asset := range candidates {
			if asset.Key() == plan.tried {
				continue
			}
			sel, err := e.Select(ctx, sc.ID, asset, e.destFor(sc.ID, asset, opts))
			if err == nil {
				return sel, nil
			}
			var dlErr *download.DownloadError
			if !errors.As(err, &dlErr) {
				return store.Selection{}, err
			}
			if ctx.Err() != nil {
				return store.Selection{}, ctx.Err()
			}
			e.logger.Debug("candidate skipped",
				zap.Int("scene", sc.ID),
				zap.String("asset", asset.Key()),
				zap.Error(err))
		}
	}
	return store.Selection{}, ErrNoAsset
}

func (e *Engine) candidates(ctx context.Context, keyword string, opts AutoSelectOptions) ([]media.Asset, error) {
	if opts.Videos {
		return e.FindVideos(ctx, keyword, opts.Candidates)
	}
	return e.SearchImages(ctx, keyword, opts.Candidates)
}

func (e *Engine) destFor(sceneID int, asset media.Asset, opts AutoSelectOptions) string {
	prefix := fmt.Sprintf("%s_%d", opts.Prefix, sceneID)
	return filepath.Join(opts.Dir, download.FileName(prefix, asset))
}
