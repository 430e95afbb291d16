package reelmeta

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/cognicore/reelmeta/pkg/reelmeta/ingest"
	"github.com/cognicore/reelmeta/pkg/reelmeta/internalerr"
)

var errMissingDir = fmt.Errorf("%w: output directory is required", internalerr.ErrInvalidInput)

// SceneAudio synthesizes narration for every scene into
// <dir>/<prefix>_scene_<id>.mp3 and returns the written paths by scene ID.
// Scenes that fail are left out and their errors joined.
func (e *Engine) SceneAudio(ctx context.Context, scenes []ingest.Scene, dir, prefix string) (map[int]string, error) {
	if e.synth == nil {
		return nil, fmt.Errorf("%w: no synthesizer configured", internalerr.ErrInvalidConfig)
	}
	if dir == "" {
		return nil, fmt.Errorf("scene audio: %w", errMissingDir)
	}
	if prefix == "" {
		prefix = "narration"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("scene audio: %w", err)
	}

	paths := make(map[int]string, len(scenes))
	var errs []error
	for _, sc := range scenes {
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		text := strings.TrimSpace(sc.Text)
		if text == "" {
			continue
		}
		audio, err := e.synth.Synthesize(ctx, text, ingest.DetectLanguage(text, e.lang))
		if err != nil {
			errs = append(errs, fmt.Errorf("scene %d: %w", sc.ID, err))
			continue
		}
		path := filepath.Join(dir, fmt.Sprintf("%s_scene_%d.mp3", prefix, sc.ID))
		if err := os.WriteFile(path, audio, 0o644); err != nil {
			errs = append(errs, fmt.Errorf("scene %d: %w", sc.ID, err))
			continue
		}
		e.logger.Debug("scene audio written", zap.Int("scene", sc.ID), zap.String("path", path))
		paths[sc.ID] = path
	}
	return paths, errors.Join(errs...)
}
