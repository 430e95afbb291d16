// Package store holds the per-scene media selections of a run.
package store

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/reelmeta/pkg/reelmeta/internalerr"
	"github.com/cognicore/reelmeta/pkg/reelmeta/media"
)

// Store is the interface for recording selected assets per scene.
// Selections grow by append and shrink by removal; the same asset may be
// selected more than once.
type Store interface {
	Close() error

	// Selections
	Append(ctx context.Context, sceneID int, asset media.Asset) (Selection, error)
	Remove(ctx context.Context, sceneID int, entryID string) error
	List(ctx context.Context, sceneID int) ([]Selection, error)
	All(ctx context.Context) (map[int][]Selection, error)
	Reset(ctx context.Context) error

	// Search journal
	RecordSearch(ctx context.Context, rec SearchRecord) error
	Searches(ctx context.Context, limit int) ([]SearchRecord, error)
}

// Selection is one asset chosen for a scene.
type Selection struct {
	EntryID string
	SceneID int
	Asset   media.Asset
	AddedAt time.Time
}

// SearchRecord journals one federated search.
type SearchRecord struct {
	Keyword string
	Kind    media.Kind
	Lang    string
	Results int
	At      time.Time
}

// ValidateScene rejects scene ids below 1.
func ValidateScene(sceneID int) error {
	if sceneID < 1 {
		return fmt.Errorf("%w: scene id must be >= 1, got %d", internalerr.ErrInvalidInput, sceneID)
	}
	return nil
}

// IDSource issues lexically increasing ULID entry ids. It is safe for
// concurrent use.
type IDSource struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewIDSource creates an IDSource backed by crypto/rand.
func NewIDSource() *IDSource {
	return &IDSource{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// Next returns a new id for time t.
func (s *IDSource) Next(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}
