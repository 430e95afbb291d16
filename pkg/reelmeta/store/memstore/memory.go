package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cognicore/reelmeta/pkg/reelmeta/internalerr"
	"github.com/cognicore/reelmeta/pkg/reelmeta/media"
	"github.com/cognicore/reelmeta/pkg/reelmeta/store"
)

// Store is an in-memory implementation of store.Store.
type Store struct {
	mu         sync.RWMutex
	ids        *store.IDSource
	now        func() time.Time
	selections map[int][]store.Selection
	searches   []store.SearchRecord
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		ids:        store.NewIDSource(),
		now:        time.Now,
		selections: make(map[int][]store.Selection),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// Append adds asset to the end of the scene's selections.
func (s *Store) Append(ctx context.Context, sceneID int, asset media.Asset) (store.Selection, error) {
	if err := store.ValidateScene(sceneID); err != nil {
		return store.Selection{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sel := store.Selection{
		EntryID: s.ids.Next(now),
		SceneID: sceneID,
		Asset:   asset,
		AddedAt: now,
	}
	s.selections[sceneID] = append(s.selections[sceneID], sel)
	return sel, nil
}

// Remove deletes one selection entry.
func (s *Store) Remove(ctx context.Context, sceneID int, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.selections[sceneID]
	for i, sel := range entries {
		if sel.EntryID != entryID {
			continue
		}
		entries = append(entries[:i:i], entries[i+1:]...)
		if len(entries) == 0 {
			delete(s.selections, sceneID)
		} else {
			s.selections[sceneID] = entries
		}
		return nil
	}
	return fmt.Errorf("%w: selection %s of scene %d", internalerr.ErrNotFound, entryID, sceneID)
}

// List returns the scene's selections in append order.
func (s *Store) List(ctx context.Context, sceneID int) ([]store.Selection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]store.Selection(nil), s.selections[sceneID]...), nil
}

// All returns every scene's selections.
func (s *Store) All(ctx context.Context) (map[int][]store.Selection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int][]store.Selection, len(s.selections))
	for id, entries := range s.selections {
		out[id] = append([]store.Selection(nil), entries...)
	}
	return out, nil
}

// Reset drops all selections and the search journal.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selections = make(map[int][]store.Selection)
	s.searches = nil
	return nil
}

// RecordSearch appends rec to the search journal.
func (s *Store) RecordSearch(ctx context.Context, rec store.SearchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.At.IsZero() {
		rec.At = s.now()
	}
	s.searches = append(s.searches, rec)
	return nil
}

// Searches returns up to limit journal entries, newest first.
func (s *Store) Searches(ctx context.Context, limit int) ([]store.SearchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.searches)
	if limit > 0 && n > limit {
		n = limit
	}
	out := make([]store.SearchRecord, 0, n)
	for i := len(s.searches) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.searches[i])
	}
	return out, nil
}
