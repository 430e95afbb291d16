// Package storetest checks store.Store implementations against the shared
// selection semantics.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cognicore/reelmeta/pkg/reelmeta/internalerr"
	"github.com/cognicore/reelmeta/pkg/reelmeta/media"
	"github.com/cognicore/reelmeta/pkg/reelmeta/store"
)

// Asset builds a small test asset.
func Asset(provider, id string) media.Asset {
	return media.Asset{
		ID:           id,
		Keyword:      "kyoto",
		Title:        "temple",
		SourceURL:    "https://" + provider + ".example/" + id,
		ThumbnailURL: "https://" + provider + ".example/t/" + id,
		FullURL:      "https://" + provider + ".example/f/" + id,
		Provider:     provider,
		Kind:         media.KindImage,
		Width:        1080,
		Height:       1920,
		Duration:     3 * time.Second,
		LocalPath:    "/tmp/" + id + ".jpg",
	}
}

// Run exercises a fresh store from newStore.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("AppendList", func(t *testing.T) { testAppendList(t, newStore(t)) })
	t.Run("Remove", func(t *testing.T) { testRemove(t, newStore(t)) })
	t.Run("AllReset", func(t *testing.T) { testAllReset(t, newStore(t)) })
	t.Run("InvalidScene", func(t *testing.T) { testInvalidScene(t, newStore(t)) })
	t.Run("Searches", func(t *testing.T) { testSearches(t, newStore(t)) })
}

func testAppendList(t *testing.T, s store.Store) {
	ctx := context.Background()

	a := Asset("pexels", "1")
	b := Asset("pixabay", "2")
	first, err := s.Append(ctx, 1, a)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if _, err := s.Append(ctx, 1, b); err != nil {
		t.Fatalf("Append: %v", err)
	}
	// duplicates are allowed
	if _, err := s.Append(ctx, 1, a); err != nil {
		t.Fatalf("Append duplicate: %v", err)
	}
	if first.EntryID == "" || first.SceneID != 1 || first.AddedAt.IsZero() {
		t.Errorf("unexpected selection %+v", first)
	}

	got, err := s.List(ctx, 1)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 selections, got %d", len(got))
	}
	if got[0].Asset != a || got[1].Asset != b || got[2].Asset != a {
		t.Errorf("selections out of order or altered: %+v", got)
	}
	if got[0].EntryID == got[2].EntryID {
		t.Error("duplicate assets must get distinct entry ids")
	}

	empty, err := s.List(ctx, 9)
	if err != nil || len(empty) != 0 {
		t.Errorf("unknown scene should list empty, got %v, %v", empty, err)
	}
}

func testRemove(t *testing.T, s store.Store) {
	ctx := context.Background()

	keep, _ := s.Append(ctx, 2, Asset("pexels", "1"))
	drop, _ := s.Append(ctx, 2, Asset("pexels", "2"))

	if err := s.Remove(ctx, 2, drop.EntryID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	got, _ := s.List(ctx, 2)
	if len(got) != 1 || got[0].EntryID != keep.EntryID {
		t.Errorf("unexpected selections after remove: %+v", got)
	}

	if err := s.Remove(ctx, 2, drop.EntryID); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("second remove: expected ErrNotFound, got %v", err)
	}
	if err := s.Remove(ctx, 3, keep.EntryID); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("remove from wrong scene: expected ErrNotFound, got %v", err)
	}
}

func testAllReset(t *testing.T, s store.Store) {
	ctx := context.Background()

	s.Append(ctx, 1, Asset("pexels", "1"))
	s.Append(ctx, 3, Asset("unsplash", "x"))
	s.Append(ctx, 3, Asset("unsplash", "y"))

	all, err := s.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 2 || len(all[1]) != 1 || len(all[3]) != 2 {
		t.Errorf("unexpected All result: %+v", all)
	}
	if all[3][0].Asset.ID != "x" {
		t.Errorf("All should keep append order, got %+v", all[3])
	}

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	all, _ = s.All(ctx)
	if len(all) != 0 {
		t.Errorf("expected no selections after reset, got %d scenes", len(all))
	}
}

func testInvalidScene(t *testing.T, s store.Store) {
	if _, err := s.Append(context.Background(), 0, Asset("pexels", "1")); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func testSearches(t *testing.T, s store.Store) {
	ctx := context.Background()

	for i, kw := range []string{"kyoto", "pasta", "lemon"} {
		rec := store.SearchRecord{Keyword: kw, Kind: media.KindImage, Lang: "en", Results: i}
		if err := s.RecordSearch(ctx, rec); err != nil {
			t.Fatalf("RecordSearch: %v", err)
		}
	}

	recs, err := s.Searches(ctx, 2)
	if err != nil {
		t.Fatalf("Searches: %v", err)
	}
	if len(recs) != 2 || recs[0].Keyword != "lemon" || recs[1].Keyword != "pasta" {
		t.Errorf("expected newest first, got %+v", recs)
	}
	if recs[0].At.IsZero() || recs[0].Results != 2 {
		t.Errorf("unexpected record %+v", recs[0])
	}

	all, _ := s.Searches(ctx, 0)
	if len(all) != 3 {
		t.Errorf("limit 0 should return everything, got %d", len(all))
	}
}
