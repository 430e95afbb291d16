package federation

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap/zaptest"

	"github.com/cognicore/reelmeta/internal/randx"
	"github.com/cognicore/reelmeta/pkg/reelmeta/internalerr"
	"github.com/cognicore/reelmeta/pkg/reelmeta/media"
	"github.com/cognicore/reelmeta/pkg/reelmeta/provider"
)

type fakeAdapter struct {
	name   string
	kind   media.Kind
	n      int
	status provider.Status
	delay  time.Duration

	calls atomic.Int32
	mu    sync.Mutex
	last  media.Query
}

func (f *fakeAdapter) Name() string     { return f.name }
func (f *fakeAdapter) Kind() media.Kind { return f.kind }

func (f *fakeAdapter) Search(ctx context.Context, q media.Query) provider.Result {
	f.calls.Add(1)
	f.mu.Lock()
	f.last = q
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return provider.Result{Provider: f.name, Status: provider.StatusFailed, Err: ctx.Err()}
		}
	}

	switch f.status {
	case provider.StatusSkipped:
		return provider.Result{Provider: f.name, Status: provider.StatusSkipped}
	case provider.StatusFailed:
		return provider.Result{Provider: f.name, Status: provider.StatusFailed, Err: errors.New("HTTP 500")}
	}

	n := f.n
	if n > q.MaxResults {
		n = q.MaxResults
	}
	assets := make([]media.Asset, n)
	for i := range assets {
		assets[i] = media.Asset{
			ID:       fmt.Sprintf("%s-%d", f.name, i),
			Keyword:  q.Keyword,
			Provider: f.name,
			Kind:     f.kind,
			FullURL:  fmt.Sprintf("https://%s.example/%d.jpg", f.name, i),
		}
	}
	return provider.Result{Provider: f.name, Status: provider.StatusOK, Assets: assets}
}

func images(n int, names ...string) []*fakeAdapter {
	out := make([]*fakeAdapter, len(names))
	for i, name := range names {
		out[i] = &fakeAdapter{name: name, kind: media.KindImage, n: n, status: provider.StatusOK}
	}
	return out
}

func adapters(fakes []*fakeAdapter) []provider.Adapter {
	out := make([]provider.Adapter, len(fakes))
	for i, f := range fakes {
		out[i] = f
	}
	return out
}

func TestSearchThreeProvidersTruncatesToNine(t *testing.T) {
	for _, workers := range []int{1, 3} {
		fakes := images(5, "pixabay", "pexels", "unsplash")
		s := New(Options{
			Images:  adapters(fakes),
			Rand:    randx.New(1),
			Workers: workers,
			Logger:  zaptest.NewLogger(t),
		})

		assets, err := s.Search(context.Background(), "kyoto", 9)
		if err != nil {
			t.Fatalf("workers=%d: Search: %v", workers, err)
		}
		if len(assets) != 9 {
			t.Fatalf("workers=%d: expected 9 assets, got %d", workers, len(assets))
		}
		valid := map[string]bool{"pixabay": true, "pexels": true, "unsplash": true}
		for _, a := range assets {
			if !valid[a.Provider] {
				t.Errorf("workers=%d: invalid provider tag %q", workers, a.Provider)
			}
			if a.Keyword != "kyoto" {
				t.Errorf("asset keyword %q", a.Keyword)
			}
		}
	}
}

func TestSearchSequentialStopsEarly(t *testing.T) {
	fakes := images(5, "a", "b", "c")
	s := New(Options{Images: adapters(fakes), Rand: randx.New(2), Workers: 1})

	assets, err := s.Search(context.Background(), "kyoto", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(assets) != 5 {
		t.Fatalf("expected 5 assets, got %d", len(assets))
	}

	var calls int32
	for _, f := range fakes {
		calls += f.calls.Load()
	}
	if calls != 1 {
		t.Errorf("expected one provider call, got %d", calls)
	}
}

func TestSearchDeterministicForSeed(t *testing.T) {
	run := func() [][]media.Asset {
		s := New(Options{Images: adapters(images(2, "a", "b", "c", "d")), Rand: randx.New(42), Workers: 4})
		var out [][]media.Asset
		for i := 0; i < 5; i++ {
			assets, err := s.Search(context.Background(), "kyoto", 5)
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			out = append(out, assets)
		}
		return out
	}

	if a, b := run(), run(); !reflect.DeepEqual(a, b) {
		t.Error("same seed should produce the same merged results")
	}
}

func TestSearchShufflesPerCall(t *testing.T) {
	s := New(Options{Images: adapters(images(1, "a", "b", "c", "d")), Rand: randx.New(7), Workers: 1})

	firsts := make(map[string]bool)
	for i := 0; i < 40; i++ {
		assets, err := s.Search(context.Background(), "kyoto", 1)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		firsts[assets[0].Provider] = true
	}
	if len(firsts) < 2 {
		t.Errorf("provider order never changed across calls: %v", firsts)
	}
}

func TestParallelMergesInShuffledOrder(t *testing.T) {
	mk := func() []*fakeAdapter {
		fakes := images(3, "slow", "medium", "fast")
		fakes[0].delay = 60 * time.Millisecond
		fakes[1].delay = 30 * time.Millisecond
		return fakes
	}

	seq := New(Options{Images: adapters(mk()), Rand: randx.New(9), Workers: 1})
	par := New(Options{Images: adapters(mk()), Rand: randx.New(9), Workers: 3})

	want, err := seq.Search(context.Background(), "kyoto", 9)
	if err != nil {
		t.Fatal(err)
	}
	got, err := par.Search(context.Background(), "kyoto", 9)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parallel merge should follow provider order, not completion order\n got %v\nwant %v", keys(got), keys(want))
	}
}

func keys(assets []media.Asset) []string {
	out := make([]string, len(assets))
	for i, a := range assets {
		out[i] = a.Key()
	}
	return out
}

func TestSearchAbsorbsProviderFailures(t *testing.T) {
	fakes := []*fakeAdapter{
		{name: "down", kind: media.KindImage, status: provider.StatusFailed},
		{name: "nokey", kind: media.KindImage, status: provider.StatusSkipped},
		{name: "up", kind: media.KindImage, n: 5, status: provider.StatusOK},
	}
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	s := New(Options{Images: adapters(fakes), Rand: randx.New(3), Workers: 3, Metrics: metrics, Logger: zaptest.NewLogger(t)})

	assets, err := s.Search(context.Background(), "kyoto", 9)
	if err != nil {
		t.Fatalf("provider failures must not surface: %v", err)
	}
	if len(assets) != 5 {
		t.Errorf("expected the 5 assets of the healthy provider, got %d", len(assets))
	}

	if v := testutil.ToFloat64(metrics.searches.WithLabelValues("down", "failed")); v != 1 {
		t.Errorf("expected 1 failed search, got %v", v)
	}
	if v := testutil.ToFloat64(metrics.searches.WithLabelValues("nokey", "skipped")); v != 1 {
		t.Errorf("expected 1 skipped search, got %v", v)
	}
	if v := testutil.ToFloat64(metrics.assets.WithLabelValues("up")); v != 5 {
		t.Errorf("expected 5 assets counted, got %v", v)
	}
	if n := testutil.CollectAndCount(metrics.duration); n != 2 {
		t.Errorf("skipped providers should not be timed, got %d series", n)
	}
}

func TestSearchAllProvidersUnavailable(t *testing.T) {
	fakes := []*fakeAdapter{
		{name: "a", status: provider.StatusSkipped},
		{name: "b", status: provider.StatusFailed},
	}
	s := New(Options{Images: adapters(fakes), Rand: randx.New(4)})

	assets, err := s.Search(context.Background(), "kyoto", 3)
	if err != nil {
		t.Fatalf("expected empty result, got error %v", err)
	}
	if len(assets) != 0 {
		t.Errorf("expected no assets, got %d", len(assets))
	}
}

func TestSearchInputErrors(t *testing.T) {
	s := New(Options{Images: adapters(images(5, "a"))})

	if _, err := s.Search(context.Background(), "  ", 5); !errors.Is(err, ErrEmptyKeyword) {
		t.Errorf("expected ErrEmptyKeyword, got %v", err)
	}
	if _, err := s.Search(context.Background(), "", 5); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("ErrEmptyKeyword should wrap ErrInvalidInput, got %v", err)
	}
	if _, err := s.Search(context.Background(), "kyoto", 0); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for zero max, got %v", err)
	}
}

func TestSearchLanguageHint(t *testing.T) {
	fake := &fakeAdapter{name: "a", n: 1, status: provider.StatusOK}
	s := New(Options{Images: []provider.Adapter{fake}, DefaultLang: "en"})

	if _, err := s.Search(context.Background(), "おすし", 1); err != nil {
		t.Fatal(err)
	}
	if fake.last.Lang != "ja" {
		t.Errorf("expected ja hint, got %q", fake.last.Lang)
	}
	if _, err := s.Search(context.Background(), "   ", 1); err == nil {
		t.Error("blank keyword should fail")
	}
}

func TestFindVideos(t *testing.T) {
	videos := []*fakeAdapter{
		{name: "pixabay-video", kind: media.KindVideo, n: 5, status: provider.StatusOK},
		{name: "pexels-video", kind: media.KindVideo, n: 5, status: provider.StatusOK},
	}
	s := New(Options{
		Images: adapters(images(5, "pixabay")),
		Videos: adapters(videos),
		Rand:   randx.New(5),
	})

	clips, err := s.FindVideos(context.Background(), "lemon", 3)
	if err != nil {
		t.Fatalf("FindVideos: %v", err)
	}
	if len(clips) != 6 {
		t.Fatalf("expected 3 clips per video provider, got %d", len(clips))
	}
	for _, c := range clips {
		if c.Kind != media.KindVideo {
			t.Errorf("expected video asset, got %+v", c)
		}
	}

	imgs, vids := s.Providers()
	if len(imgs) != 1 || len(vids) != 2 {
		t.Errorf("unexpected providers %v / %v", imgs, vids)
	}
}

func TestSearchWithRealAdaptersWithoutCredentials(t *testing.T) {
	cfg := provider.Config{}
	s := New(Options{
		Images: []provider.Adapter{provider.NewPixabay(cfg), provider.NewPexels(cfg), provider.NewUnsplash(cfg)},
		Rand:   randx.New(6),
	})

	assets, err := s.Search(context.Background(), "kyoto", 9)
	if err != nil || len(assets) != 0 {
		t.Errorf("expected empty result without credentials, got %d assets, err %v", len(assets), err)
	}
}
