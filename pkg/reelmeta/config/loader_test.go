package config

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/cognicore/reelmeta/pkg/reelmeta/stoplist"
)

func TestLoaderAllEmpty(t *testing.T) {
	loader := Loader{}

	comp, err := loader.Load()
	if err != nil {
		t.Fatalf("Empty loader should succeed: %v", err)
	}
	if comp.Tokenizer == nil || comp.Extractor == nil || comp.Segmenter == nil {
		t.Fatal("Should have text components")
	}
	if comp.Taxonomy == nil || len(comp.Taxonomy.Categories()) != 10 {
		t.Error("Should have the default taxonomy")
	}
	if !comp.Stoplist.IsStop("the") {
		t.Error("Default english stoplist should be applied")
	}
	if !comp.Stoplist.IsStop("こと") {
		t.Error("Default custom stoplist should be applied")
	}
	if comp.Stoplist.Count(stoplist.SourceJapanese) != 0 {
		t.Error("No japanese list was configured")
	}
}

func TestLoaderMissingJapaneseStoplistIsSkipped(t *testing.T) {
	loader := Loader{
		JapaneseStoplistPath: "/nonexistent/japanese.yaml",
		Logger:               zaptest.NewLogger(t),
	}

	comp, err := loader.Load()
	if err != nil {
		t.Fatalf("Missing japanese stoplist should not fail: %v", err)
	}
	if comp.Stoplist.Count(stoplist.SourceJapanese) != 0 {
		t.Error("Japanese list should be empty")
	}
}

func TestLoaderNonExistentStoplist(t *testing.T) {
	loader := Loader{EnglishStoplistPath: "/nonexistent/stoplist.yaml"}

	if _, err := loader.Load(); err == nil {
		t.Error("Should error on nonexistent english stoplist")
	}

	loader = Loader{CustomStoplistPath: "/nonexistent/custom.yaml"}
	if _, err := loader.Load(); err == nil {
		t.Error("Should error on nonexistent custom stoplist")
	}
}

func TestLoaderNonExistentTaxonomy(t *testing.T) {
	loader := Loader{TaxonomyPath: "/nonexistent/taxonomy.yaml"}

	if _, err := loader.Load(); err == nil {
		t.Error("Should error on nonexistent taxonomy")
	}
}

func TestLoaderValidFiles(t *testing.T) {
	tmpDir := t.TempDir()

	files := map[string]string{
		"en.yaml":       "terms: [the, about]\n",
		"ja.yaml":       "terms: [あそこ, 京都]\n",
		"custom.yaml":   "terms: [です]\n",
		"taxonomy.yaml": "categories:\n  - name: travel\n    keywords: [kyoto]\n    tags: [\"#kyoto\"]\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	loader := Loader{
		EnglishStoplistPath:  filepath.Join(tmpDir, "en.yaml"),
		JapaneseStoplistPath: filepath.Join(tmpDir, "ja.yaml"),
		CustomStoplistPath:   filepath.Join(tmpDir, "custom.yaml"),
		TaxonomyPath:         filepath.Join(tmpDir, "taxonomy.yaml"),
	}

	comp, err := loader.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if comp.Stoplist.Len() != 5 {
		t.Errorf("expected 5 stopwords, got %d", comp.Stoplist.Len())
	}
	if n := comp.Stoplist.Count(stoplist.SourceJapanese); n == 0 {
		t.Error("expected terms from the japanese list")
	}

	tokens := comp.Tokenizer.Tokenize("The trip about 京都 and kyoto")
	for _, tok := range tokens {
		if tok == "the" || tok == "about" || tok == "京都" {
			t.Errorf("stopword %q not filtered", tok)
		}
	}
	if cats := comp.Taxonomy.Classify("kyoto"); cats[0] != "travel" {
		t.Errorf("expected travel, got %v", cats)
	}
}
