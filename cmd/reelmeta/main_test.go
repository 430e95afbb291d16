package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cognicore/reelmeta/pkg/reelmeta/store/sqlite"
)

const pasta = "今日は簡単で美味しい塩レモンパスタの作り方をご紹介します。\n\n材料は、パスタ、レモン、塩です。"

func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PIXABAY_API_KEY", "PIXABAY_VIDEO_API_KEY", "PEXELS_API_KEY",
		"UNSPLASH_ACCESS_KEY", "PUSHGATEWAY_URL",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("LOG_LEVEL", "error")
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestParseFlagsRequiresOneInput(t *testing.T) {
	if _, err := parseFlags(nil); err == nil {
		t.Error("expected error without -script or -batch")
	}
	if _, err := parseFlags([]string{"-script", "a", "-batch", "b"}); err == nil {
		t.Error("expected error with both -script and -batch")
	}
	if _, err := parseFlags([]string{"-script", "a", "-per-scene", "0"}); err == nil {
		t.Error("expected error for -per-scene 0")
	}
	opts, err := parseFlags([]string{"-script", "a", "-seed", "9", "-json"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if opts.seed != 9 || !opts.json || opts.maxTags != 15 {
		t.Errorf("unexpected options %+v", opts)
	}
}

func TestRunText(t *testing.T) {
	clearProviderEnv(t)
	opts, err := parseFlags([]string{"-script", writeFile(t, "pasta.txt", pasta), "-seed", "1", "-env", ""})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}

	var out bytes.Buffer
	if err := run(context.Background(), opts, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	text := out.String()
	for _, want := range []string{"[1]", "[2]", "keywords:", "categories: 料理", "hashtags: #"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestRunBatchJSON(t *testing.T) {
	clearProviderEnv(t)
	batch := `{"id":"p1","title":"pasta","script":"` + strings.ReplaceAll(pasta, "\n", `\n`) + `"}
not json
{"id":"p2","title":"empty","script":""}
{"id":"p3","script":"京都の旅行で寺を巡りました。"}
`
	opts, err := parseFlags([]string{
		"-batch", writeFile(t, "batch.jsonl", batch),
		"-json", "-seed", "3", "-max-tags", "5", "-env", "",
		"-download-dir", t.TempDir(),
	})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}

	var out bytes.Buffer
	if err := run(context.Background(), opts, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	var got []scriptOutput
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out.String())
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 scripts, got %d", len(got))
	}
	if got[0].ID != "p1" || got[1].ID != "p3" {
		t.Errorf("unexpected ids %s, %s", got[0].ID, got[1].ID)
	}
	for _, o := range got {
		if n := len(o.Report.Hashtags); n == 0 || n > 5 {
			t.Errorf("%s: expected 1..5 hashtags, got %d", o.ID, n)
		}
		if len(o.Selected) != 0 {
			t.Errorf("%s: nothing can be selected without provider keys, got %v", o.ID, o.Selected)
		}
	}
}

func TestRunMissingScript(t *testing.T) {
	clearProviderEnv(t)
	opts := options{script: filepath.Join(t.TempDir(), "missing.txt"), perScene: 1, maxTags: 15}
	if err := run(context.Background(), opts, &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for missing script")
	}
}

func TestRunBatchKeepsJournalInDB(t *testing.T) {
	clearProviderEnv(t)
	batch := `{"id":"p1","script":"` + strings.ReplaceAll(pasta, "\n", `\n`) + `"}
{"id":"p2","script":"京都の旅行で寺を巡りました。"}
`
	dbPath := filepath.Join(t.TempDir(), "reelmeta.db")
	opts, err := parseFlags([]string{
		"-batch", writeFile(t, "batch.jsonl", batch),
		"-json", "-seed", "5", "-env", "",
		"-download-dir", t.TempDir(),
		"-db", dbPath,
	})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}

	var out bytes.Buffer
	if err := run(context.Background(), opts, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	var got []scriptOutput
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(got) != 2 || len(got[0].Report.Scenes) == 0 || len(got[0].Report.Scenes[0].Keywords) == 0 {
		t.Fatalf("unexpected output %+v", got)
	}
	firstKeyword := got[0].Report.Scenes[0].Keywords[0]

	ctx := context.Background()
	st, err := sqlite.OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatalf("reopen db: %v", err)
	}
	defer st.Close()

	recs, err := st.Searches(ctx, 1000)
	if err != nil {
		t.Fatalf("Searches: %v", err)
	}
	found := false
	for _, rec := range recs {
		if rec.Keyword == firstKeyword {
			found = true
		}
	}
	if !found {
		t.Errorf("expected searches of the first script (%q) to survive the second", firstKeyword)
	}
}
