package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"go.uber.org/zap"

	"github.com/cognicore/reelmeta/internal/logging"
	"github.com/cognicore/reelmeta/internal/randx"
	"github.com/cognicore/reelmeta/internal/scriptio"
	"github.com/cognicore/reelmeta/internal/tts"
	"github.com/cognicore/reelmeta/pkg/reelmeta"
	"github.com/cognicore/reelmeta/pkg/reelmeta/config"
	"github.com/cognicore/reelmeta/pkg/reelmeta/download"
	"github.com/cognicore/reelmeta/pkg/reelmeta/federation"
	"github.com/cognicore/reelmeta/pkg/reelmeta/hashtag"
	"github.com/cognicore/reelmeta/pkg/reelmeta/ingest"
	"github.com/cognicore/reelmeta/pkg/reelmeta/media"
	"github.com/cognicore/reelmeta/pkg/reelmeta/provider"
	"github.com/cognicore/reelmeta/pkg/reelmeta/store"
	"github.com/cognicore/reelmeta/pkg/reelmeta/store/sqlite"
)

type options struct {
	script         string
	batch          string
	dotenv         string
	taxonomy       string
	stoplistEN     string
	stoplistJA     string
	stoplistCustom string
	seed           uint64
	maxTags        int
	search         bool
	perScene       int
	videos         bool
	downloadDir    string
	audioDir       string
	db             string
	json           bool
}

type scriptOutput struct {
	ID        string                `json:"id"`
	Title     string                `json:"title,omitempty"`
	Report    reelmeta.Report       `json:"report"`
	Formatted string                `json:"formatted_hashtags"`
	Results   map[int][]media.Asset `json:"results,omitempty"`
	Selected  map[int]string        `json:"selected,omitempty"`
	Audio     map[int]string        `json:"audio,omitempty"`
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		log.Fatalf("reelmeta: %v", err)
	}
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("reelmeta", flag.ContinueOnError)
	fs.StringVar(&opts.script, "script", "", "Plain-text script file")
	fs.StringVar(&opts.batch, "batch", "", "JSONL file of {id,title,script} objects")
	fs.StringVar(&opts.dotenv, "env", ".env", "Optional dotenv file with provider keys")
	fs.StringVar(&opts.taxonomy, "taxonomy", "", "Taxonomy YAML (default: built-in)")
	fs.StringVar(&opts.stoplistEN, "stoplist-en", "", "English stoplist YAML (default: built-in)")
	fs.StringVar(&opts.stoplistJA, "stoplist-ja", "", "Optional Japanese stoplist YAML")
	fs.StringVar(&opts.stoplistCustom, "stoplist-custom", "", "Custom stoplist YAML (default: built-in particles)")
	fs.Uint64Var(&opts.seed, "seed", 0, "Random seed for hashtags and provider order (0 = random)")
	fs.IntVar(&opts.maxTags, "max-tags", hashtag.DefaultMaxTags, "Maximum hashtags per script")
	fs.BoolVar(&opts.search, "search", false, "Search media for each scene's first keyword")
	fs.IntVar(&opts.perScene, "per-scene", reelmeta.DefaultCandidates, "Results per scene search")
	fs.BoolVar(&opts.videos, "videos", false, "Search videos instead of images")
	fs.StringVar(&opts.downloadDir, "download-dir", "", "Auto-select and download one asset per scene into this directory")
	fs.StringVar(&opts.audioDir, "audio-dir", "", "Write per-scene narration MP3s into this directory")
	fs.StringVar(&opts.db, "db", "", "SQLite file for selections and the search journal (default: in memory). Scene ids are per script, so a script's auto-selection replaces earlier selections for the same scene ids")
	fs.BoolVar(&opts.json, "json", false, "Print JSON instead of text")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if (opts.script == "") == (opts.batch == "") {
		return opts, errors.New("exactly one of -script or -batch is required")
	}
	if opts.perScene < 1 {
		return opts, fmt.Errorf("-per-scene must be >= 1, got %d", opts.perScene)
	}
	return opts, nil
}

func run(ctx context.Context, opts options, out io.Writer) error {
	var dotenv []string
	if opts.dotenv != "" {
		dotenv = append(dotenv, opts.dotenv)
	}
	env, err := config.LoadEnv(dotenv...)
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Config{
		Level:      env.Log.Level,
		Encoding:   env.Log.Encoding,
		OutputPath: env.Log.Output,
	})
	if err != nil {
		return err
	}
	defer logger.Sync()

	scripts, err := loadScripts(opts, logger)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	engine, err := newEngine(ctx, opts, env, reg, logger)
	if err != nil {
		return err
	}
	defer engine.Close()

	runID := ulid.Make().String()
	var outputs []scriptOutput
	for _, s := range scripts {
		o, err := processScript(ctx, engine, opts, s, runID)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			logger.Warn("script skipped", zap.String("id", s.ID), zap.Error(err))
			continue
		}
		outputs = append(outputs, o)
		if !opts.json {
			printText(out, o)
		}
	}
	if len(outputs) == 0 {
		return errors.New("no script could be processed")
	}

	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(outputs); err != nil {
			return err
		}
	}

	if env.PushgatewayURL != "" {
		if err := push.New(env.PushgatewayURL, "reelmeta").Gatherer(reg).Push(); err != nil {
			logger.Warn("metrics push failed", zap.String("url", env.PushgatewayURL), zap.Error(err))
		}
	}
	return nil
}

func loadScripts(opts options, logger *zap.Logger) ([]scriptio.Script, error) {
	if opts.batch != "" {
		return scriptio.LoadJSONL(opts.batch, logger)
	}
	s, err := scriptio.LoadText(opts.script)
	if err != nil {
		return nil, err
	}
	return []scriptio.Script{s}, nil
}

func newEngine(ctx context.Context, opts options, env *config.Env, reg prometheus.Registerer, logger *zap.Logger) (*reelmeta.Engine, error) {
	loader := config.Loader{
		TaxonomyPath:         opts.taxonomy,
		EnglishStoplistPath:  opts.stoplistEN,
		JapaneseStoplistPath: opts.stoplistJA,
		CustomStoplistPath:   opts.stoplistCustom,
		Logger:               logger,
	}
	comp, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load configs: %w", err)
	}

	rng := randx.Random()
	if opts.seed != 0 {
		rng = randx.New(opts.seed)
	}

	images, videos := reelmeta.Adapters(env.Credentials, provider.Config{
		Timeout: env.ProviderTimeout,
		Logger:  logger,
	})

	var st store.Store
	if opts.db != "" {
		st, err = sqlite.OpenSQLite(ctx, opts.db)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
	}

	assembler := hashtag.NewAssembler(comp.Taxonomy, rng)
	assembler.SetMaxTags(opts.maxTags)

	searcher := federation.New(federation.Options{
		Images:      images,
		Videos:      videos,
		Rand:        rng,
		Workers:     env.SearchWorkers,
		DefaultLang: env.DefaultLang,
		Logger:      logger,
		Metrics:     federation.NewMetrics(reg),
	})
	imageNames, videoNames := searcher.Providers()
	logger.Debug("providers configured",
		zap.Strings("images", imageNames),
		zap.Strings("videos", videoNames))

	downloader := download.New(download.Options{
		Workers: env.DownloadWorkers,
		Timeout: env.DownloadTimeout,
		Logger:  logger,
	})

	return reelmeta.New(reelmeta.Options{
		Pipeline:    ingest.NewPipeline(comp.Segmenter, comp.Taxonomy),
		Assembler:   assembler,
		Searcher:    searcher,
		Downloader:  downloader,
		Store:       st,
		Synthesizer: &tts.Client{},
		DefaultLang: env.DefaultLang,
		Logger:      logger,
	})
}

func processScript(ctx context.Context, engine *reelmeta.Engine, opts options, s scriptio.Script, runID string) (scriptOutput, error) {
	report, err := engine.Process(ctx, s.Body)
	if err != nil {
		return scriptOutput{}, err
	}
	o := scriptOutput{
		ID:        s.ID,
		Title:     s.Title,
		Report:    report,
		Formatted: engine.FormatHashtags(report.Hashtags, " "),
	}

	if opts.search {
		o.Results = make(map[int][]media.Asset)
		for _, sc := range report.Scenes {
			if len(sc.Keywords) == 0 {
				continue
			}
			var assets []media.Asset
			if opts.videos {
				assets, err = engine.FindVideos(ctx, sc.Keywords[0], opts.perScene)
			} else {
				assets, err = engine.SearchImages(ctx, sc.Keywords[0], opts.perScene)
			}
			if err != nil {
				return scriptOutput{}, err
			}
			o.Results[sc.ID] = assets
		}
	}

	if opts.downloadDir != "" {
		if err := engine.ClearScenes(ctx, report.Scenes); err != nil {
			return scriptOutput{}, err
		}
		outcomes, err := engine.AutoSelect(ctx, report.Scenes, reelmeta.AutoSelectOptions{
			Dir:        filepath.Join(opts.downloadDir, runID),
			Candidates: opts.perScene,
			Videos:     opts.videos,
			Prefix:     fileSafe(s.ID),
		})
		if err != nil {
			return scriptOutput{}, err
		}
		o.Selected = make(map[int]string, len(outcomes))
		for _, oc := range outcomes {
			if oc.Selection != nil && oc.Selection.Asset.Downloaded() {
				o.Selected[oc.SceneID] = oc.Selection.Asset.LocalPath
			}
		}
	}

	if opts.audioDir != "" {
		paths, err := engine.SceneAudio(ctx, report.Scenes, opts.audioDir, fileSafe(s.ID))
		if err != nil && len(paths) == 0 {
			return scriptOutput{}, err
		}
		o.Audio = paths
	}
	return o, nil
}

func fileSafe(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator {
			return '_'
		}
		return r
	}, s)
}

func printText(w io.Writer, o scriptOutput) {
	header := o.ID
	if o.Title != "" {
		header += " " + o.Title
	}
	fmt.Fprintf(w, "=== %s (%s)\n", header, o.Report.Language)
	for _, sc := range o.Report.Scenes {
		fmt.Fprintf(w, "[%d] %s\n", sc.ID, sc.Text)
		fmt.Fprintf(w, "    keywords: %s\n", strings.Join(sc.Keywords, ", "))
		for _, a := range o.Results[sc.ID] {
			fmt.Fprintf(w, "    - %s %s %s\n", a.Provider, a.Title, a.FullURL)
		}
		if path, ok := o.Selected[sc.ID]; ok {
			fmt.Fprintf(w, "    selected: %s\n", path)
		} else if o.Selected != nil {
			fmt.Fprintln(w, "    selected: none")
		}
		if path, ok := o.Audio[sc.ID]; ok {
			fmt.Fprintf(w, "    audio: %s\n", path)
		}
	}
	fmt.Fprintf(w, "categories: %s\n", strings.Join(o.Report.Categories, ", "))
	fmt.Fprintf(w, "hashtags: %s\n\n", o.Formatted)
}
