// Package download fetches media assets to local files without ever
// leaving a partial file at the destination.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cognicore/reelmeta/internal/httpx"
	"github.com/cognicore/reelmeta/pkg/reelmeta/internalerr"
	"github.com/cognicore/reelmeta/pkg/reelmeta/media"
)

const (
	DefaultChunkSize = 32 << 10
	DefaultWorkers   = 4

	// DefaultTimeout bounds one whole transfer, body included.
	DefaultTimeout = 2 * time.Minute
)

// ErrIncomplete reports a body shorter or longer than its Content-Length.
var ErrIncomplete = errors.New("incomplete download")

// renameFunc is swapped in tests to simulate rename failures.
var renameFunc = os.Rename

// DownloadError reports an asset that could not be stored. The destination
// is left untouched.
type DownloadError struct {
	URL  string
	Path string
	Err  error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s to %s: %v", e.URL, e.Path, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// StatusError is a non-2xx download response.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// Options configures a Downloader.
type Options struct {
	Client    *http.Client
	ChunkSize int
	Workers   int
	Logger    *zap.Logger

	// Timeout bounds each download from request to rename.
	Timeout time.Duration
}

// Downloader streams remote files to disk.
type Downloader struct {
	client    *http.Client
	chunkSize int
	workers   int
	timeout   time.Duration
	logger    *zap.Logger
}

// New creates a Downloader. Zero options select the defaults.
func New(opts Options) *Downloader {
	d := &Downloader{
		client:    opts.Client,
		chunkSize: opts.ChunkSize,
		workers:   opts.Workers,
		timeout:   opts.Timeout,
		logger:    opts.Logger,
	}
	if d.client == nil {
		d.client = httpx.NewStreamingClient()
	}
	if d.chunkSize <= 0 {
		d.chunkSize = DefaultChunkSize
	}
	if d.workers <= 0 {
		d.workers = DefaultWorkers
	}
	if d.timeout <= 0 {
		d.timeout = DefaultTimeout
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	return d
}

// Download stores url at dest and returns dest. The body is written to a
// temporary file beside dest and renamed into place only once it is byte
// complete, so dest is either the full file or untouched.
func (d *Downloader) Download(ctx context.Context, url, dest string) (string, error) {
	if strings.TrimSpace(url) == "" || strings.TrimSpace(dest) == "" {
		return "", &DownloadError{URL: url, Path: dest,
			Err: fmt.Errorf("%w: url and destination are required", internalerr.ErrInvalidInput)}
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	n, err := d.download(ctx, url, dest)
	if err != nil {
		d.logger.Warn("download failed", zap.String("url", url), zap.String("path", dest), zap.Error(err))
		return "", &DownloadError{URL: url, Path: dest, Err: err}
	}
	d.logger.Debug("downloaded", zap.String("path", dest), zap.Int64("bytes", n))
	return dest, nil
}

func (d *Downloader) download(ctx context.Context, url, dest string) (written int64, err error) {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, &StatusError{StatusCode: resp.StatusCode}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".part-*")
	if err != nil {
		return 0, err
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	written, err = d.copyChunks(tmp, resp.Body)
	if err != nil {
		return written, err
	}
	if resp.ContentLength >= 0 && written != resp.ContentLength {
		return written, fmt.Errorf("%w: got %d of %d bytes", ErrIncomplete, written, resp.ContentLength)
	}
	if err = tmp.Sync(); err != nil {
		return written, err
	}
	if err = tmp.Close(); err != nil {
		return written, err
	}
	if err = renameFunc(tmpName, dest); err != nil {
		return written, err
	}
	return written, nil
}

func (d *Downloader) copyChunks(w io.Writer, r io.Reader) (int64, error) {
	buf := make([]byte, d.chunkSize)
	var total int64
	for {
		n, rerr := r.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return total, werr
			}
			total += int64(n)
		}
		if rerr == io.EOF {
			return total, nil
		}
		if rerr != nil {
			return total, rerr
		}
	}
}

// Fetch downloads the asset's full-size URL to dest and returns a copy of
// the asset with LocalPath set. The input asset is not modified.
func (d *Downloader) Fetch(ctx context.Context, asset media.Asset, dest string) (media.Asset, error) {
	path, err := d.Download(ctx, asset.FullURL, dest)
	if err != nil {
		return asset, err
	}
	asset.LocalPath = path
	return asset, nil
}

// Job is one asset to store at Dest.
type Job struct {
	Asset media.Asset
	Dest  string
}

// Outcome is the result of one Job. Asset carries LocalPath on success.
type Outcome struct {
	Asset media.Asset
	Err   error
}

// DownloadAll runs jobs with bounded parallelism and returns one outcome
// per job in input order. Jobs sharing a destination after the first are
// rejected without downloading.
func (d *Downloader) DownloadAll(ctx context.Context, jobs []Job) []Outcome {
	outcomes := make([]Outcome, len(jobs))

	seen := make(map[string]bool, len(jobs))
	var g errgroup.Group
	g.SetLimit(d.workers)
	for i, job := range jobs {
		dest := filepath.Clean(job.Dest)
		if seen[dest] {
			outcomes[i] = Outcome{Asset: job.Asset, Err: &DownloadError{URL: job.Asset.FullURL, Path: job.Dest,
				Err: fmt.Errorf("%w: duplicate destination", internalerr.ErrInvalidInput)}}
			continue
		}
		seen[dest] = true

		g.Go(func() error {
			asset, err := d.Fetch(ctx, job.Asset, job.Dest)
			outcomes[i] = Outcome{Asset: asset, Err: err}
			return nil
		})
	}
	g.Wait()
	return outcomes
}

// FileName builds "<prefix>_<provider>_<id><ext>" with the extension taken
// from the asset URL path, falling back to .jpg for images and .mp4 for
// videos.
func FileName(prefix string, asset media.Asset) string {
	var ext string
	if u, err := neturl.Parse(asset.FullURL); err == nil {
		ext = strings.ToLower(path.Ext(u.Path))
	}
	if len(ext) < 2 || len(ext) > 5 {
		ext = ".jpg"
		if asset.Kind == media.KindVideo {
			ext = ".mp4"
		}
	}
	id := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ':' {
			return '_'
		}
		return r
	}, asset.ID)
	return fmt.Sprintf("%s_%s_%s%s", prefix, asset.Provider, id, ext)
}
