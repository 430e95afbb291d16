// Package provider adapts third-party stock media APIs to media.Asset.
//
// Adapters never return Go errors: every call ends in a Result tagged ok,
// failed or skipped so one misbehaving provider cannot abort a federated
// search.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cognicore/reelmeta/internal/httpx"
	"github.com/cognicore/reelmeta/pkg/reelmeta/media"
)

// Status tags the outcome of one adapter call.
type Status string

const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Result is the outcome of one adapter call. Assets is empty unless
// Status is StatusOK; Err explains a failure.
type Result struct {
	Provider string
	Status   Status
	Assets   []media.Asset
	Err      error
}

// Adapter searches one provider.
type Adapter interface {
	Name() string
	Kind() media.Kind
	Search(ctx context.Context, q media.Query) Result
}

// maxBodyBytes caps a decoded search response.
const maxBodyBytes = 8 << 20

// Config configures one adapter.
type Config struct {
	// Key is the provider credential; blank disables the adapter.
	Key string

	// Endpoint overrides the provider's default search URL.
	Endpoint string

	Client  *http.Client
	Timeout time.Duration
	Logger  *zap.Logger
}

// Client is an HTTP-backed Adapter. The provider-specific parts are the
// request parameters and the response decoder.
type Client struct {
	name     string
	kind     media.Kind
	endpoint string
	cfg      Config
	logger   *zap.Logger

	params func(key string, q media.Query) (url.Values, http.Header)
	decode func(r io.Reader, q media.Query) ([]media.Asset, error)
}

func newClient(name string, kind media.Kind, endpoint string, cfg Config) *Client {
	if cfg.Endpoint != "" {
		endpoint = cfg.Endpoint
	}
	if cfg.Client == nil {
		cfg.Client = httpx.NewClient(cfg.Timeout)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = httpx.DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		name:     name,
		kind:     kind,
		endpoint: endpoint,
		cfg:      cfg,
		logger:   logger.With(zap.String("provider", name)),
	}
}

// Name is the provider name used in results, logs and metrics.
func (c *Client) Name() string { return c.name }

// Kind is the media kind the adapter searches.
func (c *Client) Kind() media.Kind { return c.kind }

// Enabled reports whether the adapter has a credential.
func (c *Client) Enabled() bool { return strings.TrimSpace(c.cfg.Key) != "" }

// Search queries the provider once, bounded by the adapter timeout.
func (c *Client) Search(ctx context.Context, q media.Query) Result {
	if !c.Enabled() {
		c.logger.Debug("provider skipped: no credential")
		return Result{Provider: c.name, Status: StatusSkipped}
	}
	if err := q.Validate(); err != nil {
		return c.fail(q, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	assets, err := c.fetch(ctx, q)
	if err != nil {
		return c.fail(q, err)
	}
	if len(assets) > q.MaxResults {
		assets = assets[:q.MaxResults]
	}
	return Result{Provider: c.name, Status: StatusOK, Assets: assets}
}

func (c *Client) fetch(ctx context.Context, q media.Query) ([]media.Asset, error) {
	values, header := c.params(c.cfg.Key, q)

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	u.RawQuery = values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.cfg.Client.Do(req)
	if err != nil {
		return nil, redact(err, c.cfg.Key)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &HTTPStatusError{URL: c.endpoint, StatusCode: resp.StatusCode}
	}

	assets, err := c.decode(io.LimitReader(resp.Body, maxBodyBytes), q)
	if err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return assets, nil
}

func (c *Client) fail(q media.Query, err error) Result {
	c.logger.Warn("provider search failed", zap.String("keyword", q.Keyword), zap.Error(err))
	return Result{Provider: c.name, Status: StatusFailed, Err: err}
}

// redact removes key from transport errors, which quote the request URL.
func redact(err error, key string) error {
	if key == "" || !strings.Contains(err.Error(), key) {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), key, "REDACTED"))
}

func decodeJSON(r io.Reader, v any) error {
	return json.NewDecoder(r).Decode(v)
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
