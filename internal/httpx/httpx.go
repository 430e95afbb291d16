// Package httpx builds the HTTP clients shared by provider adapters and
// the downloader.
package httpx

import (
	"errors"
	"net/http"
	"time"
)

const (
	DefaultTimeout  = 15 * time.Second
	DefaultRetryMax = 2
	UserAgent       = "reelmeta/1.0 (+https://github.com/cognicore/reelmeta)"
)

// Transport retries idempotent requests on transport errors and stamps a
// User-Agent. HTTP status codes are never retried here; callers decide.
type Transport struct {
	Base http.RoundTripper

	// RetryMax is the number of retries after the first attempt.
	RetryMax int

	// Backoff is slept between attempts; zero retries immediately.
	Backoff time.Duration
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	canRetry := (req.Method == http.MethodGet || req.Method == http.MethodHead) && req.Body == nil
	max := t.RetryMax
	if max < 0 || !canRetry {
		max = 0
	}

	var lastErr error
	for attempt := 0; attempt <= max; attempt++ {
		if attempt > 0 && t.Backoff > 0 {
			select {
			case <-req.Context().Done():
				return nil, lastErr
			case <-time.After(t.Backoff * time.Duration(attempt)):
			}
		}

		r := req.Clone(req.Context())
		if r.Header.Get("User-Agent") == "" {
			r.Header.Set("User-Agent", UserAgent)
		}

		resp, err := base.RoundTrip(r)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if req.Context().Err() != nil {
			return nil, lastErr
		}
	}
	return nil, lastErr
}

// NewClient returns a client with a total timeout and bounded retries.
// A non-positive timeout selects DefaultTimeout.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	base := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		MaxIdleConnsPerHost:   4,
	}
	return &http.Client{
		Transport: &Transport{Base: base, RetryMax: DefaultRetryMax, Backoff: 200 * time.Millisecond},
		Timeout:   timeout,
	}
}

// NewStreamingClient returns a client for large downloads. It has no total
// timeout; callers bound transfers through the request context.
func NewStreamingClient() *http.Client {
	base := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: DefaultTimeout,
	}
	return &http.Client{
		Transport: &Transport{Base: base, RetryMax: DefaultRetryMax, Backoff: 200 * time.Millisecond},
	}
}
