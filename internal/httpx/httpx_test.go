package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func okResponse() *http.Response {
	return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Header: make(http.Header)}
}

func TestTransportRetriesGET(t *testing.T) {
	calls := 0
	tr := &Transport{
		RetryMax: 2,
		Base: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			calls++
			if calls < 3 {
				return nil, errors.New("connection reset")
			}
			return okResponse(), nil
		}),
	}

	req, _ := http.NewRequest(http.MethodGet, "http://example.invalid/", nil)
	resp, err := tr.RoundTrip(req)
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	resp.Body.Close()
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestTransportGivesUp(t *testing.T) {
	calls := 0
	tr := &Transport{
		RetryMax: 1,
		Base: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			calls++
			return nil, errors.New("dial failed")
		}),
	}

	req, _ := http.NewRequest(http.MethodGet, "http://example.invalid/", nil)
	if _, err := tr.RoundTrip(req); err == nil || !strings.Contains(err.Error(), "dial failed") {
		t.Fatalf("expected last error, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
}

func TestTransportDoesNotRetryPOST(t *testing.T) {
	calls := 0
	tr := &Transport{
		RetryMax: 3,
		Base: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			calls++
			return nil, errors.New("boom")
		}),
	}

	req, _ := http.NewRequest(http.MethodPost, "http://example.invalid/", strings.NewReader("{}"))
	tr.RoundTrip(req)
	if calls != 1 {
		t.Errorf("POST should not be retried, got %d attempts", calls)
	}
}

func TestTransportStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	tr := &Transport{
		RetryMax: 5,
		Base: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			calls++
			cancel()
			return nil, context.Canceled
		}),
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "http://example.invalid/", nil)
	tr.RoundTrip(req)
	if calls != 1 {
		t.Errorf("expected a single attempt after cancel, got %d", calls)
	}
}

func TestTransportSetsUserAgent(t *testing.T) {
	var got string
	tr := &Transport{
		Base: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			got = req.Header.Get("User-Agent")
			return okResponse(), nil
		}),
	}

	req, _ := http.NewRequest(http.MethodGet, "http://example.invalid/", nil)
	resp, _ := tr.RoundTrip(req)
	resp.Body.Close()
	if got != UserAgent {
		t.Errorf("expected default user agent, got %q", got)
	}
	if req.Header.Get("User-Agent") != "" {
		t.Error("caller request must not be mutated")
	}
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(0)
	if c.Timeout != DefaultTimeout {
		t.Errorf("expected default timeout, got %v", c.Timeout)
	}
	if _, ok := c.Transport.(*Transport); !ok {
		t.Errorf("expected *Transport, got %T", c.Transport)
	}
	if NewStreamingClient().Timeout != 0 {
		t.Error("streaming client should not have a total timeout")
	}
}
