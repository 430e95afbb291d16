// Package media defines the provider-neutral asset model shared by search,
// download and selection.
package media

import (
	"fmt"
	"strings"
	"time"

	"github.com/cognicore/reelmeta/pkg/reelmeta/internalerr"
)

// Kind distinguishes still images from video clips.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Asset is one search hit. Adapters never set LocalPath; only the download
// step returns a copy with it filled in.
type Asset struct {
	ID           string        `json:"id"`
	Keyword      string        `json:"keyword"`
	Title        string        `json:"title,omitempty"`
	SourceURL    string        `json:"source_url"`
	ThumbnailURL string        `json:"thumbnail_url"`
	FullURL      string        `json:"full_url"`
	Provider     string        `json:"provider"`
	Kind         Kind          `json:"kind"`
	Width        int           `json:"width,omitempty"`
	Height       int           `json:"height,omitempty"`
	Duration     time.Duration `json:"duration,omitempty"`
	LocalPath    string        `json:"local_path,omitempty"`
}

// Key identifies the asset across providers, e.g. "pexels:2014422".
func (a Asset) Key() string {
	return a.Provider + ":" + a.ID
}

// Downloaded reports whether the asset has a local copy.
func (a Asset) Downloaded() bool {
	return a.LocalPath != ""
}

// Query is one provider search request.
type Query struct {
	Keyword    string
	MaxResults int
	Lang       string
}

// Validate rejects blank keywords and non-positive limits.
func (q Query) Validate() error {
	if strings.TrimSpace(q.Keyword) == "" {
		return fmt.Errorf("%w: blank keyword", internalerr.ErrInvalidInput)
	}
	if q.MaxResults <= 0 {
		return fmt.Errorf("%w: max results must be positive, got %d", internalerr.ErrInvalidInput, q.MaxResults)
	}
	return nil
}
