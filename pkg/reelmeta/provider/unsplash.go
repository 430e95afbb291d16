package provider

import (
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/cognicore/reelmeta/pkg/reelmeta/media"
)

const (
	UnsplashName = "unsplash"

	unsplashSearchURL = "https://api.unsplash.com/search/photos"

	unsplashMaxPerPage = 30
)

// NewUnsplash returns the Unsplash photo adapter.
func NewUnsplash(cfg Config) *Client {
	c := newClient(UnsplashName, media.KindImage, unsplashSearchURL, cfg)
	c.params = func(key string, q media.Query) (url.Values, http.Header) {
		v := url.Values{}
		v.Set("query", q.Keyword)
		v.Set("per_page", strconv.Itoa(clamp(q.MaxResults, 1, unsplashMaxPerPage)))
		v.Set("orientation", "portrait")
		if q.Lang != "" {
			v.Set("lang", q.Lang)
		}
		h := http.Header{}
		h.Set("Authorization", "Client-ID "+key)
		h.Set("Accept-Version", "v1")
		return v, h
	}
	c.decode = decodeUnsplash
	return c
}

type unsplashResponse struct {
	Results []struct {
		ID             string `json:"id"`
		Description    string `json:"description"`
		AltDescription string `json:"alt_description"`
		Width          int    `json:"width"`
		Height         int    `json:"height"`
		URLs           struct {
			Full    string `json:"full"`
			Regular string `json:"regular"`
			Small   string `json:"small"`
		} `json:"urls"`
		Links struct {
			HTML string `json:"html"`
		} `json:"links"`
	} `json:"results"`
}

func decodeUnsplash(r io.Reader, q media.Query) ([]media.Asset, error) {
	var resp unsplashResponse
	if err := decodeJSON(r, &resp); err != nil {
		return nil, err
	}

	assets := make([]media.Asset, 0, len(resp.Results))
	for _, p := range resp.Results {
		title := p.Description
		if title == "" {
			title = p.AltDescription
		}
		assets = append(assets, media.Asset{
			ID:           p.ID,
			Keyword:      q.Keyword,
			Title:        plainText(title),
			SourceURL:    p.Links.HTML,
			ThumbnailURL: p.URLs.Small,
			FullURL:      p.URLs.Regular,
			Provider:     UnsplashName,
			Kind:         media.KindImage,
			Width:        p.Width,
			Height:       p.Height,
		})
	}
	return assets, nil
}
