package provider

import (
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cognicore/reelmeta/pkg/reelmeta/media"
)

const (
	PixabayName      = "pixabay"
	PixabayVideoName = "pixabay-video"

	pixabayImageURL = "https://pixabay.com/api/"
	pixabayVideoURL = "https://pixabay.com/api/videos/"

	// Pixabay rejects per_page outside this range.
	pixabayMinPerPage = 3
	pixabayMaxPerPage = 200
)

// NewPixabay returns the Pixabay photo adapter.
func NewPixabay(cfg Config) *Client {
	c := newClient(PixabayName, media.KindImage, pixabayImageURL, cfg)
	c.params = func(key string, q media.Query) (url.Values, http.Header) {
		v := pixabayParams(key, q)
		v.Set("image_type", "photo")
		return v, nil
	}
	c.decode = decodePixabayImages
	return c
}

// NewPixabayVideo returns the Pixabay video adapter.
func NewPixabayVideo(cfg Config) *Client {
	c := newClient(PixabayVideoName, media.KindVideo, pixabayVideoURL, cfg)
	c.params = func(key string, q media.Query) (url.Values, http.Header) {
		v := pixabayParams(key, q)
		v.Set("video_type", "all")
		return v, nil
	}
	c.decode = decodePixabayVideos
	return c
}

func pixabayParams(key string, q media.Query) url.Values {
	v := url.Values{}
	v.Set("key", key)
	v.Set("q", q.Keyword)
	if q.Lang != "" {
		v.Set("lang", q.Lang)
	}
	v.Set("orientation", "vertical")
	v.Set("safesearch", "true")
	v.Set("per_page", strconv.Itoa(clamp(q.MaxResults, pixabayMinPerPage, pixabayMaxPerPage)))
	return v
}

type pixabayImageResponse struct {
	Hits []struct {
		ID            int64  `json:"id"`
		PageURL       string `json:"pageURL"`
		Tags          string `json:"tags"`
		WebformatURL  string `json:"webformatURL"`
		LargeImageURL string `json:"largeImageURL"`
		ImageWidth    int    `json:"imageWidth"`
		ImageHeight   int    `json:"imageHeight"`
	} `json:"hits"`
}

func decodePixabayImages(r io.Reader, q media.Query) ([]media.Asset, error) {
	var resp pixabayImageResponse
	if err := decodeJSON(r, &resp); err != nil {
		return nil, err
	}

	assets := make([]media.Asset, 0, len(resp.Hits))
	for _, h := range resp.Hits {
		assets = append(assets, media.Asset{
			ID:           strconv.FormatInt(h.ID, 10),
			Keyword:      q.Keyword,
			Title:        firstTag(h.Tags),
			SourceURL:    h.PageURL,
			ThumbnailURL: h.WebformatURL,
			FullURL:      h.LargeImageURL,
			Provider:     PixabayName,
			Kind:         media.KindImage,
			Width:        h.ImageWidth,
			Height:       h.ImageHeight,
		})
	}
	return assets, nil
}

type pixabayVideoFile struct {
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

type pixabayVideoResponse struct {
	Hits []struct {
		ID       int64  `json:"id"`
		PageURL  string `json:"pageURL"`
		Tags     string `json:"tags"`
		Duration int    `json:"duration"`
		Videos   struct {
			Large  pixabayVideoFile `json:"large"`
			Medium pixabayVideoFile `json:"medium"`
			Small  pixabayVideoFile `json:"small"`
			Tiny   pixabayVideoFile `json:"tiny"`
		} `json:"videos"`
	} `json:"hits"`
}

func decodePixabayVideos(r io.Reader, q media.Query) ([]media.Asset, error) {
	var resp pixabayVideoResponse
	if err := decodeJSON(r, &resp); err != nil {
		return nil, err
	}

	assets := make([]media.Asset, 0, len(resp.Hits))
	for _, h := range resp.Hits {
		full := h.Videos.Large
		if full.URL == "" {
			full = h.Videos.Medium
		}
		thumb := h.Videos.Tiny.Thumbnail
		if thumb == "" {
			thumb = h.Videos.Tiny.URL
		}
		assets = append(assets, media.Asset{
			ID:           strconv.FormatInt(h.ID, 10),
			Keyword:      q.Keyword,
			Title:        firstTag(h.Tags),
			SourceURL:    h.PageURL,
			ThumbnailURL: thumb,
			FullURL:      full.URL,
			Provider:     PixabayVideoName,
			Kind:         media.KindVideo,
			Width:        h.Videos.Medium.Width,
			Height:       h.Videos.Medium.Height,
			Duration:     time.Duration(h.Duration) * time.Second,
		})
	}
	return assets, nil
}
