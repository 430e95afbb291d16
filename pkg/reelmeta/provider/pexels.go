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
	PexelsName      = "pexels"
	PexelsVideoName = "pexels-video"

	pexelsImageURL = "https://api.pexels.com/v1/search"
	pexelsVideoURL = "https://api.pexels.com/videos/search"

	pexelsMaxPerPage = 80
)

// pexelsLocales maps language hints to Pexels search locales.
var pexelsLocales = map[string]string{
	"ja": "ja-JP",
	"en": "en-US",
	"zh": "zh-CN",
	"ko": "ko-KR",
	"fr": "fr-FR",
	"de": "de-DE",
	"es": "es-ES",
	"it": "it-IT",
	"ru": "ru-RU",
	"pt": "pt-BR",
}

// NewPexels returns the Pexels photo adapter.
func NewPexels(cfg Config) *Client {
	c := newClient(PexelsName, media.KindImage, pexelsImageURL, cfg)
	c.params = pexelsParams
	c.decode = decodePexelsPhotos
	return c
}

// NewPexelsVideo returns the Pexels video adapter.
func NewPexelsVideo(cfg Config) *Client {
	c := newClient(PexelsVideoName, media.KindVideo, pexelsVideoURL, cfg)
	c.params = pexelsParams
	c.decode = decodePexelsVideos
	return c
}

func pexelsParams(key string, q media.Query) (url.Values, http.Header) {
	v := url.Values{}
	v.Set("query", q.Keyword)
	v.Set("per_page", strconv.Itoa(clamp(q.MaxResults, 1, pexelsMaxPerPage)))
	v.Set("orientation", "portrait")
	if locale, ok := pexelsLocales[q.Lang]; ok {
		v.Set("locale", locale)
	}
	h := http.Header{}
	h.Set("Authorization", key)
	return v, h
}

type pexelsPhotoResponse struct {
	Photos []struct {
		ID     int64  `json:"id"`
		URL    string `json:"url"`
		Alt    string `json:"alt"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
		Src    struct {
			Original string `json:"original"`
			Large    string `json:"large"`
			Medium   string `json:"medium"`
		} `json:"src"`
	} `json:"photos"`
}

func decodePexelsPhotos(r io.Reader, q media.Query) ([]media.Asset, error) {
	var resp pexelsPhotoResponse
	if err := decodeJSON(r, &resp); err != nil {
		return nil, err
	}

	assets := make([]media.Asset, 0, len(resp.Photos))
	for _, p := range resp.Photos {
		assets = append(assets, media.Asset{
			ID:           strconv.FormatInt(p.ID, 10),
			Keyword:      q.Keyword,
			Title:        plainText(p.Alt),
			SourceURL:    p.URL,
			ThumbnailURL: p.Src.Medium,
			FullURL:      p.Src.Large,
			Provider:     PexelsName,
			Kind:         media.KindImage,
			Width:        p.Width,
			Height:       p.Height,
		})
	}
	return assets, nil
}

type pexelsVideoResponse struct {
	Videos []struct {
		ID         int64  `json:"id"`
		URL        string `json:"url"`
		Image      string `json:"image"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		Duration   int    `json:"duration"`
		VideoFiles []struct {
			Quality  string `json:"quality"`
			FileType string `json:"file_type"`
			Width    int    `json:"width"`
			Height   int    `json:"height"`
			Link     string `json:"link"`
		} `json:"video_files"`
	} `json:"videos"`
}

func decodePexelsVideos(r io.Reader, q media.Query) ([]media.Asset, error) {
	var resp pexelsVideoResponse
	if err := decodeJSON(r, &resp); err != nil {
		return nil, err
	}

	assets := make([]media.Asset, 0, len(resp.Videos))
	for _, v := range resp.Videos {
		// the highest resolution rendition wins
		best, bestPixels := "", -1
		for _, f := range v.VideoFiles {
			if f.Link == "" {
				continue
			}
			if px := f.Width * f.Height; px > bestPixels {
				best, bestPixels = f.Link, px
			}
		}
		if best == "" {
			continue
		}
		assets = append(assets, media.Asset{
			ID:           strconv.FormatInt(v.ID, 10),
			Keyword:      q.Keyword,
			SourceURL:    v.URL,
			ThumbnailURL: v.Image,
			FullURL:      best,
			Provider:     PexelsVideoName,
			Kind:         media.KindVideo,
			Width:        v.Width,
			Height:       v.Height,
			Duration:     time.Duration(v.Duration) * time.Second,
		})
	}
	return assets, nil
}
