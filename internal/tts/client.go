// Package tts is a thin client for a Google Translate compatible speech
// endpoint. It returns MP3 bytes and does no audio processing.
package tts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/cognicore/reelmeta/internal/httpx"
	"github.com/cognicore/reelmeta/pkg/reelmeta/internalerr"
)

const (
	DefaultBaseURL = "https://translate.google.com/translate_tts"
	DefaultLang    = "ja"

	// MaxChunkRunes is the longest text sent in one request.
	MaxChunkRunes = 100
)

// Languages lists the supported language codes with their display names.
var Languages = map[string]string{
	"ja":    "日本語",
	"en":    "英語",
	"zh-CN": "中国語（簡体）",
	"zh-TW": "中国語（繁体）",
	"ko":    "韓国語",
	"fr":    "フランス語",
	"de":    "ドイツ語",
	"es":    "スペイン語",
	"it":    "イタリア語",
	"ru":    "ロシア語",
}

// Client synthesizes speech over HTTP.
type Client struct {
	BaseURL string
	Slow    bool

	HTTPClient *http.Client
}

// Synthesize returns MP3 audio for text. Long text is split at sentence
// and word boundaries and the per-chunk streams are concatenated.
func (c *Client) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	if lang == "" {
		lang = DefaultLang
	}
	if _, ok := Languages[lang]; !ok {
		return nil, fmt.Errorf("%w: unsupported language %q", internalerr.ErrInvalidInput, lang)
	}
	chunks := Split(text, MaxChunkRunes)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: empty text", internalerr.ErrInvalidInput)
	}

	var audio bytes.Buffer
	for i, chunk := range chunks {
		if err := c.fetch(ctx, &audio, chunk, lang, i, len(chunks)); err != nil {
			return nil, fmt.Errorf("tts chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}
	return audio.Bytes(), nil
}

func (c *Client) fetch(ctx context.Context, w io.Writer, text, lang string, idx, total int) error {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	speed := "1"
	if c.Slow {
		speed = "0.3"
	}

	v := url.Values{}
	v.Set("ie", "UTF-8")
	v.Set("client", "tw-ob")
	v.Set("q", text)
	v.Set("tl", lang)
	v.Set("ttsspeed", speed)
	v.Set("idx", strconv.Itoa(idx))
	v.Set("total", strconv.Itoa(total))
	v.Set("textlen", strconv.Itoa(len([]rune(text))))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+v.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tts: HTTP %d", resp.StatusCode)
	}
	_, err = io.Copy(w, resp.Body)
	return err
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return httpx.NewClient(0)
}

// Split cuts text into chunks of at most max runes, preferring to end a
// chunk after sentence punctuation, then after whitespace.
func Split(text string, max int) []string {
	var chunks []string
	runes := []rune(strings.TrimSpace(text))
	for len(runes) > 0 {
		if len(runes) <= max {
			chunks = appendChunk(chunks, runes)
			break
		}

		cut := -1
		for i := max - 1; i > 0; i-- {
			if isSentenceEnd(runes[i]) {
				cut = i + 1
				break
			}
		}
		if cut < 0 {
			for i := max - 1; i > 0; i-- {
				if unicode.IsSpace(runes[i]) {
					cut = i + 1
					break
				}
			}
		}
		if cut < 0 {
			cut = max
		}
		chunks = appendChunk(chunks, runes[:cut])
		runes = runes[cut:]
	}
	return chunks
}

func appendChunk(chunks []string, runes []rune) []string {
	if s := strings.TrimSpace(string(runes)); s != "" {
		chunks = append(chunks, s)
	}
	return chunks
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？', '、', ',', '\n':
		return true
	}
	return false
}
