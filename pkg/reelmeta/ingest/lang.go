package ingest

import (
	"strings"

	"github.com/abadojack/whatlanggo"
)

// languageCodes maps detected languages to the ISO 639-1 hints the media
// providers accept.
var languageCodes = map[whatlanggo.Lang]string{
	whatlanggo.Jpn: "ja",
	whatlanggo.Eng: "en",
	whatlanggo.Cmn: "zh",
	whatlanggo.Kor: "ko",
	whatlanggo.Fra: "fr",
	whatlanggo.Deu: "de",
	whatlanggo.Spa: "es",
	whatlanggo.Ita: "it",
	whatlanggo.Rus: "ru",
	whatlanggo.Por: "pt",
}

// DetectLanguage guesses the ISO 639-1 code of text. Kana always means
// Japanese. Blank text, unknown languages and unsupported codes return
// fallback.
func DetectLanguage(text, fallback string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return fallback
	}
	for _, r := range text {
		if s := scriptOf(r); s == scriptHiragana || s == scriptKatakana {
			return "ja"
		}
	}
	info := whatlanggo.Detect(text)
	if code, ok := languageCodes[info.Lang]; ok {
		return code
	}
	return fallback
}
