package ingest

import "testing"

func TestDetectLanguageKana(t *testing.T) {
	if got := DetectLanguage("京都の魅力を60秒でご紹介します", "en"); got != "ja" {
		t.Errorf("expected ja, got %q", got)
	}
	if got := DetectLanguage("レモン", "en"); got != "ja" {
		t.Errorf("expected ja for katakana keyword, got %q", got)
	}
}

func TestDetectLanguageEnglish(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog while the children watch from the kitchen window."
	if got := DetectLanguage(text, "ja"); got != "en" {
		t.Errorf("expected en, got %q", got)
	}
}

func TestDetectLanguageFallback(t *testing.T) {
	if got := DetectLanguage("   ", "ja"); got != "ja" {
		t.Errorf("blank text should fall back, got %q", got)
	}
}
