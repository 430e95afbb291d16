package ingest

import (
	"strings"
	"testing"
	"unicode"

	"github.com/cognicore/reelmeta/pkg/reelmeta/stoplist"
)

func newTestStops(terms ...string) *stoplist.Manager {
	m := stoplist.NewManager()
	m.Merge(stoplist.SourceEnglish, terms)
	return m
}

func TestTokenizerBasic(t *testing.T) {
	tokenizer := NewTokenizer(newTestStops("the", "a", "and", "of", "over"))

	tokens := tokenizer.Tokenize("The quick brown fox jumps over the lazy dog")

	expected := []string{"quick", "brown", "fox", "jumps", "lazy", "dog"}
	if strings.Join(tokens, " ") != strings.Join(expected, " ") {
		t.Errorf("expected %v, got %v", expected, tokens)
	}
}

func TestTokenizerCaseNormalization(t *testing.T) {
	tokenizer := NewTokenizer(nil)

	for _, tok := range tokenizer.Tokenize("BERT Transformer KYOTO") {
		if tok != strings.ToLower(tok) {
			t.Errorf("token %s should be lowercased", tok)
		}
	}
}

func TestTokenizerDropsSingleRunes(t *testing.T) {
	tokenizer := NewTokenizer(nil)

	tokens := tokenizer.Tokenize("a b cd e 塩 は")
	if len(tokens) != 1 || tokens[0] != "cd" {
		t.Errorf("expected [cd], got %v", tokens)
	}
}

func TestTokenizerAlphanumericOnly(t *testing.T) {
	tokenizer := NewTokenizer(nil)

	text := "hello@world.com test#tag machine-learning 123 ！？「京都」 x\u0301yz q\u20dd\u0323r"
	for _, tok := range tokenizer.Tokenize(text) {
		for _, r := range tok {
			if !unicode.IsLetter(r) && !unicode.IsNumber(r) {
				t.Errorf("token %q contains non-alphanumeric rune %q", tok, r)
			}
		}
	}
}

func TestTokenizerCombiningMarks(t *testing.T) {
	tokenizer := NewTokenizer(nil)

	// e + acute and か + dakuten compose under NFKC; x + acute has no
	// precomposed form and loses the mark.
	tokens := tokenizer.Tokenize("cafe\u0301 か\u3099っこいい x\u0301yz")
	expected := []string{"café", "がっこいい", "xyz"}
	if strings.Join(tokens, " ") != strings.Join(expected, " ") {
		t.Errorf("expected %v, got %v", expected, tokens)
	}
}

func TestTokenizerJapaneseScriptBoundaries(t *testing.T) {
	tokenizer := NewTokenizer(nil)

	tokens := tokenizer.Tokenize("今日は簡単で美味しい塩レモンパスタ")
	want := map[string]bool{"今日": true, "簡単": true, "美味": true, "レモンパスタ": true}
	got := make(map[string]bool)
	for _, tok := range tokens {
		got[tok] = true
	}
	for w := range want {
		if !got[w] {
			t.Errorf("expected token %q in %v", w, tokens)
		}
	}
}

func TestTokenizerMixedLatinCJK(t *testing.T) {
	tokenizer := NewTokenizer(nil)

	tokens := tokenizer.Tokenize("TikTokで京都travel")
	expected := []string{"tiktok", "京都", "travel"}
	if strings.Join(tokens, "|") != strings.Join(expected, "|") {
		t.Errorf("expected %v, got %v", expected, tokens)
	}
}

func TestTokenizerProlongedSoundMark(t *testing.T) {
	tokenizer := NewTokenizer(nil)

	tokens := tokenizer.Tokenize("スーパーでチーズ")
	expected := []string{"スーパー", "チーズ"}
	if strings.Join(tokens, "|") != strings.Join(expected, "|") {
		t.Errorf("expected %v, got %v", expected, tokens)
	}
}

func TestTokenizerFullWidthFolding(t *testing.T) {
	tokenizer := NewTokenizer(nil)

	tokens := tokenizer.Tokenize("ＰＡＳＴＡ ｶﾚｰ")
	expected := []string{"pasta", "カレー"}
	if strings.Join(tokens, "|") != strings.Join(expected, "|") {
		t.Errorf("expected %v, got %v", expected, tokens)
	}
}

func TestTokenizerStopwordsFiltered(t *testing.T) {
	stops := stoplist.NewManager()
	stops.Merge(stoplist.SourceCustom, []string{"こと", "する"})
	tokenizer := NewTokenizer(stops)

	for _, tok := range tokenizer.Tokenize("こと する 料理") {
		if tok == "こと" || tok == "する" {
			t.Errorf("stopword %q should be filtered", tok)
		}
	}
}

func TestTokenizerEmptyInput(t *testing.T) {
	tokenizer := NewTokenizer(nil)

	if tokens := tokenizer.Tokenize(""); len(tokens) != 0 {
		t.Errorf("empty input should produce no tokens, got %v", tokens)
	}
	if tokens := tokenizer.Tokenize("  \n\t。、"); len(tokens) != 0 {
		t.Errorf("punctuation-only input should produce no tokens, got %v", tokens)
	}
}

func TestNormalizeStopsWhenConsumerBreaks(t *testing.T) {
	tokenizer := NewTokenizer(nil)

	var seen []string
	for tok := range tokenizer.Normalize("one two three four") {
		seen = append(seen, tok)
		if len(seen) == 2 {
			break
		}
	}
	if len(seen) != 2 || seen[0] != "one" || seen[1] != "two" {
		t.Errorf("expected [one two], got %v", seen)
	}
}
