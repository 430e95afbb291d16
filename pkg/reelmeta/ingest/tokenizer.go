package ingest

import (
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Stopper reports whether a normalized token is a stopword.
type Stopper interface {
	IsStop(token string) bool
}

// Tokenizer handles text tokenization and normalization
type Tokenizer struct {
	stops Stopper
}

// NewTokenizer creates a tokenizer filtering with stops. A nil Stopper
// disables stopword filtering.
func NewTokenizer(stops Stopper) *Tokenizer {
	return &Tokenizer{stops: stops}
}

type script uint8

const (
	scriptNone script = iota
	scriptLatin
	scriptHan
	scriptHiragana
	scriptKatakana
	scriptOther
)

// Normalize yields the normalized candidate terms of text in source order.
//
// Text is NFKC-folded and lower-cased, then cut at every rune that is not a
// letter or digit and at every script change (Latin/digits, Han, Hiragana,
// Katakana). That keeps "レモンパスタ" and "京都" as words inside unspaced
// Japanese while leaving Latin words intact. Combining marks that NFKC
// could not fold into their base are dropped without ending the word. A term is yielded when it is
// longer than one rune and not a stopword.
func (t *Tokenizer) Normalize(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		text = strings.ToLower(norm.NFKC.String(text))

		var current strings.Builder
		cur := scriptNone

		flush := func() bool {
			if current.Len() == 0 {
				return true
			}
			word := current.String()
			current.Reset()
			cur = scriptNone
			if !t.keep(word) {
				return true
			}
			return yield(word)
		}

		for _, r := range text {
			if !unicode.IsLetter(r) && !unicode.IsNumber(r) {
				if unicode.IsMark(r) {
					continue
				}
				if !flush() {
					return
				}
				continue
			}

			s := scriptOf(r)
			if s != scriptNone && cur != scriptNone && s != cur {
				if !flush() {
					return
				}
			}
			if s != scriptNone {
				cur = s
			}
			current.WriteRune(r)
		}
		flush()
	}
}

// Tokenize collects Normalize into a slice.
func (t *Tokenizer) Tokenize(text string) []string {
	var tokens []string
	for tok := range t.Normalize(text) {
		tokens = append(tokens, tok)
	}
	return tokens
}

func (t *Tokenizer) keep(word string) bool {
	if utf8.RuneCountInString(word) <= 1 {
		return false
	}
	if t.stops != nil && t.stops.IsStop(word) {
		return false
	}
	return true
}

// scriptOf classifies a letter or digit. Script-neutral letters such as the
// prolonged sound mark (U+30FC) return scriptNone and extend the current run.
func scriptOf(r rune) script {
	switch {
	case unicode.Is(unicode.Han, r):
		return scriptHan
	case unicode.Is(unicode.Hiragana, r):
		return scriptHiragana
	case unicode.Is(unicode.Katakana, r):
		return scriptKatakana
	case unicode.Is(unicode.Latin, r), unicode.IsDigit(r):
		return scriptLatin
	case unicode.Is(unicode.Common, r), unicode.Is(unicode.Inherited, r):
		return scriptNone
	default:
		return scriptOther
	}
}
