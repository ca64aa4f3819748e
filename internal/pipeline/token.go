package pipeline

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Token is one word of the input text. Offsets are byte positions in the
// source; Norm is the lowercased surface form. Tokens are immutable once
// produced.
type Token struct {
	Text  string
	Start int
	End   int
	Norm  string
}

var wordRe = regexp.MustCompile(`[A-Za-z]+(?:'[A-Za-z]+)?`)

// Tokenize returns the word tokens of text with their offsets. Digits and
// punctuation are not tokens; sentence structure is handled separately.
func Tokenize(text string) []Token {
	idxs := wordRe.FindAllStringIndex(text, -1)
	toks := make([]Token, 0, len(idxs))
	for _, p := range idxs {
		t := text[p[0]:p[1]]
		toks = append(toks, Token{Text: t, Start: p[0], End: p[1], Norm: strings.ToLower(t)})
	}
	return toks
}

// SplitSentences returns offset ranges of the sentences in text, split on
// terminal punctuation. Text after the last terminator forms a final
// sentence.
func SplitSentences(text string) [][2]int {
	var spans [][2]int
	start := -1
	for i, r := range text {
		if start < 0 && !unicode.IsSpace(r) {
			start = i
		}
		if r == '.' || r == '!' || r == '?' {
			if start >= 0 {
				spans = append(spans, [2]int{start, i + utf8.RuneLen(r)})
				start = -1
			}
		}
	}
	if start >= 0 {
		spans = append(spans, [2]int{start, len(text)})
	}
	return spans
}
