// Package pipeline classifies each token of an input text as a non-word
// misspelling, a real-word contextual error, a grammar violation, or clean,
// and assembles one ordered list of annotated error spans with ranked
// correction candidates.
package pipeline

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"proofd/internal/candidates"
	"proofd/internal/customdict"
	"proofd/internal/grammar"
	"proofd/internal/lexicon"
	"proofd/internal/ngram"
	"proofd/internal/postag"
)

// Kind is the class of a detected error.
type Kind string

const (
	KindNonWord  Kind = "non-word"
	KindRealWord Kind = "real-word"
	KindGrammar  Kind = "grammar"
)

// grammarScore is the fixed confidence attached to rule-based grammar spans.
const grammarScore = 0.9

// userWordCount is the corpus count assigned to user-added words so they
// outrank static entries at equal distance.
const userWordCount = 1_000_000_000

// ErrorSpan is one detected error. Offsets are byte positions in the input
// text; the candidate list is never empty and is ordered best-first.
type ErrorSpan struct {
	Start      int      `json:"start"`
	End        int      `json:"end"`
	Kind       Kind     `json:"kind"`
	Candidates []string `json:"candidates"`
	Score      float64  `json:"score"`
}

// AnalysisResult is the ordered, non-overlapping span list for one input.
type AnalysisResult struct {
	Spans []ErrorSpan `json:"spans"`
}

// Config holds the pipeline's tuning knobs. Zero fields take defaults.
type Config struct {
	MaxEditDistance   int
	MaxCandidates     int
	MinWordLength     int
	RealWordThreshold float64
	RealWordGain      float64
	TaggerTimeout     time.Duration
}

func (c *Config) applyDefaults() {
	if c.MaxEditDistance <= 0 {
		c.MaxEditDistance = 2
	}
	if c.MaxCandidates <= 0 {
		c.MaxCandidates = 5
	}
	if c.MinWordLength <= 0 {
		c.MinWordLength = 3
	}
	if c.RealWordThreshold <= 0 {
		c.RealWordThreshold = 1e-4
	}
	if c.RealWordGain <= 0 {
		c.RealWordGain = 10
	}
	if c.TaggerTimeout <= 0 {
		c.TaggerTimeout = 2 * time.Second
	}
}

// Analyzer runs one analysis pass over a text. It holds only read-only or
// internally synchronized state, so concurrent Analyze calls need no
// coordination.
type Analyzer struct {
	cfg       Config
	lex       *lexicon.Lexicon
	model     *ngram.Model
	gen       *candidates.Generator
	annotator postag.Annotator
	rules     *grammar.Engine
	dict      *customdict.CustomDict
	logger    *zap.Logger
}

// NewAnalyzer wires the detectors together. annotator and dict may be nil:
// without an annotator every sentence degrades to spelling-only checks,
// without a dict custom words live in memory only.
func NewAnalyzer(
	cfg Config,
	lex *lexicon.Lexicon,
	model *ngram.Model,
	gen *candidates.Generator,
	annotator postag.Annotator,
	rules *grammar.Engine,
	dict *customdict.CustomDict,
	logger *zap.Logger,
) *Analyzer {
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		cfg:       cfg,
		lex:       lex,
		model:     model,
		gen:       gen,
		annotator: annotator,
		rules:     rules,
		dict:      dict,
		logger:    logger,
	}
}

// Analyze classifies every token of text and returns the merged span list,
// sorted by start offset and strictly non-overlapping. Clean text yields an
// empty result.
func (a *Analyzer) Analyze(ctx context.Context, text string) (*AnalysisResult, error) {
	var grammarSpans, nonWordSpans, realWordSpans []ErrorSpan

	for _, ss := range SplitSentences(text) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sent := text[ss[0]:ss[1]]
		toks := Tokenize(sent)
		anns := a.annotateSentence(ctx, sent)

		if anns != nil && a.rules != nil {
			for _, f := range a.rules.Check(sent, ss[0], anns) {
				grammarSpans = append(grammarSpans, ErrorSpan{
					Start:      f.Start,
					End:        f.End,
					Kind:       KindGrammar,
					Candidates: f.Candidates,
					Score:      grammarScore,
				})
			}
		}

		norms := make([]string, len(toks))
		for i, t := range toks {
			norms[i] = t.Norm
		}

		for i, t := range toks {
			if utf8.RuneCountInString(t.Norm) < a.cfg.MinWordLength {
				continue
			}
			start, end := ss[0]+t.Start, ss[0]+t.End

			if !a.lex.Contains(t.Norm) {
				cands := a.gen.Generate(t.Norm, a.cfg.MaxCandidates, a.cfg.MaxEditDistance)
				if len(cands) == 0 {
					// Detected but uncorrectable; suppressed per the
					// non-empty-candidate invariant.
					a.logger.Debug("no candidates for misspelling", zap.String("token", t.Text))
					continue
				}
				list := make([]string, len(cands))
				for k, c := range cands {
					list[k] = matchCase(t.Text, c.Term)
				}
				nonWordSpans = append(nonWordSpans, ErrorSpan{
					Start:      start,
					End:        end,
					Kind:       KindNonWord,
					Candidates: list,
					Score:      1.0 / float64(1+cands[0].Distance),
				})
				continue
			}

			if span, ok := a.checkRealWord(toks, norms, i, anns); ok {
				span.Start, span.End = start, end
				realWordSpans = append(realWordSpans, span)
			}
		}
	}

	// Grammar beats spelling on overlap; a token absent from the lexicon
	// cannot also be real-word misuse, so NonWord beats RealWord.
	spans := mergeSpans(grammarSpans, nonWordSpans, realWordSpans)
	return &AnalysisResult{Spans: spans}, nil
}

// checkRealWord decides whether a lexicon-known token is contextually
// implausible and a close, better-fitting alternative exists. Alternatives
// are gated by orthographic closeness (edit distance 1); an alternative must
// beat the original's score by the configured gain factor to qualify.
// Offsets on the returned span are filled in by the caller.
func (a *Analyzer) checkRealWord(toks []Token, norms []string, i int, anns []postag.Annotation) (ErrorSpan, bool) {
	t := toks[i]
	left := norms[maxInt(0, i-2):i]
	right := norms[minInt(len(norms), i+1):minInt(len(norms), i+3)]

	score := a.model.Score(t.Norm, left, right)
	if score >= a.cfg.RealWordThreshold {
		return ErrorSpan{}, false
	}

	origTag := tagFor(anns, t.Text)
	if skipRealWordTag(origTag) {
		return ErrorSpan{}, false
	}

	alts := a.gen.Generate(t.Norm, a.cfg.MaxCandidates*4, 1)
	type scoredAlt struct {
		term  string
		score float64
	}
	var keep []scoredAlt
	for _, c := range alts {
		if c.Term == t.Norm || !a.lex.Contains(c.Term) {
			continue
		}
		s := a.model.Score(c.Term, left, right)
		if s >= score*a.cfg.RealWordGain {
			keep = append(keep, scoredAlt{term: c.Term, score: s})
		}
	}
	if len(keep) == 0 {
		return ErrorSpan{}, false
	}

	sort.Slice(keep, func(x, y int) bool {
		if keep[x].score != keep[y].score {
			return keep[x].score > keep[y].score
		}
		return keep[x].term < keep[y].term
	})
	if len(keep) > a.cfg.MaxCandidates {
		keep = keep[:a.cfg.MaxCandidates]
	}
	list := make([]string, len(keep))
	for k, alt := range keep {
		list[k] = matchCase(t.Text, alt.term)
	}
	return ErrorSpan{Kind: KindRealWord, Candidates: list, Score: keep[0].score}, true
}

func (a *Analyzer) annotateSentence(ctx context.Context, sent string) []postag.Annotation {
	if a.annotator == nil {
		return nil
	}
	actx := ctx
	if a.cfg.TaggerTimeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, a.cfg.TaggerTimeout)
		defer cancel()
	}
	anns, err := a.annotator.Annotate(actx, sent)
	if err != nil {
		a.logger.Debug("annotator failed, sentence degraded to spelling checks",
			zap.String("sentence", sent), zap.Error(err))
		return nil
	}
	return anns
}

// AddCustomWord persists a user word and makes it live: lexicon overlay,
// candidate index, and the Redis store when configured. Words the lexicon
// already knows keep their corpus count; only genuinely new words get the
// user-word boost.
func (a *Analyzer) AddCustomWord(ctx context.Context, word string) error {
	lw := strings.ToLower(strings.TrimSpace(word))
	if lw == "" {
		return errors.New("empty word")
	}
	if a.dict != nil {
		if err := a.dict.Add(ctx, lw); err != nil {
			return err
		}
	}
	known := a.lex.Contains(lw)
	a.lex.AddUserWord(lw)
	if !known {
		a.gen.AddEntry(lw, userWordCount)
	}
	return nil
}

// RemoveCustomWord removes a user word everywhere AddCustomWord put it. The
// base lexicon is authoritative for its own contents: a word that is still
// known after the overlay removal stays in the candidate index at its corpus
// count.
func (a *Analyzer) RemoveCustomWord(ctx context.Context, word string) error {
	lw := strings.ToLower(strings.TrimSpace(word))
	if lw == "" {
		return errors.New("empty word")
	}
	if a.dict != nil {
		if err := a.dict.Remove(ctx, lw); err != nil {
			return err
		}
	}
	a.lex.RemoveUserWord(lw)
	if a.lex.Contains(lw) {
		count := a.model.Freq(lw)
		if count < 1 {
			count = 1
		}
		a.gen.AddEntry(lw, count)
		return nil
	}
	a.gen.RemoveEntry(lw)
	return nil
}

// mergeSpans concatenates span groups in priority order, dropping any span
// that overlaps an already accepted one, and sorts the result by offset.
func mergeSpans(groups ...[]ErrorSpan) []ErrorSpan {
	out := make([]ErrorSpan, 0)
	for _, g := range groups {
		for _, s := range g {
			if !overlapsAny(out, s) {
				out = append(out, s)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].End < out[j].End
	})
	return out
}

func overlapsAny(spans []ErrorSpan, s ErrorSpan) bool {
	for _, o := range spans {
		if s.Start < o.End && o.Start < s.End {
			return true
		}
	}
	return false
}

func tagFor(anns []postag.Annotation, token string) string {
	for _, a := range anns {
		if strings.EqualFold(a.Token, token) {
			return a.Tag
		}
	}
	return ""
}

// skipRealWordTag mirrors the word classes excluded from contextual checks:
// pronouns, proper nouns, determiners, and numbers.
func skipRealWordTag(tag string) bool {
	switch tag {
	case "PRP", "PRP$", "WP", "WP$", "DT", "PDT", "CD", "NNP", "NNPS", "EX":
		return true
	}
	return false
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
