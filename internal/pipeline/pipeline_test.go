package pipeline

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"

	"proofd/internal/candidates"
	"proofd/internal/grammar"
	"proofd/internal/lexicon"
	"proofd/internal/ngram"
	"proofd/internal/postag"
)

var fixtureWords = []string{
	"he", "she", "it", "i", "they", "we", "a", "the", "this", "to", "of", "at",
	"is", "was", "are", "can", "want", "wants", "become", "great", "scientist",
	"yesterday", "went", "go", "home", "lab", "sea", "see", "results", "test",
	"doctor", "gave", "me", "prescription", "sentence", "fine", "giraffe",
	"strange", "animal", "look", "more",
}

const fixtureNgrams = `the 50
to 30
see 10
sea 1
want 8
wants 6
become 5
great 5
scientist 5
he 10
they 5
went 6
lab 5
results 5
doctor 5
gave 5
me 5
prescription 5
this 5
sentence 5
is 10
fine 5
giraffe 4
strange 4
animal 4
yesterday 5
look 4
at 6
of 5
test 4
to see 5
to see the 4
`

// fixtureTags drives the fake annotator; unknown words default to NN.
var fixtureTags = map[string]string{
	"he": "PRP", "she": "PRP", "it": "PRP", "i": "PRP", "they": "PRP", "me": "PRP",
	"a": "DT", "the": "DT", "this": "DT",
	"to": "TO", "of": "IN", "at": "IN",
	"is": "VBZ", "was": "VBD", "are": "VBP", "can": "MD",
	"want": "VBP", "wants": "VBZ", "become": "VB", "went": "VBD",
	"go": "VB", "gave": "VBD", "look": "VB",
	"great": "JJ", "fine": "JJ", "strange": "JJ", "more": "JJR",
	"scientist": "NN", "yesterday": "NN", "lab": "NN", "sea": "NN", "see": "VB",
	"doctor": "NN", "prescription": "NN", "sentence": "NN", "giraffe": "NN",
	"animal": "NN", "test": "NN", "home": "NN",
	"results": "NNS",
}

// tagMapAnnotator tags sentences from a fixed word table so tests do not
// depend on the external tagger's model files.
type tagMapAnnotator struct{ tags map[string]string }

func (a tagMapAnnotator) Annotate(_ context.Context, sentence string) ([]postag.Annotation, error) {
	var anns []postag.Annotation
	for _, tok := range Tokenize(sentence) {
		tag, ok := a.tags[tok.Norm]
		if !ok {
			tag = "NN"
		}
		anns = append(anns, postag.Annotation{Token: tok.Text, Tag: tag})
	}
	return postag.AssignRoles(anns), nil
}

type failingAnnotator struct{}

func (failingAnnotator) Annotate(context.Context, string) ([]postag.Annotation, error) {
	return nil, errors.New("tagger unavailable")
}

func newTestAnalyzer(t *testing.T, cfg Config, ann postag.Annotator) *Analyzer {
	t.Helper()
	dir := t.TempDir()

	lexPath := filepath.Join(dir, "words.txt")
	if err := os.WriteFile(lexPath, []byte(strings.Join(fixtureWords, "\n")+"\n"), 0600); err != nil {
		t.Fatalf("write lexicon: %v", err)
	}
	lex, err := lexicon.Load(lexPath)
	if err != nil {
		t.Fatalf("load lexicon: %v", err)
	}

	ngramPath := filepath.Join(dir, "ngrams.txt")
	if err := os.WriteFile(ngramPath, []byte(fixtureNgrams), 0600); err != nil {
		t.Fatalf("write ngrams: %v", err)
	}
	model, err := ngram.Load(ngramPath)
	if err != nil {
		t.Fatalf("load ngrams: %v", err)
	}

	gen := candidates.NewGenerator()
	for _, w := range lex.Words() {
		count := model.Freq(w)
		if count < 1 {
			count = 1
		}
		gen.AddEntry(w, count)
	}

	return NewAnalyzer(cfg, lex, model, gen, ann, grammar.NewEngine(), nil, zap.NewNop())
}

// e2eConfig sets the contextual thresholds to match the small test corpus.
func e2eConfig() Config {
	return Config{RealWordThreshold: 0.01, RealWordGain: 10}
}

func spanText(text string, s ErrorSpan) string { return text[s.Start:s.End] }

func TestAnalyze_GrammarAndNonWord(t *testing.T) {
	a := newTestAnalyzer(t, e2eConfig(), tagMapAnnotator{tags: fixtureTags})
	text := "He want to become a great sientist."

	res, err := a.Analyze(context.Background(), text)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(res.Spans) != 2 {
		t.Fatalf("got %d spans, want 2: %+v", len(res.Spans), res.Spans)
	}

	g := res.Spans[0]
	if g.Kind != KindGrammar || spanText(text, g) != "want" {
		t.Errorf("span 0 = %+v covering %q, want grammar over \"want\"", g, spanText(text, g))
	}
	if len(g.Candidates) == 0 || g.Candidates[0] != "wants" {
		t.Errorf("grammar candidates = %v, want [wants]", g.Candidates)
	}

	nw := res.Spans[1]
	if nw.Kind != KindNonWord || spanText(text, nw) != "sientist" {
		t.Errorf("span 1 = %+v covering %q, want non-word over \"sientist\"", nw, spanText(text, nw))
	}
	if len(nw.Candidates) == 0 || nw.Candidates[0] != "scientist" {
		t.Errorf("non-word candidates = %v, want scientist first", nw.Candidates)
	}
	if nw.Score <= 0 || nw.Score > 1 {
		t.Errorf("non-word score = %g, outside (0, 1]", nw.Score)
	}
}

func TestAnalyze_RealWordError(t *testing.T) {
	a := newTestAnalyzer(t, e2eConfig(), tagMapAnnotator{tags: fixtureTags})
	text := "They went to sea the results."

	res, err := a.Analyze(context.Background(), text)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(res.Spans) != 1 {
		t.Fatalf("got %d spans, want 1: %+v", len(res.Spans), res.Spans)
	}
	s := res.Spans[0]
	if s.Kind != KindRealWord || spanText(text, s) != "sea" {
		t.Errorf("span = %+v covering %q, want real-word over \"sea\"", s, spanText(text, s))
	}
	if len(s.Candidates) == 0 || s.Candidates[0] != "see" {
		t.Errorf("candidates = %v, want see first", s.Candidates)
	}
}

func TestAnalyze_CasePreserved(t *testing.T) {
	a := newTestAnalyzer(t, e2eConfig(), tagMapAnnotator{tags: fixtureTags})
	text := "A Graffe is a strange animal."

	res, err := a.Analyze(context.Background(), text)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(res.Spans) != 1 {
		t.Fatalf("got %d spans, want 1: %+v", len(res.Spans), res.Spans)
	}
	s := res.Spans[0]
	if s.Kind != KindNonWord || spanText(text, s) != "Graffe" {
		t.Errorf("span = %+v covering %q, want non-word over \"Graffe\"", s, spanText(text, s))
	}
	if len(s.Candidates) == 0 || s.Candidates[0] != "Giraffe" {
		t.Errorf("candidates = %v, want title-cased Giraffe first", s.Candidates)
	}
}

func TestAnalyze_CleanText(t *testing.T) {
	a := newTestAnalyzer(t, e2eConfig(), tagMapAnnotator{tags: fixtureTags})

	for _, text := range []string{
		"This sentence is fine.",
		"The doctor gave me a prescription.",
		"",
	} {
		res, err := a.Analyze(context.Background(), text)
		if err != nil {
			t.Fatalf("Analyze(%q): %v", text, err)
		}
		if len(res.Spans) != 0 {
			t.Errorf("Analyze(%q) produced spans: %+v", text, res.Spans)
		}
	}
}

func TestAnalyze_Idempotent(t *testing.T) {
	a := newTestAnalyzer(t, e2eConfig(), tagMapAnnotator{tags: fixtureTags})
	text := "He want to become a great sientist. They went to sea the results."

	first, err := a.Analyze(context.Background(), text)
	if err != nil {
		t.Fatalf("first Analyze: %v", err)
	}
	second, err := a.Analyze(context.Background(), text)
	if err != nil {
		t.Fatalf("second Analyze: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ between runs:\n%+v\n%+v", first, second)
	}
}

func TestAnalyze_SpansSortedAndDisjoint(t *testing.T) {
	a := newTestAnalyzer(t, e2eConfig(), tagMapAnnotator{tags: fixtureTags})
	text := "He want to become a great sientist. They went to sea the results. A Graffe is a strange animal."

	res, err := a.Analyze(context.Background(), text)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(res.Spans) != 4 {
		t.Fatalf("got %d spans, want 4: %+v", len(res.Spans), res.Spans)
	}
	wantKinds := []Kind{KindGrammar, KindNonWord, KindRealWord, KindNonWord}
	for i, s := range res.Spans {
		if s.Kind != wantKinds[i] {
			t.Errorf("span %d kind = %q, want %q", i, s.Kind, wantKinds[i])
		}
		if len(s.Candidates) == 0 {
			t.Errorf("span %d has no candidates", i)
		}
		if s.Start >= s.End || s.End > len(text) {
			t.Errorf("span %d has invalid bounds [%d, %d)", i, s.Start, s.End)
		}
		if i > 0 && s.Start < res.Spans[i-1].End {
			t.Errorf("span %d overlaps or precedes span %d: %+v", i, i-1, res.Spans)
		}
	}
}

func TestAnalyze_RandomizedInvariants(t *testing.T) {
	a := newTestAnalyzer(t, e2eConfig(), tagMapAnnotator{tags: fixtureTags})
	rng := rand.New(rand.NewSource(1))
	vocab := append([]string{"sientist", "graffe", "recieve", "teh", "qqqq"}, fixtureWords...)

	for run := 0; run < 50; run++ {
		var b strings.Builder
		n := 3 + rng.Intn(12)
		for i := 0; i < n; i++ {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(vocab[rng.Intn(len(vocab))])
			if rng.Intn(6) == 0 {
				b.WriteByte('.')
			}
		}
		text := b.String()

		res, err := a.Analyze(context.Background(), text)
		if err != nil {
			t.Fatalf("Analyze(%q): %v", text, err)
		}
		for i, s := range res.Spans {
			if s.Start >= s.End || s.End > len(text) {
				t.Fatalf("invalid span bounds [%d, %d) in %q", s.Start, s.End, text)
			}
			if len(s.Candidates) == 0 {
				t.Fatalf("empty candidate list for span %+v in %q", s, text)
			}
			if i > 0 && s.Start < res.Spans[i-1].End {
				t.Fatalf("overlapping or unsorted spans in %q: %+v", text, res.Spans)
			}
		}
	}
}

func TestAnalyze_AnnotatorFailureDegrades(t *testing.T) {
	a := newTestAnalyzer(t, e2eConfig(), failingAnnotator{})
	text := "He want to become a great sientist."

	res, err := a.Analyze(context.Background(), text)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	// No grammar span without annotations; spelling still runs.
	if len(res.Spans) != 1 {
		t.Fatalf("got %d spans, want 1: %+v", len(res.Spans), res.Spans)
	}
	if res.Spans[0].Kind != KindNonWord || spanText(text, res.Spans[0]) != "sientist" {
		t.Errorf("span = %+v, want non-word over \"sientist\"", res.Spans[0])
	}
}

func TestAnalyze_NilAnnotator(t *testing.T) {
	a := newTestAnalyzer(t, e2eConfig(), nil)
	res, err := a.Analyze(context.Background(), "He want to become a great sientist.")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(res.Spans) != 1 || res.Spans[0].Kind != KindNonWord {
		t.Errorf("spans = %+v, want a single non-word span", res.Spans)
	}
}

func TestAnalyze_ContextCanceled(t *testing.T) {
	a := newTestAnalyzer(t, e2eConfig(), tagMapAnnotator{tags: fixtureTags})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := a.Analyze(ctx, "This sentence is fine."); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestCustomWordLifecycle(t *testing.T) {
	// A tiny threshold keeps the contextual check quiet so the test isolates
	// lexicon membership.
	cfg := Config{RealWordThreshold: 1e-10, RealWordGain: 10}
	a := newTestAnalyzer(t, cfg, tagMapAnnotator{tags: fixtureTags})
	ctx := context.Background()
	text := "The sientist was great."

	res, _ := a.Analyze(ctx, text)
	if len(res.Spans) != 1 || res.Spans[0].Kind != KindNonWord {
		t.Fatalf("before add: spans = %+v, want one non-word span", res.Spans)
	}

	if err := a.AddCustomWord(ctx, "Sientist"); err != nil {
		t.Fatalf("AddCustomWord: %v", err)
	}
	res, _ = a.Analyze(ctx, text)
	if len(res.Spans) != 0 {
		t.Errorf("after add: spans = %+v, want none", res.Spans)
	}

	if err := a.RemoveCustomWord(ctx, "sientist"); err != nil {
		t.Fatalf("RemoveCustomWord: %v", err)
	}
	res, _ = a.Analyze(ctx, text)
	if len(res.Spans) != 1 {
		t.Errorf("after remove: spans = %+v, want the non-word span back", res.Spans)
	}

	if err := a.AddCustomWord(ctx, "  "); err == nil {
		t.Error("AddCustomWord should reject blank input")
	}
	if err := a.RemoveCustomWord(ctx, ""); err == nil {
		t.Error("RemoveCustomWord should reject blank input")
	}
}

func TestAnalyze_TwoNonWordSpans(t *testing.T) {
	a := newTestAnalyzer(t, e2eConfig(), tagMapAnnotator{tags: fixtureTags})
	text := "The docotor gave me a perscription."

	res, err := a.Analyze(context.Background(), text)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(res.Spans) != 2 {
		t.Fatalf("got %d spans, want 2: %+v", len(res.Spans), res.Spans)
	}
	wantCands := []string{"doctor", "prescription"}
	wantTexts := []string{"docotor", "perscription"}
	for i, s := range res.Spans {
		if s.Kind != KindNonWord {
			t.Errorf("span %d kind = %q, want non-word", i, s.Kind)
		}
		if spanText(text, s) != wantTexts[i] {
			t.Errorf("span %d covers %q, want %q", i, spanText(text, s), wantTexts[i])
		}
		if len(s.Candidates) == 0 || s.Candidates[0] != wantCands[i] {
			t.Errorf("span %d candidates = %v, want %q first", i, s.Candidates, wantCands[i])
		}
	}
}

func TestCustomWordBaseWordSurvivesLifecycle(t *testing.T) {
	a := newTestAnalyzer(t, e2eConfig(), tagMapAnnotator{tags: fixtureTags})
	ctx := context.Background()
	text := "The docotor was great."

	assertDoctorSuggested := func(stage string) {
		t.Helper()
		res, err := a.Analyze(ctx, text)
		if err != nil {
			t.Fatalf("%s: Analyze: %v", stage, err)
		}
		if len(res.Spans) != 1 || res.Spans[0].Kind != KindNonWord {
			t.Fatalf("%s: spans = %+v, want one non-word span", stage, res.Spans)
		}
		if cands := res.Spans[0].Candidates; len(cands) == 0 || cands[0] != "doctor" {
			t.Fatalf("%s: candidates = %v, want doctor first", stage, cands)
		}
	}

	assertDoctorSuggested("baseline")

	// Adding and removing a base lexicon word through the user-dictionary
	// path must leave its candidate-index entry intact.
	if err := a.AddCustomWord(ctx, "doctor"); err != nil {
		t.Fatalf("AddCustomWord: %v", err)
	}
	assertDoctorSuggested("after add")

	if err := a.RemoveCustomWord(ctx, "doctor"); err != nil {
		t.Fatalf("RemoveCustomWord: %v", err)
	}
	if !a.lex.Contains("doctor") {
		t.Fatal("doctor should still be a base lexicon word after removal")
	}
	assertDoctorSuggested("after remove")
}

func TestMergeSpans(t *testing.T) {
	grammarSpan := ErrorSpan{Start: 0, End: 4, Kind: KindGrammar, Candidates: []string{"a"}}
	overlapping := ErrorSpan{Start: 2, End: 6, Kind: KindNonWord, Candidates: []string{"b"}}
	disjoint := ErrorSpan{Start: 10, End: 14, Kind: KindRealWord, Candidates: []string{"c"}}

	got := mergeSpans([]ErrorSpan{grammarSpan}, []ErrorSpan{overlapping}, []ErrorSpan{disjoint})
	if len(got) != 2 {
		t.Fatalf("got %d spans, want 2: %+v", len(got), got)
	}
	if got[0].Kind != KindGrammar || got[1].Kind != KindRealWord {
		t.Errorf("overlap resolution wrong: %+v", got)
	}
}

func TestMergeSpans_Sorted(t *testing.T) {
	spans := mergeSpans(
		[]ErrorSpan{{Start: 20, End: 24, Kind: KindGrammar}},
		[]ErrorSpan{{Start: 0, End: 4, Kind: KindNonWord}, {Start: 10, End: 12, Kind: KindNonWord}},
	)
	for i := 1; i < len(spans); i++ {
		if spans[i-1].Start > spans[i].Start {
			t.Fatalf("spans not sorted: %+v", spans)
		}
	}
}
