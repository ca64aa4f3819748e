// Package postag adapts an external part-of-speech tagger into the narrow
// annotation contract the grammar rules consume.
package postag

import (
	"context"

	"github.com/jdkato/prose/v2"
)

// Dependency roles assigned to annotated tokens. The rule engine treats this
// as a fixed vocabulary.
const (
	RoleRoot    = "root"
	RoleSubject = "nsubj"
	RoleAux     = "aux"
)

// Annotation is one token of a sentence with its Penn Treebank tag and the
// dependency role derived for it. Annotations are valid only within one
// sentence's analysis.
type Annotation struct {
	Token string
	Tag   string
	Role  string
}

// Annotator produces annotations for a sentence. Implementations must honor
// ctx cancellation; a returned error means the sentence gets no grammar
// checks, never that the whole analysis fails.
type Annotator interface {
	Annotate(ctx context.Context, sentence string) ([]Annotation, error)
}

// ProseAnnotator tags sentences with the prose library and derives dependency
// roles heuristically from the tag sequence.
type ProseAnnotator struct{}

// NewProseAnnotator returns a ready-to-use ProseAnnotator.
func NewProseAnnotator() *ProseAnnotator { return &ProseAnnotator{} }

// Annotate implements Annotator. Tagging runs in its own goroutine so a slow
// parse can be abandoned when ctx expires; the goroutine finishes on its own
// and its result is discarded.
func (p *ProseAnnotator) Annotate(ctx context.Context, sentence string) ([]Annotation, error) {
	type result struct {
		anns []Annotation
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		doc, err := prose.NewDocument(sentence, prose.WithExtraction(false))
		if err != nil {
			ch <- result{err: err}
			return
		}
		toks := doc.Tokens()
		anns := make([]Annotation, 0, len(toks))
		for _, t := range toks {
			anns = append(anns, Annotation{Token: t.Text, Tag: t.Tag})
		}
		ch <- result{anns: AssignRoles(anns)}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.anns, r.err
	}
}
