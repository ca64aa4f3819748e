// Package grammar applies a fixed, ordered set of agreement and tense rules
// to POS-annotated sentences.
package grammar

import (
	"strings"
	"unicode"

	"proofd/internal/postag"
)

// Rule names reported on emitted flags.
const (
	RuleSubjectVerb = "subject-verb-agreement"
	RuleAuxTense    = "aux-tense"
)

// Flag is a grammar violation over one token, with the corrected form as the
// top candidate. Offsets are absolute within the analyzed text.
type Flag struct {
	Start      int
	End        int
	Candidates []string
	Rule       string
}

// Engine evaluates the rule set. A token is flagged by at most one rule;
// rules run in their fixed order and the first match wins.
type Engine struct {
	singularSubjects map[string]struct{}
	pluralSubjects   map[string]struct{}
	irregular        map[string]forms
	byForm           map[string]string
}

// NewEngine builds an Engine with the default subject sets and irregular-verb
// table.
func NewEngine() *Engine {
	e := &Engine{
		singularSubjects: setOf("he", "she", "it", "this", "that"),
		pluralSubjects:   setOf("they", "we", "i", "you", "these", "those"),
		irregular:        make(map[string]forms, len(defaultIrregular)),
		byForm:           make(map[string]string),
	}
	for base, f := range defaultIrregular {
		e.setIrregular(base, f)
	}
	return e
}

// AddIrregular registers (or overrides) the inflections of a verb. forms is
// third-person, past, past-participle; empty strings keep regular behavior.
func (e *Engine) AddIrregular(base, third, past, participle string) {
	e.setIrregular(strings.ToLower(base), forms{third: third, past: past, participle: participle})
}

func (e *Engine) setIrregular(base string, f forms) {
	e.irregular[base] = f
	e.byForm[base] = base
	for _, form := range []string{f.third, f.past, f.participle} {
		if form != "" {
			e.byForm[form] = base
		}
	}
}

// Check evaluates the rules over one annotated sentence. base is the
// sentence's byte offset within the full text; returned flags carry absolute
// offsets. Tokens that cannot be located in the sentence are skipped.
func (e *Engine) Check(sentence string, base int, anns []postag.Annotation) []Flag {
	offs := alignOffsets(sentence, anns)
	flagged := make(map[int]struct{})
	var flags []Flag

	emit := func(i int, rule, candidate string) {
		if candidate == "" || strings.EqualFold(candidate, anns[i].Token) {
			return
		}
		flags = append(flags, Flag{
			Start:      base + offs[i][0],
			End:        base + offs[i][1],
			Candidates: []string{matchCase(anns[i].Token, candidate)},
			Rule:       rule,
		})
		flagged[i] = struct{}{}
	}

	// Rule 1: subject-verb agreement over the (nsubj, finite verb) pair.
	if s, v := e.agreementPair(anns); s >= 0 && v >= 0 && offs[v][0] >= 0 {
		verb := anns[v]
		switch {
		case e.isSingular(anns[s]) && verb.Tag == "VBP":
			emit(v, RuleSubjectVerb, e.ThirdPerson(e.BaseForm(verb.Token)))
		case e.isPlural(anns[s]) && verb.Tag == "VBZ":
			emit(v, RuleSubjectVerb, e.BaseForm(verb.Token))
		}
	}

	// Rule 2: auxiliary/tense consistency on the main verb after an auxiliary.
	for i := range anns {
		if anns[i].Role != postag.RoleAux {
			continue
		}
		v := mainVerbAfter(anns, i)
		if v < 0 || offs[v][0] < 0 {
			continue
		}
		if _, done := flagged[v]; done {
			continue
		}
		verb := anns[v]
		switch {
		case anns[i].Tag == "MD" && verb.Tag != "VB":
			// A bare form is required after a modal.
			emit(v, RuleAuxTense, e.BaseForm(verb.Token))
		case isHaveAux(anns[i].Token) && verb.Tag != "VBN":
			emit(v, RuleAuxTense, e.PastParticiple(e.BaseForm(verb.Token)))
		}
	}

	return flags
}

// agreementPair returns the subject index and the finite verb carrying the
// clause's agreement: the root when it is tensed, otherwise its auxiliary.
func (e *Engine) agreementPair(anns []postag.Annotation) (subj, verb int) {
	subj, verb = -1, -1
	root := -1
	for i := range anns {
		switch anns[i].Role {
		case postag.RoleSubject:
			subj = i
		case postag.RoleRoot:
			root = i
		}
	}
	if subj < 0 || root < 0 {
		return subj, -1
	}
	if postag.IsFiniteVerbTag(anns[root].Tag) {
		return subj, root
	}
	for i := root - 1; i >= 0; i-- {
		if anns[i].Role == postag.RoleAux && postag.IsFiniteVerbTag(anns[i].Tag) {
			return subj, i
		}
	}
	return subj, -1
}

func (e *Engine) isSingular(a postag.Annotation) bool {
	if _, ok := e.singularSubjects[strings.ToLower(a.Token)]; ok {
		return true
	}
	return a.Tag == "NN" || a.Tag == "NNP"
}

func (e *Engine) isPlural(a postag.Annotation) bool {
	if _, ok := e.pluralSubjects[strings.ToLower(a.Token)]; ok {
		return true
	}
	return a.Tag == "NNS" || a.Tag == "NNPS"
}

func mainVerbAfter(anns []postag.Annotation, aux int) int {
	for i := aux + 1; i < len(anns) && i <= aux+2; i++ {
		if postag.IsVerbTag(anns[i].Tag) {
			return i
		}
	}
	return -1
}

func isHaveAux(token string) bool {
	switch strings.ToLower(token) {
	case "have", "has", "had":
		return true
	}
	return false
}

// alignOffsets locates each annotated token in the sentence, scanning left to
// right so repeated words map to distinct positions.
func alignOffsets(sentence string, anns []postag.Annotation) [][2]int {
	offs := make([][2]int, len(anns))
	cur := 0
	for i := range anns {
		idx := strings.Index(sentence[cur:], anns[i].Token)
		if idx < 0 {
			offs[i] = [2]int{-1, -1}
			continue
		}
		start := cur + idx
		offs[i] = [2]int{start, start + len(anns[i].Token)}
		cur = start + len(anns[i].Token)
	}
	return offs
}

func matchCase(original, candidate string) string {
	r := []rune(original)
	if len(r) > 0 && unicode.IsUpper(r[0]) {
		c := []rune(candidate)
		if len(c) > 0 {
			c[0] = unicode.ToUpper(c[0])
		}
		return string(c)
	}
	return candidate
}

func setOf(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
