package grammar

import "strings"

// forms holds the inflected forms of an irregular verb, keyed by base.
type forms struct {
	third      string
	past       string
	participle string
}

// defaultIrregular covers the verbs the agreement and tense rules most often
// touch. Deployments can extend it through configuration.
var defaultIrregular = map[string]forms{
	"be":    {"is", "was", "been"},
	"have":  {"has", "had", "had"},
	"do":    {"does", "did", "done"},
	"go":    {"goes", "went", "gone"},
	"say":   {"says", "said", "said"},
	"see":   {"sees", "saw", "seen"},
	"take":  {"takes", "took", "taken"},
	"make":  {"makes", "made", "made"},
	"come":  {"comes", "came", "come"},
	"know":  {"knows", "knew", "known"},
	"get":   {"gets", "got", "gotten"},
	"give":  {"gives", "gave", "given"},
	"find":  {"finds", "found", "found"},
	"think": {"thinks", "thought", "thought"},
	"write": {"writes", "wrote", "written"},
	"eat":   {"eats", "ate", "eaten"},
	"run":   {"runs", "ran", "run"},
	"begin": {"begins", "began", "begun"},
	"speak": {"speaks", "spoke", "spoken"},
	"break": {"breaks", "broke", "broken"},
	"grow":  {"grows", "grew", "grown"},
	"fall":  {"falls", "fell", "fallen"},
	"drive": {"drives", "drove", "driven"},
	"throw": {"throws", "threw", "thrown"},
}

// BaseForm maps an inflected verb to its base form: irregular table first,
// then the regular third-person suffix rules in reverse.
func (e *Engine) BaseForm(word string) string {
	w := strings.ToLower(word)
	if base, ok := e.byForm[w]; ok {
		return base
	}
	switch {
	case strings.HasSuffix(w, "ies") && len(w) > 3:
		return w[:len(w)-3] + "y"
	case strings.HasSuffix(w, "es") && len(w) > 2 && hasSibilantStem(w[:len(w)-2]):
		return w[:len(w)-2]
	case strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") && len(w) > 1:
		return w[:len(w)-1]
	}
	return w
}

// ThirdPerson inflects a base verb for a third-person singular subject.
func (e *Engine) ThirdPerson(base string) string {
	b := strings.ToLower(base)
	if f, ok := e.irregular[b]; ok && f.third != "" {
		return f.third
	}
	switch {
	case strings.HasSuffix(b, "y") && len(b) > 1 && !isVowel(b[len(b)-2]):
		return b[:len(b)-1] + "ies"
	case hasSibilantStem(b) || strings.HasSuffix(b, "o"):
		return b + "es"
	}
	return b + "s"
}

// PastParticiple inflects a base verb into its past participle.
func (e *Engine) PastParticiple(base string) string {
	b := strings.ToLower(base)
	if f, ok := e.irregular[b]; ok && f.participle != "" {
		return f.participle
	}
	switch {
	case strings.HasSuffix(b, "e"):
		return b + "d"
	case strings.HasSuffix(b, "y") && len(b) > 1 && !isVowel(b[len(b)-2]):
		return b[:len(b)-1] + "ied"
	}
	return b + "ed"
}

func hasSibilantStem(stem string) bool {
	return strings.HasSuffix(stem, "s") || strings.HasSuffix(stem, "x") ||
		strings.HasSuffix(stem, "z") || strings.HasSuffix(stem, "sh") ||
		strings.HasSuffix(stem, "ch")
}

func isVowel(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}
