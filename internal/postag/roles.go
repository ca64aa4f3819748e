package postag

import "strings"

// auxLemmas are surface forms that act as auxiliaries when a verb follows.
var auxLemmas = map[string]struct{}{
	"have": {}, "has": {}, "had": {},
	"do": {}, "does": {}, "did": {},
	"am": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"be": {}, "been": {}, "being": {},
}

// AssignRoles derives dependency roles from the tag sequence: an auxiliary is
// a modal or aux lemma directly before a verb (one intervening adverb is
// allowed), the clause's main verb is the root, and the nearest nominal
// before the root is its subject. The input slice is modified and returned.
func AssignRoles(anns []Annotation) []Annotation {
	for i := range anns {
		if !isAuxWord(anns[i]) {
			continue
		}
		j := i + 1
		if j < len(anns) && anns[j].Tag == "RB" {
			j++
		}
		if j < len(anns) && IsVerbTag(anns[j].Tag) && anns[j].Role == "" {
			anns[i].Role = RoleAux
			anns[j].Role = RoleRoot
		}
	}

	if indexOfRole(anns, RoleRoot) < 0 {
		for i := range anns {
			if IsFiniteVerbTag(anns[i].Tag) && !isAuxWord(anns[i]) {
				anns[i].Role = RoleRoot
				break
			}
		}
	}

	if r := indexOfRole(anns, RoleRoot); r >= 0 {
		for i := r - 1; i >= 0; i-- {
			if anns[i].Role == RoleAux {
				continue
			}
			if IsNominalTag(anns[i].Tag) {
				anns[i].Role = RoleSubject
				break
			}
		}
	}
	return anns
}

// IsVerbTag reports whether tag is any verb form.
func IsVerbTag(tag string) bool { return strings.HasPrefix(tag, "VB") }

// IsFiniteVerbTag reports whether tag is a finite (tensed) verb form.
func IsFiniteVerbTag(tag string) bool {
	return tag == "VBP" || tag == "VBZ" || tag == "VBD"
}

// IsNominalTag reports whether tag is a noun or personal pronoun.
func IsNominalTag(tag string) bool {
	switch tag {
	case "PRP", "NN", "NNS", "NNP", "NNPS":
		return true
	}
	return false
}

func isAuxWord(a Annotation) bool {
	if a.Tag == "MD" {
		return true
	}
	_, ok := auxLemmas[strings.ToLower(a.Token)]
	return ok
}

func indexOfRole(anns []Annotation, role string) int {
	for i := range anns {
		if anns[i].Role == role {
			return i
		}
	}
	return -1
}
