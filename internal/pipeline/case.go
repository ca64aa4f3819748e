package pipeline

import "strings"

func isTitle(s string) bool {
	if s == "" {
		return false
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) == string(r[0]) && strings.ToLower(string(r[1:])) == string(r[1:])
}

func isUpper(s string) bool { return strings.ToUpper(s) == s && strings.ToLower(s) != s }

func title(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + strings.ToLower(string(r[1:]))
}

// matchCase shapes a lowercase candidate after the original token, so
// "Graffe" suggests "Giraffe" rather than "giraffe".
func matchCase(original, candidate string) string {
	switch {
	case isUpper(original) && len([]rune(original)) > 1:
		return strings.ToUpper(candidate)
	case isTitle(original):
		return title(candidate)
	}
	return candidate
}
