// Package lexicon provides the static word-membership set the detectors
// consult, plus a mutable overlay for user-added words.
package lexicon

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"proofd/internal/corpus"
)

// Lexicon is a case-insensitive set of known word forms. The base set is
// immutable after Load; only the user overlay changes at runtime.
type Lexicon struct {
	base   map[string]struct{}
	sorted []string

	mu   sync.RWMutex
	user map[string]struct{}
}

// Load reads a word-list resource at path. Each line holds a word, optionally
// followed by extra fields (frequency-annotated lists are accepted; only the
// first field is used). A missing or empty file is a fatal load error.
func Load(path string) (*Lexicon, error) {
	data, release, err := corpus.MapFile(path)
	if err != nil {
		return nil, err
	}
	defer release()

	base := make(map[string]struct{}, 1<<17)
	err = corpus.EachLine(data, func(line string) error {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			return nil
		}
		base[strings.ToLower(fields[0])] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(base) == 0 {
		return nil, fmt.Errorf("lexicon %s contains no words", path)
	}

	sorted := make([]string, 0, len(base))
	for w := range base {
		sorted = append(sorted, w)
	}
	sort.Strings(sorted)

	return &Lexicon{
		base:   base,
		sorted: sorted,
		user:   make(map[string]struct{}),
	}, nil
}

// Contains reports whether word is known, matching on the lowercased form.
func (l *Lexicon) Contains(word string) bool {
	w := strings.ToLower(word)
	if _, ok := l.base[w]; ok {
		return true
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.user[w]
	return ok
}

// AddUserWord adds a word to the user overlay. The base set is untouched.
func (l *Lexicon) AddUserWord(word string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.user[strings.ToLower(word)] = struct{}{}
}

// RemoveUserWord removes a word from the user overlay. Removing a base word
// is a no-op: the static resource is authoritative for its own contents.
func (l *Lexicon) RemoveUserWord(word string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.user, strings.ToLower(word))
}

// Search returns up to limit known words containing substr, in lexical order.
// It backs the external dictionary-browser panel. Base and user matches are
// collected before the limit applies, so user words sort into the result
// rather than being crowded out by base matches.
func (l *Lexicon) Search(substr string, limit int) []string {
	q := strings.ToLower(substr)
	var out []string
	for _, w := range l.sorted {
		if strings.Contains(w, q) {
			out = append(out, w)
		}
	}
	l.mu.RLock()
	for w := range l.user {
		if _, dup := l.base[w]; dup {
			continue
		}
		if strings.Contains(w, q) {
			out = append(out, w)
		}
	}
	l.mu.RUnlock()
	sort.Strings(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Words returns the sorted base word list. Callers must not modify it.
func (l *Lexicon) Words() []string { return l.sorted }

// Size returns the number of base words.
func (l *Lexicon) Size() int { return len(l.base) }
