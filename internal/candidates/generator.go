// Package candidates generates ranked spelling-correction candidates for a
// misspelled token using a symmetric-delete neighborhood index over the
// lexicon, so lookups never scan the whole word list.
package candidates

import (
	"sort"
	"strings"
	"sync"

	"proofd/pkg/options"
)

// Candidate is a correction suggestion with its edit distance from the input.
type Candidate struct {
	Term     string `json:"term"`
	Distance int    `json:"distance"`
}

// Generator holds the precomputed deletion index. Every entry is reachable
// through all deletion variants of its prefix up to the configured distance.
type Generator struct {
	opts options.IndexOptions

	mu      sync.RWMutex
	deletes map[string][]string
	counts  map[string]int
}

// NewGenerator creates an empty Generator. Populate it with AddEntry.
func NewGenerator(opts ...options.Options) *Generator {
	conf := options.DefaultOptions
	for _, o := range opts {
		o.Apply(&conf)
	}
	return &Generator{
		opts:    conf,
		deletes: make(map[string][]string),
		counts:  make(map[string]int),
	}
}

// AddEntry indexes term with its corpus count. Entries below the count
// threshold are skipped; re-adding a term updates its count only.
func (g *Generator) AddEntry(term string, count int) {
	t := strings.ToLower(term)
	if t == "" || count < g.opts.CountThreshold {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, known := g.counts[t]; known {
		g.counts[t] = count
		return
	}
	g.counts[t] = count
	for variant := range g.variants(t) {
		g.deletes[variant] = append(g.deletes[variant], t)
	}
}

// RemoveEntry drops term from the index together with all its deletion
// variants.
func (g *Generator) RemoveEntry(term string) {
	t := strings.ToLower(term)
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, known := g.counts[t]; !known {
		return
	}
	delete(g.counts, t)
	for variant := range g.variants(t) {
		originals := g.deletes[variant]
		for i, w := range originals {
			if w == t {
				originals = append(originals[:i], originals[i+1:]...)
				break
			}
		}
		if len(originals) == 0 {
			delete(g.deletes, variant)
		} else {
			g.deletes[variant] = originals
		}
	}
}

// Generate returns candidates within maxDistance of word, ordered by distance
// ascending, then corpus count descending, then lexical order. An empty slice
// means no lexicon entry is close enough; that is a valid outcome, not an
// error. maxCandidates <= 0 falls back to the configured default.
func (g *Generator) Generate(word string, maxCandidates, maxDistance int) []Candidate {
	w := strings.ToLower(word)
	if maxDistance > g.opts.MaxDictionaryEditDistance {
		maxDistance = g.opts.MaxDictionaryEditDistance
	}
	if maxDistance < 0 {
		maxDistance = 0
	}
	if maxCandidates <= 0 {
		maxCandidates = g.opts.MaxCandidates
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []Candidate
	for variant := range g.variants(w) {
		for _, orig := range g.deletes[variant] {
			if _, dup := seen[orig]; dup {
				continue
			}
			seen[orig] = struct{}{}
			d := Distance(w, orig)
			if d <= maxDistance {
				out = append(out, Candidate{Term: orig, Distance: d})
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		ci, cj := g.counts[out[i].Term], g.counts[out[j].Term]
		if ci != cj {
			return ci > cj
		}
		return out[i].Term < out[j].Term
	})
	if len(out) > maxCandidates {
		out = out[:maxCandidates]
	}
	return out
}

// Count returns the indexed corpus count for term, zero when absent.
func (g *Generator) Count(term string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.counts[strings.ToLower(term)]
}

// Len returns the number of indexed entries.
func (g *Generator) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.counts)
}

// variants returns all deletion variants (including the prefix itself) of the
// word's prefix, up to the configured edit distance.
func (g *Generator) variants(word string) map[string]struct{} {
	r := []rune(word)
	if g.opts.PrefixLength > 0 && len(r) > g.opts.PrefixLength {
		r = r[:g.opts.PrefixLength]
	}
	out := make(map[string]struct{})
	collectDeletes(string(r), g.opts.MaxDictionaryEditDistance, out)
	return out
}

func collectDeletes(word string, depth int, out map[string]struct{}) {
	if _, ok := out[word]; ok {
		return
	}
	out[word] = struct{}{}
	if depth == 0 {
		return
	}
	r := []rune(word)
	for i := range r {
		collectDeletes(string(r[:i])+string(r[i+1:]), depth-1, out)
	}
}
