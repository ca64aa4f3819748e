// Package ngram holds bigram/trigram frequency statistics over a reference
// corpus and scores how plausible a word is in its local context.
package ngram

import (
	"fmt"
	"strconv"
	"strings"

	"proofd/internal/corpus"
)

// DefaultFloor is the probability returned for words the corpus has never
// seen. It is strictly positive so ranking stays well-defined and no
// division by zero can occur downstream.
const DefaultFloor = 1e-9

// Model is an immutable n-gram count table for orders 1 through 3.
// Keys are space-joined lowercased token tuples.
type Model struct {
	grams  [4]map[string]int
	totals [4]int
	floor  float64
}

// Load reads a frequency-annotated counts file at path. Each line holds one
// to three space-separated tokens followed by an integer count. Malformed
// lines are skipped; a file yielding no unigrams is a fatal load error.
func Load(path string) (*Model, error) {
	data, release, err := corpus.MapFile(path)
	if err != nil {
		return nil, err
	}
	defer release()

	m := &Model{floor: DefaultFloor}
	for order := 1; order <= 3; order++ {
		m.grams[order] = make(map[string]int)
	}

	err = corpus.EachLine(data, func(line string) error {
		fields := strings.Fields(line)
		if len(fields) < 2 || len(fields) > 4 {
			return nil
		}
		count, err := strconv.Atoi(fields[len(fields)-1])
		if err != nil || count < 0 {
			return nil
		}
		order := len(fields) - 1
		key := strings.ToLower(strings.Join(fields[:order], " "))
		m.grams[order][key] += count
		m.totals[order] += count
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(m.grams[1]) == 0 {
		return nil, fmt.Errorf("ngram corpus %s holds no unigram counts", path)
	}
	return m, nil
}

// Freq returns the unigram count for word, zero when unobserved.
func (m *Model) Freq(word string) int {
	return m.grams[1][strings.ToLower(word)]
}

// Score estimates how probable word is given up to two preceding tokens and
// one following token. It prefers trigram evidence, backs off to the bigram
// with the left neighbor, then to the unigram relative frequency, and bottoms
// out at a small positive floor for unseen words. The result is in (0, 1].
func (m *Model) Score(word string, left, right []string) float64 {
	w := strings.ToLower(word)

	best := 0.0
	if n := len(left); n >= 2 {
		l2, l1 := strings.ToLower(left[n-2]), strings.ToLower(left[n-1])
		if tc := m.grams[3][l2+" "+l1+" "+w]; tc > 0 {
			if bc := m.grams[2][l2+" "+l1]; bc > 0 {
				best = maxf(best, float64(tc)/float64(bc))
			}
		}
	}
	if len(left) >= 1 && len(right) >= 1 {
		l1 := strings.ToLower(left[len(left)-1])
		r1 := strings.ToLower(right[0])
		if tc := m.grams[3][l1+" "+w+" "+r1]; tc > 0 {
			if bc := m.grams[2][l1+" "+w]; bc > 0 {
				best = maxf(best, float64(tc)/float64(bc))
			}
		}
	}
	if best > 0 {
		return clamp01(best, m.floor)
	}

	if n := len(left); n >= 1 {
		l1 := strings.ToLower(left[n-1])
		if bc := m.grams[2][l1+" "+w]; bc > 0 {
			if uc := m.grams[1][l1]; uc > 0 {
				return clamp01(float64(bc)/float64(uc), m.floor)
			}
		}
	}

	if uc := m.grams[1][w]; uc > 0 && m.totals[1] > 0 {
		return clamp01(float64(uc)/float64(m.totals[1]), m.floor)
	}
	return m.floor
}

// Floor returns the model's unseen-word probability.
func (m *Model) Floor() float64 { return m.floor }

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func clamp01(v, floor float64) float64 {
	if v > 1 {
		return 1
	}
	if v < floor {
		return floor
	}
	return v
}
