package options

// DefaultOptions are tuned for a general-purpose English word list.
var DefaultOptions = IndexOptions{
	MaxDictionaryEditDistance: 2,
	PrefixLength:              7,
	CountThreshold:            1,
	MaxCandidates:             5,
}

type IndexOptions struct {
	MaxDictionaryEditDistance int
	PrefixLength              int
	CountThreshold            int
	MaxCandidates             int
}

type Options interface {
	Apply(options *IndexOptions)
}

type FuncConfig struct {
	ops func(options *IndexOptions)
}

func (w FuncConfig) Apply(conf *IndexOptions) {
	w.ops(conf)
}

func NewFuncOption(f func(options *IndexOptions)) *FuncConfig {
	return &FuncConfig{ops: f}
}

func WithMaxDictionaryEditDistance(maxDictionaryEditDistance int) Options {
	return NewFuncOption(func(options *IndexOptions) {
		options.MaxDictionaryEditDistance = maxDictionaryEditDistance
	})
}

func WithPrefixLength(prefixLength int) Options {
	return NewFuncOption(func(options *IndexOptions) {
		options.PrefixLength = prefixLength
	})
}

// WithCountThreshold sets the minimum corpus count an entry needs to be
// indexed. Entries below the threshold are skipped.
func WithCountThreshold(countThreshold int) Options {
	return NewFuncOption(func(options *IndexOptions) {
		options.CountThreshold = countThreshold
	})
}

// WithMaxCandidates caps the number of suggestions a lookup returns when the
// caller does not ask for a specific amount.
func WithMaxCandidates(maxCandidates int) Options {
	return NewFuncOption(func(options *IndexOptions) {
		options.MaxCandidates = maxCandidates
	})
}
