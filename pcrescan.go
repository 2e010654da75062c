// Package pcrescan parses PCRE-style regular expression patterns into a
// typed AST, validates their semantics, and statically estimates their
// susceptibility to catastrophic backtracking. Patterns are never executed
// against input text.
//
// Input patterns use the delimited form "/body/flags". The functions here
// accept the full delimited string; the parser package works on bare bodies.
package pcrescan

import (
	"fmt"

	"github.com/shibukawa/pcrescan/parser"
	"github.com/shibukawa/pcrescan/redos"
	"github.com/shibukawa/pcrescan/tokenizer"
	"github.com/shibukawa/pcrescan/validator"
)

// Options are the per-call limits. The zero value uses the defaults; use
// OptionsFromConfig to derive them from a loaded Config.
type Options struct {
	MaxPatternLength    int
	MaxRecursionDepth   int
	MaxLookbehindLength int
	IgnoreList          []string
	Thresholds          redos.Thresholds
}

const DefaultMaxPatternLength = 4096

func (o Options) withDefaults() Options {
	if o.MaxPatternLength <= 0 {
		o.MaxPatternLength = DefaultMaxPatternLength
	}
	if o.MaxRecursionDepth <= 0 {
		o.MaxRecursionDepth = parser.DefaultMaxDepth
	}
	if o.MaxLookbehindLength <= 0 {
		o.MaxLookbehindLength = validator.DefaultMaxLookbehind
	}
	if o.Thresholds == (redos.Thresholds{}) {
		o.Thresholds = redos.DefaultThresholds
	}
	return o
}

// OptionsFromConfig converts a loaded Config into call options.
func OptionsFromConfig(config *Config) Options {
	if config == nil {
		return Options{}
	}
	return Options{
		MaxPatternLength:    config.MaxPatternLength,
		MaxRecursionDepth:   config.MaxRecursionDepth,
		MaxLookbehindLength: config.MaxLookbehindLength,
		IgnoreList:          config.Analysis.Ignore,
		Thresholds:          config.Thresholds(),
	}
}

func pickOptions(options []Options) Options {
	opts := Options{}
	if len(options) > 0 {
		opts = options[0]
	}
	return opts.withDefaults()
}

// split separates a delimited pattern into body, parsed flags and the body's
// offset within the raw pattern, so every AST position indexes the original
// string the caller passed in.
func split(pattern string, opts Options) (body string, flags tokenizer.Flags, base int, err error) {
	if pattern == "" {
		return "", tokenizer.Flags{}, 0, ErrEmptyPattern
	}
	if len(pattern) > opts.MaxPatternLength {
		return "", tokenizer.Flags{}, 0, fmt.Errorf("%w: %d > %d", ErrPatternTooLong, len(pattern), opts.MaxPatternLength)
	}

	body, flagText, err := tokenizer.SplitDelimited(pattern)
	if err != nil {
		return "", tokenizer.Flags{}, 0, err
	}

	flags, err = tokenizer.ParseFlags(flagText)
	if err != nil {
		return "", tokenizer.Flags{}, 0, err
	}

	return body, flags, 1, nil
}

func parserOptions(flags tokenizer.Flags, base int, opts Options) parser.Options {
	return parser.Options{
		MaxDepth:   opts.MaxRecursionDepth,
		Flags:      flags,
		BaseOffset: base,
	}
}

// Parse parses a delimited pattern and returns the AST root. Lexical and
// grammatical errors abort the parse; error positions are byte offsets into
// the delimited pattern.
func Parse(pattern string, options ...Options) (parser.Node, error) {
	opts := pickOptions(options)

	body, flags, base, err := split(pattern, opts)
	if err != nil {
		return nil, err
	}

	return parser.Parse(body, parserOptions(flags, base, opts))
}

// ParseTolerant parses a delimited pattern in tolerant mode: instead of
// aborting on the first error it records diagnostics, substitutes
// placeholder nodes, and returns the partial tree. The returned root is
// never nil.
func ParseTolerant(pattern string, options ...Options) (parser.Node, []error) {
	opts := pickOptions(options)

	body, flags, base, err := split(pattern, opts)
	if err != nil {
		return parser.NewSequenceNode(nil, 0, 0), []error{err}
	}

	return parser.ParseTolerant(body, parserOptions(flags, base, opts))
}

// Validate parses and semantically validates a pattern. It never fails: a
// pattern that does not parse is reported as an invalid result.
func Validate(pattern string, options ...Options) validator.Result {
	opts := pickOptions(options)

	root, err := Parse(pattern, opts)
	if err != nil {
		return validator.Result{IsValid: false, Error: err.Error()}
	}

	return validator.Validate(root, validator.Options{MaxLookbehind: opts.MaxLookbehindLength})
}

// AnalyzeReDoS estimates a pattern's backtracking risk. It never fails:
// patterns on the ignore list are safe by definition, and a pattern that
// does not parse strictly is analyzed from its tolerant partial tree.
func AnalyzeReDoS(pattern string, options ...Options) redos.Result {
	opts := pickOptions(options)

	if redos.Ignored(pattern, opts.IgnoreList) {
		return redos.Result{Severity: redos.SeveritySafe}
	}

	root, err := Parse(pattern, opts)
	if err != nil {
		root, _ = ParseTolerant(pattern, opts)
	}

	return redos.Analyze(root, redos.Options{Thresholds: opts.Thresholds})
}
