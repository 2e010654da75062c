package parser

import (
	"github.com/shibukawa/pcrescan/tokenizer"
)

// DefaultMaxDepth bounds parser recursion against adversarial nesting.
const DefaultMaxDepth = 250

// Options controls parser behaviors that can be relaxed or tuned.
type Options struct {
	// MaxDepth caps nesting of groups, classes and quantified atoms.
	// Zero means DefaultMaxDepth.
	MaxDepth int

	// Flags alters tokenization, most notably extended mode.
	Flags tokenizer.Flags

	// BaseOffset shifts node positions into the original delimited pattern.
	BaseOffset int
}

// DefaultOptions provides the default parser options.
var DefaultOptions = Options{MaxDepth: DefaultMaxDepth}

func (o Options) withDefaults() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	return o
}

// Parse parses a pattern body (delimiters already stripped) into its AST
// root. Lexical and grammatical failures return a positioned error.
func Parse(body string, options ...Options) (Node, error) {
	opts := DefaultOptions
	if len(options) > 0 {
		opts = options[0].withDefaults()
	}

	stream := newStream(body, opts)
	defer stream.Close()

	p := newPatternParser(stream, opts, false)

	return p.parsePattern()
}

// ParseTolerant parses a pattern body in tolerant mode: parser errors are
// recorded, placeholder nodes stand in for unparseable fragments, and a
// best-effort AST is returned together with the collected errors.
func ParseTolerant(body string, options ...Options) (Node, []error) {
	opts := DefaultOptions
	if len(options) > 0 {
		opts = options[0].withDefaults()
	}

	stream := newStream(body, opts)
	defer stream.Close()

	p := newPatternParser(stream, opts, true)

	root, err := p.parsePattern()
	if err != nil {
		// Errors that escape even tolerant parsing (e.g. depth exceeded)
		// end the parse; report what was collected plus the fatal one.
		p.errors = append(p.errors, err)
	}
	if root == nil {
		root = NewSequenceNode(nil, 0, 0)
	}

	return root, p.errors
}

func newStream(body string, opts Options) *tokenizer.TokenStream {
	t := tokenizer.NewPatternTokenizer(body, opts.Flags, tokenizer.TokenizerOptions{
		BaseOffset: opts.BaseOffset,
	})

	return tokenizer.NewTokenStream(t)
}
