package pcrescan

import "errors"

// Errors returned by the top-level API. Lexical and grammatical errors from
// inside the pipeline are defined next to their packages (tokenizer, parser)
// and wrap through unchanged.
var (
	// ErrEmptyPattern is returned when the input is empty or delimiters only.
	ErrEmptyPattern = errors.New("empty pattern")
	// ErrPatternTooLong is returned when the input exceeds the configured maximum length.
	ErrPatternTooLong = errors.New("pattern exceeds maximum length")
)
