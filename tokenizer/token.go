package tokenizer

import "errors"

// Sentinel errors
var (
	ErrUnterminatedEscape  = errors.New("unterminated escape sequence")
	ErrInvalidHexDigit     = errors.New("invalid hex digit in escape")
	ErrInvalidOctalDigit   = errors.New("invalid octal digit in escape")
	ErrUnterminatedGroup   = errors.New("unterminated group construct")
	ErrUnterminatedVerb    = errors.New("unterminated control verb")
	ErrUnterminatedComment = errors.New("unterminated inline comment")
	ErrUnterminatedName    = errors.New("unterminated group name")
	ErrUnterminatedQuote   = errors.New("unterminated \\Q quote section")
	ErrMissingDelimiter    = errors.New("pattern has no closing delimiter")
	ErrInvalidDelimiter    = errors.New("invalid pattern delimiter")
	ErrUnknownFlag         = errors.New("unknown pattern flag")
)

// TokenType represents the type of a token
type TokenType int

const (
	// Basic tokens
	EOF TokenType = iota
	LITERAL // any character with no special meaning in context

	// Metacharacters
	DOT           // .
	CARET         // ^
	DOLLAR        // $
	STAR          // *
	PLUS          // +
	QUESTION      // ?
	PIPE          // |
	OPENED_PARENS // (
	CLOSED_PARENS // )
	OPEN_BRACKET  // [
	CLOSE_BRACKET // ]
	OPEN_BRACE    // {
	CLOSE_BRACE   // }

	// Composite tokens
	ESCAPE         // \d, \x{1F600}, \p{Lu}, \k<name>, \g{-1}, \Q...\E, ...
	GROUP_MODIFIER // ?:, ?=, ?!, ?<=, ?<!, ?<name>, ?P<name>, ?>, ?|, ?(, ?R, ?1, ?&name, ?i-mx:, *atomic:, ...
	VERB           // (*PRUNE), (*SKIP:label), (*MARK:name), ... (whole construct)
	POSIX_CLASS    // [:alpha:], [:^digit:] (inside character classes)
	COMMENT        // (?#...) or extended-mode # line comment
	WHITESPACE     // extended-mode whitespace run (outside classes)
)

// String returns the string representation of TokenType
func (t TokenType) String() string {
	switch t {
	case EOF:
		return "EOF"
	case LITERAL:
		return "LITERAL"
	case DOT:
		return "DOT"
	case CARET:
		return "CARET"
	case DOLLAR:
		return "DOLLAR"
	case STAR:
		return "STAR"
	case PLUS:
		return "PLUS"
	case QUESTION:
		return "QUESTION"
	case PIPE:
		return "PIPE"
	case OPENED_PARENS:
		return "OPENED_PARENS"
	case CLOSED_PARENS:
		return "CLOSED_PARENS"
	case OPEN_BRACKET:
		return "OPEN_BRACKET"
	case CLOSE_BRACKET:
		return "CLOSE_BRACKET"
	case OPEN_BRACE:
		return "OPEN_BRACE"
	case CLOSE_BRACE:
		return "CLOSE_BRACE"
	case ESCAPE:
		return "ESCAPE"
	case GROUP_MODIFIER:
		return "GROUP_MODIFIER"
	case VERB:
		return "VERB"
	case POSIX_CLASS:
		return "POSIX_CLASS"
	case COMMENT:
		return "COMMENT"
	case WHITESPACE:
		return "WHITESPACE"
	default:
		return "UNKNOWN"
	}
}

// Position represents a position in the pattern source
type Position struct {
	Line   int
	Column int
	Offset int // zero-based byte offset
}

// Token represents a token
type Token struct {
	Type     TokenType
	Value    string
	Position Position
}

// End returns the byte offset just past the token text (end exclusive).
func (t Token) End() int {
	return t.Position.Offset + len(t.Value)
}

// String returns the string representation of Token
func (t Token) String() string {
	return t.Type.String() + ": " + t.Value
}
