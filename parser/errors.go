package parser

import (
	"errors"
	"fmt"

	"github.com/shibukawa/pcrescan/tokenizer"
)

// Sentinel errors
var (
	ErrUnexpectedToken      = errors.New("unexpected token")
	ErrUnbalancedGroup      = errors.New("unbalanced group")
	ErrUnsupportedConstruct = errors.New("unsupported group construct")
	ErrInvalidConditional   = errors.New("conditional group has at most two branches")
	ErrEmptyConditional     = errors.New("conditional group has no condition")
	ErrInvalidClassRange    = errors.New("invalid range in character class, low > high")
	ErrUnterminatedClass    = errors.New("unterminated character class")
	ErrUnknownPosixClass    = errors.New("unknown POSIX class name")
	ErrNothingToRepeat      = errors.New("quantifier has nothing to repeat")
	ErrInvalidVerb          = errors.New("unknown control verb")
	ErrDepthExceeded        = errors.New("maximum parse recursion depth exceeded")
	ErrInvalidGroupName     = errors.New("invalid group name")
)

// ParseError represents a grammatical error with its source position, so
// callers can render a caret-style diagnostic.
type ParseError struct {
	Message  string
	Position tokenizer.Position
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at line %d, column %d (offset %d)",
		e.Message, e.Position.Line, e.Position.Column, e.Position.Offset)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func newParseError(err error, message string, pos tokenizer.Position) *ParseError {
	return &ParseError{Message: message, Position: pos, Err: err}
}
