package tokenizer

import (
	"fmt"
	"strings"
)

// Flags represents the modifier letters attached after the closing delimiter
// of a pattern, e.g. the "im" in "/abc/im".
type Flags struct {
	CaseInsensitive bool // i
	Multiline       bool // m
	DotAll          bool // s
	Unicode         bool // u
	Extended        bool // x: unescaped whitespace and # comments are skipped
	Anchored        bool // A
	DollarEndOnly   bool // D
	Ungreedy        bool // U
}

// ParseFlags parses a flag string such as "imsx".
func ParseFlags(s string) (Flags, error) {
	var flags Flags

	for _, c := range s {
		switch c {
		case 'i':
			flags.CaseInsensitive = true
		case 'm':
			flags.Multiline = true
		case 's':
			flags.DotAll = true
		case 'u':
			flags.Unicode = true
		case 'x':
			flags.Extended = true
		case 'A':
			flags.Anchored = true
		case 'D':
			flags.DollarEndOnly = true
		case 'U':
			flags.Ungreedy = true
		default:
			return Flags{}, fmt.Errorf("%w: %q", ErrUnknownFlag, c)
		}
	}

	return flags, nil
}

// String returns the canonical flag string, letters in a fixed order.
func (f Flags) String() string {
	var builder strings.Builder

	if f.CaseInsensitive {
		builder.WriteByte('i')
	}
	if f.Multiline {
		builder.WriteByte('m')
	}
	if f.DotAll {
		builder.WriteByte('s')
	}
	if f.Unicode {
		builder.WriteByte('u')
	}
	if f.Extended {
		builder.WriteByte('x')
	}
	if f.Anchored {
		builder.WriteByte('A')
	}
	if f.DollarEndOnly {
		builder.WriteByte('D')
	}
	if f.Ungreedy {
		builder.WriteByte('U')
	}

	return builder.String()
}

// bracketPairs maps opening bracket delimiters to their closing counterpart.
// PCRE accepts bracket-style delimiters in addition to identical pairs.
var bracketPairs = map[byte]byte{
	'(': ')',
	'{': '}',
	'[': ']',
	'<': '>',
}

// SplitDelimited splits a delimited pattern string like "/body/flags" into
// its body and flag string. The delimiter is the first character; any
// non-alphanumeric, non-backslash, non-whitespace character is accepted, and
// bracket delimiters pair with their closing bracket.
func SplitDelimited(raw string) (body string, flags string, err error) {
	if raw == "" {
		return "", "", fmt.Errorf("%w: empty pattern", ErrInvalidDelimiter)
	}

	open := raw[0]
	if isWordByte(open) || open == '\\' || open == ' ' || open == '\t' || open == '\n' || open == '\r' {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidDelimiter, open)
	}

	closing := open
	if c, ok := bracketPairs[open]; ok {
		closing = c
	}

	// Scan for the closing delimiter, skipping escaped characters.
	for i := 1; i < len(raw); i++ {
		switch raw[i] {
		case '\\':
			i++
		case closing:
			return raw[1:i], raw[i+1:], nil
		}
	}

	return "", "", fmt.Errorf("%w: %q", ErrMissingDelimiter, closing)
}

func isWordByte(c byte) bool {
	return c == '_' ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z') ||
		('0' <= c && c <= '9')
}
