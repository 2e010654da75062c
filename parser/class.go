package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shibukawa/pcrescan/tokenizer"
)

// parseCharClass parses a bracket expression. The tokenizer has already
// applied the in-class rules (leading '^', literal ']' first, POSIX
// sub-tokens); ranges are recognized here.
func (p *patternParser) parseCharClass() (Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	open, err := p.advance() // '['
	if err != nil {
		return nil, err
	}

	start := open.Position.Offset
	negated := false

	token, err := p.current()
	if err != nil {
		return nil, err
	}
	if token.Type == tokenizer.CARET {
		negated = true
		if _, err := p.advance(); err != nil {
			return nil, err
		}
	}

	parts := make([]Node, 0, 4)

	for {
		token, err := p.current()
		if err != nil {
			return nil, err
		}

		if token.Type == tokenizer.EOF {
			return nil, newParseError(ErrUnterminatedClass,
				"unterminated character class", open.Position)
		}

		if token.Type == tokenizer.CLOSE_BRACKET {
			if _, err := p.advance(); err != nil {
				return nil, err
			}
			return NewCharClassNode(parts, negated, start, token.End()), nil
		}

		part, err := p.parseClassPart()
		if err != nil {
			return nil, err
		}

		ranged, err := p.tryClassRange(part)
		if err != nil {
			return nil, err
		}

		parts = append(parts, ranged)
	}
}

// parseClassPart parses one class element: literal, escape, or POSIX class.
func (p *patternParser) parseClassPart() (Node, error) {
	token, err := p.advance()
	if err != nil {
		return nil, err
	}

	switch token.Type {
	case tokenizer.LITERAL:
		return NewLiteralNode(token.Value, token.Position.Offset, token.End()), nil
	case tokenizer.ESCAPE:
		return p.classifyClassEscape(token)
	case tokenizer.POSIX_CLASS:
		name := strings.TrimSuffix(strings.TrimPrefix(token.Value, "[:"), ":]")
		negated := strings.HasPrefix(name, "^")
		name = strings.TrimPrefix(name, "^")
		if !posixNames[name] {
			return nil, newParseError(ErrUnknownPosixClass,
				fmt.Sprintf("unknown POSIX class name [:%s:]", name), token.Position)
		}
		return NewPosixClassNode(name, negated, token.Position.Offset, token.End()), nil
	default:
		return nil, newParseError(ErrUnexpectedToken,
			fmt.Sprintf("unexpected token %s in character class", token), token.Position)
	}
}

// tryClassRange upgrades "low - high" into a ClassRangeNode when the cursor
// sits on a '-' that is not the final element of the class.
func (p *patternParser) tryClassRange(low Node) (Node, error) {
	lowRune, ok := classPartRune(low)
	if !ok {
		return low, nil
	}

	dash, err := p.current()
	if err != nil {
		return nil, err
	}
	if dash.Type != tokenizer.LITERAL || dash.Value != "-" {
		return low, nil
	}

	after, err := p.stream.Peek(1)
	if err != nil {
		return nil, err
	}
	if after.Type == tokenizer.CLOSE_BRACKET || after.Type == tokenizer.EOF {
		// Trailing '-' stays a literal class member.
		return low, nil
	}

	if _, err := p.advance(); err != nil { // consume '-'
		return nil, err
	}

	high, err := p.parseClassPart()
	if err != nil {
		return nil, err
	}

	highRune, ok := classPartRune(high)
	if !ok {
		return nil, newParseError(ErrInvalidClassRange,
			fmt.Sprintf("invalid range endpoint %s in character class", high), dash.Position)
	}

	if lowRune > highRune {
		return nil, newParseError(ErrInvalidClassRange,
			fmt.Sprintf("invalid range %q-%q in character class, low > high", lowRune, highRune),
			dash.Position)
	}

	return NewClassRangeNode(low, high, lowRune, highRune, low.StartPos(), high.EndPos()), nil
}

// classPartRune extracts the code point of a single-character class element.
func classPartRune(n Node) (rune, bool) {
	switch node := n.(type) {
	case *LiteralNode:
		if utf8.RuneCountInString(node.Value) != 1 {
			return 0, false
		}
		r, _ := utf8.DecodeRuneInString(node.Value)
		return r, true
	case *UnicodeEscapeNode:
		return node.Value, true
	default:
		return 0, false
	}
}
