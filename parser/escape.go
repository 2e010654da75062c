package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shibukawa/pcrescan/tokenizer"
)

const (
	charTypeLetters = "dDsSwWhHvVRNXC"
	anchorLetters   = "AZzG"
	boundaryLetters = "bBK"
)

// controlEscapes maps single-letter escapes to their code points.
var controlEscapes = map[byte]rune{
	'a': 0x07,
	'e': 0x1B,
	'f': 0x0C,
	'n': 0x0A,
	'r': 0x0D,
	't': 0x09,
}

// classifyEscape turns an ESCAPE token outside a character class into the
// matching node kind.
func (p *patternParser) classifyEscape(token tokenizer.Token) (Node, error) {
	body := strings.TrimPrefix(token.Value, "\\")
	start := token.Position.Offset
	end := token.End()
	lead := body[0]

	switch {
	case len(body) == 1 && strings.IndexByte(charTypeLetters, lead) >= 0:
		return NewCharTypeNode(body, start, end), nil
	case len(body) == 1 && strings.IndexByte(anchorLetters, lead) >= 0:
		return NewAnchorNode("\\"+body, start, end), nil
	case len(body) == 1 && strings.IndexByte(boundaryLetters, lead) >= 0:
		return NewAssertionNode("\\"+body, start, end), nil
	case lead == 'x', lead == 'o', lead == 'c':
		value, err := resolveNumericEscape(token)
		if err != nil {
			return nil, err
		}
		return NewUnicodeEscapeNode(token.Value, value, start, end), nil
	case lead == '0':
		value, err := resolveNumericEscape(token)
		if err != nil {
			return nil, err
		}
		return NewUnicodeEscapeNode(token.Value, value, start, end), nil
	case lead >= '1' && lead <= '9':
		// Digit run: a backreference until the validator says otherwise.
		return NewBackrefNode(body, start, end), nil
	case lead == 'g':
		return classifyGroupRef(token)
	case lead == 'k':
		name := strings.Trim(body[1:], "<>{}'")
		return NewBackrefNode(name, start, end), nil
	case lead == 'p' || lead == 'P':
		return classifyUnicodeProp(token)
	case lead == 'Q':
		text := strings.TrimPrefix(body, "Q")
		text = strings.TrimSuffix(text, "\\E")
		return NewLiteralNode(text, start, end), nil
	case lead == 'E':
		// Stray \E quotes nothing.
		return NewLiteralNode("", start, end), nil
	default:
		if value, ok := controlEscapes[lead]; ok && len(body) == 1 {
			return NewUnicodeEscapeNode(token.Value, value, start, end), nil
		}
		// Escaped metacharacter or ordinary character: matches itself.
		return NewLiteralNode(body, start, end), nil
	}
}

// classifyClassEscape handles ESCAPE tokens inside a character class, where
// \b is a backspace and digit runs are octal.
func (p *patternParser) classifyClassEscape(token tokenizer.Token) (Node, error) {
	body := strings.TrimPrefix(token.Value, "\\")
	start := token.Position.Offset
	end := token.End()
	lead := body[0]

	switch {
	case len(body) == 1 && lead == 'b':
		return NewUnicodeEscapeNode(token.Value, 0x08, start, end), nil
	case lead >= '0' && lead <= '9':
		value, ok := parseOctal(body)
		if !ok {
			return NewLiteralNode(body, start, end), nil
		}
		return NewUnicodeEscapeNode(token.Value, value, start, end), nil
	case lead == 'g', lead == 'k':
		// Group references have no meaning inside a class.
		return NewLiteralNode(body, start, end), nil
	default:
		return p.classifyEscape(token)
	}
}

// classifyGroupRef splits the \g forms: \g<name> and \g'name' call a
// subroutine, \g1, \g{1}, \g{-1} and \g{name} are backreferences.
func classifyGroupRef(token tokenizer.Token) (Node, error) {
	body := strings.TrimPrefix(token.Value, "\\g")
	start := token.Position.Offset
	end := token.End()

	switch {
	case strings.HasPrefix(body, "<"), strings.HasPrefix(body, "'"):
		return NewSubroutineNode(strings.Trim(body, "<>'"), start, end), nil
	case strings.HasPrefix(body, "{"):
		return NewBackrefNode(strings.Trim(body, "{}"), start, end), nil
	case body == "":
		return nil, newParseError(ErrUnexpectedToken, "\\g requires a group reference", token.Position)
	default:
		return NewBackrefNode(body, start, end), nil
	}
}

// classifyUnicodeProp splits \p{Lu}, \P{Greek}, \p{^L} and \pL.
func classifyUnicodeProp(token tokenizer.Token) (Node, error) {
	negated := strings.HasPrefix(token.Value, "\\P")
	name := token.Value[2:]
	name = strings.Trim(name, "{}")

	if strings.HasPrefix(name, "^") {
		negated = !negated
		name = strings.TrimPrefix(name, "^")
	}

	if name == "" {
		return nil, newParseError(ErrUnexpectedToken,
			"\\p requires a property name", token.Position)
	}

	return NewUnicodePropNode(name, negated, token.Position.Offset, token.End()), nil
}

// resolveNumericEscape computes the code point of \xhh, \x{...}, \o{...},
// \cX and \0dd escapes.
func resolveNumericEscape(token tokenizer.Token) (rune, error) {
	body := strings.TrimPrefix(token.Value, "\\")

	switch body[0] {
	case 'x':
		digits := strings.Trim(body[1:], "{}")
		if digits == "" {
			return 0, nil // \x alone is NUL
		}
		n, err := strconv.ParseInt(digits, 16, 32)
		if err != nil {
			return 0, newParseError(ErrUnexpectedToken,
				fmt.Sprintf("invalid hex escape %s", token.Value), token.Position)
		}
		return rune(n), nil
	case 'o':
		digits := strings.Trim(body[1:], "{}")
		n, err := strconv.ParseInt(digits, 8, 32)
		if err != nil {
			return 0, newParseError(ErrUnexpectedToken,
				fmt.Sprintf("invalid octal escape %s", token.Value), token.Position)
		}
		return rune(n), nil
	case 'c':
		c := body[1]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		return rune(c ^ 0x40), nil
	default:
		value, ok := parseOctal(body)
		if !ok {
			return 0, newParseError(ErrUnexpectedToken,
				fmt.Sprintf("invalid octal escape %s", token.Value), token.Position)
		}
		return value, nil
	}
}

// parseOctal reads up to three octal digits.
func parseOctal(digits string) (rune, bool) {
	if len(digits) > 3 {
		digits = digits[:3]
	}
	n, err := strconv.ParseInt(digits, 8, 32)
	if err != nil {
		return 0, false
	}
	return rune(n), true
}
