package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shibukawa/pcrescan/tokenizer"
)

// patternParser is a recursive-descent parser over a TokenStream, one method
// per grammar production: alternation > sequence > quantified atom > atom.
type patternParser struct {
	stream   *tokenizer.TokenStream
	options  Options
	depth    int
	tolerant bool
	errors   []error
}

// posixNames are the class names accepted inside [:...:].
var posixNames = map[string]bool{
	"alnum": true, "alpha": true, "ascii": true, "blank": true,
	"cntrl": true, "digit": true, "graph": true, "lower": true,
	"print": true, "punct": true, "space": true, "upper": true,
	"word": true, "xdigit": true,
}

// verbNames are the control verbs accepted inside (*...).
var verbNames = map[string]bool{
	"ACCEPT": true, "FAIL": true, "F": true, "MARK": true,
	"COMMIT": true, "PRUNE": true, "SKIP": true, "THEN": true,
}

// inlineFlagLetters are the letters accepted in (?flags) and (?flags:...).
const inlineFlagLetters = "imsxuUJnaADSX"

func newPatternParser(stream *tokenizer.TokenStream, options Options, tolerant bool) *patternParser {
	return &patternParser{stream: stream, options: options, tolerant: tolerant}
}

// enter guards recursion depth for groups, classes and quantified atoms.
func (p *patternParser) enter() error {
	p.depth++
	if p.depth > p.options.MaxDepth {
		pos := tokenizer.Position{}
		if token, err := p.stream.Current(); err == nil {
			pos = token.Position
		}
		return newParseError(ErrDepthExceeded,
			fmt.Sprintf("pattern nesting exceeds %d levels", p.options.MaxDepth), pos)
	}
	return nil
}

func (p *patternParser) leave() {
	p.depth--
}

func (p *patternParser) current() (tokenizer.Token, error) {
	return p.stream.Current()
}

func (p *patternParser) advance() (tokenizer.Token, error) {
	return p.stream.Advance()
}

// parsePattern parses a whole pattern body and requires the stream to be
// exhausted afterwards.
func (p *patternParser) parsePattern() (Node, error) {
	root, err := p.parseAlternation()
	if err != nil {
		return nil, err
	}

	token, err := p.current()
	if err != nil {
		return nil, err
	}

	if token.Type == tokenizer.CLOSED_PARENS {
		perr := newParseError(ErrUnbalancedGroup, "unmatched closing parenthesis", token.Position)
		if !p.tolerant {
			return nil, perr
		}
		p.errors = append(p.errors, perr)
		// Swallow the stray paren and keep going with what follows.
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		rest, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		return NewSequenceNode([]Node{root, rest}, root.StartPos(), rest.EndPos()), nil
	}

	if token.Type != tokenizer.EOF {
		return nil, newParseError(ErrUnexpectedToken,
			fmt.Sprintf("unexpected token %s", token), token.Position)
	}

	return root, nil
}

// parseAlternation is the lowest-precedence production; '|' always splits.
func (p *patternParser) parseAlternation() (Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	first, err := p.parseSequence()
	if err != nil {
		return nil, err
	}

	alternatives := []Node{first}

	for {
		token, err := p.current()
		if err != nil {
			return nil, err
		}
		if token.Type != tokenizer.PIPE {
			break
		}
		if _, err := p.advance(); err != nil {
			return nil, err
		}

		next, err := p.parseSequence()
		if err != nil {
			return nil, err
		}
		alternatives = append(alternatives, next)
	}

	if len(alternatives) == 1 {
		return first, nil
	}

	return NewAlternationNode(alternatives,
		alternatives[0].StartPos(), alternatives[len(alternatives)-1].EndPos()), nil
}

// parseSequence collects quantified atoms until '|', ')' or end of input.
func (p *patternParser) parseSequence() (Node, error) {
	startToken, err := p.current()
	if err != nil {
		return nil, err
	}

	start := startToken.Position.Offset
	end := start
	children := make([]Node, 0, 4)

	for {
		token, err := p.current()
		if err != nil {
			if !p.tolerant {
				return nil, err
			}
			p.errors = append(p.errors, err)
			continue
		}

		if token.Type == tokenizer.EOF || token.Type == tokenizer.PIPE || token.Type == tokenizer.CLOSED_PARENS {
			break
		}
		if token.Type == tokenizer.WHITESPACE {
			if _, err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}

		child, err := p.parseQuantified()
		if err != nil {
			if !p.tolerant {
				return nil, err
			}
			p.errors = append(p.errors, err)
			placeholder, rerr := p.recover()
			if rerr != nil {
				return nil, rerr
			}
			if placeholder != nil {
				children = append(children, placeholder)
				end = placeholder.EndPos()
			}
			continue
		}

		children = append(children, child)
		end = child.EndPos()
	}

	if len(children) == 1 {
		return children[0], nil
	}

	return NewSequenceNode(children, start, end), nil
}

// recover synthesizes a placeholder for an unparseable fragment and resumes
// at the next safe synchronization point (top-level '|' or closing paren).
func (p *patternParser) recover() (Node, error) {
	var builder strings.Builder

	start := -1
	end := -1

	for {
		token, err := p.current()
		if err != nil {
			p.errors = append(p.errors, err)
			continue
		}
		if token.Type == tokenizer.EOF || token.Type == tokenizer.PIPE || token.Type == tokenizer.CLOSED_PARENS {
			break
		}
		if start < 0 {
			start = token.Position.Offset
		}
		builder.WriteString(token.Value)
		end = token.End()
		if _, err := p.advance(); err != nil {
			return nil, err
		}
	}

	if start < 0 {
		return nil, nil
	}

	return NewPlaceholderNode(builder.String(), start, end), nil
}

// parseQuantified parses an atom plus an optional quantifier suffix,
// peeking one extra token for the lazy '?' or possessive '+' marker.
func (p *patternParser) parseQuantified() (Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	atom, err := p.parseAtom()
	if err != nil {
		return nil, err
	}

	for {
		token, err := p.current()
		if err != nil {
			return nil, err
		}

		var (
			text     string
			minCount int
			maxCount int
		)

		switch token.Type {
		case tokenizer.STAR:
			text, minCount, maxCount = "*", 0, -1
		case tokenizer.PLUS:
			text, minCount, maxCount = "+", 1, -1
		case tokenizer.QUESTION:
			text, minCount, maxCount = "?", 0, 1
		case tokenizer.OPEN_BRACE:
			braceText, bmin, bmax, ok, err := p.peekBraceQuantifier()
			if err != nil {
				return nil, err
			}
			if !ok {
				// Malformed brace bodies stay literal; handled as the next atom.
				return atom, nil
			}
			text, minCount, maxCount = braceText, bmin, bmax
		default:
			return atom, nil
		}

		quantEnd := token.Position.Offset + len(text)

		// Consume the quantifier tokens.
		if token.Type == tokenizer.OPEN_BRACE {
			if err := p.consumeBrace(); err != nil {
				return nil, err
			}
		} else {
			if _, err := p.advance(); err != nil {
				return nil, err
			}
		}

		quantType := QuantGreedy

		suffix, err := p.current()
		if err != nil {
			return nil, err
		}
		switch suffix.Type {
		case tokenizer.QUESTION:
			quantType = QuantLazy
			text += "?"
			quantEnd = suffix.End()
			if _, err := p.advance(); err != nil {
				return nil, err
			}
		case tokenizer.PLUS:
			quantType = QuantPossessive
			text += "+"
			quantEnd = suffix.End()
			if _, err := p.advance(); err != nil {
				return nil, err
			}
		}

		if minCount > maxCount && maxCount >= 0 {
			return nil, newParseError(ErrUnexpectedToken,
				fmt.Sprintf("numbers out of order in %s quantifier", text), token.Position)
		}

		atom = NewQuantifierNode(atom, text, minCount, maxCount, quantType,
			atom.StartPos(), quantEnd)
	}
}

// peekBraceQuantifier checks whether the '{' under the cursor opens a valid
// {m}, {m,}, {m,n} or {,n} body without consuming anything.
func (p *patternParser) peekBraceQuantifier() (text string, minCount, maxCount int, ok bool, err error) {
	var builder strings.Builder
	builder.WriteByte('{')

	body := ""
	closed := false

	for i := 1; i <= 16; i++ {
		token, err := p.stream.Peek(i)
		if err != nil {
			return "", 0, 0, false, err
		}
		if token.Type == tokenizer.CLOSE_BRACE {
			builder.WriteByte('}')
			closed = true
			break
		}
		if token.Type != tokenizer.LITERAL || len(token.Value) != 1 {
			return "", 0, 0, false, nil
		}
		c := token.Value[0]
		if c != ',' && (c < '0' || c > '9') {
			return "", 0, 0, false, nil
		}
		body += token.Value
		builder.WriteString(token.Value)
	}

	if !closed || body == "" {
		return "", 0, 0, false, nil
	}

	low, high, found := strings.Cut(body, ",")
	switch {
	case !found:
		n, err := strconv.Atoi(low)
		if err != nil {
			return "", 0, 0, false, nil
		}
		minCount, maxCount = n, n
	case low == "" && high != "":
		n, err := strconv.Atoi(high)
		if err != nil {
			return "", 0, 0, false, nil
		}
		minCount, maxCount = 0, n
	case high == "":
		n, err := strconv.Atoi(low)
		if err != nil {
			return "", 0, 0, false, nil
		}
		minCount, maxCount = n, -1
	default:
		m, err1 := strconv.Atoi(low)
		n, err2 := strconv.Atoi(high)
		if err1 != nil || err2 != nil {
			return "", 0, 0, false, nil
		}
		minCount, maxCount = m, n
	}

	return builder.String(), minCount, maxCount, true, nil
}

// consumeBrace eats tokens through the matching '}'.
func (p *patternParser) consumeBrace() error {
	for {
		token, err := p.advance()
		if err != nil {
			return err
		}
		if token.Type == tokenizer.CLOSE_BRACE || token.Type == tokenizer.EOF {
			return nil
		}
	}
}

// parseAtom parses a single non-quantified element.
func (p *patternParser) parseAtom() (Node, error) {
	token, err := p.current()
	if err != nil {
		return nil, err
	}

	switch token.Type {
	case tokenizer.LITERAL:
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		return NewLiteralNode(token.Value, token.Position.Offset, token.End()), nil
	case tokenizer.DOT:
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		return NewDotNode(token.Position.Offset, token.End()), nil
	case tokenizer.CARET:
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		return NewAnchorNode("^", token.Position.Offset, token.End()), nil
	case tokenizer.DOLLAR:
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		return NewAnchorNode("$", token.Position.Offset, token.End()), nil
	case tokenizer.OPEN_BRACE, tokenizer.CLOSE_BRACE:
		// Braces that do not form a quantifier match themselves.
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		return NewLiteralNode(token.Value, token.Position.Offset, token.End()), nil
	case tokenizer.ESCAPE:
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		return p.classifyEscape(token)
	case tokenizer.COMMENT:
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		return p.commentNode(token)
	case tokenizer.OPEN_BRACKET:
		return p.parseCharClass()
	case tokenizer.OPENED_PARENS:
		return p.parseGroup()
	case tokenizer.STAR, tokenizer.PLUS, tokenizer.QUESTION:
		return nil, newParseError(ErrNothingToRepeat,
			fmt.Sprintf("quantifier %q has nothing to repeat", token.Value), token.Position)
	default:
		return nil, newParseError(ErrUnexpectedToken,
			fmt.Sprintf("unexpected token %s", token), token.Position)
	}
}

// commentNode wraps an extended-mode '#' line comment kept in the stream.
// Inline (?#...) comments are handled by parseGroup.
func (p *patternParser) commentNode(token tokenizer.Token) (Node, error) {
	return NewCommentNode(strings.TrimPrefix(token.Value, "#"),
		token.Position.Offset, token.End()), nil
}
