package tokenizer

import (
	"fmt"
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenIterator uses Go 1.24 iterator pattern
type TokenIterator iter.Seq2[Token, error]

// PatternTokenizer is a tokenizer that returns an iterator
type PatternTokenizer struct {
	input   string
	flags   Flags
	options TokenizerOptions
}

// TokenizerOptions are options for the tokenizer
type TokenizerOptions struct {
	// PreserveWhitespace keeps extended-mode whitespace and line comments in
	// the stream instead of skipping them at the token level.
	PreserveWhitespace bool

	// BaseOffset shifts reported positions so they index into the original
	// delimited pattern rather than the stripped body.
	BaseOffset int
}

// NewPatternTokenizer creates a new PatternTokenizer for a pattern body
// (delimiters already stripped, see SplitDelimited).
func NewPatternTokenizer(input string, flags Flags, options ...TokenizerOptions) *PatternTokenizer {
	var opts TokenizerOptions
	if len(options) > 0 {
		opts = options[0]
	}

	return &PatternTokenizer{
		input:   input,
		flags:   flags,
		options: opts,
	}
}

// Tokens returns an iterator of tokens
func (t *PatternTokenizer) Tokens() TokenIterator {
	return func(yield func(Token, error) bool) {
		tokenizer := &tokenizer{
			input:  t.input,
			line:   1,
			column: 0,
			flags:  t.flags,
			base:   t.options.BaseOffset,
		}

		tokenizer.readChar()

		for {
			token, err := tokenizer.nextToken()
			if err != nil {
				if !yield(Token{}, err) {
					return
				}
				continue
			}

			if token.Type == EOF {
				yield(token, nil)
				return
			}

			// Extended-mode whitespace and line comments never reach the
			// parser unless explicitly preserved. Inline (?#...) comments do.
			if !t.options.PreserveWhitespace {
				if token.Type == WHITESPACE {
					continue
				}
				if token.Type == COMMENT && strings.HasPrefix(token.Value, "#") {
					continue
				}
			}

			if !yield(token, nil) {
				return
			}
		}
	}
}

// AllTokens gets all tokens as a slice (for debugging)
func (t *PatternTokenizer) AllTokens() ([]Token, error) {
	tokens := make([]Token, 0, 64)
	var lastError error

	for token, err := range t.Tokens() {
		if err != nil {
			lastError = err
			continue
		}
		tokens = append(tokens, token)
		if token.Type == EOF {
			break
		}
	}

	return tokens, lastError
}

// Internal tokenizer implementation
type tokenizer struct {
	input   string
	offset  int // byte offset of current rune
	next    int // byte offset just past current rune
	line    int
	column  int
	current rune
	flags   Flags
	base    int

	prev     TokenType // type of the previously emitted token
	inClass  bool
	classPos int // emitted parts since '[' (literal ']' handling)
}

// starBodyGroups are "(*name:" constructs that open a group body rather than
// acting as a standalone control verb.
var starBodyGroups = map[string]bool{
	"atomic":              true,
	"pla":                 true,
	"plb":                 true,
	"nla":                 true,
	"nlb":                 true,
	"napla":               true,
	"naplb":               true,
	"positive_lookahead":  true,
	"negative_lookahead":  true,
	"positive_lookbehind": true,
	"negative_lookbehind": true,
	"sr":                  true,
	"script_run":          true,
	"asr":                 true,
	"atomic_script_run":   true,
}

// nextToken gets the next token
func (t *tokenizer) nextToken() (Token, error) {
	token, err := t.scanToken()
	if err == nil {
		// "?(" consumes the paren that opens an assertion condition, so the
		// next "?=" must still be read as a group modifier.
		if token.Type == GROUP_MODIFIER && strings.HasSuffix(token.Value, "(") {
			t.prev = OPENED_PARENS
		} else {
			t.prev = token.Type
		}
	}

	return token, err
}

func (t *tokenizer) scanToken() (Token, error) {
	if t.current == 0 {
		return t.newToken(EOF, ""), nil
	}

	if t.inClass {
		return t.nextClassToken()
	}

	switch t.current {
	case '\\':
		return t.readEscape()
	case '.':
		return t.single(DOT), nil
	case '^':
		return t.single(CARET), nil
	case '$':
		return t.single(DOLLAR), nil
	case '|':
		return t.single(PIPE), nil
	case '(':
		return t.single(OPENED_PARENS), nil
	case ')':
		return t.single(CLOSED_PARENS), nil
	case '{':
		return t.single(OPEN_BRACE), nil
	case '}':
		return t.single(CLOSE_BRACE), nil
	case '[':
		token := t.single(OPEN_BRACKET)
		t.inClass = true
		t.classPos = 0
		return token, nil
	case ']':
		// A stray ']' outside a class matches itself.
		return t.single(LITERAL), nil
	case '*':
		if t.prev == OPENED_PARENS {
			return t.readStarConstruct()
		}
		return t.single(STAR), nil
	case '+':
		return t.single(PLUS), nil
	case '?':
		if t.prev == OPENED_PARENS {
			return t.readGroupModifier()
		}
		return t.single(QUESTION), nil
	default:
		if t.flags.Extended {
			if unicode.IsSpace(t.current) {
				return t.readWhitespace(), nil
			}
			if t.current == '#' {
				return t.readLineComment(), nil
			}
		}
		return t.single(LITERAL), nil
	}
}

// nextClassToken tokenizes inside a character class, where most
// metacharacters lose their meaning.
func (t *tokenizer) nextClassToken() (Token, error) {
	switch t.current {
	case '\\':
		token, err := t.readEscape()
		if err == nil {
			t.classPos++
		}
		return token, err
	case ']':
		if t.classPos == 0 {
			// "[]" and "[^]" keep the ']' literal per convention.
			t.classPos++
			return t.single(LITERAL), nil
		}
		token := t.single(CLOSE_BRACKET)
		t.inClass = false
		return token, nil
	case '^':
		if t.classPos == 0 {
			// Leading '^' negates; does not count toward the literal-']' rule.
			return t.single(CARET), nil
		}
		t.classPos++
		return t.single(LITERAL), nil
	case '[':
		if t.peekChar() == ':' {
			return t.readPosixClass()
		}
		t.classPos++
		return t.single(LITERAL), nil
	default:
		t.classPos++
		return t.single(LITERAL), nil
	}
}

// readChar reads the next character
func (t *tokenizer) readChar() {
	t.offset = t.next
	if t.next >= len(t.input) {
		t.current = 0
		return
	}

	r, size := utf8.DecodeRuneInString(t.input[t.next:])
	t.current = r
	t.next += size

	if r == '\n' {
		t.line++
		t.column = 1
	} else {
		t.column++
	}
}

// peekChar looks ahead at the next character
func (t *tokenizer) peekChar() rune {
	if t.next >= len(t.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(t.input[t.next:])
	return r
}

type mark struct {
	line   int
	column int
	offset int
}

func (t *tokenizer) mark() mark {
	return mark{line: t.line, column: t.column, offset: t.offset}
}

func (t *tokenizer) emit(tokenType TokenType, value string, at mark) Token {
	pos := Position{
		Line:   at.line,
		Column: at.column,
		Offset: at.offset + t.base,
	}
	if pos.Line == 1 {
		pos.Column += t.base
	}

	return Token{
		Type:     tokenType,
		Value:    value,
		Position: pos,
	}
}

// single emits a one-rune token and advances.
func (t *tokenizer) single(tokenType TokenType) Token {
	at := t.mark()
	value := string(t.current)
	t.readChar()

	return t.emit(tokenType, value, at)
}

// newToken creates a token at the current position without consuming input.
func (t *tokenizer) newToken(tokenType TokenType, value string) Token {
	return t.emit(tokenType, value, t.mark())
}

// readWhitespace reads an extended-mode whitespace run
func (t *tokenizer) readWhitespace() Token {
	var builder strings.Builder
	at := t.mark()

	for t.current != 0 && unicode.IsSpace(t.current) {
		builder.WriteRune(t.current)
		t.readChar()
	}

	return t.emit(WHITESPACE, builder.String(), at)
}

// readLineComment reads an extended-mode '#' comment to end of line
func (t *tokenizer) readLineComment() Token {
	var builder strings.Builder
	at := t.mark()

	for t.current != 0 && t.current != '\n' {
		builder.WriteRune(t.current)
		t.readChar()
	}

	return t.emit(COMMENT, builder.String(), at)
}

// readPosixClass reads "[:alpha:]" or "[:^alpha:]" inside a class.
// A '[' that does not open a well-formed POSIX class stays literal.
func (t *tokenizer) readPosixClass() (Token, error) {
	end := strings.Index(t.input[t.offset:], ":]")
	if end < 0 {
		t.classPos++
		return t.single(LITERAL), nil
	}

	text := t.input[t.offset : t.offset+end+2]
	name := strings.TrimPrefix(strings.TrimSuffix(text, ":]"), "[:")
	name = strings.TrimPrefix(name, "^")
	for _, c := range name {
		if !unicode.IsLower(c) {
			t.classPos++
			return t.single(LITERAL), nil
		}
	}

	at := t.mark()
	for range utf8.RuneCountInString(text) {
		t.readChar()
	}

	t.classPos++

	return t.emit(POSIX_CLASS, text, at), nil
}

// readEscape reads a backslash escape, including the multi-character forms
// \x{...}, \o{...}, \p{...}, \k<name>, \g{...} and \Q...\E.
func (t *tokenizer) readEscape() (Token, error) {
	var builder strings.Builder
	at := t.mark()

	builder.WriteRune(t.current) // '\'
	t.readChar()

	if t.current == 0 {
		return Token{}, fmt.Errorf("%w at line %d, column %d", ErrUnterminatedEscape, at.line, at.column)
	}

	lead := t.current
	builder.WriteRune(lead)
	t.readChar()

	switch {
	case lead == 'x':
		if err := t.readHexBody(&builder, at); err != nil {
			return Token{}, err
		}
	case lead == 'o':
		if err := t.readOctalBody(&builder, at); err != nil {
			return Token{}, err
		}
	case lead == 'g':
		t.readGroupRef(&builder)
	case lead == 'k':
		if err := t.readNamedRef(&builder, at); err != nil {
			return Token{}, err
		}
	case lead == 'p' || lead == 'P':
		t.readUnicodeProperty(&builder)
	case lead == 'c':
		if t.current == 0 {
			return Token{}, fmt.Errorf("%w at line %d, column %d", ErrUnterminatedEscape, at.line, at.column)
		}
		builder.WriteRune(t.current)
		t.readChar()
	case lead == 'Q':
		t.readQuoteSection(&builder)
	case lead >= '0' && lead <= '9':
		// Digit run: octal escape or backreference, resolved later.
		for t.current >= '0' && t.current <= '9' {
			builder.WriteRune(t.current)
			t.readChar()
		}
	}

	return t.emit(ESCAPE, builder.String(), at), nil
}

// readHexBody reads "41", "{1F600}" or nothing after "\x".
func (t *tokenizer) readHexBody(builder *strings.Builder, at mark) error {
	if t.current == '{' {
		builder.WriteRune(t.current)
		t.readChar()

		digits := 0
		for t.current != 0 && t.current != '}' {
			if !isHexDigit(t.current) {
				return fmt.Errorf("%w: %q at line %d, column %d", ErrInvalidHexDigit, t.current, t.line, t.column)
			}
			builder.WriteRune(t.current)
			t.readChar()
			digits++
		}

		if t.current != '}' || digits == 0 {
			return fmt.Errorf("%w at line %d, column %d", ErrUnterminatedEscape, at.line, at.column)
		}

		builder.WriteRune(t.current)
		t.readChar()

		return nil
	}

	// Bare \x takes up to two hex digits; zero digits means NUL.
	for range 2 {
		if !isHexDigit(t.current) {
			break
		}
		builder.WriteRune(t.current)
		t.readChar()
	}

	return nil
}

// readOctalBody reads "{17}" after "\o"; braces are mandatory.
func (t *tokenizer) readOctalBody(builder *strings.Builder, at mark) error {
	if t.current != '{' {
		return fmt.Errorf("%w: \\o requires '{' at line %d, column %d", ErrInvalidOctalDigit, t.line, t.column)
	}

	builder.WriteRune(t.current)
	t.readChar()

	digits := 0
	for t.current != 0 && t.current != '}' {
		if t.current < '0' || t.current > '7' {
			return fmt.Errorf("%w: %q at line %d, column %d", ErrInvalidOctalDigit, t.current, t.line, t.column)
		}
		builder.WriteRune(t.current)
		t.readChar()
		digits++
	}

	if t.current != '}' || digits == 0 {
		return fmt.Errorf("%w at line %d, column %d", ErrUnterminatedEscape, at.line, at.column)
	}

	builder.WriteRune(t.current)
	t.readChar()

	return nil
}

// readGroupRef reads the body of \g: digits, signed digits, {...}, <...> or '...'.
func (t *tokenizer) readGroupRef(builder *strings.Builder) {
	switch t.current {
	case '{':
		t.readDelimitedName(builder, '}')
	case '<':
		t.readDelimitedName(builder, '>')
	case '\'':
		t.readDelimitedName(builder, '\'')
	case '+', '-':
		builder.WriteRune(t.current)
		t.readChar()
		t.readDigits(builder)
	default:
		t.readDigits(builder)
	}
}

// readNamedRef reads the body of \k: <name>, {name} or 'name'.
func (t *tokenizer) readNamedRef(builder *strings.Builder, at mark) error {
	switch t.current {
	case '{':
		t.readDelimitedName(builder, '}')
	case '<':
		t.readDelimitedName(builder, '>')
	case '\'':
		t.readDelimitedName(builder, '\'')
	default:
		return fmt.Errorf("%w: \\k requires a delimited name at line %d, column %d", ErrUnterminatedName, at.line, at.column)
	}

	return nil
}

// readUnicodeProperty reads "{Lu}", "{^Greek}" or a single property letter.
func (t *tokenizer) readUnicodeProperty(builder *strings.Builder) {
	if t.current == '{' {
		t.readDelimitedName(builder, '}')
		return
	}

	if unicode.IsLetter(t.current) {
		builder.WriteRune(t.current)
		t.readChar()
	}
}

// readQuoteSection reads up to "\E" or end of input; PCRE allows an
// unterminated \Q to quote the rest of the pattern.
func (t *tokenizer) readQuoteSection(builder *strings.Builder) {
	for t.current != 0 {
		if t.current == '\\' && t.peekChar() == 'E' {
			builder.WriteRune(t.current)
			t.readChar()
			builder.WriteRune(t.current)
			t.readChar()
			return
		}
		builder.WriteRune(t.current)
		t.readChar()
	}
}

// readDelimitedName copies characters through the closing delimiter. The
// delimiter may be missing at end of input; the parser validates the shape.
func (t *tokenizer) readDelimitedName(builder *strings.Builder, closing rune) {
	for t.current != 0 && t.current != closing {
		builder.WriteRune(t.current)
		t.readChar()
	}
	if t.current == closing {
		builder.WriteRune(t.current)
		t.readChar()
	}
}

func (t *tokenizer) readDigits(builder *strings.Builder) {
	for t.current >= '0' && t.current <= '9' {
		builder.WriteRune(t.current)
		t.readChar()
	}
}

// readGroupModifier reads the "?..." introducer right after '('.
func (t *tokenizer) readGroupModifier() (Token, error) {
	var builder strings.Builder
	at := t.mark()

	builder.WriteRune(t.current) // '?'
	t.readChar()

	switch {
	case t.current == ':' || t.current == '=' || t.current == '!' || t.current == '>' || t.current == '|':
		builder.WriteRune(t.current)
		t.readChar()
	case t.current == '<':
		builder.WriteRune(t.current)
		t.readChar()
		if t.current == '=' || t.current == '!' {
			builder.WriteRune(t.current)
			t.readChar()
		} else {
			if !t.readNameInto(&builder, '>') {
				return Token{}, fmt.Errorf("%w at line %d, column %d", ErrUnterminatedName, at.line, at.column)
			}
		}
	case t.current == '\'':
		builder.WriteRune(t.current)
		t.readChar()
		if !t.readNameInto(&builder, '\'') {
			return Token{}, fmt.Errorf("%w at line %d, column %d", ErrUnterminatedName, at.line, at.column)
		}
	case t.current == 'P':
		builder.WriteRune(t.current)
		t.readChar()
		switch t.current {
		case '<':
			builder.WriteRune(t.current)
			t.readChar()
			if !t.readNameInto(&builder, '>') {
				return Token{}, fmt.Errorf("%w at line %d, column %d", ErrUnterminatedName, at.line, at.column)
			}
		case '>', '=':
			builder.WriteRune(t.current)
			t.readChar()
			t.readWordInto(&builder)
		default:
			// Unrecognized (?P...; the parser reports the construct.
			if t.current != 0 && t.current != ')' {
				builder.WriteRune(t.current)
				t.readChar()
			}
		}
	case t.current == '#':
		// Inline (?#...) comment; emitted as a COMMENT token, ')' stays.
		builder.Reset()
		builder.WriteRune('?')
		builder.WriteRune(t.current)
		t.readChar()
		for t.current != 0 && t.current != ')' {
			builder.WriteRune(t.current)
			t.readChar()
		}
		if t.current != ')' {
			return Token{}, fmt.Errorf("%w at line %d, column %d", ErrUnterminatedComment, at.line, at.column)
		}
		return t.emit(COMMENT, builder.String(), at), nil
	case t.current == '(':
		builder.WriteRune(t.current)
		t.readChar()
	case t.current == 'R':
		builder.WriteRune(t.current)
		t.readChar()
	case t.current == '&':
		builder.WriteRune(t.current)
		t.readChar()
		t.readWordInto(&builder)
	case t.current == '+' || t.current == '-' || (t.current >= '0' && t.current <= '9'):
		if t.current == '+' || t.current == '-' {
			builder.WriteRune(t.current)
			t.readChar()
		}
		if t.current >= '0' && t.current <= '9' {
			t.readDigits(&builder)
		} else {
			// "?-i" style flag removal starts with '-': rescan as flags.
			t.readFlagsInto(&builder)
		}
	case unicode.IsLetter(t.current) || t.current == '^':
		t.readFlagsInto(&builder)
	default:
		// Unsupported "(?X"; carried through for the parser to reject.
		if t.current != 0 && t.current != ')' {
			builder.WriteRune(t.current)
			t.readChar()
		}
	}

	return t.emit(GROUP_MODIFIER, builder.String(), at), nil
}

// readFlagsInto reads an inline flag run like "im-sx" plus a trailing ':'
// when present. A trailing ')' is left in the stream.
func (t *tokenizer) readFlagsInto(builder *strings.Builder) {
	for unicode.IsLetter(t.current) || t.current == '-' || t.current == '^' {
		builder.WriteRune(t.current)
		t.readChar()
	}
	if t.current == ':' {
		builder.WriteRune(t.current)
		t.readChar()
	}
}

// readNameInto copies a group name plus its closing delimiter.
// Returns false when the delimiter is missing or the name is empty.
func (t *tokenizer) readNameInto(builder *strings.Builder, closing rune) bool {
	length := 0
	for t.current != 0 && t.current != closing && isNameRune(t.current) {
		builder.WriteRune(t.current)
		t.readChar()
		length++
	}

	if t.current != closing || length == 0 {
		return false
	}

	builder.WriteRune(t.current)
	t.readChar()

	return true
}

func (t *tokenizer) readWordInto(builder *strings.Builder) {
	for isNameRune(t.current) {
		builder.WriteRune(t.current)
		t.readChar()
	}
}

// readStarConstruct reads "(*...)" control verbs and "(*name:" group openers.
// The leading '(' has already been emitted and the trailing ')' stays.
func (t *tokenizer) readStarConstruct() (Token, error) {
	var builder strings.Builder
	at := t.mark()

	builder.WriteRune(t.current) // '*'
	t.readChar()

	var name strings.Builder
	for isNameRune(t.current) {
		name.WriteRune(t.current)
		builder.WriteRune(t.current)
		t.readChar()
	}

	if t.current == ':' {
		builder.WriteRune(t.current)
		t.readChar()

		if starBodyGroups[name.String()] {
			return t.emit(GROUP_MODIFIER, builder.String(), at), nil
		}

		// Verb argument, e.g. (*MARK:name) or (*SKIP:label).
		for t.current != 0 && t.current != ')' {
			builder.WriteRune(t.current)
			t.readChar()
		}
	}

	if t.current != ')' {
		return Token{}, fmt.Errorf("%w at line %d, column %d", ErrUnterminatedVerb, at.line, at.column)
	}

	return t.emit(VERB, builder.String(), at), nil
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isNameRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
