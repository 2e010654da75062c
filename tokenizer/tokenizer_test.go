package tokenizer

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func tokenize(t *testing.T, input string, flags Flags, options ...TokenizerOptions) []Token {
	t.Helper()

	tokens, err := NewPatternTokenizer(input, flags, options...).AllTokens()
	assert.NoError(t, err)

	// Drop the EOF sentinel for easier comparisons.
	assert.True(t, len(tokens) > 0)
	assert.Equal(t, EOF, tokens[len(tokens)-1].Type)

	return tokens[:len(tokens)-1]
}

func tokenTypes(tokens []Token) []TokenType {
	types := make([]TokenType, 0, len(tokens))
	for _, token := range tokens {
		types = append(types, token.Type)
	}
	return types
}

func TestTokenize_Basic(t *testing.T) {
	tests := []struct {
		name  string
		input string
		types []TokenType
	}{
		{"literals", "abc", []TokenType{LITERAL, LITERAL, LITERAL}},
		{"group with alternation", "a(b|c)*", []TokenType{LITERAL, OPENED_PARENS, LITERAL, PIPE, LITERAL, CLOSED_PARENS, STAR}},
		{"anchors", "^a$", []TokenType{CARET, LITERAL, DOLLAR}},
		{"quantifiers", "a+b?c*", []TokenType{LITERAL, PLUS, LITERAL, QUESTION, LITERAL, STAR}},
		{"lazy quantifier", "a+?", []TokenType{LITERAL, PLUS, QUESTION}},
		{"dot", "a.b", []TokenType{LITERAL, DOT, LITERAL}},
		{"braces", "a{2,3}", []TokenType{LITERAL, OPEN_BRACE, LITERAL, LITERAL, LITERAL, CLOSE_BRACE}},
		{"stray closing bracket is literal", "a]b", []TokenType{LITERAL, LITERAL, LITERAL}},
		{"mid-pattern star is quantifier", "ab*", []TokenType{LITERAL, LITERAL, STAR}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := tokenize(t, tt.input, Flags{})
			assert.Equal(t, tt.types, tokenTypes(tokens))
		})
	}
}

func TestTokenize_Escapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		value string
	}{
		{"char type", `\d`, `\d`},
		{"word boundary", `\b`, `\b`},
		{"hex two digits", `\x41`, `\x41`},
		{"hex braced", `\x{1F600}`, `\x{1F600}`},
		{"octal braced", `\o{17}`, `\o{17}`},
		{"backreference digits", `\12`, `\12`},
		{"relative group ref", `\g-2`, `\g-2`},
		{"named ref angle", `\k<name>`, `\k<name>`},
		{"named ref brace", `\k{name}`, `\k{name}`},
		{"unicode property", `\p{Lu}`, `\p{Lu}`},
		{"unicode property short", `\pL`, `\pL`},
		{"negated property", `\P{Greek}`, `\P{Greek}`},
		{"control char", `\cA`, `\cA`},
		{"quote section", `\Qa.b\E`, `\Qa.b\E`},
		{"unterminated quote runs to end", `\Qa.b`, `\Qa.b`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := tokenize(t, tt.input, Flags{})
			assert.Equal(t, 1, len(tokens))
			assert.Equal(t, ESCAPE, tokens[0].Type)
			assert.Equal(t, tt.value, tokens[0].Value)
		})
	}
}

func TestTokenize_EscapeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		err   error
	}{
		{"trailing backslash", `a\`, ErrUnterminatedEscape},
		{"bad hex digit", `\x{4G}`, ErrInvalidHexDigit},
		{"unterminated hex brace", `\x{41`, ErrUnterminatedEscape},
		{"bad octal digit", `\o{18}`, ErrInvalidOctalDigit},
		{"octal without brace", `\o7`, ErrInvalidOctalDigit},
		{"named ref without delimiter", `\kname`, ErrUnterminatedName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPatternTokenizer(tt.input, Flags{}).AllTokens()
			assert.IsError(t, err, tt.err)
		})
	}
}

func TestTokenize_GroupModifiers(t *testing.T) {
	tests := []struct {
		name  string
		input string
		value string
	}{
		{"non-capturing", "(?:a)", "?:"},
		{"lookahead", "(?=a)", "?="},
		{"negative lookahead", "(?!a)", "?!"},
		{"lookbehind", "(?<=a)", "?<="},
		{"negative lookbehind", "(?<!a)", "?<!"},
		{"atomic", "(?>a)", "?>"},
		{"branch reset", "(?|a)", "?|"},
		{"named angle", "(?<year>a)", "?<year>"},
		{"named quote", "(?'year'a)", "?'year'"},
		{"python named", "(?P<year>a)", "?P<year>"},
		{"python subroutine", "(?P>year)", "?P>year"},
		{"subroutine by name", "(?&year)", "?&year"},
		{"recursion", "(?R)", "?R"},
		{"numeric subroutine", "(?2)", "?2"},
		{"relative subroutine", "(?-1)", "?-1"},
		{"inline flags", "(?im)", "?im"},
		{"flag removal", "(?-s)", "?-s"},
		{"scoped flags", "(?i:a)", "?i:"},
		{"conditional opener", "(?(1)a)", "?("},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := tokenize(t, tt.input, Flags{})
			assert.Equal(t, OPENED_PARENS, tokens[0].Type)
			assert.Equal(t, GROUP_MODIFIER, tokens[1].Type)
			assert.Equal(t, tt.value, tokens[1].Value)
		})
	}
}

func TestTokenize_ConditionalAssertion(t *testing.T) {
	// The "?(" modifier consumes the paren that opens the condition, so the
	// assertion introducer after it must still lex as a modifier.
	tokens := tokenize(t, "(?(?=a)b|c)", Flags{})
	assert.Equal(t,
		[]TokenType{OPENED_PARENS, GROUP_MODIFIER, GROUP_MODIFIER, LITERAL, CLOSED_PARENS, LITERAL, PIPE, LITERAL, CLOSED_PARENS},
		tokenTypes(tokens))
	assert.Equal(t, "?(", tokens[1].Value)
	assert.Equal(t, "?=", tokens[2].Value)
}

func TestTokenize_VerbsAndStarGroups(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		tokenType TokenType
		value     string
	}{
		{"fail verb", "(*FAIL)", VERB, "*FAIL"},
		{"mark with arg", "(*MARK:here)", VERB, "*MARK:here"},
		{"skip with arg", "(*SKIP:x)", VERB, "*SKIP:x"},
		{"atomic group opener", "(*atomic:a)", GROUP_MODIFIER, "*atomic:"},
		{"script run opener", "(*script_run:a)", GROUP_MODIFIER, "*script_run:"},
		{"lookahead alias", "(*pla:a)", GROUP_MODIFIER, "*pla:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := tokenize(t, tt.input, Flags{})
			assert.Equal(t, OPENED_PARENS, tokens[0].Type)
			assert.Equal(t, tt.tokenType, tokens[1].Type)
			assert.Equal(t, tt.value, tokens[1].Value)
		})
	}
}

func TestTokenize_UnterminatedVerb(t *testing.T) {
	_, err := NewPatternTokenizer("(*FAIL", Flags{}).AllTokens()
	assert.IsError(t, err, ErrUnterminatedVerb)
}

func TestTokenize_CharClass(t *testing.T) {
	tests := []struct {
		name  string
		input string
		types []TokenType
	}{
		{"simple range", "[a-z]", []TokenType{OPEN_BRACKET, LITERAL, LITERAL, LITERAL, CLOSE_BRACKET}},
		{"negated", "[^ab]", []TokenType{OPEN_BRACKET, CARET, LITERAL, LITERAL, CLOSE_BRACKET}},
		{"leading bracket literal", "[]a]", []TokenType{OPEN_BRACKET, LITERAL, LITERAL, CLOSE_BRACKET}},
		{"negated leading bracket", "[^]a]", []TokenType{OPEN_BRACKET, CARET, LITERAL, LITERAL, CLOSE_BRACKET}},
		{"caret not first is literal", "[a^]", []TokenType{OPEN_BRACKET, LITERAL, LITERAL, CLOSE_BRACKET}},
		{"metachars lose meaning", "[.+*]", []TokenType{OPEN_BRACKET, LITERAL, LITERAL, LITERAL, CLOSE_BRACKET}},
		{"posix class", "[[:alpha:]]", []TokenType{OPEN_BRACKET, POSIX_CLASS, CLOSE_BRACKET}},
		{"negated posix class", "[[:^digit:]]", []TokenType{OPEN_BRACKET, POSIX_CLASS, CLOSE_BRACKET}},
		{"escape in class", `[\d-]`, []TokenType{OPEN_BRACKET, ESCAPE, LITERAL, CLOSE_BRACKET}},
		{"bare bracket in class", "[a[b]", []TokenType{OPEN_BRACKET, LITERAL, LITERAL, LITERAL, CLOSE_BRACKET}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := tokenize(t, tt.input, Flags{})
			assert.Equal(t, tt.types, tokenTypes(tokens))
		})
	}
}

func TestTokenize_ExtendedMode(t *testing.T) {
	// Whitespace and # comments are skipped in extended mode.
	tokens := tokenize(t, "a b  # trailing comment", Flags{Extended: true})
	assert.Equal(t, []TokenType{LITERAL, LITERAL}, tokenTypes(tokens))

	// Preserved when requested.
	tokens = tokenize(t, "a b # c", Flags{Extended: true}, TokenizerOptions{PreserveWhitespace: true})
	assert.Equal(t, []TokenType{LITERAL, WHITESPACE, LITERAL, WHITESPACE, COMMENT}, tokenTypes(tokens))

	// Without the flag, whitespace is literal.
	tokens = tokenize(t, "a b", Flags{})
	assert.Equal(t, []TokenType{LITERAL, LITERAL, LITERAL}, tokenTypes(tokens))
}

func TestTokenize_InlineComment(t *testing.T) {
	// (?#...) comments survive even in non-extended mode.
	tokens := tokenize(t, "a(?#note)b", Flags{})
	assert.Equal(t, []TokenType{LITERAL, OPENED_PARENS, COMMENT, CLOSED_PARENS, LITERAL}, tokenTypes(tokens))
	assert.Equal(t, "?#note", tokens[2].Value)
}

func TestTokenize_Positions(t *testing.T) {
	tokens := tokenize(t, "ab(c)", Flags{})

	offsets := make([]int, 0, len(tokens))
	for _, token := range tokens {
		offsets = append(offsets, token.Position.Offset)
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4}, offsets)

	assert.Equal(t, 1, tokens[0].Position.Line)
	assert.Equal(t, 1, tokens[0].Position.Column)
	assert.Equal(t, 1, tokens[0].End())
}

func TestTokenize_BaseOffset(t *testing.T) {
	// With a base offset, positions index the original delimited pattern.
	tokens := tokenize(t, "(hello", Flags{}, TokenizerOptions{BaseOffset: 1})

	assert.Equal(t, OPENED_PARENS, tokens[0].Type)
	assert.Equal(t, 1, tokens[0].Position.Offset)
	assert.Equal(t, 2, tokens[0].Position.Column)
	assert.Equal(t, 2, tokens[1].Position.Offset)
}

func TestTokenize_MultibyteInput(t *testing.T) {
	tokens := tokenize(t, "日本a", Flags{})
	assert.Equal(t, []TokenType{LITERAL, LITERAL, LITERAL}, tokenTypes(tokens))
	assert.Equal(t, "日", tokens[0].Value)
	// Offsets are byte offsets.
	assert.Equal(t, 3, tokens[1].Position.Offset)
	assert.Equal(t, 6, tokens[2].Position.Offset)
}
