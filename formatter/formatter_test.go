package formatter

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/shibukawa/pcrescan/parser"
)

func render(t *testing.T, body string) string {
	t.Helper()

	root, err := parser.Parse(body)
	assert.NoError(t, err)

	return Render(root)
}

func TestRender_RoundTrip(t *testing.T) {
	// Patterns whose rendered form equals the input.
	bodies := []string{
		"abc",
		"^hello$",
		"a(b|c)*d",
		"a{2,4}?b+",
		`\d+\s\w`,
		`a\.b`,
		`\Qa.b*\E`,
		"(?:ab)+",
		"(?<year>x{4})",
		"(?>a+)b",
		"(?=a)(?!b)(?<=c)(?<!d)",
		"(?|(a)|(b))",
		"(?i)",
		"(?im:a)",
		"(?-s:a)",
		"[a-z0]",
		"[^a-c]",
		"[[:alpha:]]",
		"[[:^digit:]]",
		`\p{Lu}`,
		`\x41\x{1F600}`,
		"(?(1)a|b)",
		"(?(year)a)",
		"(?(?=x)a|b)",
		"(?(DEFINE)(?<w>a+))",
		"(*MARK:here)a(*FAIL)",
		"(*script_run:ab)",
		"(*atomic_script_run:ab)",
		"(?R)",
		"(?&word)",
		"(?-1)",
		"(?C1)",
		"(?#note)a",
		`\g{2}`,
		`\k<year>`,
	}

	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			assert.Equal(t, body, render(t, body))
		})
	}
}

func TestRender_Canonicalizes(t *testing.T) {
	// Alternate spellings collapse to one canonical form.
	tests := []struct {
		name string
		body string
		want string
	}{
		{"quoted named group", "(?'y'a)", "(?<y>a)"},
		{"python named group", "(?P<y>a)", "(?<y>a)"},
		{"python named backref", "(?P=y)", `\k<y>`},
		{"brace named backref", `\k{y}`, `\k<y>`},
		{"numeric backref", `(a)(b)\2`, `(a)(b)\g{2}`},
		{"python subroutine", "(?<w>a)(?P>w)", "(?<w>a)(?&w)"},
		{"angle subroutine", `(?<w>a)\g<w>`, "(?<w>a)(?&w)"},
		{"atomic star group", "(*atomic:a)", "(?>a)"},
		{"lookahead star group", "(*positive_lookahead:a)", "(?=a)"},
		{"bare unicode prop", `\pL`, `\p{L}`},
		{"caret negated prop", `\p{^L}`, `\P{L}`},
		{"leading class bracket", "[]a]", `[\]a]`},
		{"angle condition ref", "(?(<year>)a)", "(?(year)a)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, render(t, tt.body))
		})
	}
}

func TestRender_EscapesLiterals(t *testing.T) {
	seq := &parser.SequenceNode{Children: []parser.Node{
		&parser.LiteralNode{Value: "*"},
		&parser.LiteralNode{Value: "a+b"},
	}}
	assert.Equal(t, `\*\Qa+b\E`, Render(seq))
}

func TestRender_Nil(t *testing.T) {
	assert.Equal(t, "", Render(nil))
}
