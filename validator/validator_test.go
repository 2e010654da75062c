package validator

import (
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/shibukawa/pcrescan/parser"
)

func validateBody(t *testing.T, body string, options ...Options) Result {
	t.Helper()

	root, err := parser.Parse(body)
	assert.NoError(t, err)

	return Validate(root, options...)
}

func TestValidate_ValidPatterns(t *testing.T) {
	bodies := []string{
		"abc",
		`(a)\1`,
		`(?<year>\d{4})-\k<year>`,
		"(?<=abc)d",
		"(?<=ab|c)d",
		"(?=a+)b",
		"(?R)",
		"(?<word>a)(?&word)",
		`(a)(b)\g{-1}`,
		"(a)(?(1)b|c)",
		"(?(R)a|b)",
	}

	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			result := validateBody(t, body)
			assert.True(t, result.IsValid)
			assert.Equal(t, "", result.Error)
		})
	}
}

func TestValidate_VariableLengthLookbehind(t *testing.T) {
	result := validateBody(t, "(?<=a+)b")
	assert.False(t, result.IsValid)
	assert.True(t, strings.Contains(result.Error, "variable-length lookbehind"))

	// Lookahead has no such restriction.
	result = validateBody(t, "(?=a+)b")
	assert.True(t, result.IsValid)

	// Backreferences inside a lookbehind are unbounded too.
	result = validateBody(t, `(a)(?<=\1)b`)
	assert.False(t, result.IsValid)
	assert.True(t, strings.Contains(result.Error, "variable-length lookbehind"))
}

func TestValidate_LookbehindLength(t *testing.T) {
	result := validateBody(t, "(?<=a{300})b")
	assert.False(t, result.IsValid)
	assert.True(t, strings.Contains(result.Error, "exceeds maximum 255"))

	result = validateBody(t, "(?<=a{200})b")
	assert.True(t, result.IsValid)

	// The ceiling is configurable.
	result = validateBody(t, "(?<=a{11})b", Options{MaxLookbehind: 10})
	assert.False(t, result.IsValid)

	result = validateBody(t, "(?<=a{10})b", Options{MaxLookbehind: 10})
	assert.True(t, result.IsValid)

	// Alternation takes the widest branch.
	result = validateBody(t, "(?<=abcde|x{500})y", Options{MaxLookbehind: 100})
	assert.False(t, result.IsValid)
}

func TestValidate_UnknownReferences(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"numeric backref", `(a)\2`, "backreference to unknown group"},
		{"bare backref", `\1`, "backreference to unknown group"},
		{"named backref", `(?<y>a)\k<z>`, "backreference to unknown group"},
		{"relative backref", `(a)(b)\g{-3}`, "backreference to unknown group"},
		{"subroutine", "(?<w>a)(?&z)", "subroutine call to unknown group"},
		{"numeric subroutine", "(a)(?3)", "subroutine call to unknown group"},
		{"conditional", "(a)(?(3)b)", "condition references unknown group"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateBody(t, tt.body)
			assert.False(t, result.IsValid)
			assert.True(t, strings.Contains(result.Error, tt.want))
		})
	}
}

func TestValidate_DuplicateNames(t *testing.T) {
	result := validateBody(t, "(?<y>a)(?<y>b)")
	assert.False(t, result.IsValid)
	assert.True(t, strings.Contains(result.Error, "duplicate capture group name"))

	// Duplicates across branch-reset alternatives are legal.
	result = validateBody(t, "(?|(?<y>a)|(?<y>b))")
	assert.True(t, result.IsValid)

	// One use inside and one outside a branch-reset group is not.
	result = validateBody(t, "(?<y>a)(?|(?<y>b))")
	assert.False(t, result.IsValid)
}

func TestValidate_BranchResetNumbering(t *testing.T) {
	// Both branches start at the same number; the counter afterwards is the
	// highest branch.
	result := validateBody(t, `(?|(a)|(b)(c))\2`)
	assert.True(t, result.IsValid)

	result = validateBody(t, `(?|(a)|(b)(c))\3`)
	assert.False(t, result.IsValid)
}

func TestValidate_ComplexityScore(t *testing.T) {
	tests := []struct {
		body  string
		score int
	}{
		{"abc", 0},
		{"(a)", 1},
		{"a+", 1},
		{"(a|b)+(c)", 5}, // two groups, one quantifier, two branches
		{"((a))", 2},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			result := validateBody(t, tt.body)
			assert.True(t, result.IsValid)
			assert.Equal(t, tt.score, result.ComplexityScore)
		})
	}
}

func TestValidate_Idempotent(t *testing.T) {
	root, err := parser.Parse(`(?<y>a+)\k<y>`)
	assert.NoError(t, err)

	first := Validate(root)
	second := Validate(root)
	assert.Equal(t, first, second)
}

func TestMaxWidth(t *testing.T) {
	tests := []struct {
		body  string
		width int
	}{
		{"abc", 3},
		{"a{3}", 3},
		{"a{2,5}", 5},
		{"ab|cdef", 4},
		{`\R`, 2},
		{"(?=xxxx)a", 1},
		{"a+", -1},
		{`\X`, -1},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			root, err := parser.Parse(tt.body)
			assert.NoError(t, err)

			width, _ := maxWidth(root)
			if tt.width < 0 {
				assert.True(t, width < 0)
			} else {
				assert.Equal(t, tt.width, width)
			}
		})
	}
}
