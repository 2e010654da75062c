package tokenizer

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestParseFlags(t *testing.T) {
	flags, err := ParseFlags("imx")
	assert.NoError(t, err)
	assert.True(t, flags.CaseInsensitive)
	assert.True(t, flags.Multiline)
	assert.True(t, flags.Extended)
	assert.False(t, flags.DotAll)

	flags, err = ParseFlags("")
	assert.NoError(t, err)
	assert.Equal(t, Flags{}, flags)

	flags, err = ParseFlags("sADU")
	assert.NoError(t, err)
	assert.True(t, flags.DotAll)
	assert.True(t, flags.Anchored)
	assert.True(t, flags.DollarEndOnly)
	assert.True(t, flags.Ungreedy)

	_, err = ParseFlags("iz")
	assert.IsError(t, err, ErrUnknownFlag)
}

func TestFlags_String(t *testing.T) {
	flags, err := ParseFlags("xmi")
	assert.NoError(t, err)
	// Letters come back in canonical order.
	assert.Equal(t, "imx", flags.String())
	assert.Equal(t, "", Flags{}.String())
}

func TestSplitDelimited(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		body  string
		flags string
	}{
		{"slash", "/abc/", "abc", ""},
		{"slash with flags", "/abc/im", "abc", "im"},
		{"empty body", "//", "", ""},
		{"hash delimiter", "#a.b#x", "a.b", "x"},
		{"escaped delimiter in body", `/a\/b/`, `a\/b`, ""},
		{"angle brackets", "<a|b>i", "a|b", "i"},
		{"braces", "{a+}", "a+", ""},
		{"tilde", "~^ab$~", "^ab$", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, flags, err := SplitDelimited(tt.raw)
			assert.NoError(t, err)
			assert.Equal(t, tt.body, body)
			assert.Equal(t, tt.flags, flags)
		})
	}
}

func TestSplitDelimited_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		err  error
	}{
		{"empty", "", ErrInvalidDelimiter},
		{"word delimiter", "abc", ErrInvalidDelimiter},
		{"backslash delimiter", `\abc\`, ErrInvalidDelimiter},
		{"whitespace delimiter", " a ", ErrInvalidDelimiter},
		{"unterminated", "/abc", ErrMissingDelimiter},
		{"escaped closer only", `/abc\/`, ErrMissingDelimiter},
		{"unterminated bracket", "(abc", ErrMissingDelimiter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := SplitDelimited(tt.raw)
			assert.IsError(t, err, tt.err)
		})
	}
}
