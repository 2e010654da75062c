package redos

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    string
	}{
		{"delimited with flags", "/^foo$/i", "foo"},
		{"delimited plain", "/foo/", "foo"},
		{"bare anchored", "^foo$", "foo"},
		{"bare plain", "foo", "foo"},
		{"string anchors", `\Afoo\z`, "foo"},
		{"end before newline", `foo\Z`, "foo"},
		{"escaped dollar kept", `foo\$`, `foo\$`},
		{"double backslash dollar stripped", `foo\\$`, `foo\\`},
		{"bare fragment not split", "(a+)+", "(a+)+"},
		{"bracket delimiters", "{^a+$}", "a+"},
		{"hash delimiter", "#foo#x", "foo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.pattern))
		})
	}
}

func TestIgnored(t *testing.T) {
	ignore := []string{"(a+)+", "/legacy-[0-9]+/"}

	assert.True(t, Ignored("/(a+)+$/", ignore))
	assert.True(t, Ignored("(a+)+", ignore))
	assert.True(t, Ignored("#^legacy-[0-9]+$#i", ignore))
	assert.False(t, Ignored("/(a+)+b/", ignore))
	assert.False(t, Ignored("/(b+)+/", ignore))
	assert.False(t, Ignored("anything", nil))
}
