package explain

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/shibukawa/pcrescan/parser"
)

func explainBody(t *testing.T, body string) string {
	t.Helper()

	root, err := parser.Parse(body)
	assert.NoError(t, err)

	return Explain(root)
}

func TestExplain_Outline(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "anchored char type",
			body: `^\d$`,
			want: "assert position at the start of the line\n" +
				"match a digit\n" +
				"assert position at the end of the line\n",
		},
		{
			name: "quantified literal",
			body: "a+",
			want: "repeat one or more times:\n" +
				"  match the text \"a\"\n",
		},
		{
			name: "lazy bounded quantifier",
			body: "a{2,4}?",
			want: "repeat between 2 and 4 times, as few as possible:\n" +
				"  match the text \"a\"\n",
		},
		{
			name: "group with alternation",
			body: "(a|b)",
			want: "capturing group:\n" +
				"  match one of 2 alternatives:\n" +
				"    alternative 1:\n" +
				"      match the text \"a\"\n" +
				"    alternative 2:\n" +
				"      match the text \"b\"\n",
		},
		{
			name: "empty group",
			body: "()",
			want: "capturing group:\n" +
				"  match nothing (empty)\n",
		},
		{
			name: "named group",
			body: `(?<year>\d)`,
			want: "capturing group \"year\":\n" +
				"  match a digit\n",
		},
		{
			name: "lookahead",
			body: "(?=a)",
			want: "lookahead (the following must match here, without consuming input):\n" +
				"  match the text \"a\"\n",
		},
		{
			name: "flag setting",
			body: "(?i)",
			want: "set inline flags \"i\" for the rest of the enclosing group\n",
		},
		{
			name: "conditional",
			body: "(?(1)a|b)",
			want: "conditional:\n" +
				"  if:\n" +
				"    group 1 matched\n" +
				"  then:\n" +
				"    match the text \"a\"\n" +
				"  else:\n" +
				"    match the text \"b\"\n",
		},
		{
			name: "char class",
			body: "[a-cx]",
			want: "match any character in the set:\n" +
				"  characters 'a' through 'c'\n" +
				"  the character \"x\"\n",
		},
		{
			name: "backref and boundary",
			body: `(a)\b\1`,
			want: "capturing group:\n" +
				"  match the text \"a\"\n" +
				"assert a word boundary\n" +
				"match the same text as group 1\n",
		},
		{
			name: "recursion",
			body: "a(?R)?",
			want: "match the text \"a\"\n" +
				"repeat optionally:\n" +
				"  recurse into the whole pattern\n",
		},
		{
			name: "verb",
			body: "(*MARK:here)",
			want: "backtracking control verb (*MARK:here)\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, explainBody(t, tt.body))
		})
	}
}

func TestExplain_Placeholder(t *testing.T) {
	root, errs := parser.ParseTolerant("*a")
	assert.True(t, len(errs) > 0)

	out := Explain(root)
	assert.Equal(t, "unparsed fragment \"*a\"\n", out)
}

func TestExplain_Nil(t *testing.T) {
	assert.Equal(t, "", Explain(nil))
}
