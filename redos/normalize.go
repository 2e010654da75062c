package redos

import (
	"strings"

	"github.com/shibukawa/pcrescan/tokenizer"
)

// Normalize strips the delimiter pair and outermost anchors from a pattern
// so that ignore-list entries match regardless of how the pattern was
// quoted. "/^foo$/i", "^foo$" and "foo" all normalize to "foo".
func Normalize(pattern string) string {
	body := pattern
	if stripped, flagText, err := tokenizer.SplitDelimited(pattern); err == nil {
		// Only treat the input as delimited when the trailer is a valid
		// flag string; bare fragments like "(a+)+" stay untouched.
		if _, err := tokenizer.ParseFlags(flagText); err == nil {
			body = stripped
		}
	}

	body = strings.TrimPrefix(body, `\A`)
	body = strings.TrimPrefix(body, "^")
	for _, suffix := range []string{`\z`, `\Z`, "$"} {
		if trimmed, ok := trimAnchorSuffix(body, suffix); ok {
			body = trimmed
			break
		}
	}

	return body
}

// trimAnchorSuffix removes suffix unless it is escaped.
func trimAnchorSuffix(body, suffix string) (string, bool) {
	if !strings.HasSuffix(body, suffix) {
		return body, false
	}
	rest := strings.TrimSuffix(body, suffix)
	if countTrailingBackslashes(rest)%2 == 1 {
		return body, false
	}
	return rest, true
}

func countTrailingBackslashes(s string) int {
	count := 0
	for i := len(s) - 1; i >= 0 && s[i] == '\\'; i-- {
		count++
	}
	return count
}

// Ignored reports whether pattern matches an ignore-list entry after
// normalization on both sides.
func Ignored(pattern string, ignoreList []string) bool {
	normalized := Normalize(pattern)
	for _, entry := range ignoreList {
		if Normalize(entry) == normalized {
			return true
		}
	}
	return false
}
