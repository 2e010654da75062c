package redos

import (
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/shibukawa/pcrescan/parser"
)

func analyzeBody(t *testing.T, body string, options ...Options) Result {
	t.Helper()

	root, err := parser.Parse(body)
	assert.NoError(t, err)

	return Analyze(root, options...)
}

func TestAnalyze_NestedUnbounded(t *testing.T) {
	result := analyzeBody(t, "(a+)+$")
	assert.Equal(t, SeverityCritical, result.Severity)
	assert.Equal(t, scoreNestedUnbounded, result.Score)
	assert.Equal(t, 1, result.HotspotCount)
	assert.Equal(t, "a+", result.Culprit)
	assert.True(t, strings.Contains(result.Trigger, "a long run of input matching a"))
}

func TestAnalyze_SafeAlternation(t *testing.T) {
	// No quantifier anywhere, so the walk is skipped entirely.
	result := analyzeBody(t, "^(GET|POST|PUT|DELETE)$")
	assert.Equal(t, SeveritySafe, result.Severity)
	assert.Equal(t, 0, result.Score)
	assert.Equal(t, 0, result.HotspotCount)
	assert.Equal(t, "", result.Culprit)
}

func TestAnalyze_Shapes(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		severity Severity
		score    int
	}{
		{"plain literal repeat", "a+", SeveritySafe, 0},
		{"disjoint branches", "(a|b)+", SeveritySafe, 0},
		{"class repeat", `\d+`, SeverityLow, scoreClassUnbound},
		{"wildcard repeat", ".*", SeverityLow, scoreWildcardUnbound},
		{"large counted repeat", "a{1500}", SeverityMedium, scoreLargeRepetition},
		{"unbounded under counted", "(a+){2}", SeverityHigh, scoreBoundedNesting},
		{"overlapping branches", "(a|ab)+", SeverityHigh, scoreOverlapBranches},
		{"nested wildcard", "(.*)+", SeverityCritical, scoreNestedUnbounded + scoreWildcardNested},
		{"shorthand overlap", `(\d|12)+`, SeverityHigh, scoreOverlapBranches},
		{"lazy nesting still nested", "(a+?)+", SeverityCritical, scoreNestedUnbounded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := analyzeBody(t, tt.body)
			assert.Equal(t, tt.severity, result.Severity)
			assert.Equal(t, tt.score, result.Score)
		})
	}
}

func TestAnalyze_DeeperNestingScoresHigher(t *testing.T) {
	double := analyzeBody(t, "(a+)+")
	triple := analyzeBody(t, "((a+)+)+")
	assert.True(t, triple.Score > double.Score)
	assert.True(t, triple.Severity.Exceeds(double.Severity))
}

func TestAnalyze_NilTree(t *testing.T) {
	result := Analyze(nil)
	assert.Equal(t, SeveritySafe, result.Severity)
	assert.Equal(t, 0, result.Score)
}

func TestAnalyze_CustomThresholds(t *testing.T) {
	strict := Options{Thresholds: Thresholds{Low: 1, Medium: 2, High: 3, Critical: 5}}

	result := analyzeBody(t, ".*", strict)
	assert.Equal(t, SeverityCritical, result.Severity)

	// Zero-value options fall back to the defaults.
	result = analyzeBody(t, ".*", Options{})
	assert.Equal(t, SeverityLow, result.Severity)
}

func TestAnalyze_HotspotAggregation(t *testing.T) {
	// Two independent findings accumulate, and the worst one names the
	// culprit.
	result := analyzeBody(t, `\d+x(a+)+`)
	assert.Equal(t, 2, result.HotspotCount)
	assert.Equal(t, scoreClassUnbound+scoreNestedUnbounded, result.Score)
	assert.Equal(t, "a+", result.Culprit)
}

func TestSeverity_Order(t *testing.T) {
	assert.True(t, SeverityCritical.Exceeds(SeverityHigh))
	assert.True(t, SeverityHigh.Exceeds(SeverityHigh))
	assert.False(t, SeverityLow.Exceeds(SeverityMedium))
	assert.True(t, SeveritySafe.Exceeds(SeveritySafe))
}

func TestSeverity_String(t *testing.T) {
	assert.Equal(t, "safe", SeveritySafe.String())
	assert.Equal(t, "critical", SeverityCritical.String())
	assert.Equal(t, "Severity(9)", Severity(9).String())
}

func TestParseSeverity(t *testing.T) {
	severity, err := ParseSeverity("HIGH")
	assert.NoError(t, err)
	assert.Equal(t, SeverityHigh, severity)

	severity, err = ParseSeverity(" medium ")
	assert.NoError(t, err)
	assert.Equal(t, SeverityMedium, severity)

	_, err = ParseSeverity("fatal")
	assert.IsError(t, err, ErrUnknownSeverity)
}
