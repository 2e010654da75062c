package pcrescan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/shibukawa/pcrescan/redos"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "pcrescan.yaml")
	err := os.WriteFile(path, []byte(content), 0o644)
	assert.NoError(t, err)

	return path
}

func TestLoadConfig_MissingFile(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.NoError(t, err)
	assert.Equal(t, getDefaultConfig(), config)
}

func TestLoadConfig_FromFile(t *testing.T) {
	path := writeConfig(t, `
max_pattern_length: 2048
tolerant: true
analysis:
  fail_on: critical
  ignore:
    - "(a+)+"
  thresholds:
    low: 1
    medium: 5
    high: 10
    critical: 20
`)

	config, err := LoadConfig(path)
	assert.NoError(t, err)
	assert.Equal(t, 2048, config.MaxPatternLength)
	assert.True(t, config.Tolerant)
	assert.Equal(t, "critical", config.Analysis.FailOn)
	assert.Equal(t, []string{"(a+)+"}, config.Analysis.Ignore)
	assert.Equal(t, redos.Thresholds{Low: 1, Medium: 5, High: 10, Critical: 20}, config.Thresholds())

	// Omitted fields pick up the defaults.
	assert.Equal(t, 250, config.MaxRecursionDepth)
	assert.Equal(t, 255, config.MaxLookbehindLength)
	assert.Equal(t, 1024, config.CacheSize)
}

func TestLoadConfig_UnknownField(t *testing.T) {
	path := writeConfig(t, "max_pattern_len: 100\n")

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"negative length", "max_pattern_length: -1\n"},
		{"negative depth", "max_recursion_depth: -5\n"},
		{"unknown fail_on", "analysis:\n  fail_on: fatal\n"},
		{"descending thresholds", "analysis:\n  thresholds:\n    low: 10\n    medium: 5\n    high: 20\n    critical: 30\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)

			_, err := LoadConfig(path)
			assert.IsError(t, err, ErrConfigValidation)
		})
	}
}

func TestLoadConfig_EnvExpansion(t *testing.T) {
	t.Setenv("PCRESCAN_FAIL_ON", "low")
	t.Setenv("PCRESCAN_SAFE", "legacy-[0-9]+")

	path := writeConfig(t, `
analysis:
  fail_on: ${PCRESCAN_FAIL_ON}
  ignore:
    - /$PCRESCAN_SAFE/
`)

	config, err := LoadConfig(path)
	assert.NoError(t, err)
	assert.Equal(t, "low", config.Analysis.FailOn)
	assert.Equal(t, []string{"/legacy-[0-9]+/"}, config.Analysis.Ignore)
}

func TestConfig_FailOnSeverity(t *testing.T) {
	config := getDefaultConfig()
	assert.Equal(t, redos.SeverityHigh, config.FailOnSeverity())

	config.Analysis.FailOn = "medium"
	assert.Equal(t, redos.SeverityMedium, config.FailOnSeverity())

	config.Analysis.FailOn = "garbage"
	assert.Equal(t, redos.SeverityHigh, config.FailOnSeverity())
}

func TestConfig_Thresholds(t *testing.T) {
	config := getDefaultConfig()
	assert.Equal(t, redos.DefaultThresholds, config.Thresholds())
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("PCRESCAN_X", "value")

	assert.Equal(t, "value", expandEnvVars("${PCRESCAN_X}"))
	assert.Equal(t, "a-value-b", expandEnvVars("a-$PCRESCAN_X-b"))
	assert.Equal(t, "plain", expandEnvVars("plain"))
	assert.Equal(t, "/x", expandEnvVars("$PCRESCAN_UNSET/x"))
}
