package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shibukawa/pcrescan"
	"github.com/shibukawa/pcrescan/redos"
)

func TestCollectPatterns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.txt")
	content := "# known hotspots\n/(a+)+$/\n\n  /^ok$/  \n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cmd := &LintCmd{
		Patterns: []string{"/inline/"},
		File:     path,
	}

	patterns, err := cmd.collectPatterns()
	require.NoError(t, err)
	assert.Equal(t, []string{"/inline/", "/(a+)+$/", "/^ok$/"}, patterns)
}

func TestCollectPatterns_MissingFile(t *testing.T) {
	cmd := &LintCmd{File: filepath.Join(t.TempDir(), "nope.txt")}

	_, err := cmd.collectPatterns()
	assert.Error(t, err)
}

func TestLintOne(t *testing.T) {
	opts := pcrescan.Options{}

	t.Run("clean pattern", func(t *testing.T) {
		o := lintOne("/^ok$/", opts, false)
		require.NoError(t, o.parseErr)
		assert.True(t, o.validation.IsValid)
		assert.Equal(t, redos.SeveritySafe, o.analysis.Severity)
	})

	t.Run("hotspot pattern", func(t *testing.T) {
		o := lintOne("/(a+)+$/", opts, false)
		require.NoError(t, o.parseErr)
		assert.Equal(t, redos.SeverityCritical, o.analysis.Severity)
	})

	t.Run("parse error aborts strict mode", func(t *testing.T) {
		o := lintOne("/(hello/", opts, false)
		require.Error(t, o.parseErr)
		assert.False(t, o.validation.IsValid)
	})

	t.Run("tolerant mode keeps analyzing", func(t *testing.T) {
		o := lintOne("/(hello/", opts, true)
		require.Error(t, o.parseErr)
		// The partial tree is still validated and analyzed.
		assert.Equal(t, redos.SeveritySafe, o.analysis.Severity)
	})
}
