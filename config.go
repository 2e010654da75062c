package pcrescan

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"github.com/shibukawa/pcrescan/redos"
)

// ErrConfigValidation is returned when configuration validation fails
var ErrConfigValidation = errors.New("configuration validation failed")

// Config is the tool configuration, usually loaded from pcrescan.yaml.
type Config struct {
	MaxPatternLength    int            `yaml:"max_pattern_length"`
	MaxRecursionDepth   int            `yaml:"max_recursion_depth"`
	MaxLookbehindLength int            `yaml:"max_lookbehind_length"`
	Tolerant            bool           `yaml:"tolerant"`
	CacheSize           int            `yaml:"cache_size"`
	Analysis            AnalysisConfig `yaml:"analysis"`
}

// AnalysisConfig controls the backtracking-risk analysis.
type AnalysisConfig struct {
	// Ignore lists known-safe patterns that are skipped even when they
	// would score above threshold. Entries are compared after delimiter
	// and anchor normalization.
	Ignore []string `yaml:"ignore"`
	// FailOn is the minimum severity treated as a failure: safe, low,
	// medium, high or critical.
	FailOn string `yaml:"fail_on"`
	// Thresholds override the score cutoffs for each severity band.
	Thresholds ThresholdConfig `yaml:"thresholds"`
}

// ThresholdConfig maps scores onto severity bands. Zero values fall back
// to the built-in defaults.
type ThresholdConfig struct {
	Low      int `yaml:"low"`
	Medium   int `yaml:"medium"`
	High     int `yaml:"high"`
	Critical int `yaml:"critical"`
}

// LoadConfig loads configuration from the given path. A missing file is not
// an error; the defaults are returned.
func LoadConfig(configPath string) (*Config, error) {
	// Load .env files first
	err := loadEnvFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to load environment files: %w", err)
	}

	_, err = os.Stat(configPath)
	if os.IsNotExist(err) {
		config := getDefaultConfig()
		expandConfigEnvVars(config)

		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML with strict mode to detect unknown fields
	var config Config

	err = yaml.UnmarshalWithOptions(data, &config, yaml.Strict())
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Expand before validating so ${VAR} severity values are checked
	// against their resolved form.
	expandConfigEnvVars(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigValidation, err)
	}

	applyDefaults(&config)

	return &config, nil
}

func validateConfig(config *Config) error {
	if config.MaxPatternLength < 0 {
		return fmt.Errorf("max_pattern_length must not be negative, got %d", config.MaxPatternLength)
	}
	if config.MaxRecursionDepth < 0 {
		return fmt.Errorf("max_recursion_depth must not be negative, got %d", config.MaxRecursionDepth)
	}
	if config.MaxLookbehindLength < 0 {
		return fmt.Errorf("max_lookbehind_length must not be negative, got %d", config.MaxLookbehindLength)
	}
	if config.CacheSize < 0 {
		return fmt.Errorf("cache_size must not be negative, got %d", config.CacheSize)
	}

	if config.Analysis.FailOn != "" {
		if _, err := redos.ParseSeverity(config.Analysis.FailOn); err != nil {
			return fmt.Errorf("analysis.fail_on: %w", err)
		}
	}

	t := config.Analysis.Thresholds
	if t.Low < 0 || t.Medium < 0 || t.High < 0 || t.Critical < 0 {
		return errors.New("analysis.thresholds must not be negative")
	}
	if t != (ThresholdConfig{}) {
		if !(t.Low <= t.Medium && t.Medium <= t.High && t.High <= t.Critical) {
			return errors.New("analysis.thresholds must be ascending: low <= medium <= high <= critical")
		}
	}

	return nil
}

func getDefaultConfig() *Config {
	return &Config{
		MaxPatternLength:    4096,
		MaxRecursionDepth:   250,
		MaxLookbehindLength: 255,
		CacheSize:           1024,
		Analysis: AnalysisConfig{
			FailOn: "high",
		},
	}
}

// applyDefaults fills in zero values after a successful parse so a partial
// config file behaves like the defaults.
func applyDefaults(config *Config) {
	defaults := getDefaultConfig()

	if config.MaxPatternLength == 0 {
		config.MaxPatternLength = defaults.MaxPatternLength
	}
	if config.MaxRecursionDepth == 0 {
		config.MaxRecursionDepth = defaults.MaxRecursionDepth
	}
	if config.MaxLookbehindLength == 0 {
		config.MaxLookbehindLength = defaults.MaxLookbehindLength
	}
	if config.CacheSize == 0 {
		config.CacheSize = defaults.CacheSize
	}
	if config.Analysis.FailOn == "" {
		config.Analysis.FailOn = defaults.Analysis.FailOn
	}
}

// Thresholds converts the configured cutoffs into analyzer thresholds,
// falling back to the analyzer defaults when unset.
func (c *Config) Thresholds() redos.Thresholds {
	t := c.Analysis.Thresholds
	if t == (ThresholdConfig{}) {
		return redos.DefaultThresholds
	}
	return redos.Thresholds{Low: t.Low, Medium: t.Medium, High: t.High, Critical: t.Critical}
}

// FailOnSeverity returns the configured failure threshold.
func (c *Config) FailOnSeverity() redos.Severity {
	severity, err := redos.ParseSeverity(c.Analysis.FailOn)
	if err != nil {
		return redos.SeverityHigh
	}
	return severity
}

// loadEnvFiles loads .env files if they exist
func loadEnvFiles() error {
	if fileExists(".env") {
		err := godotenv.Load(".env")
		if err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars expands environment variables in the format ${VAR} or $VAR
func expandEnvVars(s string) string {
	re1 := regexp.MustCompile(`\$\{([^}]+)\}`)
	s = re1.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})

	re2 := regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
	s = re2.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:]
		return os.Getenv(varName)
	})

	return s
}

// expandConfigEnvVars expands environment variables in string-valued fields
func expandConfigEnvVars(config *Config) {
	for i, entry := range config.Analysis.Ignore {
		config.Analysis.Ignore[i] = expandEnvVars(entry)
	}
	config.Analysis.FailOn = expandEnvVars(config.Analysis.FailOn)
}
