package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/shibukawa/pcrescan"
	"github.com/shibukawa/pcrescan/cache"
	"github.com/shibukawa/pcrescan/parser"
	"github.com/shibukawa/pcrescan/redos"
	"github.com/shibukawa/pcrescan/validator"
)

var ErrLintFailed = errors.New("one or more patterns failed the lint")

// LintCmd represents the lint command
type LintCmd struct {
	Patterns []string `arg:"" optional:"" help:"Delimited patterns to check, e.g. '/(a+)+$/'"`
	File     string   `help:"Read patterns from a file, one per line" short:"f"`
	FailOn   string   `help:"Minimum severity treated as failure (safe|low|medium|high|critical)"`
	Tolerant bool     `help:"Keep going on parse errors and report partial results"`
}

// outcome is the per-pattern result; cached so repeated patterns in large
// scans are only analyzed once.
type outcome struct {
	parseErr   error
	validation validator.Result
	analysis   redos.Result
}

// Run executes the lint command
func (cmd *LintCmd) Run(ctx *Context) error {
	config, err := pcrescan.LoadConfig(ctx.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	patterns, err := cmd.collectPatterns()
	if err != nil {
		return err
	}
	if len(patterns) == 0 {
		return errors.New("no patterns given; pass them as arguments or with --file")
	}

	failOn := config.FailOnSeverity()
	if cmd.FailOn != "" {
		failOn, err = redos.ParseSeverity(cmd.FailOn)
		if err != nil {
			return err
		}
	}

	opts := pcrescan.OptionsFromConfig(config)
	tolerant := cmd.Tolerant || config.Tolerant
	results := cache.New[outcome](config.CacheSize)

	failed := 0
	for _, pattern := range patterns {
		o := results.GetOrCompute(pattern, func() outcome {
			return lintOne(pattern, opts, tolerant)
		})
		if !cmd.report(ctx, pattern, o, failOn, tolerant) {
			failed++
		}
	}

	if !ctx.Quiet {
		if failed > 0 {
			color.Red("%d of %d patterns failed", failed, len(patterns))
		} else if ctx.Verbose {
			color.Green("%d patterns checked", len(patterns))
		}
	}
	if failed > 0 {
		return ErrLintFailed
	}
	return nil
}

func lintOne(pattern string, opts pcrescan.Options, tolerant bool) outcome {
	o := outcome{}

	if tolerant {
		root, errs := pcrescan.ParseTolerant(pattern, opts)
		if len(errs) > 0 {
			o.parseErr = errs[0]
		}
		o.validation = validator.Validate(root, validator.Options{MaxLookbehind: opts.MaxLookbehindLength})
		o.analysis = pcrescan.AnalyzeReDoS(pattern, opts)
		return o
	}

	if _, err := pcrescan.Parse(pattern, opts); err != nil {
		o.parseErr = err
		return o
	}
	o.validation = pcrescan.Validate(pattern, opts)
	o.analysis = pcrescan.AnalyzeReDoS(pattern, opts)
	return o
}

// report prints one pattern's results and reports whether it passed.
func (cmd *LintCmd) report(ctx *Context, pattern string, o outcome, failOn redos.Severity, tolerant bool) bool {
	if o.parseErr != nil {
		color.Red("%s: %v", pattern, o.parseErr)
		printCaret(pattern, o.parseErr)
		if !tolerant {
			return false
		}
	}

	passed := true
	if !o.validation.IsValid {
		color.Yellow("%s: %s", pattern, o.validation.Error)
		passed = false
	}

	severity := o.analysis.Severity
	if severity.Exceeds(failOn) && failOn > redos.SeveritySafe {
		severityColor(severity)("%s: %s risk (score %d)", pattern, severity, o.analysis.Score)
		if o.analysis.Culprit != "" {
			fmt.Printf("  culprit: %s\n", o.analysis.Culprit)
		}
		if o.analysis.Trigger != "" {
			fmt.Printf("  trigger: %s\n", o.analysis.Trigger)
		}
		passed = false
	} else if ctx.Verbose {
		fmt.Printf("%s: %s (score %d, complexity %d)\n", pattern, severity, o.analysis.Score, o.validation.ComplexityScore)
	}

	return passed && o.parseErr == nil
}

// printCaret renders a caret diagnostic under the offending position.
func printCaret(pattern string, err error) {
	var parseErr *parser.ParseError
	if !errors.As(err, &parseErr) {
		return
	}
	offset := parseErr.Position.Offset
	if offset < 0 || offset > len(pattern) || strings.ContainsRune(pattern, '\n') {
		return
	}
	fmt.Printf("  %s\n", pattern)
	fmt.Printf("  %s^\n", strings.Repeat(" ", offset))
}

func severityColor(s redos.Severity) func(string, ...any) {
	switch {
	case s >= redos.SeverityHigh:
		return color.Red
	case s >= redos.SeverityMedium:
		return color.Yellow
	default:
		return color.Blue
	}
}

func (cmd *LintCmd) collectPatterns() ([]string, error) {
	patterns := append([]string(nil), cmd.Patterns...)
	if cmd.File == "" {
		return patterns, nil
	}

	f, err := os.Open(cmd.File)
	if err != nil {
		return nil, fmt.Errorf("failed to open pattern file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pattern file: %w", err)
	}

	return patterns, nil
}
