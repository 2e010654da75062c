package main

import (
	"fmt"

	"github.com/shibukawa/pcrescan"
	"github.com/shibukawa/pcrescan/formatter"
	"github.com/shibukawa/pcrescan/tokenizer"
)

// FormatCmd represents the format command
type FormatCmd struct {
	Pattern string `arg:"" help:"Delimited pattern to re-serialize"`
}

// Run executes the format command. The pattern is parsed and compiled back
// from the AST, which normalizes escape spelling and drops comments-only
// whitespace in extended mode.
func (cmd *FormatCmd) Run(ctx *Context) error {
	config, err := pcrescan.LoadConfig(ctx.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	opts := pcrescan.OptionsFromConfig(config)

	root, err := pcrescan.Parse(cmd.Pattern, opts)
	if err != nil {
		return err
	}

	_, flagText, err := tokenizer.SplitDelimited(cmd.Pattern)
	if err != nil {
		return err
	}

	fmt.Printf("/%s/%s\n", formatter.Render(root), flagText)
	return nil
}
