package main

import (
	"fmt"

	"github.com/shibukawa/pcrescan"
	"github.com/shibukawa/pcrescan/explain"
)

// ExplainCmd represents the explain command
type ExplainCmd struct {
	Pattern  string `arg:"" help:"Delimited pattern to describe, e.g. '/^\\d+$/'"`
	Tolerant bool   `help:"Describe as much as possible even if the pattern has errors"`
}

// Run executes the explain command
func (cmd *ExplainCmd) Run(ctx *Context) error {
	config, err := pcrescan.LoadConfig(ctx.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	opts := pcrescan.OptionsFromConfig(config)

	if cmd.Tolerant {
		root, errs := pcrescan.ParseTolerant(cmd.Pattern, opts)
		for _, parseErr := range errs {
			fmt.Printf("warning: %v\n", parseErr)
		}
		fmt.Print(explain.Explain(root))
		return nil
	}

	root, err := pcrescan.Parse(cmd.Pattern, opts)
	if err != nil {
		return err
	}
	fmt.Print(explain.Explain(root))
	return nil
}
