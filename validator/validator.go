// Package validator enforces the semantic rules a grammar cannot express:
// backreference and subroutine resolution, bounded lookbehind, duplicate
// capture names, and a structural complexity score.
package validator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shibukawa/pcrescan/parser"
)

// DefaultMaxLookbehind is the default ceiling for the statically computed
// maximum lookbehind length.
const DefaultMaxLookbehind = 255

// Result reports the outcome of semantic validation. Failures are data, not
// errors, so callers can batch-validate many patterns.
type Result struct {
	IsValid         bool
	Error           string
	ComplexityScore int
}

// Options tunes validation limits.
type Options struct {
	// MaxLookbehind caps the statically determined lookbehind length.
	// Zero means DefaultMaxLookbehind.
	MaxLookbehind int
}

func (o Options) withDefaults() Options {
	if o.MaxLookbehind <= 0 {
		o.MaxLookbehind = DefaultMaxLookbehind
	}
	return o
}

// Validate walks the tree once with a symbol collector and once with a rule
// checker. It never returns an error value; semantic defects are encoded in
// the Result.
func Validate(root parser.Node, options ...Options) Result {
	opts := Options{}.withDefaults()
	if len(options) > 0 {
		opts = options[0].withDefaults()
	}

	symbols := newSymbolCollector()
	root.Accept(symbols)

	if symbols.failure != "" {
		return Result{IsValid: false, Error: symbols.failure, ComplexityScore: 0}
	}

	checker := &ruleChecker{symbols: symbols, options: opts}
	root.Accept(checker)

	return Result{
		IsValid:         checker.failure == "",
		Error:           checker.failure,
		ComplexityScore: checker.complexity,
	}
}

// symbolCollector numbers capture groups and records names, honoring
// branch-reset numbering.
type symbolCollector struct {
	counter int
	names   map[string][]nameUse
	numbers map[int]bool
	brDepth int
	failure string
}

type nameUse struct {
	number        int
	inBranchReset bool
}

func newSymbolCollector() *symbolCollector {
	return &symbolCollector{
		names:   map[string][]nameUse{},
		numbers: map[int]bool{},
	}
}

func (s *symbolCollector) fail(format string, args ...any) {
	if s.failure == "" {
		s.failure = fmt.Sprintf(format, args...)
	}
}

func (s *symbolCollector) walk(n parser.Node) {
	if n != nil {
		n.Accept(s)
	}
}

func (s *symbolCollector) VisitSequence(n *parser.SequenceNode) any {
	for _, child := range n.Children {
		s.walk(child)
	}
	return nil
}

func (s *symbolCollector) VisitAlternation(n *parser.AlternationNode) any {
	for _, alt := range n.Alternatives {
		s.walk(alt)
	}
	return nil
}

func (s *symbolCollector) VisitGroup(n *parser.GroupNode) any {
	switch n.GroupType {
	case parser.GroupCapturing:
		s.counter++
		s.numbers[s.counter] = true
	case parser.GroupNamed:
		s.counter++
		s.numbers[s.counter] = true
		s.record(n.Name)
	case parser.GroupBranchReset:
		s.walkBranchReset(n)
		return nil
	}

	s.walk(n.Body)
	return nil
}

// walkBranchReset lets each alternative reuse the same capture numbers; the
// counter afterwards is the highest of any branch.
func (s *symbolCollector) walkBranchReset(n *parser.GroupNode) {
	s.brDepth++
	defer func() { s.brDepth-- }()

	base := s.counter
	highest := s.counter

	alternatives := []parser.Node{n.Body}
	if alt, ok := n.Body.(*parser.AlternationNode); ok {
		alternatives = alt.Alternatives
	}

	for _, branch := range alternatives {
		s.counter = base
		s.walk(branch)
		if s.counter > highest {
			highest = s.counter
		}
	}

	s.counter = highest
}

func (s *symbolCollector) record(name string) {
	uses := s.names[name]
	use := nameUse{number: s.counter, inBranchReset: s.brDepth > 0}

	for _, prev := range uses {
		if !prev.inBranchReset || !use.inBranchReset {
			s.fail("duplicate capture group name %q outside a branch-reset group", name)
		}
	}

	s.names[name] = append(uses, use)
}

func (s *symbolCollector) VisitQuantifier(n *parser.QuantifierNode) any {
	s.walk(n.Atom)
	return nil
}

func (s *symbolCollector) VisitConditional(n *parser.ConditionalNode) any {
	s.walk(n.Condition)
	s.walk(n.Yes)
	s.walk(n.No)
	return nil
}

func (s *symbolCollector) VisitDefine(n *parser.DefineNode) any {
	s.walk(n.Body)
	return nil
}

func (s *symbolCollector) VisitScriptRun(n *parser.ScriptRunNode) any {
	s.walk(n.Body)
	return nil
}

func (s *symbolCollector) VisitCharClass(n *parser.CharClassNode) any {
	return nil
}

func (s *symbolCollector) VisitLiteral(n *parser.LiteralNode) any             { return nil }
func (s *symbolCollector) VisitDot(n *parser.DotNode) any                     { return nil }
func (s *symbolCollector) VisitCharType(n *parser.CharTypeNode) any           { return nil }
func (s *symbolCollector) VisitClassRange(n *parser.ClassRangeNode) any       { return nil }
func (s *symbolCollector) VisitPosixClass(n *parser.PosixClassNode) any       { return nil }
func (s *symbolCollector) VisitUnicodeProp(n *parser.UnicodePropNode) any     { return nil }
func (s *symbolCollector) VisitUnicodeEscape(n *parser.UnicodeEscapeNode) any { return nil }
func (s *symbolCollector) VisitAnchor(n *parser.AnchorNode) any               { return nil }
func (s *symbolCollector) VisitAssertion(n *parser.AssertionNode) any         { return nil }
func (s *symbolCollector) VisitBackref(n *parser.BackrefNode) any             { return nil }
func (s *symbolCollector) VisitSubroutine(n *parser.SubroutineNode) any       { return nil }
func (s *symbolCollector) VisitConditionRef(n *parser.ConditionRefNode) any   { return nil }
func (s *symbolCollector) VisitComment(n *parser.CommentNode) any             { return nil }
func (s *symbolCollector) VisitVerb(n *parser.VerbNode) any                   { return nil }
func (s *symbolCollector) VisitCallout(n *parser.CalloutNode) any             { return nil }
func (s *symbolCollector) VisitVersionCond(n *parser.VersionCondNode) any     { return nil }
func (s *symbolCollector) VisitPlaceholder(n *parser.PlaceholderNode) any     { return nil }

// resolve checks a raw reference (number, signed relative, or name) against
// the collected capture table.
func (s *symbolCollector) resolve(ref string) bool {
	if ref == "" {
		return false
	}

	if ref == "R" || ref == "0" {
		return true
	}

	if n, err := strconv.Atoi(strings.TrimPrefix(ref, "+")); err == nil {
		if n < 0 {
			n = -n
		}
		return n > 0 && n <= s.counter
	}

	_, ok := s.names[ref]
	return ok
}

// ruleChecker is the second pass: reference resolution, bounded lookbehind,
// and the structural complexity score.
type ruleChecker struct {
	symbols    *symbolCollector
	options    Options
	complexity int
	failure    string
}

func (c *ruleChecker) fail(format string, args ...any) {
	if c.failure == "" {
		c.failure = fmt.Sprintf(format, args...)
	}
}

func (c *ruleChecker) walk(n parser.Node) {
	if n != nil {
		n.Accept(c)
	}
}

func (c *ruleChecker) VisitSequence(n *parser.SequenceNode) any {
	for _, child := range n.Children {
		c.walk(child)
	}
	return nil
}

func (c *ruleChecker) VisitAlternation(n *parser.AlternationNode) any {
	c.complexity += len(n.Alternatives)
	for _, alt := range n.Alternatives {
		c.walk(alt)
	}
	return nil
}

func (c *ruleChecker) VisitGroup(n *parser.GroupNode) any {
	c.complexity++

	if n.GroupType.IsLookbehind() {
		width, culprit := maxWidth(n.Body)
		switch {
		case width < 0:
			name := "unbounded quantifier"
			if culprit != nil {
				name = culprit.String()
			}
			c.fail("variable-length lookbehind not supported: %s", name)
		case width > c.options.MaxLookbehind:
			c.fail("lookbehind length %d exceeds maximum %d", width, c.options.MaxLookbehind)
		}
	}

	c.walk(n.Body)
	return nil
}

func (c *ruleChecker) VisitQuantifier(n *parser.QuantifierNode) any {
	c.complexity++
	c.walk(n.Atom)
	return nil
}

func (c *ruleChecker) VisitBackref(n *parser.BackrefNode) any {
	if !c.symbols.resolve(n.Ref) {
		c.fail("backreference to unknown group %q", n.Ref)
	}
	return nil
}

func (c *ruleChecker) VisitSubroutine(n *parser.SubroutineNode) any {
	if !c.symbols.resolve(n.Ref) {
		c.fail("subroutine call to unknown group %q", n.Ref)
	}
	return nil
}

func (c *ruleChecker) VisitConditional(n *parser.ConditionalNode) any {
	c.walk(n.Condition)
	c.walk(n.Yes)
	c.walk(n.No)
	return nil
}

func (c *ruleChecker) VisitConditionRef(n *parser.ConditionRefNode) any {
	ref := n.Ref
	ref = strings.TrimPrefix(ref, "R&")
	if ref != "R" {
		ref = strings.TrimPrefix(ref, "R")
	}
	if ref == "" {
		ref = "R"
	}
	if !c.symbols.resolve(ref) {
		c.fail("condition references unknown group %q", n.Ref)
	}
	return nil
}

func (c *ruleChecker) VisitDefine(n *parser.DefineNode) any {
	c.walk(n.Body)
	return nil
}

func (c *ruleChecker) VisitScriptRun(n *parser.ScriptRunNode) any {
	c.complexity++
	c.walk(n.Body)
	return nil
}

func (c *ruleChecker) VisitCharClass(n *parser.CharClassNode) any {
	for _, part := range n.Parts {
		c.walk(part)
	}
	return nil
}

func (c *ruleChecker) VisitLiteral(n *parser.LiteralNode) any             { return nil }
func (c *ruleChecker) VisitDot(n *parser.DotNode) any                     { return nil }
func (c *ruleChecker) VisitCharType(n *parser.CharTypeNode) any           { return nil }
func (c *ruleChecker) VisitClassRange(n *parser.ClassRangeNode) any       { return nil }
func (c *ruleChecker) VisitPosixClass(n *parser.PosixClassNode) any       { return nil }
func (c *ruleChecker) VisitUnicodeProp(n *parser.UnicodePropNode) any     { return nil }
func (c *ruleChecker) VisitUnicodeEscape(n *parser.UnicodeEscapeNode) any { return nil }
func (c *ruleChecker) VisitAnchor(n *parser.AnchorNode) any               { return nil }
func (c *ruleChecker) VisitAssertion(n *parser.AssertionNode) any         { return nil }
func (c *ruleChecker) VisitComment(n *parser.CommentNode) any             { return nil }
func (c *ruleChecker) VisitVerb(n *parser.VerbNode) any                   { return nil }
func (c *ruleChecker) VisitCallout(n *parser.CalloutNode) any             { return nil }
func (c *ruleChecker) VisitVersionCond(n *parser.VersionCondNode) any     { return nil }
func (c *ruleChecker) VisitPlaceholder(n *parser.PlaceholderNode) any     { return nil }
