// Package redos estimates a pattern's susceptibility to catastrophic
// backtracking without ever executing it. The analysis is a tree walk over
// the parsed AST that looks for the known dangerous shapes: nested unbounded
// quantifiers, overlapping alternation branches under repetition, and
// unbounded wildcards under repetition.
package redos

import (
	"fmt"

	"github.com/shibukawa/pcrescan/formatter"
	"github.com/shibukawa/pcrescan/parser"
)

// Scores per finding shape. Nested unbounded repetition is the exponential
// case, so it lands directly in the critical band.
const (
	scoreNestedUnbounded = 40
	scoreExtraNesting    = 15
	scoreBoundedNesting  = 25
	scoreOverlapBranches = 30
	scoreWildcardNested  = 10
	scoreLargeRepetition = 15
	scoreWildcardUnbound = 5
	scoreClassUnbound    = 2
	largeRepetitionFloor = 1000
)

// Thresholds maps a cumulative score onto the severity bands. A score of
// zero is always SeveritySafe.
type Thresholds struct {
	Low      int
	Medium   int
	High     int
	Critical int
}

var DefaultThresholds = Thresholds{Low: 1, Medium: 10, High: 25, Critical: 40}

// Hotspot is a single scored finding inside the pattern.
type Hotspot struct {
	Score    int
	Fragment string
	Reason   string
	Position int
}

// Result is the outcome of one analysis. Culprit and Trigger describe the
// highest-scoring hotspot; Hotspots lists every finding in pattern order.
type Result struct {
	Severity     Severity
	Score        int
	Culprit      string
	Trigger      string
	Hotspots     []Hotspot
	HotspotCount int
}

type Options struct {
	Thresholds Thresholds
}

func (o Options) withDefaults() Options {
	zero := Thresholds{}
	if o.Thresholds == zero {
		o.Thresholds = DefaultThresholds
	}
	return o
}

// Analyze walks the AST and returns a risk classification. It never fails:
// structures it cannot reason about are scored conservatively.
func Analyze(root parser.Node, options ...Options) Result {
	opts := Options{}
	if len(options) > 0 {
		opts = options[0]
	}
	opts = opts.withDefaults()

	if root == nil || !containsQuantifier(root) {
		// Literal alternations like GET|POST|PUT cannot backtrack
		// catastrophically, skip the walk entirely.
		return Result{Severity: SeveritySafe}
	}

	a := &analyzer{}
	root.Accept(a)

	result := Result{Hotspots: a.hotspots, HotspotCount: len(a.hotspots)}
	var worst Hotspot
	for _, h := range a.hotspots {
		result.Score += h.Score
		if h.Score > worst.Score {
			worst = h
		}
	}
	result.Culprit = worst.Fragment
	result.Trigger = worst.Reason
	result.Severity = classify(result.Score, opts.Thresholds)

	return result
}

func classify(score int, t Thresholds) Severity {
	switch {
	case score >= t.Critical:
		return SeverityCritical
	case score >= t.High:
		return SeverityHigh
	case score >= t.Medium:
		return SeverityMedium
	case score >= t.Low:
		return SeverityLow
	default:
		return SeveritySafe
	}
}

// analyzer accumulates hotspots while tracking how many quantifiers enclose
// the current node. unboundedDepth counts enclosing unbounded quantifiers,
// repeatDepth counts any enclosing quantifier that repeats more than once.
type analyzer struct {
	unboundedDepth int
	repeatDepth    int
	hotspots       []Hotspot
}

func (a *analyzer) report(score int, n parser.Node, reason string) {
	a.hotspots = append(a.hotspots, Hotspot{
		Score:    score,
		Fragment: formatter.Render(n),
		Reason:   reason,
		Position: n.StartPos(),
	})
}

func (a *analyzer) VisitQuantifier(n *parser.QuantifierNode) any {
	repeats := n.Unbounded() || n.Max > 1

	if n.Unbounded() {
		switch {
		case a.unboundedDepth > 0:
			score := scoreNestedUnbounded + scoreExtraNesting*(a.unboundedDepth-1)
			if isWildcard(n.Atom) {
				score += scoreWildcardNested
			}
			a.report(score, n, fmt.Sprintf(
				"a long run of input matching %s followed by a character that fails the overall match", formatter.Render(n.Atom)))
		case a.repeatDepth > 0:
			a.report(scoreBoundedNesting, n, fmt.Sprintf(
				"repeated input matching %s under an enclosing repetition", formatter.Render(n.Atom)))
		case isWildcard(n.Atom):
			a.report(scoreWildcardUnbound, n, "a long arbitrary input")
		case isCharMatcher(n.Atom):
			a.report(scoreClassUnbound, n, fmt.Sprintf(
				"a long run of input matching %s", formatter.Render(n.Atom)))
		}
	} else if n.Max >= largeRepetitionFloor {
		a.report(scoreLargeRepetition, n, fmt.Sprintf(
			"input long enough to satisfy up to %d repetitions", n.Max))
	}

	if repeats {
		if alt := innerAlternation(n.Atom); alt != nil && branchesOverlap(alt) {
			a.report(scoreOverlapBranches, n,
				"repeated input matching more than one alternation branch at the same position")
		}
	}

	if n.Unbounded() {
		a.unboundedDepth++
	}
	if repeats {
		a.repeatDepth++
	}
	n.Atom.Accept(a)
	if repeats {
		a.repeatDepth--
	}
	if n.Unbounded() {
		a.unboundedDepth--
	}

	return nil
}

func (a *analyzer) VisitSequence(n *parser.SequenceNode) any {
	for _, child := range n.Children {
		child.Accept(a)
	}
	return nil
}

func (a *analyzer) VisitAlternation(n *parser.AlternationNode) any {
	for _, alt := range n.Alternatives {
		alt.Accept(a)
	}
	return nil
}

func (a *analyzer) VisitGroup(n *parser.GroupNode) any {
	if n.Body != nil {
		n.Body.Accept(a)
	}
	return nil
}

func (a *analyzer) VisitConditional(n *parser.ConditionalNode) any {
	if n.Yes != nil {
		n.Yes.Accept(a)
	}
	if n.No != nil {
		n.No.Accept(a)
	}
	return nil
}

func (a *analyzer) VisitDefine(n *parser.DefineNode) any {
	if n.Body != nil {
		n.Body.Accept(a)
	}
	return nil
}

func (a *analyzer) VisitScriptRun(n *parser.ScriptRunNode) any {
	if n.Body != nil {
		n.Body.Accept(a)
	}
	return nil
}

func (a *analyzer) VisitCharClass(n *parser.CharClassNode) any { return nil }

func (a *analyzer) VisitLiteral(n *parser.LiteralNode) any             { return nil }
func (a *analyzer) VisitDot(n *parser.DotNode) any                     { return nil }
func (a *analyzer) VisitCharType(n *parser.CharTypeNode) any           { return nil }
func (a *analyzer) VisitClassRange(n *parser.ClassRangeNode) any       { return nil }
func (a *analyzer) VisitPosixClass(n *parser.PosixClassNode) any       { return nil }
func (a *analyzer) VisitUnicodeProp(n *parser.UnicodePropNode) any     { return nil }
func (a *analyzer) VisitUnicodeEscape(n *parser.UnicodeEscapeNode) any { return nil }
func (a *analyzer) VisitAnchor(n *parser.AnchorNode) any               { return nil }
func (a *analyzer) VisitAssertion(n *parser.AssertionNode) any         { return nil }
func (a *analyzer) VisitBackref(n *parser.BackrefNode) any             { return nil }
func (a *analyzer) VisitSubroutine(n *parser.SubroutineNode) any       { return nil }
func (a *analyzer) VisitConditionRef(n *parser.ConditionRefNode) any   { return nil }
func (a *analyzer) VisitComment(n *parser.CommentNode) any             { return nil }
func (a *analyzer) VisitVerb(n *parser.VerbNode) any                   { return nil }
func (a *analyzer) VisitCallout(n *parser.CalloutNode) any             { return nil }
func (a *analyzer) VisitVersionCond(n *parser.VersionCondNode) any     { return nil }
func (a *analyzer) VisitPlaceholder(n *parser.PlaceholderNode) any     { return nil }

// isWildcard reports whether the atom matches any character: a bare dot, or
// a group wrapping only a dot.
func isWildcard(n parser.Node) bool {
	switch node := n.(type) {
	case *parser.DotNode:
		return true
	case *parser.GroupNode:
		return isWildcard(unwrapSingle(node.Body))
	}
	return false
}

// isCharMatcher reports whether the atom is a single-character matcher
// broader than one literal rune.
func isCharMatcher(n parser.Node) bool {
	switch n.(type) {
	case *parser.CharClassNode, *parser.CharTypeNode, *parser.UnicodePropNode, *parser.PosixClassNode:
		return true
	}
	return false
}

// unwrapSingle drills through single-child sequences.
func unwrapSingle(n parser.Node) parser.Node {
	for {
		seq, ok := n.(*parser.SequenceNode)
		if !ok || len(seq.Children) != 1 {
			return n
		}
		n = seq.Children[0]
	}
}

// innerAlternation returns the alternation directly under a quantified atom,
// looking through group wrappers, or nil.
func innerAlternation(n parser.Node) *parser.AlternationNode {
	switch node := unwrapSingle(n).(type) {
	case *parser.AlternationNode:
		return node
	case *parser.GroupNode:
		if node.Body == nil {
			return nil
		}
		return innerAlternation(node.Body)
	}
	return nil
}

// containsQuantifier reports whether any quantifier appears in the tree.
// Patterns without quantifiers cannot backtrack catastrophically.
func containsQuantifier(n parser.Node) bool {
	if n == nil {
		return false
	}
	switch node := n.(type) {
	case *parser.QuantifierNode:
		return true
	case *parser.SequenceNode:
		for _, child := range node.Children {
			if containsQuantifier(child) {
				return true
			}
		}
	case *parser.AlternationNode:
		for _, alt := range node.Alternatives {
			if containsQuantifier(alt) {
				return true
			}
		}
	case *parser.GroupNode:
		return containsQuantifier(node.Body)
	case *parser.ConditionalNode:
		return containsQuantifier(node.Yes) || containsQuantifier(node.No)
	case *parser.DefineNode:
		return containsQuantifier(node.Body)
	case *parser.ScriptRunNode:
		return containsQuantifier(node.Body)
	}
	return false
}
