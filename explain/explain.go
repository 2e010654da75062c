// Package explain renders a parsed pattern as an indented, human-readable
// outline. It is aimed at CLI and editor tooling that wants to show users
// what a pattern actually does.
package explain

import (
	"fmt"
	"strings"

	"github.com/shibukawa/pcrescan/parser"
)

// Explain describes the subtree rooted at n, one construct per line,
// children indented under their parent.
func Explain(n parser.Node) string {
	e := &explainer{}
	if n != nil {
		n.Accept(e)
	}
	return e.builder.String()
}

type explainer struct {
	builder strings.Builder
	depth   int
}

func (e *explainer) line(format string, args ...any) {
	for range e.depth {
		e.builder.WriteString("  ")
	}
	fmt.Fprintf(&e.builder, format, args...)
	e.builder.WriteByte('\n')
}

func (e *explainer) describe(n parser.Node) {
	if n != nil {
		n.Accept(e)
	}
}

// nested describes n one indentation level deeper.
func (e *explainer) nested(n parser.Node) {
	e.depth++
	e.describe(n)
	e.depth--
}

func (e *explainer) VisitSequence(n *parser.SequenceNode) any {
	if len(n.Children) == 0 {
		e.line("match nothing (empty)")
		return nil
	}
	for _, child := range n.Children {
		e.describe(child)
	}
	return nil
}

func (e *explainer) VisitAlternation(n *parser.AlternationNode) any {
	e.line("match one of %d alternatives:", len(n.Alternatives))
	for i, alt := range n.Alternatives {
		e.depth++
		e.line("alternative %d:", i+1)
		e.nested(alt)
		e.depth--
	}
	return nil
}

var groupDescriptions = map[parser.GroupType]string{
	parser.GroupCapturing:     "capturing group",
	parser.GroupNonCapturing:  "non-capturing group",
	parser.GroupAtomic:        "atomic group (no backtracking into it)",
	parser.GroupLookaheadPos:  "lookahead (the following must match here, without consuming input)",
	parser.GroupLookaheadNeg:  "negative lookahead (the following must NOT match here)",
	parser.GroupLookbehindPos: "lookbehind (the preceding text must match this)",
	parser.GroupLookbehindNeg: "negative lookbehind (the preceding text must NOT match this)",
	parser.GroupBranchReset:   "branch-reset group (alternatives share capture numbers)",
}

func (e *explainer) VisitGroup(n *parser.GroupNode) any {
	switch n.GroupType {
	case parser.GroupNamed:
		e.line("capturing group %q:", n.Name)
	case parser.GroupInlineFlags:
		if emptyBody(n.Body) {
			e.line("set inline flags %q for the rest of the enclosing group", n.FlagText)
			return nil
		}
		e.line("group with inline flags %q:", n.FlagText)
	default:
		desc := groupDescriptions[n.GroupType]
		if desc == "" {
			desc = "group"
		}
		e.line("%s:", desc)
	}
	e.nested(n.Body)
	return nil
}

func (e *explainer) VisitQuantifier(n *parser.QuantifierNode) any {
	e.line("%s:", quantifierPhrase(n))
	e.nested(n.Atom)
	return nil
}

func quantifierPhrase(n *parser.QuantifierNode) string {
	var count string
	switch {
	case n.Min == 0 && n.Max < 0:
		count = "zero or more times"
	case n.Min == 1 && n.Max < 0:
		count = "one or more times"
	case n.Min == 0 && n.Max == 1:
		count = "optionally"
	case n.Max < 0:
		count = fmt.Sprintf("%d or more times", n.Min)
	case n.Min == n.Max:
		count = fmt.Sprintf("exactly %d times", n.Min)
	default:
		count = fmt.Sprintf("between %d and %d times", n.Min, n.Max)
	}

	switch n.QuantifierType {
	case parser.QuantLazy:
		return "repeat " + count + ", as few as possible"
	case parser.QuantPossessive:
		return "repeat " + count + ", never giving any back"
	default:
		return "repeat " + count
	}
}

func (e *explainer) VisitLiteral(n *parser.LiteralNode) any {
	if n.Value == "" {
		return nil
	}
	e.line("match the text %q", n.Value)
	return nil
}

func (e *explainer) VisitDot(n *parser.DotNode) any {
	e.line("match any character")
	return nil
}

var charTypePhrases = map[string]string{
	"d": "a digit",
	"D": "a non-digit",
	"s": "a whitespace character",
	"S": "a non-whitespace character",
	"w": "a word character",
	"W": "a non-word character",
	"h": "a horizontal whitespace character",
	"H": "a non-horizontal-whitespace character",
	"v": "a vertical whitespace character",
	"V": "a non-vertical-whitespace character",
	"R": "a line break sequence",
	"N": "any character except a newline",
	"X": "an extended grapheme cluster",
	"C": "a single byte",
}

func (e *explainer) VisitCharType(n *parser.CharTypeNode) any {
	phrase, ok := charTypePhrases[n.Letter]
	if !ok {
		phrase = fmt.Sprintf("a \\%s character", n.Letter)
	}
	e.line("match %s", phrase)
	return nil
}

func (e *explainer) VisitCharClass(n *parser.CharClassNode) any {
	if n.Negated {
		e.line("match any character NOT in the set:")
	} else {
		e.line("match any character in the set:")
	}
	e.depth++
	for _, part := range n.Parts {
		e.describeClassPart(part)
	}
	e.depth--
	return nil
}

func (e *explainer) describeClassPart(n parser.Node) {
	switch node := n.(type) {
	case *parser.LiteralNode:
		e.line("the character %q", node.Value)
	case *parser.ClassRangeNode:
		e.line("characters %q through %q", node.LowRune, node.HighRune)
	default:
		e.describe(n)
	}
}

func (e *explainer) VisitClassRange(n *parser.ClassRangeNode) any {
	e.line("characters %q through %q", n.LowRune, n.HighRune)
	return nil
}

func (e *explainer) VisitPosixClass(n *parser.PosixClassNode) any {
	if n.Negated {
		e.line("match any character not in the POSIX class [:%s:]", n.Name)
	} else {
		e.line("match any character in the POSIX class [:%s:]", n.Name)
	}
	return nil
}

func (e *explainer) VisitUnicodeProp(n *parser.UnicodePropNode) any {
	if n.Negated {
		e.line("match a character without Unicode property %s", n.Name)
	} else {
		e.line("match a character with Unicode property %s", n.Name)
	}
	return nil
}

func (e *explainer) VisitUnicodeEscape(n *parser.UnicodeEscapeNode) any {
	e.line("match the character %q (%s)", n.Value, n.Text)
	return nil
}

var anchorPhrases = map[string]string{
	"^":  "the start of the line",
	"$":  "the end of the line",
	`\A`: "the start of the subject",
	`\Z`: "the end of the subject (before a final newline)",
	`\z`: "the very end of the subject",
	`\G`: "the position where the previous match ended",
}

func (e *explainer) VisitAnchor(n *parser.AnchorNode) any {
	phrase, ok := anchorPhrases[n.Value]
	if !ok {
		phrase = n.Value
	}
	e.line("assert position at %s", phrase)
	return nil
}

func (e *explainer) VisitAssertion(n *parser.AssertionNode) any {
	switch n.Value {
	case `\b`:
		e.line("assert a word boundary")
	case `\B`:
		e.line("assert not at a word boundary")
	case `\K`:
		e.line("reset the start of the reported match")
	default:
		e.line("assert %s", n.Value)
	}
	return nil
}

func (e *explainer) VisitBackref(n *parser.BackrefNode) any {
	e.line("match the same text as group %s", n.Ref)
	return nil
}

func (e *explainer) VisitSubroutine(n *parser.SubroutineNode) any {
	if n.Ref == "R" || n.Ref == "0" {
		e.line("recurse into the whole pattern")
	} else {
		e.line("re-run the subpattern of group %s", n.Ref)
	}
	return nil
}

func (e *explainer) VisitConditional(n *parser.ConditionalNode) any {
	e.line("conditional:")
	e.depth++
	e.line("if:")
	e.nested(n.Condition)
	e.line("then:")
	e.nested(n.Yes)
	if !emptyBody(n.No) {
		e.line("else:")
		e.nested(n.No)
	}
	e.depth--
	return nil
}

func (e *explainer) VisitConditionRef(n *parser.ConditionRefNode) any {
	e.line("group %s matched", n.Ref)
	return nil
}

func (e *explainer) VisitComment(n *parser.CommentNode) any {
	e.line("comment: %s", strings.TrimSpace(n.Text))
	return nil
}

func (e *explainer) VisitVerb(n *parser.VerbNode) any {
	if n.Arg != "" {
		e.line("backtracking control verb (*%s:%s)", n.Name, n.Arg)
	} else {
		e.line("backtracking control verb (*%s)", n.Name)
	}
	return nil
}

func (e *explainer) VisitDefine(n *parser.DefineNode) any {
	e.line("define subpatterns for later reference (never matched directly):")
	e.nested(n.Body)
	return nil
}

func (e *explainer) VisitCallout(n *parser.CalloutNode) any {
	e.line("callout %s", n.Text)
	return nil
}

func (e *explainer) VisitScriptRun(n *parser.ScriptRunNode) any {
	if n.Atomic {
		e.line("atomic script run (all characters from one script, no backtracking):")
	} else {
		e.line("script run (all characters from one script):")
	}
	e.nested(n.Body)
	return nil
}

func (e *explainer) VisitVersionCond(n *parser.VersionCondNode) any {
	e.line("engine version %s %s", n.Operator, n.Version)
	return nil
}

func (e *explainer) VisitPlaceholder(n *parser.PlaceholderNode) any {
	e.line("unparsed fragment %q", n.Text)
	return nil
}

// emptyBody reports whether n is nil or an empty sequence/literal.
func emptyBody(n parser.Node) bool {
	switch node := n.(type) {
	case nil:
		return true
	case *parser.SequenceNode:
		return len(node.Children) == 0
	case *parser.LiteralNode:
		return node.Value == ""
	}
	return false
}
