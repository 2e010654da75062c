// Package formatter re-serializes an AST back into pattern text. It is the
// inverse of parsing up to escape spelling: numeric escapes keep their
// original text, literals are re-escaped as needed.
package formatter

import (
	"strconv"
	"strings"

	"github.com/shibukawa/pcrescan/parser"
)

// metachars must be escaped when a literal is emitted outside a class.
const metachars = `\.^$*+?()[]{}|`

// classSpecials must be escaped when a literal is emitted inside a class.
const classSpecials = `\]^-`

// Render compiles a subtree back into pattern text.
func Render(n parser.Node) string {
	if n == nil {
		return ""
	}

	f := &formatter{}
	if s, ok := n.Accept(f).(string); ok {
		return s
	}

	return ""
}

// formatter is the compile visitor; every method returns a string.
type formatter struct{}

func (f *formatter) render(n parser.Node) string {
	if n == nil {
		return ""
	}
	s, _ := n.Accept(f).(string)
	return s
}

func (f *formatter) VisitSequence(n *parser.SequenceNode) any {
	var builder strings.Builder
	for _, child := range n.Children {
		builder.WriteString(f.render(child))
	}
	return builder.String()
}

func (f *formatter) VisitAlternation(n *parser.AlternationNode) any {
	parts := make([]string, 0, len(n.Alternatives))
	for _, alt := range n.Alternatives {
		parts = append(parts, f.render(alt))
	}
	return strings.Join(parts, "|")
}

func (f *formatter) VisitGroup(n *parser.GroupNode) any {
	body := f.render(n.Body)

	switch n.GroupType {
	case parser.GroupCapturing:
		return "(" + body + ")"
	case parser.GroupNonCapturing:
		return "(?:" + body + ")"
	case parser.GroupNamed:
		return "(?<" + n.Name + ">" + body + ")"
	case parser.GroupAtomic:
		return "(?>" + body + ")"
	case parser.GroupLookaheadPos:
		return "(?=" + body + ")"
	case parser.GroupLookaheadNeg:
		return "(?!" + body + ")"
	case parser.GroupLookbehindPos:
		return "(?<=" + body + ")"
	case parser.GroupLookbehindNeg:
		return "(?<!" + body + ")"
	case parser.GroupBranchReset:
		return "(?|" + body + ")"
	case parser.GroupInlineFlags:
		if body == "" {
			return "(?" + n.FlagText + ")"
		}
		return "(?" + n.FlagText + ":" + body + ")"
	default:
		return "(" + body + ")"
	}
}

func (f *formatter) VisitQuantifier(n *parser.QuantifierNode) any {
	return f.render(n.Atom) + n.Text
}

func (f *formatter) VisitLiteral(n *parser.LiteralNode) any {
	return escapeLiteral(n.Value)
}

func (f *formatter) VisitDot(n *parser.DotNode) any { return "." }

func (f *formatter) VisitCharType(n *parser.CharTypeNode) any {
	return "\\" + n.Letter
}

func (f *formatter) VisitCharClass(n *parser.CharClassNode) any {
	var builder strings.Builder
	builder.WriteByte('[')
	if n.Negated {
		builder.WriteByte('^')
	}
	for _, part := range n.Parts {
		builder.WriteString(f.renderClassPart(part))
	}
	builder.WriteByte(']')
	return builder.String()
}

// renderClassPart emits class members with in-class escaping rules.
func (f *formatter) renderClassPart(n parser.Node) string {
	switch node := n.(type) {
	case *parser.LiteralNode:
		return escapeClassLiteral(node.Value)
	case *parser.ClassRangeNode:
		return f.renderClassPart(node.Low) + "-" + f.renderClassPart(node.High)
	default:
		return f.render(n)
	}
}

func (f *formatter) VisitClassRange(n *parser.ClassRangeNode) any {
	return f.renderClassPart(n.Low) + "-" + f.renderClassPart(n.High)
}

func (f *formatter) VisitPosixClass(n *parser.PosixClassNode) any {
	if n.Negated {
		return "[:^" + n.Name + ":]"
	}
	return "[:" + n.Name + ":]"
}

func (f *formatter) VisitUnicodeProp(n *parser.UnicodePropNode) any {
	if n.Negated {
		return "\\P{" + n.Name + "}"
	}
	return "\\p{" + n.Name + "}"
}

func (f *formatter) VisitUnicodeEscape(n *parser.UnicodeEscapeNode) any {
	return n.Text
}

func (f *formatter) VisitAnchor(n *parser.AnchorNode) any       { return n.Value }
func (f *formatter) VisitAssertion(n *parser.AssertionNode) any { return n.Value }

func (f *formatter) VisitBackref(n *parser.BackrefNode) any {
	if _, err := strconv.Atoi(strings.TrimPrefix(n.Ref, "+")); err == nil {
		return "\\g{" + n.Ref + "}"
	}
	return "\\k<" + n.Ref + ">"
}

func (f *formatter) VisitSubroutine(n *parser.SubroutineNode) any {
	if n.Ref == "R" {
		return "(?R)"
	}
	if _, err := strconv.Atoi(strings.TrimPrefix(n.Ref, "+")); err == nil {
		return "(?" + n.Ref + ")"
	}
	return "(?&" + n.Ref + ")"
}

func (f *formatter) VisitConditional(n *parser.ConditionalNode) any {
	body := f.render(n.Yes)
	if no := f.render(n.No); no != "" {
		body += "|" + no
	}

	return "(?" + f.renderCondition(n.Condition) + body + ")"
}

// renderCondition emits the parenthesized condition after "(?". Assertion
// conditions are groups whose render already carries the parens; reference
// and version conditions need them added.
func (f *formatter) renderCondition(n parser.Node) string {
	switch node := n.(type) {
	case *parser.ConditionRefNode:
		return "(" + node.Ref + ")"
	case *parser.VersionCondNode:
		return "(VERSION" + node.Operator + node.Version + ")"
	case *parser.GroupNode:
		return f.render(node)
	default:
		return "(" + f.render(n) + ")"
	}
}

func (f *formatter) VisitConditionRef(n *parser.ConditionRefNode) any {
	return n.Ref
}

func (f *formatter) VisitComment(n *parser.CommentNode) any {
	return "(?#" + n.Text + ")"
}

func (f *formatter) VisitVerb(n *parser.VerbNode) any {
	if n.Arg != "" {
		return "(*" + n.Name + ":" + n.Arg + ")"
	}
	return "(*" + n.Name + ")"
}

func (f *formatter) VisitDefine(n *parser.DefineNode) any {
	return "(?(DEFINE)" + f.render(n.Body) + ")"
}

func (f *formatter) VisitCallout(n *parser.CalloutNode) any {
	return "(?C" + n.Text + ")"
}

func (f *formatter) VisitScriptRun(n *parser.ScriptRunNode) any {
	if n.Atomic {
		return "(*atomic_script_run:" + f.render(n.Body) + ")"
	}
	return "(*script_run:" + f.render(n.Body) + ")"
}

func (f *formatter) VisitVersionCond(n *parser.VersionCondNode) any {
	return "VERSION" + n.Operator + n.Version
}

func (f *formatter) VisitPlaceholder(n *parser.PlaceholderNode) any {
	return n.Text
}

// escapeLiteral backslash-escapes metacharacters; multi-character literals
// from \Q...\E sections are re-quoted when they contain metacharacters.
func escapeLiteral(value string) string {
	if len(value) > 1 && strings.ContainsAny(value, metachars) {
		return "\\Q" + value + "\\E"
	}

	var builder strings.Builder
	for _, r := range value {
		if r < 0x80 && strings.ContainsRune(metachars, r) {
			builder.WriteByte('\\')
		}
		builder.WriteRune(r)
	}
	return builder.String()
}

func escapeClassLiteral(value string) string {
	var builder strings.Builder
	for _, r := range value {
		if r < 0x80 && strings.ContainsRune(classSpecials, r) {
			builder.WriteByte('\\')
		}
		builder.WriteRune(r)
	}
	return builder.String()
}
