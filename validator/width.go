package validator

import (
	"unicode/utf8"

	"github.com/shibukawa/pcrescan/parser"
)

// maxWidth computes the statically determinable maximum match length of a
// subtree in characters. A negative width means unbounded; the second return
// names the construct that made it so.
func maxWidth(n parser.Node) (int, parser.Node) {
	if n == nil {
		return 0, nil
	}

	switch node := n.(type) {
	case *parser.SequenceNode:
		total := 0
		for _, child := range node.Children {
			width, culprit := maxWidth(child)
			if width < 0 {
				return -1, culprit
			}
			total += width
		}
		return total, nil
	case *parser.AlternationNode:
		widest := 0
		for _, alt := range node.Alternatives {
			width, culprit := maxWidth(alt)
			if width < 0 {
				return -1, culprit
			}
			if width > widest {
				widest = width
			}
		}
		return widest, nil
	case *parser.GroupNode:
		// Lookarounds consume nothing regardless of their body.
		if node.GroupType.IsLookaround() {
			return 0, nil
		}
		return maxWidth(node.Body)
	case *parser.QuantifierNode:
		if node.Max < 0 {
			return -1, node
		}
		width, culprit := maxWidth(node.Atom)
		if width < 0 {
			return -1, culprit
		}
		return width * node.Max, nil
	case *parser.LiteralNode:
		return utf8.RuneCountInString(node.Value), nil
	case *parser.DotNode, *parser.CharClassNode, *parser.UnicodeEscapeNode,
		*parser.UnicodePropNode, *parser.PosixClassNode:
		return 1, nil
	case *parser.CharTypeNode:
		switch node.Letter {
		case "R":
			return 2, nil // \R may match CRLF
		case "X":
			return -1, node // grapheme cluster, unbounded
		default:
			return 1, nil
		}
	case *parser.AnchorNode, *parser.AssertionNode, *parser.CommentNode,
		*parser.VerbNode, *parser.CalloutNode, *parser.DefineNode,
		*parser.VersionCondNode, *parser.ConditionRefNode:
		return 0, nil
	case *parser.BackrefNode:
		// A backreference's width depends on runtime captures.
		return -1, node
	case *parser.SubroutineNode:
		return -1, node
	case *parser.ConditionalNode:
		yes, culprit := maxWidth(node.Yes)
		if yes < 0 {
			return -1, culprit
		}
		no, culprit := maxWidth(node.No)
		if no < 0 {
			return -1, culprit
		}
		if yes > no {
			return yes, nil
		}
		return no, nil
	case *parser.ScriptRunNode:
		return maxWidth(node.Body)
	case *parser.ClassRangeNode:
		return 1, nil
	case *parser.PlaceholderNode:
		return 0, nil
	default:
		return 0, nil
	}
}
