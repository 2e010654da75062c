package redos

import (
	"unicode/utf8"

	"github.com/shibukawa/pcrescan/parser"
)

// branchesOverlap reports whether two alternation branches can match the
// same character at the same position. The check compares approximate
// first-character sets, not full automaton intersection, so it may miss
// overlaps hidden behind backreferences or exotic constructs.
func branchesOverlap(n *parser.AlternationNode) bool {
	sets := make([]firstSet, 0, len(n.Alternatives))
	for _, alt := range n.Alternatives {
		sets = append(sets, firstOf(alt))
	}
	for i := range sets {
		for j := i + 1; j < len(sets); j++ {
			if sets[i].intersects(sets[j]) {
				return true
			}
		}
	}
	return false
}

// firstSet approximates the set of characters a subtree can start with, as
// a union of inclusive rune ranges. any short-circuits every comparison.
type firstSet struct {
	any    bool
	ranges [][2]rune
}

func (s *firstSet) addRune(r rune) {
	s.ranges = append(s.ranges, [2]rune{r, r})
}

func (s *firstSet) addRange(lo, hi rune) {
	s.ranges = append(s.ranges, [2]rune{lo, hi})
}

func (s *firstSet) merge(other firstSet) {
	if other.any {
		s.any = true
		return
	}
	s.ranges = append(s.ranges, other.ranges...)
}

func (s firstSet) empty() bool {
	return !s.any && len(s.ranges) == 0
}

func (s firstSet) intersects(other firstSet) bool {
	if s.empty() || other.empty() {
		return false
	}
	if s.any || other.any {
		return true
	}
	for _, a := range s.ranges {
		for _, b := range other.ranges {
			if a[0] <= b[1] && b[0] <= a[1] {
				return true
			}
		}
	}
	return false
}

// Shorthand class expansions, ASCII only. Anything outside these is treated
// as matching any character.
var shorthandRanges = map[string][][2]rune{
	"d": {{'0', '9'}},
	"s": {{'\t', '\r'}, {' ', ' '}},
	"w": {{'0', '9'}, {'A', 'Z'}, {'_', '_'}, {'a', 'z'}},
	"h": {{'\t', '\t'}, {' ', ' '}},
	"v": {{'\n', '\r'}},
}

var posixRanges = map[string][][2]rune{
	"alnum":  {{'0', '9'}, {'A', 'Z'}, {'a', 'z'}},
	"alpha":  {{'A', 'Z'}, {'a', 'z'}},
	"digit":  {{'0', '9'}},
	"lower":  {{'a', 'z'}},
	"upper":  {{'A', 'Z'}},
	"space":  {{'\t', '\r'}, {' ', ' '}},
	"word":   {{'0', '9'}, {'A', 'Z'}, {'_', '_'}, {'a', 'z'}},
	"xdigit": {{'0', '9'}, {'A', 'F'}, {'a', 'f'}},
}

// firstOf computes the approximate first-character set of a subtree.
// Zero-width nodes contribute nothing; nodes whose first character cannot
// be determined statically contribute the universal set.
func firstOf(n parser.Node) firstSet {
	var set firstSet
	if n == nil {
		return set
	}

	switch node := n.(type) {
	case *parser.LiteralNode:
		if r, _ := utf8.DecodeRuneInString(node.Value); r != utf8.RuneError {
			set.addRune(r)
		}
	case *parser.DotNode:
		set.any = true
	case *parser.CharTypeNode:
		if ranges, ok := shorthandRanges[node.Letter]; ok {
			set.ranges = append(set.ranges, ranges...)
		} else {
			set.any = true
		}
	case *parser.UnicodeEscapeNode:
		set.addRune(node.Value)
	case *parser.CharClassNode:
		if node.Negated {
			set.any = true
			break
		}
		for _, part := range node.Parts {
			set.merge(firstOf(part))
		}
	case *parser.ClassRangeNode:
		set.addRange(node.LowRune, node.HighRune)
	case *parser.PosixClassNode:
		if ranges, ok := posixRanges[node.Name]; ok && !node.Negated {
			set.ranges = append(set.ranges, ranges...)
		} else {
			set.any = true
		}
	case *parser.SequenceNode:
		for _, child := range node.Children {
			if firstChild(child, &set) {
				break
			}
		}
	case *parser.AlternationNode:
		for _, alt := range node.Alternatives {
			set.merge(firstOf(alt))
		}
	case *parser.GroupNode:
		if node.GroupType.IsLookaround() {
			break
		}
		set = firstOf(node.Body)
	case *parser.QuantifierNode:
		set = firstOf(node.Atom)
	case *parser.ConditionalNode:
		set = firstOf(node.Yes)
		set.merge(firstOf(node.No))
	case *parser.ScriptRunNode:
		set = firstOf(node.Body)
	case *parser.BackrefNode, *parser.SubroutineNode, *parser.UnicodePropNode, *parser.PlaceholderNode:
		set.any = true
	case *parser.AnchorNode, *parser.AssertionNode, *parser.CommentNode,
		*parser.VerbNode, *parser.DefineNode, *parser.CalloutNode,
		*parser.VersionCondNode, *parser.ConditionRefNode:
		// zero-width, contributes nothing
	default:
		set.any = true
	}

	return set
}

// firstChild merges a sequence child's first set into set and reports
// whether scanning can stop. Optional children (min 0) let the following
// child also start the match.
func firstChild(n parser.Node, set *firstSet) bool {
	switch node := n.(type) {
	case *parser.AnchorNode, *parser.AssertionNode, *parser.CommentNode,
		*parser.VerbNode, *parser.DefineNode, *parser.CalloutNode:
		return false
	case *parser.GroupNode:
		if node.GroupType.IsLookaround() {
			return false
		}
	case *parser.QuantifierNode:
		set.merge(firstOf(node.Atom))
		return node.Min > 0
	}
	set.merge(firstOf(n))
	return true
}
