package parser

import (
	"fmt"
	"strings"
)

// Node represents an AST (Abstract Syntax Tree) node. Nodes are immutable
// value objects created once per parse; positions are zero-based byte
// offsets into the pattern body, end exclusive.
type Node interface {
	Type() NodeType
	StartPos() int
	EndPos() int
	Accept(v Visitor) any
	String() string
}

// NodeType represents the type of AST node
type NodeType int

const (
	// Structural nodes
	SEQUENCE NodeType = iota
	ALTERNATION

	// Grouping and repetition
	GROUP
	QUANTIFIER

	// Leaf matchers
	LITERAL
	DOT
	CHAR_TYPE
	CHAR_CLASS
	CLASS_RANGE
	POSIX_CLASS
	UNICODE_PROP
	UNICODE_ESCAPE

	// Anchors and zero-width assertions
	ANCHOR
	ASSERTION

	// References
	BACKREF
	SUBROUTINE
	CONDITIONAL
	CONDITION_REF

	// Advanced constructs
	COMMENT
	VERB
	DEFINE
	CALLOUT
	SCRIPT_RUN
	VERSION_COND

	// Tolerant-mode stand-in for an unparseable fragment
	PLACEHOLDER
)

// String returns string representation of NodeType
func (n NodeType) String() string {
	switch n {
	case SEQUENCE:
		return "SEQUENCE"
	case ALTERNATION:
		return "ALTERNATION"
	case GROUP:
		return "GROUP"
	case QUANTIFIER:
		return "QUANTIFIER"
	case LITERAL:
		return "LITERAL"
	case DOT:
		return "DOT"
	case CHAR_TYPE:
		return "CHAR_TYPE"
	case CHAR_CLASS:
		return "CHAR_CLASS"
	case CLASS_RANGE:
		return "CLASS_RANGE"
	case POSIX_CLASS:
		return "POSIX_CLASS"
	case UNICODE_PROP:
		return "UNICODE_PROP"
	case UNICODE_ESCAPE:
		return "UNICODE_ESCAPE"
	case ANCHOR:
		return "ANCHOR"
	case ASSERTION:
		return "ASSERTION"
	case BACKREF:
		return "BACKREF"
	case SUBROUTINE:
		return "SUBROUTINE"
	case CONDITIONAL:
		return "CONDITIONAL"
	case CONDITION_REF:
		return "CONDITION_REF"
	case COMMENT:
		return "COMMENT"
	case VERB:
		return "VERB"
	case DEFINE:
		return "DEFINE"
	case CALLOUT:
		return "CALLOUT"
	case SCRIPT_RUN:
		return "SCRIPT_RUN"
	case VERSION_COND:
		return "VERSION_COND"
	case PLACEHOLDER:
		return "PLACEHOLDER"
	default:
		return "UNKNOWN"
	}
}

// GroupType classifies a GroupNode
type GroupType int

const (
	GroupCapturing GroupType = iota
	GroupNonCapturing
	GroupNamed
	GroupAtomic
	GroupLookaheadPos
	GroupLookaheadNeg
	GroupLookbehindPos
	GroupLookbehindNeg
	GroupBranchReset
	GroupInlineFlags
)

// String returns string representation of GroupType
func (g GroupType) String() string {
	switch g {
	case GroupCapturing:
		return "capturing"
	case GroupNonCapturing:
		return "non-capturing"
	case GroupNamed:
		return "named"
	case GroupAtomic:
		return "atomic"
	case GroupLookaheadPos:
		return "positive lookahead"
	case GroupLookaheadNeg:
		return "negative lookahead"
	case GroupLookbehindPos:
		return "positive lookbehind"
	case GroupLookbehindNeg:
		return "negative lookbehind"
	case GroupBranchReset:
		return "branch-reset"
	case GroupInlineFlags:
		return "inline-flags"
	default:
		return "unknown"
	}
}

// IsLookaround reports whether the group is a zero-width lookaround.
func (g GroupType) IsLookaround() bool {
	switch g {
	case GroupLookaheadPos, GroupLookaheadNeg, GroupLookbehindPos, GroupLookbehindNeg:
		return true
	default:
		return false
	}
}

// IsLookbehind reports whether the group asserts to the left.
func (g GroupType) IsLookbehind() bool {
	return g == GroupLookbehindPos || g == GroupLookbehindNeg
}

// QuantifierType classifies backtracking behavior of a quantifier
type QuantifierType int

const (
	QuantGreedy QuantifierType = iota
	QuantLazy
	QuantPossessive
)

// String returns string representation of QuantifierType
func (q QuantifierType) String() string {
	switch q {
	case QuantGreedy:
		return "greedy"
	case QuantLazy:
		return "lazy"
	case QuantPossessive:
		return "possessive"
	default:
		return "unknown"
	}
}

// span carries the byte range of a node; embedded by every concrete node.
type span struct {
	start int
	end   int
}

func (s span) StartPos() int { return s.start }
func (s span) EndPos() int   { return s.end }

// SequenceNode is an ordered concatenation; may be empty (empty pattern).
type SequenceNode struct {
	span
	Children []Node
}

func NewSequenceNode(children []Node, start, end int) *SequenceNode {
	return &SequenceNode{span: span{start, end}, Children: children}
}

func (n *SequenceNode) Type() NodeType        { return SEQUENCE }
func (n *SequenceNode) Accept(v Visitor) any  { return v.VisitSequence(n) }
func (n *SequenceNode) String() string        { return fmt.Sprintf("Sequence(%d)", len(n.Children)) }

// AlternationNode holds two or more alternatives, evaluated left to right;
// the first full match wins.
type AlternationNode struct {
	span
	Alternatives []Node
}

func NewAlternationNode(alternatives []Node, start, end int) *AlternationNode {
	return &AlternationNode{span: span{start, end}, Alternatives: alternatives}
}

func (n *AlternationNode) Type() NodeType       { return ALTERNATION }
func (n *AlternationNode) Accept(v Visitor) any { return v.VisitAlternation(n) }
func (n *AlternationNode) String() string {
	return fmt.Sprintf("Alternation(%d)", len(n.Alternatives))
}

// GroupNode wraps exactly one child. Name is set for named groups, FlagText
// for inline-flags groups (e.g. "i-mx").
type GroupNode struct {
	span
	GroupType GroupType
	Name      string
	FlagText  string
	Body      Node
}

func NewGroupNode(groupType GroupType, name, flagText string, body Node, start, end int) *GroupNode {
	return &GroupNode{span: span{start, end}, GroupType: groupType, Name: name, FlagText: flagText, Body: body}
}

func (n *GroupNode) Type() NodeType       { return GROUP }
func (n *GroupNode) Accept(v Visitor) any { return v.VisitGroup(n) }
func (n *GroupNode) String() string {
	if n.Name != "" {
		return fmt.Sprintf("Group(%s %q)", n.GroupType, n.Name)
	}
	return fmt.Sprintf("Group(%s)", n.GroupType)
}

// QuantifierNode wraps one atom. Max < 0 means unbounded. Text carries the
// literal quantifier as written ("*", "+?", "{2,5}", ...).
type QuantifierNode struct {
	span
	Atom           Node
	Text           string
	Min            int
	Max            int
	QuantifierType QuantifierType
}

func NewQuantifierNode(atom Node, text string, minCount, maxCount int, quantType QuantifierType, start, end int) *QuantifierNode {
	return &QuantifierNode{
		span: span{start, end}, Atom: atom, Text: text,
		Min: minCount, Max: maxCount, QuantifierType: quantType,
	}
}

func (n *QuantifierNode) Type() NodeType       { return QUANTIFIER }
func (n *QuantifierNode) Accept(v Visitor) any { return v.VisitQuantifier(n) }
func (n *QuantifierNode) String() string {
	return fmt.Sprintf("Quantifier(%s %s)", n.Text, n.QuantifierType)
}

// Unbounded reports whether the quantifier has no upper bound.
func (n *QuantifierNode) Unbounded() bool { return n.Max < 0 }

// LiteralNode matches its Value verbatim. Usually a single character; \Q...\E
// sections produce multi-character literals.
type LiteralNode struct {
	span
	Value string
}

func NewLiteralNode(value string, start, end int) *LiteralNode {
	return &LiteralNode{span: span{start, end}, Value: value}
}

func (n *LiteralNode) Type() NodeType       { return LITERAL }
func (n *LiteralNode) Accept(v Visitor) any { return v.VisitLiteral(n) }
func (n *LiteralNode) String() string       { return fmt.Sprintf("Literal(%q)", n.Value) }

// DotNode matches any character (newline behavior depends on flags).
type DotNode struct {
	span
}

func NewDotNode(start, end int) *DotNode {
	return &DotNode{span: span{start, end}}
}

func (n *DotNode) Type() NodeType       { return DOT }
func (n *DotNode) Accept(v Visitor) any { return v.VisitDot(n) }
func (n *DotNode) String() string       { return "Dot" }

// CharTypeNode is a shorthand class escape: \d \D \w \W \s \S \h \H \v \V \R \N \X.
type CharTypeNode struct {
	span
	Letter string
}

func NewCharTypeNode(letter string, start, end int) *CharTypeNode {
	return &CharTypeNode{span: span{start, end}, Letter: letter}
}

func (n *CharTypeNode) Type() NodeType       { return CHAR_TYPE }
func (n *CharTypeNode) Accept(v Visitor) any { return v.VisitCharType(n) }
func (n *CharTypeNode) String() string       { return fmt.Sprintf("CharType(\\%s)", n.Letter) }

// Negated reports whether the shorthand is an uppercase negation (\D \W \S \H \V).
func (n *CharTypeNode) Negated() bool {
	return n.Letter != "" && n.Letter == strings.ToUpper(n.Letter) && n.Letter != "R" && n.Letter != "X" && n.Letter != "N"
}

// CharClassNode is a bracket expression. Parts holds literals, ranges,
// shorthand types, POSIX classes and Unicode properties in source order.
type CharClassNode struct {
	span
	Parts   []Node
	Negated bool
}

func NewCharClassNode(parts []Node, negated bool, start, end int) *CharClassNode {
	return &CharClassNode{span: span{start, end}, Parts: parts, Negated: negated}
}

func (n *CharClassNode) Type() NodeType       { return CHAR_CLASS }
func (n *CharClassNode) Accept(v Visitor) any { return v.VisitCharClass(n) }
func (n *CharClassNode) String() string {
	if n.Negated {
		return fmt.Sprintf("CharClass(^ %d parts)", len(n.Parts))
	}
	return fmt.Sprintf("CharClass(%d parts)", len(n.Parts))
}

// ClassRangeNode is "a-z" inside a class. Low and High are the literal or
// escape nodes as written; LowRune/HighRune are the resolved code points.
type ClassRangeNode struct {
	span
	Low      Node
	High     Node
	LowRune  rune
	HighRune rune
}

func NewClassRangeNode(low, high Node, lowRune, highRune rune, start, end int) *ClassRangeNode {
	return &ClassRangeNode{span: span{start, end}, Low: low, High: high, LowRune: lowRune, HighRune: highRune}
}

func (n *ClassRangeNode) Type() NodeType       { return CLASS_RANGE }
func (n *ClassRangeNode) Accept(v Visitor) any { return v.VisitClassRange(n) }
func (n *ClassRangeNode) String() string {
	return fmt.Sprintf("ClassRange(%q-%q)", n.LowRune, n.HighRune)
}

// PosixClassNode is "[:alpha:]" or "[:^alpha:]" inside a class.
type PosixClassNode struct {
	span
	Name    string
	Negated bool
}

func NewPosixClassNode(name string, negated bool, start, end int) *PosixClassNode {
	return &PosixClassNode{span: span{start, end}, Name: name, Negated: negated}
}

func (n *PosixClassNode) Type() NodeType       { return POSIX_CLASS }
func (n *PosixClassNode) Accept(v Visitor) any { return v.VisitPosixClass(n) }
func (n *PosixClassNode) String() string {
	if n.Negated {
		return fmt.Sprintf("PosixClass([:^%s:])", n.Name)
	}
	return fmt.Sprintf("PosixClass([:%s:])", n.Name)
}

// UnicodePropNode is \p{Lu}, \P{Greek}, \pL and friends.
type UnicodePropNode struct {
	span
	Name    string
	Negated bool
}

func NewUnicodePropNode(name string, negated bool, start, end int) *UnicodePropNode {
	return &UnicodePropNode{span: span{start, end}, Name: name, Negated: negated}
}

func (n *UnicodePropNode) Type() NodeType       { return UNICODE_PROP }
func (n *UnicodePropNode) Accept(v Visitor) any { return v.VisitUnicodeProp(n) }
func (n *UnicodePropNode) String() string {
	if n.Negated {
		return fmt.Sprintf("UnicodeProp(\\P{%s})", n.Name)
	}
	return fmt.Sprintf("UnicodeProp(\\p{%s})", n.Name)
}

// UnicodeEscapeNode is a numeric character escape: \x41, \x{1F600}, \o{17},
// \cA, \0, \012. Value holds the resolved code point.
type UnicodeEscapeNode struct {
	span
	Text  string
	Value rune
}

func NewUnicodeEscapeNode(text string, value rune, start, end int) *UnicodeEscapeNode {
	return &UnicodeEscapeNode{span: span{start, end}, Text: text, Value: value}
}

func (n *UnicodeEscapeNode) Type() NodeType       { return UNICODE_ESCAPE }
func (n *UnicodeEscapeNode) Accept(v Visitor) any { return v.VisitUnicodeEscape(n) }
func (n *UnicodeEscapeNode) String() string       { return fmt.Sprintf("UnicodeEscape(%s)", n.Text) }

// AnchorNode is ^ $ \A \Z \z or \G.
type AnchorNode struct {
	span
	Value string
}

func NewAnchorNode(value string, start, end int) *AnchorNode {
	return &AnchorNode{span: span{start, end}, Value: value}
}

func (n *AnchorNode) Type() NodeType       { return ANCHOR }
func (n *AnchorNode) Accept(v Visitor) any { return v.VisitAnchor(n) }
func (n *AnchorNode) String() string       { return fmt.Sprintf("Anchor(%s)", n.Value) }

// AssertionNode is a zero-width word-boundary assertion: \b \B (or \K).
type AssertionNode struct {
	span
	Value string
}

func NewAssertionNode(value string, start, end int) *AssertionNode {
	return &AssertionNode{span: span{start, end}, Value: value}
}

func (n *AssertionNode) Type() NodeType       { return ASSERTION }
func (n *AssertionNode) Accept(v Visitor) any { return v.VisitAssertion(n) }
func (n *AssertionNode) String() string       { return fmt.Sprintf("Assertion(%s)", n.Value) }

// BackrefNode stores the raw reference text: "1", "-2", "name". Resolution
// against capture groups happens in the validator, not here.
type BackrefNode struct {
	span
	Ref string
}

func NewBackrefNode(ref string, start, end int) *BackrefNode {
	return &BackrefNode{span: span{start, end}, Ref: ref}
}

func (n *BackrefNode) Type() NodeType       { return BACKREF }
func (n *BackrefNode) Accept(v Visitor) any { return v.VisitBackref(n) }
func (n *BackrefNode) String() string       { return fmt.Sprintf("Backref(%s)", n.Ref) }

// SubroutineNode is a recursion or subroutine call: (?R), (?1), (?-1), (?&name).
// Ref "R" or "0" means whole-pattern recursion.
type SubroutineNode struct {
	span
	Ref string
}

func NewSubroutineNode(ref string, start, end int) *SubroutineNode {
	return &SubroutineNode{span: span{start, end}, Ref: ref}
}

func (n *SubroutineNode) Type() NodeType       { return SUBROUTINE }
func (n *SubroutineNode) Accept(v Visitor) any { return v.VisitSubroutine(n) }
func (n *SubroutineNode) String() string       { return fmt.Sprintf("Subroutine(%s)", n.Ref) }

// ConditionalNode is (?(cond)yes|no). No is an empty sequence when absent.
type ConditionalNode struct {
	span
	Condition Node
	Yes       Node
	No        Node
}

func NewConditionalNode(condition, yes, no Node, start, end int) *ConditionalNode {
	return &ConditionalNode{span: span{start, end}, Condition: condition, Yes: yes, No: no}
}

func (n *ConditionalNode) Type() NodeType       { return CONDITIONAL }
func (n *ConditionalNode) Accept(v Visitor) any { return v.VisitConditional(n) }
func (n *ConditionalNode) String() string       { return "Conditional" }

// ConditionRefNode is a group-reference condition inside (?(...)...):
// a number, a name, "R", "R3" or "R&name".
type ConditionRefNode struct {
	span
	Ref string
}

func NewConditionRefNode(ref string, start, end int) *ConditionRefNode {
	return &ConditionRefNode{span: span{start, end}, Ref: ref}
}

func (n *ConditionRefNode) Type() NodeType       { return CONDITION_REF }
func (n *ConditionRefNode) Accept(v Visitor) any { return v.VisitConditionRef(n) }
func (n *ConditionRefNode) String() string       { return fmt.Sprintf("ConditionRef(%s)", n.Ref) }

// CommentNode is (?#...) or an extended-mode line comment kept in the tree.
type CommentNode struct {
	span
	Text string
}

func NewCommentNode(text string, start, end int) *CommentNode {
	return &CommentNode{span: span{start, end}, Text: text}
}

func (n *CommentNode) Type() NodeType       { return COMMENT }
func (n *CommentNode) Accept(v Visitor) any { return v.VisitComment(n) }
func (n *CommentNode) String() string       { return fmt.Sprintf("Comment(%q)", n.Text) }

// VerbNode is a control verb: (*PRUNE), (*SKIP:label), (*MARK:name), (*:name).
type VerbNode struct {
	span
	Name string
	Arg  string
}

func NewVerbNode(name, arg string, start, end int) *VerbNode {
	return &VerbNode{span: span{start, end}, Name: name, Arg: arg}
}

func (n *VerbNode) Type() NodeType       { return VERB }
func (n *VerbNode) Accept(v Visitor) any { return v.VisitVerb(n) }
func (n *VerbNode) String() string {
	if n.Arg != "" {
		return fmt.Sprintf("Verb(*%s:%s)", n.Name, n.Arg)
	}
	return fmt.Sprintf("Verb(*%s)", n.Name)
}

// DefineNode is a (?(DEFINE)...) block: named subpatterns for subroutine
// calls, never matched directly.
type DefineNode struct {
	span
	Body Node
}

func NewDefineNode(body Node, start, end int) *DefineNode {
	return &DefineNode{span: span{start, end}, Body: body}
}

func (n *DefineNode) Type() NodeType       { return DEFINE }
func (n *DefineNode) Accept(v Visitor) any { return v.VisitDefine(n) }
func (n *DefineNode) String() string       { return "Define" }

// CalloutNode is (?C), (?C1) or (?C"text").
type CalloutNode struct {
	span
	Text string
}

func NewCalloutNode(text string, start, end int) *CalloutNode {
	return &CalloutNode{span: span{start, end}, Text: text}
}

func (n *CalloutNode) Type() NodeType       { return CALLOUT }
func (n *CalloutNode) Accept(v Visitor) any { return v.VisitCallout(n) }
func (n *CalloutNode) String() string       { return fmt.Sprintf("Callout(%s)", n.Text) }

// ScriptRunNode is (*script_run:...) or (*atomic_script_run:...).
type ScriptRunNode struct {
	span
	Body   Node
	Atomic bool
}

func NewScriptRunNode(body Node, atomic bool, start, end int) *ScriptRunNode {
	return &ScriptRunNode{span: span{start, end}, Body: body, Atomic: atomic}
}

func (n *ScriptRunNode) Type() NodeType       { return SCRIPT_RUN }
func (n *ScriptRunNode) Accept(v Visitor) any { return v.VisitScriptRun(n) }
func (n *ScriptRunNode) String() string       { return "ScriptRun" }

// VersionCondNode is a (?(VERSION>=n.m)...) condition.
type VersionCondNode struct {
	span
	Operator string // ">=" or "="
	Version  string
}

func NewVersionCondNode(operator, version string, start, end int) *VersionCondNode {
	return &VersionCondNode{span: span{start, end}, Operator: operator, Version: version}
}

func (n *VersionCondNode) Type() NodeType       { return VERSION_COND }
func (n *VersionCondNode) Accept(v Visitor) any { return v.VisitVersionCond(n) }
func (n *VersionCondNode) String() string {
	return fmt.Sprintf("VersionCond(VERSION%s%s)", n.Operator, n.Version)
}

// PlaceholderNode stands in for an unparseable fragment in tolerant mode.
type PlaceholderNode struct {
	span
	Text string
}

func NewPlaceholderNode(text string, start, end int) *PlaceholderNode {
	return &PlaceholderNode{span: span{start, end}, Text: text}
}

func (n *PlaceholderNode) Type() NodeType       { return PLACEHOLDER }
func (n *PlaceholderNode) Accept(v Visitor) any { return v.VisitPlaceholder(n) }
func (n *PlaceholderNode) String() string       { return fmt.Sprintf("Placeholder(%q)", n.Text) }
