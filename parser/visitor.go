package parser

// Visitor is the single extension point over the AST. Every operation
// (validation, scoring, formatting, explaining) is one Visitor
// implementation; node types never grow behavior.
//
// There are deliberately no default implementations: adding a node type must
// be a compile-time-visible change to every visitor.
type Visitor interface {
	VisitSequence(n *SequenceNode) any
	VisitAlternation(n *AlternationNode) any
	VisitGroup(n *GroupNode) any
	VisitQuantifier(n *QuantifierNode) any
	VisitLiteral(n *LiteralNode) any
	VisitDot(n *DotNode) any
	VisitCharType(n *CharTypeNode) any
	VisitCharClass(n *CharClassNode) any
	VisitClassRange(n *ClassRangeNode) any
	VisitPosixClass(n *PosixClassNode) any
	VisitUnicodeProp(n *UnicodePropNode) any
	VisitUnicodeEscape(n *UnicodeEscapeNode) any
	VisitAnchor(n *AnchorNode) any
	VisitAssertion(n *AssertionNode) any
	VisitBackref(n *BackrefNode) any
	VisitSubroutine(n *SubroutineNode) any
	VisitConditional(n *ConditionalNode) any
	VisitConditionRef(n *ConditionRefNode) any
	VisitComment(n *CommentNode) any
	VisitVerb(n *VerbNode) any
	VisitDefine(n *DefineNode) any
	VisitCallout(n *CalloutNode) any
	VisitScriptRun(n *ScriptRunNode) any
	VisitVersionCond(n *VersionCondNode) any
	VisitPlaceholder(n *PlaceholderNode) any
}
