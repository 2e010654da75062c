package parser

import (
	"fmt"
	"strings"

	"github.com/shibukawa/pcrescan/tokenizer"
)

// parseGroup dispatches on the tokens following '(' to classify the group
// before recursing into the body.
func (p *patternParser) parseGroup() (Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	open, err := p.advance() // '('
	if err != nil {
		return nil, err
	}

	start := open.Position.Offset

	token, err := p.current()
	if err != nil {
		return nil, err
	}

	switch token.Type {
	case tokenizer.COMMENT:
		// (?#...) inline comment; the closing paren is still in the stream.
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		closing, err := p.expectClose(open)
		if err != nil {
			return nil, err
		}
		return NewCommentNode(strings.TrimPrefix(token.Value, "?#"), start, closing.End()), nil
	case tokenizer.VERB:
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		return p.finishVerb(open, token)
	case tokenizer.GROUP_MODIFIER:
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		return p.parseModifiedGroup(open, token)
	default:
		body, err := p.parseAlternation()
		if err != nil {
			return nil, err
		}
		closing, err := p.expectClose(open)
		if err != nil {
			return nil, err
		}
		return NewGroupNode(GroupCapturing, "", "", body, start, closing.End()), nil
	}
}

// expectClose consumes the ')' terminating a group.
func (p *patternParser) expectClose(open tokenizer.Token) (tokenizer.Token, error) {
	token, err := p.current()
	if err != nil {
		return tokenizer.Token{}, err
	}

	if token.Type != tokenizer.CLOSED_PARENS {
		return tokenizer.Token{}, newParseError(ErrUnbalancedGroup,
			fmt.Sprintf("missing closing parenthesis for group opened at offset %d", open.Position.Offset),
			token.Position)
	}

	return p.advance()
}

// finishVerb builds a VerbNode from a "(*...)" construct.
func (p *patternParser) finishVerb(open, token tokenizer.Token) (Node, error) {
	payload := strings.TrimPrefix(token.Value, "*")
	name, arg, _ := strings.Cut(payload, ":")

	if name != "" && !verbNames[name] {
		return nil, newParseError(ErrInvalidVerb,
			fmt.Sprintf("unknown control verb (*%s)", name), token.Position)
	}
	if name == "" && arg == "" {
		return nil, newParseError(ErrInvalidVerb, "empty control verb (*)", token.Position)
	}

	closing, err := p.expectClose(open)
	if err != nil {
		return nil, err
	}

	return NewVerbNode(name, arg, open.Position.Offset, closing.End()), nil
}

// parseModifiedGroup handles every "(?..." and "(*name:..." form.
func (p *patternParser) parseModifiedGroup(open, mod tokenizer.Token) (Node, error) {
	start := open.Position.Offset
	value := mod.Value

	switch {
	case value == "?:":
		return p.finishBodyGroup(open, GroupNonCapturing, "", "")
	case value == "?=":
		return p.finishBodyGroup(open, GroupLookaheadPos, "", "")
	case value == "?!":
		return p.finishBodyGroup(open, GroupLookaheadNeg, "", "")
	case value == "?<=":
		return p.finishBodyGroup(open, GroupLookbehindPos, "", "")
	case value == "?<!":
		return p.finishBodyGroup(open, GroupLookbehindNeg, "", "")
	case value == "?>":
		return p.finishBodyGroup(open, GroupAtomic, "", "")
	case value == "?|":
		return p.finishBodyGroup(open, GroupBranchReset, "", "")
	case value == "?(":
		return p.parseConditional(open)
	case value == "?R":
		closing, err := p.expectClose(open)
		if err != nil {
			return nil, err
		}
		return NewSubroutineNode("R", start, closing.End()), nil
	case value == "?C":
		return p.finishCallout(open)
	case strings.HasPrefix(value, "?<") && strings.HasSuffix(value, ">"):
		name := value[2 : len(value)-1]
		if err := p.checkGroupName(name, mod); err != nil {
			return nil, err
		}
		return p.finishBodyGroup(open, GroupNamed, name, "")
	case strings.HasPrefix(value, "?'") && strings.HasSuffix(value, "'"):
		name := value[2 : len(value)-1]
		if err := p.checkGroupName(name, mod); err != nil {
			return nil, err
		}
		return p.finishBodyGroup(open, GroupNamed, name, "")
	case strings.HasPrefix(value, "?P<") && strings.HasSuffix(value, ">"):
		name := value[3 : len(value)-1]
		if err := p.checkGroupName(name, mod); err != nil {
			return nil, err
		}
		return p.finishBodyGroup(open, GroupNamed, name, "")
	case strings.HasPrefix(value, "?P>"):
		closing, err := p.expectClose(open)
		if err != nil {
			return nil, err
		}
		return NewSubroutineNode(value[3:], start, closing.End()), nil
	case strings.HasPrefix(value, "?P="):
		closing, err := p.expectClose(open)
		if err != nil {
			return nil, err
		}
		return NewBackrefNode(value[3:], start, closing.End()), nil
	case strings.HasPrefix(value, "?&"):
		closing, err := p.expectClose(open)
		if err != nil {
			return nil, err
		}
		return NewSubroutineNode(value[2:], start, closing.End()), nil
	case isSubroutineRef(value):
		closing, err := p.expectClose(open)
		if err != nil {
			return nil, err
		}
		return NewSubroutineNode(value[1:], start, closing.End()), nil
	case strings.HasPrefix(value, "*"):
		return p.parseStarGroup(open, mod)
	default:
		return p.parseInlineFlags(open, mod)
	}
}

// isSubroutineRef reports whether a modifier is "?12", "?+2" or "?-1".
func isSubroutineRef(value string) bool {
	rest := strings.TrimPrefix(value, "?")
	rest = strings.TrimPrefix(rest, "+")
	if !strings.HasPrefix(value, "?+") {
		rest = strings.TrimPrefix(rest, "-")
	}
	if rest == "" {
		return false
	}
	for _, c := range rest {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// finishBodyGroup parses the group body and closing paren.
func (p *patternParser) finishBodyGroup(open tokenizer.Token, groupType GroupType, name, flagText string) (Node, error) {
	body, err := p.parseAlternation()
	if err != nil {
		return nil, err
	}

	closing, err := p.expectClose(open)
	if err != nil {
		return nil, err
	}

	return NewGroupNode(groupType, name, flagText, body, open.Position.Offset, closing.End()), nil
}

// checkGroupName enforces PCRE naming rules: word characters only, no
// leading digit, at most 32 characters.
func (p *patternParser) checkGroupName(name string, mod tokenizer.Token) error {
	if name == "" || len(name) > 32 {
		return newParseError(ErrInvalidGroupName,
			fmt.Sprintf("invalid group name %q", name), mod.Position)
	}
	if name[0] >= '0' && name[0] <= '9' {
		return newParseError(ErrInvalidGroupName,
			fmt.Sprintf("group name %q must not start with a digit", name), mod.Position)
	}
	return nil
}

// finishCallout reads the payload of (?C...), e.g. (?C1) or (?C"text").
func (p *patternParser) finishCallout(open tokenizer.Token) (Node, error) {
	var builder strings.Builder

	for {
		token, err := p.current()
		if err != nil {
			return nil, err
		}
		if token.Type == tokenizer.CLOSED_PARENS {
			break
		}
		if token.Type == tokenizer.EOF {
			return nil, newParseError(ErrUnbalancedGroup, "unterminated callout", open.Position)
		}
		builder.WriteString(token.Value)
		if _, err := p.advance(); err != nil {
			return nil, err
		}
	}

	closing, err := p.expectClose(open)
	if err != nil {
		return nil, err
	}

	return NewCalloutNode(builder.String(), open.Position.Offset, closing.End()), nil
}

// parseStarGroup handles the "(*name:...)" group-opening constructs.
func (p *patternParser) parseStarGroup(open, mod tokenizer.Token) (Node, error) {
	name := strings.TrimSuffix(strings.TrimPrefix(mod.Value, "*"), ":")

	switch name {
	case "atomic":
		return p.finishBodyGroup(open, GroupAtomic, "", "")
	case "pla", "positive_lookahead":
		return p.finishBodyGroup(open, GroupLookaheadPos, "", "")
	case "nla", "napla", "negative_lookahead":
		return p.finishBodyGroup(open, GroupLookaheadNeg, "", "")
	case "plb", "positive_lookbehind":
		return p.finishBodyGroup(open, GroupLookbehindPos, "", "")
	case "nlb", "naplb", "negative_lookbehind":
		return p.finishBodyGroup(open, GroupLookbehindNeg, "", "")
	case "sr", "script_run", "asr", "atomic_script_run":
		body, err := p.parseAlternation()
		if err != nil {
			return nil, err
		}
		closing, err := p.expectClose(open)
		if err != nil {
			return nil, err
		}
		atomic := name == "asr" || name == "atomic_script_run"
		return NewScriptRunNode(body, atomic, open.Position.Offset, closing.End()), nil
	default:
		return nil, newParseError(ErrUnsupportedConstruct,
			fmt.Sprintf("unsupported construct (*%s:", name), mod.Position)
	}
}

// parseInlineFlags handles "(?imx)" and "(?im-sx:...)".
func (p *patternParser) parseInlineFlags(open, mod tokenizer.Token) (Node, error) {
	flagText := strings.TrimPrefix(mod.Value, "?")
	bodyFollows := strings.HasSuffix(flagText, ":")
	flagText = strings.TrimSuffix(flagText, ":")

	check := strings.TrimPrefix(flagText, "^")
	for _, c := range check {
		if c != '-' && !strings.ContainsRune(inlineFlagLetters, c) {
			return nil, newParseError(ErrUnsupportedConstruct,
				fmt.Sprintf("unsupported construct (%s", mod.Value), mod.Position)
		}
	}
	if check == "" && !strings.HasPrefix(flagText, "^") {
		return nil, newParseError(ErrUnsupportedConstruct,
			fmt.Sprintf("unsupported construct (%s", mod.Value), mod.Position)
	}

	if bodyFollows {
		return p.finishBodyGroup(open, GroupInlineFlags, "", flagText)
	}

	closing, err := p.expectClose(open)
	if err != nil {
		return nil, err
	}

	// Flag-setting group with no body, e.g. (?i).
	empty := NewSequenceNode(nil, closing.Position.Offset, closing.Position.Offset)

	return NewGroupNode(GroupInlineFlags, "", flagText, empty, open.Position.Offset, closing.End()), nil
}

// parseConditional handles "(?(cond)yes|no)". The condition is either a
// group reference, R recursion check, DEFINE, VERSION, or an assertion.
func (p *patternParser) parseConditional(open tokenizer.Token) (Node, error) {
	start := open.Position.Offset

	token, err := p.current()
	if err != nil {
		return nil, err
	}

	// Assertion condition: (?(?=...)...), (?(?<!...)...) etc.
	if token.Type == tokenizer.GROUP_MODIFIER {
		groupType, ok := lookaroundType(token.Value)
		if !ok {
			return nil, newParseError(ErrUnsupportedConstruct,
				fmt.Sprintf("unsupported conditional condition (?%s", token.Value), token.Position)
		}
		if _, err := p.advance(); err != nil {
			return nil, err
		}

		body, err := p.parseAlternation()
		if err != nil {
			return nil, err
		}
		closing, err := p.expectClose(open)
		if err != nil {
			return nil, err
		}

		condition := NewGroupNode(groupType, "", "", body, token.Position.Offset, closing.End())

		return p.finishConditional(open, condition)
	}

	// Textual condition up to the closing paren.
	condStart := token.Position.Offset
	condEnd := condStart

	var builder strings.Builder

	for {
		token, err := p.current()
		if err != nil {
			return nil, err
		}
		if token.Type == tokenizer.CLOSED_PARENS {
			condEnd = token.Position.Offset
			if _, err := p.advance(); err != nil {
				return nil, err
			}
			break
		}
		if token.Type == tokenizer.EOF {
			return nil, newParseError(ErrUnbalancedGroup, "unterminated conditional group", open.Position)
		}
		builder.WriteString(token.Value)
		if _, err := p.advance(); err != nil {
			return nil, err
		}
	}

	text := builder.String()
	if text == "" {
		return nil, newParseError(ErrEmptyConditional, "conditional group has no condition", open.Position)
	}

	if text == "DEFINE" {
		body, err := p.parseAlternation()
		if err != nil {
			return nil, err
		}
		closing, err := p.expectClose(open)
		if err != nil {
			return nil, err
		}
		return NewDefineNode(body, start, closing.End()), nil
	}

	var condition Node
	if op, version, ok := splitVersionCondition(text); ok {
		condition = NewVersionCondNode(op, version, condStart, condEnd)
	} else {
		ref := strings.Trim(text, "<>'")
		if ref == "" {
			return nil, newParseError(ErrEmptyConditional, "conditional group has no condition", open.Position)
		}
		condition = NewConditionRefNode(ref, condStart, condEnd)
	}

	return p.finishConditional(open, condition)
}

// finishConditional parses the yes/no branches; more than two is an error.
func (p *patternParser) finishConditional(open tokenizer.Token, condition Node) (Node, error) {
	body, err := p.parseAlternation()
	if err != nil {
		return nil, err
	}

	closing, err := p.expectClose(open)
	if err != nil {
		return nil, err
	}

	yes := body
	no := Node(NewLiteralNode("", closing.Position.Offset, closing.Position.Offset))

	if alt, ok := body.(*AlternationNode); ok {
		if len(alt.Alternatives) > 2 {
			return nil, newParseError(ErrInvalidConditional,
				"conditional group has at most two branches", open.Position)
		}
		yes = alt.Alternatives[0]
		no = alt.Alternatives[1]
	}

	return NewConditionalNode(condition, yes, no, open.Position.Offset, closing.End()), nil
}

// lookaroundType maps a lookaround modifier to its group type.
func lookaroundType(value string) (GroupType, bool) {
	switch value {
	case "?=":
		return GroupLookaheadPos, true
	case "?!":
		return GroupLookaheadNeg, true
	case "?<=":
		return GroupLookbehindPos, true
	case "?<!":
		return GroupLookbehindNeg, true
	default:
		return 0, false
	}
}

// splitVersionCondition recognizes "VERSION>=10.4" and "VERSION=10.4".
func splitVersionCondition(text string) (op, version string, ok bool) {
	rest, found := strings.CutPrefix(text, "VERSION")
	if !found {
		return "", "", false
	}
	if v, found := strings.CutPrefix(rest, ">="); found {
		return ">=", v, true
	}
	if v, found := strings.CutPrefix(rest, "="); found {
		return "=", v, true
	}
	return "", "", false
}
