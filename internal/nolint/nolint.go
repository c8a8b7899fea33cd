package nolint

import (
	"fmt"
	"go/token"
	"strings"

	"gopkg.in/yaml.v3"
)

const nolintPrefix = "nolint"

// Manager manages nolint scopes and checks if a position is nolinted.
type Manager struct {
	scopes []nolintScope
}

// nolintScope represents a range of lines where nolint applies.
type nolintScope struct {
	rules map[string]struct{}
	start int
	end   int
}

// ParseComments collects the nolint comments of a tree document.
//
// A comment attached to a statement of a block, above it or at the end of
// its line, covers that statement and everything nested in it. A comment
// outside every block, such as one at the top of the document, covers the
// whole document.
func ParseComments(source []byte) (*Manager, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(source, &doc); err != nil {
		return nil, fmt.Errorf("error parsing comments: %w", err)
	}

	manager := &Manager{}
	c := collector{manager: manager, end: lastLine(&doc)}
	c.visit(&doc, nil, false)
	return manager, nil
}

type collector struct {
	manager *Manager
	end     int
}

// visit records the comments of n and walks its children. stmt is the
// innermost block statement containing n, nil outside every block; list
// marks n as the statement list of a block.
func (c collector) visit(n *yaml.Node, stmt *yaml.Node, list bool) {
	for _, comment := range []string{n.HeadComment, n.LineComment} {
		for _, line := range strings.Split(comment, "\n") {
			rules, ok := parseComment(line)
			if !ok {
				continue
			}
			ns := nolintScope{rules: rules, start: 1, end: c.end}
			if stmt != nil {
				ns.start, ns.end = stmt.Line, lastLine(stmt)
			}
			c.manager.scopes = append(c.manager.scopes, ns)
		}
	}

	switch {
	case list:
		for _, item := range n.Content {
			c.visit(item, item, false)
		}
	case n.Kind == yaml.DocumentNode:
		for _, root := range n.Content {
			c.visit(root, stmt, root.Kind == yaml.SequenceNode)
		}
	case n.Kind == yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i], n.Content[i+1]
			c.visit(key, stmt, false)
			c.visit(val, stmt, key.Value == "block" && val.Kind == yaml.SequenceNode)
		}
	default:
		for _, kid := range n.Content {
			c.visit(kid, stmt, false)
		}
	}
}

// parseComment reads one comment line, "# nolint" or "# nolint:rule1,rule2".
func parseComment(line string) (map[string]struct{}, bool) {
	text := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "#"))
	if !strings.HasPrefix(text, nolintPrefix) {
		return nil, false
	}
	rest := text[len(nolintPrefix):]

	// A nolint comment can either have a list of rules after a colon (:)
	// or if no rules are specified, it applies to all rules
	if rest == "" {
		return map[string]struct{}{}, true
	}
	if rest[0] != ':' {
		return nil, false
	}
	rules := parseIgnoreRuleNames(strings.TrimSpace(rest[1:]))
	if len(rules) == 0 {
		return nil, false
	}
	return rules, true
}

// parseIgnoreRuleNames parses the rule list from the nolint comment.
func parseIgnoreRuleNames(text string) map[string]struct{} {
	rulesMap := make(map[string]struct{})
	if text == "" {
		return rulesMap
	}
	for _, rule := range strings.Split(text, ",") {
		rule = strings.TrimSpace(rule)
		if rule != "" {
			rulesMap[rule] = struct{}{}
		}
	}
	return rulesMap
}

func lastLine(n *yaml.Node) int {
	line := n.Line
	for _, kid := range n.Content {
		line = max(line, lastLine(kid))
	}
	return line
}

// IsNolint checks if a given position and rule are nolinted.
func (m *Manager) IsNolint(pos token.Position, ruleName string) bool {
	for _, ns := range m.scopes {
		if pos.Line < ns.start || pos.Line > ns.end {
			continue
		}
		// If the rules list is empty, nolint applies to all rules
		if len(ns.rules) == 0 {
			return true
		}
		if _, exists := ns.rules[ruleName]; exists {
			return true
		}
	}
	return false
}
