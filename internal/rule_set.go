package internal

import (
	"github.com/RonGatenio/Spartanizer/internal/rules"
	"github.com/RonGatenio/Spartanizer/internal/tree"
	tt "github.com/RonGatenio/Spartanizer/internal/types"
)

/*
* Each rewrite rule wraps one detector of the rules package
 */

// RewriteRule defines the interface for all rewrite rules.
type RewriteRule interface {
	// Detect inspects the node id and returns the rewrite it proposes,
	// or nil when the rule does not apply. It must not modify the tree.
	Detect(ctx *rules.Context, id tree.NodeID) *rules.Rewrite

	// Kinds returns the node kinds the rule may match on.
	Kinds() []tree.Kind

	// Name returns the name of the rewrite rule.
	Name() string

	// Severity returns the severity the rule reports with.
	Severity() tt.Severity

	// SetSeverity sets the severity of the rewrite rule.
	SetSeverity(tt.Severity)
}

type severity struct {
	level tt.Severity
}

func (s *severity) Severity() tt.Severity     { return s.level }
func (s *severity) SetSeverity(l tt.Severity) { s.level = l }

type AssignIfRule struct{ severity }

func NewAssignIfRule() RewriteRule {
	return &AssignIfRule{severity{tt.SeverityWarning}}
}

func (r *AssignIfRule) Detect(ctx *rules.Context, id tree.NodeID) *rules.Rewrite {
	return rules.DetectAssignIf(ctx, id)
}

func (r *AssignIfRule) Kinds() []tree.Kind { return []tree.Kind{tree.If} }

func (r *AssignIfRule) Name() string {
	return rules.AssignIfName
}

type IfReturnRule struct{ severity }

func NewIfReturnRule() RewriteRule {
	return &IfReturnRule{severity{tt.SeverityWarning}}
}

func (r *IfReturnRule) Detect(ctx *rules.Context, id tree.NodeID) *rules.Rewrite {
	return rules.DetectIfReturn(ctx, id)
}

func (r *IfReturnRule) Kinds() []tree.Kind { return []tree.Kind{tree.If} }

func (r *IfReturnRule) Name() string {
	return rules.IfReturnName
}

type IfElseTernaryRule struct{ severity }

func NewIfElseTernaryRule() RewriteRule {
	return &IfElseTernaryRule{severity{tt.SeverityWarning}}
}

func (r *IfElseTernaryRule) Detect(ctx *rules.Context, id tree.NodeID) *rules.Rewrite {
	return rules.DetectIfElseTernary(ctx, id)
}

func (r *IfElseTernaryRule) Kinds() []tree.Kind { return []tree.Kind{tree.If} }

func (r *IfElseTernaryRule) Name() string {
	return rules.IfElseTernaryName
}

type IfEmptyElseRule struct{ severity }

func NewIfEmptyElseRule() RewriteRule {
	return &IfEmptyElseRule{severity{tt.SeverityInfo}}
}

func (r *IfEmptyElseRule) Detect(ctx *rules.Context, id tree.NodeID) *rules.Rewrite {
	return rules.DetectIfEmptyElse(ctx, id)
}

func (r *IfEmptyElseRule) Kinds() []tree.Kind { return []tree.Kind{tree.If} }

func (r *IfEmptyElseRule) Name() string {
	return rules.IfEmptyElseName
}

type DeclarationAssignmentRule struct{ severity }

func NewDeclarationAssignmentRule() RewriteRule {
	return &DeclarationAssignmentRule{severity{tt.SeverityWarning}}
}

func (r *DeclarationAssignmentRule) Detect(ctx *rules.Context, id tree.NodeID) *rules.Rewrite {
	return rules.DetectDeclarationAssignment(ctx, id)
}

func (r *DeclarationAssignmentRule) Kinds() []tree.Kind { return []tree.Kind{tree.VarDecl} }

func (r *DeclarationAssignmentRule) Name() string {
	return rules.DeclarationAssignmentName
}

type NotPushdownRule struct{ severity }

func NewNotPushdownRule() RewriteRule {
	return &NotPushdownRule{severity{tt.SeverityInfo}}
}

func (r *NotPushdownRule) Detect(ctx *rules.Context, id tree.NodeID) *rules.Rewrite {
	return rules.DetectNotPushdown(ctx, id)
}

func (r *NotPushdownRule) Kinds() []tree.Kind { return []tree.Kind{tree.Prefix} }

func (r *NotPushdownRule) Name() string {
	return rules.NotPushdownName
}

type BlockDeclarationsRule struct{ severity }

func NewBlockDeclarationsRule() RewriteRule {
	return &BlockDeclarationsRule{severity{tt.SeverityInfo}}
}

func (r *BlockDeclarationsRule) Detect(ctx *rules.Context, id tree.NodeID) *rules.Rewrite {
	return rules.DetectBlockDeclarations(ctx, id)
}

func (r *BlockDeclarationsRule) Kinds() []tree.Kind { return []tree.Kind{tree.Block} }

func (r *BlockDeclarationsRule) Name() string {
	return rules.BlockDeclarationsName
}
