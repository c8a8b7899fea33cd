package internal

import (
	"errors"
	"fmt"
	"go/token"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/RonGatenio/Spartanizer/internal/nolint"
	"github.com/RonGatenio/Spartanizer/internal/rules"
	"github.com/RonGatenio/Spartanizer/internal/span"
	"github.com/RonGatenio/Spartanizer/internal/tree"
	"github.com/RonGatenio/Spartanizer/internal/treeio"
	tt "github.com/RonGatenio/Spartanizer/internal/types"
)

// ErrNoFixpoint is returned when rewriting does not settle within the pass cap.
var ErrNoFixpoint = errors.New("no fixed point reached")

// Engine drives the rewrite rules over trees.
type Engine struct {
	ignoredRules map[string]bool
	rules        []RewriteRule
	byKind       map[tree.Kind][]RewriteRule
	logger       *zap.Logger
	cache        *Cache

	// MaxPasses caps ApplyFixpoint. Zero means one more than the number
	// of nodes in the tree being rewritten.
	MaxPasses int
}

// Option configures an Engine.
type Option func(*Engine)

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithMaxPasses(n int) Option {
	return func(e *Engine) { e.MaxPasses = n }
}

// WithCache makes Run reuse the issues of documents that did not change.
func WithCache(cache *Cache) Option {
	return func(e *Engine) { e.cache = cache }
}

// NewEngine creates a rewrite engine with the default rules, adjusted by
// the per-rule configuration.
func NewEngine(config map[string]tt.ConfigRule, opts ...Option) *Engine {
	engine := &Engine{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(engine)
	}
	engine.applyRules(config)
	return engine
}

type ruleConstructor func() RewriteRule

type ruleMap map[string]ruleConstructor

var allRuleConstructors = ruleMap{
	rules.AssignIfName:              NewAssignIfRule,
	rules.IfReturnName:              NewIfReturnRule,
	rules.IfElseTernaryName:         NewIfElseTernaryRule,
	rules.IfEmptyElseName:           NewIfEmptyElseRule,
	rules.DeclarationAssignmentName: NewDeclarationAssignmentRule,
	rules.NotPushdownName:           NewNotPushdownRule,
	rules.BlockDeclarationsName:     NewBlockDeclarationsRule,
}

// ruleOrder is the priority of the rules: on any node the first rule that
// matches wins.
var ruleOrder = []string{
	rules.AssignIfName,
	rules.IfReturnName,
	rules.IfElseTernaryName,
	rules.IfEmptyElseName,
	rules.DeclarationAssignmentName,
	rules.NotPushdownName,
	rules.BlockDeclarationsName,
}

// RuleNames lists the known rules in priority order.
func RuleNames() []string {
	return append([]string(nil), ruleOrder...)
}

// RuleStatus describes a rule as configured in an engine.
type RuleStatus struct {
	Name     string
	Severity tt.Severity
	Enabled  bool
}

// Rules reports every rule in priority order.
func (e *Engine) Rules() []RuleStatus {
	out := make([]RuleStatus, 0, len(e.rules))
	for _, r := range e.rules {
		out = append(out, RuleStatus{
			Name:     r.Name(),
			Severity: r.Severity(),
			Enabled:  !e.ignoredRules[r.Name()],
		})
	}
	return out
}

func (e *Engine) applyRules(config map[string]tt.ConfigRule) {
	e.registerDefaultRules()

	for key, rule := range config {
		r := e.findRule(key)
		if r == nil {
			e.logger.Warn("unknown rule in configuration", zap.String("rule", key))
			continue
		}
		if rule.Severity == tt.SeverityOff {
			e.IgnoreRule(key)
		}
		r.SetSeverity(rule.Severity)
	}
}

func (e *Engine) registerDefaultRules() {
	e.rules = e.rules[:0]
	e.byKind = make(map[tree.Kind][]RewriteRule)
	for _, key := range ruleOrder {
		r := allRuleConstructors[key]()
		e.rules = append(e.rules, r)
		for _, k := range r.Kinds() {
			e.byKind[k] = append(e.byKind[k], r)
		}
	}
}

func (e *Engine) findRule(name string) RewriteRule {
	for _, r := range e.rules {
		if r.Name() == name {
			return r
		}
	}
	return nil
}

// fingerprint identifies the enabled rules and their severities.
func (e *Engine) fingerprint() string {
	var b strings.Builder
	for _, r := range e.rules {
		if e.ignoredRules[r.Name()] {
			continue
		}
		fmt.Fprintf(&b, "%s=%s;", r.Name(), r.Severity())
	}
	return b.String()
}

func (e *Engine) IgnoreRule(rule string) {
	if e.ignoredRules == nil {
		e.ignoredRules = make(map[string]bool)
	}
	e.ignoredRules[rule] = true
}

// Opportunity is a non-overlapping rewrite accepted for the current pass.
type Opportunity struct {
	Rule     string
	Message  string
	Node     tree.NodeID
	Span     span.Span
	Severity tt.Severity

	rewrite *rules.Rewrite
}

// match returns the rewrite of the first enabled rule matching id.
func (e *Engine) match(ctx *rules.Context, id tree.NodeID) (*rules.Rewrite, RewriteRule) {
	for _, r := range e.byKind[ctx.View.Kind(id)] {
		if e.ignoredRules[r.Name()] {
			continue
		}
		if rw := r.Detect(ctx, id); rw != nil {
			return rw, r
		}
	}
	return nil, nil
}

// detect runs every rule over t in pre-order and keeps the candidates the
// region subsumes. A nil region admits every candidate.
func (e *Engine) detect(t *tree.Tree, ctx *rules.Context, region *span.Span) []Opportunity {
	var accepted span.Set[Opportunity]
	tree.Walk(t, t.Root(), func(id tree.NodeID) bool {
		rw, r := e.match(ctx, id)
		if rw == nil {
			return true
		}
		if region != nil && !span.Subsumes(*region, rw.Span) {
			return true
		}
		accepted.Insert(rw.Span, Opportunity{
			Rule:     rw.Rule,
			Message:  rw.Message,
			Node:     rw.Node,
			Span:     rw.Span,
			Severity: r.Severity(),
			rewrite:  rw,
		})
		return true
	})

	out := make([]Opportunity, 0, accepted.Len())
	for _, entry := range accepted.Entries() {
		op := entry.Value
		op.Span = entry.Span
		out = append(out, op)
	}
	return out
}

// Collect returns the pairwise non-overlapping rewrite opportunities of t
// in document order. The tree is not modified.
func (e *Engine) Collect(t *tree.Tree) []Opportunity {
	return e.detect(t, rules.NewContext(t), nil)
}

// ApplyOnePass detects the opportunities of t inside region, or everywhere
// when region is nil, applies them and returns how many were applied.
// A rewrite whose edit no longer fits the tree is logged and skipped.
func (e *Engine) ApplyOnePass(t *tree.Tree, region *span.Span) int {
	ctx := rules.NewContext(t)
	ops := e.detect(t, ctx, region)
	editor := tree.NewEditor(t, ctx.Index)

	applied := 0
	for _, op := range ops {
		if err := op.rewrite.Apply(editor); err != nil {
			e.logger.Warn("skipping rewrite",
				zap.String("rule", op.Rule),
				zap.Stringer("span", op.Span),
				zap.Error(err))
			continue
		}
		applied++
	}
	return applied
}

// ApplyFixpoint rewrites t until no rule applies. It returns the number of
// passes that changed the tree. At most MaxPasses passes may change it;
// ErrNoFixpoint is returned when the pass after them still does.
func (e *Engine) ApplyFixpoint(t *tree.Tree) (int, error) {
	limit := e.MaxPasses
	if limit <= 0 {
		limit = tree.Size(t) + 1
	}
	for pass := 0; pass <= limit; pass++ {
		applied := e.ApplyOnePass(t, nil)
		e.logger.Debug("pass finished", zap.Int("pass", pass+1), zap.Int("applied", applied))
		if applied == 0 {
			return pass, nil
		}
	}
	return limit, fmt.Errorf("%w after %d passes", ErrNoFixpoint, limit)
}

// Report converts the opportunities of t into issues of filename.
func (e *Engine) Report(filename string, t *tree.Tree) []tt.Issue {
	ops := e.Collect(t)
	issues := make([]tt.Issue, 0, len(ops))
	for _, op := range ops {
		issue := tt.Issue{
			Rule:     op.Rule,
			Category: "simplify",
			Filename: filename,
			Message:  op.Message,
			Original: renderSpan(t, op.Span),
			Severity: op.Severity,
		}
		issue.Start, issue.End = spanPositions(filename, t, op.Span)

		after, err := preview(t, op)
		if err != nil {
			e.logger.Warn("cannot preview rewrite", zap.String("rule", op.Rule), zap.Error(err))
		} else {
			issue.Suggestion = after
		}
		issues = append(issues, issue)
	}
	return issues
}

// preview applies op on a copy of t and renders the rewritten statements.
func preview(t *tree.Tree, op Opportunity) (string, error) {
	c := t.Clone()
	if err := op.rewrite.Apply(tree.NewEditor(c, tree.NewIndex(c))); err != nil {
		return "", err
	}
	sp := op.Span
	if sp.IsWhole() {
		return tree.Render(c, c.Root()), nil
	}
	sp.To += len(c.Kids(sp.Parent)) - len(t.Kids(sp.Parent))
	return renderSpan(c, sp), nil
}

func renderSpan(v tree.View, sp span.Span) string {
	if sp.IsWhole() {
		return tree.Render(v, v.Root())
	}
	kids := v.Kids(sp.Parent)
	parts := make([]string, 0, sp.To-sp.From+1)
	for i := sp.From; i <= sp.To && i < len(kids); i++ {
		parts = append(parts, tree.Render(v, kids[i]))
	}
	return strings.Join(parts, " ")
}

func spanPositions(filename string, v tree.View, sp span.Span) (start, end token.Position) {
	first, last := v.Root(), v.Root()
	if !sp.IsWhole() {
		first, last = tree.Kid(v, sp.Parent, sp.From), tree.Kid(v, sp.Parent, sp.To)
	}
	s, l := tree.PosOf(v, first), tree.PosOf(v, last)
	start = token.Position{Filename: filename, Line: s.Line, Column: s.Column}
	end = token.Position{Filename: filename, Line: l.Line, Column: l.Column}
	return start, end
}

// Run reports the rewrite opportunities of the tree document at filename.
func (e *Engine) Run(filename string) ([]tt.Issue, error) {
	fingerprint := e.fingerprint()
	if e.cache != nil {
		if issues, ok := e.cache.Get(filename, fingerprint); ok {
			e.logger.Debug("cache hit", zap.String("file", filename))
			return issues, nil
		}
	}

	source, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading tree: %w", err)
	}
	t, err := treeio.Decode(source)
	if err != nil {
		return nil, fmt.Errorf("error loading tree: %s: %w", filename, err)
	}
	issues := e.filterNolint(source, e.Report(filename, t))

	if e.cache != nil {
		if err := e.cache.Set(filename, fingerprint, issues); err != nil {
			e.logger.Warn("cannot cache issues", zap.String("file", filename), zap.Error(err))
		}
	}
	return issues, nil
}

// RunSource reports the rewrite opportunities of a tree document.
func (e *Engine) RunSource(source []byte) ([]tt.Issue, error) {
	t, err := treeio.Decode(source)
	if err != nil {
		return nil, fmt.Errorf("error decoding tree: %w", err)
	}
	return e.filterNolint(source, e.Report("", t)), nil
}

// filterNolint drops the issues silenced by nolint comments of source.
func (e *Engine) filterNolint(source []byte, issues []tt.Issue) []tt.Issue {
	manager, err := nolint.ParseComments(source)
	if err != nil {
		e.logger.Warn("cannot read nolint comments", zap.Error(err))
		return issues
	}
	filtered := issues[:0]
	for _, issue := range issues {
		if manager.IsNolint(issue.Start, issue.Rule) {
			e.logger.Debug("issue silenced", zap.String("rule", issue.Rule), zap.Int("line", issue.Start.Line))
			continue
		}
		filtered = append(filtered, issue)
	}
	return filtered
}

// SourceCode stores the content of a tree document.
type SourceCode struct {
	Lines []string
}

// ReadSourceCode reads the content of a file and returns it as a `SourceCode` struct.
func ReadSourceCode(filename string) (*SourceCode, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(content), "\n")
	return &SourceCode{Lines: lines}, nil
}
