package internal

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/RonGatenio/Spartanizer/internal/rules"
	"github.com/RonGatenio/Spartanizer/internal/span"
	"github.com/RonGatenio/Spartanizer/internal/tree"
	"github.com/RonGatenio/Spartanizer/internal/treeio"
	"github.com/RonGatenio/Spartanizer/internal/truth"
	tt "github.com/RonGatenio/Spartanizer/internal/types"
)

// createTempDir creates a temporary directory and returns its path.
// It also registers a cleanup function to remove the directory after the test.
func createTempDir(t testing.TB, prefix string) string {
	tempDir, err := os.MkdirTemp("", prefix)
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tempDir) })
	return tempDir
}

// loadGolden reads the input document and the expected rendering of a
// golden archive.
func loadGolden(t testing.TB, name string) (input []byte, want string) {
	ar, err := txtar.ParseFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	for _, f := range ar.Files {
		switch f.Name {
		case "input.yaml":
			input = f.Data
		case "want":
			want = strings.TrimSpace(string(f.Data))
		}
	}
	require.NotEmpty(t, input, "%s has no input.yaml", name)
	return input, want
}

func decodeGolden(t testing.TB, name string) *tree.Tree {
	input, _ := loadGolden(t, name)
	tr, err := treeio.Decode(input)
	require.NoError(t, err)
	return tr
}

func TestNewEngine(t *testing.T) {
	t.Parallel()

	engine := NewEngine(nil)
	assert.NotNil(t, engine)
	require.Len(t, engine.rules, len(ruleOrder))
	for i, r := range engine.rules {
		assert.Equal(t, ruleOrder[i], r.Name())
	}
	assert.ElementsMatch(t, RuleNames(), keys(allRuleConstructors))
}

func keys(m ruleMap) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestEngine_IgnoreRule(t *testing.T) {
	t.Parallel()
	engine := &Engine{}
	engine.IgnoreRule("test_rule")

	assert.True(t, engine.ignoredRules["test_rule"])
}

func TestEngine_ApplyRules(t *testing.T) {
	t.Parallel()

	engine := NewEngine(map[string]tt.ConfigRule{
		rules.NotPushdownName: {Severity: tt.SeverityOff},
		rules.IfReturnName:    {Severity: tt.SeverityError},
		"no-such-rule":        {Severity: tt.SeverityError},
	})

	assert.True(t, engine.ignoredRules[rules.NotPushdownName])
	assert.Equal(t, tt.SeverityError, engine.findRule(rules.IfReturnName).Severity())
	assert.Equal(t, tt.SeverityWarning, engine.findRule(rules.AssignIfName).Severity())
	assert.Nil(t, engine.findRule("no-such-rule"))

	statuses := engine.Rules()
	require.Len(t, statuses, len(ruleOrder))
	for _, status := range statuses {
		switch status.Name {
		case rules.NotPushdownName:
			assert.False(t, status.Enabled)
		case rules.IfReturnName:
			assert.True(t, status.Enabled)
			assert.Equal(t, tt.SeverityError, status.Severity)
		default:
			assert.True(t, status.Enabled, status.Name)
		}
	}

	tr := decodeGolden(t, "if_else_negated.txtar")
	_, err := engine.ApplyFixpoint(tr)
	require.NoError(t, err)
	assert.Equal(t, "{ int x = !(a < b) ? 1 : 2; return x; }", tree.Render(tr, tr.Root()))
}

func TestFixpointGolden(t *testing.T) {
	t.Parallel()

	files, err := filepath.Glob(filepath.Join("testdata", "*.txtar"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		name := filepath.Base(file)
		t.Run(strings.TrimSuffix(name, ".txtar"), func(t *testing.T) {
			t.Parallel()
			input, want := loadGolden(t, name)
			tr, err := treeio.Decode(input)
			require.NoError(t, err)
			before := tr.Clone()

			engine := NewEngine(nil)
			_, err = engine.ApplyFixpoint(tr)
			require.NoError(t, err)
			assert.Equal(t, want, tree.Render(tr, tr.Root()))

			// a second run finds nothing left to do
			assert.Empty(t, engine.Collect(tr))
			assert.Zero(t, engine.ApplyOnePass(tr, nil))

			report := truth.Verify(before, tr)
			assert.Equal(t, truth.Equivalent, report.Result, "%s: %s", report.Reason, report.Detail)
		})
	}
}

func TestApplyFixpointPasses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		maxPasses int
		passes    int
		err       error
	}{
		{"default cap", 0, 2, nil},
		{"exact cap", 2, 2, nil},
		{"cap too low", 1, 1, ErrNoFixpoint},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			tr := decodeGolden(t, "declarations.txtar")
			engine := NewEngine(nil, WithMaxPasses(tc.maxPasses))

			passes, err := engine.ApplyFixpoint(tr)
			assert.Equal(t, tc.passes, passes)
			if tc.err == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, tc.err), "got %v", err)
			}
		})
	}
}

func TestCollect(t *testing.T) {
	t.Parallel()

	tr := decodeGolden(t, "declarations.txtar")
	before := tree.Render(tr, tr.Root())

	ops := NewEngine(nil).Collect(tr)
	require.Len(t, ops, 2)
	assert.Equal(t, rules.DeclarationAssignmentName, ops[0].Rule)
	assert.Equal(t, rules.BlockDeclarationsName, ops[1].Rule)
	for i := range ops {
		for j := i + 1; j < len(ops); j++ {
			assert.False(t, span.Overlaps(ops[i].Span, ops[j].Span), "%s overlaps %s", ops[i].Span, ops[j].Span)
		}
	}
	assert.Equal(t, before, tree.Render(tr, tr.Root()))
}

func TestCollectKeepsOuterRewrite(t *testing.T) {
	t.Parallel()

	// the negation inside the if is left for the next pass
	tr := decodeGolden(t, "if_else_negated.txtar")
	ops := NewEngine(nil).Collect(tr)
	require.Len(t, ops, 1)
	assert.Equal(t, rules.IfElseTernaryName, ops[0].Rule)
}

func TestApplyOnePassRegion(t *testing.T) {
	t.Parallel()

	tr := decodeGolden(t, "declarations.txtar")
	region := span.New(tree.NewIndex(tr), tr.Root(), 3, 4)

	applied := NewEngine(nil).ApplyOnePass(tr, &region)
	assert.Equal(t, 1, applied)
	assert.Equal(t, "{ int x; x = 1; x += k; return x; }", tree.Render(tr, tr.Root()))
}

func TestReport(t *testing.T) {
	t.Parallel()

	tr := decodeGolden(t, "if_return.txtar")
	issues := NewEngine(nil).Report("test.yaml", tr)
	require.Len(t, issues, 1)

	issue := issues[0]
	assert.Equal(t, rules.IfReturnName, issue.Rule)
	assert.Equal(t, "test.yaml", issue.Filename)
	assert.Equal(t, "if (a) return true; return false;", issue.Original)
	assert.Equal(t, "return a;", issue.Suggestion)
	assert.Equal(t, tt.SeverityWarning, issue.Severity)
	assert.Equal(t, 2, issue.Start.Line)
	assert.Equal(t, 5, issue.Start.Column)
	assert.Equal(t, 3, issue.End.Line)

	// reporting leaves the tree alone
	assert.Equal(t, "{ if (a) return true; return false; }", tree.Render(tr, tr.Root()))
}

func TestEngine_Run(t *testing.T) {
	t.Parallel()

	input, _ := loadGolden(t, "assign_if.txtar")
	path := filepath.Join(createTempDir(t, "engine_run"), "doc.yaml")
	require.NoError(t, os.WriteFile(path, input, 0o644))

	engine := NewEngine(nil)
	issues, err := engine.Run(path)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, rules.AssignIfName, issues[0].Rule)
	assert.Equal(t, "int x = a ? 5 : 3;", issues[0].Suggestion)

	_, err = engine.Run(filepath.Join(filepath.Dir(path), "missing.yaml"))
	assert.Error(t, err)
}

func TestEngine_RunSource(t *testing.T) {
	t.Parallel()

	engine := NewEngine(nil)
	issues, err := engine.RunSource([]byte("block:\n  - decl: {type: int, vars: [x]}\n  - expr: {assign: {target: x, value: 1}}\n"))
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "int x; x = 1;", issues[0].Original)
	assert.Equal(t, "int x = 1;", issues[0].Suggestion)

	_, err = engine.RunSource([]byte("loop: {}"))
	assert.True(t, errors.Is(err, treeio.ErrBadDocument), "got %v", err)
}

func TestEngine_RunSourceNolint(t *testing.T) {
	t.Parallel()

	engine := NewEngine(nil)
	issues, err := engine.RunSource([]byte(`block:
  - if: {cond: a, then: {return: true}}  # nolint:if-return
  - return: false
`))
	require.NoError(t, err)
	assert.Empty(t, issues)

	issues, err = engine.RunSource([]byte(`block:
  - if: {cond: a, then: {return: true}}  # nolint:assign-if
  - return: false
`))
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, rules.IfReturnName, issues[0].Rule)
}
