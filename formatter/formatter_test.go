package formatter

import (
	"go/token"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/RonGatenio/Spartanizer/internal"
	"github.com/RonGatenio/Spartanizer/internal/rules"
	tt "github.com/RonGatenio/Spartanizer/internal/types"
)

func init() {
	color.NoColor = true
}

func TestFormatRewrite(t *testing.T) {
	t.Parallel()
	code := &internal.SourceCode{
		Lines: []string{
			"block:",
			"  - if: {cond: a, then: {return: true}}",
			"  - return: false",
		},
	}

	issues := []tt.Issue{
		{
			Rule:       rules.IfReturnName,
			Filename:   "test.yaml",
			Start:      token.Position{Line: 2, Column: 5},
			End:        token.Position{Line: 3, Column: 5},
			Message:    "return the condition",
			Original:   "if (a) return true; return false;",
			Suggestion: "return a;",
			Severity:   tt.SeverityWarning,
		},
	}

	expected := `warning: if-return
 --> test.yaml:2:5
  |
2 | - if: {cond: a, then: {return: true}}
3 | - return: false
  |
  = return the condition
Before:
  | if (a) return true; return false;
After:
  | return a;

`

	assert.Equal(t, expected, GenerateFormattedIssue(issues, code))
}

func TestFormatRemovalAndNote(t *testing.T) {
	t.Parallel()
	lines := make([]string, 12)
	for i := range lines {
		lines[i] = "  - empty: ~"
	}
	lines[9] = "  - block:"
	lines[10] = "      - decl: {type: int, vars: [{t: 0}]}"
	code := &internal.SourceCode{Lines: lines}

	issues := []tt.Issue{
		{
			Rule:     rules.BlockDeclarationsName,
			Filename: "test.yaml",
			Start:    token.Position{Line: 10, Column: 5},
			End:      token.Position{Line: 11, Column: 9},
			Message:  "remove the block of unused declarations",
			Original: "{ int t = 0; }",
			Note:     "the declared names are not visible outside the block",
			Severity: tt.SeverityInfo,
		},
	}

	expected := `info: block-declarations
  --> test.yaml:10:5
   |
10 | - block:
11 |     - decl: {type: int, vars: [{t: 0}]}
   |
   = remove the block of unused declarations
Remove:
   | { int t = 0; }
Note: the declared names are not visible outside the block

`

	assert.Equal(t, expected, GenerateFormattedIssue(issues, code))
}

func TestFormatOutOfRangeLines(t *testing.T) {
	t.Parallel()
	code := &internal.SourceCode{Lines: []string{"return: a"}}

	issues := []tt.Issue{
		{
			Rule:       rules.NotPushdownName,
			Filename:   "test.yaml",
			Start:      token.Position{Line: 4, Column: 1},
			End:        token.Position{Line: 5, Column: 1},
			Message:    "push the negation down",
			Suggestion: "return a;",
			Severity:   tt.SeverityError,
		},
	}

	expected := `error: not-pushdown
 --> test.yaml:4:1
  |
  |
  = push the negation down
After:
  | return a;

`

	assert.Equal(t, expected, GenerateFormattedIssue(issues, code))
}

func TestFindCommonIndent(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		lines    []string
		expected string
	}{
		{"no lines", nil, ""},
		{"spaces", []string{"    a", "  b", "      c"}, "  "},
		{"blank lines ignored", []string{"    a", "", "    b"}, "    "},
		{"no indent", []string{"a", "  b"}, ""},
		{"mixed tabs and spaces", []string{"\t a", "\t\tb"}, "\t"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, findCommonIndent(tc.lines))
		})
	}
}
