package lint

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RonGatenio/Spartanizer/internal/rules"
	tt "github.com/RonGatenio/Spartanizer/internal/types"
)

// ternaryDoc holds one if-else-ternary opportunity for the variable name.
func ternaryDoc(name string) string {
	return fmt.Sprintf(`block:
  - decl: {type: int, vars: [%[1]s]}
  - if:
      cond: a
      then: {expr: {assign: {target: %[1]s, value: 1}}}
      else: {expr: {assign: {target: %[1]s, value: 2}}}
  - return: %[1]s
`, name)
}

func TestProcessPathContextCancellation(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	for i := 0; i < 10; i++ {
		filename := filepath.Join(tempDir, fmt.Sprintf("doc%d.yaml", i))
		require.NoError(t, os.WriteFile(filename, []byte(ternaryDoc("x")), 0o644))
	}

	engine, err := New("")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	issues, err := ProcessPath(ctx, nil, engine, tempDir, ProcessFile)

	assert.ErrorIs(t, err, context.Canceled)
	assert.NotNil(t, issues)
}

func TestFileResultOrdering(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	for i := 0; i < 5; i++ {
		filename := filepath.Join(tempDir, fmt.Sprintf("doc%d.yaml", i))
		require.NoError(t, os.WriteFile(filename, []byte(ternaryDoc(fmt.Sprintf("v%d", i))), 0o644))
	}

	engine, err := New("")
	require.NoError(t, err)

	issues, err := ProcessPath(context.Background(), nil, engine, tempDir, ProcessFile)
	require.NoError(t, err)
	require.Len(t, issues, 5)

	for i, issue := range issues {
		assert.Equal(t, filepath.Join(tempDir, fmt.Sprintf("doc%d.yaml", i)), issue.Filename)
		assert.Equal(t, rules.IfElseTernaryName, issue.Rule)
		assert.Equal(t, fmt.Sprintf("int v%[1]d = a ? 1 : 2;", i), issue.Suggestion)
	}
}

func TestConcurrentProcessingWithErrors(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	for i := 0; i < 3; i++ {
		filename := filepath.Join(tempDir, fmt.Sprintf("valid%d.yaml", i))
		require.NoError(t, os.WriteFile(filename, []byte(ternaryDoc("x")), 0o644))
	}
	invalidFile := filepath.Join(tempDir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalidFile, []byte("loop: forever\n"), 0o644))

	engine, err := New("")
	require.NoError(t, err)

	issues, err := ProcessPath(context.Background(), nil, engine, tempDir, ProcessFile)

	assert.Error(t, err, "Should return error from failed file")
	assert.Contains(t, err.Error(), "invalid.yaml")
	assert.Len(t, issues, 3, "Should keep the issues of the valid files")
}

func TestErrorPropagationSingleFile(t *testing.T) {
	t.Parallel()

	invalidFile := filepath.Join(t.TempDir(), "invalid.yaml")
	require.NoError(t, os.WriteFile(invalidFile, []byte("if: [not, a, mapping]\n"), 0o644))

	engine, err := New("")
	require.NoError(t, err)

	issues, err := ProcessPath(context.Background(), nil, engine, invalidFile, ProcessFile)

	assert.Error(t, err)
	assert.Equal(t, []tt.Issue{}, issues)
}

func TestProcessPathSkipsConfiguration(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, DefaultConfigFile), []byte("name: spartan\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "doc.yaml"), []byte(ternaryDoc("x")), 0o644))

	engine, err := New(filepath.Join(tempDir, DefaultConfigFile))
	require.NoError(t, err)

	issues, err := ProcessPath(context.Background(), nil, engine, tempDir, ProcessFile)
	require.NoError(t, err)
	assert.Len(t, issues, 1)
}
