package lint

import (
	"context"
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/RonGatenio/Spartanizer/internal/rules"
	"github.com/RonGatenio/Spartanizer/internal/types"
)

func init() {
	Progress = nil
}

type mockLintEngine struct {
	mock.Mock
}

func (m *mockLintEngine) Run(filePath string) ([]types.Issue, error) {
	args := m.Called(filePath)
	return args.Get(0).([]types.Issue), args.Error(1)
}

func (m *mockLintEngine) RunSource(source []byte) ([]types.Issue, error) {
	args := m.Called(source)
	return args.Get(0).([]types.Issue), args.Error(1)
}

func (m *mockLintEngine) IgnoreRule(rule string) {
	m.Called(rule)
}

func setupMockEngine(expectedIssues []types.Issue, filePath string) *mockLintEngine {
	mockEngine := new(mockLintEngine)
	mockEngine.On("Run", filePath).Return(expectedIssues, nil)
	return mockEngine
}

func setupSourceMockEngine(expectedIssues []types.Issue, content []byte) *mockLintEngine {
	mockEngine := new(mockLintEngine)
	mockEngine.On("RunSource", content).Return(expectedIssues, nil)
	return mockEngine
}

func TestProcessFile(t *testing.T) {
	t.Parallel()
	expectedIssues := []types.Issue{
		{
			Rule:     "test-rule",
			Filename: "test.yaml",
			Start:    token.Position{Filename: "test.yaml", Line: 1, Column: 1},
			End:      token.Position{Filename: "test.yaml", Line: 2, Column: 3},
			Message:  "Test issue",
		},
	}
	mockEngine := setupMockEngine(expectedIssues, "test.yaml")

	issues, err := ProcessFile(mockEngine, "test.yaml")

	assert.NoError(t, err)
	assert.Equal(t, expectedIssues, issues)
	mockEngine.AssertExpectations(t)
}

func TestProcessSource(t *testing.T) {
	t.Parallel()
	expectedIssues := []types.Issue{
		{
			Rule:    "test-rule",
			Start:   token.Position{Line: 1, Column: 1},
			End:     token.Position{Line: 1, Column: 11},
			Message: "Test issue",
		},
	}
	mockEngine := setupSourceMockEngine(expectedIssues, []byte("return: a"))

	issues, err := ProcessSource(mockEngine, []byte("return: a"))

	assert.NoError(t, err)
	assert.Equal(t, expectedIssues, issues)
	mockEngine.AssertExpectations(t)
}

func TestProcessPath(t *testing.T) {
	t.Parallel()
	logger, _ := zap.NewDevelopment()
	ctx := context.Background()

	tempDir := t.TempDir()
	paths := createTempFiles(t, tempDir, "test1.yaml", "test2.yml", "notes.txt")

	expectedIssues := []types.Issue{
		{Rule: "rule1", Filename: paths[0], Message: "Test issue 1"},
		{Rule: "rule2", Filename: paths[1], Message: "Test issue 2"},
	}

	mockEngine := new(mockLintEngine)
	mockEngine.On("Run", paths[0]).Return([]types.Issue{expectedIssues[0]}, nil)
	mockEngine.On("Run", paths[1]).Return([]types.Issue{expectedIssues[1]}, nil)

	issues, err := ProcessPath(ctx, logger, mockEngine, tempDir, ProcessFile)

	assert.NoError(t, err)
	assert.Equal(t, expectedIssues, issues)
	mockEngine.AssertExpectations(t)
	mockEngine.AssertNotCalled(t, "Run", paths[2])
}

func TestProcessFiles(t *testing.T) {
	t.Parallel()
	logger, _ := zap.NewDevelopment()
	ctx := context.Background()

	tempDir := t.TempDir()
	paths := createTempFiles(t, tempDir, "test1.yaml", "test2.yaml")

	expectedIssues := []types.Issue{
		{Rule: "rule1", Filename: paths[0], Message: "Test issue 1"},
		{Rule: "rule2", Filename: paths[1], Message: "Test issue 2"},
	}

	mockEngine := new(mockLintEngine)
	mockEngine.On("Run", paths[0]).Return([]types.Issue{expectedIssues[0]}, nil)
	mockEngine.On("Run", paths[1]).Return([]types.Issue{expectedIssues[1]}, nil)

	issues, err := ProcessFiles(ctx, logger, mockEngine, paths, ProcessFile)

	assert.NoError(t, err)
	assert.Len(t, issues, 2)
	assert.Contains(t, issues, expectedIssues[0])
	assert.Contains(t, issues, expectedIssues[1])
	mockEngine.AssertExpectations(t)
}

func TestProcessSources(t *testing.T) {
	t.Parallel()
	logger, _ := zap.NewDevelopment()
	ctx := context.Background()

	expectedIssues := []types.Issue{
		{Rule: "rule1", Message: "Test issue 1"},
		{Rule: "rule2", Message: "Test issue 2"},
	}

	mockEngine := new(mockLintEngine)
	mockEngine.On("RunSource", []byte("return: a")).Return([]types.Issue{expectedIssues[0]}, nil)
	mockEngine.On("RunSource", []byte("return: b")).Return([]types.Issue{expectedIssues[1]}, nil)

	issues, err := ProcessSources(ctx, logger, mockEngine, [][]byte{[]byte("return: a"), []byte("return: b")}, ProcessSource)

	assert.NoError(t, err)
	assert.Equal(t, expectedIssues, issues)
	mockEngine.AssertExpectations(t)
}

func TestIsDocument(t *testing.T) {
	t.Parallel()
	tests := []struct {
		path string
		want bool
	}{
		{"test.yaml", true},
		{"test.yml", true},
		{"dir/.spartan.yaml", false},
		{"test.txt", false},
		{"test", false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, IsDocument(tc.path), tc.path)
	}
}

func TestParseConfigurationFile(t *testing.T) {
	t.Parallel()
	tempDir := t.TempDir()

	path := filepath.Join(tempDir, DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(`name: project
rules:
  not-pushdown:
    severity: off
  if-return:
    severity: error
max_passes: 7
verify: true
`), 0o644))

	config, err := ParseConfigurationFile(path)
	require.NoError(t, err)
	assert.Equal(t, "project", config.Name)
	assert.Equal(t, 7, config.MaxPasses)
	assert.True(t, config.Verify)
	assert.Equal(t, types.SeverityOff, config.Rules[rules.NotPushdownName].Severity)
	assert.Equal(t, types.SeverityError, config.Rules[rules.IfReturnName].Severity)

	engine, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, 7, engine.MaxPasses)
}

func TestParseConfigurationFileErrors(t *testing.T) {
	t.Parallel()
	tempDir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"unknown field", "name: x\nfrobnicate: true\n"},
		{"bad severity", "rules:\n  if-return:\n    severity: loud\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(tempDir, tc.name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o644))
			_, err := ParseConfigurationFile(path)
			assert.Error(t, err)
		})
	}

	_, err := New(filepath.Join(tempDir, "missing.yaml"))
	assert.Error(t, err)
}

func TestParseEmptyConfigurationFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	config, err := ParseConfigurationFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)
}

func createTempFiles(t *testing.T, dir string, fileNames ...string) []string {
	t.Helper()
	paths := make([]string, 0, len(fileNames))
	for _, fileName := range fileNames {
		filePath := filepath.Join(dir, fileName)
		f, err := os.Create(filePath)
		require.NoError(t, err)
		require.NoError(t, f.Close())
		paths = append(paths, filePath)
	}
	return paths
}

func TestDocuments(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	for _, name := range []string{
		"b.yaml",
		"a.yml",
		"notes.txt",
		DefaultConfigFile,
		"skip_me.yaml",
		filepath.Join("sub", "c.yaml"),
		filepath.Join(".hidden", "d.yaml"),
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("block: []\n"), 0o644))
	}

	docs, err := Documents(dir, "skip_*")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.yml"),
		filepath.Join(dir, "b.yaml"),
		filepath.Join(dir, "sub", "c.yaml"),
	}, docs)

	_, err = Documents(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestParseConfigurationFileLog(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	content := `name: spartan
log:
  filename: spartan.log
  level: debug
  max_size: 10
  compress: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err := ParseConfigurationFile(path)
	require.NoError(t, err)
	assert.Equal(t, LogConfig{Filename: "spartan.log", Level: "debug", MaxSize: 10, Compress: true}, config.Log)
}
