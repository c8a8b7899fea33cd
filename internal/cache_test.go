package internal

import (
	"go/token"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RonGatenio/Spartanizer/internal/rules"
	tt "github.com/RonGatenio/Spartanizer/internal/types"
)

func testIssues(filename string) []tt.Issue {
	return []tt.Issue{
		{
			Rule:       "test-rule",
			Category:   "test-category",
			Filename:   filename,
			Message:    "test issue",
			Original:   "if (a) return true; return false;",
			Suggestion: "return a;",
			Start:      token.Position{Line: 2, Column: 5, Filename: filename},
			End:        token.Position{Line: 3, Column: 5, Filename: filename},
			Severity:   tt.SeverityWarning,
		},
	}
}

func writeTestFile(t *testing.T, filename string, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filename, []byte(content), 0o644))
}

func TestCache(t *testing.T) {
	t.Parallel()
	tmpDir := createTempDir(t, "cache-test")

	cacheDir := filepath.Join(tmpDir, "cache")
	cache, err := NewCache(cacheDir)
	require.NoError(t, err)

	t.Run("SaveAndLoad", func(t *testing.T) {
		filename := filepath.Join(tmpDir, "test.yaml")
		writeTestFile(t, filename, "return: a\n")
		issues := testIssues(filename)

		require.NoError(t, cache.Set(filename, "fp", issues))

		loadedIssues, found := cache.Get(filename, "fp")
		assert.True(t, found)
		assert.Equal(t, issues, loadedIssues)

		// a second cache over the same directory reads the saved entries
		reopened, err := NewCache(cacheDir)
		require.NoError(t, err)
		loadedIssues, found = reopened.Get(filename, "fp")
		assert.True(t, found)
		assert.Equal(t, issues, loadedIssues)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, found := cache.Get("nonexistent.yaml", "fp")
		assert.False(t, found)
	})

	t.Run("FileModified", func(t *testing.T) {
		filename := filepath.Join(tmpDir, "modified.yaml")
		writeTestFile(t, filename, "return: a\n")
		require.NoError(t, cache.Set(filename, "fp", testIssues(filename)))

		writeTestFile(t, filename, "return: b\n")

		_, found := cache.Get(filename, "fp")
		assert.False(t, found)
	})

	t.Run("FingerprintChanged", func(t *testing.T) {
		filename := filepath.Join(tmpDir, "fingerprint.yaml")
		writeTestFile(t, filename, "return: a\n")
		require.NoError(t, cache.Set(filename, "fp", testIssues(filename)))

		_, found := cache.Get(filename, "other")
		assert.False(t, found)
	})

	t.Run("Expired", func(t *testing.T) {
		filename := filepath.Join(tmpDir, "expired.yaml")
		writeTestFile(t, filename, "return: a\n")
		require.NoError(t, cache.Set(filename, "fp", testIssues(filename)))

		cache.SetMaxAge(time.Nanosecond)
		time.Sleep(time.Millisecond)
		_, found := cache.Get(filename, "fp")
		assert.False(t, found)
		cache.SetMaxAge(DefaultCacheMaxAge)
	})

	t.Run("InvalidateAll", func(t *testing.T) {
		filename := filepath.Join(tmpDir, "invalidate.yaml")
		writeTestFile(t, filename, "return: a\n")
		require.NoError(t, cache.Set(filename, "fp", testIssues(filename)))

		require.NoError(t, cache.InvalidateAll())
		assert.Zero(t, cache.Len())
	})
}

func TestCacheDependencies(t *testing.T) {
	t.Parallel()
	tmpDir := createTempDir(t, "cache-deps-test")

	config := filepath.Join(tmpDir, ".spartan.yaml")
	writeTestFile(t, config, "name: spartan\n")
	filename := filepath.Join(tmpDir, "doc.yaml")
	writeTestFile(t, filename, "return: a\n")

	cacheDir := filepath.Join(tmpDir, "cache")
	cache, err := NewCache(cacheDir, config)
	require.NoError(t, err)
	require.NoError(t, cache.Set(filename, "fp", testIssues(filename)))

	reopened, err := NewCache(cacheDir, config)
	require.NoError(t, err)
	_, found := reopened.Get(filename, "fp")
	assert.True(t, found)

	writeTestFile(t, config, "name: spartan\nmax_passes: 3\n")
	reopened, err = NewCache(cacheDir, config)
	require.NoError(t, err)
	_, found = reopened.Get(filename, "fp")
	assert.False(t, found, "a changed dependency invalidates the entries")

	_, err = NewCache(cacheDir, filepath.Join(tmpDir, "missing.yaml"))
	assert.Error(t, err)
}

func TestCacheWithEngine(t *testing.T) {
	t.Parallel()
	tmpDir := createTempDir(t, "cache-engine-test")

	cache, err := NewCache(filepath.Join(tmpDir, "cache"))
	require.NoError(t, err)
	engine := NewEngine(nil, WithCache(cache))

	input, _ := loadGolden(t, "if_return.txtar")
	filename := filepath.Join(tmpDir, "doc.yaml")
	writeTestFile(t, filename, string(input))

	t.Run("CacheHit", func(t *testing.T) {
		issues, err := engine.Run(filename)
		require.NoError(t, err)
		require.Len(t, issues, 1)
		assert.Equal(t, 1, cache.Len())

		cachedIssues, err := engine.Run(filename)
		require.NoError(t, err)
		assert.Equal(t, issues, cachedIssues)
	})

	t.Run("CacheMissAfterIgnore", func(t *testing.T) {
		other := NewEngine(nil, WithCache(cache))
		other.IgnoreRule(rules.IfReturnName)

		issues, err := other.Run(filename)
		require.NoError(t, err)
		assert.Empty(t, issues)
	})

	t.Run("CacheMissAfterEdit", func(t *testing.T) {
		writeTestFile(t, filename, "block:\n  - return: a\n")

		issues, err := engine.Run(filename)
		require.NoError(t, err)
		assert.Empty(t, issues)
	})
}

func TestCacheConcurrency(t *testing.T) {
	t.Parallel()
	tempDir := createTempDir(t, "cache-concurrency-test")

	cache, err := NewCache(filepath.Join(tempDir, "cache"))
	require.NoError(t, err)

	testFile := filepath.Join(tempDir, "test.yaml")
	writeTestFile(t, testFile, "return: a\n")
	issues := testIssues(testFile)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, cache.Set(testFile, "fp", issues))
		}()
		go func() {
			defer wg.Done()
			_, _ = cache.Get(testFile, "fp")
		}()
	}
	wg.Wait()

	got, found := cache.Get(testFile, "fp")
	assert.True(t, found)
	assert.Equal(t, issues, got)
}
