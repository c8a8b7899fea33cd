package lint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/RonGatenio/Spartanizer/internal"
	tt "github.com/RonGatenio/Spartanizer/internal/types"
	"github.com/RonGatenio/Spartanizer/scanner"
)

const maxShowRecentFiles = 25

// DefaultConfigFile is the configuration file looked up when none is given.
const DefaultConfigFile = ".spartan.yaml"

var tracer = otel.Tracer("github.com/RonGatenio/Spartanizer/lint")

// Progress receives the progress bar and the recent files display while a
// directory is processed. A nil Progress disables both.
var Progress io.Writer = os.Stderr

type LintEngine interface {
	Run(filePath string) ([]tt.Issue, error)
	RunSource(source []byte) ([]tt.Issue, error)
	IgnoreRule(rule string)
}

// New creates a rewrite engine configured by the file at configurationPath.
// An empty path uses DefaultConfig.
func New(configurationPath string, opts ...internal.Option) (*internal.Engine, error) {
	config := DefaultConfig()
	if configurationPath != "" {
		var err error
		if config, err = ParseConfigurationFile(configurationPath); err != nil {
			return nil, err
		}
	}
	return NewWithConfig(config, opts...), nil
}

// NewWithConfig creates a rewrite engine from an already decoded configuration.
func NewWithConfig(config Config, opts ...internal.Option) *internal.Engine {
	if config.MaxPasses > 0 {
		opts = append(opts, internal.WithMaxPasses(config.MaxPasses))
	}
	return internal.NewEngine(config.Rules, opts...)
}

func ProcessSources(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	sources [][]byte,
	processor func(LintEngine, []byte) ([]tt.Issue, error),
) ([]tt.Issue, error) {
	var allIssues []tt.Issue
	for i, source := range sources {
		if err := ctx.Err(); err != nil {
			return allIssues, err
		}
		issues, err := processor(engine, source)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing source", zap.Int("source", i), zap.Error(err))
			}
			return nil, err
		}
		allIssues = append(allIssues, issues...)
	}

	return allIssues, nil
}

func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	paths []string,
	processor func(LintEngine, string) ([]tt.Issue, error),
) ([]tt.Issue, error) {
	var allIssues []tt.Issue
	for _, path := range paths {
		issues, err := ProcessPath(ctx, logger, engine, path, processor)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			return allIssues, err
		}
		allIssues = append(allIssues, issues...)
	}

	return allIssues, nil
}

// ProcessPath runs processor over path, or over every tree document below
// it when path is a directory. Failing files do not stop the others; their
// errors are joined into the returned error next to the issues of the rest.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	path string,
	processor func(LintEngine, string) ([]tt.Issue, error),
) ([]tt.Issue, error) {
	ctx, span := tracer.Start(ctx, "lint.ProcessPath", trace.WithAttributes(attribute.String("path", path)))
	defer span.End()

	info, err := os.Stat(path)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	if !info.IsDir() {
		issues := []tt.Issue{}
		if !IsDocument(path) {
			return issues, nil
		}
		fileIssues, err := processFile(ctx, engine, path, processor)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return issues, err
		}
		return append(issues, fileIssues...), nil
	}

	found, err := Documents(path)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("files", len(found)))

	display := newProgress(path, len(found))

	results := make([][]tt.Issue, len(found))
	errs := make([]error, len(found))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, file := range found {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			display.start(filepath.Base(file))
			defer display.done()

			fileIssues, err := processFile(ctx, engine, file, processor)
			if err != nil {
				if logger != nil {
					logger.Error("Error processing file", zap.String("file", file), zap.Error(err))
				}
				errs[i] = err
				return nil
			}
			results[i] = fileIssues
			return nil
		})
	}
	_ = g.Wait()
	display.finish()

	issues := []tt.Issue{}
	for _, r := range results {
		issues = append(issues, r...)
	}
	if err := ctx.Err(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return issues, err
	}
	if err := errors.Join(errs...); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return issues, err
	}
	return issues, nil
}

func processFile(
	ctx context.Context,
	engine LintEngine,
	path string,
	processor func(LintEngine, string) ([]tt.Issue, error),
) ([]tt.Issue, error) {
	_, span := tracer.Start(ctx, "lint.ProcessFile", trace.WithAttributes(attribute.String("file", path)))
	defer span.End()

	issues, err := processor(engine, path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("issues", len(issues)))
	return issues, nil
}

// progress shows a bar and the most recently started files.
type progress struct {
	out         io.Writer
	bar         *progressbar.ProgressBar
	mu          sync.Mutex
	recentFiles []string
}

func newProgress(path string, total int) *progress {
	p := &progress{out: Progress}
	if p.out == nil {
		return p
	}
	p.recentFiles = make([]string, maxShowRecentFiles)

	// make space for recent files
	for range maxShowRecentFiles + 1 {
		fmt.Fprintln(p.out)
	}
	fmt.Fprintf(p.out, "\033[%dA", maxShowRecentFiles+1)

	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription(path),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
	return p
}

func (p *progress) start(filename string) {
	if p.out == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	copy(p.recentFiles[1:], p.recentFiles[:maxShowRecentFiles-1])
	p.recentFiles[0] = filename

	// move the cursor up, then redraw the list
	fmt.Fprintf(p.out, "\033[%dA", maxShowRecentFiles)
	for _, f := range p.recentFiles {
		// \033[2K clears the line, \r moves to its beginning
		fmt.Fprintf(p.out, "\033[2K\r%s\n", f)
	}
}

func (p *progress) done() {
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

func (p *progress) finish() {
	if p.out != nil {
		fmt.Fprintln(p.out)
	}
}

func ProcessFile(engine LintEngine, filePath string) ([]tt.Issue, error) {
	return engine.Run(filePath)
}

func ProcessSource(engine LintEngine, source []byte) ([]tt.Issue, error) {
	return engine.RunSource(source)
}

var desiredExtensions = map[string]bool{
	".yaml": true,
	".yml":  true,
}

// IsDocument reports whether path names a tree document.
func IsDocument(path string) bool {
	return desiredExtensions[filepath.Ext(path)] && filepath.Base(path) != DefaultConfigFile
}

// Documents lists the tree documents below dir in lexical order, leaving
// out hidden directories and configuration files. Extra ignore patterns are
// matched against base names.
func Documents(dir string, ignore ...string) ([]string, error) {
	scanned, err := scanner.New(dir, extensions()...).Ignore(ignore...).Scan()
	if err != nil {
		return nil, fmt.Errorf("error walking %s: %w", dir, err)
	}
	docs := make([]string, 0, len(scanned))
	for _, file := range scanned {
		if IsDocument(file.Path) {
			docs = append(docs, file.Path)
		}
	}
	return docs, nil
}

func extensions() []string {
	exts := make([]string, 0, len(desiredExtensions))
	for ext := range desiredExtensions {
		exts = append(exts, ext)
	}
	return exts
}

// Config represents the configuration file.
type Config struct {
	Name  string                   `yaml:"name"`
	Rules map[string]tt.ConfigRule `yaml:"rules"`
	// MaxPasses caps the fixed-point iteration; zero derives the cap from
	// the size of each tree.
	MaxPasses int `yaml:"max_passes,omitempty"`
	// Verify makes fix refuse results the truth-table check rejects.
	Verify bool `yaml:"verify,omitempty"`
	// Log configures the log file of the command line tool.
	Log LogConfig `yaml:"log,omitempty"`
}

// LogConfig describes the rotated log file.
type LogConfig struct {
	Filename   string `yaml:"filename,omitempty"`
	Level      string `yaml:"level,omitempty"`
	MaxSize    int    `yaml:"max_size,omitempty"`
	MaxBackups int    `yaml:"max_backups,omitempty"`
	MaxAge     int    `yaml:"max_age,omitempty"`
	Compress   bool   `yaml:"compress,omitempty"`
}

// DefaultConfig enables every rule at its default severity.
func DefaultConfig() Config {
	return Config{
		Name:  "spartan",
		Rules: map[string]tt.ConfigRule{},
	}
}

func ParseConfigurationFile(configurationPath string) (Config, error) {
	config := DefaultConfig()

	f, err := os.Open(configurationPath)
	if err != nil {
		return config, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return config, fmt.Errorf("error parsing %s: %w", configurationPath, err)
	}
	if config.Rules == nil {
		config.Rules = map[string]tt.ConfigRule{}
	}

	return config, nil
}
