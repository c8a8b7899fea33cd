package internal

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	tt "github.com/RonGatenio/Spartanizer/internal/types"
)

const defaultDebounce = 100 * time.Millisecond

// Watcher re-scans tree documents when they are written.
type Watcher struct {
	engine  *Engine
	watcher *fsnotify.Watcher
	dirs    []string
	logger  *zap.Logger

	// Match selects the files to scan; by default .yaml and .yml files.
	Match func(path string) bool
	// Debounce groups the events of one file arriving within the interval.
	Debounce time.Duration
	// Report receives the issues of every scanned file.
	Report func(filename string, issues []tt.Issue)

	mu      sync.Mutex
	pending map[string]*time.Timer
	ready   chan string
	done    chan struct{}
}

func NewWatcher(engine *Engine, logger *zap.Logger, dirs ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error creating watcher: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &Watcher{
		engine:   engine,
		watcher:  fw,
		dirs:     dirs,
		logger:   logger,
		Debounce: defaultDebounce,
		pending:  make(map[string]*time.Timer),
		ready:    make(chan string, 16),
		done:     make(chan struct{}),
	}
	w.Match = isDocument
	w.Report = w.logIssues
	return w, nil
}

func isDocument(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".yaml" || ext == ".yml"
}

// Watch blocks until ctx is done, scanning every matching file written below
// the watched directories. A Watcher can watch only once.
func (w *Watcher) Watch(ctx context.Context) error {
	defer w.stop()

	for _, dir := range w.dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return w.watcher.Add(path)
		})
		if err != nil {
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleFileEvent(event)
		case filename := <-w.ready:
			w.scan(filename)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	close(w.done)
	for name, timer := range w.pending {
		timer.Stop()
		delete(w.pending, name)
	}
	if err := w.watcher.Close(); err != nil {
		w.logger.Warn("error closing watcher", zap.Error(err))
	}
}

func (w *Watcher) handleFileEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if !w.Match(event.Name) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.pending[event.Name]; ok {
		timer.Reset(w.Debounce)
		return
	}
	name := event.Name
	w.pending[name] = time.AfterFunc(w.Debounce, func() {
		w.mu.Lock()
		delete(w.pending, name)
		w.mu.Unlock()
		select {
		case w.ready <- name:
		case <-w.done:
		}
	})
}

func (w *Watcher) scan(filename string) {
	issues, err := w.engine.Run(filename)
	if err != nil {
		w.logger.Error("error scanning file", zap.String("file", filename), zap.Error(err))
		return
	}
	w.Report(filename, issues)
}

func (w *Watcher) logIssues(filename string, issues []tt.Issue) {
	if len(issues) == 0 {
		w.logger.Info("no issues found", zap.String("file", filename))
		return
	}

	w.logger.Info("found issues", zap.String("file", filename), zap.Int("count", len(issues)))
	for _, issue := range issues {
		w.logger.Info("issue", zap.String("rule", issue.Rule), zap.String("message", issue.Message))
	}
}
