package contentfile

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	appcontent "github.com/portfolio/backend/internal/application/content"
	"go.uber.org/zap"
)

const defaultDebounce = 500 * time.Millisecond

// Importer applies a loaded bundle
type Importer interface {
	Import(ctx context.Context, posts []appcontent.ImportPost, projects []appcontent.ImportProject) (*appcontent.ImportResult, error)
}

// Sync loads dir and hands the result to importer
func Sync(ctx context.Context, dir string, importer Importer) (*appcontent.ImportResult, error) {
	b, err := Load(dir)
	if err != nil {
		return nil, err
	}
	return importer.Import(ctx, b.Posts, b.Projects)
}

// Watcher re-imports the content directory whenever a YAML file changes.
// Bursts of events are coalesced into a single import.
type Watcher struct {
	dir      string
	importer Importer
	logger   *zap.Logger
	debounce time.Duration

	mu      sync.Mutex
	imports int
}

// NewWatcher creates a watcher for dir. It does nothing until Run is called.
func NewWatcher(dir string, importer Importer, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		dir:      dir,
		importer: importer,
		logger:   logger,
		debounce: defaultDebounce,
	}
}

// WithDebounce overrides the quiet period before an import runs
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	if d > 0 {
		w.debounce = d
	}
	return w
}

// Run imports once, then watches until ctx is cancelled
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	for _, d := range []string{w.dir, filepath.Join(w.dir, postsDir), filepath.Join(w.dir, projectsDir)} {
		if err := fsw.Add(d); err != nil {
			if d == w.dir {
				return err
			}
			w.logger.Warn("Content subdirectory not watched", zap.String("dir", d), zap.Error(err))
		}
	}

	w.sync(ctx)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	w.logger.Info("Watching content directory", zap.String("dir", w.dir))
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if w.handleEvent(fsw, event) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Content watcher error", zap.Error(err))

		case <-timer.C:
			w.sync(ctx)
		}
	}
}

// handleEvent reports whether the event should trigger an import
func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	// posts/ or projects/ created after startup
	if event.Op&fsnotify.Create != 0 && filepath.Dir(event.Name) == filepath.Clean(w.dir) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := fsw.Add(event.Name); err != nil {
				w.logger.Warn("Failed to watch new directory", zap.String("dir", event.Name), zap.Error(err))
			}
			return true
		}
	}
	if !isYAML(filepath.Base(event.Name)) {
		return false
	}
	w.logger.Debug("Content file changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
	return true
}

func (w *Watcher) sync(ctx context.Context) {
	res, err := Sync(ctx, w.dir, w.importer)
	if err != nil {
		w.logger.Error("Content import failed", zap.String("dir", w.dir), zap.Error(err))
		return
	}
	w.mu.Lock()
	w.imports++
	w.mu.Unlock()
	w.logger.Info("Content imported",
		zap.Int("posts_created", res.PostsCreated),
		zap.Int("posts_updated", res.PostsUpdated),
		zap.Int("projects_created", res.ProjectsCreated),
		zap.Int("projects_updated", res.ProjectsUpdated))
}

// Imports returns the number of successful imports so far
func (w *Watcher) Imports() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.imports
}
