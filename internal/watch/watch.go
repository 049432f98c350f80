// Package watch re-analyses a project as its files change. Changed files
// get a single-file pass right away; whole-project checks run
// periodically once something changed.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yaklabco/poscheck/internal/logging"
	"github.com/yaklabco/poscheck/pkg/analyzer"
	"github.com/yaklabco/poscheck/pkg/check"
	"github.com/yaklabco/poscheck/pkg/config"
	"github.com/yaklabco/poscheck/pkg/fsutil"
	"github.com/yaklabco/poscheck/pkg/runner"
	"github.com/yaklabco/poscheck/pkg/session"
	"github.com/yaklabco/poscheck/pkg/storage"
)

// Defaults for Options.
const (
	DefaultDebounce        = 200 * time.Millisecond
	DefaultProjectInterval = 5 * time.Second
)

// Options configures a Watcher.
type Options struct {
	Root     string
	Config   *config.Config
	Registry *check.Registry

	// Out receives offense changes; nil discards them.
	Out   io.Writer
	Color string

	// Debounce is the quiet period before changed files are analysed.
	Debounce time.Duration

	// ProjectInterval is how often whole-project checks may run.
	ProjectInterval time.Duration
}

// Watcher mirrors a project into versioned storage and keeps a session
// of its offenses current.
type Watcher struct {
	root     string
	disk     *storage.FileSystem
	store    *storage.Versioned
	sess     *session.Session
	sel      *runner.Selection
	aopts    analyzer.Options
	printer  *Printer
	debounce time.Duration
	interval time.Duration

	mu           sync.Mutex
	pending      map[string]bool
	projectDirty bool
}

// New prepares a watcher. Nothing is read until Load or Run.
func New(opts Options) (*Watcher, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.NewConfig()
	}
	registry := opts.Registry
	if registry == nil {
		registry = check.DefaultRegistry
	}

	root, err := runner.ResolveRoot(opts.Root)
	if err != nil {
		return nil, err
	}
	sel, err := runner.NewSelection(cfg)
	if err != nil {
		return nil, err
	}
	aopts, err := runner.AnalyzerOptions(cfg, registry, sel)
	if err != nil {
		return nil, err
	}

	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	w := &Watcher{
		root:     root,
		disk:     storage.NewFileSystem(root),
		store:    storage.NewVersioned(),
		sess:     session.New(),
		sel:      sel,
		aopts:    aopts,
		printer:  NewPrinter(out, opts.Color),
		debounce: opts.Debounce,
		interval: opts.ProjectInterval,
		pending:  make(map[string]bool),
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.interval <= 0 {
		w.interval = DefaultProjectInterval
	}
	return w, nil
}

// Session returns the session holding the current offenses.
func (w *Watcher) Session() *session.Session { return w.sess }

// Storage returns the versioned mirror of the project.
func (w *Watcher) Storage() *storage.Versioned { return w.store }

// Load mirrors every project file into storage. Only files the
// selection loads carry content; the rest are recorded so references to
// them resolve.
func (w *Watcher) Load(ctx context.Context) error {
	for _, p := range w.disk.List(nil) {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("load cancelled: %w", err)
		}
		content, err := w.read(p)
		if err != nil {
			logging.FromContext(ctx).Warn("read failed", logging.FieldPath, p, logging.FieldError, err)
			continue
		}
		if err := w.store.Write(p, content); err != nil {
			return fmt.Errorf("store %s: %w", p, err)
		}
	}
	return nil
}

func (w *Watcher) read(p string) (string, error) {
	if !w.sel.Load(p) {
		return "", nil
	}
	return w.disk.Read(p)
}

// Refresh brings the stored copies of paths, and of anything below them
// when they are directories, in line with the disk. It returns the
// changed paths that need a single-file pass.
func (w *Watcher) Refresh(ctx context.Context, paths []string) []string {
	logger := logging.FromContext(ctx)

	var candidates []string
	for _, p := range paths {
		candidates = append(candidates, p)
		below := func(q string) bool { return strings.HasPrefix(q, p+"/") }
		candidates = append(candidates, w.store.List(below)...)
		if info, err := os.Stat(w.disk.Abs(p)); err == nil && info.IsDir() {
			candidates = append(candidates, w.disk.List(below)...)
		}
	}
	slices.Sort(candidates)
	candidates = slices.Compact(candidates)

	var changed []string
	for _, p := range candidates {
		if strings.HasSuffix(p, fsutil.BackupSuffix) {
			continue
		}
		if !w.disk.Exists(p) {
			if w.store.Exists(p) {
				w.sess.ForgetAt(p, w.store.Version(p))
				w.store.Remove(p)
				w.markProjectDirty()
				logger.Debug("file removed", logging.FieldPath, p)
			}
			continue
		}

		content, err := w.read(p)
		if err != nil {
			logger.Warn("read failed", logging.FieldPath, p, logging.FieldError, err)
			continue
		}
		if old, err := w.store.Read(p); err == nil && old == content {
			continue
		}
		switch gone := w.sess.Forgotten(p); {
		case w.store.Exists(p):
			if err := w.store.Write(p, content); err != nil {
				logger.Warn("store failed", logging.FieldPath, p, logging.FieldError, err)
				continue
			}
		case gone > 0:
			// A re-created path continues above the results of its
			// previous life.
			w.store.WriteVersion(p, content, gone+1)
			w.markProjectDirty()
		default:
			if err := w.store.Write(p, content); err != nil {
				logger.Warn("store failed", logging.FieldPath, p, logging.FieldError, err)
				continue
			}
			w.markProjectDirty()
		}
		if w.sel.Load(p) {
			changed = append(changed, p)
			w.markProjectDirty()
		}
	}
	return changed
}

// AnalyzeFiles runs the single-file pass over paths and publishes the
// changes.
func (w *Watcher) AnalyzeFiles(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	return w.analyze(ctx, func(a *analyzer.Analyzer) error {
		return a.AnalyzeFiles(ctx, paths, true)
	})
}

// AnalyzeProject runs both passes over the whole project and publishes
// the changes.
func (w *Watcher) AnalyzeProject(ctx context.Context) error {
	w.mu.Lock()
	w.projectDirty = false
	w.mu.Unlock()

	return w.analyze(ctx, func(a *analyzer.Analyzer) error {
		return a.AnalyzeProject(ctx)
	})
}

func (w *Watcher) analyze(ctx context.Context, run func(*analyzer.Analyzer) error) error {
	a := analyzer.New(w.store.Snapshot(), w.aopts.Instantiate(), w.aopts)
	if err := run(a); err != nil {
		return fmt.Errorf("analyze: %w", err)
	}
	res, err := a.Result()
	if err != nil {
		return fmt.Errorf("analysis result: %w", err)
	}

	updated := w.sess.RecordRun(res)
	logging.FromContext(ctx).Debug("run recorded",
		logging.FieldRunID, res.RunID,
		logging.FieldFiles, len(res.Paths),
		logging.FieldScope, scope(res),
		logging.FieldUpdated, updated,
	)
	w.printer.Print(w.sess.DiffSinceLastPublish())
	return nil
}

func scope(res *analyzer.Result) string {
	if res.ProjectPass {
		return "project"
	}
	return "files"
}

func (w *Watcher) markProjectDirty() {
	w.mu.Lock()
	w.projectDirty = true
	w.mu.Unlock()
}

func (w *Watcher) takeProjectDirty() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	dirty := w.projectDirty
	w.projectDirty = false
	return dirty
}

func (w *Watcher) queue(p string) {
	w.mu.Lock()
	w.pending[p] = true
	w.mu.Unlock()
}

func (w *Watcher) takePending() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	clear(w.pending)
	slices.Sort(paths)
	return paths
}

// Run loads and analyses the project, then follows file changes until
// ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	logger := logging.FromContext(ctx).With(logging.FieldRoot, w.root)
	ctx = logging.WithLogger(ctx, logger)

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := w.addTree(fw, w.root); err != nil {
		return err
	}

	if err := w.Load(ctx); err != nil {
		return err
	}
	if err := w.AnalyzeProject(ctx); err != nil {
		return err
	}
	logger.Info("watching for changes")

	flush := make(chan struct{}, 1)
	debouncer := NewDebouncer(w.debounce)
	defer debouncer.Cancel()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.handle(ctx, fw, ev) {
				continue
			}
			debouncer.Trigger(func() {
				select {
				case flush <- struct{}{}:
				default:
				}
			})

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", logging.FieldError, err)

		case <-flush:
			changed := w.Refresh(ctx, w.takePending())
			if err := w.AnalyzeFiles(ctx, changed); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("analysis failed", logging.FieldError, err)
			}

		case <-ticker.C:
			if !w.takeProjectDirty() {
				continue
			}
			if err := w.AnalyzeProject(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("project analysis failed", logging.FieldError, err)
			}
		}
	}
}

// handle queues the project path of ev. It reports whether anything was
// queued.
func (w *Watcher) handle(ctx context.Context, fw *fsnotify.Watcher, ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	p, ok := w.disk.Rel(ev.Name)
	if !ok || p == "." || skipped(p) {
		return false
	}

	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(fw, ev.Name); err != nil {
				logging.FromContext(ctx).Warn("watch directory failed", logging.FieldPath, p, logging.FieldError, err)
			}
		}
	}

	w.queue(p)
	return true
}

// addTree watches dir and every directory below it.
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) error {
	err := filepath.WalkDir(dir, func(osPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if osPath != dir && slices.Contains(fsutil.DefaultSkipDirs(), d.Name()) {
			return filepath.SkipDir
		}
		return fw.Add(osPath)
	})
	if err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	return nil
}

func skipped(p string) bool {
	for part := range strings.SplitSeq(p, "/") {
		if slices.Contains(fsutil.DefaultSkipDirs(), part) {
			return true
		}
	}
	return false
}
