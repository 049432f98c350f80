package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/poscheck/internal/logging"
	"github.com/yaklabco/poscheck/pkg/fsutil"
)

// FileSystem is a Storage over a project directory. Paths are
// slash-separated and relative to Root.
type FileSystem struct {
	Root string

	walk   fsutil.WalkOptions
	backup fsutil.BackupConfig
	logger *log.Logger
}

// Option configures a FileSystem.
type Option func(*FileSystem)

// WithBackup makes Write keep a backup of the original content.
func WithBackup(cfg fsutil.BackupConfig) Option {
	return func(fs *FileSystem) { fs.backup = cfg }
}

// WithSkipDirs replaces the directories List never enters.
func WithSkipDirs(dirs []string) Option {
	return func(fs *FileSystem) { fs.walk.SkipDirs = dirs }
}

// WithLogger sets the logger used for listing failures.
func WithLogger(logger *log.Logger) Option {
	return func(fs *FileSystem) { fs.logger = logger }
}

// NewFileSystem returns a storage rooted at root.
func NewFileSystem(root string, opts ...Option) *FileSystem {
	fs := &FileSystem{
		Root:   root,
		walk:   fsutil.WalkOptions{SkipDirs: fsutil.DefaultSkipDirs()},
		logger: logging.Default(),
	}
	for _, opt := range opts {
		opt(fs)
	}
	return fs
}

// Abs returns the operating system path of a project path.
func (fs *FileSystem) Abs(p string) string {
	return filepath.Join(fs.Root, filepath.FromSlash(p))
}

// Rel converts an operating system path to a project path. It returns
// false for paths outside Root.
func (fs *FileSystem) Rel(osPath string) (string, bool) {
	rel, err := filepath.Rel(fs.Root, osPath)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return path.Clean(rel), true
}

func (fs *FileSystem) Read(p string) (string, error) {
	content, _, err := fsutil.ReadFile(context.Background(), fs.Abs(p))
	if err != nil {
		if errors.Is(err, fsutil.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, p)
		}
		return "", err
	}
	return normalize(string(content)), nil
}

func (fs *FileSystem) Write(p, content string) error {
	ctx := context.Background()
	abs := fs.Abs(p)

	if _, err := fsutil.CreateBackup(ctx, abs, fs.backup); err != nil {
		return fmt.Errorf("backup %s: %w", p, err)
	}
	if _, err := fsutil.WriteAtomicIfChanged(ctx, abs, []byte(content)); err != nil {
		return fmt.Errorf("write %s: %w", p, err)
	}
	return nil
}

func (fs *FileSystem) Exists(p string) bool {
	info, err := os.Stat(fs.Abs(p))
	return err == nil && info.Mode().IsRegular()
}

func (fs *FileSystem) List(pred func(string) bool) []string {
	files, err := fsutil.ListFiles(context.Background(), fs.Root, fs.walk)
	if err != nil {
		fs.logger.Error("listing project files failed", logging.FieldRoot, fs.Root, logging.FieldError, err)
	}
	return filterSorted(files, func(p string) bool {
		if strings.HasSuffix(p, fsutil.BackupSuffix) {
			return false
		}
		return pred == nil || pred(p)
	})
}
