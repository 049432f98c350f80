package configloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/yaklabco/poscheck/pkg/config"
)

// ConfigPaths represents discovered configuration file paths.
type ConfigPaths struct {
	// System is the system-wide config path (e.g., /etc/poscheck/config.yml).
	System string

	// User is the user-level config path (e.g., ~/.config/poscheck/config.yml).
	User string

	// Project is the project-level config path (e.g., ./.platformos-check.yml).
	Project string

	// Explicit is a config path provided via --config flag.
	Explicit string

	// ProjectRoot is the nearest directory holding a project config or
	// a platformOS layout marker, or "" when none was found.
	ProjectRoot string
}

// projectConfigFiles are the project config names, in order of preference.
//
//nolint:gochecknoglobals // Read-only lookup table.
var projectConfigFiles = []string{
	config.FileName,
	".platformos-check.yaml",
}

// vcsRootMarkers are directories that indicate a VCS root.
//
//nolint:gochecknoglobals // Read-only lookup table.
var vcsRootMarkers = []string{".git", ".hg", ".svn"}

// layoutDirs mark the root of a platformOS application.
//
//nolint:gochecknoglobals // Read-only lookup table.
var layoutDirs = []string{"app", "modules", "marketplace_builder"}

// layoutFiles mark the root of a platformOS application.
//
//nolint:gochecknoglobals // Read-only lookup table.
var layoutFiles = []string{".pos"}

// DiscoverPaths finds configuration files in standard locations.
// It searches for:
//   - System config at /etc/poscheck/config.{yml,yaml}
//   - User config at $XDG_CONFIG_HOME/poscheck/config.{yml,yaml}
//   - Project config by searching upward from workDir for .platformos-check.yml
//   - The project root, which is the config's directory or the nearest
//     directory laid out as a platformOS application
//
// Missing files are represented as empty strings (not errors).
func DiscoverPaths(ctx context.Context, workDir string) (*ConfigPaths, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}

	paths := &ConfigPaths{
		System: findSystemConfig(),
		User:   findUserConfig(),
	}

	projectConfig, root, err := searchUpward(ctx, workDir)
	if err != nil {
		return nil, err
	}
	paths.Project = projectConfig
	paths.ProjectRoot = root

	return paths, nil
}

func findSystemConfig() string {
	if runtime.GOOS == "windows" {
		programData := os.Getenv("ProgramData")
		if programData == "" {
			programData = `C:\ProgramData`
		}
		return findConfigInDir(filepath.Join(programData, "poscheck"))
	}

	return findConfigInDir("/etc/poscheck")
}

func findUserConfig() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}

	return findConfigInDir(filepath.Join(configHome, "poscheck"))
}

// findConfigInDir returns the first config file in dir, or "".
func findConfigInDir(dir string) string {
	for _, name := range []string{"config.yml", "config.yaml"} {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// FindProjectConfig searches upward from startDir for a project config file.
// Returns the path to the first config file found, or empty string if none.
// The search ends at a platformOS application root, a VCS root, the home
// directory or the filesystem root.
func FindProjectConfig(ctx context.Context, startDir string) (string, error) {
	path, _, err := searchUpward(ctx, startDir)
	return path, err
}

// searchUpward returns the first project config above startDir and the
// directory the search settled on as project root.
func searchUpward(ctx context.Context, startDir string) (string, string, error) {
	if startDir == "" {
		var err error
		startDir, err = os.Getwd()
		if err != nil {
			return "", "", fmt.Errorf("get working directory: %w", err)
		}
	}

	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", "", fmt.Errorf("resolve absolute path: %w", err)
	}

	homeDir, homeErr := os.UserHomeDir()
	if homeErr != nil {
		homeDir = ""
	}

	currentDir := absDir
	for {
		select {
		case <-ctx.Done():
			return "", "", fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		for _, name := range projectConfigFiles {
			path := filepath.Join(currentDir, name)
			if fileExists(path) {
				return path, currentDir, nil
			}
		}

		if isLayoutRoot(currentDir) {
			return "", currentDir, nil
		}

		if isVCSRoot(currentDir) {
			return "", "", nil
		}

		if homeDir != "" && currentDir == homeDir {
			return "", "", nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", "", nil
		}
		currentDir = parentDir
	}
}

// isLayoutRoot reports whether dir looks like the root of a platformOS
// application.
func isLayoutRoot(dir string) bool {
	for _, name := range layoutDirs {
		info, err := os.Stat(filepath.Join(dir, name))
		if err == nil && info.IsDir() {
			return true
		}
	}
	for _, name := range layoutFiles {
		if fileExists(filepath.Join(dir, name)) {
			return true
		}
	}
	return false
}

// isVCSRoot returns true if the directory contains a VCS root marker.
func isVCSRoot(dir string) bool {
	for _, marker := range vcsRootMarkers {
		info, err := os.Stat(filepath.Join(dir, marker))
		if err == nil && info.IsDir() {
			return true
		}
	}
	return false
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
