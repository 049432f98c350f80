// Package config defines the configuration types for poscheck.
// These types are plain data with no dependency on the loader or on the
// check framework.
package config

// FileName is the name of the project configuration file.
const FileName = ".platformos-check.yml"

// Extends selects the baseline a configuration builds on.
type Extends string

const (
	// ExtendsDefault starts from every check enabled with its own severity.
	ExtendsDefault Extends = "default"
	// ExtendsNothing starts from every check disabled; only checks
	// explicitly enabled in the file run.
	ExtendsNothing Extends = "nothing"
)

// CheckConfig holds per-check configuration options.
type CheckConfig struct {
	Enabled  *bool    `yaml:"enabled,omitempty"`
	Severity *string  `yaml:"severity,omitempty"`
	Ignore   []string `yaml:"ignore,omitempty"`
}

// BackupsConfig controls backup behavior when fixing files.
type BackupsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Mode    string `yaml:"mode"` // "sidecar" or "none"
}

// OutputFormat specifies the output format for offenses.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatDiff OutputFormat = "diff"
)

// Config is the root configuration structure. Check sections sit at the
// top level of the file, keyed by check code:
//
//	extends: default
//	ignore:
//	  - modules/**
//	SpaceInsideBraces:
//	  severity: suggestion
//	  ignore:
//	    - app/views/partials/legacy/**
type Config struct {
	// Extends is the baseline: "default" or "nothing".
	Extends Extends `yaml:"extends,omitempty"`

	// Ignore contains glob patterns for files no check looks at.
	Ignore []string `yaml:"ignore,omitempty"`

	// Backups configures backup behavior when fixing.
	Backups BackupsConfig `yaml:"backups"`

	// Checks contains per-check configuration keyed by check code.
	Checks map[string]CheckConfig `yaml:",inline"`

	// CLI-level options (not persisted to config files).

	// Fix enables auto-fixing of offenses.
	Fix bool `yaml:"-"`

	// DryRun shows what would be fixed without making changes.
	DryRun bool `yaml:"-"`

	// Format specifies the output format.
	Format OutputFormat `yaml:"-"`

	// Jobs specifies the number of parallel parsers.
	Jobs int `yaml:"-"`

	// EnableChecks contains check codes to explicitly enable.
	EnableChecks []string `yaml:"-"`

	// DisableChecks contains check codes to explicitly disable.
	DisableChecks []string `yaml:"-"`

	// NoBackups disables backup creation when fixing.
	NoBackups bool `yaml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Extends: ExtendsDefault,
		Checks:  make(map[string]CheckConfig),
		Backups: BackupsConfig{
			Enabled: false,
			Mode:    "sidecar",
		},
		Format: FormatText,
		Jobs:   0, // 0 means use GOMAXPROCS
	}
}

// CheckEnabled reports whether the check with code runs. CLI lists win
// over the file, the file wins over the baseline.
func (c *Config) CheckEnabled(code string) bool {
	for _, disabled := range c.DisableChecks {
		if disabled == code {
			return false
		}
	}
	for _, enabled := range c.EnableChecks {
		if enabled == code {
			return true
		}
	}
	if cc, ok := c.Checks[code]; ok && cc.Enabled != nil {
		return *cc.Enabled
	}
	return c.Extends != ExtendsNothing
}

// SeverityOverride returns the configured severity for code, if any.
func (c *Config) SeverityOverride(code string) (string, bool) {
	cc, ok := c.Checks[code]
	if !ok || cc.Severity == nil {
		return "", false
	}
	return *cc.Severity, true
}

// CheckIgnore returns the ignore globs configured for code.
func (c *Config) CheckIgnore(code string) []string {
	return c.Checks[code].Ignore
}

// BackupsEnabled reports whether fixing should leave sidecar backups.
func (c *Config) BackupsEnabled() bool {
	return !c.NoBackups && c.Backups.Enabled && c.Backups.Mode != "none"
}
