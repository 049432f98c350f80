package configloader

import (
	"maps"

	"github.com/yaklabco/poscheck/pkg/config"
)

// merge combines two configurations, with override taking precedence over base.
//   - Scalars: override wins when non-zero
//   - Check sections: merged per field, override wins where set
//   - Slices: override replaces base entirely if non-nil
//   - true booleans in override win; false never unsets base
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := *base

	if override.Extends != "" {
		result.Extends = override.Extends
	}
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Jobs != 0 {
		result.Jobs = override.Jobs
	}

	if override.Fix {
		result.Fix = true
	}
	if override.DryRun {
		result.DryRun = true
	}
	if override.NoBackups {
		result.NoBackups = true
	}

	if override.Backups.Mode != "" {
		result.Backups.Mode = override.Backups.Mode
	}
	if override.Backups.Enabled {
		result.Backups.Enabled = true
	}

	result.Checks = mergeChecks(base.Checks, override.Checks)

	if override.Ignore != nil {
		result.Ignore = override.Ignore
	}
	if override.EnableChecks != nil {
		result.EnableChecks = override.EnableChecks
	}
	if override.DisableChecks != nil {
		result.DisableChecks = override.DisableChecks
	}

	return &result
}

func mergeChecks(base, override map[string]config.CheckConfig) map[string]config.CheckConfig {
	result := make(map[string]config.CheckConfig, len(base)+len(override))
	maps.Copy(result, base)

	for code, cc := range override {
		existing, ok := result[code]
		if !ok {
			result[code] = cc
			continue
		}
		if cc.Enabled != nil {
			existing.Enabled = cc.Enabled
		}
		if cc.Severity != nil {
			existing.Severity = cc.Severity
		}
		if cc.Ignore != nil {
			existing.Ignore = cc.Ignore
		}
		result[code] = existing
	}

	return result
}

// MergeAll merges configurations in order, later ones taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for _, cfg := range configs[1:] {
		result = merge(result, cfg)
	}
	return result
}
