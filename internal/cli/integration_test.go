package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/poscheck/internal/cli"
)

const (
	pagePath    = "app/views/pages/index.liquid"
	spacingPage = "{{a}}\n"
)

// project creates a project with a configuration file and returns its
// root and the config path.
func project(t *testing.T, files map[string]string, configContent string) (string, string) {
	t.Helper()
	root := t.TempDir()
	for p, content := range files {
		abs := filepath.Join(root, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	}
	cfgFile := filepath.Join(root, ".platformos-check.yml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(configContent), 0o644))
	return root, cfgFile
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCommand(testInfo())

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), err
}

func TestIntegration_CheckReportsOffenses(t *testing.T) {
	t.Parallel()

	root, cfg := project(t, map[string]string{pagePath: spacingPage}, "extends: default\n")

	out, err := execute(t, "check", "--config", cfg, "--color", "never", root)

	require.ErrorIs(t, err, cli.ErrOffensesFound)
	assert.Equal(t, cli.ExitOffenses, cli.ExitCode(err))
	assert.Contains(t, out, pagePath+":1:3")
	assert.Contains(t, out, "(SpaceInsideBraces)")
	assert.Contains(t, out, "2 offenses")
}

func TestIntegration_ConfigDisablesCheck(t *testing.T) {
	t.Parallel()

	root, cfg := project(t, map[string]string{pagePath: spacingPage}, "SpaceInsideBraces:\n  enabled: false\n")

	out, err := execute(t, "check", "--config", cfg, "--color", "never", root)

	require.NoError(t, err)
	assert.Contains(t, out, "No offenses found")
}

func TestIntegration_DisableFlag(t *testing.T) {
	t.Parallel()

	root, cfg := project(t, map[string]string{pagePath: spacingPage}, "")

	_, err := execute(t, "check", "--config", cfg, "--disable", "SpaceInsideBraces", root)
	require.NoError(t, err)
}

func TestIntegration_FailLevel(t *testing.T) {
	t.Parallel()

	root, cfg := project(t, map[string]string{pagePath: spacingPage}, "")

	_, err := execute(t, "check", "--config", cfg, "--fail-level", "error", root)
	require.NoError(t, err, "style offenses do not fail at error level")

	_, err = execute(t, "check", "--config", cfg, "--fail-level", "fatal", root)
	assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCode(err))
}

func TestIntegration_InvalidConfig(t *testing.T) {
	t.Parallel()

	root, cfg := project(t, map[string]string{pagePath: spacingPage}, "SpaceInsideBraces:\n  severity: loud\n")

	_, err := execute(t, "check", "--config", cfg, root)
	assert.Equal(t, cli.ExitConfigError, cli.ExitCode(err))
}

func TestIntegration_FixWritesCorrections(t *testing.T) {
	t.Parallel()

	root, cfg := project(t, map[string]string{pagePath: spacingPage}, "")

	out, err := execute(t, "check", "--config", cfg, "--color", "never", "--fix", root)
	require.NoError(t, err)
	assert.Contains(t, out, "corrected in 1 file")

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(pagePath)))
	require.NoError(t, err)
	assert.Equal(t, "{{ a }}\n", string(data))
}

func TestIntegration_DryRunDiff(t *testing.T) {
	t.Parallel()

	root, cfg := project(t, map[string]string{pagePath: spacingPage}, "")

	out, err := execute(t, "check", "--config", cfg, "--color", "never", "--dry-run", "--format", "diff", root)
	require.ErrorIs(t, err, cli.ErrOffensesFound)
	assert.Contains(t, out, "diff --git a/"+pagePath)
	assert.Contains(t, out, "+{{ a }}")

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(pagePath)))
	require.NoError(t, err)
	assert.Equal(t, spacingPage, string(data))
}

func TestIntegration_JSONOutput(t *testing.T) {
	t.Parallel()

	root, cfg := project(t, map[string]string{pagePath: spacingPage}, "")

	out, err := execute(t, "check", "--config", cfg, "--format", "json", root)
	require.Error(t, err)

	var got struct {
		Files []struct {
			Path     string `json:"path"`
			Offenses []struct {
				Check string `json:"check"`
			} `json:"offenses"`
		} `json:"files"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Files, 1)
	assert.Equal(t, pagePath, got.Files[0].Path)
	assert.Len(t, got.Files[0].Offenses, 2)
}

func TestIntegration_UnknownFormat(t *testing.T) {
	t.Parallel()

	root, cfg := project(t, nil, "")

	_, err := execute(t, "check", "--config", cfg, "--format", "sarif", root)
	assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCode(err))
}

func TestIntegration_ChecksCommandJSON(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "checks", "--format", "json")
	require.NoError(t, err)

	var infos []struct {
		Code         string `json:"code"`
		WholeProject bool   `json:"wholeProject"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &infos))

	byCode := make(map[string]bool)
	for _, info := range infos {
		byCode[info.Code] = info.WholeProject
	}
	assert.Contains(t, byCode, "SpaceInsideBraces")
	assert.True(t, byCode["MissingTemplate"])
}

func TestIntegration_InitCommand(t *testing.T) {
	t.Parallel()

	output := filepath.Join(t.TempDir(), ".platformos-check.yml")

	_, err := execute(t, "init", "--full", "--output", output)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "MissingTemplate:")

	_, err = execute(t, "init", "--output", output)
	require.Error(t, err, "existing file needs --force")

	_, err = execute(t, "init", "--force", "--output", output)
	require.NoError(t, err)
}
