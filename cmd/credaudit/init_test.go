package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ludo-technologies/credaudit/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCmd_CreatesConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "credaudit.yaml")

	out, err := execute(initCmd(), "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Created")

	content, err := os.ReadFile(configPath)
	require.NoError(t, err)
	for _, expected := range []string{"output:", "audit:", "check:", "fail_on_severity", "max_utilization"} {
		assert.Contains(t, string(content), expected)
	}
}

func TestInitCmd_ConfigLoads(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "credaudit.yaml")

	_, err := execute(initCmd(), "--config", configPath, "--profile", "agency", "--strictness", "strict")
	require.NoError(t, err)

	cfg, err := config.LoadConfig(configPath)
	require.NoError(t, err, "generated config should load")
	assert.Equal(t, "xlsx", cfg.Output.Format, "agency profile selects xlsx output")
	assert.Equal(t, 0, cfg.Check.MaxViolations)
	assert.Equal(t, 30, cfg.Check.MaxUtilization)
}

func TestInitCmd_ExistingFileWithoutForce(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "credaudit.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("existing"), 0644))

	_, err := execute(initCmd(), "--config", configPath)
	assert.Error(t, err, "init should refuse to overwrite without --force")

	content, _ := os.ReadFile(configPath)
	assert.Equal(t, "existing", string(content))
}

func TestInitCmd_ForceOverwrite(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "credaudit.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("existing"), 0644))

	_, err := execute(initCmd(), "--config", configPath, "--force")
	require.NoError(t, err)

	content, _ := os.ReadFile(configPath)
	assert.NotEqual(t, "existing", string(content))
}

func TestInitCmd_Minimal(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "credaudit.yaml")

	_, err := execute(initCmd(), "--config", configPath, "--minimal")
	require.NoError(t, err)

	content, _ := os.ReadFile(configPath)
	assert.Equal(t, config.GetMinimalConfigTemplate(), string(content))
}

func TestInitCmd_InvalidPresets(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "credaudit.yaml")

	_, err := execute(initCmd(), "--config", configPath, "--profile", "bank")
	assert.Error(t, err, "unknown profile")
	_, err = execute(initCmd(), "--config", configPath, "--strictness", "extreme")
	assert.Error(t, err, "unknown strictness")

	_, err = os.Stat(configPath)
	assert.True(t, os.IsNotExist(err), "no file should be written for invalid presets")
}

func TestInitCmd_MissingDirectory(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "missing", "credaudit.yaml")

	_, err := execute(initCmd(), "--config", configPath)
	assert.Error(t, err)
}

func TestInitCmd_FlagsExist(t *testing.T) {
	cmd := initCmd()

	for _, flagName := range []string{"config", "force", "minimal", "profile", "strictness", "interactive"} {
		assert.NotNil(t, cmd.Flags().Lookup(flagName), "--%s", flagName)
	}
	for _, short := range []string{"c", "f", "i"} {
		assert.NotNil(t, cmd.Flags().ShorthandLookup(short), "-%s", short)
	}
}
