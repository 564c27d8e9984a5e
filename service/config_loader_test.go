package service

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ludo-technologies/credaudit/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateConfigSearch keeps the user's real config directories out of discovery
func isolateConfigSearch(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "xdg"))
	t.Setenv("CREDAUDIT_CONFIG", "")

	workDir := t.TempDir()
	origDir, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	require.NoError(t, os.Chdir(workDir))
	return workDir
}

func TestNewConfigurationLoader(t *testing.T) {
	assert.NotNil(t, NewConfigurationLoader())
}

func TestConfigurationLoader_LoadConfig_NonExistent(t *testing.T) {
	_, err := NewConfigurationLoader().LoadConfig("/nonexistent/credaudit.yaml")
	assert.Error(t, err)
}

func TestConfigurationLoader_LoadConfig_InvalidJSON(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "credaudit.json")
	require.NoError(t, os.WriteFile(configFile, []byte("invalid json"), 0644))

	_, err := NewConfigurationLoader().LoadConfig(configFile)
	assert.Error(t, err)
}

func TestConfigurationLoader_LoadConfig_Valid(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "credaudit.yaml")
	content := `
output:
  format: csv
  directory: reports
  show_details: true
audit:
  as_of: "2025-06-15"
  parallel: true
input:
  exclude_patterns:
    - "archive/"
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0644))

	req, err := NewConfigurationLoader().LoadConfig(configFile)
	require.NoError(t, err)

	assert.Equal(t, domain.OutputFormatCSV, req.OutputFormat)
	assert.Equal(t, "reports", req.OutputPath)
	assert.True(t, req.ShowDetails)
	assert.True(t, req.Parallel)
	assert.True(t, req.AsOf.Equal(time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)), "as of %v", req.AsOf)
	assert.Equal(t, []string{"archive/"}, req.ExcludePatterns)
	assert.True(t, req.Recursive)
}

func TestConfigurationLoader_LoadDefaultConfig(t *testing.T) {
	isolateConfigSearch(t)

	req := NewConfigurationLoader().LoadDefaultConfig()
	require.NotNil(t, req)

	assert.Equal(t, domain.OutputFormatText, req.OutputFormat)
	assert.True(t, req.AsOf.IsZero(), "as of should be zero without a pinned date")
	assert.Empty(t, req.Paths)
}

func TestConfigurationLoader_LoadDefaultConfig_InvalidFileFallsBack(t *testing.T) {
	workDir := isolateConfigSearch(t)
	require.NoError(t, os.WriteFile(filepath.Join(workDir, "credaudit.yaml"), []byte("output:\n  format: pdf\n"), 0644))

	req := NewConfigurationLoader().LoadDefaultConfig()
	assert.Equal(t, domain.OutputFormatText, req.OutputFormat)
}

func TestConfigurationLoader_FindDefaultConfigFile_NotFound(t *testing.T) {
	isolateConfigSearch(t)

	assert.Empty(t, NewConfigurationLoader().FindDefaultConfigFile(""))
}

func TestConfigurationLoader_FindDefaultConfigFile_Found(t *testing.T) {
	workDir := isolateConfigSearch(t)
	require.NoError(t, os.WriteFile(filepath.Join(workDir, "credaudit.yaml"), []byte("{}"), 0644))

	assert.Equal(t, "credaudit.yaml", NewConfigurationLoader().FindDefaultConfigFile(""))
}

func TestConfigurationLoader_FindDefaultConfigFile_FromTarget(t *testing.T) {
	isolateConfigSearch(t)
	project := t.TempDir()
	nested := filepath.Join(project, "clients", "smith")
	require.NoError(t, os.MkdirAll(nested, 0755))
	configFile := filepath.Join(project, ".credaudit.yml")
	require.NoError(t, os.WriteFile(configFile, []byte("{}"), 0644))

	assert.Equal(t, configFile, NewConfigurationLoader().FindDefaultConfigFile(nested))
}

func TestConfigurationLoader_MergeConfig_Paths(t *testing.T) {
	base := &domain.BatchAuditRequest{Paths: []string{"original.json"}}
	override := &domain.BatchAuditRequest{Paths: []string{"a.json", "b.json"}}

	merged := NewConfigurationLoader().MergeConfig(base, override)
	assert.Equal(t, []string{"a.json", "b.json"}, merged.Paths)
}

func TestConfigurationLoader_MergeConfig_Overrides(t *testing.T) {
	asOf := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	base := &domain.BatchAuditRequest{
		OutputFormat: domain.OutputFormatText,
		OutputPath:   "reports",
	}
	override := &domain.BatchAuditRequest{
		OutputFormat: domain.OutputFormatJSON,
		OutputPath:   "out",
		ShowDetails:  true,
		AsOf:         asOf,
		Parallel:     true,
		ConfigPath:   "/path/to/credaudit.yaml",
	}

	merged := NewConfigurationLoader().MergeConfig(base, override)

	assert.Equal(t, domain.OutputFormatJSON, merged.OutputFormat)
	assert.Equal(t, "out", merged.OutputPath)
	assert.True(t, merged.ShowDetails)
	assert.True(t, merged.Parallel)
	assert.True(t, merged.AsOf.Equal(asOf))
	assert.Equal(t, "/path/to/credaudit.yaml", merged.ConfigPath)
}

func TestConfigurationLoader_MergeConfig_ExcludePatternsAppend(t *testing.T) {
	base := &domain.BatchAuditRequest{ExcludePatterns: []string{"archive/"}}
	override := &domain.BatchAuditRequest{ExcludePatterns: []string{"*.draft.json"}}

	merged := NewConfigurationLoader().MergeConfig(base, override)

	assert.Equal(t, []string{"archive/", "*.draft.json"}, merged.ExcludePatterns)
	assert.Len(t, base.ExcludePatterns, 1, "base exclude patterns should not be modified")
}

func TestConfigurationLoader_MergeConfig_PreserveBase(t *testing.T) {
	asOf := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	base := &domain.BatchAuditRequest{
		OutputFormat: domain.OutputFormatYAML,
		AsOf:         asOf,
		Parallel:     true,
	}

	merged := NewConfigurationLoader().MergeConfig(base, &domain.BatchAuditRequest{})

	assert.Equal(t, domain.OutputFormatYAML, merged.OutputFormat)
	assert.True(t, merged.AsOf.Equal(asOf))
	assert.True(t, merged.Parallel)
}

func TestConfigurationLoader_ValidateConfig_ValidFormats(t *testing.T) {
	loader := NewConfigurationLoader()

	for _, format := range []domain.OutputFormat{
		domain.OutputFormatText,
		domain.OutputFormatJSON,
		domain.OutputFormatYAML,
		domain.OutputFormatCSV,
		domain.OutputFormatXLSX,
	} {
		req := &domain.BatchAuditRequest{Paths: []string{"report.json"}, OutputFormat: format}
		assert.NoError(t, loader.ValidateConfig(req), "format %s", format)
	}
}

func TestConfigurationLoader_ValidateConfig_InvalidOutputFormat(t *testing.T) {
	req := &domain.BatchAuditRequest{Paths: []string{"report.json"}, OutputFormat: "xml"}
	assert.Error(t, NewConfigurationLoader().ValidateConfig(req))
}

func TestConfigurationLoader_ValidateConfig_NoPaths(t *testing.T) {
	req := &domain.BatchAuditRequest{OutputFormat: domain.OutputFormatText}
	assert.Error(t, NewConfigurationLoader().ValidateConfig(req))
}
