package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ludo-technologies/credaudit/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	require.NotNil(t, config)

	assert.Equal(t, "text", config.Output.Format)
	assert.Equal(t, "info", config.Logging.Level)
	assert.Equal(t, "console", config.Logging.Format)
	assert.False(t, config.Audit.Parallel, "parallel should be disabled by default")
	assert.Equal(t, DefaultMaxGoroutines, config.Performance.MaxGoroutines)
	assert.Equal(t, DefaultMaxViolations, config.Check.MaxViolations)
	assert.Equal(t, DefaultFailOnSeverity, config.Check.FailOnSeverity)
	assert.Empty(t, config.Metrics.Textfile, "metrics export should be disabled by default")
}

func TestLoadDefaultConfigMatchesDefaultConfig(t *testing.T) {
	embedded, err := LoadDefaultConfig()
	require.NoError(t, err)
	expected := DefaultConfig()

	assert.Equal(t, expected.Output, embedded.Output)
	assert.Equal(t, expected.Logging, embedded.Logging)
	assert.Equal(t, expected.Audit, embedded.Audit)
	assert.Equal(t, expected.Performance, embedded.Performance)
	assert.Equal(t, expected.Check, embedded.Check)
	assert.Equal(t, expected.Metrics, embedded.Metrics)
	assert.Empty(t, embedded.Input.ExcludePatterns)
}

func TestConfig_Validate_Valid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestConfig_Validate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"output format", func(c *Config) { c.Output.Format = "html" }},
		{"log level", func(c *Config) { c.Logging.Level = "trace" }},
		{"log format", func(c *Config) { c.Logging.Format = "json" }},
		{"as of", func(c *Config) { c.Audit.AsOf = "next tuesday" }},
		{"max goroutines", func(c *Config) { c.Performance.MaxGoroutines = 0 }},
		{"timeout", func(c *Config) { c.Performance.TimeoutSeconds = -1 }},
		{"max violations", func(c *Config) { c.Check.MaxViolations = -2 }},
		{"max utilization low", func(c *Config) { c.Check.MaxUtilization = -1 }},
		{"max utilization high", func(c *Config) { c.Check.MaxUtilization = 101 }},
		{"severity", func(c *Config) { c.Check.FailOnSeverity = "SEVERE" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			assert.Error(t, config.Validate())
		})
	}
}

func TestConfig_ValidOutputFormats(t *testing.T) {
	config := DefaultConfig()

	for _, format := range []string{"text", "json", "yaml", "csv", "xlsx"} {
		config.Output.Format = format
		assert.NoError(t, config.Validate(), "format %q", format)
	}
}

func TestConfig_ValidSeverities(t *testing.T) {
	config := DefaultConfig()

	for _, severity := range []string{"", "none", "NONE", "low", "Medium", "HIGH", "critical"} {
		config.Check.FailOnSeverity = severity
		assert.NoError(t, config.Validate(), "severity %q", severity)
	}
}

func TestCheckConfig_SeverityThreshold(t *testing.T) {
	tests := []struct {
		value    string
		expected domain.Severity
	}{
		{"", ""},
		{"none", ""},
		{"high", domain.SeverityHigh},
		{" Critical ", domain.SeverityCritical},
		{"bogus", ""},
	}

	for _, tt := range tests {
		c := CheckConfig{FailOnSeverity: tt.value}
		assert.Equal(t, tt.expected, c.SeverityThreshold(), "SeverityThreshold(%q)", tt.value)
	}
}

func TestCheckConfig_Gates(t *testing.T) {
	c := CheckConfig{MaxViolations: -1, MaxUtilization: 0}
	assert.False(t, c.ViolationGateEnabled())
	assert.False(t, c.UtilizationGateEnabled())

	c = CheckConfig{MaxViolations: 0, MaxUtilization: 30}
	assert.True(t, c.ViolationGateEnabled())
	assert.True(t, c.UtilizationGateEnabled())
}

func TestAuditConfig_ReferenceTime(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

	c := AuditConfig{}
	got, err := c.ReferenceTime(now)
	require.NoError(t, err)
	assert.True(t, got.Equal(now))

	c.AsOf = "2024-01-31"
	got, err = c.ReferenceTime(now)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)), "got %v", got)
}

func TestPerformanceConfig_Timeout(t *testing.T) {
	c := PerformanceConfig{TimeoutSeconds: 90}
	assert.Equal(t, 90*time.Second, c.Timeout())
}

func TestLoadConfigFromFile_Default(t *testing.T) {
	config, err := loadConfigFromFile("")
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig().Output.Format, config.Output.Format)
	assert.Equal(t, DefaultMaxGoroutines, config.Performance.MaxGoroutines)
}

func TestLoadConfig_NonExistent(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/credaudit.yaml")
	assert.Error(t, err)
}

func TestLoadConfig_YAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, "credaudit.yaml", `output:
  format: json
check:
  max_utilization: 40
input:
  exclude_patterns:
    - archive/
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "json", config.Output.Format)
	assert.Equal(t, 40, config.Check.MaxUtilization)
	assert.Equal(t, DefaultFailOnSeverity, config.Check.FailOnSeverity, "unset keys keep defaults")
	assert.Equal(t, []string{"archive/"}, config.Input.ExcludePatterns)
}

func TestLoadConfig_JSONAndTOML(t *testing.T) {
	dir := t.TempDir()

	jsonPath := writeConfigFile(t, dir, "credaudit.json", `{"output": {"format": "csv"}, "audit": {"parallel": true}}`)
	config, err := LoadConfig(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "csv", config.Output.Format)
	assert.True(t, config.Audit.Parallel)

	tomlPath := writeConfigFile(t, dir, ".credaudit.toml", "[logging]\nlevel = \"debug\"\n")
	config, err = LoadConfig(tomlPath)
	require.NoError(t, err)
	assert.Equal(t, "debug", config.Logging.Level)
}

func TestLoadConfig_InvalidValue(t *testing.T) {
	path := writeConfigFile(t, t.TempDir(), "credaudit.yaml", "output:\n  format: pdf\n")

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("CREDAUDIT_OUTPUT_FORMAT", "yaml")
	t.Setenv("CREDAUDIT_CHECK_MAX_VIOLATIONS", "3")
	t.Setenv("CREDAUDIT_AUDIT_PARALLEL", "true")

	config, err := loadConfigFromFile("")
	require.NoError(t, err)

	assert.Equal(t, "yaml", config.Output.Format)
	assert.Equal(t, 3, config.Check.MaxViolations)
	assert.True(t, config.Audit.Parallel)
}

func TestSearchConfigInDirectory(t *testing.T) {
	tempDir := t.TempDir()
	configPath := writeConfigFile(t, tempDir, "credaudit.yaml", "output:\n  format: json\n")

	candidates := []string{"credaudit.yaml", "credaudit.yml"}
	assert.Equal(t, configPath, searchConfigInDirectory(tempDir, candidates))
	assert.Empty(t, searchConfigInDirectory(t.TempDir(), candidates))
}

func TestFindDefaultConfig_WalksUpFromTarget(t *testing.T) {
	root := t.TempDir()
	configPath := writeConfigFile(t, root, ".credaudit.yml", "output:\n  format: json\n")

	nested := filepath.Join(root, "clients", "2025")
	require.NoError(t, os.MkdirAll(nested, 0755))
	target := writeConfigFile(t, nested, "report.json", "{}")

	assert.Equal(t, configPath, findDefaultConfig(target))
}

func TestLoadConfigWithTarget_ExplicitPathWins(t *testing.T) {
	root := t.TempDir()
	writeConfigFile(t, root, "credaudit.yaml", "output:\n  format: json\n")
	explicit := writeConfigFile(t, t.TempDir(), "other.yaml", "output:\n  format: csv\n")

	config, err := LoadConfigWithTarget(explicit, root)
	require.NoError(t, err)
	assert.Equal(t, "csv", config.Output.Format, "explicit config wins")

	config, err = LoadConfigWithTarget("", root)
	require.NoError(t, err)
	assert.Equal(t, "json", config.Output.Format, "discovered config")
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	config := DefaultConfig()
	config.Output.Format = "json"
	config.Check.MaxUtilization = 35
	config.Input.ExcludePatterns = []string{"archive/"}

	path := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, SaveConfig(config, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "json", loaded.Output.Format)
	assert.Equal(t, 35, loaded.Check.MaxUtilization)
	assert.Len(t, loaded.Input.ExcludePatterns, 1)
}

func TestTemplatesLoad(t *testing.T) {
	dir := t.TempDir()

	for profile := range GetProfilePresets() {
		for strictness, preset := range GetStrictnessPresets() {
			name := string(profile) + "-" + string(strictness) + ".yaml"
			path := writeConfigFile(t, dir, name, GetFullConfigTemplate(profile, strictness))

			config, err := LoadConfig(path)
			require.NoError(t, err, "template %s", name)
			assert.Equal(t, preset.MaxViolations, config.Check.MaxViolations, name)
			assert.Equal(t, preset.FailOnSeverity, config.Check.FailOnSeverity, name)
			assert.Equal(t, preset.MaxUtilization, config.Check.MaxUtilization, name)
		}
	}

	path := writeConfigFile(t, dir, "minimal.yaml", GetMinimalConfigTemplate())
	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 50, config.Check.MaxUtilization)
}

func TestGetFullConfigTemplate_UnknownPresetFallsBack(t *testing.T) {
	assert.Equal(t,
		GetFullConfigTemplate(ProfilePersonal, StrictnessStandard),
		GetFullConfigTemplate("enterprise", "extreme"))
}
