package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ludo-technologies/credaudit/domain"
	"github.com/ludo-technologies/credaudit/internal/constants"
	"github.com/ludo-technologies/credaudit/internal/logging"
	"github.com/ludo-technologies/credaudit/internal/snapshot"
	"github.com/spf13/viper"
)

// Default performance settings
const (
	// DefaultMaxGoroutines bounds concurrent audits in a batch run
	DefaultMaxGoroutines = 4

	// DefaultTimeoutSeconds bounds a whole batch run
	DefaultTimeoutSeconds = 60
)

// Default check thresholds
const (
	// DefaultMaxViolations disables the violation count gate
	DefaultMaxViolations = -1

	// DefaultFailOnSeverity fails a check on any HIGH or CRITICAL violation
	DefaultFailOnSeverity = "HIGH"

	// DefaultMaxUtilization disables the utilization gate
	DefaultMaxUtilization = 0
)

// Config represents the main configuration structure
type Config struct {
	// Output holds output formatting configuration
	Output OutputConfig `json:"output" mapstructure:"output" yaml:"output"`

	// Logging holds logger configuration
	Logging LoggingConfig `json:"logging" mapstructure:"logging" yaml:"logging"`

	// Audit holds audit engine options
	Audit AuditConfig `json:"audit" mapstructure:"audit" yaml:"audit"`

	// Performance holds concurrency limits
	Performance PerformanceConfig `json:"performance" mapstructure:"performance" yaml:"performance"`

	// Check holds the thresholds used by the check command
	Check CheckConfig `json:"check" mapstructure:"check" yaml:"check"`

	// Metrics holds metrics export configuration
	Metrics MetricsConfig `json:"metrics" mapstructure:"metrics" yaml:"metrics"`

	// Input holds snapshot file collection configuration
	Input InputConfig `json:"input" mapstructure:"input" yaml:"input"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	// Format specifies the output format: text, json, yaml, csv, xlsx
	Format string `json:"format" mapstructure:"format" yaml:"format"`

	// Directory specifies where report files are written; empty means stdout
	Directory string `json:"directory" mapstructure:"directory" yaml:"directory"`

	// ShowDetails includes per-item details in text output
	ShowDetails bool `json:"showDetails" mapstructure:"show_details" yaml:"show_details"`
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	// Level is one of debug, info, warn, error
	Level string `json:"level" mapstructure:"level" yaml:"level"`

	// Format is structured (JSON) or console
	Format string `json:"format" mapstructure:"format" yaml:"format"`
}

// AuditConfig holds audit engine options
type AuditConfig struct {
	// AsOf pins the reference date (YYYY-MM-DD); empty means the current time
	AsOf string `json:"asOf" mapstructure:"as_of" yaml:"as_of"`

	// Parallel runs the analyzers of one audit concurrently
	Parallel bool `json:"parallel" mapstructure:"parallel" yaml:"parallel"`
}

// PerformanceConfig holds concurrency limits
type PerformanceConfig struct {
	// MaxGoroutines bounds concurrent tasks
	MaxGoroutines int `json:"maxGoroutines" mapstructure:"max_goroutines" yaml:"max_goroutines"`

	// TimeoutSeconds bounds a batch run; 0 disables the timeout
	TimeoutSeconds int `json:"timeoutSeconds" mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// CheckConfig holds the thresholds used by the check command
type CheckConfig struct {
	// MaxViolations is the number of violations a report may carry; -1 disables the gate
	MaxViolations int `json:"maxViolations" mapstructure:"max_violations" yaml:"max_violations"`

	// FailOnSeverity fails the check on any violation at or above this severity; empty or NONE disables it
	FailOnSeverity string `json:"failOnSeverity" mapstructure:"fail_on_severity" yaml:"fail_on_severity"`

	// MaxUtilization is the highest acceptable overall utilization percentage; 0 disables the gate
	MaxUtilization int `json:"maxUtilization" mapstructure:"max_utilization" yaml:"max_utilization"`
}

// MetricsConfig holds metrics export configuration
type MetricsConfig struct {
	// Textfile is a Prometheus textfile collector path; empty disables export
	Textfile string `json:"textfile" mapstructure:"textfile" yaml:"textfile"`
}

// InputConfig holds snapshot file collection configuration
type InputConfig struct {
	// ExcludePatterns are gitignore-style patterns of snapshot files to skip
	ExcludePatterns []string `json:"excludePatterns" mapstructure:"exclude_patterns" yaml:"exclude_patterns"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Format:      constants.OutputFormatText,
			Directory:   "",
			ShowDetails: false,
		},
		Logging: LoggingConfig{
			Level:  string(logging.LogLevelInfo),
			Format: string(logging.LogFormatConsole),
		},
		Audit: AuditConfig{
			AsOf:     "",
			Parallel: false,
		},
		Performance: PerformanceConfig{
			MaxGoroutines:  DefaultMaxGoroutines,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Check: CheckConfig{
			MaxViolations:  DefaultMaxViolations,
			FailOnSeverity: DefaultFailOnSeverity,
			MaxUtilization: DefaultMaxUtilization,
		},
		Metrics: MetricsConfig{
			Textfile: "",
		},
		Input: InputConfig{
			ExcludePatterns: []string{},
		},
	}
}

// LoadConfig loads configuration from file or returns default config
func LoadConfig(configPath string) (*Config, error) {
	return LoadConfigWithTarget(configPath, "")
}

// DiscoverConfigFile finds a config file for the given target path, or
// returns "" when none exists
func DiscoverConfigFile(targetPath string) string {
	return findDefaultConfig(targetPath)
}

// loadConfigFromFile layers the embedded defaults, CREDAUDIT_* environment
// variables and the given file, then validates the result
func loadConfigFromFile(configPath string) (*Config, error) {
	// Create a new viper instance to avoid race conditions
	v, err := newViper()
	if err != nil {
		return nil, err
	}

	v.SetEnvPrefix(constants.EnvVarPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if ext := strings.TrimPrefix(filepath.Ext(configPath), "."); ext != "" {
			v.SetConfigType(ext)
		}

		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// LoadConfigWithTarget loads configuration with target path context
func LoadConfigWithTarget(configPath string, targetPath string) (*Config, error) {
	// If no config path specified, discover one
	if configPath == "" {
		configPath = DiscoverConfigFile(targetPath)
	}

	return loadConfigFromFile(configPath)
}

// searchConfigInDirectory returns the first candidate present in dir
func searchConfigInDirectory(dir string, candidates []string) string {
	for _, candidate := range candidates {
		path := filepath.Join(dir, candidate)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// configCandidates are the file names tried in every search directory, in order
var configCandidates = []string{
	constants.ConfigFileName,
	"credaudit.yml",
	"credaudit.json",
	".credaudit.yaml",
	".credaudit.yml",
	".credaudit.toml",
}

// findDefaultConfig walks from targetPath up to the filesystem root, then
// tries the working directory, XDG config home, the home directory and
// finally the CREDAUDIT_CONFIG environment variable
func findDefaultConfig(targetPath string) string {
	if targetPath != "" {
		absPath, err := filepath.Abs(targetPath)
		if err == nil {
			// If it's a file, start from its directory
			info, err := os.Stat(absPath)
			if err == nil && !info.IsDir() {
				absPath = filepath.Dir(absPath)
			}

			volume := filepath.VolumeName(absPath)
			for dir := absPath; ; dir = filepath.Dir(dir) {
				if config := searchConfigInDirectory(dir, configCandidates); config != "" {
					return config
				}

				parent := filepath.Dir(dir)
				if parent == dir ||
					dir == volume ||
					(volume != "" && dir == volume+string(filepath.Separator)) {
					break
				}
			}
		}
	}

	if config := searchConfigInDirectory(".", configCandidates); config != "" {
		return config
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		if config := searchConfigInDirectory(filepath.Join(xdgConfig, constants.ToolName), configCandidates); config != "" {
			return config
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		configDir := filepath.Join(home, ".config", constants.ToolName)
		if config := searchConfigInDirectory(configDir, configCandidates); config != "" {
			return config
		}

		if config := searchConfigInDirectory(home, configCandidates); config != "" {
			return config
		}
	}

	if envConfig := os.Getenv(constants.ConfigEnvVar); envConfig != "" {
		if _, err := os.Stat(envConfig); err == nil {
			return envConfig
		}
	}

	return ""
}

// Validate validates the configuration
func (c *Config) Validate() error {
	validFormats := map[string]bool{
		constants.OutputFormatText: true,
		constants.OutputFormatJSON: true,
		constants.OutputFormatYAML: true,
		constants.OutputFormatCSV:  true,
		constants.OutputFormatXLSX: true,
	}

	if !validFormats[c.Output.Format] {
		return fmt.Errorf("invalid output.format '%s', must be one of: text, json, yaml, csv, xlsx", c.Output.Format)
	}

	if !logging.IsValidLevel(c.Logging.Level) {
		return fmt.Errorf("invalid logging.level '%s', must be one of: debug, info, warn, error", c.Logging.Level)
	}

	if !logging.IsValidFormat(c.Logging.Format) {
		return fmt.Errorf("invalid logging.format '%s', must be one of: structured, console", c.Logging.Format)
	}

	if c.Audit.AsOf != "" {
		if _, err := snapshot.ParseDate(c.Audit.AsOf); err != nil {
			return fmt.Errorf("invalid audit.as_of '%s': %w", c.Audit.AsOf, err)
		}
	}

	if c.Performance.MaxGoroutines < 1 {
		return fmt.Errorf("performance.max_goroutines must be >= 1, got %d", c.Performance.MaxGoroutines)
	}

	if c.Performance.TimeoutSeconds < 0 {
		return fmt.Errorf("performance.timeout_seconds must be >= 0, got %d", c.Performance.TimeoutSeconds)
	}

	return c.validateCheckConfig()
}

func (c *Config) validateCheckConfig() error {
	if c.Check.MaxViolations < -1 {
		return fmt.Errorf("check.max_violations must be >= -1, got %d", c.Check.MaxViolations)
	}

	if c.Check.MaxUtilization < 0 || c.Check.MaxUtilization > 100 {
		return fmt.Errorf("check.max_utilization must be between 0 and 100, got %d", c.Check.MaxUtilization)
	}

	if _, ok := parseSeverityThreshold(c.Check.FailOnSeverity); !ok {
		return fmt.Errorf("invalid check.fail_on_severity '%s', must be one of: none, low, medium, high, critical", c.Check.FailOnSeverity)
	}

	return nil
}

// ReferenceTime returns the pinned audit date, or now when none is configured
func (c *AuditConfig) ReferenceTime(now time.Time) (time.Time, error) {
	if c.AsOf == "" {
		return now, nil
	}
	return snapshot.ParseDate(c.AsOf)
}

// Timeout returns the batch timeout; zero means no timeout
func (c *PerformanceConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SeverityThreshold returns the severity that fails a check, empty when the gate is off
func (c *CheckConfig) SeverityThreshold() domain.Severity {
	s, _ := parseSeverityThreshold(c.FailOnSeverity)
	return s
}

// ViolationGateEnabled reports whether the violation count gate is active
func (c *CheckConfig) ViolationGateEnabled() bool {
	return c.MaxViolations >= 0
}

// UtilizationGateEnabled reports whether the utilization gate is active
func (c *CheckConfig) UtilizationGateEnabled() bool {
	return c.MaxUtilization > 0
}

func parseSeverityThreshold(value string) (domain.Severity, bool) {
	v := strings.ToUpper(strings.TrimSpace(value))
	if v == "" || v == "NONE" {
		return "", true
	}
	s := domain.Severity(v)
	if s.Rank() == 0 {
		return "", false
	}
	return s, true
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *Config, path string) error {
	// Create a new viper instance to avoid race conditions
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("output", config.Output)
	v.Set("logging", config.Logging)
	v.Set("audit", config.Audit)
	v.Set("performance", config.Performance)
	v.Set("check", config.Check)
	v.Set("metrics", config.Metrics)
	v.Set("input", config.Input)

	return v.WriteConfig()
}
