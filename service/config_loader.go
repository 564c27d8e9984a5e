package service

import (
	"fmt"
	"time"

	"github.com/ludo-technologies/credaudit/domain"
	"github.com/ludo-technologies/credaudit/internal/config"
)

// ConfigurationLoaderImpl loads configuration files into batch audit requests
type ConfigurationLoaderImpl struct{}

// NewConfigurationLoader creates a new configuration loader service
func NewConfigurationLoader() *ConfigurationLoaderImpl {
	return &ConfigurationLoaderImpl{}
}

// LoadConfig loads configuration from the specified path
func (c *ConfigurationLoaderImpl) LoadConfig(path string) (*domain.BatchAuditRequest, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration file", err)
	}

	return c.RequestFromConfig(cfg)
}

// LoadDefaultConfig loads a discovered configuration file, falling back to
// the built-in defaults when none is found or it cannot be loaded
func (c *ConfigurationLoaderImpl) LoadDefaultConfig() *domain.BatchAuditRequest {
	if cfg, err := config.LoadConfigWithTarget("", ""); err == nil {
		if req, err := c.RequestFromConfig(cfg); err == nil {
			return req
		}
	}

	req, _ := c.RequestFromConfig(config.DefaultConfig())
	return req
}

// FindDefaultConfigFile searches for a configuration file starting at target
func (c *ConfigurationLoaderImpl) FindDefaultConfigFile(target string) string {
	return config.DiscoverConfigFile(target)
}

// MergeConfig merges command line values over a configuration file request
func (c *ConfigurationLoaderImpl) MergeConfig(base *domain.BatchAuditRequest, override *domain.BatchAuditRequest) *domain.BatchAuditRequest {
	merged := *base

	// Paths always come from command arguments
	if len(override.Paths) > 0 {
		merged.Paths = override.Paths
	}

	if override.OutputFormat != "" {
		merged.OutputFormat = override.OutputFormat
	}

	if override.OutputWriter != nil {
		merged.OutputWriter = override.OutputWriter
	}

	if override.OutputPath != "" {
		merged.OutputPath = override.OutputPath
	}

	if override.ShowDetails {
		merged.ShowDetails = true
	}

	if !override.AsOf.IsZero() {
		merged.AsOf = override.AsOf
	}

	if override.Parallel {
		merged.Parallel = true
	}

	if override.Recursive {
		merged.Recursive = true
	}

	if len(override.ExcludePatterns) > 0 {
		merged.ExcludePatterns = append(append([]string{}, base.ExcludePatterns...), override.ExcludePatterns...)
	}

	if override.ConfigPath != "" {
		merged.ConfigPath = override.ConfigPath
	}

	return &merged
}

// RequestFromConfig converts a loaded Config to a BatchAuditRequest
func (c *ConfigurationLoaderImpl) RequestFromConfig(cfg *config.Config) (*domain.BatchAuditRequest, error) {
	asOf, err := cfg.Audit.ReferenceTime(time.Time{})
	if err != nil {
		return nil, domain.NewConfigError("invalid audit.as_of", err)
	}

	return &domain.BatchAuditRequest{
		// Paths are set by the caller, not from config
		Paths: []string{},

		OutputFormat: domain.OutputFormat(cfg.Output.Format),
		OutputPath:   cfg.Output.Directory,
		ShowDetails:  cfg.Output.ShowDetails,

		AsOf:     asOf,
		Parallel: cfg.Audit.Parallel,

		Recursive:       true,
		ExcludePatterns: append([]string{}, cfg.Input.ExcludePatterns...),
	}, nil
}

// ValidateConfig validates a merged request
func (c *ConfigurationLoaderImpl) ValidateConfig(req *domain.BatchAuditRequest) error {
	validFormats := map[domain.OutputFormat]bool{
		domain.OutputFormatText: true,
		domain.OutputFormatJSON: true,
		domain.OutputFormatYAML: true,
		domain.OutputFormatCSV:  true,
		domain.OutputFormatXLSX: true,
	}

	if !validFormats[req.OutputFormat] {
		return fmt.Errorf("invalid output format: %s (must be one of: text, json, yaml, csv, xlsx)",
			req.OutputFormat)
	}

	if len(req.Paths) == 0 {
		return fmt.Errorf("at least one snapshot path is required")
	}

	return nil
}
