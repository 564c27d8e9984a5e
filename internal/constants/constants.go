package constants

// Tool name and related constants
const (
	// ToolName is the name of this tool
	ToolName = "credaudit"

	// ConfigFileName is the default config file name
	ConfigFileName = "credaudit.yaml"

	// IgnoreFileName lists snapshot paths to skip, in .gitignore syntax
	IgnoreFileName = ".credauditignore"

	// EnvVarPrefix is the prefix for environment variables
	EnvVarPrefix = "CREDAUDIT"

	// ConfigEnvVar points at a config file when none is found by discovery
	ConfigEnvVar = "CREDAUDIT_CONFIG"
)

// Output format constants
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"
	OutputFormatCSV  = "csv"
	OutputFormatXLSX = "xlsx"
)

// Check command exit codes
const (
	ExitCodePass  = 0
	ExitCodeFail  = 1
	ExitCodeError = 2
)

// Metric names exported by audit runs
const (
	MetricsNamespace = "credaudit"
)
