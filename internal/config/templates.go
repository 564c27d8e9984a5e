package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Profile represents how credaudit is used
type Profile string

const (
	// ProfilePersonal audits one consumer's reports from the terminal
	ProfilePersonal Profile = "personal"

	// ProfileAgency audits many client reports in batch, usually in CI or cron
	ProfileAgency Profile = "agency"
)

// Strictness represents the check gate strictness level
type Strictness string

const (
	StrictnessRelaxed  Strictness = "relaxed"
	StrictnessStandard Strictness = "standard"
	StrictnessStrict   Strictness = "strict"
)

// ProfilePreset holds configuration presets for different profiles
type ProfilePreset struct {
	OutputFormat    string
	LogFormat       string
	Parallel        bool
	MaxGoroutines   int
	ExcludePatterns []string
}

// StrictnessPreset holds threshold values for different strictness levels
type StrictnessPreset struct {
	MaxViolations  int
	FailOnSeverity string
	MaxUtilization int
}

// GetProfilePresets returns presets for different profiles
func GetProfilePresets() map[Profile]ProfilePreset {
	return map[Profile]ProfilePreset{
		ProfilePersonal: {
			OutputFormat:    "text",
			LogFormat:       "console",
			Parallel:        false,
			MaxGoroutines:   DefaultMaxGoroutines,
			ExcludePatterns: []string{},
		},
		ProfileAgency: {
			OutputFormat:  "xlsx",
			LogFormat:     "structured",
			Parallel:      true,
			MaxGoroutines: 8,
			ExcludePatterns: []string{
				"archive/",
				"*.draft.json",
			},
		},
	}
}

// GetStrictnessPresets returns presets for different strictness levels
func GetStrictnessPresets() map[Strictness]StrictnessPreset {
	return map[Strictness]StrictnessPreset{
		StrictnessRelaxed: {
			MaxViolations:  -1, // No limit
			FailOnSeverity: "CRITICAL",
			MaxUtilization: 0, // No limit
		},
		StrictnessStandard: {
			MaxViolations:  -1,
			FailOnSeverity: "HIGH",
			MaxUtilization: 50,
		},
		StrictnessStrict: {
			MaxViolations:  0,
			FailOnSeverity: "MEDIUM",
			MaxUtilization: 30,
		},
	}
}

// GetFullConfigTemplate returns a documented YAML configuration for the
// given profile and strictness. Unknown values fall back to personal/standard.
func GetFullConfigTemplate(profile Profile, strictness Strictness) string {
	pp, ok := GetProfilePresets()[profile]
	if !ok {
		profile = ProfilePersonal
		pp = GetProfilePresets()[ProfilePersonal]
	}
	sp, ok := GetStrictnessPresets()[strictness]
	if !ok {
		strictness = StrictnessStandard
		sp = GetStrictnessPresets()[StrictnessStandard]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# credaudit configuration (profile: %s, strictness: %s)\n", profile, strictness)
	b.WriteString("# Every key can be overridden with a CREDAUDIT_<SECTION>_<KEY> environment variable.\n\n")

	b.WriteString("# ============================================================\n")
	b.WriteString("# Output\n")
	b.WriteString("# ============================================================\n")
	b.WriteString("output:\n")
	b.WriteString("  # text, json, yaml, csv, xlsx\n")
	fmt.Fprintf(&b, "  format: %s\n", pp.OutputFormat)
	b.WriteString("  # Directory for report files; empty writes to stdout (xlsx requires a directory)\n")
	b.WriteString("  directory: \"\"\n")
	b.WriteString("  # Include per-item review details in text output\n")
	b.WriteString("  show_details: false\n\n")

	b.WriteString("# ============================================================\n")
	b.WriteString("# Logging\n")
	b.WriteString("# ============================================================\n")
	b.WriteString("logging:\n")
	b.WriteString("  # debug, info, warn, error\n")
	b.WriteString("  level: info\n")
	b.WriteString("  # structured (JSON lines) or console\n")
	fmt.Fprintf(&b, "  format: %s\n\n", pp.LogFormat)

	b.WriteString("# ============================================================\n")
	b.WriteString("# Audit engine\n")
	b.WriteString("# ============================================================\n")
	b.WriteString("audit:\n")
	b.WriteString("  # Reference date (YYYY-MM-DD) for age and obsolescence rules; empty means today\n")
	b.WriteString("  as_of: \"\"\n")
	b.WriteString("  # Run violation, utilization and tradeline analysis concurrently\n")
	fmt.Fprintf(&b, "  parallel: %s\n\n", strconv.FormatBool(pp.Parallel))

	b.WriteString("performance:\n")
	fmt.Fprintf(&b, "  max_goroutines: %d\n", pp.MaxGoroutines)
	b.WriteString("  # Batch timeout in seconds; 0 disables it\n")
	fmt.Fprintf(&b, "  timeout_seconds: %d\n\n", DefaultTimeoutSeconds)

	b.WriteString("# ============================================================\n")
	b.WriteString("# Check gate (credaudit check)\n")
	b.WriteString("# ============================================================\n")
	b.WriteString("check:\n")
	b.WriteString("  # Violations allowed per report; -1 disables this gate\n")
	fmt.Fprintf(&b, "  max_violations: %d\n", sp.MaxViolations)
	b.WriteString("  # Fail on any violation at or above: LOW, MEDIUM, HIGH, CRITICAL (NONE disables)\n")
	fmt.Fprintf(&b, "  fail_on_severity: %s\n", sp.FailOnSeverity)
	b.WriteString("  # Highest acceptable overall utilization percent; 0 disables this gate\n")
	fmt.Fprintf(&b, "  max_utilization: %d\n\n", sp.MaxUtilization)

	b.WriteString("metrics:\n")
	b.WriteString("  # Prometheus textfile collector output path; empty disables export\n")
	b.WriteString("  textfile: \"\"\n\n")

	b.WriteString("input:\n")
	b.WriteString("  # gitignore-style patterns for snapshot files to skip\n")
	fmt.Fprintf(&b, "  exclude_patterns: %s\n", formatYAMLArray(pp.ExcludePatterns))

	return b.String()
}

// GetMinimalConfigTemplate returns a minimal configuration template
func GetMinimalConfigTemplate() string {
	return `# credaudit configuration (minimal)
# Generate the documented version with: credaudit init

output:
  format: text

audit:
  parallel: false

check:
  fail_on_severity: HIGH
  max_utilization: 50
`
}

// formatYAMLArray formats a string slice as a YAML flow sequence
func formatYAMLArray(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = strconv.Quote(item)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
