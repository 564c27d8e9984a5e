package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/ludo-technologies/credaudit/domain"
	"github.com/ludo-technologies/credaudit/internal/config"
	"github.com/ludo-technologies/credaudit/internal/constants"
	"github.com/ludo-technologies/credaudit/internal/version"
	"github.com/ludo-technologies/credaudit/service"
	"github.com/spf13/cobra"
)

// CheckExitError is a custom error type for check command exit codes
type CheckExitError struct {
	Code    int
	Message string
}

func (e *CheckExitError) Error() string {
	return e.Message
}

type checkOptions struct {
	runOptions
	maxViolations  int
	failOnSeverity string
	maxUtilization int
	verbose        bool
	jsonOutput     bool
}

func checkCmd() *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check [path...]",
		Short: "Gate credit report snapshots against thresholds",
		Long: `Audit snapshots and fail when they exceed the configured thresholds.
Useful for batch pipelines that should stop on reports needing attention.

Exit codes:
  0 - All checks pass
  1 - Threshold(s) exceeded
  2 - Audit error (file not found, invalid snapshot, etc.)

Examples:
  # Fail on any HIGH or CRITICAL violation (default)
  credaudit check clients/

  # Allow at most 3 violations per report and 30% utilization
  credaudit check --max-violations 3 --max-utilization 30 clients/

  # Only fail on CRITICAL violations
  credaudit check --fail-on-severity critical report.json

  # JSON output for machine parsing
  credaudit check --json clients/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, opts)
		},
		SilenceUsage:  true, // Don't print usage on errors (we handle our own output)
		SilenceErrors: true, // Don't print error messages (we handle our own output)
	}

	cmd.Flags().IntVar(&opts.maxViolations, "max-violations", config.DefaultMaxViolations,
		"Maximum rule violations allowed per report (-1 = no limit)")
	cmd.Flags().StringVar(&opts.failOnSeverity, "fail-on-severity", config.DefaultFailOnSeverity,
		"Fail on violations at or above this severity: low, medium, high, critical, none")
	cmd.Flags().IntVar(&opts.maxUtilization, "max-utilization", config.DefaultMaxUtilization,
		"Maximum overall utilization percent allowed (0 = no limit)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false,
		"Show detailed output")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false,
		"Output results as JSON")
	addRunFlags(cmd, &opts.runOptions)

	return cmd
}

func runCheck(cmd *cobra.Command, args []string, opts *checkOptions) error {
	if len(args) == 0 {
		return &CheckExitError{Code: constants.ExitCodeError, Message: "no paths specified"}
	}

	startTime := time.Now()

	cfg, err := opts.loadConfig(cmd, configTarget(args))
	if err != nil {
		return &CheckExitError{Code: constants.ExitCodeError, Message: err.Error()}
	}

	// Apply config values for flags not explicitly set on CLI
	flags := cmd.Flags()
	if flags.Changed("max-violations") {
		cfg.Check.MaxViolations = opts.maxViolations
	}
	if flags.Changed("fail-on-severity") {
		cfg.Check.FailOnSeverity = opts.failOnSeverity
	}
	if flags.Changed("max-utilization") {
		cfg.Check.MaxUtilization = opts.maxUtilization
	}
	if err := cfg.Validate(); err != nil {
		return &CheckExitError{Code: constants.ExitCodeError, Message: fmt.Sprintf("invalid thresholds: %v", err)}
	}

	rt, err := newRuntime(cfg, service.NewOutputFormatter(), !opts.quiet && !opts.jsonOutput)
	if err != nil {
		return &CheckExitError{Code: constants.ExitCodeError, Message: err.Error()}
	}
	defer rt.close()

	req, err := rt.request(&domain.BatchAuditRequest{Paths: args, OutputWriter: cmd.OutOrStdout()})
	if err != nil {
		return &CheckExitError{Code: constants.ExitCodeError, Message: err.Error()}
	}
	req.Recursive = opts.recursive()

	response, err := rt.audit(cmd.Context(), req)
	if err != nil {
		return &CheckExitError{Code: constants.ExitCodeError, Message: err.Error()}
	}

	result := evaluateCheck(response.Audits, &cfg.Check)
	result.Duration = time.Since(startTime).Milliseconds()
	result.GeneratedAt = time.Now().Format(time.RFC3339)
	result.Version = version.Version

	// Unreadable snapshots are audit errors, reported after the results
	if len(response.Errors) > 0 {
		result.ExitCode = constants.ExitCodeError
	}

	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		if err := service.WriteJSON(out, result); err != nil {
			return &CheckExitError{Code: constants.ExitCodeError, Message: fmt.Sprintf("failed to encode JSON: %v", err)}
		}
	} else {
		outputCheckText(out, result, response.Errors, &cfg.Check, opts.verbose)
	}

	switch result.ExitCode {
	case constants.ExitCodePass:
		return nil
	case constants.ExitCodeError:
		return &CheckExitError{Code: constants.ExitCodeError, Message: fmt.Sprintf("%d snapshot(s) could not be audited", len(response.Errors))}
	default:
		return &CheckExitError{Code: result.ExitCode, Message: ""}
	}
}

// evaluateCheck applies the enabled gates to every audited report
func evaluateCheck(audits []domain.AuditResponse, check *config.CheckConfig) *domain.CheckResult {
	result := &domain.CheckResult{
		Passed:     true,
		ExitCode:   constants.ExitCodePass,
		Violations: []domain.CheckViolation{},
		Summary: domain.CheckSummary{
			ReportsAudited:      len(audits),
			SeverityChecked:     check.SeverityThreshold() != "",
			UtilizationChecked:  check.UtilizationGateEnabled(),
			ViolationCountLimit: check.MaxViolations,
		},
	}

	threshold := check.SeverityThreshold()

	for _, audit := range audits {
		r := audit.Result
		if r == nil {
			continue
		}
		location := audit.Source
		if location == "" {
			location = r.ReportID
		}

		violations := r.ViolationAnalysis.Violations
		result.Summary.RuleViolationsFound += len(violations)
		if len(violations) > 0 {
			result.Summary.ReportsWithViolation++
		}

		atOrAbove := 0
		for _, v := range violations {
			if v.Violation.Severity == domain.SeverityCritical {
				result.Summary.CriticalViolations++
			}
			if threshold != "" && v.Violation.Severity.Rank() >= threshold.Rank() {
				atOrAbove++
			}
		}

		utilization := r.UtilizationAnalysis.OverallUtilization
		if utilization > result.Summary.HighestUtilization {
			result.Summary.HighestUtilization = utilization
		}

		if check.ViolationGateEnabled() && len(violations) > check.MaxViolations {
			result.Violations = append(result.Violations, domain.CheckViolation{
				Category:  "violations",
				Rule:      "max-violations",
				Severity:  "error",
				Message:   fmt.Sprintf("Report %s has %d rule violations", reportLabel(r), len(violations)),
				Location:  location,
				Actual:    strconv.Itoa(len(violations)),
				Threshold: strconv.Itoa(check.MaxViolations),
			})
		}

		if atOrAbove > 0 {
			result.Violations = append(result.Violations, domain.CheckViolation{
				Category:  "severity",
				Rule:      "fail-on-severity",
				Severity:  "error",
				Message:   fmt.Sprintf("Report %s has %d violation(s) at or above %s (highest: %s)", reportLabel(r), atOrAbove, threshold, r.ViolationAnalysis.MaxSeverity()),
				Location:  location,
				Actual:    string(r.ViolationAnalysis.MaxSeverity()),
				Threshold: string(threshold),
			})
		}

		if check.UtilizationGateEnabled() && utilization > check.MaxUtilization {
			result.Violations = append(result.Violations, domain.CheckViolation{
				Category:  "utilization",
				Rule:      "max-utilization",
				Severity:  "warning",
				Message:   fmt.Sprintf("Report %s has %d%% overall utilization", reportLabel(r), utilization),
				Location:  location,
				Actual:    strconv.Itoa(utilization),
				Threshold: strconv.Itoa(check.MaxUtilization),
			})
		}
	}

	result.Summary.TotalViolations = len(result.Violations)
	if len(result.Violations) > 0 {
		result.Passed = false
		result.ExitCode = constants.ExitCodeFail
	}
	return result
}

func reportLabel(r *domain.AuditResult) string {
	if r.ReportID == "" {
		return "(unnamed)"
	}
	return r.ReportID
}

func outputCheckText(w io.Writer, result *domain.CheckResult, auditErrors []string, check *config.CheckConfig, verbose bool) {
	if result.Passed {
		fmt.Fprintln(w, "PASS: All checks passed")
	} else {
		fmt.Fprintln(w, "FAIL: Check failed")
		fmt.Fprintf(w, "  Violations: %d\n", result.Summary.TotalViolations)
	}

	for _, v := range result.Violations {
		severity := "ERROR"
		if v.Severity == "warning" {
			severity = "WARN"
		}
		fmt.Fprintf(w, "  [%s] %s: %s\n", severity, v.Category, v.Message)
		if verbose && v.Location != "" {
			fmt.Fprintf(w, "         at %s\n", v.Location)
		}
	}

	for _, e := range auditErrors {
		fmt.Fprintf(w, "  [ERROR] audit: %s\n", e)
	}

	if verbose {
		fmt.Fprintf(w, "\nSummary:\n")
		fmt.Fprintf(w, "  Reports audited: %d\n", result.Summary.ReportsAudited)
		fmt.Fprintf(w, "  Rule violations found: %d (critical: %d)\n",
			result.Summary.RuleViolationsFound, result.Summary.CriticalViolations)
		fmt.Fprintf(w, "  Reports with violations: %d\n", result.Summary.ReportsWithViolation)
		fmt.Fprintf(w, "  Highest utilization: %d%%\n", result.Summary.HighestUtilization)
		if check.ViolationGateEnabled() {
			fmt.Fprintf(w, "  Violation limit: %d per report\n", check.MaxViolations)
		}
		if result.Summary.SeverityChecked {
			fmt.Fprintf(w, "  Severity gate: %s\n", check.SeverityThreshold())
		}
		if result.Summary.UtilizationChecked {
			fmt.Fprintf(w, "  Utilization limit: %d%%\n", check.MaxUtilization)
		}
		fmt.Fprintf(w, "  Duration: %dms\n", result.Duration)
	}
}
