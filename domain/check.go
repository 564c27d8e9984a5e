package domain

// CheckResult represents the result of a threshold check over audited reports
type CheckResult struct {
	Passed      bool             `json:"passed"`
	ExitCode    int              `json:"exit_code"`
	Violations  []CheckViolation `json:"violations"`
	Summary     CheckSummary     `json:"summary"`
	Duration    int64            `json:"duration_ms"`
	GeneratedAt string           `json:"generated_at"`
	Version     string           `json:"version"`
}

// CheckViolation represents a single threshold violation
type CheckViolation struct {
	Category  string `json:"category"`            // violations, severity, utilization
	Rule      string `json:"rule"`                // max-violations, fail-on-severity, max-utilization
	Severity  string `json:"severity"`            // error, warning
	Message   string `json:"message"`             // Human-readable description
	Location  string `json:"location,omitempty"`  // Snapshot file or report id
	Actual    string `json:"actual"`              // Actual value
	Threshold string `json:"threshold,omitempty"` // Configured threshold
}

// CheckSummary provides aggregate statistics
type CheckSummary struct {
	ReportsAudited       int  `json:"reports_audited"`
	TotalViolations      int  `json:"total_violations"`
	RuleViolationsFound  int  `json:"rule_violations_found"`
	CriticalViolations   int  `json:"critical_violations"`
	HighestUtilization   int  `json:"highest_utilization"`
	SeverityChecked      bool `json:"severity_checked"`
	UtilizationChecked   bool `json:"utilization_checked"`
	ViolationCountLimit  int  `json:"violation_count_limit"`
	ReportsWithViolation int  `json:"reports_with_violations"`
}
