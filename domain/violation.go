package domain

// Severity represents how serious a rule violation is
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Rank orders severities from LOW (1) to CRITICAL (4); unknown values rank 0
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// ViolationCatalogEntry is one regulatory rule definition
type ViolationCatalogEntry struct {
	Code        string   `json:"code" yaml:"code"`
	Section     string   `json:"section" yaml:"section"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Severity    Severity `json:"severity" yaml:"severity"`
}

// DetectedViolation is a rule violation found on a specific record
type DetectedViolation struct {
	Violation           ViolationCatalogEntry `json:"violation" yaml:"violation"`
	Evidence            string                `json:"evidence" yaml:"evidence"`
	Field               string                `json:"field" yaml:"field"`
	BureauReportedValue any                   `json:"bureauReportedValue" yaml:"bureauReportedValue"`
	ExpectedValue       any                   `json:"expectedValue,omitempty" yaml:"expectedValue,omitempty"`
}

// Code returns the catalog code of the violated rule
func (v DetectedViolation) Code() string {
	return v.Violation.Code
}

// ViolationAnalysis is the merged detector output for one report
type ViolationAnalysis struct {
	Violations []DetectedViolation            `json:"violations" yaml:"violations"`
	Total      int                            `json:"total" yaml:"total"`
	ByBureau   map[string][]DetectedViolation `json:"byBureau" yaml:"byBureau"`
}

// MaxSeverity returns the most severe violation level found, empty if none
func (a ViolationAnalysis) MaxSeverity() Severity {
	var max Severity
	for _, v := range a.Violations {
		if v.Violation.Severity.Rank() > max.Rank() {
			max = v.Violation.Severity
		}
	}
	return max
}
