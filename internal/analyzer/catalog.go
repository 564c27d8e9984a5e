package analyzer

import (
	"github.com/ludo-technologies/credaudit/domain"
)

// CatalogVersion identifies the revision of the rule table
const CatalogVersion = "2024.1"

// Rule codes referenced by the detectors
const (
	CodeInaccurateBalance    = "FCRA-1681e-01"
	CodeIncorrectStatus      = "FCRA-1681e-02"
	CodeWrongPaymentHistory  = "FCRA-1681e-03"
	CodeIncorrectDOFD        = "FCRA-1681e-04"
	CodeDuplicateAccount     = "FCRA-1681e-05"
	CodeObsoleteNegative     = "FCRA-1681c-01"
	CodeObsoleteJudgment     = "FCRA-1681c-02"
	CodeObsoleteCollection   = "FCRA-1681c-03"
	CodeNoInvestigation      = "FCRA-1681s2-01"
	CodeNoUpdateAfterReview  = "FCRA-1681s2-02"
	CodeMissingRequiredField = "METRO2-01"
	CodeCrossBureauMismatch  = "METRO2-03"
	CodeReAgedDebt           = "FDCPA-01"
)

var catalogEntries = []domain.ViolationCatalogEntry{
	// 1681e(b) accuracy
	{
		Code:        CodeInaccurateBalance,
		Section:     "1681e(b)",
		Title:       "Inaccurate Balance Reporting",
		Description: "Balance reported does not match actual account balance. CRAs must follow reasonable procedures to assure maximum possible accuracy.",
		Severity:    domain.SeverityMedium,
	},
	{
		Code:        CodeIncorrectStatus,
		Section:     "1681e(b)",
		Title:       "Incorrect Account Status",
		Description: "Account status (open/closed) is reported incorrectly.",
		Severity:    domain.SeverityMedium,
	},
	{
		Code:        CodeWrongPaymentHistory,
		Section:     "1681e(b)",
		Title:       "Wrong Payment History",
		Description: "Payment history contains inaccurate late payment notations.",
		Severity:    domain.SeverityHigh,
	},
	{
		Code:        CodeIncorrectDOFD,
		Section:     "1681e(b)",
		Title:       "Incorrect Date of First Delinquency",
		Description: "The date of first delinquency is reported incorrectly, affecting the 7-year reporting period.",
		Severity:    domain.SeverityHigh,
	},
	{
		Code:        CodeDuplicateAccount,
		Section:     "1681e(b)",
		Title:       "Duplicate Account Reporting",
		Description: "Same account appears multiple times on credit report.",
		Severity:    domain.SeverityHigh,
	},

	// 1681c obsolete information
	{
		Code:        CodeObsoleteNegative,
		Section:     "1681c(a)",
		Title:       "Obsolete Negative Information",
		Description: "Negative information older than 7 years is still being reported (10 years for bankruptcy).",
		Severity:    domain.SeverityCritical,
	},
	{
		Code:        CodeObsoleteJudgment,
		Section:     "1681c(a)(2)",
		Title:       "Obsolete Judgment",
		Description: "Civil judgment older than 7 years or the governing statute of limitations (whichever is longer) is still being reported.",
		Severity:    domain.SeverityCritical,
	},
	{
		Code:        CodeObsoleteCollection,
		Section:     "1681c(a)(5)",
		Title:       "Obsolete Collection Account",
		Description: "Collection account older than 7 years from date of first delinquency is still being reported.",
		Severity:    domain.SeverityCritical,
	},

	// 1681s-2 furnisher responsibilities
	{
		Code:        CodeNoInvestigation,
		Section:     "1681s-2(a)",
		Title:       "Reporting Without Investigation",
		Description: "Furnisher continued reporting disputed information without conducting a reasonable investigation.",
		Severity:    domain.SeverityHigh,
	},
	{
		Code:        CodeNoUpdateAfterReview,
		Section:     "1681s-2(b)",
		Title:       "Failure to Update After Investigation",
		Description: "Furnisher failed to update or delete inaccurate information after investigation.",
		Severity:    domain.SeverityHigh,
	},

	// Metro 2 format
	{
		Code:        CodeMissingRequiredField,
		Section:     "Metro 2 Format",
		Title:       "Missing Required Fields",
		Description: "Account is missing required Metro 2 fields (Account Type, Account Status, etc.).",
		Severity:    domain.SeverityMedium,
	},
	{
		Code:        CodeCrossBureauMismatch,
		Section:     "Metro 2 Format",
		Title:       "Inconsistent Reporting Across Bureaus",
		Description: "Account information is reported differently across the three credit bureaus.",
		Severity:    domain.SeverityMedium,
	},

	// Collections
	{
		Code:        CodeReAgedDebt,
		Section:     "FDCPA + FCRA",
		Title:       "Re-aging of Debt",
		Description: "Collection account date of first delinquency has been illegally re-aged to extend reporting period.",
		Severity:    domain.SeverityCritical,
	},
}

// ViolationCatalog is the immutable registry of rule definitions
type ViolationCatalog struct {
	entries []domain.ViolationCatalogEntry
	byCode  map[string]int
}

// NewViolationCatalog builds a catalog from entries. Duplicate codes keep the first definition.
func NewViolationCatalog(entries []domain.ViolationCatalogEntry) *ViolationCatalog {
	c := &ViolationCatalog{
		entries: make([]domain.ViolationCatalogEntry, 0, len(entries)),
		byCode:  make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if _, dup := c.byCode[e.Code]; dup {
			continue
		}
		c.byCode[e.Code] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	return c
}

var defaultCatalog = NewViolationCatalog(catalogEntries)

// DefaultCatalog returns the process-wide rule catalog
func DefaultCatalog() *ViolationCatalog {
	return defaultCatalog
}

// Lookup returns the entry for code or an UNKNOWN_RULE_CODE error
func (c *ViolationCatalog) Lookup(code string) (domain.ViolationCatalogEntry, error) {
	idx, ok := c.byCode[code]
	if !ok {
		return domain.ViolationCatalogEntry{}, domain.NewUnknownRuleCodeError(code)
	}
	return c.entries[idx], nil
}

// MustLookup is Lookup for codes the detectors reference. A miss is a programming error.
func (c *ViolationCatalog) MustLookup(code string) domain.ViolationCatalogEntry {
	entry, err := c.Lookup(code)
	if err != nil {
		panic(err)
	}
	return entry
}

// Entries returns a copy of all entries in catalog order
func (c *ViolationCatalog) Entries() []domain.ViolationCatalogEntry {
	out := make([]domain.ViolationCatalogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of rules
func (c *ViolationCatalog) Len() int {
	return len(c.entries)
}
