package analyzer

import (
	"fmt"
	"strings"
	"time"

	"github.com/ludo-technologies/credaudit/domain"
	"github.com/shopspring/decimal"
)

// balanceAnomalyFactor is how far a balance may exceed its limit before it is flagged
var balanceAnomalyFactor = decimal.NewFromFloat(1.5)

// ViolationDetector checks individual records against the rule catalog.
// Every check is an independent predicate; all applicable violations are returned.
type ViolationDetector struct {
	catalog *ViolationCatalog
}

// NewViolationDetector creates a detector backed by catalog, or the default catalog when nil
func NewViolationDetector(catalog *ViolationCatalog) *ViolationDetector {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &ViolationDetector{catalog: catalog}
}

// AnalyzeTradeline runs the tradeline checks. all is the full tradeline list
// of the report and is only used for duplicate detection.
func (d *ViolationDetector) AnalyzeTradeline(tl domain.Tradeline, all []domain.Tradeline, asOf time.Time) []domain.DetectedViolation {
	violations := make([]domain.DetectedViolation, 0)

	if v, ok := d.checkObsoleteNegative(tl, asOf); ok {
		violations = append(violations, v)
	}
	if v, ok := d.checkDuplicate(tl, all); ok {
		violations = append(violations, v)
	}
	if v, ok := d.checkMissingDateOpened(tl); ok {
		violations = append(violations, v)
	}
	if v, ok := d.checkBalanceAnomaly(tl); ok {
		violations = append(violations, v)
	}
	if v, ok := d.checkClosedWithBalance(tl); ok {
		violations = append(violations, v)
	}

	return violations
}

// AnalyzeCollection runs the collection-specific checks
func (d *ViolationDetector) AnalyzeCollection(c domain.Tradeline, asOf time.Time) []domain.DetectedViolation {
	violations := make([]domain.DetectedViolation, 0)

	if v, ok := d.checkObsoleteCollection(c, asOf); ok {
		violations = append(violations, v)
	}
	if v, ok := d.checkReAged(c); ok {
		violations = append(violations, v)
	}

	return violations
}

func (d *ViolationDetector) newViolation(code, evidence, field string, reported, expected any) domain.DetectedViolation {
	return domain.DetectedViolation{
		Violation:           d.catalog.MustLookup(code),
		Evidence:            evidence,
		Field:               field,
		BureauReportedValue: reported,
		ExpectedValue:       expected,
	}
}

func (d *ViolationDetector) checkObsoleteNegative(tl domain.Tradeline, asOf time.Time) (domain.DetectedViolation, bool) {
	if !tl.NegativeFlag() || tl.DateOfFirstDelinquency == nil {
		return domain.DetectedViolation{}, false
	}
	dofd := *tl.DateOfFirstDelinquency
	if !OlderThanYears(dofd, asOf, obsolescenceYears) {
		return domain.DetectedViolation{}, false
	}
	return d.newViolation(
		CodeObsoleteNegative,
		fmt.Sprintf("Date of first delinquency (%s) is more than 7 years old", formatDate(dofd)),
		"dateOfFirstDelinquency",
		formatDate(dofd),
		"Should be removed from report",
	), true
}

func (d *ViolationDetector) checkDuplicate(tl domain.Tradeline, all []domain.Tradeline) (domain.DetectedViolation, bool) {
	duplicates := 0
	for _, other := range all {
		if other.ID == tl.ID {
			continue
		}
		if strings.EqualFold(other.CreditorName, tl.CreditorName) && other.AccountNumber == tl.AccountNumber {
			duplicates++
		}
	}
	if duplicates == 0 {
		return domain.DetectedViolation{}, false
	}
	return d.newViolation(
		CodeDuplicateAccount,
		fmt.Sprintf("Account appears %d times on credit report", duplicates+1),
		"accountNumber",
		tl.AccountNumber,
		"Should appear only once",
	), true
}

func (d *ViolationDetector) checkMissingDateOpened(tl domain.Tradeline) (domain.DetectedViolation, bool) {
	if tl.DateOpened != nil {
		return domain.DetectedViolation{}, false
	}
	return d.newViolation(
		CodeMissingRequiredField,
		"Date Opened field is missing",
		"dateOpened",
		nil,
		"Valid date required",
	), true
}

func (d *ViolationDetector) checkBalanceAnomaly(tl domain.Tradeline) (domain.DetectedViolation, bool) {
	if tl.CurrentBalance == nil || tl.CreditLimit == nil {
		return domain.DetectedViolation{}, false
	}
	balance, limit := *tl.CurrentBalance, *tl.CreditLimit
	if !limit.IsPositive() || !balance.GreaterThan(limit.Mul(balanceAnomalyFactor)) {
		return domain.DetectedViolation{}, false
	}
	return d.newViolation(
		CodeInaccurateBalance,
		fmt.Sprintf("Balance ($%s) exceeds credit limit ($%s) by more than 50%%", formatMoney(balance), formatMoney(limit)),
		"currentBalance",
		formatMoney(balance),
		"Should not significantly exceed credit limit",
	), true
}

func (d *ViolationDetector) checkClosedWithBalance(tl domain.Tradeline) (domain.DetectedViolation, bool) {
	if !tl.IsClosed() || !tl.Balance().IsPositive() || tl.IsCollection() {
		return domain.DetectedViolation{}, false
	}
	return d.newViolation(
		CodeIncorrectStatus,
		fmt.Sprintf("Account marked as CLOSED but shows balance of $%s", formatMoney(tl.Balance())),
		"accountStatus",
		"CLOSED with balance",
		"Status or balance may be incorrect",
	), true
}

func (d *ViolationDetector) checkObsoleteCollection(c domain.Tradeline, asOf time.Time) (domain.DetectedViolation, bool) {
	if c.DateOfFirstDelinquency == nil {
		return domain.DetectedViolation{}, false
	}
	dofd := *c.DateOfFirstDelinquency
	if !OlderThanYears(dofd, asOf, obsolescenceYears) {
		return domain.DetectedViolation{}, false
	}
	return d.newViolation(
		CodeObsoleteCollection,
		fmt.Sprintf("Collection DOFD (%s) is more than 7 years old", formatDate(dofd)),
		"dateOfFirstDelinquency",
		formatDate(dofd),
		"Should be removed from report",
	), true
}

func (d *ViolationDetector) checkReAged(c domain.Tradeline) (domain.DetectedViolation, bool) {
	if c.DateOpened == nil || c.DateOfFirstDelinquency == nil {
		return domain.DetectedViolation{}, false
	}
	opened, dofd := *c.DateOpened, *c.DateOfFirstDelinquency
	if !opened.Before(dofd) {
		return domain.DetectedViolation{}, false
	}
	return d.newViolation(
		CodeReAgedDebt,
		fmt.Sprintf("Collection open date (%s) is before DOFD (%s)", formatDate(opened), formatDate(dofd)),
		"dateOpened",
		formatDate(opened),
		"Open date should be after original DOFD",
	), true
}

func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}
