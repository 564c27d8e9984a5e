package analyzer

import (
	"fmt"
	"sort"
	"time"

	"github.com/ludo-technologies/credaudit/domain"
	"github.com/shopspring/decimal"
)

const (
	priorityTradelineWithViolations = 5
	priorityTradeline               = 3
	priorityCollection              = 4
	priorityInquiry                 = 1
	priorityPublicRecord            = 5

	auIssueUtilization = 20
)

var settlementRate = decimal.NewFromFloat(0.35)

// ResolutionOptions is the full set of resolutions offered on a review item
var ResolutionOptions = []domain.ResolutionOption{
	{Value: domain.ResolutionGeneralDispute, Label: "General Dispute", Description: "Standard dispute challenging accuracy of the account"},
	{Value: domain.ResolutionFCRAViolation, Label: "FCRA Violation", Description: "Dispute based on identified FCRA violations"},
	{Value: domain.ResolutionIdentityTheft, Label: "Identity Theft", Description: "Account is result of identity theft/fraud"},
	{Value: domain.ResolutionDebtValidation, Label: "Debt Validation", Description: "Request full validation of the debt from collector"},
	{Value: domain.ResolutionPayForDelete, Label: "Pay for Delete", Description: "Negotiate payment in exchange for removal"},
	{Value: domain.ResolutionGoodwillLetter, Label: "Goodwill Letter", Description: "Request removal as a courtesy based on good history"},
	{Value: domain.ResolutionAuthorizedUserRemoval, Label: "AU Removal", Description: "Remove yourself as authorized user"},
	{Value: domain.ResolutionSettlementNegotiation, Label: "Settlement", Description: "Negotiate settlement for less than owed"},
	{Value: domain.ResolutionDoNotDispute, Label: "Do Not Dispute", Description: "Keep this account - beneficial for credit history"},
	{Value: domain.ResolutionMonitorOnly, Label: "Monitor Only", Description: "No action needed, continue to monitor"},
}

// InquiryResolutionOptions is the reduced option set for hard inquiries
var InquiryResolutionOptions = []domain.ResolutionOption{
	{Value: domain.ResolutionGeneralDispute, Label: "Dispute Inquiry", Description: "Challenge unauthorized inquiry"},
	{Value: domain.ResolutionDoNotDispute, Label: "Do Not Dispute", Description: "This was an authorized inquiry"},
}

const veryOldAccountWarning = "This is a very old account. Removing it may lower your average account age significantly."

// AuditParts holds the independent analysis results that make up one audit
type AuditParts struct {
	Violations  domain.ViolationAnalysis
	Utilization domain.UtilizationSummary
	Tradelines  domain.TradelineSummary
}

// Auditor orchestrates the analyzers over a whole report snapshot
type Auditor struct {
	detector    *ViolationDetector
	utilization *UtilizationAnalyzer
	tradelines  *TradelineAnalyzer
}

// NewAuditor creates an auditor backed by catalog, or the default catalog when nil
func NewAuditor(catalog *ViolationCatalog) *Auditor {
	return &Auditor{
		detector:    NewViolationDetector(catalog),
		utilization: NewUtilizationAnalyzer(),
		tradelines:  NewTradelineAnalyzer(),
	}
}

// RunAudit audits snapshot with the default catalog
func RunAudit(snapshot *domain.ReportSnapshot, asOf time.Time) domain.AuditResult {
	return NewAuditor(nil).Run(snapshot, asOf)
}

// Run performs the complete audit sequentially
func (a *Auditor) Run(snapshot *domain.ReportSnapshot, asOf time.Time) domain.AuditResult {
	regular, collections := PartitionTradelines(snapshot.Tradelines)
	parts := AuditParts{
		Violations:  a.DetectViolations(snapshot.Tradelines, collections, asOf),
		Utilization: a.AnalyzeUtilization(regular),
		Tradelines:  a.AnalyzeTradelines(regular, asOf),
	}
	return a.Assemble(snapshot, asOf, parts)
}

// PartitionTradelines splits tradelines into regular accounts and collections,
// preserving report order in both
func PartitionTradelines(tradelines []domain.Tradeline) (regular, collections []domain.Tradeline) {
	regular = make([]domain.Tradeline, 0, len(tradelines))
	collections = make([]domain.Tradeline, 0)
	for _, tl := range tradelines {
		if tl.IsCollection() {
			collections = append(collections, tl)
		} else {
			regular = append(regular, tl)
		}
	}
	return regular, collections
}

// DetectViolations runs the tradeline checks over every tradeline and the
// collection checks over collections. Violations on records with an
// unrecognised bureau stay in the flat list but are left out of ByBureau.
func (a *Auditor) DetectViolations(tradelines, collections []domain.Tradeline, asOf time.Time) domain.ViolationAnalysis {
	all := make([]domain.DetectedViolation, 0)
	byBureau := map[string][]domain.DetectedViolation{
		domain.BureauKey(string(domain.BureauTransUnion)): {},
		domain.BureauKey(string(domain.BureauEquifax)):    {},
		domain.BureauKey(string(domain.BureauExperian)):   {},
	}
	add := func(bureau string, found []domain.DetectedViolation) {
		all = append(all, found...)
		if key := domain.BureauKey(bureau); domain.IsKnownBureauKey(key) {
			byBureau[key] = append(byBureau[key], found...)
		}
	}

	for _, tl := range tradelines {
		add(tl.Bureau, a.detector.AnalyzeTradeline(tl, tradelines, asOf))
	}
	for _, c := range collections {
		add(c.Bureau, a.detector.AnalyzeCollection(c, asOf))
	}

	return domain.ViolationAnalysis{
		Violations: all,
		Total:      len(all),
		ByBureau:   byBureau,
	}
}

// AnalyzeUtilization runs the utilization analysis over regular tradelines
func (a *Auditor) AnalyzeUtilization(regular []domain.Tradeline) domain.UtilizationSummary {
	return a.utilization.Analyze(regular)
}

// AnalyzeTradelines runs the tradeline health analysis over regular tradelines
func (a *Auditor) AnalyzeTradelines(regular []domain.Tradeline, asOf time.Time) domain.TradelineSummary {
	return a.tradelines.Analyze(regular, asOf)
}

// Assemble builds review items, merges recommendations and fills the summary
// from independently computed parts
func (a *Auditor) Assemble(snapshot *domain.ReportSnapshot, asOf time.Time, parts AuditParts) domain.AuditResult {
	regular, collections := PartitionTradelines(snapshot.Tradelines)

	hasAUIssues := false
	for _, acct := range parts.Utilization.Accounts {
		if acct.IsAuthorizedUser && acct.Utilization > auIssueUtilization {
			hasAUIssues = true
			break
		}
	}

	items := a.buildReviewItems(snapshot, regular, collections, asOf)
	recommendations := mergeRecommendations(parts, collections)

	return domain.AuditResult{
		ReportID: snapshot.ID,
		AsOf:     asOf,
		Status:   domain.AuditStatusPendingReview,
		Scores: domain.Scores{
			TransUnion: snapshot.TransUnionScore,
			Equifax:    snapshot.EquifaxScore,
			Experian:   snapshot.ExperianScore,
		},
		Summary: domain.AuditSummary{
			TotalViolationsFound:    parts.Violations.Total,
			TotalNegativeItems:      parts.Tradelines.TotalNegative,
			TotalCollections:        len(collections),
			TotalInquiries:          len(snapshot.Inquiries),
			PositiveTradelineCount:  parts.Tradelines.TotalPositive,
			UtilizationPercentage:   parts.Utilization.OverallUtilization,
			AmountToReach20Percent:  parts.Utilization.AmountToReach20Percent,
			NeedsStarterAccounts:    parts.Tradelines.NeedsStarterAccounts,
			HasAuthorizedUserIssues: hasAUIssues,
		},
		ViolationAnalysis:   parts.Violations,
		UtilizationAnalysis: parts.Utilization,
		TradelineAnalysis:   parts.Tradelines,
		ItemsForReview:      items,
		Recommendations:     recommendations,
	}
}

func (a *Auditor) buildReviewItems(snapshot *domain.ReportSnapshot, regular, collections []domain.Tradeline, asOf time.Time) []domain.AuditItem {
	items := make([]domain.AuditItem, 0)

	for _, tl := range regular {
		if !IsNegative(tl) {
			continue
		}
		items = append(items, a.tradelineItem(tl, snapshot.Tradelines, asOf))
	}
	for _, c := range collections {
		items = append(items, a.collectionItem(c, asOf))
	}
	for _, inq := range snapshot.Inquiries {
		if !inq.IsHard() {
			continue
		}
		items = append(items, inquiryItem(inq))
	}
	for _, pr := range snapshot.PublicRecords {
		items = append(items, a.publicRecordItem(pr, asOf))
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PriorityLevel > items[j].PriorityLevel
	})
	return items
}

func (a *Auditor) tradelineItem(tl domain.Tradeline, all []domain.Tradeline, asOf time.Time) domain.AuditItem {
	violations := a.detector.AnalyzeTradeline(tl, all, asOf)

	age := 0
	if tl.DateOpened != nil {
		age = MonthsBetween(*tl.DateOpened, asOf)
	}

	item := domain.AuditItem{
		ID:                  tl.ID,
		ItemType:            domain.ItemTypeTradeline,
		CreditorName:        tl.CreditorName,
		AccountNumber:       tl.AccountNumber,
		Bureau:              tl.Bureau,
		AccountType:         tl.AccountType,
		CurrentBalance:      tl.Balance(),
		CreditLimit:         tl.CreditLimit,
		AccountAge:          age,
		IsAuthorizedUser:    tl.IsAuthorizedUser(),
		IsNegative:          true,
		NegativeReason:      tl.NegativeReason,
		DetectedViolations:  violations,
		ViolationCount:      len(violations),
		SuggestedResolution: domain.ResolutionGeneralDispute,
		ResolutionOptions:   ResolutionOptions,
		PriorityLevel:       priorityTradeline,
	}
	if tl.Limit().IsPositive() {
		u := percentOf(tl.Balance(), tl.Limit())
		item.UtilizationPercent = &u
	}
	if len(violations) > 0 {
		item.SuggestedResolution = domain.ResolutionFCRAViolation
		item.PriorityLevel = priorityTradelineWithViolations
	}
	if age > veryOldAccountMonths {
		item.DoNotDisputeWarning = veryOldAccountWarning
	}
	return item
}

func (a *Auditor) collectionItem(c domain.Tradeline, asOf time.Time) domain.AuditItem {
	violations := a.detector.AnalyzeCollection(c, asOf)

	balance := c.Balance()
	settlement := int64(0)
	if balance.IsPositive() {
		settlement = balance.Mul(settlementRate).RoundBank(0).IntPart()
	}

	original := c.OriginalCreditor
	if original == "" {
		original = c.CreditorName
	}

	item := domain.AuditItem{
		ID:                  c.ID,
		ItemType:            domain.ItemTypeCollection,
		CreditorName:        c.CreditorName,
		AccountNumber:       c.AccountNumber,
		Bureau:              c.Bureau,
		AccountType:         c.AccountType,
		CurrentBalance:      balance,
		IsAuthorizedUser:    c.IsAuthorizedUser(),
		IsNegative:          true,
		NegativeReason:      "Collection Account",
		DetectedViolations:  violations,
		ViolationCount:      len(violations),
		SuggestedResolution: domain.ResolutionDebtValidation,
		ResolutionOptions:   ResolutionOptions,
		PriorityLevel:       priorityCollection,
		IsSettleable:        true,
		EstimatedSettlement: &settlement,
		OriginalCreditor:    original,
	}
	if c.DateOpened != nil {
		item.AccountAge = MonthsBetween(*c.DateOpened, asOf)
	}
	if len(violations) > 0 {
		item.SuggestedResolution = domain.ResolutionFCRAViolation
	}
	return item
}

func inquiryItem(inq domain.Inquiry) domain.AuditItem {
	return domain.AuditItem{
		ID:                  inq.ID,
		ItemType:            domain.ItemTypeInquiry,
		CreditorName:        inq.CreditorName,
		AccountNumber:       "N/A",
		Bureau:              inq.Bureau,
		CurrentBalance:      decimal.Zero,
		IsNegative:          true,
		NegativeReason:      "Hard Inquiry",
		DetectedViolations:  []domain.DetectedViolation{},
		SuggestedResolution: domain.ResolutionGeneralDispute,
		ResolutionOptions:   InquiryResolutionOptions,
		PriorityLevel:       priorityInquiry,
	}
}

func (a *Auditor) publicRecordItem(pr domain.PublicRecord, asOf time.Time) domain.AuditItem {
	violations := make([]domain.DetectedViolation, 0)
	if v, ok := a.checkObsoletePublicRecord(pr, asOf); ok {
		violations = append(violations, v)
	}

	creditor := pr.CourtName
	if creditor == "" {
		creditor = "Public Record"
	}
	account := pr.CaseNumber
	if account == "" {
		account = "N/A"
	}
	amount := decimal.Zero
	if pr.Amount != nil {
		amount = *pr.Amount
	}

	item := domain.AuditItem{
		ID:                  pr.ID,
		ItemType:            domain.ItemTypePublicRecord,
		CreditorName:        creditor,
		AccountNumber:       account,
		Bureau:              pr.Bureau,
		CurrentBalance:      amount,
		IsNegative:          true,
		NegativeReason:      pr.RecordType,
		DetectedViolations:  violations,
		ViolationCount:      len(violations),
		SuggestedResolution: domain.ResolutionGeneralDispute,
		ResolutionOptions:   ResolutionOptions,
		PriorityLevel:       priorityPublicRecord,
	}
	if len(violations) > 0 {
		item.SuggestedResolution = domain.ResolutionFCRAViolation
	}
	return item
}

// checkObsoletePublicRecord applies the 10-year bankruptcy window and the
// 7-year window for every other record type, measured from the filing date
func (a *Auditor) checkObsoletePublicRecord(pr domain.PublicRecord, asOf time.Time) (domain.DetectedViolation, bool) {
	if pr.FilingDate == nil {
		return domain.DetectedViolation{}, false
	}
	filed := *pr.FilingDate
	years := YearsSince(filed, asOf)

	entry := a.detector.catalog.MustLookup(CodeObsoleteNegative)
	switch {
	case pr.IsBankruptcy() && years > bankruptcyObsolescenceYears:
		entry.Title = "Obsolete Bankruptcy"
		entry.Description = "Older than 10 years"
	case !pr.IsBankruptcy() && years > obsolescenceYears:
		entry.Title = "Obsolete Public Record"
		entry.Description = "Older than 7 years"
	default:
		return domain.DetectedViolation{}, false
	}

	return domain.DetectedViolation{
		Violation:           entry,
		Evidence:            fmt.Sprintf("Filed %d years ago", int(years)),
		Field:               "filingDate",
		BureauReportedValue: formatDate(filed),
		ExpectedValue:       "Should be removed from report",
	}, true
}

func mergeRecommendations(parts AuditParts, collections []domain.Tradeline) []domain.Recommendation {
	recommendations := make([]domain.Recommendation, 0,
		len(parts.Utilization.Recommendations)+len(parts.Tradelines.Recommendations)+2)

	for _, rec := range parts.Utilization.Recommendations {
		rec.Category = domain.CategoryUtilization
		recommendations = append(recommendations, rec)
	}
	for _, rec := range parts.Tradelines.Recommendations {
		rec.Category = domain.CategoryTradelines
		recommendations = append(recommendations, rec)
	}

	if len(collections) > 0 {
		total := decimal.Zero
		for _, c := range collections {
			total = total.Add(c.Balance())
		}
		recommendations = append(recommendations, domain.Recommendation{
			Category:        domain.CategoryCollections,
			Type:            domain.RecommendationDebtValidation,
			Title:           fmt.Sprintf("Address %d Collection Account(s)", len(collections)),
			Description:     fmt.Sprintf("You have %d collection(s) totaling $%s. These may be settleable for 30-50%% of the balance.", len(collections), formatMoney(total)),
			Action:          "Send debt validation letters, then negotiate pay-for-delete if valid",
			EstimatedImpact: "+50-100 points when removed",
			Priority:        3,
		})
	}

	if parts.Violations.Total > 0 {
		recommendations = append(recommendations, domain.Recommendation{
			Category:        domain.CategoryDispute,
			Type:            domain.RecommendationFCRADispute,
			Title:           fmt.Sprintf("%d FCRA Violation(s) Detected", parts.Violations.Total),
			Description:     "Multiple FCRA violations were detected. These provide strong grounds for dispute.",
			Action:          "File disputes citing specific FCRA violations",
			EstimatedImpact: "High probability of removal",
			Priority:        1,
		})
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].Priority < recommendations[j].Priority
	})
	return recommendations
}
