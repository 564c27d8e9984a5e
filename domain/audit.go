package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// ItemType classifies a reviewable entity
type ItemType string

const (
	ItemTypeTradeline    ItemType = "TRADELINE"
	ItemTypeCollection   ItemType = "COLLECTION"
	ItemTypeInquiry      ItemType = "INQUIRY"
	ItemTypePublicRecord ItemType = "PUBLIC_RECORD"
)

// Resolution is a suggested way of handling a review item
type Resolution string

const (
	ResolutionGeneralDispute        Resolution = "GENERAL_DISPUTE"
	ResolutionFCRAViolation         Resolution = "FCRA_VIOLATION"
	ResolutionIdentityTheft         Resolution = "IDENTITY_THEFT"
	ResolutionDebtValidation        Resolution = "DEBT_VALIDATION"
	ResolutionPayForDelete          Resolution = "PAY_FOR_DELETE"
	ResolutionGoodwillLetter        Resolution = "GOODWILL_LETTER"
	ResolutionAuthorizedUserRemoval Resolution = "AUTHORIZED_USER_REMOVAL"
	ResolutionSettlementNegotiation Resolution = "SETTLEMENT_NEGOTIATION"
	ResolutionDoNotDispute          Resolution = "DO_NOT_DISPUTE"
	ResolutionMonitorOnly           Resolution = "MONITOR_ONLY"
)

// ResolutionOption is a selectable resolution with display text
type ResolutionOption struct {
	Value       Resolution `json:"value" yaml:"value"`
	Label       string     `json:"label" yaml:"label"`
	Description string     `json:"description" yaml:"description"`
}

// AuditStatus is the lifecycle state of an audit
type AuditStatus string

const (
	AuditStatusPendingReview      AuditStatus = "PENDING_REVIEW"
	AuditStatusInReview           AuditStatus = "IN_REVIEW"
	AuditStatusCompleted          AuditStatus = "COMPLETED"
	AuditStatusBlueprintGenerated AuditStatus = "BLUEPRINT_GENERATED"
	AuditStatusArchived           AuditStatus = "ARCHIVED"
)

// UtilizationPriority ranks a revolving account by how much it hurts utilization
type UtilizationPriority string

const (
	UtilizationPriorityHigh   UtilizationPriority = "HIGH"
	UtilizationPriorityMedium UtilizationPriority = "MEDIUM"
	UtilizationPriorityLow    UtilizationPriority = "LOW"
)

// Rank returns 0 for HIGH, 1 for MEDIUM and 2 otherwise
func (p UtilizationPriority) Rank() int {
	switch p {
	case UtilizationPriorityHigh:
		return 0
	case UtilizationPriorityMedium:
		return 1
	default:
		return 2
	}
}

// RecommendationCategory groups recommendations by the analysis that produced them
type RecommendationCategory string

const (
	CategoryUtilization RecommendationCategory = "UTILIZATION"
	CategoryTradelines  RecommendationCategory = "TRADELINES"
	CategoryCollections RecommendationCategory = "COLLECTIONS"
	CategoryDispute     RecommendationCategory = "DISPUTE"
)

// RecommendationType identifies the concrete action behind a recommendation
type RecommendationType string

const (
	RecommendationRemoveAU        RecommendationType = "REMOVE_AU"
	RecommendationPayDown         RecommendationType = "PAY_DOWN"
	RecommendationSecuredCard     RecommendationType = "SECURED_CARD"
	RecommendationCreditBuilder   RecommendationType = "CREDIT_BUILDER"
	RecommendationRentalTradeline RecommendationType = "RENTAL_TRADELINE"
	RecommendationDebtValidation  RecommendationType = "DEBT_VALIDATION"
	RecommendationFCRADispute     RecommendationType = "FCRA_DISPUTE"
)

// ProductReference points at a starter product that can fix a thin file
type ProductReference struct {
	Name        string `json:"name" yaml:"name"`
	URL         string `json:"url" yaml:"url"`
	Description string `json:"description" yaml:"description"`
}

// Recommendation is a ranked piece of advice. Lower priority is more urgent.
type Recommendation struct {
	Category        RecommendationCategory `json:"category" yaml:"category"`
	Type            RecommendationType     `json:"type,omitempty" yaml:"type,omitempty"`
	Title           string                 `json:"title" yaml:"title"`
	Description     string                 `json:"description" yaml:"description"`
	Action          string                 `json:"action" yaml:"action"`
	EstimatedImpact string                 `json:"estimatedImpact" yaml:"estimatedImpact"`
	Priority        int                    `json:"priority" yaml:"priority"`
	Account         string                 `json:"account,omitempty" yaml:"account,omitempty"`
	Amount          *int64                 `json:"amount,omitempty" yaml:"amount,omitempty"`
	Product         *ProductReference      `json:"product,omitempty" yaml:"product,omitempty"`
}

// UtilizationAccount is the utilization view of one revolving account
type UtilizationAccount struct {
	CreditorName     string              `json:"creditorName" yaml:"creditorName"`
	AccountNumber    string              `json:"accountNumber" yaml:"accountNumber"`
	Balance          decimal.Decimal     `json:"balance" yaml:"balance"`
	CreditLimit      decimal.Decimal     `json:"creditLimit" yaml:"creditLimit"`
	Utilization      int                 `json:"utilization" yaml:"utilization"`
	IsAuthorizedUser bool                `json:"isAuthorizedUser" yaml:"isAuthorizedUser"`
	AmountToReach20  int64               `json:"amountToReach20" yaml:"amountToReach20"`
	Priority         UtilizationPriority `json:"priority" yaml:"priority"`
	Recommendation   string              `json:"recommendation" yaml:"recommendation"`
}

// UtilizationSummary is the output of the utilization analysis
type UtilizationSummary struct {
	TotalBalance           decimal.Decimal      `json:"totalBalance" yaml:"totalBalance"`
	TotalCreditLimit       decimal.Decimal      `json:"totalCreditLimit" yaml:"totalCreditLimit"`
	OverallUtilization     int                  `json:"overallUtilization" yaml:"overallUtilization"`
	AmountToReach30Percent int64                `json:"amountToReach30Percent" yaml:"amountToReach30Percent"`
	AmountToReach20Percent int64                `json:"amountToReach20Percent" yaml:"amountToReach20Percent"`
	AmountToReach10Percent int64                `json:"amountToReach10Percent" yaml:"amountToReach10Percent"`
	AmountToReachOptimal   int64                `json:"amountToReachOptimal" yaml:"amountToReachOptimal"`
	Accounts               []UtilizationAccount `json:"accounts" yaml:"accounts"`
	Recommendations        []Recommendation     `json:"recommendations" yaml:"recommendations"`
}

// PositiveAccount describes a tradeline in good standing
type PositiveAccount struct {
	CreditorName    string          `json:"creditorName" yaml:"creditorName"`
	AccountNumber   string          `json:"accountNumber" yaml:"accountNumber"`
	AccountAge      int             `json:"accountAge" yaml:"accountAge"`
	CreditLimit     decimal.Decimal `json:"creditLimit" yaml:"creditLimit"`
	HasLatePayments bool            `json:"hasLatePayments" yaml:"hasLatePayments"`
	LatePaymentAge  *int            `json:"latePaymentAge" yaml:"latePaymentAge"`
	IsOldestAccount bool            `json:"isOldestAccount" yaml:"isOldestAccount"`
	Recommendation  string          `json:"recommendation" yaml:"recommendation"`
}

// WarningAccount flags an account that should not be disputed
type WarningAccount struct {
	CreditorName   string `json:"creditorName" yaml:"creditorName"`
	AccountNumber  string `json:"accountNumber" yaml:"accountNumber"`
	Warning        string `json:"warning" yaml:"warning"`
	Recommendation string `json:"recommendation" yaml:"recommendation"`
}

// TradelineSummary is the output of the tradeline health analysis
type TradelineSummary struct {
	TotalPositive         int               `json:"totalPositive" yaml:"totalPositive"`
	TotalNegative         int               `json:"totalNegative" yaml:"totalNegative"`
	NeedsStarterAccounts  bool              `json:"needsStarterAccounts" yaml:"needsStarterAccounts"`
	NeedsRentalTradelines bool              `json:"needsRentalTradelines" yaml:"needsRentalTradelines"`
	OldestAccountAge      int               `json:"oldestAccountAge" yaml:"oldestAccountAge"`
	AverageAccountAge     int               `json:"averageAccountAge" yaml:"averageAccountAge"`
	Recommendations       []Recommendation  `json:"recommendations" yaml:"recommendations"`
	PositiveAccounts      []PositiveAccount `json:"positiveAccounts" yaml:"positiveAccounts"`
	WarningAccounts       []WarningAccount  `json:"warningAccounts" yaml:"warningAccounts"`
}

// AuditItem is one reviewable entity of the report
type AuditItem struct {
	ID                  string              `json:"id" yaml:"id"`
	ItemType            ItemType            `json:"itemType" yaml:"itemType"`
	CreditorName        string              `json:"creditorName" yaml:"creditorName"`
	AccountNumber       string              `json:"accountNumber" yaml:"accountNumber"`
	Bureau              string              `json:"bureau,omitempty" yaml:"bureau,omitempty"`
	AccountType         string              `json:"accountType,omitempty" yaml:"accountType,omitempty"`
	CurrentBalance      decimal.Decimal     `json:"currentBalance" yaml:"currentBalance"`
	CreditLimit         *decimal.Decimal    `json:"creditLimit,omitempty" yaml:"creditLimit,omitempty"`
	UtilizationPercent  *int                `json:"utilizationPercent,omitempty" yaml:"utilizationPercent,omitempty"`
	AccountAge          int                 `json:"accountAge" yaml:"accountAge"`
	IsAuthorizedUser    bool                `json:"isAuthorizedUser" yaml:"isAuthorizedUser"`
	IsNegative          bool                `json:"isNegative" yaml:"isNegative"`
	NegativeReason      string              `json:"negativeReason,omitempty" yaml:"negativeReason,omitempty"`
	DetectedViolations  []DetectedViolation `json:"detectedViolations" yaml:"detectedViolations"`
	ViolationCount      int                 `json:"violationCount" yaml:"violationCount"`
	SuggestedResolution Resolution          `json:"suggestedResolution" yaml:"suggestedResolution"`
	ResolutionOptions   []ResolutionOption  `json:"resolutionOptions" yaml:"resolutionOptions"`
	DoNotDisputeWarning string              `json:"doNotDisputeWarning,omitempty" yaml:"doNotDisputeWarning,omitempty"`
	PriorityLevel       int                 `json:"priorityLevel" yaml:"priorityLevel"`
	IsSettleable        bool                `json:"isSettleable" yaml:"isSettleable"`
	EstimatedSettlement *int64              `json:"estimatedSettlement,omitempty" yaml:"estimatedSettlement,omitempty"`
	OriginalCreditor    string              `json:"originalCreditor,omitempty" yaml:"originalCreditor,omitempty"`
}

// Scores holds the three bureau scores; any may be absent
type Scores struct {
	TransUnion *int `json:"transunion" yaml:"transunion"`
	Equifax    *int `json:"equifax" yaml:"equifax"`
	Experian   *int `json:"experian" yaml:"experian"`
}

// AuditSummary holds the headline metrics of an audit
type AuditSummary struct {
	TotalViolationsFound    int   `json:"totalViolationsFound" yaml:"totalViolationsFound"`
	TotalNegativeItems      int   `json:"totalNegativeItems" yaml:"totalNegativeItems"`
	TotalCollections        int   `json:"totalCollections" yaml:"totalCollections"`
	TotalInquiries          int   `json:"totalInquiries" yaml:"totalInquiries"`
	PositiveTradelineCount  int   `json:"positiveTradelineCount" yaml:"positiveTradelineCount"`
	UtilizationPercentage   int   `json:"utilizationPercentage" yaml:"utilizationPercentage"`
	AmountToReach20Percent  int64 `json:"amountToReach20Percent" yaml:"amountToReach20Percent"`
	NeedsStarterAccounts    bool  `json:"needsStarterAccounts" yaml:"needsStarterAccounts"`
	HasAuthorizedUserIssues bool  `json:"hasAuthorizedUserIssues" yaml:"hasAuthorizedUserIssues"`
}

// AuditResult is the complete output of one audit
type AuditResult struct {
	ID                  string             `json:"id,omitempty" yaml:"id,omitempty"`
	ReportID            string             `json:"reportId,omitempty" yaml:"reportId,omitempty"`
	AsOf                time.Time          `json:"asOf" yaml:"asOf"`
	Status              AuditStatus        `json:"status" yaml:"status"`
	Scores              Scores             `json:"scores" yaml:"scores"`
	Summary             AuditSummary       `json:"summary" yaml:"summary"`
	ViolationAnalysis   ViolationAnalysis  `json:"violationAnalysis" yaml:"violationAnalysis"`
	UtilizationAnalysis UtilizationSummary `json:"utilizationAnalysis" yaml:"utilizationAnalysis"`
	TradelineAnalysis   TradelineSummary   `json:"tradelineAnalysis" yaml:"tradelineAnalysis"`
	ItemsForReview      []AuditItem        `json:"itemsForReview" yaml:"itemsForReview"`
	Recommendations     []Recommendation   `json:"recommendations" yaml:"recommendations"`
}

// ToMap renders the result as a nested key/value structure keyed by the JSON field names
func (r *AuditResult) ToMap() (map[string]any, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
