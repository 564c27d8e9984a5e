package analyzer

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/ludo-technologies/credaudit/domain"
)

// thinFileThreshold is the number of positive tradelines below which a file is thin
const thinFileThreshold = 3

// negativeStatuses are account status fragments that mark an account negative
// when the report carries no explicit isNegative flag
var negativeStatuses = []string{
	"COLLECTION",
	"CHARGE_OFF",
	"CHARGEOFF",
	"DELINQUENT",
	"REPOSSESSION",
	"FORECLOSURE",
	"BANKRUPTCY",
}

// Starter products suggested for thin files
var (
	SecuredCardProducts = []domain.ProductReference{
		{Name: "Chime Secured Credit Builder", URL: "https://www.chime.com/credit-builder/", Description: "No credit check, no annual fee, reports to all 3 bureaus"},
		{Name: "OpenSky Secured Visa", URL: "https://www.openskycc.com/", Description: "No credit check required, $200 minimum deposit"},
		{Name: "Discover it Secured", URL: "https://www.discover.com/credit-cards/secured/", Description: "Earn cashback, automatic reviews for graduation"},
	}
	CreditBuilderProducts = []domain.ProductReference{
		{Name: "Self Credit Builder", URL: "https://www.self.inc/", Description: "Credit builder loan, reports to all 3 bureaus"},
		{Name: "MoneyLion Credit Builder Plus", URL: "https://www.moneylion.com/", Description: "Credit builder membership with 0% APR loan"},
	}
	RentalReportingProducts = []domain.ProductReference{
		{Name: "Boom Pay", URL: "https://www.boompay.app/", Description: "Report rent payments to all 3 bureaus"},
		{Name: "Rental Kharma", URL: "https://www.rentalkharma.com/", Description: "Add up to 24 months of rent history"},
		{Name: "LevelCredit", URL: "https://www.levelcredit.com/", Description: "Report rent, utilities, and subscriptions"},
	}
)

const (
	adviceDefault      = "Keep this account in good standing."
	adviceGoodwill     = "CAUTION: This is your oldest tradeline. The late payment is old. Consider sending a goodwill letter instead of disputing."
	adviceRecentLate   = "This is your oldest tradeline with a recent late payment. Weigh the benefit of disputing vs. keeping the account age."
	adviceKeepOpen     = "This is your oldest account - it helps your average account age. Keep it open!"
	goodwillLetterNote = "Send goodwill letter - do NOT dispute to avoid losing account history"
)

// TradelineAnalyzer classifies tradelines and evaluates account-age health
type TradelineAnalyzer struct{}

// NewTradelineAnalyzer creates a new tradeline analyzer
func NewTradelineAnalyzer() *TradelineAnalyzer {
	return &TradelineAnalyzer{}
}

// Analyze runs the tradeline analysis as of asOf
func (a *TradelineAnalyzer) Analyze(tradelines []domain.Tradeline, asOf time.Time) domain.TradelineSummary {
	oldest := OldestAccountAge(tradelines, asOf)

	positives := make([]domain.PositiveAccount, 0)
	warnings := make([]domain.WarningAccount, 0)
	totalPositive, totalNegative := 0, 0
	totalAge, agedAccounts := 0, 0

	for _, tl := range tradelines {
		if IsNegative(tl) {
			totalNegative++
			continue
		}
		totalPositive++

		age := 0
		if tl.DateOpened != nil {
			age = MonthsBetween(*tl.DateOpened, asOf)
			totalAge += age
			agedAccounts++
		}

		history := ParsePaymentHistory(tl.PaymentHistory)
		var lateAge *int
		if idx, ok := history.MostRecentLate(); ok {
			lateAge = &idx
		}
		isOldest := age == oldest && age > 0

		creditor := tl.CreditorName
		if creditor == "" {
			creditor = "Unknown"
		}

		advice := adviceDefault
		switch {
		case isOldest && lateAge != nil && *lateAge > oldLateMonths:
			advice = adviceGoodwill
			warnings = append(warnings, domain.WarningAccount{
				CreditorName:  creditor,
				AccountNumber: tl.AccountNumber,
				Warning: fmt.Sprintf("Oldest tradeline (%d years) with late payment from %d years ago",
					floorYears(age), floorYears(*lateAge)),
				Recommendation: goodwillLetterNote,
			})
		case isOldest && lateAge != nil:
			advice = adviceRecentLate
		case isOldest:
			advice = adviceKeepOpen
		}

		positives = append(positives, domain.PositiveAccount{
			CreditorName:    creditor,
			AccountNumber:   tl.AccountNumber,
			AccountAge:      age,
			CreditLimit:     tl.Limit(),
			HasLatePayments: lateAge != nil,
			LatePaymentAge:  lateAge,
			IsOldestAccount: isOldest,
			Recommendation:  advice,
		})
	}

	average := 0
	if agedAccounts > 0 {
		average = int(math.RoundToEven(float64(totalAge) / float64(agedAccounts)))
	}

	thin := totalPositive < thinFileThreshold
	recommendations := make([]domain.Recommendation, 0)
	if thin {
		recommendations = append(recommendations, starterRecommendations(totalPositive)...)
	}

	sort.SliceStable(positives, func(i, j int) bool {
		return positives[i].AccountAge > positives[j].AccountAge
	})

	return domain.TradelineSummary{
		TotalPositive:         totalPositive,
		TotalNegative:         totalNegative,
		NeedsStarterAccounts:  thin,
		NeedsRentalTradelines: thin,
		OldestAccountAge:      oldest,
		AverageAccountAge:     average,
		Recommendations:       recommendations,
		PositiveAccounts:      positives,
		WarningAccounts:       warnings,
	}
}

// IsNegative uses the reported isNegative flag when present and otherwise
// derives negativity from the account status
func IsNegative(tl domain.Tradeline) bool {
	if tl.IsNegative != nil {
		return *tl.IsNegative
	}
	status := strings.ToUpper(tl.AccountStatus)
	for _, ns := range negativeStatuses {
		if strings.Contains(status, ns) {
			return true
		}
	}
	return false
}

// OldestAccountAge returns the largest account age in months over all tradelines
// with an open date, negative accounts included. It is never below zero.
func OldestAccountAge(tradelines []domain.Tradeline, asOf time.Time) int {
	oldest := 0
	for _, tl := range tradelines {
		if tl.DateOpened == nil {
			continue
		}
		if age := MonthsBetween(*tl.DateOpened, asOf); age > oldest {
			oldest = age
		}
	}
	return oldest
}

func starterRecommendations(positives int) []domain.Recommendation {
	secured := SecuredCardProducts[0]
	builder := CreditBuilderProducts[0]
	rental := RentalReportingProducts[0]

	return []domain.Recommendation{
		{
			Category:        domain.CategoryTradelines,
			Type:            domain.RecommendationSecuredCard,
			Title:           "Open a Secured Credit Card",
			Description:     fmt.Sprintf("You only have %d positive tradeline(s). Opening a secured credit card will help build positive history.", positives),
			Action:          fmt.Sprintf("Apply for %s", secured.Name),
			EstimatedImpact: "+15-30 points over 3-6 months",
			Priority:        1,
			Product:         &secured,
		},
		{
			Category:        domain.CategoryTradelines,
			Type:            domain.RecommendationCreditBuilder,
			Title:           "Open a Credit Builder Loan",
			Description:     "A credit builder loan adds installment account diversity to your credit mix.",
			Action:          fmt.Sprintf("Open a credit builder loan with %s", builder.Name),
			EstimatedImpact: "+10-20 points over 6-12 months",
			Priority:        2,
			Product:         &builder,
		},
		{
			Category:        domain.CategoryTradelines,
			Type:            domain.RecommendationRentalTradeline,
			Title:           "Add Your Rent Payments",
			Description:     "If you pay rent, you can add up to 24 months of payment history to your credit report.",
			Action:          fmt.Sprintf("Enroll with %s to report rent payments", rental.Name),
			EstimatedImpact: "+20-40 points with 24 months of history",
			Priority:        1,
			Product:         &rental,
		},
	}
}

func floorYears(months int) int {
	return int(math.Floor(float64(months) / 12))
}
