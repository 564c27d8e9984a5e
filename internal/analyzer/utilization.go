package analyzer

import (
	"fmt"
	"sort"

	"github.com/ludo-technologies/credaudit/domain"
	"github.com/shopspring/decimal"
)

// Utilization targets as fractions of the credit limit
var (
	target30      = decimal.NewFromFloat(0.30)
	target20      = decimal.NewFromFloat(0.20)
	target10      = decimal.NewFromFloat(0.10)
	targetOptimal = decimal.NewFromFloat(0.09)
	hundred       = decimal.NewFromInt(100)
)

const (
	highUtilization        = 50
	mediumUtilization      = 30
	auRemovalUtilization   = 20
	goodUtilization        = 10
	overallPayDownTrigger  = 30
	overallHighImpactLevel = 50
)

// UtilizationAnalyzer computes revolving utilization and paydown targets
type UtilizationAnalyzer struct{}

// NewUtilizationAnalyzer creates a new utilization analyzer
func NewUtilizationAnalyzer() *UtilizationAnalyzer {
	return &UtilizationAnalyzer{}
}

// Analyze runs the utilization analysis over tradelines
func (a *UtilizationAnalyzer) Analyze(tradelines []domain.Tradeline) domain.UtilizationSummary {
	totalBalance := decimal.Zero
	totalLimit := decimal.Zero
	accounts := make([]domain.UtilizationAccount, 0)
	recommendations := make([]domain.Recommendation, 0)

	for _, tl := range tradelines {
		if !isRevolving(tl) {
			continue
		}

		balance, limit := tl.Balance(), tl.Limit()
		totalBalance = totalBalance.Add(balance)
		totalLimit = totalLimit.Add(limit)

		utilization := percentOf(balance, limit)
		toReach20 := ceilInt(balance.Sub(limit.Mul(target20)))
		isAU := tl.IsAuthorizedUser()
		creditor := tl.CreditorName
		if creditor == "" {
			creditor = "Unknown Creditor"
		}

		account := domain.UtilizationAccount{
			CreditorName:     creditor,
			AccountNumber:    tl.AccountNumber,
			Balance:          balance,
			CreditLimit:      limit,
			Utilization:      utilization,
			IsAuthorizedUser: isAU,
			AmountToReach20:  clampNonNegative(toReach20),
			Priority:         classifyUtilization(utilization, isAU),
		}

		switch {
		case isAU && utilization > auRemovalUtilization:
			account.Recommendation = fmt.Sprintf("Remove yourself as authorized user to eliminate %d%% utilization impact", utilization)
			recommendations = append(recommendations, domain.Recommendation{
				Category:        domain.CategoryUtilization,
				Type:            domain.RecommendationRemoveAU,
				Title:           "Remove Authorized User Status",
				Description:     fmt.Sprintf("Remove AU status from %s - Currently at %d%% utilization", creditor, utilization),
				Action:          fmt.Sprintf("Ask %s or the primary cardholder to remove you as an authorized user", creditor),
				EstimatedImpact: "+10-30 points",
				Priority:        1,
				Account:         creditor,
			})
		case utilization > mediumUtilization:
			account.Recommendation = fmt.Sprintf("Pay down $%d to reach 20%% utilization", toReach20)
			amount := clampNonNegative(toReach20)
			impact, priority := "+10-20 points", 2
			if utilization > highUtilization {
				impact, priority = "+20-40 points", 1
			}
			recommendations = append(recommendations, domain.Recommendation{
				Category:        domain.CategoryUtilization,
				Type:            domain.RecommendationPayDown,
				Title:           fmt.Sprintf("Pay Down %s", creditor),
				Description:     fmt.Sprintf("Pay %s down by $%d to reach 20%%", creditor, toReach20),
				Action:          fmt.Sprintf("Pay $%d toward %s before the statement closing date", amount, creditor),
				EstimatedImpact: impact,
				Priority:        priority,
				Account:         creditor,
				Amount:          &amount,
			})
		case utilization > goodUtilization:
			account.Recommendation = "Good utilization. Consider paying to under 10% for optimal score."
		default:
			account.Recommendation = "Excellent utilization! Keep it under 10%."
		}

		accounts = append(accounts, account)
	}

	overall := 0
	if totalLimit.IsPositive() {
		overall = percentOf(totalBalance, totalLimit)
	}

	summary := domain.UtilizationSummary{
		TotalBalance:           totalBalance,
		TotalCreditLimit:       totalLimit,
		OverallUtilization:     overall,
		AmountToReach30Percent: clampNonNegative(ceilInt(totalBalance.Sub(totalLimit.Mul(target30)))),
		AmountToReach20Percent: clampNonNegative(ceilInt(totalBalance.Sub(totalLimit.Mul(target20)))),
		AmountToReach10Percent: clampNonNegative(ceilInt(totalBalance.Sub(totalLimit.Mul(target10)))),
		AmountToReachOptimal:   clampNonNegative(ceilInt(totalBalance.Sub(totalLimit.Mul(targetOptimal)))),
	}

	if overall > overallPayDownTrigger {
		amount := summary.AmountToReach20Percent
		impact := "+15-30 points"
		if overall > overallHighImpactLevel {
			impact = "+30-50 points"
		}
		global := domain.Recommendation{
			Category:        domain.CategoryUtilization,
			Type:            domain.RecommendationPayDown,
			Title:           "Lower Overall Utilization",
			Description:     fmt.Sprintf("Pay down $%d total across accounts to reach 20%% overall utilization", amount),
			Action:          fmt.Sprintf("Spread $%d of payments across your revolving accounts, highest utilization first", amount),
			EstimatedImpact: impact,
			Priority:        0,
			Amount:          &amount,
		}
		recommendations = append([]domain.Recommendation{global}, recommendations...)
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].Priority < recommendations[j].Priority
	})
	sort.SliceStable(accounts, func(i, j int) bool {
		ri, rj := accounts[i].Priority.Rank(), accounts[j].Priority.Rank()
		if ri != rj {
			return ri < rj
		}
		return accounts[i].Utilization > accounts[j].Utilization
	})

	summary.Accounts = accounts
	summary.Recommendations = recommendations
	return summary
}

// isRevolving selects accounts for utilization. Type tags such as REVOLVING or
// CREDIT_CARD are only a hint; a positive credit limit is what admits an account.
func isRevolving(tl domain.Tradeline) bool {
	return tl.Limit().IsPositive()
}

func classifyUtilization(utilization int, isAU bool) domain.UtilizationPriority {
	switch {
	case utilization > highUtilization || (isAU && utilization > mediumUtilization):
		return domain.UtilizationPriorityHigh
	case utilization > mediumUtilization:
		return domain.UtilizationPriorityMedium
	default:
		return domain.UtilizationPriorityLow
	}
}

// percentOf returns part/whole as a whole percentage, rounding half to even
func percentOf(part, whole decimal.Decimal) int {
	if !whole.IsPositive() {
		return 0
	}
	return int(part.Div(whole).Mul(hundred).RoundBank(0).IntPart())
}

func ceilInt(d decimal.Decimal) int64 {
	return d.Ceil().IntPart()
}

func clampNonNegative(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}
