// Package testutil provides fixture builders and helpers for testing credaudit components
package testutil

import (
	"time"

	"github.com/ludo-technologies/credaudit/domain"
	"github.com/shopspring/decimal"
)

// AsOf is the fixed reference time used by tests
var AsOf = time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

// MonthsAgo returns a date n months before AsOf
func MonthsAgo(n int) *time.Time {
	t := AsOf.AddDate(0, -n, 0)
	return &t
}

// YearsAgo returns a date n years before AsOf
func YearsAgo(n int) *time.Time {
	t := AsOf.AddDate(-n, 0, 0)
	return &t
}

// Money returns a decimal pointer
func Money(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

// Bool returns a bool pointer
func Bool(v bool) *bool {
	return &v
}

// TradelineOption customizes a fixture tradeline
type TradelineOption func(*domain.Tradeline)

// NewTradeline creates an open, individually owned revolving tradeline
func NewTradeline(id, creditor string, opts ...TradelineOption) domain.Tradeline {
	tl := domain.Tradeline{
		ID:               id,
		CreditorName:     creditor,
		AccountNumber:    "XXXX" + id,
		Bureau:           string(domain.BureauTransUnion),
		AccountType:      domain.AccountTypeRevolving,
		AccountStatus:    "OPEN",
		AccountOwnership: domain.OwnershipIndividual,
		DateOpened:       YearsAgo(3),
		IsNegative:       Bool(false),
	}
	for _, opt := range opts {
		opt(&tl)
	}
	return tl
}

// NewCollection creates a collection tradeline
func NewCollection(id, creditor string, opts ...TradelineOption) domain.Tradeline {
	base := []TradelineOption{
		WithType(domain.AccountTypeCollection),
		WithStatus("COLLECTION"),
		WithNegative(true),
	}
	return NewTradeline(id, creditor, append(base, opts...)...)
}

// WithBalance sets balance and credit limit
func WithBalance(balance, limit float64) TradelineOption {
	return func(tl *domain.Tradeline) {
		tl.CurrentBalance = Money(balance)
		tl.CreditLimit = Money(limit)
	}
}

// WithBalanceOnly sets the balance and clears the credit limit
func WithBalanceOnly(balance float64) TradelineOption {
	return func(tl *domain.Tradeline) {
		tl.CurrentBalance = Money(balance)
		tl.CreditLimit = nil
	}
}

// WithType sets the account type
func WithType(accountType string) TradelineOption {
	return func(tl *domain.Tradeline) { tl.AccountType = accountType }
}

// WithStatus sets the account status
func WithStatus(status string) TradelineOption {
	return func(tl *domain.Tradeline) { tl.AccountStatus = status }
}

// WithOwnership sets the account ownership
func WithOwnership(ownership string) TradelineOption {
	return func(tl *domain.Tradeline) { tl.AccountOwnership = ownership }
}

// WithNegative sets the explicit negative flag
func WithNegative(negative bool) TradelineOption {
	return func(tl *domain.Tradeline) { tl.IsNegative = Bool(negative) }
}

// WithoutNegativeFlag clears the negative flag so negativity is derived from status
func WithoutNegativeFlag() TradelineOption {
	return func(tl *domain.Tradeline) { tl.IsNegative = nil }
}

// WithOpened sets the open date; nil removes it
func WithOpened(t *time.Time) TradelineOption {
	return func(tl *domain.Tradeline) { tl.DateOpened = t }
}

// WithDOFD sets the date of first delinquency
func WithDOFD(t *time.Time) TradelineOption {
	return func(tl *domain.Tradeline) { tl.DateOfFirstDelinquency = t }
}

// WithHistory sets the payment history string
func WithHistory(history string) TradelineOption {
	return func(tl *domain.Tradeline) { tl.PaymentHistory = history }
}

// WithBureau sets the reporting bureau
func WithBureau(bureau string) TradelineOption {
	return func(tl *domain.Tradeline) { tl.Bureau = bureau }
}

// WithAccountNumber sets the account number
func WithAccountNumber(number string) TradelineOption {
	return func(tl *domain.Tradeline) { tl.AccountNumber = number }
}

// HistoryWithLateAt returns an on-time history of length n with a 30-day late at index
func HistoryWithLateAt(n, index int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'C'
	}
	if index >= 0 && index < n {
		b[index] = '1'
	}
	return string(b)
}

// NewSnapshot creates a report snapshot from tradelines
func NewSnapshot(id string, tradelines ...domain.Tradeline) *domain.ReportSnapshot {
	return &domain.ReportSnapshot{
		ID:            id,
		Tradelines:    tradelines,
		Inquiries:     []domain.Inquiry{},
		PublicRecords: []domain.PublicRecord{},
	}
}
