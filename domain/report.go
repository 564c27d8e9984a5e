package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Bureau identifies one of the three national credit bureaus
type Bureau string

const (
	BureauTransUnion Bureau = "TRANSUNION"
	BureauEquifax    Bureau = "EQUIFAX"
	BureauExperian   Bureau = "EXPERIAN"
)

// Known account type tags. Free-form values are tolerated.
const (
	AccountTypeRevolving   = "REVOLVING"
	AccountTypeCreditCard  = "CREDIT_CARD"
	AccountTypeInstallment = "INSTALLMENT"
	AccountTypeMortgage    = "MORTGAGE"
	AccountTypeCollection  = "COLLECTION"
	AccountTypeOpen        = "OPEN"
	AccountTypeOther       = "OTHER"
)

// Account ownership values
const (
	OwnershipIndividual     = "INDIVIDUAL"
	OwnershipAuthorizedUser = "AUTHORIZED_USER"
	OwnershipJoint          = "JOINT"
)

// AccountStatusClosed is the reported status of a closed account
const AccountStatusClosed = "CLOSED"

// Inquiry types
const (
	InquiryTypeHard = "HARD"
	InquiryTypeSoft = "SOFT"
)

// RecordTypeBankruptcy is the public record type with a 10 year reporting window
const RecordTypeBankruptcy = "BANKRUPTCY"

// ReportSnapshot is an immutable credit report as handed to the audit engine
type ReportSnapshot struct {
	ID              string         `json:"id,omitempty" yaml:"id,omitempty" mapstructure:"id"`
	Tradelines      []Tradeline    `json:"tradelines" yaml:"tradelines" mapstructure:"tradelines" validate:"dive"`
	Inquiries       []Inquiry      `json:"inquiries" yaml:"inquiries" mapstructure:"inquiries" validate:"dive"`
	PublicRecords   []PublicRecord `json:"publicRecords" yaml:"publicRecords" mapstructure:"publicRecords" validate:"dive"`
	TransUnionScore *int           `json:"transunionScore,omitempty" yaml:"transunionScore,omitempty" mapstructure:"transunionScore" validate:"omitempty,gte=0"`
	EquifaxScore    *int           `json:"equifaxScore,omitempty" yaml:"equifaxScore,omitempty" mapstructure:"equifaxScore" validate:"omitempty,gte=0"`
	ExperianScore   *int           `json:"experianScore,omitempty" yaml:"experianScore,omitempty" mapstructure:"experianScore" validate:"omitempty,gte=0"`
}

// Tradeline is a single credit account line, collections included
type Tradeline struct {
	ID                     string           `json:"id" yaml:"id" mapstructure:"id"`
	CreditorName           string           `json:"creditorName" yaml:"creditorName" mapstructure:"creditorName"`
	AccountNumber          string           `json:"accountNumber" yaml:"accountNumber" mapstructure:"accountNumber"`
	Bureau                 string           `json:"bureau,omitempty" yaml:"bureau,omitempty" mapstructure:"bureau"`
	AccountType            string           `json:"accountType,omitempty" yaml:"accountType,omitempty" mapstructure:"accountType"`
	AccountStatus          string           `json:"accountStatus,omitempty" yaml:"accountStatus,omitempty" mapstructure:"accountStatus"`
	AccountOwnership       string           `json:"accountOwnership,omitempty" yaml:"accountOwnership,omitempty" mapstructure:"accountOwnership"`
	DateOpened             *time.Time       `json:"dateOpened,omitempty" yaml:"dateOpened,omitempty" mapstructure:"dateOpened"`
	DateOfFirstDelinquency *time.Time       `json:"dateOfFirstDelinquency,omitempty" yaml:"dateOfFirstDelinquency,omitempty" mapstructure:"dateOfFirstDelinquency"`
	CurrentBalance         *decimal.Decimal `json:"currentBalance,omitempty" yaml:"currentBalance,omitempty" mapstructure:"currentBalance" validate:"omitempty,gte=0"`
	CreditLimit            *decimal.Decimal `json:"creditLimit,omitempty" yaml:"creditLimit,omitempty" mapstructure:"creditLimit" validate:"omitempty,gte=0"`
	PaymentHistory         string           `json:"paymentHistory,omitempty" yaml:"paymentHistory,omitempty" mapstructure:"paymentHistory"`
	IsNegative             *bool            `json:"isNegative,omitempty" yaml:"isNegative,omitempty" mapstructure:"isNegative"`
	NegativeReason         string           `json:"negativeReason,omitempty" yaml:"negativeReason,omitempty" mapstructure:"negativeReason"`
	OriginalCreditor       string           `json:"originalCreditor,omitempty" yaml:"originalCreditor,omitempty" mapstructure:"originalCreditor"`
}

// IsCollection reports whether the tradeline carries the COLLECTION account type tag
func (t Tradeline) IsCollection() bool {
	return strings.EqualFold(strings.TrimSpace(t.AccountType), AccountTypeCollection)
}

// IsAuthorizedUser reports whether the consumer is an authorized user on the account
func (t Tradeline) IsAuthorizedUser() bool {
	ownership := strings.ToUpper(t.AccountOwnership)
	return strings.Contains(ownership, OwnershipAuthorizedUser) || strings.Contains(ownership, "AUTHORIZED USER")
}

// IsClosed reports whether the account status is CLOSED
func (t Tradeline) IsClosed() bool {
	return strings.EqualFold(strings.TrimSpace(t.AccountStatus), AccountStatusClosed)
}

// Balance returns the current balance, zero when absent
func (t Tradeline) Balance() decimal.Decimal {
	if t.CurrentBalance == nil {
		return decimal.Zero
	}
	return *t.CurrentBalance
}

// Limit returns the credit limit, zero when absent
func (t Tradeline) Limit() decimal.Decimal {
	if t.CreditLimit == nil {
		return decimal.Zero
	}
	return *t.CreditLimit
}

// NegativeFlag returns the reported isNegative flag, false when absent
func (t Tradeline) NegativeFlag() bool {
	return t.IsNegative != nil && *t.IsNegative
}

// Inquiry is a credit pull recorded on the report
type Inquiry struct {
	ID           string     `json:"id" yaml:"id" mapstructure:"id"`
	CreditorName string     `json:"creditorName" yaml:"creditorName" mapstructure:"creditorName"`
	Bureau       string     `json:"bureau,omitempty" yaml:"bureau,omitempty" mapstructure:"bureau"`
	InquiryType  string     `json:"inquiryType" yaml:"inquiryType" mapstructure:"inquiryType"`
	InquiryDate  *time.Time `json:"inquiryDate,omitempty" yaml:"inquiryDate,omitempty" mapstructure:"inquiryDate"`
}

// IsHard reports whether this is a hard inquiry
func (i Inquiry) IsHard() bool {
	return strings.EqualFold(strings.TrimSpace(i.InquiryType), InquiryTypeHard)
}

// PublicRecord is a court record (bankruptcy, judgment, lien, ...)
type PublicRecord struct {
	ID         string           `json:"id" yaml:"id" mapstructure:"id"`
	RecordType string           `json:"recordType" yaml:"recordType" mapstructure:"recordType"`
	CourtName  string           `json:"courtName,omitempty" yaml:"courtName,omitempty" mapstructure:"courtName"`
	CaseNumber string           `json:"caseNumber,omitempty" yaml:"caseNumber,omitempty" mapstructure:"caseNumber"`
	Bureau     string           `json:"bureau,omitempty" yaml:"bureau,omitempty" mapstructure:"bureau"`
	Amount     *decimal.Decimal `json:"amount,omitempty" yaml:"amount,omitempty" mapstructure:"amount" validate:"omitempty,gte=0"`
	FilingDate *time.Time       `json:"filingDate,omitempty" yaml:"filingDate,omitempty" mapstructure:"filingDate"`
}

// IsBankruptcy reports whether the record type mentions a bankruptcy
func (p PublicRecord) IsBankruptcy() bool {
	return strings.Contains(strings.ToUpper(p.RecordType), RecordTypeBankruptcy)
}

// BureauKey normalizes a bureau string to the lower-case grouping key.
// A missing bureau is attributed to TransUnion.
func BureauKey(bureau string) string {
	b := strings.TrimSpace(bureau)
	if b == "" {
		b = string(BureauTransUnion)
	}
	return strings.ToLower(b)
}

// IsKnownBureauKey reports whether key names one of the three bureaus
func IsKnownBureauKey(key string) bool {
	switch Bureau(strings.ToUpper(key)) {
	case BureauTransUnion, BureauEquifax, BureauExperian:
		return true
	}
	return false
}
