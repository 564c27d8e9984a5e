package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ludo-technologies/credaudit/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reportMap() map[string]any {
	return map[string]any{
		"id": "report-7",
		"tradelines": []any{
			map[string]any{
				"id":                     "tl-1",
				"creditorName":           "Chase",
				"accountNumber":          "1234",
				"bureau":                 "EQUIFAX",
				"accountType":            "REVOLVING",
				"dateOpened":             "2015-03-01",
				"dateOfFirstDelinquency": "",
				"currentBalance":         "512.40",
				"creditLimit":            1000,
				"isNegative":             false,
				"paymentHistory":         "CCCC1C",
			},
		},
		"inquiries": []any{
			map[string]any{"id": "inq-1", "creditorName": "Best Buy", "inquiryType": "HARD", "inquiryDate": "2024-11-02T10:00:00Z"},
		},
		"publicRecords": []any{
			map[string]any{"id": "pr-1", "recordType": "TAX_LIEN", "amount": 2500.5, "filingDate": "06/30/2019"},
		},
		"transunionScore": 612,
	}
}

func TestDecodeMap(t *testing.T) {
	s, err := Decode(reportMap())
	require.NoError(t, err)

	assert.Equal(t, "report-7", s.ID)
	require.Len(t, s.Tradelines, 1)
	tl := s.Tradelines[0]
	assert.Equal(t, "Chase", tl.CreditorName)
	require.NotNil(t, tl.DateOpened)
	assert.Equal(t, time.Date(2015, time.March, 1, 0, 0, 0, 0, time.UTC), *tl.DateOpened)
	assert.Nil(t, tl.DateOfFirstDelinquency)
	require.NotNil(t, tl.CurrentBalance)
	assert.Equal(t, "512.4", tl.CurrentBalance.String())
	assert.Equal(t, "1000", tl.CreditLimit.String())
	require.NotNil(t, tl.IsNegative)
	assert.False(t, *tl.IsNegative)

	require.Len(t, s.Inquiries, 1)
	require.NotNil(t, s.Inquiries[0].InquiryDate)
	assert.Equal(t, 2024, s.Inquiries[0].InquiryDate.Year())

	require.Len(t, s.PublicRecords, 1)
	assert.Equal(t, time.June, s.PublicRecords[0].FilingDate.Month())
	assert.Equal(t, "2500.5", s.PublicRecords[0].Amount.String())

	require.NotNil(t, s.TransUnionScore)
	assert.Equal(t, 612, *s.TransUnionScore)
	assert.Nil(t, s.EquifaxScore)
}

func TestDecodeTypedSnapshotIsReturnedUnchanged(t *testing.T) {
	original := &domain.ReportSnapshot{ID: "typed"}

	s, err := Decode(original)
	require.NoError(t, err)
	assert.Same(t, original, s)

	byValue, err := Decode(domain.ReportSnapshot{ID: "value"})
	require.NoError(t, err)
	assert.Equal(t, "value", byValue.ID)
}

type foreignTradeline struct {
	ID             string  `json:"id"`
	CreditorName   string  `json:"creditorName"`
	CurrentBalance float64 `json:"currentBalance"`
	CreditLimit    float64 `json:"creditLimit"`
	DateOpened     string  `json:"dateOpened"`
}

type foreignReport struct {
	ID         string             `json:"id"`
	Tradelines []foreignTradeline `json:"tradelines"`
}

func TestDecodeForeignStruct(t *testing.T) {
	s, err := Decode(foreignReport{
		ID: "foreign",
		Tradelines: []foreignTradeline{
			{ID: "1", CreditorName: "Amex", CurrentBalance: 250.75, CreditLimit: 500, DateOpened: "2020-01-15"},
		},
	})
	require.NoError(t, err)

	require.Len(t, s.Tradelines, 1)
	assert.Equal(t, "250.75", s.Tradelines[0].CurrentBalance.String())
	assert.Equal(t, 2020, s.Tradelines[0].DateOpened.Year())
	assert.Nil(t, s.Tradelines[0].IsNegative)
}

func TestDecodeBadDate(t *testing.T) {
	m := reportMap()
	m["tradelines"].([]any)[0].(map[string]any)["dateOpened"] = "March 2015"

	_, err := Decode(m)
	require.Error(t, err)

	var dpe *domain.DateParseError
	require.True(t, errors.As(err, &dpe))
	assert.Equal(t, "March 2015", dpe.Value)
	assert.Contains(t, err.Error(), domain.ErrCodeDateParse)
}

func TestDecodeRejectsNegativeBalance(t *testing.T) {
	m := reportMap()
	m["tradelines"].([]any)[0].(map[string]any)["currentBalance"] = -10

	_, err := Decode(m)
	require.Error(t, err)

	var de domain.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, domain.ErrCodeValidation, de.Code)
	assert.Contains(t, de.Message, "tradelines[0].currentBalance must be >= 0")
}

func TestDecodeTypedSnapshotIsValidated(t *testing.T) {
	negative := decimal.NewFromInt(-50)
	limit := decimal.NewFromInt(100)
	typed := domain.ReportSnapshot{
		ID: "typed",
		Tradelines: []domain.Tradeline{
			{ID: "tl-1", CreditorName: "Chase", CurrentBalance: &negative, CreditLimit: &limit},
		},
	}

	for name, input := range map[string]any{"pointer": &typed, "value": typed} {
		t.Run(name, func(t *testing.T) {
			s, err := Decode(input)
			require.Error(t, err)
			assert.Nil(t, s)

			var de domain.DomainError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, domain.ErrCodeValidation, de.Code)
			assert.Contains(t, de.Message, "tradelines[0].currentBalance must be >= 0")
		})
	}
}

func TestDecodeNil(t *testing.T) {
	_, err := Decode(nil)
	require.Error(t, err)

	var nilSnapshot *domain.ReportSnapshot
	_, err = Decode(nilSnapshot)
	require.Error(t, err)
}

func TestParseDate(t *testing.T) {
	valid := []string{"2020-02-29", "2020-02-29T10:11:12Z", "2020-02-29T10:11:12.123456789+02:00", "2020-02-29T10:11:12", "2020-02-29 10:11:12", "02/29/2020", " 2020-02-29 "}
	for _, v := range valid {
		d, err := ParseDate(v)
		require.NoError(t, err, v)
		assert.Equal(t, 2020, d.Year(), v)
	}

	for _, v := range []string{"", "yesterday", "2020-13-01", "29/02/2020"} {
		_, err := ParseDate(v)
		assert.Error(t, err, v)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "report.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{
  "id": "json-report",
  "tradelines": [
    {"id": "1", "creditorName": "Chase", "currentBalance": 100.10, "creditLimit": 1000, "dateOpened": "2019-05-01"}
  ],
  "inquiries": [],
  "publicRecords": []
}`), 0644))

	yamlPath := filepath.Join(dir, "report.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`id: yaml-report
tradelines:
  - id: "1"
    creditorName: Chase
    currentBalance: 100.10
    creditLimit: 1000
    dateOpened: 2019-05-01
    isNegative: true
experianScore: 700
`), 0644))

	t.Run("json", func(t *testing.T) {
		s, err := LoadFile(jsonPath)
		require.NoError(t, err)
		assert.Equal(t, "json-report", s.ID)
		require.Len(t, s.Tradelines, 1)
		assert.Equal(t, "100.1", s.Tradelines[0].CurrentBalance.String())
	})

	t.Run("yaml", func(t *testing.T) {
		s, err := NewFileLoader().LoadFile(yamlPath)
		require.NoError(t, err)
		assert.Equal(t, "yaml-report", s.ID)
		require.Len(t, s.Tradelines, 1)
		assert.Equal(t, 2019, s.Tradelines[0].DateOpened.Year())
		assert.True(t, s.Tradelines[0].NegativeFlag())
		require.NotNil(t, s.ExperianScore)
		assert.Equal(t, 700, *s.ExperianScore)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(dir, "missing.json"))
		var de domain.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, domain.ErrCodeFileNotFound, de.Code)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := filepath.Join(dir, "report.txt")
		require.NoError(t, os.WriteFile(path, []byte("id: x"), 0644))
		_, err := LoadFile(path)
		var de domain.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, domain.ErrCodeUnsupportedFormat, de.Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		path := filepath.Join(dir, "broken.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"id": `), 0644))
		_, err := LoadFile(path)
		var de domain.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, domain.ErrCodeParseError, de.Code)
	})
}

func TestIsSnapshotFile(t *testing.T) {
	assert.True(t, IsSnapshotFile("a/report.JSON"))
	assert.True(t, IsSnapshotFile("report.yml"))
	assert.True(t, IsSnapshotFile("report.yaml"))
	assert.False(t, IsSnapshotFile("report.csv"))
	assert.False(t, IsSnapshotFile("report"))
}
