package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/ludo-technologies/credaudit/domain"
	"github.com/ludo-technologies/credaudit/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

func batchResponse(t *testing.T) *domain.BatchAuditResponse {
	t.Helper()
	resp, err := NewAuditService(nil).WithClock(fixedClock).Audit(context.Background(), domain.AuditRequest{
		Snapshot: reportMap(),
		Source:   "report-7.json",
		AsOf:     testutil.AsOf,
	})
	require.NoError(t, err)
	return &domain.BatchAuditResponse{
		Audits:      []domain.AuditResponse{*resp},
		Errors:      []string{"broken.json: parse error"},
		GeneratedAt: "2025-06-15T00:00:00Z",
		Version:     "test",
	}
}

func TestOutputFormatter_JSON(t *testing.T) {
	resp := batchResponse(t)
	var buf bytes.Buffer

	require.NoError(t, NewOutputFormatter().Write(resp, domain.OutputFormatJSON, &buf))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	audits := decoded["audits"].([]any)
	require.Len(t, audits, 1)
	result := audits[0].(map[string]any)["result"].(map[string]any)
	assert.Equal(t, "report-7", result["reportId"])
	assert.Contains(t, buf.String(), "\n  \"audits\"")
}

func TestOutputFormatter_YAML(t *testing.T) {
	resp := batchResponse(t)
	var buf bytes.Buffer

	require.NoError(t, NewOutputFormatter().Write(resp, domain.OutputFormatYAML, &buf))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "test", decoded["version"])
	assert.Contains(t, buf.String(), "reportId: report-7")
}

func TestOutputFormatter_Text(t *testing.T) {
	resp := batchResponse(t)

	var plain bytes.Buffer
	require.NoError(t, NewOutputFormatter().Write(resp, domain.OutputFormatText, &plain))
	out := plain.String()
	assert.Contains(t, out, "=== credaudit Report ===")
	assert.Contains(t, out, "--- report-7.json ---")
	assert.Contains(t, out, "Summary:")
	assert.Contains(t, out, "Midland")
	assert.Contains(t, out, "broken.json: parse error")
	assert.NotContains(t, out, "Action:")

	var detailed bytes.Buffer
	require.NoError(t, NewOutputFormatter().WithDetails(true).Write(resp, domain.OutputFormatText, &detailed))
	assert.Contains(t, detailed.String(), "Action:")
	assert.Greater(t, detailed.Len(), plain.Len())
}

func TestOutputFormatter_CSV(t *testing.T) {
	resp := batchResponse(t)
	var buf bytes.Buffer

	require.NoError(t, NewOutputFormatter().Write(resp, domain.OutputFormatCSV, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1+len(resp.Audits[0].Result.ItemsForReview))
	assert.Equal(t, reviewItemHeader, records[0])

	for _, rec := range records[1:] {
		assert.Equal(t, "report-7.json", rec[0])
		assert.Equal(t, "report-7", rec[1])
	}

	var collection []string
	for _, rec := range records[1:] {
		if rec[3] == string(domain.ItemTypeCollection) {
			collection = rec
		}
	}
	require.NotNil(t, collection)
	assert.Equal(t, "Midland", collection[4])
	assert.Equal(t, "800.00", collection[7])
	assert.Contains(t, strings.Split(collection[10], ";"), "FCRA-1681c-03")
	assert.Equal(t, string(domain.ResolutionFCRAViolation), collection[11])
	assert.Equal(t, "Midland", collection[15])
}

func TestOutputFormatter_XLSX(t *testing.T) {
	resp := batchResponse(t)
	var buf bytes.Buffer

	require.NoError(t, NewOutputFormatter().Write(resp, domain.OutputFormatXLSX, &buf))

	book, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer book.Close()

	assert.Equal(t, []string{SheetSummary, SheetReviewItems, SheetViolations, SheetRecommendations}, book.GetSheetList())

	summary, err := book.GetRows(SheetSummary)
	require.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, "source", summary[0][0])
	assert.Equal(t, "report-7.json", summary[1][0])
	assert.Equal(t, "2025-06-15", summary[1][2])

	items, err := book.GetRows(SheetReviewItems)
	require.NoError(t, err)
	assert.Len(t, items, 1+len(resp.Audits[0].Result.ItemsForReview))

	violations, err := book.GetRows(SheetViolations)
	require.NoError(t, err)
	assert.Len(t, violations, 1+len(resp.Audits[0].Result.ViolationAnalysis.Violations))

	recs, err := book.GetRows(SheetRecommendations)
	require.NoError(t, err)
	assert.Len(t, recs, 1+len(resp.Audits[0].Result.Recommendations))
}

func TestOutputFormatter_EmptyBatch(t *testing.T) {
	resp := &domain.BatchAuditResponse{Version: "test"}

	for _, format := range []domain.OutputFormat{
		domain.OutputFormatText, domain.OutputFormatJSON, domain.OutputFormatYAML,
		domain.OutputFormatCSV, domain.OutputFormatXLSX,
	} {
		var buf bytes.Buffer
		assert.NoError(t, NewOutputFormatter().Write(resp, format, &buf), "format %s", format)
		assert.NotZero(t, buf.Len(), "format %s", format)
	}
}

func TestOutputFormatter_UnsupportedFormat(t *testing.T) {
	err := NewOutputFormatter().Write(&domain.BatchAuditResponse{}, domain.OutputFormat("html"), &bytes.Buffer{})

	var de domain.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, domain.ErrCodeUnsupportedFormat, de.Code)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestOutputFormatter_WriterFailure(t *testing.T) {
	err := NewOutputFormatter().Write(batchResponse(t), domain.OutputFormatJSON, failingWriter{})

	var de domain.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, domain.ErrCodeOutputError, de.Code)
}
