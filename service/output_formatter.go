package service

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ludo-technologies/credaudit/domain"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// Sheet names of the XLSX workbook
const (
	SheetSummary         = "Summary"
	SheetReviewItems     = "Review Items"
	SheetViolations      = "Violations"
	SheetRecommendations = "Recommendations"
)

// OutputFormatterImpl implements the OutputFormatter interface
type OutputFormatterImpl struct {
	showDetails bool
}

// NewOutputFormatter creates a new output formatter
func NewOutputFormatter() *OutputFormatterImpl {
	return &OutputFormatterImpl{}
}

// WithDetails includes per-item details in text output
func (f *OutputFormatterImpl) WithDetails(show bool) *OutputFormatterImpl {
	f.showDetails = show
	return f
}

// WriteJSON writes data as JSON to the writer
func WriteJSON(writer io.Writer, data interface{}) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// WriteYAML writes data as YAML to the writer
func WriteYAML(writer io.Writer, data interface{}) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return err
	}
	return encoder.Close()
}

// Write writes the batch response in the specified format
func (f *OutputFormatterImpl) Write(response *domain.BatchAuditResponse, format domain.OutputFormat, writer io.Writer) error {
	var err error
	switch format {
	case domain.OutputFormatJSON:
		err = WriteJSON(writer, response)
	case domain.OutputFormatYAML:
		err = WriteYAML(writer, response)
	case domain.OutputFormatText:
		err = f.writeText(response, writer)
	case domain.OutputFormatCSV:
		err = f.writeCSV(response, writer)
	case domain.OutputFormatXLSX:
		err = f.writeXLSX(response, writer)
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
	if err != nil {
		return domain.NewOutputError(fmt.Sprintf("failed to write %s output", format), err)
	}
	return nil
}

// writeText writes a human readable report
func (f *OutputFormatterImpl) writeText(response *domain.BatchAuditResponse, writer io.Writer) error {
	fmt.Fprintf(writer, "\n=== credaudit Report ===\n")
	fmt.Fprintf(writer, "Generated: %s\n", response.GeneratedAt)
	fmt.Fprintf(writer, "Duration: %dms\n", response.DurationMs)
	fmt.Fprintf(writer, "Version: %s\n", response.Version)
	fmt.Fprintf(writer, "Reports audited: %d\n", len(response.Audits))

	for _, audit := range response.Audits {
		f.writeAuditText(audit, writer)
	}

	if len(response.Errors) > 0 {
		fmt.Fprintf(writer, "\nErrors:\n")
		for _, e := range response.Errors {
			fmt.Fprintf(writer, "  - %s\n", e)
		}
	}

	return nil
}

func (f *OutputFormatterImpl) writeAuditText(audit domain.AuditResponse, writer io.Writer) {
	r := audit.Result
	if r == nil {
		return
	}

	title := r.ReportID
	if audit.Source != "" {
		title = audit.Source
	}
	fmt.Fprintf(writer, "\n--- %s ---\n", title)
	if r.ReportID != "" {
		fmt.Fprintf(writer, "Report: %s\n", r.ReportID)
	}
	fmt.Fprintf(writer, "As of: %s\n", r.AsOf.Format("2006-01-02"))
	fmt.Fprintf(writer, "Scores: TU %s | EQ %s | EX %s\n",
		formatScore(r.Scores.TransUnion), formatScore(r.Scores.Equifax), formatScore(r.Scores.Experian))

	s := r.Summary
	fmt.Fprintf(writer, "\nSummary:\n")
	fmt.Fprintf(writer, "  Violations found: %d\n", s.TotalViolationsFound)
	fmt.Fprintf(writer, "  Negative items: %d\n", s.TotalNegativeItems)
	fmt.Fprintf(writer, "  Collections: %d\n", s.TotalCollections)
	fmt.Fprintf(writer, "  Inquiries: %d\n", s.TotalInquiries)
	fmt.Fprintf(writer, "  Positive tradelines: %d\n", s.PositiveTradelineCount)
	fmt.Fprintf(writer, "  Utilization: %d%% (pay $%d to reach 20%%)\n", s.UtilizationPercentage, s.AmountToReach20Percent)
	if s.NeedsStarterAccounts {
		fmt.Fprintf(writer, "  Thin file: starter accounts recommended\n")
	}
	if s.HasAuthorizedUserIssues {
		fmt.Fprintf(writer, "  Authorized user accounts are raising utilization\n")
	}

	if len(r.ViolationAnalysis.Violations) > 0 {
		fmt.Fprintf(writer, "\nViolations by bureau:\n")
		for _, bureau := range []domain.Bureau{domain.BureauTransUnion, domain.BureauEquifax, domain.BureauExperian} {
			key := domain.BureauKey(string(bureau))
			fmt.Fprintf(writer, "  %s: %d\n", key, len(r.ViolationAnalysis.ByBureau[key]))
		}
	}

	if len(r.ItemsForReview) > 0 {
		fmt.Fprintf(writer, "\nItems for review (%d):\n", len(r.ItemsForReview))
		for _, item := range r.ItemsForReview {
			fmt.Fprintf(writer, "  [P%d] %s %s (%s) - %s\n",
				item.PriorityLevel, item.ItemType, item.CreditorName, item.AccountNumber, item.SuggestedResolution)
			if !f.showDetails {
				continue
			}
			for _, v := range item.DetectedViolations {
				fmt.Fprintf(writer, "        %s [%s] %s: %s\n",
					v.Code(), v.Violation.Severity, v.Violation.Title, v.Evidence)
			}
			if item.DoNotDisputeWarning != "" {
				fmt.Fprintf(writer, "        WARNING: %s\n", item.DoNotDisputeWarning)
			}
			if item.EstimatedSettlement != nil {
				fmt.Fprintf(writer, "        Estimated settlement: $%d\n", *item.EstimatedSettlement)
			}
		}
	}

	if len(r.TradelineAnalysis.WarningAccounts) > 0 {
		fmt.Fprintf(writer, "\nDo not dispute:\n")
		for _, w := range r.TradelineAnalysis.WarningAccounts {
			fmt.Fprintf(writer, "  %s: %s\n", w.CreditorName, w.Warning)
			fmt.Fprintf(writer, "    %s\n", w.Recommendation)
		}
	}

	if len(r.Recommendations) > 0 {
		fmt.Fprintf(writer, "\nRecommendations:\n")
		for i, rec := range r.Recommendations {
			fmt.Fprintf(writer, "  %d. %s (%s)\n", i+1, rec.Title, rec.EstimatedImpact)
			if f.showDetails {
				fmt.Fprintf(writer, "     %s\n", rec.Description)
				fmt.Fprintf(writer, "     Action: %s\n", rec.Action)
			}
		}
	}
}

// reviewItemHeader is shared by the CSV output and the review items sheet
var reviewItemHeader = []string{
	"source", "report_id", "item_id", "item_type", "creditor", "account_number", "bureau",
	"balance", "is_negative", "violation_count", "violation_codes", "suggested_resolution",
	"priority", "is_settleable", "estimated_settlement", "original_creditor",
}

func reviewItemRecord(audit domain.AuditResponse, item domain.AuditItem) []string {
	codes := make([]string, len(item.DetectedViolations))
	for i, v := range item.DetectedViolations {
		codes[i] = v.Code()
	}
	settlement := ""
	if item.EstimatedSettlement != nil {
		settlement = strconv.FormatInt(*item.EstimatedSettlement, 10)
	}
	return []string{
		audit.Source,
		audit.Result.ReportID,
		item.ID,
		string(item.ItemType),
		item.CreditorName,
		item.AccountNumber,
		item.Bureau,
		item.CurrentBalance.StringFixed(2),
		strconv.FormatBool(item.IsNegative),
		strconv.Itoa(item.ViolationCount),
		strings.Join(codes, ";"),
		string(item.SuggestedResolution),
		strconv.Itoa(item.PriorityLevel),
		strconv.FormatBool(item.IsSettleable),
		settlement,
		item.OriginalCreditor,
	}
}

// writeCSV writes one row per review item across all audits
func (f *OutputFormatterImpl) writeCSV(response *domain.BatchAuditResponse, writer io.Writer) error {
	w := csv.NewWriter(writer)
	if err := w.Write(reviewItemHeader); err != nil {
		return err
	}
	for _, audit := range response.Audits {
		if audit.Result == nil {
			continue
		}
		for _, item := range audit.Result.ItemsForReview {
			if err := w.Write(reviewItemRecord(audit, item)); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

// writeXLSX writes a workbook with summary, review item, violation and
// recommendation sheets
func (f *OutputFormatterImpl) writeXLSX(response *domain.BatchAuditResponse, writer io.Writer) error {
	book := excelize.NewFile()
	defer book.Close()

	if err := book.SetSheetName("Sheet1", SheetSummary); err != nil {
		return err
	}
	for _, name := range []string{SheetReviewItems, SheetViolations, SheetRecommendations} {
		if _, err := book.NewSheet(name); err != nil {
			return err
		}
	}

	headerStyle, err := book.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	sheets := map[string]*sheetWriter{
		SheetSummary: newSheetWriter(book, SheetSummary, headerStyle,
			"source", "report_id", "as_of", "violations", "negative_items", "collections", "inquiries",
			"positive_tradelines", "utilization_percent", "amount_to_reach_20", "needs_starter_accounts",
			"authorized_user_issues", "transunion_score", "equifax_score", "experian_score"),
		SheetReviewItems: newSheetWriter(book, SheetReviewItems, headerStyle, reviewItemHeader...),
		SheetViolations: newSheetWriter(book, SheetViolations, headerStyle,
			"source", "report_id", "code", "section", "severity", "title", "field", "evidence"),
		SheetRecommendations: newSheetWriter(book, SheetRecommendations, headerStyle,
			"source", "report_id", "priority", "category", "type", "title", "action", "estimated_impact", "product"),
	}
	for _, sw := range sheets {
		if sw.err != nil {
			return sw.err
		}
	}

	for _, audit := range response.Audits {
		r := audit.Result
		if r == nil {
			continue
		}
		s := r.Summary
		sheets[SheetSummary].row(audit.Source, r.ReportID, r.AsOf.Format("2006-01-02"),
			s.TotalViolationsFound, s.TotalNegativeItems, s.TotalCollections, s.TotalInquiries,
			s.PositiveTradelineCount, s.UtilizationPercentage, s.AmountToReach20Percent,
			s.NeedsStarterAccounts, s.HasAuthorizedUserIssues,
			scoreCell(r.Scores.TransUnion), scoreCell(r.Scores.Equifax), scoreCell(r.Scores.Experian))

		for _, item := range r.ItemsForReview {
			record := reviewItemRecord(audit, item)
			cells := make([]interface{}, len(record))
			for i, v := range record {
				cells[i] = v
			}
			cells[7] = moneyCell(item.CurrentBalance)
			sheets[SheetReviewItems].row(cells...)
		}

		for _, v := range r.ViolationAnalysis.Violations {
			sheets[SheetViolations].row(audit.Source, r.ReportID, v.Code(), v.Violation.Section,
				string(v.Violation.Severity), v.Violation.Title, v.Field, v.Evidence)
		}

		for _, rec := range r.Recommendations {
			product := ""
			if rec.Product != nil {
				product = rec.Product.Name
			}
			sheets[SheetRecommendations].row(audit.Source, r.ReportID, rec.Priority, string(rec.Category),
				string(rec.Type), rec.Title, rec.Action, rec.EstimatedImpact, product)
		}
	}

	for _, sw := range sheets {
		if sw.err != nil {
			return sw.err
		}
	}

	return book.Write(writer)
}

// sheetWriter appends rows to one worksheet and keeps the first error
type sheetWriter struct {
	book  *excelize.File
	sheet string
	next  int
	err   error
}

func newSheetWriter(book *excelize.File, sheet string, headerStyle int, header ...string) *sheetWriter {
	sw := &sheetWriter{book: book, sheet: sheet, next: 1}
	cells := make([]interface{}, len(header))
	for i, h := range header {
		cells[i] = h
	}
	sw.row(cells...)
	if sw.err == nil {
		sw.err = book.SetRowStyle(sheet, 1, 1, headerStyle)
	}
	return sw
}

func (sw *sheetWriter) row(cells ...interface{}) {
	if sw.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, sw.next)
	if err != nil {
		sw.err = err
		return
	}
	sw.err = sw.book.SetSheetRow(sw.sheet, cell, &cells)
	sw.next++
}

func formatScore(score *int) string {
	if score == nil {
		return "-"
	}
	return strconv.Itoa(*score)
}

func scoreCell(score *int) interface{} {
	if score == nil {
		return nil
	}
	return *score
}

func moneyCell(d decimal.Decimal) interface{} {
	return d.InexactFloat64()
}
