package services

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/Lllllllleong/financialreportflow/internal/models"
)

// defaultCompanyName is the placeholder used when the classifier could not
// name the company.
const defaultCompanyName = "XYZ Ltd."

// ReportRenderer lays out a FinancialDocument as a styled, paginated PDF.
type ReportRenderer interface {
	Render(doc *models.FinancialDocument, outputPath, companyName string) error
}

// PnLReportRenderer renders the statement as an A4 document: a centered
// title block followed by one two-column table per section.
type PnLReportRenderer struct{}

func NewPnLReportRenderer() *PnLReportRenderer {
	return &PnLReportRenderer{}
}

var amountPrinter = message.NewPrinter(language.English)

// FormatAmount renders a numeric value for display: thousands separators for
// non-negative values, the absolute value in parentheses for negative ones.
// The sign stays intact in the data model; parentheses are purely
// presentation.
func FormatAmount(value float64) string {
	magnitude := number.Decimal(math.Abs(value), number.MaxFractionDigits(2))
	if value < 0 {
		return amountPrinter.Sprintf("(%v)", magnitude)
	}
	return amountPrinter.Sprintf("%v", magnitude)
}

// Render writes the report PDF to outputPath. Missing required keys fail the
// call; no partial document is produced for upload.
func (r *PnLReportRenderer) Render(doc *models.FinancialDocument, outputPath, companyName string) error {
	if doc == nil {
		return fmt.Errorf("no financial document to render")
	}
	if doc.Period == "" || doc.Year == "" || doc.Currency == "" {
		return fmt.Errorf("financial document is missing period, year, or currency")
	}
	if len(doc.Sections) == 0 {
		return fmt.Errorf("financial document has no sections")
	}
	if companyName == "" {
		companyName = defaultCompanyName
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("%s PnL %s %s", companyName, doc.Period, doc.Year), true)
	pdf.SetMargins(12, 18, 12)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	// Title block: company, period/year, currency.
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(companyName), "", 1, "C", false, 0, "")
	pdf.Ln(3)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("%s %s", doc.Period, doc.Year)), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(0, 0, 139)
	pdf.CellFormat(0, 6, tr(doc.Currency), "", 1, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	pdf.SetDrawColor(200, 200, 200)
	const labelWidth, valueWidth = 120.0, 55.0

	for _, section := range doc.Sections {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 7, tr(section.Title), "", 1, "L", false, 0, "")
		pdf.Ln(1)

		for i, field := range section.Fields {
			if i%2 == 0 {
				pdf.SetFillColor(245, 245, 245)
			} else {
				pdf.SetFillColor(255, 255, 255)
			}

			pdf.SetFont("Helvetica", "", 10)
			pdf.CellFormat(labelWidth, 6, tr(field.Label), "1", 0, "L", true, 0, "")

			if field.Bold {
				pdf.SetFont("Helvetica", "B", 10)
			}
			pdf.CellFormat(valueWidth, 6, FormatAmount(field.Value), "1", 1, "R", true, 0, "")
		}
		pdf.Ln(4)
	}

	if err := pdf.OutputFileAndClose(outputPath); err != nil {
		return fmt.Errorf("failed to render PnL report: %w", err)
	}
	return nil
}
