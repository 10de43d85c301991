package reports

import (
	"fmt"
	"io"
	"sort"

	"github.com/jung-kurt/gofpdf"
)

// RenderCompliancePDF writes the report as an A4 document.
func RenderCompliancePDF(w io.Writer, report *ComplianceReport) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Compliance report", false)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Compliance report")
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated %s, threshold %d days", report.GeneratedAt.Format("2006-01-02 15:04 MST"), report.ThresholdDays))
	pdf.Ln(10)

	summary := func(title string, s Summary) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, fmt.Sprintf("%s (%d)", title, s.Total))
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 10)
		statuses := make([]string, 0, len(s.ByStatus))
		for status := range s.ByStatus {
			statuses = append(statuses, status)
		}
		sort.Strings(statuses)
		for _, status := range statuses {
			pdf.CellFormat(60, 6, status, "1", 0, "L", false, 0, "")
			pdf.CellFormat(20, 6, fmt.Sprintf("%d", s.ByStatus[status]), "1", 1, "R", false, 0, "")
		}
		pdf.Ln(4)
	}
	summary("Licenses", report.Licenses)
	summary("Inductions", report.Inductions)

	table := func(title string, items []Item) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, fmt.Sprintf("%s (%d)", title, len(items)))
		pdf.Ln(8)
		if len(items) == 0 {
			pdf.SetFont("Helvetica", "I", 10)
			pdf.Cell(0, 6, "None")
			pdf.Ln(8)
			return
		}
		widths := []float64{22, 50, 55, 28, 25}
		pdf.SetFont("Helvetica", "B", 9)
		for i, header := range []string{"Kind", "Employee", "Name", "Expiry", "Days"} {
			pdf.CellFormat(widths[i], 6, header, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 9)
		for _, item := range items {
			cells := []string{
				item.Kind,
				tr(item.EmployeeName),
				tr(item.Name),
				item.ExpiryDate.Format("2006-01-02"),
				fmt.Sprintf("%d", item.DaysUntilExpiry),
			}
			for i, cell := range cells {
				pdf.CellFormat(widths[i], 6, cell, "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(4)
	}
	table("Expiring soon", report.Expiring)
	table("Expired", report.Expired)

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}
