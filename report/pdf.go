/*
Package report renders bonus calculation results for people.

PURPOSE:
  Presentation-side formatting of engine output: a per-employee PDF
  bonus statement. Rounding to 2 decimal places happens here and only
  here - the engine's full-precision values are never altered, and the
  rendered strings never feed back into computation.
*/
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/warp/bonus-engine/bonus"
	"github.com/warp/bonus-engine/roster"
)

// Statement holds everything a bonus statement shows.
type Statement struct {
	Employee roster.Employee
	Results  []bonus.CalculationResult
	IssuedAt time.Time
}

// WritePDF renders the statement as an A4 PDF.
func WritePDF(w io.Writer, st Statement) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Bonus Statement")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", st.Employee.Name))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Role: %s", st.Employee.Role))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Base salary: %s", st.Employee.BaseSalary.StringFixed(2)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Issued: %s", st.IssuedAt.Format("2006-01-02")))
	pdf.Ln(12)

	// Result table: one row per KPI, achievement and bonus columns.
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(70, 8, "KPI", "1", 0, "L", false, 0, "")
	pdf.CellFormat(35, 8, "Achievement %", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, "Bonus %", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, "Bonus value", "1", 0, "R", false, 0, "")
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 11)
	for _, r := range st.Results {
		pdf.CellFormat(70, 8, r.KPIType.Label(), "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 8, r.Achievement.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 8, r.BonusPercentage.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 8, r.BonusValue.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(135, 8, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, bonus.Total(st.Results).StringFixed(2), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render statement: %w", err)
	}
	return nil
}
