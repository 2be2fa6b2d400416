package payroll

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// WritePayslipPDF renders one employee's payslip for the given period
// (YYYY-MM) and streams it to w.
func WritePayslipPDF(w io.Writer, line Line, period string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", line.EmployeeName))
	pdf.Ln(7)
	if line.Department != "" {
		pdf.Cell(0, 8, fmt.Sprintf("Department: %s", line.Department))
		pdf.Ln(7)
	}
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s", period))
	pdf.Ln(10)
	pdf.Cell(0, 8, fmt.Sprintf("Gross salary: %s", line.Gross.StringFixed(2)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("AFP: %s", line.AFP.StringFixed(2)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("ARS: %s", line.ARS.StringFixed(2)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("ISR: %s", line.ISR.StringFixed(2)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Total deductions: %s", line.TotalDeductions.StringFixed(2)))
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Net salary: %s", line.Net.StringFixed(2)))

	return pdf.Output(w)
}
