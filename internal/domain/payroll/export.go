package payroll

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
)

var registerHeader = []string{
	"employee_id", "name", "department",
	"gross", "afp", "ars", "isr", "total_deductions", "net",
}

// WriteRegisterCSV streams the payroll register for a run to w, one row
// per employee in roster order.
func WriteRegisterCSV(w io.Writer, run Run) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(registerHeader); err != nil {
		return err
	}
	for _, line := range run.Lines {
		record := []string{
			strconv.FormatInt(line.EmployeeID, 10),
			line.EmployeeName,
			line.Department,
			line.Gross.StringFixed(2),
			line.AFP.StringFixed(2),
			line.ARS.StringFixed(2),
			line.ISR.StringFixed(2),
			line.TotalDeductions.StringFixed(2),
			line.Net.StringFixed(2),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteRegisterXLSX renders the register as a spreadsheet with a bold
// header, one row per employee, and a totals row.
func WriteRegisterXLSX(w io.Writer, run Run) error {
	const sheet = "Payroll Register"
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	for i, header := range registerHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
		f.SetCellStyle(sheet, cell, cell, bold)
	}
	f.SetColWidth(sheet, "A", "I", 18)

	for i, line := range run.Lines {
		values := []any{
			line.EmployeeID,
			line.EmployeeName,
			line.Department,
			line.Gross.StringFixed(2),
			line.AFP.StringFixed(2),
			line.ARS.StringFixed(2),
			line.ISR.StringFixed(2),
			line.TotalDeductions.StringFixed(2),
			line.Net.StringFixed(2),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	totals := []any{
		"", "Totals", "",
		run.Summary.TotalGross.StringFixed(2), "", "", "",
		run.Summary.TotalDeductions.StringFixed(2),
		run.Summary.TotalNet.StringFixed(2),
	}
	totalsRow := len(run.Lines) + 2
	for col, value := range totals {
		cell, _ := excelize.CoordinatesToCellName(col+1, totalsRow)
		f.SetCellValue(sheet, cell, value)
		f.SetCellStyle(sheet, cell, cell, bold)
	}

	return f.Write(w)
}
