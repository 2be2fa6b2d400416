package payroll

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/xuri/excelize/v2"
)

func registerRun(t *testing.T) Run {
	t.Helper()
	engine := NewEngine(DefaultRates())
	run, err := engine.ComputeRun(testRoster(t))
	if err != nil {
		t.Fatalf("ComputeRun: %v", err)
	}
	return run
}

func TestWriteRegisterCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRegisterCSV(&buf, registerRun(t)); err != nil {
		t.Fatalf("WriteRegisterCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d records", len(records))
	}
	if records[0][0] != "employee_id" || records[0][8] != "net" {
		t.Fatalf("unexpected header: %v", records[0])
	}
	if records[1][1] != "Ana Guzmán" || records[1][4] != "430.50" {
		t.Fatalf("unexpected first row: %v", records[1])
	}
	if records[3][8] != "42045.00" {
		t.Fatalf("expected net 42045.00 in last row, got %v", records[3])
	}
}

func TestWriteRegisterXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRegisterXLSX(&buf, registerRun(t)); err != nil {
		t.Fatalf("WriteRegisterXLSX: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	const sheet = "Payroll Register"
	header, err := f.GetCellValue(sheet, "A1")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if header != "employee_id" {
		t.Fatalf("expected header employee_id, got %q", header)
	}
	gross, err := f.GetCellValue(sheet, "D2")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if gross != "15000.00" {
		t.Fatalf("expected gross 15000.00, got %q", gross)
	}
	totalNet, err := f.GetCellValue(sheet, "I5")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if totalNet != "82885.50" {
		t.Fatalf("expected total net 82885.50, got %q", totalNet)
	}
}

func TestWritePayslipPDF(t *testing.T) {
	engine := NewEngine(DefaultRates())
	line, err := engine.ComputeLine(testRoster(t)[0])
	if err != nil {
		t.Fatalf("ComputeLine: %v", err)
	}

	var buf bytes.Buffer
	if err := WritePayslipPDF(&buf, line, "2026-08"); err != nil {
		t.Fatalf("WritePayslipPDF: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatalf("expected PDF output, got prefix %q", buf.Bytes()[:8])
	}
	if buf.Len() < 500 {
		t.Fatalf("suspiciously small PDF: %d bytes", buf.Len())
	}
}
