package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"

	"nomina/internal/domain/directory"
)

// Engine computes statutory deductions for a roster. It holds only the
// rate table and no per-run state, so a single Engine is safe to share
// across requests.
type Engine struct {
	rates Rates
}

func NewEngine(rates Rates) *Engine {
	return &Engine{rates: rates}
}

func (e *Engine) Rates() Rates {
	return e.rates
}

// RetirementDeduction is the AFP contribution for a non-negative gross
// salary, rounded to cents half away from zero.
func (e *Engine) RetirementDeduction(gross decimal.Decimal) decimal.Decimal {
	return gross.Mul(e.rates.AFP).Round(2)
}

// InsuranceDeduction is the ARS contribution for a non-negative gross
// salary, rounded to cents half away from zero.
func (e *Engine) InsuranceDeduction(gross decimal.Decimal) decimal.Decimal {
	return gross.Mul(e.rates.ARS).Round(2)
}

// TaxDeduction picks the ISR band the whole gross falls in and applies
// that band's rate to the whole amount.
func (e *Engine) TaxDeduction(gross decimal.Decimal) decimal.Decimal {
	for _, band := range e.rates.ISR {
		if band.Ceiling.IsZero() || gross.LessThanOrEqual(band.Ceiling) {
			return gross.Mul(band.Rate).Round(2)
		}
	}
	return decimal.Zero
}

// ComputeLine prices one employee. Totals are exact sums of the already
// rounded components so the line always balances to the cent.
func (e *Engine) ComputeLine(emp directory.Employee) (Line, error) {
	if emp.Salary.IsNegative() {
		return Line{}, fmt.Errorf("employee %d: %w", emp.ID, ErrNegativeSalary)
	}
	gross := emp.Salary.Round(2)
	afp := e.RetirementDeduction(gross)
	ars := e.InsuranceDeduction(gross)
	isr := e.TaxDeduction(gross)
	total := afp.Add(ars).Add(isr)

	return Line{
		EmployeeID:      emp.ID,
		EmployeeName:    emp.Name,
		Department:      emp.Department,
		Gross:           gross,
		AFP:             afp,
		ARS:             ars,
		ISR:             isr,
		TotalDeductions: total,
		Net:             gross.Sub(total),
	}, nil
}

// ComputeRun prices the whole roster in the order given. An empty
// roster yields an empty run with zero totals.
func (e *Engine) ComputeRun(employees []directory.Employee) (Run, error) {
	lines := make([]Line, 0, len(employees))
	var summary Summary
	for _, emp := range employees {
		line, err := e.ComputeLine(emp)
		if err != nil {
			return Run{}, err
		}
		lines = append(lines, line)
		summary.TotalGross = summary.TotalGross.Add(line.Gross)
		summary.TotalDeductions = summary.TotalDeductions.Add(line.TotalDeductions)
		summary.TotalNet = summary.TotalNet.Add(line.Net)
	}
	summary.EmployeeCount = len(lines)
	return Run{Lines: lines, Summary: summary}, nil
}
