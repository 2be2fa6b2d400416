package payroll

import "github.com/shopspring/decimal"

// Line is one employee's computed payroll result. All amounts carry two
// decimal places; TotalDeductions and Net are exact sums of the rounded
// components, never re-derived from unrounded values.
type Line struct {
	EmployeeID      int64           `json:"employeeId"`
	EmployeeName    string          `json:"employeeName"`
	Department      string          `json:"department,omitempty"`
	Gross           decimal.Decimal `json:"gross"`
	AFP             decimal.Decimal `json:"afp"`
	ARS             decimal.Decimal `json:"ars"`
	ISR             decimal.Decimal `json:"isr"`
	TotalDeductions decimal.Decimal `json:"totalDeductions"`
	Net             decimal.Decimal `json:"net"`
}

type Summary struct {
	EmployeeCount   int             `json:"employeeCount"`
	TotalGross      decimal.Decimal `json:"totalGross"`
	TotalDeductions decimal.Decimal `json:"totalDeductions"`
	TotalNet        decimal.Decimal `json:"totalNet"`
}

// Run is the payroll for the whole roster, one line per employee in
// roster order.
type Run struct {
	Lines   []Line  `json:"lines"`
	Summary Summary `json:"summary"`
}
