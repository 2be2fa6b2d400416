package payroll

import (
	"context"
	"fmt"

	"nomina/internal/domain/directory"
)

// Directory is the slice of the employee roster the payroll service
// reads. The concrete implementation is directory.Service.
type Directory interface {
	Get(ctx context.Context, id int64) (*directory.Employee, error)
	List(ctx context.Context) ([]directory.Employee, error)
}

// Mailer delivers rendered payslips. A nil Mailer means email delivery
// is disabled.
type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type Service struct {
	directory Directory
	engine    *Engine
	mailer    Mailer
	from      string
}

func NewService(dir Directory, engine *Engine, mailer Mailer, from string) *Service {
	return &Service{directory: dir, engine: engine, mailer: mailer, from: from}
}

func (s *Service) Engine() *Engine {
	return s.engine
}

// Run computes payroll for the whole roster in roster order.
func (s *Service) Run(ctx context.Context) (Run, error) {
	employees, err := s.directory.List(ctx)
	if err != nil {
		return Run{}, err
	}
	return s.engine.ComputeRun(employees)
}

// LineFor computes a single employee's payroll line.
func (s *Service) LineFor(ctx context.Context, employeeID int64) (Line, error) {
	emp, err := s.directory.Get(ctx, employeeID)
	if err != nil {
		return Line{}, err
	}
	return s.engine.ComputeLine(*emp)
}

// EmailPayslip sends the employee their payslip summary for the period.
// The employee record must carry an email address.
func (s *Service) EmailPayslip(ctx context.Context, employeeID int64, period string) error {
	if s.mailer == nil {
		return ErrMailerNotConfigured
	}
	emp, err := s.directory.Get(ctx, employeeID)
	if err != nil {
		return err
	}
	if emp.Email == "" {
		return fmt.Errorf("employee %d: %w", employeeID, ErrNoEmailAddress)
	}
	line, err := s.engine.ComputeLine(*emp)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Payslip %s", period)
	body := fmt.Sprintf(
		"Hello %s,\n\nYour payslip for %s:\n\n"+
			"Gross salary: %s\n"+
			"AFP: %s\n"+
			"ARS: %s\n"+
			"ISR: %s\n"+
			"Total deductions: %s\n"+
			"Net salary: %s\n",
		emp.Name, period,
		line.Gross.StringFixed(2),
		line.AFP.StringFixed(2),
		line.ARS.StringFixed(2),
		line.ISR.StringFixed(2),
		line.TotalDeductions.StringFixed(2),
		line.Net.StringFixed(2),
	)
	return s.mailer.Send(ctx, s.from, emp.Email, subject, body)
}
