package payroll

import "errors"

var (
	ErrNegativeSalary      = errors.New("gross salary must not be negative")
	ErrMailerNotConfigured = errors.New("payslip mailer is not configured")
	ErrNoEmailAddress      = errors.New("employee has no email address")
)
