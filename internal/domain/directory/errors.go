package directory

import "errors"

var (
	ErrEmployeeNotFound        = errors.New("employee not found")
	ErrNameRequired            = errors.New("employee name is required")
	ErrNegativeSalary          = errors.New("salary must not be negative")
	ErrEncryptionNotConfigured = errors.New("encryption key not configured")
)
