package directory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	cryptoutil "nomina/internal/platform/crypto"
)

// Querier is satisfied by *pgxpool.Pool, pgx.Tx, and the pgxmock pool
// used in tests.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type Store struct {
	db     Querier
	crypto *cryptoutil.Service
}

func NewStore(db Querier, crypto *cryptoutil.Service) *Store {
	return &Store{db: db, crypto: crypto}
}

const employeeColumns = `id, name, COALESCE(department, ''), COALESCE(email, ''),
           COALESCE(salary::text, ''), salary_enc, created_at, updated_at`

func (s *Store) Get(ctx context.Context, id int64) (*Employee, error) {
	row := s.db.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    WHERE id = $1
  `, id)

	emp, err := s.scanEmployee(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}
	return emp, nil
}

func (s *Store) List(ctx context.Context) ([]Employee, error) {
	rows, err := s.db.Query(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    ORDER BY id
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return s.collectEmployees(rows)
}

func (s *Store) ListPage(ctx context.Context, limit, offset int) ([]Employee, error) {
	rows, err := s.db.Query(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    ORDER BY id
    LIMIT $1 OFFSET $2
  `, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return s.collectEmployees(rows)
}

func (s *Store) Create(ctx context.Context, emp Employee) (int64, error) {
	salaryPlain, salaryEnc := s.encryptSalary(emp.Salary)
	var id int64
	err := s.db.QueryRow(ctx, `
    INSERT INTO employees (name, department, email, salary, salary_enc)
    VALUES ($1, $2, $3, $4::numeric, $5)
    RETURNING id
  `, emp.Name, emp.Department, emp.Email, salaryPlain, salaryEnc).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) Update(ctx context.Context, id int64, emp Employee) error {
	salaryPlain, salaryEnc := s.encryptSalary(emp.Salary)
	cmd, err := s.db.Exec(ctx, `
    UPDATE employees
    SET name = $1,
        department = $2,
        email = $3,
        salary = $4::numeric,
        salary_enc = $5,
        updated_at = now()
    WHERE id = $6
  `, emp.Name, emp.Department, emp.Email, salaryPlain, salaryEnc, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	cmd, err := s.db.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

// BackfillSalaryEncryption encrypts plaintext salaries written before the
// encryption key was configured. Returns the number of rows rewritten.
func BackfillSalaryEncryption(ctx context.Context, db Querier, crypto *cryptoutil.Service) (int, error) {
	if crypto == nil || !crypto.Configured() {
		return 0, ErrEncryptionNotConfigured
	}

	rows, err := db.Query(ctx, `
    SELECT id, salary::text
    FROM employees
    WHERE salary_enc IS NULL AND salary IS NOT NULL
    ORDER BY id
  `)
	if err != nil {
		return 0, err
	}

	type pending struct {
		id     int64
		salary string
	}
	var todo []pending
	for rows.Next() {
		var p pending
		if err := rows.Scan(&p.id, &p.salary); err != nil {
			rows.Close()
			return 0, err
		}
		todo = append(todo, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	updated := 0
	for _, p := range todo {
		amount, err := decimal.NewFromString(p.salary)
		if err != nil {
			return updated, err
		}
		encrypted, err := crypto.EncryptString(amount.StringFixed(2))
		if err != nil {
			return updated, err
		}
		cmd, err := db.Exec(ctx, `
      UPDATE employees
      SET salary = NULL, salary_enc = $1, updated_at = now()
      WHERE id = $2 AND salary_enc IS NULL
    `, encrypted, p.id)
		if err != nil {
			return updated, err
		}
		updated += int(cmd.RowsAffected())
	}
	return updated, nil
}

func (s *Store) scanEmployee(row pgx.Row) (*Employee, error) {
	var emp Employee
	var salaryPlain string
	var salaryEnc []byte
	if err := row.Scan(
		&emp.ID, &emp.Name, &emp.Department, &emp.Email,
		&salaryPlain, &salaryEnc, &emp.CreatedAt, &emp.UpdatedAt,
	); err != nil {
		return nil, err
	}
	salary, err := s.decodeSalary(salaryEnc, salaryPlain)
	if err != nil {
		return nil, err
	}
	emp.Salary = salary
	return &emp, nil
}

func (s *Store) collectEmployees(rows pgx.Rows) ([]Employee, error) {
	var out []Employee
	for rows.Next() {
		emp, err := s.scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *emp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) encryptSalary(salary decimal.Decimal) (any, []byte) {
	if s.crypto == nil || !s.crypto.Configured() {
		return salary.StringFixed(2), nil
	}
	encrypted, err := s.crypto.EncryptString(salary.StringFixed(2))
	if err != nil {
		return salary.StringFixed(2), nil
	}
	return nil, encrypted
}

// decodeSalary prefers the encrypted column and falls back to the
// plaintext one for rows written before the key was configured.
func (s *Store) decodeSalary(encrypted []byte, plain string) (decimal.Decimal, error) {
	if s.crypto != nil && s.crypto.Configured() && len(encrypted) > 0 {
		value, err := s.crypto.DecryptString(encrypted)
		if err == nil {
			return decimal.NewFromString(value)
		}
	}
	if plain == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(plain)
}
