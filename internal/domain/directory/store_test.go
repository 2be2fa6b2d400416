package directory

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"

	cryptoutil "nomina/internal/platform/crypto"
)

const testEncryptionKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

var employeeRowColumns = []string{
	"id", "name", "department", "email", "salary", "salary_enc", "created_at", "updated_at",
}

func newMockStore(t *testing.T, key string) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(mock.Close)
	svc, err := cryptoutil.New(key)
	if err != nil {
		t.Fatalf("crypto.New: %v", err)
	}
	return NewStore(mock, svc), mock
}

func TestStoreGet(t *testing.T) {
	store, mock := newMockStore(t, "")
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(employeeRowColumns).
			AddRow(int64(7), "Ana Guzmán", "Operaciones", "ana@example.com", "15000.00", []byte(nil), now, now))

	emp, err := store.Get(context.Background(), 7)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if emp.ID != 7 || emp.Name != "Ana Guzmán" {
		t.Fatalf("unexpected employee: %+v", emp)
	}
	if !emp.Salary.Equal(decimal.RequireFromString("15000")) {
		t.Fatalf("expected salary 15000, got %s", emp.Salary)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStoreGetNotFound(t *testing.T) {
	store, mock := newMockStore(t, "")

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
		WithArgs(int64(99)).
		WillReturnError(pgx.ErrNoRows)

	_, err := store.Get(context.Background(), 99)
	if !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStoreListOrdersByID(t *testing.T) {
	store, mock := newMockStore(t, "")
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY id")).
		WillReturnRows(pgxmock.NewRows(employeeRowColumns).
			AddRow(int64(1), "Ana Guzmán", "Operaciones", "", "15000.00", []byte(nil), now, now).
			AddRow(int64(2), "Luis Peña", "Ventas", "", "30000.00", []byte(nil), now, now))

	emps, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(emps) != 2 {
		t.Fatalf("expected 2 employees, got %d", len(emps))
	}
	if emps[0].ID != 1 || emps[1].ID != 2 {
		t.Fatalf("expected roster order 1,2 got %d,%d", emps[0].ID, emps[1].ID)
	}
	if !emps[1].Salary.Equal(decimal.RequireFromString("30000")) {
		t.Fatalf("expected salary 30000, got %s", emps[1].Salary)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStoreCreatePlaintextWithoutKey(t *testing.T) {
	store, mock := newMockStore(t, "")

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO employees")).
		WithArgs("Ana Guzmán", "Operaciones", "ana@example.com", "15000.00", []byte(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))

	id, err := store.Create(context.Background(), Employee{
		Name:       "Ana Guzmán",
		Department: "Operaciones",
		Email:      "ana@example.com",
		Salary:     decimal.RequireFromString("15000"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id != 1 {
		t.Fatalf("expected id 1, got %d", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStoreCreateEncryptsSalaryWithKey(t *testing.T) {
	store, mock := newMockStore(t, testEncryptionKey)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO employees")).
		WithArgs("Ana Guzmán", "Operaciones", "ana@example.com", nil, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))

	_, err := store.Create(context.Background(), Employee{
		Name:       "Ana Guzmán",
		Department: "Operaciones",
		Email:      "ana@example.com",
		Salary:     decimal.RequireFromString("15000"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStoreGetDecryptsSalary(t *testing.T) {
	store, mock := newMockStore(t, testEncryptionKey)
	now := time.Now()

	svc, err := cryptoutil.New(testEncryptionKey)
	if err != nil {
		t.Fatalf("crypto.New: %v", err)
	}
	encrypted, err := svc.EncryptString("30000.00")
	if err != nil {
		t.Fatalf("EncryptString: %v", err)
	}

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
		WithArgs(int64(2)).
		WillReturnRows(pgxmock.NewRows(employeeRowColumns).
			AddRow(int64(2), "Luis Peña", "Ventas", "", "", encrypted, now, now))

	emp, err := store.Get(context.Background(), 2)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !emp.Salary.Equal(decimal.RequireFromString("30000")) {
		t.Fatalf("expected decrypted salary 30000, got %s", emp.Salary)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStoreUpdateNotFound(t *testing.T) {
	store, mock := newMockStore(t, "")

	mock.ExpectExec(regexp.QuoteMeta("UPDATE employees")).
		WithArgs("Ana Guzmán", "Operaciones", "", "15000.00", []byte(nil), int64(42)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := store.Update(context.Background(), 42, Employee{
		Name:       "Ana Guzmán",
		Department: "Operaciones",
		Salary:     decimal.RequireFromString("15000"),
	})
	if !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStoreDelete(t *testing.T) {
	store, mock := newMockStore(t, "")

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM employees WHERE id = $1")).
		WithArgs(int64(3)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	if err := store.Delete(context.Background(), 3); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM employees WHERE id = $1")).
		WithArgs(int64(3)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	if err := store.Delete(context.Background(), 3); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBackfillSalaryEncryption(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()
	svc, err := cryptoutil.New(testEncryptionKey)
	if err != nil {
		t.Fatalf("crypto.New: %v", err)
	}

	mock.ExpectQuery(regexp.QuoteMeta("WHERE salary_enc IS NULL AND salary IS NOT NULL")).
		WillReturnRows(pgxmock.NewRows([]string{"id", "salary"}).
			AddRow(int64(1), "15000.00").
			AddRow(int64(2), "30000.00"))
	mock.ExpectExec(regexp.QuoteMeta("SET salary = NULL, salary_enc = $1")).
		WithArgs(pgxmock.AnyArg(), int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(regexp.QuoteMeta("SET salary = NULL, salary_enc = $1")).
		WithArgs(pgxmock.AnyArg(), int64(2)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	updated, err := BackfillSalaryEncryption(context.Background(), mock, svc)
	if err != nil {
		t.Fatalf("BackfillSalaryEncryption: %v", err)
	}
	if updated != 2 {
		t.Fatalf("expected 2 rows updated, got %d", updated)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBackfillRequiresKey(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()
	svc, err := cryptoutil.New("")
	if err != nil {
		t.Fatalf("crypto.New: %v", err)
	}

	if _, err := BackfillSalaryEncryption(context.Background(), mock, svc); err == nil {
		t.Fatal("expected error without encryption key")
	}
}
