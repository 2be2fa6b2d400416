package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type seedEmployee struct {
	name       string
	department string
	email      string
	salary     string
}

// Demo roster covering all three tax brackets. Inserted only into an
// empty table so repeated startups stay idempotent.
var seedRoster = []seedEmployee{
	{name: "Ana Guzmán", department: "Operaciones", email: "ana.guzman@example.com", salary: "15000.00"},
	{name: "Luis Peña", department: "Ventas", email: "luis.pena@example.com", salary: "30000.00"},
	{name: "María Rodríguez", department: "Ingeniería", email: "maria.rodriguez@example.com", salary: "50000.00"},
	{name: "Pedro Santana", department: "Operaciones", email: "pedro.santana@example.com", salary: "20000.00"},
	{name: "Carmen Díaz", department: "Finanzas", email: "carmen.diaz@example.com", salary: "42500.00"},
}

func Seed(ctx context.Context, pool *pgxpool.Pool) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM employees").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, emp := range seedRoster {
		if _, err := pool.Exec(ctx, `
      INSERT INTO employees (name, department, email, salary)
      VALUES ($1, $2, $3, $4::numeric)
    `, emp.name, emp.department, emp.email, emp.salary); err != nil {
			return err
		}
	}
	return nil
}
