package directory

import (
	"context"
	"strings"
)

// Service owns roster validation rules. Persistence concerns stay in the
// store so handlers never touch SQL.
type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

func (s *Service) Get(ctx context.Context, id int64) (*Employee, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Employee, error) {
	return s.store.List(ctx)
}

func (s *Service) ListPage(ctx context.Context, limit, offset int) ([]Employee, error) {
	return s.store.ListPage(ctx, limit, offset)
}

func (s *Service) Create(ctx context.Context, emp Employee) (int64, error) {
	if err := validateEmployee(emp); err != nil {
		return 0, err
	}
	emp.Name = strings.TrimSpace(emp.Name)
	return s.store.Create(ctx, emp)
}

func (s *Service) Update(ctx context.Context, id int64, emp Employee) error {
	if err := validateEmployee(emp); err != nil {
		return err
	}
	emp.Name = strings.TrimSpace(emp.Name)
	return s.store.Update(ctx, id, emp)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}

func validateEmployee(emp Employee) error {
	if strings.TrimSpace(emp.Name) == "" {
		return ErrNameRequired
	}
	if emp.Salary.IsNegative() {
		return ErrNegativeSalary
	}
	return nil
}
