package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civic-kit/issue-service/internal/domain"
)

// DepartmentRepository reads department reference data. Departments are
// mutated only by an external administration process, so the engine surface
// is read-only.
type DepartmentRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.Department, error)
	List(ctx context.Context) ([]domain.Department, error)
}

type departmentRepository struct {
	pool *pgxpool.Pool
}

// NewDepartmentRepository builds the repository.
func NewDepartmentRepository(pool *pgxpool.Pool) DepartmentRepository {
	return &departmentRepository{pool: pool}
}

func (r *departmentRepository) GetByCode(ctx context.Context, code string) (*domain.Department, error) {
	const query = `
        SELECT id, name, code, contact, head, active_staff
        FROM departments WHERE code=$1`
	var dept domain.Department
	if err := r.pool.QueryRow(ctx, query, code).Scan(
		&dept.ID,
		&dept.Name,
		&dept.Code,
		&dept.Contact,
		&dept.Head,
		&dept.ActiveStaff,
	); err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepository) List(ctx context.Context) ([]domain.Department, error) {
	const query = `
        SELECT id, name, code, contact, head, active_staff
        FROM departments ORDER BY code`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDepartments(rows)
}

func scanDepartments(rows pgx.Rows) ([]domain.Department, error) {
	var result []domain.Department
	for rows.Next() {
		var dept domain.Department
		if err := rows.Scan(&dept.ID, &dept.Name, &dept.Code, &dept.Contact, &dept.Head, &dept.ActiveStaff); err != nil {
			return nil, err
		}
		result = append(result, dept)
	}
	return result, rows.Err()
}
