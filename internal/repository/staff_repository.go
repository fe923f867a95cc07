package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civic-kit/issue-service/internal/domain"
)

// StaffRepository manages console operator records.
type StaffRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Staff, error)
	GetByEmail(ctx context.Context, email string) (*domain.Staff, error)
	ListActiveByDepartment(ctx context.Context, deptCode string) ([]domain.Staff, error)
	RecordLogin(ctx context.Context, id string, at time.Time) error
}

type staffRepository struct {
	pool *pgxpool.Pool
}

// NewStaffRepository instantiates the repository.
func NewStaffRepository(pool *pgxpool.Pool) StaffRepository {
	return &staffRepository{pool: pool}
}

const staffColumns = `id, name, email, password_hash, role, department, phone, active, last_login`

func (r *staffRepository) GetByID(ctx context.Context, id string) (*domain.Staff, error) {
	return r.fetchSingle(ctx, `SELECT `+staffColumns+` FROM staff WHERE id=$1`, id)
}

func (r *staffRepository) GetByEmail(ctx context.Context, email string) (*domain.Staff, error) {
	return r.fetchSingle(ctx, `SELECT `+staffColumns+` FROM staff WHERE email=$1`, email)
}

func (r *staffRepository) ListActiveByDepartment(ctx context.Context, deptCode string) ([]domain.Staff, error) {
	const query = `
        SELECT ` + staffColumns + `
        FROM staff WHERE department=$1 AND active = TRUE ORDER BY id`
	rows, err := r.pool.Query(ctx, query, deptCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Staff
	for rows.Next() {
		staff, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *staff)
	}
	return result, rows.Err()
}

func (r *staffRepository) RecordLogin(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE staff SET last_login=$1 WHERE id=$2`
	_, err := r.pool.Exec(ctx, query, at, id)
	return err
}

func (r *staffRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Staff, error) {
	return scanStaff(r.pool.QueryRow(ctx, query, arg))
}

func scanStaff(row pgx.Row) (*domain.Staff, error) {
	var staff domain.Staff
	if err := row.Scan(
		&staff.ID,
		&staff.Name,
		&staff.Email,
		&staff.PasswordHash,
		&staff.Role,
		&staff.Department,
		&staff.Phone,
		&staff.Active,
		&staff.LastLogin,
	); err != nil {
		return nil, err
	}
	return &staff, nil
}
