package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civic-kit/issue-service/internal/domain"
)

// WardRepository reads ward reference data used for routing keys and display.
type WardRepository interface {
	GetByName(ctx context.Context, name string) (*domain.Ward, error)
	List(ctx context.Context) ([]domain.Ward, error)
}

type wardRepository struct {
	pool *pgxpool.Pool
}

// NewWardRepository builds the repository.
func NewWardRepository(pool *pgxpool.Pool) WardRepository {
	return &wardRepository{pool: pool}
}

func (r *wardRepository) GetByName(ctx context.Context, name string) (*domain.Ward, error) {
	const query = `
        SELECT id, name, zone, population, area, councillor
        FROM wards WHERE name=$1`
	var ward domain.Ward
	if err := r.pool.QueryRow(ctx, query, name).Scan(
		&ward.ID,
		&ward.Name,
		&ward.Zone,
		&ward.Population,
		&ward.Area,
		&ward.Councillor,
	); err != nil {
		return nil, err
	}
	return &ward, nil
}

func (r *wardRepository) List(ctx context.Context) ([]domain.Ward, error) {
	const query = `
        SELECT id, name, zone, population, area, councillor
        FROM wards ORDER BY id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ward
	for rows.Next() {
		var ward domain.Ward
		if err := rows.Scan(&ward.ID, &ward.Name, &ward.Zone, &ward.Population, &ward.Area, &ward.Councillor); err != nil {
			return nil, err
		}
		result = append(result, ward)
	}
	return result, rows.Err()
}
