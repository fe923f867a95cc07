package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civic-kit/issue-service/internal/domain"
	apperrors "github.com/civic-kit/issue-service/pkg/util"
)

// IssueRepository encapsulates issue persistence. Filtering and sorting for
// console views live in the query engine, so listings return the full
// collection in creation order.
type IssueRepository interface {
	Create(ctx context.Context, issue *domain.Issue) error
	Update(ctx context.Context, issue *domain.Issue) error
	GetByID(ctx context.Context, id string) (*domain.Issue, error)
	GetByReportID(ctx context.Context, reportID string) (*domain.Issue, error)
	List(ctx context.Context) ([]domain.Issue, error)
	ListOpen(ctx context.Context) ([]domain.Issue, error)
	NextReportID(ctx context.Context, year int) (string, error)
}

type issueRepository struct {
	pool *pgxpool.Pool
}

// NewIssueRepository instantiates the Postgres-backed repository.
func NewIssueRepository(pool *pgxpool.Pool) IssueRepository {
	return &issueRepository{pool: pool}
}

const issueColumns = `id, report_id, title, description, category, priority, status,
       ward, zone, address, lat, lng, assigned_dept, assigned_to, needs_approval,
       reporter_name, reporter_contact, reporter_anonymous, images,
       sla_target, status_history, created_at, updated_at`

func (r *issueRepository) Create(ctx context.Context, issue *domain.Issue) error {
	history, err := json.Marshal(issue.StatusHistory)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO issues (id, report_id, title, description, category, priority, status,
            ward, zone, address, lat, lng, assigned_dept, assigned_to, needs_approval,
            reporter_name, reporter_contact, reporter_anonymous, images,
            sla_target, status_history, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)
        ON CONFLICT (report_id) DO NOTHING`
	cmd, err := r.pool.Exec(ctx, query,
		issue.ID,
		issue.ReportID,
		issue.Title,
		issue.Description,
		issue.Category,
		issue.Priority,
		issue.Status,
		issue.Ward,
		issue.Zone,
		issue.Location.Address,
		issue.Location.Lat,
		issue.Location.Lng,
		issue.AssignedDept,
		issue.AssignedTo,
		issue.NeedsApproval,
		issue.ReportedBy.Name,
		issue.ReportedBy.Contact,
		issue.ReportedBy.Anonymous,
		issue.Images,
		issue.SLATarget.String(),
		history,
		issue.CreatedAt,
		issue.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return apperrors.NewDuplicateReportID(issue.ReportID)
	}
	return nil
}

func (r *issueRepository) Update(ctx context.Context, issue *domain.Issue) error {
	history, err := json.Marshal(issue.StatusHistory)
	if err != nil {
		return err
	}
	const query = `
        UPDATE issues SET title=$1, description=$2, category=$3, priority=$4, status=$5,
            assigned_dept=$6, assigned_to=$7, needs_approval=$8,
            status_history=$9, updated_at=$10
        WHERE id=$11`
	cmd, err := r.pool.Exec(ctx, query,
		issue.Title,
		issue.Description,
		issue.Category,
		issue.Priority,
		issue.Status,
		issue.AssignedDept,
		issue.AssignedTo,
		issue.NeedsApproval,
		history,
		issue.UpdatedAt,
		issue.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *issueRepository) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	return r.fetchSingle(ctx, `SELECT `+issueColumns+` FROM issues WHERE id=$1`, id)
}

func (r *issueRepository) GetByReportID(ctx context.Context, reportID string) (*domain.Issue, error) {
	return r.fetchSingle(ctx, `SELECT `+issueColumns+` FROM issues WHERE report_id=$1`, reportID)
}

func (r *issueRepository) List(ctx context.Context) ([]domain.Issue, error) {
	return r.fetchMany(ctx, `SELECT `+issueColumns+` FROM issues ORDER BY created_at, report_id`)
}

func (r *issueRepository) ListOpen(ctx context.Context) ([]domain.Issue, error) {
	return r.fetchMany(ctx,
		`SELECT `+issueColumns+` FROM issues
         WHERE status NOT IN ($1,$2) ORDER BY created_at, report_id`,
		domain.StatusResolved, domain.StatusClosed)
}

func (r *issueRepository) NextReportID(ctx context.Context, year int) (string, error) {
	const query = `
        INSERT INTO report_sequences (year, last_value) VALUES ($1, 10000)
        ON CONFLICT (year) DO UPDATE SET last_value = report_sequences.last_value + 1
        RETURNING last_value`
	var seq int
	if err := r.pool.QueryRow(ctx, query, year).Scan(&seq); err != nil {
		return "", err
	}
	return domain.FormatReportID(year, seq), nil
}

func (r *issueRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Issue, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, pgx.ErrNoRows
	}
	return scanIssue(rows)
}

func (r *issueRepository) fetchMany(ctx context.Context, query string, args ...any) ([]domain.Issue, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Issue
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *issue)
	}
	return result, rows.Err()
}

func scanIssue(row pgx.Rows) (*domain.Issue, error) {
	var (
		issue     domain.Issue
		rawTarget string
		history   []byte
	)
	if err := row.Scan(
		&issue.ID,
		&issue.ReportID,
		&issue.Title,
		&issue.Description,
		&issue.Category,
		&issue.Priority,
		&issue.Status,
		&issue.Ward,
		&issue.Zone,
		&issue.Location.Address,
		&issue.Location.Lat,
		&issue.Location.Lng,
		&issue.AssignedDept,
		&issue.AssignedTo,
		&issue.NeedsApproval,
		&issue.ReportedBy.Name,
		&issue.ReportedBy.Contact,
		&issue.ReportedBy.Anonymous,
		&issue.Images,
		&rawTarget,
		&history,
		&issue.CreatedAt,
		&issue.UpdatedAt,
	); err != nil {
		return nil, err
	}
	// A target that fails to parse stays zero; the SLA evaluator reports it
	// as INVALID_SLA_FORMAT instead of this scan failing the whole read.
	if target, err := domain.ParseSLATarget(rawTarget); err == nil {
		issue.SLATarget = target
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &issue.StatusHistory); err != nil {
			return nil, err
		}
	}
	return &issue, nil
}
