// Package store provides the volatile issue store used when no database is
// configured, and by tests. It implements the repository interfaces with a
// reader-writer discipline: mutations take the write lock so the append-only,
// monotonic-timestamp history invariant holds under concurrency, while reads
// share the read lock and return defensive copies.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/civic-kit/issue-service/internal/domain"
	apperrors "github.com/civic-kit/issue-service/pkg/util"
)

// Memory holds issues plus administrator-owned reference data.
type Memory struct {
	mu sync.RWMutex

	issues map[string]*domain.Issue
	// order keeps insertion order so listings are stable without a sort.
	order     []string
	reportIDs map[string]string
	sequences map[int]int

	departments []domain.Department
	wards       []domain.Ward
	routing     []domain.RoutingRule
	escalation  []domain.EscalationRule
	policies    []domain.CategoryPolicy
	staff       []domain.Staff
}

// NewMemory builds an empty store.
func NewMemory() *Memory {
	return &Memory{
		issues:    make(map[string]*domain.Issue),
		reportIDs: make(map[string]string),
		sequences: make(map[int]int),
	}
}

// LoadReference replaces the reference data sets. Meant for startup seeding;
// the engine treats these as read-mostly configuration.
func (m *Memory) LoadReference(departments []domain.Department, wards []domain.Ward,
	routing []domain.RoutingRule, escalation []domain.EscalationRule,
	policies []domain.CategoryPolicy, staff []domain.Staff) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.departments = departments
	m.wards = wards
	m.routing = routing
	m.escalation = escalation
	m.policies = policies
	m.staff = staff
}

// Create stores a new issue. Missing internal ids are assigned; a colliding
// report id rejects the whole creation.
func (m *Memory) Create(ctx context.Context, issue *domain.Issue) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if issue.ID == "" {
		issue.ID = uuid.NewString()
	}
	if _, exists := m.issues[issue.ID]; exists {
		return apperrors.NewConflict("issue id already exists", map[string]any{"id": issue.ID})
	}
	if other, exists := m.reportIDs[issue.ReportID]; exists && other != issue.ID {
		return apperrors.NewDuplicateReportID(issue.ReportID)
	}

	m.issues[issue.ID] = issue.Clone()
	m.order = append(m.order, issue.ID)
	m.reportIDs[issue.ReportID] = issue.ID
	return nil
}

// Update replaces the stored issue atomically.
func (m *Memory) Update(ctx context.Context, issue *domain.Issue) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.issues[issue.ID]; !exists {
		return pgx.ErrNoRows
	}
	m.issues[issue.ID] = issue.Clone()
	return nil
}

// GetByID returns a copy of the issue.
func (m *Memory) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	issue, exists := m.issues[id]
	if !exists {
		return nil, pgx.ErrNoRows
	}
	return issue.Clone(), nil
}

// GetByReportID returns a copy of the issue with the citizen-facing id.
func (m *Memory) GetByReportID(ctx context.Context, reportID string) (*domain.Issue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, exists := m.reportIDs[reportID]
	if !exists {
		return nil, pgx.ErrNoRows
	}
	return m.issues[id].Clone(), nil
}

// List returns all issues in creation order.
func (m *Memory) List(ctx context.Context) ([]domain.Issue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]domain.Issue, 0, len(m.order))
	for _, id := range m.order {
		result = append(result, *m.issues[id].Clone())
	}
	return result, nil
}

// ListOpen returns issues that have not reached Resolved or Closed.
func (m *Memory) ListOpen(ctx context.Context) ([]domain.Issue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []domain.Issue
	for _, id := range m.order {
		if issue := m.issues[id]; issue.Status.Open() {
			result = append(result, *issue.Clone())
		}
	}
	return result, nil
}

// NextReportID allocates the next citizen-facing id for the given year.
func (m *Memory) NextReportID(ctx context.Context, year int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seq, exists := m.sequences[year]
	if !exists {
		seq = 10000
	} else {
		seq++
	}
	m.sequences[year] = seq
	return domain.FormatReportID(year, seq), nil
}

// GetByCode finds a department by its short code.
func (m *Memory) GetByCode(ctx context.Context, code string) (*domain.Department, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.departments {
		if m.departments[i].Code == code {
			dept := m.departments[i]
			return &dept, nil
		}
	}
	return nil, pgx.ErrNoRows
}

// ListDepartmentsAll returns all departments.
func (m *Memory) ListDepartmentsAll(ctx context.Context) ([]domain.Department, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]domain.Department, len(m.departments))
	copy(result, m.departments)
	return result, nil
}

// GetByName finds a ward by display name.
func (m *Memory) GetByName(ctx context.Context, name string) (*domain.Ward, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.wards {
		if m.wards[i].Name == name {
			ward := m.wards[i]
			return &ward, nil
		}
	}
	return nil, pgx.ErrNoRows
}

// ListWards returns all wards.
func (m *Memory) ListWards(ctx context.Context) ([]domain.Ward, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]domain.Ward, len(m.wards))
	copy(result, m.wards)
	return result, nil
}

// ListRoutingRules returns rules in their configured order.
func (m *Memory) ListRoutingRules(ctx context.Context) ([]domain.RoutingRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]domain.RoutingRule, len(m.routing))
	copy(result, m.routing)
	return result, nil
}

// ListEscalationRules returns escalation rules.
func (m *Memory) ListEscalationRules(ctx context.Context) ([]domain.EscalationRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]domain.EscalationRule, len(m.escalation))
	copy(result, m.escalation)
	return result, nil
}

// GetPolicy returns the category policy for a category.
func (m *Memory) GetPolicy(ctx context.Context, category domain.IssueCategory) (*domain.CategoryPolicy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.policies {
		if m.policies[i].Category == category {
			policy := m.policies[i]
			return &policy, nil
		}
	}
	return nil, pgx.ErrNoRows
}

// ListPolicies returns the category policy table.
func (m *Memory) ListPolicies(ctx context.Context) ([]domain.CategoryPolicy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]domain.CategoryPolicy, len(m.policies))
	copy(result, m.policies)
	return result, nil
}

// GetStaffByID finds a staff record.
func (m *Memory) GetStaffByID(ctx context.Context, id string) (*domain.Staff, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.staff {
		if m.staff[i].ID == id {
			staff := m.staff[i]
			return &staff, nil
		}
	}
	return nil, pgx.ErrNoRows
}

// GetStaffByEmail finds a staff record by email.
func (m *Memory) GetStaffByEmail(ctx context.Context, email string) (*domain.Staff, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.staff {
		if m.staff[i].Email == email {
			staff := m.staff[i]
			return &staff, nil
		}
	}
	return nil, pgx.ErrNoRows
}

// ListActiveByDepartment returns active staff in a department.
func (m *Memory) ListActiveByDepartment(ctx context.Context, deptCode string) ([]domain.Staff, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []domain.Staff
	for i := range m.staff {
		if m.staff[i].Active && m.staff[i].Department == deptCode {
			result = append(result, m.staff[i])
		}
	}
	return result, nil
}

// RecordLogin stamps the staff member's last login.
func (m *Memory) RecordLogin(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.staff {
		if m.staff[i].ID == id {
			m.staff[i].LastLogin = at
			return nil
		}
	}
	return pgx.ErrNoRows
}
