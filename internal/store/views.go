package store

import (
	"context"
	"time"

	"github.com/civic-kit/issue-service/internal/domain"
	"github.com/civic-kit/issue-service/internal/repository"
)

// Issues exposes the store as an issue repository.
func (m *Memory) Issues() repository.IssueRepository { return m }

// Departments exposes the store as a department repository.
func (m *Memory) Departments() repository.DepartmentRepository { return departmentView{m} }

// Wards exposes the store as a ward repository.
func (m *Memory) Wards() repository.WardRepository { return wardView{m} }

// RoutingRules exposes the store as a routing rule repository.
func (m *Memory) RoutingRules() repository.RoutingRuleRepository { return routingRuleView{m} }

// EscalationRules exposes the store as an escalation rule repository.
func (m *Memory) EscalationRules() repository.EscalationRuleRepository { return escalationRuleView{m} }

// Policies exposes the store as a category policy repository.
func (m *Memory) Policies() repository.CategoryPolicyRepository { return policyView{m} }

// Staff exposes the store as a staff repository.
func (m *Memory) Staff() repository.StaffRepository { return staffView{m} }

type departmentView struct{ m *Memory }

func (v departmentView) GetByCode(ctx context.Context, code string) (*domain.Department, error) {
	return v.m.GetByCode(ctx, code)
}

func (v departmentView) List(ctx context.Context) ([]domain.Department, error) {
	return v.m.ListDepartmentsAll(ctx)
}

type wardView struct{ m *Memory }

func (v wardView) GetByName(ctx context.Context, name string) (*domain.Ward, error) {
	return v.m.GetByName(ctx, name)
}

func (v wardView) List(ctx context.Context) ([]domain.Ward, error) {
	return v.m.ListWards(ctx)
}

type routingRuleView struct{ m *Memory }

func (v routingRuleView) List(ctx context.Context) ([]domain.RoutingRule, error) {
	return v.m.ListRoutingRules(ctx)
}

type escalationRuleView struct{ m *Memory }

func (v escalationRuleView) List(ctx context.Context) ([]domain.EscalationRule, error) {
	return v.m.ListEscalationRules(ctx)
}

type policyView struct{ m *Memory }

func (v policyView) Get(ctx context.Context, category domain.IssueCategory) (*domain.CategoryPolicy, error) {
	return v.m.GetPolicy(ctx, category)
}

func (v policyView) List(ctx context.Context) ([]domain.CategoryPolicy, error) {
	return v.m.ListPolicies(ctx)
}

type staffView struct{ m *Memory }

func (v staffView) GetByID(ctx context.Context, id string) (*domain.Staff, error) {
	return v.m.GetStaffByID(ctx, id)
}

func (v staffView) GetByEmail(ctx context.Context, email string) (*domain.Staff, error) {
	return v.m.GetStaffByEmail(ctx, email)
}

func (v staffView) ListActiveByDepartment(ctx context.Context, deptCode string) ([]domain.Staff, error) {
	return v.m.ListActiveByDepartment(ctx, deptCode)
}

func (v staffView) RecordLogin(ctx context.Context, id string, at time.Time) error {
	return v.m.RecordLogin(ctx, id, at)
}
