package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civic-kit/issue-service/internal/domain"
)

// RoutingRuleRepository lists routing rules in their author-defined order.
// Rule order is a contract: the engine is strictly first-match-wins.
type RoutingRuleRepository interface {
	List(ctx context.Context) ([]domain.RoutingRule, error)
}

// EscalationRuleRepository lists escalation rules.
type EscalationRuleRepository interface {
	List(ctx context.Context) ([]domain.EscalationRule, error)
}

// CategoryPolicyRepository reads the category policy table.
type CategoryPolicyRepository interface {
	Get(ctx context.Context, category domain.IssueCategory) (*domain.CategoryPolicy, error)
	List(ctx context.Context) ([]domain.CategoryPolicy, error)
}

type routingRuleRepository struct {
	pool *pgxpool.Pool
}

// NewRoutingRuleRepository builds the repository.
func NewRoutingRuleRepository(pool *pgxpool.Pool) RoutingRuleRepository {
	return &routingRuleRepository{pool: pool}
}

func (r *routingRuleRepository) List(ctx context.Context) ([]domain.RoutingRule, error) {
	const query = `
        SELECT id, category, ward, department, priority, auto_assign
        FROM routing_rules ORDER BY position`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.RoutingRule
	for rows.Next() {
		var rule domain.RoutingRule
		if err := rows.Scan(&rule.ID, &rule.Category, &rule.Ward, &rule.Department, &rule.Priority, &rule.AutoAssign); err != nil {
			return nil, err
		}
		result = append(result, rule)
	}
	return result, rows.Err()
}

type escalationRuleRepository struct {
	pool *pgxpool.Pool
}

// NewEscalationRuleRepository builds the repository.
func NewEscalationRuleRepository(pool *pgxpool.Pool) EscalationRuleRepository {
	return &escalationRuleRepository{pool: pool}
}

func (r *escalationRuleRepository) List(ctx context.Context) ([]domain.EscalationRule, error) {
	const query = `
        SELECT id, level, condition, statuses, threshold_seconds, basis, min_priority, action, active
        FROM escalation_rules ORDER BY level`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.EscalationRule
	for rows.Next() {
		var (
			rule             domain.EscalationRule
			statuses         []string
			thresholdSeconds int64
			minPriority      *string
		)
		if err := rows.Scan(&rule.ID, &rule.Level, &rule.Condition, &statuses, &thresholdSeconds, &rule.Basis, &minPriority, &rule.Action, &rule.Active); err != nil {
			return nil, err
		}
		for _, s := range statuses {
			rule.Statuses = append(rule.Statuses, domain.IssueStatus(s))
		}
		rule.Threshold = time.Duration(thresholdSeconds) * time.Second
		if minPriority != nil {
			p := domain.IssuePriority(*minPriority)
			rule.MinPriority = &p
		}
		result = append(result, rule)
	}
	return result, rows.Err()
}

type categoryPolicyRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryPolicyRepository builds the repository.
func NewCategoryPolicyRepository(pool *pgxpool.Pool) CategoryPolicyRepository {
	return &categoryPolicyRepository{pool: pool}
}

func (r *categoryPolicyRepository) Get(ctx context.Context, category domain.IssueCategory) (*domain.CategoryPolicy, error) {
	const query = `
        SELECT category, sla_target, default_dept
        FROM category_policies WHERE category=$1`
	return scanPolicy(r.pool.QueryRow(ctx, query, category))
}

func (r *categoryPolicyRepository) List(ctx context.Context) ([]domain.CategoryPolicy, error) {
	const query = `
        SELECT category, sla_target, default_dept
        FROM category_policies ORDER BY category`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CategoryPolicy
	for rows.Next() {
		policy, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *policy)
	}
	return result, rows.Err()
}

func scanPolicy(row pgx.Row) (*domain.CategoryPolicy, error) {
	var (
		policy    domain.CategoryPolicy
		rawTarget string
	)
	if err := row.Scan(&policy.Category, &rawTarget, &policy.DefaultDept); err != nil {
		return nil, err
	}
	if target, err := domain.ParseSLATarget(rawTarget); err == nil {
		policy.SLATarget = target
	}
	return &policy, nil
}
