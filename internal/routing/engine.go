// Package routing decides which department handles an issue and whether an
// issue needs escalation. Both decisions are pure functions over
// administrator-owned rule sets; persisting the outcome is the caller's job.
package routing

import (
	"github.com/civic-kit/issue-service/internal/domain"
	apperrors "github.com/civic-kit/issue-service/pkg/util"
)

// Decision is the outcome of routing one issue.
type Decision struct {
	Department string
	Priority   domain.IssuePriority
	AutoAssign bool
	// NeedsApproval is set when the matched rule disables auto-assignment.
	// The department and priority are then a suggested default for the
	// manual approval queue.
	NeedsApproval bool
	Rule          *domain.RoutingRule
}

// Decide scans rules in their defined order and returns the first match.
// A rule matches on exact category and exact ward, or the "All Wards"
// wildcard. Ordering is a contract the configuration must respect: the
// engine performs no implicit specificity ranking, so ward-specific rules
// must precede the wildcard. No match yields a NO_ROUTING_RULE error and the
// issue stays unassigned for manual handling.
func Decide(rules []domain.RoutingRule, category domain.IssueCategory, ward string) (Decision, error) {
	for i := range rules {
		rule := rules[i]
		if !rule.Matches(category, ward) {
			continue
		}
		return Decision{
			Department:    rule.Department,
			Priority:      rule.Priority,
			AutoAssign:    rule.AutoAssign,
			NeedsApproval: !rule.AutoAssign,
			Rule:          &rule,
		}, nil
	}
	return Decision{}, apperrors.NewNoRoutingRule(string(category), ward)
}
