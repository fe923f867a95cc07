package routing

import (
	"sort"
	"time"

	"github.com/civic-kit/issue-service/internal/domain"
)

// CheckEscalations returns every active rule the issue currently satisfies,
// in ascending level order. All triggered rules are reported, not just the
// highest level, because each one drives a distinct external notification.
// The engine never sends notifications itself.
func CheckEscalations(rules []domain.EscalationRule, issue *domain.Issue, now time.Time) []domain.EscalationRule {
	if !issue.Status.Open() {
		return nil
	}

	ordered := make([]domain.EscalationRule, len(rules))
	copy(ordered, rules)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Level < ordered[j].Level
	})

	var triggered []domain.EscalationRule
	for _, rule := range ordered {
		if !rule.Active {
			continue
		}
		if !rule.AppliesTo(issue.Status) {
			continue
		}
		if rule.MinPriority != nil && issue.Priority.Rank() < rule.MinPriority.Rank() {
			continue
		}
		if elapsed(issue, rule.Basis, now) >= rule.Threshold {
			triggered = append(triggered, rule)
		}
	}
	return triggered
}

func elapsed(issue *domain.Issue, basis domain.EscalationBasis, now time.Time) time.Duration {
	since := issue.CreatedAt
	if basis == domain.BasisStatusChange {
		since = issue.StatusSince()
	}
	return now.Sub(since)
}
