// Package query filters and sorts issue collections for console views. Every
// call re-derives its result from the input slice; nothing is cached and the
// input is never mutated.
package query

import (
	"sort"
	"strings"

	"github.com/civic-kit/issue-service/internal/domain"
)

// Wildcard disables a status/category/priority predicate.
const Wildcard = "all"

// SortKey selects the field issues are ordered by.
type SortKey string

const (
	SortByCreatedAt SortKey = "createdAt"
	SortByPriority  SortKey = "priority"
	SortByStatus    SortKey = "status"
)

// SortOrder is the direction applied uniformly to the chosen key.
type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// Filters narrows the issue list. Search is a case-insensitive substring test
// against report id, title, ward and address; an issue matches when any of
// those fields contains the term. The remaining predicates are exact matches
// combined with AND; empty or "all" disables a predicate.
type Filters struct {
	Search   string
	Status   string
	Category string
	Priority string
}

// Sort pairs a key with a direction.
type Sort struct {
	Key   SortKey
	Order SortOrder
}

// Run returns the issues matching the filters, ordered by the sort spec.
// The sort is stable: issues comparing equal keep their input order.
func Run(issues []domain.Issue, filters Filters, s Sort) []domain.Issue {
	matched := make([]domain.Issue, 0, len(issues))
	for _, issue := range issues {
		if matches(issue, filters) {
			matched = append(matched, issue)
		}
	}

	less := lessFunc(s.Key)
	sort.SliceStable(matched, func(i, j int) bool {
		if s.Order == Ascending {
			return less(&matched[i], &matched[j])
		}
		return less(&matched[j], &matched[i])
	})
	return matched
}

func matches(issue domain.Issue, f Filters) bool {
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		if !strings.Contains(strings.ToLower(issue.ReportID), term) &&
			!strings.Contains(strings.ToLower(issue.Title), term) &&
			!strings.Contains(strings.ToLower(issue.Ward), term) &&
			!strings.Contains(strings.ToLower(issue.Location.Address), term) {
			return false
		}
	}
	if !wildcarded(f.Status) && string(issue.Status) != f.Status {
		return false
	}
	if !wildcarded(f.Category) && string(issue.Category) != f.Category {
		return false
	}
	if !wildcarded(f.Priority) && string(issue.Priority) != f.Priority {
		return false
	}
	return true
}

func wildcarded(v string) bool {
	return v == "" || strings.EqualFold(v, Wildcard)
}

func lessFunc(key SortKey) func(a, b *domain.Issue) bool {
	switch key {
	case SortByPriority:
		// Rank order, not lexicographic: Critical > High > Medium > Low.
		return func(a, b *domain.Issue) bool {
			return a.Priority.Rank() < b.Priority.Rank()
		}
	case SortByStatus:
		return func(a, b *domain.Issue) bool {
			return a.Status < b.Status
		}
	default:
		return func(a, b *domain.Issue) bool {
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
}
