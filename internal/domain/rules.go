package domain

import "time"

// AllWards is the wildcard ward value in routing rules. A rule carrying it
// matches any ward; authors must order ward-specific rules before it because
// matching is strictly first-wins.
const AllWards = "All Wards"

// RoutingRule maps (category, ward) to a responsible department and priority.
type RoutingRule struct {
	ID         string        `json:"id"`
	Category   IssueCategory `json:"category"`
	Ward       string        `json:"ward"`
	Department string        `json:"dept"`
	Priority   IssuePriority `json:"priority"`
	AutoAssign bool          `json:"autoAssign"`
}

// Matches reports whether the rule applies to the given category and ward.
func (r RoutingRule) Matches(category IssueCategory, ward string) bool {
	if r.Category != category {
		return false
	}
	return r.Ward == ward || r.Ward == AllWards
}

// EscalationBasis selects the timestamp an escalation threshold counts from.
type EscalationBasis string

const (
	// BasisCreated measures elapsed time from the issue's creation.
	BasisCreated EscalationBasis = "created"
	// BasisStatusChange measures from the entry that set the current status.
	BasisStatusChange EscalationBasis = "status_change"
)

// EscalationRule describes one escalation level. Rules are evaluated in
// ascending level order and every satisfied rule is reported, since each
// drives a distinct external notification.
type EscalationRule struct {
	ID        string          `json:"id"`
	Level     int             `json:"level"`
	Condition string          `json:"condition"`
	Statuses  []IssueStatus   `json:"statuses,omitempty"`
	Threshold time.Duration   `json:"-"`
	Basis     EscalationBasis `json:"basis"`
	// MinPriority, when set, restricts the rule to issues at or above
	// that severity.
	MinPriority *IssuePriority `json:"minPriority,omitempty"`
	Action      string         `json:"action"`
	Active      bool           `json:"active"`
}

// AppliesTo reports whether the rule's status scope covers the issue's
// current status. An empty scope covers every non-terminal status.
func (r EscalationRule) AppliesTo(status IssueStatus) bool {
	if len(r.Statuses) == 0 {
		return status.Open()
	}
	for _, s := range r.Statuses {
		if s == status {
			return true
		}
	}
	return false
}
