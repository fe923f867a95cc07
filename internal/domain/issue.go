package domain

import (
	"fmt"
	"time"
)

// FormatReportID renders the citizen-facing report id, e.g. JH202510045.
// The format is stable per deployment and ids are never reused.
func FormatReportID(year, seq int) string {
	return fmt.Sprintf("JH%d%05d", year, seq)
}

// IssueStatus enumerates lifecycle states for citizen-reported issues.
type IssueStatus string

const (
	StatusNew          IssueStatus = "New"
	StatusAcknowledged IssueStatus = "Acknowledged"
	StatusInProgress   IssueStatus = "In Progress"
	StatusResolved     IssueStatus = "Resolved"
	StatusClosed       IssueStatus = "Closed"
)

// statusOrder positions each status on the forward-only lifecycle chain.
var statusOrder = map[IssueStatus]int{
	StatusNew:          0,
	StatusAcknowledged: 1,
	StatusInProgress:   2,
	StatusResolved:     3,
	StatusClosed:       4,
}

// Order returns the position of the status in the lifecycle, or -1 when unknown.
func (s IssueStatus) Order() int {
	order, ok := statusOrder[s]
	if !ok {
		return -1
	}
	return order
}

// Valid reports whether the status is one of the known lifecycle states.
func (s IssueStatus) Valid() bool {
	_, ok := statusOrder[s]
	return ok
}

// Terminal reports whether no further transitions are allowed.
func (s IssueStatus) Terminal() bool {
	return s == StatusClosed
}

// Open reports whether the issue still counts against its SLA.
func (s IssueStatus) Open() bool {
	return s != StatusResolved && s != StatusClosed
}

// CanTransition reports whether next is the direct successor of current.
// Skipping ahead requires an explicit override at the service layer.
func CanTransition(current, next IssueStatus) bool {
	co, ok := statusOrder[current]
	if !ok {
		return false
	}
	no, ok := statusOrder[next]
	if !ok {
		return false
	}
	return no == co+1
}

// IssuePriority enumerates urgency levels.
type IssuePriority string

const (
	PriorityLow      IssuePriority = "Low"
	PriorityMedium   IssuePriority = "Medium"
	PriorityHigh     IssuePriority = "High"
	PriorityCritical IssuePriority = "Critical"
)

var priorityRank = map[IssuePriority]int{
	PriorityLow:      1,
	PriorityMedium:   2,
	PriorityHigh:     3,
	PriorityCritical: 4,
}

// Rank returns the numeric severity used for sorting and priority floors.
// Unknown priorities rank below Low.
func (p IssuePriority) Rank() int {
	return priorityRank[p]
}

// Location holds the display-only position of a report.
type Location struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// Reporter identifies the citizen who filed the report.
// Contact is empty when the report is anonymous.
type Reporter struct {
	Name      string `json:"name"`
	Contact   string `json:"contact"`
	Anonymous bool   `json:"isAnonymous"`
}

// StatusEntry is one append-only record in an issue's status history.
type StatusEntry struct {
	Status    IssueStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	UpdatedBy string      `json:"updatedBy"`
	Notes     string      `json:"notes,omitempty"`
}

// Issue is the aggregate for a citizen-reported civic complaint.
type Issue struct {
	ID            string        `json:"id"`
	ReportID      string        `json:"reportId"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Category      IssueCategory `json:"category"`
	Priority      IssuePriority `json:"priority"`
	Status        IssueStatus   `json:"status"`
	Ward          string        `json:"ward"`
	Zone          string        `json:"zone"`
	Location      Location      `json:"location"`
	AssignedDept  string        `json:"assignedDept"`
	AssignedTo    string        `json:"assignedTo,omitempty"`
	NeedsApproval bool          `json:"needsApproval"`
	ReportedBy    Reporter      `json:"reportedBy"`
	Images        []string      `json:"images,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
	SLATarget     SLATarget     `json:"slaTarget"`
	StatusHistory []StatusEntry `json:"statusHistory"`
}

// Clone returns a deep copy so store reads never alias live state.
func (i *Issue) Clone() *Issue {
	dup := *i
	dup.StatusHistory = make([]StatusEntry, len(i.StatusHistory))
	copy(dup.StatusHistory, i.StatusHistory)
	if i.Images != nil {
		dup.Images = make([]string, len(i.Images))
		copy(dup.Images, i.Images)
	}
	return &dup
}

// StatusSince returns the timestamp of the entry that set the current status.
// Falls back to CreatedAt when the history is empty.
func (i *Issue) StatusSince() time.Time {
	for idx := len(i.StatusHistory) - 1; idx >= 0; idx-- {
		if i.StatusHistory[idx].Status == i.Status {
			return i.StatusHistory[idx].Timestamp
		}
	}
	return i.CreatedAt
}
