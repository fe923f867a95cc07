package events

import (
	"time"

	"github.com/civic-kit/issue-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIssueCreated       EventType = "issue_created"
	EventIssueStatusChanged EventType = "issue_status_changed"
	EventIssueAssigned      EventType = "issue_assigned"
	EventIssueEscalated     EventType = "issue_escalated"
)

// Actor identifies who triggered an event. System-driven changes carry the
// literal name "System" and no staff id.
type Actor struct {
	StaffID string `json:"staff_id,omitempty"`
	Name    string `json:"name"`
}

// SystemActor is the synthetic actor for automated changes.
func SystemActor() Actor {
	return Actor{Name: "System"}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	IssueID   string      `json:"issue_id"`
	ReportID  string      `json:"report_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// IssueCreatedPayload payload.
type IssueCreatedPayload struct {
	Category      domain.IssueCategory `json:"category"`
	Ward          string               `json:"ward"`
	Department    string               `json:"department,omitempty"`
	Priority      domain.IssuePriority `json:"priority"`
	NeedsApproval bool                 `json:"needs_approval"`
}

// IssueStatusChangedPayload payload.
type IssueStatusChangedPayload struct {
	OldStatus domain.IssueStatus `json:"old_status"`
	NewStatus domain.IssueStatus `json:"new_status"`
	Override  bool               `json:"override,omitempty"`
	Notes     string             `json:"notes,omitempty"`
}

// IssueAssignedPayload payload.
type IssueAssignedPayload struct {
	Department string `json:"department"`
	AssignedTo string `json:"assigned_to,omitempty"`
}

// IssueEscalatedPayload payload.
type IssueEscalatedPayload struct {
	Level     int    `json:"level"`
	Condition string `json:"condition"`
	Action    string `json:"action"`
}
