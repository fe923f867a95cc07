package dto

import (
	"github.com/civic-kit/issue-service/internal/domain"
)

// CreateIssueRequest payload for citizen report intake.
type CreateIssueRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Ward        string          `json:"ward"`
	Zone        string          `json:"zone"`
	Location    domain.Location `json:"location"`
	Reporter    domain.Reporter `json:"reportedBy"`
	Images      []string        `json:"images"`
	// ReportID is optional; intake channels with their own numbering may
	// supply it, otherwise one is allocated.
	ReportID string `json:"reportId"`
}

// TransitionRequest payload for a status change.
type TransitionRequest struct {
	Status   string `json:"status"`
	Notes    string `json:"notes"`
	Override bool   `json:"override"`
}

// BulkTransitionRequest applies one transition to many issues.
type BulkTransitionRequest struct {
	IDs      []string `json:"ids"`
	Status   string   `json:"status"`
	Notes    string   `json:"notes"`
	Override bool     `json:"override"`
}

// BulkResultResponse reports a single issue's outcome within a bulk call.
type BulkResultResponse struct {
	ID    string        `json:"id"`
	Issue *domain.Issue `json:"issue,omitempty"`
	Error *ErrorDetail  `json:"error,omitempty"`
}

// ErrorDetail is the error envelope body reused inside bulk results.
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// AssignRequest payload for manual department/staff assignment.
type AssignRequest struct {
	Department string `json:"department"`
	AssignedTo string `json:"assignedTo"`
}

// PendingAssignmentResponse is one approval-queue entry.
type PendingAssignmentResponse struct {
	ID          string               `json:"id"`
	Category    domain.IssueCategory `json:"category"`
	Ward        string               `json:"ward"`
	Priority    domain.IssuePriority `json:"priority"`
	WaitMinutes int                  `json:"waitMinutes"`
}
