// Package sla computes deadline and breach state for issues. The evaluator is
// pure: the same (issue, now) pair always yields the same result and no call
// mutates the issue.
package sla

import (
	"time"

	"github.com/civic-kit/issue-service/internal/domain"
	apperrors "github.com/civic-kit/issue-service/pkg/util"
)

// Status is the SLA state of an issue at a given instant.
type Status string

const (
	// StatusMet marks issues that reached Resolved or Closed. Once the work
	// is done the SLA counts as satisfied, even if the deadline passed
	// before resolution.
	StatusMet      Status = "met"
	StatusBreached Status = "breached"
	StatusWarning  Status = "warning"
	StatusNormal   Status = "normal"
)

// Result is the outcome of evaluating one issue.
type Result struct {
	Deadline       time.Time `json:"deadline"`
	Status         Status    `json:"status"`
	HoursRemaining int       `json:"hoursRemaining"`
}

// Evaluator derives SLA state from an issue's target and creation time.
type Evaluator struct {
	warningHours int
}

// NewEvaluator builds an evaluator. warningHours is the remaining-time window
// below which open issues report Warning instead of Normal; values below one
// fall back to the default of two hours.
func NewEvaluator(warningHours int) Evaluator {
	if warningHours < 1 {
		warningHours = 2
	}
	return Evaluator{warningHours: warningHours}
}

// Evaluate returns the SLA state of the issue at the given instant.
//
// When the issue's target never parsed, the returned error carries
// INVALID_SLA_FORMAT and the result degrades to Normal; callers must log the
// condition instead of treating the issue as breached.
func (e Evaluator) Evaluate(issue *domain.Issue, now time.Time) (Result, error) {
	if issue.SLATarget.IsZero() {
		return Result{Status: StatusNormal}, apperrors.NewInvalidSLAFormat(issue.SLATarget.String())
	}

	deadline := issue.CreatedAt.Add(issue.SLATarget.Duration())

	if !issue.Status.Open() {
		return Result{Deadline: deadline, Status: StatusMet}, nil
	}
	if now.After(deadline) {
		return Result{Deadline: deadline, Status: StatusBreached}, nil
	}

	hoursRemaining := int(deadline.Sub(now).Hours())
	status := StatusNormal
	if hoursRemaining <= e.warningHours {
		status = StatusWarning
	}
	return Result{Deadline: deadline, Status: status, HoursRemaining: hoursRemaining}, nil
}
