package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/civic-kit/issue-service/internal/domain"
	"github.com/civic-kit/issue-service/internal/events"
	"github.com/civic-kit/issue-service/internal/query"
	"github.com/civic-kit/issue-service/internal/repository"
	"github.com/civic-kit/issue-service/internal/routing"
	"github.com/civic-kit/issue-service/internal/sla"
	apperrors "github.com/civic-kit/issue-service/pkg/util"
)

// Clock supplies the current time; injectable for tests.
type Clock func() time.Time

// IssueService coordinates intake, lifecycle and assignment workflows.
type IssueService struct {
	issues          repository.IssueRepository
	departments     repository.DepartmentRepository
	staff           repository.StaffRepository
	routingRules    repository.RoutingRuleRepository
	escalationRules repository.EscalationRuleRepository
	policies        repository.CategoryPolicyRepository
	evaluator       sla.Evaluator
	dispatcher      events.Dispatcher
	logger          *zap.Logger
	now             Clock
	defaultTarget   domain.SLATarget
}

// IssueDependencies bundles collaborators for the issue service.
type IssueDependencies struct {
	IssueRepo          repository.IssueRepository
	DepartmentRepo     repository.DepartmentRepository
	StaffRepo          repository.StaffRepository
	RoutingRuleRepo    repository.RoutingRuleRepository
	EscalationRuleRepo repository.EscalationRuleRepository
	PolicyRepo         repository.CategoryPolicyRepository
	Evaluator          sla.Evaluator
	Dispatcher         events.Dispatcher
	Logger             *zap.Logger
	Now                Clock
	DefaultTarget      domain.SLATarget
}

// NewIssueService constructs the service.
func NewIssueService(deps IssueDependencies) *IssueService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	defaultTarget := deps.DefaultTarget
	if defaultTarget.IsZero() {
		defaultTarget = domain.SLATarget{Amount: 24, Unit: domain.SLAUnitHours}
	}
	return &IssueService{
		issues:          deps.IssueRepo,
		departments:     deps.DepartmentRepo,
		staff:           deps.StaffRepo,
		routingRules:    deps.RoutingRuleRepo,
		escalationRules: deps.EscalationRuleRepo,
		policies:        deps.PolicyRepo,
		evaluator:       deps.Evaluator,
		dispatcher:      deps.Dispatcher,
		logger:          logger,
		now:             now,
		defaultTarget:   defaultTarget,
	}
}

// IntakeInput is a citizen report handed over by the (external) intake
// process. Validation of the payload happens upstream; the service assigns
// SLA target, department, priority and initial status.
type IntakeInput struct {
	Title       string
	Description string
	Category    domain.IssueCategory
	Ward        string
	Zone        string
	Location    domain.Location
	Reporter    domain.Reporter
	Images      []string
	// ReportID may be supplied by an upstream intake channel; when empty a
	// fresh id is allocated from the per-year sequence.
	ReportID string
}

// CreateOutcome carries the created issue plus the routing failure, if any.
// A missing routing rule does not block intake: the issue is persisted
// unassigned and the error is surfaced so operators can intervene.
type CreateOutcome struct {
	Issue        *domain.Issue
	RoutingError error
}

// CreateIssue records a new issue: routes it, stamps its SLA target from the
// category policy in force right now, and writes the initial history entry.
func (s *IssueService) CreateIssue(ctx context.Context, input IntakeInput) (*CreateOutcome, error) {
	now := s.now()

	target := s.defaultTarget
	if policy, err := s.policies.Get(ctx, input.Category); err == nil && !policy.SLATarget.IsZero() {
		target = policy.SLATarget
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	reportID := input.ReportID
	if reportID == "" {
		var err error
		reportID, err = s.issues.NextReportID(ctx, now.Year())
		if err != nil {
			return nil, apperrors.MapError(err)
		}
	}

	issue := &domain.Issue{
		ID:          uuid.NewString(),
		ReportID:    reportID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Category:    input.Category,
		Priority:    domain.PriorityMedium,
		Status:      domain.StatusNew,
		Ward:        input.Ward,
		Zone:        input.Zone,
		Location:    input.Location,
		ReportedBy:  input.Reporter,
		Images:      input.Images,
		CreatedAt:   now,
		UpdatedAt:   now,
		SLATarget:   target,
		StatusHistory: []domain.StatusEntry{{
			Status:    domain.StatusNew,
			Timestamp: now,
			UpdatedBy: "System",
			Notes:     "Issue automatically created from citizen report",
		}},
	}

	rules, err := s.routingRules.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	decision, routingErr := routing.Decide(rules, input.Category, input.Ward)
	if routingErr != nil {
		// Unrouted issues land in the manual approval queue.
		issue.NeedsApproval = true
		s.logger.Warn("no routing rule for issue",
			zap.String("report_id", issue.ReportID),
			zap.String("category", string(input.Category)),
			zap.String("ward", input.Ward))
	} else {
		issue.AssignedDept = decision.Department
		issue.Priority = decision.Priority
		issue.NeedsApproval = decision.NeedsApproval
		if decision.AutoAssign {
			issue.AssignedTo = s.autoAssignStaff(ctx, decision.Department, issue.ID)
		}
	}

	if err := s.issues.Create(ctx, issue); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventIssueCreated,
		IssueID:  issue.ID,
		ReportID: issue.ReportID,
		Actor:    events.SystemActor(),
		Payload: events.IssueCreatedPayload{
			Category:      issue.Category,
			Ward:          issue.Ward,
			Department:    issue.AssignedDept,
			Priority:      issue.Priority,
			NeedsApproval: issue.NeedsApproval,
		},
	})
	return &CreateOutcome{Issue: issue, RoutingError: routingErr}, nil
}

// Transition moves an issue to a new lifecycle status.
//
// Without override only the direct successor is legal. Override permits
// skipping ahead (never backwards, never out of Closed) and requires a note
// explaining the skip. The issue is never partially mutated on failure.
func (s *IssueService) Transition(ctx context.Context, id string, newStatus domain.IssueStatus, actor events.Actor, notes string, override bool) (*domain.Issue, error) {
	if !newStatus.Valid() {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": string(newStatus)})
	}

	issue, err := s.getIssue(ctx, id)
	if err != nil {
		return nil, err
	}
	if issue.Status.Terminal() {
		return nil, apperrors.NewTerminalState(issue.ReportID)
	}
	if !domain.CanTransition(issue.Status, newStatus) {
		if !override {
			return nil, apperrors.NewIllegalTransition(string(issue.Status), string(newStatus))
		}
		if newStatus.Order() <= issue.Status.Order() {
			return nil, apperrors.NewIllegalTransition(string(issue.Status), string(newStatus))
		}
		if strings.TrimSpace(notes) == "" {
			return nil, apperrors.NewValidationError("override transitions require a note", nil)
		}
	}

	now := s.now()
	if last := issue.StatusHistory[len(issue.StatusHistory)-1].Timestamp; now.Before(last) {
		now = last
	}

	oldStatus := issue.Status
	issue.Status = newStatus
	issue.UpdatedAt = now
	issue.StatusHistory = append(issue.StatusHistory, domain.StatusEntry{
		Status:    newStatus,
		Timestamp: now,
		UpdatedBy: actor.Name,
		Notes:     notes,
	})

	if err := s.issues.Update(ctx, issue); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventIssueStatusChanged,
		IssueID:  issue.ID,
		ReportID: issue.ReportID,
		Actor:    actor,
		Payload: events.IssueStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Override:  override,
			Notes:     notes,
		},
	})
	return issue, nil
}

// BulkResult reports the outcome for one issue of a bulk operation.
type BulkResult struct {
	ID    string        `json:"id"`
	Issue *domain.Issue `json:"issue,omitempty"`
	Err   error         `json:"-"`
}

// BulkTransition applies the same transition to each issue independently.
// Failures never abort the batch; each issue passes or fails on its own.
func (s *IssueService) BulkTransition(ctx context.Context, ids []string, newStatus domain.IssueStatus, actor events.Actor, notes string, override bool) []BulkResult {
	results := make([]BulkResult, 0, len(ids))
	for _, id := range ids {
		issue, err := s.Transition(ctx, id, newStatus, actor, notes, override)
		results = append(results, BulkResult{ID: id, Issue: issue, Err: err})
	}
	return results
}

// Assign manually routes an issue to a department and optionally a staff
// member, clearing any pending approval. This is the operator path for
// issues the routing engine could not place.
func (s *IssueService) Assign(ctx context.Context, id, deptCode, assignee string, actor events.Actor) (*domain.Issue, error) {
	dept, err := s.departments.GetByCode(ctx, deptCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("department", map[string]any{"code": deptCode})
		}
		return nil, apperrors.MapError(err)
	}

	issue, err := s.getIssue(ctx, id)
	if err != nil {
		return nil, err
	}
	if issue.Status.Terminal() {
		return nil, apperrors.NewTerminalState(issue.ReportID)
	}

	issue.AssignedDept = dept.Code
	issue.AssignedTo = assignee
	issue.NeedsApproval = false
	issue.UpdatedAt = s.now()

	if err := s.issues.Update(ctx, issue); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventIssueAssigned,
		IssueID:  issue.ID,
		ReportID: issue.ReportID,
		Actor:    actor,
		Payload: events.IssueAssignedPayload{
			Department: issue.AssignedDept,
			AssignedTo: issue.AssignedTo,
		},
	})
	return issue, nil
}

// IssueView pairs an issue with its SLA state at query time.
type IssueView struct {
	domain.Issue
	SLA sla.Result `json:"sla"`
}

// List filters and sorts the issue collection and annotates each result with
// its live SLA state.
func (s *IssueService) List(ctx context.Context, filters query.Filters, sort query.Sort) ([]IssueView, error) {
	issues, err := s.issues.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	matched := query.Run(issues, filters, sort)

	now := s.now()
	views := make([]IssueView, 0, len(matched))
	for i := range matched {
		views = append(views, IssueView{Issue: matched[i], SLA: s.evaluateSLA(&matched[i], now)})
	}
	return views, nil
}

// Get fetches one issue by internal id or citizen-facing report id.
func (s *IssueService) Get(ctx context.Context, id string) (*IssueView, error) {
	issue, err := s.getIssue(ctx, id)
	if err != nil {
		return nil, err
	}
	return &IssueView{Issue: *issue, SLA: s.evaluateSLA(issue, s.now())}, nil
}

// Escalations returns the escalation rules the issue currently triggers.
func (s *IssueService) Escalations(ctx context.Context, id string) ([]domain.EscalationRule, error) {
	issue, err := s.getIssue(ctx, id)
	if err != nil {
		return nil, err
	}
	rules, err := s.escalationRules.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return routing.CheckEscalations(rules, issue, s.now()), nil
}

// RoutingPreview runs the routing decision for a category+ward pair without
// touching any issue.
func (s *IssueService) RoutingPreview(ctx context.Context, category domain.IssueCategory, ward string) (routing.Decision, error) {
	rules, err := s.routingRules.List(ctx)
	if err != nil {
		return routing.Decision{}, apperrors.MapError(err)
	}
	return routing.Decide(rules, category, ward)
}

// PendingAssignment is one entry of the manual approval queue.
type PendingAssignment struct {
	ReportID string               `json:"id"`
	Category domain.IssueCategory `json:"category"`
	Ward     string               `json:"ward"`
	Priority domain.IssuePriority `json:"priority"`
	WaitTime time.Duration        `json:"-"`
}

// ApprovalQueue lists open issues awaiting manual assignment or approval,
// oldest first.
func (s *IssueService) ApprovalQueue(ctx context.Context) ([]PendingAssignment, error) {
	issues, err := s.issues.ListOpen(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	now := s.now()
	var pending []PendingAssignment
	for i := range issues {
		issue := &issues[i]
		if !issue.NeedsApproval && issue.AssignedDept != "" {
			continue
		}
		pending = append(pending, PendingAssignment{
			ReportID: issue.ReportID,
			Category: issue.Category,
			Ward:     issue.Ward,
			Priority: issue.Priority,
			WaitTime: now.Sub(issue.CreatedAt),
		})
	}
	return pending, nil
}

// Approve accepts the suggested routing for a queued issue.
func (s *IssueService) Approve(ctx context.Context, id string, actor events.Actor) (*domain.Issue, error) {
	issue, err := s.getIssue(ctx, id)
	if err != nil {
		return nil, err
	}
	if issue.AssignedDept == "" {
		return nil, apperrors.NewConflict("issue has no suggested department; assign manually",
			map[string]any{"report_id": issue.ReportID})
	}
	return s.Assign(ctx, issue.ID, issue.AssignedDept, issue.AssignedTo, actor)
}

func (s *IssueService) getIssue(ctx context.Context, id string) (*domain.Issue, error) {
	issue, err := s.issues.GetByID(ctx, id)
	if err == nil {
		return issue, nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		issue, err = s.issues.GetByReportID(ctx, id)
		if err == nil {
			return issue, nil
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("issue", map[string]any{"id": id})
		}
	}
	return nil, apperrors.MapError(err)
}

func (s *IssueService) evaluateSLA(issue *domain.Issue, now time.Time) sla.Result {
	result, err := s.evaluator.Evaluate(issue, now)
	if err != nil {
		// Degrade to normal, never silently breached.
		s.logger.Warn("unparseable sla target",
			zap.String("report_id", issue.ReportID),
			zap.Error(err))
	}
	return result
}

func (s *IssueService) autoAssignStaff(ctx context.Context, deptCode, seed string) string {
	staffList, err := s.staff.ListActiveByDepartment(ctx, deptCode)
	if err != nil || len(staffList) == 0 {
		return ""
	}
	return staffList[selectIndex(seed, len(staffList))].Name
}

// selectIndex deterministically spreads assignments across staff.
func selectIndex(key string, length int) int {
	if length == 0 {
		return 0
	}
	sum := 0
	for _, ch := range key {
		sum += int(ch)
	}
	return sum % length
}

func (s *IssueService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
