package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civic-kit/issue-service/internal/domain"
	"github.com/civic-kit/issue-service/internal/events"
	"github.com/civic-kit/issue-service/internal/query"
	"github.com/civic-kit/issue-service/internal/sla"
	"github.com/civic-kit/issue-service/internal/store"
	apperrors "github.com/civic-kit/issue-service/pkg/util"
)

var testClock = time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC)

func newTestMemory() *store.Memory {
	mem := store.NewMemory()
	mem.LoadReference(
		[]domain.Department{
			{ID: "PWD001", Name: "Public Works Department", Code: "PWD"},
			{ID: "PHE001", Name: "Public Health Engineering", Code: "PHE"},
			{ID: "UDD001", Name: "Urban Development Department", Code: "UDD"},
		},
		[]domain.Ward{
			{ID: "RAN001", Name: "Hinoo", Zone: "Central Ranchi"},
			{ID: "RAN002", Name: "Lalpur", Zone: "North Ranchi"},
		},
		[]domain.RoutingRule{
			{ID: "RT001", Category: domain.CategoryRoadRepair, Ward: domain.AllWards, Department: "PWD", Priority: domain.PriorityHigh, AutoAssign: true},
			{ID: "RT004", Category: domain.CategoryWasteManagement, Ward: "Central Areas", Department: "UDD", Priority: domain.PriorityMedium, AutoAssign: false},
		},
		[]domain.EscalationRule{
			{ID: "ESC001", Level: 1, Condition: "No acknowledgment in 2 hours",
				Statuses:  []domain.IssueStatus{domain.StatusNew},
				Threshold: 2 * time.Hour, Basis: domain.BasisCreated,
				Action: "Notify Department Head", Active: true},
		},
		[]domain.CategoryPolicy{
			{Category: domain.CategoryRoadRepair, SLATarget: domain.SLATarget{Amount: 24, Unit: domain.SLAUnitHours}, DefaultDept: "PWD"},
			{Category: domain.CategoryElectricity, SLATarget: domain.SLATarget{Amount: 4, Unit: domain.SLAUnitHours}, DefaultDept: "ELE"},
		},
		[]domain.Staff{
			{ID: "STF005", Name: "Farhan Ansari", Email: "farhan@example.gov", Role: domain.RoleFieldStaff, Department: "PWD", Active: true},
		},
	)
	return mem
}

func newTestService(mem *store.Memory) *IssueService {
	return NewIssueService(IssueDependencies{
		IssueRepo:          mem.Issues(),
		DepartmentRepo:     mem.Departments(),
		StaffRepo:          mem.Staff(),
		RoutingRuleRepo:    mem.RoutingRules(),
		EscalationRuleRepo: mem.EscalationRules(),
		PolicyRepo:         mem.Policies(),
		Evaluator:          sla.NewEvaluator(2),
		Dispatcher:         events.NewInMemoryDispatcher(),
		Now:                func() time.Time { return testClock },
	})
}

func testActor() events.Actor {
	return events.Actor{StaffID: "STF002", Name: "Rakesh Jha"}
}

func TestCreateIssueRoutedAndStamped(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newTestMemory())

	outcome, err := svc.CreateIssue(ctx, IntakeInput{
		Title:    "Pothole on main road",
		Category: domain.CategoryRoadRepair,
		Ward:     "Hinoo",
		Reporter: domain.Reporter{Name: "Suresh Mahto", Contact: "+91 98765 43210"},
	})
	require.NoError(t, err)
	require.NoError(t, outcome.RoutingError)

	issue := outcome.Issue
	assert.Equal(t, "JH202510000", issue.ReportID)
	assert.Equal(t, domain.StatusNew, issue.Status)
	assert.Equal(t, "PWD", issue.AssignedDept)
	assert.Equal(t, domain.PriorityHigh, issue.Priority)
	assert.False(t, issue.NeedsApproval)
	// Auto-assign picked from the department's active staff.
	assert.Equal(t, "Farhan Ansari", issue.AssignedTo)
	assert.Equal(t, domain.SLATarget{Amount: 24, Unit: domain.SLAUnitHours}, issue.SLATarget)

	require.Len(t, issue.StatusHistory, 1)
	entry := issue.StatusHistory[0]
	assert.Equal(t, domain.StatusNew, entry.Status)
	assert.Equal(t, testClock, entry.Timestamp)
	assert.Equal(t, "System", entry.UpdatedBy)
}

func TestCreateIssueDefaultTargetWhenNoPolicy(t *testing.T) {
	ctx := context.Background()
	mem := newTestMemory()
	svc := newTestService(mem)

	outcome, err := svc.CreateIssue(ctx, IntakeInput{
		Title:    "Garbage not collected",
		Category: domain.CategoryWasteManagement,
		Ward:     "Central Areas",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SLATarget{Amount: 24, Unit: domain.SLAUnitHours}, outcome.Issue.SLATarget)
	// Manual rule: routed but pending approval.
	assert.Equal(t, "UDD", outcome.Issue.AssignedDept)
	assert.True(t, outcome.Issue.NeedsApproval)
	assert.Empty(t, outcome.Issue.AssignedTo)
}

func TestCreateIssueUnroutedStillPersisted(t *testing.T) {
	ctx := context.Background()
	mem := newTestMemory()
	svc := newTestService(mem)

	outcome, err := svc.CreateIssue(ctx, IntakeInput{
		Title:    "Blocked drain flooding street",
		Category: domain.CategoryDrainage,
		Ward:     "Lalpur",
	})
	require.NoError(t, err)
	require.Error(t, outcome.RoutingError)
	assert.True(t, apperrors.HasCode(outcome.RoutingError, apperrors.CodeNoRoutingRule))

	issue := outcome.Issue
	assert.Empty(t, issue.AssignedDept)
	assert.True(t, issue.NeedsApproval)

	stored, err := mem.GetByReportID(ctx, issue.ReportID)
	require.NoError(t, err)
	assert.Equal(t, issue.ID, stored.ID)
}

func TestTransitionForwardChain(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newTestMemory())

	outcome, err := svc.CreateIssue(ctx, IntakeInput{
		Title: "Pothole", Category: domain.CategoryRoadRepair, Ward: "Hinoo",
	})
	require.NoError(t, err)
	id := outcome.Issue.ID

	for _, next := range []domain.IssueStatus{
		domain.StatusAcknowledged, domain.StatusInProgress, domain.StatusResolved, domain.StatusClosed,
	} {
		issue, err := svc.Transition(ctx, id, next, testActor(), "", false)
		require.NoError(t, err)
		assert.Equal(t, next, issue.Status)
	}

	final, err := svc.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, final.StatusHistory, 5)
	for i := 1; i < len(final.StatusHistory); i++ {
		assert.False(t, final.StatusHistory[i].Timestamp.Before(final.StatusHistory[i-1].Timestamp))
	}
}

func TestTransitionRejectsSkipWithoutOverride(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newTestMemory())

	outcome, err := svc.CreateIssue(ctx, IntakeInput{
		Title: "Pothole", Category: domain.CategoryRoadRepair, Ward: "Hinoo",
	})
	require.NoError(t, err)

	_, err = svc.Transition(ctx, outcome.Issue.ID, domain.StatusResolved, testActor(), "", false)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeIllegalTransition))

	// The issue is untouched.
	stored, err := svc.Get(ctx, outcome.Issue.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNew, stored.Status)
	assert.Len(t, stored.StatusHistory, 1)
}

func TestTransitionOverride(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newTestMemory())

	outcome, err := svc.CreateIssue(ctx, IntakeInput{
		Title: "Pothole", Category: domain.CategoryRoadRepair, Ward: "Hinoo",
	})
	require.NoError(t, err)
	id := outcome.Issue.ID

	// Override without a note is rejected.
	_, err = svc.Transition(ctx, id, domain.StatusResolved, testActor(), "  ", true)
	require.Error(t, err)

	// Override with a note skips ahead.
	issue, err := svc.Transition(ctx, id, domain.StatusResolved, testActor(), "duplicate of JH202510003", true)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResolved, issue.Status)
	assert.Equal(t, "duplicate of JH202510003", issue.StatusHistory[len(issue.StatusHistory)-1].Notes)

	// Override never goes backwards.
	_, err = svc.Transition(ctx, id, domain.StatusNew, testActor(), "reopening", true)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeIllegalTransition))
}

func TestTransitionTerminalState(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newTestMemory())

	outcome, err := svc.CreateIssue(ctx, IntakeInput{
		Title: "Pothole", Category: domain.CategoryRoadRepair, Ward: "Hinoo",
	})
	require.NoError(t, err)
	id := outcome.Issue.ID

	_, err = svc.Transition(ctx, id, domain.StatusClosed, testActor(), "resolved offline", true)
	require.NoError(t, err)

	// Closed is terminal even for override.
	_, err = svc.Transition(ctx, id, domain.StatusResolved, testActor(), "note", true)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeTerminalState))
}

func TestTransitionUnknownStatusAndMissingIssue(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newTestMemory())

	_, err := svc.Transition(ctx, "whatever", domain.IssueStatus("Pending"), testActor(), "", false)
	require.Error(t, err)

	_, err = svc.Transition(ctx, "missing-id", domain.StatusAcknowledged, testActor(), "", false)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, "NOT_FOUND"))
}

func TestBulkTransitionPartialFailure(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newTestMemory())

	first, err := svc.CreateIssue(ctx, IntakeInput{
		Title: "Pothole A", Category: domain.CategoryRoadRepair, Ward: "Hinoo",
	})
	require.NoError(t, err)
	second, err := svc.CreateIssue(ctx, IntakeInput{
		Title: "Pothole B", Category: domain.CategoryRoadRepair, Ward: "Hinoo",
	})
	require.NoError(t, err)

	// Push the second issue past Acknowledged so the bulk move fails for it.
	_, err = svc.Transition(ctx, second.Issue.ID, domain.StatusAcknowledged, testActor(), "", false)
	require.NoError(t, err)

	results := svc.BulkTransition(ctx,
		[]string{first.Issue.ID, second.Issue.ID, "missing-id"},
		domain.StatusAcknowledged, testActor(), "", false)
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.Equal(t, domain.StatusAcknowledged, results[0].Issue.Status)

	assert.True(t, apperrors.HasCode(results[1].Err, apperrors.CodeIllegalTransition))
	assert.True(t, apperrors.HasCode(results[2].Err, "NOT_FOUND"))

	// The failure of one never rolls back another.
	stored, err := svc.Get(ctx, first.Issue.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAcknowledged, stored.Status)
}

func TestAssign(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newTestMemory())

	outcome, err := svc.CreateIssue(ctx, IntakeInput{
		Title: "Blocked drain", Category: domain.CategoryDrainage, Ward: "Lalpur",
	})
	require.NoError(t, err)
	require.True(t, outcome.Issue.NeedsApproval)

	issue, err := svc.Assign(ctx, outcome.Issue.ID, "PHE", "Seema Kisku", testActor())
	require.NoError(t, err)
	assert.Equal(t, "PHE", issue.AssignedDept)
	assert.Equal(t, "Seema Kisku", issue.AssignedTo)
	assert.False(t, issue.NeedsApproval)

	_, err = svc.Assign(ctx, outcome.Issue.ID, "XYZ", "", testActor())
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, "NOT_FOUND"))
}

func TestApprovalQueueAndApprove(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newTestMemory())

	routed, err := svc.CreateIssue(ctx, IntakeInput{
		Title: "Pothole", Category: domain.CategoryRoadRepair, Ward: "Hinoo",
	})
	require.NoError(t, err)
	manual, err := svc.CreateIssue(ctx, IntakeInput{
		Title: "Garbage heap", Category: domain.CategoryWasteManagement, Ward: "Central Areas",
	})
	require.NoError(t, err)
	unrouted, err := svc.CreateIssue(ctx, IntakeInput{
		Title: "Blocked drain", Category: domain.CategoryDrainage, Ward: "Lalpur",
	})
	require.NoError(t, err)

	pending, err := svc.ApprovalQueue(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	ids := []string{pending[0].ReportID, pending[1].ReportID}
	assert.Contains(t, ids, manual.Issue.ReportID)
	assert.Contains(t, ids, unrouted.Issue.ReportID)
	assert.NotContains(t, ids, routed.Issue.ReportID)

	// Approving a suggested routing clears the queue entry.
	approved, err := svc.Approve(ctx, manual.Issue.ID, testActor())
	require.NoError(t, err)
	assert.Equal(t, "UDD", approved.AssignedDept)
	assert.False(t, approved.NeedsApproval)

	// Without a suggested department approval must be explicit.
	_, err = svc.Approve(ctx, unrouted.Issue.ID, testActor())
	require.Error(t, err)
}

func TestListAnnotatesSLA(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newTestMemory())

	_, err := svc.CreateIssue(ctx, IntakeInput{
		Title: "Pothole", Category: domain.CategoryRoadRepair, Ward: "Hinoo",
	})
	require.NoError(t, err)

	views, err := svc.List(ctx, query.Filters{}, query.Sort{Key: query.SortByCreatedAt, Order: query.Descending})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, sla.StatusNormal, views[0].SLA.Status)
	assert.Equal(t, testClock.Add(24*time.Hour), views[0].SLA.Deadline)
}

func TestGetByReportID(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newTestMemory())

	outcome, err := svc.CreateIssue(ctx, IntakeInput{
		Title: "Pothole", Category: domain.CategoryRoadRepair, Ward: "Hinoo",
	})
	require.NoError(t, err)

	view, err := svc.Get(ctx, outcome.Issue.ReportID)
	require.NoError(t, err)
	assert.Equal(t, outcome.Issue.ID, view.ID)
}

func TestEscalationsForIssue(t *testing.T) {
	ctx := context.Background()
	mem := newTestMemory()
	svc := newTestService(mem)

	outcome, err := svc.CreateIssue(ctx, IntakeInput{
		Title: "Pothole", Category: domain.CategoryRoadRepair, Ward: "Hinoo",
	})
	require.NoError(t, err)

	// Fresh issue triggers nothing.
	rules, err := svc.Escalations(ctx, outcome.Issue.ID)
	require.NoError(t, err)
	assert.Empty(t, rules)

	// Age the issue past the two hour threshold.
	aged, err := mem.GetByID(ctx, outcome.Issue.ID)
	require.NoError(t, err)
	aged.CreatedAt = testClock.Add(-3 * time.Hour)
	require.NoError(t, mem.Update(ctx, aged))

	rules, err = svc.Escalations(ctx, outcome.Issue.ID)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, 1, rules[0].Level)
}

func TestRoutingPreview(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newTestMemory())

	decision, err := svc.RoutingPreview(ctx, domain.CategoryRoadRepair, "Hinoo")
	require.NoError(t, err)
	assert.Equal(t, "PWD", decision.Department)

	_, err = svc.RoutingPreview(ctx, domain.CategoryDrainage, "Hinoo")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNoRoutingRule))
}
