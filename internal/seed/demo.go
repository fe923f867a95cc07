package seed

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/civic-kit/issue-service/internal/domain"
	"github.com/civic-kit/issue-service/internal/store"
)

var demoTitles = map[domain.IssueCategory][]string{
	domain.CategoryRoadRepair:      {"Pothole on main road", "Broken speed breaker", "Road surface cracked after rains"},
	domain.CategoryWaterSupply:     {"No water supply since morning", "Contaminated water from tap", "Pipeline leakage on street"},
	domain.CategoryElectricity:     {"Power outage in locality", "Transformer sparking", "Frequent voltage fluctuation"},
	domain.CategoryWasteManagement: {"Garbage not collected for days", "Overflowing dustbin near market", "Open dumping near school"},
	domain.CategoryStreetLighting:  {"Street light not working", "Flickering lamp post", "Dark stretch near bus stop"},
	domain.CategoryDrainage:        {"Blocked drain flooding street", "Open manhole cover", "Sewage overflow near homes"},
	domain.CategoryParkMaintenance: {"Broken swings in park", "Overgrown grass in playground", "Damaged park fencing"},
	domain.CategoryTrafficIssues:   {"Signal not working at junction", "Illegal parking blocking lane", "Missing road signage"},
}

var demoStatuses = []domain.IssueStatus{
	domain.StatusNew,
	domain.StatusAcknowledged,
	domain.StatusInProgress,
	domain.StatusResolved,
	domain.StatusClosed,
}

var demoPriorities = []domain.IssuePriority{
	domain.PriorityLow,
	domain.PriorityMedium,
	domain.PriorityHigh,
	domain.PriorityCritical,
}

var demoReporters = []domain.Reporter{
	{Name: "Suresh Mahto", Contact: "+91 98765 43210"},
	{Name: "Anonymous", Anonymous: true},
	{Name: "Meena Kumari", Contact: "+91 91234 56780"},
	{Name: "Abdul Rashid", Contact: "+91 99887 76655"},
}

// DemoIssue deterministically builds the issue at the given index. Issues are
// spaced one hour apart counting back from base, so a fixed base yields a
// reproducible dataset across restarts.
func DemoIssue(index int, base time.Time) *domain.Issue {
	categories := domain.Categories()
	wards := Wards()
	policies := CategoryPolicies()

	category := categories[index%len(categories)]
	ward := wards[index%len(wards)]
	status := demoStatuses[index%len(demoStatuses)]
	priority := demoPriorities[index%len(demoPriorities)]
	titles := demoTitles[category]
	reporter := demoReporters[index%len(demoReporters)]

	var target domain.SLATarget
	var dept string
	for _, p := range policies {
		if p.Category == category {
			target = p.SLATarget
			dept = p.DefaultDept
			break
		}
	}

	createdAt := base.Add(-time.Duration(index) * time.Hour)
	issue := &domain.Issue{
		ID:          fmt.Sprintf("demo-%04d", index),
		ReportID:    domain.FormatReportID(base.Year(), 10000+index),
		Title:       titles[index%len(titles)],
		Description: fmt.Sprintf("Citizen report filed in %s ward regarding %s.", ward.Name, category),
		Category:    category,
		Priority:    priority,
		Status:      status,
		Ward:        ward.Name,
		Zone:        ward.Zone,
		Location: domain.Location{
			Address: fmt.Sprintf("Street %d, %s, %s", (index%40)+1, ward.Name, ward.Zone),
			Lat:     23.3441 + float64(index%100)*0.001,
			Lng:     85.3096 + float64(index%100)*0.001,
		},
		AssignedDept: dept,
		ReportedBy:   reporter,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
		SLATarget:    target,
	}

	issue.StatusHistory = append(issue.StatusHistory, domain.StatusEntry{
		Status:    domain.StatusNew,
		Timestamp: createdAt,
		UpdatedBy: "System",
		Notes:     "Issue automatically created from citizen report",
	})
	// Walk the lifecycle to the target status, 30 minutes per hop.
	at := createdAt
	for _, s := range demoStatuses[1:] {
		if s.Order() > status.Order() {
			break
		}
		at = at.Add(30 * time.Minute)
		issue.StatusHistory = append(issue.StatusHistory, domain.StatusEntry{
			Status:    s,
			Timestamp: at,
			UpdatedBy: "Department Staff",
		})
		issue.UpdatedAt = at
	}
	return issue
}

// LoadMemory fills a fresh in-memory store with reference data and count
// demo issues.
func LoadMemory(ctx context.Context, mem *store.Memory, count int, base time.Time, logger *zap.Logger) error {
	mem.LoadReference(Departments(), Wards(), RoutingRules(), EscalationRules(), CategoryPolicies(), Staff())

	for i := 0; i < count; i++ {
		issue := DemoIssue(i, base)
		// Draw from the store's sequence so ids allocated after seeding
		// continue where the demo set ends.
		reportID, err := mem.NextReportID(ctx, base.Year())
		if err != nil {
			return fmt.Errorf("seed demo issue %d: %w", i, err)
		}
		issue.ReportID = reportID
		if err := mem.Create(ctx, issue); err != nil {
			return fmt.Errorf("seed demo issue %d: %w", i, err)
		}
	}
	logger.Info("demo data seeded",
		zap.Int("issues", count),
		zap.Int("departments", len(Departments())),
		zap.Int("wards", len(Wards())))
	return nil
}
