package seed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/civic-kit/issue-service/internal/auth"
	"github.com/civic-kit/issue-service/internal/domain"
	"github.com/civic-kit/issue-service/internal/routing"
	"github.com/civic-kit/issue-service/internal/service"
	"github.com/civic-kit/issue-service/internal/store"
)

func TestRoutingRulesCoverSeedCategories(t *testing.T) {
	rules := RoutingRules()

	// Every auto-routed category resolves against a seeded ward.
	for _, tc := range []struct {
		category domain.IssueCategory
		ward     string
		dept     string
	}{
		{domain.CategoryRoadRepair, "Hinoo", "PWD"},
		{domain.CategoryWaterSupply, "Sakchi", "PHE"},
		{domain.CategoryElectricity, "Jharia", "ELE"},
		{domain.CategoryStreetLighting, "Bistupur", "ELE"},
	} {
		decision, err := routing.Decide(rules, tc.category, tc.ward)
		require.NoError(t, err, tc.category)
		assert.Equal(t, tc.dept, decision.Department)
	}
}

func TestCategoryPoliciesComplete(t *testing.T) {
	byCategory := make(map[domain.IssueCategory]domain.CategoryPolicy)
	for _, policy := range CategoryPolicies() {
		byCategory[policy.Category] = policy
	}
	for _, category := range domain.Categories() {
		policy, ok := byCategory[category]
		require.True(t, ok, category)
		assert.False(t, policy.SLATarget.IsZero(), category)
		assert.NotEmpty(t, policy.DefaultDept, category)
	}

	assert.Equal(t, 4, byCategory[domain.CategoryElectricity].SLATarget.Amount)
	assert.Equal(t, 8, byCategory[domain.CategoryWaterSupply].SLATarget.Amount)
}

func TestStaffPasswordsVerify(t *testing.T) {
	// Demo accounts must be usable out of the box with "changeme".
	for _, staff := range Staff() {
		assert.NoError(t, auth.ComparePassword(staff.PasswordHash, "changeme"), staff.Email)
	}
}

func TestSeededStaffCanLogin(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	require.NoError(t, LoadMemory(ctx, mem, 0, time.Now(), zap.NewNop()))

	tokens := auth.NewTokenManager("test-secret", 60)
	svc := service.NewAuthService(mem.Staff(), tokens, nil)

	token, _, staff, err := svc.Login(ctx, "anjali.mehta@jharkhand.gov.in", "changeme")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, domain.RoleSuperAdmin, staff.Role)
}

func TestDemoIssueDeterministic(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	a := DemoIssue(7, base)
	b := DemoIssue(7, base)
	assert.Equal(t, a, b)

	// Index spacing: one hour apart, counting back.
	next := DemoIssue(8, base)
	assert.Equal(t, time.Hour, a.CreatedAt.Sub(next.CreatedAt))
}

func TestDemoIssueHistoryMatchesStatus(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		issue := DemoIssue(i, base)
		require.NotEmpty(t, issue.StatusHistory, i)
		assert.Equal(t, domain.StatusNew, issue.StatusHistory[0].Status)
		assert.Equal(t, issue.Status, issue.StatusHistory[len(issue.StatusHistory)-1].Status)
		for j := 1; j < len(issue.StatusHistory); j++ {
			assert.False(t, issue.StatusHistory[j].Timestamp.Before(issue.StatusHistory[j-1].Timestamp))
		}
	}
}

func TestLoadMemory(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, LoadMemory(ctx, mem, 20, base, zap.NewNop()))

	issues, err := mem.List(ctx)
	require.NoError(t, err)
	assert.Len(t, issues, 20)

	departments, err := mem.ListDepartmentsAll(ctx)
	require.NoError(t, err)
	assert.Len(t, departments, 6)

	// Ids allocated after seeding continue past the demo block.
	next, err := mem.NextReportID(ctx, base.Year())
	require.NoError(t, err)
	assert.Equal(t, domain.FormatReportID(base.Year(), 10020), next)
}
