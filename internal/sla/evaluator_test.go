package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civic-kit/issue-service/internal/domain"
	apperrors "github.com/civic-kit/issue-service/pkg/util"
)

func issueWith(status domain.IssueStatus, target domain.SLATarget) *domain.Issue {
	return &domain.Issue{
		ReportID:  "JH202510000",
		Status:    status,
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		SLATarget: target,
	}
}

func TestEvaluate(t *testing.T) {
	eightHours := domain.SLATarget{Amount: 8, Unit: domain.SLAUnitHours}
	evaluator := NewEvaluator(2)

	tests := []struct {
		name          string
		issue         *domain.Issue
		now           time.Time
		wantStatus    Status
		wantHoursLeft int
	}{
		{
			name:       "past deadline breaches",
			issue:      issueWith(domain.StatusNew, eightHours),
			now:        time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
			wantStatus: StatusBreached,
		},
		{
			name:          "inside warning window",
			issue:         issueWith(domain.StatusInProgress, eightHours),
			now:           time.Date(2025, 1, 1, 6, 30, 0, 0, time.UTC),
			wantStatus:    StatusWarning,
			wantHoursLeft: 1,
		},
		{
			name:          "well within target",
			issue:         issueWith(domain.StatusNew, eightHours),
			now:           time.Date(2025, 1, 1, 1, 0, 0, 0, time.UTC),
			wantStatus:    StatusNormal,
			wantHoursLeft: 7,
		},
		{
			name:          "exactly at warning boundary",
			issue:         issueWith(domain.StatusNew, eightHours),
			now:           time.Date(2025, 1, 1, 6, 0, 0, 0, time.UTC),
			wantStatus:    StatusWarning,
			wantHoursLeft: 2,
		},
		{
			name:       "resolved counts as met",
			issue:      issueWith(domain.StatusResolved, eightHours),
			now:        time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
			wantStatus: StatusMet,
		},
		{
			name:       "closed counts as met even past deadline",
			issue:      issueWith(domain.StatusClosed, eightHours),
			now:        time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
			wantStatus: StatusMet,
		},
		{
			name:          "day unit target",
			issue:         issueWith(domain.StatusNew, domain.SLATarget{Amount: 2, Unit: domain.SLAUnitDays}),
			now:           time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
			wantStatus:    StatusNormal,
			wantHoursLeft: 24,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := evaluator.Evaluate(tt.issue, tt.now)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, result.Status)
			assert.Equal(t, tt.wantHoursLeft, result.HoursRemaining)
		})
	}
}

func TestEvaluateDeadline(t *testing.T) {
	issue := issueWith(domain.StatusNew, domain.SLATarget{Amount: 8, Unit: domain.SLAUnitHours})
	result, err := NewEvaluator(2).Evaluate(issue, issue.CreatedAt)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC), result.Deadline)
}

func TestEvaluateUnparseableTarget(t *testing.T) {
	issue := issueWith(domain.StatusNew, domain.SLATarget{})
	result, err := NewEvaluator(2).Evaluate(issue, time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC))

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidSLAFormat))
	// Degrades to normal, never breached.
	assert.Equal(t, StatusNormal, result.Status)
}

func TestEvaluateIsPure(t *testing.T) {
	issue := issueWith(domain.StatusNew, domain.SLATarget{Amount: 8, Unit: domain.SLAUnitHours})
	now := time.Date(2025, 1, 1, 3, 0, 0, 0, time.UTC)
	evaluator := NewEvaluator(2)

	first, err := evaluator.Evaluate(issue, now)
	require.NoError(t, err)
	second, err := evaluator.Evaluate(issue, now)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, domain.StatusNew, issue.Status)
}

func TestNewEvaluatorDefaultsWarningWindow(t *testing.T) {
	issue := issueWith(domain.StatusNew, domain.SLATarget{Amount: 8, Unit: domain.SLAUnitHours})
	result, err := NewEvaluator(0).Evaluate(issue, time.Date(2025, 1, 1, 6, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, StatusWarning, result.Status)
}
