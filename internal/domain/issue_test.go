package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    IssueStatus
		to      IssueStatus
		allowed bool
	}{
		{"new to acknowledged", StatusNew, StatusAcknowledged, true},
		{"acknowledged to in progress", StatusAcknowledged, StatusInProgress, true},
		{"in progress to resolved", StatusInProgress, StatusResolved, true},
		{"resolved to closed", StatusResolved, StatusClosed, true},
		{"skip new to in progress", StatusNew, StatusInProgress, false},
		{"skip new to closed", StatusNew, StatusClosed, false},
		{"backwards resolved to new", StatusResolved, StatusNew, false},
		{"backwards acknowledged to new", StatusAcknowledged, StatusNew, false},
		{"out of closed", StatusClosed, StatusNew, false},
		{"same status", StatusInProgress, StatusInProgress, false},
		{"unknown source", IssueStatus("Pending"), StatusNew, false},
		{"unknown target", StatusNew, IssueStatus("Pending"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}

func TestStatusProperties(t *testing.T) {
	assert.True(t, StatusClosed.Terminal())
	assert.False(t, StatusResolved.Terminal())

	assert.True(t, StatusNew.Open())
	assert.True(t, StatusAcknowledged.Open())
	assert.True(t, StatusInProgress.Open())
	assert.False(t, StatusResolved.Open())
	assert.False(t, StatusClosed.Open())

	assert.False(t, IssueStatus("Pending").Valid())
	assert.Equal(t, -1, IssueStatus("Pending").Order())
}

func TestPriorityRank(t *testing.T) {
	assert.Greater(t, PriorityCritical.Rank(), PriorityHigh.Rank())
	assert.Greater(t, PriorityHigh.Rank(), PriorityMedium.Rank())
	assert.Greater(t, PriorityMedium.Rank(), PriorityLow.Rank())
	assert.Equal(t, 0, IssuePriority("Urgent").Rank())
}

func TestFormatReportID(t *testing.T) {
	assert.Equal(t, "JH202510000", FormatReportID(2025, 10000))
	assert.Equal(t, "JH202600042", FormatReportID(2026, 42))
}

func TestIssueClone(t *testing.T) {
	original := &Issue{
		ID:       "abc",
		ReportID: "JH202510000",
		Images:   []string{"a.jpg"},
		StatusHistory: []StatusEntry{
			{Status: StatusNew, Timestamp: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		},
	}

	dup := original.Clone()
	dup.StatusHistory[0].Status = StatusClosed
	dup.StatusHistory = append(dup.StatusHistory, StatusEntry{Status: StatusAcknowledged})
	dup.Images[0] = "b.jpg"

	assert.Equal(t, StatusNew, original.StatusHistory[0].Status)
	assert.Len(t, original.StatusHistory, 1)
	assert.Equal(t, "a.jpg", original.Images[0])
}

func TestStatusSince(t *testing.T) {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	acked := created.Add(time.Hour)

	issue := &Issue{
		Status:    StatusAcknowledged,
		CreatedAt: created,
		StatusHistory: []StatusEntry{
			{Status: StatusNew, Timestamp: created},
			{Status: StatusAcknowledged, Timestamp: acked},
		},
	}
	assert.Equal(t, acked, issue.StatusSince())

	bare := &Issue{Status: StatusNew, CreatedAt: created}
	assert.Equal(t, created, bare.StatusSince())
}
