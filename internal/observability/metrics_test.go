package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsTotals(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/issues", "GET", 200, 5*time.Millisecond)
	m.RecordRequest("/issues", "GET", 200, 7*time.Millisecond)
	m.RecordRequest("/issues", "POST", 201, 9*time.Millisecond)
	m.RecordError("/issues/abc/status", "PATCH", "ILLEGAL_TRANSITION")

	snap := m.Totals()
	assert.Equal(t, int64(3), snap.Requests)
	assert.Equal(t, int64(1), snap.Errors)
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, 0)
	m.RecordError("/", "GET", "INTERNAL_ERROR")
	assert.Equal(t, Snapshot{}, m.Totals())
}
