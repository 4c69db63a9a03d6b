package metrics

import "testing"

func TestNilMetricsRecordNothing(t *testing.T) {
	var m *Metrics
	m.IncrementEvaluation("APPLY")
	m.IncrementApplies()
	m.IncrementConflictRetries()
	m.IncrementRowsCreated()
	m.IncrementOverrides()
}
