// Package detect implements Logly's issue-detection family: stateless
// analyzers that read ranges out of the store and emit typed
// model.Issue records. Every detector here is grounded on the
// corresponding method of logly/query/issue_detector.py
// (find_brute_force_attempts, find_suspicious_ips, find_sustained_high_usage,
// find_disk_space_issues, find_error_spikes, find_recurring_errors,
// find_critical_errors, find_connection_anomalies, find_network_errors) —
// severity formulas, field names, and defaults are carried over unchanged.
package detect

// Thresholds configures every detector's trigger points. Field names and
// defaults match spec.md §4.6's configurable-thresholds table.
type Thresholds struct {
	HighCPUPercent        float64
	HighMemoryPercent     float64
	DiskSpaceCritical     float64
	ErrorSpikeMultiplier  float64
	FailedLoginThreshold  int
	ThreatScoreHigh       int
	NetworkErrorRate      float64
	SustainedDurationMin  int64 // seconds
	MinErrorSpikeEvents   int
	MinRecurringOccurrences int
}

// DefaultThresholds returns the defaults spec.md §4.6 lists in parentheses.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HighCPUPercent:          85,
		HighMemoryPercent:       90,
		DiskSpaceCritical:       90,
		ErrorSpikeMultiplier:    3.0,
		FailedLoginThreshold:    5,
		ThreatScoreHigh:         70,
		NetworkErrorRate:        5.0,
		SustainedDurationMin:    300,
		MinErrorSpikeEvents:     10,
		MinRecurringOccurrences: 5,
	}
}
