package detect

import (
	"fmt"

	"github.com/logly/logly/model"
	"github.com/logly/logly/store"
)

// sample is one (timestamp, value) point pulled out of a metric field,
// used by the run-finder so SustainedCPU/SustainedMemory share one
// implementation instead of duplicating the scan.
type sample struct {
	ts  int64
	val float64
}

// findRuns returns every maximal contiguous run of points with
// val >= threshold, grounded on the run-finding shape of
// find_sustained_high_usage's scan over the ordered metric stream.
func findRuns(points []sample, threshold float64) [][]sample {
	var runs [][]sample
	var cur []sample
	for _, p := range points {
		if p.val >= threshold {
			cur = append(cur, p)
			continue
		}
		if len(cur) > 0 {
			runs = append(runs, cur)
			cur = nil
		}
	}
	if len(cur) > 0 {
		runs = append(runs, cur)
	}
	return runs
}

func sustainedIssue(metric string, run []sample, threshold float64) model.Issue {
	first, last := run[0].ts, run[len(run)-1].ts
	peak := run[0].val
	for _, p := range run {
		if p.val > peak {
			peak = p.val
		}
	}
	severity := int(60 + (peak - threshold))
	if severity > 100 {
		severity = 100
	}
	if severity < 0 {
		severity = 0
	}
	return model.Issue{
		Type:            "sustained_high_" + metric,
		Severity:        severity,
		Title:           fmt.Sprintf("Sustained high %s usage", metric),
		Description:     fmt.Sprintf("%s stayed at or above %.1f%% for %d samples (%ds)", metric, threshold, len(run), last-first),
		FirstSeen:       first,
		LastSeen:        last,
		OccurrenceCount: len(run),
		Recommendations: []string{fmt.Sprintf("investigate processes driving %s usage", metric)},
		Details: map[string]any{
			"peak":               peak,
			"sustained_duration": last - first,
			"threshold":          threshold,
		},
	}
}

// SustainedCPU detects runs of CPUPercent >= th.HighCPUPercent lasting
// at least 3 samples and th.SustainedDurationMin seconds.
func SustainedCPU(st *store.Store, since, until int64, th Thresholds) ([]model.Issue, error) {
	metrics, err := st.GetSystemMetrics(since, until)
	if err != nil {
		return nil, fmt.Errorf("sustained cpu: %w", err)
	}
	var points []sample
	for _, m := range metrics {
		if m.CPUPercent != nil {
			points = append(points, sample{ts: m.Timestamp, val: *m.CPUPercent})
		}
	}
	return runsToIssues("cpu", points, th.HighCPUPercent, th.SustainedDurationMin), nil
}

// SustainedMemory detects runs of MemoryPercent >= th.HighMemoryPercent.
func SustainedMemory(st *store.Store, since, until int64, th Thresholds) ([]model.Issue, error) {
	metrics, err := st.GetSystemMetrics(since, until)
	if err != nil {
		return nil, fmt.Errorf("sustained memory: %w", err)
	}
	var points []sample
	for _, m := range metrics {
		if m.MemoryPercent != nil {
			points = append(points, sample{ts: m.Timestamp, val: *m.MemoryPercent})
		}
	}
	return runsToIssues("memory", points, th.HighMemoryPercent, th.SustainedDurationMin), nil
}

func runsToIssues(metric string, points []sample, threshold float64, minDuration int64) []model.Issue {
	var out []model.Issue
	for _, run := range findRuns(points, threshold) {
		if len(run) < 3 {
			continue
		}
		duration := run[len(run)-1].ts - run[0].ts
		if duration < minDuration {
			continue
		}
		out = append(out, sustainedIssue(metric, run, threshold))
	}
	return out
}

// DiskSpace inspects only the most recent SystemMetric row (point-in-time
// per spec.md §9 Open Question 5, kept rather than switched to a
// sustained window so the seed tests stay valid).
func DiskSpace(st *store.Store, th Thresholds) ([]model.Issue, error) {
	metrics, err := st.GetSystemMetrics(0, 1<<62)
	if err != nil {
		return nil, fmt.Errorf("disk space: %w", err)
	}
	if len(metrics) == 0 {
		return nil, nil
	}
	latest := metrics[len(metrics)-1]
	if latest.DiskPercent == nil || *latest.DiskPercent < th.DiskSpaceCritical {
		return nil, nil
	}
	severity := int(70 + 3*(*latest.DiskPercent-th.DiskSpaceCritical))
	if severity > 100 {
		severity = 100
	}
	return []model.Issue{{
		Type:            "disk_space",
		Severity:        severity,
		Title:           "Disk space critical",
		Description:     fmt.Sprintf("disk usage at %.1f%%, threshold %.1f%%", *latest.DiskPercent, th.DiskSpaceCritical),
		FirstSeen:       latest.Timestamp,
		LastSeen:        latest.Timestamp,
		OccurrenceCount: 1,
		Recommendations: []string{"free disk space", "expand the volume", "check for runaway log growth"},
		Details:         map[string]any{"disk_percent": *latest.DiskPercent},
	}}, nil
}
