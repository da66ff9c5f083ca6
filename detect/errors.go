package detect

import (
	"fmt"
	"strings"

	"github.com/logly/logly/model"
	"github.com/logly/logly/store"
)

func isErrorLevel(level string) bool {
	l := strings.ToUpper(level)
	return l == "ERROR" || l == "CRITICAL" || l == "FATAL"
}

// errorBucket accumulates error events for one (hour, source) pair.
type errorBucket struct {
	hourTS int64
	source string
	count  int
	first  int64
	last   int64
}

// ErrorSpike buckets error-level log events by (hour, source); for each
// source it compares the most recent hour's bucket against the mean of
// every earlier bucket and reports a spike when the ratio clears
// th.ErrorSpikeMultiplier, grounded on find_error_spikes.
func ErrorSpike(st *store.Store, since, until int64, th Thresholds) ([]model.Issue, error) {
	events, err := st.GetLogEvents(since, until, "")
	if err != nil {
		return nil, fmt.Errorf("error spike: load events: %w", err)
	}

	type key struct {
		hour   int64
		source string
	}
	buckets := make(map[key]*errorBucket)
	totalBySource := make(map[string]int)
	var sources []string
	seenSource := make(map[string]bool)

	for _, e := range events {
		if !isErrorLevel(e.Level) {
			continue
		}
		hour := e.Timestamp - e.Timestamp%3600
		k := key{hour, e.Source}
		b, ok := buckets[k]
		if !ok {
			b = &errorBucket{hourTS: hour, source: e.Source, first: e.Timestamp, last: e.Timestamp}
			buckets[k] = b
		}
		b.count++
		if e.Timestamp < b.first {
			b.first = e.Timestamp
		}
		if e.Timestamp > b.last {
			b.last = e.Timestamp
		}
		totalBySource[e.Source]++
		if !seenSource[e.Source] {
			seenSource[e.Source] = true
			sources = append(sources, e.Source)
		}
	}

	var out []model.Issue
	for _, source := range sources {
		if totalBySource[source] < th.MinErrorSpikeEvents {
			continue
		}
		var latestHour int64 = -1
		for k := range buckets {
			if k.source == source && k.hour > latestHour {
				latestHour = k.hour
			}
		}
		latest := buckets[key{latestHour, source}]

		var sum float64
		var n int
		for k, b := range buckets {
			if k.source != source || k.hour == latestHour {
				continue
			}
			sum += float64(b.count)
			n++
		}
		if n == 0 {
			continue
		}
		baseline := sum / float64(n)
		if baseline <= 0 {
			continue
		}
		spikeFactor := float64(latest.count) / baseline
		if spikeFactor < th.ErrorSpikeMultiplier {
			continue
		}

		severity := int(50 + 10*spikeFactor)
		if severity > 100 {
			severity = 100
		}
		out = append(out, model.Issue{
			Type:              "error_spike",
			Severity:          severity,
			Title:             fmt.Sprintf("Error spike in %s", source),
			Description:       fmt.Sprintf("%s errors jumped to %d in the latest hour vs a baseline of %.1f (%.1fx)", source, latest.count, baseline, spikeFactor),
			FirstSeen:         latest.first,
			LastSeen:          latest.last,
			OccurrenceCount:   latest.count,
			AffectedResources: []string{source},
			Details: map[string]any{
				"source":       source,
				"spike_factor": spikeFactor,
				"baseline":     baseline,
				"latest":       latest.count,
			},
		})
	}
	return out, nil
}

// RecurringError groups error events by a "source:action" pattern
// signature and reports patterns recurring at least
// th.MinRecurringOccurrences times, grounded on find_recurring_errors.
func RecurringError(st *store.Store, since, until int64, th Thresholds) ([]model.Issue, error) {
	events, err := st.GetLogEvents(since, until, "")
	if err != nil {
		return nil, fmt.Errorf("recurring error: load events: %w", err)
	}

	type group struct {
		count int
		first int64
		last  int64
	}
	groups := make(map[string]*group)
	var order []string
	for _, e := range events {
		if !isErrorLevel(e.Level) {
			continue
		}
		action := e.Action
		if action == "" {
			action = "unknown"
		}
		sig := e.Source + ":" + action
		g, ok := groups[sig]
		if !ok {
			g = &group{first: e.Timestamp, last: e.Timestamp}
			groups[sig] = g
			order = append(order, sig)
		}
		g.count++
		if e.Timestamp < g.first {
			g.first = e.Timestamp
		}
		if e.Timestamp > g.last {
			g.last = e.Timestamp
		}
	}

	var out []model.Issue
	for _, sig := range order {
		g := groups[sig]
		if g.count < th.MinRecurringOccurrences {
			continue
		}
		severity := 50 + 5*(g.count/th.MinRecurringOccurrences)
		if severity > 100 {
			severity = 100
		}
		out = append(out, model.Issue{
			Type:            "recurring_error",
			Severity:        severity,
			Title:           fmt.Sprintf("Recurring error pattern: %s", sig),
			Description:     fmt.Sprintf("%q recurred %d times", sig, g.count),
			FirstSeen:       g.first,
			LastSeen:        g.last,
			OccurrenceCount: g.count,
			Details:         map[string]any{"pattern": sig},
		})
	}
	return out, nil
}

// CriticalErrors reports every EventTrace whose SeverityScore is 80 or
// more, grounded on find_critical_errors.
func CriticalErrors(st *store.Store, since, until int64) ([]model.Issue, error) {
	traces, err := st.GetTraces("", 80, 0)
	if err != nil {
		return nil, fmt.Errorf("critical errors: %w", err)
	}
	var out []model.Issue
	for _, t := range traces {
		if t.Timestamp < since || t.Timestamp >= until {
			continue
		}
		out = append(out, model.Issue{
			Type:            "critical_error",
			Severity:        t.SeverityScore,
			Title:           fmt.Sprintf("Critical error from %s", t.Source),
			Description:     t.RootCause,
			FirstSeen:       t.Timestamp,
			LastSeen:        t.Timestamp,
			OccurrenceCount: 1,
			Details:         map[string]any{"source": t.Source, "severity_score": t.SeverityScore},
		})
	}
	return out, nil
}
