package store

import "fmt"

// Stats is a coarse row-count overview of every table, used by the
// status/db-size CLI surfaces.
type Stats struct {
	SystemMetrics int64
	NetworkMetrics int64
	LogEvents     int64
	EventTraces   int64
	IPReputations int64
	HourlyRows    int64
	DailyRows     int64
	SizeBytes     int64
}

// GetStats returns row counts for every table plus the file size on
// disk.
func (s *Store) GetStats() (Stats, error) {
	var st Stats
	counts := []struct {
		table string
		dst   *int64
	}{
		{"system_metrics", &st.SystemMetrics},
		{"network_metrics", &st.NetworkMetrics},
		{"log_events", &st.LogEvents},
		{"event_traces", &st.EventTraces},
		{"ip_reputation", &st.IPReputations},
		{"hourly_aggregates", &st.HourlyRows},
		{"daily_aggregates", &st.DailyRows},
	}
	for _, c := range counts {
		row := s.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", c.table))
		if err := row.Scan(c.dst); err != nil {
			return Stats{}, fmt.Errorf("count %s: %w", c.table, err)
		}
	}

	size, err := s.Size()
	if err != nil {
		return Stats{}, fmt.Errorf("stat database file: %w", err)
	}
	st.SizeBytes = size
	return st, nil
}
