package store

import (
	"path/filepath"
	"testing"

	"github.com/logly/logly/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewForTest(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewForTest() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func ptr[T any](v T) *T { return &v }

func TestInsertAndGetSystemMetrics(t *testing.T) {
	s := newTestStore(t)

	if err := s.InsertSystemMetric(model.SystemMetric{Timestamp: 1000, CPUPercent: ptr(42.5)}); err != nil {
		t.Fatalf("InsertSystemMetric() error = %v", err)
	}
	if err := s.InsertSystemMetric(model.SystemMetric{Timestamp: 2000, CPUPercent: ptr(10.0)}); err != nil {
		t.Fatalf("InsertSystemMetric() error = %v", err)
	}

	got, err := s.GetSystemMetrics(0, 1500)
	if err != nil {
		t.Fatalf("GetSystemMetrics() error = %v", err)
	}
	if len(got) != 1 || *got[0].CPUPercent != 42.5 {
		t.Fatalf("GetSystemMetrics(0, 1500) = %+v, want one row with CPUPercent 42.5", got)
	}
}

func TestHourlyAggregationIsIdempotent(t *testing.T) {
	s := newTestStore(t)

	hour := int64(3600 * 10)
	for i, cpu := range []float64{10, 20, 30} {
		ts := hour + int64(i)*100
		if err := s.InsertSystemMetric(model.SystemMetric{Timestamp: ts, CPUPercent: ptr(cpu)}); err != nil {
			t.Fatalf("InsertSystemMetric() error = %v", err)
		}
	}
	for i, sent := range []uint64{1000, 1500, 2200} {
		ts := hour + int64(i)*100
		if err := s.InsertNetworkMetric(model.NetworkMetric{Timestamp: ts, BytesSent: ptr(sent)}); err != nil {
			t.Fatalf("InsertNetworkMetric() error = %v", err)
		}
	}

	if err := s.ComputeHourlyAggregates(hour, hour+3600); err != nil {
		t.Fatalf("ComputeHourlyAggregates() error = %v", err)
	}
	first, err := s.hourlyRow(hour)
	if err != nil {
		t.Fatalf("hourlyRow() error = %v", err)
	}

	// Re-running over the same window must produce the same row, not
	// accumulate a second copy or double the delta.
	if err := s.ComputeHourlyAggregates(hour, hour+3600); err != nil {
		t.Fatalf("ComputeHourlyAggregates() second run error = %v", err)
	}
	second, err := s.hourlyRow(hour)
	if err != nil {
		t.Fatalf("hourlyRow() error = %v", err)
	}

	if first != second {
		t.Fatalf("hourly aggregate changed on re-run: first=%+v second=%+v", first, second)
	}
	if second.NetBytesSentDelta != 1200 {
		t.Errorf("NetBytesSentDelta = %d, want 1200 (2200-1000)", second.NetBytesSentDelta)
	}
	if second.AvgCPUPercent != 20 {
		t.Errorf("AvgCPUPercent = %v, want 20", second.AvgCPUPercent)
	}
}

// hourlyRow is a tiny test-only accessor since there is no public getter
// for a single hourly_aggregates row outside of daily rollups.
func (s *Store) hourlyRow(hourTS int64) (model.HourlyAggregate, error) {
	var a model.HourlyAggregate
	row := s.db.QueryRow(`
		SELECT hour_ts, avg_cpu_percent, max_cpu_percent, avg_memory_percent, max_memory_percent,
			avg_disk_percent, max_disk_percent, net_bytes_sent_delta, net_bytes_recv_delta,
			total_events, error_events, warning_events
		FROM hourly_aggregates WHERE hour_ts = ?`, hourTS)
	err := row.Scan(&a.HourTS, &a.AvgCPUPercent, &a.MaxCPUPercent, &a.AvgMemoryPercent, &a.MaxMemoryPercent,
		&a.AvgDiskPercent, &a.MaxDiskPercent, &a.NetBytesSentDelta, &a.NetBytesRecvDelta,
		&a.TotalEvents, &a.ErrorEvents, &a.WarningEvents)
	return a, err
}

func TestIPReputationThreatScoreMonotonic(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 3; i++ {
		in := EventTraceInput{
			Trace:       model.EventTrace{Timestamp: int64(1000 + i), Source: model.SourceAuth, Level: "warning", SeverityScore: 40},
			IP:          "203.0.113.5",
			IPType:      "public",
			FailedLogin: true,
		}
		if _, err := s.InsertEventTrace(in); err != nil {
			t.Fatalf("InsertEventTrace() error = %v", err)
		}
	}

	rep, err := s.GetIPReputation("203.0.113.5")
	if err != nil {
		t.Fatalf("GetIPReputation() error = %v", err)
	}
	if rep == nil {
		t.Fatal("GetIPReputation() = nil, want a record")
	}
	if rep.FailedLoginCount != 3 {
		t.Errorf("FailedLoginCount = %d, want 3", rep.FailedLoginCount)
	}
	// base 10 (public) + 5*3 = 25
	if rep.ThreatScore != 25 {
		t.Errorf("ThreatScore = %d, want 25", rep.ThreatScore)
	}

	// A later ban must only raise the score, never lower it for a
	// behaviorally worse address.
	in := EventTraceInput{
		Trace:  model.EventTrace{Timestamp: 1100, Source: model.SourceFail2Ban, Level: "warning", SeverityScore: 60},
		IP:     "203.0.113.5",
		IPType: "public",
		Banned: true,
	}
	if _, err := s.InsertEventTrace(in); err != nil {
		t.Fatalf("InsertEventTrace() error = %v", err)
	}
	rep2, err := s.GetIPReputation("203.0.113.5")
	if err != nil {
		t.Fatalf("GetIPReputation() error = %v", err)
	}
	if rep2.ThreatScore <= rep.ThreatScore {
		t.Errorf("ThreatScore after ban = %d, want > %d", rep2.ThreatScore, rep.ThreatScore)
	}
}

func TestThreatScoreClampsToTable(t *testing.T) {
	tests := []struct {
		name        string
		ipType      string
		blacklisted bool
		failed      int
		banned      int
		want        int
	}{
		{"clean private address", "private", false, 0, 0, 0},
		{"public address no history", "public", false, 0, 0, 10},
		{"blacklisted overrides public base", "public", true, 0, 0, 90},
		{"failed logins cap at 6", "public", false, 20, 0, 10 + 5*6},
		{"banned count caps at 2", "public", false, 0, 10, 10 + 20*2},
		{"blacklisted maxes at 100", "public", true, 20, 10, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := threatScore(tt.ipType, tt.blacklisted, tt.failed, tt.banned)
			if got != tt.want {
				t.Errorf("threatScore() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCleanupOldDataRespectsRetention(t *testing.T) {
	s := newTestStore(t)

	now := int64(1_000_000)
	old := now - 40*86400
	recent := now - 1*86400

	if err := s.InsertSystemMetric(model.SystemMetric{Timestamp: old, CPUPercent: ptr(1.0)}); err != nil {
		t.Fatalf("InsertSystemMetric() error = %v", err)
	}
	if err := s.InsertSystemMetric(model.SystemMetric{Timestamp: recent, CPUPercent: ptr(2.0)}); err != nil {
		t.Fatalf("InsertSystemMetric() error = %v", err)
	}

	if err := s.CleanupOldData(now, RetentionPolicy{RawMetricsDays: 30}); err != nil {
		t.Fatalf("CleanupOldData() error = %v", err)
	}

	got, err := s.GetSystemMetrics(0, now+1)
	if err != nil {
		t.Fatalf("GetSystemMetrics() error = %v", err)
	}
	if len(got) != 1 || got[0].Timestamp != recent {
		t.Fatalf("GetSystemMetrics() after cleanup = %+v, want only the recent row", got)
	}
}

func TestCleanupZeroDaysDeletesEverything(t *testing.T) {
	s := newTestStore(t)

	if err := s.InsertSystemMetric(model.SystemMetric{Timestamp: 1, CPUPercent: ptr(1.0)}); err != nil {
		t.Fatalf("InsertSystemMetric() error = %v", err)
	}
	if err := s.CleanupOldData(1_000_000, RetentionPolicy{}); err != nil {
		t.Fatalf("CleanupOldData() error = %v", err)
	}
	got, err := s.GetSystemMetrics(0, 2_000_000)
	if err != nil {
		t.Fatalf("GetSystemMetrics() error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("GetSystemMetrics() after zero-day cleanup = %d rows, want 0 (0 days deletes everything older than now)", len(got))
	}
}

func TestCleanupZeroHourlyDaysKeepsAggregates(t *testing.T) {
	s := newTestStore(t)

	if err := s.ComputeHourlyAggregates(0, 3600); err != nil {
		t.Fatalf("ComputeHourlyAggregates() error = %v", err)
	}
	if err := s.InsertSystemMetric(model.SystemMetric{Timestamp: 1, CPUPercent: ptr(1.0)}); err != nil {
		t.Fatalf("InsertSystemMetric() error = %v", err)
	}
	if err := s.ComputeHourlyAggregates(0, 3600); err != nil {
		t.Fatalf("ComputeHourlyAggregates() error = %v", err)
	}
	if err := s.CleanupOldData(1_000_000, RetentionPolicy{}); err != nil {
		t.Fatalf("CleanupOldData() error = %v", err)
	}
	rows, err := s.db.Query("SELECT COUNT(*) FROM hourly_aggregates")
	if err != nil {
		t.Fatalf("query hourly_aggregates error = %v", err)
	}
	defer rows.Close()
	var count int
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			t.Fatalf("scan count error = %v", err)
		}
	}
	if count != 1 {
		t.Fatalf("hourly_aggregates rows after zero-day cleanup = %d, want 1 (HourlyDays=0 means no policy configured, skip)", count)
	}
}
