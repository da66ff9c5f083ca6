package detect

import (
	"path/filepath"
	"testing"

	"github.com/logly/logly/model"
	"github.com/logly/logly/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewForTest(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewForTest() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func ptr[T any](v T) *T { return &v }

// TestBruteForceDetection is seed test #1: 10 failed_login events from
// one IP, spaced 2s apart, across at least 2 distinct users.
func TestBruteForceDetection(t *testing.T) {
	s := newTestStore(t)
	users := []string{"root", "admin", "user1", "user2", "root", "admin", "user1", "user2", "root", "admin"}
	for i := 0; i < 10; i++ {
		_, err := s.InsertLogEvent(model.LogEvent{
			Timestamp: 1000 + int64(i)*2,
			Source:    model.SourceAuth,
			Message:   "Failed password",
			Level:     "WARNING",
			IP:        "203.0.113.42",
			User:      users[i],
			Action:    model.ActionFailedLogin,
		})
		if err != nil {
			t.Fatalf("InsertLogEvent() error = %v", err)
		}
	}

	issues, err := BruteForce(s, 0, 100000, DefaultThresholds())
	if err != nil {
		t.Fatalf("BruteForce() error = %v", err)
	}
	if len(issues) != 1 {
		t.Fatalf("BruteForce() returned %d issues, want 1", len(issues))
	}
	issue := issues[0]
	if issue.Details["ip_address"] != "203.0.113.42" {
		t.Errorf("ip_address = %v, want 203.0.113.42", issue.Details["ip_address"])
	}
	if issue.Details["attempt_count"] != 10 {
		t.Errorf("attempt_count = %v, want 10", issue.Details["attempt_count"])
	}
	if uu := issue.Details["unique_users"].(int); uu < 2 {
		t.Errorf("unique_users = %d, want >= 2", uu)
	}
	if issue.Severity < 70 {
		t.Errorf("severity = %d, want >= 70", issue.Severity)
	}
}

// TestSustainedHighCPU is seed test #2: 10 samples at cpu=90, 60s apart,
// threshold 85, sustained_duration_min 300.
func TestSustainedHighCPU(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 10; i++ {
		err := s.InsertSystemMetric(model.SystemMetric{
			Timestamp:  1000 + int64(i)*60,
			CPUPercent: ptr(90.0),
		})
		if err != nil {
			t.Fatalf("InsertSystemMetric() error = %v", err)
		}
	}

	th := DefaultThresholds()
	issues, err := SustainedCPU(s, 0, 100000, th)
	if err != nil {
		t.Fatalf("SustainedCPU() error = %v", err)
	}
	if len(issues) != 1 {
		t.Fatalf("SustainedCPU() returned %d issues, want 1", len(issues))
	}
	issue := issues[0]
	if issue.Details["peak"] != 90.0 {
		t.Errorf("peak = %v, want 90.0", issue.Details["peak"])
	}
	if issue.Details["sustained_duration"] != int64(540) {
		t.Errorf("sustained_duration = %v, want 540", issue.Details["sustained_duration"])
	}
	if issue.Severity < 65 {
		t.Errorf("severity = %d, want >= 65", issue.Severity)
	}
}

// TestSustainedHighCPUMinSamplesRule verifies the boundary case: exactly
// 2 samples above threshold never reports an issue.
func TestSustainedHighCPUMinSamplesRule(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 2; i++ {
		err := s.InsertSystemMetric(model.SystemMetric{Timestamp: 1000 + int64(i)*60, CPUPercent: ptr(95.0)})
		if err != nil {
			t.Fatalf("InsertSystemMetric() error = %v", err)
		}
	}
	issues, err := SustainedCPU(s, 0, 100000, DefaultThresholds())
	if err != nil {
		t.Fatalf("SustainedCPU() error = %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("SustainedCPU() with 2 samples = %d issues, want 0", len(issues))
	}
}

func TestErrorSpikeRequiresMinimumEvents(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 5; i++ {
		_, err := s.InsertLogEvent(model.LogEvent{Timestamp: 1000 + int64(i), Source: "django", Level: "ERROR", Message: "boom"})
		if err != nil {
			t.Fatalf("InsertLogEvent() error = %v", err)
		}
	}
	issues, err := ErrorSpike(s, 0, 100000, DefaultThresholds())
	if err != nil {
		t.Fatalf("ErrorSpike() error = %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("ErrorSpike() with 5 events = %d issues, want 0 (insufficient data)", len(issues))
	}
}

func TestConnectionAnomalyRequiresMinimumPoints(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 5; i++ {
		err := s.InsertNetworkMetric(model.NetworkMetric{Timestamp: 1000 + int64(i)*60, ConnectionsEstablished: ptr(50)})
		if err != nil {
			t.Fatalf("InsertNetworkMetric() error = %v", err)
		}
	}
	issues, err := ConnectionAnomaly(s, 0, 100000)
	if err != nil {
		t.Fatalf("ConnectionAnomaly() error = %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("ConnectionAnomaly() with 5 points = %d issues, want 0 (insufficient data)", len(issues))
	}
}

func TestDiskSpaceAboveThresholdReportsIssue(t *testing.T) {
	s := newTestStore(t)
	if err := s.InsertSystemMetric(model.SystemMetric{Timestamp: 1000, DiskPercent: ptr(95.0)}); err != nil {
		t.Fatalf("InsertSystemMetric() error = %v", err)
	}
	issues, err := DiskSpace(s, DefaultThresholds())
	if err != nil {
		t.Fatalf("DiskSpace() error = %v", err)
	}
	if len(issues) != 1 {
		t.Fatalf("DiskSpace() = %d issues, want 1", len(issues))
	}
	if issues[0].Severity < 70 {
		t.Errorf("severity = %d, want >= 70", issues[0].Severity)
	}
}
