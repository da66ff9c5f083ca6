package analyze

import (
	"path/filepath"
	"testing"

	"github.com/logly/logly/detect"
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

// TestErrorTrendWorsening is seed test #5: days 0-6 total 10 events,
// days 7-13 total 30 events, over a 14 day window.
func TestErrorTrendWorsening(t *testing.T) {
	s := newTestStore(t)
	now := int64(14 * 86400)

	insertDaily := func(startDay, days, perDay int) {
		for d := 0; d < days; d++ {
			dayStart := int64(startDay+d) * 86400
			for i := 0; i < perDay; i++ {
				_, err := s.InsertLogEvent(model.LogEvent{
					Timestamp: dayStart + int64(i)*100,
					Source:    "django",
					Level:     "ERROR",
					Message:   "boom",
				})
				if err != nil {
					t.Fatalf("InsertLogEvent() error = %v", err)
				}
			}
		}
	}
	// days 0..6 (7 days) total 10 events; days 7..13 (7 days) total 30 events.
	for d := 0; d < 7; d++ {
		n := 1
		if d < 3 {
			n = 2
		}
		insertDaily(d, 1, n)
	}
	for d := 7; d < 14; d++ {
		n := 4
		if d < 9 {
			n = 5
		}
		insertDaily(d, 1, n)
	}

	report, err := AnalyzeErrorTrends(s, now, 14)
	if err != nil {
		t.Fatalf("AnalyzeErrorTrends() error = %v", err)
	}
	if report.Trend != "worsening" {
		t.Errorf("Trend = %q, want %q (second half rate %.2f vs first %.2f)",
			report.Trend, "worsening", report.SecondHalfRate, report.FirstHalfRate)
	}
}

func TestAnalyzeSystemHealthNoIssuesIsHealthy(t *testing.T) {
	s := newTestStore(t)
	report, err := AnalyzeSystemHealth(s, 0, 1000000, detect.DefaultThresholds())
	if err != nil {
		t.Fatalf("AnalyzeSystemHealth() error = %v", err)
	}
	if report.Status != "healthy" {
		t.Errorf("Status = %q, want healthy with no data", report.Status)
	}
	if report.HealthScore != 100 {
		t.Errorf("HealthScore = %d, want 100 with no issues", report.HealthScore)
	}
}

func TestAnalyzeSecurityPostureGoodWithNoActivity(t *testing.T) {
	s := newTestStore(t)
	report, err := AnalyzeSecurityPosture(s, 0, 1000000, detect.DefaultThresholds())
	if err != nil {
		t.Fatalf("AnalyzeSecurityPosture() error = %v", err)
	}
	if report.Posture != "good" {
		t.Errorf("Posture = %q, want good with no activity", report.Posture)
	}
}
