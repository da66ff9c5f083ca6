package aggregate

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/logly/logly/model"
	"github.com/logly/logly/store"
)

func TestRunHourlyDisabledIsNoop(t *testing.T) {
	st, err := store.NewForTest(filepath.Join(t.TempDir(), "t.db"))
	if err != nil {
		t.Fatalf("NewForTest() error = %v", err)
	}
	defer st.Close()

	a := New(st, true, false, true)
	if err := a.RunHourly(time.Now()); err != nil {
		t.Fatalf("RunHourly() error = %v, want nil no-op when hourly disabled", err)
	}
}

func TestRunHourlyRollsUpPreviousHour(t *testing.T) {
	st, err := store.NewForTest(filepath.Join(t.TempDir(), "t.db"))
	if err != nil {
		t.Fatalf("NewForTest() error = %v", err)
	}
	defer st.Close()

	now := time.Now()
	prevHour := now.Truncate(time.Hour).Add(-time.Hour)
	cpu := 55.0
	if err := st.InsertSystemMetric(model.SystemMetric{Timestamp: prevHour.Unix() + 30, CPUPercent: &cpu}); err != nil {
		t.Fatalf("InsertSystemMetric() error = %v", err)
	}

	a := New(st, true, true, true)
	if err := a.RunHourly(now); err != nil {
		t.Fatalf("RunHourly() error = %v", err)
	}
}
