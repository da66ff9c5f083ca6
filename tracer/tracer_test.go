package tracer

import (
	"testing"

	"github.com/logly/logly/model"
)

func TestIPTracerClassify(t *testing.T) {
	tr := NewIPTracer([]string{"198.51.100.9"}, []string{"203.0.113.1"})

	tests := []struct {
		ip            string
		wantType      string
		wantBlacklist bool
	}{
		{"127.0.0.1", IPTypeLocalhost, false},
		{"192.168.1.5", IPTypePrivate, false},
		{"10.0.0.1", IPTypePrivate, false},
		{"172.20.0.1", IPTypePrivate, false},
		{"172.40.0.1", IPTypePublic, false},
		{"8.8.8.8", IPTypePublic, false},
		{"198.51.100.9", IPTypePublic, true},
	}
	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			gotType, gotBlack, _ := tr.Classify(tt.ip)
			if gotType != tt.wantType {
				t.Errorf("Classify(%q) type = %q, want %q", tt.ip, gotType, tt.wantType)
			}
			if gotBlack != tt.wantBlacklist {
				t.Errorf("Classify(%q) blacklisted = %v, want %v", tt.ip, gotBlack, tt.wantBlacklist)
			}
		})
	}
}

func TestTraceErrorCategorizesDatabaseConnection(t *testing.T) {
	et := TraceError("connection to database refused", "ERROR")
	if et.Category != "database" {
		t.Errorf("Category = %q, want database", et.Category)
	}
	if len(et.RootCauseHints) == 0 {
		t.Error("expected root cause hints for a database connection error")
	}
}

func TestTraceErrorUnknownCategory(t *testing.T) {
	et := TraceError("something unrelated happened", "INFO")
	if et.Category != "unknown" {
		t.Errorf("Category = %q, want unknown", et.Category)
	}
}

func TestTracerCollectorTraceSeverityEscalatesForBan(t *testing.T) {
	tc := NewTracerCollector(nil, nil)
	e := model.LogEvent{
		Timestamp: 1000, Source: model.SourceFail2Ban, Level: "WARNING",
		IP: "203.0.113.50", Action: model.ActionBan,
	}
	in := tc.Trace(e, 0)
	if in.Trace.SeverityScore <= 30 {
		t.Errorf("SeverityScore = %d, want > 30 for a ban event", in.Trace.SeverityScore)
	}
	if !in.Banned {
		t.Error("expected Banned = true for a ban action")
	}
	if in.IPType != IPTypePublic {
		t.Errorf("IPType = %q, want public", in.IPType)
	}
}

func TestTracerCollectorTraceAddsErrorCascadeForErrorLevel(t *testing.T) {
	tc := NewTracerCollector(nil, nil)
	e := model.LogEvent{Timestamp: 1000, Source: model.SourceSyslog, Level: "ERROR", Message: "disk full, no space left"}
	in := tc.Trace(e, 0)
	if in.Error == nil {
		t.Fatal("expected an error cascade for an ERROR-level event")
	}
	if in.Error.Category != "resource" {
		t.Errorf("Error.Category = %q, want resource", in.Error.Category)
	}
}
