package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/logly/logly/store"
)

// envelope mirrors json_exporter.py's {type, start_time, end_time,
// filters, count, data} wrapper.
type envelope struct {
	Type      string         `json:"type"`
	StartTime int64          `json:"start_time"`
	EndTime   int64          `json:"end_time"`
	Filters   map[string]any `json:"filters,omitempty"`
	Count     int            `json:"count"`
	Data      any            `json:"data"`
}

type timestamped struct {
	TimestampStr string `json:"timestamp_str"`
}

// JSONExporter writes query results as a single JSON document with the
// envelope above.
type JSONExporter struct {
	st *store.Store
}

func NewJSONExporter(st *store.Store) *JSONExporter { return &JSONExporter{st: st} }

func (e *JSONExporter) SystemMetrics(path string, since, until int64) (int, error) {
	rows, err := e.st.GetSystemMetrics(since, until)
	if err != nil {
		return 0, fmt.Errorf("load system metrics: %w", err)
	}
	type record struct {
		timestamped
		Timestamp    int64    `json:"timestamp"`
		CPUPercent   *float64 `json:"cpu_percent,omitempty"`
		MemoryPercent *float64 `json:"memory_percent,omitempty"`
		DiskPercent  *float64 `json:"disk_percent,omitempty"`
		Load1Min     *float64 `json:"load_1min,omitempty"`
	}
	out := make([]record, 0, len(rows))
	for _, m := range rows {
		out = append(out, record{
			timestamped{time.Unix(m.Timestamp, 0).Format(csvTimeFormat)},
			m.Timestamp, m.CPUPercent, m.MemoryPercent, m.DiskPercent, m.Load1Min,
		})
	}
	return len(rows), writeEnvelope(path, envelope{Type: "system_metrics", StartTime: since, EndTime: until, Count: len(rows), Data: out})
}

func (e *JSONExporter) NetworkMetrics(path string, since, until int64) (int, error) {
	rows, err := e.st.GetNetworkMetrics(since, until)
	if err != nil {
		return 0, fmt.Errorf("load network metrics: %w", err)
	}
	type record struct {
		timestamped
		Timestamp   int64   `json:"timestamp"`
		BytesSent   *uint64 `json:"bytes_sent,omitempty"`
		BytesRecv   *uint64 `json:"bytes_recv,omitempty"`
		PacketsSent *uint64 `json:"packets_sent,omitempty"`
		PacketsRecv *uint64 `json:"packets_recv,omitempty"`
	}
	out := make([]record, 0, len(rows))
	for _, m := range rows {
		out = append(out, record{
			timestamped{time.Unix(m.Timestamp, 0).Format(csvTimeFormat)},
			m.Timestamp, m.BytesSent, m.BytesRecv, m.PacketsSent, m.PacketsRecv,
		})
	}
	return len(rows), writeEnvelope(path, envelope{Type: "network_metrics", StartTime: since, EndTime: until, Count: len(rows), Data: out})
}

func (e *JSONExporter) LogEvents(path string, since, until int64, source, level string) (int, error) {
	rows, err := e.st.GetLogEvents(since, until, source)
	if err != nil {
		return 0, fmt.Errorf("load log events: %w", err)
	}
	rows = filterByLevel(rows, level)
	type record struct {
		timestamped
		Timestamp int64  `json:"timestamp"`
		Source    string `json:"source"`
		Level     string `json:"level,omitempty"`
		IP        string `json:"ip_address,omitempty"`
		User      string `json:"user,omitempty"`
		Service   string `json:"service,omitempty"`
		Action    string `json:"action,omitempty"`
		Message   string `json:"message"`
	}
	out := make([]record, 0, len(rows))
	for _, ev := range rows {
		out = append(out, record{
			timestamped{time.Unix(ev.Timestamp, 0).Format(csvTimeFormat)},
			ev.Timestamp, ev.Source, ev.Level, ev.IP, ev.User, ev.Service, ev.Action, ev.Message,
		})
	}
	filters := map[string]any{"source": source, "level": level}
	return len(rows), writeEnvelope(path, envelope{Type: "log_events", StartTime: since, EndTime: until, Filters: filters, Count: len(rows), Data: out})
}

func writeEnvelope(path string, env envelope) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}
