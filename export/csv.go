// Package export renders store query results to the on-disk formats
// operators pull into spreadsheets or SIEMs, grounded on
// logly/exporters/csv_exporter.py, json_exporter.py, and
// report_generator.py.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/logly/logly/model"
	"github.com/logly/logly/store"
)

const csvTimeFormat = "2006-01-02 15:04:05"

// CSVExporter writes query results as CSV files, one row per record plus
// a synthetic timestamp_str column, matching csv_exporter.py's shape.
type CSVExporter struct {
	st *store.Store
}

func NewCSVExporter(st *store.Store) *CSVExporter { return &CSVExporter{st: st} }

// SystemMetrics writes system_metrics rows in [since, until) to path.
func (e *CSVExporter) SystemMetrics(path string, since, until int64) (int, error) {
	rows, err := e.st.GetSystemMetrics(since, until)
	if err != nil {
		return 0, fmt.Errorf("load system metrics: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	header := []string{"timestamp", "timestamp_str", "cpu_percent", "memory_percent", "disk_percent", "load_1min"}
	records := make([][]string, 0, len(rows))
	for _, m := range rows {
		records = append(records, []string{
			strconv.FormatInt(m.Timestamp, 10),
			time.Unix(m.Timestamp, 0).Format(csvTimeFormat),
			derefFloatStr(m.CPUPercent),
			derefFloatStr(m.MemoryPercent),
			derefFloatStr(m.DiskPercent),
			derefFloatStr(m.Load1Min),
		})
	}
	if err := writeCSV(path, header, records); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// NetworkMetrics writes network_metrics rows in [since, until) to path.
func (e *CSVExporter) NetworkMetrics(path string, since, until int64) (int, error) {
	rows, err := e.st.GetNetworkMetrics(since, until)
	if err != nil {
		return 0, fmt.Errorf("load network metrics: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	header := []string{"timestamp", "timestamp_str", "bytes_sent", "bytes_recv", "packets_sent", "packets_recv", "errors_in", "errors_out"}
	records := make([][]string, 0, len(rows))
	for _, m := range rows {
		records = append(records, []string{
			strconv.FormatInt(m.Timestamp, 10),
			time.Unix(m.Timestamp, 0).Format(csvTimeFormat),
			derefUintStr(m.BytesSent),
			derefUintStr(m.BytesRecv),
			derefUintStr(m.PacketsSent),
			derefUintStr(m.PacketsRecv),
			derefUintStr(m.ErrorsIn),
			derefUintStr(m.ErrorsOut),
		})
	}
	if err := writeCSV(path, header, records); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// LogEvents writes log_events rows in [since, until), optionally
// filtered by source/level, to path.
func (e *CSVExporter) LogEvents(path string, since, until int64, source, level string) (int, error) {
	rows, err := e.st.GetLogEvents(since, until, source)
	if err != nil {
		return 0, fmt.Errorf("load log events: %w", err)
	}
	rows = filterByLevel(rows, level)
	if len(rows) == 0 {
		return 0, nil
	}

	header := []string{"timestamp", "timestamp_str", "source", "level", "ip_address", "user", "service", "action", "message"}
	records := make([][]string, 0, len(rows))
	for _, ev := range rows {
		records = append(records, []string{
			strconv.FormatInt(ev.Timestamp, 10),
			time.Unix(ev.Timestamp, 0).Format(csvTimeFormat),
			ev.Source, ev.Level, ev.IP, ev.User, ev.Service, ev.Action, ev.Message,
		})
	}
	if err := writeCSV(path, header, records); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func filterByLevel(rows []model.LogEvent, level string) []model.LogEvent {
	if level == "" {
		return rows
	}
	out := rows[:0]
	for _, r := range rows {
		if strings.EqualFold(r.Level, level) {
			out = append(out, r)
		}
	}
	return out
}

func writeCSV(path string, header []string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(records); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func derefFloatStr(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func derefUintStr(v *uint64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatUint(*v, 10)
}
