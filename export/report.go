package export

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/logly/logly/model"
	"github.com/logly/logly/store"
	"github.com/logly/logly/util"
)

// ReportGenerator produces human-readable summaries, grounded on
// report_generator.py's banner-and-section layout.
type ReportGenerator struct {
	st *store.Store
}

func NewReportGenerator(st *store.Store) *ReportGenerator { return &ReportGenerator{st: st} }

type summaryStats struct {
	haveSystem                              bool
	avgCPU, maxCPU, avgMemory, maxMemory, avgDisk float64

	haveNetwork                                 bool
	totalSent, totalRecv, totalPktSent, totalPktRecv uint64

	total, failedLogins, bannedIPs, errorCount, warningCount int
}

func (g *ReportGenerator) computeStats(since, until int64) (summaryStats, error) {
	var st summaryStats

	sys, err := g.st.GetSystemMetrics(since, until)
	if err != nil {
		return st, fmt.Errorf("load system metrics: %w", err)
	}
	var cpu, mem, disk []float64
	for _, m := range sys {
		if m.CPUPercent != nil {
			cpu = append(cpu, *m.CPUPercent)
		}
		if m.MemoryPercent != nil {
			mem = append(mem, *m.MemoryPercent)
		}
		if m.DiskPercent != nil {
			disk = append(disk, *m.DiskPercent)
		}
	}
	if len(sys) > 0 {
		st.haveSystem = true
		st.avgCPU, st.maxCPU = util.Mean(cpu), maxFloat(cpu)
		st.avgMemory, st.maxMemory = util.Mean(mem), maxFloat(mem)
		st.avgDisk = util.Mean(disk)
	}

	net, err := g.st.GetNetworkMetrics(since, until)
	if err != nil {
		return st, fmt.Errorf("load network metrics: %w", err)
	}
	if len(net) > 0 {
		st.haveNetwork = true
		first, last := net[0], net[len(net)-1]
		st.totalSent = util.Delta(derefU64(first.BytesSent), derefU64(last.BytesSent))
		st.totalRecv = util.Delta(derefU64(first.BytesRecv), derefU64(last.BytesRecv))
		st.totalPktSent = util.Delta(derefU64(first.PacketsSent), derefU64(last.PacketsSent))
		st.totalPktRecv = util.Delta(derefU64(first.PacketsRecv), derefU64(last.PacketsRecv))
	}

	events, err := g.st.GetLogEvents(since, until, "")
	if err != nil {
		return st, fmt.Errorf("load log events: %w", err)
	}
	st.total = len(events)
	for _, e := range events {
		switch e.Action {
		case model.ActionFailedLogin:
			st.failedLogins++
		case model.ActionBan:
			st.bannedIPs++
		}
		switch strings.ToUpper(e.Level) {
		case "ERROR", "CRITICAL", "FATAL":
			st.errorCount++
		case "WARNING", "WARN":
			st.warningCount++
		}
	}

	return st, nil
}

// Summary writes a plain-text banner report to path, matching
// report_generator.py's generate_summary_report layout.
func (g *ReportGenerator) Summary(path string, since, until int64) error {
	st, err := g.computeStats(since, until)
	if err != nil {
		return err
	}
	dbStats, err := g.st.GetStats()
	if err != nil {
		return fmt.Errorf("load db stats: %w", err)
	}

	var b strings.Builder
	banner := strings.Repeat("=", 70)
	rule := strings.Repeat("-", 70)

	fmt.Fprintln(&b, banner)
	fmt.Fprintln(&b, "LOGLY SUMMARY REPORT")
	fmt.Fprintln(&b, banner)
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "Report Period: %s to %s\n", time.Unix(since, 0), time.Unix(until, 0))
	fmt.Fprintf(&b, "Duration: %.1f hours\n\n", float64(until-since)/3600)

	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "SYSTEM METRICS")
	fmt.Fprintln(&b, rule)
	if st.haveSystem {
		fmt.Fprintf(&b, "  CPU Usage (avg):        %.1f%%\n", st.avgCPU)
		fmt.Fprintf(&b, "  CPU Usage (max):        %.1f%%\n", st.maxCPU)
		fmt.Fprintf(&b, "  Memory Usage (avg):     %.1f%%\n", st.avgMemory)
		fmt.Fprintf(&b, "  Memory Usage (max):     %.1f%%\n", st.maxMemory)
		fmt.Fprintf(&b, "  Disk Usage (avg):       %.1f%%\n", st.avgDisk)
	} else {
		fmt.Fprintln(&b, "  No system metrics found")
	}
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "NETWORK METRICS")
	fmt.Fprintln(&b, rule)
	if st.haveNetwork {
		fmt.Fprintf(&b, "  Bytes Sent (total):     %s\n", humanize.Bytes(st.totalSent))
		fmt.Fprintf(&b, "  Bytes Received (total): %s\n", humanize.Bytes(st.totalRecv))
		fmt.Fprintf(&b, "  Packets Sent:           %s\n", humanize.Comma(int64(st.totalPktSent)))
		fmt.Fprintf(&b, "  Packets Received:       %s\n", humanize.Comma(int64(st.totalPktRecv)))
	} else {
		fmt.Fprintln(&b, "  No network metrics found")
	}
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "LOG EVENTS")
	fmt.Fprintln(&b, rule)
	if st.total > 0 {
		fmt.Fprintf(&b, "  Total Events:           %s\n", humanize.Comma(int64(st.total)))
		fmt.Fprintf(&b, "  Failed Logins:          %s\n", humanize.Comma(int64(st.failedLogins)))
		fmt.Fprintf(&b, "  Banned IPs:             %s\n", humanize.Comma(int64(st.bannedIPs)))
		fmt.Fprintf(&b, "  Errors:                 %s\n", humanize.Comma(int64(st.errorCount)))
		fmt.Fprintf(&b, "  Warnings:               %s\n", humanize.Comma(int64(st.warningCount)))
	} else {
		fmt.Fprintln(&b, "  No log events found")
	}
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "DATABASE STATISTICS")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "  System Metrics Records: %s\n", humanize.Comma(dbStats.SystemMetrics))
	fmt.Fprintf(&b, "  Network Metrics Records:%s\n", humanize.Comma(dbStats.NetworkMetrics))
	fmt.Fprintf(&b, "  Log Events Records:     %s\n", humanize.Comma(dbStats.LogEvents))
	fmt.Fprintf(&b, "  Hourly Aggregates:      %s\n", humanize.Comma(dbStats.HourlyRows))
	fmt.Fprintf(&b, "  Daily Aggregates:       %s\n", humanize.Comma(dbStats.DailyRows))
	fmt.Fprintf(&b, "  Database Size:          %s\n", humanize.Bytes(uint64(dbStats.SizeBytes)))
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, banner)

	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// Security writes a plain-text security-focused report: failed logins
// grouped by source IP with a risk tier, plus ban and error counts.
// Rendered as text rather than report_generator.py's HTML to match the
// rest of Logly's CLI-first output; ui/watch.go covers the interactive
// case.
func (g *ReportGenerator) Security(path string, since, until int64) error {
	events, err := g.st.GetLogEvents(since, until, "")
	if err != nil {
		return fmt.Errorf("load log events: %w", err)
	}

	failedByIP := map[string]int{}
	var banned, errors []model.LogEvent
	for _, e := range events {
		switch e.Action {
		case model.ActionFailedLogin:
			ip := e.IP
			if ip == "" {
				ip = model.UnknownIP
			}
			failedByIP[ip]++
		case model.ActionBan:
			banned = append(banned, e)
		}
		if strings.EqualFold(e.Level, "ERROR") {
			errors = append(errors, e)
		}
	}

	var b strings.Builder
	banner := strings.Repeat("=", 70)
	fmt.Fprintln(&b, banner)
	fmt.Fprintln(&b, "SECURITY INCIDENT REPORT")
	fmt.Fprintln(&b, banner)
	fmt.Fprintf(&b, "Report Period: %s to %s\n\n", time.Unix(since, 0), time.Unix(until, 0))

	fmt.Fprintf(&b, "Total Security Events:   %d\n", len(events))
	fmt.Fprintf(&b, "Failed Login Attempts:   %d\n", sumCounts(failedByIP))
	fmt.Fprintf(&b, "IPs Banned:              %d\n", len(banned))
	fmt.Fprintf(&b, "Errors:                  %d\n\n", len(errors))

	fmt.Fprintln(&b, "Failed Logins by Source IP:")
	for ip, count := range failedByIP {
		risk := "LOW"
		if count >= 10 {
			risk = "HIGH"
		} else if count >= 5 {
			risk = "MEDIUM"
		}
		fmt.Fprintf(&b, "  %-20s %5d  %s\n", ip, count, risk)
	}
	if len(failedByIP) == 0 {
		fmt.Fprintln(&b, "  none detected")
	}

	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "Recommendations:")
	if sumCounts(failedByIP) > 50 {
		fmt.Fprintln(&b, "  - high failed-login volume; consider rate limiting")
	}
	if len(banned) > 20 {
		fmt.Fprintln(&b, "  - significant ban activity; review fail2ban thresholds")
	}
	if len(errors) > 100 {
		fmt.Fprintln(&b, "  - high error rate; investigate application logs")
	}
	fmt.Fprintln(&b, "  - review authentication logs regularly")

	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func sumCounts(m map[string]int) int {
	var n int
	for _, v := range m {
		n += v
	}
	return n
}

func maxFloat(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

func derefU64(v *uint64) uint64 {
	if v == nil {
		return 0
	}
	return *v
}
