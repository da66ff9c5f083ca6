package store

import (
	"fmt"
	"time"

	"github.com/logly/logly/model"
	"github.com/logly/logly/util"
)

// ComputeHourlyAggregates rolls up every raw sample/event whose hour
// boundary falls in [since, until) into hourly_aggregates, overwriting
// any existing row for the same hour so re-running is idempotent.
//
// Network counters are rolled up as the delta between the first and
// last sample seen in the hour, not the sum of raw cumulative values —
// summing cumulative byte counters produces numbers with no physical
// meaning and was the one place the behavior this was modeled on got it
// wrong.
func (s *Store) ComputeHourlyAggregates(since, until int64) error {
	for hourStart := truncateHour(since); hourStart < until; hourStart += 3600 {
		hourEnd := hourStart + 3600
		if err := s.computeOneHour(hourStart, hourEnd); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) computeOneHour(hourStart, hourEnd int64) error {
	sysRows, err := s.GetSystemMetrics(hourStart, hourEnd)
	if err != nil {
		return fmt.Errorf("load system metrics for hour %d: %w", hourStart, err)
	}
	var cpuVals, memVals, diskVals []float64
	var maxCPU, maxMem, maxDisk float64
	for _, m := range sysRows {
		if m.CPUPercent != nil {
			cpuVals = append(cpuVals, *m.CPUPercent)
			maxCPU = max(maxCPU, *m.CPUPercent)
		}
		if m.MemoryPercent != nil {
			memVals = append(memVals, *m.MemoryPercent)
			maxMem = max(maxMem, *m.MemoryPercent)
		}
		if m.DiskPercent != nil {
			diskVals = append(diskVals, *m.DiskPercent)
			maxDisk = max(maxDisk, *m.DiskPercent)
		}
	}

	first, last, err := s.firstLastNetwork(hourStart, hourEnd)
	if err != nil {
		return fmt.Errorf("load network metrics for hour %d: %w", hourStart, err)
	}
	var sentDelta, recvDelta uint64
	if first != nil && last != nil {
		if first.BytesSent != nil && last.BytesSent != nil {
			sentDelta = util.Delta(*first.BytesSent, *last.BytesSent)
		}
		if first.BytesRecv != nil && last.BytesRecv != nil {
			recvDelta = util.Delta(*first.BytesRecv, *last.BytesRecv)
		}
	}

	events, err := s.GetLogEvents(hourStart, hourEnd, "")
	if err != nil {
		return fmt.Errorf("load log events for hour %d: %w", hourStart, err)
	}

	if len(sysRows) == 0 && first == nil && len(events) == 0 {
		// No raw rows fall in this hour at all — per spec.md §4.4, skip
		// rather than upsert a zero-valued row that would dilute
		// computeOneDay's AVG over hourly rows.
		return nil
	}

	var errorCount, warnCount int
	for _, e := range events {
		if isErrorLevel(e.Level) {
			errorCount++
		} else if isWarningLevel(e.Level) {
			warnCount++
		}
	}

	agg := model.HourlyAggregate{
		HourTS:            hourStart,
		AvgCPUPercent:     util.Mean(cpuVals),
		MaxCPUPercent:     maxCPU,
		AvgMemoryPercent:  util.Mean(memVals),
		MaxMemoryPercent:  maxMem,
		AvgDiskPercent:    util.Mean(diskVals),
		MaxDiskPercent:    maxDisk,
		NetBytesSentDelta: sentDelta,
		NetBytesRecvDelta: recvDelta,
		TotalEvents:       len(events),
		ErrorEvents:       errorCount,
		WarningEvents:     warnCount,
	}

	return s.withWriteLock(func() error {
		_, err := s.db.Exec(`
			INSERT INTO hourly_aggregates (
				hour_ts, avg_cpu_percent, max_cpu_percent, avg_memory_percent, max_memory_percent,
				avg_disk_percent, max_disk_percent, net_bytes_sent_delta, net_bytes_recv_delta,
				total_events, error_events, warning_events
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(hour_ts) DO UPDATE SET
				avg_cpu_percent = excluded.avg_cpu_percent,
				max_cpu_percent = excluded.max_cpu_percent,
				avg_memory_percent = excluded.avg_memory_percent,
				max_memory_percent = excluded.max_memory_percent,
				avg_disk_percent = excluded.avg_disk_percent,
				max_disk_percent = excluded.max_disk_percent,
				net_bytes_sent_delta = excluded.net_bytes_sent_delta,
				net_bytes_recv_delta = excluded.net_bytes_recv_delta,
				total_events = excluded.total_events,
				error_events = excluded.error_events,
				warning_events = excluded.warning_events`,
			agg.HourTS, agg.AvgCPUPercent, agg.MaxCPUPercent, agg.AvgMemoryPercent, agg.MaxMemoryPercent,
			agg.AvgDiskPercent, agg.MaxDiskPercent, agg.NetBytesSentDelta, agg.NetBytesRecvDelta,
			agg.TotalEvents, agg.ErrorEvents, agg.WarningEvents,
		)
		if err != nil {
			return fmt.Errorf("upsert hourly aggregate: %w", err)
		}
		return nil
	})
}

// ComputeDailyAggregates rolls up hourly_aggregates rows (plus distinct
// IP/user counts from log_events) whose day falls in [since, until) into
// daily_aggregates, UTC-dated, overwriting existing rows.
func (s *Store) ComputeDailyAggregates(since, until int64) error {
	for day := truncateDay(since); day < until; day += 86400 {
		if err := s.computeOneDay(day); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) computeOneDay(dayStart int64) error {
	dayEnd := dayStart + 86400
	date := time.Unix(dayStart, 0).UTC().Format("2006-01-02")

	var avgCPU, maxCPU, avgMem, maxMem float64
	var sentTotal, recvTotal uint64
	var totalEvents, totalErrors int

	rows, err := s.db.Query(`
		SELECT avg_cpu_percent, max_cpu_percent, avg_memory_percent, max_memory_percent,
			net_bytes_sent_delta, net_bytes_recv_delta, total_events, error_events
		FROM hourly_aggregates WHERE hour_ts >= ? AND hour_ts < ?`, dayStart, dayEnd)
	if err != nil {
		return fmt.Errorf("load hourly aggregates for day %s: %w", date, err)
	}
	var cpuSum, memSum float64
	var n int
	for rows.Next() {
		var avgC, maxC, avgM, maxM float64
		var sent, recv uint64
		var tot, errs int
		if err := rows.Scan(&avgC, &maxC, &avgM, &maxM, &sent, &recv, &tot, &errs); err != nil {
			rows.Close()
			return fmt.Errorf("scan hourly aggregate: %w", err)
		}
		cpuSum += avgC
		memSum += avgM
		maxCPU = max(maxCPU, maxC)
		maxMem = max(maxMem, maxM)
		sentTotal += sent
		recvTotal += recv
		totalEvents += tot
		totalErrors += errs
		n++
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	if n > 0 {
		avgCPU = cpuSum / float64(n)
		avgMem = memSum / float64(n)
	}

	distinctIPs, distinctUsers, err := s.distinctActors(dayStart, dayEnd)
	if err != nil {
		return fmt.Errorf("count distinct actors for day %s: %w", date, err)
	}

	return s.withWriteLock(func() error {
		_, err := s.db.Exec(`
			INSERT INTO daily_aggregates (
				date, avg_cpu_percent, max_cpu_percent, avg_memory_percent, max_memory_percent,
				net_bytes_sent_total, net_bytes_recv_total, total_events, total_errors, distinct_ips, distinct_users
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(date) DO UPDATE SET
				avg_cpu_percent = excluded.avg_cpu_percent,
				max_cpu_percent = excluded.max_cpu_percent,
				avg_memory_percent = excluded.avg_memory_percent,
				max_memory_percent = excluded.max_memory_percent,
				net_bytes_sent_total = excluded.net_bytes_sent_total,
				net_bytes_recv_total = excluded.net_bytes_recv_total,
				total_events = excluded.total_events,
				total_errors = excluded.total_errors,
				distinct_ips = excluded.distinct_ips,
				distinct_users = excluded.distinct_users`,
			date, avgCPU, maxCPU, avgMem, maxMem,
			sentTotal, recvTotal, totalEvents, totalErrors, distinctIPs, distinctUsers,
		)
		if err != nil {
			return fmt.Errorf("upsert daily aggregate: %w", err)
		}
		return nil
	})
}

func (s *Store) distinctActors(since, until int64) (ips, users int, err error) {
	row := s.db.QueryRow(`SELECT COUNT(DISTINCT ip_address) FROM log_events WHERE timestamp >= ? AND timestamp < ? AND ip_address IS NOT NULL`, since, until)
	if err = row.Scan(&ips); err != nil {
		return 0, 0, err
	}
	row = s.db.QueryRow(`SELECT COUNT(DISTINCT user) FROM log_events WHERE timestamp >= ? AND timestamp < ? AND user IS NOT NULL`, since, until)
	if err = row.Scan(&users); err != nil {
		return 0, 0, err
	}
	return ips, users, nil
}

func truncateHour(ts int64) int64 { return ts - ts%3600 }
func truncateDay(ts int64) int64  { return ts - ts%86400 }
