package store

import (
	"database/sql"
	"fmt"

	"github.com/logly/logly/model"
)

// InsertSystemMetric persists one sampled system metric row.
func (s *Store) InsertSystemMetric(m model.SystemMetric) error {
	return s.withWriteLock(func() error {
		_, err := s.db.Exec(`
			INSERT INTO system_metrics (
				timestamp, cpu_percent, cpu_count,
				memory_total, memory_available, memory_percent,
				disk_total, disk_used, disk_percent, disk_read_bytes, disk_write_bytes,
				load_1min, load_5min, load_15min
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.Timestamp, m.CPUPercent, m.CPUCount,
			m.MemoryTotal, m.MemoryAvailable, m.MemoryPercent,
			m.DiskTotal, m.DiskUsed, m.DiskPercent, m.DiskReadBytes, m.DiskWriteBytes,
			m.Load1Min, m.Load5Min, m.Load15Min,
		)
		if err != nil {
			return fmt.Errorf("insert system metric: %w", err)
		}
		return nil
	})
}

// GetSystemMetrics returns system metric rows with timestamp in
// [since, until), ordered oldest first.
func (s *Store) GetSystemMetrics(since, until int64) ([]model.SystemMetric, error) {
	rows, err := s.db.Query(`
		SELECT id, timestamp, cpu_percent, cpu_count,
			memory_total, memory_available, memory_percent,
			disk_total, disk_used, disk_percent, disk_read_bytes, disk_write_bytes,
			load_1min, load_5min, load_15min
		FROM system_metrics
		WHERE timestamp >= ? AND timestamp < ?
		ORDER BY timestamp ASC`, since, until)
	if err != nil {
		return nil, fmt.Errorf("query system metrics: %w", err)
	}
	defer rows.Close()

	var out []model.SystemMetric
	for rows.Next() {
		var m model.SystemMetric
		if err := rows.Scan(
			&m.ID, &m.Timestamp, &m.CPUPercent, &m.CPUCount,
			&m.MemoryTotal, &m.MemoryAvailable, &m.MemoryPercent,
			&m.DiskTotal, &m.DiskUsed, &m.DiskPercent, &m.DiskReadBytes, &m.DiskWriteBytes,
			&m.Load1Min, &m.Load5Min, &m.Load15Min,
		); err != nil {
			return nil, fmt.Errorf("scan system metric: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// InsertNetworkMetric persists one sampled network metric row.
func (s *Store) InsertNetworkMetric(m model.NetworkMetric) error {
	return s.withWriteLock(func() error {
		_, err := s.db.Exec(`
			INSERT INTO network_metrics (
				timestamp, bytes_sent, bytes_recv, packets_sent, packets_recv,
				errors_in, errors_out, drops_in, drops_out,
				connections_established, connections_listen, connections_time_wait
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.Timestamp, m.BytesSent, m.BytesRecv, m.PacketsSent, m.PacketsRecv,
			m.ErrorsIn, m.ErrorsOut, m.DropsIn, m.DropsOut,
			m.ConnectionsEstablished, m.ConnectionsListen, m.ConnectionsTimeWait,
		)
		if err != nil {
			return fmt.Errorf("insert network metric: %w", err)
		}
		return nil
	})
}

// GetNetworkMetrics returns network metric rows with timestamp in
// [since, until), ordered oldest first.
func (s *Store) GetNetworkMetrics(since, until int64) ([]model.NetworkMetric, error) {
	rows, err := s.db.Query(`
		SELECT id, timestamp, bytes_sent, bytes_recv, packets_sent, packets_recv,
			errors_in, errors_out, drops_in, drops_out,
			connections_established, connections_listen, connections_time_wait
		FROM network_metrics
		WHERE timestamp >= ? AND timestamp < ?
		ORDER BY timestamp ASC`, since, until)
	if err != nil {
		return nil, fmt.Errorf("query network metrics: %w", err)
	}
	defer rows.Close()

	var out []model.NetworkMetric
	for rows.Next() {
		var m model.NetworkMetric
		if err := rows.Scan(
			&m.ID, &m.Timestamp, &m.BytesSent, &m.BytesRecv, &m.PacketsSent, &m.PacketsRecv,
			&m.ErrorsIn, &m.ErrorsOut, &m.DropsIn, &m.DropsOut,
			&m.ConnectionsEstablished, &m.ConnectionsListen, &m.ConnectionsTimeWait,
		); err != nil {
			return nil, fmt.Errorf("scan network metric: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// firstLastNetwork returns the earliest and latest network_metrics rows
// in [since, until), used by aggregation to compute deltas rather than
// summing cumulative counters.
func (s *Store) firstLastNetwork(since, until int64) (first, last *model.NetworkMetric, err error) {
	row := s.db.QueryRow(`
		SELECT bytes_sent, bytes_recv FROM network_metrics
		WHERE timestamp >= ? AND timestamp < ?
		ORDER BY timestamp ASC LIMIT 1`, since, until)
	var f model.NetworkMetric
	switch scanErr := row.Scan(&f.BytesSent, &f.BytesRecv); scanErr {
	case nil:
		first = &f
	case sql.ErrNoRows:
		return nil, nil, nil
	default:
		return nil, nil, fmt.Errorf("scan first network metric: %w", scanErr)
	}

	row = s.db.QueryRow(`
		SELECT bytes_sent, bytes_recv FROM network_metrics
		WHERE timestamp >= ? AND timestamp < ?
		ORDER BY timestamp DESC LIMIT 1`, since, until)
	var l model.NetworkMetric
	if scanErr := row.Scan(&l.BytesSent, &l.BytesRecv); scanErr != nil {
		return nil, nil, fmt.Errorf("scan last network metric: %w", scanErr)
	}
	last = &l
	return first, last, nil
}
