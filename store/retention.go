package store

import (
	"fmt"
	"time"
)

// RetentionPolicy sets how many days of each table's raw or rolled-up
// data survives a CleanupOldData pass. For RawMetricsDays and
// LogEventsDays, zero means "keep nothing older than now", not "keep
// forever" — see CleanupOldData. For HourlyDays, TracesDays, and
// DailyDays, zero means no policy is configured and that table's
// cleanup is skipped.
type RetentionPolicy struct {
	RawMetricsDays int
	LogEventsDays  int
	TracesDays     int
	HourlyDays     int
	DailyDays      int
}

// CleanupOldData deletes rows older than the policy's cutoffs, measured
// against now. It runs each table's delete as its own write-locked
// statement rather than one big transaction, so a long-running cleanup
// never holds the write lock for the whole pass.
//
// Raw tables (system_metrics, network_metrics, log_events) always
// compute a cutoff and delete against it, even when the configured
// retention is 0 days — a 0-day policy means "keep nothing older than
// right now", not "keep forever", matching the boundary the original
// sqlite_store.py cleanup enforced. Only the rolled-up tables
// (hourly_aggregates, daily_aggregates, traces) treat 0 as "no
// retention policy configured, skip" since those are populated by a
// separate aggregation pass rather than raw ingestion.
func (s *Store) CleanupOldData(now int64, policy RetentionPolicy) error {
	rawDeletes := []struct {
		days int
		stmt string
	}{
		{policy.RawMetricsDays, "DELETE FROM system_metrics WHERE timestamp < ?"},
		{policy.RawMetricsDays, "DELETE FROM network_metrics WHERE timestamp < ?"},
		{policy.LogEventsDays, "DELETE FROM log_events WHERE timestamp < ?"},
	}
	for _, d := range rawDeletes {
		cutoff := now - int64(d.days)*86400
		if err := s.withWriteLock(func() error {
			_, err := s.db.Exec(d.stmt, cutoff)
			return err
		}); err != nil {
			return fmt.Errorf("cleanup: %w", err)
		}
	}

	if policy.HourlyDays > 0 {
		cutoff := now - int64(policy.HourlyDays)*86400
		if err := s.withWriteLock(func() error {
			_, err := s.db.Exec("DELETE FROM hourly_aggregates WHERE hour_ts < ?", cutoff)
			return err
		}); err != nil {
			return fmt.Errorf("cleanup: %w", err)
		}
	}

	if policy.TracesDays > 0 {
		cutoff := now - int64(policy.TracesDays)*86400
		if err := s.withWriteLock(func() error {
			if _, err := s.db.Exec(`DELETE FROM process_traces WHERE trace_id IN (SELECT id FROM event_traces WHERE timestamp < ?)`, cutoff); err != nil {
				return err
			}
			if _, err := s.db.Exec(`DELETE FROM network_traces WHERE trace_id IN (SELECT id FROM event_traces WHERE timestamp < ?)`, cutoff); err != nil {
				return err
			}
			if _, err := s.db.Exec(`DELETE FROM error_traces WHERE trace_id IN (SELECT id FROM event_traces WHERE timestamp < ?)`, cutoff); err != nil {
				return err
			}
			_, err := s.db.Exec(`DELETE FROM event_traces WHERE timestamp < ?`, cutoff)
			return err
		}); err != nil {
			return fmt.Errorf("cleanup traces: %w", err)
		}
	}

	if policy.DailyDays > 0 {
		cutoffDate := dateNDaysBefore(now, policy.DailyDays)
		if err := s.withWriteLock(func() error {
			_, err := s.db.Exec(`DELETE FROM daily_aggregates WHERE date < ?`, cutoffDate)
			return err
		}); err != nil {
			return fmt.Errorf("cleanup daily aggregates: %w", err)
		}
	}

	return s.vacuumIfNeeded()
}

// vacuumIfNeeded runs PRAGMA incremental_vacuum after a cleanup pass.
// SQLite frees pages with it only when auto_vacuum is INCREMENTAL; the
// schema never sets auto_vacuum, so on a default database it is a no-op
// and the file does not shrink.
func (s *Store) vacuumIfNeeded() error {
	return s.withWriteLock(func() error {
		_, err := s.db.Exec("PRAGMA incremental_vacuum")
		return err
	})
}

func dateNDaysBefore(now int64, days int) string {
	return time.Unix(now-int64(days)*86400, 0).UTC().Format("2006-01-02")
}
