package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/logly/logly/model"
)

// EventTraceInput bundles an EventTrace with whatever cascade rows were
// gathered for it. Any of the slice/pointer fields may be empty/nil.
type EventTraceInput struct {
	Trace     model.EventTrace
	Processes []model.ProcessTrace
	Networks  []model.NetworkTrace
	Error     *model.ErrorTrace

	// IP, when non-empty, triggers an IPReputation upsert alongside the
	// trace insert. IPType/IsBlacklisted/IsWhitelisted reflect the
	// tracer's current classification of the address.
	IP            string
	IPType        string
	IsBlacklisted bool
	IsWhitelisted bool
	FailedLogin   bool
	Banned        bool
}

// InsertEventTrace persists an EventTrace and its process/network/error
// cascades in one write-locked transaction, then upserts IP reputation
// if an IP was supplied. It returns the new trace's ID.
func (s *Store) InsertEventTrace(in EventTraceInput) (int64, error) {
	var id int64
	err := s.withWriteLock(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin trace tx: %w", err)
		}
		defer tx.Rollback()

		chain, _ := json.Marshal(in.Trace.CausalityChain)
		related, _ := json.Marshal(in.Trace.RelatedServices)
		tracers, _ := json.Marshal(in.Trace.TracersUsed)

		res, err := tx.Exec(`
			INSERT INTO event_traces (timestamp, source, level, severity_score, root_cause, trigger, causality_chain, related_services, tracers_used)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			in.Trace.Timestamp, in.Trace.Source, in.Trace.Level, in.Trace.SeverityScore,
			nullIfEmpty(in.Trace.RootCause), nullIfEmpty(in.Trace.Trigger), chain, related, tracers,
		)
		if err != nil {
			return fmt.Errorf("insert event trace: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return err
		}

		for _, p := range in.Processes {
			if _, err := tx.Exec(`
				INSERT INTO process_traces (trace_id, pid, name, cmdline, parent_pid, memory_rss, memory_vm, cpu_utime, cpu_stime, threads, read_bytes, write_bytes)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				id, p.PID, p.Name, p.Cmdline, p.ParentPID, p.MemoryRSS, p.MemoryVM, p.CPUUTime, p.CPUSTime, p.Threads, p.ReadBytes, p.WriteBytes,
			); err != nil {
				return fmt.Errorf("insert process trace: %w", err)
			}
		}

		for _, n := range in.Networks {
			if _, err := tx.Exec(`
				INSERT INTO network_traces (trace_id, local_addr, local_port, remote_addr, remote_port, state, pid)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				id, n.LocalAddr, n.LocalPort, n.RemoteAddr, n.RemotePort, n.State, n.PID,
			); err != nil {
				return fmt.Errorf("insert network trace: %w", err)
			}
		}

		if in.Error != nil {
			hints, _ := json.Marshal(in.Error.RootCauseHints)
			suggestions, _ := json.Marshal(in.Error.RecoverySuggestions)
			if _, err := tx.Exec(`
				INSERT INTO error_traces (trace_id, category, severity_bump, root_cause_hints, recovery_suggestions)
				VALUES (?, ?, ?, ?, ?)`,
				id, in.Error.Category, in.Error.SeverityBump, hints, suggestions,
			); err != nil {
				return fmt.Errorf("insert error trace: %w", err)
			}
		}

		if in.IP != "" {
			if err := upsertIPReputation(tx, in.IP, in.IPType, in.IsBlacklisted, in.IsWhitelisted, in.FailedLogin, in.Banned, in.Trace.Timestamp); err != nil {
				return err
			}
		}

		return tx.Commit()
	})
	return id, err
}

// upsertIPReputation increments the counters for ip (creating the row on
// first sight) and recomputes ThreatScore per the committed formula:
// clamp(base + 5*min(failed,6) + 20*min(banned,2), 0, 100), where base is
// 90 for a blacklisted address, 10 for a public address, else 0.
func upsertIPReputation(tx *sql.Tx, ip, ipType string, blacklisted, whitelisted, failedLogin, banned bool, ts int64) error {
	var exists bool
	var firstSeen int64
	var totalEvents, failedCount, bannedCount int
	row := tx.QueryRow(`SELECT first_seen, total_events, failed_login_count, banned_count FROM ip_reputation WHERE ip_address = ?`, ip)
	switch err := row.Scan(&firstSeen, &totalEvents, &failedCount, &bannedCount); err {
	case nil:
		exists = true
	case sql.ErrNoRows:
		firstSeen = ts
	default:
		return fmt.Errorf("lookup ip reputation: %w", err)
	}

	totalEvents++
	if failedLogin {
		failedCount++
	}
	if banned {
		bannedCount++
	}
	score := threatScore(ipType, blacklisted, failedCount, bannedCount)

	if exists {
		_, err := tx.Exec(`
			UPDATE ip_reputation SET
				type = ?, is_blacklisted = ?, is_whitelisted = ?, threat_score = ?,
				last_seen = ?, total_events = ?, failed_login_count = ?, banned_count = ?, updated_at = ?
			WHERE ip_address = ?`,
			ipType, blacklisted, whitelisted, score, ts, totalEvents, failedCount, bannedCount, ts, ip,
		)
		return err
	}
	_, err := tx.Exec(`
		INSERT INTO ip_reputation (ip_address, type, is_blacklisted, is_whitelisted, threat_score, first_seen, last_seen, total_events, failed_login_count, banned_count, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ip, ipType, blacklisted, whitelisted, score, firstSeen, ts, totalEvents, failedCount, bannedCount, ts,
	)
	return err
}

func threatScore(ipType string, blacklisted bool, failedCount, bannedCount int) int {
	base := 0
	switch {
	case blacklisted:
		base = 90
	case ipType == "public":
		base = 10
	}
	if failedCount > 6 {
		failedCount = 6
	}
	if bannedCount > 2 {
		bannedCount = 2
	}
	score := base + 5*failedCount + 20*bannedCount
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// GetTraces returns event traces filtered by source (if non-empty) and
// minSeverity, newest first.
func (s *Store) GetTraces(source string, minSeverity int, limit int) ([]model.EventTrace, error) {
	query := `
		SELECT id, timestamp, source, level, severity_score, root_cause, trigger, causality_chain, related_services, tracers_used
		FROM event_traces WHERE severity_score >= ?`
	args := []any{minSeverity}
	if source != "" {
		query += " AND source = ?"
		args = append(args, source)
	}
	query += " ORDER BY timestamp DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query event traces: %w", err)
	}
	defer rows.Close()

	var out []model.EventTrace
	for rows.Next() {
		var t model.EventTrace
		var rootCause, trigger sql.NullString
		var chain, related, tracers []byte
		if err := rows.Scan(&t.ID, &t.Timestamp, &t.Source, &t.Level, &t.SeverityScore, &rootCause, &trigger, &chain, &related, &tracers); err != nil {
			return nil, fmt.Errorf("scan event trace: %w", err)
		}
		t.RootCause, t.Trigger = rootCause.String, trigger.String
		json.Unmarshal(chain, &t.CausalityChain)
		json.Unmarshal(related, &t.RelatedServices)
		json.Unmarshal(tracers, &t.TracersUsed)
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetErrorTraces returns error traces optionally filtered by category,
// newest first, joined against their parent event trace timestamp.
func (s *Store) GetErrorTraces(category string, limit int) ([]model.ErrorTrace, error) {
	query := `
		SELECT et.id, et.trace_id, et.category, et.severity_bump, et.root_cause_hints, et.recovery_suggestions
		FROM error_traces et JOIN event_traces t ON t.id = et.trace_id`
	args := []any{}
	if category != "" {
		query += " WHERE et.category = ?"
		args = append(args, category)
	}
	query += " ORDER BY t.timestamp DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error traces: %w", err)
	}
	defer rows.Close()

	var out []model.ErrorTrace
	for rows.Next() {
		var e model.ErrorTrace
		var hints, suggestions []byte
		if err := rows.Scan(&e.ID, &e.TraceID, &e.Category, &e.SeverityBump, &hints, &suggestions); err != nil {
			return nil, fmt.Errorf("scan error trace: %w", err)
		}
		json.Unmarshal(hints, &e.RootCauseHints)
		json.Unmarshal(suggestions, &e.RecoverySuggestions)
		out = append(out, e)
	}
	return out, rows.Err()
}

// ErrorPattern summarizes how often an error category recurs. The
// recurring-error detector does not use it; it groups log events itself.
type ErrorPattern struct {
	Category string
	Count    int
}

// GetErrorPatterns groups error traces by category within [since, until).
func (s *Store) GetErrorPatterns(since, until int64) ([]ErrorPattern, error) {
	rows, err := s.db.Query(`
		SELECT et.category, COUNT(*) as cnt
		FROM error_traces et JOIN event_traces t ON t.id = et.trace_id
		WHERE t.timestamp >= ? AND t.timestamp < ?
		GROUP BY et.category ORDER BY cnt DESC`, since, until)
	if err != nil {
		return nil, fmt.Errorf("query error patterns: %w", err)
	}
	defer rows.Close()

	var out []ErrorPattern
	for rows.Next() {
		var p ErrorPattern
		if err := rows.Scan(&p.Category, &p.Count); err != nil {
			return nil, fmt.Errorf("scan error pattern: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetIPReputation looks up a single address's reputation record. Returns
// (nil, nil) if the address has never been seen.
func (s *Store) GetIPReputation(ip string) (*model.IPReputation, error) {
	row := s.db.QueryRow(`
		SELECT ip_address, type, is_whitelisted, is_blacklisted, threat_score, first_seen, last_seen, total_events, failed_login_count, banned_count, updated_at
		FROM ip_reputation WHERE ip_address = ?`, ip)
	var r model.IPReputation
	switch err := row.Scan(&r.IP, &r.Type, &r.IsWhitelisted, &r.IsBlacklisted, &r.ThreatScore, &r.FirstSeen, &r.LastSeen, &r.TotalEvents, &r.FailedLoginCount, &r.BannedCount, &r.UpdatedAt); err {
	case nil:
		return &r, nil
	case sql.ErrNoRows:
		return nil, nil
	default:
		return nil, fmt.Errorf("query ip reputation: %w", err)
	}
}

// GetHighThreatIPs returns reputations with ThreatScore >= minScore,
// ordered highest-threat and most-recently-seen first.
func (s *Store) GetHighThreatIPs(minScore int, limit int) ([]model.IPReputation, error) {
	query := `
		SELECT ip_address, type, is_whitelisted, is_blacklisted, threat_score, first_seen, last_seen, total_events, failed_login_count, banned_count, updated_at
		FROM ip_reputation WHERE threat_score >= ?
		ORDER BY threat_score DESC, last_seen DESC`
	args := []any{minScore}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query high threat ips: %w", err)
	}
	defer rows.Close()

	var out []model.IPReputation
	for rows.Next() {
		var r model.IPReputation
		if err := rows.Scan(&r.IP, &r.Type, &r.IsWhitelisted, &r.IsBlacklisted, &r.ThreatScore, &r.FirstSeen, &r.LastSeen, &r.TotalEvents, &r.FailedLoginCount, &r.BannedCount, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan ip reputation: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// isErrorLevel reports whether level denotes an error-severity log line,
// used by aggregation to split total/error/warning event counts.
func isErrorLevel(level string) bool {
	return strings.EqualFold(level, "error") || strings.EqualFold(level, "critical")
}

func isWarningLevel(level string) bool {
	return strings.EqualFold(level, "warning") || strings.EqualFold(level, "warn")
}
