package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/logly/logly/model"
)

// InsertLogEvent persists one parsed log line.
func (s *Store) InsertLogEvent(e model.LogEvent) (int64, error) {
	var meta []byte
	if len(e.Metadata) > 0 {
		var err error
		meta, err = json.Marshal(e.Metadata)
		if err != nil {
			return 0, fmt.Errorf("marshal event metadata: %w", err)
		}
	}

	var id int64
	err := s.withWriteLock(func() error {
		res, err := s.db.Exec(`
			INSERT INTO log_events (timestamp, source, message, level, ip_address, user, service, action, metadata)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.Timestamp, e.Source, e.Message, e.Level, nullIfEmpty(e.IP), nullIfEmpty(e.User), nullIfEmpty(e.Service), nullIfEmpty(e.Action), meta,
		)
		if err != nil {
			return fmt.Errorf("insert log event: %w", err)
		}
		id, err = res.LastInsertId()
		return err
	})
	return id, err
}

// GetLogEvents returns log events with timestamp in [since, until),
// optionally filtered by source, ordered oldest first.
func (s *Store) GetLogEvents(since, until int64, source string) ([]model.LogEvent, error) {
	query := `
		SELECT id, timestamp, source, message, level, ip_address, user, service, action, metadata
		FROM log_events
		WHERE timestamp >= ? AND timestamp < ?`
	args := []any{since, until}
	if source != "" {
		query += " AND source = ?"
		args = append(args, source)
	}
	query += " ORDER BY timestamp ASC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query log events: %w", err)
	}
	defer rows.Close()

	var out []model.LogEvent
	for rows.Next() {
		var e model.LogEvent
		var level, ip, user, service, action sql.NullString
		var meta []byte
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Source, &e.Message, &level, &ip, &user, &service, &action, &meta); err != nil {
			return nil, fmt.Errorf("scan log event: %w", err)
		}
		e.Level, e.IP, e.User, e.Service, e.Action = level.String, ip.String, user.String, service.String, action.String
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &e.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal event metadata: %w", err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
