package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS system_metrics (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp INTEGER NOT NULL,
	cpu_percent REAL,
	cpu_count INTEGER,
	memory_total INTEGER,
	memory_available INTEGER,
	memory_percent REAL,
	disk_total INTEGER,
	disk_used INTEGER,
	disk_percent REAL,
	disk_read_bytes INTEGER,
	disk_write_bytes INTEGER,
	load_1min REAL,
	load_5min REAL,
	load_15min REAL
);
CREATE INDEX IF NOT EXISTS idx_system_metrics_ts ON system_metrics(timestamp);

CREATE TABLE IF NOT EXISTS network_metrics (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp INTEGER NOT NULL,
	bytes_sent INTEGER,
	bytes_recv INTEGER,
	packets_sent INTEGER,
	packets_recv INTEGER,
	errors_in INTEGER,
	errors_out INTEGER,
	drops_in INTEGER,
	drops_out INTEGER,
	connections_established INTEGER,
	connections_listen INTEGER,
	connections_time_wait INTEGER
);
CREATE INDEX IF NOT EXISTS idx_network_metrics_ts ON network_metrics(timestamp);

CREATE TABLE IF NOT EXISTS log_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp INTEGER NOT NULL,
	source TEXT NOT NULL,
	message TEXT NOT NULL,
	level TEXT,
	ip_address TEXT,
	user TEXT,
	service TEXT,
	action TEXT,
	metadata TEXT
);
CREATE INDEX IF NOT EXISTS idx_log_events_ts ON log_events(timestamp);
CREATE INDEX IF NOT EXISTS idx_log_events_source ON log_events(source);
CREATE INDEX IF NOT EXISTS idx_log_events_ip ON log_events(ip_address);

CREATE TABLE IF NOT EXISTS event_traces (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp INTEGER NOT NULL,
	source TEXT NOT NULL,
	level TEXT NOT NULL,
	severity_score INTEGER NOT NULL,
	root_cause TEXT,
	trigger TEXT,
	causality_chain TEXT,
	related_services TEXT,
	tracers_used TEXT
);
CREATE INDEX IF NOT EXISTS idx_event_traces_ts ON event_traces(timestamp);
CREATE INDEX IF NOT EXISTS idx_event_traces_severity ON event_traces(severity_score);

CREATE TABLE IF NOT EXISTS process_traces (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	trace_id INTEGER NOT NULL REFERENCES event_traces(id),
	pid INTEGER NOT NULL,
	name TEXT,
	cmdline TEXT,
	parent_pid INTEGER,
	memory_rss INTEGER,
	memory_vm INTEGER,
	cpu_utime INTEGER,
	cpu_stime INTEGER,
	threads INTEGER,
	read_bytes INTEGER,
	write_bytes INTEGER
);
CREATE INDEX IF NOT EXISTS idx_process_traces_trace ON process_traces(trace_id);

CREATE TABLE IF NOT EXISTS network_traces (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	trace_id INTEGER NOT NULL REFERENCES event_traces(id),
	local_addr TEXT,
	local_port INTEGER,
	remote_addr TEXT,
	remote_port INTEGER,
	state TEXT,
	pid INTEGER
);
CREATE INDEX IF NOT EXISTS idx_network_traces_trace ON network_traces(trace_id);

CREATE TABLE IF NOT EXISTS error_traces (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	trace_id INTEGER NOT NULL REFERENCES event_traces(id),
	category TEXT NOT NULL,
	severity_bump INTEGER,
	root_cause_hints TEXT,
	recovery_suggestions TEXT
);
CREATE INDEX IF NOT EXISTS idx_error_traces_trace ON error_traces(trace_id);
CREATE INDEX IF NOT EXISTS idx_error_traces_category ON error_traces(category);

CREATE TABLE IF NOT EXISTS ip_reputation (
	ip_address TEXT PRIMARY KEY,
	type TEXT,
	is_whitelisted INTEGER NOT NULL DEFAULT 0,
	is_blacklisted INTEGER NOT NULL DEFAULT 0,
	threat_score INTEGER NOT NULL DEFAULT 0,
	first_seen INTEGER NOT NULL,
	last_seen INTEGER NOT NULL,
	total_events INTEGER NOT NULL DEFAULT 0,
	failed_login_count INTEGER NOT NULL DEFAULT 0,
	banned_count INTEGER NOT NULL DEFAULT 0,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ip_reputation_threat ON ip_reputation(threat_score);

CREATE TABLE IF NOT EXISTS hourly_aggregates (
	hour_ts INTEGER PRIMARY KEY,
	avg_cpu_percent REAL,
	max_cpu_percent REAL,
	avg_memory_percent REAL,
	max_memory_percent REAL,
	avg_disk_percent REAL,
	max_disk_percent REAL,
	net_bytes_sent_delta INTEGER,
	net_bytes_recv_delta INTEGER,
	total_events INTEGER,
	error_events INTEGER,
	warning_events INTEGER
);

CREATE TABLE IF NOT EXISTS daily_aggregates (
	date TEXT PRIMARY KEY,
	avg_cpu_percent REAL,
	max_cpu_percent REAL,
	avg_memory_percent REAL,
	max_memory_percent REAL,
	net_bytes_sent_total INTEGER,
	net_bytes_recv_total INTEGER,
	total_events INTEGER,
	total_errors INTEGER,
	distinct_ips INTEGER,
	distinct_users INTEGER
);
`

func (s *Store) initSchema() error {
	_, err := s.db.Exec(schemaSQL)
	return err
}
