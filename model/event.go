package model

// Known LogEvent.Action values. Parsers are not restricted to this list —
// it documents the values callers should expect to see most often.
const (
	ActionBan             = "ban"
	ActionUnban           = "unban"
	ActionFound           = "found"
	ActionFailedLogin     = "failed_login"
	ActionSuccessfulLogin = "successful_login"
	ActionHTTPRequest     = "http_request"
)

// Known LogEvent.Source values.
const (
	SourceFail2Ban = "fail2ban"
	SourceAuth     = "auth"
	SourceSyslog   = "syslog"
	SourceNginx    = "nginx"
	SourceDjango   = "django"
)

// UnknownIP is used when a log line is known to involve a remote party but
// no IP address could be extracted from it. Downstream consumers must
// treat this as "no IP", not as a real address.
const UnknownIP = "unknown"

// LogEvent is one parsed line from a log source.
type LogEvent struct {
	ID        int64  `json:"id,omitempty"`
	Timestamp int64  `json:"timestamp"`
	Source    string `json:"source"`
	Message   string `json:"message"`

	Level   string `json:"level,omitempty"`
	IP      string `json:"ip_address,omitempty"`
	User    string `json:"user,omitempty"`
	Service string `json:"service,omitempty"`
	Action  string `json:"action,omitempty"`

	// Metadata is an opaque, JSON-compatible bag of extra fields. Missing
	// keys must be treated as absent by consumers, never as an error.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// SeverityBand discretizes a 0-100 severity score, per the bands in the
// data model: low [0,30], medium [31,60], high [61,80], critical [81,100].
func SeverityBand(score int) string {
	switch {
	case score >= 81:
		return "critical"
	case score >= 61:
		return "high"
	case score >= 31:
		return "medium"
	default:
		return "low"
	}
}

// EventTrace is enrichment metadata attached to a LogEvent on demand.
type EventTrace struct {
	ID        int64  `json:"id,omitempty"`
	Timestamp int64  `json:"timestamp"`
	Source    string `json:"source"`
	Level     string `json:"level"`

	SeverityScore   int      `json:"severity_score"`
	RootCause       string   `json:"root_cause,omitempty"`
	Trigger         string   `json:"trigger,omitempty"`
	CausalityChain  []string `json:"causality_chain,omitempty"`
	RelatedServices []string `json:"related_services,omitempty"`
	TracersUsed     []string `json:"tracers_used,omitempty"`
}

// ProcessTrace resolves a service name to a live process, keyed by a
// foreign TraceID back to the owning EventTrace.
type ProcessTrace struct {
	ID      int64 `json:"id,omitempty"`
	TraceID int64 `json:"trace_id"`

	PID        int    `json:"pid"`
	Name       string `json:"name"`
	Cmdline    string `json:"cmdline"`
	ParentPID  int    `json:"parent_pid"`
	MemoryRSS  uint64 `json:"memory_rss"`
	MemoryVM   uint64 `json:"memory_vm"`
	CPUUTime   uint64 `json:"cpu_utime"`
	CPUSTime   uint64 `json:"cpu_stime"`
	Threads    int    `json:"threads"`
	ReadBytes  uint64 `json:"read_bytes"`
	WriteBytes uint64 `json:"write_bytes"`
}

// NetworkTrace is a snapshot of one TCP connection relevant to an
// EventTrace, keyed by a foreign TraceID.
type NetworkTrace struct {
	ID      int64 `json:"id,omitempty"`
	TraceID int64 `json:"trace_id"`

	LocalAddr  string `json:"local_addr"`
	LocalPort  int    `json:"local_port"`
	RemoteAddr string `json:"remote_addr"`
	RemotePort int    `json:"remote_port"`
	State      string `json:"state"`
	PID        int    `json:"pid,omitempty"`
}

// ErrorTrace is the taxonomy classification of an error-level event,
// keyed by a foreign TraceID.
type ErrorTrace struct {
	ID      int64 `json:"id,omitempty"`
	TraceID int64 `json:"trace_id"`

	Category            string   `json:"category"`
	SeverityBump        int      `json:"severity_bump"`
	RootCauseHints       []string `json:"root_cause_hints,omitempty"`
	RecoverySuggestions  []string `json:"recovery_suggestions,omitempty"`
}

// IPReputation is the accumulated, weighted behavioral record of a single
// IP address. Keyed uniquely by IP; mutated in place with monotonic
// counters and a recomputed ThreatScore.
type IPReputation struct {
	IP string `json:"ip_address"`

	Type          string `json:"type"` // localhost, private, cloud, public
	IsWhitelisted bool   `json:"is_whitelisted"`
	IsBlacklisted bool   `json:"is_blacklisted"`
	ThreatScore   int    `json:"threat_score"`

	FirstSeen        int64 `json:"first_seen"`
	LastSeen         int64 `json:"last_seen"`
	TotalEvents      int   `json:"total_events"`
	FailedLoginCount int   `json:"failed_login_count"`
	BannedCount      int   `json:"banned_count"`
	UpdatedAt        int64 `json:"updated_at"`
}
