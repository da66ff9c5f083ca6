package tracer

import (
	"regexp"
	"strings"

	"github.com/logly/logly/model"
)

// servicePatterns identify which known service a log line's Service
// field belongs to, used to populate RelatedServices. Grounded on
// event_tracer.py's _service_patterns table.
var servicePatterns = map[string]*regexp.Regexp{
	"nginx":     regexp.MustCompile(`(?i)nginx(?:\[\d+\])?`),
	"apache":    regexp.MustCompile(`(?i)apache2?(?:\[\d+\])?`),
	"django":    regexp.MustCompile(`(?i)(?:django|gunicorn|uwsgi)(?:\[\d+\])?`),
	"postgresql": regexp.MustCompile(`(?i)postgres(?:ql)?(?:\[\d+\])?`),
	"mysql":     regexp.MustCompile(`(?i)mysql(?:d)?(?:\[\d+\])?`),
	"redis":     regexp.MustCompile(`(?i)redis(?:-server)?(?:\[\d+\])?`),
	"ssh":       regexp.MustCompile(`(?i)sshd?(?:\[\d+\])?`),
	"fail2ban":  regexp.MustCompile(`(?i)fail2ban(?:-server)?(?:\[\d+\])?`),
	"systemd":   regexp.MustCompile(`(?i)systemd(?:\[\d+\])?`),
	"docker":    regexp.MustCompile(`(?i)docker(?:d)?(?:\[\d+\])?`),
}

var eventLevelSeverity = map[string]int{
	"DEBUG": 0, "INFO": 10, "WARNING": 30, "ERROR": 60, "CRITICAL": 90,
}

// TracerCollector composes the individual tracers, struct-of-
// collaborators style rather than a shared base class — mirroring how
// engine.Engine composes *collector.Registry and friends as named
// fields.
type TracerCollector struct {
	IP *IPTracer
}

// NewTracerCollector wires a TracerCollector with the given static
// IP block/allow lists.
func NewTracerCollector(blacklist, whitelist []string) *TracerCollector {
	return &TracerCollector{IP: NewIPTracer(blacklist, whitelist)}
}

// TraceInput bundles everything Trace produces for a single event: the
// EventTrace itself plus any cascade rows a caller should persist.
type TraceInput struct {
	Trace     model.EventTrace
	Processes []model.ProcessTrace
	Networks  []model.NetworkTrace
	Error     *model.ErrorTrace

	IP            string
	IPType        string
	IsBlacklisted bool
	IsWhitelisted bool
	FailedLogin   bool
	Banned        bool
}

// Trace builds the full enrichment for one parsed log event: severity
// score, related services, an error classification when the event is
// error-level, process/network context when a PID or remote IP is
// available, and the IP reputation signal a caller should persist
// alongside it.
func (tc *TracerCollector) Trace(e model.LogEvent, pid int) TraceInput {
	tracersUsed := []string{"event"}
	sev := tc.severity(e)

	in := TraceInput{
		Trace: model.EventTrace{
			Timestamp:       e.Timestamp,
			Source:          e.Source,
			Level:           e.Level,
			RelatedServices: relatedServices(e),
		},
	}

	if isErrorLevel(e.Level) {
		et := TraceError(e.Message, e.Level)
		sev += et.SeverityBump
		in.Error = &et
		tracersUsed = append(tracersUsed, "error")
	}

	if e.IP != "" && e.IP != model.UnknownIP {
		ipType, blacklisted, whitelisted := tc.IP.Classify(e.IP)
		in.IP = e.IP
		in.IPType = ipType
		in.IsBlacklisted = blacklisted
		in.IsWhitelisted = whitelisted
		in.FailedLogin = e.Action == model.ActionFailedLogin
		in.Banned = e.Action == model.ActionBan
		in.Networks = ConnectionsForIP(e.IP)
		tracersUsed = append(tracersUsed, "ip")
		if len(in.Networks) > 0 {
			tracersUsed = append(tracersUsed, "network")
		}
		if blacklisted {
			sev += 20
		}
	}

	if pid > 0 {
		if pt, err := TraceProcess(pid); err == nil && pt != nil {
			in.Processes = []model.ProcessTrace{*pt}
			tracersUsed = append(tracersUsed, "process")
		}
	}

	if sev > 100 {
		sev = 100
	}
	in.Trace.SeverityScore = sev
	in.Trace.TracersUsed = tracersUsed
	return in
}

func (tc *TracerCollector) severity(e model.LogEvent) int {
	score, ok := eventLevelSeverity[strings.ToUpper(e.Level)]
	if !ok {
		score = 10
	}
	switch e.Action {
	case model.ActionBan, model.ActionFailedLogin:
		score += 20
	}
	return score
}

func relatedServices(e model.LogEvent) []string {
	var out []string
	seen := map[string]bool{}
	for name, re := range servicePatterns {
		if re.MatchString(e.Service) || re.MatchString(e.Message) {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}

func isErrorLevel(level string) bool {
	l := strings.ToUpper(level)
	return l == "ERROR" || l == "CRITICAL" || l == "FATAL"
}
