// Package tailer incrementally reads configured log files and turns new
// lines into model.LogEvent values via source-specific regex parsers.
package tailer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/logly/logly/model"
)

var (
	fail2banBanRe   = regexp.MustCompile(`\[(?P<jail>[\w-]+)\]\s+(?P<action>Ban|Unban)\s+(?P<ip>[\d.]+)`)
	fail2banFoundRe = regexp.MustCompile(`\[(?P<jail>[\w-]+)\]\s+Found\s+(?P<ip>[\d.]+)`)
	authFailedRe    = regexp.MustCompile(`Failed password for (?:invalid user )?(?P<user>\w+) from (?P<ip>[\d.]+)`)
	authAcceptedRe  = regexp.MustCompile(`Accepted (?P<method>\w+) for (?P<user>\w+) from (?P<ip>[\d.]+)`)
	syslogHeaderRe  = regexp.MustCompile(`(?P<timestamp>\w+\s+\d+\s+[\d:]+)\s+(?P<host>\S+)\s+(?P<service>\S+?)(?:\[\d+\])?\s*:\s*(?P<message>.*)`)
	djangoLevelRe   = regexp.MustCompile(`^\[(?P<level>\w+)\]\s+(?P<message>.*)`)
	nginxRe         = regexp.MustCompile(`(?P<ip>[\d.]+)\s+-\s+-\s+\[(?P<timestamp>[^\]]+)\]\s+"(?P<request>[^"]*)"\s+(?P<status>\d+)\s+(?P<size>\d+)`)
)

// ParseFunc turns one raw log line into a LogEvent, or returns nil if the
// line carries nothing worth recording.
type ParseFunc func(line string) *model.LogEvent

// ParserFor returns the parser registered for a source name, falling
// back to parseGeneric for anything unrecognized — dispatch mirrors
// log_parser.py's _parse_line if/elif chain.
func ParserFor(source string) ParseFunc {
	switch source {
	case model.SourceFail2Ban:
		return parseFail2Ban
	case model.SourceAuth:
		return parseAuthLog
	case model.SourceSyslog:
		return parseSyslog
	case model.SourceDjango:
		return parseDjango
	case model.SourceNginx:
		return parseNginx
	default:
		return func(line string) *model.LogEvent { return parseGeneric(source, line) }
	}
}

func namedGroups(re *regexp.Regexp, line string) map[string]string {
	m := re.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for i, name := range re.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		out[name] = m[i]
	}
	return out
}

func parseFail2Ban(line string) *model.LogEvent {
	if g := namedGroups(fail2banBanRe, line); g != nil {
		action := strings.ToLower(g["action"])
		level := "INFO"
		if action == "ban" {
			level = "WARNING"
		}
		return &model.LogEvent{
			Source:  model.SourceFail2Ban,
			Message: line,
			Level:   level,
			IP:      g["ip"],
			Service: g["jail"],
			Action:  action,
			Metadata: map[string]any{"jail": g["jail"]},
		}
	}
	if g := namedGroups(fail2banFoundRe, line); g != nil {
		return &model.LogEvent{
			Source:  model.SourceFail2Ban,
			Message: line,
			Level:   "INFO",
			IP:      g["ip"],
			Service: g["jail"],
			Action:  model.ActionFound,
			Metadata: map[string]any{"jail": g["jail"]},
		}
	}
	return nil
}

func parseAuthLog(line string) *model.LogEvent {
	if g := namedGroups(authFailedRe, line); g != nil {
		return &model.LogEvent{
			Source:  model.SourceAuth,
			Message: line,
			Level:   "WARNING",
			IP:      g["ip"],
			User:    g["user"],
			Service: "ssh",
			Action:  model.ActionFailedLogin,
		}
	}
	if g := namedGroups(authAcceptedRe, line); g != nil {
		return &model.LogEvent{
			Source:  model.SourceAuth,
			Message: line,
			Level:   "INFO",
			IP:      g["ip"],
			User:    g["user"],
			Service: "ssh",
			Action:  model.ActionSuccessfulLogin,
			Metadata: map[string]any{"method": g["method"]},
		}
	}
	return nil
}

func parseSyslog(line string) *model.LogEvent {
	level := syslogLevel(line)

	if g := namedGroups(syslogHeaderRe, line); g != nil {
		return &model.LogEvent{
			Source:  model.SourceSyslog,
			Message: g["message"],
			Level:   level,
			Service: g["service"],
			Metadata: map[string]any{"host": g["host"], "full_line": line},
		}
	}

	if level == "ERROR" || level == "WARNING" {
		return &model.LogEvent{Source: model.SourceSyslog, Message: line, Level: level}
	}
	return nil
}

func syslogLevel(line string) string {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "error") || strings.Contains(lower, "fail"):
		return "ERROR"
	case strings.Contains(lower, "warning") || strings.Contains(lower, "warn"):
		return "WARNING"
	default:
		return "INFO"
	}
}

func parseDjango(line string) *model.LogEvent {
	if g := namedGroups(djangoLevelRe, line); g != nil {
		return &model.LogEvent{
			Source:  model.SourceDjango,
			Message: g["message"],
			Level:   strings.ToUpper(g["level"]),
			Service: "django",
		}
	}
	if strings.TrimSpace(line) != "" {
		return &model.LogEvent{Source: model.SourceDjango, Message: line, Level: "INFO", Service: "django"}
	}
	return nil
}

func parseNginx(line string) *model.LogEvent {
	g := namedGroups(nginxRe, line)
	if g == nil {
		return nil
	}
	status, _ := strconv.Atoi(g["status"])
	size, _ := strconv.Atoi(g["size"])
	level := "INFO"
	switch {
	case status >= 500:
		level = "ERROR"
	case status >= 400:
		level = "WARNING"
	}
	return &model.LogEvent{
		Source:  model.SourceNginx,
		Message: line,
		Level:   level,
		IP:      g["ip"],
		Service: "nginx",
		Action:  model.ActionHTTPRequest,
		Metadata: map[string]any{
			"request": g["request"],
			"status":  status,
			"size":    size,
		},
	}
}

func parseGeneric(source, line string) *model.LogEvent {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	lower := strings.ToLower(line)
	level := "INFO"
	switch {
	case strings.Contains(lower, "critical") || strings.Contains(lower, "fatal"):
		level = "CRITICAL"
	case strings.Contains(lower, "error") || strings.Contains(lower, "err"):
		level = "ERROR"
	case strings.Contains(lower, "warning") || strings.Contains(lower, "warn"):
		level = "WARNING"
	}
	return &model.LogEvent{Source: source, Message: line, Level: level}
}
