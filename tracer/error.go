package tracer

import (
	"regexp"
	"strings"

	"github.com/logly/logly/model"
)

type errorPattern struct {
	errorType string
	category  string
	re        *regexp.Regexp
}

// errorPatterns is checked in order; the first match wins, mirroring
// error_tracer.py's PATTERNS dict iteration plus _categorize_error.
var errorPatterns = []errorPattern{
	{"python_exception", "application", regexp.MustCompile(`(?i)\w+(Error|Exception):\s*.+`)},
	{"db_connection", "database", regexp.MustCompile(`(?i)(connection|connect).+(refused|failed|timeout)`)},
	{"db_deadlock", "database", regexp.MustCompile(`(?i)deadlock`)},
	{"db_query", "database", regexp.MustCompile(`(?i)(sql|query).+(error|failed|syntax)`)},
	{"out_of_memory", "resource", regexp.MustCompile(`(?i)(out of memory|OOM|MemoryError)`)},
	{"memory_leak", "resource", regexp.MustCompile(`(?i)memory.+(leak|exhausted)`)},
	{"disk_full", "resource", regexp.MustCompile(`(?i)(no space|disk full|ENOSPC)`)},
	{"disk_io", "resource", regexp.MustCompile(`(?i)(I/O error|disk.+error)`)},
	{"connection_timeout", "network", regexp.MustCompile(`(?i)connection.+timeout`)},
	{"connection_refused", "network", regexp.MustCompile(`(?i)connection.+refused`)},
	{"network_unreachable", "network", regexp.MustCompile(`(?i)network.+unreachable`)},
	{"permission_denied", "security", regexp.MustCompile(`(?i)(permission denied|EACCES)`)},
	{"file_not_found", "filesystem", regexp.MustCompile(`(?i)(file not found|ENOENT|No such file)`)},
	{"too_many_files", "resource", regexp.MustCompile(`(?i)(too many.+files|EMFILE)`)},
	{"resource_unavailable", "resource", regexp.MustCompile(`(?i)resource.+(unavailable|busy)`)},
	{"segmentation_fault", "system", regexp.MustCompile(`(?i)segmentation fault|SIGSEGV`)},
	{"assertion_failed", "application", regexp.MustCompile(`(?i)assertion.+failed`)},
}

var levelSeverity = map[string]int{
	"DEBUG": 0, "INFO": 10, "WARNING": 30, "ERROR": 60, "CRITICAL": 90, "FATAL": 100,
}

var criticalKeywords = []string{"fatal", "critical", "crash", "panic", "segfault", "out of memory", "disk full", "deadlock"}

// TraceError classifies an error-level log message and produces an
// ErrorTrace with severity bump, root-cause hints, and recovery
// suggestions. The caller adds SeverityBump to the EventTrace's base
// severity score, it is not a final 0-100 value on its own.
func TraceError(message, level string) model.ErrorTrace {
	var category string
	for _, p := range errorPatterns {
		if p.re.MatchString(message) {
			category = p.category
			break
		}
	}
	if category == "" {
		category = "unknown"
	}

	sev := calculateSeverity(level, message)
	return model.ErrorTrace{
		Category:            category,
		SeverityBump:        sev,
		RootCauseHints:      rootCauseHints(category, message),
		RecoverySuggestions: recoverySuggestions(category),
	}
}

func calculateSeverity(level, message string) int {
	score, ok := levelSeverity[strings.ToUpper(level)]
	if !ok {
		score = 50
	}
	lower := strings.ToLower(message)
	for _, kw := range criticalKeywords {
		if strings.Contains(lower, kw) {
			score += 15
			break
		}
	}
	if strings.Contains(lower, "database") || strings.Contains(lower, "sql") || strings.Contains(lower, "query") {
		score += 10
	}
	if score > 100 {
		score = 100
	}
	return score
}

func rootCauseHints(category, message string) []string {
	lower := strings.ToLower(message)
	switch category {
	case "database":
		if strings.Contains(lower, "deadlock") {
			return []string{
				"Multiple transactions competing for the same resources",
				"Review transaction isolation levels",
			}
		}
		return []string{
			"Database service may be down or unreachable",
			"Check network connectivity to the database server",
		}
	case "resource":
		switch {
		case strings.Contains(lower, "memory"):
			return []string{"Application consuming too much memory", "Check for memory leaks"}
		case strings.Contains(lower, "disk") || strings.Contains(lower, "space"):
			return []string{"Filesystem has run out of space", "Check for large log or temp files"}
		case strings.Contains(lower, "too many") || strings.Contains(lower, "emfile"):
			return []string{"Process has exceeded its open file limit", "Check ulimit settings"}
		}
	case "network":
		switch {
		case strings.Contains(lower, "timeout"):
			return []string{"Remote service not responding in time", "Service may be overloaded"}
		case strings.Contains(lower, "refused"):
			return []string{"Service not listening on the expected port", "Firewall may be blocking the connection"}
		}
	case "security":
		return []string{"Insufficient permissions to access the resource", "Check file/directory ownership"}
	}
	return nil
}

func recoverySuggestions(category string) []string {
	switch category {
	case "database":
		return []string{"Add connection retry with exponential backoff", "Add database connection pooling"}
	case "resource":
		return []string{"Add resource usage monitoring and alerting", "Implement automatic log rotation"}
	case "network":
		return []string{"Add retry with a circuit breaker", "Add connection timeouts"}
	default:
		return []string{"Add detailed logging around the failure site", "Set up alerting for this error type"}
	}
}
