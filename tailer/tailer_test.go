package tailer

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestPollReadsOnlyNewLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "auth.log")
	writeFile(t, path, "Accepted password for alice from 10.0.0.5\n")

	tl := New([]Source{{Name: "auth", Path: path, Enabled: true}})

	events, err := tl.Poll()
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("first Poll() returned %d events, want 1", len(events))
	}

	// Nothing new written — second poll should be empty.
	events, err = tl.Poll()
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("second Poll() returned %d events, want 0", len(events))
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	if _, err := f.WriteString("Failed password for invalid user bob from 10.0.0.6\n"); err != nil {
		t.Fatalf("WriteString() error = %v", err)
	}
	f.Close()

	events, err = tl.Poll()
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if len(events) != 1 || events[0].Action != "failed_login" {
		t.Fatalf("third Poll() = %+v, want one failed_login event", events)
	}
}

func TestPollDetectsRotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "syslog")
	writeFile(t, path, "Jun 1 12:00:00 host service[123]: something happened with a warning\n")

	tl := New([]Source{{Name: "syslog", Path: path, Enabled: true}})
	if _, err := tl.Poll(); err != nil {
		t.Fatalf("Poll() error = %v", err)
	}

	// Simulate rotation: new, shorter file at the same path.
	writeFile(t, path, "Jun 1 12:05:00 host sshd: error\n")
	events, err := tl.Poll()
	if err != nil {
		t.Fatalf("Poll() after rotation error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Poll() after rotation returned %+v, want the one line of the new file", events)
	}
}

func TestPollSkipsMissingFile(t *testing.T) {
	tl := New([]Source{{Name: "nginx", Path: "/does/not/exist.log", Enabled: true}})
	events, err := tl.Poll()
	if err != nil {
		t.Fatalf("Poll() error = %v, want nil for a missing source file", err)
	}
	if len(events) != 0 {
		t.Fatalf("Poll() = %+v, want no events", events)
	}
}

func TestParseFail2BanBanAndFound(t *testing.T) {
	ban := parseFail2Ban("2026-07-30 10:00:00 fail2ban.actions [1234]: [sshd] Ban 198.51.100.7")
	if ban == nil || ban.Action != "ban" || ban.IP != "198.51.100.7" {
		t.Fatalf("parseFail2Ban(ban) = %+v, want action=ban ip=198.51.100.7", ban)
	}

	found := parseFail2Ban("2026-07-30 10:00:00 fail2ban.filter [1234]: [sshd] Found 198.51.100.7")
	if found == nil || found.Action != "found" {
		t.Fatalf("parseFail2Ban(found) = %+v, want action=found", found)
	}
}

func TestParseNginxStatusSeverity(t *testing.T) {
	line := `203.0.113.9 - - [30/Jul/2026:10:00:00 +0000] "GET /x HTTP/1.1" 503 128 "-" "curl"`
	e := parseNginx(line)
	if e == nil || e.Level != "ERROR" {
		t.Fatalf("parseNginx(503) = %+v, want level=ERROR", e)
	}
}
