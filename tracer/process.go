package tracer

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/logly/logly/model"
	"github.com/logly/logly/util"
)

// TraceProcess reads /proc/<pid>/status and /proc/<pid>/io into a
// ProcessTrace. Returns (nil, nil) if the process no longer exists —
// that's routine, not an error, since processes named in a trace often
// exit before the trace is built.
func TraceProcess(pid int) (*model.ProcessTrace, error) {
	base := fmt.Sprintf("/proc/%d", pid)
	if _, err := os.Stat(base); os.IsNotExist(err) {
		return nil, nil
	}

	status, err := util.ParseKeyValueFile(base + "/status")
	if err != nil {
		return nil, fmt.Errorf("read %s/status: %w", base, err)
	}

	pt := &model.ProcessTrace{
		PID:       pid,
		Name:      status["Name"],
		ParentPID: util.ParseInt(status["PPid"]),
		MemoryVM:  parseStatusKB(status["VmSize"]),
		MemoryRSS: parseStatusKB(status["VmRSS"]),
		Threads:   util.ParseInt(status["Threads"]),
	}

	if cmdline, err := util.ReadFileString(base + "/cmdline"); err == nil {
		pt.Cmdline = strings.ReplaceAll(strings.TrimRight(cmdline, "\x00"), "\x00", " ")
	}

	if stat, err := util.ReadFileString(base + "/stat"); err == nil {
		fields := strings.Fields(stat)
		if len(fields) > 14 {
			pt.CPUUTime = util.ParseUint64(fields[13])
			pt.CPUSTime = util.ParseUint64(fields[14])
		}
	}

	if io, err := util.ParseKeyValueFile(base + "/io"); err == nil {
		pt.ReadBytes = util.ParseUint64(io["read_bytes"])
		pt.WriteBytes = util.ParseUint64(io["write_bytes"])
	}

	return pt, nil
}

// parseStatusKB parses a /proc/<pid>/status value like "1234 kB" into bytes.
func parseStatusKB(s string) uint64 {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, " kB")
	v, _ := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	return v * 1024
}
