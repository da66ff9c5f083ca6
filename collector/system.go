package collector

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/logly/logly/model"
	"github.com/logly/logly/util"
)

// sampleDeadline bounds every /proc read and the df-equivalent statfs
// call. /proc reads are normally instantaneous; the bound exists so a
// wedged filesystem never blocks the scheduler loop.
const sampleDeadline = 2 * time.Second

// cpuJiffies is one /proc/stat "cpu " line, in USER_HZ units.
type cpuJiffies struct {
	user, nice, system, idle, iowait, irq, softirq, steal uint64
}

func (c cpuJiffies) active() uint64 {
	return c.user + c.nice + c.system + c.irq + c.softirq + c.steal
}

func (c cpuJiffies) total() uint64 {
	return c.active() + c.idle + c.iowait
}

// SystemSampler samples CPU, memory, disk, and load average. Its first
// Sample call always reports a nil CPUPercent, since a jiffy delta
// needs two readings; every subsequent call has one.
type SystemSampler struct {
	diskPath string

	mu       sync.Mutex
	lastCPU  *cpuJiffies
	lastDisk *diskIOCounters
	lastAt   time.Time
}

// NewSystemSampler builds a sampler that reports disk usage/IO for
// diskPath (e.g. "/").
func NewSystemSampler(diskPath string) *SystemSampler {
	return &SystemSampler{diskPath: diskPath}
}

func (s *SystemSampler) Name() string    { return "system" }
func (s *SystemSampler) Enabled() bool   { return true }

// Sample reads /proc/stat, /proc/meminfo, /proc/loadavg, and the
// diskPath filesystem's usage/IO counters, returning a populated
// model.SystemMetric.
func (s *SystemSampler) Sample(ctx context.Context) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, sampleDeadline)
	defer cancel()

	done := make(chan struct{})
	var m model.SystemMetric
	var err error
	go func() {
		defer close(done)
		m, err = s.sampleOnce()
	}()

	select {
	case <-done:
		return m, err
	case <-ctx.Done():
		return model.SystemMetric{}, fmt.Errorf("system sample: %w", ctx.Err())
	}
}

func (s *SystemSampler) sampleOnce() (model.SystemMetric, error) {
	now := time.Now()
	m := model.SystemMetric{Timestamp: now.Unix(), ProbeMethod: "procfs"}

	cpu, cpuCount, err := readCPU()
	if err != nil {
		return m, fmt.Errorf("read cpu: %w", err)
	}
	m.CPUCount = &cpuCount

	s.mu.Lock()
	if s.lastCPU != nil {
		pct := util.CPUPct(s.lastCPU.active(), cpu.active(), s.lastCPU.total(), cpu.total())
		m.CPUPercent = &pct
	}
	s.lastCPU = &cpu
	s.mu.Unlock()

	if err := readMemory(&m); err != nil {
		return m, fmt.Errorf("read memory: %w", err)
	}
	if err := readLoadAvg(&m); err != nil {
		return m, fmt.Errorf("read loadavg: %w", err)
	}
	if err := s.readDiskUsage(&m); err != nil {
		return m, fmt.Errorf("read disk usage: %w", err)
	}
	s.readDiskIO(&m, now)

	return m, nil
}

func readCPU() (cpuJiffies, int, error) {
	lines, err := util.ReadFileLines("/proc/stat")
	if err != nil {
		return cpuJiffies{}, 0, err
	}
	var cpu cpuJiffies
	var cpuCount int
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "cpu "):
			fields := strings.Fields(line)
			if len(fields) < 9 {
				continue
			}
			cpu = cpuJiffies{
				user:    util.ParseUint64(fields[1]),
				nice:    util.ParseUint64(fields[2]),
				system:  util.ParseUint64(fields[3]),
				idle:    util.ParseUint64(fields[4]),
				iowait:  util.ParseUint64(fields[5]),
				irq:     util.ParseUint64(fields[6]),
				softirq: util.ParseUint64(fields[7]),
				steal:   util.ParseUint64(fields[8]),
			}
		case strings.HasPrefix(line, "cpu"):
			cpuCount++
		}
	}
	return cpu, cpuCount, nil
}

func readMemory(m *model.SystemMetric) error {
	kv, err := util.ParseKeyValueFile("/proc/meminfo")
	if err != nil {
		return err
	}
	total := parseKB(kv["MemTotal"])
	avail := parseKB(kv["MemAvailable"])
	m.MemoryTotal = &total
	m.MemoryAvailable = &avail
	if total > 0 {
		pct := float64(total-avail) / float64(total) * 100
		m.MemoryPercent = &pct
	}
	return nil
}

func parseKB(s string) uint64 {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, " kB")
	return util.ParseUint64(strings.TrimSpace(s)) * 1024
}

func readLoadAvg(m *model.SystemMetric) error {
	raw, err := util.ReadFileString("/proc/loadavg")
	if err != nil {
		return err
	}
	fields := strings.Fields(raw)
	if len(fields) < 3 {
		return fmt.Errorf("unexpected /proc/loadavg format: %q", raw)
	}
	l1 := util.ParseFloat64(fields[0])
	l5 := util.ParseFloat64(fields[1])
	l15 := util.ParseFloat64(fields[2])
	m.Load1Min, m.Load5Min, m.Load15Min = &l1, &l5, &l15
	return nil
}

func (s *SystemSampler) readDiskUsage(m *model.SystemMetric) error {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(s.diskPath, &stat); err != nil {
		return err
	}
	total := stat.Blocks * uint64(stat.Bsize)
	free := stat.Bfree * uint64(stat.Bsize)
	used := total - free
	m.DiskTotal = &total
	m.DiskUsed = &used
	if total > 0 {
		pct := float64(used) / float64(total) * 100
		m.DiskPercent = &pct
	}
	return nil
}

type diskIOCounters struct {
	readBytes, writeBytes uint64
}

// readDiskIO aggregates /proc/diskstats sector counters across every
// whole-disk device (skipping partitions, which double-count their
// parent), converting the always-512-byte sector unit to bytes.
func (s *SystemSampler) readDiskIO(m *model.SystemMetric, now time.Time) {
	lines, err := util.ReadFileLines("/proc/diskstats")
	if err != nil {
		return
	}
	var cur diskIOCounters
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 14 {
			continue
		}
		name := fields[2]
		if isPartitionName(name) {
			continue
		}
		cur.readBytes += util.ParseUint64(fields[5]) * 512
		cur.writeBytes += util.ParseUint64(fields[9]) * 512
	}

	s.mu.Lock()
	last := s.lastDisk
	s.lastDisk = &cur
	s.mu.Unlock()

	if last == nil {
		return
	}
	rb := util.Delta(last.readBytes, cur.readBytes)
	wb := util.Delta(last.writeBytes, cur.writeBytes)
	m.DiskReadBytes = &rb
	m.DiskWriteBytes = &wb
}

// isPartitionName reports whether a /proc/diskstats device name looks
// like a partition of another entry (sda1, nvme0n1p1) rather than a
// whole disk. Heuristic, not exhaustive — good enough to avoid
// double-counting the common device naming schemes.
func isPartitionName(name string) bool {
	if name == "" {
		return false
	}
	last := name[len(name)-1]
	if last < '0' || last > '9' {
		return false
	}
	if strings.Contains(name, "nvme") || strings.Contains(name, "mmcblk") {
		return strings.Contains(name, "p")
	}
	return true
}
