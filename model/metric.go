// Package model defines the persisted record types shared across Logly's
// collection, storage, and analysis packages.
package model

// SystemMetric is one sampled snapshot of host resource counters. Every
// field but Timestamp is optional: a nil pointer means "not sampled this
// tick", not zero.
type SystemMetric struct {
	ID       int64 `json:"id,omitempty"`
	Timestamp int64 `json:"timestamp"`

	CPUPercent *float64 `json:"cpu_percent,omitempty"`
	CPUCount   *int     `json:"cpu_count,omitempty"`

	MemoryTotal     *uint64  `json:"memory_total,omitempty"`
	MemoryAvailable *uint64  `json:"memory_available,omitempty"`
	MemoryPercent   *float64 `json:"memory_percent,omitempty"`

	DiskTotal      *uint64 `json:"disk_total,omitempty"`
	DiskUsed       *uint64 `json:"disk_used,omitempty"`
	DiskPercent    *float64 `json:"disk_percent,omitempty"`
	DiskReadBytes  *uint64 `json:"disk_read_bytes,omitempty"`
	DiskWriteBytes *uint64 `json:"disk_write_bytes,omitempty"`

	Load1Min  *float64 `json:"load_1min,omitempty"`
	Load5Min  *float64 `json:"load_5min,omitempty"`
	Load15Min *float64 `json:"load_15min,omitempty"`

	// ProbeMethod names the platform probe that produced this sample
	// (e.g. "procfs", "df"). Debug-only — never persisted.
	ProbeMethod string `json:"-"`
}

// NetworkMetric is one sampled snapshot of cumulative network counters.
// Byte/packet counters are monotonic per host and kept cumulative; deltas
// are computed at aggregation time, not here.
type NetworkMetric struct {
	ID        int64 `json:"id,omitempty"`
	Timestamp int64 `json:"timestamp"`

	BytesSent *uint64 `json:"bytes_sent,omitempty"`
	BytesRecv *uint64 `json:"bytes_recv,omitempty"`

	PacketsSent *uint64 `json:"packets_sent,omitempty"`
	PacketsRecv *uint64 `json:"packets_recv,omitempty"`

	ErrorsIn  *uint64 `json:"errors_in,omitempty"`
	ErrorsOut *uint64 `json:"errors_out,omitempty"`
	DropsIn   *uint64 `json:"drops_in,omitempty"`
	DropsOut  *uint64 `json:"drops_out,omitempty"`

	ConnectionsEstablished *int `json:"connections_established,omitempty"`
	ConnectionsListen      *int `json:"connections_listen,omitempty"`
	ConnectionsTimeWait    *int `json:"connections_time_wait,omitempty"`

	ProbeMethod string `json:"-"`
}

// HourlyAggregate is a rolled-up hour of raw SystemMetric/NetworkMetric/
// LogEvent rows, keyed uniquely by HourTS (a unix second rounded down to
// the hour boundary).
type HourlyAggregate struct {
	HourTS int64 `json:"hour_ts"`

	AvgCPUPercent    float64 `json:"avg_cpu_percent"`
	MaxCPUPercent    float64 `json:"max_cpu_percent"`
	AvgMemoryPercent float64 `json:"avg_memory_percent"`
	MaxMemoryPercent float64 `json:"max_memory_percent"`
	AvgDiskPercent   float64 `json:"avg_disk_percent"`
	MaxDiskPercent   float64 `json:"max_disk_percent"`

	NetBytesSentDelta uint64 `json:"net_bytes_sent_delta"`
	NetBytesRecvDelta uint64 `json:"net_bytes_recv_delta"`

	TotalEvents   int `json:"total_events"`
	ErrorEvents   int `json:"error_events"`
	WarningEvents int `json:"warning_events"`
}

// DailyAggregate is a rolled-up day of HourlyAggregate rows, keyed
// uniquely by Date (YYYY-MM-DD, UTC).
type DailyAggregate struct {
	Date string `json:"date"`

	AvgCPUPercent    float64 `json:"avg_cpu_percent"`
	MaxCPUPercent    float64 `json:"max_cpu_percent"`
	AvgMemoryPercent float64 `json:"avg_memory_percent"`
	MaxMemoryPercent float64 `json:"max_memory_percent"`

	NetBytesSentTotal uint64 `json:"net_bytes_sent_total"`
	NetBytesRecvTotal uint64 `json:"net_bytes_recv_total"`

	TotalEvents  int `json:"total_events"`
	TotalErrors  int `json:"total_errors"`
	DistinctIPs  int `json:"distinct_ips"`
	DistinctUsers int `json:"distinct_users"`
}
