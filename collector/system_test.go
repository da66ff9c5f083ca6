package collector

import (
	"context"
	"testing"

	"github.com/logly/logly/model"
)

func TestSystemSamplerFirstSampleHasNoCPUPercent(t *testing.T) {
	s := NewSystemSampler("/")
	v, err := s.Sample(context.Background())
	if err != nil {
		t.Fatalf("Sample() error = %v", err)
	}
	m := v.(model.SystemMetric)
	if m.CPUPercent != nil {
		t.Errorf("CPUPercent on first sample = %v, want nil (no prior jiffies)", *m.CPUPercent)
	}

	v2, err := s.Sample(context.Background())
	if err != nil {
		t.Fatalf("second Sample() error = %v", err)
	}
	m2 := v2.(model.SystemMetric)
	if m2.CPUPercent == nil {
		t.Error("CPUPercent on second sample = nil, want a value")
	}
}

func TestCPUJiffiesActiveTotal(t *testing.T) {
	c := cpuJiffies{user: 10, nice: 1, system: 5, idle: 80, iowait: 2, irq: 1, softirq: 1, steal: 0}
	if got, want := c.active(), uint64(18); got != want {
		t.Errorf("active() = %d, want %d", got, want)
	}
	if got, want := c.total(), uint64(100); got != want {
		t.Errorf("total() = %d, want %d", got, want)
	}
}

func TestIsPartitionName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"sda", false},
		{"sda1", true},
		{"nvme0n1", false},
		{"nvme0n1p1", true},
		{"mmcblk0", false},
		{"mmcblk0p1", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isPartitionName(tt.name); got != tt.want {
				t.Errorf("isPartitionName(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}
