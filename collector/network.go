package collector

import (
	"context"
	"fmt"
	"strings"

	"github.com/logly/logly/model"
	"github.com/logly/logly/util"
)

// NetworkSampler samples cumulative network counters from
// /proc/net/dev and connection state counts from /proc/net/tcp{,6}.
// Counters stay cumulative here; delta computation happens at
// aggregation time against the timestamped series, not per-sample —
// summing cumulative values across samples is exactly the mistake this
// is designed not to repeat.
type NetworkSampler struct{}

func NewNetworkSampler() *NetworkSampler { return &NetworkSampler{} }

func (n *NetworkSampler) Name() string  { return "network" }
func (n *NetworkSampler) Enabled() bool { return true }

func (n *NetworkSampler) Sample(ctx context.Context) (any, error) {
	ctx, cancel := contextWithTimeout(ctx)
	defer cancel()

	done := make(chan struct{})
	var m model.NetworkMetric
	var err error
	go func() {
		defer close(done)
		m, err = n.sampleOnce()
	}()

	select {
	case <-done:
		return m, err
	case <-ctx.Done():
		return model.NetworkMetric{}, fmt.Errorf("network sample: %w", ctx.Err())
	}
}

func (n *NetworkSampler) sampleOnce() (model.NetworkMetric, error) {
	m := model.NetworkMetric{ProbeMethod: "procfs"}
	m.Timestamp = nowUnix()

	if err := n.readNetDev(&m); err != nil {
		return m, fmt.Errorf("read /proc/net/dev: %w", err)
	}
	n.readConnectionStates(&m)
	return m, nil
}

// readNetDev sums per-interface counters across every interface but
// loopback, mirroring collector/network.go's "lo" exclusion.
func (n *NetworkSampler) readNetDev(m *model.NetworkMetric) error {
	lines, err := util.ReadFileLines("/proc/net/dev")
	if err != nil {
		return err
	}

	var sent, recv, psent, precv, errIn, errOut, dropIn, dropOut uint64
	for _, line := range lines {
		if strings.Contains(line, "|") || strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		name := strings.TrimSpace(parts[0])
		if name == "lo" {
			continue
		}
		fields := strings.Fields(parts[1])
		if len(fields) < 16 {
			continue
		}
		recv += util.ParseUint64(fields[0])
		precv += util.ParseUint64(fields[1])
		errIn += util.ParseUint64(fields[2])
		dropIn += util.ParseUint64(fields[3])
		sent += util.ParseUint64(fields[8])
		psent += util.ParseUint64(fields[9])
		errOut += util.ParseUint64(fields[10])
		dropOut += util.ParseUint64(fields[11])
	}

	m.BytesSent, m.BytesRecv = &sent, &recv
	m.PacketsSent, m.PacketsRecv = &psent, &precv
	m.ErrorsIn, m.ErrorsOut = &errIn, &errOut
	m.DropsIn, m.DropsOut = &dropIn, &dropOut
	return nil
}

// tcpStateEstablished/Listen/TimeWait are the numeric connection-state
// codes used in /proc/net/tcp's "st" column (see include/net/tcp_states.h).
const (
	tcpStateEstablished = "01"
	tcpStateListen      = "0A"
	tcpStateTimeWait    = "06"
)

func (n *NetworkSampler) readConnectionStates(m *model.NetworkMetric) {
	var established, listen, timeWait int
	for _, path := range []string{"/proc/net/tcp", "/proc/net/tcp6"} {
		lines, err := util.ReadFileLines(path)
		if err != nil {
			continue
		}
		for _, line := range lines[skipHeader(lines):] {
			fields := strings.Fields(line)
			if len(fields) < 4 {
				continue
			}
			switch strings.ToUpper(fields[3]) {
			case tcpStateEstablished:
				established++
			case tcpStateListen:
				listen++
			case tcpStateTimeWait:
				timeWait++
			}
		}
	}
	m.ConnectionsEstablished = &established
	m.ConnectionsListen = &listen
	m.ConnectionsTimeWait = &timeWait
}

func skipHeader(lines []string) int {
	if len(lines) > 0 {
		return 1
	}
	return 0
}
