package detect

import (
	"fmt"

	"github.com/logly/logly/model"
	"github.com/logly/logly/store"
	"github.com/logly/logly/util"
)

// minAnomalyPoints is the smallest series find_connection_anomalies will
// analyze; with fewer points a mean/stddev is too noisy to trust.
const minAnomalyPoints = 10

// ConnectionAnomaly flags NetworkMetric points whose
// ConnectionsEstablished deviates more than 3 standard deviations from
// the window's mean, grounded on find_connection_anomalies. Requires at
// least minAnomalyPoints samples.
func ConnectionAnomaly(st *store.Store, since, until int64) ([]model.Issue, error) {
	metrics, err := st.GetNetworkMetrics(since, until)
	if err != nil {
		return nil, fmt.Errorf("connection anomaly: %w", err)
	}
	var vals []float64
	var points []model.NetworkMetric
	for _, m := range metrics {
		if m.ConnectionsEstablished != nil {
			vals = append(vals, float64(*m.ConnectionsEstablished))
			points = append(points, m)
		}
	}
	if len(vals) < minAnomalyPoints {
		return nil, nil
	}

	mean := util.Mean(vals)
	stddev := util.StdDev(vals)
	if stddev == 0 {
		return nil, nil
	}

	var out []model.Issue
	for i, m := range points {
		x := vals[i]
		dev := x - mean
		if dev < 0 {
			dev = -dev
		}
		if dev <= 3*stddev {
			continue
		}
		deviationPct := dev / mean * 100
		severity := util.ClampInt(int(60+deviationPct/2), 0, 100)
		out = append(out, model.Issue{
			Type:            "connection_anomaly",
			Severity:        severity,
			Title:           "Anomalous connection count",
			Description:     fmt.Sprintf("established connections = %.0f, mean = %.1f, stddev = %.1f", x, mean, stddev),
			FirstSeen:       m.Timestamp,
			LastSeen:        m.Timestamp,
			OccurrenceCount: 1,
			Details: map[string]any{
				"value":             x,
				"mean":              mean,
				"stddev":            stddev,
				"deviation_percent": deviationPct,
			},
		})
	}
	return out, nil
}

// NetworkErrorRate flags NetworkMetric points whose combined
// error+drop rate over total packets meets th.NetworkErrorRate,
// grounded on find_network_errors.
func NetworkErrorRate(st *store.Store, since, until int64, th Thresholds) ([]model.Issue, error) {
	metrics, err := st.GetNetworkMetrics(since, until)
	if err != nil {
		return nil, fmt.Errorf("network error rate: %w", err)
	}

	var out []model.Issue
	for _, m := range metrics {
		packets := derefU(m.PacketsSent) + derefU(m.PacketsRecv)
		if packets == 0 {
			continue
		}
		errs := derefU(m.ErrorsIn) + derefU(m.ErrorsOut) + derefU(m.DropsIn) + derefU(m.DropsOut)
		rate := float64(errs) / float64(packets) * 100
		if rate < th.NetworkErrorRate {
			continue
		}
		severity := util.ClampInt(int(50+5*(rate-th.NetworkErrorRate)), 0, 100)
		out = append(out, model.Issue{
			Type:            "network_error_rate",
			Severity:        severity,
			Title:           "Elevated network error rate",
			Description:     fmt.Sprintf("error/drop rate %.2f%% of %d packets", rate, packets),
			FirstSeen:       m.Timestamp,
			LastSeen:        m.Timestamp,
			OccurrenceCount: 1,
			Details:         map[string]any{"rate": rate, "packets": packets, "errors": errs},
		})
	}
	return out, nil
}

func derefU(p *uint64) uint64 {
	if p == nil {
		return 0
	}
	return *p
}
