package analyze

import (
	"math"
	"sort"

	"github.com/logly/logly/store"
	"github.com/logly/logly/util"
)

// TrendReport summarizes one metric's distribution and linear trend
// over a window, grounded on get_resource_usage_trends.
type TrendReport struct {
	Metric    string  `json:"metric"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Avg       float64 `json:"avg"`
	Median    float64 `json:"median"`
	StdDev    float64 `json:"stddev"`
	Direction string  `json:"direction"` // rising, falling, stable
	Strength  float64 `json:"strength"`  // sqrt(R^2), bounded [0,1]
	Anomalies []Anomaly `json:"anomalies"`
}

// Anomaly is one point beyond 2 standard deviations from the window mean.
type Anomaly struct {
	Timestamp int64   `json:"timestamp"`
	Value     float64 `json:"value"`
}

// maxReportedAnomalies caps how many anomaly points get_resource_usage_trends
// reports, even if more qualify.
const maxReportedAnomalies = 10

// GetResourceUsageTrends computes a TrendReport for a named system
// metric ("cpu", "memory", "disk") over the last `days` days.
func GetResourceUsageTrends(st *store.Store, now int64, days int, metric string) (TrendReport, error) {
	since := now - int64(days)*86400
	metrics, err := st.GetSystemMetrics(since, now)
	if err != nil {
		return TrendReport{}, err
	}

	type point struct {
		ts  int64
		val float64
	}
	var points []point
	for _, m := range metrics {
		var v *float64
		switch metric {
		case "cpu":
			v = m.CPUPercent
		case "memory":
			v = m.MemoryPercent
		case "disk":
			v = m.DiskPercent
		}
		if v != nil {
			points = append(points, point{ts: m.Timestamp, val: *v})
		}
	}
	if len(points) == 0 {
		return TrendReport{Metric: metric}, nil
	}

	var vals []float64
	for _, p := range points {
		vals = append(vals, p.val)
	}

	direction, strength := regression(vals)

	var anomalies []Anomaly
	mean := util.Mean(vals)
	stddev := util.StdDev(vals)
	if stddev > 0 {
		for _, p := range points {
			if len(anomalies) >= maxReportedAnomalies {
				break
			}
			dev := p.val - mean
			if dev < 0 {
				dev = -dev
			}
			if dev > 2*stddev {
				anomalies = append(anomalies, Anomaly{Timestamp: p.ts, Value: p.val})
			}
		}
	}

	return TrendReport{
		Metric:    metric,
		Min:       minOf(vals),
		Max:       maxOf(vals),
		Avg:       mean,
		Median:    median(vals),
		StdDev:    stddev,
		Direction: direction,
		Strength:  strength,
		Anomalies: anomalies,
	}, nil
}

// regression fits y=a+b*x over index x=0..n-1 via ordinary least
// squares and returns a direction label plus sqrt(R^2) as "strength".
func regression(ys []float64) (direction string, strength float64) {
	n := len(ys)
	if n < 2 {
		return "stable", 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range ys {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	nf := float64(n)
	denom := nf*sumXX - sumX*sumX
	if denom == 0 {
		return "stable", 0
	}
	slope := (nf*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / nf

	meanY := sumY / nf
	var ssTot, ssRes float64
	for i, y := range ys {
		x := float64(i)
		pred := intercept + slope*x
		ssRes += (y - pred) * (y - pred)
		ssTot += (y - meanY) * (y - meanY)
	}
	var r2 float64
	if ssTot > 0 {
		r2 = 1 - ssRes/ssTot
	}
	if r2 < 0 {
		r2 = 0
	}
	strength = math.Sqrt(r2)
	if strength > 1 {
		strength = 1
	}

	switch {
	case slope > 0.01:
		direction = "rising"
	case slope < -0.01:
		direction = "falling"
	default:
		direction = "stable"
	}
	return direction, strength
}

func minOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

func maxOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

func median(xs []float64) float64 {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
