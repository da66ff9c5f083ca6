package query

import (
	"fmt"

	"github.com/logly/logly/model"
	"github.com/logly/logly/store"
)

// MetricsCategory is the entry point for Metrics().System()/.Network().
type MetricsCategory struct {
	st *store.Store
}

// Metrics starts a metric query; pick System() or Network() next.
func Metrics(st *store.Store) MetricsCategory { return MetricsCategory{st: st} }

func (c MetricsCategory) System() SystemMetricQuery {
	return SystemMetricQuery{st: c.st, win: defaultWindow(nowUnix())}
}

func (c MetricsCategory) Network() NetworkMetricQuery {
	return NetworkMetricQuery{st: c.st, win: defaultWindow(nowUnix())}
}

// SystemMetricQuery builds a filtered view over system_metrics.
type SystemMetricQuery struct {
	st  *store.Store
	win window
}

func (q SystemMetricQuery) InLastHours(n int) SystemMetricQuery {
	q.win = q.win.inLastHours(nowUnix(), n)
	return q
}
func (q SystemMetricQuery) InLastDays(n int) SystemMetricQuery {
	q.win = q.win.inLastDays(nowUnix(), n)
	return q
}
func (q SystemMetricQuery) Between(since, until int64) SystemMetricQuery {
	q.win = q.win.between(since, until)
	return q
}

// All materializes every matching row, newest first.
func (q SystemMetricQuery) All() ([]model.SystemMetric, error) {
	since, until := q.win.resolve(nowUnix())
	rows, err := q.st.GetSystemMetrics(since, until)
	if err != nil {
		return nil, err
	}
	reverse(rows)
	return rows, nil
}

func (q SystemMetricQuery) Count() (int, error) {
	all, err := q.All()
	return len(all), err
}

func (q SystemMetricQuery) First() (*model.SystemMetric, error) {
	all, err := q.All()
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return &all[len(all)-1], nil
}

func (q SystemMetricQuery) Latest() (*model.SystemMetric, error) {
	all, err := q.All()
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return &all[0], nil
}

// Avg/Min/Max reduce one numeric field across the matching rows. field
// is one of "cpu_percent", "memory_percent", "disk_percent", "load_1min".
func (q SystemMetricQuery) Avg(field string) (float64, error) { return q.reduce(field, reduceAvg) }
func (q SystemMetricQuery) Min(field string) (float64, error) { return q.reduce(field, reduceMin) }
func (q SystemMetricQuery) Max(field string) (float64, error) { return q.reduce(field, reduceMax) }

func (q SystemMetricQuery) reduce(field string, fn func([]float64) float64) (float64, error) {
	all, err := q.All()
	if err != nil {
		return 0, err
	}
	var vals []float64
	for _, m := range all {
		var v *float64
		switch field {
		case "cpu_percent":
			v = m.CPUPercent
		case "memory_percent":
			v = m.MemoryPercent
		case "disk_percent":
			v = m.DiskPercent
		case "load_1min":
			v = m.Load1Min
		default:
			return 0, fmt.Errorf("unknown system metric field %q", field)
		}
		if v != nil {
			vals = append(vals, *v)
		}
	}
	return fn(vals), nil
}

// NetworkMetricQuery builds a filtered view over network_metrics.
type NetworkMetricQuery struct {
	st  *store.Store
	win window
}

func (q NetworkMetricQuery) InLastHours(n int) NetworkMetricQuery {
	q.win = q.win.inLastHours(nowUnix(), n)
	return q
}
func (q NetworkMetricQuery) InLastDays(n int) NetworkMetricQuery {
	q.win = q.win.inLastDays(nowUnix(), n)
	return q
}
func (q NetworkMetricQuery) Between(since, until int64) NetworkMetricQuery {
	q.win = q.win.between(since, until)
	return q
}

func (q NetworkMetricQuery) All() ([]model.NetworkMetric, error) {
	since, until := q.win.resolve(nowUnix())
	rows, err := q.st.GetNetworkMetrics(since, until)
	if err != nil {
		return nil, err
	}
	reverse(rows)
	return rows, nil
}

func (q NetworkMetricQuery) Count() (int, error) {
	all, err := q.All()
	return len(all), err
}

func (q NetworkMetricQuery) Latest() (*model.NetworkMetric, error) {
	all, err := q.All()
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return &all[0], nil
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func reduceAvg(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func reduceMin(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

func reduceMax(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}
