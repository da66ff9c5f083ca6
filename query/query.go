// Package query implements Logly's fluent, typed query surface over the
// store, grounded on logly/query/query_builder.py's BaseQuery/EventQuery/
// MetricQuery chain (in_last_hours, between, with_level, errors_only,
// all, count, first). Every builder method returns a new value — no
// branch of a chain mutates state another branch depends on — and
// terminators are the only calls that touch the store.
package query

import "time"

// window is the shared [since, until) time range every builder embeds.
// defaultWindowHours matches spec.md §4.8's "default last 24h".
const defaultWindowHours = 24

type window struct {
	since, until int64
	set          bool
}

func defaultWindow(now int64) window {
	return window{since: now - defaultWindowHours*3600, until: now, set: false}
}

func (w window) inLastHours(now int64, n int) window {
	w.since, w.until, w.set = now-int64(n)*3600, now, true
	return w
}

func (w window) inLastDays(now int64, n int) window {
	w.since, w.until, w.set = now-int64(n)*86400, now, true
	return w
}

func (w window) between(since, until int64) window {
	w.since, w.until, w.set = since, until, true
	return w
}

func (w window) resolve(now int64) (int64, int64) {
	if !w.set {
		return now - defaultWindowHours*3600, now
	}
	return w.since, w.until
}

func nowUnix() int64 { return time.Now().Unix() }
