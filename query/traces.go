package query

import (
	"github.com/logly/logly/model"
	"github.com/logly/logly/store"
)

// TraceQuery builds a filtered view over event_traces.
type TraceQuery struct {
	st          *store.Store
	win         window
	source      string
	minSeverity int
	limit       int
}

// Traces starts a new trace query.
func Traces(st *store.Store) TraceQuery {
	return TraceQuery{st: st, win: defaultWindow(nowUnix())}
}

func (q TraceQuery) InLastHours(n int) TraceQuery { q.win = q.win.inLastHours(nowUnix(), n); return q }
func (q TraceQuery) InLastDays(n int) TraceQuery  { q.win = q.win.inLastDays(nowUnix(), n); return q }
func (q TraceQuery) Between(since, until int64) TraceQuery {
	q.win = q.win.between(since, until)
	return q
}

func (q TraceQuery) BySource(source string) TraceQuery     { q.source = source; return q }
func (q TraceQuery) WithSeverity(min int) TraceQuery       { q.minSeverity = min; return q }
func (q TraceQuery) Limit(n int) TraceQuery                { q.limit = n; return q }
func (q TraceQuery) CriticalOnly() TraceQuery               { return q.WithSeverity(81) }
func (q TraceQuery) HighSeverity() TraceQuery                { return q.WithSeverity(61) }

// All materializes every matching trace, newest first, filtered to the
// configured time window.
func (q TraceQuery) All() ([]model.EventTrace, error) {
	traces, err := q.st.GetTraces(q.source, q.minSeverity, 0)
	if err != nil {
		return nil, err
	}
	since, until := q.win.resolve(nowUnix())
	var out []model.EventTrace
	for _, t := range traces {
		if t.Timestamp < since || t.Timestamp >= until {
			continue
		}
		out = append(out, t)
		if q.limit > 0 && len(out) >= q.limit {
			break
		}
	}
	return out, nil
}

func (q TraceQuery) Count() (int, error) {
	all, err := q.All()
	return len(all), err
}

func (q TraceQuery) First() (*model.EventTrace, error) {
	all, err := q.All()
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return &all[len(all)-1], nil
}

func (q TraceQuery) Latest() (*model.EventTrace, error) {
	all, err := q.All()
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return &all[0], nil
}
