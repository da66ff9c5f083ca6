package query

import (
	"strings"

	"github.com/logly/logly/model"
	"github.com/logly/logly/store"
)

// EventQuery builds a filtered view over log_events.
type EventQuery struct {
	st     *store.Store
	win    window
	source string
	level  string
	ip     string
}

// Events starts a new log-event query, defaulting to the last 24 hours.
func Events(st *store.Store) EventQuery {
	return EventQuery{st: st, win: defaultWindow(nowUnix())}
}

func (q EventQuery) InLastHours(n int) EventQuery { q.win = q.win.inLastHours(nowUnix(), n); return q }
func (q EventQuery) InLastDays(n int) EventQuery  { q.win = q.win.inLastDays(nowUnix(), n); return q }
func (q EventQuery) Between(since, until int64) EventQuery {
	q.win = q.win.between(since, until)
	return q
}

func (q EventQuery) BySource(source string) EventQuery { q.source = source; return q }
func (q EventQuery) WithLevel(level string) EventQuery { q.level = level; return q }
func (q EventQuery) ForIP(ip string) EventQuery        { q.ip = ip; return q }

func (q EventQuery) ErrorsOnly() EventQuery   { return q.WithLevel("ERROR") }
func (q EventQuery) WarningsOnly() EventQuery { return q.WithLevel("WARNING") }

// All materializes every matching event, newest first.
func (q EventQuery) All() ([]model.LogEvent, error) {
	since, until := q.win.resolve(nowUnix())
	events, err := q.st.GetLogEvents(since, until, q.source)
	if err != nil {
		return nil, err
	}
	var out []model.LogEvent
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		if q.level != "" && !strings.EqualFold(e.Level, q.level) {
			continue
		}
		if q.ip != "" && e.IP != q.ip {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// Count returns how many events match.
func (q EventQuery) Count() (int, error) {
	all, err := q.All()
	return len(all), err
}

// First returns the oldest matching event.
func (q EventQuery) First() (*model.LogEvent, error) {
	all, err := q.All()
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return &all[len(all)-1], nil
}

// Latest returns the newest matching event.
func (q EventQuery) Latest() (*model.LogEvent, error) {
	all, err := q.All()
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return &all[0], nil
}
