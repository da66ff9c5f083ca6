package query

import (
	"strings"

	"github.com/logly/logly/model"
	"github.com/logly/logly/store"
)

// ErrorQuery builds a filtered view over error_traces.
type ErrorQuery struct {
	st           *store.Store
	category     string
	resourceOnly bool
	limit        int
}

// Errors starts a new error-trace query.
func Errors(st *store.Store) ErrorQuery { return ErrorQuery{st: st} }

func (q ErrorQuery) ByCategory(category string) ErrorQuery { q.category = category; return q }
func (q ErrorQuery) Limit(n int) ErrorQuery                { q.limit = n; return q }

func (q ErrorQuery) DatabaseErrors() ErrorQuery { return q.ByCategory("db_connection") }
func (q ErrorQuery) NetworkErrors() ErrorQuery   { return q.ByCategory("connection_timeout") }

// ResourceErrors matches the oom/disk_full taxonomy categories, which
// span more than one category value so it can't be expressed as a
// single ByCategory call.
func (q ErrorQuery) ResourceErrors() ErrorQuery { q.resourceOnly = true; return q }

var resourceCategories = map[string]bool{
	"oom": true, "disk_full": true,
}

// All materializes matching error traces, newest first.
func (q ErrorQuery) All() ([]model.ErrorTrace, error) {
	rows, err := q.st.GetErrorTraces(q.category, q.limit)
	if err != nil {
		return nil, err
	}
	if !q.resourceOnly {
		return rows, nil
	}
	var out []model.ErrorTrace
	for _, r := range rows {
		if resourceCategories[strings.ToLower(r.Category)] {
			out = append(out, r)
		}
	}
	return out, nil
}

func (q ErrorQuery) Count() (int, error) {
	all, err := q.All()
	return len(all), err
}
