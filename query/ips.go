package query

import (
	"sort"

	"github.com/logly/logly/model"
	"github.com/logly/logly/store"
)

// IPQuery builds a filtered, sorted view over ip_reputation.
type IPQuery struct {
	st          *store.Store
	minScore    int
	sortByScore bool
	limit       int
}

// IPs starts a new IP reputation query.
func IPs(st *store.Store) IPQuery { return IPQuery{st: st} }

// HighThreat restricts results to the conventional high-threat floor.
func (q IPQuery) HighThreat() IPQuery { return q.WithThreatAbove(61) }

func (q IPQuery) WithThreatAbove(n int) IPQuery { q.minScore = n; return q }
func (q IPQuery) Limit(n int) IPQuery           { q.limit = n; return q }

func (q IPQuery) SortByThreat() IPQuery   { q.sortByScore = true; return q }
func (q IPQuery) SortByActivity() IPQuery { q.sortByScore = false; return q }

// All materializes matching reputations, sorted by last_seen (newest
// first) unless SortByThreat keeps the store's threat-score ordering.
func (q IPQuery) All() ([]model.IPReputation, error) {
	rows, err := q.st.GetHighThreatIPs(q.minScore, q.limit)
	if err != nil {
		return nil, err
	}
	if !q.sortByScore {
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].LastSeen > rows[j].LastSeen })
	}
	return rows, nil
}

func (q IPQuery) Count() (int, error) {
	all, err := q.All()
	return len(all), err
}

func (q IPQuery) First() (*model.IPReputation, error) {
	all, err := q.All()
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return &all[0], nil
}

// Lookup fetches a single IP's reputation regardless of threat filters.
func (q IPQuery) Lookup(ip string) (*model.IPReputation, error) {
	return q.st.GetIPReputation(ip)
}
