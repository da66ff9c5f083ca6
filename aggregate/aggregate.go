// Package aggregate decides which hour/day boundaries are due for
// roll-up and drives the store's compute methods against them, the
// Go analogue of core/aggregator.py's Aggregator.
package aggregate

import (
	"fmt"
	"time"

	"github.com/logly/logly/store"
)

// Aggregator wraps a Store with the "which window is due" policy layer
// that core/aggregator.py's run_hourly_aggregation/run_daily_aggregation
// encode, rather than leaving callers to compute boundaries themselves.
type Aggregator struct {
	store   *store.Store
	enabled bool
	hourly  bool
	daily   bool
}

// New builds an Aggregator. hourly/daily mirror the "intervals" list in
// the Python config (`["hourly", "daily"]` by default).
func New(st *store.Store, enabled, hourly, daily bool) *Aggregator {
	return &Aggregator{store: st, enabled: enabled, hourly: hourly, daily: daily}
}

// RunHourly rolls up the previous complete hour (the hour before the
// current wall-clock hour boundary), matching
// `now.replace(minute=0,...) - timedelta(hours=1)`.
func (a *Aggregator) RunHourly(now time.Time) error {
	if !a.enabled || !a.hourly {
		return nil
	}
	hourStart := now.Truncate(time.Hour).Add(-time.Hour)
	if err := a.store.ComputeHourlyAggregates(hourStart.Unix(), hourStart.Add(time.Hour).Unix()); err != nil {
		return fmt.Errorf("hourly aggregation for %s: %w", hourStart, err)
	}
	return nil
}

// RunDaily rolls up yesterday (UTC calendar day), matching
// `datetime.now().date() - timedelta(days=1)`.
func (a *Aggregator) RunDaily(now time.Time) error {
	if !a.enabled || !a.daily {
		return nil
	}
	dayStart := now.UTC().Truncate(24 * time.Hour).Add(-24 * time.Hour)
	if err := a.store.ComputeDailyAggregates(dayStart.Unix(), dayStart.Add(24*time.Hour).Unix()); err != nil {
		return fmt.Errorf("daily aggregation for %s: %w", dayStart.Format("2006-01-02"), err)
	}
	return nil
}

// RunBoth runs both roll-ups back to back; callers that want the hourly
// scheduler task to also cover midnight daily roll-ups (there is no
// separate daily-only tick in the default schedule) call this instead
// of the individual methods.
func (a *Aggregator) RunBoth(now time.Time) error {
	if err := a.RunHourly(now); err != nil {
		return err
	}
	return a.RunDaily(now)
}
