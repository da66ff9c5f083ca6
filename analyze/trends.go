package analyze

import (
	"strings"

	"github.com/logly/logly/model"
	"github.com/logly/logly/store"
)

// ErrorTrendReport partitions an error-count window at its midpoint and
// compares halves, grounded on analyze_error_trends.
type ErrorTrendReport struct {
	Trend          string  `json:"trend"` // worsening, improving, stable
	FirstHalfRate  float64 `json:"first_half_rate_per_hour"`
	SecondHalfRate float64 `json:"second_half_rate_per_hour"`
	TotalErrors    int     `json:"total_errors"`
}

// AnalyzeErrorTrends counts error-level log events over the last `days`
// days, splits the window at its midpoint, and classifies the trend by
// the ratio of second-half to first-half hourly rate.
func AnalyzeErrorTrends(st *store.Store, now int64, days int) (ErrorTrendReport, error) {
	until := now
	since := now - int64(days)*86400
	mid := since + (until-since)/2

	firstEvents, err := st.GetLogEvents(since, mid, "")
	if err != nil {
		return ErrorTrendReport{}, err
	}
	secondEvents, err := st.GetLogEvents(mid, until, "")
	if err != nil {
		return ErrorTrendReport{}, err
	}

	firstCount := countErrors(firstEvents)
	secondCount := countErrors(secondEvents)

	firstHours := float64(mid-since) / 3600
	secondHours := float64(until-mid) / 3600
	if firstHours <= 0 {
		firstHours = 1
	}
	if secondHours <= 0 {
		secondHours = 1
	}
	firstRate := float64(firstCount) / firstHours
	secondRate := float64(secondCount) / secondHours

	trend := "stable"
	if firstRate > 0 {
		ratio := secondRate / firstRate
		switch {
		case ratio > 1.2:
			trend = "worsening"
		case ratio < 0.8:
			trend = "improving"
		}
	} else if secondCount > 0 {
		trend = "worsening"
	}

	return ErrorTrendReport{
		Trend:          trend,
		FirstHalfRate:  firstRate,
		SecondHalfRate: secondRate,
		TotalErrors:    firstCount + secondCount,
	}, nil
}

func countErrors(events []model.LogEvent) int {
	var n int
	for _, e := range events {
		l := strings.ToUpper(e.Level)
		if l == "ERROR" || l == "CRITICAL" || l == "FATAL" {
			n++
		}
	}
	return n
}
