package detect

import (
	"fmt"

	"github.com/logly/logly/model"
	"github.com/logly/logly/store"
)

// RunAll runs every detector over [since, until) with th's thresholds
// and returns their combined Issues. Used by the analyze package to
// build composite reports; detectors never share state, so this is
// just sequential composition, not a pipeline.
func RunAll(st *store.Store, since, until int64, th Thresholds) ([]model.Issue, error) {
	type detectorFn func() ([]model.Issue, error)
	detectors := []detectorFn{
		func() ([]model.Issue, error) { return BruteForce(st, since, until, th) },
		func() ([]model.Issue, error) { return HighThreatIPs(st, th) },
		func() ([]model.Issue, error) { return BannedIPs(st, since, until) },
		func() ([]model.Issue, error) { return SustainedCPU(st, since, until, th) },
		func() ([]model.Issue, error) { return SustainedMemory(st, since, until, th) },
		func() ([]model.Issue, error) { return DiskSpace(st, th) },
		func() ([]model.Issue, error) { return ErrorSpike(st, since, until, th) },
		func() ([]model.Issue, error) { return RecurringError(st, since, until, th) },
		func() ([]model.Issue, error) { return CriticalErrors(st, since, until) },
		func() ([]model.Issue, error) { return ConnectionAnomaly(st, since, until) },
		func() ([]model.Issue, error) { return NetworkErrorRate(st, since, until, th) },
	}

	var all []model.Issue
	for _, d := range detectors {
		issues, err := d()
		if err != nil {
			return nil, fmt.Errorf("run detectors: %w", err)
		}
		all = append(all, issues...)
	}
	return all, nil
}
