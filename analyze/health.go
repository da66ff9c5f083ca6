// Package analyze composes detect's issue families into scored,
// human-facing reports, grounded on logly/query/analysis_engine.py's
// AnalysisEngine (analyze_system_health, analyze_security_posture,
// analyze_error_trends, get_resource_usage_trends). Every formula here
// is carried over unchanged from spec.md §4.7.
package analyze

import (
	"sort"

	"github.com/logly/logly/detect"
	"github.com/logly/logly/model"
	"github.com/logly/logly/store"
)

// HealthReport is the composite health/security/error/network score
// produced by analyze_system_health.
type HealthReport struct {
	HealthScore int    `json:"health_score"`
	Status      string `json:"status"` // healthy, degraded, critical

	SecurityScore    float64 `json:"security_score"`
	PerformanceScore float64 `json:"performance_score"`
	ErrorScore       float64 `json:"error_score"`
	NetworkScore     float64 `json:"network_score"`

	IssuesByBand map[string]int `json:"issues_by_band"`
	TopIssues    []model.Issue  `json:"top_issues"`
	Recommendations []string   `json:"recommendations"`
}

var securityTypes = map[string]bool{
	"brute_force": true, "banned_ip": true, "high_threat_ip": true,
}
var performanceTypes = map[string]bool{
	"sustained_high_cpu": true, "sustained_high_memory": true, "disk_space": true,
}
var errorTypes = map[string]bool{
	"error_spike": true, "recurring_error": true, "critical_error": true,
}
var networkTypes = map[string]bool{
	"connection_anomaly": true, "network_error_rate": true,
}

// AnalyzeSystemHealth runs every detector over [since, until) and rolls
// the results into one HealthReport.
func AnalyzeSystemHealth(st *store.Store, since, until int64, th detect.Thresholds) (HealthReport, error) {
	issues, err := detect.RunAll(st, since, until, th)
	if err != nil {
		return HealthReport{}, err
	}

	var secTotal, perfTotal, errTotal, netTotal float64
	byBand := map[string]int{"low": 0, "medium": 0, "high": 0, "critical": 0}
	recSeen := make(map[string]bool)
	var recs []string

	for _, iss := range issues {
		byBand[iss.Band()]++
		switch {
		case securityTypes[iss.Type]:
			secTotal += float64(iss.Severity)
		case performanceTypes[iss.Type]:
			perfTotal += float64(iss.Severity)
		case errorTypes[iss.Type]:
			errTotal += float64(iss.Severity)
		case networkTypes[iss.Type]:
			netTotal += float64(iss.Severity)
		}
		for _, r := range iss.Recommendations {
			if !recSeen[r] {
				recSeen[r] = true
				recs = append(recs, r)
			}
		}
	}

	secScore := subScore(secTotal)
	perfScore := subScore(perfTotal)
	errScore := subScore(errTotal)
	netScore := subScore(netTotal)

	healthScore := int(0.30*secScore + 0.25*perfScore + 0.25*errScore + 0.20*netScore + 0.5)

	status := "healthy"
	switch {
	case healthScore < 50:
		status = "critical"
	case healthScore < 80:
		status = "degraded"
	}

	sort.Slice(issues, func(i, j int) bool { return issues[i].Severity > issues[j].Severity })
	top := issues
	if len(top) > 5 {
		top = top[:5]
	}

	return HealthReport{
		HealthScore:      healthScore,
		Status:           status,
		SecurityScore:    secScore,
		PerformanceScore: perfScore,
		ErrorScore:       errScore,
		NetworkScore:     netScore,
		IssuesByBand:     byBand,
		TopIssues:        top,
		Recommendations:  recs,
	}, nil
}

// subScore converts a summed severity total for one component into a
// 0-100 sub-score: sub = max(0, 100 - total/5).
func subScore(total float64) float64 {
	s := 100 - total/5
	if s < 0 {
		return 0
	}
	return s
}
