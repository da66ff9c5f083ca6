package analyze

import (
	"github.com/logly/logly/detect"
	"github.com/logly/logly/model"
	"github.com/logly/logly/store"
)

// SecurityReport is the composite risk/posture score produced by
// analyze_security_posture.
type SecurityReport struct {
	RiskScore int    `json:"risk_score"`
	Posture   string `json:"posture"` // good, fair, poor, critical

	HighThreatIPs int `json:"high_threat_ips"`
	BruteForce    int `json:"brute_force_incidents"`
	FailedLogins  int `json:"failed_logins"`
	Bans          int `json:"bans"`

	Issues []model.Issue `json:"issues"`
}

// AnalyzeSecurityPosture tallies brute-force incidents, high-threat
// IPs, failed logins, and bans over [since, until) into one risk score
// and discretized posture label.
func AnalyzeSecurityPosture(st *store.Store, since, until int64, th detect.Thresholds) (SecurityReport, error) {
	bruteForce, err := detect.BruteForce(st, since, until, th)
	if err != nil {
		return SecurityReport{}, err
	}
	highThreat, err := detect.HighThreatIPs(st, th)
	if err != nil {
		return SecurityReport{}, err
	}
	banned, err := detect.BannedIPs(st, since, until)
	if err != nil {
		return SecurityReport{}, err
	}

	events, err := st.GetLogEvents(since, until, "")
	if err != nil {
		return SecurityReport{}, err
	}
	var failedLogins int
	for _, e := range events {
		if e.Action == model.ActionFailedLogin {
			failedLogins++
		}
	}

	riskScore := 10*len(highThreat) + 15*len(bruteForce)
	failedComponent := failedLogins / 10
	if failedComponent > 30 {
		failedComponent = 30
	}
	riskScore += failedComponent
	if riskScore > 100 {
		riskScore = 100
	}

	posture := "good"
	switch {
	case riskScore >= 80:
		posture = "critical"
	case riskScore >= 50:
		posture = "poor"
	case riskScore >= 20:
		posture = "fair"
	}

	var issues []model.Issue
	issues = append(issues, bruteForce...)
	issues = append(issues, highThreat...)
	issues = append(issues, banned...)

	return SecurityReport{
		RiskScore:     riskScore,
		Posture:       posture,
		HighThreatIPs: len(highThreat),
		BruteForce:    len(bruteForce),
		FailedLogins:  failedLogins,
		Bans:          len(banned),
		Issues:        issues,
	}, nil
}
