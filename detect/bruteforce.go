package detect

import (
	"fmt"
	"sort"

	"github.com/logly/logly/model"
	"github.com/logly/logly/store"
)

// BruteForce groups failed_login events in [since, until) by IP and
// emits one Issue per address whose attempt count meets threshold,
// grounded on find_brute_force_attempts.
func BruteForce(st *store.Store, since, until int64, th Thresholds) ([]model.Issue, error) {
	events, err := st.GetLogEvents(since, until, "")
	if err != nil {
		return nil, fmt.Errorf("brute force: load events: %w", err)
	}

	type group struct {
		ip        string
		first     int64
		last      int64
		count     int
		users     map[string]bool
	}
	groups := make(map[string]*group)
	var order []string
	for _, e := range events {
		if e.Action != model.ActionFailedLogin || e.IP == "" || e.IP == model.UnknownIP {
			continue
		}
		g, ok := groups[e.IP]
		if !ok {
			g = &group{ip: e.IP, first: e.Timestamp, last: e.Timestamp, users: make(map[string]bool)}
			groups[e.IP] = g
			order = append(order, e.IP)
		}
		g.count++
		if e.Timestamp < g.first {
			g.first = e.Timestamp
		}
		if e.Timestamp > g.last {
			g.last = e.Timestamp
		}
		if e.User != "" {
			g.users[e.User] = true
		}
	}
	sort.Strings(order)

	var out []model.Issue
	for _, ip := range order {
		g := groups[ip]
		if g.count < th.FailedLoginThreshold {
			continue
		}
		severity := 50 + 5*(g.count-th.FailedLoginThreshold)
		if g.last-g.first < 300 {
			severity += 20
		}
		if severity > 100 {
			severity = 100
		}
		out = append(out, model.Issue{
			Type:             "brute_force",
			Severity:         severity,
			Title:            fmt.Sprintf("Brute-force login attempts from %s", ip),
			Description:      fmt.Sprintf("%d failed login attempts from %s across %d unique users", g.count, ip, len(g.users)),
			FirstSeen:        g.first,
			LastSeen:         g.last,
			OccurrenceCount:  g.count,
			AffectedResources: []string{ip},
			Recommendations:  []string{"consider banning or rate-limiting " + ip, "review fail2ban jail configuration"},
			Details: map[string]any{
				"ip_address":     ip,
				"attempt_count":  g.count,
				"unique_users":   len(g.users),
			},
		})
	}
	return out, nil
}

// BannedIPs emits one Issue per `action=ban` LogEvent in [since, until),
// grounded on the ban-event half of find_suspicious_ips.
func BannedIPs(st *store.Store, since, until int64) ([]model.Issue, error) {
	events, err := st.GetLogEvents(since, until, "")
	if err != nil {
		return nil, fmt.Errorf("banned ips: load events: %w", err)
	}
	var out []model.Issue
	for _, e := range events {
		if e.Action != model.ActionBan {
			continue
		}
		ip := e.IP
		if ip == "" {
			ip = model.UnknownIP
		}
		out = append(out, model.Issue{
			Type:              "banned_ip",
			Severity:          70,
			Title:             fmt.Sprintf("IP banned: %s", ip),
			Description:       fmt.Sprintf("%s issued a ban action against %s", e.Source, ip),
			FirstSeen:         e.Timestamp,
			LastSeen:          e.Timestamp,
			OccurrenceCount:   1,
			AffectedResources: []string{ip},
			Details:           map[string]any{"ip_address": ip, "source": e.Source},
		})
	}
	return out, nil
}

// HighThreatIPs reports every IPReputation at or above th.ThreatScoreHigh,
// grounded on find_suspicious_ips's threat-score half.
func HighThreatIPs(st *store.Store, th Thresholds) ([]model.Issue, error) {
	reps, err := st.GetHighThreatIPs(th.ThreatScoreHigh, 0)
	if err != nil {
		return nil, fmt.Errorf("high threat ips: %w", err)
	}
	var out []model.Issue
	for _, r := range reps {
		out = append(out, model.Issue{
			Type:              "high_threat_ip",
			Severity:          r.ThreatScore,
			Title:             fmt.Sprintf("High-threat IP: %s", r.IP),
			Description:       fmt.Sprintf("%s has threat score %d (%d failed logins, %d bans, %d total events)", r.IP, r.ThreatScore, r.FailedLoginCount, r.BannedCount, r.TotalEvents),
			FirstSeen:         r.FirstSeen,
			LastSeen:          r.LastSeen,
			OccurrenceCount:   r.TotalEvents,
			AffectedResources: []string{r.IP},
			Details: map[string]any{
				"ip_address":         r.IP,
				"threat_score":       r.ThreatScore,
				"failed_login_count": r.FailedLoginCount,
				"banned_count":       r.BannedCount,
				"type":               r.Type,
			},
		})
	}
	return out, nil
}
