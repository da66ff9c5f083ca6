// Package ui implements Logly's optional live-refresh terminal view,
// grounded on xtop's ui/app.go Model/Init/Update/View loop and
// ui/styles.go's lipgloss palette, trimmed from xtop's multi-page
// overview to a single scrolling health/security summary screen.
package ui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/logly/logly/analyze"
	"github.com/logly/logly/detect"
	"github.com/logly/logly/store"
)

var (
	colorRed    = lipgloss.Color("#FF5555")
	colorYellow = lipgloss.Color("#F1FA8C")
	colorGreen  = lipgloss.Color("#50FA7B")
	colorCyan   = lipgloss.Color("#8BE9FD")
	colorGray   = lipgloss.Color("#6272A4")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	labelStyle = lipgloss.NewStyle().Foreground(colorGray)
	helpStyle  = lipgloss.NewStyle().Foreground(colorGray)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorGray).
			Padding(0, 1)
)

func bandStyle(band string) lipgloss.Style {
	switch band {
	case "critical", "poor":
		return lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	case "high", "degraded", "fair":
		return lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(colorGreen)
	}
}

const refreshInterval = 5 * time.Second

type tickMsg time.Time

type snapshotMsg struct {
	health   analyze.HealthReport
	security analyze.SecurityReport
	err      error
}

// Model is the bubbletea model driving `logly watch`.
type Model struct {
	st       *store.Store
	th       detect.Thresholds
	hours    int
	health   analyze.HealthReport
	security analyze.SecurityReport
	err      error
	width    int
}

// NewModel builds a watch Model against an already-open store.
func NewModel(st *store.Store, th detect.Thresholds, hours int) Model {
	return Model{st: st, th: th, hours: hours}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refresh(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) refresh() tea.Cmd {
	return func() tea.Msg {
		now := time.Now().Unix()
		since := now - int64(m.hours)*3600
		health, err := analyze.AnalyzeSystemHealth(m.st, since, now, m.th)
		if err != nil {
			return snapshotMsg{err: err}
		}
		security, err := analyze.AnalyzeSecurityPosture(m.st, since, now, m.th)
		if err != nil {
			return snapshotMsg{err: err}
		}
		return snapshotMsg{health: health, security: security}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
		return m, nil
	case tickMsg:
		return m, m.refresh()
	case snapshotMsg:
		m.err = msg.err
		if msg.err == nil {
			m.health = msg.health
			m.security = msg.security
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) View() string {
	if m.err != nil {
		return fmt.Sprintf("logly watch: %v\n", m.err)
	}

	h := m.health
	s := m.security

	body := fmt.Sprintf(
		"%s\n\n%s %s  (security %.0f perf %.0f error %.0f network %.0f)\n\n%s %s  risk=%d  threat-ips=%d  brute-force=%d\n",
		titleStyle.Render(fmt.Sprintf("logly watch — last %dh", m.hours)),
		labelStyle.Render("health:"), bandStyle(h.Status).Render(fmt.Sprintf("%d (%s)", h.HealthScore, h.Status)),
		h.SecurityScore, h.PerformanceScore, h.ErrorScore, h.NetworkScore,
		labelStyle.Render("security:"), bandStyle(s.Posture).Render(fmt.Sprintf("%d (%s)", s.RiskScore, s.Posture)),
		s.RiskScore, s.HighThreatIPs, s.BruteForce,
	)

	if len(h.TopIssues) > 0 {
		body += "\ntop issues:\n"
		for _, iss := range h.TopIssues {
			body += fmt.Sprintf("  %s %-22s %s\n", bandStyle(iss.Band()).Render(fmt.Sprintf("%3d", iss.Severity)), iss.Type, iss.Title)
		}
	}

	body += "\n" + helpStyle.Render("q to quit, refreshes every 5s")

	return panelStyle.Render(body)
}
