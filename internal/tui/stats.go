package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focuslog/internal/calendar"
	"github.com/sadopc/focuslog/internal/focus"
)

const statsDays = 7

type dayStats struct {
	day      time.Time
	minutes  int
	sessions int
	breaks   int
}

type statsModel struct {
	svc    *focus.Service
	now    func() time.Time
	width  int
	height int

	days   []dayStats
	offset int // 7-day windows back from today (0 = current)

	chart barchart.Model
}

func newStatsModel(svc *focus.Service, now func() time.Time) statsModel {
	return statsModel{
		svc:   svc,
		now:   now,
		chart: barchart.New(60, 12),
	}
}

func (r *statsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type statsDataMsg struct {
	days []dayStats
}

// window returns the statsDays days ending offset windows before today.
func (r statsModel) window() []time.Time {
	end := calendar.Day(r.now()).AddDate(0, 0, -statsDays*r.offset)
	days := make([]time.Time, statsDays)
	for i := range days {
		days[i] = end.AddDate(0, 0, i-statsDays+1)
	}
	return days
}

func (r statsModel) refresh() tea.Cmd {
	days := r.window()
	return func() tea.Msg {
		minutes, err := r.svc.Ledger.FocusMinutes(days)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		out := make([]dayStats, len(days))
		for i, d := range days {
			out[i] = dayStats{day: d, minutes: minutes[i]}
			sessions, err := r.svc.Ledger.SessionsOn(d)
			if err != nil {
				return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
			}
			for _, s := range sessions {
				if s.Completed {
					out[i].sessions++
				}
			}
			breaks, err := r.svc.Ledger.BreaksOn(d)
			if err != nil {
				return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
			}
			for _, b := range breaks {
				if b.Completed {
					out[i].breaks++
				}
			}
		}
		return statsDataMsg{days: out}
	}
}

func (r statsModel) update(msg tea.Msg) (statsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case statsDataMsg:
		r.days = msg.days
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.offset++
			return r, r.refresh()
		case key.Matches(msg, keys.Right):
			if r.offset > 0 {
				r.offset--
			}
			return r, r.refresh()
		}
	}
	return r, nil
}

func (r *statsModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	bars := make([]barchart.BarData, 0, len(r.days))
	for _, d := range r.days {
		style := lipgloss.NewStyle().Foreground(colorAccent)
		if !calendar.IsWeekday(d.day) {
			style = lipgloss.NewStyle().Foreground(colorSubtle)
		}
		bars = append(bars, barchart.BarData{
			Label:  d.day.Format("Mon 02"),
			Values: []barchart.BarValue{{Name: "focus", Value: float64(d.minutes), Style: style}},
		})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r statsModel) view() string {
	w := r.width - 4

	days := r.window()
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s to %s", days[0].Format("Jan 02"), days[len(days)-1].Format("Jan 02, 2006")))

	total := 0
	for _, d := range r.days {
		total += d.minutes
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Focus Minutes"), "  ", dateLabel, "  ", highlightStyle.Render(formatMinutes(total)),
	)

	nav := mutedStyle.Render("  ←/→: previous/next week")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", r.chart.View(), "", r.renderTable(w), "", nav,
		),
	)
}

func (r statsModel) renderTable(w int) string {
	if len(r.days) == 0 {
		return mutedStyle.Render("  No data for this period")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %10s %10s %8s", "Date", "Focus", "Sessions", "Breaks")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 44))))
	for _, d := range r.days {
		rows = append(rows, fmt.Sprintf("  %-12s %10s %10d %8d",
			calendar.FormatDate(d.day), formatMinutes(d.minutes), d.sessions, d.breaks))
	}
	return strings.Join(rows, "\n")
}
