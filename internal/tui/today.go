package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focuslog/internal/calendar"
	"github.com/sadopc/focuslog/internal/focus"
	"github.com/sadopc/focuslog/internal/store"
)

type blockProgress struct {
	block    calendar.TimeBlock
	progress string
}

type todayModel struct {
	store  *store.Store
	svc    *focus.Service
	now    func() time.Time
	width  int
	height int

	day            time.Time
	blocks         []blockProgress
	tasksDone      int
	tasksTotal     int
	sessionsDone   int
	focusMinutes   int
	breaksDone     int
	recommendation focus.Recommendation
	recent         []focus.FocusSession
}

func newTodayModel(s *store.Store, svc *focus.Service, now func() time.Time) todayModel {
	return todayModel{store: s, svc: svc, now: now}
}

func (d *todayModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

type todayDataMsg struct {
	day            time.Time
	blocks         []blockProgress
	tasks          []focus.FocusTask
	sessions       []focus.FocusSession
	breaks         []focus.BreakSession
	recommendation focus.Recommendation
}

func (d todayModel) loadData() tea.Cmd {
	now := d.now()
	return func() tea.Msg {
		all, err := d.store.ListBlocks()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		var blocks []blockProgress
		for _, b := range calendar.BlocksActiveOn(all, now) {
			p, _ := calendar.Progress(b, now)
			blocks = append(blocks, blockProgress{block: b, progress: p})
		}

		tasks, err := d.svc.Tasks.List(now)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		sessions, err := d.svc.Ledger.Sessions(now)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		breaks, err := d.svc.Ledger.Breaks(now)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}

		return todayDataMsg{
			day:            calendar.Day(now),
			blocks:         blocks,
			tasks:          tasks,
			sessions:       sessions,
			breaks:         breaks,
			recommendation: focus.RecommendBreak(sessions, breaks),
		}
	}
}

func (d todayModel) update(msg tea.Msg) (todayModel, tea.Cmd) {
	switch msg := msg.(type) {
	case todayDataMsg:
		d.day = msg.day
		d.blocks = msg.blocks
		d.recommendation = msg.recommendation

		d.tasksTotal = len(msg.tasks)
		d.tasksDone = 0
		for _, t := range msg.tasks {
			if t.Completed {
				d.tasksDone++
			}
		}

		d.sessionsDone, d.focusMinutes = 0, 0
		for _, s := range msg.sessions {
			if s.Completed {
				d.sessionsDone++
				d.focusMinutes += s.Duration
			}
		}
		d.breaksDone = 0
		for _, b := range msg.breaks {
			if b.Completed {
				d.breaksDone++
			}
		}

		// Most recent first, at most five.
		d.recent = nil
		for i := len(msg.sessions) - 1; i >= 0 && len(d.recent) < 5; i-- {
			d.recent = append(d.recent, msg.sessions[i])
		}
		return d, nil
	}
	return d, nil
}

func (d todayModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}
	w := d.width - 4

	return lipgloss.JoinVertical(lipgloss.Left,
		d.renderBlocksPanel(w),
		d.renderSummaryPanel(w),
		d.renderRecentPanel(w),
	)
}

func (d todayModel) renderBlocksPanel(w int) string {
	title := titleStyle.Render(d.day.Format("Monday, January 2"))
	if !calendar.IsWeekday(d.day) {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("Weekend. No time blocks run today."),
		))
	}
	if len(d.blocks) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No time blocks today. Press 4 to plan one."),
		))
	}

	rows := []string{title}
	for _, b := range d.blocks {
		rows = append(rows, fmt.Sprintf("  %s %-24s %s", swatch(b.block.Color), b.block.Project, highlightStyle.Render(b.progress)))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d todayModel) renderSummaryPanel(w int) string {
	stats := []string{
		fmt.Sprintf("%s %s", titleStyle.Render("Focus"), highlightStyle.Render(formatMinutes(d.focusMinutes))),
		fmt.Sprintf("  Sessions completed  %d", d.sessionsDone),
		fmt.Sprintf("  Breaks taken        %d", d.breaksDone),
		fmt.Sprintf("  Tasks done          %d/%d", d.tasksDone, d.tasksTotal),
	}
	if d.recommendation.ShouldBreak {
		stats = append(stats, "", successStyle.Render("  "+d.recommendation.Message))
	}
	return panelStyle.Width(w).Render(strings.Join(stats, "\n"))
}

func (d todayModel) renderRecentPanel(w int) string {
	title := titleStyle.Render("Recent Sessions")
	if len(d.recent) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No sessions yet. Press 2 to start focusing."),
		))
	}

	rows := []string{title}
	for _, s := range d.recent {
		mark := successStyle.Render("✓")
		if !s.Completed {
			mark = warningStyle.Render("●")
		}
		rows = append(rows, fmt.Sprintf("  %s %s  %-24s %s", mark, s.StartedAt.Local().Format("15:04"), s.TaskTitle, mutedStyle.Render(formatMinutes(s.Duration))))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
