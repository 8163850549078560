package tui

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mitchellh/go-homedir"

	"github.com/sadopc/focuslog/internal/calendar"
	"github.com/sadopc/focuslog/internal/export"
	"github.com/sadopc/focuslog/internal/focus"
	"github.com/sadopc/focuslog/internal/store"
)

// exportDays is how far back the export picker reaches, today included.
const exportDays = 30

var exportFormats = []string{"csv", "json", "yaml"}

// Deps is what the TUI needs from the caller.
type Deps struct {
	Store   *store.Store
	Service *focus.Service
	Log     *slog.Logger
	Now     func() time.Time
}

// Run starts the program on the alternate screen and blocks until it exits.
func Run(d Deps) error {
	_, err := tea.NewProgram(NewApp(d), tea.WithAltScreen()).Run()
	return err
}

// App is the root Bubble Tea model.
type App struct {
	store *store.Store
	svc   *focus.Service
	log   *slog.Logger
	now   func() time.Time

	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int
	exportDir     string

	today    todayModel
	focus    focusModel
	tasks    tasksModel
	calendar calendarModel
	stats    statsModel
	settings settingsModel

	help        help.Model
	status      string
	statusError bool
}

func NewApp(d Deps) App {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Log == nil {
		d.Log = slog.New(slog.DiscardHandler)
	}
	h := help.New()
	h.ShowAll = false

	dir, err := homedir.Dir()
	if err != nil {
		dir = "."
	}

	p := loadPrefs(d.Store)
	a := App{
		store:      d.Store,
		svc:        d.Service,
		log:        d.Log,
		now:        d.Now,
		activeView: viewToday,
		exportDir:  dir,
		today:      newTodayModel(d.Store, d.Service, d.Now),
		focus:      newFocusModel(d.Service, p, d.Now, d.Log),
		tasks:      newTasksModel(d.Service, d.Now),
		calendar:   newCalendarModel(d.Store, d.Now),
		stats:      newStatsModel(d.Service, d.Now),
		settings:   newSettingsModel(d.Store),
		help:       h,
	}

	rep, err := a.focus.mount()
	switch {
	case err != nil:
		a.setStatus("Orphan scan failed: "+err.Error(), true)
	case !rep.Empty():
		a.activeView = viewFocus
		a.setStatus(fmt.Sprintf("%d unfinished records from earlier today", rep.Count()), false)
	}
	return a
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.today.loadData(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a *App) setStatus(text string, isError bool) {
	a.status = text
	a.statusError = isError
	if isError {
		a.log.Error("tui", "msg", text)
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.today.setSize(a.width, contentHeight)
		a.focus.setSize(a.width, contentHeight)
		a.tasks.setSize(a.width, contentHeight)
		a.calendar.setSize(a.width, contentHeight)
		a.stats.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchTo(viewToday)
		case key.Matches(msg, keys.Tab2):
			return a.switchTo(viewFocus)
		case key.Matches(msg, keys.Tab3):
			return a.switchTo(viewTasks)
		case key.Matches(msg, keys.Tab4):
			return a.switchTo(viewCalendar)
		case key.Matches(msg, keys.Tab5):
			return a.switchTo(viewStats)
		case key.Matches(msg, keys.Tab6):
			return a.switchTo(viewSettings)
		case key.Matches(msg, keys.Tab):
			return a.switchTo((a.activeView + 1) % viewState(len(viewNames)))
		}

	case tickMsg:
		cmds = append(cmds, tickCmd())
		// The countdown runs whichever view is showing.
		var cmd tea.Cmd
		a.focus, cmd = a.focus.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case statusMsg:
		a.setStatus(msg.text, msg.isError)
		return a, nil

	case sessionEndedMsg:
		a.activeView = viewFocus
		return a, nil

	case dataChangedMsg:
		return a, a.refreshCurrentView()

	case settingsSavedMsg:
		var cmd1, cmd2 tea.Cmd
		a.focus, cmd1 = a.focus.update(msg)
		a.settings, cmd2 = a.settings.update(msg)
		a.setStatus("Settings saved", false)
		return a, tea.Batch(cmd1, cmd2)

	// Loads land on their owning view even after the user has moved on.
	case focusTasksMsg:
		var cmd tea.Cmd
		a.focus, cmd = a.focus.update(msg)
		return a, cmd
	case todayDataMsg:
		var cmd tea.Cmd
		a.today, cmd = a.today.update(msg)
		return a, cmd
	case tasksDataMsg:
		var cmd tea.Cmd
		a.tasks, cmd = a.tasks.update(msg)
		return a, cmd
	case blocksDataMsg:
		var cmd tea.Cmd
		a.calendar, cmd = a.calendar.update(msg)
		return a, cmd
	case statsDataMsg:
		var cmd tea.Cmd
		a.stats, cmd = a.stats.update(msg)
		return a, cmd
	case settingsDataMsg:
		var cmd tea.Cmd
		a.settings, cmd = a.settings.update(msg)
		return a, cmd

	case exportDoneMsg:
		a.setStatus(fmt.Sprintf("Exported %d rows to %s", msg.rows, msg.path), false)
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) switchTo(v viewState) (tea.Model, tea.Cmd) {
	a.activeView = v
	return a, a.refreshCurrentView()
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewToday:
		a.today, cmd = a.today.update(msg)
	case viewFocus:
		a.focus, cmd = a.focus.update(msg)
	case viewTasks:
		a.tasks, cmd = a.tasks.update(msg)
	case viewCalendar:
		a.calendar, cmd = a.calendar.update(msg)
	case viewStats:
		a.stats, cmd = a.stats.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewFocus:
		return a.focus.capturing()
	case viewTasks:
		return a.tasks.formActive
	case viewCalendar:
		return a.calendar.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewToday:
		return a.today.loadData()
	case viewFocus:
		return a.focus.loadTasks()
	case viewTasks:
		return a.tasks.refresh()
	case viewCalendar:
		return a.calendar.refresh()
	case viewStats:
		return a.stats.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewToday:
		content = a.today.view()
	case viewFocus:
		content = a.focus.view()
	case viewTasks:
		content = a.tasks.view()
	case viewCalendar:
		content = a.calendar.view()
	case viewStats:
		content = a.stats.view()
	case viewSettings:
		content = a.settings.view()
	}

	// Calculate available height for content
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(1, a.height-headerHeight-footerHeight)

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(label))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("focuslog")
	gap := max(1, a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		// Bells are for the terminal, not the status line.
		text := strings.ReplaceAll(a.status, "\a", "")
		if a.statusError {
			status = errorStyle.Render(" " + text)
		} else {
			status = mutedStyle.Render(" " + text)
		}
	}

	// Countdown indicator in footer
	timerInfo := ""
	if a.focus.active() {
		remaining := formatCountdown(a.focus.ctrl.Remaining())
		switch a.focus.ctrl.State().Name() {
		case "paused":
			timerInfo = warningStyle.Render(" ⏸ " + remaining)
		case "on-break":
			timerInfo = successStyle.Render(" ☕ " + remaining)
		default:
			timerInfo = accentStyle.Render(" ● " + remaining)
		}
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := max(1, a.width-lipgloss.Width(left)-lipgloss.Width(right)-2)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render(fmt.Sprintf("Export the last %d days", exportDays))
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range exportFormats {
		style := normalItemStyle
		if i == a.exportCursor {
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursorPrefix(i == a.exportCursor)+strings.ToUpper(f)))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(exportFormats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format string) tea.Cmd {
	now := a.now()
	return func() tea.Msg {
		to := calendar.Day(now)
		from := to.AddDate(0, 0, 1-exportDays)
		rows, err := export.Collect(a.svc.Ledger, from, to)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		path := filepath.Join(a.exportDir, fmt.Sprintf("focuslog-export-%s.%s", calendar.FormatDate(now), format))
		if err := export.Write(format, rows, path); err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		a.log.Info("exported", "rows", len(rows), "format", format, "path", path)
		return exportDoneMsg{path: path, rows: len(rows)}
	}
}
