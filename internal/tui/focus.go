package tui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/wordwrap"

	"github.com/sadopc/focuslog/internal/focus"
	"github.com/sadopc/focuslog/internal/timer"
)

// focusModel is the view over timer.Controller. The controller is shared
// through a pointer, so copies of the model drive the same countdown.
type focusModel struct {
	svc    *focus.Service
	ctrl   *timer.Controller
	queue  *signalQueue
	now    func() time.Time
	prefs  prefs
	width  int
	height int

	tasks      []focus.FocusTask
	taskCursor int // 0 is free focus, i is tasks[i-1]

	notes    textinput.Model
	lastNote string

	breakCursor    int
	activityCursor int
}

func newFocusModel(svc *focus.Service, p prefs, now func() time.Time, log *slog.Logger) focusModel {
	q := &signalQueue{}
	ti := textinput.New()
	ti.Placeholder = "What did you get done? (optional)"
	ti.CharLimit = 500
	return focusModel{
		svc:   svc,
		ctrl:  timer.New(svc, q, log, p.focusMinutes),
		queue: q,
		now:   now,
		prefs: p,
		notes: ti,
	}
}

func (f *focusModel) setSize(w, h int) {
	f.width = w
	f.height = h
	f.notes.Width = max(20, w-12)
}

// capturing reports whether the notes input owns the keyboard.
func (f focusModel) capturing() bool {
	_, ok := f.ctrl.State().(timer.AwaitingCompletionNotes)
	return ok
}

func (f focusModel) active() bool {
	switch f.ctrl.State().(type) {
	case timer.Running, timer.Paused, timer.OnBreak:
		return true
	}
	return false
}

// mount runs the start-up orphan scan.
func (f focusModel) mount() (focus.Report, error) {
	return f.ctrl.Mount(f.now())
}

type focusTasksMsg struct {
	tasks []focus.FocusTask
}

func (f focusModel) loadTasks() tea.Cmd {
	now := f.now()
	return func() tea.Msg {
		tasks, err := f.svc.Tasks.List(now)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		open := tasks[:0]
		for _, t := range tasks {
			if !t.Completed {
				open = append(open, t)
			}
		}
		return focusTasksMsg{tasks: open}
	}
}

func (f focusModel) update(msg tea.Msg) (focusModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return f.tick()

	case focusTasksMsg:
		f.tasks = msg.tasks
		if f.taskCursor > len(f.tasks) {
			f.taskCursor = 0
		}
		return f, nil

	case settingsSavedMsg:
		f.prefs = msg.prefs
		// Only applies while no countdown is active.
		_ = f.ctrl.SetDuration(msg.prefs.focusMinutes)
		return f, nil

	case tea.KeyMsg:
		if _, pending := f.ctrl.Orphans(); pending {
			return f.updateOrphans(msg)
		}
		switch f.ctrl.State().(type) {
		case timer.Idle:
			return f.updateIdle(msg)
		case timer.AwaitingTaskSelection:
			return f.updatePicker(msg)
		case timer.Running, timer.Paused:
			return f.updateRunning(msg)
		case timer.AwaitingCompletionNotes:
			return f.updateNotes(msg)
		case timer.AwaitingBreakDecision:
			return f.updateBreakDecision(msg)
		case timer.OnBreak:
			return f.updateOnBreak(msg)
		}
	}
	return f, nil
}

func (f focusModel) tick() (focusModel, tea.Cmd) {
	_, wasRunning := f.ctrl.State().(timer.Running)
	_, wasBreak := f.ctrl.State().(timer.OnBreak)
	if err := f.ctrl.Tick(f.now()); err != nil {
		return f, errorStatus(err)
	}

	var cmds []tea.Cmd
	for _, s := range f.queue.drain() {
		if f.prefs.notifications {
			cmds = append(cmds, status(signalText(s, f.prefs.bell)))
		}
	}
	switch f.ctrl.State().(type) {
	case timer.AwaitingCompletionNotes:
		if wasRunning {
			f.notes.Reset()
			cmds = append(cmds, f.notes.Focus(), func() tea.Msg { return sessionEndedMsg{} })
		}
	case timer.AwaitingTaskSelection:
		if wasBreak {
			cmds = append(cmds, status("Break over. Pick the next task."), f.loadTasks(), dataChanged)
		}
	}
	return f, tea.Batch(cmds...)
}

func dataChanged() tea.Msg { return dataChangedMsg{} }

func (f focusModel) updateOrphans(msg tea.KeyMsg) (focusModel, tea.Cmd) {
	var action focus.ResolveAction
	switch {
	case key.Matches(msg, keys.Complete):
		action = focus.ActionComplete
	case key.Matches(msg, keys.Delete):
		action = focus.ActionDelete
	case key.Matches(msg, keys.Keep):
		f.ctrl.KeepOrphans()
		return f, status("Orphaned sessions kept")
	default:
		return f, nil
	}

	now := f.now()
	total := 0
	for _, kind := range []focus.OrphanKind{focus.OrphanSessions, focus.OrphanBreaks} {
		n, err := f.ctrl.ResolveOrphans(now, kind, action)
		if err != nil {
			return f, errorStatus(err)
		}
		total += n
	}
	verb := "Completed"
	if action == focus.ActionDelete {
		verb = "Deleted"
	}
	return f, tea.Batch(status(fmt.Sprintf("%s %d orphaned records", verb, total)), dataChanged)
}

func (f focusModel) updateIdle(msg tea.KeyMsg) (focusModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Start), key.Matches(msg, keys.Enter):
		if err := f.ctrl.Start(); err != nil {
			return f, errorStatus(err)
		}
		f.taskCursor = 0
		return f, f.loadTasks()
	case key.Matches(msg, keys.Longer):
		f.step(1)
	case key.Matches(msg, keys.Shorter):
		f.step(-1)
	}
	return f, nil
}

// step nudges the session length, clamped to the controller's range.
func (f focusModel) step(delta int) {
	_ = f.ctrl.SetDuration(f.ctrl.Duration() + delta)
}

func (f focusModel) updatePicker(msg tea.KeyMsg) (focusModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if f.taskCursor > 0 {
			f.taskCursor--
		}
	case key.Matches(msg, keys.Down):
		if f.taskCursor < len(f.tasks) {
			f.taskCursor++
		}
	case key.Matches(msg, keys.Longer):
		f.step(1)
	case key.Matches(msg, keys.Shorter):
		f.step(-1)
	case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Start):
		var taskID *string
		title := ""
		if f.taskCursor > 0 && f.taskCursor <= len(f.tasks) {
			t := f.tasks[f.taskCursor-1]
			taskID = &t.ID
			title = t.Title
		}
		if err := f.ctrl.Confirm(f.now(), taskID, title); err != nil {
			return f, errorStatus(err)
		}
		return f, status(fmt.Sprintf("Focus started: %d min", f.ctrl.Duration()))
	case key.Matches(msg, keys.Back):
		f.ctrl.Reset()
	}
	return f, nil
}

func (f focusModel) updateRunning(msg tea.KeyMsg) (focusModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Pause):
		var err error
		if _, paused := f.ctrl.State().(timer.Paused); paused {
			err = f.ctrl.Resume()
		} else {
			err = f.ctrl.Pause()
		}
		if err != nil {
			return f, errorStatus(err)
		}
	case key.Matches(msg, keys.Stop):
		f.ctrl.Reset()
		return f, status("Focus session abandoned")
	}
	return f, nil
}

func (f focusModel) updateNotes(msg tea.KeyMsg) (focusModel, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		var notes *string
		if v := strings.TrimSpace(f.notes.Value()); v != "" {
			notes = &v
		}
		if err := f.ctrl.Complete(f.now(), notes); err != nil {
			return f, errorStatus(err)
		}
		f.lastNote = ""
		if notes != nil {
			f.lastNote = *notes
		}
		f.notes.Blur()
		f.resetBreakChoice()
		return f, tea.Batch(status("Session saved"), dataChanged)
	case tea.KeyEsc:
		if err := f.ctrl.Skip(); err != nil {
			return f, errorStatus(err)
		}
		f.notes.Blur()
		return f, status("Session left incomplete")
	}

	var cmd tea.Cmd
	f.notes, cmd = f.notes.Update(msg)
	return f, cmd
}

// resetBreakChoice preselects the recommended length and the preferred
// activity.
func (f *focusModel) resetBreakChoice() {
	f.breakCursor = 0
	f.activityCursor = 0
	if d, ok := f.ctrl.State().(timer.AwaitingBreakDecision); ok {
		for i, m := range focus.BreakOptions {
			if m == d.Recommendation.Duration {
				f.breakCursor = i
			}
		}
	}
	for i, a := range focus.BreakActivities {
		if a == f.prefs.breakActivity {
			f.activityCursor = i
		}
	}
}

func (f focusModel) updateBreakDecision(msg tea.KeyMsg) (focusModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Left):
		if f.breakCursor > 0 {
			f.breakCursor--
		}
	case key.Matches(msg, keys.Right):
		if f.breakCursor < len(focus.BreakOptions)-1 {
			f.breakCursor++
		}
	case key.Matches(msg, keys.Up):
		if f.activityCursor > 0 {
			f.activityCursor--
		}
	case key.Matches(msg, keys.Down):
		if f.activityCursor < len(focus.BreakActivities)-1 {
			f.activityCursor++
		}
	case key.Matches(msg, keys.Enter):
		minutes := focus.BreakOptions[f.breakCursor]
		activity := focus.BreakActivities[f.activityCursor]
		if err := f.ctrl.Accept(f.now(), minutes, &activity); err != nil {
			return f, errorStatus(err)
		}
		return f, tea.Batch(status(fmt.Sprintf("Break started: %d min %s", minutes, activity)), dataChanged)
	case key.Matches(msg, keys.Back):
		if err := f.ctrl.Decline(); err != nil {
			return f, errorStatus(err)
		}
		return f, status("Break skipped")
	}
	return f, nil
}

func (f focusModel) updateOnBreak(msg tea.KeyMsg) (focusModel, tea.Cmd) {
	if key.Matches(msg, keys.Stop) || key.Matches(msg, keys.Enter) {
		if err := f.ctrl.FinishBreak(f.now()); err != nil {
			return f, errorStatus(err)
		}
		return f, tea.Batch(status("Break finished early"), f.loadTasks(), dataChanged)
	}
	return f, nil
}

// --- View ---

func (f focusModel) view() string {
	w := f.width - 4
	if w < 20 {
		return "Terminal too small"
	}

	if rep, pending := f.ctrl.Orphans(); pending {
		return f.renderOrphans(w, rep)
	}

	var body string
	var controls string
	switch s := f.ctrl.State().(type) {
	case timer.Idle:
		body = lipgloss.JoinVertical(lipgloss.Center,
			timerStyle.Width(w-6).Render(formatCountdown(time.Duration(f.ctrl.Duration())*time.Minute)),
			mutedStyle.Render("■  READY"),
			f.renderLastNote(w),
		)
		controls = "s: start  +/-: length"
	case timer.AwaitingTaskSelection:
		body = f.renderPicker(w)
		controls = "enter: start  +/-: length  esc: cancel"
	case timer.Running:
		body = lipgloss.JoinVertical(lipgloss.Center,
			timerRunningStyle.Width(w-6).Render(formatCountdown(s.Remaining)),
			accentStyle.Render("●  FOCUS"),
			highlightStyle.Render(s.Session.TaskTitle),
			f.renderProgress(w, s.Remaining),
		)
		controls = "space: pause  x: reset"
	case timer.Paused:
		body = lipgloss.JoinVertical(lipgloss.Center,
			timerPausedStyle.Width(w-6).Render(formatCountdown(s.Remaining)),
			warningStyle.Render("⏸  PAUSED"),
			highlightStyle.Render(s.Session.TaskTitle),
			f.renderProgress(w, s.Remaining),
		)
		controls = "space: resume  x: reset"
	case timer.AwaitingCompletionNotes:
		body = lipgloss.JoinVertical(lipgloss.Left,
			successStyle.Bold(true).Render("Session complete: "+s.Session.TaskTitle),
			"",
			"Notes",
			f.notes.View(),
		)
		controls = "enter: save  esc: leave incomplete"
	case timer.AwaitingBreakDecision:
		body = f.renderBreakDecision(w, s.Recommendation)
		controls = "←/→: length  ↑/↓: activity  enter: take break  esc: skip"
	case timer.OnBreak:
		body = lipgloss.JoinVertical(lipgloss.Center,
			timerBreakStyle.Width(w-6).Render(formatCountdown(s.Remaining)),
			successStyle.Bold(true).Render("BREAK"),
			mutedStyle.Render(breakLabel(s.Break)),
		)
		controls = "x/enter: end break"
	}

	title := titleStyle.Render("Focus")
	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Center, title, "", body, "", mutedStyle.Render(controls)),
	)
}

func breakLabel(b focus.BreakSession) string {
	if b.Activity != nil && *b.Activity != "" {
		return fmt.Sprintf("%d min · %s", b.Duration, *b.Activity)
	}
	return fmt.Sprintf("%d min", b.Duration)
}

func (f focusModel) renderLastNote(w int) string {
	if f.lastNote == "" {
		return ""
	}
	return mutedStyle.Render(wordwrap.String("Last note: "+f.lastNote, max(20, w-10)))
}

// renderProgress draws a bar of elapsed time.
func (f focusModel) renderProgress(w int, remaining time.Duration) string {
	total := time.Duration(f.ctrl.Duration()) * time.Minute
	barWidth := min(40, w-10)
	if total <= 0 || barWidth <= 0 {
		return ""
	}
	filled := int(float64(barWidth) * float64(total-remaining) / float64(total))
	filled = max(0, min(barWidth, filled))
	return accentStyle.Render(strings.Repeat("█", filled)) + mutedStyle.Render(strings.Repeat("░", barWidth-filled))
}

func (f focusModel) renderPicker(w int) string {
	rows := []string{titleStyle.Render(fmt.Sprintf("What are you focusing on? (%d min)", f.ctrl.Duration())), ""}
	rows = append(rows, pickerRow(f.taskCursor == 0, focus.FreeFocusTitle, ""))
	for i, t := range f.tasks {
		meta := t.Category.Label()
		if t.EstimatedSessions != nil {
			meta += fmt.Sprintf("  %d/%d", t.SessionsCompleted, *t.EstimatedSessions)
		} else if t.SessionsCompleted > 0 {
			meta += fmt.Sprintf("  %d done", t.SessionsCompleted)
		}
		rows = append(rows, pickerRow(f.taskCursor == i+1, t.Title, meta))
	}
	return lipgloss.NewStyle().Width(w - 6).Render(strings.Join(rows, "\n"))
}

func pickerRow(selected bool, title, meta string) string {
	style := normalItemStyle
	if selected {
		style = selectedItemStyle
	}
	row := style.Render(cursorPrefix(selected) + title)
	if meta != "" {
		row += mutedStyle.Render("  " + meta)
	}
	return row
}

func (f focusModel) renderBreakDecision(w int, rec focus.Recommendation) string {
	var lengths []string
	for i, m := range focus.BreakOptions {
		label := fmt.Sprintf(" %d min ", m)
		if i == f.breakCursor {
			lengths = append(lengths, activeTabStyle.Render(label))
		} else {
			lengths = append(lengths, inactiveTabStyle.Render(label))
		}
	}
	var activities []string
	for i, a := range focus.BreakActivities {
		activities = append(activities, pickerRow(i == f.activityCursor, a, ""))
	}
	return lipgloss.NewStyle().Width(w - 6).Render(lipgloss.JoinVertical(lipgloss.Left,
		successStyle.Bold(true).Render(wordwrap.String(rec.Message, max(20, w-10))),
		"",
		lipgloss.JoinHorizontal(lipgloss.Bottom, lengths...),
		"",
		strings.Join(activities, "\n"),
	))
}

func (f focusModel) renderOrphans(w int, rep focus.Report) string {
	now := f.now()
	rows := []string{
		warningStyle.Bold(true).Render("Unfinished sessions from earlier today"),
		"",
	}
	for _, s := range rep.Sessions {
		rows = append(rows, orphanRow("focus", s.TaskTitle, s.StartedAt, now, focus.IsStale(s, now)))
	}
	for _, b := range rep.Breaks {
		rows = append(rows, orphanRow("break", breakLabel(b), b.StartedAt, now, focus.IsStale(b, now)))
	}
	rows = append(rows, "", mutedStyle.Render("c: mark completed  d: delete  i: ignore for now"))
	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func orphanRow(kind, title string, started, now time.Time, stale bool) string {
	row := fmt.Sprintf("  %-6s %-30s started %s", kind, title, humanize.RelTime(started, now, "ago", "from now"))
	if stale {
		row += warningStyle.Render("  stale")
	}
	return row
}
