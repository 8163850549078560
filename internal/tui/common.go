package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/focuslog/internal/timer"
)

// viewState represents the currently active view.
type viewState int

const (
	viewToday viewState = iota
	viewFocus
	viewTasks
	viewCalendar
	viewStats
	viewSettings
)

var viewNames = []string{"Today", "Focus", "Tasks", "Calendar", "Stats", "Settings"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
	rows int
}

// dataChangedMsg tells the app that sessions, breaks or tasks were written.
type dataChangedMsg struct{}

// sessionEndedMsg is sent when a focus countdown reaches zero.
type sessionEndedMsg struct{}

type settingsSavedMsg struct {
	prefs prefs
}

func errorStatus(err error) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
	}
}

func status(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text} }
}

// --- Signals ---

// signalQueue is the controller's notifier. Signals raised during a Tick are
// drained by the focus view after the call returns.
type signalQueue struct {
	pending []timer.Signal
}

func (q *signalQueue) Notify(s timer.Signal) error {
	q.pending = append(q.pending, s)
	return nil
}

func (q *signalQueue) drain() []timer.Signal {
	s := q.pending
	q.pending = nil
	return s
}

// signalText renders a signal as a status line, ringing the terminal bell
// once per chime when bell is set.
func signalText(s timer.Signal, bell bool) string {
	text := s.Title + " " + s.Body
	if bell {
		text += " " + strings.Repeat("\a", s.Chimes)
	}
	return text
}

// --- Helpers ---

func formatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", m, s)
}

func formatMinutes(min int) string {
	if min < 60 {
		return fmt.Sprintf("%dm", min)
	}
	return fmt.Sprintf("%dh %02dm", min/60, min%60)
}

func cursorPrefix(selected bool) string {
	if selected {
		return "> "
	}
	return "  "
}
