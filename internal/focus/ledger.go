package focus

import (
	"strings"
	"time"

	"github.com/sadopc/focuslog/internal/calendar"
)

// Ledger owns the day's focus-sessions and break-sessions collections.
type Ledger struct {
	svc *Service
}

func (l *Ledger) Sessions(now time.Time) ([]FocusSession, error) {
	return l.SessionsOn(now)
}

// SessionsOn returns the focus sessions recorded for the calendar day of date.
func (l *Ledger) SessionsOn(date time.Time) ([]FocusSession, error) {
	items, _, err := load[FocusSession](l.svc.backend, KindSessions, DayKey(date))
	return items, err
}

func (l *Ledger) Breaks(now time.Time) ([]BreakSession, error) {
	return l.BreaksOn(now)
}

func (l *Ledger) BreaksOn(date time.Time) ([]BreakSession, error) {
	items, _, err := load[BreakSession](l.svc.backend, KindBreaks, DayKey(date))
	return items, err
}

// StartSession records a new incomplete focus session. A nil taskID starts
// free focus time. An empty title is filled from the task, or FreeFocusTitle.
func (l *Ledger) StartSession(now time.Time, taskID *string, title string, minutes int) (FocusSession, error) {
	if minutes <= 0 {
		return FocusSession{}, &ValidationError{Field: "duration", Reason: "must be positive"}
	}

	l.svc.mu.Lock()
	defer l.svc.mu.Unlock()

	day := DayKey(now)
	title = strings.TrimSpace(title)
	if taskID == nil {
		if title == "" {
			title = FreeFocusTitle
		}
	} else if title == "" {
		tasks, _, err := load[FocusTask](l.svc.backend, KindTasks, day)
		if err != nil {
			return FocusSession{}, err
		}
		for _, t := range tasks {
			if t.ID == *taskID {
				title = t.Title
				break
			}
		}
	}

	s := FocusSession{
		ID:        newID("session"),
		TaskTitle: title,
		Duration:  minutes,
		StartedAt: now.UTC(),
		Date:      day,
	}
	if taskID != nil {
		s.TaskID = ptr(*taskID)
	}

	items, version, err := load[FocusSession](l.svc.backend, KindSessions, day)
	if err != nil {
		return FocusSession{}, err
	}
	items = append(items, s)
	if err := save(l.svc.backend, KindSessions, day, items, version); err != nil {
		return FocusSession{}, err
	}
	l.svc.log.Debug("session started", "id", s.ID, "task", s.TaskTitle, "minutes", minutes)
	return s, nil
}

// CompleteSession marks the session done and bumps its task's counter. It is
// a no-op for unknown or already completed sessions.
func (l *Ledger) CompleteSession(now time.Time, id string, notes *string) error {
	l.svc.mu.Lock()
	defer l.svc.mu.Unlock()
	_, err := l.completeSession(now, id, notes)
	return err
}

// completeSession expects svc.mu to be held. It reports whether the session
// changed state.
func (l *Ledger) completeSession(now time.Time, id string, notes *string) (bool, error) {
	day := DayKey(now)
	items, version, err := load[FocusSession](l.svc.backend, KindSessions, day)
	if err != nil {
		return false, err
	}
	idx := -1
	for i := range items {
		if items[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 || items[idx].Completed {
		return false, nil
	}

	s := &items[idx]
	s.Completed = true
	s.CompletedAt = ptr(now.UTC())
	if notes != nil {
		s.Notes = ptr(*notes)
	}
	if err := save(l.svc.backend, KindSessions, day, items, version); err != nil {
		return false, err
	}

	// Session is persisted before the task counter: increment at most once.
	if s.TaskID != nil {
		if err := l.svc.Tasks.increment(day, *s.TaskID); err != nil {
			l.svc.log.Error("increment task sessions", "task", *s.TaskID, "session", id, "err", err)
			return true, err
		}
	}
	l.svc.log.Debug("session completed", "id", id)
	return true, nil
}

func (l *Ledger) StartBreak(now time.Time, minutes int, activity *string) (BreakSession, error) {
	if minutes <= 0 {
		return BreakSession{}, &ValidationError{Field: "duration", Reason: "must be positive"}
	}

	l.svc.mu.Lock()
	defer l.svc.mu.Unlock()

	day := DayKey(now)
	b := BreakSession{
		ID:        newID("break"),
		Duration:  minutes,
		StartedAt: now.UTC(),
		Date:      day,
	}
	if activity != nil && strings.TrimSpace(*activity) != "" {
		b.Activity = ptr(strings.TrimSpace(*activity))
	}

	items, version, err := load[BreakSession](l.svc.backend, KindBreaks, day)
	if err != nil {
		return BreakSession{}, err
	}
	items = append(items, b)
	if err := save(l.svc.backend, KindBreaks, day, items, version); err != nil {
		return BreakSession{}, err
	}
	return b, nil
}

// CompleteBreak marks the break done. Unknown or completed breaks are ignored.
func (l *Ledger) CompleteBreak(now time.Time, id string) error {
	l.svc.mu.Lock()
	defer l.svc.mu.Unlock()
	_, err := l.completeBreak(now, id)
	return err
}

func (l *Ledger) completeBreak(now time.Time, id string) (bool, error) {
	day := DayKey(now)
	items, version, err := load[BreakSession](l.svc.backend, KindBreaks, day)
	if err != nil {
		return false, err
	}
	for i := range items {
		if items[i].ID != id {
			continue
		}
		if items[i].Completed {
			return false, nil
		}
		items[i].Completed = true
		items[i].CompletedAt = ptr(now.UTC())
		if err := save(l.svc.backend, KindBreaks, day, items, version); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// FocusMinutes sums the planned minutes of completed sessions on each of the
// given days.
func (l *Ledger) FocusMinutes(days []time.Time) ([]int, error) {
	out := make([]int, len(days))
	for i, d := range days {
		sessions, err := l.SessionsOn(calendar.Day(d))
		if err != nil {
			return nil, err
		}
		for _, s := range sessions {
			if s.Completed {
				out[i] += s.Duration
			}
		}
	}
	return out, nil
}
