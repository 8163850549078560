package export

import (
	"fmt"
	"sort"
	"time"

	"github.com/sadopc/focuslog/internal/calendar"
	"github.com/sadopc/focuslog/internal/focus"
)

const (
	KindFocus = "focus"
	KindBreak = "break"
)

// Row is one exported focus session or break.
type Row struct {
	Kind        string     `json:"kind" yaml:"kind"`
	ID          string     `json:"id" yaml:"id"`
	Date        string     `json:"date" yaml:"date"`
	Title       string     `json:"title" yaml:"title"`
	TaskID      string     `json:"task_id,omitempty" yaml:"task_id,omitempty"`
	StartedAt   time.Time  `json:"started_at" yaml:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	Minutes     int        `json:"minutes" yaml:"minutes"`
	Completed   bool       `json:"completed" yaml:"completed"`
	Notes       string     `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Rows merges sessions and breaks ordered by start time. Breaks are titled
// with their activity.
func Rows(sessions []focus.FocusSession, breaks []focus.BreakSession) []Row {
	rows := make([]Row, 0, len(sessions)+len(breaks))
	for _, s := range sessions {
		r := Row{
			Kind:        KindFocus,
			ID:          s.ID,
			Date:        s.Date,
			Title:       s.TaskTitle,
			StartedAt:   s.StartedAt,
			CompletedAt: s.CompletedAt,
			Minutes:     s.Duration,
			Completed:   s.Completed,
		}
		if s.TaskID != nil {
			r.TaskID = *s.TaskID
		}
		if s.Notes != nil {
			r.Notes = *s.Notes
		}
		rows = append(rows, r)
	}
	for _, b := range breaks {
		r := Row{
			Kind:        KindBreak,
			ID:          b.ID,
			Date:        b.Date,
			Title:       "Break",
			StartedAt:   b.StartedAt,
			CompletedAt: b.CompletedAt,
			Minutes:     b.Duration,
			Completed:   b.Completed,
		}
		if b.Activity != nil {
			r.Title = *b.Activity
		}
		rows = append(rows, r)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].StartedAt.Before(rows[j].StartedAt)
	})
	return rows
}

// Collect reads every day in [from, to] from the ledger.
func Collect(l *focus.Ledger, from, to time.Time) ([]Row, error) {
	from, to = calendar.NormalizeSelection(calendar.Day(from), calendar.Day(to))
	var rows []Row
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		sessions, err := l.SessionsOn(d)
		if err != nil {
			return nil, fmt.Errorf("collect %s: %w", calendar.FormatDate(d), err)
		}
		breaks, err := l.BreaksOn(d)
		if err != nil {
			return nil, fmt.Errorf("collect %s: %w", calendar.FormatDate(d), err)
		}
		rows = append(rows, Rows(sessions, breaks)...)
	}
	return rows, nil
}

// Write dispatches on format: csv, json or yaml.
func Write(format string, rows []Row, path string) error {
	switch format {
	case "csv":
		return ToCSV(rows, path)
	case "json":
		return ToJSON(rows, path)
	case "yaml", "yml":
		return ToYAML(rows, path)
	}
	return fmt.Errorf("unknown export format %q", format)
}

func formatMinutes(min int) string {
	secs := int64(min) * 60
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
