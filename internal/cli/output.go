package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sadopc/focuslog/internal/calendar"
	"github.com/sadopc/focuslog/internal/focus"
)

func bindFlag(v *viper.Viper, key string, f *pflag.Flag) {
	_ = v.BindPFlag(key, f)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer, header ...any) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row(header))
	return tw
}

// shortID drops the kind prefix and keeps the first uuid group.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i >= 0 {
		id = id[i+1:]
	}
	if len(id) > 8 {
		id = id[:8]
	}
	return id
}

func check(done bool) string {
	if done {
		return "✓"
	}
	return ""
}

func clock(t time.Time) string {
	return t.Local().Format("15:04")
}

func optional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ago renders t relative to now, e.g. "3 hours ago".
func ago(t, now time.Time) string {
	return humanize.RelTime(t, now, "ago", "from now")
}

// dateFlag parses a YYYY-MM-DD flag value, defaulting to the day of now.
func dateFlag(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return calendar.Day(now), nil
	}
	d, err := calendar.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: want YYYY-MM-DD", s)
	}
	return d, nil
}

// resolveTask finds a task by full id or by an unambiguous prefix of the id
// with or without its "task-" prefix.
func resolveTask(tasks []focus.FocusTask, ref string) (focus.FocusTask, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return focus.FocusTask{}, fmt.Errorf("task id is required")
	}
	var matches []focus.FocusTask
	for _, t := range tasks {
		if t.ID == ref {
			return t, nil
		}
		if strings.HasPrefix(t.ID, ref) || strings.HasPrefix(strings.TrimPrefix(t.ID, "task-"), ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return focus.FocusTask{}, fmt.Errorf("no task matches %q today", ref)
	case 1:
		return matches[0], nil
	}
	return focus.FocusTask{}, fmt.Errorf("%q matches %d tasks", ref, len(matches))
}
