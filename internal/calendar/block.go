package calendar

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const MaxProjectLen = 100

// Palette lists the swatches a block may use.
var Palette = []string{
	"#3B82F6", "#EF4444", "#10B981", "#F59E0B",
	"#8B5CF6", "#F97316", "#06B6D4", "#84CC16",
	"#EC4899", "#6B7280", "#14B8A6", "#F43F5E",
}

// TimeBlock assigns a project to an inclusive range of days.
type TimeBlock struct {
	ID        string    `json:"id" yaml:"id"`
	Project   string    `json:"project" yaml:"project"`
	StartDate time.Time `json:"start_date" yaml:"start_date"`
	EndDate   time.Time `json:"end_date" yaml:"end_date"`
	Color     string    `json:"color" yaml:"color"`
}

// NextColor is the fallback swatch for the n-th block when none was picked.
func NextColor(n int) string {
	if n < 0 {
		n = 0
	}
	return Palette[n%8]
}

func validColor(c string) bool {
	for _, p := range Palette {
		if strings.EqualFold(p, c) {
			return true
		}
	}
	return false
}

// Validate checks the block's fields. Project is trimmed in place.
func (b *TimeBlock) Validate() error {
	b.Project = strings.TrimSpace(b.Project)
	if b.Project == "" {
		return fmt.Errorf("project name is required")
	}
	if utf8.RuneCountInString(b.Project) > MaxProjectLen {
		return fmt.Errorf("project name exceeds %d characters", MaxProjectLen)
	}
	if b.StartDate.IsZero() || b.EndDate.IsZero() {
		return fmt.Errorf("start and end dates are required")
	}
	if daysBetween(b.StartDate, b.EndDate) < 0 {
		return fmt.Errorf("start date %s is after end date %s", FormatDate(b.StartDate), FormatDate(b.EndDate))
	}
	if !validColor(b.Color) {
		return fmt.Errorf("unknown color %q", b.Color)
	}
	return nil
}

// WeekdayCount is the number of active days of the block.
func (b TimeBlock) WeekdayCount() int {
	return CountWeekdaysInRange(b.StartDate, b.EndDate)
}
