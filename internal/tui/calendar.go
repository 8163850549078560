package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focuslog/internal/calendar"
	"github.com/sadopc/focuslog/internal/store"
)

type calendarModel struct {
	store  *store.Store
	now    func() time.Time
	width  int
	height int

	blocks      []calendar.TimeBlock
	cursor      time.Time
	anchor      *time.Time // start of a range selection
	blockCursor int        // among the blocks covering cursor

	formActive bool
	form       *huh.Form
	formType   string // "new", "edit"

	// Form field pointers (survive value copies)
	formProject *string
	formColor   *string
	formStart   *string
	formEnd     *string

	editingID string
}

func newCalendarModel(s *store.Store, now func() time.Time) calendarModel {
	project, color, start, end := "", calendar.Palette[0], "", ""
	return calendarModel{
		store:       s,
		now:         now,
		cursor:      calendar.Day(now()),
		formProject: &project,
		formColor:   &color,
		formStart:   &start,
		formEnd:     &end,
	}
}

func (c *calendarModel) setSize(w, h int) {
	c.width = w
	c.height = h
}

type blocksDataMsg struct {
	blocks []calendar.TimeBlock
}

func (c calendarModel) refresh() tea.Cmd {
	return func() tea.Msg {
		blocks, err := c.store.ListBlocks()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return blocksDataMsg{blocks: blocks}
	}
}

// dayBlocks returns the blocks covering the cursor. Weekends have none.
func (c calendarModel) dayBlocks() []calendar.TimeBlock {
	return calendar.BlocksActiveOn(c.blocks, c.cursor)
}

func (c calendarModel) selectedBlock() (calendar.TimeBlock, bool) {
	active := c.dayBlocks()
	if len(active) == 0 {
		return calendar.TimeBlock{}, false
	}
	return active[c.blockCursor%len(active)], true
}

// selection is the normalised range from the anchor to the cursor, or the
// cursor day alone.
func (c calendarModel) selection() (time.Time, time.Time) {
	if c.anchor == nil {
		return c.cursor, c.cursor
	}
	return calendar.NormalizeSelection(*c.anchor, c.cursor)
}

func (c calendarModel) update(msg tea.Msg) (calendarModel, tea.Cmd) {
	if c.formActive && c.form != nil {
		return c.updateForm(msg)
	}

	switch msg := msg.(type) {
	case blocksDataMsg:
		c.blocks = msg.blocks
		c.blockCursor = 0
		return c, nil

	case tea.KeyMsg:
		return c.updateGrid(msg)
	}
	return c, nil
}

func (c calendarModel) updateGrid(msg tea.KeyMsg) (calendarModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Left):
		c.move(0, -1)
	case key.Matches(msg, keys.Right):
		c.move(0, 1)
	case key.Matches(msg, keys.Up):
		c.move(0, -7)
	case key.Matches(msg, keys.Down):
		c.move(0, 7)
	case key.Matches(msg, keys.PrevPage):
		c.move(-1, 0)
	case key.Matches(msg, keys.NextPage):
		c.move(1, 0)
	case key.Matches(msg, keys.Cycle):
		c.blockCursor++
	case key.Matches(msg, keys.Select):
		if c.anchor != nil {
			c.anchor = nil
		} else {
			day := c.cursor
			c.anchor = &day
		}
	case key.Matches(msg, keys.Back):
		c.anchor = nil
	case key.Matches(msg, keys.New), key.Matches(msg, keys.Enter):
		return c.showForm("new", nil)
	case key.Matches(msg, keys.Edit):
		if b, ok := c.selectedBlock(); ok {
			return c.showForm("edit", &b)
		}
	case key.Matches(msg, keys.Delete):
		if b, ok := c.selectedBlock(); ok {
			if err := c.store.DeleteBlock(b.ID); err != nil {
				return c, errorStatus(err)
			}
			return c, tea.Batch(c.refresh(), status("Deleted block "+b.Project))
		}
	}
	return c, nil
}

func (c *calendarModel) move(months, days int) {
	c.cursor = calendar.Day(c.cursor.AddDate(0, months, days))
	c.blockCursor = 0
}

func (c calendarModel) showForm(formType string, b *calendar.TimeBlock) (calendarModel, tea.Cmd) {
	c.formType = formType
	c.editingID = ""
	if b != nil {
		c.editingID = b.ID
		*c.formProject = b.Project
		*c.formColor = b.Color
		*c.formStart = calendar.FormatDate(b.StartDate)
		*c.formEnd = calendar.FormatDate(b.EndDate)
	} else {
		start, end := c.selection()
		*c.formProject = ""
		*c.formColor = calendar.NextColor(len(c.blocks))
		*c.formStart = calendar.FormatDate(start)
		*c.formEnd = calendar.FormatDate(end)
	}

	colorOptions := make([]huh.Option[string], len(calendar.Palette))
	for i, col := range calendar.Palette {
		colorOptions[i] = huh.NewOption(fmt.Sprintf("%s %s", swatch(col), col), col)
	}

	c.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Project").Value(c.formProject).Validate(validateProject),
			huh.NewSelect[string]().Title("Color").Options(colorOptions...).Value(c.formColor),
			huh.NewInput().Title("Start (YYYY-MM-DD)").Value(c.formStart).Validate(validateDate),
			huh.NewInput().Title("End (YYYY-MM-DD)").Value(c.formEnd).Validate(validateDate),
		),
	).WithShowHelp(true).WithShowErrors(true)

	c.formActive = true
	return c, c.form.Init()
}

func validateProject(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return errors.New("project name is required")
	}
	if utf8.RuneCountInString(v) > calendar.MaxProjectLen {
		return fmt.Errorf("at most %d characters", calendar.MaxProjectLen)
	}
	return nil
}

func validateDate(v string) error {
	if _, err := calendar.ParseDate(strings.TrimSpace(v)); err != nil {
		return errors.New("use YYYY-MM-DD")
	}
	return nil
}

func (c calendarModel) updateForm(msg tea.Msg) (calendarModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			c.formActive = false
			c.form = nil
			return c, nil
		}
	}

	form, cmd := c.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		c.form = f
	}

	if c.form.State == huh.StateCompleted {
		c.formActive = false
		if err := c.saveForm(); err != nil {
			return c, errorStatus(err)
		}
		c.anchor = nil
		return c, c.refresh()
	}

	return c, cmd
}

func (c calendarModel) saveForm() error {
	start, err := calendar.ParseDate(strings.TrimSpace(*c.formStart))
	if err != nil {
		return err
	}
	end, err := calendar.ParseDate(strings.TrimSpace(*c.formEnd))
	if err != nil {
		return err
	}
	b := calendar.TimeBlock{
		ID:        c.editingID,
		Project:   *c.formProject,
		StartDate: start,
		EndDate:   end,
		Color:     *c.formColor,
	}
	if c.formType == "edit" {
		return c.store.UpdateBlock(b)
	}
	_, err = c.store.CreateBlock(b)
	return err
}

// --- View ---

func (c calendarModel) view() string {
	w := c.width - 4
	if c.formActive && c.form != nil {
		title := titleStyle.Render("New Time Block")
		if c.formType == "edit" {
			title = titleStyle.Render("Edit Time Block")
		}
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", c.form.View()))
	}

	grid := c.renderMonth()
	side := c.renderDayPanel()
	body := lipgloss.JoinHorizontal(lipgloss.Top, grid, "    ", side)

	nav := mutedStyle.Render("arrows: move  [/]: month  v: select range  n/enter: new  e: edit  d: delete  .: next block")
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, body, "", nav))
}

func (c calendarModel) renderMonth() string {
	first := time.Date(c.cursor.Year(), c.cursor.Month(), 1, 0, 0, 0, 0, c.cursor.Location())
	title := titleStyle.Render(first.Format("January 2006"))

	var header []string
	for _, d := range []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"} {
		header = append(header, mutedStyle.Inherit(dayCellStyle).Render(d))
	}
	rows := []string{title, "", lipgloss.JoinHorizontal(lipgloss.Top, header...)}

	// Weeks start on Monday.
	offset := (int(first.Weekday()) + 6) % 7
	day := first.AddDate(0, 0, -offset)
	for week := 0; week < 6; week++ {
		var cells []string
		for i := 0; i < 7; i++ {
			cells = append(cells, c.renderCell(day, first.Month()))
			day = day.AddDate(0, 0, 1)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		if day.Month() != first.Month() {
			break
		}
	}
	return strings.Join(rows, "\n")
}

func (c calendarModel) renderCell(day time.Time, month time.Month) string {
	if day.Month() != month {
		return dayCellStyle.Render("")
	}
	label := fmt.Sprintf("%d", day.Day())
	switch {
	case calendar.FormatDate(day) == calendar.FormatDate(c.cursor):
		return cursorCellStyle.Render(label)
	case c.anchor != nil && calendar.InSelection(*c.anchor, c.cursor, day):
		return selectedCellStyle.Render(label)
	case !calendar.IsWeekday(day):
		return weekendCellStyle.Render(label)
	}
	if active := calendar.BlocksActiveOn(c.blocks, day); len(active) > 0 {
		return dayCellStyle.Bold(true).Foreground(lipgloss.Color(active[0].Color)).Render(label)
	}
	return dayCellStyle.Render(label)
}

func (c calendarModel) renderDayPanel() string {
	rows := []string{titleStyle.Render(c.cursor.Format("Mon Jan 2")), ""}

	if c.anchor != nil {
		start, end := c.selection()
		rows = append(rows, highlightStyle.Render(fmt.Sprintf("Selected %s to %s (%d weekdays)",
			start.Format("Jan 2"), end.Format("Jan 2"), calendar.CountWeekdaysInRange(start, end))), "")
	}

	active := c.dayBlocks()
	switch {
	case !calendar.IsWeekday(c.cursor):
		rows = append(rows, mutedStyle.Render("Weekend"))
	case len(active) == 0:
		rows = append(rows, mutedStyle.Render("No blocks"))
	}
	selected := -1
	if len(active) > 0 {
		selected = c.blockCursor % len(active)
	}
	for i, b := range active {
		progress, _ := calendar.Progress(b, c.cursor)
		style := normalItemStyle
		if i == selected {
			style = selectedItemStyle
		}
		rows = append(rows,
			style.Render(fmt.Sprintf("%s%s %s", cursorPrefix(i == selected), swatch(b.Color), b.Project)),
			mutedStyle.Render(fmt.Sprintf("    %s to %s  %s",
				calendar.FormatDate(b.StartDate), calendar.FormatDate(b.EndDate), progress)),
		)
	}
	return strings.Join(rows, "\n")
}
