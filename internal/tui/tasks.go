package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focuslog/internal/focus"
)

type tasksModel struct {
	svc    *focus.Service
	now    func() time.Time
	width  int
	height int

	tasks  []focus.FocusTask
	cursor int

	formActive bool
	form       *huh.Form
	formType   string // "new", "edit"

	// Form field pointers (survive value copies)
	formTitle    *string
	formCategory *string
	formEstimate *string

	editingID string
}

func newTasksModel(svc *focus.Service, now func() time.Time) tasksModel {
	title, cat, est := "", string(focus.CategoryOther), ""
	return tasksModel{
		svc:          svc,
		now:          now,
		formTitle:    &title,
		formCategory: &cat,
		formEstimate: &est,
	}
}

func (p *tasksModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

type tasksDataMsg struct {
	tasks []focus.FocusTask
}

func (p tasksModel) refresh() tea.Cmd {
	now := p.now()
	return func() tea.Msg {
		tasks, err := p.svc.Tasks.List(now)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return tasksDataMsg{tasks: tasks}
	}
}

func (p tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tasksDataMsg:
		p.tasks = msg.tasks
		if p.cursor >= len(p.tasks) {
			p.cursor = max(0, len(p.tasks)-1)
		}
		return p, nil

	case tea.KeyMsg:
		return p.updateList(msg)
	}
	return p, nil
}

func (p tasksModel) updateList(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, keys.Down):
		if p.cursor < len(p.tasks)-1 {
			p.cursor++
		}
	case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Pause):
		if len(p.tasks) > 0 {
			t := p.tasks[p.cursor]
			done := !t.Completed
			if err := p.svc.Tasks.Update(p.now(), t.ID, focus.TaskPatch{Completed: &done}); err != nil {
				return p, errorStatus(err)
			}
			return p, tea.Batch(p.refresh(), dataChanged)
		}
	case key.Matches(msg, keys.New):
		return p.showForm("new", nil)
	case key.Matches(msg, keys.Edit):
		if len(p.tasks) > 0 {
			t := p.tasks[p.cursor]
			return p.showForm("edit", &t)
		}
	case key.Matches(msg, keys.Delete):
		if len(p.tasks) > 0 {
			t := p.tasks[p.cursor]
			if err := p.svc.Tasks.Remove(p.now(), t.ID); err != nil {
				return p, errorStatus(err)
			}
			return p, tea.Batch(p.refresh(), dataChanged, status("Deleted "+t.Title))
		}
	}
	return p, nil
}

func (p tasksModel) showForm(formType string, t *focus.FocusTask) (tasksModel, tea.Cmd) {
	p.formType = formType
	*p.formTitle = ""
	*p.formCategory = string(focus.CategoryOther)
	*p.formEstimate = ""
	p.editingID = ""
	if t != nil {
		p.editingID = t.ID
		*p.formTitle = t.Title
		*p.formCategory = string(t.Category)
		if t.EstimatedSessions != nil {
			*p.formEstimate = strconv.Itoa(*t.EstimatedSessions)
		}
	}

	catOptions := make([]huh.Option[string], len(focus.Categories))
	for i, c := range focus.Categories {
		catOptions[i] = huh.NewOption(c.Label(), string(c))
	}

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Task").Value(p.formTitle).Validate(validateTitle),
			huh.NewSelect[string]().Title("Category").Options(catOptions...).Value(p.formCategory),
			huh.NewInput().Title("Estimated sessions (optional)").Value(p.formEstimate).Validate(validateEstimate),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func validateTitle(v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("title is required")
	}
	return nil
}

func validateEstimate(v string) error {
	_, err := parseEstimate(v)
	return err
}

// parseEstimate reads an optional positive session count.
func parseEstimate(v string) (*int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("enter a positive number")
	}
	return &n, nil
}

func (p tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
	// Check for escape to cancel form
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State == huh.StateCompleted {
		p.formActive = false
		if err := p.saveForm(); err != nil {
			return p, errorStatus(err)
		}
		return p, tea.Batch(p.refresh(), dataChanged)
	}

	return p, cmd
}

func (p tasksModel) saveForm() error {
	est, err := parseEstimate(*p.formEstimate)
	if err != nil {
		return err
	}
	cat := focus.Category(*p.formCategory)
	now := p.now()
	switch p.formType {
	case "new":
		_, err = p.svc.Tasks.Add(now, *p.formTitle, cat, est)
	case "edit":
		err = p.svc.Tasks.Update(now, p.editingID, focus.TaskPatch{
			Title:             p.formTitle,
			Category:          &cat,
			EstimatedSessions: est,
		})
	}
	return err
}

func (p tasksModel) view() string {
	if p.formActive && p.form != nil {
		title := titleStyle.Render("New Task")
		if p.formType == "edit" {
			title = titleStyle.Render("Edit Task")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", p.form.View())
		return panelStyle.Width(p.width - 4).Render(content)
	}
	return p.renderList()
}

func (p tasksModel) renderList() string {
	w := p.width - 4
	title := titleStyle.Render("Today's Tasks")

	if len(p.tasks) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No tasks yet. Press n to add one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	done := 0
	for _, t := range p.tasks {
		if t.Completed {
			done++
		}
	}

	var rows []string
	rows = append(rows, fmt.Sprintf("%s  %s", title, mutedStyle.Render(fmt.Sprintf("%d/%d done", done, len(p.tasks)))))
	rows = append(rows, "")

	header := mutedStyle.Render(fmt.Sprintf("  %-3s %-32s %-12s %s", "", "Task", "Category", "Sessions"))
	rows = append(rows, header)

	for i, t := range p.tasks {
		box := "[ ]"
		style := normalItemStyle
		if t.Completed {
			box = "[x]"
			style = doneItemStyle
		}
		if i == p.cursor {
			style = selectedItemStyle
		}
		sessions := strconv.Itoa(t.SessionsCompleted)
		if t.EstimatedSessions != nil {
			sessions += "/" + strconv.Itoa(*t.EstimatedSessions)
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%s %-32s %-12s %s", cursorPrefix(i == p.cursor), box, t.Title, t.Category.Label(), sessions)))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  enter: toggle done  d: delete"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
