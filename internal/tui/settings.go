package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focuslog/internal/focus"
	"github.com/sadopc/focuslog/internal/store"
	"github.com/sadopc/focuslog/internal/timer"
)

const (
	settingFocusDuration = "focus_duration"
	settingNotifications = "notifications"
	settingSound         = "sound"
	settingBreakActivity = "break_activity"
)

// prefs is the typed view of the settings table.
type prefs struct {
	focusMinutes  int
	notifications bool
	bell          bool
	breakActivity string
}

func loadPrefs(s *store.Store) prefs {
	p := prefs{
		focusMinutes:  s.GetIntSetting(settingFocusDuration, timer.DefaultDuration),
		notifications: true,
		bell:          true,
		breakActivity: focus.BreakActivities[0],
	}
	if v, err := s.GetSetting(settingNotifications); err == nil {
		p.notifications = v != "off"
	}
	if v, err := s.GetSetting(settingSound); err == nil {
		p.bell = v == "bell"
	}
	if v, err := s.GetSetting(settingBreakActivity); err == nil && v != "" {
		p.breakActivity = v
	}
	if p.focusMinutes < timer.MinDuration || p.focusMinutes > timer.MaxDuration {
		p.focusMinutes = timer.DefaultDuration
	}
	return p
}

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	focusDuration *string
	notifications *string
	sound         *string
	breakActivity *string
}

func newSettingsModel(s *store.Store) settingsModel {
	fd, n, snd, ba := "", "", "", ""
	return settingsModel{
		store:         s,
		focusDuration: &fd,
		notifications: &n,
		sound:         &snd,
		breakActivity: &ba,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, err := s.store.GetAllSettings()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	p := loadPrefs(s.store)
	*s.focusDuration = strconv.Itoa(p.focusMinutes)
	*s.notifications = onOff(p.notifications)
	*s.sound = "off"
	if p.bell {
		*s.sound = "bell"
	}
	*s.breakActivity = p.breakActivity

	activities := make([]huh.Option[string], len(focus.BreakActivities))
	for i, a := range focus.BreakActivities {
		activities[i] = huh.NewOption(a, a)
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("Focus length (%d-%d min)", timer.MinDuration, timer.MaxDuration)).
				Value(s.focusDuration).
				Validate(validateFocusMinutes),
			huh.NewSelect[string]().Title("Break activity").
				Options(activities...).
				Value(s.breakActivity),
		).Title("Focus"),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Notifications").
				Options(
					huh.NewOption("On", "on"),
					huh.NewOption("Off", "off"),
				).Value(s.notifications),
			huh.NewSelect[string]().Title("Sound").
				Options(
					huh.NewOption("Terminal bell", "bell"),
					huh.NewOption("Silent", "off"),
				).Value(s.sound),
		).Title("Alerts"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func validateFocusMinutes(v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("enter a number of minutes")
	}
	if n < timer.MinDuration || n > timer.MaxDuration {
		return fmt.Errorf("must be between %d and %d", timer.MinDuration, timer.MaxDuration)
	}
	return nil
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		if err := s.saveSettings(); err != nil {
			return s, errorStatus(err)
		}
		p := loadPrefs(s.store)
		return s, tea.Batch(
			s.refresh(),
			func() tea.Msg { return settingsSavedMsg{prefs: p} },
		)
	}

	return s, cmd
}

func (s settingsModel) saveSettings() error {
	if err := validateFocusMinutes(*s.focusDuration); err != nil {
		return err
	}
	values := [][2]string{
		{settingFocusDuration, strings.TrimSpace(*s.focusDuration)},
		{settingNotifications, *s.notifications},
		{settingSound, *s.sound},
		{settingBreakActivity, *s.breakActivity},
	}
	for _, kv := range values {
		if err := s.store.SetSetting(kv[0], kv[1]); err != nil {
			return fmt.Errorf("save %s: %w", kv[0], err)
		}
	}
	return nil
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		formView := s.form.View()
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", formView),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(settingLabel(setting.Key))
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func settingLabel(k string) string {
	switch k {
	case settingFocusDuration:
		return "Focus length"
	case settingNotifications:
		return "Notifications"
	case settingSound:
		return "Sound"
	case settingBreakActivity:
		return "Break activity"
	}
	return k
}

func formatSettingValue(k, v string) string {
	switch k {
	case settingFocusDuration:
		if n, err := strconv.Atoi(v); err == nil {
			return fmt.Sprintf("%d min", n)
		}
	case settingSound:
		if v == "bell" {
			return "terminal bell"
		}
	}
	return v
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
