package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/focuslog/internal/calendar"
	"github.com/sadopc/focuslog/internal/focus"
	"github.com/sadopc/focuslog/internal/store"
	"github.com/sadopc/focuslog/internal/timer"
)

// Monday morning.
var testStart = time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestDeps(t *testing.T) (Deps, *testClock) {
	t.Helper()
	s := newTestStore(t)
	clk := &testClock{t: testStart}
	return Deps{
		Store:   s,
		Service: focus.NewService(s, nil),
		Now:     clk.Now,
	}, clk
}

func press(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// collect runs cmd and any batched commands, keeping the messages that arrive
// promptly. Timer-driven commands such as cursor blinks are dropped.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, collect(c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

func statusTexts(msgs []tea.Msg) []string {
	var out []string
	for _, m := range msgs {
		if s, ok := m.(statusMsg); ok {
			out = append(out, s.text)
		}
	}
	return out
}

func containsText(texts []string, sub string) bool {
	for _, s := range texts {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// ============================================================
// Focus model
// ============================================================

func TestFocusFullCycle(t *testing.T) {
	d, clk := newTestDeps(t)
	task, err := d.Service.Tasks.Add(clk.Now(), "Write report", focus.CategoryDeepWork, nil)
	if err != nil {
		t.Fatal(err)
	}

	p := prefs{focusMinutes: 3, notifications: true, bell: true, breakActivity: "walk"}
	f := newFocusModel(d.Service, p, clk.Now, nil)
	f.setSize(100, 30)
	if _, err := f.mount(); err != nil {
		t.Fatal(err)
	}

	f, cmd := f.update(press("s"))
	if _, ok := f.ctrl.State().(timer.AwaitingTaskSelection); !ok {
		t.Fatalf("after s: state = %s", f.ctrl.State().Name())
	}
	for _, m := range collect(cmd) {
		f, _ = f.update(m)
	}
	if len(f.tasks) != 1 {
		t.Fatalf("picker tasks = %d, want 1", len(f.tasks))
	}
	if !strings.Contains(f.view(), focus.FreeFocusTitle) {
		t.Fatal("picker should offer free focus")
	}

	f, _ = f.update(press("down"))
	f, _ = f.update(press("enter"))
	run, ok := f.ctrl.State().(timer.Running)
	if !ok {
		t.Fatalf("after confirm: state = %s", f.ctrl.State().Name())
	}
	if run.Session.TaskTitle != "Write report" || run.Session.TaskID == nil || *run.Session.TaskID != task.ID {
		t.Fatalf("session bound to wrong task: %+v", run.Session)
	}

	var msgs []tea.Msg
	for i := 0; i < 3*60; i++ {
		clk.advance(time.Second)
		f, cmd = f.update(tickMsg(clk.Now()))
		msgs = append(msgs, collect(cmd)...)
	}

	texts := statusTexts(msgs)
	for _, want := range []string{"2 Minutes Remaining", "1 Minute Remaining", "Focus Timer Complete"} {
		if !containsText(texts, want) {
			t.Errorf("missing status %q in %q", want, texts)
		}
	}
	if !containsText(texts, "\a\a\a") {
		t.Error("completion should ring three bells")
	}
	ended := false
	for _, m := range msgs {
		if _, ok := m.(sessionEndedMsg); ok {
			ended = true
		}
	}
	if !ended {
		t.Error("expected sessionEndedMsg")
	}
	if !f.capturing() {
		t.Fatalf("after countdown: state = %s", f.ctrl.State().Name())
	}

	f, _ = f.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("drafted intro")})
	f, _ = f.update(press("enter"))
	dec, ok := f.ctrl.State().(timer.AwaitingBreakDecision)
	if !ok {
		t.Fatalf("after notes: state = %s", f.ctrl.State().Name())
	}
	if dec.Recommendation.Duration != 5 {
		t.Fatalf("recommended %d min, want 5", dec.Recommendation.Duration)
	}
	if f.breakCursor != 0 || focus.BreakActivities[f.activityCursor] != "walk" {
		t.Fatalf("break preselection = %d/%d", f.breakCursor, f.activityCursor)
	}
	if f.lastNote != "drafted intro" {
		t.Fatalf("lastNote = %q", f.lastNote)
	}

	sessions, _ := d.Service.Ledger.Sessions(clk.Now())
	if len(sessions) != 1 || !sessions[0].Completed || sessions[0].Notes == nil || *sessions[0].Notes != "drafted intro" {
		t.Fatalf("sessions = %+v", sessions)
	}
	tasks, _ := d.Service.Tasks.List(clk.Now())
	if tasks[0].SessionsCompleted != 1 {
		t.Fatalf("task sessions = %d, want 1", tasks[0].SessionsCompleted)
	}

	f, _ = f.update(press("right"))
	f, _ = f.update(press("enter"))
	br, ok := f.ctrl.State().(timer.OnBreak)
	if !ok {
		t.Fatalf("after accept: state = %s", f.ctrl.State().Name())
	}
	if br.Break.Duration != 10 || br.Break.Activity == nil || *br.Break.Activity != "walk" {
		t.Fatalf("break = %+v", br.Break)
	}

	clk.advance(time.Minute)
	f, _ = f.update(press("x"))
	if _, ok := f.ctrl.State().(timer.AwaitingTaskSelection); !ok {
		t.Fatalf("after finishing break: state = %s", f.ctrl.State().Name())
	}
	breaks, _ := d.Service.Ledger.Breaks(clk.Now())
	if len(breaks) != 1 || !breaks[0].Completed {
		t.Fatalf("breaks = %+v", breaks)
	}
}

func TestFocusSignalsMuted(t *testing.T) {
	d, clk := newTestDeps(t)
	f := newFocusModel(d.Service, prefs{focusMinutes: 2}, clk.Now, nil)
	f.mount()

	f, _ = f.update(press("s"))
	f, _ = f.update(press("enter"))

	var msgs []tea.Msg
	for i := 0; i < 2*60; i++ {
		clk.advance(time.Second)
		var cmd tea.Cmd
		f, cmd = f.update(tickMsg(clk.Now()))
		msgs = append(msgs, collect(cmd)...)
	}
	if texts := statusTexts(msgs); len(texts) != 0 {
		t.Fatalf("notifications off, got %q", texts)
	}
	if !f.capturing() {
		t.Fatal("countdown should still finish")
	}
}

func TestFocusPauseResume(t *testing.T) {
	d, clk := newTestDeps(t)
	f := newFocusModel(d.Service, prefs{focusMinutes: 5}, clk.Now, nil)
	f.mount()
	f, _ = f.update(press("s"))
	f, _ = f.update(press("enter"))

	f, _ = f.update(tickMsg(clk.Now()))
	f, _ = f.update(press("space"))
	paused, ok := f.ctrl.State().(timer.Paused)
	if !ok {
		t.Fatalf("state = %s, want paused", f.ctrl.State().Name())
	}
	before := paused.Remaining

	for i := 0; i < 10; i++ {
		f, _ = f.update(tickMsg(clk.Now()))
	}
	if f.ctrl.Remaining() != before {
		t.Fatal("paused countdown moved")
	}

	f, _ = f.update(press("space"))
	if _, ok := f.ctrl.State().(timer.Running); !ok {
		t.Fatalf("state = %s, want running", f.ctrl.State().Name())
	}

	f, _ = f.update(press("x"))
	if _, ok := f.ctrl.State().(timer.Idle); !ok {
		t.Fatalf("state = %s, want idle after reset", f.ctrl.State().Name())
	}
}

func TestFocusDurationStep(t *testing.T) {
	d, clk := newTestDeps(t)
	f := newFocusModel(d.Service, prefs{focusMinutes: timer.MaxDuration}, clk.Now, nil)

	f, _ = f.update(press("+"))
	if f.ctrl.Duration() != timer.MaxDuration {
		t.Fatalf("duration = %d, should stay clamped", f.ctrl.Duration())
	}
	f, _ = f.update(press("-"))
	if f.ctrl.Duration() != timer.MaxDuration-1 {
		t.Fatalf("duration = %d", f.ctrl.Duration())
	}
}

func TestFocusSkipNotes(t *testing.T) {
	d, clk := newTestDeps(t)
	f := newFocusModel(d.Service, prefs{focusMinutes: 1}, clk.Now, nil)
	f.mount()
	f, _ = f.update(press("s"))
	f, _ = f.update(press("enter"))
	for i := 0; i < 60; i++ {
		clk.advance(time.Second)
		f, _ = f.update(tickMsg(clk.Now()))
	}

	f, _ = f.update(press("esc"))
	if _, ok := f.ctrl.State().(timer.Idle); !ok {
		t.Fatalf("state = %s, want idle", f.ctrl.State().Name())
	}
	sessions, _ := d.Service.Ledger.Sessions(clk.Now())
	if len(sessions) != 1 || sessions[0].Completed {
		t.Fatalf("skipped session should stay incomplete: %+v", sessions)
	}
	if sessions[0].TaskTitle != focus.FreeFocusTitle {
		t.Fatalf("title = %q", sessions[0].TaskTitle)
	}
}

// ============================================================
// Orphan recovery
// ============================================================

func TestAppOpensOnOrphans(t *testing.T) {
	d, clk := newTestDeps(t)
	if _, err := d.Service.Ledger.StartSession(clk.Now().Add(-40*time.Minute), nil, "", 25); err != nil {
		t.Fatal(err)
	}

	app := NewApp(d)
	if app.activeView != viewFocus {
		t.Fatalf("activeView = %d, want focus", app.activeView)
	}
	if !strings.Contains(app.status, "1 unfinished") {
		t.Fatalf("status = %q", app.status)
	}
	app.width, app.height = 120, 40
	app.focus.setSize(120, 36)
	view := app.View()
	if !strings.Contains(view, "40 minutes ago") || !strings.Contains(view, "stale") {
		t.Fatalf("orphan prompt missing details:\n%s", view)
	}

	// Starting is ignored until the orphans are handled.
	m, _ := app.Update(press("s"))
	app = m.(App)
	if _, ok := app.focus.ctrl.State().(timer.Idle); !ok {
		t.Fatalf("state = %s, want idle", app.focus.ctrl.State().Name())
	}
	if err := app.focus.ctrl.Start(); err == nil {
		t.Fatal("controller should refuse to start with orphans pending")
	}

	m, _ = app.Update(press("c"))
	app = m.(App)
	if _, pending := app.focus.ctrl.Orphans(); pending {
		t.Fatal("orphans should be resolved")
	}
	sessions, _ := d.Service.Ledger.Sessions(clk.Now())
	if len(sessions) != 1 || !sessions[0].Completed {
		t.Fatalf("orphan should be completed: %+v", sessions)
	}

	m, _ = app.Update(press("s"))
	app = m.(App)
	if _, ok := app.focus.ctrl.State().(timer.AwaitingTaskSelection); !ok {
		t.Fatalf("state = %s", app.focus.ctrl.State().Name())
	}
}

func TestAppKeepOrphans(t *testing.T) {
	d, clk := newTestDeps(t)
	activity := "walk"
	if _, err := d.Service.Ledger.StartBreak(clk.Now().Add(-2*time.Minute), 5, &activity); err != nil {
		t.Fatal(err)
	}
	app := NewApp(d)
	m, _ := app.Update(press("i"))
	app = m.(App)
	if _, pending := app.focus.ctrl.Orphans(); pending {
		t.Fatal("keep should open the gate")
	}
	breaks, _ := d.Service.Ledger.Breaks(clk.Now())
	if len(breaks) != 1 || breaks[0].Completed {
		t.Fatalf("kept break should be untouched: %+v", breaks)
	}
}

// ============================================================
// Today, stats, calendar
// ============================================================

func TestTodayLoadData(t *testing.T) {
	d, clk := newTestDeps(t)
	friday := testStart.AddDate(0, 0, 4)
	if _, err := d.Store.CreateBlock(calendar.TimeBlock{Project: "Launch", StartDate: testStart, EndDate: friday}); err != nil {
		t.Fatal(err)
	}
	d.Service.Tasks.Add(clk.Now(), "Plan", focus.CategoryAdmin, nil)
	s, _ := d.Service.Ledger.StartSession(clk.Now(), nil, "", 25)
	clk.advance(25 * time.Minute)
	d.Service.Ledger.CompleteSession(clk.Now(), s.ID, nil)

	tm := newTodayModel(d.Store, d.Service, clk.Now)
	tm.setSize(120, 40)
	msg := tm.loadData()()
	tm, _ = tm.update(msg)

	if len(tm.blocks) != 1 || tm.blocks[0].progress != "Day 1 of 5" {
		t.Fatalf("blocks = %+v", tm.blocks)
	}
	if tm.sessionsDone != 1 || tm.focusMinutes != 25 || tm.tasksTotal != 1 {
		t.Fatalf("summary = %d sessions, %d min, %d tasks", tm.sessionsDone, tm.focusMinutes, tm.tasksTotal)
	}
	if !tm.recommendation.ShouldBreak {
		t.Fatal("first completed session should suggest a break")
	}
	view := tm.view()
	for _, want := range []string{"Launch", "Day 1 of 5", "25m"} {
		if !strings.Contains(view, want) {
			t.Errorf("today view missing %q", want)
		}
	}
}

func TestTodayWeekend(t *testing.T) {
	d, _ := newTestDeps(t)
	saturday := &testClock{t: testStart.AddDate(0, 0, 5)}
	d.Store.CreateBlock(calendar.TimeBlock{Project: "Launch", StartDate: testStart, EndDate: testStart.AddDate(0, 0, 11)})

	tm := newTodayModel(d.Store, d.Service, saturday.Now)
	tm.setSize(120, 40)
	tm, _ = tm.update(tm.loadData()())
	if len(tm.blocks) != 0 {
		t.Fatalf("weekend should show no blocks, got %d", len(tm.blocks))
	}
	if !strings.Contains(tm.view(), "Weekend") {
		t.Fatal("expected weekend message")
	}
}

func TestStatsRefresh(t *testing.T) {
	d, clk := newTestDeps(t)
	s, _ := d.Service.Ledger.StartSession(clk.Now(), nil, "", 30)
	d.Service.Ledger.CompleteSession(clk.Now().Add(30*time.Minute), s.ID, nil)

	sm := newStatsModel(d.Service, clk.Now)
	sm.setSize(120, 40)
	sm, _ = sm.update(sm.refresh()())

	if len(sm.days) != statsDays {
		t.Fatalf("days = %d", len(sm.days))
	}
	last := sm.days[len(sm.days)-1]
	if last.minutes != 30 || last.sessions != 1 {
		t.Fatalf("today = %+v", last)
	}
	if !strings.Contains(sm.view(), "30m") {
		t.Fatal("stats view should show the total")
	}

	sm, cmd := sm.update(press("left"))
	if sm.offset != 1 {
		t.Fatalf("offset = %d", sm.offset)
	}
	sm, _ = sm.update(cmd())
	if got := sm.days[len(sm.days)-1].minutes; got != 0 {
		t.Fatalf("previous week minutes = %d", got)
	}

	sm, _ = sm.update(press("right"))
	sm, _ = sm.update(press("right"))
	if sm.offset != 0 {
		t.Fatalf("offset should not go past the current week, got %d", sm.offset)
	}
}

func TestCalendarSelectAndCreate(t *testing.T) {
	d, clk := newTestDeps(t)
	c := newCalendarModel(d.Store, clk.Now)
	c.setSize(120, 40)

	c, _ = c.update(press("v"))
	c, _ = c.update(press("right"))
	c, _ = c.update(press("right"))
	start, end := c.selection()
	if calendar.FormatDate(start) != "2026-03-02" || calendar.FormatDate(end) != "2026-03-04" {
		t.Fatalf("selection = %s..%s", calendar.FormatDate(start), calendar.FormatDate(end))
	}
	if !strings.Contains(c.view(), "3 weekdays") {
		t.Fatal("day panel should count the selected weekdays")
	}

	c, _ = c.update(press("n"))
	if !c.formActive {
		t.Fatal("form should be open")
	}
	if *c.formStart != "2026-03-02" || *c.formEnd != "2026-03-04" || *c.formColor != calendar.Palette[0] {
		t.Fatalf("form prefill = %s %s %s", *c.formStart, *c.formEnd, *c.formColor)
	}

	*c.formProject = "Launch"
	if err := c.saveForm(); err != nil {
		t.Fatal(err)
	}
	c, _ = c.update(press("esc"))
	if c.formActive {
		t.Fatal("esc should close the form")
	}
	c, _ = c.update(c.refresh()())
	if len(c.dayBlocks()) != 1 {
		t.Fatalf("cursor day blocks = %d", len(c.dayBlocks()))
	}

	c, _ = c.update(press("d"))
	blocks, _ := d.Store.ListBlocks()
	if len(blocks) != 0 {
		t.Fatalf("block not deleted: %+v", blocks)
	}
}

func TestCalendarMonthNavigation(t *testing.T) {
	d, clk := newTestDeps(t)
	c := newCalendarModel(d.Store, clk.Now)
	c.setSize(120, 40)

	c, _ = c.update(press("]"))
	if c.cursor.Month() != time.April {
		t.Fatalf("cursor = %s", c.cursor)
	}
	c, _ = c.update(press("["))
	c, _ = c.update(press("["))
	if c.cursor.Month() != time.February {
		t.Fatalf("cursor = %s", c.cursor)
	}
	if !strings.Contains(c.view(), "February 2026") {
		t.Fatal("month title missing")
	}
}

func TestValidateProjectAndDate(t *testing.T) {
	if validateProject("  ") == nil {
		t.Error("blank project should fail")
	}
	if validateProject(strings.Repeat("x", calendar.MaxProjectLen+1)) == nil {
		t.Error("long project should fail")
	}
	if validateProject("Launch") != nil {
		t.Error("valid project rejected")
	}
	if validateDate("03/02/2026") == nil {
		t.Error("bad date format should fail")
	}
	if validateDate("2026-03-02") != nil {
		t.Error("valid date rejected")
	}
}

// ============================================================
// Tasks and settings
// ============================================================

func TestTasksToggleAndDelete(t *testing.T) {
	d, clk := newTestDeps(t)
	d.Service.Tasks.Add(clk.Now(), "First", focus.CategoryOther, nil)
	d.Service.Tasks.Add(clk.Now(), "Second", focus.CategoryLearning, nil)

	tm := newTasksModel(d.Service, clk.Now)
	tm.setSize(120, 40)
	tm, _ = tm.update(tm.refresh()())
	if len(tm.tasks) != 2 {
		t.Fatalf("tasks = %d", len(tm.tasks))
	}

	tm, cmd := tm.update(press("enter"))
	for _, m := range collect(cmd) {
		tm, _ = tm.update(m)
	}
	if !tm.tasks[0].Completed {
		t.Fatal("first task should be done")
	}
	if !strings.Contains(tm.view(), "1/2 done") {
		t.Fatal("header should count done tasks")
	}

	tm, _ = tm.update(press("down"))
	tm, cmd = tm.update(press("d"))
	for _, m := range collect(cmd) {
		tm, _ = tm.update(m)
	}
	if len(tm.tasks) != 1 || tm.tasks[0].Title != "First" {
		t.Fatalf("tasks after delete = %+v", tm.tasks)
	}
	if tm.cursor != 0 {
		t.Fatalf("cursor = %d", tm.cursor)
	}
}

func TestTasksFormSave(t *testing.T) {
	d, clk := newTestDeps(t)
	tm := newTasksModel(d.Service, clk.Now)

	tm, _ = tm.update(press("n"))
	if !tm.formActive {
		t.Fatal("form should be open")
	}
	*tm.formTitle = "Read paper"
	*tm.formCategory = string(focus.CategoryLearning)
	*tm.formEstimate = "3"
	if err := tm.saveForm(); err != nil {
		t.Fatal(err)
	}

	tasks, _ := d.Service.Tasks.List(clk.Now())
	if len(tasks) != 1 || tasks[0].EstimatedSessions == nil || *tasks[0].EstimatedSessions != 3 {
		t.Fatalf("tasks = %+v", tasks)
	}
}

func TestParseEstimate(t *testing.T) {
	if n, err := parseEstimate(""); err != nil || n != nil {
		t.Fatalf("empty: %v %v", n, err)
	}
	if n, err := parseEstimate(" 4 "); err != nil || *n != 4 {
		t.Fatalf("4: %v %v", n, err)
	}
	for _, bad := range []string{"0", "-1", "two"} {
		if _, err := parseEstimate(bad); err == nil {
			t.Errorf("%q should fail", bad)
		}
	}
}

func TestSettingsSave(t *testing.T) {
	s := newTestStore(t)
	sm := newSettingsModel(s)
	sm, _ = sm.showForm()
	if *sm.focusDuration != "25" || *sm.sound != "bell" {
		t.Fatalf("defaults = %s %s", *sm.focusDuration, *sm.sound)
	}

	*sm.focusDuration = "45"
	*sm.notifications = "off"
	*sm.sound = "off"
	*sm.breakActivity = "hydrate"
	if err := sm.saveSettings(); err != nil {
		t.Fatal(err)
	}

	p := loadPrefs(s)
	want := prefs{focusMinutes: 45, notifications: false, bell: false, breakActivity: "hydrate"}
	if p != want {
		t.Fatalf("prefs = %+v, want %+v", p, want)
	}

	*sm.focusDuration = "90"
	if sm.saveSettings() == nil {
		t.Fatal("out of range duration should fail")
	}
}

func TestLoadPrefsClampsDuration(t *testing.T) {
	s := newTestStore(t)
	s.SetSetting(settingFocusDuration, "0")
	if p := loadPrefs(s); p.focusMinutes != timer.DefaultDuration {
		t.Fatalf("focusMinutes = %d", p.focusMinutes)
	}
}

func TestFormatSettingValue(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{settingFocusDuration, "25", "25 min"},
		{settingSound, "bell", "terminal bell"},
		{settingSound, "off", "off"},
		{settingNotifications, "on", "on"},
	}
	for _, tt := range tests {
		if got := formatSettingValue(tt.key, tt.value); got != tt.want {
			t.Errorf("formatSettingValue(%q, %q) = %q, want %q", tt.key, tt.value, got, tt.want)
		}
	}
}

// ============================================================
// App model
// ============================================================

func TestNewApp(t *testing.T) {
	d, _ := newTestDeps(t)
	app := NewApp(d)

	if app.activeView != viewToday {
		t.Fatal("default view should be today")
	}
	if app.showHelp || app.exportPicking {
		t.Fatal("help and export picker should be hidden")
	}
	if app.isFormActive() {
		t.Fatal("no forms should be active initially")
	}
}

func TestAppViewStates(t *testing.T) {
	d, _ := newTestDeps(t)
	m, _ := NewApp(d).Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	app := m.(App)

	for i := range viewNames {
		app.activeView = viewState(i)
		if out := app.View(); out == "" {
			t.Fatalf("view %s rendered empty", viewNames[i])
		}
	}
}

func TestAppLoadingState(t *testing.T) {
	d, _ := newTestDeps(t)
	if got := NewApp(d).View(); got != "Loading..." {
		t.Fatalf("got %q", got)
	}
}

func TestAppSwitchViews(t *testing.T) {
	d, _ := newTestDeps(t)
	app := NewApp(d)

	m, _ := app.Update(press("tab"))
	app = m.(App)
	if app.activeView != viewFocus {
		t.Fatalf("tab: activeView = %d", app.activeView)
	}
	m, cmd := app.Update(press("5"))
	app = m.(App)
	if app.activeView != viewStats {
		t.Fatalf("5: activeView = %d", app.activeView)
	}
	// Switching loads the view's data.
	for _, msg := range collect(cmd) {
		m, _ = app.Update(msg)
		app = m.(App)
	}
	if len(app.stats.days) != statsDays {
		t.Fatalf("stats not loaded: %d days", len(app.stats.days))
	}

	m, _ = app.Update(press("6"))
	app = m.(App)
	m, _ = app.Update(press("tab"))
	app = m.(App)
	if app.activeView != viewToday {
		t.Fatalf("tab should wrap, got %d", app.activeView)
	}
}

func TestAppRoutesDataToOwner(t *testing.T) {
	d, clk := newTestDeps(t)
	d.Service.Tasks.Add(clk.Now(), "Plan", focus.CategoryAdmin, nil)
	app := NewApp(d)

	// A slow load for the tasks view lands after the user moved away.
	msg := app.tasks.refresh()()
	m, _ := app.Update(msg)
	app = m.(App)
	if len(app.tasks.tasks) != 1 {
		t.Fatalf("tasks view missed its data: %d", len(app.tasks.tasks))
	}
}

func TestAppHeaderContainsAllTabs(t *testing.T) {
	d, _ := newTestDeps(t)
	app := NewApp(d)
	app.width = 160
	header := app.renderHeader()
	for _, name := range viewNames {
		if !strings.Contains(header, name) {
			t.Errorf("header missing tab %q", name)
		}
	}
}

func TestAppFooterCountdown(t *testing.T) {
	d, clk := newTestDeps(t)
	app := NewApp(d)
	app.width = 160
	if err := app.focus.ctrl.Start(); err != nil {
		t.Fatal(err)
	}
	if err := app.focus.ctrl.Confirm(clk.Now(), nil, ""); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(app.renderFooter(), "25:00") {
		t.Fatal("footer should show the countdown")
	}

	// Ticks reach the focus model from any view.
	m, _ := app.Update(tickMsg(clk.Now()))
	app = m.(App)
	if !strings.Contains(app.renderFooter(), "24:59") {
		t.Fatal("tick did not advance the countdown")
	}
}

func TestAppNotesCaptureKeys(t *testing.T) {
	d, clk := newTestDeps(t)
	d.Store.SetSetting(settingFocusDuration, "1")
	app := NewApp(d)
	app.focus.ctrl.Start()
	app.focus.ctrl.Confirm(clk.Now(), nil, "")

	var m tea.Model = app
	for i := 0; i < 60; i++ {
		clk.advance(time.Second)
		m, _ = m.Update(tickMsg(clk.Now()))
	}
	app = m.(App)
	m, _ = app.Update(sessionEndedMsg{})
	app = m.(App)
	if app.activeView != viewFocus || !app.isFormActive() {
		t.Fatalf("notes prompt should own the keyboard, view=%d", app.activeView)
	}

	m, cmd := app.Update(press("q"))
	app = m.(App)
	for _, msg := range collect(cmd) {
		if _, ok := msg.(tea.QuitMsg); ok {
			t.Fatal("q should be typed into the notes, not quit")
		}
	}
	if app.focus.notes.Value() != "q" {
		t.Fatalf("notes = %q", app.focus.notes.Value())
	}
}

func TestAppSettingsSavedUpdatesTimer(t *testing.T) {
	d, _ := newTestDeps(t)
	app := NewApp(d)
	m, _ := app.Update(settingsSavedMsg{prefs: prefs{focusMinutes: 40, notifications: true}})
	app = m.(App)
	if app.focus.ctrl.Duration() != 40 {
		t.Fatalf("duration = %d", app.focus.ctrl.Duration())
	}
	if app.status != "Settings saved" {
		t.Fatalf("status = %q", app.status)
	}
}

func TestAppStatusMessage(t *testing.T) {
	d, _ := newTestDeps(t)
	app := NewApp(d)
	app.width = 120

	m, _ := app.Update(statusMsg{text: "disk full", isError: true})
	app = m.(App)
	if !app.statusError || !strings.Contains(app.renderFooter(), "disk full") {
		t.Fatal("error status not shown")
	}

	m, _ = app.Update(statusMsg{text: "ding \a"})
	app = m.(App)
	if strings.Contains(app.renderFooter(), "\a") {
		t.Fatal("bells should not reach the footer")
	}
}

func TestAppExport(t *testing.T) {
	d, clk := newTestDeps(t)
	s, _ := d.Service.Ledger.StartSession(clk.Now(), nil, "", 25)
	d.Service.Ledger.CompleteSession(clk.Now().Add(25*time.Minute), s.ID, nil)

	app := NewApp(d)
	app.exportDir = t.TempDir()

	m, _ := app.Update(press("E"))
	app = m.(App)
	if !app.exportPicking {
		t.Fatal("E should open the export picker")
	}
	m, _ = app.Update(press("down"))
	app = m.(App)
	m, cmd := app.Update(press("enter"))
	app = m.(App)
	if app.exportPicking {
		t.Fatal("picker should close on enter")
	}

	msgs := collect(cmd)
	if len(msgs) != 1 {
		t.Fatalf("msgs = %#v", msgs)
	}
	done, ok := msgs[0].(exportDoneMsg)
	if !ok {
		t.Fatalf("got %#v", msgs[0])
	}
	want := filepath.Join(app.exportDir, "focuslog-export-2026-03-02.json")
	if done.path != want || done.rows != 1 {
		t.Fatalf("export = %+v", done)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatal(err)
	}

	m, _ = app.Update(done)
	app = m.(App)
	if !strings.Contains(app.status, "Exported 1 rows") {
		t.Fatalf("status = %q", app.status)
	}
}

func TestAppQuit(t *testing.T) {
	d, _ := newTestDeps(t)
	_, cmd := NewApp(d).Update(press("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected QuitMsg")
	}
}

// ============================================================
// Helpers
// ============================================================

func TestFormatCountdown(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00"},
		{time.Second, "00:01"},
		{25 * time.Minute, "25:00"},
		{5*time.Minute + 30*time.Second, "05:30"},
		{-time.Second, "00:00"},
	}
	for _, tt := range tests {
		if got := formatCountdown(tt.d); got != tt.want {
			t.Errorf("formatCountdown(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		min  int
		want string
	}{
		{0, "0m"},
		{45, "45m"},
		{60, "1h 00m"},
		{135, "2h 15m"},
	}
	for _, tt := range tests {
		if got := formatMinutes(tt.min); got != tt.want {
			t.Errorf("formatMinutes(%d) = %q, want %q", tt.min, got, tt.want)
		}
	}
}

func TestSignalText(t *testing.T) {
	s := timer.Signal{Title: "Done", Body: "Take a break.", Chimes: 2}
	if got := signalText(s, false); got != "Done Take a break." {
		t.Fatalf("got %q", got)
	}
	if got := signalText(s, true); !strings.HasSuffix(got, "\a\a") {
		t.Fatalf("got %q", got)
	}
}

func TestSignalQueueDrain(t *testing.T) {
	q := &signalQueue{}
	q.Notify(timer.Signal{Kind: timer.SignalOneMinute})
	q.Notify(timer.Signal{Kind: timer.SignalComplete})
	if got := q.drain(); len(got) != 2 {
		t.Fatalf("drained %d", len(got))
	}
	if got := q.drain(); len(got) != 0 {
		t.Fatalf("second drain = %d", len(got))
	}
}

// ============================================================
// Key bindings
// ============================================================

func TestKeyMapShortHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help should have bindings")
	}
}

func TestKeyMapFullHelp(t *testing.T) {
	groups := keys.FullHelp()
	if len(groups) == 0 {
		t.Fatal("full help should have groups")
	}
	for i, g := range groups {
		if len(g) == 0 {
			t.Fatalf("help group %d is empty", i)
		}
	}
}

// ============================================================
// Styles (smoke test)
// ============================================================

func TestStylesRender(t *testing.T) {
	styles := []interface{ Render(...string) string }{
		activeTabStyle, inactiveTabStyle, panelStyle, activePanelStyle,
		timerStyle, timerRunningStyle, timerPausedStyle, timerBreakStyle,
		titleStyle, accentStyle, successStyle, warningStyle, errorStyle,
		mutedStyle, highlightStyle, headerStyle, footerStyle,
		selectedItemStyle, normalItemStyle, doneItemStyle,
		dayCellStyle, weekendCellStyle, cursorCellStyle, selectedCellStyle,
	}
	for _, s := range styles {
		_ = s.Render("test")
	}
	if swatch("#3B82F6") == "" {
		t.Fatal("swatch rendered empty")
	}
}
