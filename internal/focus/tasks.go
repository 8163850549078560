package focus

import (
	"errors"
	"strings"
	"time"

	"github.com/sadopc/focuslog/internal/store"
)

// TaskStore owns the day's focus-tasks collection.
type TaskStore struct {
	svc *Service
}

// TaskPatch carries the fields to change. Nil fields are left alone.
type TaskPatch struct {
	Title             *string
	Category          *Category
	Completed         *bool
	EstimatedSessions *int
}

func (t *TaskStore) List(now time.Time) ([]FocusTask, error) {
	items, _, err := load[FocusTask](t.svc.backend, KindTasks, DayKey(now))
	return items, err
}

func (t *TaskStore) Add(now time.Time, title string, cat Category, estimate *int) (FocusTask, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return FocusTask{}, &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if cat == "" {
		cat = CategoryOther
	}
	if !cat.Valid() {
		return FocusTask{}, &ValidationError{Field: "category", Reason: "unknown category " + string(cat)}
	}
	if estimate != nil && *estimate <= 0 {
		return FocusTask{}, &ValidationError{Field: "estimatedSessions", Reason: "must be positive"}
	}

	task := FocusTask{
		ID:        newID("task"),
		Title:     title,
		Category:  cat,
		CreatedAt: now.UTC(),
	}
	if estimate != nil {
		task.EstimatedSessions = ptr(*estimate)
	}

	t.svc.mu.Lock()
	defer t.svc.mu.Unlock()

	day := DayKey(now)
	items, version, err := load[FocusTask](t.svc.backend, KindTasks, day)
	if err != nil {
		return FocusTask{}, err
	}
	items = append(items, task)
	if err := save(t.svc.backend, KindTasks, day, items, version); err != nil {
		return FocusTask{}, err
	}
	return task, nil
}

// Update applies p to the task with id. Unknown ids are ignored.
func (t *TaskStore) Update(now time.Time, id string, p TaskPatch) error {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return &ValidationError{Field: "title", Reason: "must not be empty"}
		}
		p.Title = &title
	}
	if p.Category != nil && !p.Category.Valid() {
		return &ValidationError{Field: "category", Reason: "unknown category " + string(*p.Category)}
	}
	if p.EstimatedSessions != nil && *p.EstimatedSessions <= 0 {
		return &ValidationError{Field: "estimatedSessions", Reason: "must be positive"}
	}

	t.svc.mu.Lock()
	defer t.svc.mu.Unlock()

	return t.modify(DayKey(now), id, func(task *FocusTask) {
		if p.Title != nil {
			task.Title = *p.Title
		}
		if p.Category != nil {
			task.Category = *p.Category
		}
		if p.Completed != nil {
			task.Completed = *p.Completed
		}
		if p.EstimatedSessions != nil {
			task.EstimatedSessions = ptr(*p.EstimatedSessions)
		}
	})
}

// Remove deletes the task with id. Unknown ids are ignored.
func (t *TaskStore) Remove(now time.Time, id string) error {
	t.svc.mu.Lock()
	defer t.svc.mu.Unlock()

	day := DayKey(now)
	items, version, err := load[FocusTask](t.svc.backend, KindTasks, day)
	if err != nil {
		return err
	}
	kept := items[:0]
	for _, task := range items {
		if task.ID != id {
			kept = append(kept, task)
		}
	}
	if len(kept) == len(items) {
		return nil
	}
	return save(t.svc.backend, KindTasks, day, kept, version)
}

func (t *TaskStore) IncrementSessionsCompleted(now time.Time, id string) error {
	t.svc.mu.Lock()
	defer t.svc.mu.Unlock()
	return t.increment(DayKey(now), id)
}

// increment expects svc.mu to be held. The session is already saved as
// completed, so a lost compare-and-set is retried once on a fresh read.
func (t *TaskStore) increment(day, id string) error {
	bump := func(task *FocusTask) { task.SessionsCompleted++ }
	err := t.modify(day, id, bump)
	if errors.Is(err, store.ErrVersionConflict) {
		t.svc.log.Warn("task increment conflict, retrying", "task", id, "day", day)
		err = t.modify(day, id, bump)
	}
	return err
}

func (t *TaskStore) modify(day, id string, fn func(*FocusTask)) error {
	items, version, err := load[FocusTask](t.svc.backend, KindTasks, day)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].ID == id {
			fn(&items[i])
			return save(t.svc.backend, KindTasks, day, items, version)
		}
	}
	return nil
}
