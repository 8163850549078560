package focus

import (
	"fmt"
	"time"
)

// StaleGrace is added to a record's planned duration before it counts as stale.
const StaleGrace = 5 * time.Minute

// InterruptedNote is attached to sessions completed by recovery.
const InterruptedNote = "Session interrupted - auto-completed on restart"

type OrphanKind string

const (
	OrphanSessions OrphanKind = "sessions"
	OrphanBreaks   OrphanKind = "breaks"
)

type ResolveAction string

const (
	ActionComplete ResolveAction = "complete"
	ActionDelete   ResolveAction = "delete"
	ActionKeep     ResolveAction = "keep"
)

func ParseOrphanKind(s string) (OrphanKind, error) {
	switch k := OrphanKind(s); k {
	case OrphanSessions, OrphanBreaks:
		return k, nil
	}
	return "", &ValidationError{Field: "kind", Reason: fmt.Sprintf("%q is not sessions or breaks", s)}
}

func ParseResolveAction(s string) (ResolveAction, error) {
	switch a := ResolveAction(s); a {
	case ActionComplete, ActionDelete, ActionKeep:
		return a, nil
	}
	return "", &ValidationError{Field: "action", Reason: fmt.Sprintf("%q is not complete, delete or keep", s)}
}

// Timed is what staleness is computed from.
type Timed interface {
	Started() time.Time
	Planned() time.Duration
	Done() bool
}

// IsStale reports whether an incomplete item has run past its planned
// duration plus StaleGrace.
func IsStale(item Timed, now time.Time) bool {
	if item.Done() {
		return false
	}
	return now.Sub(item.Started()) > item.Planned()+StaleGrace
}

// Report is the result of a recovery scan.
type Report struct {
	Sessions      []FocusSession
	Breaks        []BreakSession
	StaleSessions int
	StaleBreaks   int
}

func (r Report) Empty() bool {
	return len(r.Sessions) == 0 && len(r.Breaks) == 0
}

func (r Report) Count() int {
	return len(r.Sessions) + len(r.Breaks)
}

// Recovery finds and resolves sessions and breaks that were never completed.
type Recovery struct {
	svc *Service
}

func (r *Recovery) OrphanedSessions(now time.Time) ([]FocusSession, error) {
	items, err := r.svc.Ledger.Sessions(now)
	if err != nil {
		return nil, err
	}
	var out []FocusSession
	for _, s := range items {
		if !s.Completed {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *Recovery) OrphanedBreaks(now time.Time) ([]BreakSession, error) {
	items, err := r.svc.Ledger.Breaks(now)
	if err != nil {
		return nil, err
	}
	var out []BreakSession
	for _, b := range items {
		if !b.Completed {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *Recovery) Scan(now time.Time) (Report, error) {
	var rep Report
	var err error
	if rep.Sessions, err = r.OrphanedSessions(now); err != nil {
		return Report{}, err
	}
	if rep.Breaks, err = r.OrphanedBreaks(now); err != nil {
		return Report{}, err
	}
	for _, s := range rep.Sessions {
		if IsStale(s, now) {
			rep.StaleSessions++
		}
	}
	for _, b := range rep.Breaks {
		if IsStale(b, now) {
			rep.StaleBreaks++
		}
	}
	return rep, nil
}

// Resolve applies action to every current orphan of kind and returns how many
// records it changed. Running it again with no new orphans returns 0.
func (r *Recovery) Resolve(now time.Time, kind OrphanKind, action ResolveAction) (int, error) {
	switch action {
	case ActionKeep:
		return 0, nil
	case ActionComplete, ActionDelete:
	default:
		return 0, &ValidationError{Field: "action", Reason: string(action)}
	}

	r.svc.mu.Lock()
	defer r.svc.mu.Unlock()

	var n int
	var err error
	switch kind {
	case OrphanSessions:
		if action == ActionDelete {
			n, err = dropIncomplete[FocusSession](r.svc.backend, KindSessions, DayKey(now))
		} else {
			n, err = r.completeSessions(now)
		}
	case OrphanBreaks:
		if action == ActionDelete {
			n, err = dropIncomplete[BreakSession](r.svc.backend, KindBreaks, DayKey(now))
		} else {
			n, err = r.completeBreaks(now)
		}
	default:
		return 0, &ValidationError{Field: "kind", Reason: string(kind)}
	}
	if n > 0 {
		r.svc.log.Info("orphans resolved", "kind", kind, "action", action, "count", n)
	}
	return n, err
}

func (r *Recovery) completeSessions(now time.Time) (int, error) {
	items, _, err := load[FocusSession](r.svc.backend, KindSessions, DayKey(now))
	if err != nil {
		return 0, err
	}
	note := InterruptedNote
	n := 0
	for _, s := range items {
		if s.Completed {
			continue
		}
		changed, err := r.svc.Ledger.completeSession(now, s.ID, &note)
		if changed {
			n++
		}
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

func (r *Recovery) completeBreaks(now time.Time) (int, error) {
	items, _, err := load[BreakSession](r.svc.backend, KindBreaks, DayKey(now))
	if err != nil {
		return 0, err
	}
	n := 0
	for _, b := range items {
		if b.Completed {
			continue
		}
		changed, err := r.svc.Ledger.completeBreak(now, b.ID)
		if changed {
			n++
		}
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

func dropIncomplete[T Timed](b Backend, kind, day string) (int, error) {
	items, version, err := load[T](b, kind, day)
	if err != nil {
		return 0, err
	}
	kept := make([]T, 0, len(items))
	for _, it := range items {
		if it.Done() {
			kept = append(kept, it)
		}
	}
	dropped := len(items) - len(kept)
	if dropped == 0 {
		return 0, nil
	}
	if err := save(b, kind, day, kept, version); err != nil {
		return 0, err
	}
	return dropped, nil
}
