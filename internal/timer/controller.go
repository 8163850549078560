package timer

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sadopc/focuslog/internal/focus"
)

var (
	ErrInvalidTransition = errors.New("timer: invalid transition")
	ErrRecoveryPending   = errors.New("timer: orphaned sessions need a decision first")
)

const (
	MinDuration     = 1
	MaxDuration     = 60
	DefaultDuration = 25

	twoMinuteMark = 2 * time.Minute
	oneMinuteMark = time.Minute
)

// Controller drives the focus timer. Callers deliver one Tick per second
// and must not call it from more than one goroutine.
type Controller struct {
	svc    *focus.Service
	notify Notifier
	log    *slog.Logger

	state    State
	duration int // minutes

	orphans         focus.Report
	recoveryPending bool

	warnedTwo bool
	warnedOne bool
}

func New(svc *focus.Service, n Notifier, log *slog.Logger, minutes int) *Controller {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if minutes < MinDuration || minutes > MaxDuration {
		minutes = DefaultDuration
	}
	return &Controller{
		svc:      svc,
		notify:   n,
		log:      log,
		state:    Idle{},
		duration: minutes,
	}
}

func (c *Controller) State() State  { return c.state }
func (c *Controller) Duration() int { return c.duration }

// Remaining is the countdown of the active session or break, zero otherwise.
func (c *Controller) Remaining() time.Duration {
	switch s := c.state.(type) {
	case Running:
		return s.Remaining
	case Paused:
		return s.Remaining
	case OnBreak:
		return s.Remaining
	}
	return 0
}

// Orphans returns the last recovery scan and whether a decision is still due.
func (c *Controller) Orphans() (focus.Report, bool) {
	return c.orphans, c.recoveryPending
}

func (c *Controller) invalid(op string) error {
	return fmt.Errorf("%s from %s: %w", op, c.state.Name(), ErrInvalidTransition)
}

// Mount runs the start-up recovery scan. While orphans are pending, Start and
// Confirm are refused.
func (c *Controller) Mount(now time.Time) (focus.Report, error) {
	rep, err := c.svc.Recovery.Scan(now)
	if err != nil {
		return focus.Report{}, err
	}
	c.orphans = rep
	c.recoveryPending = !rep.Empty()
	if c.recoveryPending {
		c.log.Info("orphans found", "sessions", len(rep.Sessions), "breaks", len(rep.Breaks),
			"stale_sessions", rep.StaleSessions, "stale_breaks", rep.StaleBreaks)
	}
	return rep, nil
}

// ResolveOrphans applies action to one kind of orphan and rescans. The gate
// opens once nothing is left.
func (c *Controller) ResolveOrphans(now time.Time, kind focus.OrphanKind, action focus.ResolveAction) (int, error) {
	n, err := c.svc.Recovery.Resolve(now, kind, action)
	if err != nil {
		return n, err
	}
	rep, err := c.svc.Recovery.Scan(now)
	if err != nil {
		return n, err
	}
	c.orphans = rep
	c.recoveryPending = !rep.Empty()
	return n, nil
}

// KeepOrphans leaves the orphans in place and opens the gate.
func (c *Controller) KeepOrphans() {
	c.recoveryPending = false
}

func (c *Controller) SetDuration(minutes int) error {
	switch c.state.(type) {
	case Idle, AwaitingTaskSelection:
	default:
		return c.invalid("set duration")
	}
	if minutes < MinDuration || minutes > MaxDuration {
		return &focus.ValidationError{
			Field:  "duration",
			Reason: fmt.Sprintf("must be between %d and %d minutes", MinDuration, MaxDuration),
		}
	}
	c.duration = minutes
	return nil
}

// Start opens task selection.
func (c *Controller) Start() error {
	if c.recoveryPending {
		return ErrRecoveryPending
	}
	if _, ok := c.state.(Idle); !ok {
		return c.invalid("start")
	}
	c.state = AwaitingTaskSelection{}
	return nil
}

// Confirm records a new session for taskID (nil for free focus) and starts
// the countdown.
func (c *Controller) Confirm(now time.Time, taskID *string, title string) error {
	if c.recoveryPending {
		return ErrRecoveryPending
	}
	if _, ok := c.state.(AwaitingTaskSelection); !ok {
		return c.invalid("confirm")
	}
	s, err := c.svc.Ledger.StartSession(now, taskID, title, c.duration)
	if err != nil {
		return err
	}
	c.warnedTwo, c.warnedOne = false, false
	c.state = Running{Session: s, Remaining: time.Duration(c.duration) * time.Minute}
	return nil
}

func (c *Controller) Pause() error {
	r, ok := c.state.(Running)
	if !ok {
		return c.invalid("pause")
	}
	c.state = Paused{Session: r.Session, Remaining: r.Remaining}
	return nil
}

func (c *Controller) Resume() error {
	p, ok := c.state.(Paused)
	if !ok {
		return c.invalid("resume")
	}
	c.state = Running{Session: p.Session, Remaining: p.Remaining}
	return nil
}

// Tick advances the active countdown by one second. It is a no-op in states
// without a running countdown.
func (c *Controller) Tick(now time.Time) error {
	switch s := c.state.(type) {
	case Running:
		prev := s.Remaining
		next := prev - time.Second
		if !c.warnedTwo && prev > twoMinuteMark && next <= twoMinuteMark {
			c.warnedTwo = true
			c.signal(twoMinuteSignal)
		}
		if !c.warnedOne && prev > oneMinuteMark && next <= oneMinuteMark {
			c.warnedOne = true
			c.signal(oneMinuteSignal)
		}
		if next <= 0 {
			c.state = AwaitingCompletionNotes{Session: s.Session}
			c.signal(completeSignal)
			return nil
		}
		c.state = Running{Session: s.Session, Remaining: next}
	case OnBreak:
		next := s.Remaining - time.Second
		if next <= 0 {
			return c.endBreak(now, s)
		}
		c.state = OnBreak{Break: s.Break, Remaining: next}
	}
	return nil
}

// Complete records the finished session with optional notes and asks the
// advisor whether a break is due.
func (c *Controller) Complete(now time.Time, notes *string) error {
	a, ok := c.state.(AwaitingCompletionNotes)
	if !ok {
		return c.invalid("complete")
	}
	if err := c.svc.Ledger.CompleteSession(now, a.Session.ID, notes); err != nil {
		return err
	}
	rec, err := c.svc.Advisor.Recommend(now)
	if err != nil {
		return err
	}
	if rec.ShouldBreak {
		c.state = AwaitingBreakDecision{Recommendation: rec}
	} else {
		c.state = Idle{}
	}
	return nil
}

// Skip leaves the finished session incomplete.
func (c *Controller) Skip() error {
	if _, ok := c.state.(AwaitingCompletionNotes); !ok {
		return c.invalid("skip")
	}
	c.state = Idle{}
	return nil
}

func (c *Controller) Decline() error {
	if _, ok := c.state.(AwaitingBreakDecision); !ok {
		return c.invalid("decline")
	}
	c.state = Idle{}
	return nil
}

// Accept starts a break of the given length, which may differ from the
// recommendation.
func (c *Controller) Accept(now time.Time, minutes int, activity *string) error {
	if _, ok := c.state.(AwaitingBreakDecision); !ok {
		return c.invalid("accept")
	}
	b, err := c.svc.Ledger.StartBreak(now, minutes, activity)
	if err != nil {
		return err
	}
	c.state = OnBreak{Break: b, Remaining: time.Duration(minutes) * time.Minute}
	return nil
}

// FinishBreak ends the break early.
func (c *Controller) FinishBreak(now time.Time) error {
	b, ok := c.state.(OnBreak)
	if !ok {
		return c.invalid("finish break")
	}
	return c.endBreak(now, b)
}

func (c *Controller) endBreak(now time.Time, b OnBreak) error {
	if err := c.svc.Ledger.CompleteBreak(now, b.Break.ID); err != nil {
		return err
	}
	c.state = AwaitingTaskSelection{}
	return nil
}

// Reset drops the active countdown. The session or break record stays
// incomplete.
func (c *Controller) Reset() {
	c.state = Idle{}
	c.warnedTwo, c.warnedOne = false, false
}

func (c *Controller) signal(s Signal) {
	if c.notify == nil {
		return
	}
	if err := c.notify.Notify(s); err != nil {
		c.log.Warn("notify failed", "title", s.Title, "err", err)
	}
}
