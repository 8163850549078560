package timer

import (
	"time"

	"github.com/sadopc/focuslog/internal/focus"
)

// State is the controller's single active state. Only the types in this
// file implement it.
type State interface {
	Name() string
	sealed()
}

type Idle struct{}

type AwaitingTaskSelection struct{}

type Running struct {
	Session   focus.FocusSession
	Remaining time.Duration
}

type Paused struct {
	Session   focus.FocusSession
	Remaining time.Duration
}

type AwaitingCompletionNotes struct {
	Session focus.FocusSession
}

type AwaitingBreakDecision struct {
	Recommendation focus.Recommendation
}

type OnBreak struct {
	Break     focus.BreakSession
	Remaining time.Duration
}

func (Idle) Name() string                    { return "idle" }
func (AwaitingTaskSelection) Name() string   { return "selecting" }
func (Running) Name() string                 { return "running" }
func (Paused) Name() string                  { return "paused" }
func (AwaitingCompletionNotes) Name() string { return "notes" }
func (AwaitingBreakDecision) Name() string   { return "break-decision" }
func (OnBreak) Name() string                 { return "on-break" }

func (Idle) sealed()                    {}
func (AwaitingTaskSelection) sealed()   {}
func (Running) sealed()                 {}
func (Paused) sealed()                  {}
func (AwaitingCompletionNotes) sealed() {}
func (AwaitingBreakDecision) sealed()   {}
func (OnBreak) sealed()                 {}
