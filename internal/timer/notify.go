package timer

type SignalKind int

const (
	SignalTwoMinutes SignalKind = iota
	SignalOneMinute
	SignalComplete
)

// Signal is a fire-and-forget notification. Chimes is how many times the
// alert sound should play.
type Signal struct {
	Kind   SignalKind
	Title  string
	Body   string
	Chimes int
}

var (
	twoMinuteSignal = Signal{
		Kind:   SignalTwoMinutes,
		Title:  "⏰ 2 Minutes Remaining",
		Body:   "Start wrapping up your current task.",
		Chimes: 1,
	}
	oneMinuteSignal = Signal{
		Kind:   SignalOneMinute,
		Title:  "⏰ 1 Minute Remaining",
		Body:   "Final minute - time to finish up!",
		Chimes: 2,
	}
	completeSignal = Signal{
		Kind:   SignalComplete,
		Title:  "Focus Timer Complete! 🎉",
		Body:   "Great job! Time for a well-deserved break.",
		Chimes: 3,
	}
)

// Notifier delivers signals. Errors are logged by the controller and never
// affect its state.
type Notifier interface {
	Notify(Signal) error
}

type NotifierFunc func(Signal) error

func (f NotifierFunc) Notify(s Signal) error { return f(s) }
