package focus

import "time"

// Advisor recommends a break from today's completed sessions and breaks.
type Advisor struct {
	svc *Service
}

func (a *Advisor) Recommend(now time.Time) (Recommendation, error) {
	sessions, err := a.svc.Ledger.Sessions(now)
	if err != nil {
		return Recommendation{}, err
	}
	breaks, err := a.svc.Ledger.Breaks(now)
	if err != nil {
		return Recommendation{}, err
	}
	return RecommendBreak(sessions, breaks), nil
}

// RecommendBreak applies the break rules to one day's records. Free focus
// sessions count like task sessions.
func RecommendBreak(sessions []FocusSession, breaks []BreakSession) Recommendation {
	var completedSessions, completedBreaks int
	var lastSession, lastBreak time.Time
	for _, s := range sessions {
		if !s.Completed {
			continue
		}
		completedSessions++
		if s.CompletedAt != nil && s.CompletedAt.After(lastSession) {
			lastSession = *s.CompletedAt
		}
	}
	for _, b := range breaks {
		if !b.Completed {
			continue
		}
		completedBreaks++
		if b.CompletedAt != nil && b.CompletedAt.After(lastBreak) {
			lastBreak = *b.CompletedAt
		}
	}

	// A break already followed the latest session.
	if !lastSession.IsZero() && !lastBreak.IsZero() && lastBreak.After(lastSession) {
		return Recommendation{}
	}

	since := completedSessions - completedBreaks
	switch {
	case since >= 3:
		return Recommendation{ShouldBreak: true, Duration: 15, Message: "You've completed 3 focus sessions! Time for a 15-minute break."}
	case since >= 2:
		return Recommendation{ShouldBreak: true, Duration: 10, Message: "Nice momentum! Take a 10-minute break to recharge."}
	case since >= 1 && completedSessions == 1:
		return Recommendation{ShouldBreak: true, Duration: 5, Message: "Great start! Take a quick 5-minute break?"}
	}
	return Recommendation{}
}
