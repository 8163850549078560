package focus

import (
	"encoding/json"
	"time"
)

type Category string

const (
	CategoryDeepWork Category = "deep-work"
	CategoryAdmin    Category = "admin"
	CategoryCreative Category = "creative"
	CategoryLearning Category = "learning"
	CategoryMeetings Category = "meetings"
	CategoryOther    Category = "other"
)

var Categories = []Category{
	CategoryDeepWork, CategoryAdmin, CategoryCreative,
	CategoryLearning, CategoryMeetings, CategoryOther,
}

var categoryLabels = map[Category]string{
	CategoryDeepWork: "Deep Work",
	CategoryAdmin:    "Admin",
	CategoryCreative: "Creative",
	CategoryLearning: "Learning",
	CategoryMeetings: "Meetings",
	CategoryOther:    "Other",
}

func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// FreeFocusTitle labels sessions that are not bound to a task.
const FreeFocusTitle = "Free Focus"

// FocusTask is a unit of planned work for one day.
type FocusTask struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Category          Category  `json:"category"`
	Completed         bool      `json:"completed"`
	SessionsCompleted int       `json:"sessionsCompleted"`
	EstimatedSessions *int      `json:"estimatedSessions,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`

	extra map[string]json.RawMessage
}

// FocusSession is one focus countdown. A nil TaskID marks free focus time.
type FocusSession struct {
	ID          string     `json:"id"`
	TaskID      *string    `json:"taskId"`
	TaskTitle   string     `json:"taskTitle"`
	Duration    int        `json:"duration"` // minutes
	Completed   bool       `json:"completed"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
	Date        string     `json:"date"`

	extra map[string]json.RawMessage
}

type BreakSession struct {
	ID          string     `json:"id"`
	Duration    int        `json:"duration"` // minutes
	Completed   bool       `json:"completed"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Activity    *string    `json:"activity,omitempty"`
	Date        string     `json:"date"`

	extra map[string]json.RawMessage
}

func (s FocusSession) IsFreeFocus() bool { return s.TaskID == nil }

func (s FocusSession) Started() time.Time { return s.StartedAt }
func (s FocusSession) Planned() time.Duration {
	return time.Duration(s.Duration) * time.Minute
}
func (s FocusSession) Done() bool { return s.Completed }

func (b BreakSession) Started() time.Time { return b.StartedAt }
func (b BreakSession) Planned() time.Duration {
	return time.Duration(b.Duration) * time.Minute
}
func (b BreakSession) Done() bool { return b.Completed }

// Recommendation is the advisor's suggestion after a focus session.
type Recommendation struct {
	ShouldBreak bool   `json:"shouldBreak"`
	Duration    int    `json:"duration"` // minutes
	Message     string `json:"message"`
}

// BreakOptions are the durations offered when overriding a recommendation.
var BreakOptions = []int{5, 10, 15}

// BreakActivities are preset labels for a break.
var BreakActivities = []string{"stretch", "walk", "hydrate", "breathe", "snack"}
