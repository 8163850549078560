package focus

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sadopc/focuslog/internal/calendar"
	"github.com/sadopc/focuslog/internal/store"
)

// Collection kinds, one collection of each per calendar day.
const (
	KindTasks    = "focus-tasks"
	KindSessions = "focus-sessions"
	KindBreaks   = "break-sessions"
)

// Backend is the day-keyed persistence contract. Both store.Store and
// store.DiskvCollections satisfy it.
type Backend interface {
	GetCollection(kind, day string) (store.Collection, error)
	PutCollection(kind, day string, data []byte, expect int64) (int64, error)
}

// Service bundles the task store, session ledger, orphan recovery and break
// advisor over one backend. All writes are serialized on a single mutex.
type Service struct {
	backend Backend
	log     *slog.Logger
	mu      sync.Mutex

	Tasks    *TaskStore
	Ledger   *Ledger
	Recovery *Recovery
	Advisor  *Advisor
}

func NewService(b Backend, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &Service{backend: b, log: log}
	s.Tasks = &TaskStore{svc: s}
	s.Ledger = &Ledger{svc: s}
	s.Recovery = &Recovery{svc: s}
	s.Advisor = &Advisor{svc: s}
	return s
}

// DayKey is the collection key for the calendar day of t in t's location.
func DayKey(t time.Time) string {
	return calendar.FormatDate(t)
}

func newID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

func load[T any](b Backend, kind, day string) ([]T, int64, error) {
	c, err := b.GetCollection(kind, day)
	if err != nil {
		return nil, 0, &StorageError{Op: "load " + kind + " " + day, Err: err}
	}
	var items []T
	if len(c.Data) > 0 {
		if err := json.Unmarshal(c.Data, &items); err != nil {
			return nil, 0, &StorageError{Op: "decode " + kind + " " + day, Err: err}
		}
	}
	return items, c.Version, nil
}

func save[T any](b Backend, kind, day string, items []T, version int64) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return &StorageError{Op: "encode " + kind + " " + day, Err: err}
	}
	if _, err := b.PutCollection(kind, day, data, version); err != nil {
		return &StorageError{Op: "save " + kind + " " + day, Err: err}
	}
	return nil
}

func ptr[T any](v T) *T { return &v }
