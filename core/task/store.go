package task

import (
	"sort"
	"sync"

	"github.com/kilianp07/ocppcs/core/ocpp"
)

// Store registers tasks under process unique ids.
type Store interface {
	// Create builds and registers a task with all trackers pending.
	Create(version ocpp.Version, operation string, recipients []ocpp.ChargePointSelect) (*Task, error)
	// Add registers t and returns its id. Adding the same task twice returns
	// the id it already has.
	Add(t *Task) int
	// Get returns the task registered under id.
	Get(id int) (*Task, bool)
	// List returns snapshots of all tasks by ascending id.
	List() []Snapshot
}

// MemoryStore keeps tasks for the lifetime of the process. Ids start at 1
// and are never reused.
type MemoryStore struct {
	mu    sync.RWMutex
	last  int
	tasks map[int]*Task
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tasks: map[int]*Task{}}
}

func (s *MemoryStore) Create(version ocpp.Version, operation string, recipients []ocpp.ChargePointSelect) (*Task, error) {
	t, err := New(version, operation, recipients)
	if err != nil {
		return nil, err
	}
	s.Add(t)
	return t, nil
}

func (s *MemoryStore) Add(t *Task) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id := t.ID(); id != 0 {
		return id
	}
	s.last++
	t.id.Store(int64(s.last))
	s.tasks[s.last] = t
	return s.last
}

func (s *MemoryStore) Get(id int) (*Task, bool) {
	s.mu.RLock()
	t, ok := s.tasks[id]
	s.mu.RUnlock()
	return t, ok
}

func (s *MemoryStore) List() []Snapshot {
	s.mu.RLock()
	tasks := make([]*Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		tasks = append(tasks, t)
	}
	s.mu.RUnlock()
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID() < tasks[j].ID() })
	out := make([]Snapshot, len(tasks))
	for i, t := range tasks {
		out[i] = t.Snapshot()
	}
	return out
}

// Len returns the number of registered tasks.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}
