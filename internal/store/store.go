// Package store owns the task collection of the active list and
// mediates every mutation between the UI and the backend.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"pado/internal/backend"
	"pado/internal/task"
)

// DeletePolicy selects what delete does: remove at once, or park the
// task in a single-slot undo buffer for a short window.
type DeletePolicy string

const (
	DeleteImmediate DeletePolicy = "immediate"
	DeleteSoft      DeletePolicy = "soft-delete-with-expiry"
)

// UndoWindow is how long a soft-deleted task stays restorable.
const UndoWindow = 3 * time.Second

var ErrTaskNotFound = errors.New("task not found")

// Filter controls which tasks Render includes.
type Filter struct {
	ShowCompleted bool
}

type pendingDelete struct {
	t       task.Task
	index   int
	expires time.Time
}

type Store struct {
	mu      sync.Mutex
	backend backend.Backend
	log     *zap.Logger
	policy  DeletePolicy
	now     func() time.Time

	tasks   []task.Task
	pending *pendingDelete
}

func New(b backend.Backend, policy DeletePolicy, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	if policy == "" {
		policy = DeleteImmediate
	}
	return &Store{backend: b, policy: policy, log: log, now: time.Now}
}

// SetClock replaces the time source, for tests of the undo window.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Load fetches the task set scoped to listID. On failure the previous
// in-memory set stays untouched and the error is returned. A reload
// also drops any pending undo entry.
func (s *Store) Load(ctx context.Context, listID int) error {
	tasks, err := s.backend.Tasks(ctx, listID)
	if err != nil {
		s.log.Warn("task load failed", zap.Int("list", listID), zap.Error(err))
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = tasks
	s.pending = nil
	return nil
}

// Tasks returns a copy of the raw in-memory set.
func (s *Store) Tasks() []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]task.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Get finds one task by id.
func (s *Store) Get(id int) (task.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return task.Task{}, false
}

// Render projects the in-memory set for display: completed tasks only
// when the flag allows them, then the requested order. The store is
// never mutated, so equal inputs render equal sequences.
func (s *Store) Render(f Filter, key task.SortKey) []task.Task {
	s.mu.Lock()
	view := make([]task.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if f.ShowCompleted || !bool(t.Done) {
			view = append(view, t)
		}
	}
	s.mu.Unlock()

	task.SortTasks(view, key)
	return view
}

// Create posts a new task pinned to the active list, then reloads so
// the server-assigned identity lands in memory. On failure the prior
// state is intact.
func (s *Store) Create(ctx context.Context, t task.Task, activeListID int) error {
	t.ListID = activeListID
	if err := s.backend.CreateTask(ctx, t); err != nil {
		return err
	}
	return s.Load(ctx, activeListID)
}

// Update replaces the editable fields of one task. Identity and list
// membership never change on edit.
func (s *Store) Update(ctx context.Context, id int, t task.Task, activeListID int) error {
	if err := s.backend.UpdateTask(ctx, id, t); err != nil {
		return err
	}
	return s.Load(ctx, activeListID)
}

// SetDone flips the done flag optimistically and persists it. When
// persistence fails the local flip is reverted before the error is
// reported, so memory never drifts from the server.
func (s *Store) SetDone(ctx context.Context, id int, done bool) error {
	if !s.flip(id, done) {
		return ErrTaskNotFound
	}
	if err := s.backend.SetDone(ctx, id, done); err != nil {
		s.flip(id, !done)
		return err
	}
	return nil
}

func (s *Store) flip(id int, done bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i].Done = task.Flag(done)
			return true
		}
	}
	return false
}

// Delete removes a task under the configured policy. Confirmation is
// the caller's concern; by the time Delete runs the user already said
// yes. Under the soft policy the task moves into the single undo slot,
// silently finalizing whatever was parked there before.
func (s *Store) Delete(ctx context.Context, id int, activeListID int) error {
	s.mu.Lock()
	index := -1
	var victim task.Task
	for i, t := range s.tasks {
		if t.ID == id {
			index, victim = i, t
			break
		}
	}
	s.mu.Unlock()
	if index < 0 {
		return ErrTaskNotFound
	}

	if err := s.backend.DeleteTask(ctx, id); err != nil {
		return err
	}

	if s.policy == DeleteSoft {
		// A reload may have replaced the set while the request was in
		// flight, so the task is located again before the splice. The
		// index captured above only records the restore position; when
		// the task is gone from the current set nothing is parked.
		s.mu.Lock()
		for i := range s.tasks {
			if s.tasks[i].ID == id {
				s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
				s.pending = &pendingDelete{t: victim, index: index, expires: s.now().Add(UndoWindow)}
				s.log.Debug("task parked for undo", zap.Int("id", id))
				break
			}
		}
		s.mu.Unlock()
		return nil
	}
	return s.Load(ctx, activeListID)
}

// CanUndo reports whether an unexpired soft-deleted task is waiting.
func (s *Store) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil && s.now().Before(s.pending.expires)
}

// Undo restores the most recently soft-deleted task at its original
// position. After the window has passed, or when nothing is parked,
// it reports false and restores nothing.
func (s *Store) Undo(ctx context.Context, activeListID int) (task.Task, bool, error) {
	s.mu.Lock()
	p := s.pending
	if p == nil || !s.now().Before(p.expires) {
		s.pending = nil
		s.mu.Unlock()
		return task.Task{}, false, nil
	}
	s.pending = nil
	s.mu.Unlock()

	if err := s.backend.RestoreTask(ctx, p.t, p.index); err != nil {
		return task.Task{}, false, err
	}
	if err := s.Load(ctx, activeListID); err != nil {
		return p.t, true, err
	}
	return p.t, true, nil
}
