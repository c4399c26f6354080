// Package testutil provides an in-memory backend for tests.
package testutil

import (
	"context"
	"errors"
	"sync"

	"pado/internal/task"
)

var ErrNotFound = errors.New("not found")

// FakeBackend is an in-memory implementation of backend.Backend with
// per-operation error injection, in the shape the real server keeps
// its data: lists with owner flags, memberships per list, tasks per
// list.
type FakeBackend struct {
	mu      sync.Mutex
	lists   []task.List
	members map[int][]task.Member
	tasks   map[int][]task.Task
	nextID  int

	ListsErr        error
	CreateListErr   error
	MembersErr      error
	AddMemberErr    error
	RemoveMemberErr error
	TasksErr        error
	CreateTaskErr   error
	UpdateTaskErr   error
	SetDoneErr      error
	DeleteTaskErr   error
	RestoreTaskErr  error
}

func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		members: make(map[int][]task.Member),
		tasks:   make(map[int][]task.Task),
		nextID:  1,
	}
}

// SeedList registers a list visible to the current user.
func (f *FakeBackend) SeedList(id int, name string, isOwner bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists = append(f.lists, task.List{ID: id, Name: name, IsOwner: task.Flag(isOwner)})
}

// SeedMember adds a membership row to a list.
func (f *FakeBackend) SeedMember(listID, userID int, username string, isOwner bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.members[listID] = append(f.members[listID], task.Member{
		UserID: userID, Username: username, IsOwner: task.Flag(isOwner),
	})
}

// SeedTask stores a task directly, assigning an id when it has none.
func (f *FakeBackend) SeedTask(t task.Task) task.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.ID == 0 {
		t.ID = f.nextID
		f.nextID++
	}
	f.tasks[t.ListID] = append(f.tasks[t.ListID], t)
	return t
}

func (f *FakeBackend) Lists(ctx context.Context) ([]task.List, error) {
	if f.ListsErr != nil {
		return nil, f.ListsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]task.List, len(f.lists))
	copy(out, f.lists)
	return out, nil
}

func (f *FakeBackend) CreateList(ctx context.Context, name string) (task.List, error) {
	if f.CreateListErr != nil {
		return task.List{}, f.CreateListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	l := task.List{ID: f.nextID, Name: name, IsOwner: true}
	f.nextID++
	f.lists = append(f.lists, l)
	return l, nil
}

func (f *FakeBackend) Members(ctx context.Context, listID int) ([]task.Member, error) {
	if f.MembersErr != nil {
		return nil, f.MembersErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]task.Member, len(f.members[listID]))
	copy(out, f.members[listID])
	return out, nil
}

func (f *FakeBackend) AddMember(ctx context.Context, listID int, username string) error {
	if f.AddMemberErr != nil {
		return f.AddMemberErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.members[listID] = append(f.members[listID], task.Member{UserID: id, Username: username})
	return nil
}

func (f *FakeBackend) RemoveMember(ctx context.Context, listID, userID int) error {
	if f.RemoveMemberErr != nil {
		return f.RemoveMemberErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := f.members[listID]
	for i, m := range rows {
		if m.UserID == userID {
			f.members[listID] = append(rows[:i], rows[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (f *FakeBackend) Tasks(ctx context.Context, listID int) ([]task.Task, error) {
	if f.TasksErr != nil {
		return nil, f.TasksErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]task.Task, len(f.tasks[listID]))
	copy(out, f.tasks[listID])
	return out, nil
}

func (f *FakeBackend) CreateTask(ctx context.Context, t task.Task) error {
	if f.CreateTaskErr != nil {
		return f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t.ID = f.nextID
	f.nextID++
	f.tasks[t.ListID] = append(f.tasks[t.ListID], t)
	return nil
}

func (f *FakeBackend) UpdateTask(ctx context.Context, id int, t task.Task) error {
	if f.UpdateTaskErr != nil {
		return f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for listID, rows := range f.tasks {
		for i := range rows {
			if rows[i].ID == id {
				rows[i].Title = t.Title
				rows[i].Description = t.Description
				rows[i].DueDate = t.DueDate
				rows[i].DueTime = t.DueTime
				rows[i].Priority = t.Priority
				f.tasks[listID] = rows
				return nil
			}
		}
	}
	return ErrNotFound
}

func (f *FakeBackend) SetDone(ctx context.Context, id int, done bool) error {
	if f.SetDoneErr != nil {
		return f.SetDoneErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rows := range f.tasks {
		for i := range rows {
			if rows[i].ID == id {
				rows[i].Done = task.Flag(done)
				return nil
			}
		}
	}
	return ErrNotFound
}

func (f *FakeBackend) DeleteTask(ctx context.Context, id int) error {
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for listID, rows := range f.tasks {
		for i := range rows {
			if rows[i].ID == id {
				f.tasks[listID] = append(rows[:i], rows[i+1:]...)
				return nil
			}
		}
	}
	return ErrNotFound
}

func (f *FakeBackend) RestoreTask(ctx context.Context, t task.Task, index int) error {
	if f.RestoreTaskErr != nil {
		return f.RestoreTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := f.tasks[t.ListID]
	if index < 0 {
		index = 0
	}
	if index > len(rows) {
		index = len(rows)
	}
	rows = append(rows, task.Task{})
	copy(rows[index+1:], rows[index:])
	rows[index] = t
	f.tasks[t.ListID] = rows
	return nil
}
