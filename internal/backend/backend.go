// Package backend defines the persistence-agnostic interface the
// stores talk to. The remote API client and the standalone local store
// both implement it; nothing above this package knows which one is in
// play.
package backend

import (
	"context"
	"errors"

	"pado/internal/task"
)

// ErrUnsupported is returned by backends that do not implement an
// operation, e.g. sharing against the local store.
var ErrUnsupported = errors.New("operation not supported by this backend")

// Backend is the full surface the UI-facing stores need. listID 0
// addresses the implicit Personal list throughout.
type Backend interface {
	// Lists returns all shared lists visible to the current user.
	Lists(ctx context.Context) ([]task.List, error)

	// CreateList creates a shared list and returns it with its
	// server-assigned ID.
	CreateList(ctx context.Context, name string) (task.List, error)

	// Members returns the membership of one shared list, owner included.
	Members(ctx context.Context, listID int) ([]task.Member, error)

	// AddMember adds a user to a shared list by username. The server is
	// the authority on existence and duplicates.
	AddMember(ctx context.Context, listID int, username string) error

	// RemoveMember removes one membership row.
	RemoveMember(ctx context.Context, listID, userID int) error

	// Tasks returns the task set scoped to one list.
	Tasks(ctx context.Context, listID int) ([]task.Task, error)

	// CreateTask creates a task. The ListID field pins it to a list.
	CreateTask(ctx context.Context, t task.Task) error

	// UpdateTask replaces the editable fields of a task.
	UpdateTask(ctx context.Context, id int, t task.Task) error

	// SetDone flips the done flag.
	SetDone(ctx context.Context, id int, done bool) error

	// DeleteTask removes a task.
	DeleteTask(ctx context.Context, id int) error

	// RestoreTask re-inserts a previously deleted task at its original
	// position in the collection, keeping its identity where the
	// backend can.
	RestoreTask(ctx context.Context, t task.Task, index int) error
}
