// Package registry owns the set of lists visible to the current user
// and the active-list pointer. The implicit Personal list is always
// available and never stored.
package registry

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"pado/internal/backend"
	"pado/internal/task"
)

var (
	ErrEmptyName   = errors.New("list name must not be empty")
	ErrUnknownList = errors.New("unknown list")
)

type Registry struct {
	mu       sync.Mutex
	backend  backend.Backend
	log      *zap.Logger
	lists    []task.List
	activeID int
}

func New(b backend.Backend, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{backend: b, log: log, activeID: task.PersonalListID}
}

// Load refreshes the list set. On failure it degrades to an empty set,
// Personal stays available and the error is returned for reporting.
// The previously active list survives a reload when it is still in the
// result set; otherwise the active list resets to Personal.
func (r *Registry) Load(ctx context.Context) error {
	lists, err := r.backend.Lists(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.log.Warn("list load failed", zap.Error(err))
		r.lists = nil
	} else {
		r.lists = lists
	}
	if r.activeID != task.PersonalListID && !r.hasLocked(r.activeID) {
		r.activeID = task.PersonalListID
	}
	return err
}

// Lists returns a copy of the loaded shared lists.
func (r *Registry) Lists() []task.List {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]task.List, len(r.lists))
	copy(out, r.lists)
	return out
}

// ActiveID returns the active list id, PersonalListID for Personal.
func (r *Registry) ActiveID() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeID
}

// Active returns the active shared list, or false when Personal is
// active.
func (r *Registry) Active() (task.List, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.lists {
		if l.ID == r.activeID {
			return l, true
		}
	}
	return task.List{}, false
}

// SetActive switches the active list. The id must be Personal or one
// of the loaded lists.
func (r *Registry) SetActive(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id != task.PersonalListID && !r.hasLocked(id) {
		return ErrUnknownList
	}
	r.activeID = id
	return nil
}

// ShareAllowed reports whether sharing controls apply: the active list
// is a shared list and the current user owns it.
func (r *Registry) ShareAllowed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.activeID == task.PersonalListID {
		return false
	}
	for _, l := range r.lists {
		if l.ID == r.activeID {
			return bool(l.IsOwner)
		}
	}
	return false
}

// Create posts a new list, reloads the registry and makes the new list
// active. The name is trimmed and must be non-empty. On failure the
// registry is unchanged.
func (r *Registry) Create(ctx context.Context, name string) (task.List, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return task.List{}, ErrEmptyName
	}
	created, err := r.backend.CreateList(ctx, name)
	if err != nil {
		return task.List{}, err
	}

	// Reload is best effort: the created list stays selectable even
	// when the refresh right after it fails.
	if err := r.Load(ctx); err != nil {
		r.log.Warn("reload after create failed", zap.Error(err))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.hasLocked(created.ID) {
		r.lists = append(r.lists, created)
	}
	r.activeID = created.ID
	return created, nil
}

func (r *Registry) hasLocked(id int) bool {
	for _, l := range r.lists {
		if l.ID == id {
			return true
		}
	}
	return false
}
