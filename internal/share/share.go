// Package share manages the membership of one shared list at a time.
// Add and remove are gated on ownership client-side; the server stays
// the authority on everything else and its messages surface verbatim.
package share

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
	ErrNotOwner      = errors.New("only the list owner can manage members")
	ErrOwnerRow      = errors.New("the owner cannot be removed from their own list")
	ErrEmptyUsername = errors.New("username must not be empty")
)

type Manager struct {
	mu      sync.Mutex
	backend backend.Backend
	log     *zap.Logger

	listID  int
	members []task.Member
}

func New(b backend.Backend, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{backend: b, log: log}
}

// Load fetches the membership of one shared list, owner included.
// Viewing needs only member access, so no ownership gate here.
func (m *Manager) Load(ctx context.Context, listID int) error {
	members, err := m.backend.Members(ctx, listID)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listID = listID
	m.members = members
	return nil
}

// Members returns a copy of the loaded membership.
func (m *Manager) Members() []task.Member {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]task.Member, len(m.members))
	copy(out, m.members)
	return out
}

// Reset clears the loaded membership when the sharing surface closes.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listID = 0
	m.members = nil
}

// Add grants a user access to the list by username. Only the owner may
// add; the server decides whether the user exists or is already a
// member, and its message is passed through untouched.
func (m *Manager) Add(ctx context.Context, list task.List, username string) error {
	if !bool(list.IsOwner) {
		return ErrNotOwner
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return ErrEmptyUsername
	}
	if err := m.backend.AddMember(ctx, list.ID, username); err != nil {
		return err
	}
	m.log.Info("member added", zap.Int("list", list.ID), zap.String("username", username))
	return m.Load(ctx, list.ID)
}

// Remove revokes one membership. Gated like Add, and the owner's own
// row is never a valid target.
func (m *Manager) Remove(ctx context.Context, list task.List, userID int) error {
	if !bool(list.IsOwner) {
		return ErrNotOwner
	}
	m.mu.Lock()
	for _, mem := range m.members {
		if mem.UserID == userID && bool(mem.IsOwner) {
			m.mu.Unlock()
			return ErrOwnerRow
		}
	}
	m.mu.Unlock()

	if err := m.backend.RemoveMember(ctx, list.ID, userID); err != nil {
		return err
	}
	m.log.Info("member removed", zap.Int("list", list.ID), zap.Int("user", userID))
	return m.Load(ctx, list.ID)
}
