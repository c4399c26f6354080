// Package local is the standalone backend: the whole task collection
// lives as one JSON blob under a fixed key in a bbolt file and is
// rewritten in full after every change. No sharing, no lists, no
// migration.
package local

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"pado/internal/backend"
	"pado/internal/task"
)

const (
	bucketName = "pado"
	tasksKey   = "tasks"
)

var ErrNotFound = errors.New("task not found")

type Store struct {
	db *bolt.DB
}

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func readAll(tx *bolt.Tx) ([]task.Task, error) {
	raw := tx.Bucket([]byte(bucketName)).Get([]byte(tasksKey))
	if raw == nil {
		return nil, nil
	}
	var tasks []task.Task
	if err := json.Unmarshal(raw, &tasks); err != nil {
		return nil, fmt.Errorf("decode task collection: %w", err)
	}
	return tasks, nil
}

func writeAll(tx *bolt.Tx, tasks []task.Task) error {
	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("encode task collection: %w", err)
	}
	return tx.Bucket([]byte(bucketName)).Put([]byte(tasksKey), data)
}

// mutate runs one read-modify-write cycle over the whole collection.
func (s *Store) mutate(fn func([]task.Task) ([]task.Task, error)) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		tasks, err := readAll(tx)
		if err != nil {
			return err
		}
		tasks, err = fn(tasks)
		if err != nil {
			return err
		}
		return writeAll(tx, tasks)
	})
}

// newID derives a positive int from the leading bytes of a random
// UUID. Zero is reserved for "no id".
func newID(taken []task.Task) int {
	for {
		u := uuid.New()
		id := int(binary.BigEndian.Uint32(u[:4]))
		if id == 0 {
			continue
		}
		used := false
		for _, t := range taken {
			if t.ID == id {
				used = true
				break
			}
		}
		if !used {
			return id
		}
	}
}

// Lists implements backend.Backend. The standalone store only ever
// holds the Personal collection.
func (s *Store) Lists(ctx context.Context) ([]task.List, error) {
	return nil, nil
}

func (s *Store) CreateList(ctx context.Context, name string) (task.List, error) {
	return task.List{}, backend.ErrUnsupported
}

func (s *Store) Members(ctx context.Context, listID int) ([]task.Member, error) {
	return nil, backend.ErrUnsupported
}

func (s *Store) AddMember(ctx context.Context, listID int, username string) error {
	return backend.ErrUnsupported
}

func (s *Store) RemoveMember(ctx context.Context, listID, userID int) error {
	return backend.ErrUnsupported
}

// Tasks implements backend.Backend. The collection order is the
// insertion order, which is what position-preserving undo relies on.
func (s *Store) Tasks(ctx context.Context, listID int) ([]task.Task, error) {
	if listID != task.PersonalListID {
		return nil, backend.ErrUnsupported
	}
	var tasks []task.Task
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		tasks, err = readAll(tx)
		return err
	})
	return tasks, err
}

// CreateTask implements backend.Backend.
func (s *Store) CreateTask(ctx context.Context, t task.Task) error {
	return s.mutate(func(tasks []task.Task) ([]task.Task, error) {
		t.ID = newID(tasks)
		t.ListID = task.PersonalListID
		if t.CreatedAt == "" {
			t.CreatedAt = time.Now().UTC().Format(time.RFC3339)
		}
		return append(tasks, t), nil
	})
}

// UpdateTask implements backend.Backend. Identity and creation time
// survive edits.
func (s *Store) UpdateTask(ctx context.Context, id int, t task.Task) error {
	return s.mutate(func(tasks []task.Task) ([]task.Task, error) {
		for i := range tasks {
			if tasks[i].ID == id {
				tasks[i].Title = t.Title
				tasks[i].Description = t.Description
				tasks[i].DueDate = t.DueDate
				tasks[i].DueTime = t.DueTime
				tasks[i].Priority = t.Priority
				return tasks, nil
			}
		}
		return nil, ErrNotFound
	})
}

// SetDone implements backend.Backend.
func (s *Store) SetDone(ctx context.Context, id int, done bool) error {
	return s.mutate(func(tasks []task.Task) ([]task.Task, error) {
		for i := range tasks {
			if tasks[i].ID == id {
				tasks[i].Done = task.Flag(done)
				return tasks, nil
			}
		}
		return nil, ErrNotFound
	})
}

// DeleteTask implements backend.Backend.
func (s *Store) DeleteTask(ctx context.Context, id int) error {
	return s.mutate(func(tasks []task.Task) ([]task.Task, error) {
		for i := range tasks {
			if tasks[i].ID == id {
				return append(tasks[:i], tasks[i+1:]...), nil
			}
		}
		return nil, ErrNotFound
	})
}

// RestoreTask implements backend.Backend. The task keeps its id and
// returns to its original index, clamped to the current collection.
func (s *Store) RestoreTask(ctx context.Context, t task.Task, index int) error {
	return s.mutate(func(tasks []task.Task) ([]task.Task, error) {
		if index < 0 {
			index = 0
		}
		if index > len(tasks) {
			index = len(tasks)
		}
		tasks = append(tasks, task.Task{})
		copy(tasks[index+1:], tasks[index:])
		tasks[index] = t
		return tasks, nil
	})
}
