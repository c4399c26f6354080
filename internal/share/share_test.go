package share_test

import (
	"context"
	"errors"
	"testing"

	"pado/internal/share"
	"pado/internal/task"
	"pado/internal/testutil"
)

func TestLoadNeedsNoOwnership(t *testing.T) {
	fb := testutil.NewFakeBackend()
	fb.SeedMember(3, 1, "alice", true)
	fb.SeedMember(3, 2, "bob", false)

	m := share.New(fb, nil)
	if err := m.Load(context.Background(), 3); err != nil {
		t.Fatal(err)
	}
	got := m.Members()
	if len(got) != 2 || got[0].Username != "alice" || !bool(got[0].IsOwner) {
		t.Errorf("members = %+v", got)
	}
}

func TestAddGatedOnOwnership(t *testing.T) {
	fb := testutil.NewFakeBackend()
	m := share.New(fb, nil)

	joined := task.List{ID: 3, Name: "Theirs", IsOwner: false}
	if err := m.Add(context.Background(), joined, "carol"); !errors.Is(err, share.ErrNotOwner) {
		t.Errorf("err = %v, want ErrNotOwner", err)
	}

	owned := task.List{ID: 4, Name: "Mine", IsOwner: true}
	if err := m.Add(context.Background(), owned, "   "); !errors.Is(err, share.ErrEmptyUsername) {
		t.Errorf("err = %v, want ErrEmptyUsername", err)
	}
	if err := m.Add(context.Background(), owned, " carol "); err != nil {
		t.Fatal(err)
	}
	got := m.Members()
	if len(got) != 1 || got[0].Username != "carol" {
		t.Errorf("membership after add = %+v", got)
	}
}

func TestAddPassesServerErrorVerbatim(t *testing.T) {
	fb := testutil.NewFakeBackend()
	serverSaid := errors.New("User not found.")
	fb.AddMemberErr = serverSaid

	m := share.New(fb, nil)
	owned := task.List{ID: 4, IsOwner: true}
	if err := m.Add(context.Background(), owned, "ghost"); !errors.Is(err, serverSaid) {
		t.Errorf("err = %v, want the server message untouched", err)
	}
}

func TestRemoveProtectsOwnerRow(t *testing.T) {
	fb := testutil.NewFakeBackend()
	fb.SeedMember(4, 1, "alice", true)
	fb.SeedMember(4, 2, "bob", false)

	m := share.New(fb, nil)
	owned := task.List{ID: 4, IsOwner: true}
	if err := m.Load(context.Background(), 4); err != nil {
		t.Fatal(err)
	}

	if err := m.Remove(context.Background(), task.List{ID: 4, IsOwner: false}, 2); !errors.Is(err, share.ErrNotOwner) {
		t.Errorf("err = %v, want ErrNotOwner", err)
	}
	if err := m.Remove(context.Background(), owned, 1); !errors.Is(err, share.ErrOwnerRow) {
		t.Errorf("err = %v, want ErrOwnerRow", err)
	}
	if err := m.Remove(context.Background(), owned, 2); err != nil {
		t.Fatal(err)
	}
	got := m.Members()
	if len(got) != 1 || got[0].Username != "alice" {
		t.Errorf("membership after remove = %+v", got)
	}
}

func TestResetClearsMembership(t *testing.T) {
	fb := testutil.NewFakeBackend()
	fb.SeedMember(4, 1, "alice", true)

	m := share.New(fb, nil)
	if err := m.Load(context.Background(), 4); err != nil {
		t.Fatal(err)
	}
	m.Reset()
	if got := m.Members(); len(got) != 0 {
		t.Errorf("membership after reset = %+v", got)
	}
}
