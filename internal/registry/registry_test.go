package registry_test

import (
	"context"
	"errors"
	"testing"

	"pado/internal/registry"
	"pado/internal/task"
	"pado/internal/testutil"
)

func TestLoadFailureDegradesToPersonal(t *testing.T) {
	fb := testutil.NewFakeBackend()
	fb.SeedList(3, "Team", true)

	r := registry.New(fb, nil)
	if err := r.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := r.SetActive(3); err != nil {
		t.Fatal(err)
	}

	fb.ListsErr = errors.New("boom")
	if err := r.Load(context.Background()); err == nil {
		t.Fatal("expected load error")
	}
	if got := r.Lists(); len(got) != 0 {
		t.Errorf("failed load must leave an empty set, got %v", got)
	}
	if r.ActiveID() != task.PersonalListID {
		t.Error("active list must fall back to Personal")
	}
}

func TestReloadPreservesActiveWhenStillPresent(t *testing.T) {
	fb := testutil.NewFakeBackend()
	fb.SeedList(3, "Team", true)
	fb.SeedList(4, "Chores", false)

	r := registry.New(fb, nil)
	if err := r.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := r.SetActive(4); err != nil {
		t.Fatal(err)
	}
	if err := r.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if r.ActiveID() != 4 {
		t.Errorf("active = %d, want 4", r.ActiveID())
	}
}

func TestSetActiveRejectsUnknownList(t *testing.T) {
	fb := testutil.NewFakeBackend()
	r := registry.New(fb, nil)
	if err := r.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := r.SetActive(99); !errors.Is(err, registry.ErrUnknownList) {
		t.Errorf("err = %v, want ErrUnknownList", err)
	}
	if err := r.SetActive(task.PersonalListID); err != nil {
		t.Errorf("Personal must always be selectable: %v", err)
	}
}

func TestCreateTrimsActivates(t *testing.T) {
	fb := testutil.NewFakeBackend()
	r := registry.New(fb, nil)

	if _, err := r.Create(context.Background(), "   "); !errors.Is(err, registry.ErrEmptyName) {
		t.Fatalf("err = %v, want ErrEmptyName", err)
	}

	l, err := r.Create(context.Background(), "  Team  ")
	if err != nil {
		t.Fatal(err)
	}
	if l.Name != "Team" {
		t.Errorf("name = %q, want trimmed", l.Name)
	}
	if r.ActiveID() != l.ID {
		t.Error("created list must become active")
	}
	if active, ok := r.Active(); !ok || active.ID != l.ID {
		t.Errorf("Active() = %+v, %v", active, ok)
	}
}

func TestCreateSurvivesFailedReload(t *testing.T) {
	fb := testutil.NewFakeBackend()
	r := registry.New(fb, nil)

	fb.ListsErr = errors.New("boom")
	l, err := r.Create(context.Background(), "Team")
	if err != nil {
		t.Fatal(err)
	}
	if r.ActiveID() != l.ID {
		t.Error("created list must stay selectable past a failed refresh")
	}
	if _, ok := r.Active(); !ok {
		t.Error("created list missing from the set")
	}
}

func TestShareAllowed(t *testing.T) {
	fb := testutil.NewFakeBackend()
	fb.SeedList(3, "Mine", true)
	fb.SeedList(4, "Theirs", false)

	r := registry.New(fb, nil)
	if err := r.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name string
		id   int
		want bool
	}{
		{"personal", task.PersonalListID, false},
		{"owned shared", 3, true},
		{"joined shared", 4, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := r.SetActive(tc.id); err != nil {
				t.Fatal(err)
			}
			if got := r.ShareAllowed(); got != tc.want {
				t.Errorf("ShareAllowed = %v, want %v", got, tc.want)
			}
		})
	}
}
