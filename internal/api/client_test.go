package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"pado/internal/api"
	"pado/internal/task"
)

func newClient(t *testing.T, h http.HandlerFunc) *api.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := api.New(srv.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func TestListsDecodesNumericOwnerFlag(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lists" {
			t.Errorf("path = %s", r.URL.Path)
		}
		writeJSON(w, http.StatusOK, `[{"id":3,"name":"Team","is_owner":1},{"id":4,"name":"Chores","is_owner":0}]`)
	})

	lists, err := c.Lists(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(lists) != 2 || !bool(lists[0].IsOwner) || bool(lists[1].IsOwner) {
		t.Errorf("lists = %+v", lists)
	}
}

func TestTasksScopeParameter(t *testing.T) {
	var gotQuery string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		writeJSON(w, http.StatusOK, `[]`)
	})

	if _, err := c.Tasks(context.Background(), task.PersonalListID); err != nil {
		t.Fatal(err)
	}
	if gotQuery != "" {
		t.Errorf("personal scope must omit list_id, got %q", gotQuery)
	}

	if _, err := c.Tasks(context.Background(), 7); err != nil {
		t.Fatal(err)
	}
	if gotQuery != "list_id=7" {
		t.Errorf("query = %q, want list_id=7", gotQuery)
	}
}

func TestTasksDecodesWireTypes(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK,
			`[{"id":9,"title":"Ship","done":1,"priority":"High","dueDate":"2026-09-01","dueTime":"14:30","createdAt":"2026-08-30T10:11:12.123456"}]`)
	})

	tasks, err := c.Tasks(context.Background(), task.PersonalListID)
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 1 {
		t.Fatalf("tasks = %+v", tasks)
	}
	got := tasks[0]
	if !bool(got.Done) || got.Priority != task.PriorityHigh || got.DueDate != "2026-09-01" {
		t.Errorf("task = %+v", got)
	}
	if got.CreatedTime().IsZero() {
		t.Error("createdAt must parse")
	}
}

func TestErrorFromJSONBody(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"ok":false,"error":"Title is required."}`)
	})

	err := c.CreateTask(context.Background(), task.Task{})
	if err == nil || err.Error() != "Title is required." {
		t.Errorf("err = %v, want the server message", err)
	}
}

func TestErrorFromNonJSONBody(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, "<html>maintenance</html>")
	})

	err := c.DeleteTask(context.Background(), 1)
	if err == nil || err.Error() != "Request failed (503)" {
		t.Errorf("err = %v, want the generic template", err)
	}
}

func TestOKFalseUnderStatus200(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"ok":false,"error":"User not found."}`)
	})

	err := c.AddMember(context.Background(), 3, "ghost")
	if err == nil || err.Error() != "User not found." {
		t.Errorf("err = %v, want ok:false treated as failure", err)
	}
}

func TestSetDoneSendsNumericFlag(t *testing.T) {
	var method, path, body string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		writeJSON(w, http.StatusOK, `{"ok":true}`)
	})

	if err := c.SetDone(context.Background(), 9, true); err != nil {
		t.Fatal(err)
	}
	if method != http.MethodPatch || path != "/tasks/9" {
		t.Errorf("%s %s", method, path)
	}
	if body != `{"done":1}` {
		t.Errorf("body = %s, want {\"done\":1}", body)
	}
}

func TestCreateTaskOmitsPersonalListID(t *testing.T) {
	var body map[string]any
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Error(err)
		}
		writeJSON(w, http.StatusOK, `{"ok":true}`)
	})

	err := c.CreateTask(context.Background(), task.Task{Title: "Ship", Priority: task.PriorityLow})
	if err != nil {
		t.Fatal(err)
	}
	if _, present := body["list_id"]; present {
		t.Error("personal tasks must not carry list_id")
	}

	err = c.CreateTask(context.Background(), task.Task{Title: "Ship", Priority: task.PriorityLow, ListID: 7})
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := body["list_id"].(float64); got != 7 {
		t.Errorf("list_id = %v, want 7", body["list_id"])
	}
}

func TestAuthFormEncodedAndCookie(t *testing.T) {
	var form map[string][]string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth":
			if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
				t.Errorf("content type = %s", ct)
			}
			if err := r.ParseForm(); err != nil {
				t.Error(err)
			}
			form = r.PostForm
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "s3cret"})
			writeJSON(w, http.StatusOK, `{"ok":true,"redirect":"/"}`)
		case "/tasks":
			cookie, err := r.Cookie("session")
			if err != nil || cookie.Value != "s3cret" {
				t.Error("session cookie missing on the follow-up call")
			}
			writeJSON(w, http.StatusOK, `[]`)
		default:
			t.Errorf("path = %s", r.URL.Path)
		}
	})

	res, err := c.Login(context.Background(), "alice", "Passw0rd")
	if err != nil {
		t.Fatal(err)
	}
	if res.Redirect != "/" {
		t.Errorf("redirect = %q", res.Redirect)
	}
	if got := form["action"]; len(got) != 1 || got[0] != "login" {
		t.Errorf("action = %v", form["action"])
	}

	if _, err := c.Tasks(context.Background(), task.PersonalListID); err != nil {
		t.Fatal(err)
	}
}

func TestAuthFailureSurfacesServerMessage(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"ok":false,"error":"Invalid credentials."}`)
	})

	_, err := c.Login(context.Background(), "alice", "wrong")
	if err == nil || err.Error() != "Invalid credentials." {
		t.Errorf("err = %v", err)
	}
}
