package task

import (
	"sort"
	"strings"
	"time"
)

type Priority string

const (
	PriorityLow  Priority = "Low"
	PriorityMid  Priority = "Mid"
	PriorityHigh Priority = "High"
)

// Rank maps a priority to its ordering weight. Unknown values rank
// alongside Low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMid:
		return 2
	default:
		return 1
	}
}

// Flag is a bool that tolerates the server's SQLite heritage: it
// unmarshals from 0/1 as well as true/false and marshals back as 0/1,
// which is what the PATCH endpoint expects.
type Flag bool

func (f Flag) MarshalJSON() ([]byte, error) {
	if f {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

func (f *Flag) UnmarshalJSON(data []byte) error {
	switch strings.TrimSpace(string(data)) {
	case "true", "1":
		*f = true
	default:
		*f = false
	}
	return nil
}

// Task is a single task record as the server represents it. Date and
// time fields stay strings on the wire; comparators parse on demand.
type Task struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	DueDate     string   `json:"dueDate"`
	DueTime     string   `json:"dueTime"`
	Priority    Priority `json:"priority"`
	Done        Flag     `json:"done"`
	CreatedAt   string   `json:"createdAt"`
	ListID      int      `json:"list_id,omitempty"`
}

// List is a shared list as seen by the current user. The Personal list
// is implicit and has no record; ListID 0 means Personal everywhere.
type List struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	IsOwner Flag   `json:"is_owner"`
}

// Member is one membership row of a shared list.
type Member struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	IsOwner  Flag   `json:"is_owner"`
}

// PersonalListID marks the implicit Personal list.
const PersonalListID = 0

var whenLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseWhen parses the timestamp formats the server emits: RFC3339,
// Python isoformat without a zone, or a bare date. Unparseable or empty
// input yields the zero time, which sorts first ascending.
func ParseWhen(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range whenLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// DueAt returns the task's due instant for ordering.
func (t Task) DueAt() time.Time {
	return ParseWhen(t.DueDate)
}

// CreatedTime returns the creation instant for ordering.
func (t Task) CreatedTime() time.Time {
	return ParseWhen(t.CreatedAt)
}

// FormatWhen renders a parsed timestamp for display, empty stays empty.
func FormatWhen(s string) string {
	t := ParseWhen(s)
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}

type SortKey string

const (
	SortCreated  SortKey = "created"
	SortDue      SortKey = "dueDate"
	SortPriority SortKey = "priority"
)

// SortTasks orders tasks in place. Due date sorts ascending with
// missing dates first, priority sorts descending, creation time sorts
// ascending. All orders are stable, so ties keep their original
// relative order.
func SortTasks(tasks []Task, key SortKey) {
	switch key {
	case SortDue:
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].DueAt().Before(tasks[j].DueAt())
		})
	case SortPriority:
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].Priority.Rank() > tasks[j].Priority.Rank()
		})
	default:
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].CreatedTime().Before(tasks[j].CreatedTime())
		})
	}
}
