package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"pado/internal/task"
)

// editorState is the task editor form: one field at a time, Enter
// advances, the last Enter saves. taskID 0 means create mode.
type editorState struct {
	taskID      int
	title       string
	description string
	dueDate     string
	dueTime     string
	priority    string
	index       int
}

func editorFields() []string {
	return []string{"title", "description", "due date (YYYY-MM-DD)", "due time (HH:MM)", "priority (Low/Mid/High)"}
}

func (es editorState) currentLabel() string {
	return editorFields()[es.index]
}

func (es editorState) currentValue() string {
	switch es.index {
	case 0:
		return es.title
	case 1:
		return es.description
	case 2:
		return es.dueDate
	case 3:
		return es.dueTime
	case 4:
		return es.priority
	default:
		return ""
	}
}

func (es *editorState) setCurrentValue(v string) {
	switch es.index {
	case 0:
		es.title = v
	case 1:
		es.description = v
	case 2:
		es.dueDate = v
	case 3:
		es.dueTime = v
	case 4:
		es.priority = v
	}
}

// openEditor starts the editor. A nil task opens in create mode; a
// task opens in edit mode with its fields loaded.
func (m Model) openEditor(t *task.Task) (tea.Model, tea.Cmd) {
	es := &editorState{priority: string(task.PriorityLow)}
	if t != nil {
		es.taskID = t.ID
		es.title = t.Title
		es.description = t.Description
		es.dueDate = t.DueDate
		es.dueTime = t.DueTime
		es.priority = string(t.Priority)
	}
	m.editor = es
	m.mode = modeEditor
	m.input.SetValue(es.currentValue())
	m.input.Placeholder = es.currentLabel()
	m.input.Focus()
	m.status = m.editorPrompt()
	return m, nil
}

func (m Model) editorPrompt() string {
	if m.editor == nil {
		return ""
	}
	return fmt.Sprintf("Editing %s (field %d of %d). Enter to advance, Esc to cancel.",
		m.editor.currentLabel(), m.editor.index+1, len(editorFields()))
}

func (m Model) updateEditor(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	switch key {
	case k.Cancel, "esc":
		// Closing clears the editing reference: the next open is a
		// fresh create-mode form.
		m.editor = nil
		m.mode = modeList
		m.input.SetValue("")
		m.input.Blur()
		m.status = "Edit cancelled"
		return m, nil
	case k.Confirm, "enter":
		if m.editor == nil {
			return m, nil
		}
		m.editor.setCurrentValue(m.input.Value())
		if m.editor.index >= len(editorFields())-1 {
			return m.saveEditor()
		}
		m.editor.index++
		m.input.SetValue(m.editor.currentValue())
		m.input.Placeholder = m.editor.currentLabel()
		m.status = m.editorPrompt()
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) saveEditor() (tea.Model, tea.Cmd) {
	es := m.editor
	if es == nil {
		return m, nil
	}

	title := strings.TrimSpace(es.title)
	if title == "" {
		m.status = "Title cannot be empty"
		m.editor.index = 0
		m.input.SetValue(es.title)
		m.input.Placeholder = es.currentLabel()
		return m, nil
	}
	priority, err := parsePriority(es.priority)
	if err != nil {
		m.status = fmt.Sprintf("priority invalid: %v", err)
		return m, nil
	}
	if err := validateDate(es.dueDate); err != nil {
		m.status = fmt.Sprintf("due date invalid: %v", err)
		return m, nil
	}
	if err := validateClock(es.dueTime); err != nil {
		m.status = fmt.Sprintf("due time invalid: %v", err)
		return m, nil
	}

	t := task.Task{
		Title:       title,
		Description: strings.TrimSpace(es.description),
		DueDate:     strings.TrimSpace(es.dueDate),
		DueTime:     strings.TrimSpace(es.dueTime),
		Priority:    priority,
	}
	id := es.taskID

	m.editor = nil
	m.mode = modeList
	m.input.SetValue("")
	m.input.Blur()
	return m, m.saveTaskCmd(id, t)
}

func (m Model) saveTaskCmd(id int, t task.Task) tea.Cmd {
	reg, tasks := m.reg, m.tasks
	return func() tea.Msg {
		ctx := context.Background()
		var err error
		if id != 0 {
			err = tasks.Update(ctx, id, t, reg.ActiveID())
		} else {
			err = tasks.Create(ctx, t, reg.ActiveID())
		}
		return taskSavedMsg{err: err}
	}
}

func parsePriority(v string) (task.Priority, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return task.PriorityLow, nil
	}
	switch strings.ToLower(v) {
	case "low":
		return task.PriorityLow, nil
	case "mid":
		return task.PriorityMid, nil
	case "high":
		return task.PriorityHigh, nil
	}
	return "", fmt.Errorf("want Low, Mid or High")
}

func validateDate(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	_, err := time.Parse("2006-01-02", v)
	return err
}

func validateClock(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	_, err := time.Parse("15:04", v)
	return err
}
