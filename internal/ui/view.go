package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"pado/internal/task"
)

var (
	styleHeader   = lipgloss.NewStyle().Bold(true)
	styleDone     = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	styleHigh     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	styleMid      = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleStatus   = lipgloss.NewStyle().Faint(true)
	styleModalBox = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func (m Model) View() string {
	var b strings.Builder

	owner := ""
	if m.reg.ShareAllowed() {
		owner = " (owner)"
	}
	b.WriteString(styleHeader.Render(fmt.Sprintf("pado — %s%s", m.activeListName(), owner)))
	b.WriteString("\n\n")

	switch m.mode {
	case modeConfirm:
		if m.confirm != nil {
			b.WriteString(styleModalBox.Render(m.confirm.prompt + "  y/n"))
			b.WriteString("\n\n")
		}
	case modeShare:
		b.WriteString(m.viewShare())
	case modeEditor:
		b.WriteString(fmt.Sprintf("Task editor: %s\n\n", m.editorLabel()))
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
	case modeCreateList:
		b.WriteString("New list: ")
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
	default:
		b.WriteString(m.viewTasks())
	}

	b.WriteString(styleStatus.Render(m.status))
	b.WriteString("\n")
	b.WriteString(styleStatus.Render(m.helpLine()))
	return b.String()
}

func (m Model) editorLabel() string {
	if m.editor == nil {
		return ""
	}
	if m.editor.taskID != 0 {
		return fmt.Sprintf("editing task #%d, %s", m.editor.taskID, m.editor.currentLabel())
	}
	return "new task, " + m.editor.currentLabel()
}

func (m Model) viewTasks() string {
	var b strings.Builder
	if len(m.view) == 0 {
		b.WriteString("No tasks yet. Press 'a' to add one.\n")
	} else {
		for i, t := range m.view {
			cursor := " "
			if m.cursor == i {
				cursor = ">"
			}
			checkbox := "[ ]"
			if t.Done {
				checkbox = "[x]"
			}

			extras := make([]string, 0, 3)
			if t.DueDate != "" {
				due := t.DueDate
				if t.DueTime != "" {
					due += " " + t.DueTime
				}
				extras = append(extras, "due:"+due)
			}
			extras = append(extras, "prio:"+string(t.Priority))

			title := t.Title
			switch {
			case bool(t.Done):
				title = styleDone.Render(title)
			case t.Priority == task.PriorityHigh:
				title = styleHigh.Render(title)
			case t.Priority == task.PriorityMid:
				title = styleMid.Render(title)
			}

			b.WriteString(fmt.Sprintf("%s %s %s [%s]\n", cursor, checkbox, title, strings.Join(extras, " | ")))
			if m.cursor == i && t.Description != "" {
				b.WriteString(styleStatus.Render("      " + t.Description))
				b.WriteString("\n")
			}
		}
	}

	filter := "open"
	if m.filter.ShowCompleted {
		filter = "all"
	}
	b.WriteString("\n")
	b.WriteString(styleStatus.Render(fmt.Sprintf("sort:%s  show:%s", m.sortKey, filter)))
	b.WriteString("\n\n")
	return b.String()
}

func (m Model) viewShare() string {
	var b strings.Builder
	b.WriteString("Members:\n")
	if len(m.members) == 0 {
		b.WriteString("  (loading)\n")
	}
	for i, mem := range m.members {
		cursor := " "
		if m.shareCur == i {
			cursor = ">"
		}
		tag := ""
		if mem.IsOwner {
			tag = " (owner)"
		}
		b.WriteString(fmt.Sprintf("%s %s%s\n", cursor, mem.Username, tag))
	}
	b.WriteString("\nAdd member: ")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	return b.String()
}

func (m Model) helpLine() string {
	k := m.cfg.Keys
	switch m.mode {
	case modeShare:
		return fmt.Sprintf("enter add • ctrl+d remove • %s close", k.Cancel)
	case modeEditor, modeCreateList:
		return fmt.Sprintf("%s next • %s cancel", k.Confirm, k.Cancel)
	case modeConfirm:
		return "y confirm • n cancel"
	default:
		return fmt.Sprintf("%s/%s move • %s add • %s edit • %s toggle • %s delete • %s/%s list • %s new list • %s share • %s undo • %s quit",
			k.Up, k.Down, k.Add, k.Edit, k.Toggle, k.Delete, k.NextList, k.PrevList, k.NewList, k.Share, k.Undo, k.Quit)
	}
}
