package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"pado/internal/config"
	"pado/internal/registry"
	"pado/internal/share"
	"pado/internal/store"
	"pado/internal/task"
)

type mode int

const (
	modeList mode = iota
	modeEditor
	modeCreateList
	modeShare
	modeConfirm
)

type confirmKind int

const (
	confirmDeleteTask confirmKind = iota
	confirmRemoveMember
)

// confirmState carries one pending destructive action while the prompt
// is open. Declining drops it without side effects.
type confirmState struct {
	kind   confirmKind
	prompt string
	taskID int
	userID int
}

type Model struct {
	reg    *registry.Registry
	tasks  *store.Store
	shares *share.Manager
	cfg    config.Config
	log    *zap.Logger

	mode      mode
	cursor    int
	view      []task.Task
	input     textinput.Model
	status    string
	filter    store.Filter
	sortKey   task.SortKey
	editor    *editorState
	confirm   *confirmState
	members   []task.Member
	shareCur  int
	localOnly bool
	width     int

	// undoHint is the exact status text shown after a soft delete, so
	// the expiry tick only rewrites its own message.
	undoHint string
}

// Result messages for commands that ran against the backend. State is
// mutated by the owning store inside the command; the message only
// carries what the UI needs to re-render or report.
type (
	bootDoneMsg      struct{ err error }
	tasksReloadedMsg struct{ err error }
	listCreatedMsg   struct {
		list task.List
		err  error
	}
	taskSavedMsg     struct{ err error }
	taskDeletedMsg   struct{ err error }
	toggleDoneMsg    struct{ err error }
	membersLoadedMsg struct {
		members []task.Member
		err     error
	}
	memberChangedMsg struct {
		members []task.Member
		err     error
	}
	undoneMsg struct {
		restored bool
		err      error
	}
	undoExpiredMsg struct{}
)

func Run(reg *registry.Registry, tasks *store.Store, shares *share.Manager, cfg config.Config, localOnly bool, log *zap.Logger) error {
	program := tea.NewProgram(NewModel(reg, tasks, shares, cfg, localOnly, log))
	_, err := program.Run()
	return err
}

func NewModel(reg *registry.Registry, tasks *store.Store, shares *share.Manager, cfg config.Config, localOnly bool, log *zap.Logger) Model {
	if log == nil {
		log = zap.NewNop()
	}
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40

	return Model{
		reg:       reg,
		tasks:     tasks,
		shares:    shares,
		cfg:       cfg,
		log:       log,
		input:     ti,
		mode:      modeList,
		filter:    store.Filter{ShowCompleted: strings.ToLower(cfg.DefaultFilter) == "all"},
		sortKey:   sortKeyFrom(cfg.DefaultSort),
		localOnly: localOnly,
		status:    "Press 'a' to add, space to toggle, 'd' to delete.",
	}
}

func sortKeyFrom(s string) task.SortKey {
	switch task.SortKey(s) {
	case task.SortDue, task.SortPriority:
		return task.SortKey(s)
	default:
		return task.SortCreated
	}
}

func (m Model) Init() tea.Cmd {
	return m.bootCmd()
}

// refresh recomputes the display projection from the store.
func (m *Model) refresh() {
	m.view = m.tasks.Render(m.filter, m.sortKey)
	m.cursor = clampCursor(m.cursor, len(m.view))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - 10
		return m, nil

	case bootDoneMsg:
		m.refresh()
		if msg.err != nil {
			m.status = fmt.Sprintf("load failed: %v", msg.err)
		}
		return m, nil

	case tasksReloadedMsg:
		m.refresh()
		if msg.err != nil {
			m.status = fmt.Sprintf("reload failed: %v", msg.err)
		}
		return m, nil

	case listCreatedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("create list failed: %v", msg.err)
			return m, nil
		}
		m.status = fmt.Sprintf("Created list %q", msg.list.Name)
		return m, m.reloadTasksCmd()

	case taskSavedMsg:
		m.refresh()
		if msg.err != nil {
			m.status = fmt.Sprintf("save failed: %v", msg.err)
		} else {
			m.status = "Saved task"
		}
		return m, nil

	case taskDeletedMsg:
		m.refresh()
		if msg.err != nil {
			m.status = fmt.Sprintf("delete failed: %v", msg.err)
			return m, nil
		}
		if m.tasks.CanUndo() {
			m.status = fmt.Sprintf("Deleted task. Press '%s' to undo.", m.cfg.Keys.Undo)
			m.undoHint = m.status
			return m, tea.Tick(store.UndoWindow, func(time.Time) tea.Msg { return undoExpiredMsg{} })
		}
		m.status = "Deleted task"
		return m, nil

	case toggleDoneMsg:
		m.refresh()
		if msg.err != nil {
			m.status = fmt.Sprintf("toggle failed: %v", msg.err)
		} else {
			m.status = "Toggled task"
		}
		return m, nil

	case membersLoadedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("load members failed: %v", msg.err)
			return m, nil
		}
		m.members = msg.members
		m.shareCur = clampCursor(m.shareCur, len(m.members))
		return m, nil

	case memberChangedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("%v", msg.err)
			return m, nil
		}
		m.members = msg.members
		m.shareCur = clampCursor(m.shareCur, len(m.members))
		m.status = "Membership updated"
		return m, nil

	case undoneMsg:
		m.refresh()
		if msg.err != nil {
			m.status = fmt.Sprintf("undo failed: %v", msg.err)
		} else if msg.restored {
			m.status = "Restored task"
		} else {
			m.status = "Nothing to undo"
		}
		return m, nil

	case undoExpiredMsg:
		if !m.tasks.CanUndo() && m.undoHint != "" && m.status == m.undoHint {
			m.status = "Deleted task"
		}
		m.undoHint = ""
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch m.mode {
	case modeConfirm:
		return m.updateConfirm(key)
	case modeEditor:
		return m.updateEditor(key, msg)
	case modeCreateList:
		return m.updateCreateList(key, msg)
	case modeShare:
		return m.updateShare(key, msg)
	default:
		return m.updateListMode(key)
	}
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	switch key {
	case "ctrl+c", k.Quit:
		return m, tea.Quit
	case k.Down, "down":
		if len(m.view) > 0 {
			m.cursor = clampCursor(m.cursor+1, len(m.view))
		}
	case k.Up, "up":
		if m.cursor > 0 {
			m.cursor = clampCursor(m.cursor-1, len(m.view))
		}
	case k.Add:
		return m.openEditor(nil)
	case k.Edit:
		if len(m.view) == 0 {
			m.status = "No tasks to edit"
			return m, nil
		}
		t := m.view[m.cursor]
		return m.openEditor(&t)
	case k.Toggle:
		if len(m.view) == 0 {
			return m, nil
		}
		t := m.view[m.cursor]
		return m, m.toggleCmd(t.ID, !bool(t.Done))
	case k.Delete:
		if len(m.view) == 0 {
			return m, nil
		}
		t := m.view[m.cursor]
		m.confirm = &confirmState{
			kind:   confirmDeleteTask,
			prompt: fmt.Sprintf("Delete %q?", t.Title),
			taskID: t.ID,
		}
		m.mode = modeConfirm
	case k.Undo:
		return m, m.undoCmd()
	case k.ShowCompleted:
		m.filter.ShowCompleted = !m.filter.ShowCompleted
		m.refresh()
	case k.SortDue:
		m.sortKey = task.SortDue
		m.refresh()
	case k.SortPriority:
		m.sortKey = task.SortPriority
		m.refresh()
	case k.SortCreated:
		m.sortKey = task.SortCreated
		m.refresh()
	case k.NextList:
		return m.cycleList(1)
	case k.PrevList:
		return m.cycleList(-1)
	case k.NewList:
		if m.localOnly {
			m.status = "Shared lists need the remote backend"
			return m, nil
		}
		m.mode = modeCreateList
		m.input.SetValue("")
		m.input.Placeholder = "List name"
		m.input.Focus()
		m.status = "Name the new list, Enter to create"
	case k.Share:
		if !m.reg.ShareAllowed() {
			m.status = "Sharing is only available to the owner of a shared list"
			return m, nil
		}
		m.mode = modeShare
		m.members = nil
		m.shareCur = 0
		m.input.SetValue("")
		m.input.Placeholder = "Username to add"
		m.input.Focus()
		m.status = "Share list: Enter adds the typed user, ctrl+d removes the selected member"
		return m, m.loadMembersCmd()
	}
	return m, nil
}

// updateConfirm is the prompting state: confirm performs the parked
// action, anything that cancels returns to idle untouched.
func (m Model) updateConfirm(key string) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	switch key {
	case "y", "Y", k.Confirm:
		c := m.confirm
		m.confirm = nil
		m.mode = modeList
		if c == nil {
			return m, nil
		}
		switch c.kind {
		case confirmDeleteTask:
			return m, m.deleteCmd(c.taskID)
		case confirmRemoveMember:
			m.mode = modeShare
			return m, m.removeMemberCmd(c.userID)
		}
		return m, nil
	case "n", "N", k.Cancel, "esc":
		wasMember := m.confirm != nil && m.confirm.kind == confirmRemoveMember
		m.confirm = nil
		if wasMember {
			m.mode = modeShare
		} else {
			m.mode = modeList
		}
		m.status = "Cancelled"
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) updateCreateList(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	switch key {
	case k.Cancel, "esc":
		m.mode = modeList
		m.input.SetValue("")
		m.input.Blur()
		m.status = "Cancelled"
		return m, nil
	case k.Confirm, "enter":
		name := strings.TrimSpace(m.input.Value())
		if name == "" {
			m.status = "List name cannot be empty"
			return m, nil
		}
		m.mode = modeList
		m.input.SetValue("")
		m.input.Blur()
		return m, m.createListCmd(name)
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) updateShare(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	switch key {
	case k.Cancel, "esc":
		m.mode = modeList
		m.members = nil
		m.input.SetValue("")
		m.input.Blur()
		m.shares.Reset()
		m.status = "Closed sharing"
		return m, nil
	case "up":
		if m.shareCur > 0 {
			m.shareCur = clampCursor(m.shareCur-1, len(m.members))
		}
		return m, nil
	case "down":
		if len(m.members) > 0 {
			m.shareCur = clampCursor(m.shareCur+1, len(m.members))
		}
		return m, nil
	case "ctrl+d":
		if len(m.members) == 0 {
			return m, nil
		}
		mem := m.members[m.shareCur]
		if bool(mem.IsOwner) {
			// The owner row carries no remove control.
			m.status = "The owner cannot be removed"
			return m, nil
		}
		m.confirm = &confirmState{
			kind:   confirmRemoveMember,
			prompt: fmt.Sprintf("Remove %q from this list?", mem.Username),
			userID: mem.UserID,
		}
		m.mode = modeConfirm
		return m, nil
	case k.Confirm, "enter":
		username := strings.TrimSpace(m.input.Value())
		if username == "" {
			m.status = "Type a username to add"
			return m, nil
		}
		m.input.SetValue("")
		return m, m.addMemberCmd(username)
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) cycleList(dir int) (tea.Model, tea.Cmd) {
	if m.localOnly {
		m.status = "Shared lists need the remote backend"
		return m, nil
	}
	ids := []int{task.PersonalListID}
	for _, l := range m.reg.Lists() {
		ids = append(ids, l.ID)
	}
	cur := 0
	for i, id := range ids {
		if id == m.reg.ActiveID() {
			cur = i
			break
		}
	}
	next := (cur + dir + len(ids)) % len(ids)
	if err := m.reg.SetActive(ids[next]); err != nil {
		m.status = fmt.Sprintf("switch list failed: %v", err)
		return m, nil
	}
	m.cursor = 0
	m.status = fmt.Sprintf("Switched to %s", m.activeListName())
	return m, m.reloadTasksCmd()
}

func (m Model) activeListName() string {
	if l, ok := m.reg.Active(); ok {
		return l.Name
	}
	return "Personal"
}

// Commands. No cancellation: an in-flight request resolves even if the
// surface that started it is gone, and the stores absorb the result.

func (m Model) bootCmd() tea.Cmd {
	reg, tasks := m.reg, m.tasks
	return func() tea.Msg {
		ctx := context.Background()
		// A failed list load degrades to Personal-only, it does not
		// block startup.
		_ = reg.Load(ctx)
		err := tasks.Load(ctx, reg.ActiveID())
		return bootDoneMsg{err: err}
	}
}

func (m Model) reloadTasksCmd() tea.Cmd {
	reg, tasks := m.reg, m.tasks
	return func() tea.Msg {
		return tasksReloadedMsg{err: tasks.Load(context.Background(), reg.ActiveID())}
	}
}

func (m Model) toggleCmd(id int, done bool) tea.Cmd {
	tasks := m.tasks
	return func() tea.Msg {
		return toggleDoneMsg{err: tasks.SetDone(context.Background(), id, done)}
	}
}

func (m Model) deleteCmd(id int) tea.Cmd {
	reg, tasks := m.reg, m.tasks
	return func() tea.Msg {
		return taskDeletedMsg{err: tasks.Delete(context.Background(), id, reg.ActiveID())}
	}
}

func (m Model) undoCmd() tea.Cmd {
	reg, tasks := m.reg, m.tasks
	return func() tea.Msg {
		_, restored, err := tasks.Undo(context.Background(), reg.ActiveID())
		return undoneMsg{restored: restored, err: err}
	}
}

func (m Model) createListCmd(name string) tea.Cmd {
	reg := m.reg
	return func() tea.Msg {
		created, err := reg.Create(context.Background(), name)
		return listCreatedMsg{list: created, err: err}
	}
}

func (m Model) loadMembersCmd() tea.Cmd {
	reg, shares := m.reg, m.shares
	return func() tea.Msg {
		err := shares.Load(context.Background(), reg.ActiveID())
		return membersLoadedMsg{members: shares.Members(), err: err}
	}
}

func (m Model) addMemberCmd(username string) tea.Cmd {
	reg, shares := m.reg, m.shares
	return func() tea.Msg {
		list, ok := reg.Active()
		if !ok {
			return memberChangedMsg{err: fmt.Errorf("no shared list is active")}
		}
		err := shares.Add(context.Background(), list, username)
		return memberChangedMsg{members: shares.Members(), err: err}
	}
}

func (m Model) removeMemberCmd(userID int) tea.Cmd {
	reg, shares := m.reg, m.shares
	return func() tea.Msg {
		list, ok := reg.Active()
		if !ok {
			return memberChangedMsg{err: fmt.Errorf("no shared list is active")}
		}
		err := shares.Remove(context.Background(), list, userID)
		return memberChangedMsg{members: shares.Members(), err: err}
	}
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
