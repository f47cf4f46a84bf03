package views

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/daybook/internal/calendar"
	"github.com/tgienger/daybook/internal/models"
	"github.com/tgienger/daybook/internal/stats"
	"github.com/tgienger/daybook/internal/ui/keys"
	"github.com/tgienger/daybook/internal/ui/styles"
)

type groupItem struct {
	group  models.Group
	leader bool
}

func (i groupItem) Title() string { return i.group.Name }
func (i groupItem) Description() string {
	if i.leader {
		return "leader"
	}
	return "member"
}
func (i groupItem) FilterValue() string { return i.group.Name }

type groupDelegate struct {
	styles *styles.Styles
	width  int
}

func (d groupDelegate) Height() int                               { return 2 }
func (d groupDelegate) Spacing() int                              { return 1 }
func (d groupDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d groupDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	g, ok := item.(groupItem)
	if !ok {
		return
	}

	selected := index == m.Index()
	width := max(d.width-4, 20)

	var titleStyle, descStyle lipgloss.Style
	if selected {
		titleStyle = d.styles.ListSelected.Width(width)
		descStyle = d.styles.ListSelected.Foreground(styles.Current.ForegroundDim).Width(width)
	} else {
		titleStyle = d.styles.ListItem.Width(width)
		descStyle = d.styles.ListItem.Foreground(styles.Current.ForegroundDim).Width(width)
	}

	fmt.Fprintf(w, "%s\n%s", titleStyle.Render(g.Title()), descStyle.Render(g.Description()))
}

// OpenGroupCalendar asks the app to show a group's month view
type OpenGroupCalendar struct {
	Group models.Group
}

type groupMode int

const (
	groupModeList groupMode = iota
	groupModeCreate
	groupModeDetail
	groupModeAddMember
	groupModeEditTask
	groupModeConfirmDelete
)

// GroupsView lists the user's groups and manages one group's members and tasks
type GroupsView struct {
	session  *Session
	list     list.Model
	delegate *groupDelegate
	styles   *styles.Styles
	keys     keys.KeyMap
	width    int
	height   int
	loaded   bool
	mode     groupMode
	status   string

	newName    textinput.Model
	memberName textinput.Model

	// detail state
	group   *models.Group
	members []models.GroupMember
	tasks   []models.GroupTask
	cursor  int

	editor   taskEditor
	assignee int // index into members, -1 = unassigned

	deleteTargetID   int64
	deleteTargetName string
}

func NewGroupsView(session *Session) *GroupsView {
	s := styles.NewStyles()

	newName := textinput.New()
	newName.Placeholder = "Group name"
	newName.CharLimit = 100

	memberName := textinput.New()
	memberName.Placeholder = "User name"
	memberName.CharLimit = 50

	delegate := &groupDelegate{styles: s, width: 80}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Groups"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = s.Title
	l.SetShowHelp(false)

	return &GroupsView{
		session:    session,
		list:       l,
		delegate:   delegate,
		styles:     s,
		keys:       keys.DefaultKeyMap(),
		newName:    newName,
		memberName: memberName,
		editor:     newTaskEditor(),
	}
}

type groupsLoadedMsg struct {
	groups []models.Group
}

type groupDetailMsg struct {
	group   models.Group
	members []models.GroupMember
	tasks   []models.GroupTask
}

type groupCreatedMsg struct {
	group models.Group
}

func (v *GroupsView) Init() tea.Cmd {
	if v.group != nil {
		return v.loadDetail(v.group.ID)
	}
	return v.loadGroups
}

func (v *GroupsView) loadGroups() tea.Msg {
	groups, err := v.session.DB.ListGroupsForUser(v.session.User.ID)
	if err != nil {
		return errMsg{err: err}
	}
	return groupsLoadedMsg{groups: groups}
}

func (v *GroupsView) loadDetail(groupID int64) tea.Cmd {
	return func() tea.Msg {
		g, err := v.session.DB.GetGroup(groupID)
		if err != nil {
			return errMsg{err: err}
		}
		members, err := v.session.DB.ListGroupMembers(groupID)
		if err != nil {
			return errMsg{err: err}
		}
		tasks, err := v.session.DB.ListGroupTasksForGroup(groupID)
		if err != nil {
			return errMsg{err: err}
		}
		return groupDetailMsg{group: *g, members: members, tasks: tasks}
	}
}

// Capturing reports whether the view is consuming keystrokes as text
func (v *GroupsView) Capturing() bool {
	return (v.mode != groupModeList && v.mode != groupModeDetail) || v.list.FilterState() == list.Filtering
}

func (v *GroupsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, msg.Height-8)
		v.editor.setWidth(clamp(contentWidth-10, 20, 50))
		return v, nil

	case groupsLoadedMsg:
		items := make([]list.Item, len(msg.groups))
		for i, g := range msg.groups {
			items[i] = groupItem{group: g, leader: g.LeaderID == v.session.User.ID}
		}
		v.list.SetItems(items)
		v.loaded = true
		return v, nil

	case groupCreatedMsg:
		v.mode = groupModeDetail
		return v, v.loadDetail(msg.group.ID)

	case groupDetailMsg:
		v.group = &msg.group
		v.members = msg.members
		v.tasks = msg.tasks
		if v.cursor >= len(v.tasks) {
			v.cursor = max(0, len(v.tasks)-1)
		}
		if v.mode == groupModeList {
			v.mode = groupModeDetail
		}
		return v, nil

	case taskSavedMsg:
		v.mode = groupModeDetail
		return v, v.loadDetail(v.group.ID)

	case errMsg:
		log.Printf("groups: %v", msg.err)
		if v.mode == groupModeEditTask {
			v.editor.err = userMessage(msg.err)
		} else {
			v.status = userMessage(msg.err)
		}
		return v, nil

	case tea.KeyMsg:
		switch v.mode {
		case groupModeCreate:
			return v.updateCreate(msg)
		case groupModeDetail:
			return v.updateDetail(msg)
		case groupModeAddMember:
			return v.updateAddMember(msg)
		case groupModeEditTask:
			return v.updateEditTask(msg)
		case groupModeConfirmDelete:
			return v.updateConfirmDelete(msg)
		}

		if v.list.FilterState() != list.Filtering {
			switch {
			case key.Matches(msg, v.keys.New):
				v.mode = groupModeCreate
				v.status = ""
				v.newName.Reset()
				v.newName.Focus()
				return v, textinput.Blink
			case key.Matches(msg, v.keys.Enter):
				if item, ok := v.list.SelectedItem().(groupItem); ok {
					v.cursor = 0
					return v, v.loadDetail(item.group.ID)
				}
			case key.Matches(msg, v.keys.Calendar):
				if item, ok := v.list.SelectedItem().(groupItem); ok {
					return v, func() tea.Msg { return OpenGroupCalendar{Group: item.group} }
				}
			case key.Matches(msg, v.keys.Delete):
				if item, ok := v.list.SelectedItem().(groupItem); ok {
					if !item.leader {
						v.status = "Only the leader can delete a group"
						return v, nil
					}
					v.mode = groupModeConfirmDelete
					v.deleteTargetID = item.group.ID
					v.deleteTargetName = item.group.Name
					return v, nil
				}
			}
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *GroupsView) updateCreate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.mode = groupModeList
		return v, nil
	case key.Matches(msg, v.keys.Enter), key.Matches(msg, v.keys.Save):
		name := strings.TrimSpace(v.newName.Value())
		if name == "" {
			return v, nil
		}
		return v, func() tea.Msg {
			g, err := v.session.DB.CreateGroup(name, v.session.User.ID)
			if err != nil {
				return errMsg{err: err}
			}
			return groupCreatedMsg{group: *g}
		}
	}

	var cmd tea.Cmd
	v.newName, cmd = v.newName.Update(msg)
	return v, cmd
}

func (v *GroupsView) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v.status = ""
	switch {
	case key.Matches(msg, v.keys.Back):
		v.mode = groupModeList
		v.group = nil
		return v, v.loadGroups
	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
		}
	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.tasks)-1 {
			v.cursor++
		}
	case key.Matches(msg, v.keys.Members):
		v.mode = groupModeAddMember
		v.memberName.Reset()
		v.memberName.Focus()
		return v, textinput.Blink
	case key.Matches(msg, v.keys.Calendar):
		g := *v.group
		return v, func() tea.Msg { return OpenGroupCalendar{Group: g} }
	case key.Matches(msg, v.keys.New):
		v.mode = groupModeEditTask
		v.assignee = -1
		v.editor.load(0, models.TaskInput{})
		return v, textinput.Blink
	case key.Matches(msg, v.keys.Toggle):
		if len(v.tasks) > 0 {
			t := v.tasks[v.cursor]
			return v, v.mutate(func() error { return v.session.DB.UpdateGroupTaskCompletion(t.ID, !t.Done) })
		}
	case key.Matches(msg, v.keys.Assign):
		if len(v.tasks) > 0 {
			t := v.tasks[v.cursor]
			next := v.nextAssignee(t.AssigneeID)
			return v, v.mutate(func() error { return v.session.DB.AssignGroupTask(t.ID, next) })
		}
	case key.Matches(msg, v.keys.Delete):
		if len(v.tasks) > 0 {
			t := v.tasks[v.cursor]
			return v, v.mutate(func() error { return v.session.DB.DeleteGroupTask(t.ID) })
		}
	}
	return v, nil
}

// nextAssignee cycles unassigned -> each member in order -> unassigned
func (v *GroupsView) nextAssignee(current *int64) *int64 {
	if len(v.members) == 0 {
		return nil
	}
	if current == nil {
		id := v.members[0].UserID
		return &id
	}
	for i, m := range v.members {
		if m.UserID == *current && i+1 < len(v.members) {
			id := v.members[i+1].UserID
			return &id
		}
	}
	return nil
}

func (v *GroupsView) mutate(fn func() error) tea.Cmd {
	groupID := v.group.ID
	return func() tea.Msg {
		if err := fn(); err != nil {
			return errMsg{err: err}
		}
		return v.loadDetail(groupID)()
	}
}

func (v *GroupsView) updateAddMember(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.mode = groupModeDetail
		return v, nil
	case key.Matches(msg, v.keys.Enter):
		name := strings.TrimSpace(v.memberName.Value())
		if name == "" {
			return v, nil
		}
		v.mode = groupModeDetail
		groupID := v.group.ID
		return v, v.mutate(func() error {
			u, err := v.session.DB.GetUserByName(name)
			if err != nil {
				return fmt.Errorf("no user named %q: %w", name, err)
			}
			return v.session.DB.AddGroupMember(groupID, u.ID)
		})
	}

	var cmd tea.Cmd
	v.memberName, cmd = v.memberName.Update(msg)
	return v, cmd
}

func (v *GroupsView) updateEditTask(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.mode = groupModeDetail
		return v, nil
	case msg.String() == "ctrl+a":
		v.assignee++
		if v.assignee >= len(v.members) {
			v.assignee = -1
		}
		return v, nil
	}

	submit, cmd := v.editor.update(msg, v.keys)
	if !submit {
		return v, cmd
	}

	in, err := v.editor.input()
	if err != nil {
		v.editor.err = err.Error()
		return v, nil
	}
	var assignee *int64
	if v.assignee >= 0 {
		id := v.members[v.assignee].UserID
		assignee = &id
	}
	groupID := v.group.ID
	return v, func() tea.Msg {
		if _, err := v.session.DB.AddGroupTask(groupID, v.session.User.ID, assignee, in); err != nil {
			return errMsg{err: err}
		}
		return taskSavedMsg{}
	}
}

func (v *GroupsView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.mode = groupModeList
		id := v.deleteTargetID
		return v, func() tea.Msg {
			if err := v.session.DB.DeleteGroup(id); err != nil {
				return errMsg{err: err}
			}
			return v.loadGroups()
		}
	case "n", "N", "esc":
		v.mode = groupModeList
	}
	return v, nil
}

func (v *GroupsView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	switch v.mode {
	case groupModeConfirmDelete:
		return confirm(s, contentWidth, v.width, v.height, "Delete Group?", v.deleteTargetName)
	case groupModeCreate:
		return v.renderPrompt("New Group", "Name:", v.newName)
	case groupModeAddMember:
		return v.renderPrompt("Add Member", "User name:", v.memberName)
	case groupModeEditTask:
		label := calendar.Unassigned
		if v.assignee >= 0 {
			label = v.members[v.assignee].UserName
		}
		extra := []string{"Assignee:", s.Assignee.Render(label) + s.TitleMuted.Render("  (Ctrl+A to change)")}
		return lipgloss.Place(contentWidth, v.height-2, lipgloss.Center, lipgloss.Center,
			v.editor.view(s, "New Group Task", contentWidth, extra...))
	case groupModeDetail:
		if v.group != nil {
			return v.renderDetail(contentWidth)
		}
	}

	if !v.loaded {
		return s.TitleMuted.Render("Loading...")
	}
	var rows []string
	if len(v.list.Items()) == 0 {
		rows = append(rows, s.Title.Render("Groups"), "", s.TitleMuted.Render("No groups. Press 'n' to create one."))
	} else {
		rows = append(rows, v.list.View())
	}
	if v.status != "" {
		rows = append(rows, s.Error.Render(v.status))
	}
	rows = append(rows, helpLine(s, v.keys.Enter, v.keys.New, v.keys.Calendar, v.keys.Delete))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (v *GroupsView) renderPrompt(title, label string, in textinput.Model) string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-6, 20, 50)

	rows := []string{
		s.Title.Render(title), "",
		label, s.InputFocused.Width(inputWidth).Render(in.View()),
	}
	if v.status != "" {
		rows = append(rows, "", s.Error.Render(v.status))
	}
	rows = append(rows, "", s.TitleMuted.Render("Enter: save • Esc: cancel"))

	centered := lipgloss.Place(contentWidth, v.height-2,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *GroupsView) renderDetail(width int) string {
	s := v.styles
	names := make([]string, len(v.members))
	for i, m := range v.members {
		names[i] = m.UserName
		if m.UserID == v.group.LeaderID {
			names[i] += "*"
		}
	}

	rows := []string{
		s.Title.Render(v.group.Name),
		s.TitleMuted.Render("Members: " + strings.Join(names, ", ")),
		"",
	}

	byID := map[int64]string{}
	for _, m := range v.members {
		byID[m.UserID] = m.UserName
	}
	now := v.session.Now()
	if len(v.tasks) == 0 {
		rows = append(rows, s.TitleMuted.Render("No group tasks. Press 'n' to add one."))
	}
	for i, t := range v.tasks {
		assignee := calendar.Unassigned
		if t.AssigneeID != nil {
			if n, ok := byID[*t.AssigneeID]; ok {
				assignee = n
			} else {
				assignee = calendar.Unknown
			}
		}
		rows = append(rows, renderTaskLine(s, taskLine{
			done: t.Done, title: t.Title, priority: t.Priority, due: t.DueAt,
			assignee: assignee, class: stats.Classify(t, now),
		}, i == v.cursor, now, width))
	}

	if v.status != "" {
		rows = append(rows, "", s.Error.Render(v.status))
	}
	rows = append(rows, helpLine(s, v.keys.New, v.keys.Toggle, v.keys.Assign, v.keys.Delete, v.keys.Members, v.keys.Calendar, v.keys.Back))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
