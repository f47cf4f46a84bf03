package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the key bindings shared by all views
type KeyMap struct {
	Quit   key.Binding
	Back   key.Binding
	Enter  key.Binding
	Tab    key.Binding
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	New    key.Binding
	Edit   key.Binding
	Delete key.Binding
	Toggle key.Binding
	Save   key.Binding
	Help   key.Binding

	PrevMonth key.Binding
	NextMonth key.Binding
	Today     key.Binding

	ShowCompleted key.Binding
	Members       key.Binding
	Calendar      key.Binding
	Assign        key.Binding
	Logout        key.Binding

	// Screen switching
	TasksView    key.Binding
	CalendarView key.Binding
	WeekView     key.Binding
	StatsView    key.Binding
	GroupsView   key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("↵", "select")),
		Tab:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		New:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		Edit:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Toggle: key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle done")),
		Save:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),

		PrevMonth: key.NewBinding(key.WithKeys("[", "pgup"), key.WithHelp("[", "previous")),
		NextMonth: key.NewBinding(key.WithKeys("]", "pgdown"), key.WithHelp("]", "next")),
		Today:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),

		ShowCompleted: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "show completed")),
		Members:       key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "add member")),
		Calendar:      key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "calendar")),
		Assign:        key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "assign")),
		Logout:        key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "log out")),

		TasksView:    key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "tasks")),
		CalendarView: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "month")),
		WeekView:     key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "week")),
		StatsView:    key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "stats")),
		GroupsView:   key.NewBinding(key.WithKeys("5"), key.WithHelp("5", "groups")),
	}
}
