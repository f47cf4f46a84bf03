package ui

import (
	"log"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/daybook/internal/config"
	"github.com/tgienger/daybook/internal/db"
	"github.com/tgienger/daybook/internal/ui/keys"
	"github.com/tgienger/daybook/internal/ui/styles"
	"github.com/tgienger/daybook/internal/ui/views"
)

// Currently active view
type View int

const (
	ViewLogin View = iota
	ViewTasks
	ViewCalendar
	ViewWeek
	ViewStats
	ViewGroups
	ViewGroupCalendar
)

const lastViewSetting = "last_view"

var tabs = []struct {
	view  View
	label string
}{
	{ViewTasks, "1 Tasks"},
	{ViewCalendar, "2 Calendar"},
	{ViewWeek, "3 Week"},
	{ViewStats, "4 Stats"},
	{ViewGroups, "5 Groups"},
}

// capturer is implemented by views that take text input
type capturer interface {
	Capturing() bool
}

type App struct {
	db          *db.DB
	cfg         *config.Config
	keys        keys.KeyMap
	styles      *styles.Styles
	currentView View
	session     *views.Session

	login         *views.LoginView
	taskList      *views.TaskListView
	month         *views.MonthView
	week          *views.WeekView
	stats         *views.StatsView
	groups        *views.GroupsView
	groupCalendar *views.MonthView

	width  int
	height int
}

// Creates a new application
func NewApp(database *db.DB, cfg *config.Config) *App {
	return &App{
		db:          database,
		cfg:         cfg,
		keys:        keys.DefaultKeyMap(),
		styles:      styles.NewStyles(),
		currentView: ViewLogin,
		login:       views.NewLoginView(database),
	}
}

func (a *App) Init() tea.Cmd {
	return a.login.Init()
}

func (a *App) resize() tea.Cmd {
	return func() tea.Msg {
		return tea.WindowSizeMsg{Width: a.width, Height: a.height}
	}
}

// startSession builds the per-user views after a login
func (a *App) startSession(msg views.LoggedIn) tea.Cmd {
	a.session = &views.Session{
		DB:        a.db,
		User:      msg.User,
		WeekStart: a.cfg.WeekStart,
		Now:       time.Now,
	}
	a.taskList = views.NewTaskListView(a.session)
	a.month = views.NewMonthView(a.session)
	a.week = views.NewWeekView(a.session)
	a.stats = views.NewStatsView(a.session)
	a.groups = views.NewGroupsView(a.session)
	a.groupCalendar = nil
	log.Printf("session started for %s", msg.User.Name)

	view := ViewTasks
	if s, err := a.db.GetSetting(a.lastViewKey()); err == nil && s != "" {
		if n, err := strconv.Atoi(s); err == nil && View(n) >= ViewTasks && View(n) <= ViewGroups {
			view = View(n)
		}
	}
	return a.switchTo(view)
}

func (a *App) lastViewKey() string {
	return lastViewSetting + "_" + strconv.FormatInt(a.session.User.ID, 10)
}

func (a *App) switchTo(view View) tea.Cmd {
	a.currentView = view
	if view != ViewGroupCalendar {
		if err := a.db.SetSetting(a.lastViewKey(), strconv.Itoa(int(view))); err != nil {
			log.Printf("save last view: %v", err)
		}
	}

	var init tea.Cmd
	if m := a.active(); m != nil {
		init = m.Init()
	}
	return tea.Batch(init, a.resize())
}

func (a *App) logout() tea.Cmd {
	a.session = nil
	a.currentView = ViewLogin
	a.login = views.NewLoginView(a.db)
	return tea.Batch(a.login.Init(), a.resize())
}

func (a *App) active() tea.Model {
	switch a.currentView {
	case ViewTasks:
		return a.taskList
	case ViewCalendar:
		return a.month
	case ViewWeek:
		return a.week
	case ViewStats:
		return a.stats
	case ViewGroups:
		return a.groups
	case ViewGroupCalendar:
		return a.groupCalendar
	}
	return a.login
}

func (a *App) capturing() bool {
	if a.currentView == ViewLogin {
		return true
	}
	c, ok := a.active().(capturer)
	return ok && c.Capturing()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.login.Update(msg)
		if a.session != nil {
			inner := tea.WindowSizeMsg{Width: msg.Width, Height: max(msg.Height-2, 0)}
			a.taskList.Update(inner)
			a.month.Update(inner)
			a.week.Update(inner)
			a.stats.Update(inner)
			a.groups.Update(inner)
			if a.groupCalendar != nil {
				a.groupCalendar.Update(inner)
			}
		}
		return a, nil

	case views.LoggedIn:
		return a, a.startSession(msg)

	case views.OpenGroupCalendar:
		a.groupCalendar = views.NewGroupMonthView(a.session, msg.Group)
		return a, a.switchTo(ViewGroupCalendar)

	case views.BackToGroups:
		a.groupCalendar = nil
		return a, a.switchTo(ViewGroups)

	case tea.KeyMsg:
		if key.Matches(msg, a.keys.Quit) && (msg.String() == "ctrl+c" || !a.capturing()) {
			return a, tea.Quit
		}
		if a.session != nil && !a.capturing() {
			switch {
			case key.Matches(msg, a.keys.Logout):
				return a, a.logout()
			case key.Matches(msg, a.keys.TasksView):
				return a, a.switchTo(ViewTasks)
			case key.Matches(msg, a.keys.CalendarView):
				return a, a.switchTo(ViewCalendar)
			case key.Matches(msg, a.keys.WeekView):
				return a, a.switchTo(ViewWeek)
			case key.Matches(msg, a.keys.StatsView):
				return a, a.switchTo(ViewStats)
			case key.Matches(msg, a.keys.GroupsView):
				return a, a.switchTo(ViewGroups)
			}
		}
	}

	var cmd tea.Cmd
	if m := a.active(); m != nil {
		_, cmd = m.Update(msg)
	}
	return a, cmd
}

func (a *App) View() string {
	if a.currentView == ViewLogin || a.session == nil {
		return a.login.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, a.renderTabs(), "", a.active().View())
}

func (a *App) renderTabs() string {
	s := a.styles
	current := a.currentView
	if current == ViewGroupCalendar {
		current = ViewGroups
	}

	parts := make([]string, 0, len(tabs)+1)
	for _, t := range tabs {
		if t.view == current {
			parts = append(parts, s.TabActive.Render(t.label))
		} else {
			parts = append(parts, s.Tab.Render(t.label))
		}
	}
	parts = append(parts, s.StatusBar.Render(a.session.User.Name))
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}
