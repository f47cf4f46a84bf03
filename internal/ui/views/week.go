package views

import (
	"log"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/daybook/internal/calendar"
	"github.com/tgienger/daybook/internal/ui/keys"
	"github.com/tgienger/daybook/internal/ui/styles"
)

// WeekView lists the user's tasks for seven days, one section per day
type WeekView struct {
	session *Session
	builder *calendar.Builder
	styles  *styles.Styles
	keys    keys.KeyMap

	start  time.Time
	week   *calendar.Week
	status string

	width  int
	height int
}

func NewWeekView(session *Session) *WeekView {
	return &WeekView{
		session: session,
		builder: calendar.NewBuilder(session.DB, session.DB),
		styles:  styles.NewStyles(),
		keys:    keys.DefaultKeyMap(),
		start:   startOfWeek(session.Now(), session.WeekStart),
	}
}

type weekLoadedMsg struct {
	week *calendar.Week
}

func (v *WeekView) Init() tea.Cmd {
	return v.load
}

func (v *WeekView) load() tea.Msg {
	w, err := v.builder.UserWeek(v.session.User.ID, v.start)
	if err != nil {
		return errMsg{err: err}
	}
	return weekLoadedMsg{week: w}
}

func (v *WeekView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case weekLoadedMsg:
		if msg.week.Start.Equal(v.start) {
			v.week = msg.week
			v.status = ""
		}
		return v, nil

	case errMsg:
		log.Printf("week: %v", msg.err)
		v.status = userMessage(msg.err)
		return v, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Left), key.Matches(msg, v.keys.PrevMonth):
			v.start = v.start.AddDate(0, 0, -7)
			return v, v.load
		case key.Matches(msg, v.keys.Right), key.Matches(msg, v.keys.NextMonth):
			v.start = v.start.AddDate(0, 0, 7)
			return v, v.load
		case key.Matches(msg, v.keys.Today):
			v.start = startOfWeek(v.session.Now(), v.session.WeekStart)
			return v, v.load
		}
	}
	return v, nil
}

func (v *WeekView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	end := v.start.AddDate(0, 0, 6)

	rows := []string{
		s.Title.Render("Week") + "  " + s.TitleMuted.Render(v.start.Format("Jan 2")+" - "+end.Format("Jan 2, 2006")),
		"",
	}

	if v.week == nil {
		rows = append(rows, s.TitleMuted.Render("Loading..."))
	} else {
		today := v.session.Now()
		for i, entries := range v.week.Days {
			day := v.start.AddDate(0, 0, i)
			heading := s.Title
			if sameDay(day, today) {
				heading = s.Title.Foreground(styles.Current.Accent)
			}
			rows = append(rows, heading.Render(day.Format("Mon Jan 2")))
			if len(entries) == 0 {
				rows = append(rows, s.TitleMuted.Render("  -"))
			}
			for _, e := range entries {
				rows = append(rows, renderEntry(s, e, contentWidth))
			}
		}
	}

	if v.status != "" {
		rows = append(rows, "", s.Error.Render(v.status))
	}
	rows = append(rows, helpLine(s, v.keys.Left, v.keys.Right, v.keys.Today))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
