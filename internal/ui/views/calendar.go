package views

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/daybook/internal/calendar"
	"github.com/tgienger/daybook/internal/models"
	"github.com/tgienger/daybook/internal/ui/keys"
	"github.com/tgienger/daybook/internal/ui/styles"
)

// BackToGroups signals to leave a group calendar
type BackToGroups struct{}

// MonthView renders a month grid for the user or for one group
type MonthView struct {
	session *Session
	builder *calendar.Builder
	styles  *styles.Styles
	keys    keys.KeyMap

	group *models.Group // nil for the user's own calendar

	month  models.YearMonth
	day    int
	data   calendar.Month
	status string

	width  int
	height int
}

func NewMonthView(session *Session) *MonthView {
	return newMonthView(session, nil)
}

// NewGroupMonthView shows the calendar of one group
func NewGroupMonthView(session *Session, group models.Group) *MonthView {
	return newMonthView(session, &group)
}

func newMonthView(session *Session, group *models.Group) *MonthView {
	now := session.Now()
	return &MonthView{
		session: session,
		builder: calendar.NewBuilder(session.DB, session.DB),
		styles:  styles.NewStyles(),
		keys:    keys.DefaultKeyMap(),
		group:   group,
		month:   models.MonthOf(now),
		day:     now.Day(),
	}
}

type monthLoadedMsg struct {
	month models.YearMonth
	data  calendar.Month
}

func (v *MonthView) Init() tea.Cmd {
	return v.load
}

func (v *MonthView) load() tea.Msg {
	var (
		data calendar.Month
		err  error
	)
	if v.group != nil {
		data, err = v.builder.GroupMonth(v.group.ID, v.month)
	} else {
		data, err = v.builder.UserMonth(v.session.User.ID, v.month)
	}
	if err != nil {
		return errMsg{err: err}
	}
	return monthLoadedMsg{month: v.month, data: data}
}

func (v *MonthView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case monthLoadedMsg:
		if msg.month == v.month {
			v.data = msg.data
			v.status = ""
		}
		return v, nil

	case errMsg:
		log.Printf("calendar: %v", msg.err)
		v.status = userMessage(msg.err)
		return v, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Back):
			if v.group != nil {
				return v, func() tea.Msg { return BackToGroups{} }
			}
		case key.Matches(msg, v.keys.Left):
			return v, v.moveDay(-1)
		case key.Matches(msg, v.keys.Right):
			return v, v.moveDay(1)
		case key.Matches(msg, v.keys.Up):
			return v, v.moveDay(-7)
		case key.Matches(msg, v.keys.Down):
			return v, v.moveDay(7)
		case key.Matches(msg, v.keys.PrevMonth):
			return v, v.setMonth(v.month.Prev(), v.day)
		case key.Matches(msg, v.keys.NextMonth):
			return v, v.setMonth(v.month.Next(), v.day)
		case key.Matches(msg, v.keys.Today):
			now := v.session.Now()
			return v, v.setMonth(models.MonthOf(now), now.Day())
		}
	}
	return v, nil
}

// moveDay moves the cursor by delta days, crossing month boundaries
func (v *MonthView) moveDay(delta int) tea.Cmd {
	d := time.Date(v.month.Year, v.month.Month, v.day, 12, 0, 0, 0, time.Local).AddDate(0, 0, delta)
	if models.MonthOf(d) == v.month {
		v.day = d.Day()
		return nil
	}
	return v.setMonth(models.MonthOf(d), d.Day())
}

func (v *MonthView) setMonth(ym models.YearMonth, day int) tea.Cmd {
	changed := ym != v.month
	v.month = ym
	v.day = clamp(day, 1, ym.Days())
	if !changed {
		return nil
	}
	v.data = nil
	return v.load
}

func (v *MonthView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	title := "Calendar"
	if v.group != nil {
		title = v.group.Name
	}
	first := v.month.First(time.Local)
	header := s.Title.Render(title) + "  " + s.TitleMuted.Render(first.Format("January 2006"))

	rows := []string{header, "", v.renderGrid(), ""}
	rows = append(rows, v.renderDay(contentWidth)...)
	if v.status != "" {
		rows = append(rows, "", s.Error.Render(v.status))
	}

	bindings := []key.Binding{v.keys.Left, v.keys.Up, v.keys.PrevMonth, v.keys.NextMonth, v.keys.Today}
	if v.group != nil {
		bindings = append(bindings, v.keys.Back)
	}
	rows = append(rows, helpLine(s, bindings...))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (v *MonthView) renderGrid() string {
	s := v.styles
	now := v.session.Now()
	first := v.month.First(time.Local)

	var names []string
	for i := 0; i < 7; i++ {
		wd := time.Weekday((int(v.session.WeekStart) + i) % 7)
		names = append(names, s.WeekHeader.Render(wd.String()[:3]))
	}
	lines := []string{lipgloss.JoinHorizontal(lipgloss.Top, names...)}

	lead := (int(first.Weekday()) - int(v.session.WeekStart) + 7) % 7
	var cells []string
	for i := 0; i < lead; i++ {
		cells = append(cells, s.DayCell.Render(""))
	}
	for day := 1; day <= v.month.Days(); day++ {
		label := fmt.Sprintf("%d", day)
		if n := len(v.data[day]); n > 0 {
			label = s.DayBusy.Render(fmt.Sprintf("•%d", n)) + " " + label
		}

		style := s.DayCell
		switch {
		case day == v.day:
			style = s.DaySelected
		case v.month.Contains(now) && day == now.Day():
			style = s.DayToday
		}
		cells = append(cells, style.Render(label))

		if len(cells) == 7 {
			lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
			cells = nil
		}
	}
	if len(cells) > 0 {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return strings.Join(lines, "\n")
}

func (v *MonthView) renderDay(width int) []string {
	s := v.styles
	date := time.Date(v.month.Year, v.month.Month, v.day, 0, 0, 0, 0, time.Local)
	rows := []string{s.Title.Render(date.Format("Monday, January 2"))}

	entries := v.data[v.day]
	if len(entries) == 0 {
		return append(rows, s.TitleMuted.Render("Nothing due"))
	}
	for _, e := range entries {
		rows = append(rows, renderEntry(s, e, width))
	}
	return rows
}

func renderEntry(s *styles.Styles, e calendar.Entry, width int) string {
	check := "[ ]"
	title := s.TaskTitle.Render(e.Title)
	if e.Done {
		check = "[x]"
		title = s.TaskDone.Render(e.Title)
	}
	line := check + " " + s.TitleMuted.Render(e.Due.Format("15:04")) + " " + title
	if e.Group {
		line += " " + s.Assignee.Render("@"+e.Assignee)
	}
	if e.Note != "" {
		line += s.TitleMuted.Render(" - " + firstLine(e.Note))
	}
	return s.ListItem.MaxWidth(max(width-2, 20)).Render(line)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
