package views

import (
	"fmt"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/daybook/internal/stats"
	"github.com/tgienger/daybook/internal/ui/keys"
	"github.com/tgienger/daybook/internal/ui/styles"
)

// StatsView shows completion statistics for personal and assigned group tasks
type StatsView struct {
	session *Session
	styles  *styles.Styles
	keys    keys.KeyMap

	personal *stats.Summary
	group    *stats.Summary
	status   string

	width  int
	height int
}

func NewStatsView(session *Session) *StatsView {
	return &StatsView{
		session: session,
		styles:  styles.NewStyles(),
		keys:    keys.DefaultKeyMap(),
	}
}

type statsLoadedMsg struct {
	personal stats.Summary
	group    stats.Summary
}

func (v *StatsView) Init() tea.Cmd {
	return v.load
}

func (v *StatsView) load() tea.Msg {
	now := v.session.Now()

	tasks, err := v.session.DB.ListTasksForOwner(v.session.User.ID)
	if err != nil {
		return errMsg{err: err}
	}
	groupTasks, err := v.session.DB.ListGroupTasksForAssignee(v.session.User.ID)
	if err != nil {
		return errMsg{err: err}
	}

	return statsLoadedMsg{
		personal: stats.Summarize(tasks, now),
		group:    stats.Summarize(groupTasks, now),
	}
}

func (v *StatsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
	case statsLoadedMsg:
		v.personal, v.group = &msg.personal, &msg.group
		v.status = ""
	case errMsg:
		log.Printf("stats: %v", msg.err)
		v.status = userMessage(msg.err)
	}
	return v, nil
}

func (v *StatsView) View() string {
	s := v.styles
	rows := []string{s.Title.Render("Statistics"), ""}

	if v.personal == nil {
		rows = append(rows, s.TitleMuted.Render("Loading..."))
	} else {
		barWidth := clamp(styles.ContentWidth(v.width)-30, 10, 40)
		rows = append(rows, v.renderSummary("Personal tasks", *v.personal, barWidth)...)
		rows = append(rows, "")
		rows = append(rows, v.renderSummary("Assigned group tasks", *v.group, barWidth)...)
		rows = append(rows, "")
		rows = append(rows, v.renderSummary("Overall", v.personal.Add(*v.group), barWidth)...)
	}

	if v.status != "" {
		rows = append(rows, "", s.Error.Render(v.status))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (v *StatsView) renderSummary(title string, sum stats.Summary, barWidth int) []string {
	s := v.styles
	total := sum.Total()
	heading := s.Title.Render(title) + "  " +
		s.TitleMuted.Render(fmt.Sprintf("%d tasks, %.1f%% complete", total, sum.PercentComplete()))
	if total == 0 {
		return []string{heading, s.TitleMuted.Render("  no tasks yet")}
	}

	line := func(label string, n int, style lipgloss.Style) string {
		return fmt.Sprintf("  %-10s %s %3d", label, bar(style, n, total, barWidth), n)
	}
	return []string{
		heading,
		line(stats.Completed.String(), sum.Completed, s.BarCompleted),
		line(stats.Overdue.String(), sum.Overdue, s.BarOverdue),
		line(stats.Upcoming.String(), sum.Upcoming, s.BarUpcoming),
	}
}
