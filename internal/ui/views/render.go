package views

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/daybook/internal/models"
	"github.com/tgienger/daybook/internal/stats"
	"github.com/tgienger/daybook/internal/ui/styles"
)

type taskLine struct {
	done     bool
	title    string
	priority models.Priority
	due      *time.Time
	assignee string
	class    stats.Class
}

func renderTaskLine(s *styles.Styles, t taskLine, selected bool, now time.Time, width int) string {
	check := "[ ]"
	if t.done {
		check = "[x]"
	}

	marker := " "
	switch t.priority {
	case models.PriorityHigh:
		marker = "!"
	case models.PriorityLow:
		marker = "·"
	}

	titleStyle := s.TaskTitle
	switch t.class {
	case stats.Completed:
		titleStyle = s.TaskDone
	case stats.Overdue:
		titleStyle = s.TaskOverdue
	}

	line := check + " " + s.TaskPriority.Render(marker) + " " + titleStyle.Render(t.title)
	if t.assignee != "" {
		line += " " + s.Assignee.Render("@"+t.assignee)
	}
	if label := dueLabel(t.due, now); label != "" {
		line += "  " + s.TitleMuted.Render(label)
	}

	w := max(width-4, 20)
	if selected {
		return s.ListSelected.Width(w).Render(line)
	}
	return s.ListItem.Width(w).Render(line)
}

func helpRows(s *styles.Styles, bindings ...key.Binding) []string {
	rows := make([]string, 0, len(bindings)+2)
	for _, b := range bindings {
		h := b.Help()
		rows = append(rows, s.HelpKey.Render(h.Key)+strings.Repeat(" ", max(8-lipgloss.Width(h.Key), 1))+s.HelpDesc.Render(h.Desc))
	}
	return append(rows, "", s.TitleMuted.Render("Press any key to close"))
}

func popup(s *styles.Styles, contentWidth, width, height int, title string, rows ...string) string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render(title), ""}, rows...)...,
	)
	centered := lipgloss.Place(contentWidth, height,
		lipgloss.Center, lipgloss.Center,
		s.Popup.Render(content),
	)
	return styles.CenterView(centered, width, height)
}

func confirm(s *styles.Styles, contentWidth, width, height int, title, target string) string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render(title),
		"",
		s.TitleMuted.Render(target),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	centered := lipgloss.Place(contentWidth, height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, width, height)
}

// bar renders a horizontal bar of n cells out of total scaled to width
func bar(style lipgloss.Style, n, total, width int) string {
	if total == 0 || width <= 0 {
		return ""
	}
	cells := n * width / total
	if n > 0 && cells == 0 {
		cells = 1
	}
	return style.Render(strings.Repeat("█", cells)) + strings.Repeat("░", width-cells)
}
