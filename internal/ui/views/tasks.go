package views

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/daybook/internal/models"
	"github.com/tgienger/daybook/internal/stats"
	"github.com/tgienger/daybook/internal/ui/keys"
	"github.com/tgienger/daybook/internal/ui/styles"
)

// taskEditor is the create/edit form shared by personal and group tasks
type taskEditor struct {
	title    textinput.Model
	note     textarea.Model
	priority textinput.Model
	due      textinput.Model
	estimate textinput.Model
	focusIdx int // 0=title, 1=note, 2=priority, 3=due, 4=estimate, 5=save
	editID   int64
	done     bool
	err      string
}

const editorFields = 6

func newTaskEditor() taskEditor {
	title := textinput.New()
	title.Placeholder = "Task title"
	title.CharLimit = 200

	note := textarea.New()
	note.Placeholder = "Note"
	note.CharLimit = 2000
	note.SetWidth(50)
	note.SetHeight(3)
	note.ShowLineNumbers = false

	priority := textinput.New()
	priority.Placeholder = "low / medium / high"
	priority.CharLimit = 6

	due := textinput.New()
	due.Placeholder = "YYYY-MM-DD [HH:MM]"
	due.CharLimit = 16

	estimate := textinput.New()
	estimate.Placeholder = "minutes"
	estimate.CharLimit = 5

	return taskEditor{title: title, note: note, priority: priority, due: due, estimate: estimate}
}

// load fills the form; editID 0 means a new task
func (e *taskEditor) load(editID int64, in models.TaskInput) {
	e.editID = editID
	e.done = in.Done
	e.err = ""
	e.title.SetValue(in.Title)
	e.note.SetValue(in.Note)
	e.priority.SetValue(in.Priority.String())
	e.due.SetValue(formatDueInput(in.DueAt))
	e.estimate.SetValue(formatEstimate(in.EstimateMinutes))
	e.focusIdx = 0
	e.updateFocus()
}

func (e *taskEditor) input() (models.TaskInput, error) {
	p, err := models.ParsePriority(e.priority.Value())
	if err != nil {
		return models.TaskInput{}, err
	}
	due, err := parseDueInput(e.due.Value())
	if err != nil {
		return models.TaskInput{}, err
	}
	est, err := parseEstimate(e.estimate.Value())
	if err != nil {
		return models.TaskInput{}, err
	}
	title := strings.TrimSpace(e.title.Value())
	if title == "" {
		return models.TaskInput{}, fmt.Errorf("title is required")
	}
	return models.TaskInput{
		Title:           title,
		Note:            strings.TrimSpace(e.note.Value()),
		Done:            e.done,
		Priority:        p,
		EstimateMinutes: est,
		DueAt:           due,
	}, nil
}

func (e *taskEditor) setWidth(w int) {
	e.note.SetWidth(w)
}

func (e *taskEditor) updateFocus() {
	e.title.Blur()
	e.note.Blur()
	e.priority.Blur()
	e.due.Blur()
	e.estimate.Blur()
	switch e.focusIdx {
	case 0:
		e.title.Focus()
	case 1:
		e.note.Focus()
	case 2:
		e.priority.Focus()
	case 3:
		e.due.Focus()
	case 4:
		e.estimate.Focus()
	}
}

// update handles a key in the form; submit is true when the user saves
func (e *taskEditor) update(msg tea.KeyMsg, km keys.KeyMap) (submit bool, cmd tea.Cmd) {
	switch {
	case key.Matches(msg, km.Save):
		return true, nil
	case msg.String() == "shift+tab":
		e.focusIdx = (e.focusIdx + editorFields - 1) % editorFields
		e.updateFocus()
		return false, nil
	case key.Matches(msg, km.Tab):
		e.focusIdx = (e.focusIdx + 1) % editorFields
		e.updateFocus()
		return false, nil
	case key.Matches(msg, km.Enter) && e.focusIdx != 1:
		if e.focusIdx == editorFields-1 {
			return true, nil
		}
		e.focusIdx++
		e.updateFocus()
		return false, nil
	}

	switch e.focusIdx {
	case 0:
		e.title, cmd = e.title.Update(msg)
	case 1:
		e.note, cmd = e.note.Update(msg)
	case 2:
		e.priority, cmd = e.priority.Update(msg)
	case 3:
		e.due, cmd = e.due.Update(msg)
	case 4:
		e.estimate, cmd = e.estimate.Update(msg)
	}
	return false, cmd
}

func (e *taskEditor) view(s *styles.Styles, heading string, width int, extra ...string) string {
	inputWidth := clamp(width-10, 20, 50)
	field := func(idx int) lipgloss.Style {
		if idx == e.focusIdx {
			return s.InputFocused.Width(inputWidth)
		}
		return s.Input.Width(inputWidth)
	}
	btn := s.Button
	if e.focusIdx == editorFields-1 {
		btn = s.ButtonFocused
	}

	rows := []string{
		s.Title.Render(heading), "",
		"Title:", field(0).Render(e.title.View()),
		"Note:", field(1).Render(e.note.View()),
		"Priority:", field(2).Render(e.priority.View()),
		"Due:", field(3).Render(e.due.View()),
		"Estimate:", field(4).Render(e.estimate.View()),
	}
	rows = append(rows, extra...)
	rows = append(rows, "", btn.Render(" Save "))
	if e.err != "" {
		rows = append(rows, "", s.Error.Render(e.err))
	}
	rows = append(rows, "", s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// TaskListView shows the personal tasks of the logged-in user
type TaskListView struct {
	session *Session
	tasks   []models.Task
	styles  *styles.Styles
	keys    keys.KeyMap

	width  int
	height int

	cursor  int
	scrollY int
	loaded  bool
	status  string

	showCompleted bool

	editing bool
	editor  taskEditor

	confirmingDelete bool
	deleteTargetID   int64
	deleteTargetName string

	showHelpPopup bool
}

func NewTaskListView(session *Session) *TaskListView {
	return &TaskListView{
		session: session,
		styles:  styles.NewStyles(),
		keys:    keys.DefaultKeyMap(),
		editor:  newTaskEditor(),
	}
}

type tasksLoadedMsg struct {
	tasks []models.Task
}

type taskSavedMsg struct{}

func (v *TaskListView) Init() tea.Cmd {
	return v.loadTasks
}

func (v *TaskListView) loadTasks() tea.Msg {
	tasks, err := v.session.DB.ListTasksForOwner(v.session.User.ID)
	if err != nil {
		return errMsg{err: err}
	}
	return tasksLoadedMsg{tasks: tasks}
}

// visible returns the tasks shown under the current completion filter
func (v *TaskListView) visible() []models.Task {
	if v.showCompleted {
		return v.tasks
	}
	out := make([]models.Task, 0, len(v.tasks))
	for _, t := range v.tasks {
		if !t.Done {
			out = append(out, t)
		}
	}
	return out
}

func (v *TaskListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.editor.setWidth(clamp(styles.ContentWidth(v.width)-10, 20, 50))
		return v, nil

	case tasksLoadedMsg:
		v.tasks = msg.tasks
		v.loaded = true
		if n := len(v.visible()); v.cursor >= n {
			v.cursor = max(0, n-1)
		}
		return v, nil

	case taskSavedMsg:
		v.editing = false
		return v, v.loadTasks

	case errMsg:
		log.Printf("tasks: %v", msg.err)
		if v.editing {
			v.editor.err = userMessage(msg.err)
		} else {
			v.status = userMessage(msg.err)
		}
		return v, nil

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.editing {
			return v.updateEditing(msg)
		}
		return v.updateNormal(msg)
	}

	return v, nil
}

// Capturing reports whether the view is consuming keystrokes as text
func (v *TaskListView) Capturing() bool {
	return v.editing || v.confirmingDelete || v.showHelpPopup
}

func (v *TaskListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tasks := v.visible()
	v.status = ""

	switch {
	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(tasks)-1 {
			v.cursor++
			v.ensureVisible()
		}
	case key.Matches(msg, v.keys.New):
		v.editing = true
		v.editor.load(0, models.TaskInput{})
		return v, textinput.Blink
	case key.Matches(msg, v.keys.Edit), key.Matches(msg, v.keys.Enter):
		if len(tasks) > 0 {
			t := tasks[v.cursor]
			v.editing = true
			v.editor.load(t.ID, models.TaskInput{
				Title: t.Title, Note: t.Note, Done: t.Done, Priority: t.Priority,
				EstimateMinutes: t.EstimateMinutes, DueAt: t.DueAt,
			})
			return v, textinput.Blink
		}
	case key.Matches(msg, v.keys.Toggle):
		if len(tasks) > 0 {
			t := tasks[v.cursor]
			return v, func() tea.Msg {
				if err := v.session.DB.UpdateTaskCompletion(t.ID, !t.Done); err != nil {
					return errMsg{err: err}
				}
				return v.loadTasks()
			}
		}
	case key.Matches(msg, v.keys.Delete):
		if len(tasks) > 0 {
			v.confirmingDelete = true
			v.deleteTargetID = tasks[v.cursor].ID
			v.deleteTargetName = tasks[v.cursor].Title
		}
	case key.Matches(msg, v.keys.ShowCompleted):
		v.showCompleted = !v.showCompleted
		v.cursor = 0
		v.scrollY = 0
	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
	}
	return v, nil
}

func (v *TaskListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		id := v.deleteTargetID
		return v, func() tea.Msg {
			if err := v.session.DB.DeleteTask(id); err != nil {
				return errMsg{err: err}
			}
			return v.loadTasks()
		}
	case "n", "N", "esc":
		v.confirmingDelete = false
	}
	return v, nil
}

func (v *TaskListView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, v.keys.Back) {
		v.editing = false
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
	id := v.editor.editID
	return v, func() tea.Msg {
		var err error
		if id == 0 {
			_, err = v.session.DB.AddTask(v.session.User.ID, in)
		} else {
			err = v.session.DB.UpdateTask(id, in)
		}
		if err != nil {
			return errMsg{err: err}
		}
		return taskSavedMsg{}
	}
}

func (v *TaskListView) listHeight() int {
	return max(v.height-8, 3)
}

func (v *TaskListView) ensureVisible() {
	h := v.listHeight()
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	}
	if v.cursor >= v.scrollY+h {
		v.scrollY = v.cursor - h + 1
	}
}

func (v *TaskListView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	if v.showHelpPopup {
		return popup(s, contentWidth, v.width, v.height, "Keyboard Shortcuts",
			helpRows(s, v.keys.New, v.keys.Edit, v.keys.Toggle, v.keys.Delete, v.keys.ShowCompleted,
				v.keys.CalendarView, v.keys.WeekView, v.keys.StatsView, v.keys.GroupsView, v.keys.Logout, v.keys.Quit)...)
	}
	if v.confirmingDelete {
		return confirm(s, contentWidth, v.width, v.height, "Delete Task?", v.deleteTargetName)
	}
	if v.editing {
		heading := "New Task"
		if v.editor.editID != 0 {
			heading = "Edit Task"
		}
		form := lipgloss.Place(contentWidth, v.height-2, lipgloss.Center, lipgloss.Center,
			v.editor.view(s, heading, contentWidth))
		return form
	}
	if !v.loaded {
		return s.TitleMuted.Render("Loading...")
	}

	tasks := v.visible()
	title := "My Tasks"
	if v.showCompleted {
		title += " (all)"
	}
	rows := []string{s.Title.Render(title), ""}

	if len(tasks) == 0 {
		rows = append(rows, s.TitleMuted.Render("No tasks. Press 'n' to add one."))
	}
	now := v.session.Now()
	end := min(v.scrollY+v.listHeight(), len(tasks))
	for i := v.scrollY; i < end; i++ {
		rows = append(rows, v.renderTaskItem(tasks[i], i == v.cursor, now, contentWidth))
	}

	if v.status != "" {
		rows = append(rows, "", s.Error.Render(v.status))
	}
	rows = append(rows, helpLine(s, v.keys.New, v.keys.Toggle, v.keys.Edit, v.keys.Delete, v.keys.ShowCompleted, v.keys.Help))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (v *TaskListView) renderTaskItem(t models.Task, selected bool, now time.Time, width int) string {
	return renderTaskLine(v.styles, taskLine{
		done: t.Done, title: t.Title, priority: t.Priority, due: t.DueAt,
		class: stats.Classify(t, now),
	}, selected, now, width)
}
