package views

import (
	"errors"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/daybook/internal/db"
	"github.com/tgienger/daybook/internal/models"
	"github.com/tgienger/daybook/internal/ui/keys"
	"github.com/tgienger/daybook/internal/ui/styles"
)

const lastUserSetting = "last_user"

// LoggedIn signals a successful login or registration
type LoggedIn struct {
	User models.User
}

// LoginView is the login and registration form
type LoginView struct {
	db     *db.DB
	styles *styles.Styles
	keys   keys.KeyMap
	width  int
	height int

	registering bool
	inputs      []textinput.Model // login: name, password; register: name, email, password
	focusIdx    int               // len(inputs) = submit button
	status      string
}

func NewLoginView(database *db.DB) *LoginView {
	v := &LoginView{
		db:     database,
		styles: styles.NewStyles(),
		keys:   keys.DefaultKeyMap(),
	}
	v.setMode(false)
	return v
}

func newInput(placeholder string, limit int, secret bool) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	if secret {
		in.EchoMode = textinput.EchoPassword
		in.EchoCharacter = '•'
	}
	return in
}

func (v *LoginView) setMode(registering bool) {
	v.registering = registering
	v.focusIdx = 0
	v.status = ""
	if registering {
		v.inputs = []textinput.Model{
			newInput("User name", 50, false),
			newInput("Email", 100, false),
			newInput("Password", 72, true),
		}
	} else {
		v.inputs = []textinput.Model{
			newInput("User name or email", 100, false),
			newInput("Password", 72, true),
		}
	}
	v.updateFocus()
}

type lastUserMsg struct{ name string }

func (v *LoginView) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, func() tea.Msg {
		name, err := v.db.GetSetting(lastUserSetting)
		if err != nil {
			log.Printf("read last user: %v", err)
		}
		return lastUserMsg{name: name}
	})
}

func (v *LoginView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case lastUserMsg:
		if msg.name != "" && !v.registering && v.inputs[0].Value() == "" {
			v.inputs[0].SetValue(msg.name)
			v.focusIdx = 1
			v.updateFocus()
		}
		return v, nil

	case errMsg:
		v.status = v.failureText(msg.err)
		return v, nil

	case tea.KeyMsg:
		switch {
		case msg.String() == "ctrl+c":
			return v, tea.Quit
		case msg.String() == "ctrl+r":
			v.setMode(!v.registering)
			return v, textinput.Blink
		case key.Matches(msg, v.keys.Save):
			return v, v.submit()
		case msg.String() == "shift+tab" || msg.String() == "up":
			v.focusIdx = (v.focusIdx + len(v.inputs)) % (len(v.inputs) + 1)
			v.updateFocus()
			return v, nil
		case key.Matches(msg, v.keys.Tab) || msg.String() == "down":
			v.focusIdx = (v.focusIdx + 1) % (len(v.inputs) + 1)
			v.updateFocus()
			return v, nil
		case key.Matches(msg, v.keys.Enter):
			if v.focusIdx < len(v.inputs)-1 {
				v.focusIdx++
				v.updateFocus()
				return v, nil
			}
			return v, v.submit()
		}
	}

	if v.focusIdx < len(v.inputs) {
		var cmd tea.Cmd
		v.inputs[v.focusIdx], cmd = v.inputs[v.focusIdx].Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *LoginView) failureText(err error) string {
	if !v.registering && errors.Is(err, db.ErrNotFound) {
		return "Wrong user name or password"
	}
	if v.registering && errors.Is(err, db.ErrConflict) {
		return "User name or email already taken"
	}
	return userMessage(err)
}

func (v *LoginView) submit() tea.Cmd {
	values := make([]string, len(v.inputs))
	for i, in := range v.inputs {
		values[i] = in.Value()
	}
	registering := v.registering

	return func() tea.Msg {
		var (
			user *models.User
			err  error
		)
		if registering {
			user, err = v.db.CreateUser(values[0], values[2], values[1])
		} else {
			user, err = v.db.Authenticate(strings.TrimSpace(values[0]), values[1])
		}
		if err != nil {
			log.Printf("login failed: %v", err)
			return errMsg{err: err}
		}
		if err := v.db.SetSetting(lastUserSetting, user.Name); err != nil {
			log.Printf("remember last user: %v", err)
		}
		return LoggedIn{User: *user}
	}
}

func (v *LoginView) updateFocus() {
	for i := range v.inputs {
		v.inputs[i].Blur()
	}
	if v.focusIdx < len(v.inputs) {
		v.inputs[v.focusIdx].Focus()
	}
}

func (v *LoginView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-6, 20, 40)

	title, button, other := "Log in", " Log in ", "Ctrl+R: create an account"
	labels := []string{"User name or email:", "Password:"}
	if v.registering {
		title, button, other = "Create account", " Register ", "Ctrl+R: back to log in"
		labels = []string{"User name:", "Email:", "Password:"}
	}

	rows := []string{s.Title.Render("daybook"), s.TitleMuted.Render(title), ""}
	for i, in := range v.inputs {
		style := s.Input
		if i == v.focusIdx {
			style = s.InputFocused
		}
		rows = append(rows, labels[i], style.Width(inputWidth).Render(in.View()))
	}

	btn := s.Button
	if v.focusIdx == len(v.inputs) {
		btn = s.ButtonFocused
	}
	rows = append(rows, "", btn.Render(button), "")
	if v.status != "" {
		rows = append(rows, s.Error.Render(v.status), "")
	}
	rows = append(rows, s.TitleMuted.Render("Tab: next • Enter: submit • "+other))

	form := lipgloss.JoinVertical(lipgloss.Left, rows...)
	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}
