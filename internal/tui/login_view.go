package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rohishub/rohis-cli/internal/validate"
)

// loginView is the unauthenticated entry point.
type loginView struct {
	app      *App
	email    textinput.Model
	password textinput.Model
	focus    int
	busy     bool
	errMsg   string
}

type loginResultMsg struct {
	mustChange bool
	err        error
}

func newLoginView(app *App) *loginView {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 120
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 120
	password.EchoMode = textinput.EchoPassword

	return &loginView{app: app, email: email, password: password}
}

func (v *loginView) Title() string { return "Login" }

func (v *loginView) Init() tea.Cmd {
	return textinput.Blink
}

func (v *loginView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case loginResultMsg:
		v.busy = false
		if msg.err != nil {
			// The transport error's message renders verbatim.
			v.errMsg = errorText(msg.err)
			return nil
		}
		return func() tea.Msg { return loggedInMsg{mustChange: msg.mustChange} }

	case tea.KeyMsg:
		if v.busy {
			return nil
		}
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			v.toggleFocus()
			return nil
		case "enter":
			if v.focus == 0 {
				v.toggleFocus()
				return nil
			}
			return v.submit()
		}
	}
	var cmds []tea.Cmd
	var cmd tea.Cmd
	v.email, cmd = v.email.Update(msg)
	cmds = append(cmds, cmd)
	v.password, cmd = v.password.Update(msg)
	cmds = append(cmds, cmd)
	return tea.Batch(cmds...)
}

func (v *loginView) toggleFocus() {
	if v.focus == 0 {
		v.focus = 1
		v.email.Blur()
		v.password.Focus()
	} else {
		v.focus = 0
		v.password.Blur()
		v.email.Focus()
	}
}

// submit runs the pre-flight form checks, then the login call. Validation
// failures block the request without a round trip.
func (v *loginView) submit() tea.Cmd {
	form := validate.LoginForm{
		Email:    v.email.Value(),
		Password: v.password.Value(),
	}
	if err := validate.Struct(form); err != nil {
		v.errMsg = err.Error()
		return nil
	}
	v.errMsg = ""
	v.busy = true
	app := v.app
	return func() tea.Msg {
		mustChange, err := app.session.Login(context.Background(), form.Email, form.Password)
		return loginResultMsg{mustChange: mustChange, err: err}
	}
}

func (v *loginView) View(width int) string {
	status := hintStyle.Render("Enter → sign in    Tab → switch field    Ctrl+C → quit")
	if v.busy {
		status = hintStyle.Render("Signing in...")
	}
	errLine := ""
	if v.errMsg != "" {
		errLine = errorStyle.Render("✗ " + v.errMsg)
	}
	return joinLines(
		titleStyle.Render("Sign in"),
		"",
		"Email:    "+v.email.View(),
		"Password: "+v.password.View(),
		errLine,
		"",
		status,
	)
}

