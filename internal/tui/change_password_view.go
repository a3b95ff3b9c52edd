package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rohishub/rohis-cli/internal/api"
	"github.com/rohishub/rohis-cli/internal/validate"
)

// changePasswordView handles the forced password change: while the flag
// is set on the user record, every protected destination lands here.
type changePasswordView struct {
	app    *App
	inputs [3]textinput.Model
	focus  int
	busy   bool
	errMsg string
}

type passwordChangeResultMsg struct {
	err error
}

func newChangePasswordView(app *App) *changePasswordView {
	labels := [3]string{"current password", "new password", "confirm new password"}
	var inputs [3]textinput.Model
	for i := range inputs {
		in := textinput.New()
		in.Placeholder = labels[i]
		in.CharLimit = 120
		in.EchoMode = textinput.EchoPassword
		inputs[i] = in
	}
	inputs[0].Focus()
	return &changePasswordView{app: app, inputs: inputs}
}

func (v *changePasswordView) Title() string { return "Change Password" }

func (v *changePasswordView) Init() tea.Cmd {
	return textinput.Blink
}

func (v *changePasswordView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case passwordChangeResultMsg:
		v.busy = false
		if msg.err != nil {
			v.errMsg = errorText(msg.err)
			return nil
		}
		// The backend cleared the forced-change flag; re-fetch the user
		// record so the guard sees it.
		app := v.app
		return func() tea.Msg {
			if err := app.session.Refresh(context.Background()); err != nil {
				app.logError("refresh after password change: %v", err)
			}
			return passwordChangedMsg{}
		}

	case tea.KeyMsg:
		if v.busy {
			return nil
		}
		switch msg.String() {
		case "tab", "down":
			v.setFocus(v.focus + 1)
			return nil
		case "shift+tab", "up":
			v.setFocus(v.focus - 1)
			return nil
		case "enter":
			if v.focus < len(v.inputs)-1 {
				v.setFocus(v.focus + 1)
				return nil
			}
			return v.submit()
		}
	}
	var cmds []tea.Cmd
	for i := range v.inputs {
		var cmd tea.Cmd
		v.inputs[i], cmd = v.inputs[i].Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (v *changePasswordView) setFocus(focus int) {
	if focus < 0 {
		focus = len(v.inputs) - 1
	}
	if focus >= len(v.inputs) {
		focus = 0
	}
	v.inputs[v.focus].Blur()
	v.focus = focus
	v.inputs[v.focus].Focus()
}

func (v *changePasswordView) submit() tea.Cmd {
	form := validate.PasswordChangeForm{
		OldPassword:     v.inputs[0].Value(),
		NewPassword:     v.inputs[1].Value(),
		ConfirmPassword: v.inputs[2].Value(),
	}
	if err := validate.Struct(form); err != nil {
		v.errMsg = err.Error()
		return nil
	}
	v.errMsg = ""
	v.busy = true
	app := v.app
	return func() tea.Msg {
		err := app.client.Profile.ChangePassword(context.Background(), api.PasswordChange{
			OldPassword:     form.OldPassword,
			NewPassword:     form.NewPassword,
			ConfirmPassword: form.ConfirmPassword,
		})
		return passwordChangeResultMsg{err: err}
	}
}

func (v *changePasswordView) View(width int) string {
	status := hintStyle.Render("Enter → next/submit    Tab → switch field")
	if v.busy {
		status = hintStyle.Render("Updating password...")
	}
	errLine := ""
	if v.errMsg != "" {
		errLine = errorStyle.Render("✗ " + v.errMsg)
	}
	return joinLines(
		titleStyle.Render("Change your password"),
		hintStyle.Render("A password change is required before you can continue."),
		"",
		"Current:  "+v.inputs[0].View(),
		"New:      "+v.inputs[1].View(),
		"Confirm:  "+v.inputs[2].View(),
		errLine,
		"",
		status,
	)
}
