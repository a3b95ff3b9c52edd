package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rohishub/rohis-cli/internal/api"
)

// chatView is the assistant prompt. A reply with the navigate action
// switches the active screen to the route the backend names.
type chatView struct {
	app    *App
	token  fetchToken
	input  textinput.Model
	lines  []string
	busy   bool
}

type chatReplyMsg struct {
	token fetchToken
	reply api.ChatReply
	err   error
}

func newChatView(app *App) *chatView {
	input := textinput.New()
	input.Placeholder = "ask something (e.g. \"when is the next session?\")"
	input.CharLimit = 400
	input.Focus()
	return &chatView{app: app, token: newFetchToken(), input: input}
}

func (v *chatView) Title() string { return "Assistant" }

func (v *chatView) Init() tea.Cmd {
	return textinput.Blink
}

func (v *chatView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case chatReplyMsg:
		if msg.token != v.token {
			return nil
		}
		v.busy = false
		if msg.err != nil {
			v.app.showError(msg.err)
			return nil
		}
		v.lines = append(v.lines, "assistant: "+msg.reply.Message)
		if msg.reply.Action == api.ChatActionNavigate && msg.reply.Route != "" {
			route := msg.reply.Route
			return func() tea.Msg { return navigateMsg{route: route} }
		}
		return nil

	case tea.KeyMsg:
		if v.busy {
			return nil
		}
		if msg.String() == "enter" {
			return v.send()
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return cmd
	}
	return nil
}

func (v *chatView) send() tea.Cmd {
	message := strings.TrimSpace(v.input.Value())
	if message == "" {
		return nil
	}
	v.lines = append(v.lines, "you: "+message)
	v.input.SetValue("")
	v.busy = true
	token := v.token
	client := v.app.client
	return func() tea.Msg {
		reply, err := client.Chat.Send(context.Background(), message)
		return chatReplyMsg{token: token, reply: reply, err: err}
	}
}

func (v *chatView) View(width int) string {
	lines := []string{titleStyle.Render("Assistant"), ""}
	if len(v.lines) == 0 {
		lines = append(lines, dimStyle.Render("No messages yet."))
	}
	lines = append(lines, v.lines...)
	status := hintStyle.Render("Enter → send    Esc → menu")
	if v.busy {
		status = hintStyle.Render("Waiting for reply...")
	}
	lines = append(lines, "", v.input.View(), status)
	return joinLines(lines...)
}
