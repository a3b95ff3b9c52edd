package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rohishub/rohis-cli/internal/api"
)

// piketLogsView is the read-only reminder-email audit trail.
type piketLogsView struct {
	app     *App
	token   fetchToken
	loading bool
	logs    []api.EmailLog
	errMsg  string
}

type piketLogsLoadedMsg struct {
	token fetchToken
	logs  []api.EmailLog
	err   error
}

func newPiketLogsView(app *App) *piketLogsView {
	return &piketLogsView{app: app}
}

func (v *piketLogsView) Title() string { return "Piket Logs" }

func (v *piketLogsView) Init() tea.Cmd {
	return v.fetch()
}

func (v *piketLogsView) fetch() tea.Cmd {
	v.loading = true
	v.errMsg = ""
	v.token = newFetchToken()
	token := v.token
	client := v.app.client
	return func() tea.Msg {
		res, err := client.Piket.Logs(context.Background())
		return piketLogsLoadedMsg{token: token, logs: res.Logs, err: err}
	}
}

func (v *piketLogsView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case piketLogsLoadedMsg:
		if msg.token != v.token {
			return nil
		}
		v.loading = false
		if msg.err != nil {
			v.errMsg = errorText(msg.err)
			return nil
		}
		v.logs = msg.logs
		return nil
	case tea.KeyMsg:
		if msg.String() == "r" {
			return v.fetch()
		}
	}
	return nil
}

func (v *piketLogsView) View(width int) string {
	if v.loading {
		return hintStyle.Render("Loading logs...")
	}
	if v.errMsg != "" {
		return errorStyle.Render("✗ " + v.errMsg)
	}
	lines := []string{titleStyle.Render(fmt.Sprintf("Reminder logs (%d)", len(v.logs))), ""}
	for _, log := range v.logs {
		status := log.Status
		if log.ErrorMessage != "" {
			status += " · " + log.ErrorMessage
		}
		lines = append(lines, fmt.Sprintf("  %-20s %-10s %d recipient(s) · %s",
			log.SentAt, log.DayName, log.RecipientsCount, status))
	}
	if len(v.logs) == 0 {
		lines = append(lines, dimStyle.Render("No reminder runs yet."))
	}
	lines = append(lines, "", hintStyle.Render("r → refresh    Esc → menu"))
	return joinLines(lines...)
}
