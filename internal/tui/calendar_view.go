package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rohishub/rohis-cli/internal/api"
)

// calendarView lists ROHIS sessions and Islamic holidays with their
// Hijri labels when the backend supplies one.
type calendarView struct {
	app     *App
	token   fetchToken
	loading bool
	events  []api.CalendarEvent
	errMsg  string
}

type calendarLoadedMsg struct {
	token  fetchToken
	events []api.CalendarEvent
	err    error
}

func newCalendarView(app *App) *calendarView {
	return &calendarView{app: app}
}

func (v *calendarView) Title() string { return "Calendar" }

func (v *calendarView) Init() tea.Cmd {
	return v.fetch()
}

func (v *calendarView) fetch() tea.Cmd {
	v.loading = true
	v.errMsg = ""
	v.token = newFetchToken()
	token := v.token
	client := v.app.client
	return func() tea.Msg {
		events, err := client.Calendar.Events(context.Background())
		return calendarLoadedMsg{token: token, events: events, err: err}
	}
}

func (v *calendarView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case calendarLoadedMsg:
		if msg.token != v.token {
			return nil
		}
		v.loading = false
		if msg.err != nil {
			v.errMsg = errorText(msg.err)
			return nil
		}
		v.events = msg.events
		return nil
	case tea.KeyMsg:
		if msg.String() == "r" {
			return v.fetch()
		}
	}
	return nil
}

func (v *calendarView) View(width int) string {
	if v.loading {
		return hintStyle.Render("Loading calendar...")
	}
	if v.errMsg != "" {
		return errorStyle.Render("✗ " + v.errMsg)
	}
	lines := []string{titleStyle.Render(fmt.Sprintf("Calendar (%d events)", len(v.events))), ""}
	for _, ev := range v.events {
		kind := "session"
		if ev.ExtendedProps.Type == api.CalendarTypeHoliday {
			kind = "holiday"
		}
		row := fmt.Sprintf("  %-12s %-8s %s", ev.Start, kind, ev.Title)
		if ev.ExtendedProps.Hijri != "" {
			row += dimStyle.Render(" · " + ev.ExtendedProps.Hijri)
		}
		lines = append(lines, row)
	}
	if len(v.events) == 0 {
		lines = append(lines, dimStyle.Render("No events."))
	}
	lines = append(lines, "", hintStyle.Render("r → refresh    Esc → menu"))
	return joinLines(lines...)
}
