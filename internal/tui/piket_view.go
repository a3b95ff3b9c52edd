package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rohishub/rohis-cli/internal/api"
	"github.com/rohishub/rohis-cli/internal/validate"
)

// piketView shows the weekly duty roster. Editing a day replaces its
// full assignment set: whatever ids are submitted become the day's
// roster.
type piketView struct {
	app      *App
	token    fetchToken
	loading  bool
	schedule []api.PiketDay
	cursor   int
	editing  bool
	input    textinput.Model
	busy     bool
	errMsg   string
}

type piketLoadedMsg struct {
	token    fetchToken
	schedule []api.PiketDay
	err      error
}

type piketMutatedMsg struct {
	token fetchToken
	note  string
	err   error
}

func newPiketView(app *App) *piketView {
	input := textinput.New()
	input.Placeholder = "user ids, comma separated (e.g. 7,9)"
	input.CharLimit = 200
	return &piketView{app: app, input: input}
}

func (v *piketView) Title() string { return "Piket" }

func (v *piketView) Init() tea.Cmd {
	return v.fetch()
}

func (v *piketView) fetch() tea.Cmd {
	v.loading = true
	v.errMsg = ""
	v.token = newFetchToken()
	token := v.token
	client := v.app.client
	return func() tea.Msg {
		res, err := client.Piket.Schedule(context.Background())
		return piketLoadedMsg{token: token, schedule: res.Schedule, err: err}
	}
}

func (v *piketView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case piketLoadedMsg:
		if msg.token != v.token {
			return nil
		}
		v.loading = false
		if msg.err != nil {
			v.errMsg = errorText(msg.err)
			return nil
		}
		v.schedule = msg.schedule
		v.cursor = clampCursor(v.cursor, len(v.schedule))
		return nil

	case piketMutatedMsg:
		if msg.token != v.token {
			return nil
		}
		v.busy = false
		if msg.err != nil {
			v.app.showError(msg.err)
			return nil
		}
		v.app.statusMsg = "✓ " + msg.note
		return v.fetch()

	case tea.KeyMsg:
		if v.loading || v.busy {
			return nil
		}
		if v.editing {
			switch msg.String() {
			case "enter":
				return v.submitEdit()
			case "esc":
				v.editing = false
				v.input.Blur()
				return nil
			}
			var cmd tea.Cmd
			v.input, cmd = v.input.Update(msg)
			return cmd
		}
		switch msg.String() {
		case "up", "k":
			v.cursor = clampCursor(v.cursor-1, len(v.schedule))
		case "down", "j":
			v.cursor = clampCursor(v.cursor+1, len(v.schedule))
		case "e":
			return v.beginEdit()
		case "c":
			return v.clearSelected()
		case "t":
			return v.testReminder()
		case "r":
			return v.fetch()
		}
	}
	return nil
}

func (v *piketView) selectedDay() *api.PiketDay {
	if len(v.schedule) == 0 || v.cursor >= len(v.schedule) {
		return nil
	}
	day := v.schedule[v.cursor]
	return &day
}

func (v *piketView) beginEdit() tea.Cmd {
	day := v.selectedDay()
	if day == nil {
		return nil
	}
	ids := make([]string, 0, len(day.Assignments))
	for _, a := range day.Assignments {
		ids = append(ids, strconv.Itoa(a.UserID))
	}
	v.editing = true
	v.input.SetValue(strings.Join(ids, ","))
	v.input.Focus()
	return textinput.Blink
}

// submitEdit replaces the selected day's assignment set with the typed
// ids. An empty list is a valid replacement (same as clearing).
func (v *piketView) submitEdit() tea.Cmd {
	day := v.selectedDay()
	if day == nil {
		return nil
	}
	if err := validate.Struct(validate.PiketDayForm{DayOfWeek: day.DayOfWeek}); err != nil {
		v.app.statusMsg = "✗ " + err.Error()
		return nil
	}
	userIDs, err := parseIDList(v.input.Value())
	if err != nil {
		v.app.statusMsg = "✗ " + err.Error()
		return nil
	}
	v.editing = false
	v.input.Blur()
	v.busy = true
	token := v.token
	client := v.app.client
	dayOfWeek, dayName := day.DayOfWeek, day.DayName
	return func() tea.Msg {
		err := client.Piket.Update(context.Background(), dayOfWeek, userIDs)
		return piketMutatedMsg{token: token, note: fmt.Sprintf("Updated %s (%d assignee(s))", dayName, len(userIDs)), err: err}
	}
}

func (v *piketView) clearSelected() tea.Cmd {
	day := v.selectedDay()
	if day == nil {
		return nil
	}
	v.busy = true
	token := v.token
	client := v.app.client
	dayOfWeek, dayName := day.DayOfWeek, day.DayName
	return func() tea.Msg {
		err := client.Piket.Clear(context.Background(), dayOfWeek)
		return piketMutatedMsg{token: token, note: fmt.Sprintf("Cleared %s", dayName), err: err}
	}
}

func (v *piketView) testReminder() tea.Cmd {
	day := v.selectedDay()
	if day == nil {
		return nil
	}
	v.busy = true
	token := v.token
	client := v.app.client
	dayOfWeek, dayName := day.DayOfWeek, day.DayName
	return func() tea.Msg {
		res, err := client.Piket.TestReminder(context.Background(), &dayOfWeek)
		note := fmt.Sprintf("Reminder test for %s: %s", dayName, res.Message)
		if len(res.FailedEmails) > 0 {
			note += fmt.Sprintf(" (%d failed)", len(res.FailedEmails))
		}
		return piketMutatedMsg{token: token, note: note, err: err}
	}
}

func parseIDList(value string) ([]int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return []int{}, nil
	}
	parts := strings.Split(value, ",")
	ids := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid user id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (v *piketView) View(width int) string {
	if v.loading {
		return hintStyle.Render("Loading schedule...")
	}
	if v.errMsg != "" {
		return errorStyle.Render("✗ " + v.errMsg)
	}
	lines := []string{titleStyle.Render("Piket · weekly duty roster"), ""}
	for i, day := range v.schedule {
		names := make([]string, 0, len(day.Assignments))
		for _, a := range day.Assignments {
			names = append(names, a.Name)
		}
		assigned := strings.Join(names, ", ")
		if assigned == "" {
			assigned = dimStyle.Render("unassigned")
		}
		label := day.DayName
		if day.IsToday {
			label += " (today)"
		}
		row := fmt.Sprintf("%-16s %s", label, assigned)
		if i == v.cursor {
			row = selectedStyle.Render("› " + row)
		} else {
			row = "  " + row
		}
		lines = append(lines, row)
	}
	if v.editing {
		lines = append(lines, "", "Assignees: "+v.input.View(),
			hintStyle.Render("Enter → replace day's assignments    Esc → cancel"))
	} else {
		lines = append(lines, "",
			hintStyle.Render("e → edit day    c → clear day    t → test reminder    r → refresh"))
	}
	return joinLines(lines...)
}
