package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rohishub/rohis-cli/internal/api"
)

// sessionsMode selects which input form, if any, is active.
type sessionsMode int

const (
	sessionsBrowsing sessionsMode = iota
	sessionsCreating
	sessionsEditingPics
	sessionsRemovingPic
)

// sessionsView lists meetings and events.
type sessionsView struct {
	app        *App
	token      fetchToken
	loading    bool
	sessions   []api.Session
	typeFilter string
	cursor     int
	mode       sessionsMode
	input      textinput.Model
	errMsg     string
	busy       bool
}

type sessionsLoadedMsg struct {
	token    fetchToken
	sessions []api.Session
	err      error
}

type sessionMutatedMsg struct {
	token fetchToken
	note  string
	err   error
}

var sessionTypeFilters = []string{"", api.SessionTypeAll, api.SessionTypeCore, api.SessionTypeEvent}

func newSessionsView(app *App) *sessionsView {
	input := textinput.New()
	input.CharLimit = 200
	return &sessionsView{app: app, input: input}
}

func (v *sessionsView) Title() string { return "Sessions" }

func (v *sessionsView) Init() tea.Cmd {
	return v.fetch()
}

func (v *sessionsView) fetch() tea.Cmd {
	v.loading = true
	v.errMsg = ""
	v.token = newFetchToken()
	token := v.token
	client := v.app.client
	filter := v.typeFilter
	return func() tea.Msg {
		res, err := client.Sessions.List(context.Background(), filter)
		return sessionsLoadedMsg{token: token, sessions: res.Sessions, err: err}
	}
}

func (v *sessionsView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case sessionsLoadedMsg:
		if msg.token != v.token {
			return nil
		}
		v.loading = false
		if msg.err != nil {
			v.errMsg = errorText(msg.err)
			return nil
		}
		v.sessions = msg.sessions
		v.cursor = clampCursor(v.cursor, len(v.sessions))
		return nil

	case sessionMutatedMsg:
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
		if v.mode != sessionsBrowsing {
			switch msg.String() {
			case "enter":
				return v.submitInput()
			case "esc":
				v.mode = sessionsBrowsing
				v.input.Blur()
				return nil
			}
			var cmd tea.Cmd
			v.input, cmd = v.input.Update(msg)
			return cmd
		}
		switch msg.String() {
		case "up", "k":
			v.cursor = clampCursor(v.cursor-1, len(v.sessions))
		case "down", "j":
			v.cursor = clampCursor(v.cursor+1, len(v.sessions))
		case "f":
			v.cycleTypeFilter()
			return v.fetch()
		case "r":
			return v.fetch()
		case "n":
			return v.beginCreate()
		case "p":
			return v.beginEditPics()
		case "x":
			return v.beginRemovePic()
		case "L":
			return v.lockSelected()
		case "d":
			return v.deleteSelected()
		case "enter":
			if s := v.selected(); s != nil {
				return v.app.openSessionAttendance(s.ID)
			}
		}
	}
	return nil
}

func (v *sessionsView) beginCreate() tea.Cmd {
	v.mode = sessionsCreating
	v.input.Placeholder = "name, YYYY-MM-DD, type (all/core/event), description"
	v.input.SetValue("")
	v.input.Focus()
	return textinput.Blink
}

func (v *sessionsView) beginEditPics() tea.Cmd {
	s := v.selected()
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.AssignedPics))
	for _, pic := range s.AssignedPics {
		ids = append(ids, fmt.Sprintf("%d", pic.ID))
	}
	v.mode = sessionsEditingPics
	v.input.Placeholder = "PIC ids, comma separated"
	v.input.SetValue(strings.Join(ids, ","))
	v.input.Focus()
	return textinput.Blink
}

func (v *sessionsView) beginRemovePic() tea.Cmd {
	s := v.selected()
	if s == nil {
		return nil
	}
	if len(s.AssignedPics) == 0 {
		v.app.statusMsg = "No PICs assigned to this session"
		return nil
	}
	v.mode = sessionsRemovingPic
	v.input.Placeholder = "PIC id to remove"
	v.input.SetValue("")
	v.input.Focus()
	return textinput.Blink
}

func (v *sessionsView) submitInput() tea.Cmd {
	switch v.mode {
	case sessionsCreating:
		return v.submitCreate()
	case sessionsEditingPics:
		return v.submitPics()
	case sessionsRemovingPic:
		return v.submitRemovePic()
	}
	return nil
}

func (v *sessionsView) submitRemovePic() tea.Cmd {
	s := v.selected()
	if s == nil {
		v.mode = sessionsBrowsing
		v.input.Blur()
		return nil
	}
	ids, err := parseIDList(v.input.Value())
	if err != nil || len(ids) != 1 {
		v.app.statusMsg = "✗ Enter one PIC id"
		return nil
	}
	v.mode = sessionsBrowsing
	v.input.Blur()
	v.busy = true
	token := v.token
	client := v.app.client
	sessionID, picID, name := s.ID, ids[0], s.Name
	return func() tea.Msg {
		err := client.Sessions.RemovePic(context.Background(), sessionID, picID)
		return sessionMutatedMsg{token: token, note: fmt.Sprintf("Removed PIC %d from %s", picID, name), err: err}
	}
}

func (v *sessionsView) submitCreate() tea.Cmd {
	parts := strings.Split(v.input.Value(), ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		v.app.statusMsg = "✗ Need a name, a date, and a type"
		return nil
	}
	create := api.NewSession{Name: parts[0], Date: parts[1], SessionType: parts[2]}
	if len(parts) > 3 {
		create.Description = parts[3]
	}
	v.mode = sessionsBrowsing
	v.input.Blur()
	v.busy = true
	token := v.token
	client := v.app.client
	return func() tea.Msg {
		_, err := client.Sessions.Create(context.Background(), create)
		return sessionMutatedMsg{token: token, note: fmt.Sprintf("Created %s", create.Name), err: err}
	}
}

// submitPics replaces the selected session's assigned PIC set with the
// typed ids.
func (v *sessionsView) submitPics() tea.Cmd {
	s := v.selected()
	if s == nil {
		v.mode = sessionsBrowsing
		v.input.Blur()
		return nil
	}
	picIDs, err := parseIDList(v.input.Value())
	if err != nil {
		v.app.statusMsg = "✗ " + err.Error()
		return nil
	}
	v.mode = sessionsBrowsing
	v.input.Blur()
	v.busy = true
	token := v.token
	client := v.app.client
	sessionID, name := s.ID, s.Name
	return func() tea.Msg {
		_, err := client.Sessions.AssignPics(context.Background(), sessionID, picIDs)
		return sessionMutatedMsg{token: token, note: fmt.Sprintf("Updated PICs for %s", name), err: err}
	}
}

func (v *sessionsView) cycleTypeFilter() {
	for i, f := range sessionTypeFilters {
		if f == v.typeFilter {
			v.typeFilter = sessionTypeFilters[(i+1)%len(sessionTypeFilters)]
			return
		}
	}
	v.typeFilter = ""
}

func (v *sessionsView) selected() *api.Session {
	if len(v.sessions) == 0 || v.cursor >= len(v.sessions) {
		return nil
	}
	s := v.sessions[v.cursor]
	return &s
}

func (v *sessionsView) lockSelected() tea.Cmd {
	s := v.selected()
	if s == nil {
		return nil
	}
	if s.IsLocked {
		v.app.statusMsg = "Session is already locked"
		return nil
	}
	v.busy = true
	token := v.token
	client := v.app.client
	sessionID, name := s.ID, s.Name
	return func() tea.Msg {
		_, err := client.Sessions.Lock(context.Background(), sessionID)
		return sessionMutatedMsg{token: token, note: fmt.Sprintf("Locked %s", name), err: err}
	}
}

func (v *sessionsView) deleteSelected() tea.Cmd {
	s := v.selected()
	if s == nil {
		return nil
	}
	v.busy = true
	token := v.token
	client := v.app.client
	sessionID, name := s.ID, s.Name
	return func() tea.Msg {
		err := client.Sessions.Delete(context.Background(), sessionID)
		return sessionMutatedMsg{token: token, note: fmt.Sprintf("Deleted %s", name), err: err}
	}
}

func (v *sessionsView) View(width int) string {
	if v.loading {
		return hintStyle.Render("Loading sessions...")
	}
	if v.errMsg != "" {
		return errorStyle.Render("✗ " + v.errMsg)
	}
	filterLabel := "all"
	if v.typeFilter != "" {
		filterLabel = v.typeFilter
	}
	lines := []string{
		titleStyle.Render(fmt.Sprintf("Sessions (%d) · type: %s", len(v.sessions), filterLabel)),
		"",
	}
	for i, s := range v.sessions {
		lock := "  "
		if s.IsLocked {
			lock = lockStyle.Render("🔒")
		}
		row := fmt.Sprintf("%s %-10s %-28s %-6s %d marked", lock, s.Date, s.Name, s.SessionType, s.AttendanceCount)
		if i == v.cursor {
			row = selectedStyle.Render("› " + row)
		} else {
			row = "  " + row
		}
		lines = append(lines, row)
	}
	if len(v.sessions) == 0 {
		lines = append(lines, dimStyle.Render("No sessions."))
	}
	if v.mode != sessionsBrowsing {
		label := "New session: "
		switch v.mode {
		case sessionsEditingPics:
			label = "PICs: "
		case sessionsRemovingPic:
			label = "Remove PIC: "
		}
		lines = append(lines, "", label+v.input.View(),
			hintStyle.Render("Enter → submit    Esc → cancel"))
		return joinLines(lines...)
	}
	lines = append(lines, "",
		hintStyle.Render("Enter → attendance    n → new    p → PICs    x → remove PIC    L → lock    d → delete    f → type filter    r → refresh"),
	)
	return joinLines(lines...)
}
