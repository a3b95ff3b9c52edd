package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rohishub/rohis-cli/internal/api"
)

// historyView shows an attendance history: the caller's own when userID
// is zero, another member's otherwise (a core-only route). Core users can
// switch into a roster browser backed by the core-only history listing
// and jump to any member's history from there.
type historyView struct {
	app      *App
	userID   int
	token    fetchToken
	loading  bool
	subject  api.User
	records  []api.Attendance
	summary  api.AttendanceSummary
	browsing bool
	roster   []api.User
	cursor   int
	errMsg   string
}

type historyLoadedMsg struct {
	token   fetchToken
	subject api.User
	records []api.Attendance
	summary api.AttendanceSummary
	err     error
}

type historyRosterMsg struct {
	token  fetchToken
	roster []api.User
	err    error
}

func newHistoryView(app *App, userID int) *historyView {
	return &historyView{app: app, userID: userID}
}

func (v *historyView) Title() string { return "Attendance History" }

func (v *historyView) Init() tea.Cmd {
	return v.fetch()
}

func (v *historyView) fetch() tea.Cmd {
	v.loading = true
	v.errMsg = ""
	v.token = newFetchToken()
	token := v.token
	client := v.app.client
	userID := v.userID
	own := v.app.session.User()
	return func() tea.Msg {
		ctx := context.Background()
		if userID == 0 {
			res, err := client.Attendance.MyHistory(ctx)
			subject := api.User{}
			if own != nil {
				subject = *own
			}
			return historyLoadedMsg{token: token, subject: subject, records: res.Records, summary: res.Summary, err: err}
		}
		res, err := client.Attendance.UserHistory(ctx, userID)
		return historyLoadedMsg{token: token, subject: res.User, records: res.Records, summary: res.Summary, err: err}
	}
}

// fetchRoster loads every member through the core-only history route.
func (v *historyView) fetchRoster() tea.Cmd {
	v.loading = true
	v.errMsg = ""
	v.token = newFetchToken()
	token := v.token
	client := v.app.client
	return func() tea.Msg {
		res, err := client.Attendance.AllMembers(context.Background())
		return historyRosterMsg{token: token, roster: res.Members, err: err}
	}
}

func (v *historyView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.token != v.token {
			return nil
		}
		v.loading = false
		if msg.err != nil {
			v.errMsg = errorText(msg.err)
			return nil
		}
		v.subject = msg.subject
		v.records = msg.records
		v.summary = msg.summary
		return nil

	case historyRosterMsg:
		if msg.token != v.token {
			return nil
		}
		v.loading = false
		if msg.err != nil {
			v.errMsg = errorText(msg.err)
			return nil
		}
		v.browsing = true
		v.roster = msg.roster
		v.cursor = clampCursor(v.cursor, len(v.roster))
		return nil

	case tea.KeyMsg:
		if v.loading {
			return nil
		}
		if v.browsing {
			switch msg.String() {
			case "up", "k":
				v.cursor = clampCursor(v.cursor-1, len(v.roster))
			case "down", "j":
				v.cursor = clampCursor(v.cursor+1, len(v.roster))
			case "enter":
				if len(v.roster) > 0 && v.cursor < len(v.roster) {
					return v.app.openUserHistory(v.roster[v.cursor].ID)
				}
			case "b":
				v.browsing = false
				return v.fetch()
			}
			return nil
		}
		switch msg.String() {
		case "r":
			return v.fetch()
		case "m":
			if v.app.session.IsCore() {
				return v.fetchRoster()
			}
		}
	}
	return nil
}

func (v *historyView) View(width int) string {
	if v.loading {
		return hintStyle.Render("Loading history...")
	}
	if v.errMsg != "" {
		return errorStyle.Render("✗ " + v.errMsg)
	}
	if v.browsing {
		lines := []string{titleStyle.Render("Browse member histories"), ""}
		for i, u := range v.roster {
			row := fmt.Sprintf("%-24s %-8s %s", u.Name, u.Role, u.ClassName)
			if i == v.cursor {
				row = selectedStyle.Render("› " + row)
			} else {
				row = "  " + row
			}
			lines = append(lines, row)
		}
		if len(v.roster) == 0 {
			lines = append(lines, dimStyle.Render("No members."))
		}
		lines = append(lines, "", hintStyle.Render("Enter → open history    b → back to your own"))
		return joinLines(lines...)
	}
	lines := []string{
		titleStyle.Render(fmt.Sprintf("History · %s", v.subject.Name)),
		dimStyle.Render(fmt.Sprintf("present %d · absent %d · excused %d · late %d · total %d",
			v.summary.Present, v.summary.Absent, v.summary.Excused, v.summary.Late, v.summary.Total)),
		"",
	}
	for _, rec := range v.records {
		lines = append(lines, fmt.Sprintf("  %-12s %-28s %-8s %s",
			rec.SessionDate, rec.SessionName, rec.Status, rec.AttendanceType))
	}
	if len(v.records) == 0 {
		lines = append(lines, dimStyle.Render("No attendance records."))
	}
	hint := "r → refresh    Esc → back"
	if v.app.session.IsCore() && v.userID == 0 {
		hint = "m → browse members    " + hint
	}
	lines = append(lines, "", hintStyle.Render(hint))
	return joinLines(lines...)
}
