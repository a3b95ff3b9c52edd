package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rohishub/rohis-cli/internal/api"
	"github.com/rohishub/rohis-cli/internal/session"
)

// attendanceView marks attendance for one session.
//
// The lock flag is backend-supplied and terminal: while the session is
// locked every status-setting action is disabled and no mutation is
// attempted. Marks go through one of two routes picked by the target
// member's role; a duplicate mark surfaces the backend's conflict error
// verbatim.
type attendanceView struct {
	app       *App
	sessionID int
	token     fetchToken
	loading   bool
	status    api.SessionStatusResponse
	pics      []api.SessionPic
	members   []api.User
	marked    map[int]api.Attendance
	cursor    int
	markingID int
	errMsg    string
}

type attendanceLoadedMsg struct {
	token   fetchToken
	status  api.SessionStatusResponse
	pics    []api.SessionPic
	members []api.User
	err     error
}

type attendanceMarkedMsg struct {
	token  fetchToken
	userID int
	result api.AttendanceResponse
	err    error
}

type attendanceExportedMsg struct {
	token fetchToken
	path  string
	err   error
}

func newAttendanceView(app *App, sessionID int) *attendanceView {
	return &attendanceView{
		app:       app,
		sessionID: sessionID,
		marked:    map[int]api.Attendance{},
	}
}

func (v *attendanceView) Title() string { return "Attendance" }

func (v *attendanceView) Init() tea.Cmd {
	return v.fetch()
}

// fetch loads the session's lock status, its assigned PICs, and the
// roster concurrently; a single failure fails the whole initial load.
func (v *attendanceView) fetch() tea.Cmd {
	v.loading = true
	v.errMsg = ""
	// Rotating the token drops any in-flight mark result, so the
	// single-mark guard must release here or marking stays blocked.
	v.markingID = 0
	v.token = newFetchToken()
	token := v.token
	client := v.app.client
	sessionID := v.sessionID
	return func() tea.Msg {
		ctx := context.Background()
		type statusResult struct {
			status api.SessionStatusResponse
			err    error
		}
		type picsResult struct {
			pics api.SessionPicsResponse
			err  error
		}
		statusCh := make(chan statusResult, 1)
		picsCh := make(chan picsResult, 1)
		go func() {
			res, err := client.Sessions.Status(ctx, sessionID)
			statusCh <- statusResult{status: res, err: err}
		}()
		go func() {
			res, err := client.Sessions.Pics(ctx, sessionID)
			picsCh <- picsResult{pics: res, err: err}
		}()
		membersRes, membersErr := client.Members.List(ctx)
		statusRes := <-statusCh
		picsRes := <-picsCh
		if statusRes.err != nil {
			return attendanceLoadedMsg{token: token, err: statusRes.err}
		}
		if picsRes.err != nil {
			return attendanceLoadedMsg{token: token, err: picsRes.err}
		}
		if membersErr != nil {
			return attendanceLoadedMsg{token: token, err: membersErr}
		}
		return attendanceLoadedMsg{
			token:   token,
			status:  statusRes.status,
			pics:    picsRes.pics.AssignedPics,
			members: membersRes.Members,
		}
	}
}

func (v *attendanceView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case attendanceLoadedMsg:
		if msg.token != v.token {
			return nil
		}
		v.loading = false
		if msg.err != nil {
			v.errMsg = errorText(msg.err)
			return nil
		}
		v.status = msg.status
		v.pics = msg.pics
		v.members = msg.members
		v.cursor = clampCursor(v.cursor, len(v.members))
		return nil

	case attendanceMarkedMsg:
		if msg.token != v.token {
			return nil
		}
		v.markingID = 0
		if msg.err != nil {
			// Conflicts (and the backend's refusal on a locked session)
			// render verbatim; the mark is never retried.
			v.app.showError(msg.err)
			return nil
		}
		v.marked[msg.userID] = msg.result.Attendance
		v.app.statusMsg = fmt.Sprintf("✓ Marked %s", msg.result.Attendance.Status)
		return nil

	case attendanceExportedMsg:
		if msg.token != v.token {
			return nil
		}
		if msg.err != nil {
			v.app.showError(msg.err)
			return nil
		}
		v.app.statusMsg = "✓ Exported to " + msg.path
		return nil

	case tea.KeyMsg:
		if v.loading {
			return nil
		}
		switch msg.String() {
		case "up", "k":
			v.cursor = clampCursor(v.cursor-1, len(v.members))
		case "down", "j":
			v.cursor = clampCursor(v.cursor+1, len(v.members))
		case "p":
			return v.mark(api.StatusPresent)
		case "a":
			return v.mark(api.StatusAbsent)
		case "e":
			return v.mark(api.StatusExcused)
		case "l":
			return v.mark(api.StatusLate)
		case "x":
			return v.export()
		case "r":
			return v.fetch()
		}
	}
	return nil
}

func (v *attendanceView) selected() *api.User {
	if len(v.members) == 0 || v.cursor >= len(v.members) {
		return nil
	}
	u := v.members[v.cursor]
	return &u
}

// mark records one (session, user, status) tuple. The route is picked by
// the target member's role: core members go through the core endpoint,
// everyone else through the regular one.
func (v *attendanceView) mark(status string) tea.Cmd {
	if v.status.IsLocked {
		v.app.statusMsg = "Session is locked; attendance can no longer change"
		return nil
	}
	u := v.selected()
	if u == nil {
		return nil
	}
	if _, done := v.marked[u.ID]; done {
		v.app.statusMsg = fmt.Sprintf("%s is already marked in this view", u.Name)
		return nil
	}
	if v.markingID != 0 {
		return nil
	}
	v.markingID = u.ID
	token := v.token
	client := v.app.client
	mark := api.Mark{SessionID: v.sessionID, UserID: u.ID, Status: status}
	core := session.ParseRole(u.Role).IsCore()
	return func() tea.Msg {
		var res api.AttendanceResponse
		var err error
		if core {
			res, err = client.Attendance.MarkCore(context.Background(), mark)
		} else {
			res, err = client.Attendance.MarkRegular(context.Background(), mark)
		}
		return attendanceMarkedMsg{token: token, userID: mark.UserID, result: res, err: err}
	}
}

// export downloads the attendance sheet and writes it under the exports
// directory.
func (v *attendanceView) export() tea.Cmd {
	token := v.token
	client := v.app.client
	sessionID := v.sessionID
	dir := v.app.cfg.ExportsDir()
	fileName := exportFileName(v.status.Name, sessionID)
	return func() tea.Msg {
		payload, err := client.Attendance.ExportDocx(context.Background(), sessionID)
		if err != nil {
			return attendanceExportedMsg{token: token, err: err}
		}
		path := filepath.Join(dir, fileName)
		if err := os.WriteFile(path, payload, 0o644); err != nil {
			return attendanceExportedMsg{token: token, err: fmt.Errorf("write export: %w", err)}
		}
		return attendanceExportedMsg{token: token, path: path}
	}
}

// exportFileName names the DOCX after the session. The name is
// backend-supplied, so anything that could leave the exports directory
// falls back to the session id.
func exportFileName(name string, sessionID int) string {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, `/\`) {
		name = fmt.Sprintf("session-%d", sessionID)
	}
	return fmt.Sprintf("attendance-%s.docx", name)
}

func (v *attendanceView) View(width int) string {
	if v.loading {
		return hintStyle.Render("Loading session...")
	}
	if v.errMsg != "" {
		return errorStyle.Render("✗ " + v.errMsg)
	}
	title := fmt.Sprintf("Attendance · %s", v.status.Name)
	if v.status.IsLocked {
		title += " " + lockStyle.Render("[LOCKED]")
	}
	lines := []string{titleStyle.Render(title)}
	if len(v.pics) > 0 {
		names := make([]string, 0, len(v.pics))
		for _, p := range v.pics {
			names = append(names, p.Name)
		}
		lines = append(lines, dimStyle.Render("PICs: "+strings.Join(names, ", ")))
	}
	lines = append(lines, "")
	for i, u := range v.members {
		state := dimStyle.Render("unmarked")
		if att, ok := v.marked[u.ID]; ok {
			state = att.Status
		}
		if v.markingID == u.ID {
			state = "marking..."
		}
		row := fmt.Sprintf("%-24s %-8s %s", u.Name, u.Role, state)
		if i == v.cursor {
			row = selectedStyle.Render("› " + row)
		} else {
			row = "  " + row
		}
		lines = append(lines, row)
	}
	if len(v.members) == 0 {
		lines = append(lines, dimStyle.Render("No members."))
	}
	hint := "p/a/e/l → present/absent/excused/late    x → export DOCX    r → refresh"
	if v.status.IsLocked {
		hint = "Session locked: marking disabled    x → export DOCX    r → refresh"
	}
	lines = append(lines, "", hintStyle.Render(hint))
	return joinLines(lines...)
}
