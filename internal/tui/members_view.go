package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rohishub/rohis-cli/internal/api"
	"github.com/rohishub/rohis-cli/internal/session"
)

// membersMode selects which input form, if any, is active.
type membersMode int

const (
	membersBrowsing membersMode = iota
	membersAdding
	membersBatchAdding
	membersBatchDeleting
	membersAssigningPic
)

// membersView is the roster screen. The initial load fetches members and
// PICs together as one all-or-nothing join; any single failure fails the
// load (these are initial-load fetches, not incremental updates).
type membersView struct {
	app     *App
	token   fetchToken
	loading bool
	members []api.User
	pics    []api.Pic
	filter  session.Role
	hasFilt bool
	cursor  int
	mode    membersMode
	input   textinput.Model
	errMsg  string
	busy    bool
}

type membersLoadedMsg struct {
	token   fetchToken
	members []api.User
	pics    []api.Pic
	err     error
}

type memberMutatedMsg struct {
	token fetchToken
	note  string
	err   error
}

func newMembersView(app *App) *membersView {
	input := textinput.New()
	input.CharLimit = 200
	return &membersView{app: app, input: input}
}

func (v *membersView) Title() string { return "Members" }

func (v *membersView) Init() tea.Cmd {
	return v.fetch()
}

func (v *membersView) fetch() tea.Cmd {
	v.loading = true
	v.errMsg = ""
	v.token = newFetchToken()
	token := v.token
	client := v.app.client
	return func() tea.Msg {
		ctx := context.Background()
		type listResult struct {
			members api.MembersResponse
			err     error
		}
		memberCh := make(chan listResult, 1)
		go func() {
			res, err := client.Members.List(ctx)
			memberCh <- listResult{members: res, err: err}
		}()
		picsRes, picsErr := client.Pics.List(ctx)
		memberRes := <-memberCh
		if memberRes.err != nil {
			return membersLoadedMsg{token: token, err: memberRes.err}
		}
		if picsErr != nil {
			return membersLoadedMsg{token: token, err: picsErr}
		}
		return membersLoadedMsg{token: token, members: memberRes.members.Members, pics: picsRes.Pics}
	}
}

func (v *membersView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case membersLoadedMsg:
		if msg.token != v.token {
			return nil
		}
		v.loading = false
		if msg.err != nil {
			v.errMsg = errorText(msg.err)
			return nil
		}
		v.members = msg.members
		v.pics = msg.pics
		v.cursor = clampCursor(v.cursor, len(v.visible()))
		return nil

	case memberMutatedMsg:
		if msg.token != v.token {
			return nil
		}
		v.busy = false
		if msg.err != nil {
			v.app.showError(msg.err)
			return nil
		}
		v.app.statusMsg = "✓ " + msg.note
		// Re-fetch is the only reconciliation strategy after a mutation.
		return v.fetch()

	case tea.KeyMsg:
		if v.loading || v.busy {
			return nil
		}
		if v.mode != membersBrowsing {
			switch msg.String() {
			case "enter":
				return v.submitInput()
			case "esc":
				v.mode = membersBrowsing
				v.input.Blur()
				return nil
			}
			var cmd tea.Cmd
			v.input, cmd = v.input.Update(msg)
			return cmd
		}
		switch msg.String() {
		case "up", "k":
			v.cursor = clampCursor(v.cursor-1, len(v.visible()))
		case "down", "j":
			v.cursor = clampCursor(v.cursor+1, len(v.visible()))
		case "f":
			v.cycleFilter()
		case "r":
			return v.fetch()
		case "a":
			return v.beginAdd()
		case "B":
			return v.beginBatchAdd()
		case "D":
			return v.beginBatchDelete()
		case "P":
			return v.beginAssignPic()
		case "d":
			return v.deleteSelected()
		case "t":
			return v.togglePermission()
		case "R":
			return v.cycleRole()
		case "enter", "h":
			if u := v.selected(); u != nil {
				return v.app.openUserHistory(u.ID)
			}
		}
	}
	return nil
}

func (v *membersView) beginAdd() tea.Cmd {
	v.mode = membersAdding
	v.input.Placeholder = "name, email, class, role (class and role optional)"
	v.input.SetValue("")
	v.input.Focus()
	return textinput.Blink
}

func (v *membersView) beginAssignPic() tea.Cmd {
	if v.selected() == nil {
		return nil
	}
	v.mode = membersAssigningPic
	v.input.Placeholder = "PIC id (blank to detach)"
	v.input.SetValue("")
	v.input.Focus()
	return textinput.Blink
}

func (v *membersView) beginBatchAdd() tea.Cmd {
	v.mode = membersBatchAdding
	v.input.Placeholder = "rows of \"name, email\" separated by \";\""
	v.input.SetValue("")
	v.input.Focus()
	return textinput.Blink
}

func (v *membersView) beginBatchDelete() tea.Cmd {
	v.mode = membersBatchDeleting
	v.input.Placeholder = "member ids, comma separated"
	v.input.SetValue("")
	v.input.Focus()
	return textinput.Blink
}

func (v *membersView) submitInput() tea.Cmd {
	switch v.mode {
	case membersAdding:
		return v.submitAdd()
	case membersBatchAdding:
		return v.submitBatchAdd()
	case membersBatchDeleting:
		return v.submitBatchDelete()
	case membersAssigningPic:
		return v.submitAssignPic()
	}
	return nil
}

// submitBatchAdd sends the typed rows as the backend's bulk-text import;
// ";" separators become the newline row breaks the endpoint expects.
func (v *membersView) submitBatchAdd() tea.Cmd {
	bulk := strings.ReplaceAll(strings.TrimSpace(v.input.Value()), ";", "\n")
	if bulk == "" {
		v.app.statusMsg = "✗ Nothing to import"
		return nil
	}
	v.mode = membersBrowsing
	v.input.Blur()
	v.busy = true
	token := v.token
	client := v.app.client
	return func() tea.Msg {
		res, err := client.Members.BatchAdd(context.Background(), bulk)
		note := fmt.Sprintf("Imported %d member(s)", res.Added)
		if len(res.Errors) > 0 {
			note += fmt.Sprintf(", %d row(s) failed", len(res.Errors))
		}
		return memberMutatedMsg{token: token, note: note, err: err}
	}
}

func (v *membersView) submitBatchDelete() tea.Cmd {
	ids, err := parseIDList(v.input.Value())
	if err != nil {
		v.app.statusMsg = "✗ " + err.Error()
		return nil
	}
	if len(ids) == 0 {
		v.app.statusMsg = "✗ No ids given"
		return nil
	}
	v.mode = membersBrowsing
	v.input.Blur()
	v.busy = true
	token := v.token
	client := v.app.client
	return func() tea.Msg {
		res, err := client.Members.BatchDelete(context.Background(), ids)
		return memberMutatedMsg{token: token, note: fmt.Sprintf("Removed %d member(s)", res.Deleted), err: err}
	}
}

func (v *membersView) submitAdd() tea.Cmd {
	parts := strings.Split(v.input.Value(), ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		v.app.statusMsg = "✗ Need at least a name and an email"
		return nil
	}
	member := api.NewMember{Name: parts[0], Email: parts[1]}
	if len(parts) > 2 {
		member.ClassName = parts[2]
	}
	if len(parts) > 3 {
		member.Role = string(session.ParseRole(parts[3]))
	}
	v.mode = membersBrowsing
	v.input.Blur()
	v.busy = true
	token := v.token
	client := v.app.client
	return func() tea.Msg {
		_, err := client.Members.Add(context.Background(), member)
		return memberMutatedMsg{token: token, note: fmt.Sprintf("Added %s", member.Name), err: err}
	}
}

// submitAssignPic attaches the selected member to a PIC; blank input
// detaches them.
func (v *membersView) submitAssignPic() tea.Cmd {
	u := v.selected()
	if u == nil {
		v.mode = membersBrowsing
		v.input.Blur()
		return nil
	}
	var picID *int
	value := strings.TrimSpace(v.input.Value())
	if value != "" {
		id, err := strconv.Atoi(value)
		if err != nil {
			v.app.statusMsg = fmt.Sprintf("✗ Invalid PIC id %q", value)
			return nil
		}
		picID = &id
	}
	v.mode = membersBrowsing
	v.input.Blur()
	v.busy = true
	token := v.token
	client := v.app.client
	userID, name := u.ID, u.Name
	note := fmt.Sprintf("Detached %s from PIC", name)
	if picID != nil {
		note = fmt.Sprintf("Assigned %s to PIC %d", name, *picID)
	}
	return func() tea.Msg {
		_, err := client.Members.AssignPic(context.Background(), userID, picID)
		return memberMutatedMsg{token: token, note: note, err: err}
	}
}

// visible applies the role filter.
func (v *membersView) visible() []api.User {
	if !v.hasFilt {
		return v.members
	}
	filtered := make([]api.User, 0, len(v.members))
	for _, u := range v.members {
		if session.ParseRole(u.Role) == v.filter {
			filtered = append(filtered, u)
		}
	}
	return filtered
}

func (v *membersView) cycleFilter() {
	roles := session.Roles()
	switch {
	case !v.hasFilt:
		v.hasFilt = true
		v.filter = roles[0]
	default:
		for i, r := range roles {
			if r == v.filter {
				if i == len(roles)-1 {
					v.hasFilt = false
				} else {
					v.filter = roles[i+1]
				}
				break
			}
		}
	}
	v.cursor = clampCursor(v.cursor, len(v.visible()))
}

func (v *membersView) selected() *api.User {
	visible := v.visible()
	if len(visible) == 0 || v.cursor >= len(visible) {
		return nil
	}
	u := visible[v.cursor]
	return &u
}

func (v *membersView) deleteSelected() tea.Cmd {
	u := v.selected()
	if u == nil {
		return nil
	}
	v.busy = true
	token := v.token
	client := v.app.client
	userID, name := u.ID, u.Name
	return func() tea.Msg {
		err := client.Members.Delete(context.Background(), userID)
		return memberMutatedMsg{token: token, note: fmt.Sprintf("Removed %s", name), err: err}
	}
}

func (v *membersView) togglePermission() tea.Cmd {
	u := v.selected()
	if u == nil {
		return nil
	}
	v.busy = true
	token := v.token
	client := v.app.client
	userID, name := u.ID, u.Name
	return func() tea.Msg {
		res, err := client.Members.ToggleAttendancePermission(context.Background(), userID, nil)
		note := fmt.Sprintf("%s can mark attendance: %v", name, res.CanMarkAttendance)
		return memberMutatedMsg{token: token, note: note, err: err}
	}
}

// cycleRole advances the selected member to the next role in the closed
// set. The backend still rejects the change when the caller lacks the
// privilege.
func (v *membersView) cycleRole() tea.Cmd {
	u := v.selected()
	if u == nil {
		return nil
	}
	roles := session.Roles()
	current := session.ParseRole(u.Role)
	next := roles[0]
	for i, r := range roles {
		if r == current {
			next = roles[(i+1)%len(roles)]
			break
		}
	}
	v.busy = true
	token := v.token
	client := v.app.client
	userID, name := u.ID, u.Name
	return func() tea.Msg {
		_, err := client.Members.ChangeRole(context.Background(), userID, string(next))
		return memberMutatedMsg{token: token, note: fmt.Sprintf("%s is now %s", name, next), err: err}
	}
}

func (v *membersView) View(width int) string {
	if v.loading {
		return hintStyle.Render("Loading roster...")
	}
	if v.errMsg != "" {
		return errorStyle.Render("✗ " + v.errMsg)
	}
	filterLabel := "all roles"
	if v.hasFilt {
		filterLabel = string(v.filter)
	}
	visible := v.visible()
	lines := []string{
		titleStyle.Render(fmt.Sprintf("Members (%d) · filter: %s", len(visible), filterLabel)),
		"",
	}
	for i, u := range visible {
		pic := u.PicName
		if pic == "" {
			pic = "-"
		}
		mark := " "
		if u.CanMarkAttendance {
			mark = "✓"
		}
		row := fmt.Sprintf("%-24s %-8s %-10s PIC: %-14s mark:%s", u.Name, u.Role, u.ClassName, pic, mark)
		if i == v.cursor {
			row = selectedStyle.Render("› " + row)
		} else {
			row = "  " + row
		}
		lines = append(lines, row)
	}
	if len(visible) == 0 {
		lines = append(lines, dimStyle.Render("No members for this filter."))
	}
	if v.mode != membersBrowsing {
		label := "New member: "
		switch v.mode {
		case membersBatchAdding:
			label = "Bulk import: "
		case membersBatchDeleting:
			label = "Delete ids: "
		case membersAssigningPic:
			label = "PIC: "
			options := make([]string, 0, len(v.pics))
			for _, p := range v.pics {
				options = append(options, fmt.Sprintf("%d=%s", p.ID, p.Name))
			}
			if len(options) > 0 {
				lines = append(lines, "", dimStyle.Render("Available: "+strings.Join(options, "  ")))
			}
		}
		lines = append(lines, "", label+v.input.View(),
			hintStyle.Render("Enter → submit    Esc → cancel"))
		return joinLines(lines...)
	}
	lines = append(lines, "",
		hintStyle.Render("a → add    B → bulk import    D → bulk delete    P → assign PIC    f → role filter"),
		hintStyle.Render("t → toggle mark permission    R → cycle role    d → delete    Enter → history    r → refresh"),
	)
	return joinLines(lines...)
}
