package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rohishub/rohis-cli/internal/api"
)

// picsView manages divisions. Deleting a PIC detaches every member
// assigned to it server-side, so the roster view re-fetches afterwards.
type picsView struct {
	app      *App
	token    fetchToken
	loading  bool
	pics     []api.Pic
	cursor   int
	creating bool
	input    textinput.Model
	busy     bool
	errMsg   string
}

type picsLoadedMsg struct {
	token fetchToken
	pics  []api.Pic
	err   error
}

type picMutatedMsg struct {
	token fetchToken
	note  string
	err   error
}

func newPicsView(app *App) *picsView {
	input := textinput.New()
	input.Placeholder = "new PIC name"
	input.CharLimit = 80
	return &picsView{app: app, input: input}
}

func (v *picsView) Title() string { return "PICs" }

func (v *picsView) Init() tea.Cmd {
	return v.fetch()
}

func (v *picsView) fetch() tea.Cmd {
	v.loading = true
	v.errMsg = ""
	v.token = newFetchToken()
	token := v.token
	client := v.app.client
	return func() tea.Msg {
		res, err := client.Pics.List(context.Background())
		return picsLoadedMsg{token: token, pics: res.Pics, err: err}
	}
}

func (v *picsView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case picsLoadedMsg:
		if msg.token != v.token {
			return nil
		}
		v.loading = false
		if msg.err != nil {
			v.errMsg = errorText(msg.err)
			return nil
		}
		v.pics = msg.pics
		v.cursor = clampCursor(v.cursor, len(v.pics))
		return nil

	case picMutatedMsg:
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
		if v.creating {
			switch msg.String() {
			case "enter":
				return v.create()
			case "esc":
				v.creating = false
				v.input.Blur()
				return nil
			}
			var cmd tea.Cmd
			v.input, cmd = v.input.Update(msg)
			return cmd
		}
		switch msg.String() {
		case "up", "k":
			v.cursor = clampCursor(v.cursor-1, len(v.pics))
		case "down", "j":
			v.cursor = clampCursor(v.cursor+1, len(v.pics))
		case "n":
			v.creating = true
			v.input.SetValue("")
			v.input.Focus()
			return textinput.Blink
		case "d":
			return v.deleteSelected()
		case "r":
			return v.fetch()
		}
	}
	return nil
}

func (v *picsView) create() tea.Cmd {
	name := strings.TrimSpace(v.input.Value())
	if name == "" {
		v.app.statusMsg = "PIC name is required"
		return nil
	}
	v.creating = false
	v.input.Blur()
	v.busy = true
	token := v.token
	client := v.app.client
	return func() tea.Msg {
		_, err := client.Pics.Create(context.Background(), name, "")
		return picMutatedMsg{token: token, note: fmt.Sprintf("Created %s", name), err: err}
	}
}

func (v *picsView) deleteSelected() tea.Cmd {
	if len(v.pics) == 0 || v.cursor >= len(v.pics) {
		return nil
	}
	pic := v.pics[v.cursor]
	v.busy = true
	token := v.token
	client := v.app.client
	return func() tea.Msg {
		err := client.Pics.Delete(context.Background(), pic.ID)
		return picMutatedMsg{token: token, note: fmt.Sprintf("Deleted %s (members detached)", pic.Name), err: err}
	}
}

func (v *picsView) View(width int) string {
	if v.loading {
		return hintStyle.Render("Loading PICs...")
	}
	if v.errMsg != "" {
		return errorStyle.Render("✗ " + v.errMsg)
	}
	lines := []string{titleStyle.Render(fmt.Sprintf("PICs (%d)", len(v.pics))), ""}
	for i, pic := range v.pics {
		names := make([]string, 0, len(pic.Members))
		for _, m := range pic.Members {
			names = append(names, m.Name)
		}
		members := strings.Join(names, ", ")
		if members == "" {
			members = dimStyle.Render("no members")
		}
		row := fmt.Sprintf("%-20s %d member(s): %s", pic.Name, pic.MemberCount, members)
		if i == v.cursor {
			row = selectedStyle.Render("› " + row)
		} else {
			row = "  " + row
		}
		lines = append(lines, row)
	}
	if len(v.pics) == 0 {
		lines = append(lines, dimStyle.Render("No PICs."))
	}
	if v.creating {
		lines = append(lines, "", "Name: "+v.input.View(), hintStyle.Render("Enter → create    Esc → cancel"))
	} else {
		lines = append(lines, "", hintStyle.Render("n → new    d → delete    r → refresh"))
	}
	return joinLines(lines...)
}
