package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rohishub/rohis-cli/internal/api"
)

// notulensiView lists every session with its minutes state.
type notulensiView struct {
	app     *App
	token   fetchToken
	loading bool
	items   []api.NotulensiListItem
	cursor  int
	errMsg  string
	busy    bool
}

type notulensiLoadedMsg struct {
	token fetchToken
	items []api.NotulensiListItem
	err   error
}

type notulensiDeletedMsg struct {
	token fetchToken
	err   error
}

func newNotulensiView(app *App) *notulensiView {
	return &notulensiView{app: app}
}

func (v *notulensiView) Title() string { return "Notulensi" }

func (v *notulensiView) Init() tea.Cmd {
	return v.fetch()
}

func (v *notulensiView) fetch() tea.Cmd {
	v.loading = true
	v.errMsg = ""
	v.token = newFetchToken()
	token := v.token
	client := v.app.client
	return func() tea.Msg {
		res, err := client.Notulensi.List(context.Background())
		return notulensiLoadedMsg{token: token, items: res.Items, err: err}
	}
}

func (v *notulensiView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case notulensiLoadedMsg:
		if msg.token != v.token {
			return nil
		}
		v.loading = false
		if msg.err != nil {
			v.errMsg = errorText(msg.err)
			return nil
		}
		v.items = msg.items
		v.cursor = clampCursor(v.cursor, len(v.items))
		return nil

	case notulensiDeletedMsg:
		if msg.token != v.token {
			return nil
		}
		v.busy = false
		if msg.err != nil {
			v.app.showError(msg.err)
			return nil
		}
		v.app.statusMsg = "✓ Notulensi deleted"
		return v.fetch()

	case tea.KeyMsg:
		if v.loading || v.busy {
			return nil
		}
		switch msg.String() {
		case "up", "k":
			v.cursor = clampCursor(v.cursor-1, len(v.items))
		case "down", "j":
			v.cursor = clampCursor(v.cursor+1, len(v.items))
		case "r":
			return v.fetch()
		case "d":
			return v.deleteSelected()
		case "enter":
			if len(v.items) > 0 && v.cursor < len(v.items) {
				return v.app.openNotulensiEditor(v.items[v.cursor].SessionID)
			}
		}
	}
	return nil
}

func (v *notulensiView) deleteSelected() tea.Cmd {
	if len(v.items) == 0 || v.cursor >= len(v.items) {
		return nil
	}
	item := v.items[v.cursor]
	if !item.HasNotulensi || item.Notulensi == nil {
		v.app.statusMsg = "No notulensi to delete for this session"
		return nil
	}
	v.busy = true
	token := v.token
	client := v.app.client
	notulensiID := item.Notulensi.ID
	return func() tea.Msg {
		err := client.Notulensi.Delete(context.Background(), notulensiID)
		return notulensiDeletedMsg{token: token, err: err}
	}
}

func (v *notulensiView) View(width int) string {
	if v.loading {
		return hintStyle.Render("Loading notulensi...")
	}
	if v.errMsg != "" {
		return errorStyle.Render("✗ " + v.errMsg)
	}
	lines := []string{titleStyle.Render(fmt.Sprintf("Notulensi (%d sessions)", len(v.items))), ""}
	for i, item := range v.items {
		state := dimStyle.Render("none")
		if item.HasNotulensi {
			state = "✓ written"
		}
		row := fmt.Sprintf("%-12s %-30s %s", item.SessionDate, item.SessionName, state)
		if i == v.cursor {
			row = selectedStyle.Render("› " + row)
		} else {
			row = "  " + row
		}
		lines = append(lines, row)
	}
	if len(v.items) == 0 {
		lines = append(lines, dimStyle.Render("No sessions."))
	}
	lines = append(lines, "", hintStyle.Render("Enter → open    d → delete    r → refresh"))
	return joinLines(lines...)
}

// notulensiEditorView shows and edits one session's minutes. Editability
// comes from the backend's can_edit flag; the client never recomputes it.
type notulensiEditorView struct {
	app       *App
	sessionID int
	token     fetchToken
	loading   bool
	detail    api.NotulensiDetailResponse
	input     textinput.Model
	editing   bool
	busy      bool
	errMsg    string
}

type notulensiDetailMsg struct {
	token  fetchToken
	detail api.NotulensiDetailResponse
	err    error
}

type notulensiSavedMsg struct {
	token fetchToken
	err   error
}

func newNotulensiEditorView(app *App, sessionID int) *notulensiEditorView {
	input := textinput.New()
	input.Placeholder = "notulensi content"
	input.CharLimit = 4000
	return &notulensiEditorView{app: app, sessionID: sessionID, input: input}
}

func (v *notulensiEditorView) Title() string { return "Notulensi Editor" }

func (v *notulensiEditorView) Init() tea.Cmd {
	return v.fetch()
}

func (v *notulensiEditorView) fetch() tea.Cmd {
	v.loading = true
	v.errMsg = ""
	v.token = newFetchToken()
	token := v.token
	client := v.app.client
	sessionID := v.sessionID
	return func() tea.Msg {
		res, err := client.Notulensi.Get(context.Background(), sessionID)
		return notulensiDetailMsg{token: token, detail: res, err: err}
	}
}

func (v *notulensiEditorView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case notulensiDetailMsg:
		if msg.token != v.token {
			return nil
		}
		v.loading = false
		if msg.err != nil {
			v.errMsg = errorText(msg.err)
			return nil
		}
		v.detail = msg.detail
		if msg.detail.Notulensi != nil {
			v.input.SetValue(msg.detail.Notulensi.Content)
		}
		return nil

	case notulensiSavedMsg:
		if msg.token != v.token {
			return nil
		}
		v.busy = false
		if msg.err != nil {
			v.app.showError(msg.err)
			return nil
		}
		v.app.statusMsg = "✓ Notulensi saved"
		v.editing = false
		v.input.Blur()
		return v.fetch()

	case tea.KeyMsg:
		if v.loading || v.busy {
			return nil
		}
		if v.editing {
			switch msg.String() {
			case "enter":
				return v.save()
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
		case "e":
			if !v.detail.CanEdit {
				v.app.statusMsg = "You cannot edit this notulensi"
				return nil
			}
			v.editing = true
			v.input.Focus()
			return textinput.Blink
		case "r":
			return v.fetch()
		}
	}
	return nil
}

func (v *notulensiEditorView) save() tea.Cmd {
	content := strings.TrimSpace(v.input.Value())
	if content == "" {
		v.app.statusMsg = "Nothing to save"
		return nil
	}
	v.busy = true
	token := v.token
	client := v.app.client
	sessionID := v.sessionID
	return func() tea.Msg {
		_, err := client.Notulensi.Save(context.Background(), sessionID, content)
		return notulensiSavedMsg{token: token, err: err}
	}
}

func (v *notulensiEditorView) View(width int) string {
	if v.loading {
		return hintStyle.Render("Loading notulensi...")
	}
	if v.errMsg != "" {
		return errorStyle.Render("✗ " + v.errMsg)
	}
	title := fmt.Sprintf("Notulensi · %s (%s)", v.detail.Session.Name, v.detail.Session.Date)
	lines := []string{titleStyle.Render(title)}
	if !v.detail.CanEdit {
		lines = append(lines, dimStyle.Render("read-only"))
	}
	lines = append(lines, "")
	if v.editing {
		lines = append(lines, v.input.View(), "", hintStyle.Render("Enter → save    Esc → stop editing"))
		return joinLines(lines...)
	}
	content := dimStyle.Render("No notulensi written yet.")
	if v.detail.Notulensi != nil && v.detail.Notulensi.Content != "" {
		content = v.detail.Notulensi.Content
	}
	hint := "r → refresh    Esc → back"
	if v.detail.CanEdit {
		hint = "e → edit    " + hint
	}
	lines = append(lines, content, "", hintStyle.Render(hint))
	return joinLines(lines...)
}
