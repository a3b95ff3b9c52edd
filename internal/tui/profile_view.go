package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rohishub/rohis-cli/internal/api"
)

// profileView shows and edits the caller's own account.
type profileView struct {
	app      *App
	token    fetchToken
	mode     profileMode
	input    textinput.Model
	busy     bool
}

type profileMode int

const (
	profileIdle profileMode = iota
	profileEditName
	profileUploadPicture
)

type profileMutatedMsg struct {
	token fetchToken
	note  string
	err   error
}

func newProfileView(app *App) *profileView {
	input := textinput.New()
	input.CharLimit = 200
	return &profileView{app: app, token: newFetchToken(), input: input}
}

func (v *profileView) Title() string { return "Profile" }

func (v *profileView) Init() tea.Cmd {
	return nil
}

func (v *profileView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case profileMutatedMsg:
		if msg.token != v.token {
			return nil
		}
		v.busy = false
		if msg.err != nil {
			v.app.showError(msg.err)
			return nil
		}
		v.app.statusMsg = "✓ " + msg.note
		// Profile mutations change the user record; refresh the session
		// so the header and role gating stay current.
		app := v.app
		return func() tea.Msg {
			if err := app.session.Refresh(context.Background()); err != nil {
				app.logError("refresh profile: %v", err)
			}
			return nil
		}

	case tea.KeyMsg:
		if v.busy {
			return nil
		}
		if v.mode != profileIdle {
			switch msg.String() {
			case "enter":
				return v.submit()
			case "esc":
				v.mode = profileIdle
				v.input.Blur()
				return nil
			}
			var cmd tea.Cmd
			v.input, cmd = v.input.Update(msg)
			return cmd
		}
		switch msg.String() {
		case "n":
			v.mode = profileEditName
			v.input.Placeholder = "new display name"
			v.input.SetValue("")
			v.input.Focus()
			return textinput.Blink
		case "u":
			v.mode = profileUploadPicture
			v.input.Placeholder = "path to image file"
			v.input.SetValue("")
			v.input.Focus()
			return textinput.Blink
		}
	}
	return nil
}

func (v *profileView) submit() tea.Cmd {
	value := strings.TrimSpace(v.input.Value())
	if value == "" {
		v.app.statusMsg = "Nothing submitted"
		return nil
	}
	mode := v.mode
	v.mode = profileIdle
	v.input.Blur()
	v.busy = true
	token := v.token
	client := v.app.client
	return func() tea.Msg {
		switch mode {
		case profileEditName:
			_, err := client.Profile.Update(context.Background(), api.ProfileUpdate{Username: value})
			return profileMutatedMsg{token: token, note: "Profile updated", err: err}
		case profileUploadPicture:
			file, err := os.Open(value)
			if err != nil {
				return profileMutatedMsg{token: token, err: fmt.Errorf("open picture: %w", err)}
			}
			defer file.Close()
			_, err = client.Profile.UploadPicture(context.Background(), filepath.Base(value), file)
			return profileMutatedMsg{token: token, note: "Picture uploaded", err: err}
		}
		return profileMutatedMsg{token: token, note: "No change"}
	}
}

func (v *profileView) View(width int) string {
	u := v.app.session.User()
	if u == nil {
		return errorStyle.Render("✗ Not logged in")
	}
	lines := []string{
		titleStyle.Render("Profile"),
		"",
		fmt.Sprintf("Name:   %s", u.Name),
		fmt.Sprintf("Email:  %s", u.Email),
		fmt.Sprintf("Role:   %s", u.Role),
		fmt.Sprintf("Class:  %s", u.ClassName),
		fmt.Sprintf("PIC:    %s", orDash(u.PicName)),
		fmt.Sprintf("Photo:  %s", v.app.client.Profile.PictureURL(u.ID)),
	}
	if v.mode != profileIdle {
		lines = append(lines, "", v.input.View(), hintStyle.Render("Enter → submit    Esc → cancel"))
	} else {
		lines = append(lines, "", hintStyle.Render("n → change name    u → upload picture    Esc → menu"))
	}
	return joinLines(lines...)
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
