package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rohishub/rohis-cli/internal/api"
)

// dashboardView shows the feed: upcoming sessions and recent notulensi.
type dashboardView struct {
	app     *App
	token   fetchToken
	loading bool
	feed    api.FeedResponse
	errMsg  string
}

type feedLoadedMsg struct {
	token fetchToken
	feed  api.FeedResponse
	err   error
}

func newDashboardView(app *App) *dashboardView {
	return &dashboardView{app: app}
}

func (v *dashboardView) Title() string { return "Dashboard" }

func (v *dashboardView) Init() tea.Cmd {
	return v.fetch()
}

func (v *dashboardView) fetch() tea.Cmd {
	v.loading = true
	v.errMsg = ""
	v.token = newFetchToken()
	token := v.token
	client := v.app.client
	return func() tea.Msg {
		feed, err := client.Feed.Get(context.Background())
		return feedLoadedMsg{token: token, feed: feed, err: err}
	}
}

func (v *dashboardView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case feedLoadedMsg:
		if msg.token != v.token {
			return nil
		}
		v.loading = false
		if msg.err != nil {
			v.errMsg = errorText(msg.err)
			return nil
		}
		v.feed = msg.feed
		return nil
	case tea.KeyMsg:
		if msg.String() == "r" {
			return v.fetch()
		}
	}
	return nil
}

func (v *dashboardView) View(width int) string {
	if v.loading {
		return hintStyle.Render("Loading feed...")
	}
	if v.errMsg != "" {
		return errorStyle.Render("✗ " + v.errMsg)
	}
	lines := []string{titleStyle.Render("Upcoming sessions")}
	if len(v.feed.Upcoming) == 0 {
		lines = append(lines, dimStyle.Render("No upcoming sessions."))
	}
	for _, s := range v.feed.Upcoming {
		pic := s.Pic
		if pic == "" {
			pic = "-"
		}
		lines = append(lines, fmt.Sprintf("  %s · %s · PIC: %s", s.Date, s.Name, pic))
	}
	lines = append(lines, "", titleStyle.Render("Recent notulensi"))
	if len(v.feed.Recent) == 0 {
		lines = append(lines, dimStyle.Render("No notulensi yet."))
	}
	for _, n := range v.feed.Recent {
		lines = append(lines, fmt.Sprintf("  %s · %s", n.SessionName, n.Summary))
	}
	lines = append(lines, "", hintStyle.Render("r → refresh    Esc → menu"))
	return joinLines(lines...)
}
