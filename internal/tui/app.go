// internal/tui/app.go
//
// Root model for the rohis client. It is the route guard: until the
// session bootstrap settles it renders a neutral loading state, then it
// routes to the login screen, the forced password-change screen, or the
// authenticated screen set. Screens are sub-models owned by this model.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rohishub/rohis-cli/internal/api"
	"github.com/rohishub/rohis-cli/internal/config"
	"github.com/rohishub/rohis-cli/internal/logbook"
	"github.com/rohishub/rohis-cli/internal/session"
)

// guardState is the route guard's state machine:
// checking -> {login, changePassword, authenticated}.
type guardState int

const (
	guardChecking guardState = iota
	guardLogin
	guardChangePassword
	guardAuthenticated
)

// view is one screen of the authenticated area. Screens follow the same
// shape: fetch on open, render, mutate through the API, re-fetch.
type view interface {
	Title() string
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View(width int) string
}

// Route paths, matching the backend's chat navigation contract.
const (
	routeDashboard  = "/dashboard"
	routeMembers    = "/members"
	routeSessions   = "/sessions"
	routeAttendance = "/attendance"
	routeNotulensi  = "/notulensi"
	routePics       = "/pics"
	routePiket      = "/piket"
	routePiketLogs  = "/piket/logs"
	routeCalendar   = "/calendar"
	routeProfile    = "/profile"
	routeChat       = "/chat"
)

// Guard transition messages.
type bootstrapDoneMsg struct{}

type loggedInMsg struct {
	mustChange bool
}

type loggedOutMsg struct{}

type passwordChangedMsg struct{}

type navigateMsg struct {
	route string
}

// App is the root application model.
type App struct {
	cfg     *config.Config
	client  *api.Client
	session *session.Store
	logbook *logbook.Logbook

	guard   guardState
	menu    list.Model
	current view
	login   *loginView
	change  *changePasswordView

	spin      spinner.Model
	statusMsg string

	width  int
	height int
}

// menuItem implements list.Item for the navigation menu.
type menuItem struct {
	title string
	desc  string
	route string
}

func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.desc }
func (i menuItem) FilterValue() string { return i.title }

// NewApp creates the root model.
func NewApp(cfg *config.Config, client *api.Client, store *session.Store, lb *logbook.Logbook) *App {
	menu := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	menu.Title = "☪ ROHIS"
	menu.SetShowStatusBar(false)
	menu.SetFilteringEnabled(false)

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return &App{
		cfg:     cfg,
		client:  client,
		session: store,
		logbook: lb,
		guard:   guardChecking,
		menu:    menu,
		spin:    spin,
	}
}

// Init starts the session bootstrap. Nothing decisive renders until it
// settles: protected content must never flash for an unauthenticated
// user.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spin.Tick, a.bootstrapCmd())
}

func (a *App) bootstrapCmd() tea.Cmd {
	return func() tea.Msg {
		a.session.Bootstrap(context.Background())
		return bootstrapDoneMsg{}
	}
}

// Update is the single event loop. Guard transitions are handled here;
// everything else is delegated to the active screen.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.menu.SetSize(max(0, msg.Width-6), max(0, msg.Height-10))
		return a, nil

	case bootstrapDoneMsg:
		a.applyGuard(false)
		if a.guard == guardAuthenticated {
			return a, a.openRoute(routeDashboard)
		}
		return a, nil

	case loggedInMsg:
		a.applyGuard(msg.mustChange)
		if a.guard == guardAuthenticated {
			return a, a.openRoute(routeDashboard)
		}
		return a, nil

	case passwordChangedMsg:
		a.statusMsg = "Password updated"
		a.applyGuard(false)
		if a.guard == guardAuthenticated {
			return a, a.openRoute(routeDashboard)
		}
		return a, nil

	case loggedOutMsg:
		a.guard = guardLogin
		a.login = newLoginView(a)
		a.current = nil
		return a, a.login.Init()

	case navigateMsg:
		if a.guard == guardAuthenticated {
			return a, a.openRoute(msg.route)
		}
		return a, nil

	case spinner.TickMsg:
		if a.guard == guardChecking {
			var cmd tea.Cmd
			a.spin, cmd = a.spin.Update(msg)
			return a, cmd
		}
		// Screens with their own spinners get the tick below.
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "ctrl+q":
			if a.guard == guardAuthenticated {
				return a, a.logoutCmd()
			}
			return a, tea.Quit
		case "esc":
			if a.guard == guardAuthenticated && a.current != nil {
				a.current = nil
				a.statusMsg = ""
				return a, nil
			}
		case "q":
			if a.guard == guardAuthenticated && a.current == nil {
				return a, tea.Quit
			}
		case "enter":
			if a.guard == guardAuthenticated && a.current == nil {
				return a, a.openSelected()
			}
		}
	}

	switch a.guard {
	case guardLogin:
		if a.login != nil {
			return a, a.login.Update(msg)
		}
	case guardChangePassword:
		if a.change != nil {
			return a, a.change.Update(msg)
		}
	case guardAuthenticated:
		if a.current != nil {
			return a, a.current.Update(msg)
		}
		var cmd tea.Cmd
		a.menu, cmd = a.menu.Update(msg)
		return a, cmd
	}
	return a, nil
}

// applyGuard settles the guard after a bootstrap, login, or password
// change. A forced password change holds every protected destination
// until cleared.
func (a *App) applyGuard(mustChange bool) {
	switch {
	case !a.session.IsAuthenticated():
		a.guard = guardLogin
		a.login = newLoginView(a)
	case mustChange || a.session.MustChangePassword():
		a.guard = guardChangePassword
		a.change = newChangePasswordView(a)
	default:
		a.guard = guardAuthenticated
		a.login = nil
		a.change = nil
		a.refreshMenu()
	}
}

// refreshMenu rebuilds the navigation menu for the current user's role.
// Items are advisory gating only; the backend rejects unauthorized calls
// regardless.
func (a *App) refreshMenu() {
	core := a.session.IsCore()
	items := []list.Item{
		menuItem{title: "Dashboard", desc: "Upcoming sessions and recent notulensi", route: routeDashboard},
		menuItem{title: "Sessions", desc: "Meetings and events", route: routeSessions},
		menuItem{title: "Attendance", desc: "Your attendance history", route: routeAttendance},
		menuItem{title: "Notulensi", desc: "Meeting minutes", route: routeNotulensi},
		menuItem{title: "Piket", desc: "Weekly duty roster", route: routePiket},
		menuItem{title: "Calendar", desc: "Sessions and Islamic holidays", route: routeCalendar},
	}
	if core {
		items = append(items,
			menuItem{title: "Members", desc: "Membership roster", route: routeMembers},
			menuItem{title: "PICs", desc: "Divisions", route: routePics},
			menuItem{title: "Piket Logs", desc: "Reminder email audit trail", route: routePiketLogs},
		)
	}
	items = append(items,
		menuItem{title: "Profile", desc: "Your account", route: routeProfile},
		menuItem{title: "Assistant", desc: "Ask the ROHIS assistant", route: routeChat},
	)
	a.menu.SetItems(items)
}

func (a *App) openSelected() tea.Cmd {
	item, ok := a.menu.SelectedItem().(menuItem)
	if !ok {
		return nil
	}
	return a.openRoute(item.route)
}

// openRoute switches the active screen. Unknown routes (including ones
// the assistant may send back) fall through to the menu with a notice.
func (a *App) openRoute(route string) tea.Cmd {
	route = strings.TrimSpace(route)
	a.statusMsg = ""
	switch route {
	case routeDashboard, "", "/":
		a.current = newDashboardView(a)
	case routeMembers:
		a.current = newMembersView(a)
	case routeSessions:
		a.current = newSessionsView(a)
	case routeAttendance:
		a.current = newHistoryView(a, 0)
	case routeNotulensi:
		a.current = newNotulensiView(a)
	case routePics:
		a.current = newPicsView(a)
	case routePiket:
		a.current = newPiketView(a)
	case routePiketLogs:
		a.current = newPiketLogsView(a)
	case routeCalendar:
		a.current = newCalendarView(a)
	case routeProfile:
		a.current = newProfileView(a)
	case routeChat:
		a.current = newChatView(a)
	default:
		a.current = nil
		a.statusMsg = fmt.Sprintf("Unknown route %q", route)
		return nil
	}
	return a.current.Init()
}

// openSessionAttendance jumps from the session list into marking.
func (a *App) openSessionAttendance(sessionID int) tea.Cmd {
	a.current = newAttendanceView(a, sessionID)
	return a.current.Init()
}

// openNotulensiEditor jumps from the notulensi list into one document.
func (a *App) openNotulensiEditor(sessionID int) tea.Cmd {
	a.current = newNotulensiEditorView(a, sessionID)
	return a.current.Init()
}

// openUserHistory jumps from the roster into one member's history.
func (a *App) openUserHistory(userID int) tea.Cmd {
	a.current = newHistoryView(a, userID)
	return a.current.Init()
}

func (a *App) logoutCmd() tea.Cmd {
	return func() tea.Msg {
		a.session.Logout(context.Background())
		return loggedOutMsg{}
	}
}

// View renders the guard state. While checking, only a neutral loading
// line appears.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}
	var content string
	switch a.guard {
	case guardChecking:
		content = fmt.Sprintf("%s Checking session...", a.spin.View())
	case guardLogin:
		if a.login != nil {
			content = a.login.View(width - 6)
		}
	case guardChangePassword:
		if a.change != nil {
			content = a.change.View(width - 6)
		}
	case guardAuthenticated:
		if a.current != nil {
			content = a.current.View(width - 6)
		} else {
			content = a.menu.View()
		}
	}
	return a.renderFrame(content, width)
}

func (a *App) renderFrame(content string, width int) string {
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#1DB954")).
		MarginBottom(1).
		Render("☪ ROHIS " + a.headerContext())
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Width(max(20, width-2)).
		Render(content)
	sections := []string{header, box}
	if panel := a.renderLogPanel(); panel != "" {
		sections = append(sections, panel)
	}
	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginTop(1).
		Render(a.statusMsg)
	sections = append(sections, footer)
	return strings.Join(sections, "\n")
}

func (a *App) headerContext() string {
	u := a.session.User()
	if u == nil {
		return ""
	}
	title := ""
	if a.current != nil {
		title = " · " + a.current.Title()
	}
	return fmt.Sprintf("· %s (%s)%s", u.Name, u.Role, title)
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines := a.logbook.Tail(4)
	if len(lines) == 0 {
		return ""
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render("LOG")
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(head + "\n" + body)
}

func (a *App) logInfo(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Info(format, args...)
}

func (a *App) logError(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Error(format, args...)
}

// showError routes an operation failure into the status line. Every
// failure ends here as a message; nothing is retried automatically.
func (a *App) showError(err error) {
	if err == nil {
		return
	}
	msg := err.Error()
	var apiErr *api.Error
	if ok := asAPIError(err, &apiErr); ok {
		msg = apiErr.Message
		if apiErr.Kind == api.KindUnauthorized {
			msg = "Session expired or not permitted: " + apiErr.Message
		}
	}
	a.statusMsg = "✗ " + msg
	a.logError("%s", msg)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
