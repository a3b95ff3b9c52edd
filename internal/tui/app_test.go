package tui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rohishub/rohis-cli/internal/api"
	"github.com/rohishub/rohis-cli/internal/config"
	"github.com/rohishub/rohis-cli/internal/session"
)

// newTestApp wires an App against a fake backend. role controls the user
// the fake login hands back; the returned app is still in the checking
// state until a guard message arrives.
func newTestApp(t *testing.T, role string, mustChange bool) (*App, *session.Store) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": true, "token": "tok", "must_change_password": mustChange,
			"user": map[string]any{
				"id": 1, "email": "u@rohis.id", "name": "Umar", "role": role,
				"must_change_password": mustChange,
			},
		})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	var store *session.Store
	client := api.NewClient(srv.URL, api.WithCredentials(api.CredentialFunc(func() string {
		if store == nil {
			return ""
		}
		return store.Token()
	})))
	store = session.NewStore(client.Auth, cfg, nil)
	return NewApp(cfg, client, store, nil), store
}

func login(t *testing.T, store *session.Store) {
	t.Helper()
	if _, err := store.Login(context.Background(), "u@rohis.id", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func TestGuardRendersNeutralWhileChecking(t *testing.T) {
	app, _ := newTestApp(t, "member", false)
	out := app.View()
	if !strings.Contains(out, "Checking session") {
		t.Fatalf("checking view = %q", out)
	}
	if strings.Contains(out, "Sign in") || strings.Contains(out, "Dashboard") {
		t.Fatal("decisive content rendered before bootstrap settled")
	}
}

func TestGuardRoutesToLoginWhenUnauthenticated(t *testing.T) {
	app, _ := newTestApp(t, "member", false)
	app.Update(bootstrapDoneMsg{})
	if app.guard != guardLogin {
		t.Fatalf("guard = %d, want guardLogin", app.guard)
	}
	if !strings.Contains(app.View(), "Sign in") {
		t.Fatal("login screen not rendered")
	}
}

func TestGuardOpensDashboardAfterLogin(t *testing.T) {
	app, store := newTestApp(t, "member", false)
	login(t, store)
	_, cmd := app.Update(loggedInMsg{mustChange: false})
	if app.guard != guardAuthenticated {
		t.Fatalf("guard = %d, want guardAuthenticated", app.guard)
	}
	if cmd == nil {
		t.Fatal("no command returned; dashboard fetch not started")
	}
	if app.current == nil || app.current.Title() != "Dashboard" {
		t.Fatalf("current view = %v", app.current)
	}
}

func TestGuardHoldsOnForcedPasswordChange(t *testing.T) {
	app, store := newTestApp(t, "member", true)
	login(t, store)
	app.Update(loggedInMsg{mustChange: true})
	if app.guard != guardChangePassword {
		t.Fatalf("guard = %d, want guardChangePassword", app.guard)
	}
	if !strings.Contains(app.View(), "password change is required") {
		t.Fatal("change-password screen not rendered")
	}

	// Navigation requests must not escape the held state.
	app.Update(navigateMsg{route: routeMembers})
	if app.guard != guardChangePassword || app.current != nil {
		t.Fatal("navigation escaped the forced password change")
	}
}

func TestPasswordChangeReleasesGuard(t *testing.T) {
	app, store := newTestApp(t, "member", true)
	login(t, store)
	app.Update(loggedInMsg{mustChange: true})

	// Simulate the backend clearing the flag, then the change settling.
	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	app.Update(passwordChangedMsg{})
	if app.guard != guardAuthenticated {
		t.Fatalf("guard = %d after password change, want guardAuthenticated", app.guard)
	}
}

func TestMenuItemsGateOnCoreRole(t *testing.T) {
	app, store := newTestApp(t, "member", false)
	login(t, store)
	app.applyGuard(false)
	for _, item := range app.menu.Items() {
		if item.(menuItem).route == routeMembers {
			t.Fatal("member role sees the roster item")
		}
	}

	core, coreStore := newTestApp(t, "ketua", false)
	login(t, coreStore)
	core.applyGuard(false)
	var found bool
	for _, item := range core.menu.Items() {
		if item.(menuItem).route == routeMembers {
			found = true
		}
	}
	if !found {
		t.Fatal("core role missing the roster item")
	}
}

func TestUnknownRouteFallsBackToMenu(t *testing.T) {
	app, store := newTestApp(t, "member", false)
	login(t, store)
	app.Update(loggedInMsg{mustChange: false})
	app.Update(navigateMsg{route: "/no-such-view"})
	if app.current != nil {
		t.Fatal("unknown route opened a view")
	}
	if !strings.Contains(app.statusMsg, "Unknown route") {
		t.Fatalf("statusMsg = %q", app.statusMsg)
	}
}

func TestLogoutRoutesBackToLogin(t *testing.T) {
	app, store := newTestApp(t, "member", false)
	login(t, store)
	app.Update(loggedInMsg{mustChange: false})
	app.Update(loggedOutMsg{})
	if app.guard != guardLogin {
		t.Fatalf("guard = %d after logout, want guardLogin", app.guard)
	}
	if app.current != nil {
		t.Fatal("view survived logout")
	}
}

func TestLockedSessionRefusesMark(t *testing.T) {
	app, store := newTestApp(t, "ketua", false)
	login(t, store)

	v := newAttendanceView(app, 5)
	v.status = api.SessionStatusResponse{IsLocked: true, SessionID: 5, Name: "Kajian"}
	v.members = []api.User{{ID: 2, Name: "Aisyah", Role: "member"}}

	cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})
	if cmd != nil {
		t.Fatal("mark attempted on a locked session")
	}
	if !strings.Contains(app.statusMsg, "locked") {
		t.Fatalf("statusMsg = %q", app.statusMsg)
	}
	if !strings.Contains(v.View(80), "LOCKED") {
		t.Fatal("locked badge not rendered")
	}
	if !strings.Contains(v.View(80), "marking disabled") {
		t.Fatal("disabled hint not rendered")
	}
}

func TestAlreadyMarkedMemberIsNotRemarked(t *testing.T) {
	app, store := newTestApp(t, "ketua", false)
	login(t, store)

	v := newAttendanceView(app, 5)
	v.members = []api.User{{ID: 2, Name: "Aisyah", Role: "member"}}
	v.marked[2] = api.Attendance{UserID: 2, Status: "present"}

	cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	if cmd != nil {
		t.Fatal("second mark attempted for an already-marked member")
	}
	if !strings.Contains(app.statusMsg, "already marked") {
		t.Fatalf("statusMsg = %q", app.statusMsg)
	}
}

func TestStaleFetchResultIsDropped(t *testing.T) {
	app, store := newTestApp(t, "ketua", false)
	login(t, store)

	v := newAttendanceView(app, 5)
	v.token = newFetchToken()
	v.members = []api.User{{ID: 2, Name: "Aisyah", Role: "member"}}

	stale := attendanceLoadedMsg{
		token:   newFetchToken(), // not the view's current token
		status:  api.SessionStatusResponse{IsLocked: true},
		members: nil,
	}
	v.Update(stale)
	if v.status.IsLocked {
		t.Fatal("stale result overwrote the lock state")
	}
	if len(v.members) != 1 {
		t.Fatal("stale result overwrote the roster")
	}
}

func TestMarkPicksRouteByTargetRole(t *testing.T) {
	var paths []string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/attendance", func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"success": true, "attendance": map[string]any{"status": "present"}})
	})
	mux.HandleFunc("/api/attendance/core", func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"success": true, "attendance": map[string]any{"status": "present"}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	client := api.NewClient(srv.URL)
	store := session.NewStore(client.Auth, cfg, nil)
	app := NewApp(cfg, client, store, nil)

	v := newAttendanceView(app, 5)
	v.members = []api.User{
		{ID: 2, Name: "Aisyah", Role: "member"},
		{ID: 3, Name: "Bilal", Role: "pembina"},
	}

	// Regular member -> regular route.
	if cmd := v.mark(api.StatusPresent); cmd == nil {
		t.Fatal("no mark command for regular member")
	} else {
		cmd()
	}
	// Core member -> core route.
	v.cursor = 1
	v.markingID = 0
	if cmd := v.mark(api.StatusPresent); cmd == nil {
		t.Fatal("no mark command for core member")
	} else {
		cmd()
	}

	if len(paths) != 2 || paths[0] != "/api/attendance" || paths[1] != "/api/attendance/core" {
		t.Fatalf("paths = %v", paths)
	}
}

func TestRefreshDuringMarkReleasesMarkGuard(t *testing.T) {
	app, store := newTestApp(t, "ketua", false)
	login(t, store)

	v := newAttendanceView(app, 5)
	v.token = newFetchToken()
	v.members = []api.User{
		{ID: 2, Name: "Aisyah", Role: "member"},
		{ID: 3, Name: "Bilal", Role: "member"},
	}

	staleToken := v.token
	if cmd := v.mark(api.StatusPresent); cmd == nil {
		t.Fatal("no mark command for the first member")
	}

	// Refresh while the mark is in flight. The fetch command is not run;
	// its side effects on the view happen synchronously.
	v.fetch()
	if v.markingID != 0 {
		t.Fatalf("markingID = %d after refresh, want 0", v.markingID)
	}

	// The in-flight mark settles carrying the pre-refresh token and is
	// dropped without touching the marked set.
	v.Update(attendanceMarkedMsg{token: staleToken, userID: 2,
		result: api.AttendanceResponse{Attendance: api.Attendance{UserID: 2, Status: "present"}}})
	if _, marked := v.marked[2]; marked {
		t.Fatal("stale mark result recorded")
	}

	// Once the refresh settles, marking must work again.
	v.Update(attendanceLoadedMsg{token: v.token, members: v.members})
	if cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}}); cmd == nil {
		t.Fatal("marking stayed blocked after a refresh")
	}
}

func TestRoleFilterNarrowsRoster(t *testing.T) {
	app, store := newTestApp(t, "ketua", false)
	login(t, store)

	v := newMembersView(app)
	v.members = []api.User{
		{ID: 1, Name: "Umar", Role: "admin"},
		{ID: 2, Name: "Aisyah", Role: "member"},
		{ID: 3, Name: "Bilal", Role: "pembina"},
		{ID: 4, Name: "Khadijah", Role: "member"},
	}

	if got := len(v.visible()); got != 4 {
		t.Fatalf("unfiltered roster = %d members, want 4", got)
	}

	// First cycle lands on the admin filter.
	v.cycleFilter()
	if got := v.visible(); len(got) != 1 || got[0].Role != "admin" {
		t.Fatalf("admin filter = %v", got)
	}

	// admin -> ketua -> pembina -> member.
	for i := 0; i < 3; i++ {
		v.cycleFilter()
	}
	got := v.visible()
	if len(got) != 2 {
		t.Fatalf("member filter kept %d rows, want 2", len(got))
	}
	for _, u := range got {
		if u.Role != "member" {
			t.Fatalf("filter leaked %s (%s)", u.Name, u.Role)
		}
	}

	// One more cycle wraps back to the unfiltered roster.
	v.cycleFilter()
	if v.hasFilt || len(v.visible()) != 4 {
		t.Fatal("filter did not wrap back to all roles")
	}
}

func TestExportFileNameRejectsPathSeparators(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Kajian Jumat", "attendance-Kajian Jumat.docx"},
		{"", "attendance-session-5.docx"},
		{"../../etc/passwd", "attendance-session-5.docx"},
		{`rapat\..\notes`, "attendance-session-5.docx"},
	}
	for _, tc := range cases {
		if got := exportFileName(tc.name, 5); got != tc.want {
			t.Fatalf("exportFileName(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestMarkConflictSurfacesBackendMessage(t *testing.T) {
	app, store := newTestApp(t, "ketua", false)
	login(t, store)

	v := newAttendanceView(app, 5)
	v.token = newFetchToken()
	v.Update(attendanceMarkedMsg{
		token:  v.token,
		userID: 2,
		err:    &api.Error{Message: "Attendance already marked for this session", Status: 409, Kind: api.KindConflict},
	})
	if !strings.Contains(app.statusMsg, "Attendance already marked for this session") {
		t.Fatalf("statusMsg = %q", app.statusMsg)
	}
	if _, marked := v.marked[2]; marked {
		t.Fatal("conflict recorded as a successful mark")
	}
}
