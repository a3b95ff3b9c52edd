// Package session is the single source of truth for "who is logged in".
// The store is constructed once at startup and injected into the view
// tree; only its own operations mutate it.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rohishub/rohis-cli/internal/api"
)

// CredentialStore persists the opaque token across runs. Implemented by
// the config package; faked in tests.
type CredentialStore interface {
	Token() string
	SetToken(token string) error
	ClearToken() error
}

// Logger is the subset of the logbook the store uses.
type Logger interface {
	Info(format string, args ...any)
	Warn(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...any) {}
func (nopLogger) Warn(string, ...any) {}

// Store holds the current user and credential token. Token and user are
// set and cleared together: a missing token always means a nil user.
type Store struct {
	auth  *api.AuthAPI
	creds CredentialStore
	log   Logger

	mu    sync.RWMutex
	user  *api.User
	token string
}

// NewStore creates a session store. The store itself is the client's
// CredentialSource: the transport reads the live token from here.
func NewStore(auth *api.AuthAPI, creds CredentialStore, log Logger) *Store {
	if log == nil {
		log = nopLogger{}
	}
	return &Store{auth: auth, creds: creds, log: log}
}

// Token returns the in-memory credential token. Satisfies
// api.CredentialSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the current user, or nil when logged out.
func (s *Store) User() *api.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsAuthenticated reports whether a user is logged in.
func (s *Store) IsAuthenticated() bool {
	return s.User() != nil
}

// Role returns the current user's role (RoleMember when logged out).
func (s *Store) Role() Role {
	u := s.User()
	if u == nil {
		return RoleMember
	}
	return ParseRole(u.Role)
}

// IsAdmin reports whether the current user is an admin. Recomputed on
// every read, never cached.
func (s *Store) IsAdmin() bool { return s.Role().IsAdmin() }

// IsCore reports whether the current user holds a core role.
func (s *Store) IsCore() bool { return s.Role().IsCore() }

// MustChangePassword reports whether the backend requires a password
// change before any other screen.
func (s *Store) MustChangePassword() bool {
	u := s.User()
	return u != nil && u.MustChangePass
}

// Bootstrap restores the session from the stored credential. With no
// stored credential it leaves the session unauthenticated without a
// network call. An invalid or expired credential clears state silently:
// degradation to logged-out is never an error.
func (s *Store) Bootstrap(ctx context.Context) {
	stored := strings.TrimSpace(s.creds.Token())
	if stored == "" {
		return
	}
	s.mu.Lock()
	s.token = stored
	s.mu.Unlock()

	res, err := s.auth.Me(ctx)
	if err != nil {
		s.log.Warn("session: stored credential rejected, logging out")
		s.clear()
		return
	}
	s.mu.Lock()
	user := res.User
	s.user = &user
	s.mu.Unlock()
	s.log.Info("session: restored for %s", res.User.Email)
}

// Login exchanges credentials for a session. On success, token and user
// are set atomically and the token is persisted; the returned flag tells
// the caller whether the backend requires a forced password change. On
// failure the prior state is preserved and the transport error propagates
// untouched.
func (s *Store) Login(ctx context.Context, email, password string) (bool, error) {
	res, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	user := res.User
	s.user = &user
	s.token = res.Token
	s.mu.Unlock()
	if err := s.creds.SetToken(res.Token); err != nil {
		s.log.Warn("session: persist credential: %v", err)
	}
	s.log.Info("session: %s logged in", res.User.Email)
	return res.MustChangePassword, nil
}

// Logout ends the session. The backend call is best-effort: client-side
// logout always succeeds, so state clears unconditionally.
func (s *Store) Logout(ctx context.Context) {
	if err := s.auth.Logout(ctx); err != nil {
		s.log.Warn("session: server logout failed: %v", err)
	}
	s.clear()
	s.log.Info("session: logged out")
}

// Refresh re-fetches the current user record; used after profile
// mutations. The session stays intact on failure.
func (s *Store) Refresh(ctx context.Context) error {
	res, err := s.auth.Me(ctx)
	if err != nil {
		return fmt.Errorf("session: refresh user: %w", err)
	}
	s.mu.Lock()
	user := res.User
	s.user = &user
	s.mu.Unlock()
	return nil
}

func (s *Store) clear() {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.mu.Unlock()
	if err := s.creds.ClearToken(); err != nil {
		s.log.Warn("session: clear credential: %v", err)
	}
}
