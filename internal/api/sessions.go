package api

import (
	"context"
	"fmt"
)

// SessionsAPI maps the meeting/event endpoints.
type SessionsAPI struct {
	client *Client
}

// SessionsResponse is a session listing.
type SessionsResponse struct {
	Success  bool      `json:"success"`
	Sessions []Session `json:"sessions"`
}

// SessionResponse is a single-session mutation result.
type SessionResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Session Session `json:"session"`
}

// SessionStatusResponse is the lock/identity snapshot of one session.
type SessionStatusResponse struct {
	Success   bool   `json:"success"`
	IsLocked  bool   `json:"is_locked"`
	SessionID int    `json:"session_id"`
	Name      string `json:"name"`
}

// LockResponse reports the lock mutation.
type LockResponse struct {
	Success  bool    `json:"success"`
	IsLocked bool    `json:"is_locked"`
	Session  Session `json:"session"`
}

// SessionPic is an assigned PIC with its description.
type SessionPic struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SessionPicsResponse lists the PICs assigned to one session.
type SessionPicsResponse struct {
	Success      bool         `json:"success"`
	SessionID    int          `json:"session_id"`
	AssignedPics []SessionPic `json:"assigned_pics"`
}

// NewSession is the creation payload.
type NewSession struct {
	Name        string `json:"name"`
	Date        string `json:"date"`
	SessionType string `json:"session_type"`
	Description string `json:"description,omitempty"`
}

// List returns sessions, optionally filtered by type. An empty type omits
// the filter query parameter.
func (s *SessionsAPI) List(ctx context.Context, sessionType string) (SessionsResponse, error) {
	var res SessionsResponse
	err := s.client.Get(ctx, "/api/sessions", &res, WithParams(map[string]string{"type": sessionType}))
	return res, err
}

// Create adds a session.
func (s *SessionsAPI) Create(ctx context.Context, session NewSession) (SessionResponse, error) {
	var res SessionResponse
	err := s.client.Post(ctx, "/api/sessions", session, &res)
	return res, err
}

// Delete removes a session.
func (s *SessionsAPI) Delete(ctx context.Context, sessionID int) error {
	return s.client.Delete(ctx, fmt.Sprintf("/api/sessions/%d", sessionID), nil, nil)
}

// Lock closes a session for attendance. The backend treats the lock as
// terminal; there is no unlock.
func (s *SessionsAPI) Lock(ctx context.Context, sessionID int) (LockResponse, error) {
	var res LockResponse
	err := s.client.Post(ctx, fmt.Sprintf("/api/sessions/%d/lock", sessionID), nil, &res)
	return res, err
}

// Status returns the session's current lock state.
func (s *SessionsAPI) Status(ctx context.Context, sessionID int) (SessionStatusResponse, error) {
	var res SessionStatusResponse
	err := s.client.Get(ctx, fmt.Sprintf("/api/sessions/%d/status", sessionID), &res)
	return res, err
}

// Pics lists the PICs assigned to a session.
func (s *SessionsAPI) Pics(ctx context.Context, sessionID int) (SessionPicsResponse, error) {
	var res SessionPicsResponse
	err := s.client.Get(ctx, fmt.Sprintf("/api/sessions/%d/pics", sessionID), &res)
	return res, err
}

// AssignPics replaces the session's assigned PIC set.
func (s *SessionsAPI) AssignPics(ctx context.Context, sessionID int, picIDs []int) (SessionResponse, error) {
	var res SessionResponse
	err := s.client.Put(ctx, fmt.Sprintf("/api/sessions/%d/pics", sessionID), map[string][]int{"pic_ids": picIDs}, &res)
	return res, err
}

// RemovePic detaches one PIC from a session.
func (s *SessionsAPI) RemovePic(ctx context.Context, sessionID, picID int) error {
	return s.client.Delete(ctx, fmt.Sprintf("/api/sessions/%d/pics/%d", sessionID, picID), nil, nil)
}
