package api

import (
	"context"
	"fmt"
	"net/http"
)

// AttendanceAPI maps the attendance endpoints. Regular and core marks go
// through two distinct routes with different authorization rules; the
// caller picks the route matching the target member rather than letting
// the backend infer it.
type AttendanceAPI struct {
	client *Client
}

// Mark is one (session, user, status) tuple to record.
type Mark struct {
	SessionID int    `json:"session_id"`
	UserID    int    `json:"user_id"`
	Status    string `json:"status"`
}

// AttendanceResponse is the recorded mark.
type AttendanceResponse struct {
	Success    bool       `json:"success"`
	Attendance Attendance `json:"attendance"`
}

// HistoryResponse is a member's attendance history with its summary.
type HistoryResponse struct {
	Success bool              `json:"success"`
	Records []Attendance      `json:"records"`
	Summary AttendanceSummary `json:"summary"`
}

// UserHistoryResponse is another member's history, keyed by user.
type UserHistoryResponse struct {
	HistoryResponse
	User User `json:"user"`
}

// MarkRegular records attendance for an ordinary member.
func (a *AttendanceAPI) MarkRegular(ctx context.Context, mark Mark) (AttendanceResponse, error) {
	var res AttendanceResponse
	err := a.client.Post(ctx, "/api/attendance", mark, &res)
	return res, err
}

// MarkCore records attendance for a core member (admin, ketua, pembina).
func (a *AttendanceAPI) MarkCore(ctx context.Context, mark Mark) (AttendanceResponse, error) {
	var res AttendanceResponse
	err := a.client.Post(ctx, "/api/attendance/core", mark, &res)
	return res, err
}

// MyHistory returns the calling user's own history.
func (a *AttendanceAPI) MyHistory(ctx context.Context) (HistoryResponse, error) {
	var res HistoryResponse
	err := a.client.Get(ctx, "/api/attendance/history", &res)
	return res, err
}

// AllMembers lists every member for history browsing (core-only route).
func (a *AttendanceAPI) AllMembers(ctx context.Context) (MembersResponse, error) {
	var res MembersResponse
	err := a.client.Get(ctx, "/api/attendance/history/all", &res)
	return res, err
}

// UserHistory returns one member's history.
func (a *AttendanceAPI) UserHistory(ctx context.Context, userID int) (UserHistoryResponse, error) {
	var res UserHistoryResponse
	err := a.client.Get(ctx, fmt.Sprintf("/api/attendance/history/%d", userID), &res)
	return res, err
}

// ExportDocx downloads the attendance sheet for a session as a DOCX
// document. The payload comes back unparsed.
func (a *AttendanceAPI) ExportDocx(ctx context.Context, sessionID int) ([]byte, error) {
	return a.client.DoBinary(ctx, http.MethodGet, fmt.Sprintf("/api/export/attendance/%d", sessionID))
}
