package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// MembersAPI maps the membership-roster endpoints.
type MembersAPI struct {
	client *Client
}

// MembersResponse is a roster listing.
type MembersResponse struct {
	Success bool   `json:"success"`
	Members []User `json:"members"`
}

// MemberResponse is a single-member mutation result.
type MemberResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Member  User   `json:"member"`
}

// BatchAddResponse reports a bulk import: how many rows were added and the
// per-row failures.
type BatchAddResponse struct {
	Success bool     `json:"success"`
	Added   int      `json:"added"`
	Errors  []string `json:"errors"`
}

// BatchDeleteResponse reports a bulk removal.
type BatchDeleteResponse struct {
	Success bool     `json:"success"`
	Deleted int      `json:"deleted"`
	Failed  []string `json:"failed"`
}

// NewMember is the creation payload for a single member.
type NewMember struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	ClassName string `json:"class_name,omitempty"`
	Role      string `json:"role,omitempty"`
}

// List returns the full roster.
func (m *MembersAPI) List(ctx context.Context) (MembersResponse, error) {
	var res MembersResponse
	err := m.client.Get(ctx, "/api/members", &res)
	return res, err
}

// Add creates one member.
func (m *MembersAPI) Add(ctx context.Context, member NewMember) (MemberResponse, error) {
	var res MemberResponse
	err := m.client.Post(ctx, "/api/members", member, &res)
	return res, err
}

// BatchAdd imports members from raw newline-separated text.
func (m *MembersAPI) BatchAdd(ctx context.Context, bulkText string) (BatchAddResponse, error) {
	var res BatchAddResponse
	err := m.client.Post(ctx, "/api/members/batch-add", map[string]string{"bulk_text": bulkText}, &res)
	return res, err
}

// BatchAddFile imports members from an uploaded CSV. The file goes up as
// a multipart form; the transport leaves the body unserialized.
func (m *MembersAPI) BatchAddFile(ctx context.Context, filename string, file io.Reader) (BatchAddResponse, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return BatchAddResponse{}, fmt.Errorf("api: build upload: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return BatchAddResponse{}, fmt.Errorf("api: build upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return BatchAddResponse{}, fmt.Errorf("api: build upload: %w", err)
	}
	var res BatchAddResponse
	err = m.client.Do(ctx, http.MethodPost, "/api/members/batch-add", &res,
		WithMultipart(&body, writer.FormDataContentType()))
	return res, err
}

// BatchDelete removes the given member ids.
func (m *MembersAPI) BatchDelete(ctx context.Context, ids []int) (BatchDeleteResponse, error) {
	var res BatchDeleteResponse
	err := m.client.Post(ctx, "/api/members/batch-delete", map[string][]int{"ids": ids}, &res)
	return res, err
}

// Delete removes one member.
func (m *MembersAPI) Delete(ctx context.Context, userID int) error {
	return m.client.Delete(ctx, fmt.Sprintf("/api/members/%d", userID), nil, nil)
}

// ChangeRole assigns a new role to a member.
func (m *MembersAPI) ChangeRole(ctx context.Context, userID int, role string) (MemberResponse, error) {
	var res MemberResponse
	err := m.client.Put(ctx, fmt.Sprintf("/api/members/%d/role", userID), map[string]string{"role": role}, &res)
	return res, err
}

// AssignPic attaches a member to a PIC; a nil picID detaches them.
func (m *MembersAPI) AssignPic(ctx context.Context, userID int, picID *int) (MemberResponse, error) {
	var res MemberResponse
	err := m.client.Put(ctx, fmt.Sprintf("/api/members/%d/pic", userID), map[string]*int{"pic_id": picID}, &res)
	return res, err
}

// AttendancePermissionResponse reports the toggled permission.
type AttendancePermissionResponse struct {
	Success           bool `json:"success"`
	CanMarkAttendance bool `json:"can_mark_attendance"`
	Member            User `json:"member"`
}

// ToggleAttendancePermission flips (or, with an explicit value, sets)
// whether a member may mark attendance.
func (m *MembersAPI) ToggleAttendancePermission(ctx context.Context, userID int, canMark *bool) (AttendancePermissionResponse, error) {
	body := map[string]any{}
	if canMark != nil {
		body["can_mark"] = *canMark
	}
	var res AttendancePermissionResponse
	err := m.client.Put(ctx, fmt.Sprintf("/api/members/%d/attendance-permission", userID), body, &res)
	return res, err
}
