package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// ProfileAPI maps the own-profile endpoints.
type ProfileAPI struct {
	client *Client
}

// ProfileUpdate carries the editable profile fields; empty fields are
// omitted from the request.
type ProfileUpdate struct {
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// ProfileResponse is the updated profile.
type ProfileResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	User    User   `json:"user"`
}

// PasswordChange is the change-password payload.
type PasswordChange struct {
	OldPassword     string `json:"old_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// UploadResponse reports an uploaded profile picture.
type UploadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	URL     string `json:"url"`
}

// Update edits the caller's profile.
func (p *ProfileAPI) Update(ctx context.Context, update ProfileUpdate) (ProfileResponse, error) {
	var res ProfileResponse
	err := p.client.Put(ctx, "/api/profile", update, &res)
	return res, err
}

// ChangePassword replaces the caller's password. Backend acceptance
// clears the forced-change flag on the user record.
func (p *ProfileAPI) ChangePassword(ctx context.Context, change PasswordChange) error {
	return p.client.Put(ctx, "/api/profile/password", change, nil)
}

// UploadPicture sends a profile picture as a multipart form.
func (p *ProfileAPI) UploadPicture(ctx context.Context, filename string, file io.Reader) (UploadResponse, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("pfp", filename)
	if err != nil {
		return UploadResponse{}, fmt.Errorf("api: build upload: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return UploadResponse{}, fmt.Errorf("api: build upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return UploadResponse{}, fmt.Errorf("api: build upload: %w", err)
	}
	var res UploadResponse
	err = p.client.Do(ctx, http.MethodPost, "/api/profile/picture", &res,
		WithMultipart(&body, writer.FormDataContentType()))
	return res, err
}

// PictureURL returns the direct image URL for a user's profile picture.
// The backend serves the bytes; no client parsing is involved.
func (p *ProfileAPI) PictureURL(userID int) string {
	return fmt.Sprintf("%s/api/profile/picture/%d", p.client.BaseURL(), userID)
}
