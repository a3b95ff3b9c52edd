package api

import (
	"context"
	"fmt"
)

// NotulensiAPI maps the meeting-minutes endpoints.
type NotulensiAPI struct {
	client *Client
}

// NotulensiListResponse pairs every session with its minutes state.
type NotulensiListResponse struct {
	Success bool                `json:"success"`
	Items   []NotulensiListItem `json:"items"`
}

// NotulensiDetailResponse is one session's minutes. CanEdit is
// backend-supplied and is the only edit-permission authority; the client
// never recomputes it.
type NotulensiDetailResponse struct {
	Success   bool       `json:"success"`
	Session   Session    `json:"session"`
	Notulensi *Notulensi `json:"notulensi"`
	CanEdit   bool       `json:"can_edit"`
}

// NotulensiSaveResponse is the upserted document.
type NotulensiSaveResponse struct {
	Success   bool      `json:"success"`
	Notulensi Notulensi `json:"notulensi"`
}

// List returns every session with its minutes state.
func (n *NotulensiAPI) List(ctx context.Context) (NotulensiListResponse, error) {
	var res NotulensiListResponse
	err := n.client.Get(ctx, "/api/notulensi", &res)
	return res, err
}

// Get returns one session's minutes along with the edit-permission flag.
func (n *NotulensiAPI) Get(ctx context.Context, sessionID int) (NotulensiDetailResponse, error) {
	var res NotulensiDetailResponse
	err := n.client.Get(ctx, fmt.Sprintf("/api/notulensi/%d", sessionID), &res)
	return res, err
}

// Save upserts the minutes document for a session.
func (n *NotulensiAPI) Save(ctx context.Context, sessionID int, content string) (NotulensiSaveResponse, error) {
	var res NotulensiSaveResponse
	err := n.client.Post(ctx, fmt.Sprintf("/api/notulensi/%d", sessionID), map[string]string{"content": content}, &res)
	return res, err
}

// Delete removes a minutes document by its own id.
func (n *NotulensiAPI) Delete(ctx context.Context, notulensiID int) error {
	return n.client.Delete(ctx, fmt.Sprintf("/api/notulensi/by-id/%d", notulensiID), nil, nil)
}
