package api

import (
	"context"
	"fmt"
)

// PicsAPI maps the division (PIC) endpoints.
type PicsAPI struct {
	client *Client
}

// PicsResponse is a division listing.
type PicsResponse struct {
	Success bool  `json:"success"`
	Pics    []Pic `json:"pics"`
}

// PicResponse is a single-division mutation result.
type PicResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Pic     Pic    `json:"pic"`
}

// List returns every division.
func (p *PicsAPI) List(ctx context.Context) (PicsResponse, error) {
	var res PicsResponse
	err := p.client.Get(ctx, "/api/pics", &res)
	return res, err
}

// Create adds a division.
func (p *PicsAPI) Create(ctx context.Context, name, description string) (PicResponse, error) {
	body := map[string]string{"name": name}
	if description != "" {
		body["description"] = description
	}
	var res PicResponse
	err := p.client.Post(ctx, "/api/pics", body, &res)
	return res, err
}

// Delete removes a division. Member assignments cascade server-side; the
// roster must be re-fetched afterwards.
func (p *PicsAPI) Delete(ctx context.Context, picID int) error {
	return p.client.Delete(ctx, fmt.Sprintf("/api/pics/%d", picID), nil, nil)
}
