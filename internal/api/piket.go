package api

import (
	"context"
	"fmt"
)

// PiketAPI maps the weekly duty-roster endpoints.
type PiketAPI struct {
	client *Client
}

// PiketScheduleResponse is the full seven-day roster.
type PiketScheduleResponse struct {
	Success  bool       `json:"success"`
	Schedule []PiketDay `json:"schedule"`
}

// PiketLogsResponse is the reminder-email audit trail.
type PiketLogsResponse struct {
	Success bool       `json:"success"`
	Logs    []EmailLog `json:"logs"`
}

// PiketTestResponse reports a triggered test reminder.
type PiketTestResponse struct {
	Success      bool     `json:"success"`
	Message      string   `json:"message"`
	FailedEmails []string `json:"failed_emails,omitempty"`
}

// Schedule returns all seven days.
func (p *PiketAPI) Schedule(ctx context.Context) (PiketScheduleResponse, error) {
	var res PiketScheduleResponse
	err := p.client.Get(ctx, "/api/piket", &res)
	return res, err
}

// Update replaces one day's full assignment set. There is no incremental
// diff: userIDs becomes the day's roster.
func (p *PiketAPI) Update(ctx context.Context, dayOfWeek int, userIDs []int) error {
	return p.client.Post(ctx, "/api/piket", map[string]any{
		"day_of_week": dayOfWeek,
		"user_ids":    userIDs,
	}, nil)
}

// Clear empties one day's assignments.
func (p *PiketAPI) Clear(ctx context.Context, dayOfWeek int) error {
	return p.client.Delete(ctx, fmt.Sprintf("/api/piket/%d", dayOfWeek), nil, nil)
}

// Logs returns the reminder audit trail.
func (p *PiketAPI) Logs(ctx context.Context) (PiketLogsResponse, error) {
	var res PiketLogsResponse
	err := p.client.Get(ctx, "/api/piket/logs", &res)
	return res, err
}

// TestReminder triggers a reminder run; a nil day tests today's roster.
func (p *PiketAPI) TestReminder(ctx context.Context, dayOfWeek *int) (PiketTestResponse, error) {
	body := map[string]any{}
	if dayOfWeek != nil {
		body["day_of_week"] = *dayOfWeek
	}
	var res PiketTestResponse
	err := p.client.Post(ctx, "/api/piket/test", body, &res)
	return res, err
}
