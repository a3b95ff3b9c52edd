package api

import "context"

// FeedAPI maps the dashboard feed endpoint.
type FeedAPI struct {
	client *Client
}

// FeedResponse holds upcoming sessions and recently updated minutes.
type FeedResponse struct {
	Success  bool           `json:"success"`
	Upcoming []FeedUpcoming `json:"upcoming"`
	Recent   []FeedRecent   `json:"recent"`
}

// Get returns the dashboard feed.
func (f *FeedAPI) Get(ctx context.Context) (FeedResponse, error) {
	var res FeedResponse
	err := f.client.Get(ctx, "/api/feed", &res)
	return res, err
}

// CalendarAPI maps the calendar endpoint.
type CalendarAPI struct {
	client *Client
}

// Events returns the calendar entries. The endpoint answers a bare JSON
// array, not the usual success envelope.
func (c *CalendarAPI) Events(ctx context.Context) ([]CalendarEvent, error) {
	var res []CalendarEvent
	err := c.client.Get(ctx, "/api/calendar", &res)
	return res, err
}

// ChatAPI maps the assistant chat endpoint.
type ChatAPI struct {
	client *Client
}

// ChatResponse wraps the assistant's reply.
type ChatResponse struct {
	Reply ChatReply `json:"reply"`
}

// Send submits a free-text message and returns the reply.
func (c *ChatAPI) Send(ctx context.Context, message string) (ChatReply, error) {
	var res ChatResponse
	err := c.client.Post(ctx, "/api/chat", map[string]string{"message": message}, &res)
	return res.Reply, err
}
