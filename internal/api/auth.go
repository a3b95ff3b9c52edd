package api

import "context"

// AuthAPI maps the authentication endpoints.
type AuthAPI struct {
	client *Client
}

// LoginResponse is the payload of a successful login.
type LoginResponse struct {
	Success            bool   `json:"success"`
	Token              string `json:"token"`
	User               User   `json:"user"`
	MustChangePassword bool   `json:"must_change_password"`
}

// MeResponse is the payload of the "who am I" endpoint.
type MeResponse struct {
	Success bool `json:"success"`
	User    User `json:"user"`
}

// Login exchanges credentials for a bearer token and user record.
func (a *AuthAPI) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	var res LoginResponse
	err := a.client.Post(ctx, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &res)
	return res, err
}

// Logout invalidates the current credential server-side.
func (a *AuthAPI) Logout(ctx context.Context) error {
	return a.client.Post(ctx, "/api/auth/logout", nil, nil)
}

// Me returns the user record behind the current credential.
func (a *AuthAPI) Me(ctx context.Context) (MeResponse, error) {
	var res MeResponse
	err := a.client.Get(ctx, "/api/auth/me", &res)
	return res, err
}
