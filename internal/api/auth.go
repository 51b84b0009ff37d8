package api

import (
	"context"
	"net/http"

	"github.com/taskdeck/taskdeck/internal/models"
)

// Login exchanges credentials for a session token and user record.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/login", req, &resp); err != nil {
		return models.AuthResponse{}, err
	}
	return resp, nil
}

// Register creates an account; a successful registration also opens a
// session for the new user.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/register", req, &resp); err != nil {
		return models.AuthResponse{}, err
	}
	return resp, nil
}

// Logout invalidates the server-side session for the current token.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/logout", nil, nil)
}

// UpdateProfile updates the authenticated user's profile fields and returns
// the fresh user record.
func (c *Client) UpdateProfile(ctx context.Context, req models.ProfileRequest) (models.User, error) {
	var resp models.ProfileResponse
	if err := c.do(ctx, http.MethodPut, "/user/profile", req, &resp); err != nil {
		return models.User{}, err
	}
	return resp.User, nil
}
