package api

import (
	"context"
	"net/http"

	"writex/internal/models"
)

// Auth calls /api/auth.
type Auth struct {
	t Doer
}

// NewAuth returns an Auth client on t.
func NewAuth(t Doer) *Auth {
	return &Auth{t: t}
}

// Login exchanges credentials for a token and the user.
func (c *Auth) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := c.t.Do(ctx, http.MethodPost, "/api/auth/login", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and returns its token and user.
func (c *Auth) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := c.t.Do(ctx, http.MethodPost, "/api/auth/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the user owning the attached credential.
func (c *Auth) Me(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.t.Do(ctx, http.MethodGet, "/api/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
