package api

import (
	"context"
	"net/http"

	"writex/internal/models"
)

// Users calls /api/users.
type Users struct {
	t Doer
}

// NewUsers returns a Users client on t.
func NewUsers(t Doer) *Users {
	return &Users{t: t}
}

// List returns the user directory.
func (c *Users) List(ctx context.Context) ([]models.User, error) {
	var out []models.User
	if err := c.t.Do(ctx, http.MethodGet, "/api/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns a user together with their posts.
func (c *Users) Get(ctx context.Context, id string) (*models.UserProfile, error) {
	var out models.UserProfile
	if err := c.t.Do(ctx, http.MethodGet, "/api/users/"+escape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile saves the current user's bio and avatar.
func (c *Users) UpdateProfile(ctx context.Context, in models.ProfileUpdate) (*models.User, error) {
	var out models.User
	if err := c.t.Do(ctx, http.MethodPut, "/api/users/profile", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ToggleFollow follows or unfollows id. The result says which.
func (c *Users) ToggleFollow(ctx context.Context, id string) (*models.FollowResult, error) {
	var out models.FollowResult
	if err := c.t.Do(ctx, http.MethodPost, "/api/users/"+escape(id)+"/follow", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FollowLists returns who the current user follows and is followed by.
func (c *Users) FollowLists(ctx context.Context) (*models.FollowLists, error) {
	var out models.FollowLists
	if err := c.t.Do(ctx, http.MethodGet, "/api/users/me/follow", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
