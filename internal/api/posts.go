package api

import (
	"context"
	"net/http"

	"writex/internal/models"
)

// Posts calls /api/posts.
type Posts struct {
	t Doer
}

// NewPosts returns a Posts client on t.
func NewPosts(t Doer) *Posts {
	return &Posts{t: t}
}

// List returns the feed, newest first as ordered by the server.
func (c *Posts) List(ctx context.Context) ([]models.Post, error) {
	var out []models.Post
	if err := c.t.Do(ctx, http.MethodGet, "/api/posts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Posts) Create(ctx context.Context, in models.PostInput) (*models.Post, error) {
	var out models.Post
	if err := c.t.Do(ctx, http.MethodPost, "/api/posts", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Posts) Update(ctx context.Context, id string, in models.PostInput) (*models.Post, error) {
	var out models.Post
	if err := c.t.Do(ctx, http.MethodPut, "/api/posts/"+escape(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Posts) Delete(ctx context.Context, id string) error {
	return c.t.Do(ctx, http.MethodDelete, "/api/posts/"+escape(id), nil, nil)
}

// ToggleLike likes or unlikes the post for the current user and returns the
// server's post.
func (c *Posts) ToggleLike(ctx context.Context, id string) (*models.Post, error) {
	var out models.Post
	if err := c.t.Do(ctx, http.MethodPost, "/api/posts/"+escape(id)+"/like", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddComment returns the post including the new comment.
func (c *Posts) AddComment(ctx context.Context, id string, in models.CommentInput) (*models.Post, error) {
	var out models.Post
	if err := c.t.Do(ctx, http.MethodPost, "/api/posts/"+escape(id)+"/comment", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteComment returns the updated post when the server sends one, nil otherwise.
func (c *Posts) DeleteComment(ctx context.Context, postID, commentID string) (*models.Post, error) {
	var out models.Post
	path := "/api/posts/" + escape(postID) + "/comments/" + escape(commentID)
	if err := c.t.Do(ctx, http.MethodDelete, path, nil, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, nil
	}
	return &out, nil
}
