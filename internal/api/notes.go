package api

import (
	"context"
	"net/http"

	"writex/internal/models"
)

// Notes calls /api/notes. Notes are scoped to the credential's owner.
type Notes struct {
	t Doer
}

// NewNotes returns a Notes client on t.
func NewNotes(t Doer) *Notes {
	return &Notes{t: t}
}

func (c *Notes) List(ctx context.Context) ([]models.Note, error) {
	var out []models.Note
	if err := c.t.Do(ctx, http.MethodGet, "/api/notes", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Notes) Create(ctx context.Context, in models.NoteInput) (*models.Note, error) {
	var out models.Note
	if err := c.t.Do(ctx, http.MethodPost, "/api/notes", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces the note. Pinning is an update with IsPinned flipped.
func (c *Notes) Update(ctx context.Context, id string, in models.NoteInput) (*models.Note, error) {
	var out models.Note
	if err := c.t.Do(ctx, http.MethodPut, "/api/notes/"+escape(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Notes) Delete(ctx context.Context, id string) error {
	return c.t.Do(ctx, http.MethodDelete, "/api/notes/"+escape(id), nil, nil)
}
