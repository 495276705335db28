package controller

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"writex/internal/models"
	"writex/internal/notify"
	"writex/internal/validation"
)

// NotesAPI is the notes resource client.
type NotesAPI interface {
	List(ctx context.Context) ([]models.Note, error)
	Create(ctx context.Context, in models.NoteInput) (*models.Note, error)
	Update(ctx context.Context, id string, in models.NoteInput) (*models.Note, error)
	Delete(ctx context.Context, id string) error
}

const maxTagLength = 50

// Tag rejections returned by NoteDraft.AddTag.
var (
	ErrEmptyTag     = errors.New("tag is empty")
	ErrDuplicateTag = errors.New("tag already added")
	ErrTagTooLong   = errors.New("tag must be at most 50 characters")
)

// NoteDraft is the note editor state.
type NoteDraft struct {
	Title    string
	Content  string
	IsPinned bool
	tags     []string
}

// DraftFromNote starts an edit of n.
func DraftFromNote(n models.Note) *NoteDraft {
	return &NoteDraft{
		Title:    n.Title,
		Content:  n.Content,
		IsPinned: n.IsPinned,
		tags:     models.DedupTags(n.Tags),
	}
}

// AddTag appends tag unless it is blank, too long, or already present.
func (d *NoteDraft) AddTag(tag string) error {
	tag = strings.TrimSpace(tag)
	switch {
	case tag == "":
		return ErrEmptyTag
	case len([]rune(tag)) > maxTagLength:
		return ErrTagTooLong
	case slices.Contains(d.tags, tag):
		return ErrDuplicateTag
	}
	d.tags = append(d.tags, tag)
	return nil
}

// RemoveTag drops tag if present.
func (d *NoteDraft) RemoveTag(tag string) {
	d.tags = slices.DeleteFunc(d.tags, func(t string) bool { return t == tag })
}

// Tags returns the draft's tags in insertion order.
func (d *NoteDraft) Tags() []string {
	return slices.Clone(d.tags)
}

// Reset clears the editor.
func (d *NoteDraft) Reset() {
	*d = NoteDraft{}
}

// Input returns the request body for the draft with tags deduplicated.
func (d *NoteDraft) Input() models.NoteInput {
	return models.NoteInput{
		Title:    strings.TrimSpace(d.Title),
		Content:  strings.TrimSpace(d.Content),
		Tags:     models.DedupTags(d.tags),
		IsPinned: d.IsPinned,
	}
}

// Notes is the personal notes screen.
type Notes struct {
	base
	api     NotesAPI
	confirm Confirmer

	mu     sync.RWMutex
	notes  []models.Note
	search string
}

// NewNotes returns an empty notes controller. Call Load to fetch notes.
func NewNotes(api NotesAPI, n notify.Notifier, c Confirmer, logger *slog.Logger) *Notes {
	return &Notes{
		base:    newBase("notes", n, logger),
		api:     api,
		confirm: c,
	}
}

// Load fetches the current user's notes. On failure the current list is kept.
func (c *Notes) Load(ctx context.Context) error {
	notes, err := c.api.List(ctx)
	if err != nil {
		return c.fail(ctx, err, "Failed to fetch notes", false)
	}
	c.mu.Lock()
	c.notes = notes
	c.mu.Unlock()
	return nil
}

// All returns every loaded note in server order.
func (c *Notes) All() []models.Note {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.notes)
}

// Get returns the loaded note with id.
func (c *Notes) Get(id string) (models.Note, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return findByKey(c.notes, id)
}

// SetSearch sets the filter term.
func (c *Notes) SetSearch(term string) {
	c.mu.Lock()
	c.search = term
	c.mu.Unlock()
}

// Search returns the filter term.
func (c *Notes) Search() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.search
}

// Filtered returns the notes matching the search term.
func (c *Notes) Filtered() []models.Note {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Note, 0, len(c.notes))
	for _, n := range c.notes {
		if n.Matches(c.search) {
			out = append(out, n)
		}
	}
	return out
}

// Pinned returns the pinned part of Filtered.
func (c *Notes) Pinned() []models.Note {
	return slices.DeleteFunc(c.Filtered(), func(n models.Note) bool { return !n.IsPinned })
}

// Regular returns the unpinned part of Filtered.
func (c *Notes) Regular() []models.Note {
	return slices.DeleteFunc(c.Filtered(), func(n models.Note) bool { return n.IsPinned })
}

// Create saves draft as a new note at the top of the list.
func (c *Notes) Create(ctx context.Context, draft *NoteDraft) (*models.Note, error) {
	const fallback = "Failed to create note"

	in := draft.Input()
	if err := validation.Struct(in); err != nil {
		return nil, c.fail(ctx, err, fallback, false)
	}
	release, err := c.acquire(KeyCreateNote)
	if err != nil {
		return nil, err
	}
	defer release()

	note, err := c.api.Create(ctx, in)
	if err != nil {
		return nil, c.fail(ctx, err, fallback, false)
	}
	c.mu.Lock()
	c.notes = prepend(c.notes, *note)
	c.mu.Unlock()
	c.success("Note created successfully!")
	return note, nil
}

// Update saves draft over the note with id.
func (c *Notes) Update(ctx context.Context, id string, draft *NoteDraft) (*models.Note, error) {
	const fallback = "Failed to update note"

	if _, ok := c.Get(id); !ok {
		return nil, c.fail(ctx, models.NewValidationError("Note not found"), fallback, false)
	}
	in := draft.Input()
	if err := validation.Struct(in); err != nil {
		return nil, c.fail(ctx, err, fallback, false)
	}
	return c.put(ctx, id, in, fallback, "Note updated successfully!")
}

// TogglePin flips the pinned flag by sending the full note back.
func (c *Notes) TogglePin(ctx context.Context, id string) (*models.Note, error) {
	const fallback = "Failed to update note"

	note, ok := c.Get(id)
	if !ok {
		return nil, c.fail(ctx, models.NewValidationError("Note not found"), fallback, false)
	}
	in := note.Input()
	in.IsPinned = !note.IsPinned

	msg := "Note unpinned successfully!"
	if in.IsPinned {
		msg = "Note pinned successfully!"
	}
	return c.put(ctx, id, in, fallback, msg)
}

func (c *Notes) put(ctx context.Context, id string, in models.NoteInput, fallback, okMsg string) (*models.Note, error) {
	release, err := c.acquire(NoteKey(id))
	if err != nil {
		return nil, err
	}
	defer release()

	note, err := c.api.Update(ctx, id, in)
	if err != nil {
		return nil, c.fail(ctx, err, fallback, false)
	}
	c.mu.Lock()
	c.notes = replaceByKey(c.notes, *note)
	c.mu.Unlock()
	c.success(okMsg)
	return note, nil
}

// Delete removes a note after confirmation. A declined confirmation sends
// nothing and returns nil.
func (c *Notes) Delete(ctx context.Context, id string) error {
	const fallback = "Failed to delete note"

	if !c.confirm.Confirm(ctx, "Delete Note", "Are you sure you want to delete this note?") {
		return nil
	}
	release, err := c.acquire(NoteKey(id))
	if err != nil {
		return err
	}
	defer release()

	if err := c.api.Delete(ctx, id); err != nil {
		return c.fail(ctx, err, fallback, false)
	}
	c.mu.Lock()
	c.notes = removeByKey(c.notes, id)
	c.mu.Unlock()
	c.success("Note deleted successfully!")
	return nil
}
