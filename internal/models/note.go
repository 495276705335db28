package models

import (
	"strings"
	"time"
)

// Note is a personal note. Tags are an ordered set.
type Note struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	IsPinned  bool      `json:"isPinned"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Key returns the identity used for in-place collection updates.
func (n Note) Key() string { return n.ID }

// Matches reports whether term occurs case-insensitively in the title, the
// content, or any tag. An empty term matches every note.
func (n Note) Matches(term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	if strings.Contains(strings.ToLower(n.Title), term) ||
		strings.Contains(strings.ToLower(n.Content), term) {
		return true
	}
	for _, tag := range n.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

// Input returns the write shape of the note.
func (n Note) Input() NoteInput {
	return NoteInput{Title: n.Title, Content: n.Content, Tags: n.Tags, IsPinned: n.IsPinned}
}

// NoteInput is the body of POST /api/notes and PUT /api/notes/:id.
type NoteInput struct {
	Title    string   `json:"title" validate:"required,max=200"`
	Content  string   `json:"content" validate:"required,max=5000"`
	Tags     []string `json:"tags" validate:"dive,required,max=50"`
	IsPinned bool     `json:"isPinned"`
}

// DedupTags returns tags with duplicates removed, keeping first occurrences
// in order. The result is never nil.
func DedupTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
