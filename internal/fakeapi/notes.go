package fakeapi

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"writex/internal/models"
	"writex/internal/validation"
)

// parseNote returns the normalized body, or a non-empty rejection message.
func parseNote(c *fiber.Ctx) (models.NoteInput, string) {
	var in models.NoteInput
	if err := c.BodyParser(&in); err != nil {
		return in, "Invalid request body"
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	in.Tags = models.DedupTags(in.Tags)
	if err := validation.Struct(in); err != nil {
		return in, models.MessageOr(err, "Invalid input")
	}
	return in, ""
}

func (s *Server) listNotes(c *fiber.Ctx) error {
	return c.JSON(s.data.listNotes(currentUserID(c)))
}

func (s *Server) createNote(c *fiber.Ctx) error {
	in, rejected := parseNote(c)
	if rejected != "" {
		return fail(c, fiber.StatusBadRequest, rejected)
	}
	now := time.Now().UTC()
	note := s.data.addNote(currentUserID(c), models.Note{
		ID:        uuid.NewString(),
		Title:     in.Title,
		Content:   in.Content,
		Tags:      in.Tags,
		IsPinned:  in.IsPinned,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return c.Status(fiber.StatusCreated).JSON(note)
}

func (s *Server) updateNote(c *fiber.Ctx) error {
	in, rejected := parseNote(c)
	if rejected != "" {
		return fail(c, fiber.StatusBadRequest, rejected)
	}
	note, ok := s.data.updateNote(currentUserID(c), c.Params("id"), func(n *models.Note) {
		n.Title = in.Title
		n.Content = in.Content
		n.Tags = in.Tags
		n.IsPinned = in.IsPinned
		n.UpdatedAt = time.Now().UTC()
	})
	if !ok {
		return fail(c, fiber.StatusNotFound, "Note not found")
	}
	return c.JSON(note)
}

func (s *Server) deleteNote(c *fiber.Ctx) error {
	if !s.data.deleteNote(currentUserID(c), c.Params("id")) {
		return fail(c, fiber.StatusNotFound, "Note not found")
	}
	return c.JSON(fiber.Map{"message": "Note deleted"})
}
