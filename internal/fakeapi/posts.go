package fakeapi

import (
	"slices"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"writex/internal/models"
	"writex/internal/validation"
)

func (s *Server) listPosts(c *fiber.Ctx) error {
	return c.JSON(s.data.listPosts(""))
}

func (s *Server) createPost(c *fiber.Ctx) error {
	var in models.PostInput
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	in.Content = strings.TrimSpace(in.Content)
	if err := validation.Struct(in); err != nil {
		return fail(c, fiber.StatusBadRequest, models.MessageOr(err, "Invalid input"))
	}

	author, ok := s.data.user(currentUserID(c))
	if !ok {
		return fail(c, fiber.StatusNotFound, "User not found")
	}
	post := s.data.addPost(models.Post{
		ID:        uuid.NewString(),
		Author:    author.Summary(),
		Content:   in.Content,
		Likes:     []models.Like{},
		Comments:  []models.Comment{},
		CreatedAt: time.Now().UTC(),
	})
	return c.Status(fiber.StatusCreated).JSON(post)
}

func (s *Server) updatePost(c *fiber.Ctx) error {
	var in models.PostInput
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	in.Content = strings.TrimSpace(in.Content)
	if err := validation.Struct(in); err != nil {
		return fail(c, fiber.StatusBadRequest, models.MessageOr(err, "Invalid input"))
	}

	userID := currentUserID(c)
	post, status, msg := s.data.mutatePost(c.Params("id"), func(p *models.Post) (int, string) {
		if p.Author.ID != userID {
			return fiber.StatusForbidden, "Not authorized"
		}
		p.Content = in.Content
		p.UpdatedAt = time.Now().UTC()
		return 0, ""
	})
	if status != 0 {
		return fail(c, status, msg)
	}
	return c.JSON(post)
}

func (s *Server) deletePost(c *fiber.Ctx) error {
	if status, msg := s.data.deletePost(c.Params("id"), currentUserID(c)); status != 0 {
		return fail(c, status, msg)
	}
	return c.JSON(fiber.Map{"message": "Post deleted"})
}

// toggleLike adds the caller's like or removes it when present, so the
// server never holds two likes from one user.
func (s *Server) toggleLike(c *fiber.Ctx) error {
	userID := currentUserID(c)
	post, status, msg := s.data.mutatePost(c.Params("id"), func(p *models.Post) (int, string) {
		if p.LikedBy(userID) {
			p.Likes = slices.DeleteFunc(p.Likes, func(l models.Like) bool { return l.User == userID })
		} else {
			p.Likes = append(p.Likes, models.Like{User: userID})
		}
		return 0, ""
	})
	if status != 0 {
		return fail(c, status, msg)
	}
	return c.JSON(post)
}

func (s *Server) addComment(c *fiber.Ctx) error {
	var in models.CommentInput
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	in.Content = strings.TrimSpace(in.Content)
	if in.Content == "" {
		return fail(c, fiber.StatusBadRequest, "Comment content is required")
	}

	author, ok := s.data.user(currentUserID(c))
	if !ok {
		return fail(c, fiber.StatusNotFound, "User not found")
	}
	post, status, msg := s.data.mutatePost(c.Params("id"), func(p *models.Post) (int, string) {
		p.Comments = append(p.Comments, models.Comment{
			ID:        uuid.NewString(),
			User:      author.Summary(),
			Content:   in.Content,
			CreatedAt: time.Now().UTC(),
		})
		return 0, ""
	})
	if status != 0 {
		return fail(c, status, msg)
	}
	return c.JSON(post)
}

func (s *Server) deleteComment(c *fiber.Ctx) error {
	userID := currentUserID(c)
	commentID := c.Params("commentId")
	post, status, msg := s.data.mutatePost(c.Params("id"), func(p *models.Post) (int, string) {
		i := slices.IndexFunc(p.Comments, func(cm models.Comment) bool { return cm.ID == commentID })
		if i < 0 {
			return fiber.StatusNotFound, "Comment not found"
		}
		if p.Comments[i].User.ID != userID && p.Author.ID != userID {
			return fiber.StatusForbidden, "Not authorized"
		}
		p.Comments = slices.Delete(p.Comments, i, i+1)
		return 0, ""
	})
	if status != 0 {
		return fail(c, status, msg)
	}
	if s.opts.CommentDeleteMessageOnly {
		return c.JSON(fiber.Map{"message": "Comment deleted"})
	}
	return c.JSON(post)
}
