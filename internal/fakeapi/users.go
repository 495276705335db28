package fakeapi

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"writex/internal/models"
	"writex/internal/validation"
)

func (s *Server) listUsers(c *fiber.Ctx) error {
	return c.JSON(s.data.usersExcept(currentUserID(c)))
}

func (s *Server) getUser(c *fiber.Ctx) error {
	id := c.Params("id")
	user, ok := s.data.user(id)
	if !ok {
		return fail(c, fiber.StatusNotFound, "User not found")
	}
	return c.JSON(models.UserProfile{User: user, Posts: s.data.listPosts(id)})
}

func (s *Server) updateProfile(c *fiber.Ctx) error {
	var in models.ProfileUpdate
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	in.Bio = strings.TrimSpace(in.Bio)
	in.Avatar = strings.TrimSpace(in.Avatar)
	if err := validation.Struct(in); err != nil {
		return fail(c, fiber.StatusBadRequest, models.MessageOr(err, "Invalid input"))
	}

	user, ok := s.data.updateProfile(currentUserID(c), in)
	if !ok {
		return fail(c, fiber.StatusNotFound, "User not found")
	}
	return c.JSON(user)
}

func (s *Server) toggleFollow(c *fiber.Ctx) error {
	userID := currentUserID(c)
	target := c.Params("id")
	if target == userID {
		return fail(c, fiber.StatusBadRequest, "You cannot follow yourself")
	}

	following, ok := s.data.toggleFollow(userID, target)
	if !ok {
		return fail(c, fiber.StatusNotFound, "User not found")
	}
	msg := "User unfollowed successfully"
	if following {
		msg = "User followed successfully"
	}
	return c.JSON(models.FollowResult{IsFollowing: following, Message: msg})
}

func (s *Server) followLists(c *fiber.Ctx) error {
	user, ok := s.data.user(currentUserID(c))
	if !ok {
		return fail(c, fiber.StatusNotFound, "User not found")
	}
	return c.JSON(models.FollowLists{
		Followers: s.data.summaries(user.Followers),
		Following: s.data.summaries(user.Following),
	})
}
