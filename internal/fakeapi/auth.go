package fakeapi

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"writex/internal/models"
	"writex/internal/validation"
)

const (
	tokenTTL     = 7 * 24 * time.Hour
	localsUserID = "userID"
)

func (s *Server) register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validation.Struct(req); err != nil {
		return fail(c, fiber.StatusBadRequest, models.MessageOr(err, "Invalid input"))
	}

	user, err := s.CreateUser(req.Username, req.Email, req.Password)
	if errors.Is(err, errUserExists) {
		return fail(c, fiber.StatusBadRequest, "User already exists")
	}
	if err != nil {
		return err
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(models.AuthResponse{Token: token, User: user})
}

func (s *Server) login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	user, hash, ok := s.data.accountByEmail(strings.TrimSpace(req.Email))
	if !ok || bcrypt.CompareHashAndPassword(hash, []byte(req.Password)) != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid credentials")
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return err
	}
	return c.JSON(models.AuthResponse{Token: token, User: user})
}

func (s *Server) me(c *fiber.Ctx) error {
	user, ok := s.data.user(currentUserID(c))
	if !ok {
		return fail(c, fiber.StatusNotFound, "User not found")
	}
	return c.JSON(user)
}

var errUserExists = errors.New("user already exists")

// CreateUser registers an account directly, bypassing HTTP. Used for seeding.
func (s *Server) CreateUser(username, email, password string) (models.User, error) {
	if s.data.taken(email, username) {
		return models.User{}, errUserExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return models.User{}, err
	}
	user := models.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     email,
		Followers: []string{},
		Following: []string{},
		CreatedAt: time.Now().UTC(),
	}
	s.data.addAccount(user, hash)
	return user, nil
}

// IssueToken signs a credential for userID.
func (s *Server) IssueToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"iss": "writex-fakeapi",
		"exp": now.Add(tokenTTL).Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"jti": uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// authRequired is a middleware that enforces authentication for protected routes.
func (s *Server) authRequired(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return fail(c, fiber.StatusUnauthorized, "No token, authorization denied")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return fail(c, fiber.StatusUnauthorized, "Token is not valid")
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return fail(c, fiber.StatusUnauthorized, "Token is not valid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Token is not valid")
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return fail(c, fiber.StatusUnauthorized, "Token is not valid")
	}
	if _, exists := s.data.user(sub); !exists {
		return fail(c, fiber.StatusUnauthorized, "Token is not valid")
	}

	c.Locals(localsUserID, sub)
	return c.Next()
}

func currentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals(localsUserID).(string)
	return id
}
